package units

import "math"

func DegreesToRadians(value float64) float64 {
	return value * math.Pi / 180
}

func MetersPerSecondToKilometersPerHour(value float64) float64 {
	return value * 3.6
}

func MetersPerSecondToMilesPerHour(value float64) float64 {
	return value * 2.236936
}

func MetersToFeet(value float64) float64 {
	return value * 3.28084
}

func MetersToInches(value float64) float64 {
	return value * 39.3701
}

func MetersToMillimeters(value float64) float64 {
	return value * 1000
}

// NewtonsToKilonewtons is used for engine and brake force displays
func NewtonsToKilonewtons(value float64) float64 {
	return value / 1000
}

func RadiansToDegrees(value float64) float64 {
	return value * 180 / math.Pi
}

// WrapRadians normalises an angle into (-pi, pi]
func WrapRadians(value float64) float64 {
	wrapped := math.Mod(value+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}

	return wrapped - math.Pi
}
