package control

import "math"

// snapThreshold is the magnitude below which a decaying actuator snaps to zero
const snapThreshold = 1.0

// Actuator is a force value that ramps by a fixed step per tick and stays
// within [Min, Max].
type Actuator struct {
	Value float64
	Min   float64
	Max   float64
	Step  float64
}

func NewActuator(min, max, step float64) Actuator {
	return Actuator{Min: min, Max: max, Step: step}
}

// Increase raises the value by one step, clamped to Max
func (a *Actuator) Increase() {
	a.Value = math.Min(a.Max, a.Value+a.Step)
}

// Decrease lowers the value by one step, clamped to Min
func (a *Actuator) Decrease() {
	a.Value = math.Max(a.Min, a.Value-a.Step)
}

// Decay multiplies the value by factor and snaps it to exactly zero once its
// magnitude drops below one.
func (a *Actuator) Decay(factor float64) {
	a.Value *= factor
	if math.Abs(a.Value) < snapThreshold {
		a.Value = 0
	}

	a.clamp()
}

// Reset returns the value to zero within a single tick
func (a *Actuator) Reset() {
	a.Value = 0
	a.clamp()
}

func (a *Actuator) clamp() {
	a.Value = math.Max(a.Min, math.Min(a.Max, a.Value))
}
