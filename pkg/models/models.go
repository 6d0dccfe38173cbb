package models

import "math"

// WheelSlot identifies one of the four wheel positions of a vehicle
type WheelSlot int

const (
	FrontLeft WheelSlot = iota
	FrontRight
	RearLeft
	RearRight
)

// WheelSlots lists every slot in registration order
var WheelSlots = [4]WheelSlot{FrontLeft, FrontRight, RearLeft, RearRight}

func (s WheelSlot) String() string {
	switch s {
	case FrontLeft:
		return "front_left"
	case FrontRight:
		return "front_right"
	case RearLeft:
		return "rear_left"
	case RearRight:
		return "rear_right"
	}

	return "unknown"
}

// IsFront reports whether the slot is on the steered axle
func (s WheelSlot) IsFront() bool {
	return s == FrontLeft || s == FrontRight
}

// CornerSet represents individual values at each corner or wheel of a vehicle
type CornerSet struct {
	FrontLeft  float64
	FrontRight float64
	RearLeft   float64
	RearRight  float64
}

// Get returns the value stored for the given slot
func (c CornerSet) Get(slot WheelSlot) float64 {
	switch slot {
	case FrontLeft:
		return c.FrontLeft
	case FrontRight:
		return c.FrontRight
	case RearLeft:
		return c.RearLeft
	case RearRight:
		return c.RearRight
	}

	return 0
}

// Set stores a value for the given slot
func (c *CornerSet) Set(slot WheelSlot, value float64) {
	switch slot {
	case FrontLeft:
		c.FrontLeft = value
	case FrontRight:
		c.FrontRight = value
	case RearLeft:
		c.RearLeft = value
	case RearRight:
		c.RearRight = value
	}
}

// ControlState is the player's intent for a single frame.
// Forward is -1 (reverse), 0 (coast) or 1 (accelerate), Steer is in [-1, 1] with
// positive values steering left and Brake is in [0, 1].
type ControlState struct {
	Forward int     `json:"forward" csv:"forward"`
	Steer   float64 `json:"steer" csv:"steer"`
	Brake   float64 `json:"brake" csv:"brake"`
}

// Clamp returns a copy of the state with every field forced into its valid range
func (c ControlState) Clamp() ControlState {
	switch {
	case c.Forward > 0:
		c.Forward = 1
	case c.Forward < 0:
		c.Forward = -1
	}

	c.Steer = clamp(c.Steer, -1, 1)
	c.Brake = clamp(c.Brake, 0, 1)

	return c
}

func clamp(v, low, high float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return math.Max(low, math.Min(high, v))
}
