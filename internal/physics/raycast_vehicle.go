package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/wandip/drivesim/pkg/models"
)

// Controller defaults used when a tuning call is unavailable.
const (
	defaultSuspensionStiffness   = 5.88
	defaultSuspensionCompression = 0.83
	defaultSuspensionRelaxation  = 0.88
	defaultMaxSuspensionTravel   = 5.0
	defaultMaxSuspensionForce    = 6000.0
	defaultFrictionSlip          = 10.5

	rollingResistance = 0.015
	minContactDot     = 0.1
)

var ErrWheelIndex = errors.New("wheel index out of range")

// Wheel is the live state of one raycast wheel.
type Wheel struct {
	Slot       models.WheelSlot
	Mount      mgl64.Vec3
	Radius     float64
	RestLength float64

	Steering         float64
	EngineForce      float64
	Brake            float64
	SuspensionLength float64
	SuspensionForce  float64
	Rotation         float64
	InContact        bool
	Skidding         bool
	ContactPoint     mgl64.Vec3

	maxTravel    float64
	stiffness    float64
	compression  float64
	relaxation   float64
	maxForce     float64
	frictionSlip float64
}

// VehicleController suspends a chassis body on raycast wheels and turns wheel
// engine, brake and steering state into contact impulses.
type VehicleController struct {
	chassis      *RigidBody
	wheels       []*Wheel
	capabilities Capability
}

func NewVehicleController(chassis *RigidBody, capabilities Capability) *VehicleController {
	return &VehicleController{
		chassis:      chassis,
		capabilities: capabilities,
	}
}

func (c *VehicleController) Capabilities() Capability {
	return c.capabilities
}

// AddWheel registers a wheel and returns its index.
func (c *VehicleController) AddWheel(slot models.WheelSlot, mount mgl64.Vec3, radius, restLength float64) int {
	c.wheels = append(c.wheels, &Wheel{
		Slot:             slot,
		Mount:            mount,
		Radius:           radius,
		RestLength:       restLength,
		SuspensionLength: restLength,
		maxTravel:        defaultMaxSuspensionTravel,
		stiffness:        defaultSuspensionStiffness,
		compression:      defaultSuspensionCompression,
		relaxation:       defaultSuspensionRelaxation,
		maxForce:         defaultMaxSuspensionForce,
		frictionSlip:     defaultFrictionSlip,
	})

	return len(c.wheels) - 1
}

func (c *VehicleController) NumWheels() int {
	return len(c.wheels)
}

// Wheel returns a copy of the wheel state at index.
func (c *VehicleController) Wheel(index int) (Wheel, error) {
	if index < 0 || index >= len(c.wheels) {
		return Wheel{}, fmt.Errorf("%w: %d", ErrWheelIndex, index)
	}

	return *c.wheels[index], nil
}

func (c *VehicleController) SetWheelEngineForce(index int, force float64) error {
	return c.setWheel(index, CapEngineForce, func(w *Wheel) { w.EngineForce = force })
}

func (c *VehicleController) SetWheelBrake(index int, force float64) error {
	return c.setWheel(index, CapBrake, func(w *Wheel) { w.Brake = math.Max(0, force) })
}

func (c *VehicleController) SetWheelSteering(index int, angle float64) error {
	return c.setWheel(index, CapSteering, func(w *Wheel) { w.Steering = angle })
}

func (c *VehicleController) SetWheelSuspensionStiffness(index int, stiffness float64) error {
	return c.setWheel(index, CapSuspensionStiffness, func(w *Wheel) { w.stiffness = stiffness })
}

func (c *VehicleController) SetWheelSuspensionCompression(index int, damping float64) error {
	return c.setWheel(index, CapSuspensionCompression, func(w *Wheel) { w.compression = damping })
}

func (c *VehicleController) SetWheelSuspensionRelaxation(index int, damping float64) error {
	return c.setWheel(index, CapSuspensionRelaxation, func(w *Wheel) { w.relaxation = damping })
}

func (c *VehicleController) SetWheelMaxSuspensionTravel(index int, travel float64) error {
	return c.setWheel(index, CapMaxSuspensionTravel, func(w *Wheel) { w.maxTravel = travel })
}

func (c *VehicleController) SetWheelMaxSuspensionForce(index int, force float64) error {
	return c.setWheel(index, CapMaxSuspensionForce, func(w *Wheel) { w.maxForce = force })
}

func (c *VehicleController) SetWheelFrictionSlip(index int, slip float64) error {
	return c.setWheel(index, CapFrictionSlip, func(w *Wheel) { w.frictionSlip = slip })
}

func (c *VehicleController) setWheel(index int, capability Capability, set func(w *Wheel)) error {
	if !c.capabilities.Has(capability) {
		return fmt.Errorf("%w: %s", ErrUnsupported, capability)
	}

	if index < 0 || index >= len(c.wheels) {
		return fmt.Errorf("%w: %d", ErrWheelIndex, index)
	}

	set(c.wheels[index])

	return nil
}

// CurrentSpeed is the chassis speed along its forward axis in m/s.
func (c *VehicleController) CurrentSpeed() float64 {
	return c.chassis.Velocity.Dot(c.chassis.Forward())
}

// UpdateVehicle casts every wheel against the ground and applies suspension,
// drive, brake and lateral friction impulses to the chassis.
func (c *VehicleController) UpdateVehicle(dt float64, ground *Ground) {
	if dt <= 0 || len(c.wheels) == 0 {
		return
	}

	up := c.chassis.Up()

	for _, wheel := range c.wheels {
		c.updateWheel(wheel, dt, ground, up)
	}
}

func (c *VehicleController) updateWheel(wheel *Wheel, dt float64, ground *Ground, up mgl64.Vec3) {
	body := c.chassis
	hardpoint := body.LocalToWorld(wheel.Mount)
	maxLength := wheel.RestLength + wheel.maxTravel

	hit, ok := ground.Raycast(hardpoint, up.Mul(-1), maxLength+wheel.Radius)
	if !ok {
		wheel.InContact = false
		wheel.Skidding = false
		wheel.SuspensionLength = maxLength
		wheel.SuspensionForce = 0

		return
	}

	wheel.InContact = true
	wheel.ContactPoint = hit.Point
	wheel.SuspensionLength = mgl64.Clamp(hit.Distance-wheel.Radius, math.Max(0, wheel.RestLength-wheel.maxTravel), maxLength)

	contactDot := math.Max(hit.Normal.Dot(up), minContactDot)
	projectedVelocity := hit.Normal.Dot(body.VelocityAtPoint(hit.Point)) / contactDot

	force := wheel.stiffness * (wheel.RestLength - wheel.SuspensionLength) / contactDot

	damping := wheel.relaxation
	if projectedVelocity < 0 {
		damping = wheel.compression
	}

	force -= damping * projectedVelocity
	force = mgl64.Clamp(force*body.Mass(), 0, wheel.maxForce)
	wheel.SuspensionForce = force

	body.ApplyImpulseAtPoint(hit.Normal.Mul(force*dt), hit.Point)

	c.applyFriction(wheel, dt, hit, up)
}

func (c *VehicleController) applyFriction(wheel *Wheel, dt float64, hit RayHit, up mgl64.Vec3) {
	body := c.chassis

	heading := mgl64.QuatRotate(wheel.Steering, up).Rotate(body.Forward())
	forward := heading.Sub(hit.Normal.Mul(heading.Dot(hit.Normal)))
	if forward.Len() < 1e-9 {
		return
	}

	forward = forward.Normalize()
	side := forward.Cross(hit.Normal).Normalize()

	// Friction is measured and applied at chassis-centre height so suspension
	// pitch and roll rates never turn into horizontal push.
	arm := hit.Point.Sub(body.Transform.Position)
	point := body.Transform.Position.Add(arm.Sub(up.Mul(arm.Dot(up))))

	velocity := body.VelocityAtPoint(point)
	longitudinalSpeed := velocity.Dot(forward)
	lateralSpeed := velocity.Dot(side)

	stopImpulse := -longitudinalSpeed / body.InverseEffectiveMass(point, forward)
	resistance := (wheel.Brake + rollingResistance*wheel.SuspensionForce) * dt

	longitudinal := wheel.EngineForce*dt + mgl64.Clamp(stopImpulse, -resistance, resistance)
	lateral := -lateralSpeed / body.InverseEffectiveMass(point, side)

	wheel.Skidding = false

	grip := wheel.frictionSlip * wheel.SuspensionForce * dt
	if total := math.Hypot(longitudinal, lateral); total > grip {
		scale := 0.0
		if total > 0 {
			scale = grip / total
		}

		longitudinal *= scale
		lateral *= scale
		wheel.Skidding = true
	}

	body.ApplyImpulseAtPoint(forward.Mul(longitudinal).Add(side.Mul(lateral)), point)

	wheel.Rotation += longitudinalSpeed / wheel.Radius * dt
}
