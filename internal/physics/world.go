package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/wandip/drivesim/pkg/models"
	"github.com/wandip/drivesim/pkg/vehicles"
)

const (
	degenerateExtent = 1e-4
	contactFriction  = 0.8
	penetrationSlop  = 0.005
	penetrationBias  = 0.8
)

var (
	ErrDegenerateGeometry = errors.New("chassis geometry is degenerate")
	ErrVehicleExists      = errors.New("vehicle already created")
)

// Config describes the world built by Initialize.
type Config struct {
	Gravity           mgl64.Vec3
	GroundHalfExtents mgl64.Vec3
	GroundOffset      float64
	Capabilities      Capability
}

// DefaultConfig is a large flat ground under standard gravity with a fully
// featured vehicle controller.
func DefaultConfig() Config {
	return Config{
		Gravity:           mgl64.Vec3{0, -9.81, 0},
		GroundHalfExtents: mgl64.Vec3{500, 0.05, 500},
		GroundOffset:      0.01,
		Capabilities:      AllCapabilities,
	}
}

// WheelState is a read-only view of a wheel after the last step.
type WheelState struct {
	Slot             models.WheelSlot
	Mount            mgl64.Vec3
	Steering         float64
	Rotation         float64
	EngineForce      float64
	Brake            float64
	SuspensionLength float64
	SuspensionForce  float64
	InContact        bool
	Skidding         bool
}

// World owns the chassis body, the raycast vehicle controller and the ground.
// Control calls for primitives the controller lacks are absorbed here: they are
// logged once per capability, counted and otherwise ignored.
type World struct {
	log        zerolog.Logger
	cfg        Config
	ground     *Ground
	chassis    *RigidBody
	controller *VehicleController
	slots      map[models.WheelSlot]int
	warned     map[Capability]bool
	misses     map[Capability]int
	onMiss     func(Capability)
	steps      uint64
}

// Initialize creates an empty world with gravity and a static ground box.
func Initialize(cfg Config, log zerolog.Logger) *World {
	log.Debug().
		Float64("gravity", cfg.Gravity.Y()).
		Stringer("capabilities", cfg.Capabilities).
		Msg("initialising physics world")

	return &World{
		log:    log,
		cfg:    cfg,
		ground: NewGround(cfg.GroundHalfExtents, cfg.GroundOffset),
		slots:  map[models.WheelSlot]int{},
		warned: map[Capability]bool{},
		misses: map[Capability]int{},
	}
}

// OnCapabilityMiss registers a callback run every time a control call hits a
// missing capability.
func (w *World) OnCapabilityMiss(fn func(Capability)) {
	w.onMiss = fn
}

// Ground returns the static ground box.
func (w *World) Ground() *Ground {
	return w.ground
}

// VehicleOption adjusts how CreateVehicle places the chassis.
type VehicleOption func(shape *chassisShape)

type chassisShape struct {
	offset mgl64.Vec3
}

// WithChassisOffset centres the collider at offset in the vehicle's local
// frame. The body origin moves there and wheel mounts are rebased onto it, so
// spawn and vehicle.WheelMount stay relative to the vehicle origin.
func WithChassisOffset(offset mgl64.Vec3) VehicleOption {
	return func(shape *chassisShape) {
		shape.offset = offset
	}
}

// CreateVehicle adds the chassis body and its four wheels. halfExtents come from
// the visual bounding box of the chassis and must be non-degenerate.
func (w *World) CreateVehicle(halfExtents mgl64.Vec3, spawn Transform, vehicle vehicles.Vehicle, opts ...VehicleOption) error {
	if w.chassis != nil {
		return ErrVehicleExists
	}

	for i := range 3 {
		extent := halfExtents[i]
		if math.IsNaN(extent) || math.IsInf(extent, 0) || extent <= degenerateExtent {
			return fmt.Errorf("%w: half extents %v", ErrDegenerateGeometry, halfExtents)
		}
	}

	if vehicle.Mass <= 0 {
		return fmt.Errorf("%w: mass %v", ErrDegenerateGeometry, vehicle.Mass)
	}

	var shape chassisShape
	for _, opt := range opts {
		opt(&shape)
	}

	body := spawn
	body.Position = spawn.Position.Add(spawn.Rotation.Rotate(shape.offset))

	chassis := NewBoxBody(body, halfExtents, vehicle.Mass)
	chassis.LinearDamping = vehicle.LinearDamping
	chassis.AngularDamping = vehicle.AngularDamping

	controller := NewVehicleController(chassis, w.cfg.Capabilities)

	for _, slot := range models.WheelSlots {
		index := controller.AddWheel(slot, vehicle.WheelMount(slot).Sub(shape.offset), vehicle.WheelRadius, vehicle.SuspensionRestLength)
		w.slots[slot] = index

		w.try(CapSuspensionStiffness, controller.SetWheelSuspensionStiffness(index, vehicle.SuspensionStiffness))
		w.try(CapSuspensionCompression, controller.SetWheelSuspensionCompression(index, vehicle.SuspensionCompression))
		w.try(CapSuspensionRelaxation, controller.SetWheelSuspensionRelaxation(index, vehicle.SuspensionRelaxation))
		w.try(CapMaxSuspensionTravel, controller.SetWheelMaxSuspensionTravel(index, vehicle.SuspensionMaxTravel))
		w.try(CapFrictionSlip, controller.SetWheelFrictionSlip(index, vehicle.FrictionSlip))

		if vehicle.MaxSuspensionForce > 0 {
			w.try(CapMaxSuspensionForce, controller.SetWheelMaxSuspensionForce(index, vehicle.MaxSuspensionForce))
		}
	}

	w.chassis = chassis
	w.controller = controller

	w.log.Info().
		Str("vehicle", vehicle.ID).
		Float64("mass", vehicle.Mass).
		Interface("half_extents", halfExtents).
		Interface("chassis_offset", shape.offset).
		Msg("vehicle created")

	return nil
}

// HasVehicle reports whether CreateVehicle has succeeded.
func (w *World) HasVehicle() bool {
	return w.chassis != nil
}

// Supports reports whether the vehicle controller provides a capability.
func (w *World) Supports(capability Capability) bool {
	return w.cfg.Capabilities.Has(capability)
}

// Step advances the world by the frame delta.
func (w *World) Step(dt float64) {
	if dt <= 0 || w.chassis == nil {
		return
	}

	w.controller.UpdateVehicle(dt, w.ground)
	w.chassis.Integrate(dt, w.cfg.Gravity)
	w.resolveGroundContact()

	w.steps++
}

// Steps is the number of completed steps.
func (w *World) Steps() uint64 {
	return w.steps
}

// ReadTransform returns the chassis transform after the last step, or the
// identity transform when no vehicle exists.
func (w *World) ReadTransform() Transform {
	if w.chassis == nil {
		return IdentityTransform()
	}

	return w.chassis.Transform
}

// Velocity returns the chassis linear velocity.
func (w *World) Velocity() mgl64.Vec3 {
	if w.chassis == nil {
		return mgl64.Vec3{}
	}

	return w.chassis.Velocity
}

// Wheels returns the state of every registered wheel in slot order.
func (w *World) Wheels() []WheelState {
	if w.controller == nil {
		return nil
	}

	states := make([]WheelState, 0, w.controller.NumWheels())

	for _, slot := range models.WheelSlots {
		wheel, err := w.controller.Wheel(w.slots[slot])
		if err != nil {
			continue
		}

		states = append(states, WheelState{
			Slot:             wheel.Slot,
			Mount:            wheel.Mount,
			Steering:         wheel.Steering,
			Rotation:         wheel.Rotation,
			EngineForce:      wheel.EngineForce,
			Brake:            wheel.Brake,
			SuspensionLength: wheel.SuspensionLength,
			SuspensionForce:  wheel.SuspensionForce,
			InContact:        wheel.InContact,
			Skidding:         wheel.Skidding,
		})
	}

	return states
}

// SetEngineForce drives a wheel, reporting false when the primitive is unavailable.
func (w *World) SetEngineForce(slot models.WheelSlot, force float64) bool {
	if w.controller == nil {
		return false
	}

	return w.try(CapEngineForce, w.controller.SetWheelEngineForce(w.slots[slot], force))
}

func (w *World) SetBrake(slot models.WheelSlot, force float64) bool {
	if w.controller == nil {
		return false
	}

	return w.try(CapBrake, w.controller.SetWheelBrake(w.slots[slot], force))
}

func (w *World) SetSteering(slot models.WheelSlot, angle float64) bool {
	if w.controller == nil {
		return false
	}

	return w.try(CapSteering, w.controller.SetWheelSteering(w.slots[slot], angle))
}

// ImpulseForward pushes the chassis along its forward axis.
func (w *World) ImpulseForward(magnitude float64) bool {
	if w.chassis == nil {
		return false
	}

	if !w.Supports(CapImpulse) {
		return w.try(CapImpulse, fmt.Errorf("%w: %s", ErrUnsupported, CapImpulse))
	}

	w.chassis.ApplyImpulse(w.chassis.Forward().Mul(magnitude))

	return true
}

// CapabilityMisses returns how often each missing capability was requested.
func (w *World) CapabilityMisses() map[Capability]int {
	misses := make(map[Capability]int, len(w.misses))
	for capability, count := range w.misses {
		misses[capability] = count
	}

	return misses
}

func (w *World) try(capability Capability, err error) bool {
	if err == nil {
		return true
	}

	if !errors.Is(err, ErrUnsupported) {
		w.log.Error().Err(err).Stringer("capability", capability).Msg("vehicle control call failed")

		return false
	}

	w.misses[capability]++

	if w.onMiss != nil {
		w.onMiss(capability)
	}

	if !w.warned[capability] {
		w.warned[capability] = true
		w.log.Warn().Stringer("capability", capability).Msg("vehicle controller lacks capability, skipping")
	}

	return false
}

func (w *World) resolveGroundContact() {
	body := w.chassis
	normal := mgl64.Vec3{0, 1, 0}
	deepest := 0.0

	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				corner := body.LocalToWorld(mgl64.Vec3{
					sx * body.HalfExtents.X(),
					sy * body.HalfExtents.Y(),
					sz * body.HalfExtents.Z(),
				})

				depth := w.ground.Top() - corner.Y()
				if depth <= 0 || !w.ground.Covers(corner) {
					continue
				}

				deepest = math.Max(deepest, depth)
				w.resolveCorner(corner, normal)
			}
		}
	}

	if deepest > penetrationSlop {
		body.Transform.Position = body.Transform.Position.Add(normal.Mul((deepest - penetrationSlop) * penetrationBias))
	}
}

func (w *World) resolveCorner(corner, normal mgl64.Vec3) {
	body := w.chassis

	velocity := body.VelocityAtPoint(corner)
	normalSpeed := velocity.Dot(normal)
	if normalSpeed >= 0 {
		return
	}

	normalImpulse := -normalSpeed / body.InverseEffectiveMass(corner, normal)
	body.ApplyImpulseAtPoint(normal.Mul(normalImpulse), corner)

	velocity = body.VelocityAtPoint(corner)
	tangent := velocity.Sub(normal.Mul(velocity.Dot(normal)))

	speed := tangent.Len()
	if speed < 1e-9 {
		return
	}

	direction := tangent.Mul(1 / speed)
	frictionImpulse := math.Min(speed/body.InverseEffectiveMass(corner, direction), contactFriction*normalImpulse)
	body.ApplyImpulseAtPoint(direction.Mul(-frictionImpulse), corner)
}
