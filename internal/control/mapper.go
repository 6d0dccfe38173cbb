package control

import (
	"math"

	"github.com/wandip/drivesim/pkg/models"
	"github.com/wandip/drivesim/pkg/vehicles"
)

// Config holds the tunables of the dynamics mapper.
type Config struct {
	EngineForceStep      float64
	EngineForceMax       float64
	EngineForceMin       float64
	EngineForceDecay     float64
	BrakeForceStep       float64
	BrakeForceMax        float64
	MaxSteerAngle        float64
	SteerResponse        float64
	FallbackImpulseScale float64
}

// ConfigFromVehicle extracts the mapper tunables from a vehicle preset.
func ConfigFromVehicle(vehicle vehicles.Vehicle) Config {
	return Config{
		EngineForceStep:      vehicle.EngineForceStep,
		EngineForceMax:       vehicle.EngineForceMax,
		EngineForceMin:       vehicle.EngineForceMin,
		EngineForceDecay:     vehicle.EngineForceDecay,
		BrakeForceStep:       vehicle.BrakeForceStep,
		BrakeForceMax:        vehicle.BrakeForceMax,
		MaxSteerAngle:        vehicle.MaxSteerAngle,
		SteerResponse:        vehicle.SteerResponse,
		FallbackImpulseScale: vehicle.FallbackImpulseScale,
	}
}

// Command is the force and steering state produced for one tick.
type Command struct {
	EngineForce    float64
	BrakeForce     float64
	SteeringAngle  float64
	SteeringTarget float64
}

// Actuators are the per-wheel primitives a command is pushed onto. Each call
// reports whether the primitive was available; an unavailable primitive is
// skipped for the tick.
type Actuators interface {
	SetEngineForce(slot models.WheelSlot, force float64) bool
	SetBrake(slot models.WheelSlot, force float64) bool
	SetSteering(slot models.WheelSlot, angle float64) bool
	ImpulseForward(magnitude float64) bool
}

// Applied describes what reached the wheels during Apply.
type Applied struct {
	WheelForces models.CornerSet
	Fallback    bool
}

// Mapper turns discrete control input into continuous engine, brake and
// steering values.
type Mapper struct {
	cfg      Config
	engine   Actuator
	brake    Actuator
	steering float64
	target   float64
}

func NewMapper(cfg Config) *Mapper {
	return &Mapper{
		cfg:    cfg,
		engine: NewActuator(cfg.EngineForceMin, cfg.EngineForceMax, cfg.EngineForceStep),
		brake:  NewActuator(0, cfg.BrakeForceMax, cfg.BrakeForceStep),
	}
}

// Update advances the engine, brake and steering state by one tick.
func (m *Mapper) Update(state models.ControlState) Command {
	state = state.Clamp()

	switch {
	case state.Forward > 0:
		m.engine.Increase()
	case state.Forward < 0:
		m.engine.Decrease()
	default:
		m.engine.Decay(m.cfg.EngineForceDecay)
	}

	if state.Brake > 0 {
		m.brake.Increase()
	} else {
		m.brake.Reset()
	}

	m.target = m.cfg.MaxSteerAngle * state.Steer

	limit := m.cfg.MaxSteerAngle * m.cfg.SteerResponse
	delta := (m.target - m.steering) * m.cfg.SteerResponse
	delta = math.Max(-limit, math.Min(limit, delta))

	m.steering = math.Max(-m.cfg.MaxSteerAngle, math.Min(m.cfg.MaxSteerAngle, m.steering+delta))

	return m.Command()
}

// Command returns the current state without advancing it.
func (m *Mapper) Command() Command {
	return Command{
		EngineForce:    m.engine.Value,
		BrakeForce:     m.brake.Value,
		SteeringAngle:  m.steering,
		SteeringTarget: m.target,
	}
}

// Apply pushes a command onto the wheels: engine force to the rear slots,
// steering to the front slots and brake to all four. When no rear slot accepts
// engine force the chassis is impulsed forward with the scaled force instead.
func (m *Mapper) Apply(cmd Command, actuators Actuators) Applied {
	applied := Applied{}
	driven := 0

	for _, slot := range models.WheelSlots {
		if slot.IsFront() {
			actuators.SetSteering(slot, cmd.SteeringAngle)
		} else if actuators.SetEngineForce(slot, cmd.EngineForce) {
			applied.WheelForces.Set(slot, cmd.EngineForce)
			driven++
		}

		actuators.SetBrake(slot, cmd.BrakeForce)
	}

	if driven == 0 && cmd.EngineForce != 0 {
		applied.Fallback = actuators.ImpulseForward(cmd.EngineForce * m.cfg.FallbackImpulseScale)
	}

	return applied
}
