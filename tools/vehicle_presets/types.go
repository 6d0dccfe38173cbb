package main

import (
	"errors"

	"github.com/wandip/drivesim/pkg/vehicles"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrPresetIDRequired  = errors.New("preset ID is required")
	ErrDuplicatePresetID = errors.New("duplicate preset ID")
)

// presetRow is the flattened CSV form of a vehicle preset.
type presetRow struct {
	ID                    string  `csv:"id"`
	Name                  string  `csv:"name"`
	Mass                  float64 `csv:"mass"`
	Length                float64 `csv:"length"`
	Width                 float64 `csv:"width"`
	Height                float64 `csv:"height"`
	Wheelbase             float64 `csv:"wheelbase"`
	TrackFront            float64 `csv:"track_front"`
	TrackRear             float64 `csv:"track_rear"`
	MountHeight           float64 `csv:"mount_height"`
	WheelRadius           float64 `csv:"wheel_radius"`
	WheelWidth            float64 `csv:"wheel_width"`
	SuspensionRestLength  float64 `csv:"suspension_rest_length"`
	SuspensionMaxTravel   float64 `csv:"suspension_max_travel"`
	SuspensionStiffness   float64 `csv:"suspension_stiffness"`
	SuspensionCompression float64 `csv:"suspension_compression"`
	SuspensionRelaxation  float64 `csv:"suspension_relaxation"`
	MaxSuspensionForce    float64 `csv:"max_suspension_force"`
	FrictionSlip          float64 `csv:"friction_slip"`
	LinearDamping         float64 `csv:"linear_damping"`
	AngularDamping        float64 `csv:"angular_damping"`
	MaxSteerAngle         float64 `csv:"max_steer_angle"`
	SteerResponse         float64 `csv:"steer_response"`
	EngineForceStep       float64 `csv:"engine_force_step"`
	EngineForceMax        float64 `csv:"engine_force_max"`
	EngineForceMin        float64 `csv:"engine_force_min"`
	EngineForceDecay      float64 `csv:"engine_force_decay"`
	BrakeForceStep        float64 `csv:"brake_force_step"`
	BrakeForceMax         float64 `csv:"brake_force_max"`
	FallbackImpulseScale  float64 `csv:"fallback_impulse_scale"`
	SpawnHeight           float64 `csv:"spawn_height"`
}

func rowFromVehicle(v vehicles.Vehicle) presetRow {
	return presetRow{
		ID:                    v.ID,
		Name:                  v.Name,
		Mass:                  v.Mass,
		Length:                v.Dimensions.Length,
		Width:                 v.Dimensions.Width,
		Height:                v.Dimensions.Height,
		Wheelbase:             v.Wheelbase,
		TrackFront:            v.TrackFront,
		TrackRear:             v.TrackRear,
		MountHeight:           v.MountHeight,
		WheelRadius:           v.WheelRadius,
		WheelWidth:            v.WheelWidth,
		SuspensionRestLength:  v.SuspensionRestLength,
		SuspensionMaxTravel:   v.SuspensionMaxTravel,
		SuspensionStiffness:   v.SuspensionStiffness,
		SuspensionCompression: v.SuspensionCompression,
		SuspensionRelaxation:  v.SuspensionRelaxation,
		MaxSuspensionForce:    v.MaxSuspensionForce,
		FrictionSlip:          v.FrictionSlip,
		LinearDamping:         v.LinearDamping,
		AngularDamping:        v.AngularDamping,
		MaxSteerAngle:         v.MaxSteerAngle,
		SteerResponse:         v.SteerResponse,
		EngineForceStep:       v.EngineForceStep,
		EngineForceMax:        v.EngineForceMax,
		EngineForceMin:        v.EngineForceMin,
		EngineForceDecay:      v.EngineForceDecay,
		BrakeForceStep:        v.BrakeForceStep,
		BrakeForceMax:         v.BrakeForceMax,
		FallbackImpulseScale:  v.FallbackImpulseScale,
		SpawnHeight:           v.SpawnHeight,
	}
}

func (r presetRow) vehicle() vehicles.Vehicle {
	return vehicles.Vehicle{
		ID:   r.ID,
		Name: r.Name,
		Mass: r.Mass,
		Dimensions: vehicles.Dimensions{
			Length: r.Length,
			Width:  r.Width,
			Height: r.Height,
		},
		Wheelbase:             r.Wheelbase,
		TrackFront:            r.TrackFront,
		TrackRear:             r.TrackRear,
		MountHeight:           r.MountHeight,
		WheelRadius:           r.WheelRadius,
		WheelWidth:            r.WheelWidth,
		SuspensionRestLength:  r.SuspensionRestLength,
		SuspensionMaxTravel:   r.SuspensionMaxTravel,
		SuspensionStiffness:   r.SuspensionStiffness,
		SuspensionCompression: r.SuspensionCompression,
		SuspensionRelaxation:  r.SuspensionRelaxation,
		MaxSuspensionForce:    r.MaxSuspensionForce,
		FrictionSlip:          r.FrictionSlip,
		LinearDamping:         r.LinearDamping,
		AngularDamping:        r.AngularDamping,
		MaxSteerAngle:         r.MaxSteerAngle,
		SteerResponse:         r.SteerResponse,
		EngineForceStep:       r.EngineForceStep,
		EngineForceMax:        r.EngineForceMax,
		EngineForceMin:        r.EngineForceMin,
		EngineForceDecay:      r.EngineForceDecay,
		BrakeForceStep:        r.BrakeForceStep,
		BrakeForceMax:         r.BrakeForceMax,
		FallbackImpulseScale:  r.FallbackImpulseScale,
		SpawnHeight:           r.SpawnHeight,
	}
}
