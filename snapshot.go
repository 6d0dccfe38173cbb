package drivesim

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/wandip/drivesim/internal/camera"
	"github.com/wandip/drivesim/internal/control"
	"github.com/wandip/drivesim/internal/packet"
	"github.com/wandip/drivesim/internal/physics"
	"github.com/wandip/drivesim/pkg/models"
)

// CameraState is the camera mode machine as reported in telemetry.
type CameraState struct {
	Mode          string  `json:"mode"`
	Transitioning bool    `json:"transitioning"`
	From          string  `json:"from,omitempty"`
	To            string  `json:"to,omitempty"`
	Progress      float64 `json:"progress"`

	mode camera.Mode
}

func newCameraState(state camera.State) CameraState {
	camState := CameraState{
		Mode:          state.Mode.String(),
		Transitioning: state.Transitioning,
		Progress:      state.Progress,
		mode:          state.Mode,
	}

	if state.Transitioning {
		camState.From = state.From.String()
		camState.To = state.To.String()
	}

	return camState
}

// Snapshot is the per-frame telemetry handed to the HUD, recorder and
// broadcaster. Every numeric reading is unavailable until physics is ready.
type Snapshot struct {
	Ready   bool          `json:"ready"`
	Frame   uint64        `json:"frame"`
	Elapsed time.Duration `json:"elapsed"`

	Position models.VectorReading     `json:"position"`
	Rotation models.QuaternionReading `json:"rotation"`
	Velocity models.VectorReading     `json:"velocity"`
	// Speed is in metres per second and Heading is the yaw in radians
	Speed   models.Reading `json:"speed"`
	Heading models.Reading `json:"heading"`

	EngineForce   models.Reading        `json:"engine_force"`
	BrakeForce    models.Reading        `json:"brake_force"`
	SteeringAngle models.Reading        `json:"steering_angle"`
	Input         models.ControlReading `json:"input"`

	WheelForces       models.CornerReading `json:"wheel_forces"`
	SuspensionLengths models.CornerReading `json:"suspension_lengths"`
	GroundContact     bool                 `json:"ground_contact"`
	Fallback          bool                 `json:"fallback"`

	Camera        CameraState `json:"camera"`
	CameraToggled bool        `json:"camera_toggled"`
}

type frameState struct {
	frame     uint64
	elapsed   time.Duration
	transform physics.Transform
	velocity  mgl64.Vec3
	wheels    []physics.WheelState
	command   control.Command
	applied   control.Applied
	control   models.ControlState
	camera    camera.State
}

func notReadySnapshot(frame uint64, elapsed time.Duration, cam camera.State) Snapshot {
	return Snapshot{
		Frame:   frame,
		Elapsed: elapsed,
		Camera:  newCameraState(cam),
	}
}

func readySnapshot(state frameState) Snapshot {
	position := state.transform.Position
	rotation := state.transform.Rotation

	suspension := models.CornerSet{}
	contact := false

	for _, wheel := range state.wheels {
		suspension.Set(wheel.Slot, wheel.SuspensionLength)
		contact = contact || wheel.InContact
	}

	return Snapshot{
		Ready:    true,
		Frame:    state.frame,
		Elapsed:  state.elapsed,
		Position: models.NewVectorReading(position.X(), position.Y(), position.Z()),
		Rotation: models.QuaternionReading{
			X: models.Of(rotation.V.X()),
			Y: models.Of(rotation.V.Y()),
			Z: models.Of(rotation.V.Z()),
			W: models.Of(rotation.W),
		},
		Velocity:          models.NewVectorReading(state.velocity.X(), state.velocity.Y(), state.velocity.Z()),
		Speed:             models.Of(state.velocity.Len()),
		Heading:           models.Of(state.transform.Yaw()),
		EngineForce:       models.Of(state.command.EngineForce),
		BrakeForce:        models.Of(state.command.BrakeForce),
		SteeringAngle:     models.Of(state.command.SteeringAngle),
		Input:             models.NewControlReading(state.control),
		WheelForces:       models.NewCornerReading(state.applied.WheelForces),
		SuspensionLengths: models.NewCornerReading(suspension),
		GroundContact:     contact,
		Fallback:          state.applied.Fallback,
		Camera:            newCameraState(state.camera),
	}
}

// Packet converts the snapshot to its broadcast form.
func (s Snapshot) Packet() packet.Packet {
	return packet.Packet{
		Frame:             uint32(s.Frame),
		Ready:             s.Ready,
		GroundContact:     s.GroundContact,
		Fallback:          s.Fallback,
		Transitioning:     s.Camera.Transitioning,
		CameraMode:        uint8(s.Camera.mode),
		CameraProgress:    s.Camera.Progress,
		Position:          s.Position,
		Velocity:          s.Velocity,
		Speed:             s.Speed,
		EngineForce:       s.EngineForce,
		BrakeForce:        s.BrakeForce,
		SteeringAngle:     s.SteeringAngle,
		Input:             s.Input,
		WheelForces:       s.WheelForces,
		SuspensionLengths: s.SuspensionLengths,
		Rotation:          s.Rotation,
	}
}
