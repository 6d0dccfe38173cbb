package drivesim

import (
	"errors"
	"fmt"

	"github.com/wandip/drivesim/internal/recorder"
	"github.com/wandip/drivesim/pkg/models"
)

var (
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

// StartRecording writes every following frame to path. The backend is chosen
// by extension: .csv, .csv.gz, .db or .sqlite.
func (s *Simulator) StartRecording(path string) error {
	s.recordingMu.Lock()
	defer s.recordingMu.Unlock()

	if s.recording != nil {
		return ErrAlreadyRecording
	}

	backend, err := recorder.New(path)
	if err != nil {
		return fmt.Errorf("select recording backend: %w", err)
	}

	err = backend.Init()
	if err != nil {
		return fmt.Errorf("initialise recording: %w", err)
	}

	s.recording = backend
	s.log.Info().Str("path", path).Msg("recording started")

	return nil
}

// StopRecording flushes and closes the active recording.
func (s *Simulator) StopRecording() error {
	s.recordingMu.Lock()
	defer s.recordingMu.Unlock()

	if s.recording == nil {
		return ErrNotRecording
	}

	err := s.recording.Close()
	s.recording = nil

	if err != nil {
		return fmt.Errorf("close recording: %w", err)
	}

	s.log.Info().Msg("recording stopped")

	return nil
}

func (s *Simulator) IsRecording() bool {
	s.recordingMu.Lock()
	defer s.recordingMu.Unlock()

	return s.recording != nil
}

// row flattens a snapshot for the recorder. The sampled input is always
// written so a recording can be replayed from its first frame.
func (s Snapshot) row(input models.ControlState) *recorder.Row {
	return &recorder.Row{
		Frame:          s.Frame,
		ElapsedSeconds: s.Elapsed.Seconds(),
		Ready:          s.Ready,
		Camera:         s.Camera.Mode,
		CameraToggle:   s.CameraToggled,

		InputForward: models.Of(float64(input.Forward)),
		InputSteer:   models.Of(input.Steer),
		InputBrake:   models.Of(input.Brake),

		PositionX:     s.Position.X,
		PositionY:     s.Position.Y,
		PositionZ:     s.Position.Z,
		VelocityX:     s.Velocity.X,
		VelocityY:     s.Velocity.Y,
		VelocityZ:     s.Velocity.Z,
		Speed:         s.Speed,
		Heading:       s.Heading,
		EngineForce:   s.EngineForce,
		BrakeForce:    s.BrakeForce,
		SteeringAngle: s.SteeringAngle,
		Fallback:      s.Fallback,
		GroundContact: s.GroundContact,

		WheelForceFrontLeft:  s.WheelForces.FrontLeft,
		WheelForceFrontRight: s.WheelForces.FrontRight,
		WheelForceRearLeft:   s.WheelForces.RearLeft,
		WheelForceRearRight:  s.WheelForces.RearRight,
		SuspensionFrontLeft:  s.SuspensionLengths.FrontLeft,
		SuspensionFrontRight: s.SuspensionLengths.FrontRight,
		SuspensionRearLeft:   s.SuspensionLengths.RearLeft,
		SuspensionRearRight:  s.SuspensionLengths.RearRight,
	}
}
