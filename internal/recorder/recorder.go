// Package recorder persists per-frame simulation telemetry.
package recorder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wandip/drivesim/pkg/models"
)

var ErrUnsupportedFormat = errors.New("unsupported recording file extension")

// Row is one recorded frame. Readings that were unavailable are written as
// N/A in CSV and NULL in SQLite.
type Row struct {
	ID             uint    `csv:"-" gorm:"primaryKey"`
	Frame          uint64  `csv:"frame" gorm:"index"`
	ElapsedSeconds float64 `csv:"elapsed"`
	Ready          bool    `csv:"ready"`
	Camera         string  `csv:"camera"`
	CameraToggle   bool    `csv:"camera_toggle"`

	InputForward models.Reading `csv:"input_forward"`
	InputSteer   models.Reading `csv:"input_steer"`
	InputBrake   models.Reading `csv:"input_brake"`

	PositionX     models.Reading `csv:"position_x"`
	PositionY     models.Reading `csv:"position_y"`
	PositionZ     models.Reading `csv:"position_z"`
	VelocityX     models.Reading `csv:"velocity_x"`
	VelocityY     models.Reading `csv:"velocity_y"`
	VelocityZ     models.Reading `csv:"velocity_z"`
	Speed         models.Reading `csv:"speed"`
	Heading       models.Reading `csv:"heading"`
	EngineForce   models.Reading `csv:"engine_force"`
	BrakeForce    models.Reading `csv:"brake_force"`
	SteeringAngle models.Reading `csv:"steering_angle"`
	Fallback      bool           `csv:"fallback"`
	GroundContact bool           `csv:"ground_contact"`

	WheelForceFrontLeft  models.Reading `csv:"wheel_force_fl"`
	WheelForceFrontRight models.Reading `csv:"wheel_force_fr"`
	WheelForceRearLeft   models.Reading `csv:"wheel_force_rl"`
	WheelForceRearRight  models.Reading `csv:"wheel_force_rr"`
	SuspensionFrontLeft  models.Reading `csv:"suspension_fl"`
	SuspensionFrontRight models.Reading `csv:"suspension_fr"`
	SuspensionRearLeft   models.Reading `csv:"suspension_rl"`
	SuspensionRearRight  models.Reading `csv:"suspension_rr"`
}

func (Row) TableName() string {
	return "frames"
}

// Backend stores recorded rows. Init is called once before the first Record.
type Backend interface {
	Init() error
	Record(row *Row) error
	Close() error
}

// New picks a backend from the file extension: .csv, .csv.gz, .db or .sqlite.
// The path "memory" keeps rows in memory.
func New(path string) (Backend, error) {
	switch {
	case path == "memory":
		return NewMemory(), nil
	case strings.HasSuffix(path, ".csv.gz"):
		return NewCSV(path, true), nil
	case strings.HasSuffix(path, ".csv"):
		return NewCSV(path, false), nil
	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".sqlite"):
		return NewSQLite(path), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}
