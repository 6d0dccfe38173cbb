package input

import (
	"time"

	"github.com/wandip/drivesim/pkg/models"
)

// Frame is what an input source knows about the frame it is sampled for.
type Frame struct {
	Number   uint64
	Elapsed  time.Duration
	Ready    bool
	Speed    float64
	Position [3]float64
	Yaw      float64
}

// Sample is the input for one frame.
type Sample struct {
	Control      models.ControlState
	ToggleCamera bool
}

// Source produces one Sample per frame. Sources that run out return io.EOF.
type Source interface {
	Next(frame Frame) (Sample, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(frame Frame) (Sample, error)

func (f SourceFunc) Next(frame Frame) (Sample, error) {
	return f(frame)
}

// Idle never touches the controls.
var Idle Source = SourceFunc(func(Frame) (Sample, error) {
	return Sample{}, nil
})
