package input

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dop251/goja"

	"github.com/wandip/drivesim/pkg/models"
)

const controlFunction = "control"

var ErrControlFunctionNotFound = errors.New("input script does not define a control function")

// Script drives the vehicle from JavaScript. The script must define
//
//	function control(frame, state) { return {forward: 1, steer: 0, brake: 0, camera: false} }
//
// where state carries elapsed, ready, speed, x, y, z and yaw.
type Script struct {
	vm      *goja.Runtime
	control goja.Callable
}

type scriptResult struct {
	Forward float64 `json:"forward"`
	Steer   float64 `json:"steer"`
	Brake   float64 `json:"brake"`
	Camera  bool    `json:"camera"`
}

func NewScript(source string) (*Script, error) {
	jsvm := goja.New()

	_, err := jsvm.RunString(source)
	if err != nil {
		return nil, fmt.Errorf("executing input script: %w", err)
	}

	control, ok := goja.AssertFunction(jsvm.Get(controlFunction))
	if !ok {
		return nil, ErrControlFunctionNotFound
	}

	return &Script{vm: jsvm, control: control}, nil
}

// LoadScript reads and compiles a script file.
func LoadScript(path string) (*Script, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input script: %w", err)
	}

	return NewScript(string(source))
}

func (s *Script) Next(frame Frame) (Sample, error) {
	state := map[string]any{
		"elapsed": frame.Elapsed.Seconds(),
		"ready":   frame.Ready,
		"speed":   frame.Speed,
		"x":       frame.Position[0],
		"y":       frame.Position[1],
		"z":       frame.Position[2],
		"yaw":     frame.Yaw,
	}

	value, err := s.control(goja.Undefined(), s.vm.ToValue(frame.Number), s.vm.ToValue(state))
	if err != nil {
		return Sample{}, fmt.Errorf("calling %s: %w", controlFunction, err)
	}

	if goja.IsUndefined(value) || goja.IsNull(value) {
		return Sample{}, nil
	}

	resultJSON, err := json.Marshal(value.Export())
	if err != nil {
		return Sample{}, fmt.Errorf("converting script result to JSON: %w", err)
	}

	var result scriptResult

	err = json.Unmarshal(resultJSON, &result)
	if err != nil {
		return Sample{}, fmt.Errorf("parsing script result: %w", err)
	}

	forward := 0
	switch {
	case result.Forward > 0:
		forward = 1
	case result.Forward < 0:
		forward = -1
	}

	control := models.ControlState{Forward: forward, Steer: result.Steer, Brake: result.Brake}

	return Sample{Control: control.Clamp(), ToggleCamera: result.Camera}, nil
}
