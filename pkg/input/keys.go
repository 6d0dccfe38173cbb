package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/wandip/drivesim/pkg/models"
)

// Key is a discrete control key.
type Key int

const (
	KeyAccelerate Key = iota
	KeyReverse
	KeyLeft
	KeyRight
	KeyBrake
	KeyCamera
)

var ErrUnknownKey = errors.New("unknown key")

var keyNames = map[string]Key{
	"w":          KeyAccelerate,
	"up":         KeyAccelerate,
	"accelerate": KeyAccelerate,
	"s":          KeyReverse,
	"down":       KeyReverse,
	"reverse":    KeyReverse,
	"a":          KeyLeft,
	"left":       KeyLeft,
	"d":          KeyRight,
	"right":      KeyRight,
	"space":      KeyBrake,
	"brake":      KeyBrake,
	"c":          KeyCamera,
	"camera":     KeyCamera,
}

// ParseKey maps a key name such as "w", "left" or "space" to a Key.
func ParseKey(name string) (Key, error) {
	key, ok := keyNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}

	return key, nil
}

// wheelDeadzone is the touch wheel angle, in radians, below which keyboard steering wins
const wheelDeadzone = 0.02

// Keys turns held keys and an optional touch steering wheel into control
// state. Press and Release may be called from any goroutine.
type Keys struct {
	mu            sync.Mutex
	held          map[Key]bool
	toggle        bool
	wheelAngle    float64
	maxWheelAngle float64
}

// NewKeys creates a key source. maxWheelAngle is the touch wheel rotation that
// maps to full steering lock.
func NewKeys(maxWheelAngle float64) *Keys {
	return &Keys{
		held:          map[Key]bool{},
		maxWheelAngle: maxWheelAngle,
	}
}

func (k *Keys) Press(key Key) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if key == KeyCamera && !k.held[KeyCamera] {
		k.toggle = true
	}

	k.held[key] = true
}

func (k *Keys) Release(key Key) {
	k.mu.Lock()
	defer k.mu.Unlock()

	delete(k.held, key)
}

// SetWheelAngle records the touch steering wheel rotation; positive turns left.
func (k *Keys) SetWheelAngle(angle float64) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.wheelAngle = angle
}

func (k *Keys) Next(Frame) (Sample, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	state := models.ControlState{}

	if k.held[KeyAccelerate] {
		state.Forward++
	}

	if k.held[KeyReverse] {
		state.Forward--
	}

	if k.held[KeyLeft] {
		state.Steer++
	}

	if k.held[KeyRight] {
		state.Steer--
	}

	if k.held[KeyBrake] {
		state.Brake = 1
	}

	if k.maxWheelAngle > 0 && math.Abs(k.wheelAngle) > wheelDeadzone {
		state.Steer = k.wheelAngle / k.maxWheelAngle
	}

	sample := Sample{Control: state.Clamp(), ToggleCamera: k.toggle}
	k.toggle = false

	return sample, nil
}

// Apply runs one line of key commands. "+w" presses a key, "-w" releases it, a
// bare "c" taps it and "wheel=0.3" sets the touch wheel angle. Every valid
// token is applied even when others fail.
func (k *Keys) Apply(line string) error {
	var errs []error

	for _, token := range strings.Fields(line) {
		if angle, ok := strings.CutPrefix(token, "wheel="); ok {
			value, err := strconv.ParseFloat(angle, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("wheel angle %q: %w", angle, err))

				continue
			}

			k.SetWheelAngle(value)

			continue
		}

		name := strings.TrimLeft(token, "+-")

		key, err := ParseKey(name)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		switch token[0] {
		case '+':
			k.Press(key)
		case '-':
			k.Release(key)
		default:
			k.Press(key)
			k.Release(key)
		}
	}

	return errors.Join(errs...)
}

// Feed applies r line by line until it is exhausted. Bad lines go to onError
// and do not stop the feed.
func (k *Keys) Feed(r io.Reader, onError func(error)) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if err := k.Apply(scanner.Text()); err != nil && onError != nil {
			onError(err)
		}
	}

	return scanner.Err()
}
