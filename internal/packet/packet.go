// Package packet encodes simulation frames into the fixed little endian
// layout broadcast to telemetry listeners.
//
//	0x00 u4  magic
//	0x04 u4  frame number
//	0x08 u1  flags (ready, ground contact, impulse fallback, camera transitioning)
//	0x09 u1  camera mode
//	0x0A u2  reserved
//	0x0C f4  position x, y, z
//	0x18 f4  velocity x, y, z
//	0x24 f4  speed
//	0x28 f4  engine force
//	0x2C f4  brake force
//	0x30 f4  steering angle
//	0x34 f4  camera transition progress
//	0x38 f4  input forward
//	0x3C f4  input steer
//	0x40 u4  cipher IV
//	0x44 f4  input brake
//	0x48 f4  wheel forces FL, FR, RL, RR
//	0x58 f4  suspension lengths FL, FR, RL, RR
//	0x68 f4  rotation quaternion x, y, z, w
//
// Unavailable readings travel as NaN.
package packet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"

	"github.com/wandip/drivesim/internal/salsa20"
	"github.com/wandip/drivesim/pkg/models"
)

// Size is the length of an encoded packet in bytes
const Size = 0x78

const (
	flagReady uint8 = 1 << iota
	flagGroundContact
	flagFallback
	flagTransitioning
)

var (
	ErrPacketTooShort = errors.New("packet is too short")
	ErrInvalidMagic   = errors.New("invalid packet magic")
)

// Packet is one broadcast simulation frame.
type Packet struct {
	Frame          uint32
	Ready          bool
	GroundContact  bool
	Fallback       bool
	Transitioning  bool
	CameraMode     uint8
	CameraProgress float64

	Position          models.VectorReading
	Velocity          models.VectorReading
	Speed             models.Reading
	EngineForce       models.Reading
	BrakeForce        models.Reading
	SteeringAngle     models.Reading
	Input             models.ControlReading
	WheelForces       models.CornerReading
	SuspensionLengths models.CornerReading
	Rotation          models.QuaternionReading
}

type writer struct {
	buf []byte
	pos int
}

func (w *writer) u4(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.pos:], v)
	w.pos += 4
}

func (w *writer) f4(r models.Reading) {
	v, ok := r.Get()
	if !ok {
		v = math.NaN()
	}

	w.u4(math.Float32bits(float32(v)))
}

func (w *writer) corners(c models.CornerReading) {
	w.f4(c.FrontLeft)
	w.f4(c.FrontRight)
	w.f4(c.RearLeft)
	w.f4(c.RearRight)
}

// Encode serialises the packet. The IV slot is left zero for the cipher.
func (p Packet) Encode() []byte {
	w := &writer{buf: make([]byte, Size)}

	w.u4(salsa20.Magic)
	w.u4(p.Frame)

	var flags uint8
	if p.Ready {
		flags |= flagReady
	}

	if p.GroundContact {
		flags |= flagGroundContact
	}

	if p.Fallback {
		flags |= flagFallback
	}

	if p.Transitioning {
		flags |= flagTransitioning
	}

	w.buf[0x08] = flags
	w.buf[0x09] = p.CameraMode
	w.pos = 0x0C

	w.f4(p.Position.X)
	w.f4(p.Position.Y)
	w.f4(p.Position.Z)
	w.f4(p.Velocity.X)
	w.f4(p.Velocity.Y)
	w.f4(p.Velocity.Z)
	w.f4(p.Speed)
	w.f4(p.EngineForce)
	w.f4(p.BrakeForce)
	w.f4(p.SteeringAngle)
	w.f4(models.Of(p.CameraProgress))
	w.f4(p.Input.Forward)
	w.f4(p.Input.Steer)
	w.u4(0)
	w.f4(p.Input.Brake)
	w.corners(p.WheelForces)
	w.corners(p.SuspensionLengths)
	w.f4(p.Rotation.X)
	w.f4(p.Rotation.Y)
	w.f4(p.Rotation.Z)
	w.f4(p.Rotation.W)

	return w.buf
}

type reader struct {
	stream *kaitai.Stream
	err    error
}

func (r *reader) u4() uint32 {
	if r.err != nil {
		return 0
	}

	var v uint32
	v, r.err = r.stream.ReadU4le()

	return v
}

func (r *reader) u1() uint8 {
	if r.err != nil {
		return 0
	}

	var v uint8
	v, r.err = r.stream.ReadU1()

	return v
}

func (r *reader) f4() models.Reading {
	if r.err != nil {
		return models.NA()
	}

	var v float32
	v, r.err = r.stream.ReadF4le()

	return models.Of(float64(v))
}

func (r *reader) vector() models.VectorReading {
	return models.VectorReading{X: r.f4(), Y: r.f4(), Z: r.f4()}
}

func (r *reader) corners() models.CornerReading {
	return models.CornerReading{FrontLeft: r.f4(), FrontRight: r.f4(), RearLeft: r.f4(), RearRight: r.f4()}
}

// Decode parses a deciphered packet. Readings of a packet sent before the
// simulation was ready are always unavailable.
func Decode(data []byte) (Packet, error) {
	if len(data) < Size {
		return Packet{}, fmt.Errorf("%w: %d < %d", ErrPacketTooShort, len(data), Size)
	}

	r := &reader{stream: kaitai.NewStream(bytes.NewReader(data[:Size]))}

	magic := r.u4()
	if r.err == nil && magic != salsa20.Magic {
		return Packet{}, fmt.Errorf("%w: %x", ErrInvalidMagic, magic)
	}

	p := Packet{Frame: r.u4()}

	flags := r.u1()
	p.Ready = flags&flagReady != 0
	p.GroundContact = flags&flagGroundContact != 0
	p.Fallback = flags&flagFallback != 0
	p.Transitioning = flags&flagTransitioning != 0
	p.CameraMode = r.u1()
	r.u1()
	r.u1()

	p.Position = r.vector()
	p.Velocity = r.vector()
	p.Speed = r.f4()
	p.EngineForce = r.f4()
	p.BrakeForce = r.f4()
	p.SteeringAngle = r.f4()
	p.CameraProgress = r.f4().Float()
	p.Input.Forward = r.f4()
	p.Input.Steer = r.f4()
	r.u4()
	p.Input.Brake = r.f4()
	p.WheelForces = r.corners()
	p.SuspensionLengths = r.corners()
	p.Rotation = models.QuaternionReading{X: r.f4(), Y: r.f4(), Z: r.f4(), W: r.f4()}

	if r.err != nil {
		return Packet{}, fmt.Errorf("read packet: %w", r.err)
	}

	if !p.Ready {
		camera, progress, transitioning := p.CameraMode, p.CameraProgress, p.Transitioning
		p = Packet{Frame: p.Frame, CameraMode: camera, CameraProgress: progress, Transitioning: transitioning}
	}

	return p, nil
}
