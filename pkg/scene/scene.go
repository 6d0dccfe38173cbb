// Package scene holds the visual contract a host implements to show the
// simulated vehicle: a vehicle node, four wheel nodes and the authored parts
// the chassis collider is sized from.
package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/wandip/drivesim/pkg/models"
	"github.com/wandip/drivesim/pkg/vehicles"
)

const minBoundsExtent = 1e-4

var (
	ErrDegenerateGeometry = errors.New("vehicle geometry is degenerate")
	ErrMissingWheel       = errors.New("scene has no wheel node for slot")
)

// PartKind classifies authored vehicle geometry.
type PartKind int

const (
	PartBody PartKind = iota
	PartWheel
	PartAppendage
)

func (k PartKind) String() string {
	switch k {
	case PartBody:
		return "body"
	case PartWheel:
		return "wheel"
	case PartAppendage:
		return "appendage"
	}

	return "unknown"
}

// Part is an axis-aligned piece of authored geometry in vehicle-local space.
type Part struct {
	Name string
	Kind PartKind
	Min  mgl64.Vec3
	Max  mgl64.Vec3
}

// Bounds is an axis-aligned box.
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (b Bounds) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Bounds) HalfExtents() mgl64.Vec3 {
	return b.Size().Mul(0.5)
}

// ChassisBounds returns the bounding box of the body parts, excluding wheels
// and appendages such as a rear wing.
func ChassisBounds(parts []Part) (Bounds, error) {
	bounds := Bounds{
		Min: mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	found := false

	for _, part := range parts {
		if part.Kind != PartBody {
			continue
		}

		found = true

		for i := range 3 {
			bounds.Min[i] = math.Min(bounds.Min[i], math.Min(part.Min[i], part.Max[i]))
			bounds.Max[i] = math.Max(bounds.Max[i], math.Max(part.Min[i], part.Max[i]))
		}
	}

	if !found {
		return Bounds{}, fmt.Errorf("%w: no body parts", ErrDegenerateGeometry)
	}

	size := bounds.Size()
	for i := range 3 {
		if math.IsNaN(size[i]) || math.IsInf(size[i], 0) || size[i] < minBoundsExtent {
			return Bounds{}, fmt.Errorf("%w: size %v", ErrDegenerateGeometry, size)
		}
	}

	return bounds, nil
}

// Node is a scene object with a world transform.
type Node interface {
	SetPosition(position mgl64.Vec3)
	SetRotation(rotation mgl64.Quat)
}

// WheelNode is a wheel attached to the vehicle node.
type WheelNode interface {
	Slot() models.WheelSlot
	SetOffset(offset mgl64.Vec3)
	SetSteering(angle float64)
	SetSpin(angle float64)
}

// Scene is the visual side of a vehicle. Hosts provide their own Node and
// WheelNode implementations.
type Scene struct {
	Vehicle Node
	Wheels  []WheelNode
	Parts   []Part
}

// MemoryNode is an in-memory Node for headless runs and tests.
type MemoryNode struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

func NewMemoryNode() *MemoryNode {
	return &MemoryNode{Rotation: mgl64.QuatIdent()}
}

func (n *MemoryNode) SetPosition(position mgl64.Vec3) {
	n.Position = position
}

func (n *MemoryNode) SetRotation(rotation mgl64.Quat) {
	n.Rotation = rotation
}

// MemoryWheel is an in-memory WheelNode.
type MemoryWheel struct {
	Offset   mgl64.Vec3
	Steering float64
	Spin     float64
	slot     models.WheelSlot
}

func NewMemoryWheel(slot models.WheelSlot) *MemoryWheel {
	return &MemoryWheel{slot: slot}
}

func (w *MemoryWheel) Slot() models.WheelSlot {
	return w.slot
}

func (w *MemoryWheel) SetOffset(offset mgl64.Vec3) {
	w.Offset = offset
}

func (w *MemoryWheel) SetSteering(angle float64) {
	w.Steering = angle
}

func (w *MemoryWheel) SetSpin(angle float64) {
	w.Spin = angle
}

// Build authors a box-model scene for a vehicle preset. The body part comes
// from the preset dimensions, wheels sit at the suspension mounts and a rear
// wing is added as an appendage.
func Build(vehicle vehicles.Vehicle) Scene {
	half := vehicle.HalfExtents()
	parts := []Part{{Name: "body", Kind: PartBody, Min: half.Mul(-1), Max: half}}
	wheels := make([]WheelNode, 0, len(models.WheelSlots))

	for _, slot := range models.WheelSlots {
		centre := vehicle.WheelMount(slot).Sub(mgl64.Vec3{0, vehicle.SuspensionRestLength, 0})
		extent := mgl64.Vec3{vehicle.WheelWidth / 2, vehicle.WheelRadius, vehicle.WheelRadius}

		parts = append(parts, Part{
			Name: "wheel_" + slot.String(),
			Kind: PartWheel,
			Min:  centre.Sub(extent),
			Max:  centre.Add(extent),
		})
		wheels = append(wheels, NewMemoryWheel(slot))
	}

	parts = append(parts, Part{
		Name: "rear_wing",
		Kind: PartAppendage,
		Min:  mgl64.Vec3{-half.X() * 0.9, half.Y(), half.Z() * 0.8},
		Max:  mgl64.Vec3{half.X() * 0.9, half.Y() + 0.25, half.Z()},
	})

	return Scene{
		Vehicle: NewMemoryNode(),
		Wheels:  wheels,
		Parts:   parts,
	}
}
