package visual

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/wandip/drivesim/internal/physics"
	"github.com/wandip/drivesim/pkg/models"
	"github.com/wandip/drivesim/pkg/scene"
	"github.com/wandip/drivesim/pkg/vehicles"
)

// PoseSource is anything that can report the chassis pose and wheel state.
type PoseSource interface {
	ReadTransform() physics.Transform
	Wheels() []physics.WheelState
}

// Synchronizer mirrors the physical vehicle onto its scene nodes.
type Synchronizer struct {
	scene       scene.Scene
	wheels      map[models.WheelSlot]scene.WheelNode
	placeholder physics.Transform
	restOffsets models.CornerSet
	mounts      map[models.WheelSlot]mgl64.Vec3
	center      mgl64.Vec3
}

// SyncOption configures a Synchronizer.
type SyncOption func(s *Synchronizer)

// WithColliderCenter tells the synchronizer the physics body sits at center in
// the vehicle node's frame, as placed by physics.WithChassisOffset.
func WithColliderCenter(center mgl64.Vec3) SyncOption {
	return func(s *Synchronizer) {
		s.center = center
	}
}

// NewSynchronizer requires a wheel node for every slot. The placeholder is the
// kinematic pose shown until physics is ready.
func NewSynchronizer(vehicleScene scene.Scene, vehicle vehicles.Vehicle, placeholder physics.Transform, opts ...SyncOption) (*Synchronizer, error) {
	wheels := make(map[models.WheelSlot]scene.WheelNode, len(vehicleScene.Wheels))
	for _, wheel := range vehicleScene.Wheels {
		wheels[wheel.Slot()] = wheel
	}

	mounts := make(map[models.WheelSlot]mgl64.Vec3, len(models.WheelSlots))

	for _, slot := range models.WheelSlots {
		if _, ok := wheels[slot]; !ok {
			return nil, fmt.Errorf("%w: %s", scene.ErrMissingWheel, slot)
		}

		mounts[slot] = vehicle.WheelMount(slot)
	}

	synchronizer := &Synchronizer{
		scene:       vehicleScene,
		wheels:      wheels,
		placeholder: placeholder,
		mounts:      mounts,
		restOffsets: models.CornerSet{
			FrontLeft:  vehicle.SuspensionRestLength,
			FrontRight: vehicle.SuspensionRestLength,
			RearLeft:   vehicle.SuspensionRestLength,
			RearRight:  vehicle.SuspensionRestLength,
		},
	}

	for _, opt := range opts {
		opt(synchronizer)
	}

	return synchronizer, nil
}

// Sync copies the chassis pose to the vehicle node and each wheel's mount
// offset to its node. Steering reaches the front wheels only. The returned
// transform is the vehicle node's pose.
func (s *Synchronizer) Sync(source PoseSource) physics.Transform {
	transform := source.ReadTransform()
	transform.Position = transform.Position.Sub(transform.Rotation.Rotate(s.center))
	s.apply(transform)

	for _, state := range source.Wheels() {
		node, ok := s.wheels[state.Slot]
		if !ok {
			continue
		}

		node.SetOffset(wheelOffset(state.Mount.Add(s.center), state.SuspensionLength))
		node.SetSpin(state.Rotation)

		if state.Slot.IsFront() {
			node.SetSteering(state.Steering)
		}
	}

	return transform
}

// SyncPlaceholder drives the vehicle node from the placeholder pose so the
// camera and HUD always have a valid transform.
func (s *Synchronizer) SyncPlaceholder() physics.Transform {
	s.apply(s.placeholder)

	for slot, node := range s.wheels {
		node.SetOffset(wheelOffset(s.mounts[slot], s.restOffsets.Get(slot)))
		node.SetSteering(0)
	}

	return s.placeholder
}

// Placeholder returns the pose shown before physics is ready.
func (s *Synchronizer) Placeholder() physics.Transform {
	return s.placeholder
}

func (s *Synchronizer) apply(transform physics.Transform) {
	s.scene.Vehicle.SetPosition(transform.Position)
	s.scene.Vehicle.SetRotation(transform.Rotation)
}

func wheelOffset(mount mgl64.Vec3, suspensionLength float64) mgl64.Vec3 {
	return mount.Sub(mgl64.Vec3{0, suspensionLength, 0})
}
