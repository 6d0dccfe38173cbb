package visual_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/suite"
	"github.com/wandip/drivesim/internal/physics"
	"github.com/wandip/drivesim/internal/visual"
	"github.com/wandip/drivesim/pkg/models"
	"github.com/wandip/drivesim/pkg/scene"
	"github.com/wandip/drivesim/pkg/vehicles"
)

type stubPoseSource struct {
	transform physics.Transform
	wheels    []physics.WheelState
}

func (s stubPoseSource) ReadTransform() physics.Transform {
	return s.transform
}

func (s stubPoseSource) Wheels() []physics.WheelState {
	return s.wheels
}

type VisualTestSuite struct {
	suite.Suite
	vehicle vehicles.Vehicle
	scene   scene.Scene
	sync    *visual.Synchronizer
}

func TestVisualTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(VisualTestSuite))
}

func (suite *VisualTestSuite) SetupTest() {
	db, err := vehicles.NewDB(nil)
	suite.Require().NoError(err)

	suite.vehicle, err = db.GetVehicleByID(vehicles.DefaultVehicleID)
	suite.Require().NoError(err)

	suite.scene = scene.Build(suite.vehicle)

	placeholder := physics.Transform{Position: mgl64.Vec3{0, 1, 0}, Rotation: mgl64.QuatIdent()}
	suite.sync, err = visual.NewSynchronizer(suite.scene, suite.vehicle, placeholder)
	suite.Require().NoError(err)
}

func (suite *VisualTestSuite) wheel(slot models.WheelSlot) *scene.MemoryWheel {
	for _, wheel := range suite.scene.Wheels {
		if wheel.Slot() == slot {
			return wheel.(*scene.MemoryWheel)
		}
	}

	suite.FailNow("wheel not found", slot.String())

	return nil
}

func (suite *VisualTestSuite) TestSynchronizerRequiresEveryWheel() {
	// Arrange
	vehicleScene := scene.Build(suite.vehicle)
	vehicleScene.Wheels = vehicleScene.Wheels[:3]

	// Act
	_, err := visual.NewSynchronizer(vehicleScene, suite.vehicle, physics.IdentityTransform())

	// Assert
	suite.ErrorIs(err, scene.ErrMissingWheel)
}

func (suite *VisualTestSuite) TestSyncCopiesChassisPoseAndFrontSteering() {
	// Arrange
	rotation := mgl64.QuatRotate(0.4, mgl64.Vec3{0, 1, 0})
	source := stubPoseSource{
		transform: physics.Transform{Position: mgl64.Vec3{3, 0.75, -8}, Rotation: rotation},
	}

	for _, slot := range models.WheelSlots {
		source.wheels = append(source.wheels, physics.WheelState{
			Slot:             slot,
			Mount:            suite.vehicle.WheelMount(slot),
			Steering:         0.25,
			SuspensionLength: 0.3,
		})
	}

	// Act
	gotTransform := suite.sync.Sync(source)

	// Assert
	node := suite.scene.Vehicle.(*scene.MemoryNode)
	suite.Equal(source.transform, gotTransform)
	suite.Equal(mgl64.Vec3{3, 0.75, -8}, node.Position)
	suite.Equal(rotation, node.Rotation)

	for _, slot := range models.WheelSlots {
		wheel := suite.wheel(slot)
		wantOffset := suite.vehicle.WheelMount(slot).Sub(mgl64.Vec3{0, 0.3, 0})

		suite.True(wantOffset.ApproxEqual(wheel.Offset), slot.String())

		if slot.IsFront() {
			suite.Equal(0.25, wheel.Steering, slot.String())
		} else {
			suite.Equal(0.0, wheel.Steering, slot.String())
		}
	}
}

func (suite *VisualTestSuite) TestSyncMapsOffCentreColliderBackToVehicleNode() {
	// Arrange
	center := mgl64.Vec3{0, -0.2, 0.5}
	vehicleScene := scene.Build(suite.vehicle)
	sync, err := visual.NewSynchronizer(vehicleScene, suite.vehicle, physics.IdentityTransform(), visual.WithColliderCenter(center))
	suite.Require().NoError(err)

	rotation := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	source := stubPoseSource{
		transform: physics.Transform{Position: mgl64.Vec3{3, 0.55, -8}, Rotation: rotation},
	}

	for _, slot := range models.WheelSlots {
		source.wheels = append(source.wheels, physics.WheelState{
			Slot:             slot,
			Mount:            suite.vehicle.WheelMount(slot).Sub(center),
			SuspensionLength: 0.3,
		})
	}

	// Act
	gotTransform := sync.Sync(source)

	// Assert
	node := vehicleScene.Vehicle.(*scene.MemoryNode)
	suite.True(mgl64.Vec3{2.5, 0.75, -8}.ApproxEqual(gotTransform.Position))
	suite.Equal(gotTransform.Position, node.Position)
	suite.Equal(rotation, node.Rotation)

	for _, wheel := range vehicleScene.Wheels {
		wantOffset := suite.vehicle.WheelMount(wheel.Slot()).Sub(mgl64.Vec3{0, 0.3, 0})
		suite.True(wantOffset.ApproxEqual(wheel.(*scene.MemoryWheel).Offset), wheel.Slot().String())
	}
}

func (suite *VisualTestSuite) TestSyncPlaceholderHoldsKinematicPose() {
	// Act
	gotTransform := suite.sync.SyncPlaceholder()

	// Assert
	node := suite.scene.Vehicle.(*scene.MemoryNode)
	suite.Equal(suite.sync.Placeholder(), gotTransform)
	suite.Equal(mgl64.Vec3{0, 1, 0}, node.Position)
	suite.Equal(mgl64.QuatIdent(), node.Rotation)
	suite.Equal(0.0, suite.wheel(models.FrontLeft).Steering)
}
