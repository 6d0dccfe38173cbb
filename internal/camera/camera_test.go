package camera_test

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/suite"
	"github.com/wandip/drivesim/internal/camera"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

type CameraTestSuite struct {
	suite.Suite
	clock      *fakeClock
	rig        *camera.Camera
	controller *camera.Controller
	position   mgl64.Vec3
	yaw        float64
}

func TestCameraTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(CameraTestSuite))
}

func (suite *CameraTestSuite) SetupTest() {
	suite.clock = &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	suite.rig = &camera.Camera{}
	suite.controller = camera.New(camera.DefaultConfig(), suite.rig, camera.WithClock(suite.clock.Now))
	suite.position = mgl64.Vec3{4, 0.75, -10}
	suite.yaw = 0.3
}

func (suite *CameraTestSuite) TestInitialStateIsBehindCar() {
	// Act
	gotValue := suite.controller.State()

	// Assert
	suite.Equal(camera.State{Mode: camera.BehindCar}, gotValue)
	suite.InDelta(16.0/9.0, suite.rig.Aspect, 1e-12)
}

func (suite *CameraTestSuite) TestToggleThenHalfSecondCommitsTopView() {
	// Arrange
	suite.Require().True(suite.controller.Toggle())
	suite.Equal(camera.State{
		Mode:          camera.BehindCar,
		Transitioning: true,
		From:          camera.BehindCar,
		To:            camera.TopView,
		Progress:      0,
	}, suite.controller.State())

	// Act
	pose := suite.controller.Update(suite.position, suite.yaw, 0.5)

	// Assert
	state := suite.controller.State()
	suite.Equal(camera.TopView, state.Mode)
	suite.False(state.Transitioning)
	suite.Equal(1.0, state.Progress)
	suite.True(suite.controller.TopViewPose(suite.position, suite.yaw).Position.ApproxEqual(pose.Position))
	suite.Equal(pose.Position, suite.rig.Position)
	suite.Equal(pose.Target, suite.rig.Target)
}

func (suite *CameraTestSuite) TestZeroTransitionDurationUsesDefaultBlend() {
	// Arrange
	cfg := camera.DefaultConfig()
	cfg.TransitionDuration = 0
	controller := camera.New(cfg, suite.rig, camera.WithClock(suite.clock.Now))
	suite.Require().True(controller.Toggle())

	// Act
	half := controller.Update(suite.position, suite.yaw, 0.25)
	midway := controller.State()
	controller.Update(suite.position, suite.yaw, 0.25)

	// Assert
	suite.False(math.IsNaN(half.Position.X()))
	suite.InDelta(0.5, midway.Progress, 1e-9)
	suite.True(midway.Transitioning)
	suite.Equal(camera.State{Mode: camera.TopView, From: camera.BehindCar, To: camera.TopView, Progress: 1}, controller.State())
}

func (suite *CameraTestSuite) TestDoubleToggleWithinDebounceFlipsOnce() {
	// Arrange
	suite.Require().True(suite.controller.Toggle())
	suite.controller.Update(suite.position, suite.yaw, 0.5)
	suite.clock.Advance(200 * time.Millisecond)

	// Act
	accepted := suite.controller.Toggle()

	// Assert
	suite.False(accepted)
	suite.Equal(camera.State{Mode: camera.TopView, From: camera.BehindCar, To: camera.TopView, Progress: 1}, suite.controller.State())
}

func (suite *CameraTestSuite) TestToggleIgnoredWhileTransitioning() {
	// Arrange
	suite.Require().True(suite.controller.Toggle())
	suite.controller.Update(suite.position, suite.yaw, 0.1)
	suite.clock.Advance(time.Second)

	// Act
	accepted := suite.controller.Toggle()

	// Assert
	suite.False(accepted)
	suite.Equal(camera.TopView, suite.controller.State().To)
	suite.True(suite.controller.State().Transitioning)
}

func (suite *CameraTestSuite) TestToggleAcceptedAfterDebounceElapses() {
	// Arrange
	suite.Require().True(suite.controller.Toggle())
	suite.controller.Update(suite.position, suite.yaw, 0.5)
	suite.clock.Advance(500 * time.Millisecond)

	// Act
	accepted := suite.controller.Toggle()

	// Assert
	suite.True(accepted)
	suite.Equal(camera.TopView, suite.controller.State().From)
	suite.Equal(camera.BehindCar, suite.controller.State().To)
}

func (suite *CameraTestSuite) TestTransitionProgressIsMonotoneAndEndsAtDestination() {
	// Arrange
	suite.Require().True(suite.controller.Toggle())
	start := suite.controller.Update(suite.position, suite.yaw, 0)
	suite.Equal(0.0, suite.controller.State().Progress)
	suite.True(suite.controller.BehindCarPose(suite.position, suite.yaw).Position.ApproxEqual(start.Position))

	previous := 0.0
	var pose camera.Pose

	// Act
	for suite.controller.State().Transitioning {
		pose = suite.controller.Update(suite.position, suite.yaw, 0.07)
		progress := suite.controller.State().Progress

		// Assert
		suite.GreaterOrEqual(progress, previous)
		suite.LessOrEqual(progress, 1.0)
		previous = progress
	}

	suite.Equal(1.0, previous)
	suite.True(suite.controller.TopViewPose(suite.position, suite.yaw).Position.ApproxEqual(pose.Position))
}

func (suite *CameraTestSuite) TestTransitionMidpointBlendsLinearly() {
	// Arrange
	behind := suite.controller.BehindCarPose(suite.position, suite.yaw)
	top := suite.controller.TopViewPose(suite.position, suite.yaw)
	suite.Require().True(suite.controller.Toggle())

	// Act
	pose := suite.controller.Update(suite.position, suite.yaw, 0.25)

	// Assert
	want := behind.Position.Add(top.Position).Mul(0.5)
	suite.True(want.ApproxEqualThreshold(pose.Position, 1e-9))
}

func (suite *CameraTestSuite) TestBehindCarSmoothsTowardChasePose() {
	// Arrange
	suite.controller.Update(suite.position, suite.yaw, 1.0/60)
	moved := suite.position.Add(mgl64.Vec3{0, 0, -10})
	want := suite.controller.BehindCarPose(moved, suite.yaw)
	before := suite.controller.Pose().Position.Sub(want.Position).Len()

	// Act
	pose := suite.controller.Update(moved, suite.yaw, 1.0/60)

	// Assert
	after := pose.Position.Sub(want.Position).Len()
	suite.InDelta(before*0.9, after, 1e-9)
}

func (suite *CameraTestSuite) TestBehindCarPoseSitsBehindHeading() {
	// Act
	pose := suite.controller.BehindCarPose(mgl64.Vec3{}, 0)

	// Assert
	suite.True(mgl64.Vec3{0, 2.5, 6}.ApproxEqual(pose.Position))
	suite.True(mgl64.Vec3{0, 0.5, -2}.ApproxEqual(pose.Target))
}

func (suite *CameraTestSuite) TestTopViewIsRigidAboveVehicle() {
	// Arrange
	suite.Require().True(suite.controller.Toggle())
	suite.controller.Update(suite.position, suite.yaw, 0.5)

	// Act
	pose := suite.controller.Update(suite.position.Add(mgl64.Vec3{5, 0, 0}), math.Pi, 1.0/60)

	// Assert
	suite.InDelta(9.0, pose.Position.X(), 1e-9)
	suite.InDelta(30.75, pose.Position.Y(), 1e-9)
	suite.InDelta(0.0, pose.Target.Y(), 1e-12)
}

func (suite *CameraTestSuite) TestResizeUpdatesAspect() {
	// Act
	suite.controller.Resize(800, 600)
	suite.controller.Resize(0, 600)

	// Assert
	suite.InDelta(800.0/600.0, suite.rig.Aspect, 1e-12)
}
