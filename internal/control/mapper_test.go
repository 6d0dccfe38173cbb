package control_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/wandip/drivesim/internal/control"
	"github.com/wandip/drivesim/pkg/models"
)

type recordingActuators struct {
	engine      map[models.WheelSlot]float64
	brake       map[models.WheelSlot]float64
	steering    map[models.WheelSlot]float64
	impulses    []float64
	engineGap   bool
	fallbackGap bool
}

func newRecordingActuators() *recordingActuators {
	return &recordingActuators{
		engine:   map[models.WheelSlot]float64{},
		brake:    map[models.WheelSlot]float64{},
		steering: map[models.WheelSlot]float64{},
	}
}

func (r *recordingActuators) SetEngineForce(slot models.WheelSlot, force float64) bool {
	if r.engineGap {
		return false
	}

	r.engine[slot] = force

	return true
}

func (r *recordingActuators) SetBrake(slot models.WheelSlot, force float64) bool {
	r.brake[slot] = force

	return true
}

func (r *recordingActuators) SetSteering(slot models.WheelSlot, angle float64) bool {
	r.steering[slot] = angle

	return true
}

func (r *recordingActuators) ImpulseForward(magnitude float64) bool {
	if r.fallbackGap {
		return false
	}

	r.impulses = append(r.impulses, magnitude)

	return true
}

type MapperTestSuite struct {
	suite.Suite
	cfg    control.Config
	mapper *control.Mapper
}

func TestMapperTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(MapperTestSuite))
}

func (suite *MapperTestSuite) SetupTest() {
	suite.cfg = control.Config{
		EngineForceStep:      200,
		EngineForceMax:       2000,
		EngineForceMin:       -1000,
		EngineForceDecay:     0.95,
		BrakeForceStep:       250,
		BrakeForceMax:        2500,
		MaxSteerAngle:        0.5,
		SteerResponse:        0.2,
		FallbackImpulseScale: 0.1,
	}
	suite.mapper = control.NewMapper(suite.cfg)
}

func (suite *MapperTestSuite) TestEngineForceRampsByStepUntilMax() {
	// Arrange
	accelerate := models.ControlState{Forward: 1}

	for tick := 1; tick <= 15; tick++ {
		// Act
		cmd := suite.mapper.Update(accelerate)

		// Assert
		wantValue := math.Min(200*float64(tick), 2000)
		suite.Equal(wantValue, cmd.EngineForce, "tick %d", tick)
	}
}

func (suite *MapperTestSuite) TestEngineForceNeverExceedsBoundsInReverse() {
	// Arrange
	reverse := models.ControlState{Forward: -1}

	// Act
	var cmd control.Command
	for range 20 {
		cmd = suite.mapper.Update(reverse)
	}

	// Assert
	suite.Equal(-1000.0, cmd.EngineForce)
}

func (suite *MapperTestSuite) TestEngineForceDecaysStrictlyToExactlyZero() {
	// Arrange
	for range 10 {
		suite.mapper.Update(models.ControlState{Forward: 1})
	}

	previous := suite.mapper.Command().EngineForce
	suite.Require().Equal(2000.0, previous)

	// Act
	ticks := 0
	for previous != 0 {
		ticks++
		suite.Require().Less(ticks, 1000, "engine force never reached zero")

		current := suite.mapper.Update(models.ControlState{}).EngineForce

		// Assert
		suite.Less(current, previous)
		suite.GreaterOrEqual(current, 0.0)
		previous = current
	}

	suite.Equal(0.0, suite.mapper.Command().EngineForce)
}

func (suite *MapperTestSuite) TestBrakeRampsThenResetsInOneTick() {
	// Arrange
	braking := models.ControlState{Brake: 0.3}

	// Act
	var cmd control.Command
	for range 20 {
		cmd = suite.mapper.Update(braking)
		suite.GreaterOrEqual(cmd.BrakeForce, 0.0)
		suite.LessOrEqual(cmd.BrakeForce, suite.cfg.BrakeForceMax)
	}

	released := suite.mapper.Update(models.ControlState{})

	// Assert
	suite.Equal(2500.0, cmd.BrakeForce)
	suite.Equal(0.0, released.BrakeForce)
}

func (suite *MapperTestSuite) TestSteeringMovesTowardTargetByResponseFactor() {
	// Act
	cmd := suite.mapper.Update(models.ControlState{Steer: 1})

	// Assert
	suite.InDelta(0.5*0.2, cmd.SteeringAngle, 1e-12)
	suite.Equal(0.5, cmd.SteeringTarget)
}

func (suite *MapperTestSuite) TestSteeringChangePerTickIsBounded() {
	// Arrange
	random := rand.New(rand.NewSource(7))
	limit := suite.cfg.MaxSteerAngle*suite.cfg.SteerResponse + 1e-12
	previous := 0.0

	for range 500 {
		state := models.ControlState{Steer: random.Float64()*2 - 1}
		if random.Intn(4) == 0 {
			state.Steer = float64(random.Intn(3) - 1)
		}

		// Act
		current := suite.mapper.Update(state).SteeringAngle

		// Assert
		suite.LessOrEqual(math.Abs(current-previous), limit)
		suite.LessOrEqual(math.Abs(current), suite.cfg.MaxSteerAngle)
		previous = current
	}
}

func (suite *MapperTestSuite) TestApplyRoutesForcesToTheirAxles() {
	// Arrange
	actuators := newRecordingActuators()
	cmd := control.Command{EngineForce: 800, BrakeForce: 250, SteeringAngle: 0.1}

	// Act
	applied := suite.mapper.Apply(cmd, actuators)

	// Assert
	suite.Equal(map[models.WheelSlot]float64{models.RearLeft: 800, models.RearRight: 800}, actuators.engine)
	suite.Equal(map[models.WheelSlot]float64{models.FrontLeft: 0.1, models.FrontRight: 0.1}, actuators.steering)
	suite.Len(actuators.brake, 4)
	suite.Equal(models.CornerSet{RearLeft: 800, RearRight: 800}, applied.WheelForces)
	suite.False(applied.Fallback)
	suite.Empty(actuators.impulses)
}

func (suite *MapperTestSuite) TestApplyFallsBackToChassisImpulseWhenEngineUnavailable() {
	// Arrange
	actuators := newRecordingActuators()
	actuators.engineGap = true

	// Act
	applied := suite.mapper.Apply(control.Command{EngineForce: 1000}, actuators)

	// Assert
	suite.True(applied.Fallback)
	suite.Equal([]float64{100}, actuators.impulses)
	suite.Equal(models.CornerSet{}, applied.WheelForces)
}

func (suite *MapperTestSuite) TestApplySkipsFallbackWithoutEngineForce() {
	// Arrange
	actuators := newRecordingActuators()
	actuators.engineGap = true

	// Act
	applied := suite.mapper.Apply(control.Command{}, actuators)

	// Assert
	suite.False(applied.Fallback)
	suite.Empty(actuators.impulses)
}

func (suite *MapperTestSuite) TestApplyToleratesMissingFallback() {
	// Arrange
	actuators := newRecordingActuators()
	actuators.engineGap = true
	actuators.fallbackGap = true

	// Act
	applied := suite.mapper.Apply(control.Command{EngineForce: 400}, actuators)

	// Assert
	suite.False(applied.Fallback)
}

func (suite *MapperTestSuite) TestVehicleAtRestAcceleratesThenHolds() {
	// Arrange
	mapper := control.NewMapper(control.Config{EngineForceStep: 200, EngineForceMax: 2000, EngineForceDecay: 0.9})

	// Act
	var forces []float64
	for range 12 {
		forces = append(forces, mapper.Update(models.ControlState{Forward: 1}).EngineForce)
	}

	// Assert
	suite.Equal([]float64{200, 400, 600, 800, 1000, 1200, 1400, 1600, 1800, 2000, 2000, 2000}, forces)
}
