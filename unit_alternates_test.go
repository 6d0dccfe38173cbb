package drivesim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/wandip/drivesim"
	"github.com/wandip/drivesim/pkg/models"
)

type UnitAlternatesTestSuite struct {
	suite.Suite

	snapshot drivesim.Snapshot
}

func TestUnitAlternatesTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(UnitAlternatesTestSuite))
}

func (suite *UnitAlternatesTestSuite) SetupTest() {
	suite.snapshot = drivesim.Snapshot{
		Ready:         true,
		Position:      models.NewVectorReading(0, 2, 0),
		Speed:         models.Of(10),
		Heading:       models.Of(math.Pi / 2),
		EngineForce:   models.Of(1500),
		BrakeForce:    models.Of(2500),
		SteeringAngle: models.Of(-0.25),
		WheelForces:   models.NewCornerReading(models.CornerSet{RearLeft: 2000, RearRight: 2000}),
		SuspensionLengths: models.NewCornerReading(models.CornerSet{
			FrontLeft: 0.25, FrontRight: 0.25, RearLeft: 0.3, RearRight: 0.3,
		}),
	}
}

func (suite *UnitAlternatesTestSuite) TestSpeedAlternates() {
	suite.InEpsilon(36.0, suite.snapshot.SpeedKPH().Float(), 1e-9)
	suite.InEpsilon(22.36936, suite.snapshot.SpeedMPH().Float(), 1e-9)
}

func (suite *UnitAlternatesTestSuite) TestAngleAlternates() {
	suite.InEpsilon(90.0, suite.snapshot.HeadingDegrees().Float(), 1e-9)
	suite.InEpsilon(-14.323944878, suite.snapshot.SteeringAngleDegrees().Float(), 1e-6)
}

func (suite *UnitAlternatesTestSuite) TestForceAlternates() {
	suite.InEpsilon(1.5, suite.snapshot.EngineForceKilonewtons().Float(), 1e-9)
	suite.InEpsilon(2.5, suite.snapshot.BrakeForceKilonewtons().Float(), 1e-9)

	forces := suite.snapshot.WheelForcesKilonewtons()
	suite.InEpsilon(2.0, forces.RearLeft.Float(), 1e-9)
	suite.Equal(models.Of(0), forces.FrontLeft)
}

func (suite *UnitAlternatesTestSuite) TestLengthAlternates() {
	millimeters := suite.snapshot.SuspensionLengthsMillimeters()
	suite.InEpsilon(250.0, millimeters.FrontLeft.Float(), 1e-9)
	suite.InEpsilon(300.0, millimeters.RearRight.Float(), 1e-9)

	inches := suite.snapshot.SuspensionLengthsInches()
	suite.InEpsilon(9.842525, inches.FrontRight.Float(), 1e-9)

	suite.InEpsilon(6.56168, suite.snapshot.AltitudeFeet().Float(), 1e-9)
}

func (suite *UnitAlternatesTestSuite) TestUnavailableReadingsStayUnavailable() {
	snapshot := drivesim.Snapshot{}

	suite.False(snapshot.SpeedKPH().Valid())
	suite.False(snapshot.HeadingDegrees().Valid())
	suite.False(snapshot.EngineForceKilonewtons().Valid())
	suite.False(snapshot.SuspensionLengthsMillimeters().RearLeft.Valid())
	suite.Equal(models.NotAvailable, snapshot.SpeedMPH().String())
}
