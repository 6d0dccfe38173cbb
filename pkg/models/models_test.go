package models_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/wandip/drivesim/pkg/models"
)

type ModelsTestSuite struct {
	suite.Suite
}

func TestModelsTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ModelsTestSuite))
}

func (suite *ModelsTestSuite) TestZeroReadingIsNotAvailable() {
	// Arrange
	var reading models.Reading

	// Act
	gotValue, gotValid := reading.Get()

	// Assert
	suite.False(gotValid)
	suite.Equal(0.0, gotValue)
	suite.Equal(models.NotAvailable, reading.String())
}

func (suite *ModelsTestSuite) TestNonFiniteValuesProduceUnavailableReadings() {
	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		// Act
		reading := models.Of(value)

		// Assert
		suite.False(reading.Valid())
		suite.Equal(0.0, reading.Float())
	}
}

func (suite *ModelsTestSuite) TestReadingMapSkipsUnavailableValues() {
	// Arrange
	double := func(v float64) float64 { return v * 2 }

	// Act
	gotAvailable := models.Of(1.5).Map(double)
	gotUnavailable := models.NA().Map(double)

	// Assert
	suite.Equal(models.Of(3), gotAvailable)
	suite.False(gotUnavailable.Valid())
}

func (suite *ModelsTestSuite) TestReadingJSONUsesSentinelWhenUnavailable() {
	// Arrange
	vector := models.VectorReading{X: models.Of(1.25), Y: models.NA(), Z: models.Of(-2)}

	// Act
	gotJSON, err := json.Marshal(vector)
	suite.Require().NoError(err)

	var gotVector models.VectorReading
	err = json.Unmarshal(gotJSON, &gotVector)
	suite.Require().NoError(err)

	// Assert
	suite.JSONEq(`{"x":1.25,"y":"N/A","z":-2}`, string(gotJSON))
	suite.Equal(vector, gotVector)
}

func (suite *ModelsTestSuite) TestReadingCSVFieldsParse() {
	// Arrange
	var available, unavailable models.Reading

	// Act
	err := available.UnmarshalCSV("42.5")
	suite.Require().NoError(err)
	err = unavailable.UnmarshalCSV(models.NotAvailable)
	suite.Require().NoError(err)

	// Assert
	suite.Equal(models.Of(42.5), available)
	suite.False(unavailable.Valid())
	suite.Error(available.UnmarshalCSV("fast"))
}

func (suite *ModelsTestSuite) TestReadingStoresUnavailableAsNull() {
	// Arrange
	var scanned models.Reading

	// Act
	gotValue, err := models.NA().Value()
	suite.Require().NoError(err)
	err = scanned.Scan(int64(7))
	suite.Require().NoError(err)

	// Assert
	suite.Nil(gotValue)
	suite.Equal(models.Of(7), scanned)
}

func (suite *ModelsTestSuite) TestCornerSetGetAndSetBySlot() {
	// Arrange
	set := models.CornerSet{}

	// Act
	for i, slot := range models.WheelSlots {
		set.Set(slot, float64(i+1))
	}

	// Assert
	suite.Equal(models.CornerSet{FrontLeft: 1, FrontRight: 2, RearLeft: 3, RearRight: 4}, set)
	suite.Equal(3.0, set.Get(models.RearLeft))
}

func (suite *ModelsTestSuite) TestOnlyFrontSlotsAreSteered() {
	suite.True(models.FrontLeft.IsFront())
	suite.True(models.FrontRight.IsFront())
	suite.False(models.RearLeft.IsFront())
	suite.False(models.RearRight.IsFront())
	suite.Equal("rear_right", models.RearRight.String())
}

func (suite *ModelsTestSuite) TestControlStateClampForcesValidRanges() {
	// Arrange
	state := models.ControlState{Forward: 5, Steer: -3, Brake: math.NaN()}

	// Act
	gotValue := state.Clamp()

	// Assert
	suite.Equal(models.ControlState{Forward: 1, Steer: -1, Brake: 0}, gotValue)
}
