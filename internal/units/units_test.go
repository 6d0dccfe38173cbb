package units_test

import (
	"math"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/wandip/drivesim/internal/units"
)

type UnitConversionTestSuite struct {
	suite.Suite
}

func TestUnitConversionTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(UnitConversionTestSuite))
}

func (suite *UnitConversionTestSuite) TestUnitConversionFunctionsReturnCorrectValues() {
	type testCase struct {
		function  func(float64) float64
		withValue float64
		wantValue float64
	}

	// Arrange
	testCases := []testCase{
		{units.DegreesToRadians, 180, math.Pi},
		{units.MetersToFeet, 1, 3.28084},
		{units.MetersToInches, 1, 39.3701},
		{units.MetersToMillimeters, 1, 1000},
		{units.MetersPerSecondToKilometersPerHour, 1, 3.6},
		{units.MetersPerSecondToMilesPerHour, 1, 2.236936},
		{units.NewtonsToKilonewtons, 2000, 2},
		{units.RadiansToDegrees, 1, 57.29578},
		{units.RadiansToDegrees, -3.14159265, -180},
	}

	for _, testCase := range testCases {
		fnNameSegments := strings.Split(runtime.FuncForPC(reflect.ValueOf(testCase.function).Pointer()).Name(), ".")
		fnName := fnNameSegments[len(fnNameSegments)-1]

		suite.Run(fnName, func() {
			// Act
			gotValue := testCase.function(testCase.withValue)

			// Assert
			suite.InEpsilon(testCase.wantValue, gotValue, 1e-5)
		})
	}
}

func (suite *UnitConversionTestSuite) TestWrapRadiansKeepsAnglesInRange() {
	// Arrange
	testCases := []struct {
		withValue float64
		wantValue float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
	}

	for _, tc := range testCases {
		// Act
		gotValue := units.WrapRadians(tc.withValue)

		// Assert
		suite.InDelta(tc.wantValue, gotValue, 1e-9)
	}
}
