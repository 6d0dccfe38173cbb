package recorder_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/wandip/drivesim/internal/recorder"
	"github.com/wandip/drivesim/pkg/input"
	"github.com/wandip/drivesim/pkg/models"
)

type RecorderTestSuite struct {
	suite.Suite

	tmpDir string
}

func TestRecorderTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RecorderTestSuite))
}

func (suite *RecorderTestSuite) SetupTest() {
	suite.tmpDir = suite.T().TempDir()
}

func rows() []*recorder.Row {
	return []*recorder.Row{
		{
			Frame:        1,
			Camera:       "behind_car",
			InputForward: models.Of(1),
			InputSteer:   models.Of(0),
			InputBrake:   models.Of(0),
		},
		{
			Frame:        2,
			Ready:        true,
			Camera:       "behind_car",
			CameraToggle: true,
			InputForward: models.Of(1),
			InputSteer:   models.Of(0.5),
			InputBrake:   models.Of(0),
			PositionY:    models.Of(0.75),
			Speed:        models.Of(1.25),
			EngineForce:  models.Of(400),
		},
	}
}

func (suite *RecorderTestSuite) record(path string) recorder.Backend {
	backend, err := recorder.New(path)
	suite.Require().NoError(err)
	suite.Require().NoError(backend.Init())

	for _, row := range rows() {
		suite.Require().NoError(backend.Record(row))
	}

	suite.Require().NoError(backend.Close())

	return backend
}

func (suite *RecorderTestSuite) TestUnsupportedExtension() {
	// Act
	_, err := recorder.New(filepath.Join(suite.tmpDir, "run.txt"))

	// Assert
	suite.ErrorIs(err, recorder.ErrUnsupportedFormat)
}

func (suite *RecorderTestSuite) TestFactoryPicksBackendByExtension() {
	tests := map[string]any{
		"run.csv":    &recorder.CSV{},
		"run.csv.gz": &recorder.CSV{},
		"run.db":     &recorder.SQLite{},
		"run.sqlite": &recorder.SQLite{},
		"memory":     &recorder.Memory{},
	}

	for path, want := range tests {
		backend, err := recorder.New(path)
		suite.Require().NoError(err, path)
		suite.IsType(want, backend, path)
	}
}

func (suite *RecorderTestSuite) TestCSVRecordingWritesHeaderOnceAndNA() {
	// Arrange
	path := filepath.Join(suite.tmpDir, "run.csv")

	// Act
	suite.record(path)

	// Assert
	content, err := os.ReadFile(path)
	suite.Require().NoError(err)
	suite.Contains(string(content), "frame,elapsed,ready,camera,camera_toggle,input_forward")
	suite.Contains(string(content), models.NotAvailable)

	lines := 0
	for _, b := range content {
		if b == '\n' {
			lines++
		}
	}

	suite.Equal(3, lines)
}

func (suite *RecorderTestSuite) TestCSVRecordingReplays() {
	for _, name := range []string{"run.csv", "run.csv.gz"} {
		// Arrange
		path := filepath.Join(suite.tmpDir, name)
		suite.record(path)

		// Act
		replay, err := input.OpenReplay(path)

		// Assert
		suite.Require().NoError(err, name)
		suite.Equal(2, replay.Len(), name)

		first, err := replay.Next(input.Frame{})
		suite.Require().NoError(err)
		suite.Equal(models.ControlState{Forward: 1}, first.Control)

		second, err := replay.Next(input.Frame{})
		suite.Require().NoError(err)
		suite.Equal(models.ControlState{Forward: 1, Steer: 0.5}, second.Control)
		suite.True(second.ToggleCamera)
	}
}

func (suite *RecorderTestSuite) TestSQLiteRecordingStoresNullForUnavailable() {
	// Arrange
	path := filepath.Join(suite.tmpDir, "run.db")
	suite.record(path)

	db := recorder.NewSQLite(path)
	suite.Require().NoError(db.Init())

	defer db.Close()

	// Act
	var stored []recorder.Row
	suite.Require().NoError(db.DB().Order("frame").Find(&stored).Error)

	var nulls int64
	suite.Require().NoError(db.DB().Model(&recorder.Row{}).Where("speed IS NULL").Count(&nulls).Error)

	// Assert
	suite.Require().Len(stored, 2)
	suite.False(stored[0].Speed.Valid())
	suite.Equal(models.Of(1.25), stored[1].Speed)
	suite.Equal(models.Of(400), stored[1].EngineForce)
	suite.True(stored[1].Ready)
	suite.Equal(int64(1), nulls)
}

func (suite *RecorderTestSuite) TestMemoryKeepsRows() {
	// Arrange
	memory := recorder.NewMemory()
	suite.Require().NoError(memory.Init())

	// Act
	for _, row := range rows() {
		suite.Require().NoError(memory.Record(row))
	}

	// Assert
	stored := memory.Rows()
	suite.Len(stored, 2)
	suite.Equal(uint64(2), stored[1].Frame)
}

func (suite *RecorderTestSuite) TestRecordBeforeInitFails() {
	// Act
	err := recorder.NewCSV(filepath.Join(suite.tmpDir, "run.csv"), false).Record(&recorder.Row{})

	// Assert
	suite.Error(err)
}
