package input

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/wandip/drivesim/pkg/models"
)

// replayRow matches the input columns of a CSV telemetry recording.
type replayRow struct {
	Forward models.Reading `csv:"input_forward"`
	Steer   models.Reading `csv:"input_steer"`
	Brake   models.Reading `csv:"input_brake"`
	Camera  bool           `csv:"camera_toggle"`
}

// Replay feeds back the inputs of a CSV recording, one row per frame.
type Replay struct {
	samples []Sample
	next    int
}

// NewReplay parses recorded rows from r.
func NewReplay(r io.Reader) (*Replay, error) {
	rows := []*replayRow{}

	err := gocsv.Unmarshal(r, &rows)
	if err != nil {
		return nil, fmt.Errorf("unmarshal replay CSV: %w", err)
	}

	samples := make([]Sample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, Sample{
			Control: models.ControlState{
				Forward: int(row.Forward.Float()),
				Steer:   row.Steer.Float(),
				Brake:   row.Brake.Float(),
			}.Clamp(),
			ToggleCamera: row.Camera,
		})
	}

	return &Replay{samples: samples}, nil
}

// OpenReplay loads a .csv or gzip compressed .csv.gz recording.
func OpenReplay(path string) (*Replay, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer fh.Close()

	var reader io.Reader = fh

	switch {
	case strings.HasSuffix(path, ".csv.gz"):
		gz, err := gzip.NewReader(fh)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()

		reader = gz
	case strings.HasSuffix(path, ".csv"):
	default:
		return nil, fmt.Errorf("unsupported replay file extension: %s", path)
	}

	return NewReplay(reader)
}

// Len is the number of recorded frames.
func (r *Replay) Len() int {
	return len(r.samples)
}

func (r *Replay) Next(Frame) (Sample, error) {
	if r.next >= len(r.samples) {
		return Sample{}, io.EOF
	}

	sample := r.samples[r.next]
	r.next++

	return sample, nil
}
