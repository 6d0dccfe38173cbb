package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// NotAvailable is the rendered form of a reading without a value
const NotAvailable = "N/A"

// Reading is a telemetry value that may be unavailable, for example before the
// physics world is ready. The zero value is unavailable; a Reading never holds
// NaN or an infinity.
type Reading struct {
	value float64
	valid bool
}

// NA returns an unavailable reading
func NA() Reading {
	return Reading{}
}

// Of wraps a value in a reading. Non-finite values produce an unavailable reading.
func Of(value float64) Reading {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Reading{}
	}

	return Reading{value: value, valid: true}
}

// Get returns the value and whether it is available
func (r Reading) Get() (float64, bool) {
	return r.value, r.valid
}

// Float returns the value, or zero when unavailable
func (r Reading) Float() float64 {
	return r.value
}

// Valid reports whether the reading holds a value
func (r Reading) Valid() bool {
	return r.valid
}

// Map applies fn to an available value. Unavailable readings pass through unchanged.
func (r Reading) Map(fn func(float64) float64) Reading {
	if !r.valid {
		return r
	}

	return Of(fn(r.value))
}

func (r Reading) String() string {
	if !r.valid {
		return NotAvailable
	}

	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return json.Marshal(NotAvailable)
	}

	return json.Marshal(r.value)
}

func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal reading: %w", err)
	}

	switch v := raw.(type) {
	case float64:
		*r = Of(v)
	case string, nil:
		*r = NA()
	default:
		return fmt.Errorf("unmarshal reading: unexpected type %T", raw)
	}

	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller
func (r Reading) MarshalCSV() (string, error) {
	return r.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller
func (r *Reading) UnmarshalCSV(field string) error {
	if field == NotAvailable || field == "" {
		*r = NA()

		return nil
	}

	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return fmt.Errorf("parse reading %q: %w", field, err)
	}

	*r = Of(v)

	return nil
}

// Value implements driver.Valuer, storing unavailable readings as NULL
func (r Reading) Value() (driver.Value, error) {
	if !r.valid {
		return nil, nil
	}

	return r.value, nil
}

// Scan implements sql.Scanner
func (r *Reading) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = NA()
	case float64:
		*r = Of(v)
	case int64:
		*r = Of(float64(v))
	case []byte:
		return r.UnmarshalCSV(string(v))
	case string:
		return r.UnmarshalCSV(v)
	default:
		return fmt.Errorf("scan reading: unsupported type %T", src)
	}

	return nil
}

// VectorReading is a 3D vector that may be unavailable
type VectorReading struct {
	X Reading `json:"x"`
	Y Reading `json:"y"`
	Z Reading `json:"z"`
}

// NewVectorReading wraps the components of an available vector
func NewVectorReading(x, y, z float64) VectorReading {
	return VectorReading{X: Of(x), Y: Of(y), Z: Of(z)}
}

// QuaternionReading is an orientation that may be unavailable
type QuaternionReading struct {
	X Reading `json:"x"`
	Y Reading `json:"y"`
	Z Reading `json:"z"`
	W Reading `json:"w"`
}

// CornerReading holds a per-wheel reading for each corner of the vehicle
type CornerReading struct {
	FrontLeft  Reading `json:"front_left"`
	FrontRight Reading `json:"front_right"`
	RearLeft   Reading `json:"rear_left"`
	RearRight  Reading `json:"rear_right"`
}

// NewCornerReading wraps every value of a corner set
func NewCornerReading(set CornerSet) CornerReading {
	return CornerReading{
		FrontLeft:  Of(set.FrontLeft),
		FrontRight: Of(set.FrontRight),
		RearLeft:   Of(set.RearLeft),
		RearRight:  Of(set.RearRight),
	}
}

// Map applies fn to every available corner value
func (c CornerReading) Map(fn func(float64) float64) CornerReading {
	return CornerReading{
		FrontLeft:  c.FrontLeft.Map(fn),
		FrontRight: c.FrontRight.Map(fn),
		RearLeft:   c.RearLeft.Map(fn),
		RearRight:  c.RearRight.Map(fn),
	}
}

// ControlReading echoes the input state that produced a frame
type ControlReading struct {
	Forward Reading `json:"forward"`
	Steer   Reading `json:"steer"`
	Brake   Reading `json:"brake"`
}

// NewControlReading wraps an input state
func NewControlReading(state ControlState) ControlReading {
	return ControlReading{
		Forward: Of(float64(state.Forward)),
		Steer:   Of(state.Steer),
		Brake:   Of(state.Brake),
	}
}

// GormDataType declares the SQL column type used for readings
func (Reading) GormDataType() string {
	return "real"
}
