// Package metrics exposes simulation counters through OpenTelemetry. Without a
// configured provider the global meter is a no-op.
package metrics

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/wandip/drivesim"

type Metrics struct {
	frames           metric.Int64Counter
	steps            metric.Int64Counter
	capabilityMisses metric.Int64Counter
	frameDuration    metric.Float64Histogram
	speedGauge       metric.Float64ObservableGauge
	speed            atomic.Uint64
}

// New registers the instruments on the global meter provider
func New() (*Metrics, error) {
	return NewWithMeter(otel.Meter(meterName))
}

func NewWithMeter(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.frames, err = meter.Int64Counter("drivesim.frames",
		metric.WithDescription("Frames processed by the simulation loop"))
	if err != nil {
		return nil, fmt.Errorf("create frames counter: %w", err)
	}

	m.steps, err = meter.Int64Counter("drivesim.physics.steps",
		metric.WithDescription("Physics world steps"))
	if err != nil {
		return nil, fmt.Errorf("create steps counter: %w", err)
	}

	m.capabilityMisses, err = meter.Int64Counter("drivesim.physics.capability_misses",
		metric.WithDescription("Tuning or control calls the physics backend could not honour"))
	if err != nil {
		return nil, fmt.Errorf("create capability miss counter: %w", err)
	}

	m.frameDuration, err = meter.Float64Histogram("drivesim.frame.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Wall time spent processing a frame"))
	if err != nil {
		return nil, fmt.Errorf("create frame duration histogram: %w", err)
	}

	m.speedGauge, err = meter.Float64ObservableGauge("drivesim.vehicle.speed",
		metric.WithUnit("m/s"),
		metric.WithDescription("Chassis speed"),
		metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
			o.Observe(m.Speed())

			return nil
		}))
	if err != nil {
		return nil, fmt.Errorf("create speed gauge: %w", err)
	}

	return m, nil
}

// RecordFrame counts a processed frame and its duration. ready frames also
// count one physics step.
func (m *Metrics) RecordFrame(ctx context.Context, ready bool, duration time.Duration) {
	m.frames.Add(ctx, 1, metric.WithAttributes(attribute.Bool("ready", ready)))
	m.frameDuration.Record(ctx, duration.Seconds())

	if ready {
		m.steps.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCapabilityMiss(ctx context.Context, capability string) {
	m.capabilityMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("capability", capability)))
}

// SetSpeed stores the value reported by the speed gauge
func (m *Metrics) SetSpeed(speed float64) {
	m.speed.Store(math.Float64bits(speed))
}

func (m *Metrics) Speed() float64 {
	return math.Float64frombits(m.speed.Load())
}
