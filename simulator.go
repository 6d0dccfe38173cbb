package drivesim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/wandip/drivesim/internal/camera"
	"github.com/wandip/drivesim/internal/control"
	"github.com/wandip/drivesim/internal/metrics"
	"github.com/wandip/drivesim/internal/packet"
	"github.com/wandip/drivesim/internal/physics"
	"github.com/wandip/drivesim/internal/recorder"
	"github.com/wandip/drivesim/internal/visual"
	"github.com/wandip/drivesim/pkg/input"
	"github.com/wandip/drivesim/pkg/models"
	"github.com/wandip/drivesim/pkg/scene"
	"github.com/wandip/drivesim/pkg/vehicles"
)

const DefaultMaxFrameDelta = 100 * time.Millisecond

var ErrInvalidFrameRate = errors.New("frame rate must be positive")

// State is the top level state of the simulation loop.
type State int

const (
	StateNotReady State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotReady:
		return "not_ready"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}

	return "unknown"
}

// Publisher receives a packet for every frame, for example a UDP broadcaster.
type Publisher interface {
	Publish(pkt packet.Packet) error
}

type statistics struct {
	enabled           bool
	frameTimeLast     time.Duration
	frameRateLast     time.Time
	FrameTimeAvg      time.Duration
	FrameTimeMax      time.Duration
	FrameRateAvg      int
	FrameRateCurrent  int
	FrameRateMax      int
	FramesTotal       int
	FramesNotReady    int
	FallbackFrames    int
	CapabilityMisses  int
	PublishErrors     int
	RecordingErrors   int
	InputErrors       int
	BootstrapDuration time.Duration
}

type Options struct {
	LogLevel string
	Logger   *zerolog.Logger

	// VehicleID selects a preset, VehicleDB optionally replaces the embedded presets
	VehicleID string
	VehicleDB string

	// Scene defaults to a box model built from the preset
	Scene *scene.Scene
	Rig   camera.Rig
	Input input.Source

	Physics *physics.Config
	Camera  *camera.Config

	// BootstrapFrames makes physics ready after a fixed number of frames
	// instead of initialising on a background goroutine.
	BootstrapFrames int
	// Bootstrap wraps the physics initializer, mostly for tests
	Bootstrap func(init physics.Initializer) physics.Bootstrap

	Clock         func() time.Time
	MaxFrameDelta time.Duration
	FrameLimit    uint64

	StatsEnabled   bool
	MetricsEnabled bool
	Publisher      Publisher
}

// Simulator runs the per-frame pipeline: input, dynamics mapping, physics
// step, visual synchronisation, camera and telemetry.
type Simulator struct {
	log           zerolog.Logger
	state         State
	err           error
	vehicle       vehicles.Vehicle
	scene         scene.Scene
	synchronizer  *visual.Synchronizer
	camera        *camera.Controller
	mapper        *control.Mapper
	bootstrap     physics.Bootstrap
	bootstrapAt   time.Time
	world         *physics.World
	input         input.Source
	publisher     Publisher
	metrics       *metrics.Metrics
	maxFrameDelta time.Duration
	frameLimit    uint64
	frame         uint64
	last          time.Time
	elapsed       time.Duration
	control       models.ControlState
	snapshot      Snapshot
	recordingMu   sync.Mutex
	recording     recorder.Backend
	Finished      bool
	Statistics    *statistics
}

func New(opts Options) (*Simulator, error) {
	log := newLogger(opts)

	var inventoryJSON []byte
	if opts.VehicleDB != "" {
		var err error

		inventoryJSON, err = os.ReadFile(opts.VehicleDB)
		if err != nil {
			return nil, fmt.Errorf("reading vehicle DB from file: %w", err)
		}
	}

	inventory, err := vehicles.NewDB(inventoryJSON)
	if err != nil {
		return nil, fmt.Errorf("setting up vehicle inventory: %w", err)
	}

	if opts.VehicleID == "" {
		opts.VehicleID = vehicles.DefaultVehicleID
	}

	vehicle, err := inventory.GetVehicleByID(opts.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("selecting vehicle: %w", err)
	}

	vehicleScene := scene.Build(vehicle)
	if opts.Scene != nil {
		vehicleScene = *opts.Scene
	}

	bounds, err := scene.ChassisBounds(vehicleScene.Parts)
	if err != nil {
		return nil, fmt.Errorf("sizing chassis collider: %w", err)
	}

	spawn := physics.Transform{
		Position: mgl64.Vec3{0, vehicle.SpawnHeight, 0},
		Rotation: mgl64.QuatIdent(),
	}

	center := bounds.Center()

	synchronizer, err := visual.NewSynchronizer(vehicleScene, vehicle, spawn, visual.WithColliderCenter(center))
	if err != nil {
		return nil, fmt.Errorf("binding scene: %w", err)
	}

	physicsCfg := physics.DefaultConfig()
	if opts.Physics != nil {
		physicsCfg = *opts.Physics
	}

	cameraCfg := camera.DefaultConfig()
	if opts.Camera != nil {
		cameraCfg = *opts.Camera
	}

	rig := opts.Rig
	if rig == nil {
		rig = &camera.Camera{}
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	source := opts.Input
	if source == nil {
		source = input.Idle
	}

	if opts.MaxFrameDelta <= 0 {
		opts.MaxFrameDelta = DefaultMaxFrameDelta
	}

	halfExtents := bounds.HalfExtents()
	initialize := func(ctx context.Context) (*physics.World, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		world := physics.Initialize(physicsCfg, log)

		err := world.CreateVehicle(halfExtents, spawn, vehicle, physics.WithChassisOffset(center))
		if err != nil {
			return nil, fmt.Errorf("create vehicle: %w", err)
		}

		return world, nil
	}

	var bootstrap physics.Bootstrap

	switch {
	case opts.Bootstrap != nil:
		bootstrap = opts.Bootstrap(initialize)
	case opts.BootstrapFrames > 0:
		bootstrap = physics.NewDeferredBootstrap(opts.BootstrapFrames, initialize)
	default:
		bootstrap = physics.NewAsyncBootstrap(context.Background(), initialize)
	}

	var meters *metrics.Metrics
	if opts.MetricsEnabled {
		meters, err = metrics.New()
		if err != nil {
			return nil, fmt.Errorf("setting up metrics: %w", err)
		}
	}

	log.Debug().
		Str("vehicle", vehicle.ID).
		Interface("half_extents", halfExtents).
		Msg("simulator created")

	sim := &Simulator{
		log:           log,
		state:         StateNotReady,
		vehicle:       vehicle,
		scene:         vehicleScene,
		synchronizer:  synchronizer,
		camera:        camera.New(cameraCfg, rig, camera.WithClock(clock)),
		mapper:        control.NewMapper(control.ConfigFromVehicle(vehicle)),
		bootstrap:     bootstrap,
		bootstrapAt:   time.Now(),
		input:         source,
		publisher:     opts.Publisher,
		metrics:       meters,
		maxFrameDelta: opts.MaxFrameDelta,
		frameLimit:    opts.FrameLimit,
		Statistics: &statistics{
			enabled:       opts.StatsEnabled,
			frameRateLast: time.Now(),
		},
	}
	sim.snapshot = notReadySnapshot(0, 0, sim.camera.State())

	return sim, nil
}

func newLogger(opts Options) zerolog.Logger {
	if opts.Logger != nil {
		return *opts.Logger
	}

	return NewLogger(opts.LogLevel)
}

// NewLogger returns the JSON logger used when Options.Logger is unset and sets
// the global level from a level name.
func NewLogger(level string) zerolog.Logger {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	switch level {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "off":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	default:
		log.Warn().Str("log_level", level).Msg("unknown log level, setting level to warn")
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	return log
}

// State returns the top level loop state.
func (s *Simulator) State() State {
	return s.state
}

// Ready reports whether physics drives the vehicle.
func (s *Simulator) Ready() bool {
	return s.state == StateReady
}

// Vehicle returns the preset in use.
func (s *Simulator) Vehicle() vehicles.Vehicle {
	return s.vehicle
}

// Scene returns the scene nodes written by the synchronizer.
func (s *Simulator) Scene() scene.Scene {
	return s.scene
}

// Snapshot returns the telemetry of the last frame.
func (s *Simulator) Snapshot() Snapshot {
	return s.snapshot
}

// ToggleCamera requests a camera mode change outside of the input source.
func (s *Simulator) ToggleCamera() bool {
	return s.camera.Toggle()
}

// Resize forwards viewport changes to the camera rig.
func (s *Simulator) Resize(width, height int) {
	s.camera.Resize(width, height)
}

// Frame runs the pipeline once. now is the wall clock time of the frame; the
// step size is the time since the previous frame, zero on the first frame and
// never more than the configured maximum.
func (s *Simulator) Frame(now time.Time) (Snapshot, error) {
	if s.state == StateFailed {
		return s.snapshot, s.err
	}

	frameStart := time.Now()

	var delta time.Duration
	if s.frame > 0 {
		delta = max(0, min(now.Sub(s.last), s.maxFrameDelta))
	}

	dt := delta.Seconds()
	s.last = now
	s.frame++
	s.elapsed += delta

	sample := s.sampleInput()
	s.control = sample.Control.Clamp()

	toggled := false
	if sample.ToggleCamera {
		toggled = s.camera.Toggle()
	}

	cmd := s.mapper.Update(s.control)

	if s.state == StateNotReady {
		err := s.pollBootstrap()
		if err != nil {
			s.snapshot = notReadySnapshot(s.frame, s.elapsed, s.camera.State())

			return s.snapshot, err
		}
	}

	var snapshot Snapshot

	if s.state == StateReady {
		applied := s.mapper.Apply(cmd, s.world)
		s.world.Step(dt)
		transform := s.synchronizer.Sync(s.world)
		s.camera.Update(transform.Position, transform.Yaw(), dt)

		snapshot = readySnapshot(frameState{
			frame:     s.frame,
			elapsed:   s.elapsed,
			transform: transform,
			velocity:  s.world.Velocity(),
			wheels:    s.world.Wheels(),
			command:   cmd,
			applied:   applied,
			control:   s.control,
			camera:    s.camera.State(),
		})
	} else {
		transform := s.synchronizer.SyncPlaceholder()
		s.camera.Update(transform.Position, transform.Yaw(), dt)

		snapshot = notReadySnapshot(s.frame, s.elapsed, s.camera.State())
	}

	snapshot.CameraToggled = toggled
	s.snapshot = snapshot

	s.publish(snapshot)
	s.collectStats(time.Since(frameStart))

	if s.frameLimit > 0 && s.frame >= s.frameLimit {
		s.Finished = true
	}

	return snapshot, nil
}

func (s *Simulator) sampleInput() input.Sample {
	if s.Finished {
		return input.Sample{}
	}

	position := s.snapshot.Position

	sample, err := s.input.Next(input.Frame{
		Number:   s.frame,
		Elapsed:  s.elapsed,
		Ready:    s.snapshot.Ready,
		Speed:    s.snapshot.Speed.Float(),
		Position: [3]float64{position.X.Float(), position.Y.Float(), position.Z.Float()},
		Yaw:      s.snapshot.Heading.Float(),
	})

	switch {
	case errors.Is(err, io.EOF):
		s.log.Info().Uint64("frame", s.frame).Msg("input source exhausted")
		s.Finished = true

		return input.Sample{}
	case err != nil:
		s.log.Warn().Err(err).Uint64("frame", s.frame).Msg("failed to sample input, using neutral controls")
		s.Statistics.InputErrors++

		return input.Sample{}
	}

	return sample
}

func (s *Simulator) pollBootstrap() error {
	world, ready, err := s.bootstrap.Poll()
	if err != nil {
		s.state = StateFailed
		s.err = err
		s.log.Error().Err(err).Msg("physics bootstrap failed")

		return err
	}

	if !ready {
		return nil
	}

	s.world = world
	s.state = StateReady
	s.Statistics.BootstrapDuration = time.Since(s.bootstrapAt)

	for capability, count := range world.CapabilityMisses() {
		s.Statistics.CapabilityMisses += count
		s.recordCapabilityMiss(capability, count)
	}

	world.OnCapabilityMiss(func(capability physics.Capability) {
		s.Statistics.CapabilityMisses++
		s.recordCapabilityMiss(capability, 1)
	})

	s.log.Info().
		Uint64("frame", s.frame).
		Dur("bootstrap", s.Statistics.BootstrapDuration).
		Msg("physics ready")

	return nil
}

func (s *Simulator) recordCapabilityMiss(capability physics.Capability, count int) {
	if s.metrics == nil {
		return
	}

	for range count {
		s.metrics.RecordCapabilityMiss(context.Background(), capability.String())
	}
}

func (s *Simulator) publish(snapshot Snapshot) {
	if s.publisher != nil {
		err := s.publisher.Publish(snapshot.Packet())
		if err != nil {
			s.Statistics.PublishErrors++
			s.log.Debug().Err(err).Msg("failed to publish telemetry")
		}
	}

	s.recordingMu.Lock()
	defer s.recordingMu.Unlock()

	if s.recording == nil {
		return
	}

	err := s.recording.Record(snapshot.row(s.control))
	if err != nil {
		s.Statistics.RecordingErrors++
		s.log.Warn().Err(err).Msg("failed to record frame")
	}
}

// Run drives Frame from a ticker at frameRate until the context is cancelled,
// the input source is exhausted or the frame limit is reached. onFrame may be nil.
func (s *Simulator) Run(ctx context.Context, frameRate int, onFrame func(Snapshot)) error {
	if frameRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFrameRate, frameRate)
	}

	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("simulation loop stopping")

			return nil
		case now := <-ticker.C:
			snapshot, err := s.Frame(now)
			if err != nil {
				return fmt.Errorf("run frame %d: %w", s.frame, err)
			}

			if onFrame != nil {
				onFrame(snapshot)
			}

			if s.Finished {
				return nil
			}
		}
	}
}

func (s *Simulator) collectStats(frameTime time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordFrame(context.Background(), s.snapshot.Ready, frameTime)
		s.metrics.SetSpeed(s.snapshot.Speed.Float())
	}

	if !s.Statistics.enabled {
		return
	}

	s.Statistics.FramesTotal++
	s.Statistics.frameTimeLast = frameTime

	if !s.snapshot.Ready {
		s.Statistics.FramesNotReady++
	}

	if s.snapshot.Fallback {
		s.Statistics.FallbackFrames++
	}

	s.Statistics.FrameTimeAvg = (s.Statistics.FrameTimeAvg + s.Statistics.frameTimeLast) / 2
	if s.Statistics.frameTimeLast > s.Statistics.FrameTimeMax {
		s.Statistics.FrameTimeMax = s.Statistics.frameTimeLast
	}

	if s.frame%10 == 0 {
		rate := time.Since(s.Statistics.frameRateLast)
		s.Statistics.FrameRateCurrent = int(10 / rate.Seconds())
		s.Statistics.frameRateLast = time.Now()
		s.Statistics.FrameRateAvg = (s.Statistics.FrameRateAvg + s.Statistics.FrameRateCurrent) / 2

		if s.Statistics.FrameRateCurrent > s.Statistics.FrameRateMax {
			s.Statistics.FrameRateMax = s.Statistics.FrameRateCurrent
		}
	}
}
