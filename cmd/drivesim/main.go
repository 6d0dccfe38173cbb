package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/wandip/drivesim"
	"github.com/wandip/drivesim/internal/broadcast"
	"github.com/wandip/drivesim/internal/config"
	"github.com/wandip/drivesim/internal/physics"
	"github.com/wandip/drivesim/pkg/input"
)

func main() {
	var (
		configFile string
		vehicleID  string
		scriptFile string
		replayFile string
		recordFile string
		frames     int
		broadcastF bool
		keysF      bool
		noColor    bool
	)

	flag.StringVar(&configFile, "config", "", "JSON config file")
	flag.StringVar(&vehicleID, "vehicle", "", "Vehicle preset ID, overrides the config file")
	flag.StringVar(&scriptFile, "script", "", "JavaScript control script, overrides the config file")
	flag.StringVar(&replayFile, "replay", "", "Recorded input to replay (.csv or .csv.gz)")
	flag.StringVar(&recordFile, "o", "", "Record frames to file (.csv, .csv.gz, .db or .sqlite)")
	flag.IntVar(&frames, "frames", -1, "Stop after this many frames, 0 runs until interrupted")
	flag.BoolVar(&broadcastF, "broadcast", false, "Broadcast telemetry packets over UDP")
	flag.BoolVar(&keysF, "keys", false, "Drive with key commands read from stdin, e.g. \"+w\", \"-w\", \"c\" or \"wheel=0.5\"")
	flag.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flag.Parse()

	color.NoColor = noColor

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	applyFlags(&cfg, vehicleID, scriptFile, replayFile, recordFile, frames, broadcastF, keysF)

	logger := drivesim.NewLogger(cfg.LogLevel).Output(zerolog.ConsoleWriter{Out: os.Stderr})

	source, err := newInputSource(cfg.Input, os.Stdin, logger)
	if err != nil {
		log.Fatalf("Error opening input: %v", err)
	}

	physicsCfg := physics.DefaultConfig()

	if len(cfg.Capabilities) > 0 {
		capabilities, unknown := physics.ParseCapabilities(cfg.Capabilities)
		if len(unknown) > 0 {
			log.Fatalf("Unknown physics capabilities: %v", unknown)
		}

		physicsCfg.Capabilities = capabilities
	}

	opts := drivesim.Options{
		Logger:          &logger,
		VehicleID:       cfg.Vehicle,
		VehicleDB:       cfg.VehicleDB,
		Input:           source,
		Physics:         &physicsCfg,
		BootstrapFrames: cfg.BootstrapWait,
		MaxFrameDelta:   cfg.MaxFrameDelta,
		FrameLimit:      uint64(max(cfg.Frames, 0)),
		StatsEnabled:    cfg.Stats,
		MetricsEnabled:  cfg.Metrics,
	}

	if cfg.Broadcast.Enabled {
		publisher, err := broadcast.NewPublisher(fmt.Sprintf(":%d", cfg.Broadcast.Port), logger)
		if err != nil {
			log.Fatalf("Error starting broadcast: %v", err)
		}

		defer func() {
			if err := publisher.Close(); err != nil {
				log.Printf("Error closing broadcast: %v", err)
			}
		}()

		opts.Publisher = publisher
		fmt.Printf("Broadcasting telemetry on UDP port %d\n", publisher.Port())
	}

	sim, err := drivesim.New(opts)
	if err != nil {
		log.Fatalf("Error creating simulator: %v", err)
	}

	if cfg.Recording != "" {
		err = sim.StartRecording(cfg.Recording)
		if err != nil {
			log.Fatalf("Error starting recording: %v", err)
		}

		defer func() {
			if err := sim.StopRecording(); err != nil {
				log.Printf("Error stopping recording: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hud := newHUD()

	err = sim.Run(ctx, cfg.FrameRate, hud.print)

	fmt.Println()

	switch {
	case err == nil, errors.Is(err, context.Canceled):
	default:
		log.Printf("Simulation stopped: %v", err)
	}

	if cfg.Stats {
		stats := sim.Statistics
		fmt.Printf("frames %d (not ready %d, fallback %d), frame time avg %v max %v, capability misses %d\n",
			stats.FramesTotal, stats.FramesNotReady, stats.FallbackFrames,
			stats.FrameTimeAvg, stats.FrameTimeMax, stats.CapabilityMisses)
	}
}

func applyFlags(cfg *config.Config, vehicleID, scriptFile, replayFile, recordFile string, frames int, broadcastF, keysF bool) {
	if vehicleID != "" {
		cfg.Vehicle = vehicleID
	}

	if scriptFile != "" {
		cfg.Input.Script = scriptFile
	}

	if replayFile != "" {
		cfg.Input.Replay = replayFile
	}

	if recordFile != "" {
		cfg.Recording = recordFile
	}

	if frames >= 0 {
		cfg.Frames = frames
	}

	if broadcastF {
		cfg.Broadcast.Enabled = true
	}

	if keysF {
		cfg.Input.Keys = true
	}
}

func newInputSource(cfg config.InputConfig, stdin io.Reader, logger zerolog.Logger) (input.Source, error) {
	switch {
	case cfg.Script != "":
		script, err := input.LoadScript(cfg.Script)
		if err != nil {
			return nil, err
		}

		return script, nil
	case cfg.Replay != "":
		replay, err := input.OpenReplay(cfg.Replay)
		if err != nil {
			return nil, err
		}

		return replay, nil
	case cfg.Keys:
		keys := input.NewKeys(cfg.WheelLock)

		go func() {
			err := keys.Feed(stdin, func(err error) {
				logger.Warn().Err(err).Msg("Ignoring key command")
			})
			if err != nil {
				logger.Error().Err(err).Msg("Reading key commands")
			}
		}()

		return keys, nil
	default:
		return input.Idle, nil
	}
}

type hud struct {
	label   *color.Color
	value   *color.Color
	waiting *color.Color
	warn    *color.Color
}

func newHUD() *hud {
	return &hud{
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite, color.Bold),
		waiting: color.New(color.FgYellow),
		warn:    color.New(color.FgRed),
	}
}

func (h *hud) print(snapshot drivesim.Snapshot) {
	if !snapshot.Ready {
		fmt.Printf("\r%s frame %-6d camera %-10s", h.waiting.Sprint("waiting for physics"), snapshot.Frame, snapshot.Camera.Mode)

		return
	}

	fallback := ""
	if snapshot.Fallback {
		fallback = h.warn.Sprint(" fallback")
	}

	fmt.Printf("\r%s %s  %s %s  %s %s  %s %s  %s %s%s   ",
		h.label.Sprint("frame"), h.value.Sprintf("%-6d", snapshot.Frame),
		h.label.Sprint("speed"), h.value.Sprintf("%6.1f km/h", snapshot.SpeedKPH().Float()),
		h.label.Sprint("heading"), h.value.Sprintf("%6.1f°", snapshot.HeadingDegrees().Float()),
		h.label.Sprint("engine"), h.value.Sprintf("%5.2f kN", snapshot.EngineForceKilonewtons().Float()),
		h.label.Sprint("camera"), h.value.Sprint(snapshot.Camera.Mode),
		fallback,
	)
}
