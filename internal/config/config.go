package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// InputConfig selects the control source. Script wins over Replay, Replay
// over Keys; with none set the vehicle idles. Keys reads key commands from
// stdin and WheelLock is the touch wheel angle, in radians, for full lock.
type InputConfig struct {
	Script    string  `json:"script" mapstructure:"script"`
	Replay    string  `json:"replay" mapstructure:"replay"`
	Keys      bool    `json:"keys" mapstructure:"keys"`
	WheelLock float64 `json:"wheelLock" mapstructure:"wheelLock"`
}

type BroadcastConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	Port    int  `json:"port" mapstructure:"port"`
}

// Config is the runtime configuration of the drivesim command.
type Config struct {
	LogLevel      string          `json:"logLevel" mapstructure:"logLevel"`
	Vehicle       string          `json:"vehicle" mapstructure:"vehicle"`
	VehicleDB     string          `json:"vehicleDB" mapstructure:"vehicleDB"`
	FrameRate     int             `json:"frameRate" mapstructure:"frameRate"`
	Frames        int             `json:"frames" mapstructure:"frames"`
	MaxFrameDelta time.Duration   `json:"maxFrameDelta" mapstructure:"maxFrameDelta"`
	BootstrapWait int             `json:"bootstrapWait" mapstructure:"bootstrapWait"`
	Recording     string          `json:"recording" mapstructure:"recording"`
	Capabilities  []string        `json:"capabilities" mapstructure:"capabilities"`
	Stats         bool            `json:"stats" mapstructure:"stats"`
	Metrics       bool            `json:"metrics" mapstructure:"metrics"`
	Input         InputConfig     `json:"input" mapstructure:"input"`
	Broadcast     BroadcastConfig `json:"broadcast" mapstructure:"broadcast"`
}

// SetDefaults registers the default value of every key
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("vehicle", "coupe")
	viper.SetDefault("vehicleDB", "")
	viper.SetDefault("frameRate", 60)
	viper.SetDefault("frames", 0)
	viper.SetDefault("maxFrameDelta", "100ms")
	viper.SetDefault("bootstrapWait", 0)
	viper.SetDefault("recording", "")
	viper.SetDefault("capabilities", []string{})
	viper.SetDefault("stats", false)
	viper.SetDefault("metrics", false)

	viper.SetDefault("input.script", "")
	viper.SetDefault("input.replay", "")
	viper.SetDefault("input.keys", false)
	viper.SetDefault("input.wheelLock", 2.5)

	viper.SetDefault("broadcast.enabled", false)
	viper.SetDefault("broadcast.port", 33740)
}

// Load reads a JSON config file on top of the defaults. An empty path uses
// the defaults only.
func Load(path string) (Config, error) {
	SetDefaults()

	if path != "" {
		viper.SetConfigFile(path)
		viper.SetConfigType("json")

		err := viper.ReadInConfig()
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return Current()
}

// Current decodes the active viper settings
func Current() (Config, error) {
	var cfg Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.FrameRate <= 0 {
		return Config{}, fmt.Errorf("invalid frame rate %d", cfg.FrameRate)
	}

	return cfg, nil
}
