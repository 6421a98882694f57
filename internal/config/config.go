// Package config loads the daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/mudra/internal/actuator"
	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
)

// Config represents the top-level configuration.
type Config struct {
	Bus      BusConfig      `yaml:"bus"`
	Gesture  GestureConfig  `yaml:"gesture"`
	Display  DisplayConfig  `yaml:"display"`
	Actuator ActuatorConfig `yaml:"actuator"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BusConfig holds the OSC listener settings.
type BusConfig struct {
	Listen          string        `yaml:"listen"`
	PositionPath    string        `yaml:"position_path"`
	CalibrationPath string        `yaml:"calibration_path"`
	Arity           int           `yaml:"arity"`
	PollInterval    time.Duration `yaml:"poll_interval"`
}

// GestureConfig holds classifier settings.
type GestureConfig struct {
	Mode        string `yaml:"mode"` // auto, contact, dwell
	ClickSpeed  int    `yaml:"click_speed"`
	ClickLength int    `yaml:"click_length"`
	Button      string `yaml:"button"`
	Track       bool   `yaml:"track"`
}

// DisplayConfig holds projection geometry.
type DisplayConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	MarkerSize float64 `yaml:"marker_size"`
	BoundX     float64 `yaml:"bound_x"`
	BoundY     float64 `yaml:"bound_y"`
	CenterX    float64 `yaml:"center_x"`
	CenterY    float64 `yaml:"center_y"`
}

// ActuatorConfig selects how pointer commands are issued.
type ActuatorConfig struct {
	Backend       string `yaml:"backend"` // robotgo, plugin, dry-run
	Plugin        string `yaml:"plugin"`
	PluginDir     string `yaml:"plugin_dir"`
	PluginTimeout int    `yaml:"plugin_timeout_ms"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	Disabled  bool   `yaml:"disabled"`
}

// StoreConfig holds database settings.
type StoreConfig struct {
	Path string `yaml:"path"`
	// Retention drops events older than this at startup. Zero keeps all.
	Retention time.Duration `yaml:"retention"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DataDir returns ~/.mudra, or the working directory when the home
// directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".mudra")
}

// DefaultStorePath returns the database path inside DataDir.
func DefaultStorePath() string {
	return filepath.Join(DataDir(), "mudra.db")
}

// DefaultPluginDir returns the plugin directory inside DataDir.
func DefaultPluginDir() string {
	return filepath.Join(DataDir(), "plugins")
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Bus.Listen == "" {
		c.Bus.Listen = capture.DefaultAddr
	}
	if c.Bus.PositionPath == "" {
		c.Bus.PositionPath = capture.DefaultPositionPath
	}
	if c.Bus.CalibrationPath == "" {
		c.Bus.CalibrationPath = capture.DefaultCalibrationPath
	}
	if c.Bus.Arity == 0 {
		c.Bus.Arity = capture.DefaultArity
	}
	if c.Bus.PollInterval == 0 {
		c.Bus.PollInterval = 25 * time.Millisecond
	}

	if c.Gesture.Mode == "" {
		c.Gesture.Mode = "auto"
	}
	if c.Gesture.ClickSpeed == 0 {
		c.Gesture.ClickSpeed = gesture.DefaultClickSpeed
	}
	if c.Gesture.ClickLength == 0 {
		c.Gesture.ClickLength = gesture.DefaultClickLength
	}
	if c.Gesture.Button == "" {
		c.Gesture.Button = actuator.ButtonLeft.String()
	}

	d := calibration.DefaultConfig()
	if c.Display.Width == 0 {
		c.Display.Width = d.DisplayWidth
	}
	if c.Display.Height == 0 {
		c.Display.Height = d.DisplayHeight
	}
	if c.Display.MarkerSize == 0 {
		c.Display.MarkerSize = d.MarkerSize
	}
	if c.Display.BoundX == 0 {
		c.Display.BoundX = d.BoundX
	}
	if c.Display.BoundY == 0 {
		c.Display.BoundY = d.BoundY
	}
	if c.Display.CenterX == 0 {
		c.Display.CenterX = c.Display.BoundX / 2
	}
	if c.Display.CenterY == 0 {
		c.Display.CenterY = c.Display.BoundY / 2
	}

	if c.Actuator.Backend == "" {
		c.Actuator.Backend = actuator.BackendRobotgo
	}
	if c.Actuator.Plugin == "" {
		c.Actuator.Plugin = "pointer"
	}
	if c.Actuator.PluginDir == "" {
		c.Actuator.PluginDir = DefaultPluginDir()
	}
	if c.Actuator.PluginTimeout == 0 {
		c.Actuator.PluginTimeout = 500
	}

	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:9701"
	}

	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath()
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate rejects settings the daemon cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Bus.Arity < capture.MinArity {
		errs = append(errs, fmt.Errorf("bus.arity must be at least %d, got %d", capture.MinArity, c.Bus.Arity))
	}
	if c.Bus.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("bus.poll_interval must be positive"))
	}
	if c.Gesture.ClickSpeed < 1 || c.Gesture.ClickLength < 1 {
		errs = append(errs, fmt.Errorf("gesture.click_speed and gesture.click_length must be positive"))
	}
	if _, err := gesture.ParseMode(c.Gesture.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := actuator.ParseButton(c.Gesture.Button); err != nil {
		errs = append(errs, err)
	}
	if c.Display.MarkerSize*2 >= c.Display.Width || c.Display.MarkerSize*2 >= c.Display.Height {
		errs = append(errs, fmt.Errorf("display.marker_size %.0f leaves no target area", c.Display.MarkerSize))
	}
	switch c.Actuator.Backend {
	case actuator.BackendRobotgo, actuator.BackendPlugin, actuator.BackendDryRun:
	default:
		errs = append(errs, fmt.Errorf("unknown actuator.backend %q", c.Actuator.Backend))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown logging.format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Projection returns the calibration geometry.
func (c *Config) Projection() calibration.Config {
	return calibration.Config{
		DisplayWidth:  c.Display.Width,
		DisplayHeight: c.Display.Height,
		MarkerSize:    c.Display.MarkerSize,
		BoundX:        c.Display.BoundX,
		BoundY:        c.Display.BoundY,
		CenterX:       c.Display.CenterX,
		CenterY:       c.Display.CenterY,
	}
}

// Classifier returns the classifier settings with the mode resolved for the
// configured arity. Call Validate first.
func (c *Config) Classifier() gesture.Config {
	mode, _ := gesture.ParseMode(c.Gesture.Mode)
	button, _ := actuator.ParseButton(c.Gesture.Button)
	return gesture.Config{
		Mode:        mode.Resolve(c.Bus.Arity),
		ClickSpeed:  c.Gesture.ClickSpeed,
		ClickLength: c.Gesture.ClickLength,
		Button:      button,
	}
}

// OSC returns the listener settings.
func (c *Config) OSC() capture.OSCConfig {
	return capture.OSCConfig{
		Addr:            c.Bus.Listen,
		PositionPath:    c.Bus.PositionPath,
		CalibrationPath: c.Bus.CalibrationPath,
		Arity:           c.Bus.Arity,
	}
}
