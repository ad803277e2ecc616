package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode selects how the output is produced
const (
	ModeDirect = "direct" // in-process frame compositing
	ModeFilter = "filter" // ffmpeg filter-graph fallback
)

// Config drives one export run. The camera fields are deliberately
// tunable; the defaults aim for a calm, cinematic feel.
type Config struct {
	InputVideo  string `yaml:"input"`
	EventsPath  string `yaml:"events"`
	OutputVideo string `yaml:"output"`

	TargetZoom         float64 `yaml:"target_zoom"`
	TransitionDuration float64 `yaml:"transition_duration"`
	DwellTimeout       float64 `yaml:"dwell_timeout"`
	ClickClusterWindow float64 `yaml:"click_cluster_window"`
	BlurQuality        string  `yaml:"blur_quality"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`

	Mode         string `yaml:"mode"`
	Workers      int    `yaml:"workers"`
	VideoEncoder string `yaml:"video_encoder"`
	Quality      int    `yaml:"quality"`

	PathExport    string `yaml:"path_export,omitempty"`
	TelemetryPath string `yaml:"telemetry,omitempty"`
	ShowStats     bool   `yaml:"show_stats"`
}

// Default returns the stock configuration
func Default() *Config {
	return &Config{
		TargetZoom:         2.0,
		TransitionDuration: 0.8,
		DwellTimeout:       2.0,
		ClickClusterWindow: 3.0,
		BlurQuality:        "medium",
		Width:              1920,
		Height:             1080,
		FPS:                30,
		Mode:               ModeDirect,
		Quality:            23,
	}
}

// Load reads a YAML config file over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fails fast on the first invalid field
func (c *Config) Validate() error {
	if c.TargetZoom < 1.0 {
		return fmt.Errorf("target_zoom %.2f: must be >= 1.0", c.TargetZoom)
	}
	if c.TransitionDuration <= 0 {
		return fmt.Errorf("transition_duration %.2f: must be positive", c.TransitionDuration)
	}
	if c.DwellTimeout <= 0 {
		return fmt.Errorf("dwell_timeout %.2f: must be positive", c.DwellTimeout)
	}
	if c.ClickClusterWindow < 0 {
		return fmt.Errorf("click_cluster_window %.2f: must not be negative", c.ClickClusterWindow)
	}
	switch c.BlurQuality {
	case "off", "low", "medium", "high":
	default:
		return fmt.Errorf("blur_quality %q: must be off, low, medium or high", c.BlurQuality)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("output resolution %dx%d: must be positive", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps %d: must be positive", c.FPS)
	}
	switch c.Mode {
	case ModeDirect, ModeFilter:
	default:
		return fmt.Errorf("mode %q: must be %s or %s", c.Mode, ModeDirect, ModeFilter)
	}
	return nil
}
