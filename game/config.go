package game

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/der-antikeks/backdrop/engine"
)

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	VSync  bool   `yaml:"vsync"`
}

type RenderConfig struct {
	Offscreen          bool       `yaml:"offscreen"`
	ClearColor         [4]float32 `yaml:"clear_color"`
	FallbackColor      [4]float32 `yaml:"fallback_color"` // flat color shown when the engine can not be built
	ModelMatrixUniform string     `yaml:"model_matrix_uniform"`
	TimeUniform        string     `yaml:"time_uniform"`
	ResolutionUniform  string     `yaml:"resolution_uniform"`
}

// Config of the engine and its host
type Config struct {
	Window    WindowConfig   `yaml:"window"`
	Render    RenderConfig   `yaml:"render"`
	FPSWindow time.Duration  `yaml:"fps_window"`
	Governor  GovernorConfig `yaml:"governor"`
	LogLevel  string         `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:  "backdrop",
			Width:  800,
			Height: 600,
			VSync:  true,
		},
		Render: RenderConfig{
			ClearColor:         [4]float32{0, 0, 0, 1},
			FallbackColor:      [4]float32{0.4, 0.494, 0.918, 1}, // #667eea
			ModelMatrixUniform: engine.DefaultModelMatrixUniform,
			TimeUniform:        "u_time",
			ResolutionUniform:  "u_resolution",
		},
		FPSWindow: time.Second,
		Governor:  DefaultGovernorConfig(),
		LogLevel:  "info",
	}
}

// LoadConfig overlays the yaml file at path onto DefaultConfig
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return ParseConfig(f)
}

// ParseConfig overlays yaml read from r onto DefaultConfig, empty input yields the defaults
func ParseConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects configurations the engine can not run with
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	case c.FPSWindow <= 0:
		return fmt.Errorf("invalid fps window %v", c.FPSWindow)
	case c.Governor.TargetFPS <= 0 || c.Governor.ReducedFPS <= 0:
		return fmt.Errorf("invalid governor rates %d/%d", c.Governor.TargetFPS, c.Governor.ReducedFPS)
	case c.Governor.ReducedFPS > c.Governor.TargetFPS:
		return fmt.Errorf("reduced rate %d above target rate %d", c.Governor.ReducedFPS, c.Governor.TargetFPS)
	case c.Governor.LowerBelow > c.Governor.RaiseAbove:
		return fmt.Errorf("governor thresholds inverted: lower below %v, raise above %v", c.Governor.LowerBelow, c.Governor.RaiseAbove)
	case c.Governor.Window <= 0:
		return fmt.Errorf("invalid governor window %v", c.Governor.Window)
	case c.Render.ModelMatrixUniform == "":
		return errors.New("empty model matrix uniform")
	}
	return nil
}

// RenderOptions maps the render section onto engine.RenderOptions
func (c Config) RenderOptions() engine.RenderOptions {
	mode := engine.Direct
	if c.Render.Offscreen {
		mode = engine.Offscreen
	}
	return engine.RenderOptions{
		Mode:               mode,
		ModelMatrixUniform: c.Render.ModelMatrixUniform,
	}
}
