package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/der-antikeks/backdrop/engine"
)

func TestParseConfig_Empty(t *testing.T) {
	c, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestParseConfig_Overlay(t *testing.T) {
	c, err := ParseConfig(strings.NewReader(`
window:
  title: demo
  width: 1280
render:
  offscreen: true
  clear_color: [0.1, 0.2, 0.3, 1]
fps_window: 2s
governor:
  reduced_fps: 20
log_level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, "demo", c.Window.Title)
	assert.Equal(t, 1280, c.Window.Width)
	assert.Equal(t, 600, c.Window.Height)
	assert.True(t, c.Window.VSync)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, c.Render.ClearColor)
	assert.Equal(t, 2*time.Second, c.FPSWindow)
	assert.Equal(t, 60, c.Governor.TargetFPS)
	assert.Equal(t, 20, c.Governor.ReducedFPS)
	assert.Equal(t, "debug", c.LogLevel)

	opts := c.RenderOptions()
	assert.Equal(t, engine.Offscreen, opts.Mode)
	assert.Equal(t, engine.DefaultModelMatrixUniform, opts.ModelMatrixUniform)
}

func TestDefaultConfig_FallbackColor(t *testing.T) {
	c := DefaultConfig()
	assert.NotEqual(t, [4]float32{0, 0, 0, 1}, c.Render.FallbackColor)
	assert.NotEqual(t, c.Render.ClearColor, c.Render.FallbackColor)
	assert.Equal(t, float32(1), c.Render.FallbackColor[3])

	c, err := ParseConfig(strings.NewReader("render:\n  fallback_color: [0.46, 0.29, 0.64, 1]\n"))
	require.NoError(t, err)
	assert.Equal(t, [4]float32{0.46, 0.29, 0.64, 1}, c.Render.FallbackColor)
}

func TestParseConfig_Errors(t *testing.T) {
	for name, src := range map[string]string{
		"unknown field": "window:\n  colour: red\n",
		"syntax":        "window: [",
		"invalid":       "window:\n  width: 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backdrop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  height: 720\n"), 0o600))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 720, c.Window.Height)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"height", func(c *Config) { c.Window.Height = -1 }},
		{"fps window", func(c *Config) { c.FPSWindow = 0 }},
		{"target rate", func(c *Config) { c.Governor.TargetFPS = 0 }},
		{"reduced above target", func(c *Config) { c.Governor.ReducedFPS = 90 }},
		{"thresholds", func(c *Config) { c.Governor.LowerBelow = 58 }},
		{"governor window", func(c *Config) { c.Governor.Window = 0 }},
		{"model uniform", func(c *Config) { c.Render.ModelMatrixUniform = "" }},
	}

	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = NewLogger("loud")
	assert.Error(t, err)
}
