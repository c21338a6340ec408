// Package window hosts the engine in a glfw window with an OpenGL 3.3 core context.
// All functions must be called from the main, locked OS thread.
package window

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/der-antikeks/backdrop/engine"
	"github.com/der-antikeks/backdrop/game"
)

var (
	_ game.FrameSource = (*Window)(nil)
	_ game.Presenter   = (*Window)(nil)
)

type Window struct {
	log    *zap.Logger
	window *glfw.Window

	width, height int // framebuffer pixels
	onResize      func(width, height int)

	// a skipped frame waits one refresh instead of blocking in SwapBuffers
	refresh   time.Duration
	presented bool
}

// New initializes glfw, opens the window and makes its context current
func New(cfg game.WindowConfig, log *zap.Logger) (*Window, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	w, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	w.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	s := &Window{
		log:       log.Named("window"),
		window:    w,
		refresh:   refreshInterval(),
		presented: true,
	}
	s.width, s.height = w.GetFramebufferSize()

	// callbacks
	w.SetFramebufferSizeCallback(s.resize)
	w.SetKeyCallback(s.key)

	s.log.Info("window created",
		zap.Int("width", s.width),
		zap.Int("height", s.height),
		zap.Float64("dpr", s.DevicePixelRatio()),
		zap.Duration("refresh", s.refresh))
	return s, nil
}

func refreshInterval() time.Duration {
	rate := 60
	if m := glfw.GetPrimaryMonitor(); m != nil {
		if mode := m.GetVideoMode(); mode != nil && mode.RefreshRate > 0 {
			rate = mode.RefreshRate
		}
	}
	return time.Second / time.Duration(rate)
}

// Size returns the framebuffer size in physical pixels
func (s *Window) Size() (width, height int) {
	return s.width, s.height
}

// DevicePixelRatio is the ratio of framebuffer pixels to logical window units
func (s *Window) DevicePixelRatio() float64 {
	lw, _ := s.window.GetSize()
	if lw < 1 {
		return 1
	}
	fw, _ := s.window.GetFramebufferSize()
	return float64(fw) / float64(lw)
}

// OnResize registers f to receive framebuffer size changes
func (s *Window) OnResize(f func(width, height int)) {
	s.onResize = f
}

func (s *Window) resize(w *glfw.Window, width, height int) {
	lw, lh := w.GetSize()
	width, height = engine.SurfaceSize(lw, lh, s.DevicePixelRatio())
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height

	s.log.Debug("resize", zap.Int("width", width), zap.Int("height", height))
	if s.onResize != nil {
		s.onResize(width, height)
	}
}

// key closes the window on escape
func (s *Window) key(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		s.Close()
	}
}

// Close asks the frame source to end
func (s *Window) Close() {
	s.window.SetShouldClose(true)
}

// NextFrame processes events and returns the time of the next frame.
// It implements game.FrameSource, pacing comes from Present or, after a skipped frame, one refresh interval.
func (s *Window) NextFrame(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	if !s.presented {
		time.Sleep(s.refresh)
	}
	s.presented = false
	glfw.PollEvents()

	if s.window.ShouldClose() {
		return time.Time{}, game.ErrSourceClosed
	}
	return time.Now(), nil
}

// Present shows the rendered frame and blocks on vsync.
// It implements game.Presenter.
func (s *Window) Present() {
	s.window.SwapBuffers()
	s.presented = true
}

// Destroy closes the window and terminates glfw
func (s *Window) Destroy() {
	s.window.Destroy()
	glfw.Terminate()
}
