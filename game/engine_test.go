package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/der-antikeks/backdrop/ecs"
	"github.com/der-antikeks/backdrop/engine"
	"github.com/der-antikeks/backdrop/engine/gltest"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, mutate func(*Config)) (*gltest.Device, *Engine) {
	t.Helper()

	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())

	dev := gltest.New()
	e, err := New(dev, cfg, nil)
	require.NoError(t, err)
	return dev, e
}

// ticks runs n frames at the given rate starting at from and returns the time of the last one
func ticks(e *Engine, from time.Time, n int, fps int) time.Time {
	step := time.Second / time.Duration(fps)
	ts := from
	for i := 0; i < n; i++ {
		ts = from.Add(time.Duration(i) * step)
		e.Tick(ts)
	}
	return ts
}

func TestEngine_Lifecycle(t *testing.T) {
	_, e := newTestEngine(t, nil)

	var states []State
	e.Events().Subscribe(StateMessageType, PriorityFirst, func(m Message) {
		states = append(states, m.(MessageState).To)
	})

	assert.Equal(t, Stopped, e.State())
	e.Start()
	e.Start()
	assert.True(t, e.Running())
	e.Stop()
	e.Stop()
	assert.Equal(t, Stopped, e.State())

	assert.Equal(t, []State{Running, Stopped}, states)
}

func TestEngine_TickUpdatesThenRenders(t *testing.T) {
	dev, e := newTestEngine(t, nil)

	var order []string
	en, err := e.CreateEntity("probe")
	require.NoError(t, err)
	en.AddComponent(ecs.NewScript(func(*ecs.Entity, float64) {
		order = append(order, "update")
		assert.False(t, e.Renderer().InFrame())
	}, nil))

	// not running: no side effects
	e.Tick(epoch)
	assert.Empty(t, order)
	assert.Zero(t, dev.Clears)

	e.Start()
	e.Tick(epoch)
	assert.Equal(t, []string{"update"}, order)
	assert.Equal(t, 1, dev.Clears)
	assert.Zero(t, e.DeltaTime())

	e.Tick(epoch.Add(100 * time.Millisecond))
	assert.InDelta(t, 0.1, e.DeltaTime(), 1e-9)
	assert.Equal(t, 2, dev.Clears)
}

func TestEngine_DeltaResetsOnStart(t *testing.T) {
	_, e := newTestEngine(t, nil)

	e.Start()
	e.Tick(epoch)
	e.Tick(epoch.Add(50 * time.Millisecond))
	e.Stop()

	e.Start()
	e.Tick(epoch.Add(10 * time.Second))
	assert.Zero(t, e.DeltaTime())
}

func TestEngine_GovernorSkipsRenderNotUpdate(t *testing.T) {
	dev, e := newTestEngine(t, nil)

	var updates int
	en, _ := e.CreateEntity("probe")
	en.AddComponent(ecs.NewScript(func(*ecs.Entity, float64) { updates++ }, nil))

	e.Start()
	// 120 ticks per second against a 60 fps target
	ticks(e, epoch, 121, 120)

	assert.Equal(t, 121, updates)
	assert.Equal(t, 61, dev.Clears)
}

func TestEngine_FPS(t *testing.T) {
	_, e := newTestEngine(t, nil)

	var published []float64
	e.Events().Subscribe(FPSMessageType, PriorityLast, func(m Message) {
		published = append(published, m.(MessageFPS).FPS)
	})

	e.Start()
	// 25 fps for two seconds
	ticks(e, epoch, 51, 25)

	require.Len(t, published, 2)
	assert.InDelta(t, 25, published[0], 1e-9)
	assert.InDelta(t, 25, published[1], 1e-9)
	assert.InDelta(t, 25, e.FPS(), 1e-9)
}

func TestEngine_StopFreezes(t *testing.T) {
	dev, e := newTestEngine(t, nil)

	var updates int
	en, _ := e.CreateEntity("probe")
	en.AddComponent(ecs.NewScript(func(*ecs.Entity, float64) { updates++ }, nil))

	e.Start()
	last := ticks(e, epoch, 26, 25)
	fps := e.FPS()
	require.NotZero(t, fps)

	e.Stop()
	clears, u := dev.Clears, updates

	// frames delivered after Stop
	ticks(e, last.Add(time.Second/25), 90, 10)

	assert.Equal(t, u, updates)
	assert.Equal(t, clears, dev.Clears)
	assert.Equal(t, fps, e.FPS())
}

func TestEngine_StopFromScriptFinishesFrame(t *testing.T) {
	dev, e := newTestEngine(t, nil)

	var updates int
	en, _ := e.CreateEntity("stopper")
	en.AddComponent(ecs.NewScript(func(*ecs.Entity, float64) {
		updates++
		e.Stop()
	}, nil))

	e.Start()
	e.Tick(epoch)
	e.Tick(epoch.Add(time.Second))

	assert.Equal(t, 1, updates)
	assert.Equal(t, 1, dev.Clears)
	assert.False(t, e.Running())
}

func TestEngine_Resize(t *testing.T) {
	dev, e := newTestEngine(t, func(c *Config) { c.Render.Offscreen = true })

	var sizes []MessageResize
	e.Events().Subscribe(ResizeMessageType, PriorityFirst, func(m Message) {
		sizes = append(sizes, m.(MessageResize))
	})

	require.NoError(t, e.Resize(800, 600))
	require.NoError(t, e.Resize(1920, 1080))

	assert.Equal(t, []MessageResize{{800, 600}, {1920, 1080}}, sizes)

	e.Start()
	e.Tick(epoch)

	// the scene pass goes to the target, the blit to the surface
	assert.Equal(t, gltest.Viewport{Width: 1920, Height: 1080}, dev.LastViewport())
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, engine.FramebufferHandle(0), dev.Draws[0].Framebuffer)

	w, h := e.Renderer().Target().Size()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestEngine_Destroy(t *testing.T) {
	dev, e := newTestEngine(t, nil)

	shader, err := e.CreateShader("s", BackgroundVertexShader, BackgroundFragmentShader)
	require.NoError(t, err)
	geo, err := e.CreateGeometry("g", engine.FullscreenQuad(), nil)
	require.NoError(t, err)
	en, err := e.CreateEntity("e")
	require.NoError(t, err)

	var fired bool
	e.Events().Subscribe(FPSMessageType, PriorityFirst, func(Message) { fired = true })

	e.Start()
	e.Tick(epoch)
	e.Destroy()
	e.Destroy()

	assert.Equal(t, Destroyed, e.State())
	assert.True(t, shader.Destroyed())
	assert.True(t, geo.Destroyed())
	assert.True(t, en.Destroyed())
	assert.Zero(t, e.Events().Len(FPSMessageType))

	programs, buffers, _, _ := dev.Live()
	assert.Zero(t, programs)
	assert.Zero(t, buffers)

	// unusable afterwards
	clears := dev.Clears
	e.Start()
	e.Tick(epoch.Add(time.Second))
	assert.Equal(t, clears, dev.Clears)
	assert.False(t, fired)

	_, err = e.CreateEntity("x")
	assert.ErrorIs(t, err, ErrDestroyed)
	_, err = e.CreateShader("x", BackgroundVertexShader, BackgroundFragmentShader)
	assert.ErrorIs(t, err, ErrDestroyed)
	_, err = e.CreateMaterial("x", nil)
	assert.ErrorIs(t, err, ErrDestroyed)
	_, err = e.CreateGeometry("x", engine.FullscreenQuad(), nil)
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.ErrorIs(t, e.Resize(1, 1), ErrDestroyed)
}

func TestNew_ConstructionErrors(t *testing.T) {
	_, err := New(nil, DefaultConfig(), nil)
	assert.True(t, errors.Is(err, engine.ErrNoDevice))

	dev := gltest.New()
	dev.FailFramebuffer = true
	cfg := DefaultConfig()
	cfg.Render.Offscreen = true

	_, err = New(dev, cfg, nil)
	var ce *engine.ConstructionError
	assert.True(t, errors.As(err, &ce))
	assert.True(t, errors.Is(err, engine.ErrFramebuffer))
}
