package game

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/der-antikeks/backdrop/ecs"
	"github.com/der-antikeks/backdrop/engine"
)

var (
	ErrInvalidState = errors.New("engine is not running")
	ErrDestroyed    = errors.New("engine is destroyed")
)

type State int

const (
	Stopped State = iota
	Running
	Destroyed
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

// Engine owns the scene, the resources and the render system and drives them once per frame.
// All methods must be called from the goroutine owning the graphics context.
type Engine struct {
	cfg Config
	log *zap.Logger

	graphics  *engine.GraphicsDevice
	resources *engine.ResourceManager
	scene     *ecs.Scene
	renderer  *engine.RenderSystem
	events    *EventBus
	governor  *Governor

	state State

	// timing
	lastTick time.Time
	delta    float64

	// fps
	fps       float64
	frames    int
	fpsStart  time.Time
	fpsWindow time.Duration
}

// NewEngine composes an engine from its parts, see ProviderSet
func NewEngine(
	cfg Config,
	log *zap.Logger,
	graphics *engine.GraphicsDevice,
	resources *engine.ResourceManager,
	scene *ecs.Scene,
	renderer *engine.RenderSystem,
	events *EventBus,
	governor *Governor,
) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	graphics.SetClearColor(mgl32.Vec4(cfg.Render.ClearColor))

	return &Engine{
		cfg:       cfg,
		log:       log,
		graphics:  graphics,
		resources: resources,
		scene:     scene,
		renderer:  renderer,
		events:    events,
		governor:  governor,
		fpsWindow: cfg.FPSWindow,
	}
}

// New builds an engine on dev, construction errors are *engine.ConstructionError
func New(dev engine.Device, cfg Config, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	graphics, err := ProvideGraphicsDevice(dev, cfg)
	if err != nil {
		return nil, err
	}
	renderer, err := ProvideRenderSystem(graphics, cfg, log)
	if err != nil {
		return nil, err
	}

	return NewEngine(cfg, log,
		graphics,
		ProvideResourceManager(dev, log),
		ProvideScene(log),
		renderer,
		NewEventBus(log),
		ProvideGovernor(cfg, log),
	), nil
}

func (e *Engine) State() State                       { return e.state }
func (e *Engine) Running() bool                      { return e.state == Running }
func (e *Engine) Config() Config                     { return e.cfg }
func (e *Engine) Logger() *zap.Logger                { return e.log }
func (e *Engine) Events() *EventBus                  { return e.events }
func (e *Engine) Scene() *ecs.Scene                  { return e.scene }
func (e *Engine) Resources() *engine.ResourceManager { return e.resources }
func (e *Engine) Renderer() *engine.RenderSystem     { return e.renderer }
func (e *Engine) Graphics() *engine.GraphicsDevice   { return e.graphics }
func (e *Engine) Governor() *Governor                { return e.governor }

// FPS returns the rendered frames per second of the last completed fps window
func (e *Engine) FPS() float64 { return e.fps }

// DeltaTime returns the seconds between the last two ticks
func (e *Engine) DeltaTime() float64 { return e.delta }

// resource and entity creation

func (e *Engine) CreateEntity(name string) (*ecs.Entity, error) {
	if e.state == Destroyed {
		return nil, ErrDestroyed
	}
	return e.scene.CreateEntity(name), nil
}

func (e *Engine) CreateShader(name, vertex, fragment string) (*engine.ShaderProgram, error) {
	if e.state == Destroyed {
		return nil, ErrDestroyed
	}
	return e.resources.CreateShader(name, vertex, fragment)
}

func (e *Engine) CreateMaterial(name string, shader *engine.ShaderProgram) (*engine.Material, error) {
	if e.state == Destroyed {
		return nil, ErrDestroyed
	}
	return e.resources.CreateMaterial(name, shader), nil
}

func (e *Engine) CreateGeometry(name string, vertices []float32, indices []uint16) (*engine.GeometryBuffer, error) {
	if e.state == Destroyed {
		return nil, ErrDestroyed
	}
	return e.resources.CreateGeometry(name, vertices, indices)
}

// lifecycle

func (e *Engine) setState(s State) {
	from := e.state
	e.state = s
	e.log.Info("engine state", zap.Stringer("from", from), zap.Stringer("to", s))
	e.events.Publish(MessageState{From: from, To: s})
}

// Start begins ticking, it does nothing if already running or destroyed
func (e *Engine) Start() {
	if e.state != Stopped {
		return
	}

	e.lastTick = time.Time{}
	e.delta = 0
	e.frames = 0
	e.fpsStart = time.Time{}
	e.governor.Reset()

	e.setState(Running)
}

// Stop ends ticking after the frame in flight
func (e *Engine) Stop() {
	if e.state != Running {
		return
	}
	e.setState(Stopped)
}

// Resize forwards the surface size to the render system and publishes MessageResize
func (e *Engine) Resize(width, height int) error {
	if e.state == Destroyed {
		return ErrDestroyed
	}
	if err := e.renderer.Resize(width, height); err != nil {
		return err
	}

	w, h := e.graphics.Size()
	e.events.Publish(MessageResize{Width: w, Height: h})
	return nil
}

// Destroy stops the engine and releases everything it owns, the engine is unusable afterwards
func (e *Engine) Destroy() {
	if e.state == Destroyed {
		return
	}
	e.Stop()

	e.scene.Destroy()
	e.resources.Destroy()
	e.renderer.Destroy()

	e.setState(Destroyed)
	e.events.Clear()
}

// Tick runs one frame at timestamp now: update, then render if the governor allows it.
// It reports whether a frame was rendered and does nothing unless the engine is running.
func (e *Engine) Tick(now time.Time) bool {
	if e.state != Running {
		return false
	}

	// calc delay
	if e.lastTick.IsZero() {
		e.delta = 0
	} else {
		e.delta = now.Sub(e.lastTick).Seconds()
	}
	e.lastTick = now

	// update
	e.scene.Update(e.delta)

	// a script may have destroyed the engine
	if e.state == Destroyed {
		return false
	}

	if !e.governor.ShouldRender(now) {
		return false
	}

	e.render()
	e.countFrame(now)
	return true
}

func (e *Engine) render() {
	e.renderer.BeginFrame()
	for _, rc := range e.scene.RenderQueue() {
		e.renderer.Draw(rc)
	}
	e.renderer.EndFrame()
}

// countFrame counts rendered frames and publishes the rate once per fps window
func (e *Engine) countFrame(now time.Time) {
	// the first frame opens the window
	if e.fpsStart.IsZero() {
		e.fpsStart = now
		return
	}
	e.frames++

	span := now.Sub(e.fpsStart)
	if span < e.fpsWindow {
		return
	}

	e.fps = float64(e.frames) / span.Seconds()
	e.frames = 0
	e.fpsStart = now

	e.events.Publish(MessageFPS{FPS: e.fps})
}
