package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// DefaultModelMatrixUniform receives the model matrix of drawables with a transform
const DefaultModelMatrixUniform = "u_modelMatrix"

// Drawable is one entry of the render queue
type Drawable interface {
	Material() *Material
	Geometry() *GeometryBuffer
	// ModelMatrix reports false if the drawable has no transform
	ModelMatrix() (mgl32.Mat4, bool)
}

type RenderMode int

const (
	// Direct draws into the default framebuffer
	Direct RenderMode = iota
	// Offscreen draws into a texture which is blitted to the default framebuffer at EndFrame
	Offscreen
)

func (m RenderMode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Offscreen:
		return "offscreen"
	}
	return "unknown"
}

type RenderOptions struct {
	Mode               RenderMode
	ModelMatrixUniform string
}

// FrameStats counts the work of one frame
type FrameStats struct {
	DrawCalls       int
	ProgramSwitches int
}

// RenderSystem draws the render queue, one BeginFrame/Draw*/EndFrame cycle per frame.
// Calls out of order are programming errors and panic.
type RenderSystem struct {
	graphics *GraphicsDevice
	log      *zap.Logger

	mode         RenderMode
	modelUniform string

	// offscreen
	target *RenderTarget
	blit   *ShaderProgram
	quad   *GeometryBuffer

	// state cache
	currentProgram *ShaderProgram
	inFrame        bool
	destroyed      bool

	frame, last FrameStats

	// uniforms already reported as inactive
	inactive map[uniformKey]struct{}
}

type uniformKey struct {
	program *ShaderProgram
	name    string
}

func NewRenderSystem(g *GraphicsDevice, opts RenderOptions, log *zap.Logger) (*RenderSystem, error) {
	if g == nil {
		return nil, &ConstructionError{Resource: "rendersystem", Err: ErrNoDevice}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ModelMatrixUniform == "" {
		opts.ModelMatrixUniform = DefaultModelMatrixUniform
	}

	r := &RenderSystem{
		graphics:     g,
		log:          log,
		modelUniform: opts.ModelMatrixUniform,
		inactive:     make(map[uniformKey]struct{}),
	}
	if err := r.SetMode(opts.Mode); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *RenderSystem) Graphics() *GraphicsDevice { return r.graphics }
func (r *RenderSystem) Mode() RenderMode          { return r.mode }
func (r *RenderSystem) Target() *RenderTarget     { return r.target }
func (r *RenderSystem) InFrame() bool             { return r.inFrame }

// Stats returns the counters of the last completed frame
func (r *RenderSystem) Stats() FrameStats { return r.last }

// SetMode switches between direct and offscreen drawing.
// The offscreen target and the blit pass are created on first use.
func (r *RenderSystem) SetMode(mode RenderMode) error {
	if r.inFrame {
		panic("engine: SetMode inside a frame")
	}

	if mode == Offscreen {
		if err := r.initOffscreen(); err != nil {
			return err
		}
	}

	r.mode = mode
	r.log.Debug("render mode", zap.Stringer("mode", mode))
	return nil
}

func (r *RenderSystem) initOffscreen() error {
	dev := r.graphics.Device()
	w, h := r.graphics.Size()

	if r.target == nil {
		t, err := NewRenderTarget(dev, w, h)
		if err != nil {
			return err
		}
		r.target = t
	}

	if r.blit == nil {
		p, err := NewShaderProgram(dev, blitVertexShader, blitFragmentShader)
		if err != nil {
			return constructionError("shader", "blit", err)
		}
		r.blit = p
	}

	if r.quad == nil {
		q, err := NewGeometryBuffer(dev, fullscreenQuad, nil)
		if err != nil {
			return constructionError("geometry", "blit", err)
		}
		r.quad = q
	}

	return nil
}

// BeginFrame binds the destination of the frame, sets the viewport and clears it
func (r *RenderSystem) BeginFrame() {
	if r.destroyed {
		panic("engine: BeginFrame on destroyed render system")
	}
	if r.inFrame {
		panic("engine: BeginFrame inside a frame")
	}
	r.inFrame = true
	r.frame = FrameStats{}

	// bind rendertarget
	if r.mode == Offscreen {
		r.target.Bind()
	} else {
		r.graphics.Device().BindFramebuffer(0)
		r.graphics.ResetViewport()
	}

	// clear screen
	r.graphics.Clear()
}

// Draw issues one draw call for d
func (r *RenderSystem) Draw(d Drawable) {
	if !r.inFrame {
		panic("engine: Draw outside of a frame")
	}

	material, geometry := d.Material(), d.Geometry()
	if material == nil || geometry == nil || material.Program() == nil {
		panic("engine: Draw without material, program or geometry")
	}

	// use program
	program := material.Program()
	if r.currentProgram != program {
		program.Use()
		r.currentProgram = program
		r.frame.ProgramSwitches++
	}

	// ### bind material
	for _, name := range material.Apply() {
		r.reportInactive(program, name)
	}

	if m, ok := d.ModelMatrix(); ok {
		program.SetUniform(r.modelUniform, m[:])
	}

	// ### draw
	geometry.Bind(program)
	geometry.Draw()
	geometry.Unbind()

	r.frame.DrawCalls++
}

// reportInactive logs a material uniform the program does not use, once per program
func (r *RenderSystem) reportInactive(p *ShaderProgram, name string) {
	k := uniformKey{program: p, name: name}
	if _, seen := r.inactive[k]; seen {
		return
	}
	r.inactive[k] = struct{}{}
	r.log.Debug("uniform not active in program",
		zap.String("uniform", name),
		zap.Uint64("fingerprint", p.Fingerprint()))
}

// EndFrame finishes the frame, in offscreen mode the target is copied to the default framebuffer
func (r *RenderSystem) EndFrame() {
	if !r.inFrame {
		panic("engine: EndFrame outside of a frame")
	}

	if r.mode == Offscreen {
		r.blitTarget()
	}

	r.currentProgram = nil
	r.inFrame = false
	r.last = r.frame
}

func (r *RenderSystem) blitTarget() {
	dev := r.graphics.Device()

	r.target.Unbind()
	r.graphics.ResetViewport()

	depth := r.graphics.DepthTest()
	if depth {
		r.graphics.SetDepthTest(false)
	}

	r.blit.Use()
	dev.BindTexture(0, r.target.Texture())
	r.blit.SetSampler("u_texture", 0)

	r.quad.Bind(r.blit)
	r.quad.Draw()
	r.quad.Unbind()

	dev.BindTexture(0, 0)
	if depth {
		r.graphics.SetDepthTest(true)
	}
}

// Resize updates the surface size, recreates the offscreen target and resets the viewport
func (r *RenderSystem) Resize(width, height int) error {
	r.graphics.SetSize(width, height)
	w, h := r.graphics.Size()

	if r.target != nil {
		if err := r.target.Resize(w, h); err != nil {
			return err
		}
	}

	r.graphics.ResetViewport()
	r.log.Debug("resize", zap.Int("width", w), zap.Int("height", h))
	return nil
}

// Destroy releases the offscreen target and the blit pass
func (r *RenderSystem) Destroy() {
	if r.destroyed {
		return
	}
	if r.target != nil {
		r.target.Destroy()
	}
	if r.blit != nil {
		r.blit.Destroy()
	}
	if r.quad != nil {
		r.quad.Destroy()
	}
	r.currentProgram = nil
	r.inFrame = false
	r.inactive = nil
	r.destroyed = true
}
