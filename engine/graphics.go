package engine

import (
	"github.com/go-gl/mathgl/mgl32"
)

// GraphicsDevice wraps the render surface and its device.
// It owns the global draw state: depth test, blending, viewport and frame clear.
type GraphicsDevice struct {
	dev Device

	width, height int
	clearColor    mgl32.Vec4
	depthTest     bool
	blend         bool
}

// NewGraphicsDevice initializes global draw state for a surface of width x height pixels
func NewGraphicsDevice(dev Device, width, height int) (*GraphicsDevice, error) {
	if dev == nil {
		return nil, &ConstructionError{Resource: "device", Err: ErrNoDevice}
	}

	g := &GraphicsDevice{
		dev:        dev,
		clearColor: mgl32.Vec4{0, 0, 0, 1},
	}
	g.SetSize(width, height)

	// depth test and alpha blending, like the fullscreen shaders expect
	g.SetDepthTest(true)
	g.SetBlend(true)

	return g, nil
}

func (g *GraphicsDevice) Device() Device { return g.dev }

func (g *GraphicsDevice) Size() (width, height int) { return g.width, g.height }

// SetSize stores the surface size, a zero or negative dimension becomes 1
func (g *GraphicsDevice) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g.width, g.height = width, height
}

// ResetViewport sets the viewport to cover the whole surface
func (g *GraphicsDevice) ResetViewport() {
	g.dev.Viewport(0, 0, g.width, g.height)
}

func (g *GraphicsDevice) SetClearColor(c mgl32.Vec4) { g.clearColor = c }
func (g *GraphicsDevice) ClearColor() mgl32.Vec4     { return g.clearColor }

// Clear clears color and depth of the bound target
func (g *GraphicsDevice) Clear() {
	c := g.clearColor
	g.dev.ClearColor(c[0], c[1], c[2], c[3])
	g.dev.Clear(true, true)
}

func (g *GraphicsDevice) SetDepthTest(enabled bool) {
	g.depthTest = enabled
	g.dev.SetDepthTest(enabled)
}

func (g *GraphicsDevice) SetBlend(enabled bool) {
	g.blend = enabled
	g.dev.SetBlend(enabled)
}

func (g *GraphicsDevice) DepthTest() bool { return g.depthTest }
func (g *GraphicsDevice) Blend() bool     { return g.blend }
