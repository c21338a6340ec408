package ecs

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/der-antikeks/backdrop/engine"
)

// RenderComponent makes an entity drawable.
// Material and geometry are shared resources owned by the engine.ResourceManager.
type RenderComponent struct {
	component

	visible  bool
	order    int
	material *engine.Material
	geometry *engine.GeometryBuffer
}

var _ engine.Drawable = (*RenderComponent)(nil)

func NewRenderComponent(m *engine.Material, g *engine.GeometryBuffer) *RenderComponent {
	return &RenderComponent{
		component: newComponent(),
		visible:   true,
		material:  m,
		geometry:  g,
	}
}

func (r *RenderComponent) Type() ComponentType { return RenderType }

func (r *RenderComponent) Visible() bool              { return r.visible }
func (r *RenderComponent) SetVisible(v bool)          { r.visible = v }
func (r *RenderComponent) Order() int                 { return r.order }
func (r *RenderComponent) SetOrder(o int)             { r.order = o }
func (r *RenderComponent) Material() *engine.Material { return r.material }
func (r *RenderComponent) Geometry() *engine.GeometryBuffer {
	return r.geometry
}

func (r *RenderComponent) SetMaterial(m *engine.Material)       { r.material = m }
func (r *RenderComponent) SetGeometry(g *engine.GeometryBuffer) { r.geometry = g }

// ModelMatrix returns the matrix of the Transform of the owning entity
func (r *RenderComponent) ModelMatrix() (mgl32.Mat4, bool) {
	if r.entity == nil {
		return mgl32.Mat4{}, false
	}
	t := r.entity.Transform()
	if t == nil {
		return mgl32.Mat4{}, false
	}
	return t.Matrix(), true
}

// drawable reports whether the component belongs into the render queue
func (r *RenderComponent) drawable() bool {
	return r.visible && r.material != nil && r.geometry != nil
}

func (r *RenderComponent) Update(dt float64) {}

// Destroy unlinks the component, material and geometry stay with their owner
func (r *RenderComponent) Destroy() {
	if r.release(r) {
		r.material = nil
		r.geometry = nil
	}
}
