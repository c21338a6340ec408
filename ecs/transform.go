package ecs

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform places an entity in 2d space: rotation about z, non-uniform scale and translation.
// The matrix is computed lazily.
type Transform struct {
	component

	position mgl32.Vec3
	rotation mgl32.Vec3 // radians, only z is applied
	scale    mgl32.Vec3

	matrix mgl32.Mat4
	dirty  bool
}

func NewTransform() *Transform {
	return &Transform{
		component: newComponent(),
		scale:     mgl32.Vec3{1, 1, 1},
		matrix:    mgl32.Ident4(),
		dirty:     true,
	}
}

func (t *Transform) Type() ComponentType { return TransformType }

func (t *Transform) Position() mgl32.Vec3 { return t.position }
func (t *Transform) Rotation() mgl32.Vec3 { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3    { return t.scale }
func (t *Transform) Dirty() bool          { return t.dirty }

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.dirty = true
}

func (t *Transform) SetRotation(r mgl32.Vec3) {
	t.rotation = r
	t.dirty = true
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.dirty = true
}

// Matrix returns the model matrix, it is only recomputed after a change
func (t *Transform) Matrix() mgl32.Mat4 {
	if t.dirty {
		t.updateMatrix()
	}
	return t.matrix
}

func (t *Transform) updateMatrix() {
	s, c := math.Sincos(float64(t.rotation.Z()))
	sin, cos := float32(s), float32(c)
	sx, sy, sz := t.scale.Elem()

	t.matrix = mgl32.Mat4{
		cos * sx, sin * sx, 0, 0,
		-sin * sy, cos * sy, 0, 0,
		0, 0, sz, 0,
		t.position.X(), t.position.Y(), t.position.Z(), 1,
	}
	t.dirty = false
}

func (t *Transform) Update(dt float64) {}

func (t *Transform) Destroy() {
	t.release(t)
}
