package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Material binds a shared ShaderProgram to its own set of uniform values
type Material struct {
	program *ShaderProgram

	uniforms map[string][]float32
	order    []string // insertion order, applied in this order
}

func NewMaterial(p *ShaderProgram) *Material {
	return &Material{
		program:  p,
		uniforms: make(map[string][]float32),
	}
}

func (m *Material) Program() *ShaderProgram { return m.program }

// SetProgram swaps the shader while keeping the uniform values
func (m *Material) SetProgram(p *ShaderProgram) { m.program = p }

// SetUniform stores a scalar, a 2-4 component vector or a 4x4 matrix.
// Supported types: float32, float64, int, mgl32.Vec2/3/4, mgl32.Mat4,
// [2]/[3]/[4]float32 and []float32 of length 1-4.
func (m *Material) SetUniform(name string, value interface{}) error {
	var v []float32

	switch t := value.(type) {
	case float32:
		v = []float32{t}
	case float64:
		v = []float32{float32(t)}
	case int:
		v = []float32{float32(t)}

	case mgl32.Vec2:
		v = t[:]
	case mgl32.Vec3:
		v = t[:]
	case mgl32.Vec4:
		v = t[:]
	case mgl32.Mat4:
		v = t[:]

	case [2]float32:
		v = t[:]
	case [3]float32:
		v = t[:]
	case [4]float32:
		v = t[:]

	case []float32:
		if len(t) < 1 || len(t) > 4 {
			return fmt.Errorf("uniform %v: unsupported vector length %d", name, len(t))
		}
		v = t

	default:
		return fmt.Errorf("uniform %v has unknown type: %T", name, t)
	}

	if _, found := m.uniforms[name]; !found {
		m.order = append(m.order, name)
	}
	// own copy, callers may reuse their slices
	m.uniforms[name] = append([]float32(nil), v...)
	return nil
}

// Uniform returns a copy of the stored value
func (m *Material) Uniform(name string) ([]float32, bool) {
	v, ok := m.uniforms[name]
	if !ok {
		return nil, false
	}
	return append([]float32(nil), v...), true
}

func (m *Material) UniformNames() []string {
	return append([]string(nil), m.order...)
}

// Apply uploads all uniform values to the program, which must be in use.
// It returns the names the program has no active uniform for.
func (m *Material) Apply() (inactive []string) {
	if m.program == nil {
		return nil
	}
	for _, n := range m.order {
		if !m.program.SetUniform(n, m.uniforms[n]) {
			inactive = append(inactive, n)
		}
	}
	return inactive
}
