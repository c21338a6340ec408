package engine

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ShaderProgram is a linked vertex+fragment program with cached locations.
// The program is immutable after link, the location tables are never invalidated.
type ShaderProgram struct {
	dev     Device
	program ProgramHandle

	uniforms   map[string]UniformLocation
	attributes map[string]AttribLocation

	fingerprint uint64
	destroyed   bool
}

// NewShaderProgram compiles both stages and links them.
// Compile and link errors are returned as *ConstructionError.
func NewShaderProgram(dev Device, vertex, fragment string) (*ShaderProgram, error) {
	if dev == nil {
		return nil, &ConstructionError{Resource: "shader", Err: ErrNoDevice}
	}

	// vertex shader
	vshader, err := dev.CreateShader(VertexShader, vertex)
	if err != nil {
		return nil, &ConstructionError{Resource: "shader", Err: fmt.Errorf("%w: vertex: %v", ErrCompile, err)}
	}
	defer dev.DeleteShader(vshader)

	// fragment shader
	fshader, err := dev.CreateShader(FragmentShader, fragment)
	if err != nil {
		return nil, &ConstructionError{Resource: "shader", Err: fmt.Errorf("%w: fragment: %v", ErrCompile, err)}
	}
	defer dev.DeleteShader(fshader)

	// program
	program, err := dev.CreateProgram(vshader, fshader)
	if err != nil {
		return nil, &ConstructionError{Resource: "shader", Err: fmt.Errorf("%w: %v", ErrLink, err)}
	}

	p := &ShaderProgram{
		dev:         dev,
		program:     program,
		uniforms:    make(map[string]UniformLocation),
		attributes:  make(map[string]AttribLocation),
		fingerprint: Fingerprint(vertex, fragment),
	}

	// locations
	for _, n := range dev.ActiveUniforms(program) {
		p.uniforms[n] = dev.UniformLocation(program, n)
	}
	for _, n := range dev.ActiveAttributes(program) {
		p.attributes[n] = dev.AttribLocation(program, n)
	}

	return p, nil
}

// Fingerprint hashes a pair of shader sources
func Fingerprint(vertex, fragment string) uint64 {
	d := xxhash.New()
	d.WriteString(vertex)
	d.WriteString("\x00")
	d.WriteString(fragment)
	return d.Sum64()
}

func (p *ShaderProgram) Handle() ProgramHandle { return p.program }
func (p *ShaderProgram) Fingerprint() uint64   { return p.fingerprint }
func (p *ShaderProgram) Destroyed() bool       { return p.destroyed }

func (p *ShaderProgram) Use() {
	if p.destroyed {
		return
	}
	p.dev.UseProgram(p.program)
}

// Uniform returns the location of an active uniform
func (p *ShaderProgram) Uniform(name string) (UniformLocation, bool) {
	l, ok := p.uniforms[name]
	return l, ok
}

// Attribute returns the location of an active attribute
func (p *ShaderProgram) Attribute(name string) (AttribLocation, bool) {
	l, ok := p.attributes[name]
	return l, ok
}

// SetUniform uploads 1-4 floats or a 4x4 matrix to the program, which must be in use.
// It reports false for names that are not active in the program.
func (p *ShaderProgram) SetUniform(name string, v []float32) bool {
	l, ok := p.uniforms[name]
	if !ok || p.destroyed {
		return false
	}

	switch len(v) {
	case 1:
		p.dev.Uniform1f(l, v[0])
	case 2:
		p.dev.Uniform2f(l, v[0], v[1])
	case 3:
		p.dev.Uniform3f(l, v[0], v[1], v[2])
	case 4:
		p.dev.Uniform4f(l, v[0], v[1], v[2], v[3])
	case 16:
		var m [16]float32
		copy(m[:], v)
		p.dev.UniformMatrix4fv(l, m)
	}
	return true
}

// SetSampler binds a texture unit to a sampler uniform
func (p *ShaderProgram) SetSampler(name string, unit int) {
	if l, ok := p.uniforms[name]; ok && !p.destroyed {
		p.dev.Uniform1i(l, int32(unit))
	}
}

// Destroy deletes the program, the instance must not be used afterwards
func (p *ShaderProgram) Destroy() {
	if p.destroyed {
		return
	}
	p.dev.DeleteProgram(p.program)
	p.destroyed = true
}
