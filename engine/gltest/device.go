// Package gltest provides an in-memory engine.Device that records every call.
//
// Shaders containing an "#error" directive fail to compile, like they do on a
// real driver. Active uniforms and attributes are taken from the
// "uniform" and "in"/"attribute" declarations of the sources.
package gltest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/der-antikeks/backdrop/engine"
)

var (
	ErrLink        = errors.New("gltest: link failure")
	ErrFramebuffer = errors.New("gltest: incomplete framebuffer")
)

type Shader struct {
	Stage   engine.ShaderStage
	Source  string
	Deleted bool
}

type Program struct {
	Vertex, Fragment string
	Uniforms         []string
	Attributes       []string
	Values           map[string][]float32
	Deleted          bool
}

type Buffer struct {
	Floats  []float32
	Indices []uint16
	Deleted bool
}

type Texture struct {
	Width, Height int
	Deleted       bool
}

type Framebuffer struct {
	Color         engine.TextureHandle
	Width, Height int
	Deleted       bool
}

type Viewport struct {
	X, Y, Width, Height int
}

// Draw is one recorded draw call
type Draw struct {
	Program     engine.ProgramHandle
	Framebuffer engine.FramebufferHandle
	Indexed     bool
	First       int
	Count       int
}

type uniformRef struct {
	program engine.ProgramHandle
	name    string
}

// Device records state and calls, handles start at 1
type Device struct {
	// failure injection
	FailLink        bool
	FailFramebuffer bool

	Shaders      map[engine.ShaderHandle]*Shader
	Programs     map[engine.ProgramHandle]*Program
	Buffers      map[engine.BufferHandle]*Buffer
	Textures     map[engine.TextureHandle]*Texture
	Framebuffers map[engine.FramebufferHandle]*Framebuffer

	Viewports   []Viewport
	Draws       []Draw
	UsePrograms []engine.ProgramHandle
	Calls       []string
	Clears      int

	CurrentProgram     engine.ProgramHandle
	CurrentFramebuffer engine.FramebufferHandle
	ArrayBuffer        engine.BufferHandle
	ElementBuffer      engine.BufferHandle
	Textures0          engine.TextureHandle
	EnabledAttribs     map[engine.AttribLocation]int
	ClearColorValue    [4]float32
	DepthTest, Blend   bool

	next     uint32
	uniforms map[engine.UniformLocation]uniformRef
	nextLoc  int32
}

func New() *Device {
	return &Device{
		Shaders:        make(map[engine.ShaderHandle]*Shader),
		Programs:       make(map[engine.ProgramHandle]*Program),
		Buffers:        make(map[engine.BufferHandle]*Buffer),
		Textures:       make(map[engine.TextureHandle]*Texture),
		Framebuffers:   make(map[engine.FramebufferHandle]*Framebuffer),
		EnabledAttribs: make(map[engine.AttribLocation]int),
		uniforms:       make(map[engine.UniformLocation]uniformRef),
	}
}

var _ engine.Device = (*Device)(nil)

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) call(name string) {
	d.Calls = append(d.Calls, name)
}

// LastViewport returns the most recent viewport, zero if none was set
func (d *Device) LastViewport() Viewport {
	if len(d.Viewports) == 0 {
		return Viewport{}
	}
	return d.Viewports[len(d.Viewports)-1]
}

// Uniform returns the last value uploaded to a uniform of program p
func (d *Device) Uniform(p engine.ProgramHandle, name string) ([]float32, bool) {
	prg, ok := d.Programs[p]
	if !ok {
		return nil, false
	}
	v, ok := prg.Values[name]
	return v, ok
}

// Live counts the not deleted programs, buffers, textures and framebuffers
func (d *Device) Live() (programs, buffers, textures, framebuffers int) {
	for _, p := range d.Programs {
		if !p.Deleted {
			programs++
		}
	}
	for _, b := range d.Buffers {
		if !b.Deleted {
			buffers++
		}
	}
	for _, t := range d.Textures {
		if !t.Deleted {
			textures++
		}
	}
	for _, f := range d.Framebuffers {
		if !f.Deleted {
			framebuffers++
		}
	}
	return
}

// shaders and programs

func (d *Device) CreateShader(stage engine.ShaderStage, source string) (engine.ShaderHandle, error) {
	d.call("CreateShader")
	if strings.TrimSpace(source) == "" {
		return 0, fmt.Errorf("%v shader: empty source", stage)
	}
	if strings.Contains(source, "#error") {
		return 0, fmt.Errorf("%v shader: #error directive", stage)
	}
	h := engine.ShaderHandle(d.handle())
	d.Shaders[h] = &Shader{Stage: stage, Source: source}
	return h, nil
}

func (d *Device) DeleteShader(s engine.ShaderHandle) {
	d.call("DeleteShader")
	if sh, ok := d.Shaders[s]; ok {
		sh.Deleted = true
	}
}

func (d *Device) CreateProgram(vertex, fragment engine.ShaderHandle) (engine.ProgramHandle, error) {
	d.call("CreateProgram")
	vs, vok := d.Shaders[vertex]
	fs, fok := d.Shaders[fragment]
	if !vok || !fok || d.FailLink {
		return 0, ErrLink
	}

	p := &Program{
		Vertex:     vs.Source,
		Fragment:   fs.Source,
		Uniforms:   declarations(vs.Source+"\n"+fs.Source, "uniform"),
		Attributes: append(declarations(vs.Source, "in"), declarations(vs.Source, "attribute")...),
		Values:     make(map[string][]float32),
	}
	h := engine.ProgramHandle(d.handle())
	d.Programs[h] = p
	return h, nil
}

// declarations collects the names of "<keyword> <type> <name>;" lines
func declarations(src, keyword string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(src, "\n") {
		f := strings.Fields(strings.TrimSuffix(strings.TrimSpace(line), ";"))
		if len(f) < 3 || f[0] != keyword {
			continue
		}
		n := f[len(f)-1]
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

func (d *Device) DeleteProgram(p engine.ProgramHandle) {
	d.call("DeleteProgram")
	if prg, ok := d.Programs[p]; ok {
		prg.Deleted = true
	}
}

func (d *Device) UseProgram(p engine.ProgramHandle) {
	d.call("UseProgram")
	d.CurrentProgram = p
	d.UsePrograms = append(d.UsePrograms, p)
}

func (d *Device) ActiveUniforms(p engine.ProgramHandle) []string {
	if prg, ok := d.Programs[p]; ok {
		return append([]string(nil), prg.Uniforms...)
	}
	return nil
}

func (d *Device) ActiveAttributes(p engine.ProgramHandle) []string {
	if prg, ok := d.Programs[p]; ok {
		return append([]string(nil), prg.Attributes...)
	}
	return nil
}

func (d *Device) UniformLocation(p engine.ProgramHandle, name string) engine.UniformLocation {
	prg, ok := d.Programs[p]
	if !ok || !contains(prg.Uniforms, name) {
		return -1
	}
	l := engine.UniformLocation(d.nextLoc)
	d.nextLoc++
	d.uniforms[l] = uniformRef{program: p, name: name}
	return l
}

func (d *Device) AttribLocation(p engine.ProgramHandle, name string) engine.AttribLocation {
	prg, ok := d.Programs[p]
	if !ok {
		return -1
	}
	for i, n := range prg.Attributes {
		if n == name {
			return engine.AttribLocation(i)
		}
	}
	return -1
}

func contains(l []string, s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// uniforms

func (d *Device) setUniform(l engine.UniformLocation, v ...float32) {
	d.call("Uniform")
	ref, ok := d.uniforms[l]
	if !ok {
		return
	}
	if ref.program != d.CurrentProgram {
		panic(fmt.Sprintf("gltest: uniform %q set while program %d is not in use", ref.name, ref.program))
	}
	d.Programs[ref.program].Values[ref.name] = v
}

func (d *Device) Uniform1f(l engine.UniformLocation, x float32) { d.setUniform(l, x) }
func (d *Device) Uniform2f(l engine.UniformLocation, x, y float32) {
	d.setUniform(l, x, y)
}
func (d *Device) Uniform3f(l engine.UniformLocation, x, y, z float32) {
	d.setUniform(l, x, y, z)
}
func (d *Device) Uniform4f(l engine.UniformLocation, x, y, z, w float32) {
	d.setUniform(l, x, y, z, w)
}
func (d *Device) Uniform1i(l engine.UniformLocation, x int32) { d.setUniform(l, float32(x)) }
func (d *Device) UniformMatrix4fv(l engine.UniformLocation, m [16]float32) {
	d.setUniform(l, m[:]...)
}

// buffers

func (d *Device) CreateBuffer() engine.BufferHandle {
	d.call("CreateBuffer")
	h := engine.BufferHandle(d.handle())
	d.Buffers[h] = &Buffer{}
	return h
}

func (d *Device) DeleteBuffer(b engine.BufferHandle) {
	d.call("DeleteBuffer")
	if buf, ok := d.Buffers[b]; ok {
		buf.Deleted = true
	}
}

func (d *Device) BindBuffer(t engine.BufferTarget, b engine.BufferHandle) {
	if t == engine.ElementArrayBuffer {
		d.ElementBuffer = b
	} else {
		d.ArrayBuffer = b
	}
}

func (d *Device) BufferFloat32(t engine.BufferTarget, data []float32) {
	if buf, ok := d.Buffers[d.bound(t)]; ok {
		buf.Floats = append([]float32(nil), data...)
	}
}

func (d *Device) BufferUint16(t engine.BufferTarget, data []uint16) {
	if buf, ok := d.Buffers[d.bound(t)]; ok {
		buf.Indices = append([]uint16(nil), data...)
	}
}

func (d *Device) bound(t engine.BufferTarget) engine.BufferHandle {
	if t == engine.ElementArrayBuffer {
		return d.ElementBuffer
	}
	return d.ArrayBuffer
}

func (d *Device) EnableVertexAttrib(l engine.AttribLocation, size int) {
	d.EnabledAttribs[l] = size
}

func (d *Device) DisableVertexAttrib(l engine.AttribLocation) {
	delete(d.EnabledAttribs, l)
}

// textures and framebuffers

func (d *Device) CreateTexture(width, height int) engine.TextureHandle {
	d.call("CreateTexture")
	h := engine.TextureHandle(d.handle())
	d.Textures[h] = &Texture{Width: width, Height: height}
	return h
}

func (d *Device) DeleteTexture(t engine.TextureHandle) {
	d.call("DeleteTexture")
	if tex, ok := d.Textures[t]; ok {
		tex.Deleted = true
	}
}

func (d *Device) BindTexture(unit int, t engine.TextureHandle) {
	if unit == 0 {
		d.Textures0 = t
	}
}

func (d *Device) CreateFramebuffer(color engine.TextureHandle, width, height int) (engine.FramebufferHandle, error) {
	d.call("CreateFramebuffer")
	if d.FailFramebuffer {
		return 0, ErrFramebuffer
	}
	h := engine.FramebufferHandle(d.handle())
	d.Framebuffers[h] = &Framebuffer{Color: color, Width: width, Height: height}
	return h, nil
}

func (d *Device) DeleteFramebuffer(f engine.FramebufferHandle) {
	d.call("DeleteFramebuffer")
	if fb, ok := d.Framebuffers[f]; ok {
		fb.Deleted = true
	}
}

func (d *Device) BindFramebuffer(f engine.FramebufferHandle) {
	d.CurrentFramebuffer = f
}

// draw state

func (d *Device) Viewport(x, y, width, height int) {
	d.Viewports = append(d.Viewports, Viewport{x, y, width, height})
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.ClearColorValue = [4]float32{r, g, b, a}
}

func (d *Device) Clear(color, depth bool) {
	d.call("Clear")
	d.Clears++
}

func (d *Device) SetDepthTest(enabled bool) { d.DepthTest = enabled }
func (d *Device) SetBlend(enabled bool)     { d.Blend = enabled }

func (d *Device) DrawArrays(first, count int) {
	d.call("DrawArrays")
	d.Draws = append(d.Draws, Draw{
		Program:     d.CurrentProgram,
		Framebuffer: d.CurrentFramebuffer,
		First:       first,
		Count:       count,
	})
}

func (d *Device) DrawElements(count int) {
	d.call("DrawElements")
	d.Draws = append(d.Draws, Draw{
		Program:     d.CurrentProgram,
		Framebuffer: d.CurrentFramebuffer,
		Indexed:     true,
		Count:       count,
	})
}
