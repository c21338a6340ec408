// Package opengl implements engine.Device on an OpenGL 3.3 core context.
// The context must be current on the calling, locked OS thread.
package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/der-antikeks/backdrop/engine"
)

type Device struct {
	vao uint32

	// depth attachments of framebuffers
	depth map[engine.FramebufferHandle]uint32
}

var _ engine.Device = (*Device)(nil)

// New loads the gl function pointers and binds the vertex array all buffers are recorded in
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, &engine.ConstructionError{Resource: "device", Err: fmt.Errorf("%w: %v", engine.ErrNoDevice, err)}
	}

	d := &Device{depth: make(map[engine.FramebufferHandle]uint32)}

	// core profile requires a bound vao
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.ClearDepth(1)
	gl.DepthFunc(gl.LEQUAL)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return d, nil
}

// Version returns the version string of the context
func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Release deletes the global vertex array
func (d *Device) Release() {
	gl.BindVertexArray(0)
	gl.DeleteVertexArrays(1, &d.vao)
}

// shaders and programs

func (d *Device) CreateShader(stage engine.ShaderStage, source string) (engine.ShaderHandle, error) {
	var shaderType uint32 = gl.VERTEX_SHADER
	if stage == engine.FragmentShader {
		shaderType = gl.FRAGMENT_SHADER
	}

	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%v shader: %s", stage, strings.TrimRight(log, "\x00"))
	}
	return engine.ShaderHandle(shader), nil
}

func (d *Device) DeleteShader(s engine.ShaderHandle) {
	gl.DeleteShader(uint32(s))
}

func (d *Device) CreateProgram(vertex, fragment engine.ShaderHandle) (engine.ProgramHandle, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, uint32(vertex))
	gl.AttachShader(program, uint32(fragment))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", strings.TrimRight(log, "\x00"))
	}

	gl.DetachShader(program, uint32(vertex))
	gl.DetachShader(program, uint32(fragment))
	return engine.ProgramHandle(program), nil
}

func (d *Device) DeleteProgram(p engine.ProgramHandle) {
	gl.DeleteProgram(uint32(p))
}

func (d *Device) UseProgram(p engine.ProgramHandle) {
	gl.UseProgram(uint32(p))
}

func (d *Device) ActiveUniforms(p engine.ProgramHandle) []string {
	return d.active(uint32(p), gl.ACTIVE_UNIFORMS, gl.ACTIVE_UNIFORM_MAX_LENGTH, gl.GetActiveUniform)
}

func (d *Device) ActiveAttributes(p engine.ProgramHandle) []string {
	return d.active(uint32(p), gl.ACTIVE_ATTRIBUTES, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, gl.GetActiveAttrib)
}

type activeFunc func(program, index uint32, bufSize int32, length, size *int32, xtype *uint32, name *uint8)

func (d *Device) active(program, count, maxLength uint32, get activeFunc) []string {
	var n, l int32
	gl.GetProgramiv(program, count, &n)
	gl.GetProgramiv(program, maxLength, &l)

	names := make([]string, 0, n)
	buf := make([]uint8, l+1)
	for i := uint32(0); i < uint32(n); i++ {
		var length, size int32
		var xtype uint32
		get(program, i, int32(len(buf)), &length, &size, &xtype, &buf[0])

		// arrays are reported as name[0]
		name := strings.TrimSuffix(string(buf[:length]), "[0]")
		names = append(names, name)
	}
	return names
}

func (d *Device) UniformLocation(p engine.ProgramHandle, name string) engine.UniformLocation {
	return engine.UniformLocation(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (d *Device) AttribLocation(p engine.ProgramHandle, name string) engine.AttribLocation {
	return engine.AttribLocation(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

// uniforms

func (d *Device) Uniform1f(l engine.UniformLocation, x float32) {
	gl.Uniform1f(int32(l), x)
}

func (d *Device) Uniform2f(l engine.UniformLocation, x, y float32) {
	gl.Uniform2f(int32(l), x, y)
}

func (d *Device) Uniform3f(l engine.UniformLocation, x, y, z float32) {
	gl.Uniform3f(int32(l), x, y, z)
}

func (d *Device) Uniform4f(l engine.UniformLocation, x, y, z, w float32) {
	gl.Uniform4f(int32(l), x, y, z, w)
}

func (d *Device) Uniform1i(l engine.UniformLocation, x int32) {
	gl.Uniform1i(int32(l), x)
}

func (d *Device) UniformMatrix4fv(l engine.UniformLocation, m [16]float32) {
	gl.UniformMatrix4fv(int32(l), 1, false, &m[0])
}

// buffers

func target(t engine.BufferTarget) uint32 {
	if t == engine.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (d *Device) CreateBuffer() engine.BufferHandle {
	var b uint32
	gl.GenBuffers(1, &b)
	return engine.BufferHandle(b)
}

func (d *Device) DeleteBuffer(b engine.BufferHandle) {
	h := uint32(b)
	gl.DeleteBuffers(1, &h)
}

func (d *Device) BindBuffer(t engine.BufferTarget, b engine.BufferHandle) {
	gl.BindBuffer(target(t), uint32(b))
}

func (d *Device) BufferFloat32(t engine.BufferTarget, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.BufferData(target(t), len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) BufferUint16(t engine.BufferTarget, data []uint16) {
	if len(data) == 0 {
		return
	}
	gl.BufferData(target(t), len(data)*2, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) EnableVertexAttrib(l engine.AttribLocation, size int) {
	gl.EnableVertexAttribArray(uint32(l))
	gl.VertexAttribPointerWithOffset(uint32(l), int32(size), gl.FLOAT, false, 0, 0)
}

func (d *Device) DisableVertexAttrib(l engine.AttribLocation) {
	gl.DisableVertexAttribArray(uint32(l))
}

// textures and framebuffers

func (d *Device) CreateTexture(width, height int) engine.TextureHandle {
	var t uint32
	gl.GenTextures(1, &t)
	gl.BindTexture(gl.TEXTURE_2D, t)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil) // empty image
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return engine.TextureHandle(t)
}

func (d *Device) DeleteTexture(t engine.TextureHandle) {
	h := uint32(t)
	gl.DeleteTextures(1, &h)
}

func (d *Device) BindTexture(unit int, t engine.TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (d *Device) CreateFramebuffer(color engine.TextureHandle, width, height int) (engine.FramebufferHandle, error) {
	var fbo, rbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, uint32(color), 0)

	// setup depth buffer
	gl.GenRenderbuffers(1, &rbo)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT16, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, rbo)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteRenderbuffers(1, &rbo)
		gl.DeleteFramebuffers(1, &fbo)
		return 0, fmt.Errorf("status 0x%x", status)
	}

	d.depth[engine.FramebufferHandle(fbo)] = rbo
	return engine.FramebufferHandle(fbo), nil
}

func (d *Device) DeleteFramebuffer(f engine.FramebufferHandle) {
	if rbo, ok := d.depth[f]; ok {
		gl.DeleteRenderbuffers(1, &rbo)
		delete(d.depth, f)
	}
	h := uint32(f)
	gl.DeleteFramebuffers(1, &h)
}

func (d *Device) BindFramebuffer(f engine.FramebufferHandle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(f))
}

// draw state

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(mask)
}

func (d *Device) SetDepthTest(enabled bool) { toggle(gl.DEPTH_TEST, enabled) }
func (d *Device) SetBlend(enabled bool)     { toggle(gl.BLEND, enabled) }

func toggle(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func (d *Device) DrawArrays(first, count int) {
	gl.DrawArrays(gl.TRIANGLES, int32(first), int32(count))
}

func (d *Device) DrawElements(count int) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(count), gl.UNSIGNED_SHORT, 0)
}
