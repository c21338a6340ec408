package engine

import (
	"math"
)

// handles of gpu objects, zero is the default/unbound object
type (
	ShaderHandle      uint32
	ProgramHandle     uint32
	BufferHandle      uint32
	TextureHandle     uint32
	FramebufferHandle uint32
)

// UniformLocation and AttribLocation are -1 if the name is not active in the program
type (
	UniformLocation int32
	AttribLocation  int32
)

type ShaderStage int

const (
	VertexShader ShaderStage = iota
	FragmentShader
)

func (s ShaderStage) String() string {
	switch s {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	}
	return "unknown"
}

type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// Device is the low-level graphics context provided by the host.
// All calls must happen on the thread that owns the context.
type Device interface {
	// shaders and programs
	CreateShader(stage ShaderStage, source string) (ShaderHandle, error)
	DeleteShader(ShaderHandle)
	CreateProgram(vertex, fragment ShaderHandle) (ProgramHandle, error)
	DeleteProgram(ProgramHandle)
	UseProgram(ProgramHandle)
	ActiveUniforms(ProgramHandle) []string
	ActiveAttributes(ProgramHandle) []string
	UniformLocation(p ProgramHandle, name string) UniformLocation
	AttribLocation(p ProgramHandle, name string) AttribLocation

	// uniforms of the current program
	Uniform1f(l UniformLocation, x float32)
	Uniform2f(l UniformLocation, x, y float32)
	Uniform3f(l UniformLocation, x, y, z float32)
	Uniform4f(l UniformLocation, x, y, z, w float32)
	Uniform1i(l UniformLocation, x int32)
	UniformMatrix4fv(l UniformLocation, m [16]float32)

	// buffers
	CreateBuffer() BufferHandle
	DeleteBuffer(BufferHandle)
	BindBuffer(t BufferTarget, b BufferHandle)
	BufferFloat32(t BufferTarget, data []float32)
	BufferUint16(t BufferTarget, data []uint16)
	EnableVertexAttrib(l AttribLocation, size int)
	DisableVertexAttrib(l AttribLocation)

	// textures and framebuffers
	CreateTexture(width, height int) TextureHandle
	DeleteTexture(TextureHandle)
	BindTexture(unit int, t TextureHandle)
	CreateFramebuffer(color TextureHandle, width, height int) (FramebufferHandle, error)
	DeleteFramebuffer(FramebufferHandle)
	BindFramebuffer(FramebufferHandle)

	// draw state
	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	Clear(color, depth bool)
	SetDepthTest(enabled bool)
	SetBlend(enabled bool)
	DrawArrays(first, count int)
	DrawElements(count int)
}

// SurfaceSize converts logical window dimensions to physical pixels
func SurfaceSize(logicalWidth, logicalHeight int, devicePixelRatio float64) (width, height int) {
	if devicePixelRatio <= 0 {
		devicePixelRatio = 1
	}
	width = int(math.Round(float64(logicalWidth) * devicePixelRatio))
	height = int(math.Round(float64(logicalHeight) * devicePixelRatio))
	return width, height
}
