package engine

// two triangles covering clip space
var fullscreenQuad = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	-1, 1,
	1, -1,
	1, 1,
}

// FullscreenQuad returns a copy of the 6 vertex quad used by the blit pass
func FullscreenQuad() []float32 {
	return append([]float32(nil), fullscreenQuad...)
}

const blitVertexShader = `#version 330 core

in vec2 a_position;
out vec2 v_uv;

void main() {
	v_uv = a_position * 0.5 + 0.5;
	gl_Position = vec4(a_position, 0.0, 1.0);
}
`

const blitFragmentShader = `#version 330 core

uniform sampler2D u_texture;
in vec2 v_uv;
out vec4 fragColor;

void main() {
	fragColor = texture(u_texture, v_uv);
}
`
