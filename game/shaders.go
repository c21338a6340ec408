package game

const BackgroundVertexShader = `#version 330 core

in vec2 a_position;
uniform mat4 u_modelMatrix;
out vec2 v_uv;

void main() {
	v_uv = a_position * 0.5 + 0.5;
	gl_Position = u_modelMatrix * vec4(a_position, 0.0, 1.0);
}
`

// slow moving gradient, u_time in milliseconds
const BackgroundFragmentShader = `#version 330 core

uniform float u_time;
uniform vec2 u_resolution;
in vec2 v_uv;
out vec4 fragColor;

void main() {
	float t = u_time * 0.0002;
	vec2 p = v_uv * vec2(u_resolution.x / max(u_resolution.y, 1.0), 1.0);

	vec3 a = vec3(0.10, 0.12, 0.20);
	vec3 b = vec3(0.25, 0.15, 0.35);
	float w = 0.5 + 0.5 * sin(p.x * 2.0 + t) * cos(p.y * 1.5 - t * 0.7);

	fragColor = vec4(mix(a, b, w), 1.0);
}
`
