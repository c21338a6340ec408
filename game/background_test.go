package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brokenFragmentShader = `#version 330 core
#error broken
void main() {}
`

func TestBackground_Queue(t *testing.T) {
	_, e := newTestEngine(t, nil)

	b, err := NewBackground(e, "", "")
	require.NoError(t, err)

	e.Start()
	e.Tick(epoch)

	queue := e.Scene().RenderQueue()
	require.Len(t, queue, 1)
	assert.Equal(t, BackgroundEntity, queue[0].Entity().Name())
	assert.Same(t, b.Entity(), queue[0].Entity())

	b.Entity().Render().SetVisible(false)
	e.Tick(epoch.Add(time.Second))
	assert.Empty(t, e.Scene().RenderQueue())
	b.Entity().Render().SetVisible(true)

	_, found := e.Resources().Shader(BackgroundShader)
	assert.True(t, found)
	_, found = e.Resources().Material(BackgroundMaterial)
	assert.True(t, found)
	_, found = e.Resources().Geometry(BackgroundGeometry)
	assert.True(t, found)
}

func TestBackground_Uniforms(t *testing.T) {
	dev, e := newTestEngine(t, nil)

	b, err := NewBackground(e, "", "")
	require.NoError(t, err)

	res, ok := b.Material().Uniform("u_resolution")
	require.True(t, ok)
	assert.Equal(t, []float32{800, 600}, res)

	e.Start()
	e.Tick(epoch)
	e.Tick(epoch.Add(250 * time.Millisecond))

	assert.InDelta(t, 0.25, b.Elapsed(), 1e-9)
	tm, ok := b.Material().Uniform("u_time")
	require.True(t, ok)
	assert.InDelta(t, 250, tm[0], 1e-3)

	// uploaded to the program during the render pass
	program := b.Material().Program().Handle()
	tm, ok = dev.Uniform(program, "u_time")
	require.True(t, ok)
	assert.InDelta(t, 250, tm[0], 1e-3)

	require.NoError(t, e.Resize(1920, 1080))
	res, _ = b.Material().Uniform("u_resolution")
	assert.Equal(t, []float32{1920, 1080}, res)
}

func TestBackground_UpdateShader(t *testing.T) {
	_, e := newTestEngine(t, nil)

	b, err := NewBackground(e, "", "")
	require.NoError(t, err)
	first := b.Material().Program()

	// only while running
	assert.ErrorIs(t, b.UpdateShader(BackgroundVertexShader, BackgroundFragmentShader), ErrInvalidState)
	assert.Same(t, first, b.Material().Program())

	e.Start()
	e.Tick(epoch)

	// a broken shader keeps the current one
	err = b.UpdateShader(BackgroundVertexShader, brokenFragmentShader)
	assert.Error(t, err)
	assert.Same(t, first, b.Material().Program())
	assert.False(t, first.Destroyed())

	e.Tick(epoch.Add(time.Second))
	assert.Len(t, e.Scene().RenderQueue(), 1)

	// a valid one replaces it
	replacement := BackgroundFragmentShader + "\n// v2\n"
	require.NoError(t, b.UpdateShader(BackgroundVertexShader, replacement))

	current := b.Material().Program()
	assert.NotSame(t, first, current)
	assert.True(t, first.Destroyed())
	shader, _ := e.Resources().Shader(BackgroundShader)
	assert.Same(t, current, shader)

	e.Tick(epoch.Add(2 * time.Second))
	assert.InDelta(t, 2, b.Elapsed(), 1e-9)
}

func TestBackground_Destroy(t *testing.T) {
	_, e := newTestEngine(t, nil)

	b, err := NewBackground(e, "", "")
	require.NoError(t, err)
	require.Equal(t, 1, e.Events().Len(ResizeMessageType))

	b.Destroy()
	assert.True(t, b.Entity().Destroyed())
	assert.Zero(t, e.Events().Len(ResizeMessageType))
	assert.Zero(t, e.Scene().Len())
}
