package engine

import (
	"fmt"
)

// RenderTarget is an offscreen framebuffer with one color texture
type RenderTarget struct {
	dev Device

	frameBuffer   FramebufferHandle
	textureBuffer TextureHandle

	width, height int
	initialized   bool
}

func NewRenderTarget(dev Device, width, height int) (*RenderTarget, error) {
	if dev == nil {
		return nil, &ConstructionError{Resource: "rendertarget", Err: ErrNoDevice}
	}
	t := &RenderTarget{dev: dev}
	if err := t.Resize(width, height); err != nil {
		return nil, err
	}
	return t, nil
}

// Resize recreates the attachments when the size changed.
// On failure the previous attachments stay in use.
func (t *RenderTarget) Resize(width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if t.initialized && t.width == width && t.height == height {
		return nil
	}

	// setup texture buffer
	tex := t.dev.CreateTexture(width, height)

	// setup frame buffer
	fb, err := t.dev.CreateFramebuffer(tex, width, height)
	if err != nil {
		t.dev.DeleteTexture(tex)
		return &ConstructionError{Resource: "rendertarget", Err: fmt.Errorf("%w: %v", ErrFramebuffer, err)}
	}

	t.release()
	t.textureBuffer, t.frameBuffer = tex, fb
	t.width, t.height = width, height
	t.initialized = true
	return nil
}

func (t *RenderTarget) Size() (width, height int) { return t.width, t.height }
func (t *RenderTarget) Texture() TextureHandle    { return t.textureBuffer }

// Bind makes the target the draw destination and covers it with the viewport
func (t *RenderTarget) Bind() {
	t.dev.BindFramebuffer(t.frameBuffer)
	t.dev.Viewport(0, 0, t.width, t.height)
}

func (t *RenderTarget) Unbind() {
	t.dev.BindFramebuffer(0)
}

func (t *RenderTarget) release() {
	if !t.initialized {
		return
	}
	t.dev.DeleteFramebuffer(t.frameBuffer)
	t.dev.DeleteTexture(t.textureBuffer)
	t.frameBuffer, t.textureBuffer = 0, 0
	t.initialized = false
}

func (t *RenderTarget) Destroy() {
	t.release()
}
