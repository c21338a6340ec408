package engine

import (
	"fmt"
)

// PositionAttribute is the vertex attribute fed from the vertex buffer
const PositionAttribute = "a_position"

// components per vertex, positions are 2d
const vertexSize = 2

// GeometryBuffer owns one vertex buffer and an optional index buffer.
// Counts are fixed at construction.
type GeometryBuffer struct {
	dev Device

	vertexBuffer BufferHandle
	indexBuffer  BufferHandle
	vertexCount  int
	indexCount   int
	indexed      bool

	bound     AttribLocation
	destroyed bool
}

// NewGeometryBuffer uploads 2d vertex positions and, if not nil, triangle indices
func NewGeometryBuffer(dev Device, vertices []float32, indices []uint16) (*GeometryBuffer, error) {
	if dev == nil {
		return nil, &ConstructionError{Resource: "geometry", Err: ErrNoDevice}
	}
	if len(vertices) == 0 || len(vertices)%vertexSize != 0 {
		return nil, &ConstructionError{Resource: "geometry", Err: fmt.Errorf("%w: %d floats is not a multiple of %d", ErrInvalidGeometry, len(vertices), vertexSize)}
	}

	g := &GeometryBuffer{
		dev:         dev,
		vertexCount: len(vertices) / vertexSize,
		bound:       -1,
	}

	for _, i := range indices {
		if int(i) >= g.vertexCount {
			return nil, &ConstructionError{Resource: "geometry", Err: fmt.Errorf("%w: index %d out of range of %d vertices", ErrInvalidGeometry, i, g.vertexCount)}
		}
	}

	// vertices
	g.vertexBuffer = dev.CreateBuffer()
	dev.BindBuffer(ArrayBuffer, g.vertexBuffer)
	dev.BufferFloat32(ArrayBuffer, vertices)
	dev.BindBuffer(ArrayBuffer, 0)

	// faces
	if indices != nil {
		g.indexBuffer = dev.CreateBuffer()
		g.indexCount = len(indices)
		g.indexed = true
		dev.BindBuffer(ElementArrayBuffer, g.indexBuffer)
		dev.BufferUint16(ElementArrayBuffer, indices)
		dev.BindBuffer(ElementArrayBuffer, 0)
	}

	return g, nil
}

func (g *GeometryBuffer) VertexCount() int { return g.vertexCount }
func (g *GeometryBuffer) IndexCount() int  { return g.indexCount }
func (g *GeometryBuffer) Indexed() bool    { return g.indexed }
func (g *GeometryBuffer) Destroyed() bool  { return g.destroyed }

// Bind binds the buffers and feeds the position attribute of program p
func (g *GeometryBuffer) Bind(p *ShaderProgram) {
	g.dev.BindBuffer(ArrayBuffer, g.vertexBuffer)

	if l, ok := p.Attribute(PositionAttribute); ok && l >= 0 {
		g.dev.EnableVertexAttrib(l, vertexSize)
		g.bound = l
	}

	if g.Indexed() {
		g.dev.BindBuffer(ElementArrayBuffer, g.indexBuffer)
	}
}

// Draw issues an indexed or non-indexed triangle draw
func (g *GeometryBuffer) Draw() {
	if g.Indexed() {
		g.dev.DrawElements(g.indexCount)
	} else {
		g.dev.DrawArrays(0, g.vertexCount)
	}
}

func (g *GeometryBuffer) Unbind() {
	if g.bound >= 0 {
		g.dev.DisableVertexAttrib(g.bound)
		g.bound = -1
	}
	g.dev.BindBuffer(ArrayBuffer, 0)
	if g.Indexed() {
		g.dev.BindBuffer(ElementArrayBuffer, 0)
	}
}

// Destroy deletes the gpu buffers, the instance must not be used afterwards
func (g *GeometryBuffer) Destroy() {
	if g.destroyed {
		return
	}
	g.dev.DeleteBuffer(g.vertexBuffer)
	if g.indexed {
		g.dev.DeleteBuffer(g.indexBuffer)
	}
	g.destroyed = true
}
