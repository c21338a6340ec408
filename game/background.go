package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/der-antikeks/backdrop/ecs"
	"github.com/der-antikeks/backdrop/engine"
)

// names of the background resources and entity
const (
	BackgroundShader   = "backgroundShader"
	BackgroundMaterial = "backgroundMaterial"
	BackgroundGeometry = "backgroundGeometry"
	BackgroundEntity   = "Background"
)

// Background is a full-screen quad driven by a time varying shader
type Background struct {
	engine *Engine
	log    *zap.Logger

	entity   *ecs.Entity
	material *engine.Material
	vertex   string

	elapsed   float64 // seconds since creation, accumulated from update deltas
	resizeSub uuid.UUID
}

// NewBackground creates the background resources and entity.
// Empty sources select the built-in gradient shader.
func NewBackground(e *Engine, vertex, fragment string) (*Background, error) {
	if vertex == "" {
		vertex = BackgroundVertexShader
	}
	if fragment == "" {
		fragment = BackgroundFragmentShader
	}

	shader, err := e.CreateShader(BackgroundShader, vertex, fragment)
	if err != nil {
		return nil, err
	}
	material, err := e.CreateMaterial(BackgroundMaterial, shader)
	if err != nil {
		return nil, err
	}
	geometry, err := e.CreateGeometry(BackgroundGeometry, engine.FullscreenQuad(), nil)
	if err != nil {
		return nil, err
	}
	entity, err := e.CreateEntity(BackgroundEntity)
	if err != nil {
		return nil, err
	}

	b := &Background{
		engine:   e,
		log:      e.Logger().Named("background"),
		entity:   entity,
		material: material,
		vertex:   vertex,
	}

	entity.AddComponent(ecs.NewTransform())
	entity.AddComponent(ecs.NewRenderComponent(material, geometry))
	entity.AddComponent(ecs.NewScript(b.update, nil))

	cfg := e.Config().Render
	b.setUniform(cfg.TimeUniform, float32(0))
	w, h := e.Graphics().Size()
	b.setResolution(w, h)

	b.resizeSub = e.Events().Subscribe(ResizeMessageType, PriorityBeforeRender, func(m Message) {
		r := m.(MessageResize)
		b.setResolution(r.Width, r.Height)
	})

	return b, nil
}

func (b *Background) Entity() *ecs.Entity        { return b.entity }
func (b *Background) Material() *engine.Material { return b.material }

// Elapsed returns the animation time in seconds
func (b *Background) Elapsed() float64 { return b.elapsed }

func (b *Background) update(e *ecs.Entity, dt float64) {
	b.elapsed += dt
	b.setUniform(b.engine.Config().Render.TimeUniform, float32(b.elapsed*1000))
}

func (b *Background) setResolution(w, h int) {
	b.setUniform(b.engine.Config().Render.ResolutionUniform, [2]float32{float32(w), float32(h)})
}

func (b *Background) setUniform(name string, v interface{}) {
	if name == "" {
		return
	}
	if err := b.material.SetUniform(name, v); err != nil {
		b.log.Error("set uniform", zap.String("name", name), zap.Error(err))
	}
}

// UpdateShader replaces the background shader while running.
// On failure the previous shader stays in use.
func (b *Background) UpdateShader(vertex, fragment string) error {
	if !b.engine.Running() {
		b.log.Warn("shader update ignored", zap.Stringer("state", b.engine.State()))
		return ErrInvalidState
	}

	shader, err := b.engine.CreateShader(BackgroundShader, vertex, fragment)
	if err != nil {
		b.log.Error("shader update failed", zap.Error(err))
		return fmt.Errorf("update background shader: %w", err)
	}

	b.material.SetProgram(shader)
	b.vertex = vertex
	b.log.Info("shader updated", zap.Uint64("fingerprint", shader.Fingerprint()))
	return nil
}

// Destroy removes the entity and the resize subscription, resources stay with the engine
func (b *Background) Destroy() {
	b.engine.Events().Unsubscribe(b.resizeSub)
	b.engine.Scene().RemoveEntity(b.entity)
}
