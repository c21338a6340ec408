package ecs

import (
	"cmp"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"
)

// RootName is the name of the synthetic root entity of every Scene
const RootName = "Root"

// Scene owns the entity tree and rebuilds the render queue on every update.
// Entities are stored in an arena, destroyed slots are reused with a new generation.
type Scene struct {
	log *zap.Logger

	// arena
	entities    []*Entity
	generations []uint32
	live        *bitset.BitSet
	recycled    []uint32

	root      *Entity
	queue     []*RenderComponent
	destroyed bool
}

func NewScene(log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scene{
		log:  log,
		live: bitset.New(64),
	}
	s.root = s.alloc(RootName)
	return s
}

func (s *Scene) alloc(name string) *Entity {
	var i uint32
	if n := len(s.recycled); n > 0 {
		i = s.recycled[n-1]
		s.recycled = s.recycled[:n-1]
	} else {
		i = uint32(len(s.entities))
		s.entities = append(s.entities, nil)
		s.generations = append(s.generations, 1)
	}

	e := &Entity{
		scene:  s,
		handle: Handle{index: i, generation: s.generations[i]},
		name:   name,
		active: true,
	}
	s.entities[i] = e
	s.live.Set(uint(i))
	return e
}

func (s *Scene) free(e *Entity) {
	i := e.handle.index
	s.entities[i] = nil
	s.generations[i]++
	s.live.Clear(uint(i))
	s.recycled = append(s.recycled, i)
}

// Root returns the root entity, nil after Destroy
func (s *Scene) Root() *Entity {
	if s.destroyed {
		return nil
	}
	return s.root
}

// Entity resolves a handle to a live entity
func (s *Scene) Entity(h Handle) (*Entity, bool) {
	if h.IsZero() || int(h.index) >= len(s.entities) {
		return nil, false
	}
	if !s.live.Test(uint(h.index)) || s.generations[h.index] != h.generation {
		return nil, false
	}
	return s.entities[h.index], true
}

// Len returns the number of live entities, the root not included
func (s *Scene) Len() int {
	n := int(s.live.Count())
	if !s.destroyed {
		n--
	}
	return n
}

// CreateEntity creates an entity directly under the root.
// It returns nil once the scene is destroyed.
func (s *Scene) CreateEntity(name string) *Entity {
	if s.destroyed {
		return nil
	}
	e, _ := s.CreateChild(s.root, name)
	return e
}

// CreateChild creates an entity under parent
func (s *Scene) CreateChild(parent *Entity, name string) (*Entity, error) {
	switch {
	case s.destroyed || parent == nil || parent.destroyed:
		return nil, ErrDestroyed
	case parent.scene != s:
		return nil, ErrForeignScene
	}

	e := s.alloc(name)
	if err := parent.AddChild(e); err != nil {
		e.destroy()
		return nil, err
	}

	s.log.Debug("entity created",
		zap.String("name", name),
		zap.Stringer("handle", e.handle),
		zap.String("parent", parent.name))
	return e, nil
}

// RemoveEntity destroys e and its subtree, the root and foreign entities are ignored
func (s *Scene) RemoveEntity(e *Entity) {
	if e == nil || e.scene != s || e == s.root {
		return
	}
	s.log.Debug("entity removed", zap.String("name", e.name), zap.Stringer("handle", e.handle))
	e.destroy()
}

// Update updates the whole tree, then rebuilds the render queue
func (s *Scene) Update(dt float64) {
	if s.destroyed {
		return
	}
	s.root.Update(dt)
	s.rebuildQueue()
}

// rebuildQueue collects the drawable render components of all active entities
// in pre-order and sorts them stable by render order
func (s *Scene) rebuildQueue() {
	s.queue = s.queue[:0]
	s.collect(s.root)

	slices.SortStableFunc(s.queue, func(a, b *RenderComponent) int {
		return cmp.Compare(a.order, b.order)
	})
}

func (s *Scene) collect(e *Entity) {
	if !e.active {
		return
	}
	if r := e.Render(); r != nil && r.drawable() {
		s.queue = append(s.queue, r)
	}
	for _, h := range e.children {
		if c, ok := s.Entity(h); ok {
			s.collect(c)
		}
	}
}

// RenderQueue returns the queue of the last update, valid until the next update
func (s *Scene) RenderQueue() []*RenderComponent {
	return s.queue
}

// Destroy destroys every entity including the root and clears the queue
func (s *Scene) Destroy() {
	if s.destroyed {
		return
	}
	s.root.destroy()
	s.queue = nil
	s.destroyed = true
}
