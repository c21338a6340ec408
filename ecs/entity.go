package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrCycle        = errors.New("entity would become its own ancestor")
	ErrForeignScene = errors.New("entity belongs to another scene")
	ErrDestroyed    = errors.New("entity is destroyed")
	ErrRoot         = errors.New("root entity can not be reparented")
)

// Handle addresses an entity slot of a Scene.
// A destroyed entity's handle never resolves again, the zero Handle never resolves.
type Handle struct {
	index      uint32
	generation uint32
}

func (h Handle) IsZero() bool { return h.generation == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.index, h.generation)
}

// Entity is a named node of the scene tree holding at most one component per type
type Entity struct {
	scene  *Scene
	handle Handle

	name      string
	active    bool
	destroyed bool

	components [componentTypes]Component

	parent   Handle
	children []Handle
}

func (e *Entity) Name() string          { return e.name }
func (e *Entity) SetName(name string)   { e.name = name }
func (e *Entity) Handle() Handle        { return e.handle }
func (e *Entity) Scene() *Scene         { return e.scene }
func (e *Entity) Active() bool          { return e.active }
func (e *Entity) SetActive(active bool) { e.active = active }
func (e *Entity) Destroyed() bool       { return e.destroyed }

// Parent returns nil for the root and for destroyed entities
func (e *Entity) Parent() *Entity {
	p, _ := e.scene.Entity(e.parent)
	return p
}

// Children returns the live children in order
func (e *Entity) Children() []*Entity {
	l := make([]*Entity, 0, len(e.children))
	for _, h := range e.children {
		if c, ok := e.scene.Entity(h); ok {
			l = append(l, c)
		}
	}
	return l
}

// AddComponent attaches c and destroys a previous component of the same type.
// A component attached to another entity is moved. Adding to a destroyed entity returns nil.
func (e *Entity) AddComponent(c Component) Component {
	if c == nil || e.destroyed {
		return nil
	}

	t := c.Type()
	if e.components[t] == c {
		return c
	}

	// move from previous owner
	if other := c.Entity(); other != nil && other.components[t] == c {
		other.components[t] = nil
	}

	if old := e.components[t]; old != nil {
		old.Destroy()
	}

	c.attach(e)
	e.components[t] = c
	return c
}

// Component returns the component of type t
func (e *Entity) Component(t ComponentType) (Component, bool) {
	if t < 0 || t >= componentTypes {
		return nil, false
	}
	c := e.components[t]
	return c, c != nil
}

// Transform returns the transform component or nil
func (e *Entity) Transform() *Transform {
	if c, ok := e.components[TransformType].(*Transform); ok {
		return c
	}
	return nil
}

// Render returns the render component or nil
func (e *Entity) Render() *RenderComponent {
	if c, ok := e.components[RenderType].(*RenderComponent); ok {
		return c
	}
	return nil
}

// Script returns the script component or nil
func (e *Entity) Script() *Script {
	if c, ok := e.components[ScriptType].(*Script); ok {
		return c
	}
	return nil
}

// RemoveComponent destroys and unlinks the component of type t, if any
func (e *Entity) RemoveComponent(t ComponentType) {
	if c, ok := e.Component(t); ok {
		c.Destroy()
		e.components[t] = nil
	}
}

// AddChild moves child from its current parent to the end of the children of e
func (e *Entity) AddChild(child *Entity) error {
	switch {
	case child == nil:
		return ErrDestroyed
	case e.destroyed || child.destroyed:
		return ErrDestroyed
	case child.scene != e.scene:
		return ErrForeignScene
	case child == e.scene.root:
		return ErrRoot
	}

	for a := e; a != nil; a = a.Parent() {
		if a == child {
			return ErrCycle
		}
	}

	child.detach()
	child.parent = e.handle
	e.children = append(e.children, child.handle)
	return nil
}

// detach removes e from the children of its parent
func (e *Entity) detach() {
	p := e.Parent()
	e.parent = Handle{}
	if p == nil {
		return
	}
	for i, h := range p.children {
		if h == e.handle {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}

// Update updates the enabled components in type order, then the children.
// Inactive entities skip their whole subtree.
func (e *Entity) Update(dt float64) {
	if !e.active || e.destroyed {
		return
	}

	for _, c := range e.components {
		if c != nil && c.Enabled() {
			c.Update(dt)
		}

		// a script may have destroyed its entity
		if e.destroyed {
			return
		}
	}

	// scripts may change the tree while iterating
	children := append([]Handle(nil), e.children...)
	for _, h := range children {
		if c, ok := e.scene.Entity(h); ok && c.parent == e.handle {
			c.Update(dt)
		}
	}
}

// Destroy destroys all components and children and frees the entity.
// The root is only destroyed with its Scene. Repeated calls are no-ops.
func (e *Entity) Destroy() {
	if e == e.scene.root {
		return
	}
	e.destroy()
}

func (e *Entity) destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true

	for t, c := range e.components {
		if c != nil {
			c.Destroy()
			e.components[t] = nil
		}
	}

	children := e.children
	e.children = nil
	for _, h := range children {
		if c, ok := e.scene.Entity(h); ok {
			c.parent = Handle{}
			c.destroy()
		}
	}

	e.detach()
	e.scene.free(e)
}
