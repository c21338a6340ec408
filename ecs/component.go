package ecs

// ComponentType identifies a specific Component, an entity holds at most one of each
type ComponentType int

const (
	TransformType ComponentType = iota
	RenderType
	ScriptType

	componentTypes // number of component types
)

func (t ComponentType) String() string {
	switch t {
	case TransformType:
		return "transform"
	case RenderType:
		return "render"
	case ScriptType:
		return "script"
	}
	return "unknown"
}

// Component is a set of data and behaviour attached to exactly one Entity.
// The set of components is closed, see ComponentType.
type Component interface {
	Type() ComponentType
	Entity() *Entity

	Enabled() bool
	SetEnabled(bool)

	Update(dt float64)
	Destroy()

	attach(*Entity)
}

// component holds the state shared by all components
type component struct {
	entity    *Entity // owner, not owned
	enabled   bool
	destroyed bool
}

func newComponent() component {
	return component{enabled: true}
}

func (c *component) Entity() *Entity         { return c.entity }
func (c *component) Enabled() bool           { return c.enabled }
func (c *component) SetEnabled(enabled bool) { c.enabled = enabled }
func (c *component) Destroyed() bool         { return c.destroyed }

func (c *component) attach(e *Entity) { c.entity = e }

// release marks the component destroyed and unlinks it from its entity.
// It reports false if it was already destroyed.
func (c *component) release(self Component) bool {
	if c.destroyed {
		return false
	}
	c.destroyed = true

	if e := c.entity; e != nil && e.components[self.Type()] == self {
		e.components[self.Type()] = nil
	}
	c.entity = nil
	return true
}
