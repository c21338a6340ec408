package ecs

// ScriptFunc is called once per update of the owning entity
type ScriptFunc func(e *Entity, dt float64)

// Script runs a callback every update, e.g. to drive time based uniforms
type Script struct {
	component

	update    ScriptFunc
	onDestroy func()
}

// NewScript creates a script component, both callbacks may be nil
func NewScript(update ScriptFunc, onDestroy func()) *Script {
	return &Script{
		component: newComponent(),
		update:    update,
		onDestroy: onDestroy,
	}
}

func (s *Script) Type() ComponentType { return ScriptType }

func (s *Script) Update(dt float64) {
	if s.update != nil && s.entity != nil {
		s.update(s.entity, dt)
	}
}

func (s *Script) Destroy() {
	if s.release(s) && s.onDestroy != nil {
		s.onDestroy()
	}
}
