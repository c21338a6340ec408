package engine

import (
	"sort"

	"go.uber.org/zap"
)

// ResourceKind identifies one of the registries of the ResourceManager
type ResourceKind int

const (
	ShaderResource ResourceKind = iota
	MaterialResource
	GeometryResource
)

func (k ResourceKind) String() string {
	switch k {
	case ShaderResource:
		return "shader"
	case MaterialResource:
		return "material"
	case GeometryResource:
		return "geometry"
	}
	return "unknown"
}

// registry stores resources in an arena, names map to stable slot indices
type registry[T any] struct {
	names map[string]int
	slots []T
	used  []bool
	free  []int
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{names: make(map[string]int)}
}

// put stores v under name and returns the replaced value
func (r *registry[T]) put(name string, v T) (old T, replaced bool) {
	if i, ok := r.names[name]; ok {
		old = r.slots[i]
		r.slots[i] = v
		return old, true
	}

	var i int
	if n := len(r.free); n > 0 {
		i = r.free[n-1]
		r.free = r.free[:n-1]
		r.slots[i] = v
		r.used[i] = true
	} else {
		i = len(r.slots)
		r.slots = append(r.slots, v)
		r.used = append(r.used, true)
	}
	r.names[name] = i
	return old, false
}

func (r *registry[T]) get(name string) (T, bool) {
	var zero T
	i, ok := r.names[name]
	if !ok {
		return zero, false
	}
	return r.slots[i], true
}

func (r *registry[T]) remove(name string) (T, bool) {
	var zero T
	i, ok := r.names[name]
	if !ok {
		return zero, false
	}
	v := r.slots[i]
	r.slots[i] = zero
	r.used[i] = false
	r.free = append(r.free, i)
	delete(r.names, name)
	return v, true
}

func (r *registry[T]) each(f func(T)) {
	for i, v := range r.slots {
		if r.used[i] {
			f(v)
		}
	}
}

func (r *registry[T]) list() []string {
	l := make([]string, 0, len(r.names))
	for n := range r.names {
		l = append(l, n)
	}
	sort.Strings(l)
	return l
}

func (r *registry[T]) clear() {
	r.names = make(map[string]int)
	r.slots = nil
	r.used = nil
	r.free = nil
}

// ResourceManager is the single owner of named shaders, materials and geometries.
// Creating under an existing name destroys the previous resource,
// callers must not hold references across a recreate.
type ResourceManager struct {
	dev Device
	log *zap.Logger

	shaders    *registry[*ShaderProgram]
	materials  *registry[*Material]
	geometries *registry[*GeometryBuffer]
}

func NewResourceManager(dev Device, log *zap.Logger) *ResourceManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResourceManager{
		dev:        dev,
		log:        log,
		shaders:    newRegistry[*ShaderProgram](),
		materials:  newRegistry[*Material](),
		geometries: newRegistry[*GeometryBuffer](),
	}
}

// CreateShader compiles and links a program and stores it under name.
// On error the previously stored shader stays untouched.
func (m *ResourceManager) CreateShader(name, vertex, fragment string) (*ShaderProgram, error) {
	p, err := NewShaderProgram(m.dev, vertex, fragment)
	if err != nil {
		return nil, constructionError("shader", name, err)
	}

	if old, found := m.shaders.get(name); found {
		m.log.Warn("shader replaced",
			zap.String("name", name),
			zap.Uint64("old", old.Fingerprint()),
			zap.Uint64("new", p.Fingerprint()))
		old.Destroy()
	}
	m.shaders.put(name, p)
	return p, nil
}

func (m *ResourceManager) Shader(name string) (*ShaderProgram, bool) {
	return m.shaders.get(name)
}

// CreateMaterial stores a new material for program p, an existing one is overwritten
func (m *ResourceManager) CreateMaterial(name string, p *ShaderProgram) *Material {
	mat := NewMaterial(p)
	if _, replaced := m.materials.put(name, mat); replaced {
		m.log.Warn("material replaced", zap.String("name", name))
	}
	return mat
}

func (m *ResourceManager) Material(name string) (*Material, bool) {
	return m.materials.get(name)
}

// CreateGeometry uploads vertices and optional indices and stores the buffer under name
func (m *ResourceManager) CreateGeometry(name string, vertices []float32, indices []uint16) (*GeometryBuffer, error) {
	g, err := NewGeometryBuffer(m.dev, vertices, indices)
	if err != nil {
		return nil, constructionError("geometry", name, err)
	}

	if old, found := m.geometries.get(name); found {
		m.log.Warn("geometry replaced", zap.String("name", name))
		old.Destroy()
	}
	m.geometries.put(name, g)
	return g, nil
}

func (m *ResourceManager) Geometry(name string) (*GeometryBuffer, bool) {
	return m.geometries.get(name)
}

// Remove destroys and forgets a single resource, it reports whether it existed
func (m *ResourceManager) Remove(kind ResourceKind, name string) bool {
	switch kind {
	case ShaderResource:
		p, ok := m.shaders.remove(name)
		if ok {
			p.Destroy()
		}
		return ok
	case MaterialResource:
		_, ok := m.materials.remove(name)
		return ok
	case GeometryResource:
		g, ok := m.geometries.remove(name)
		if ok {
			g.Destroy()
		}
		return ok
	}
	return false
}

// Names lists the sorted names of one registry
func (m *ResourceManager) Names(kind ResourceKind) []string {
	switch kind {
	case ShaderResource:
		return m.shaders.list()
	case MaterialResource:
		return m.materials.list()
	case GeometryResource:
		return m.geometries.list()
	}
	return nil
}

// Destroy releases every shader and geometry and clears all registries.
// Materials hold no gpu handles.
func (m *ResourceManager) Destroy() {
	m.shaders.each(func(p *ShaderProgram) { p.Destroy() })
	m.geometries.each(func(g *GeometryBuffer) { g.Destroy() })

	m.shaders.clear()
	m.materials.clear()
	m.geometries.clear()
}
