package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNoDevice        = errors.New("no render device")
	ErrCompile         = errors.New("shader compilation failed")
	ErrLink            = errors.New("program link failed")
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrFramebuffer     = errors.New("framebuffer incomplete")
)

// ConstructionError is returned when a gpu resource could not be created.
// It is fatal to that resource, the caller decides about a fallback.
type ConstructionError struct {
	Resource string // "shader", "geometry", "device", ...
	Name     string
	Err      error
}

func (e *ConstructionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("create %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("create %s %q: %v", e.Resource, e.Name, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

func constructionError(resource, name string, err error) error {
	var ce *ConstructionError
	if errors.As(err, &ce) {
		if ce.Name == "" {
			ce.Name = name
		}
		return ce
	}
	return &ConstructionError{Resource: resource, Name: name, Err: err}
}
