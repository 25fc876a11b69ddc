package commands

import (
	"sort"

	"emperror.dev/errors"
)

// Registry maps command names to handlers. Definition files are bound to handlers through it.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler. Names must be unique.
func (r *Registry) Register(name string, h Handler) error {
	if !nameRegex.MatchString(name) {
		return errors.Errorf("invalid command name %q", name)
	}
	if h == nil {
		return errors.Errorf("nil handler for command %q", name)
	}
	if _, ok := r.handlers[name]; ok {
		return errors.Errorf("handler for command %q is already registered", name)
	}

	r.handlers[name] = h
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, h Handler) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

// Handler returns the handler registered for name.
func (r *Registry) Handler(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
