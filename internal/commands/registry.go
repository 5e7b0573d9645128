package commands

import (
	"fmt"
	"slices"
	"sync"
)

// DuplicateError reports a name or alias claimed by two commands.
type DuplicateError struct {
	Name     string
	Existing Command
	Incoming Command
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("command name %q already taken by %q (usage: %s); cannot register %q",
		e.Name, e.Existing.Name(), e.Existing.Usage(), e.Incoming.Name())
}

// Registry maps names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command
	primary []Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Command)}
}

// Register adds c under its name and aliases. Nothing is added when any of
// them collides with an existing entry.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	for i, name := range names {
		if existing, ok := r.byName[name]; ok {
			return &DuplicateError{Name: name, Existing: existing, Incoming: c}
		}
		if slices.Contains(names[:i], name) {
			return &DuplicateError{Name: name, Existing: c, Incoming: c}
		}
	}
	for _, name := range names {
		r.byName[name] = c
	}
	r.primary = append(r.primary, c)
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns every command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	all := slices.Clone(r.primary)
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b Command) int {
		switch {
		case a.Name() < b.Name():
			return -1
		case a.Name() > b.Name():
			return 1
		}
		return 0
	})
	return all
}

// DefaultRegistry holds the commands registered at init.
var DefaultRegistry = NewRegistry()

// Register adds c to DefaultRegistry and panics on a collision.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
