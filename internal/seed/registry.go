package seed

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps seed mode strings to their strategies.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// DefaultRegistry returns a Registry holding the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Sentinel{})
	r.Register(FirstLHS{})
	r.Register(Explicit{})
	return r
}

// Register adds a strategy. Panics on duplicate mode to surface misconfiguration early.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.strategies[s.Mode()]; exists {
		panic(fmt.Sprintf("seed registry: duplicate mode %q", s.Mode()))
	}
	r.strategies[s.Mode()] = s
}

// Get returns the strategy for the given mode.
func (r *Registry) Get(mode string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[mode]
	if !ok {
		return nil, fmt.Errorf("no seed strategy registered for mode %q", mode)
	}
	return s, nil
}

// Modes returns all registered modes, sorted.
func (r *Registry) Modes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.strategies))
	for k := range r.strategies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
