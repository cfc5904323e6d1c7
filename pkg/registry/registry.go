package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
)

// Factory builds a chat completer, usually closing over the provider settings.
type Factory func(ctx context.Context) (ports.ChatCompleter, error)

// Registry manages the available chat providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Factory),
	}
}

// Register adds a provider to the registry.
// If a provider with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = fn
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New looks up a provider by name and builds its completer.
// Returns domain.ErrUnsupported if the provider is not registered.
func (r *Registry) New(ctx context.Context, name string) (ports.ChatCompleter, error) {
	r.mu.RLock()
	fn, ok := r.providers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: provider %q", domain.ErrUnsupported, name)
	}

	return fn(ctx)
}
