package gpu

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates an uninitialized Device.
type Factory func() Device

var (
	registryMu sync.RWMutex
	backends   = make(map[RendererType]Factory)

	// first registered entry wins when no renderer is requested
	backendPriority = []RendererType{Direct3D11, Direct3D12, Metal, Vulkan, OpenGL, Noop}
)

// Register makes a backend selectable. Backend packages call it from init.
// Registering the same type again replaces the previous factory.
func Register(t RendererType, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[t] = factory
}

// Unregister removes a backend. Useful for tests.
func Unregister(t RendererType) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, t)
}

// Available lists registered backends in priority order.
func Available() []RendererType {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]RendererType, 0, len(backends))
	for t := range backends {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return priority(types[i]) < priority(types[j])
	})
	return types
}

func priority(t RendererType) int {
	for i, p := range backendPriority {
		if p == t {
			return i
		}
	}
	return len(backendPriority) + int(t)
}

// New creates a device for the requested renderer. With ok=false the best
// registered backend by priority is used.
func New(requested RendererType, ok bool) (Device, error) {
	if ok {
		registryMu.RLock()
		factory, found := backends[requested]
		registryMu.RUnlock()
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrBackendNotAvailable, requested)
		}
		return factory(), nil
	}

	for _, t := range Available() {
		registryMu.RLock()
		factory := backends[t]
		registryMu.RUnlock()
		if d := factory(); d != nil {
			return d, nil
		}
	}
	return nil, ErrBackendNotAvailable
}
