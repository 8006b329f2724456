package platform

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"mainboard-engine/core"
	"mainboard-engine/internal/logging"
)

// Compositor is a display-server backend used by the Linux driver. It is a
// separate capability from Driver: the driver decides which compositor to
// run and forwards to it once one is up.
type Compositor interface {
	Name() string
	Initialize() error
	Shutdown()
	CreateWindow(cfg core.WindowConfig) (Window, error)
	ProcessEvents(w Window) core.MessageType
}

// CompositorFactory creates an uninitialized compositor.
type CompositorFactory func() Compositor

type compositorEntry struct {
	name     string
	priority int
	factory  CompositorFactory
}

var (
	compositorMu sync.RWMutex
	compositors  = make(map[string]compositorEntry)
)

// RegisterCompositor makes a compositor selectable. Lower priority values
// are tried first. Registering a name again replaces the previous entry.
func RegisterCompositor(name string, priority int, factory CompositorFactory) {
	compositorMu.Lock()
	defer compositorMu.Unlock()
	compositors[name] = compositorEntry{name: name, priority: priority, factory: factory}
}

// UnregisterCompositor removes a compositor. Useful for tests.
func UnregisterCompositor(name string) {
	compositorMu.Lock()
	defer compositorMu.Unlock()
	delete(compositors, name)
}

// Compositors lists registered compositor names in the order they are tried.
func Compositors() []string {
	entries := sortedCompositors()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

func sortedCompositors() []compositorEntry {
	compositorMu.RLock()
	defer compositorMu.RUnlock()

	entries := make([]compositorEntry, 0, len(compositors))
	for _, e := range compositors {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].name < entries[j].name
	})
	return entries
}

// compositorDriver is the Linux Driver. It owns at most one running
// compositor and forwards every call to it.
type compositorDriver struct {
	compositor Compositor
}

func newCompositorDriver() *compositorDriver {
	return &compositorDriver{}
}

// Initialize starts the first registered compositor that comes up.
func (d *compositorDriver) Initialize() error {
	if d.compositor != nil {
		return nil
	}

	entries := sortedCompositors()
	if len(entries) == 0 {
		return ErrNoCompositor
	}

	var errs []error
	for _, e := range entries {
		c := e.factory()
		if c == nil {
			continue
		}
		if err := c.Initialize(); err != nil {
			logging.Logger().Warn("Compositor unavailable", "compositor", e.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
			continue
		}

		d.compositor = c
		logging.Logger().Info("Platform initialized", "compositor", c.Name())
		return nil
	}
	if len(errs) == 0 {
		return ErrNoCompositor
	}
	return fmt.Errorf("%w: %w", ErrNoCompositor, errors.Join(errs...))
}

func (d *compositorDriver) Shutdown() {
	if d.compositor == nil {
		return
	}
	d.compositor.Shutdown()
	d.compositor = nil
}

func (d *compositorDriver) CreateWindow(cfg core.WindowConfig) (Window, error) {
	if d.compositor == nil {
		return nil, ErrNotInitialized
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	return d.compositor.CreateWindow(cfg)
}

func (d *compositorDriver) ProcessEvents(w Window) core.MessageType {
	if d.compositor == nil {
		return core.NoEvent
	}
	return d.compositor.ProcessEvents(w)
}
