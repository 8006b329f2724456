package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mainboard-engine/core"
)

type fakeCompositor struct {
	name     string
	initErr  error
	shutdown int
	closing  bool
}

func (c *fakeCompositor) Name() string      { return c.name }
func (c *fakeCompositor) Initialize() error { return c.initErr }
func (c *fakeCompositor) Shutdown()         { c.shutdown++ }

func (c *fakeCompositor) CreateWindow(core.WindowConfig) (Window, error) {
	return nil, errors.New("not used")
}

func (c *fakeCompositor) ProcessEvents(Window) core.MessageType {
	if c.closing {
		c.closing = false
		return core.Quit
	}
	return core.NoEvent
}

// isolateCompositors swaps the registry for an empty one for the test.
func isolateCompositors(t *testing.T) {
	t.Helper()

	compositorMu.Lock()
	saved := compositors
	compositors = make(map[string]compositorEntry)
	compositorMu.Unlock()

	t.Cleanup(func() {
		compositorMu.Lock()
		compositors = saved
		compositorMu.Unlock()
	})
}

func register(c *fakeCompositor, priority int) {
	RegisterCompositor(c.name, priority, func() Compositor { return c })
}

func TestCompositorsPriorityOrder(t *testing.T) {
	isolateCompositors(t)

	register(&fakeCompositor{name: "x11"}, 20)
	register(&fakeCompositor{name: "wayland"}, 10)
	register(&fakeCompositor{name: "headless"}, 20)
	assert.Equal(t, []string{"wayland", "headless", "x11"}, Compositors())

	UnregisterCompositor("wayland")
	assert.Equal(t, []string{"headless", "x11"}, Compositors())
}

func TestCompositorDriverNoCompositor(t *testing.T) {
	isolateCompositors(t)

	d := newCompositorDriver()
	require.ErrorIs(t, d.Initialize(), ErrNoCompositor)

	_, err := d.CreateWindow(core.DefaultWindowConfig())
	require.ErrorIs(t, err, ErrNotInitialized)
	assert.Equal(t, core.NoEvent, d.ProcessEvents(nil))
	d.Shutdown()
}

func TestCompositorDriverFallsBack(t *testing.T) {
	isolateCompositors(t)

	broken := &fakeCompositor{name: "wayland", initErr: errors.New("no display")}
	working := &fakeCompositor{name: "x11"}
	register(broken, 10)
	register(working, 20)

	d := newCompositorDriver()
	require.NoError(t, d.Initialize())
	assert.Same(t, working, d.compositor)

	// idempotent
	require.NoError(t, d.Initialize())

	working.closing = true
	assert.Equal(t, core.Quit, d.ProcessEvents(nil))
	assert.Equal(t, core.NoEvent, d.ProcessEvents(nil))

	d.Shutdown()
	d.Shutdown()
	assert.Equal(t, 1, working.shutdown)
	assert.Zero(t, broken.shutdown)
}

func TestCompositorDriverAllFail(t *testing.T) {
	isolateCompositors(t)

	cause := errors.New("no display")
	register(&fakeCompositor{name: "wayland", initErr: cause}, 10)

	err := newCompositorDriver().Initialize()
	require.ErrorIs(t, err, ErrNoCompositor)
	require.ErrorIs(t, err, cause)
}

func TestCompositorDriverValidatesConfig(t *testing.T) {
	isolateCompositors(t)
	register(&fakeCompositor{name: "x11"}, 0)

	d := newCompositorDriver()
	require.NoError(t, d.Initialize())

	cfg := core.DefaultWindowConfig()
	cfg.Width = 0
	_, err := d.CreateWindow(cfg)
	require.ErrorIs(t, err, core.ErrInvalidWindowSize)
}
