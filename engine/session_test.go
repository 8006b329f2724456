package engine

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mainboard-engine/config"
	"mainboard-engine/core"
	"mainboard-engine/gpu"
	"mainboard-engine/gpu/gputest"
	"mainboard-engine/platform/platformtest"
	"mainboard-engine/renderer"
)

type harness struct {
	session *Session
	driver  *platformtest.Driver
	devices []*gputest.Device
	cfg     config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, gpu.ShaderDir(gpu.OpenGL))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"vs_fullscreen.bin", "fs_tiled.bin"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("void main() {}"), 0o644))
	}

	h := &harness{driver: platformtest.New(), cfg: config.Default()}
	h.cfg.ShaderRoot = root

	h.session = NewSession(
		WithDriver(h.driver),
		WithConfig(h.cfg),
		WithDeviceFactory(func(config.Config) (gpu.Device, error) {
			dev := gputest.New()
			dev.Type = gpu.OpenGL
			h.devices = append(h.devices, dev)
			return dev, nil
		}),
	)
	t.Cleanup(h.session.Shutdown)
	return h
}

func (h *harness) device() *gputest.Device {
	return h.devices[len(h.devices)-1]
}

func windowConfig() core.WindowConfig {
	cfg := core.DefaultWindowConfig()
	cfg.Width, cfg.Height = 800, 600
	return cfg
}

func writeBlock(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "block.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestRenderScenario(t *testing.T) {
	h := newHarness(t)
	s := h.session

	require.NoError(t, s.Initialize())
	win, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)
	require.NotZero(t, win)
	assert.Equal(t, win, s.Bound())

	require.NoError(t, s.LoadBlock(0, writeBlock(t, 48, 48)))
	require.NoError(t, s.RenderBlock(0, 10, 10))

	frame, err := s.RenderFrame(win)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), frame)

	for want := uint32(2); want <= 5; want++ {
		frame, err = s.RenderFrame(win)
		require.NoError(t, err)
		assert.Equal(t, want, frame)
	}

	dev := h.device()
	assert.Equal(t, 1, dev.SubmitCount)
	assert.Equal(t, [4]int{10, 10, 48, 48}, dev.Draws[0].Scissor)
}

func TestMissingBlock(t *testing.T) {
	h := newHarness(t)
	s := h.session
	require.NoError(t, s.Initialize())
	_, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)

	require.ErrorIs(t, s.LoadBlock(5, filepath.Join(t.TempDir(), "nope.png")), os.ErrNotExist)
	require.ErrorIs(t, s.RenderBlock(5, 0, 0), renderer.ErrBlockNotLoaded)
	require.NoError(t, s.ClearBlock())
	assert.Zero(t, h.device().SubmitCount)
}

func TestBeforeInitialize(t *testing.T) {
	s := newHarness(t).session

	_, err := s.CreateWindow(windowConfig())
	require.ErrorIs(t, err, ErrNotInitialized)
	require.ErrorIs(t, s.RenderBlock(0, 0, 0), ErrNotInitialized)
	require.ErrorIs(t, s.LoadBlock(0, "x.png"), ErrNotInitialized)
	require.ErrorIs(t, s.ClearBlock(), ErrNotInitialized)
	_, err = s.RenderFrame(0)
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestRenderBeforeWindow(t *testing.T) {
	s := newHarness(t).session
	require.NoError(t, s.Initialize())

	for id := 0; id < 1024; id++ {
		require.ErrorIs(t, s.RenderBlock(id, 0, 0), renderer.ErrNotBootstrapped)
	}
	frame, err := s.RenderFrame(0)
	require.NoError(t, err)
	assert.Zero(t, frame)
	require.NoError(t, s.ClearBlock())
}

func TestInitializeIdempotent(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Initialize())
	require.NoError(t, h.session.Initialize())
	assert.Equal(t, 1, h.driver.InitCalls)
}

func TestInitializeFailure(t *testing.T) {
	h := newHarness(t)
	h.driver.FailInitialize = true

	require.ErrorIs(t, h.session.Initialize(), platformtest.ErrInjected)
	_, err := h.session.CreateWindow(windowConfig())
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestQuitOncePerCloseRequest(t *testing.T) {
	h := newHarness(t)
	s := h.session
	require.NoError(t, s.Initialize())
	win, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		msg, err := s.ProcessEvents(win)
		require.NoError(t, err)
		assert.Equal(t, core.NoEvent, msg)
	}

	h.driver.Windows[0].RequestClose()
	msg, err := s.ProcessEvents(win)
	require.NoError(t, err)
	assert.Equal(t, core.Quit, msg)

	msg, err = s.ProcessEvents(win)
	require.NoError(t, err)
	assert.Equal(t, core.NoEvent, msg)
}

func TestWindowGeometry(t *testing.T) {
	h := newHarness(t)
	s := h.session
	require.NoError(t, s.Initialize())
	win, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)

	require.NoError(t, s.SetWindowSize(win, 1024, 768))
	rect, err := s.WindowSize(win)
	require.NoError(t, err)
	assert.Equal(t, 1024, rect.Width())
	assert.Equal(t, 768, rect.Height())

	require.NoError(t, s.SetWindowPosition(win, 40, 50))
	rect, err = s.WindowSize(win)
	require.NoError(t, err)
	assert.Equal(t, core.RectFromXYWH(40, 50, 1024, 768), rect)

	require.ErrorIs(t, s.SetWindowSize(win, 0, 10), core.ErrInvalidWindowSize)

	require.NoError(t, s.SetWindowTitle(win, "frame 7"))
	assert.Equal(t, "frame 7", h.driver.Windows[0].Title)

	native, err := s.NativeHandle(win)
	require.NoError(t, err)
	assert.NotZero(t, native)
}

func TestResizeReachesRenderer(t *testing.T) {
	h := newHarness(t)
	s := h.session
	require.NoError(t, s.Initialize())
	win, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)

	require.NoError(t, s.SetWindowSize(win, 640, 480))
	_, err = s.ProcessEvents(win)
	require.NoError(t, err)

	assert.Equal(t, [4]int{0, 0, 640, 480}, h.device().ViewRects[0])
}

func TestRendererUsesFramebufferPixels(t *testing.T) {
	h := newHarness(t)
	h.driver.FramebufferScale = 2
	s := h.session
	require.NoError(t, s.Initialize())
	win, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)

	dev := h.device()
	assert.Equal(t, uint32(1600), dev.InitArgs.Resolution.Width)
	assert.Equal(t, uint32(1200), dev.InitArgs.Resolution.Height)
	assert.Equal(t, [4]int{0, 0, 1600, 1200}, dev.ViewRects[0])

	rect, err := s.WindowSize(win)
	require.NoError(t, err)
	assert.Equal(t, 800, rect.Width())
	assert.Equal(t, 600, rect.Height())
}

func TestInvalidHandles(t *testing.T) {
	h := newHarness(t)
	s := h.session
	require.NoError(t, s.Initialize())
	win, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)

	for _, bad := range []WindowHandle{0, win + 1, 0xdeadbeef} {
		_, err := s.ProcessEvents(bad)
		require.ErrorIs(t, err, ErrInvalidHandle)
		_, err = s.WindowSize(bad)
		require.ErrorIs(t, err, ErrInvalidHandle)
		require.ErrorIs(t, s.DestroyWindow(bad), ErrInvalidHandle)
	}
	_, err = s.RenderFrame(win + 1)
	require.ErrorIs(t, err, ErrInvalidHandle)

	require.NoError(t, s.DestroyWindow(win))
	require.ErrorIs(t, s.DestroyWindow(win), ErrInvalidHandle)
	require.ErrorIs(t, s.SetWindowTitle(win, "gone"), ErrInvalidHandle)
}

func TestBootstrapFailureDestroysWindow(t *testing.T) {
	h := newHarness(t)
	s := NewSession(
		WithDriver(h.driver),
		WithConfig(h.cfg),
		WithDeviceFactory(func(config.Config) (gpu.Device, error) {
			dev := gputest.New()
			dev.FailInit = true
			return dev, nil
		}),
	)
	require.NoError(t, s.Initialize())

	win, err := s.CreateWindow(windowConfig())
	require.ErrorIs(t, err, gputest.ErrInjected)
	assert.Zero(t, win)
	assert.Empty(t, h.driver.Live())
	assert.Zero(t, s.Bound())
}

func TestNoBackend(t *testing.T) {
	h := newHarness(t)
	s := NewSession(
		WithDriver(h.driver),
		WithDeviceFactory(func(config.Config) (gpu.Device, error) {
			return nil, gpu.ErrBackendNotAvailable
		}),
	)
	require.NoError(t, s.Initialize())

	_, err := s.CreateWindow(windowConfig())
	require.ErrorIs(t, err, gpu.ErrBackendNotAvailable)
	assert.Empty(t, h.driver.Live())
}

func TestDestroyBoundWindowShutsEngineDown(t *testing.T) {
	h := newHarness(t)
	s := h.session
	require.NoError(t, s.Initialize())

	first, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)
	second, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)
	assert.Equal(t, first, s.Bound())
	assert.Len(t, h.devices, 1)

	require.NoError(t, s.LoadBlock(0, writeBlock(t, 8, 8)))
	require.NoError(t, s.DestroyWindow(first))
	assert.Equal(t, 1, h.device().ShutdownCall)
	assert.Zero(t, s.Bound())
	require.ErrorIs(t, s.RenderBlock(0, 0, 0), renderer.ErrNotBootstrapped)

	// plain windows are left alone
	_, err = s.ProcessEvents(second)
	require.NoError(t, err)

	third, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)
	assert.Equal(t, third, s.Bound())
	assert.Len(t, h.devices, 2)

	frame, err := s.RenderFrame(third)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), frame)
}

func TestShutdown(t *testing.T) {
	h := newHarness(t)
	s := h.session
	require.NoError(t, s.Initialize())
	_, err := s.CreateWindow(windowConfig())
	require.NoError(t, err)
	_, err = s.CreateWindow(windowConfig())
	require.NoError(t, err)

	s.Shutdown()
	assert.Empty(t, h.driver.Live())
	assert.Equal(t, 1, h.driver.ShutdownCalls)
	assert.Equal(t, 1, h.device().ShutdownCall)

	s.Shutdown()
	assert.Equal(t, 1, h.driver.ShutdownCalls)

	_, err = s.RenderFrame(0)
	require.ErrorIs(t, err, ErrNotInitialized)

	// a shut down session starts over
	require.NoError(t, s.Initialize())
	_, err = s.CreateWindow(windowConfig())
	require.NoError(t, err)
}
