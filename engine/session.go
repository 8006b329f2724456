// Package engine is the host-facing API of the block renderer. A Session
// owns the platform driver, the windows created through it and the render
// engine bound to the first of them.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"mainboard-engine/config"
	"mainboard-engine/core"
	"mainboard-engine/gpu"
	"mainboard-engine/internal/logging"
	"mainboard-engine/platform"
	"mainboard-engine/renderer"
)

var (
	ErrNotInitialized = errors.New("engine: session not initialized")
	ErrInvalidHandle  = errors.New("engine: invalid window handle")
)

// WindowHandle identifies a window created by a Session. Zero is never a
// valid handle.
type WindowHandle uint32

// DeviceFactory creates the GPU device a window is bootstrapped with.
type DeviceFactory func(cfg config.Config) (gpu.Device, error)

type Option func(*Session)

func WithDriver(d platform.Driver) Option {
	return func(s *Session) { s.driver = d }
}

func WithDeviceFactory(f DeviceFactory) Option {
	return func(s *Session) { s.newDevice = f }
}

func WithConfig(cfg config.Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

// WithLogger installs l for every engine package, like SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(*Session) { SetLogger(l) }
}

// SetLogger installs the logger used by all engine packages. Nil silences
// logging again.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Session is the explicit engine context. It is not safe for concurrent
// use; every call must come from the thread that called Initialize.
type Session struct {
	cfg       config.Config
	driver    platform.Driver
	newDevice DeviceFactory

	initialized bool
	windows     map[WindowHandle]platform.Window
	lastHandle  WindowHandle

	engine *renderer.Engine
	bound  WindowHandle
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		cfg:       config.Default(),
		newDevice: defaultDevice,
		windows:   make(map[WindowHandle]platform.Window),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.driver == nil {
		s.driver = platform.New()
	}
	return s
}

func defaultDevice(cfg config.Config) (gpu.Device, error) {
	t, ok, err := cfg.RendererType()
	if err != nil {
		return nil, err
	}
	return gpu.New(t, ok)
}

// Initialize sets up the platform driver. Calling it again is a no-op.
func (s *Session) Initialize() error {
	if s.initialized {
		return nil
	}
	if err := s.driver.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	s.initialized = true
	return nil
}

// CreateWindow opens a window. When no render engine is running the new
// window is bootstrapped; if that fails the window is destroyed again.
func (s *Session) CreateWindow(cfg core.WindowConfig) (WindowHandle, error) {
	if !s.initialized {
		return 0, ErrNotInitialized
	}

	w, err := s.driver.CreateWindow(cfg)
	if err != nil {
		return 0, fmt.Errorf("create window: %w", err)
	}

	s.lastHandle++
	h := s.lastHandle
	s.windows[h] = w

	if s.engine == nil {
		if err := s.bootstrap(h, w); err != nil {
			delete(s.windows, h)
			if derr := w.Destroy(); derr != nil {
				logging.Logger().Warn("Window teardown failed", "error", derr)
			}
			return 0, fmt.Errorf("create window: %w", err)
		}
	}
	return h, nil
}

func (s *Session) bootstrap(h WindowHandle, w platform.Window) error {
	device, err := s.newDevice(s.cfg)
	if err != nil {
		return fmt.Errorf("select renderer: %w", err)
	}

	eng := renderer.NewEngine(device, s.cfg.Options())
	if err := eng.Bootstrap(w); err != nil {
		logging.Logger().Warn("Bootstrap failed, destroying window", "window", h, "error", err)
		return err
	}
	s.engine, s.bound = eng, h
	return nil
}

func (s *Session) window(h WindowHandle) (platform.Window, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	w, ok := s.windows[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return w, nil
}

// ProcessEvents pumps native messages for h. Pumping the bound window also
// picks up size changes for the renderer.
func (s *Session) ProcessEvents(h WindowHandle) (core.MessageType, error) {
	w, err := s.window(h)
	if err != nil {
		return core.NoEvent, err
	}

	msg := s.driver.ProcessEvents(w)
	if h == s.bound && s.engine != nil {
		if err := s.engine.Resize(); err != nil {
			logging.Logger().Warn("Resize failed", "window", h, "error", err)
		}
	}
	return msg, nil
}

func (s *Session) RenderBlock(id, x, y int) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if s.engine == nil {
		return fmt.Errorf("render block %d: %w", id, renderer.ErrNotBootstrapped)
	}
	return s.engine.RenderBlock(id, x, y)
}

// RenderFrame presents the frame and returns its number, or 0 while no
// window is bootstrapped. A zero handle skips validation.
func (s *Session) RenderFrame(h WindowHandle) (uint32, error) {
	if !s.initialized {
		return 0, ErrNotInitialized
	}
	if h != 0 {
		if _, err := s.window(h); err != nil {
			return 0, err
		}
	}
	if s.engine == nil {
		return 0, nil
	}
	return s.engine.Render(), nil
}

// DestroyWindow closes h. Destroying the bound window shuts the render
// engine down; the next window created bootstraps a new one.
func (s *Session) DestroyWindow(h WindowHandle) error {
	w, err := s.window(h)
	if err != nil {
		return err
	}

	if h == s.bound {
		s.shutdownEngine()
	}
	delete(s.windows, h)

	if err := w.Destroy(); err != nil {
		return fmt.Errorf("destroy window %d: %w", h, err)
	}
	return nil
}

func (s *Session) shutdownEngine() {
	if s.engine == nil {
		return
	}
	s.engine.Shutdown()
	s.engine, s.bound = nil, 0
}

func (s *Session) NativeHandle(h WindowHandle) (uintptr, error) {
	w, err := s.window(h)
	if err != nil {
		return 0, err
	}
	return w.NativeHandle(), nil
}

func (s *Session) SetWindowSize(h WindowHandle, width, height int) error {
	w, err := s.window(h)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("set window size: %w: %dx%d", core.ErrInvalidWindowSize, width, height)
	}
	return w.SetSize(width, height)
}

func (s *Session) WindowSize(h WindowHandle) (core.Rect, error) {
	w, err := s.window(h)
	if err != nil {
		return core.Rect{}, err
	}
	return w.Size()
}

func (s *Session) SetWindowPosition(h WindowHandle, x, y int) error {
	w, err := s.window(h)
	if err != nil {
		return err
	}
	return w.SetPosition(x, y)
}

func (s *Session) SetWindowTitle(h WindowHandle, title string) error {
	w, err := s.window(h)
	if err != nil {
		return err
	}
	return w.SetTitle(title)
}

// LoadBlock decodes the image at path into block slot id.
func (s *Session) LoadBlock(id int, path string) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if s.engine == nil {
		return fmt.Errorf("load block %d: %w", id, renderer.ErrNotBootstrapped)
	}
	return s.engine.LoadBlock(id, path)
}

// ClearBlock releases every loaded block.
func (s *Session) ClearBlock() error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if s.engine != nil {
		s.engine.ClearBlocks()
	}
	return nil
}

// Bound returns the window the render engine is bound to, or zero.
func (s *Session) Bound() WindowHandle {
	return s.bound
}

// Shutdown tears down the render engine, every remaining window and the
// driver. The session can be initialized again afterwards.
func (s *Session) Shutdown() {
	if !s.initialized {
		return
	}

	s.shutdownEngine()
	for h, w := range s.windows {
		if err := w.Destroy(); err != nil {
			logging.Logger().Warn("Window teardown failed", "window", h, "error", err)
		}
		delete(s.windows, h)
	}
	s.driver.Shutdown()
	s.initialized = false

	logging.Logger().Info("Session shut down")
}
