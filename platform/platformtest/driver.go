// Package platformtest provides an in-memory platform.Driver for tests.
package platformtest

import (
	"errors"
	"fmt"

	"mainboard-engine/core"
	"mainboard-engine/platform"
)

var ErrInjected = errors.New("platformtest: injected failure")

// Driver is a scriptable platform.Driver. Windows live only in memory.
type Driver struct {
	FailInitialize bool
	FailCreate     bool
	// FramebufferScale is copied into every window created afterwards.
	FramebufferScale int

	Initialized   bool
	InitCalls     int
	ShutdownCalls int
	Windows       []*Window
}

var _ platform.Driver = (*Driver)(nil)

func New() *Driver {
	return &Driver{}
}

func (d *Driver) Initialize() error {
	d.InitCalls++
	if d.FailInitialize {
		return ErrInjected
	}
	d.Initialized = true
	return nil
}

func (d *Driver) Shutdown() {
	d.ShutdownCalls++
	d.Initialized = false
}

func (d *Driver) CreateWindow(cfg core.WindowConfig) (platform.Window, error) {
	if !d.Initialized {
		return nil, platform.ErrNotInitialized
	}
	if d.FailCreate {
		return nil, ErrInjected
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	if cfg.Fullscreen {
		cfg.X, cfg.Y, cfg.Width, cfg.Height = 0, 0, 1920, 1080
	}

	w := &Window{
		Title:            cfg.Title,
		FramebufferScale: d.FramebufferScale,
		rect:             cfg.Rect(),
		handle:           uintptr(len(d.Windows) + 1),
	}
	d.Windows = append(d.Windows, w)
	return w, nil
}

// ProcessEvents reports one Quit per RequestClose on w.
func (d *Driver) ProcessEvents(w platform.Window) core.MessageType {
	fw, ok := w.(*Window)
	if !ok || fw.closeRequests == 0 {
		return core.NoEvent
	}
	fw.closeRequests--
	return core.Quit
}

// Live returns the windows that have not been destroyed.
func (d *Driver) Live() []*Window {
	var live []*Window
	for _, w := range d.Windows {
		if !w.Destroyed {
			live = append(live, w)
		}
	}
	return live
}

// Window is an in-memory platform.Window.
type Window struct {
	Title     string
	Destroyed bool
	// FailGeometry makes every size and position call fail.
	FailGeometry bool
	// FramebufferScale multiplies the window size into pixels. Zero means 1.
	FramebufferScale int

	rect          core.Rect
	handle        uintptr
	closeRequests int
}

var _ platform.Window = (*Window)(nil)

// RequestClose simulates the user closing the window.
func (w *Window) RequestClose() {
	w.closeRequests++
}

func (w *Window) check(op string) error {
	if w.Destroyed {
		return fmt.Errorf("%s: %w", op, platform.ErrWindowDestroyed)
	}
	if w.FailGeometry {
		return fmt.Errorf("%s: %w", op, ErrInjected)
	}
	return nil
}

func (w *Window) SetSize(width, height int) error {
	if err := w.check("set size"); err != nil {
		return err
	}
	w.rect = core.RectFromXYWH(w.rect.Left, w.rect.Top, width, height)
	return nil
}

func (w *Window) Size() (core.Rect, error) {
	if err := w.check("get size"); err != nil {
		return core.Rect{}, err
	}
	return w.rect, nil
}

func (w *Window) FramebufferSize() (int, int, error) {
	if err := w.check("get framebuffer size"); err != nil {
		return 0, 0, err
	}
	scale := max(w.FramebufferScale, 1)
	return w.rect.Width() * scale, w.rect.Height() * scale, nil
}

func (w *Window) SetPosition(x, y int) error {
	if err := w.check("set position"); err != nil {
		return err
	}
	w.rect = core.RectFromXYWH(x, y, w.rect.Width(), w.rect.Height())
	return nil
}

func (w *Window) SetTitle(title string) error {
	if w.Destroyed {
		return fmt.Errorf("set title: %w", platform.ErrWindowDestroyed)
	}
	w.Title = title
	return nil
}

func (w *Window) NativeHandle() uintptr {
	if w.Destroyed {
		return 0
	}
	return w.handle
}

func (w *Window) Destroy() error {
	w.Destroyed = true
	return nil
}
