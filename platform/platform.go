// Package platform abstracts OS window creation and the native message pump.
//
// The concrete Driver is selected by build target: win32 on Windows, a
// compositor-backed driver on Linux and a stub on macOS. Every call must be
// made from the main goroutine, which this package locks to its OS thread.
package platform

import (
	"errors"
	"runtime"

	"mainboard-engine/core"
)

func init() {
	runtime.LockOSThread()
}

var (
	ErrNoPlatform      = errors.New("platform: no driver for this operating system")
	ErrNoCompositor    = errors.New("platform: no compositor available")
	ErrNotImplemented  = errors.New("platform: not implemented")
	ErrNotInitialized  = errors.New("platform: driver not initialized")
	ErrWindowDestroyed = errors.New("platform: window destroyed")
)

// Driver owns the native windowing system for one session.
type Driver interface {
	// Initialize performs one-time setup. Calling it again is a no-op.
	Initialize() error
	// Shutdown releases backend resources. It is safe to call repeatedly.
	Shutdown()
	CreateWindow(cfg core.WindowConfig) (Window, error)
	// ProcessEvents drains every pending native message without blocking
	// and reports Quit when the OS asked for the window to close.
	ProcessEvents(w Window) core.MessageType
}

// Window is a native OS window. Geometry is in screen coordinates.
type Window interface {
	SetSize(width, height int) error
	Size() (core.Rect, error)
	// FramebufferSize is the drawable area in pixels. It is larger than Size
	// on scaled displays.
	FramebufferSize() (width, height int, err error)
	SetPosition(x, y int) error
	SetTitle(title string) error
	// NativeHandle is the raw surface pointer handed to the GPU backend.
	NativeHandle() uintptr
	Destroy() error
}

// New returns the driver for the running operating system.
func New() Driver {
	return newDriver()
}
