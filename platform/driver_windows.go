//go:build windows

package platform

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"mainboard-engine/core"
	"mainboard-engine/internal/logging"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	opengl32 = windows.NewLazySystemDLL("opengl32.dll")

	procRegisterClassExW = user32.NewProc("RegisterClassExW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procPeekMessageW     = user32.NewProc("PeekMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessageW = user32.NewProc("DispatchMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
	procLoadCursorW      = user32.NewProc("LoadCursorW")
	procAdjustWindowRect = user32.NewProc("AdjustWindowRect")
	procSetWindowPos     = user32.NewProc("SetWindowPos")
	procGetClientRect    = user32.NewProc("GetClientRect")
	procClientToScreen   = user32.NewProc("ClientToScreen")
	procSetWindowTextW   = user32.NewProc("SetWindowTextW")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
	procGetDC            = user32.NewProc("GetDC")
	procReleaseDC        = user32.NewProc("ReleaseDC")

	procGetModuleHandleW = kernel32.NewProc("GetModuleHandleW")

	procChoosePixelFormat = gdi32.NewProc("ChoosePixelFormat")
	procSetPixelFormat    = gdi32.NewProc("SetPixelFormat")
	procSwapBuffers       = gdi32.NewProc("SwapBuffers")

	procWglCreateContext = opengl32.NewProc("wglCreateContext")
	procWglDeleteContext = opengl32.NewProc("wglDeleteContext")
	procWglMakeCurrent   = opengl32.NewProc("wglMakeCurrent")
	procWglGetProcAddr   = opengl32.NewProc("wglGetProcAddress")
)

const windowClassName = "MainboardEngineBasedWindow"

const (
	csVRedraw = 0x0001
	csHRedraw = 0x0002
	csOwnDC   = 0x0020

	wsOverlappedWindow = 0x00CF0000
	wsPopup            = 0x80000000
	wsVisible          = 0x10000000

	wmDestroy = 0x0002
	wmClose   = 0x0010
	wmQuit    = 0x0012

	pmRemove = 0x0001

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010

	smCXScreen = 0
	smCYScreen = 1

	idcArrow = 32512

	pfdDoubleBuffer    = 0x00000001
	pfdDrawToWindow    = 0x00000004
	pfdSupportOpenGL   = 0x00000020
	pfdTypeRGBA        = 0
	pfdMainPlane       = 0
	pixelFormatBits    = 32
	pixelFormatDepth   = 24
	pixelFormatStencil = 8
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type point struct {
	X, Y int32
}

type msg struct {
	Hwnd    windows.HWND
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
	Private uint32
}

type rect struct {
	Left, Top, Right, Bottom int32
}

type pixelFormatDescriptor struct {
	Size           uint16
	Version        uint16
	Flags          uint32
	PixelType      byte
	ColorBits      byte
	RedBits        byte
	RedShift       byte
	GreenBits      byte
	GreenShift     byte
	BlueBits       byte
	BlueShift      byte
	AlphaBits      byte
	AlphaShift     byte
	AccumBits      byte
	AccumRedBits   byte
	AccumGreenBits byte
	AccumBlueBits  byte
	AccumAlphaBits byte
	DepthBits      byte
	StencilBits    byte
	AuxBuffers     byte
	LayerType      byte
	Reserved       byte
	LayerMask      uint32
	VisibleMask    uint32
	DamageMask     uint32
}

var (
	// the class is registered once per process, on first window creation
	registerOnce sync.Once
	registerErr  error
	instance     windows.Handle

	// live windows by hwnd, read by the window procedure
	liveWindows = map[windows.HWND]*win32Window{}
)

func newDriver() Driver {
	return &win32Driver{}
}

type win32Driver struct {
	initialized bool
}

func (d *win32Driver) Initialize() error {
	if d.initialized {
		return nil
	}

	h, _, err := procGetModuleHandleW.Call(0)
	if h == 0 {
		return fmt.Errorf("win32 initialize: GetModuleHandleW: %w", err)
	}
	instance = windows.Handle(h)
	d.initialized = true

	logging.Logger().Info("Platform initialized", "driver", "win32")
	return nil
}

func (d *win32Driver) Shutdown() {
	for _, w := range liveWindows {
		_ = w.Destroy()
	}
	d.initialized = false
}

func registerClass() error {
	registerOnce.Do(func() {
		className, err := windows.UTF16PtrFromString(windowClassName)
		if err != nil {
			registerErr = err
			return
		}
		cursor, _, _ := procLoadCursorW.Call(0, idcArrow)

		wc := wndClassEx{
			Style:     csHRedraw | csVRedraw | csOwnDC,
			WndProc:   windows.NewCallback(windowProc),
			Instance:  instance,
			Cursor:    windows.Handle(cursor),
			ClassName: className,
		}
		wc.Size = uint32(unsafe.Sizeof(wc))

		if atom, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
			registerErr = fmt.Errorf("RegisterClassExW: %w", err)
		}
	})
	return registerErr
}

func windowProc(hwnd, message, wparam, lparam uintptr) uintptr {
	switch message {
	case wmClose:
		procPostQuitMessage.Call(0)
		return 0
	case wmDestroy:
		// a host-requested destroy already answered its close request
		if w, ok := liveWindows[windows.HWND(hwnd)]; !ok || !w.destroying {
			procPostQuitMessage.Call(0)
		}
		return 0
	}
	ret, _, _ := procDefWindowProcW.Call(hwnd, message, wparam, lparam)
	return ret
}

func (d *win32Driver) CreateWindow(cfg core.WindowConfig) (Window, error) {
	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	if err := registerClass(); err != nil {
		return nil, fmt.Errorf("create window: register class: %w", err)
	}

	className, _ := windows.UTF16PtrFromString(windowClassName)
	title, err := windows.UTF16PtrFromString(cfg.Title)
	if err != nil {
		return nil, fmt.Errorf("create window: title: %w", err)
	}

	style := uintptr(wsOverlappedWindow | wsVisible)
	x, y, width, height := cfg.X, cfg.Y, cfg.Width, cfg.Height
	if cfg.Fullscreen {
		style = wsPopup | wsVisible
		x, y = 0, 0
		width = systemMetric(smCXScreen)
		height = systemMetric(smCYScreen)
	} else {
		width, height = outerSize(width, height, style)
	}

	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(title)),
		style,
		uintptr(x), uintptr(y), uintptr(width), uintptr(height),
		0, 0, uintptr(instance), 0,
	)
	if hwnd == 0 {
		return nil, fmt.Errorf("create window: CreateWindowExW: %w", err)
	}

	w := &win32Window{hwnd: windows.HWND(hwnd), style: style}
	liveWindows[w.hwnd] = w

	logging.Logger().Debug("Window created", "driver", "win32", "title", cfg.Title, "fullscreen", cfg.Fullscreen)
	return w, nil
}

// ProcessEvents drains the thread queue. WM_QUIT is a thread message, so
// the pump does not filter by window.
func (d *win32Driver) ProcessEvents(Window) core.MessageType {
	result := core.NoEvent

	var m msg
	for {
		ok, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if ok == 0 {
			break
		}
		if m.Message == wmQuit {
			result = core.Quit
			continue
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
	return result
}

func systemMetric(index int) int {
	v, _, _ := procGetSystemMetrics.Call(uintptr(index))
	return int(int32(v))
}

// outerSize grows a client size by the frame of style.
func outerSize(width, height int, style uintptr) (int, int) {
	r := rect{Right: int32(width), Bottom: int32(height)}
	if ok, _, _ := procAdjustWindowRect.Call(uintptr(unsafe.Pointer(&r)), style, 0); ok == 0 {
		return width, height
	}
	return int(r.Right - r.Left), int(r.Bottom - r.Top)
}

type win32Window struct {
	hwnd       windows.HWND
	style      uintptr
	hdc        uintptr
	glrc       uintptr
	destroying bool
}

func (w *win32Window) alive(op string) error {
	if w.hwnd == 0 {
		return fmt.Errorf("%s: %w", op, ErrWindowDestroyed)
	}
	return nil
}

func (w *win32Window) SetSize(width, height int) error {
	if err := w.alive("set size"); err != nil {
		return err
	}
	ow, oh := outerSize(width, height, w.style)
	ok, _, err := procSetWindowPos.Call(uintptr(w.hwnd), 0, 0, 0, uintptr(ow), uintptr(oh),
		swpNoMove|swpNoZOrder|swpNoActivate)
	if ok == 0 {
		return fmt.Errorf("set size: SetWindowPos: %w", err)
	}
	return nil
}

// Size is the client area in screen coordinates.
func (w *win32Window) Size() (core.Rect, error) {
	if err := w.alive("get size"); err != nil {
		return core.Rect{}, err
	}

	var r rect
	if ok, _, err := procGetClientRect.Call(uintptr(w.hwnd), uintptr(unsafe.Pointer(&r))); ok == 0 {
		return core.Rect{}, fmt.Errorf("get size: GetClientRect: %w", err)
	}
	var origin point
	if ok, _, err := procClientToScreen.Call(uintptr(w.hwnd), uintptr(unsafe.Pointer(&origin))); ok == 0 {
		return core.Rect{}, fmt.Errorf("get size: ClientToScreen: %w", err)
	}
	return core.RectFromXYWH(int(origin.X), int(origin.Y), int(r.Right-r.Left), int(r.Bottom-r.Top)), nil
}

// FramebufferSize is the client area size. Win32 client coordinates are
// already physical pixels.
func (w *win32Window) FramebufferSize() (int, int, error) {
	if err := w.alive("get framebuffer size"); err != nil {
		return 0, 0, err
	}

	var r rect
	if ok, _, err := procGetClientRect.Call(uintptr(w.hwnd), uintptr(unsafe.Pointer(&r))); ok == 0 {
		return 0, 0, fmt.Errorf("get framebuffer size: GetClientRect: %w", err)
	}
	return int(r.Right - r.Left), int(r.Bottom - r.Top), nil
}

func (w *win32Window) SetPosition(x, y int) error {
	if err := w.alive("set position"); err != nil {
		return err
	}
	ok, _, err := procSetWindowPos.Call(uintptr(w.hwnd), 0, uintptr(x), uintptr(y), 0, 0,
		swpNoSize|swpNoZOrder|swpNoActivate)
	if ok == 0 {
		return fmt.Errorf("set position: SetWindowPos: %w", err)
	}
	return nil
}

func (w *win32Window) SetTitle(title string) error {
	if err := w.alive("set title"); err != nil {
		return err
	}
	p, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	if ok, _, err := procSetWindowTextW.Call(uintptr(w.hwnd), uintptr(unsafe.Pointer(p))); ok == 0 {
		return fmt.Errorf("set title: SetWindowTextW: %w", err)
	}
	return nil
}

func (w *win32Window) NativeHandle() uintptr {
	return uintptr(w.hwnd)
}

// MakeContextCurrent creates the WGL context on first use and binds it to
// the calling thread.
func (w *win32Window) MakeContextCurrent() error {
	if err := w.alive("make context current"); err != nil {
		return err
	}
	if w.glrc == 0 {
		if err := w.createContext(); err != nil {
			return err
		}
	}
	if ok, _, err := procWglMakeCurrent.Call(w.hdc, w.glrc); ok == 0 {
		return fmt.Errorf("wglMakeCurrent: %w", err)
	}
	return nil
}

func (w *win32Window) createContext() error {
	hdc, _, err := procGetDC.Call(uintptr(w.hwnd))
	if hdc == 0 {
		return fmt.Errorf("GetDC: %w", err)
	}

	pfd := pixelFormatDescriptor{
		Version:     1,
		Flags:       pfdDrawToWindow | pfdSupportOpenGL | pfdDoubleBuffer,
		PixelType:   pfdTypeRGBA,
		ColorBits:   pixelFormatBits,
		DepthBits:   pixelFormatDepth,
		StencilBits: pixelFormatStencil,
		LayerType:   pfdMainPlane,
	}
	pfd.Size = uint16(unsafe.Sizeof(pfd))

	format, _, err := procChoosePixelFormat.Call(hdc, uintptr(unsafe.Pointer(&pfd)))
	if format == 0 {
		procReleaseDC.Call(uintptr(w.hwnd), hdc)
		return fmt.Errorf("ChoosePixelFormat: %w", err)
	}
	if ok, _, err := procSetPixelFormat.Call(hdc, format, uintptr(unsafe.Pointer(&pfd))); ok == 0 {
		procReleaseDC.Call(uintptr(w.hwnd), hdc)
		return fmt.Errorf("SetPixelFormat: %w", err)
	}

	glrc, _, err := procWglCreateContext.Call(hdc)
	if glrc == 0 {
		procReleaseDC.Call(uintptr(w.hwnd), hdc)
		return fmt.Errorf("wglCreateContext: %w", err)
	}

	w.hdc, w.glrc = hdc, glrc
	return nil
}

func (w *win32Window) SwapBuffers() error {
	if w.hdc == 0 {
		return fmt.Errorf("swap buffers: %w", ErrNotInitialized)
	}
	if ok, _, err := procSwapBuffers.Call(w.hdc); ok == 0 {
		return fmt.Errorf("SwapBuffers: %w", err)
	}
	return nil
}

// SetSwapInterval uses WGL_EXT_swap_control when the driver exposes it.
func (w *win32Window) SetSwapInterval(interval int) error {
	if w.glrc == 0 {
		return fmt.Errorf("swap interval: %w", ErrNotInitialized)
	}
	name, _ := windows.BytePtrFromString("wglSwapIntervalEXT")
	fn, _, _ := procWglGetProcAddr.Call(uintptr(unsafe.Pointer(name)))
	if fn == 0 {
		return fmt.Errorf("swap interval: wglSwapIntervalEXT: %w", ErrNotImplemented)
	}
	if ok, _, errno := syscall.SyscallN(fn, uintptr(interval)); ok == 0 {
		return fmt.Errorf("swap interval: %w", errno)
	}
	return nil
}

func (w *win32Window) Destroy() error {
	if w.hwnd == 0 {
		return nil
	}

	if w.glrc != 0 {
		procWglMakeCurrent.Call(0, 0)
		procWglDeleteContext.Call(w.glrc)
		w.glrc = 0
	}
	if w.hdc != 0 {
		procReleaseDC.Call(uintptr(w.hwnd), w.hdc)
		w.hdc = 0
	}

	w.destroying = true
	ok, _, err := procDestroyWindow.Call(uintptr(w.hwnd))
	delete(liveWindows, w.hwnd)
	w.hwnd = 0
	if ok == 0 {
		return fmt.Errorf("destroy window: DestroyWindow: %w", err)
	}
	return nil
}
