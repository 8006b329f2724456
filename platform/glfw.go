//go:build linux && !nodisplay

package platform

import (
	"fmt"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"

	"mainboard-engine/core"
	"mainboard-engine/internal/logging"
)

// Build with -tags wayland to make glfw talk to a Wayland compositor
// instead of X11.
const glfwCompositorName = "glfw"

func init() {
	RegisterCompositor(glfwCompositorName, 10, func() Compositor {
		return &glfwCompositor{}
	})
}

// glfwGuard runs fn and turns a glfw panic into an error.
func glfwGuard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("glfw %s: %w", op, e)
				return
			}
			err = fmt.Errorf("glfw %s: %v", op, r)
		}
	}()
	return fn()
}

type glfwCompositor struct {
	hints sync.Once
}

func (c *glfwCompositor) Name() string { return glfwCompositorName }

func (c *glfwCompositor) Initialize() error {
	return glfwGuard("init", glfw.Init)
}

func (c *glfwCompositor) Shutdown() {
	_ = glfwGuard("terminate", func() error {
		glfw.Terminate()
		return nil
	})
}

func (c *glfwCompositor) CreateWindow(cfg core.WindowConfig) (Window, error) {
	var handle *glfw.Window
	err := glfwGuard("create window", func() error {
		c.hints.Do(func() {
			glfw.DefaultWindowHints()
			glfw.WindowHint(glfw.ContextVersionMajor, 4)
			glfw.WindowHint(glfw.ContextVersionMinor, 1)
			glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
			glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
			glfw.WindowHint(glfw.Resizable, glfw.True)
		})

		width, height := cfg.Width, cfg.Height
		var monitor *glfw.Monitor
		if cfg.Fullscreen {
			monitor = glfw.GetPrimaryMonitor()
			if mode := monitor.GetVideoMode(); mode != nil {
				width, height = mode.Width, mode.Height
			}
		}

		var err error
		handle, err = glfw.CreateWindow(width, height, cfg.Title, monitor, nil)
		if err != nil {
			return err
		}
		if !cfg.Fullscreen {
			handle.SetPos(cfg.X, cfg.Y)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Logger().Debug("Window created", "compositor", glfwCompositorName,
		"title", cfg.Title, "fullscreen", cfg.Fullscreen)
	return &glfwWindow{handle: handle}, nil
}

// ProcessEvents polls glfw and reports one Quit per close request. The
// close flag is reset so the host decides whether the window goes away.
func (c *glfwCompositor) ProcessEvents(w Window) core.MessageType {
	msg := core.NoEvent
	err := glfwGuard("poll events", func() error {
		glfw.PollEvents()

		gw, ok := w.(*glfwWindow)
		if !ok || gw.handle == nil {
			return nil
		}
		if gw.handle.ShouldClose() {
			gw.handle.SetShouldClose(false)
			msg = core.Quit
		}
		return nil
	})
	if err != nil {
		logging.Logger().Warn("Event pump failed", "error", err)
	}
	return msg
}

type glfwWindow struct {
	handle *glfw.Window
}

func (w *glfwWindow) do(op string, fn func(h *glfw.Window)) error {
	if w.handle == nil {
		return fmt.Errorf("%s: %w", op, ErrWindowDestroyed)
	}
	return glfwGuard(op, func() error {
		fn(w.handle)
		return nil
	})
}

func (w *glfwWindow) SetSize(width, height int) error {
	return w.do("set size", func(h *glfw.Window) { h.SetSize(width, height) })
}

func (w *glfwWindow) Size() (core.Rect, error) {
	var rect core.Rect
	err := w.do("get size", func(h *glfw.Window) {
		x, y := h.GetPos()
		width, height := h.GetSize()
		rect = core.RectFromXYWH(x, y, width, height)
	})
	return rect, err
}

func (w *glfwWindow) FramebufferSize() (width, height int, err error) {
	err = w.do("get framebuffer size", func(h *glfw.Window) {
		width, height = h.GetFramebufferSize()
	})
	return width, height, err
}

func (w *glfwWindow) SetPosition(x, y int) error {
	return w.do("set position", func(h *glfw.Window) { h.SetPos(x, y) })
}

func (w *glfwWindow) SetTitle(title string) error {
	return w.do("set title", func(h *glfw.Window) { h.SetTitle(title) })
}

func (w *glfwWindow) NativeHandle() uintptr {
	if w.handle == nil {
		return 0
	}
	return uintptr(w.handle.Handle())
}

func (w *glfwWindow) MakeContextCurrent() error {
	return w.do("make context current", func(h *glfw.Window) { h.MakeContextCurrent() })
}

func (w *glfwWindow) SwapBuffers() error {
	return w.do("swap buffers", func(h *glfw.Window) { h.SwapBuffers() })
}

func (w *glfwWindow) SetSwapInterval(interval int) error {
	return w.do("swap interval", func(*glfw.Window) { glfw.SwapInterval(interval) })
}

func (w *glfwWindow) Destroy() error {
	if w.handle == nil {
		return nil
	}
	err := glfwGuard("destroy window", func() error {
		w.handle.Destroy()
		return nil
	})
	w.handle = nil
	return err
}
