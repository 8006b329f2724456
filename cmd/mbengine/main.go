// Command mbengine exports the engine as a C shared library:
//
//	go build -buildmode=c-shared -o libmbengine.so ./cmd/mbengine
//
// Every ME_* function forwards to one process-wide engine.Session. Window
// handles cross the boundary as opaque pointers holding the session's
// handle value, so unknown or null pointers are rejected by the session.
// Failures return 0 or NULL and are logged to stderr.
package main

/*
#include <stdint.h>

typedef struct ME_Rect {
	int32_t top;
	int32_t bottom;
	int32_t left;
	int32_t right;
} ME_Rect;

static void* me_to_pointer(uintptr_t v) { return (void*)v; }
static uintptr_t me_from_pointer(void* p) { return (uintptr_t)p; }
*/
import "C"

import (
	"log/slog"
	"os"
	"unsafe"

	"mainboard-engine/config"
	"mainboard-engine/core"
	"mainboard-engine/engine"
	"mainboard-engine/internal/logging"
)

var session *engine.Session

func main() {}

func result(op string, err error) C.int {
	if err != nil {
		logging.Logger().Error("Call failed", "op", op, "error", err)
		return 0
	}
	return 1
}

func handle(p unsafe.Pointer) engine.WindowHandle {
	return handleFromValue(uint64(C.me_from_pointer(p)))
}

func pointer(v uintptr) unsafe.Pointer {
	return C.me_to_pointer(C.uintptr_t(v))
}

//export ME_Initialize
func ME_Initialize() C.int {
	if session != nil {
		return 1
	}

	cfg, err := config.FromEnv()
	engine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
	if err != nil {
		return result("initialize", err)
	}

	s := engine.NewSession(engine.WithConfig(cfg))
	if err := s.Initialize(); err != nil {
		return result("initialize", err)
	}
	session = s
	return 1
}

//export ME_CreateWindow
func ME_CreateWindow(fullscreen, x, y, width, height C.int, title *C.char) unsafe.Pointer {
	if session == nil {
		result("create window", engine.ErrNotInitialized)
		return nil
	}

	h, err := session.CreateWindow(core.WindowConfig{
		Fullscreen: fullscreen != 0,
		X:          int(x),
		Y:          int(y),
		Width:      int(width),
		Height:     int(height),
		Title:      C.GoString(title),
	})
	if err != nil {
		result("create window", err)
		return nil
	}
	return pointer(uintptr(h))
}

//export ME_ProcessEvents
func ME_ProcessEvents(window unsafe.Pointer) C.int {
	if session == nil {
		return C.int(core.NoEvent)
	}
	msg, err := session.ProcessEvents(handle(window))
	if err != nil {
		result("process events", err)
	}
	return C.int(msg)
}

//export ME_RenderBlock
func ME_RenderBlock(id, x, y C.int) C.int {
	if session == nil {
		return result("render block", engine.ErrNotInitialized)
	}
	return result("render block", session.RenderBlock(int(id), int(x), int(y)))
}

//export ME_RenderFrame
func ME_RenderFrame(window unsafe.Pointer) C.int {
	if session == nil {
		return 0
	}
	frame, err := session.RenderFrame(handle(window))
	if err != nil {
		result("render frame", err)
	}
	return C.int(frame)
}

//export ME_DestroyWindow
func ME_DestroyWindow(window unsafe.Pointer) C.int {
	if session == nil {
		return result("destroy window", engine.ErrNotInitialized)
	}
	return result("destroy window", session.DestroyWindow(handle(window)))
}

//export ME_GetMEWindowHandle
func ME_GetMEWindowHandle(window unsafe.Pointer) unsafe.Pointer {
	if session == nil {
		return nil
	}
	native, err := session.NativeHandle(handle(window))
	if err != nil {
		result("native handle", err)
		return nil
	}
	return pointer(native)
}

//export ME_SetWindowSize
func ME_SetWindowSize(window unsafe.Pointer, width, height C.int) C.int {
	if session == nil {
		return result("set window size", engine.ErrNotInitialized)
	}
	return result("set window size", session.SetWindowSize(handle(window), int(width), int(height)))
}

//export ME_GetWindowSize
func ME_GetWindowSize(window unsafe.Pointer, out *C.ME_Rect) C.int {
	if session == nil {
		return result("get window size", engine.ErrNotInitialized)
	}
	if out == nil {
		return 0
	}
	rect, err := session.WindowSize(handle(window))
	if err != nil {
		return result("get window size", err)
	}
	out.top = C.int32_t(rect.Top)
	out.bottom = C.int32_t(rect.Bottom)
	out.left = C.int32_t(rect.Left)
	out.right = C.int32_t(rect.Right)
	return 1
}

//export ME_SetWindowPosition
func ME_SetWindowPosition(window unsafe.Pointer, x, y C.int) C.int {
	if session == nil {
		return result("set window position", engine.ErrNotInitialized)
	}
	return result("set window position", session.SetWindowPosition(handle(window), int(x), int(y)))
}

//export ME_SetWindowTitle
func ME_SetWindowTitle(window unsafe.Pointer, title *C.char) C.int {
	if session == nil {
		return result("set window title", engine.ErrNotInitialized)
	}
	return result("set window title", session.SetWindowTitle(handle(window), C.GoString(title)))
}

//export ME_LoadBlock
func ME_LoadBlock(id C.int, path *C.char) C.int {
	if session == nil {
		return result("load block", engine.ErrNotInitialized)
	}
	return result("load block", session.LoadBlock(int(id), C.GoString(path)))
}

//export ME_ClearBlock
func ME_ClearBlock() C.int {
	if session == nil {
		return result("clear block", engine.ErrNotInitialized)
	}
	return result("clear block", session.ClearBlock())
}

//export ME_Shutdown
func ME_Shutdown() {
	if session == nil {
		return
	}
	session.Shutdown()
	session = nil
}
