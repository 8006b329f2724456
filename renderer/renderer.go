package renderer

import (
	"errors"
	"fmt"

	"mainboard-engine/blocks"
	"mainboard-engine/core"
	"mainboard-engine/gpu"
	"mainboard-engine/internal/logging"
	"mainboard-engine/math"
	"mainboard-engine/textures"
)

var (
	ErrNotBootstrapped     = errors.New("render engine not bootstrapped")
	ErrAlreadyBootstrapped = errors.New("render engine already bootstrapped")
	ErrBlockNotLoaded      = errors.New("block not loaded")
	ErrInvalidProgram      = errors.New("shader program invalid")
	ErrInvalidTexture      = errors.New("block texture invalid")
)

// mainView is the only view the engine renders into.
const mainView gpu.ViewID = 0

// Surface is the window the engine is bound to.
type Surface interface {
	// FramebufferSize is the drawable size in pixels, not window coordinates.
	FramebufferSize() (width, height int, err error)
	NativeHandle() uintptr
}

type Options struct {
	ShaderRoot      string
	ClearColor      core.Color
	ClearDepth      float32
	VSync           bool
	DecodeCacheSize int
}

func DefaultOptions() Options {
	return Options{
		ShaderRoot:      "./shader",
		ClearColor:      core.ColorFromRGBA8(0x443355ff),
		ClearDepth:      1.0,
		VSync:           true,
		DecodeCacheSize: 64,
	}
}

// Engine composites registered blocks onto the bound window. It owns the GPU
// device, the shared quad, the shader program and the block registry.
//
// An Engine is not safe for concurrent use. All calls must come from the
// thread that owns the window.
type Engine struct {
	device   gpu.Device
	opts     Options
	surface  Surface
	registry *blocks.Registry
	loader   *textures.Loader

	quad       quad
	program    gpu.ProgramHandle
	texColor   gpu.UniformHandle
	resolution gpu.UniformHandle

	width, height int
	bootstrapped  bool
}

func NewEngine(device gpu.Device, opts Options) *Engine {
	loader := textures.NewLoader(opts.DecodeCacheSize)
	return &Engine{
		device:     device,
		opts:       opts,
		loader:     loader,
		registry:   blocks.NewRegistry(device, loader),
		quad:       quad{vbh: gpu.InvalidVertexBuffer, ibh: gpu.InvalidIndexBuffer},
		program:    gpu.InvalidProgram,
		texColor:   gpu.InvalidUniform,
		resolution: gpu.InvalidUniform,
	}
}

// Bootstrap initializes the GPU device against surface, then creates the
// shared quad, the uniforms and the shader program. On failure everything
// created so far is released and the engine stays uninitialized.
func (e *Engine) Bootstrap(surface Surface) (err error) {
	if e.bootstrapped {
		return ErrAlreadyBootstrapped
	}

	width, height, err := surface.FramebufferSize()
	if err != nil {
		return fmt.Errorf("bootstrap: read framebuffer size: %w", err)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("bootstrap: %w: %dx%d", core.ErrInvalidWindowSize, width, height)
	}

	err = e.device.Init(gpu.Init{
		Resolution: gpu.Resolution{
			Width:  uint32(width),
			Height: uint32(height),
			VSync:  e.opts.VSync,
		},
		Platform: gpu.PlatformData{
			NativeWindow: surface.NativeHandle(),
			Window:       surface,
		},
	})
	if err != nil {
		return fmt.Errorf("bootstrap: init gpu: %w", err)
	}

	defer func() {
		if err != nil {
			e.release()
			e.device.Shutdown()
		}
	}()

	if e.quad, err = newQuad(e.device); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if e.texColor, err = e.device.CreateUniform("s_texColor", gpu.UniformSampler); err != nil {
		return fmt.Errorf("bootstrap: create uniform s_texColor: %w", err)
	}
	if e.resolution, err = e.device.CreateUniform("u_resolution", gpu.UniformVec4); err != nil {
		return fmt.Errorf("bootstrap: create uniform u_resolution: %w", err)
	}

	renderer := e.device.RendererType()
	if e.program, err = loadProgram(e.device, e.opts.ShaderRoot, renderer); err != nil {
		e.program = gpu.InvalidProgram
		return fmt.Errorf("bootstrap: %w", err)
	}

	e.surface = surface
	e.width, e.height = width, height

	e.device.SetViewClear(mainView, gpu.ClearColor|gpu.ClearDepth, e.opts.ClearColor.RGBA8(), e.opts.ClearDepth, 0)
	e.device.SetViewRect(mainView, 0, 0, e.width, e.height)

	e.bootstrapped = true

	logging.Logger().Info("Render engine bootstrapped",
		"renderer", renderer.String(),
		"width", e.width, "height", e.height,
		"shaders", shaderDir(e.opts.ShaderRoot, renderer))
	return nil
}

func (e *Engine) Bootstrapped() bool {
	return e.bootstrapped
}

// Resolution returns the current render size in pixels.
func (e *Engine) Resolution() (int, int) {
	return e.width, e.height
}

// Registry exposes the block registry for read access.
func (e *Engine) Registry() *blocks.Registry {
	return e.registry
}

// LoadBlock decodes the image at path and registers it as block id.
func (e *Engine) LoadBlock(id int, path string) error {
	if !e.bootstrapped {
		return fmt.Errorf("load block %d: %w", id, ErrNotBootstrapped)
	}
	return e.registry.Register(id, path)
}

// ClearBlocks releases every registered block.
func (e *Engine) ClearBlocks() {
	e.registry.Clear()
}

// RenderBlock queues block id for this frame at screen offset (x, y). The
// draw is clipped to a scissor rectangle the size of the block. Failures
// never submit anything.
func (e *Engine) RenderBlock(id, x, y int) error {
	if !e.bootstrapped {
		return fmt.Errorf("render block %d: %w", id, ErrNotBootstrapped)
	}

	block, ok := e.registry.Get(id)
	if !ok {
		return fmt.Errorf("render block %d: %w", id, ErrBlockNotLoaded)
	}
	if !e.program.Valid() {
		return fmt.Errorf("render block %d: %w", id, ErrInvalidProgram)
	}
	if !block.Texture.Valid() {
		return fmt.Errorf("render block %d: %w", id, ErrInvalidTexture)
	}

	sx, sy, sw, sh := clipScissor(x, y, block.Width, block.Height, e.width, e.height)
	if sw == 0 || sh == 0 {
		// entirely off screen
		return nil
	}

	res := math.Vec4FromPair(
		math.Vec2FromInts(e.width, e.height),
		math.Vec2FromInts(block.Width, block.Height),
	).Array()

	e.device.SetScissor(sx, sy, sw, sh)
	e.device.SetUniform(e.resolution, res[:])
	e.device.SetVertexBuffer(0, e.quad.vbh)
	e.device.SetIndexBuffer(e.quad.ibh)
	e.device.SetTexture(0, e.texColor, block.Texture)
	e.device.SetState(gpu.StateWriteRGB | gpu.StateWriteA)
	e.device.Submit(mainView, e.program)
	return nil
}

// Render clears and touches the main view so the clear happens even when no
// block was submitted, then presents. It returns the frame number, or 0
// when the engine is not bootstrapped.
func (e *Engine) Render() uint32 {
	if !e.bootstrapped {
		return 0
	}

	e.device.SetViewClear(mainView, gpu.ClearColor|gpu.ClearDepth, e.opts.ClearColor.RGBA8(), e.opts.ClearDepth, 0)
	e.device.Touch(mainView)
	return e.device.Frame()
}

// Resize re-reads the bound framebuffer size and updates the backbuffer and the
// view rectangle when it changed.
func (e *Engine) Resize() error {
	if !e.bootstrapped {
		return ErrNotBootstrapped
	}

	width, height, err := e.surface.FramebufferSize()
	if err != nil {
		return fmt.Errorf("resize: read framebuffer size: %w", err)
	}
	if width <= 0 || height <= 0 || (width == e.width && height == e.height) {
		return nil
	}

	e.width, e.height = width, height
	e.device.Reset(e.width, e.height)
	e.device.SetViewRect(mainView, 0, 0, e.width, e.height)

	logging.Logger().Debug("Render engine resized", "width", e.width, "height", e.height)
	return nil
}

// Shutdown releases every block and GPU resource and shuts the device down.
// The engine can be bootstrapped again afterwards.
func (e *Engine) Shutdown() {
	if !e.bootstrapped {
		return
	}

	e.registry.Clear()
	e.release()
	e.device.Shutdown()

	cached := e.loader.Len()
	e.loader.Purge()

	e.surface = nil
	e.width, e.height = 0, 0
	e.bootstrapped = false

	logging.Logger().Info("Render engine shut down", "purged_images", cached)
}

func (e *Engine) release() {
	if e.program.Valid() {
		e.device.DestroyProgram(e.program)
		e.program = gpu.InvalidProgram
	}
	if e.texColor.Valid() {
		e.device.DestroyUniform(e.texColor)
		e.texColor = gpu.InvalidUniform
	}
	if e.resolution.Valid() {
		e.device.DestroyUniform(e.resolution)
		e.resolution = gpu.InvalidUniform
	}
	e.quad.destroy(e.device)
}

// clipScissor intersects the block rectangle with the screen. A zero width
// or height means nothing is visible.
func clipScissor(x, y, w, h, screenW, screenH int) (int, int, int, int) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, screenW), min(y+h, screenH)
	if x1 <= x0 || y1 <= y0 {
		return x0, y0, 0, 0
	}
	return x0, y0, x1 - x0, y1 - y0
}
