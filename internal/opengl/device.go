// Package opengl implements gpu.Device on OpenGL 4.1 core.
//
// Draw calls are recorded per view and executed in view order when Frame is
// called, after which the surface is presented. The device must be used from
// the thread that owns the window's GL context.
package opengl

import (
	"fmt"
	"sort"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"mainboard-engine/gpu"
	"mainboard-engine/internal/logging"
)

func init() {
	gpu.Register(gpu.OpenGL, func() gpu.Device { return New() })
}

type vertexBuffer struct {
	vao, vbo uint32
	count    int32
}

type indexBuffer struct {
	ebo   uint32
	count int32
}

type shader struct {
	id    uint32
	stage gpu.ShaderStage
}

type program struct {
	id        uint32
	locations map[gpu.UniformHandle]int32
}

type uniform struct {
	name string
	typ  gpu.UniformType
}

type textureBinding struct {
	sampler gpu.UniformHandle
	texture gpu.TextureHandle
}

// draw is the state captured by one Submit.
type draw struct {
	program  gpu.ProgramHandle
	scissor  [4]int
	uniforms map[gpu.UniformHandle][]float32
	textures map[int]textureBinding
	vertex   gpu.VertexBufferHandle
	index    gpu.IndexBufferHandle
	state    gpu.State
}

func newDraw() draw {
	return draw{
		uniforms: map[gpu.UniformHandle][]float32{},
		textures: map[int]textureBinding{},
		vertex:   gpu.InvalidVertexBuffer,
		index:    gpu.InvalidIndexBuffer,
	}
}

type view struct {
	clear   gpu.ClearFlags
	rgba    uint32
	depth   float32
	stencil uint8
	rect    [4]int
	touched bool
	draws   []draw
}

// Device is an OpenGL gpu.Device bound to one gpu.GLSurface.
type Device struct {
	surface     gpu.GLSurface
	initialized bool
	width       int
	height      int

	alloc         gpu.HandleAlloc
	vertexBuffers map[uint16]vertexBuffer
	indexBuffers  map[uint16]indexBuffer
	shaders       map[uint16]shader
	programs      map[uint16]*program
	uniforms      map[uint16]uniform
	textures      map[uint16]uint32

	views   map[gpu.ViewID]*view
	pending draw
	frame   uint32
}

var _ gpu.Device = (*Device)(nil)

func New() *Device {
	d := &Device{}
	d.reset()
	return d
}

func (d *Device) reset() {
	d.alloc.Reset()
	d.vertexBuffers = map[uint16]vertexBuffer{}
	d.indexBuffers = map[uint16]indexBuffer{}
	d.shaders = map[uint16]shader{}
	d.programs = map[uint16]*program{}
	d.uniforms = map[uint16]uniform{}
	d.textures = map[uint16]uint32{}
	d.views = map[gpu.ViewID]*view{}
	d.pending = newDraw()
}

func (d *Device) RendererType() gpu.RendererType { return gpu.OpenGL }

// Init makes the window's context current and loads the GL entry points.
// The window passed in init.Platform.Window must implement gpu.GLSurface.
func (d *Device) Init(init gpu.Init) error {
	if d.initialized {
		return nil
	}

	surface, ok := init.Platform.Window.(gpu.GLSurface)
	if !ok {
		return gpu.ErrNoGLSurface
	}
	if err := surface.MakeContextCurrent(); err != nil {
		return fmt.Errorf("opengl: make context current: %w", err)
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("opengl: init: %w", err)
	}

	if setter, ok := surface.(gpu.SwapIntervalSetter); ok {
		if err := setter.SetSwapInterval(swapInterval(init.Resolution.VSync)); err != nil {
			logging.Logger().Warn("Swap interval not applied", "error", err)
		}
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	d.surface = surface
	d.width, d.height = int(init.Resolution.Width), int(init.Resolution.Height)
	d.frame = 0
	d.initialized = true

	logging.Logger().Info("OpenGL device initialized",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	return nil
}

// Shutdown deletes every GL object still alive.
func (d *Device) Shutdown() {
	if !d.initialized {
		return
	}

	for idx := range d.programs {
		d.DestroyProgram(gpu.ProgramHandle{Idx: idx})
	}
	for idx := range d.shaders {
		d.DestroyShader(gpu.ShaderHandle{Idx: idx})
	}
	for idx := range d.textures {
		d.DestroyTexture(gpu.TextureHandle{Idx: idx})
	}
	for idx := range d.vertexBuffers {
		d.DestroyVertexBuffer(gpu.VertexBufferHandle{Idx: idx})
	}
	for idx := range d.indexBuffers {
		d.DestroyIndexBuffer(gpu.IndexBufferHandle{Idx: idx})
	}

	d.reset()
	d.surface = nil
	d.initialized = false
}

func (d *Device) next() (uint16, error) {
	if !d.initialized {
		return gpu.InvalidHandle, fmt.Errorf("opengl: device not initialized")
	}
	idx := d.alloc.Alloc()
	if idx == gpu.InvalidHandle {
		return idx, fmt.Errorf("opengl: out of handles")
	}
	return idx, nil
}

func (d *Device) CreateVertexBuffer(data []byte, layout gpu.VertexLayout) (gpu.VertexBufferHandle, error) {
	stride := layout.Stride()
	if stride == 0 || len(data) == 0 || len(data)%stride != 0 {
		return gpu.InvalidVertexBuffer, fmt.Errorf("opengl: vertex data of %d bytes does not match stride %d", len(data), stride)
	}
	idx, err := d.next()
	if err != nil {
		return gpu.InvalidVertexBuffer, err
	}

	vb := vertexBuffer{count: int32(len(data) / stride)}
	gl.GenVertexArrays(1, &vb.vao)
	gl.GenBuffers(1, &vb.vbo)
	gl.BindVertexArray(vb.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, vb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)

	for _, a := range layout.Attribs {
		loc := uint32(a.Attrib)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointer(loc, int32(a.Count), gl.FLOAT, false, int32(stride),
			gl.PtrOffset(layout.Offset(a.Attrib)))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	d.vertexBuffers[idx] = vb
	return gpu.VertexBufferHandle{Idx: idx}, nil
}

func (d *Device) CreateIndexBuffer(indices []uint16) (gpu.IndexBufferHandle, error) {
	if len(indices) == 0 {
		return gpu.InvalidIndexBuffer, fmt.Errorf("opengl: empty index buffer")
	}
	idx, err := d.next()
	if err != nil {
		return gpu.InvalidIndexBuffer, err
	}

	ib := indexBuffer{count: int32(len(indices))}
	gl.GenBuffers(1, &ib.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, gl.Ptr(indices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	d.indexBuffers[idx] = ib
	return gpu.IndexBufferHandle{Idx: idx}, nil
}

func (d *Device) CreateUniform(name string, typ gpu.UniformType) (gpu.UniformHandle, error) {
	idx, err := d.next()
	if err != nil {
		return gpu.InvalidUniform, err
	}
	d.uniforms[idx] = uniform{name: name, typ: typ}
	return gpu.UniformHandle{Idx: idx}, nil
}

func (d *Device) DestroyVertexBuffer(h gpu.VertexBufferHandle) {
	vb, ok := d.vertexBuffers[h.Idx]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &vb.vao)
	gl.DeleteBuffers(1, &vb.vbo)
	delete(d.vertexBuffers, h.Idx)
	d.alloc.Free(h.Idx)
}

func (d *Device) DestroyIndexBuffer(h gpu.IndexBufferHandle) {
	ib, ok := d.indexBuffers[h.Idx]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &ib.ebo)
	delete(d.indexBuffers, h.Idx)
	d.alloc.Free(h.Idx)
}

func (d *Device) DestroyUniform(h gpu.UniformHandle) {
	if _, ok := d.uniforms[h.Idx]; !ok {
		return
	}
	delete(d.uniforms, h.Idx)
	for _, p := range d.programs {
		delete(p.locations, h)
	}
	d.alloc.Free(h.Idx)
}

func (d *Device) SetViewClear(id gpu.ViewID, flags gpu.ClearFlags, rgba uint32, depth float32, stencil uint8) {
	v := d.view(id)
	v.clear, v.rgba, v.depth, v.stencil = flags, rgba, depth, stencil
}

func (d *Device) SetViewRect(id gpu.ViewID, x, y, width, height int) {
	d.view(id).rect = [4]int{x, y, width, height}
}

// Reset updates the backbuffer size. The default framebuffer follows the
// window, so only the stored size changes.
func (d *Device) Reset(width, height int) {
	d.width, d.height = width, height
}

func (d *Device) view(id gpu.ViewID) *view {
	v, ok := d.views[id]
	if !ok {
		v = &view{}
		d.views[id] = v
	}
	return v
}

func (d *Device) sortedViews() []gpu.ViewID {
	ids := make([]gpu.ViewID, 0, len(d.views))
	for id := range d.views {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func swapInterval(vsync bool) int {
	if vsync {
		return 1
	}
	return 0
}
