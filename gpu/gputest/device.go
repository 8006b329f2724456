// Package gputest provides an in-memory gpu.Device that records every call.
package gputest

import (
	"errors"

	"mainboard-engine/gpu"
)

var ErrInjected = errors.New("gputest: injected failure")

// Draw is one recorded Submit with the state that was bound for it.
type Draw struct {
	View     gpu.ViewID
	Program  gpu.ProgramHandle
	Scissor  [4]int
	Uniforms map[gpu.UniformHandle][]float32
	Texture  gpu.TextureHandle
	Vertex   gpu.VertexBufferHandle
	Index    gpu.IndexBufferHandle
	State    gpu.State
}

type ViewClear struct {
	Flags   gpu.ClearFlags
	RGBA    uint32
	Depth   float32
	Stencil uint8
}

// Device is a fake gpu.Device. Fail* fields inject errors into the matching
// create calls.
type Device struct {
	Type gpu.RendererType

	FailInit     bool
	FailShader   bool
	FailProgram  bool
	FailTexture  bool
	FailUniform  bool
	FailVertices bool

	Initialized bool
	InitArgs    gpu.Init
	Shaders     map[gpu.ShaderHandle][]byte
	Programs    map[gpu.ProgramHandle]bool
	Textures    map[gpu.TextureHandle]TextureInfo
	Uniforms    map[gpu.UniformHandle]string
	Vertices    map[gpu.VertexBufferHandle][]byte
	Indices     map[gpu.IndexBufferHandle][]uint16

	Draws     []Draw
	Clears    map[gpu.ViewID]ViewClear
	ViewRects map[gpu.ViewID][4]int
	Touched   map[gpu.ViewID]int

	SubmitCount  int
	FrameCount   uint32
	ShutdownCall int

	alloc   gpu.HandleAlloc
	pending Draw
}

type TextureInfo struct {
	Width, Height int
	Flags         gpu.SamplerFlags
	Pixels        []byte
}

var _ gpu.Device = (*Device)(nil)

func New() *Device {
	d := &Device{}
	d.reset()
	return d
}

func (d *Device) reset() {
	d.Shaders = map[gpu.ShaderHandle][]byte{}
	d.Programs = map[gpu.ProgramHandle]bool{}
	d.Textures = map[gpu.TextureHandle]TextureInfo{}
	d.Uniforms = map[gpu.UniformHandle]string{}
	d.Vertices = map[gpu.VertexBufferHandle][]byte{}
	d.Indices = map[gpu.IndexBufferHandle][]uint16{}
	d.Clears = map[gpu.ViewID]ViewClear{}
	d.ViewRects = map[gpu.ViewID][4]int{}
	d.Touched = map[gpu.ViewID]int{}
	d.pending = Draw{Uniforms: map[gpu.UniformHandle][]float32{}}
}

func (d *Device) Init(init gpu.Init) error {
	if d.FailInit {
		return ErrInjected
	}
	d.Initialized = true
	d.InitArgs = init
	return nil
}

func (d *Device) Shutdown() {
	d.ShutdownCall++
	d.Initialized = false
	d.alloc.Reset()
	d.reset()
}

func (d *Device) RendererType() gpu.RendererType { return d.Type }

func (d *Device) next() uint16 { return d.alloc.Alloc() }

func (d *Device) CreateVertexBuffer(data []byte, _ gpu.VertexLayout) (gpu.VertexBufferHandle, error) {
	if d.FailVertices {
		return gpu.InvalidVertexBuffer, ErrInjected
	}
	h := gpu.VertexBufferHandle{Idx: d.next()}
	d.Vertices[h] = append([]byte(nil), data...)
	return h, nil
}

func (d *Device) CreateIndexBuffer(indices []uint16) (gpu.IndexBufferHandle, error) {
	h := gpu.IndexBufferHandle{Idx: d.next()}
	d.Indices[h] = append([]uint16(nil), indices...)
	return h, nil
}

func (d *Device) CreateShader(code []byte, _ gpu.ShaderStage) (gpu.ShaderHandle, error) {
	if d.FailShader {
		return gpu.InvalidShader, ErrInjected
	}
	h := gpu.ShaderHandle{Idx: d.next()}
	d.Shaders[h] = append([]byte(nil), code...)
	return h, nil
}

func (d *Device) CreateProgram(vs, fs gpu.ShaderHandle, destroyShaders bool) (gpu.ProgramHandle, error) {
	if d.FailProgram {
		return gpu.InvalidProgram, ErrInjected
	}
	if _, ok := d.Shaders[vs]; !ok {
		return gpu.InvalidProgram, gpu.ErrInvalidHandle
	}
	if _, ok := d.Shaders[fs]; !ok {
		return gpu.InvalidProgram, gpu.ErrInvalidHandle
	}
	if destroyShaders {
		d.DestroyShader(vs)
		d.DestroyShader(fs)
	}
	h := gpu.ProgramHandle{Idx: d.next()}
	d.Programs[h] = true
	return h, nil
}

func (d *Device) CreateUniform(name string, _ gpu.UniformType) (gpu.UniformHandle, error) {
	if d.FailUniform {
		return gpu.InvalidUniform, ErrInjected
	}
	h := gpu.UniformHandle{Idx: d.next()}
	d.Uniforms[h] = name
	return h, nil
}

func (d *Device) CreateTexture2D(width, height int, _ gpu.TextureFormat, flags gpu.SamplerFlags, pixels []byte) (gpu.TextureHandle, error) {
	if d.FailTexture {
		return gpu.InvalidTexture, ErrInjected
	}
	h := gpu.TextureHandle{Idx: d.next()}
	d.Textures[h] = TextureInfo{Width: width, Height: height, Flags: flags, Pixels: pixels}
	return h, nil
}

func (d *Device) DestroyVertexBuffer(h gpu.VertexBufferHandle) {
	delete(d.Vertices, h)
	d.alloc.Free(h.Idx)
}

func (d *Device) DestroyIndexBuffer(h gpu.IndexBufferHandle) {
	delete(d.Indices, h)
	d.alloc.Free(h.Idx)
}

func (d *Device) DestroyShader(h gpu.ShaderHandle) {
	delete(d.Shaders, h)
	d.alloc.Free(h.Idx)
}

func (d *Device) DestroyProgram(h gpu.ProgramHandle) {
	delete(d.Programs, h)
	d.alloc.Free(h.Idx)
}

func (d *Device) DestroyUniform(h gpu.UniformHandle) {
	delete(d.Uniforms, h)
	d.alloc.Free(h.Idx)
}

func (d *Device) DestroyTexture(h gpu.TextureHandle) {
	delete(d.Textures, h)
	d.alloc.Free(h.Idx)
}

func (d *Device) SetViewClear(view gpu.ViewID, flags gpu.ClearFlags, rgba uint32, depth float32, stencil uint8) {
	d.Clears[view] = ViewClear{Flags: flags, RGBA: rgba, Depth: depth, Stencil: stencil}
}

func (d *Device) SetViewRect(view gpu.ViewID, x, y, width, height int) {
	d.ViewRects[view] = [4]int{x, y, width, height}
}

func (d *Device) Reset(width, height int) {
	d.InitArgs.Resolution.Width = uint32(width)
	d.InitArgs.Resolution.Height = uint32(height)
}

func (d *Device) SetScissor(x, y, width, height int) {
	d.pending.Scissor = [4]int{x, y, width, height}
}

func (d *Device) SetUniform(h gpu.UniformHandle, value []float32) {
	d.pending.Uniforms[h] = append([]float32(nil), value...)
}

func (d *Device) SetVertexBuffer(_ int, h gpu.VertexBufferHandle) { d.pending.Vertex = h }
func (d *Device) SetIndexBuffer(h gpu.IndexBufferHandle)          { d.pending.Index = h }

func (d *Device) SetTexture(_ int, _ gpu.UniformHandle, h gpu.TextureHandle) {
	d.pending.Texture = h
}

func (d *Device) SetState(state gpu.State) { d.pending.State = state }

func (d *Device) Submit(view gpu.ViewID, program gpu.ProgramHandle) {
	d.SubmitCount++
	draw := d.pending
	draw.View = view
	draw.Program = program
	d.Draws = append(d.Draws, draw)
	d.pending = Draw{Uniforms: map[gpu.UniformHandle][]float32{}}
}

func (d *Device) Touch(view gpu.ViewID) {
	d.Touched[view]++
}

func (d *Device) Frame() uint32 {
	d.FrameCount++
	return d.FrameCount
}
