// Package gpu is the narrow capability interface the renderer draws through.
//
// The model is a small immediate-submit API: state (buffers, textures,
// uniforms, scissor, render state) is set for the next draw, Submit records
// that draw into a view, and Frame executes every view in order, presents,
// and advances the frame counter.
package gpu

import (
	"errors"
	"fmt"
)

var (
	ErrBackendNotAvailable = errors.New("gpu: no backend available")
	ErrNoGLSurface         = errors.New("gpu: window does not provide an OpenGL surface")
	ErrInvalidHandle       = errors.New("gpu: invalid handle")
)

// RendererType identifies a GPU backend.
type RendererType int

const (
	Noop RendererType = iota
	Direct3D11
	Direct3D12
	OpenGL
	Vulkan
	Metal
)

var rendererNames = map[RendererType]string{
	Noop:       "noop",
	Direct3D11: "direct3d11",
	Direct3D12: "direct3d12",
	OpenGL:     "opengl",
	Vulkan:     "vulkan",
	Metal:      "metal",
}

func (t RendererType) String() string {
	if name, ok := rendererNames[t]; ok {
		return name
	}
	return fmt.Sprintf("RendererType(%d)", int(t))
}

// ParseRendererType maps a config name to a RendererType. "auto" and the
// empty string return ok=false so the caller can fall back to priority
// selection.
func ParseRendererType(name string) (RendererType, bool) {
	for t, n := range rendererNames {
		if n == name {
			return t, true
		}
	}
	return Noop, false
}

// ShaderDir returns the shader directory name holding precompiled binaries
// for the given backend. Backends without their own directory use the
// Direct3D one.
func ShaderDir(t RendererType) string {
	switch t {
	case Direct3D11, Direct3D12:
		return "dx11"
	case OpenGL:
		return "glsl"
	case Vulkan:
		return "spirv"
	default:
		return "dx11"
	}
}

type ViewID uint16

type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil
)

type State uint64

const (
	StateWriteR State = 1 << iota
	StateWriteG
	StateWriteB
	StateWriteA
	StateWriteZ
	StateBlendAlpha

	StateWriteRGB = StateWriteR | StateWriteG | StateWriteB
)

type SamplerFlags uint32

const (
	SamplerMinPoint SamplerFlags = 1 << iota
	SamplerMagPoint
	SamplerUClamp
	SamplerVClamp

	SamplerPoint = SamplerMinPoint | SamplerMagPoint
)

type TextureFormat int

const (
	TextureFormatRGBA8 TextureFormat = iota
)

type UniformType int

const (
	UniformSampler UniformType = iota
	UniformVec4
	UniformMat4
)

type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

func (s ShaderStage) String() string {
	if s == StageVertex {
		return "vertex"
	}
	return "fragment"
}

type Attrib int

const (
	AttribPosition Attrib = iota
	AttribTexCoord0
)

// VertexAttrib is one float attribute in an interleaved vertex.
type VertexAttrib struct {
	Attrib Attrib
	Count  int // float32 components
}

type VertexLayout struct {
	Attribs []VertexAttrib
}

// Stride is the size in bytes of one vertex.
func (l VertexLayout) Stride() int {
	stride := 0
	for _, a := range l.Attribs {
		stride += a.Count * 4
	}
	return stride
}

// Offset is the byte offset of attrib within a vertex, or -1 if the layout
// does not contain it.
func (l VertexLayout) Offset(attrib Attrib) int {
	offset := 0
	for _, a := range l.Attribs {
		if a.Attrib == attrib {
			return offset
		}
		offset += a.Count * 4
	}
	return -1
}

type Resolution struct {
	Width, Height uint32
	VSync         bool
}

// PlatformData carries the window the device renders into. NativeWindow is
// the raw OS handle; Window is the platform window value itself so that
// backends can query optional capabilities such as GLSurface.
type PlatformData struct {
	NativeWindow uintptr
	Window       any
}

type Init struct {
	Resolution Resolution
	Platform   PlatformData
}

// GLSurface is implemented by windows that can host an OpenGL context.
type GLSurface interface {
	MakeContextCurrent() error
	SwapBuffers() error
}

// SwapIntervalSetter is implemented by GL surfaces that can toggle vsync.
type SwapIntervalSetter interface {
	SetSwapInterval(interval int) error
}

// Device is the GPU capability set the renderer depends on.
type Device interface {
	Init(init Init) error
	Shutdown()
	RendererType() RendererType

	CreateVertexBuffer(data []byte, layout VertexLayout) (VertexBufferHandle, error)
	CreateIndexBuffer(indices []uint16) (IndexBufferHandle, error)
	CreateShader(code []byte, stage ShaderStage) (ShaderHandle, error)
	CreateProgram(vs, fs ShaderHandle, destroyShaders bool) (ProgramHandle, error)
	CreateUniform(name string, typ UniformType) (UniformHandle, error)
	CreateTexture2D(width, height int, format TextureFormat, flags SamplerFlags, pixels []byte) (TextureHandle, error)

	DestroyVertexBuffer(h VertexBufferHandle)
	DestroyIndexBuffer(h IndexBufferHandle)
	DestroyShader(h ShaderHandle)
	DestroyProgram(h ProgramHandle)
	DestroyUniform(h UniformHandle)
	DestroyTexture(h TextureHandle)

	SetViewClear(view ViewID, flags ClearFlags, rgba uint32, depth float32, stencil uint8)
	SetViewRect(view ViewID, x, y, width, height int)
	Reset(width, height int)

	SetScissor(x, y, width, height int)
	SetUniform(h UniformHandle, value []float32)
	SetVertexBuffer(stream int, h VertexBufferHandle)
	SetIndexBuffer(h IndexBufferHandle)
	SetTexture(stage int, sampler UniformHandle, h TextureHandle)
	SetState(state State)
	Submit(view ViewID, program ProgramHandle)

	Touch(view ViewID)
	Frame() uint32
}
