package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderDir(t *testing.T) {
	cases := map[RendererType]string{
		Direct3D11:       "dx11",
		Direct3D12:       "dx11",
		OpenGL:           "glsl",
		Vulkan:           "spirv",
		Metal:            "dx11",
		Noop:             "dx11",
		RendererType(42): "dx11",
	}
	for typ, want := range cases {
		assert.Equal(t, want, ShaderDir(typ), typ.String())
	}
}

func TestParseRendererType(t *testing.T) {
	typ, ok := ParseRendererType("opengl")
	require.True(t, ok)
	assert.Equal(t, OpenGL, typ)

	_, ok = ParseRendererType("auto")
	assert.False(t, ok)
	assert.Equal(t, "RendererType(42)", RendererType(42).String())
}

func TestHandleValidity(t *testing.T) {
	assert.False(t, InvalidTexture.Valid())
	assert.False(t, InvalidProgram.Valid())
	assert.True(t, TextureHandle{Idx: 0}.Valid())
}

func TestHandleAllocRecycles(t *testing.T) {
	var a HandleAlloc
	assert.Equal(t, uint16(0), a.Alloc())
	assert.Equal(t, uint16(1), a.Alloc())
	a.Free(0)
	assert.Equal(t, uint16(0), a.Alloc())
	assert.Equal(t, uint16(2), a.Alloc())
	a.Free(InvalidHandle)
	a.Reset()
	assert.Equal(t, uint16(0), a.Alloc())
}

func TestVertexLayout(t *testing.T) {
	layout := VertexLayout{Attribs: []VertexAttrib{
		{Attrib: AttribPosition, Count: 3},
		{Attrib: AttribTexCoord0, Count: 2},
	}}
	assert.Equal(t, 20, layout.Stride())
	assert.Equal(t, 0, layout.Offset(AttribPosition))
	assert.Equal(t, 12, layout.Offset(AttribTexCoord0))
	assert.Equal(t, -1, VertexLayout{}.Offset(AttribTexCoord0))
}

type stubDevice struct {
	Device
	typ RendererType
}

func (s stubDevice) RendererType() RendererType { return s.typ }

func TestRegistrySelection(t *testing.T) {
	Register(Vulkan, func() Device { return stubDevice{typ: Vulkan} })
	Register(OpenGL, func() Device { return stubDevice{typ: OpenGL} })
	t.Cleanup(func() {
		Unregister(Vulkan)
		Unregister(OpenGL)
	})

	assert.Equal(t, []RendererType{Vulkan, OpenGL}, Available())

	d, err := New(Noop, false)
	require.NoError(t, err)
	assert.Equal(t, Vulkan, d.RendererType())

	d, err = New(OpenGL, true)
	require.NoError(t, err)
	assert.Equal(t, OpenGL, d.RendererType())

	_, err = New(Metal, true)
	require.ErrorIs(t, err, ErrBackendNotAvailable)
}
