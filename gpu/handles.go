package gpu

// InvalidHandle is the index value carried by every invalid handle.
const InvalidHandle = 0xffff

type VertexBufferHandle struct{ Idx uint16 }
type IndexBufferHandle struct{ Idx uint16 }
type ShaderHandle struct{ Idx uint16 }
type ProgramHandle struct{ Idx uint16 }
type UniformHandle struct{ Idx uint16 }
type TextureHandle struct{ Idx uint16 }

var (
	InvalidVertexBuffer = VertexBufferHandle{InvalidHandle}
	InvalidIndexBuffer  = IndexBufferHandle{InvalidHandle}
	InvalidShader       = ShaderHandle{InvalidHandle}
	InvalidProgram      = ProgramHandle{InvalidHandle}
	InvalidUniform      = UniformHandle{InvalidHandle}
	InvalidTexture      = TextureHandle{InvalidHandle}
)

func (h VertexBufferHandle) Valid() bool { return h.Idx != InvalidHandle }
func (h IndexBufferHandle) Valid() bool  { return h.Idx != InvalidHandle }
func (h ShaderHandle) Valid() bool       { return h.Idx != InvalidHandle }
func (h ProgramHandle) Valid() bool      { return h.Idx != InvalidHandle }
func (h UniformHandle) Valid() bool      { return h.Idx != InvalidHandle }
func (h TextureHandle) Valid() bool      { return h.Idx != InvalidHandle }

// HandleAlloc hands out dense uint16 indices and recycles freed ones.
type HandleAlloc struct {
	next uint16
	free []uint16
}

// Alloc returns a fresh index, or InvalidHandle when the index space is
// exhausted.
func (a *HandleAlloc) Alloc() uint16 {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		return idx
	}
	if a.next == InvalidHandle {
		return InvalidHandle
	}
	idx := a.next
	a.next++
	return idx
}

func (a *HandleAlloc) Free(idx uint16) {
	if idx == InvalidHandle {
		return
	}
	a.free = append(a.free, idx)
}

// Reset forgets every allocation.
func (a *HandleAlloc) Reset() {
	a.next = 0
	a.free = a.free[:0]
}
