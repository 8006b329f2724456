package renderer

import (
	"fmt"
	"unsafe"

	"mainboard-engine/gpu"
	"mainboard-engine/math"
)

// quadVertex is one vertex of the shared fullscreen quad.
type quadVertex struct {
	Position math.Vec3
	UV       math.Vec2
}

var quadLayout = gpu.VertexLayout{Attribs: []gpu.VertexAttrib{
	{Attrib: gpu.AttribPosition, Count: 3},
	{Attrib: gpu.AttribTexCoord0, Count: 2},
}}

// Clip-space corners, UV origin at the top left.
var quadVertices = [4]quadVertex{
	{Position: math.NewVec3(-1, 1, 0), UV: math.NewVec2(0, 0)},
	{Position: math.NewVec3(1, 1, 0), UV: math.NewVec2(1, 0)},
	{Position: math.NewVec3(-1, -1, 0), UV: math.NewVec2(0, 1)},
	{Position: math.NewVec3(1, -1, 0), UV: math.NewVec2(1, 1)},
}

// two counter-clockwise triangles
var quadIndices = [6]uint16{0, 2, 1, 1, 2, 3}

type quad struct {
	vbh gpu.VertexBufferHandle
	ibh gpu.IndexBufferHandle
}

func quadVertexBytes() []byte {
	size := int(unsafe.Sizeof(quadVertex{})) * len(quadVertices)
	return unsafe.Slice((*byte)(unsafe.Pointer(&quadVertices[0])), size)
}

func newQuad(device gpu.Device) (quad, error) {
	q := quad{vbh: gpu.InvalidVertexBuffer, ibh: gpu.InvalidIndexBuffer}

	vbh, err := device.CreateVertexBuffer(quadVertexBytes(), quadLayout)
	if err != nil {
		return q, fmt.Errorf("create quad vertex buffer: %w", err)
	}
	q.vbh = vbh

	ibh, err := device.CreateIndexBuffer(quadIndices[:])
	if err != nil {
		q.destroy(device)
		return q, fmt.Errorf("create quad index buffer: %w", err)
	}
	q.ibh = ibh

	return q, nil
}

func (q *quad) destroy(device gpu.Device) {
	if q.vbh.Valid() {
		device.DestroyVertexBuffer(q.vbh)
		q.vbh = gpu.InvalidVertexBuffer
	}
	if q.ibh.Valid() {
		device.DestroyIndexBuffer(q.ibh)
		q.ibh = gpu.InvalidIndexBuffer
	}
}
