package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/vista/engine/math"
)

// VertexStride is the size in bytes of one packed math.Vertex3D.
const VertexStride = 16 * 4

// VertexLayout is the attribute layout produced by PackMesh.
var VertexLayout = []Attribute{
	{Name: "in_position", Format: Float32x3, Offset: 0},
	{Name: "in_normal", Format: Float32x3, Offset: 12},
	{Name: "in_texcoord", Format: Float32x2, Offset: 24},
	{Name: "in_colour", Format: Float32x4, Offset: 32},
	{Name: "in_tangent", Format: Float32x4, Offset: 48},
}

// PackMesh serialises vertices followed by indices, little endian.
func PackMesh(vertices []math.Vertex3D, indices []uint32) ([]byte, Layout) {
	buf := bytes.NewBuffer(make([]byte, 0, len(vertices)*VertexStride+len(indices)*4))
	// Writes into a bytes.Buffer cannot fail.
	_ = binary.Write(buf, binary.LittleEndian, vertices)
	_ = binary.Write(buf, binary.LittleEndian, indices)
	return buf.Bytes(), Layout{
		Stride:      VertexStride,
		Attributes:  VertexLayout,
		VertexCount: uint32(len(vertices)),
		IndexCount:  uint32(len(indices)),
	}
}

// UnpackMesh is the inverse of PackMesh.
func UnpackMesh(data []byte, layout Layout) ([]math.Vertex3D, []uint32, error) {
	if layout.Stride != VertexStride {
		return nil, nil, fmt.Errorf("unsupported vertex stride %d", layout.Stride)
	}
	want := int(layout.VertexCount)*VertexStride + int(layout.IndexCount)*4
	if len(data) != want {
		return nil, nil, fmt.Errorf("mesh data is %d bytes, layout expects %d", len(data), want)
	}
	vertices := make([]math.Vertex3D, layout.VertexCount)
	indices := make([]uint32, layout.IndexCount)
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, vertices); err != nil {
		return nil, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, indices); err != nil {
		return nil, nil, err
	}
	return vertices, indices, nil
}
