package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vista/engine/math"
)

func TestPackMeshLayout(t *testing.T) {
	vertices := []math.Vertex3D{
		{Position: math.NewVec3(1, 2, 3), Tangent: math.NewVec4(1, 0, 0, -1)},
		{Position: math.NewVec3(4, 5, 6), Texcoord: math.NewVec2(0.5, 1)},
		{Position: math.NewVec3(7, 8, 9), Colour: math.NewVec4One()},
	}
	data, layout := PackMesh(vertices, []uint32{0, 1, 2})

	assert.Equal(t, uint32(VertexStride), layout.Stride)
	assert.Equal(t, uint32(3), layout.VertexCount)
	assert.Equal(t, uint32(3), layout.IndexCount)
	assert.Len(t, data, 3*VertexStride+3*4)

	gotV, gotI, err := UnpackMesh(data, layout)
	require.NoError(t, err)
	assert.Equal(t, vertices, gotV)
	assert.Equal(t, []uint32{0, 1, 2}, gotI)
}

func TestUnpackMeshRejectsShortData(t *testing.T) {
	data, layout := PackMesh([]math.Vertex3D{{}}, nil)
	_, _, err := UnpackMesh(data[:len(data)-1], layout)
	assert.Error(t, err)
}
