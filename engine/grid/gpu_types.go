package grid

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUGridSizeSource is the canonical WGSL definition of the GridSize uniform struct.
// Matches GPUGridSize layout exactly (8 bytes, std140 aligned).
//
//go:embed assets/grid_size.wgsl
var GPUGridSizeSource string

// GPUGridSize is the GPU-aligned representation of the board dimensions,
// shared as a uniform by the step compute kernel and the cell render
// pipeline. Both stages must see the identical value within a frame.
// Matches the WGSL GridSize struct layout exactly (see GPUGridSizeSource).
// Size: 8 bytes (vec2<f32>, no padding required).
type GPUGridSize struct {
	Size [2]float32 // offset 0: board width and height in cells (8 bytes)
}

// Marshal serializes the GPUGridSize struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 8-byte buffer ready for GPU upload.
func (g *GPUGridSize) Marshal() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Size[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Size[1]))
	return buf
}

// GPUCellVertexSource is the canonical WGSL definition of the VertexInput struct for the cell render pipeline.
// Matches GPUCellVertex layout exactly (8 bytes, std430 aligned).
//
//go:embed assets/cell_vertex.wgsl
var GPUCellVertexSource string

// GPUCellVertex is the GPU-aligned representation of a single quad vertex.
// The quad is instanced once per cell; the vertex carries only a 2D local
// position in [-1, 1] space, everything else is derived from the instance
// index in the vertex shader.
// Matches the WGSL VertexInput struct layout exactly (see GPUCellVertexSource).
// Size: 8 bytes (vec2<f32>, no padding required).
type GPUCellVertex struct {
	LocalPos [2]float32 // offset 0: vertex position in quad-local space (8 bytes)
}

// Size returns the size of the GPUCellVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUCellVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCellVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 8-byte buffer ready for GPU upload.
func (g *GPUCellVertex) Marshal() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.LocalPos[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.LocalPos[1]))
	return buf
}

// QuadVertices returns the shared unit quad geometry, 4 vertices at ±1 in
// local space. One instance of this quad is drawn per cell.
//
// Returns:
//   - []GPUCellVertex: the 4 quad vertices
func QuadVertices() []GPUCellVertex {
	return []GPUCellVertex{
		{LocalPos: [2]float32{-1, -1}},
		{LocalPos: [2]float32{1, -1}},
		{LocalPos: [2]float32{-1, 1}},
		{LocalPos: [2]float32{1, 1}},
	}
}

// QuadIndices returns the index list pairing with QuadVertices, two CCW
// triangles covering the quad.
//
// Returns:
//   - []uint32: the 6 quad indices
func QuadIndices() []uint32 {
	return []uint32{0, 1, 2, 2, 1, 3}
}

// MarshalVertices serializes a vertex slice into a contiguous byte buffer
// for GPU upload.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: the packed vertex data
func MarshalVertices(vertices []GPUCellVertex) []byte {
	buf := make([]byte, 0, len(vertices)*8)
	for i := range vertices {
		buf = append(buf, vertices[i].Marshal()...)
	}
	return buf
}
