package grid

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestGPUGridSizeMarshal(t *testing.T) {
	g := GPUGridSize{Size: [2]float32{64, 48}}

	buf := g.Marshal()
	if len(buf) != 8 {
		t.Fatalf("Marshal() length = %d, want 8", len(buf))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])); got != 64 {
		t.Errorf("width = %v, want 64", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])); got != 48 {
		t.Errorf("height = %v, want 48", got)
	}
}

func TestGPUCellVertexSize(t *testing.T) {
	v := GPUCellVertex{}
	if v.Size() != 8 {
		t.Errorf("Size() = %d, want 8", v.Size())
	}
	if got := len(v.Marshal()); got != 8 {
		t.Errorf("Marshal() length = %d, want 8", got)
	}
}

func TestQuadGeometry(t *testing.T) {
	verts := QuadVertices()
	if len(verts) != 4 {
		t.Fatalf("QuadVertices() length = %d, want 4", len(verts))
	}
	for i, v := range verts {
		for axis := 0; axis < 2; axis++ {
			if v.LocalPos[axis] != 1 && v.LocalPos[axis] != -1 {
				t.Errorf("vertex %d axis %d = %v, want ±1", i, axis, v.LocalPos[axis])
			}
		}
	}

	indices := QuadIndices()
	if len(indices) != 6 {
		t.Fatalf("QuadIndices() length = %d, want 6", len(indices))
	}
	for _, idx := range indices {
		if idx > 3 {
			t.Errorf("index %d out of vertex range", idx)
		}
	}

	// The two triangles must cover all 4 vertices.
	used := make(map[uint32]bool)
	for _, idx := range indices {
		used[idx] = true
	}
	if len(used) != 4 {
		t.Errorf("indices reference %d distinct vertices, want 4", len(used))
	}
}

func TestMarshalVertices(t *testing.T) {
	buf := MarshalVertices(QuadVertices())
	if len(buf) != 32 {
		t.Fatalf("MarshalVertices() length = %d, want 32", len(buf))
	}

	// First vertex is (-1, -1).
	x := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8]))
	if x != -1 || y != -1 {
		t.Errorf("first vertex = (%v, %v), want (-1, -1)", x, y)
	}
}
