package mesh

import (
	"testing"

	"github.com/taigrr/wfload/pkg/math3d"
)

func cubeRawObject() RawObject {
	positions := []math3d.Vec3{
		math3d.V3(-1, -1, -1), math3d.V3(1, -1, -1),
		math3d.V3(1, 1, -1), math3d.V3(-1, 1, -1),
		math3d.V3(-1, -1, 1), math3d.V3(1, -1, 1),
		math3d.V3(1, 1, 1), math3d.V3(-1, 1, 1),
	}
	quads := [][4]int{
		{0, 1, 2, 3}, {4, 5, 6, 7}, {0, 3, 7, 4},
		{1, 5, 6, 2}, {3, 2, 6, 7}, {0, 4, 5, 1},
	}
	var faces []RawFace
	for _, q := range quads {
		faces = append(faces,
			RawFace{V: q[0], VT: -1, VN: -1},
			RawFace{V: q[1], VT: -1, VN: -1},
			RawFace{V: q[2], VT: -1, VN: -1},
			RawFace{V: q[0], VT: -1, VN: -1},
			RawFace{V: q[2], VT: -1, VN: -1},
			RawFace{V: q[3], VT: -1, VN: -1},
		)
	}
	return RawObject{Name: "cube", Positions: positions, Faces: faces}
}

func TestAssembleBuildsTriangleSoup(t *testing.T) {
	m := Assemble(cubeRawObject())
	if len(m.Indices) != 36 {
		t.Fatalf("expected 36 indices (12 triangles), got %d", len(m.Indices))
	}
	if len(m.Vertices) != 36 {
		t.Fatalf("expected 36 pre-dedup vertices, got %d", len(m.Vertices))
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Vertices) {
			t.Fatalf("index %d (%d) out of range", i, idx)
		}
	}
}

func TestDeduplicateCollapsesSharedPositions(t *testing.T) {
	m := Assemble(cubeRawObject())
	Deduplicate(m)

	if len(m.Vertices) != 8 {
		t.Errorf("expected 8 unique vertices after dedup, got %d", len(m.Vertices))
	}
	if len(m.Indices) != 36 {
		t.Errorf("expected 36 indices preserved after dedup, got %d", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if idx < 0 || idx >= len(m.Vertices) {
			t.Fatalf("index %d (%d) out of range after dedup", i, idx)
		}
	}
}

func TestDeduplicatePreservesTriangleTopology(t *testing.T) {
	m := Assemble(cubeRawObject())
	pre := make([]Vertex, len(m.Vertices))
	copy(pre, m.Vertices)
	preIndices := make([]int, len(m.Indices))
	copy(preIndices, m.Indices)

	Deduplicate(m)

	for tri := 0; tri+2 < len(preIndices); tri += 3 {
		want := [3]Vertex{
			pre[preIndices[tri]], pre[preIndices[tri+1]], pre[preIndices[tri+2]],
		}
		got := [3]Vertex{
			m.Vertices[m.Indices[tri]], m.Vertices[m.Indices[tri+1]], m.Vertices[m.Indices[tri+2]],
		}
		for i := range want {
			if !want[i].ApproxEqual(got[i]) {
				t.Fatalf("triangle %d vertex %d changed: want %+v, got %+v", tri/3, i, want[i], got[i])
			}
		}
	}
}

func TestCombineOffsetsIndices(t *testing.T) {
	a := &Mesh{
		Vertices: []Vertex{{}, {}, {}},
		Indices:  []int{0, 1, 2},
		Name:     "a",
	}
	b := &Mesh{
		Vertices: []Vertex{{}, {}, {}},
		Indices:  []int{0, 1, 2},
		Name:     "b",
	}

	combined := Combine([]*Mesh{a, b})

	if len(combined.Vertices) != 6 {
		t.Fatalf("expected 6 combined vertices, got %d", len(combined.Vertices))
	}
	wantIndices := []int{0, 1, 2, 3, 4, 5}
	if len(combined.Indices) != len(wantIndices) {
		t.Fatalf("expected %d indices, got %d", len(wantIndices), len(combined.Indices))
	}
	for i, w := range wantIndices {
		if combined.Indices[i] != w {
			t.Errorf("index[%d] = %d, want %d", i, combined.Indices[i], w)
		}
	}
	if combined.Name != "a" {
		t.Errorf("expected combined mesh to take name from first mesh, got %q", combined.Name)
	}
	for _, idx := range combined.Indices {
		if idx >= len(combined.Vertices) {
			t.Fatalf("combined index %d exceeds vertex count %d", idx, len(combined.Vertices))
		}
	}
}

func TestCombinePanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Combine to panic on an empty mesh slice")
		}
	}()
	Combine(nil)
}

func TestQuantizeKeyOrdering(t *testing.T) {
	a := quantize(Vertex{Position: math3d.V3(0, 0, 0)})
	b := quantize(Vertex{Position: math3d.V3(1, 0, 0)})
	if !a.Less(b) {
		t.Error("expected a < b for differing quantized position")
	}
	if b.Less(a) == a.Less(b) && a != b {
		t.Error("Less should be antisymmetric for distinct keys")
	}
}
