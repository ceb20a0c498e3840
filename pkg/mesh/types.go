// Package mesh holds the mesh graph's data model plus the assembler,
// deduplicator, and combiner that turn parsed OBJ data into indexed
// triangle meshes.
package mesh

import (
	"math"

	"github.com/taigrr/wfload/pkg/math3d"
)

// quantizeScale maps the dedup tolerance to a multiplier:
// quantize(x) = round(x * quantizeScale).
const quantizeScale = 1e5

// approxTolerance is the componentwise equality tolerance for Vertex.
const approxTolerance = 1e-6

// Vertex holds one mesh vertex's full attribute set. Tangent.W stores the
// ±1 handedness sign; it is the zero vector until pkg/tangent populates it.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
	Tangent  math3d.Vec4
}

// ApproxEqual reports whether v and o match within approxTolerance on
// every one of the twelve float components.
func (v Vertex) ApproxEqual(o Vertex) bool {
	return v.Position.ApproxEqual(o.Position, approxTolerance) &&
		v.Normal.ApproxEqual(o.Normal, approxTolerance) &&
		v.UV.ApproxEqual(o.UV, approxTolerance) &&
		v.Tangent.ApproxEqual(o.Tangent, approxTolerance)
}

// quantizedKey is the twelve-component quantized form of a Vertex: each
// float component multiplied by quantizeScale and rounded to the nearest
// integer. Vertices within approxTolerance of each other usually quantize
// to the same key; two values on either side of a rounding boundary do
// not. The array is usable directly as a comparable Go map key — the
// runtime's map hashing plays the role of an explicit hash-mix.
type quantizedKey [12]int64

func quantize(v Vertex) quantizedKey {
	q := func(f float64) int64 { return int64(math.Round(f * quantizeScale)) }
	return quantizedKey{
		q(v.Position.X), q(v.Position.Y), q(v.Position.Z),
		q(v.Normal.X), q(v.Normal.Y), q(v.Normal.Z),
		q(v.UV.X), q(v.UV.Y),
		q(v.Tangent.X), q(v.Tangent.Y), q(v.Tangent.Z), q(v.Tangent.W),
	}
}

// Less orders two quantized keys lexicographically over their twelve
// components, giving Vertex a total order.
func (k quantizedKey) Less(o quantizedKey) bool {
	for i := range k {
		if k[i] != o[i] {
			return k[i] < o[i]
		}
	}
	return false
}

// hashMix combines the twelve quantized components with a
// boost::hash_combine-style mix. It is not used by the deduplicator
// (which relies on quantizedKey's native comparability as a map key) but
// is kept for parity with other implementations of this dedup scheme.
func (k quantizedKey) hashMix() uint64 {
	var h uint64
	for _, q := range k {
		h ^= uint64(q) + 0x9e3779b9 + (h << 6) + (h >> 2)
	}
	return h
}

// Material holds one MTL newmtl block's texture-map filename lists.
type Material struct {
	Name     string
	Diffuse  []string // map_Kd
	Specular []string // map_Ks / map_Ns
	Normal   []string // map_Bump / bump
	Height   []string // disp
	IsTiled  bool
}

// Mesh is one `o` block's assembled, and optionally deduplicated,
// geometry.
type Mesh struct {
	Name       string
	Material   string
	LODLevel   int
	MeshNumber int // monotonic per-file index, assigned in source order
	Vertices   []Vertex
	Indices    []int
}

// TriangleCount returns the number of triangles addressed by Indices.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
