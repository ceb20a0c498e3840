// Package tangent computes per-vertex tangent-space data: area-weighted
// tangent/bitangent accumulation per triangle followed by Gram-Schmidt
// reorthogonalization and handedness recovery.
package tangent

import (
	"math"

	"github.com/taigrr/wfload/pkg/math3d"
	"github.com/taigrr/wfload/pkg/mesh"
)

const degenerateThreshold = 1e-10

// Build computes tangents for every vertex of m and writes them into
// m.Vertices[i].Tangent (xyz = unit tangent, w = ±1 handedness). It
// operates on the pre-dedup triangle soup mesh.Assemble produces, where
// every triangle's three vertices are distinct slice entries — that is
// required for the per-vertex accumulation below to attribute each
// triangle's contribution to the right slot.
func Build(m *mesh.Mesh) {
	n := len(m.Vertices)
	if n == 0 {
		return
	}

	tangentAccum := make([]math3d.Vec3, n)
	bitangentAccum := make([]math3d.Vec3, n)

	for tri := 0; tri+2 < len(m.Indices); tri += 3 {
		i0, i1, i2 := m.Indices[tri], m.Indices[tri+1], m.Indices[tri+2]
		v0, v1, v2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.UV.Sub(v0.UV)
		d2 := v2.UV.Sub(v0.UV)

		denom := d1.X*d2.Y - d2.X*d1.Y
		if denom == 0 {
			continue
		}
		f := 1 / denom

		t := math3d.Vec3{
			X: f * (e1.X*d2.Y - e2.X*d1.Y),
			Y: f * (e1.Y*d2.Y - e2.Y*d1.Y),
			Z: f * (e1.Z*d2.Y - e2.Z*d1.Y),
		}
		b := math3d.Vec3{
			X: f * (e2.X*d1.X - e1.X*d2.X),
			Y: f * (e2.Y*d1.X - e1.Y*d2.X),
			Z: f * (e2.Z*d1.X - e1.Z*d2.X),
		}

		if !finiteVec3(t) || !finiteVec3(b) {
			continue
		}
		if t.Len() < degenerateThreshold || b.Len() < degenerateThreshold {
			continue
		}

		area := 0.5 * e1.Cross(e2).Len()

		tWeighted := t.Scale(area)
		bWeighted := b.Scale(area)

		for _, idx := range [3]int{i0, i1, i2} {
			tangentAccum[idx] = tangentAccum[idx].Add(tWeighted)
			bitangentAccum[idx] = bitangentAccum[idx].Add(bWeighted)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		tAcc := tangentAccum[i]

		var tOrtho math3d.Vec3
		if tAcc.Len() > degenerateThreshold {
			proj := n.Scale(n.Dot(tAcc))
			tOrtho = tAcc.Sub(proj).Normalize()
		} else {
			tOrtho = math3d.V3(1, 0, 0)
		}

		handedness := 1.0
		if s := n.Cross(tOrtho).Dot(bitangentAccum[i]); s < 0 {
			handedness = -1
		}

		m.Vertices[i].Tangent = math3d.V4FromV3(tOrtho, handedness)
	}
}

func finiteVec3(v math3d.Vec3) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
