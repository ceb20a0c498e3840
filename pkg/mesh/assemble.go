package mesh

import "github.com/taigrr/wfload/pkg/math3d"

// Assemble turns one parsed RawObject into an indexed Mesh. For each
// face-vertex triple, in order, it builds a fresh
// Vertex from the object's own position/texcoord/normal scratch arrays —
// position always present, normal and texture coordinates left at their
// zero value when the triple's VN/VT slot is absent — and appends its
// sequential position to the index list. No sharing is attempted here;
// that's Deduplicate's job (C9), run separately once tangents are in
// place.
func Assemble(obj RawObject) *Mesh {
	m := &Mesh{
		Name:       obj.Name,
		Material:   obj.Material,
		LODLevel:   obj.LODLevel,
		MeshNumber: obj.MeshNumber,
		Vertices:   make([]Vertex, 0, len(obj.Faces)),
		Indices:    make([]int, 0, len(obj.Faces)),
	}

	for _, f := range obj.Faces {
		var v Vertex
		if f.V >= 0 && f.V < len(obj.Positions) {
			v.Position = obj.Positions[f.V]
		}
		if f.VN >= 0 && f.VN < len(obj.Normals) {
			v.Normal = obj.Normals[f.VN]
		}
		if f.VT >= 0 && f.VT < len(obj.TexCoords) {
			v.UV = obj.TexCoords[f.VT]
		}
		v.Tangent = math3d.Vec4{}

		idx := len(m.Vertices)
		m.Vertices = append(m.Vertices, v)
		m.Indices = append(m.Indices, idx)
	}

	return m
}
