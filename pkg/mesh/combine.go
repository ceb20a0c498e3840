package mesh

// Combine concatenates a run of per-object meshes that share one LOD
// level into a single draw-call-friendly mesh. Each
// source mesh's vertices are appended verbatim; its indices are appended
// offset by the running base-vertex count. The combined mesh's
// name/material/mesh-number/LOD are copied from the first source mesh.
// Combine panics if meshes is empty — callers only invoke it once a LOD's
// mesh slice is known to be non-empty.
func Combine(meshes []*Mesh) *Mesh {
	if len(meshes) == 0 {
		panic("mesh.Combine: no meshes to combine")
	}

	totalVerts, totalIdx := 0, 0
	for _, m := range meshes {
		totalVerts += len(m.Vertices)
		totalIdx += len(m.Indices)
	}

	first := meshes[0]
	combined := &Mesh{
		Name:       first.Name,
		Material:   first.Material,
		LODLevel:   first.LODLevel,
		MeshNumber: first.MeshNumber,
		Vertices:   make([]Vertex, 0, totalVerts),
		Indices:    make([]int, 0, totalIdx),
	}

	baseVertex := 0
	for _, m := range meshes {
		combined.Vertices = append(combined.Vertices, m.Vertices...)
		for _, idx := range m.Indices {
			combined.Indices = append(combined.Indices, idx+baseVertex)
		}
		baseVertex += len(m.Vertices)
	}

	return combined
}
