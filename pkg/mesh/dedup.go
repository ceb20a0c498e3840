package mesh

// Deduplicate collapses vertices that are identical modulo the
// quantization tolerance. It walks m.Indices in order;
// each referenced vertex is looked up by its quantized key. On a miss the
// original (unquantized) vertex is appended to a fresh vertex list and
// the new index recorded; on a hit the existing index is reused. The
// rebuilt index list has the same length as the original and preserves
// triangle winding, so every original triangle survives up to
// vertex-identity-modulo-tolerance.
func Deduplicate(m *Mesh) {
	if len(m.Vertices) == 0 {
		return
	}

	seen := make(map[quantizedKey]int, len(m.Vertices))
	newVertices := make([]Vertex, 0, len(m.Vertices))
	newIndices := make([]int, len(m.Indices))

	for i, idx := range m.Indices {
		v := m.Vertices[idx]
		key := quantize(v)
		newIdx, ok := seen[key]
		if !ok {
			newIdx = len(newVertices)
			newVertices = append(newVertices, v)
			seen[key] = newIdx
		}
		newIndices[i] = newIdx
	}

	m.Vertices = newVertices
	m.Indices = newIndices
}
