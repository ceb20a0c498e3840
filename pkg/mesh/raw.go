package mesh

import "github.com/taigrr/wfload/pkg/math3d"

// RawFace is one face-vertex's resolved, 0-based, per-object-local index
// triple. -1 in VT or VN means the OBJ face token omitted that slot
// (faces without texture coordinates or normals are legal).
type RawFace struct {
	V, VT, VN int
}

// RawObject is everything pkg/obj extracts from one `o` block before
// assembly: the object's own position/texcoord/normal scratch arrays
// (already rebased to start at 0 for this object) and its face-vertex
// triples, flattened into a triangle soup in groups of three.
type RawObject struct {
	Name       string
	LODLevel   int
	MeshNumber int
	Material   string
	Positions  []math3d.Vec3
	TexCoords  []math3d.Vec2
	Normals    []math3d.Vec3
	Faces      []RawFace
}
