// Package obj implements the two-pass Wavefront OBJ byte walker: a
// first pass that sizes per-object scratch arrays, and a second pass
// that builds mesh.RawObject values ready for assembly.
package obj

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/taigrr/wfload/pkg/loaderr"
	"github.com/taigrr/wfload/pkg/math3d"
	"github.com/taigrr/wfload/pkg/mesh"
)

// counts are the first pass's per-object reservation hints.
type counts struct {
	v, vt, vn, f int
}

// ParseResult is everything a single OBJ file yields: the per-object
// meshes in source order, plus the mtllib name it declared (for
// observability — the actual MTL path used to load materials comes from
// the file plan, not from this string).
type ParseResult struct {
	Objects    []mesh.RawObject
	MtllibName string
}

// Parse walks data (the full contents of one .obj file) and produces one
// mesh.RawObject per `o` block, tagged with lodLevel. materials maps
// material name to the already-parsed (from the companion MTL, which
// must be parsed first so its material slots exist) mesh.Material
// records; Parse mutates IsTiled on them as usemtl directives reveal
// each material's observed UV range exceeding 1.0 in either axis.
// materials may be nil if the caller doesn't care about tiling (IsTiled
// bookkeeping is then skipped).
//
// path is used only to annotate errors.
func Parse(data []byte, path string, lodLevel int, materials map[string]*mesh.Material) (ParseResult, error) {
	objCounts := firstPass(data)
	if len(objCounts) == 0 {
		// No `o` line anywhere: the whole file is one implicit object.
		objCounts = []counts{{}}
	}

	objects := make([]mesh.RawObject, 0, len(objCounts))
	for i, c := range objCounts {
		objects = append(objects, mesh.RawObject{
			LODLevel:   lodLevel,
			MeshNumber: i,
			Positions:  make([]math3d.Vec3, 0, c.v),
			TexCoords:  make([]math3d.Vec2, 0, c.vt),
			Normals:    make([]math3d.Vec3, 0, c.vn),
			Faces:      make([]mesh.RawFace, 0, c.f*3),
		})
	}

	return secondPass(data, path, lodLevel, objects, materials)
}

// firstPass scans line-by-line, recognizing `o `, `v `, `vt`, `vn`, `f `,
// and records per-object (n_v, n_vt, n_vn, n_f) reservation hints.
func firstPass(data []byte) []counts {
	var objs []counts
	cur := -1

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		switch {
		case bytes.HasPrefix(line, []byte("o ")):
			objs = append(objs, counts{})
			cur++
		case bytes.HasPrefix(line, []byte("v ")):
			if cur >= 0 {
				objs[cur].v++
			}
		case bytes.HasPrefix(line, []byte("vt")):
			if cur >= 0 {
				objs[cur].vt++
			}
		case bytes.HasPrefix(line, []byte("vn")):
			if cur >= 0 {
				objs[cur].vn++
			}
		case bytes.HasPrefix(line, []byte("f ")):
			if cur >= 0 {
				objs[cur].f++
			}
		}
	}
	return objs
}

// indexTriple is the raw (1-based, 0 = absent) v/vt/vn index triple for
// one face-vertex token.
type indexTriple struct {
	v, vt, vn int
}

func secondPass(data []byte, path string, lodLevel int, objects []mesh.RawObject, materials map[string]*mesh.Material) (ParseResult, error) {
	result := ParseResult{Objects: objects}

	cur := -1
	// O is the per-object index offset, M the highest raw 1-based index
	// seen so far across all objects.
	var O, M indexTriple

	var currentMaterial string
	var uvMin, uvMax math3d.Vec2
	uvTracking := false

	markTiledIfNeeded := func() {
		if materials == nil || currentMaterial == "" || !uvTracking {
			return
		}
		uvRange := uvMax.Sub(uvMin)
		if uvRange.X > 1 || uvRange.Y > 1 {
			if mat, ok := materials[currentMaterial]; ok {
				mat.IsTiled = true
			}
		}
	}

	ensureObjectOpen := func() {
		if cur < 0 {
			cur = 0
		}
	}

	lineNum := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		switch {
		case strings.HasPrefix(line, "o "):
			cur++
			objects[cur].Name = strings.TrimSpace(line[2:])
			objects[cur].Material = currentMaterial
			O = M
			markTiledIfNeeded()
			uvTracking = false

		case strings.HasPrefix(line, "v "):
			x, y, z, perr := parseVec3(line[2:], path, lineNum)
			if perr != nil {
				return ParseResult{}, perr
			}
			ensureObjectOpen()
			objects[cur].Positions = append(objects[cur].Positions, math3d.V3(x, y, z))

		case strings.HasPrefix(line, "vt"):
			fields := strings.Fields(line)
			if len(fields) < 3 {
				return ParseResult{}, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "vt needs u v"}
			}
			u, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return ParseResult{}, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "malformed vt u: " + err.Error()}
			}
			v, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return ParseResult{}, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "malformed vt v: " + err.Error()}
			}
			ensureObjectOpen()
			uv := math3d.V2(u, 1-v)
			objects[cur].TexCoords = append(objects[cur].TexCoords, uv)
			if !uvTracking {
				uvMin, uvMax = uv, uv
				uvTracking = true
			} else {
				uvMin = uvMin.Min(uv)
				uvMax = uvMax.Max(uv)
			}

		case strings.HasPrefix(line, "vn"):
			x, y, z, perr := parseVec3(line[2:], path, lineNum)
			if perr != nil {
				return ParseResult{}, perr
			}
			ensureObjectOpen()
			objects[cur].Normals = append(objects[cur].Normals, math3d.V3(x, y, z))

		case strings.HasPrefix(line, "mtllib "):
			result.MtllibName = strings.TrimSpace(line[len("mtllib "):])

		case strings.HasPrefix(line, "usemtl "):
			name := strings.TrimSpace(line[len("usemtl "):])
			ensureObjectOpen()
			markTiledIfNeeded()
			currentMaterial = name
			objects[cur].Material = name
			uvTracking = false

		case strings.HasPrefix(line, "f "):
			ensureObjectOpen()
			triples, perr := parseFaceLine(line[2:], path, lineNum)
			if perr != nil {
				return ParseResult{}, perr
			}
			for _, t := range triples {
				M.v = maxInt(M.v, t.v)
				M.vt = maxInt(M.vt, t.vt)
				M.vn = maxInt(M.vn, t.vn)
			}
			rebased := make([]mesh.RawFace, len(triples))
			for i, t := range triples {
				rebased[i] = rebase(t, O)
			}
			appendTriangles(&objects[cur], rebased)
		}
	}
	if err := scanner.Err(); err != nil {
		return ParseResult{}, &loaderr.IoError{Path: path, Cause: err}
	}

	markTiledIfNeeded()

	return result, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// rebase converts a raw 1-based (0 = absent) face-vertex index triple,
// which is written in the OBJ file using indices that keep counting up
// across every `o` block, into an index local to the current object's
// own scratch arrays (which always start at 0). Absent slots (raw == 0)
// stay -1 so the assembler can tell "not present" apart from "index 0".
func rebase(t indexTriple, O indexTriple) mesh.RawFace {
	rb := func(raw, offset int) int {
		if raw == 0 {
			return -1
		}
		return raw - 1 - offset
	}
	return mesh.RawFace{V: rb(t.v, O.v), VT: rb(t.vt, O.vt), VN: rb(t.vn, O.vn)}
}

func appendTriangles(obj *mesh.RawObject, triples []mesh.RawFace) {
	switch len(triples) {
	case 3:
		obj.Faces = append(obj.Faces, triples[0], triples[1], triples[2])
	case 4:
		obj.Faces = append(obj.Faces,
			triples[0], triples[1], triples[2],
			triples[0], triples[2], triples[3],
		)
	default:
		// Triangle fan for higher arities, not required by spec but a
		// reasonable fallback rather than dropping the face.
		for i := 1; i+1 < len(triples); i++ {
			obj.Faces = append(obj.Faces, triples[0], triples[i], triples[i+1])
		}
	}
}

func parseFaceLine(rest string, path string, lineNum int) ([]indexTriple, error) {
	fields := strings.Fields(rest)
	if len(fields) < 3 {
		return nil, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "face needs at least 3 vertices"}
	}
	triples := make([]indexTriple, 0, len(fields))
	for _, tok := range fields {
		t, err := parseFaceToken(tok, path, lineNum)
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	return triples, nil
}

func parseFaceToken(tok string, path string, lineNum int) (indexTriple, error) {
	parts := strings.Split(tok, "/")
	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return indexTriple{}, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "malformed face vertex index: " + parts[0]}
	}
	var vt, vn int
	if len(parts) > 1 && parts[1] != "" {
		vt, err = strconv.Atoi(parts[1])
		if err != nil {
			return indexTriple{}, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "malformed face texcoord index: " + parts[1]}
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		vn, err = strconv.Atoi(parts[2])
		if err != nil {
			return indexTriple{}, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "malformed face normal index: " + parts[2]}
		}
	}
	return indexTriple{v: v, vt: vt, vn: vn}, nil
}

func parseVec3(rest string, path string, lineNum int) (x, y, z float64, err error) {
	fields := strings.Fields(rest)
	if len(fields) < 3 {
		return 0, 0, 0, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "need 3 components"}
	}
	x, err1 := strconv.ParseFloat(fields[0], 64)
	y, err2 := strconv.ParseFloat(fields[1], 64)
	z, err3 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil {
		return 0, 0, 0, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "malformed float: " + err1.Error()}
	}
	if err2 != nil {
		return 0, 0, 0, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "malformed float: " + err2.Error()}
	}
	if err3 != nil {
		return 0, 0, 0, &loaderr.ParseError{Path: path, Line: lineNum, Reason: "malformed float: " + err3.Error()}
	}
	return x, y, z, nil
}
