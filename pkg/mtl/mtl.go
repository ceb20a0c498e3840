// Package mtl implements the MTL material-library byte walker: a first
// pass that counts newmtl blocks to size the output slice, and a second
// pass that fills in each material's texture-map filename lists.
package mtl

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/taigrr/wfload/pkg/mesh"
)

// Parse walks data (the full contents of one .mtl file) and returns one
// mesh.Material per newmtl block, in source order. Directives outside
// any newmtl block are ignored, matching the format's usual convention
// that a bare texture-map line before any material name has nowhere to
// attach.
func Parse(data []byte) []*mesh.Material {
	n := countMaterials(data)
	materials := make([]*mesh.Material, 0, n)

	var cur *mesh.Material

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		directive := fields[0]

		if directive == "newmtl" {
			name := ""
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &mesh.Material{Name: name}
			materials = append(materials, cur)
			continue
		}
		if cur == nil {
			continue
		}

		if len(fields) < 2 {
			continue
		}
		path := fields[1]

		switch directive {
		case "map_Kd":
			cur.Diffuse = append(cur.Diffuse, path)
		case "map_Ks", "map_Ns":
			cur.Specular = append(cur.Specular, path)
		case "map_Bump", "bump":
			cur.Normal = append(cur.Normal, path)
		case "disp":
			cur.Height = append(cur.Height, path)
		}
	}

	return materials
}

// ByName indexes a parsed material slice by name for lookups during OBJ
// parsing (usemtl resolution, tiling updates).
func ByName(materials []*mesh.Material) map[string]*mesh.Material {
	m := make(map[string]*mesh.Material, len(materials))
	for _, mat := range materials {
		m[mat.Name] = mat
	}
	return m
}

func countMaterials(data []byte) int {
	n := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if bytes.HasPrefix(bytes.TrimSpace(scanner.Bytes()), []byte("newmtl")) {
			n++
		}
	}
	return n
}
