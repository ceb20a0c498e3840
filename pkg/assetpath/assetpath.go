// Package assetpath resolves an OBJ asset's on-disk layout, including any
// sibling LOD variants, and reads the resulting file plan into memory.
package assetpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/taigrr/wfload/pkg/loaderr"
)

// Entry is one LOD level's pair of source paths. MTLPath may be empty if
// no sibling material file was found or expected; ObjPath is empty for
// LOD levels that have no OBJ sibling (discovered solely through an MTL
// sibling, or a gap between discovered levels), which ReadPlan rejects
// with a PlanError.
type Entry struct {
	LODLevel int
	ObjPath  string
	MTLPath  string
}

// Discover builds the ordered file plan for path. If withLODs is false
// the plan is always a single LOD-0 entry pairing path with its sibling
// .mtl. If withLODs is true, sibling files in the same directory whose
// stem is "<stem>_lod<k>" contribute additional entries at level k;
// malformed suffixes are silently skipped (they are not LOD siblings of
// this asset).
func Discover(path string, withLODs bool) ([]Entry, error) {
	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	plan := map[int]*Entry{
		0: {LODLevel: 0, ObjPath: path, MTLPath: filepath.Join(dir, stem+".mtl")},
	}

	if withLODs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			// A directory we can't list at all is a planning failure for
			// the primary path too, since Discover can't even confirm the
			// base file exists.
			return nil, &loaderr.PlanError{Path: path, Cause: err}
		}

		prefix := stem + "_lod"
		for _, de := range entries {
			if de.IsDir() {
				continue
			}
			name := de.Name()
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			ext := filepath.Ext(name)
			rest := strings.TrimSuffix(name[len(prefix):], ext)
			k, err := strconv.Atoi(rest)
			if err != nil || k < 0 {
				continue
			}
			// Unknown extensions are skipped outright rather than
			// planting a blank entry for a LOD level that has no usable
			// sibling.
			lowerExt := strings.ToLower(ext)
			if lowerExt != ".obj" && lowerExt != ".mtl" {
				continue
			}

			e, ok := plan[k]
			if !ok {
				e = &Entry{LODLevel: k}
				plan[k] = e
			}
			switch lowerExt {
			case ".obj":
				e.ObjPath = filepath.Join(dir, name)
			case ".mtl":
				e.MTLPath = filepath.Join(dir, name)
			}
		}
	}

	maxLevel := 0
	for k := range plan {
		if k > maxLevel {
			maxLevel = k
		}
	}

	dense := make([]Entry, maxLevel+1)
	for k := 0; k <= maxLevel; k++ {
		if e, ok := plan[k]; ok {
			dense[k] = *e
		} else {
			dense[k] = Entry{LODLevel: k}
		}
	}

	return dense, nil
}

// Buffers is the raw bytes read for one plan entry.
type Buffers struct {
	LODLevel int
	Obj      []byte
	Mtl      []byte
	HasMtl   bool
}

// ReadPlan reads every entry's OBJ (required) and MTL (optional) files on
// the calling goroutine, so all I/O happens before a load is handed to
// the worker pool. A missing OBJ at any LOD
// level is a fatal PlanError; a missing MTL is reported through warn so
// the caller can log it and proceeds with an empty material list.
func ReadPlan(plan []Entry, warn func(path string)) ([]Buffers, error) {
	out := make([]Buffers, 0, len(plan))
	for _, e := range plan {
		if e.ObjPath == "" {
			// A LOD slot with no OBJ sibling is as fatal as an
			// unreadable OBJ.
			return nil, &loaderr.PlanError{Path: e.ObjPath, Cause: fmt.Errorf("no OBJ file for LOD level %d", e.LODLevel)}
		}

		objData, err := os.ReadFile(e.ObjPath)
		if err != nil {
			return nil, &loaderr.PlanError{Path: e.ObjPath, Cause: err}
		}

		buf := Buffers{LODLevel: e.LODLevel, Obj: objData}

		if e.MTLPath != "" {
			mtlData, err := os.ReadFile(e.MTLPath)
			if err != nil {
				if warn != nil {
					warn(e.MTLPath)
				}
			} else {
				buf.Mtl = mtlData
				buf.HasMtl = true
			}
		} else if warn != nil {
			warn(e.MTLPath)
		}

		out = append(out, buf)
	}
	return out, nil
}

// NormalizeEncoding returns data unchanged if it is already valid UTF-8
// (the overwhelming common case for modern OBJ/MTL exports). Otherwise
// it assumes the legacy ISO-8859-1 encoding some older exporters still
// write comments and material names in, and transcodes it so the
// downstream byte walkers can treat every file as UTF-8 text.
func NormalizeEncoding(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}
