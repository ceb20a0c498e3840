package assetpath

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("touch %s: %v", name, err)
	}
}

func TestDiscoverWithoutLODs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.obj")
	touch(t, dir, "a.mtl")

	plan, err := Discover(filepath.Join(dir, "a.obj"), false)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(plan) != 1 {
		t.Fatalf("expected 1 plan entry, got %d", len(plan))
	}
	if plan[0].MTLPath != filepath.Join(dir, "a.mtl") {
		t.Errorf("MTLPath = %q, want %q", plan[0].MTLPath, filepath.Join(dir, "a.mtl"))
	}
}

func TestDiscoverWithLODs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.obj")
	touch(t, dir, "a_lod1.obj")
	touch(t, dir, "a_lod1.mtl")
	touch(t, dir, "a_lodX.obj")

	plan, err := Discover(filepath.Join(dir, "a.obj"), true)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 plan entries (lod 0, lod 1), got %d", len(plan))
	}
	if plan[1].ObjPath != filepath.Join(dir, "a_lod1.obj") {
		t.Errorf("lod 1 ObjPath = %q", plan[1].ObjPath)
	}
	if plan[1].MTLPath != filepath.Join(dir, "a_lod1.mtl") {
		t.Errorf("lod 1 MTLPath = %q", plan[1].MTLPath)
	}
}

func TestReadPlanMissingMTLWarnsNotFails(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.obj")

	plan := []Entry{{LODLevel: 0, ObjPath: filepath.Join(dir, "a.obj"), MTLPath: filepath.Join(dir, "a.mtl")}}

	var warned string
	buffers, err := ReadPlan(plan, func(path string) { warned = path })
	if err != nil {
		t.Fatalf("ReadPlan: %v", err)
	}
	if buffers[0].HasMtl {
		t.Error("expected HasMtl false for a missing material file")
	}
	if warned == "" {
		t.Error("expected a warning callback for the missing MTL")
	}
}

func TestReadPlanMissingOBJFails(t *testing.T) {
	dir := t.TempDir()
	plan := []Entry{{LODLevel: 0, ObjPath: filepath.Join(dir, "missing.obj")}}

	if _, err := ReadPlan(plan, nil); err == nil {
		t.Fatal("expected an error for a missing primary OBJ")
	}
}

func TestNormalizeEncodingPassesThroughUTF8(t *testing.T) {
	data := []byte("hello world")
	if got := NormalizeEncoding(data); string(got) != "hello world" {
		t.Errorf("NormalizeEncoding changed valid UTF-8: %q", got)
	}
}
