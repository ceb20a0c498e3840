// Package loader implements the public load façade: synchronous path
// discovery and file reads on the caller, followed by
// parse/assemble/tangent/dedup/combine work handed to the worker pool.
package loader

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/wfload/pkg/assetpath"
	"github.com/taigrr/wfload/pkg/logsink"
	"github.com/taigrr/wfload/pkg/mesh"
	"github.com/taigrr/wfload/pkg/mtl"
	"github.com/taigrr/wfload/pkg/obj"
	"github.com/taigrr/wfload/pkg/stopwatch"
	"github.com/taigrr/wfload/pkg/tangent"
	"github.com/taigrr/wfload/pkg/workpool"
)

// Flags are the bitwise-OR-able load options. There is no separate
// Triangulate flag: quads are always split by pkg/obj, so it would have
// been a no-op.
type Flags uint8

const (
	CalculateTangents Flags = 1 << iota
	JoinIdentical
	CombineMeshes
	Lods
)

// Model is one LoadFile call's complete result: the per-LOD meshes in
// source order, an optional combined mesh per LOD, and the path the
// caller originally asked for.
type Model struct {
	Path     string
	PerLOD   map[int][]*mesh.Mesh
	Combined map[int]*mesh.Mesh
}

// Loader owns the worker pool and log sink shared across LoadFile calls.
// It holds no per-load mutable state; every LoadFile call builds and
// owns its own scratch state.
type Loader struct {
	pool *workpool.Pool
	sink logsink.Sink
}

// New constructs a Loader backed by a pool capped at maxThreads workers.
func New(maxThreads int, sink logsink.Sink) *Loader {
	if sink == nil {
		sink = logsink.Discard
	}
	return &Loader{pool: workpool.New(maxThreads, sink), sink: sink}
}

// Close shuts the loader's worker pool down, letting in-flight tasks
// finish and rejecting further enqueues.
func (l *Loader) Close() {
	l.pool.Shutdown()
}

// loadCounter numbers LoadFile calls for log correlation, independent of
// the pool's own per-task numbering used for scheduling categorization.
var loadCounter atomic.Int64

// LoadFile resolves path's file plan, reads every plan entry on the
// calling goroutine, and returns a handle to the eventual Model. Plan
// resolution and reads are synchronous so a missing primary OBJ fails
// before any task is scheduled.
func (l *Loader) LoadFile(path string, flags Flags) (*workpool.Handle, error) {
	sw := stopwatch.New()
	loadNum := loadCounter.Add(1)

	plan, err := assetpath.Discover(path, flags&Lods != 0)
	if err != nil {
		return nil, err
	}

	buffers, err := assetpath.ReadPlan(plan, func(mtlPath string) {
		l.sink.Log(logsink.Warning, fmt.Sprintf("load #%d: missing material file %q", loadNum, mtlPath))
	})
	if err != nil {
		return nil, err
	}

	cacheElapsed := sw.Elapsed()

	handle := l.pool.Enqueue(func() (any, error) {
		model, err := processModel(path, buffers, flags)
		if err != nil {
			l.sink.Log(logsink.Error, fmt.Sprintf("load #%d failed for %q: %v", loadNum, path, err))
			return nil, err
		}
		l.sink.Log(logsink.Success, fmt.Sprintf("load #%d: loaded %q in %v (cache %v)", loadNum, path, sw.Elapsed(), cacheElapsed))
		return model, nil
	})

	return handle, nil
}

// LoadMany runs LoadFile for every path concurrently via an errgroup,
// collecting each result in the same order as paths. The first failure
// (synchronous or from the worker) cancels the group's context, so loads
// that have not started yet are skipped; loads already handed to the pool
// run to completion. On failure the first error is returned and no
// results.
func (l *Loader) LoadMany(ctx context.Context, paths []string, flags Flags) ([]*Model, error) {
	results := make([]*Model, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			handle, err := l.LoadFile(p, flags)
			if err != nil {
				return err
			}
			result, err := handle.Wait()
			if err != nil {
				return err
			}
			results[i] = result.(*Model)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func processModel(path string, buffers []assetpath.Buffers, flags Flags) (*Model, error) {
	model := &Model{
		Path:     path,
		PerLOD:   make(map[int][]*mesh.Mesh),
		Combined: make(map[int]*mesh.Mesh),
	}

	for _, buf := range buffers {
		if len(buf.Obj) == 0 {
			continue
		}

		var materials []*mesh.Material
		if buf.HasMtl {
			materials = mtl.Parse(assetpath.NormalizeEncoding(buf.Mtl))
		}
		materialIndex := mtl.ByName(materials)

		objData := assetpath.NormalizeEncoding(buf.Obj)
		result, err := obj.Parse(objData, path, buf.LODLevel, materialIndex)
		if err != nil {
			return nil, err
		}

		meshes := make([]*mesh.Mesh, 0, len(result.Objects))
		for _, raw := range result.Objects {
			m := mesh.Assemble(raw)
			if flags&CalculateTangents != 0 {
				tangent.Build(m)
			}
			if flags&JoinIdentical != 0 {
				mesh.Deduplicate(m)
			}
			meshes = append(meshes, m)
		}

		model.PerLOD[buf.LODLevel] = meshes

		if flags&CombineMeshes != 0 && len(meshes) > 0 {
			model.Combined[buf.LODLevel] = mesh.Combine(meshes)
		}
	}

	return model, nil
}
