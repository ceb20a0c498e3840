// objload is a small CLI wrapper around the wfload loader: load an OBJ
// asset (optionally with LOD siblings, tangents, dedup, and combining)
// and print a summary, or inspect what a file plan would look like
// without reading anything.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/harmonica"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	"github.com/taigrr/wfload/pkg/assetpath"
	"github.com/taigrr/wfload/pkg/loader"
	"github.com/taigrr/wfload/pkg/logsink"
)

var (
	withLODs    bool
	withTangent bool
	withDedup   bool
	withCombine bool
	maxThreads  int
)

func main() {
	root := &cobra.Command{
		Use:   "objload",
		Short: "Load Wavefront OBJ/MTL assets",
	}

	loadCmd := &cobra.Command{
		Use:   "load <model.obj>",
		Short: "Load an OBJ asset and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), args[0])
		},
	}
	loadCmd.Flags().BoolVar(&withLODs, "lods", false, "discover LOD siblings")
	loadCmd.Flags().BoolVar(&withTangent, "tangents", true, "compute tangent space")
	loadCmd.Flags().BoolVar(&withDedup, "dedup", true, "deduplicate vertices")
	loadCmd.Flags().BoolVar(&withCombine, "combine", false, "combine per-LOD meshes")
	loadCmd.Flags().IntVar(&maxThreads, "threads", 4, "worker pool size (0 = inline)")
	root.AddCommand(loadCmd)

	infoCmd := &cobra.Command{
		Use:   "info <model.obj>",
		Short: "Print the resolved file plan without reading any data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
	infoCmd.Flags().BoolVar(&withLODs, "lods", false, "discover LOD siblings")
	root.AddCommand(infoCmd)

	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

func runInfo(path string) error {
	plan, err := assetpath.Discover(path, withLODs)
	if err != nil {
		return err
	}
	for _, e := range plan {
		fmt.Printf("lod %d: obj=%q mtl=%q\n", e.LODLevel, e.ObjPath, e.MTLPath)
	}
	return nil
}

func runLoad(ctx context.Context, path string) error {
	sink := newColorSink(os.Stdout)

	l := loader.New(maxThreads, sink)
	defer l.Close()

	var flags loader.Flags
	if withLODs {
		flags |= loader.Lods
	}
	if withTangent {
		flags |= loader.CalculateTangents
	}
	if withDedup {
		flags |= loader.JoinIdentical
	}
	if withCombine {
		flags |= loader.CombineMeshes
	}

	handle, err := l.LoadFile(path, flags)
	if err != nil {
		return err
	}

	spring := harmonica.NewSpring(harmonica.FPS(30), 6.0, 1.0)
	progress, velocity := 0.0, 0.0
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				progress, velocity = spring.Update(progress, velocity, 1.0)
				fmt.Printf("\rloading %s... %3.0f%%", path, progress*100)
			case <-done:
				return
			}
		}
	}()

	result, err := handle.Wait()
	close(done)
	fmt.Println()
	if err != nil {
		return err
	}

	model := result.(*loader.Model)
	for lod, meshes := range model.PerLOD {
		total := 0
		for _, m := range meshes {
			total += m.TriangleCount()
		}
		fmt.Printf("lod %d: %d meshes, %d triangles\n", lod, len(meshes), total)
	}
	return nil
}

// colorSink adapts logsink.Sink to a colorized terminal writer. Severity
// coloring is intentionally confined to this command-line package: the
// core pipeline must not depend on console color.
type colorSink struct {
	w       *os.File
	palette map[logsink.Severity]colorful.Color
}

func newColorSink(w *os.File) *colorSink {
	return &colorSink{
		w: w,
		palette: map[logsink.Severity]colorful.Color{
			logsink.Debug:   colorful.Color{R: 0.5, G: 0.5, B: 0.5},
			logsink.Info:    colorful.Color{R: 0.6, G: 0.8, B: 1.0},
			logsink.Warning: colorful.Color{R: 1.0, G: 0.8, B: 0.2},
			logsink.Error:   colorful.Color{R: 1.0, G: 0.3, B: 0.3},
			logsink.Success: colorful.Color{R: 0.3, G: 1.0, B: 0.4},
		},
	}
}

func (s *colorSink) Log(severity logsink.Severity, msg string) {
	c := s.palette[severity]
	r, g, b := c.RGB255()
	fmt.Fprintf(s.w, "\x1b[38;2;%d;%d;%dm[%s]\x1b[0m %s\n", r, g, b, severity, msg)
}
