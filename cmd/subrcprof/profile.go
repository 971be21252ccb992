package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hillin/subrc"
)

type Record struct {
	ID       uint64
	Name     string
	Weights  []float64
	Position Position
}

type Position struct {
	X, Y, Z float32
}

// ModeResult is the outcome of one measured loop.
type ModeResult struct {
	Mode        string        `yaml:"mode"`
	Iterations  int           `yaml:"iterations"`
	Elapsed     time.Duration `yaml:"elapsed"`
	NsPerOp     float64       `yaml:"ns_per_op"`
	AllocsPerOp float64       `yaml:"allocs_per_op"`
	BytesPerOp  float64       `yaml:"bytes_per_op"`
}

type Report struct {
	GoVersion string       `yaml:"go_version"`
	Offset    uintptr      `yaml:"position_offset"`
	Modes     []ModeResult `yaml:"modes"`
}

func runProfile(cmd *cobra.Command, args []string) error {
	if iterations <= 0 {
		return errors.Errorf("iterations must be positive, got %d", iterations)
	}
	if format != "text" && format != "yaml" {
		return errors.Errorf("unknown format %q", format)
	}
	if pprofAddr != "" {
		go func() {
			log.Println(http.ListenAndServe(pprofAddr, nil))
		}()
	}
	if memProfile != "" {
		runtime.MemProfileRate = 1
	}

	report, err := profile(iterations)
	if err != nil {
		return err
	}

	if memProfile != "" {
		f, err := os.Create(memProfile)
		if err != nil {
			return errors.Wrap(err, "create heap profile")
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return errors.Wrap(err, "write heap profile")
		}
		log.Printf("heap profile written to %s", memProfile)
	}
	return writeReport(cmd.OutOrStdout(), report, format)
}

func profile(n int) (*Report, error) {
	rc := subrc.NewRc(Record{
		ID:       1,
		Name:     "sample",
		Weights:  []float64{0.5, 1.5, 2.5},
		Position: Position{X: 1, Y: 2, Z: 3},
	})
	defer rc.Release()
	position := func(r *Record) *Position { return &r.Position }

	probe, err := subrc.TryNew(rc.Clone(), position)
	if err != nil {
		return nil, err
	}
	defer probe.Release()

	report := &Report{GoVersion: runtime.Version(), Offset: probe.Offset()}
	var sink float64
	report.Modes = append(report.Modes,
		measure("new", n, func() {
			h := subrc.New(rc.Clone(), position)
			sink += float64(h.Get().X)
			h.Release()
		}),
		measure("field", n, func() {
			h := subrc.MustField[Record, Position](rc.Clone(), "Position")
			sink += float64(h.Get().Y)
			h.Release()
		}),
		measure("clone", n, func() {
			h := probe.Clone()
			sink += float64(h.Get().Z)
			h.Release()
		}),
		measure("get", n, func() {
			sink += float64(probe.Get().X)
		}),
	)
	if want := float64(n) * 7; sink != want {
		return nil, errors.Errorf("read back %v through handles, want %v", sink, want)
	}
	return report, nil
}

func measure(mode string, n int, op func()) ModeResult {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	start := time.Now()
	for i := 0; i < n; i++ {
		op()
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)
	return ModeResult{
		Mode:        mode,
		Iterations:  n,
		Elapsed:     elapsed,
		NsPerOp:     float64(elapsed.Nanoseconds()) / float64(n),
		AllocsPerOp: float64(after.Mallocs-before.Mallocs) / float64(n),
		BytesPerOp:  float64(after.TotalAlloc-before.TotalAlloc) / float64(n),
	}
}

func writeReport(w io.Writer, r *Report, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "encode report")
		}
		return enc.Close()
	}
	fmt.Fprintf(w, "%s  Position offset: %d\n", r.GoVersion, r.Offset)
	for _, m := range r.Modes {
		fmt.Fprintf(w, "%-6s %8d ops  %10.1f ns/op  %6.2f allocs/op  %8.1f B/op\n",
			m.Mode, m.Iterations, m.NsPerOp, m.AllocsPerOp, m.BytesPerOp)
	}
	return nil
}
