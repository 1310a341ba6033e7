package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/monitoring"
	"github.com/banshee-data/wispify/internal/wisp/clump"
	"github.com/banshee-data/wispify/internal/wisp/curvemath"
	"github.com/banshee-data/wispify/internal/wisp/faults"
	"github.com/banshee-data/wispify/internal/wisp/randutil"
	"github.com/banshee-data/wispify/internal/wisp/spectral"
	"github.com/banshee-data/wispify/internal/wisp/synth"
)

// FailurePolicy decides what a failed curve does to the batch.
type FailurePolicy int

const (
	// Skip records the failure and keeps going.
	Skip FailurePolicy = iota
	// Abort cancels the batch on the first failure.
	Abort
)

func (f FailurePolicy) String() string {
	if f == Abort {
		return "abort"
	}
	return "skip"
}

// ParseFailurePolicy maps "skip" or "abort" to a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "skip", "":
		return Skip, nil
	case "abort":
		return Abort, nil
	}
	return Skip, fmt.Errorf("pipeline: unknown failure policy %q", s)
}

// Inputs are the loaded, read-only data of one run.
type Inputs struct {
	Guides  []curvemath.Curve
	Roots   []r3.Vec
	Table   clump.Table
	Library *spectral.Library
}

// Params configures Run.
type Params struct {
	Synth         synth.Params
	Seed          uint64
	Workers       int // zero means GOMAXPROCS
	FailurePolicy FailurePolicy
}

// Pair names the guide and root of one job.
type Pair struct {
	Guide int
	Root  int
}

// Result holds the synthesized curves in job order. Pairs[i] produced
// Curves[i]; failed jobs appear only in Skipped.
type Result struct {
	Curves  []curvemath.Curve
	Pairs   []Pair
	Skipped []synth.CurveError
}

// Jobs lists the (guide, root) pairs of table in guide order, then row
// order. The position of a pair is its job ordinal.
func Jobs(table clump.Table) []Pair {
	var jobs []Pair
	for g, row := range table {
		for _, r := range row {
			jobs = append(jobs, Pair{Guide: g, Root: r})
		}
	}
	return jobs
}

// Run synthesizes one curve per table entry. Job k draws from
// randutil.Stream(p.Seed, k), so the result does not depend on Workers.
func Run(ctx context.Context, in Inputs, p Params) (*Result, error) {
	s, err := synth.NewSynthesizer(in.Library, p.Synth)
	if err != nil {
		return nil, err
	}
	if len(in.Table) > len(in.Guides) {
		return nil, fmt.Errorf("pipeline: table has %d rows for %d guides: %w", len(in.Table), len(in.Guides), faults.ErrShapeMismatch)
	}
	jobs := Jobs(in.Table)
	for _, j := range jobs {
		if j.Root < 0 || j.Root >= len(in.Roots) {
			return nil, fmt.Errorf("pipeline: guide %d names root %d of %d: %w", j.Guide, j.Root, len(in.Roots), faults.ErrShapeMismatch)
		}
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	monitoring.Logf("synthesize: %d strands from %d guides on %d workers", len(jobs), len(in.Guides), workers)
	progress := monitoring.NewProgress("synthesize", len(jobs))

	curves := make([]curvemath.Curve, len(jobs))
	failures := make([]*synth.CurveError, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := s.Wisp(in.Guides[job.Guide], in.Roots[job.Root], randutil.Stream(p.Seed, uint64(k)))
			progress.Add(1)
			if err != nil {
				ce := &synth.CurveError{Guide: job.Guide, Root: job.Root, Err: err}
				if p.FailurePolicy == Abort {
					return ce
				}
				failures[k] = ce
				return nil
			}
			curves[k] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	for k, job := range jobs {
		if ce := failures[k]; ce != nil {
			monitoring.Warnf("synthesize: skipping %v", ce)
			res.Skipped = append(res.Skipped, *ce)
			continue
		}
		res.Curves = append(res.Curves, curves[k])
		res.Pairs = append(res.Pairs, job)
	}
	progress.Done(fmt.Sprintf("finished %d strands, skipped %d", len(res.Curves), len(res.Skipped)))
	return res, nil
}
