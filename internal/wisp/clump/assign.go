package clump

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/monitoring"
	"github.com/banshee-data/wispify/internal/wisp/faults"
	"github.com/banshee-data/wispify/internal/wisp/octree"
	"github.com/banshee-data/wispify/internal/wisp/randutil"
)

// Defaults of the original proximity matcher.
const (
	DefaultPullRank      = 30
	DefaultLeafThreshold = 2
	DefaultRatio         = -1.0
	DefaultPolicy        = Uniform
)

// chunk is the number of dense points handled by one worker task.
const chunk = 512

// Table maps guide index to the dense point indices assigned to it, in
// ascending dense order.
type Table [][]int

// Len returns the total number of assigned dense points.
func (t Table) Len() int {
	n := 0
	for _, row := range t {
		n += len(row)
	}
	return n
}

// Params configures Assign.
type Params struct {
	// PullRank is the size of the candidate zone; twice as many guides
	// are queried.
	PullRank int
	// LeafThreshold is the smallest octree node.
	LeafThreshold int
	// Ratio is the nearest/second-nearest squared distance ratio below
	// which the nearest guide is taken outright. Negative disables it.
	Ratio  float64
	Policy Policy
	Seed   uint64
	// Workers bounds parallelism; zero means GOMAXPROCS.
	Workers int
}

// DefaultParams returns the original matcher settings.
func DefaultParams() Params {
	return Params{
		PullRank:      DefaultPullRank,
		LeafThreshold: DefaultLeafThreshold,
		Ratio:         DefaultRatio,
		Policy:        DefaultPolicy,
		Seed:          randutil.DefaultSeed,
	}
}

// Assign builds a guide octree and assigns every dense point to one guide.
func Assign(ctx context.Context, dense, guides []r3.Vec, p Params) (Table, error) {
	if len(guides) == 0 {
		return nil, fmt.Errorf("clump: no guide points: %w", faults.ErrInsufficientCandidates)
	}
	if p.PullRank < 1 {
		return nil, fmt.Errorf("clump: pull rank %d must be positive", p.PullRank)
	}

	upper, lower := octree.Bounds(guides)
	idx := octree.Build(guides, p.LeafThreshold, upper, lower)
	radius := idx.AverageLeafExtent() / 2
	query := min(2*p.PullRank, len(guides))
	zone := min(p.PullRank, query)
	monitoring.Logf("clump: %d guides in %d leaves, average leaf extent %.4g", len(guides), idx.Leaves(), 2*radius)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	progress := monitoring.NewProgress("clump", len(dense))
	choice := make([]int, len(dense))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(dense); start += chunk {
		end := min(start+chunk, len(dense))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				nbrs, err := idx.KNearest(dense[i], radius, query)
				if err != nil {
					return fmt.Errorf("clump: dense point %d: %w", i, err)
				}
				rng := randutil.Stream(p.Seed, uint64(i))
				choice[i] = nbrs[SelectZone(nbrs[:zone], p.Ratio, p.Policy, rng)].Index
			}
			progress.Add(end - start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := make(Table, len(guides))
	for i, gi := range choice {
		table[gi] = append(table[gi], i)
	}
	progress.Done(fmt.Sprintf("assigned %d dense points", len(dense)))
	return table, nil
}
