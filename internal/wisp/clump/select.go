package clump

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/banshee-data/wispify/internal/wisp/octree"
)

// Policy selects how a guide is drawn from the candidate zone.
type Policy int

const (
	// InverseDistance draws a candidate with probability proportional to
	// the inverse of its squared distance.
	InverseDistance Policy = iota
	// Uniform draws every candidate with equal probability.
	Uniform
)

func (p Policy) String() string {
	switch p {
	case InverseDistance:
		return "inverse"
	case Uniform:
		return "uniform"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy maps "inverse" or "uniform" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "inverse", "inverse-distance":
		return InverseDistance, nil
	case "uniform":
		return Uniform, nil
	}
	return 0, fmt.Errorf("clump: unknown selection policy %q", s)
}

// SelectZone returns the position within nbrs of the chosen candidate.
// nbrs must be sorted by ascending distance and non-empty.
//
// A single candidate is returned directly. When the squared distance of the
// nearest candidate is below ratio times that of the second, the nearest
// wins; a negative ratio disables the shortcut. Otherwise a candidate is
// drawn per policy. Under InverseDistance a nearest candidate at distance
// zero always wins.
func SelectZone(nbrs []octree.Neighbor, ratio float64, policy Policy, rng *rand.Rand) int {
	if len(nbrs) <= 1 {
		return 0
	}
	d0, d1 := nbrs[0].Dist2, nbrs[1].Dist2
	if d1 > 0 && d0/d1 < ratio {
		return 0
	}

	switch policy {
	case InverseDistance:
		if d0 == 0 {
			return 0
		}
		weights := make([]float64, len(nbrs))
		for i, n := range nbrs {
			weights[i] = 1 / n.Dist2
		}
		w := sampleuv.NewWeighted(weights, rng)
		if i, ok := w.Take(); ok {
			return i
		}
		return 0
	default:
		return rng.IntN(len(nbrs))
	}
}
