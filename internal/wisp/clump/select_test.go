package clump

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/wispify/internal/wisp/octree"
)

func zone(d2 ...float64) []octree.Neighbor {
	out := make([]octree.Neighbor, len(d2))
	for i, d := range d2 {
		out[i] = octree.Neighbor{Index: 10 + i, Dist2: d}
	}
	return out
}

func TestSelectZoneSingleCandidate(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 1))
	assert.Equal(t, 0, SelectZone(zone(3), -1, Uniform, rng))
	assert.Equal(t, 0, SelectZone(zone(3), -1, InverseDistance, rng))
}

func TestSelectZoneRatioShortcut(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(2, 2))
	for range 100 {
		assert.Equal(t, 0, SelectZone(zone(1, 4, 5), 0.5, Uniform, rng))
	}
}

func TestSelectZoneUniformCoversZone(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 3))
	seen := make(map[int]int)
	for range 2000 {
		seen[SelectZone(zone(1, 2, 3, 4), -1, Uniform, rng)]++
	}
	require.Len(t, seen, 4)
	for i, n := range seen {
		assert.Greater(t, n, 350, "candidate %d", i)
	}
}

func TestSelectZoneInverseDistanceFavoursNearest(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(4, 4))
	nearest := 0
	const draws = 2000
	for range draws {
		if SelectZone(zone(1, 100, 100), -1, InverseDistance, rng) == 0 {
			nearest++
		}
	}
	// Expected share is 100/102.
	assert.Greater(t, nearest, draws*9/10)
	assert.Less(t, nearest, draws)
}

func TestSelectZoneInverseDistanceZeroNearest(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(5, 5))
	for range 100 {
		assert.Equal(t, 0, SelectZone(zone(0, 1, 2), -1, InverseDistance, rng))
	}
}

func TestSelectZoneDeterministic(t *testing.T) {
	t.Parallel()

	draw := func() []int {
		rng := rand.New(rand.NewPCG(9, 9))
		out := make([]int, 50)
		for i := range out {
			out[i] = SelectZone(zone(1, 2, 3, 4, 5), -1, InverseDistance, rng)
		}
		return out
	}
	assert.Equal(t, draw(), draw())
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("inverse")
	require.NoError(t, err)
	assert.Equal(t, InverseDistance, p)

	p, err = ParsePolicy("uniform")
	require.NoError(t, err)
	assert.Equal(t, Uniform, p)
	assert.Equal(t, "uniform", p.String())

	_, err = ParsePolicy("nearest")
	assert.Error(t, err)
}
