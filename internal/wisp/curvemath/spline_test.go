package curvemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/faults"
)

const spacingTol = 1e-6

func assertVecNear(t *testing.T, want, got r3.Vec, tol float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x: want %v got %v", want, got)
	assert.InDelta(t, want.Y, got.Y, tol, "y: want %v got %v", want, got)
	assert.InDelta(t, want.Z, got.Z, tol, "z: want %v got %v", want, got)
}

func TestHermiteEvalEndpoints(t *testing.T) {
	t.Parallel()

	p0, m0 := r3.Vec{X: 1, Y: 2}, r3.Vec{Z: 3}
	p1, m1 := r3.Vec{X: -4, Z: 1}, r3.Vec{Y: 1}
	assert.Equal(t, p0, HermiteEval(p0, m0, p1, m1, 0))
	assert.Equal(t, p1, HermiteEval(p0, m0, p1, m1, 1))
}

func TestEvenHermiteSpacing(t *testing.T) {
	t.Parallel()

	// x(t) = 3t^2 + t: monotone, so chord spacing equals arc spacing.
	p0, m0 := r3.Vec{}, r3.Vec{X: 1}
	p1, m1 := r3.Vec{X: 4}, r3.Vec{X: 7}

	for _, res := range []int{2, 3, 9, 50} {
		c, err := EvenHermite(p0, m0, p1, m1, res)
		require.NoError(t, err)
		require.Len(t, c, res)
		assert.Equal(t, p0, c[0])
		assert.Equal(t, p1, c[res-1])

		step := 4.0 / float64(res-1)
		for j, p := range c {
			assert.InDelta(t, step*float64(j), p.X, 4*spacingTol, "res %d point %d", res, j)
			assert.Zero(t, p.Y)
			assert.Zero(t, p.Z)
		}
	}
}

func TestEvenHermiteSinglePoint(t *testing.T) {
	t.Parallel()

	c, err := EvenHermite(r3.Vec{X: 2}, r3.Vec{X: 1}, r3.Vec{X: 3}, r3.Vec{X: 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, Curve{{X: 2}}, c)
}

func TestEvenHermiteErrors(t *testing.T) {
	t.Parallel()

	_, err := EvenHermite(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 1}, r3.Vec{X: 1}, 0)
	assert.ErrorIs(t, err, faults.ErrShapeMismatch)

	_, err = EvenHermite(r3.Vec{X: 1}, r3.Vec{}, r3.Vec{X: 1}, r3.Vec{}, 5)
	assert.ErrorIs(t, err, faults.ErrDegenerateGeometry)
}

func TestCatmullRomPassesThroughKnots(t *testing.T) {
	t.Parallel()

	control := []r3.Vec{{X: 0}, {X: 1, Y: 1}, {X: 2, Z: -1}, {X: 3, Y: 2}, {X: 5}}
	segs := float64(len(control) - 1)
	for i, p := range control {
		assert.Equal(t, p, CatmullRomEval(control, float64(i)/segs), "knot %d", i)
	}
}

func TestCatmullRomShortControl(t *testing.T) {
	t.Parallel()

	assert.Equal(t, r3.Vec{}, CatmullRomEval(nil, 0.3))
	assert.Equal(t, r3.Vec{X: 2}, CatmullRomEval([]r3.Vec{{X: 2}}, 0.7))

	two := []r3.Vec{{X: 0}, {X: 2, Y: 2}}
	assertVecNear(t, r3.Vec{X: 1, Y: 1}, CatmullRomEval(two, 0.5), 1e-12)

	three := []r3.Vec{{X: 0}, {X: 1, Y: 1}, {X: 2}}
	assert.Equal(t, three[1], CatmullRomEval(three, 0.5))
}

func TestEvenCatmullRomSpacing(t *testing.T) {
	t.Parallel()

	// Knot spacing 1, 2, 1 along x; every segment is monotone.
	control := []r3.Vec{{X: 0}, {X: 1}, {X: 3}, {X: 4}}

	c, err := EvenCatmullRom(control, 9, 1)
	require.NoError(t, err)
	require.Len(t, c, 9)
	assert.Equal(t, control[0], c[0])
	assert.Equal(t, control[3], c[8])
	for j, p := range c {
		assert.InDelta(t, 0.5*float64(j), p.X, 4*spacingTol, "point %d", j)
	}
}

func TestEvenCatmullRomTruncated(t *testing.T) {
	t.Parallel()

	control := []r3.Vec{{X: 0}, {X: 1}, {X: 3}, {X: 4}}

	// t = 0.5 is the middle of the second segment, at x = 2.
	c, err := EvenCatmullRom(control, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, c, 5)
	assert.Equal(t, control[0], c[0])
	for j, p := range c {
		assert.InDelta(t, 0.5*float64(j), p.X, 4*spacingTol, "point %d", j)
	}
}

func TestEvenCatmullRomCurvedSpacing(t *testing.T) {
	t.Parallel()

	var control []r3.Vec
	for i := 0; i < 7; i++ {
		a := float64(i) * math.Pi / 4
		control = append(control, r3.Vec{X: math.Cos(a), Y: math.Sin(a), Z: 0.3 * float64(i)})
	}
	s := catmullSpline(control)

	for _, res := range []int{3, 17, 64} {
		params, err := s.evenParams(res, 1)
		require.NoError(t, err)
		require.Len(t, params, res)
		assert.Equal(t, 0.0, params[0])
		assert.Equal(t, 1.0, params[res-1])

		total := s.length(0, 1)
		want := total / float64(res-1)
		for j := 1; j < res; j++ {
			got := s.length(params[j-1], params[j])
			assert.InDelta(t, want, got, spacingTol*want, "res %d gap %d", res, j)
		}
	}

	c, err := EvenCatmullRom(control, 17, 1)
	require.NoError(t, err)
	assert.Equal(t, control[0], c[0])
	assert.Equal(t, control[len(control)-1], c[16])
}

func TestEvenCatmullRomErrors(t *testing.T) {
	t.Parallel()

	_, err := EvenCatmullRom(nil, 5, 1)
	assert.Error(t, err)

	control := []r3.Vec{{X: 0}, {X: 1}}
	_, err = EvenCatmullRom(control, 0, 1)
	assert.ErrorIs(t, err, faults.ErrShapeMismatch)

	_, err = EvenCatmullRom(control, 5, 0)
	assert.Error(t, err)
	_, err = EvenCatmullRom(control, 5, 1.5)
	assert.Error(t, err)

	_, err = EvenCatmullRom([]r3.Vec{{X: 1}, {X: 1}, {X: 1}}, 5, 1)
	assert.ErrorIs(t, err, faults.ErrDegenerateGeometry)
}
