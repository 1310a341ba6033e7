package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/curvemath"
	"github.com/banshee-data/wispify/internal/wisp/faults"
	"github.com/banshee-data/wispify/internal/wisp/randutil"
	"github.com/banshee-data/wispify/internal/wisp/spectral"
)

func testGuide(n int) curvemath.Curve {
	c := make(curvemath.Curve, n)
	for i := range c {
		a := 0.9 * float64(i)
		c[i] = r3.Vec{X: 0.1 * math.Sin(a), Y: 0.1 * math.Cos(a), Z: 0.5 * float64(i)}
	}
	return c
}

func testLibrary(t *testing.T) *spectral.Library {
	t.Helper()
	amps := spectral.Spectrum{{0, 0.05, 0.02, 0.01}, {0, 0.03, 0.01, 0}}
	phases := spectral.Spectrum{{0, 0.5, 1, 1.5}, {0, -0.3, 0.2, 0}}
	lib, err := spectral.NewLibrary([]spectral.Spectrum{amps}, []spectral.Spectrum{phases})
	require.NoError(t, err)
	return lib
}

func newTestSynthesizer(t *testing.T, mutate func(*Params)) *Synthesizer {
	t.Helper()
	p := DefaultParams()
	if mutate != nil {
		mutate(&p)
	}
	s, err := NewSynthesizer(testLibrary(t), p)
	require.NoError(t, err)
	return s
}

func TestWispShortGuideIsTranslated(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t, nil)
	root := r3.Vec{X: 3, Y: -1, Z: 2}

	for _, n := range []int{3, 4, 5} {
		guide := testGuide(n)
		got, err := s.Wisp(guide, root, randutil.New(1))
		require.NoError(t, err)
		require.Len(t, got, n)
		assert.InDelta(t, 0, r3.Norm(r3.Sub(root, got[2])), 1e-12)

		shift := r3.Sub(root, guide[2])
		for i := range guide {
			assert.InDelta(t, 0, r3.Norm(r3.Sub(r3.Add(guide[i], shift), got[i])), 1e-12)
		}
	}
}

func TestWispRejectsTinyGuides(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t, nil)
	_, err := s.Wisp(testGuide(2), r3.Vec{}, randutil.New(1))
	assert.ErrorIs(t, err, faults.ErrDegenerateGeometry)
}

func TestWispStartsAtRootWithResolution(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t, func(p *Params) { p.Resolution = 16 })
	guide := testGuide(8)

	for k := range 6 {
		root := r3.Vec{X: 0.2 * math.Cos(float64(k)), Y: 0.2 * math.Sin(float64(k)), Z: -0.3}
		got, err := s.Wisp(guide, root, randutil.Stream(5, uint64(k)))
		require.NoError(t, err)
		require.Len(t, got, 16)
		assert.Equal(t, root, got[0])
		for i, p := range got {
			assert.False(t, math.IsNaN(p.X+p.Y+p.Z), "point %d", i)
		}
	}
}

func TestWispReproducible(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t, func(p *Params) { p.Resolution = 12 })
	guide := testGuide(14)
	root := r3.Vec{X: 0.1, Y: 0.1, Z: -0.5}

	a, err := s.Wisp(guide, root, randutil.Stream(42, 3))
	require.NoError(t, err)
	b, err := s.Wisp(guide, root, randutil.Stream(42, 3))
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same stream gave different strands:\n%s", diff)
	}

	c, err := s.Wisp(guide, root, randutil.Stream(42, 4))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestWispKeepsPointCountWithoutResolution(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t, nil)
	guide := testGuide(8)
	for seed := range uint64(10) {
		got, err := s.Wisp(guide, r3.Vec{Z: -0.2}, randutil.New(seed))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(got), minCutoff+1)
		assert.LessOrEqual(t, len(got), len(guide))
	}
}

func TestRerootedCurlDropout(t *testing.T) {
	t.Parallel()

	carrier := testGuide(12)
	disp := make([]r3.Vec, 12)
	root := r3.Vec{X: 0.3, Z: -0.4}

	keepAll := newTestSynthesizer(t, func(p *Params) { p.Dropout = 0 })
	got, err := keepAll.RerootedCurl(root, carrier, disp, 0.25, randutil.New(1))
	require.NoError(t, err)
	require.Len(t, got, len(carrier))
	assert.Equal(t, root, got[0])
	// cutoff = 3, so the tail starts at carrier[4].
	assert.Equal(t, carrier[4:], got[4:])

	dropAll := newTestSynthesizer(t, func(p *Params) { p.Dropout = 1 })
	got, err = dropAll.RerootedCurl(root, carrier, disp, 0.25, randutil.New(1))
	require.NoError(t, err)
	assert.Len(t, got, minCutoff+1)
}

func TestRerootedCurlSpineEndsOnCenterline(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t, func(p *Params) { p.Dropout = 1 })
	carrier := testGuide(10)
	center, err := spectral.CenterCurve(carrier)
	require.NoError(t, err)

	root := r3.Vec{X: -0.2, Y: 0.1, Z: -0.3}
	got, err := s.RerootedCurl(root, carrier, make([]r3.Vec, 10), 0.5, randutil.New(2))
	require.NoError(t, err)
	require.Len(t, got, 6)
	assert.Equal(t, root, got[0])
	assert.InDelta(t, 0, r3.Norm(r3.Sub(center[5], got[5])), 1e-9)
}

func TestRerootedCurlCutoffClamp(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t, func(p *Params) { p.Dropout = 1 })
	carrier := testGuide(10)
	root := r3.Vec{Z: -0.5}

	// Timing one reaches the last usable displacement.
	got, err := s.RerootedCurl(root, carrier, make([]r3.Vec, 7), 1, randutil.New(3))
	require.NoError(t, err)
	assert.Len(t, got, 7)

	_, err = s.RerootedCurl(root, carrier, make([]r3.Vec, 3), 0.5, randutil.New(3))
	assert.ErrorIs(t, err, faults.ErrShapeMismatch)
}

func TestRerootedCurlDegenerateRoot(t *testing.T) {
	t.Parallel()

	s := newTestSynthesizer(t, nil)
	carrier := testGuide(10)
	center, err := spectral.CenterCurve(carrier)
	require.NoError(t, err)

	// A root on the cutoff point leaves no room for the spine.
	_, err = s.RerootedCurl(center[3], carrier, make([]r3.Vec, 10), 0, randutil.New(1))
	assert.ErrorIs(t, err, faults.ErrDegenerateGeometry)
}

func TestLibraryShapeFailureSurfaces(t *testing.T) {
	t.Parallel()

	lib, err := spectral.NewLibrary(
		[]spectral.Spectrum{{{1, 2}, {1, 2}}},
		[]spectral.Spectrum{{{0, 0, 0}, {0, 0, 0}}},
	)
	require.NoError(t, err)
	s, err := NewSynthesizer(lib, DefaultParams())
	require.NoError(t, err)

	_, err = s.Wisp(testGuide(8), r3.Vec{}, rand.New(rand.NewPCG(1, 1)))
	assert.ErrorIs(t, err, faults.ErrShapeMismatch)
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultParams().Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"reversed root timing", func(p *Params) { p.RootTiming = [2]float64{0.6, 0.1} }},
		{"zero length fraction", func(p *Params) { p.LengthFraction = [2]float64{0, 1} }},
		{"length fraction above one", func(p *Params) { p.LengthFraction = [2]float64{0.8, 1.2} }},
		{"negative radius", func(p *Params) { p.WispRadius = [2]float64{-1, 0.3} }},
		{"dropout above one", func(p *Params) { p.Dropout = 1.5 }},
		{"zero up", func(p *Params) { p.Up = r3.Vec{} }},
		{"negative resolution", func(p *Params) { p.Resolution = -2 }},
		{"tiny spectral floor", func(p *Params) { p.MinSpectralPoints = 2 }},
		{"bad mode", func(p *Params) { p.Mode = 5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := DefaultParams()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}

	_, err := NewSynthesizer(nil, DefaultParams())
	assert.Error(t, err)
}

func TestCurveError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("batch: %w", &CurveError{Guide: 2, Root: 17, Err: faults.ErrDegenerateGeometry})
	assert.ErrorIs(t, err, faults.ErrDegenerateGeometry)

	var ce *CurveError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 2, ce.Guide)
	assert.Equal(t, 17, ce.Root)
	assert.Contains(t, err.Error(), "guide 2 root 17")
}
