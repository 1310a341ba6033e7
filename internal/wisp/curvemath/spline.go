package curvemath

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/faults"
)

const (
	quadNodes     = 16
	newtonMaxIter = 40
)

// HermiteEval evaluates the cubic Hermite segment from p0 (tangent m0) to p1
// (tangent m1) at t in [0, 1].
func HermiteEval(p0, m0, p1, m1 r3.Vec, t float64) r3.Vec {
	return segment{p0: p0, m0: m0, p1: p1, m1: m1}.eval(t)
}

type segment struct {
	p0, m0, p1, m1 r3.Vec
}

func (s segment) eval(t float64) r3.Vec {
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := 3*t2 - 2*t3
	h11 := t3 - t2
	return r3.Add(
		r3.Add(r3.Scale(h00, s.p0), r3.Scale(h10, s.m0)),
		r3.Add(r3.Scale(h01, s.p1), r3.Scale(h11, s.m1)),
	)
}

func (s segment) speed(t float64) float64 {
	t2 := t * t
	d00 := 6*t2 - 6*t
	d10 := 3*t2 - 4*t + 1
	d01 := 6*t - 6*t2
	d11 := 3*t2 - 2*t
	d := r3.Add(
		r3.Add(r3.Scale(d00, s.p0), r3.Scale(d10, s.m0)),
		r3.Add(r3.Scale(d01, s.p1), r3.Scale(d11, s.m1)),
	)
	return r3.Norm(d)
}

// spline is a chain of Hermite segments sharing the global parameter
// t in [0, 1]; segment k covers [k/n, (k+1)/n]. Knots are returned exactly.
type spline struct {
	knots []r3.Vec
	segs  []segment
}

func hermiteSpline(p0, m0, p1, m1 r3.Vec) spline {
	return spline{
		knots: []r3.Vec{p0, p1},
		segs:  []segment{{p0: p0, m0: m0, p1: p1, m1: m1}},
	}
}

// catmullSpline builds the Catmull-Rom chain through vs. Interior tangents
// are centred differences; the end tangents use one-sided rules, with a
// separate rule for three control points.
func catmullSpline(vs []r3.Vec) spline {
	n := len(vs)
	s := spline{knots: vs}
	half := func(a, b r3.Vec) r3.Vec { return r3.Scale(0.5, r3.Sub(a, b)) }

	switch {
	case n == 1:
	case n == 2:
		d := r3.Sub(vs[1], vs[0])
		s.segs = []segment{{p0: vs[0], m0: d, p1: vs[1], m1: d}}
	case n == 3:
		mid := half(vs[2], vs[0])
		start := r3.Sub(r3.Sub(vs[2], vs[0]), half(vs[2], vs[1]))
		end := r3.Sub(r3.Sub(vs[2], vs[0]), half(vs[1], vs[0]))
		s.segs = []segment{
			{p0: vs[0], m0: start, p1: vs[1], m1: mid},
			{p0: vs[1], m0: mid, p1: vs[2], m1: end},
		}
	default:
		s.segs = make([]segment, n-1)
		for k := range s.segs {
			h := k + 1
			var m0, m1 r3.Vec
			if k == 0 {
				m0 = r3.Sub(r3.Sub(vs[2], vs[0]), half(vs[3], vs[1]))
			} else {
				m0 = half(vs[k+1], vs[k-1])
			}
			if h == n-1 {
				m1 = r3.Sub(r3.Sub(vs[h], vs[h-2]), half(vs[h-1], vs[h-3]))
			} else {
				m1 = half(vs[h+1], vs[h-1])
			}
			s.segs[k] = segment{p0: vs[k], m0: m0, p1: vs[h], m1: m1}
		}
	}
	return s
}

func (s spline) eval(t float64) r3.Vec {
	if len(s.segs) == 0 {
		return s.knots[0]
	}
	t = math.Min(math.Max(t, 0), 1)
	scaled := t * float64(len(s.segs))
	low := math.Floor(scaled)
	k := int(low)
	if scaled == low {
		return s.knots[k]
	}
	return s.segs[k].eval(scaled - low)
}

// speed is |d/dt| with respect to the global parameter.
func (s spline) speed(t float64) float64 {
	n := len(s.segs)
	if n == 0 {
		return 0
	}
	scaled := math.Min(math.Max(t, 0), 1) * float64(n)
	k := min(int(scaled), n-1)
	return s.segs[k].speed(scaled-float64(k)) * float64(n)
}

// length integrates the arc length over [a, b], one smooth segment at a time.
func (s spline) length(a, b float64) float64 {
	if !(b > a) || len(s.segs) == 0 {
		return 0
	}
	n := float64(len(s.segs))
	var total float64
	for k := max(0, int(a*n)-1); k < len(s.segs) && float64(k)/n < b; k++ {
		lo := math.Max(a, float64(k)/n)
		hi := math.Min(b, float64(k+1)/n)
		if !(hi > lo) {
			continue
		}
		seg := s.segs[k]
		total += quad.Fixed(seg.speed, lo*n-float64(k), hi*n-float64(k), quadNodes, quad.Legendre{}, 0)
	}
	return total
}

// resample evaluates s at resolution parameters over [0, tMax] spaced
// uniformly in arc length.
func (s spline) resample(resolution int, tMax float64) (Curve, error) {
	ts, err := s.evenParams(resolution, tMax)
	if err != nil {
		return nil, err
	}
	out := make(Curve, len(ts))
	for i, t := range ts {
		out[i] = s.eval(t)
	}
	return out, nil
}

// evenParams returns resolution parameters over [0, tMax] spaced uniformly
// in arc length. Arc length is accumulated over resolution uniform parameter
// steps, the uniform lengths are inverse-interpolated back to parameters,
// and each parameter is polished by a bracketed Newton step. The first and
// last parameters are exactly 0 and tMax.
func (s spline) evenParams(resolution int, tMax float64) ([]float64, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("resolution %d: %w", resolution, faults.ErrShapeMismatch)
	}
	if !(tMax > 0 && tMax <= 1) {
		return nil, fmt.Errorf("t_max %g outside (0, 1]", tMax)
	}
	if resolution == 1 {
		return []float64{0}, nil
	}

	ts := span(resolution, 0, tMax)
	cum := make([]float64, resolution)
	for i := 1; i < resolution; i++ {
		cum[i] = cum[i-1] + s.length(ts[i-1], ts[i])
	}
	total := cum[resolution-1]
	if !(total > Epsilon) {
		return nil, fmt.Errorf("curve of length %g: %w", total, faults.ErrDegenerateGeometry)
	}

	targets := span(resolution, 0, total)
	even := make([]float64, resolution)
	even[resolution-1] = tMax
	for j := 1; j < resolution-1; j++ {
		even[j] = s.invert(ts, cum, targets[j], total)
	}
	return even, nil
}

// invert finds the parameter whose arc length from zero equals target.
func (s spline) invert(ts, cum []float64, target, total float64) float64 {
	i := sort.SearchFloat64s(cum, target)
	if i == 0 {
		return ts[0]
	}
	if i >= len(cum) {
		return ts[len(ts)-1]
	}
	lo, hi := ts[i-1], ts[i]
	base := cum[i-1]
	t := lo + (hi-lo)*(target-base)/(cum[i]-base)

	tol := 1e-12 * total
	for iter := 0; iter < newtonMaxIter; iter++ {
		f := base + s.length(ts[i-1], t) - target
		if math.Abs(f) <= tol {
			break
		}
		if f > 0 {
			hi = t
		} else {
			lo = t
		}
		next := t
		if d := s.speed(t); d > 0 {
			next = t - f/d
		}
		if !(next > lo && next < hi) {
			next = 0.5 * (lo + hi)
		}
		if next == t {
			break
		}
		t = next
	}
	return t
}

// CatmullRomEval evaluates the Catmull-Rom spline through control at
// t in [0, 1]. One point is constant, two points are linear.
func CatmullRomEval(control []r3.Vec, t float64) r3.Vec {
	if len(control) == 0 {
		return r3.Vec{}
	}
	return catmullSpline(control).eval(t)
}

// EvenHermite samples the Hermite segment at resolution points uniformly
// spaced in arc length. The first and last points are exactly p0 and p1.
func EvenHermite(p0, m0, p1, m1 r3.Vec, resolution int) (Curve, error) {
	c, err := hermiteSpline(p0, m0, p1, m1).resample(resolution, 1)
	if err != nil {
		return nil, fmt.Errorf("curvemath: even hermite: %w", err)
	}
	return c, nil
}

// EvenCatmullRom samples the Catmull-Rom spline through control over the
// parameter range [0, tMax] at resolution points uniformly spaced in arc
// length. A tMax below one truncates the curve.
func EvenCatmullRom(control []r3.Vec, resolution int, tMax float64) (Curve, error) {
	if len(control) == 0 {
		return nil, errors.New("curvemath: even catmull-rom: no control points")
	}
	c, err := catmullSpline(control).resample(resolution, tMax)
	if err != nil {
		return nil, fmt.Errorf("curvemath: even catmull-rom: %w", err)
	}
	return c, nil
}
