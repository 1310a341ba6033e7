package curvemath

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the smallest vector norm accepted before normalizing.
const Epsilon = 1e-12

// Curve is an ordered root-to-tip sequence of points.
type Curve []r3.Vec

// Clone returns an independent copy of c.
func Clone(c Curve) Curve {
	if c == nil {
		return nil
	}
	out := make(Curve, len(c))
	copy(out, c)
	return out
}

// Translate returns c moved by d.
func Translate(c Curve, d r3.Vec) Curve {
	out := make(Curve, len(c))
	for i, p := range c {
		out[i] = r3.Add(p, d)
	}
	return out
}

// ArcLengths returns the cumulative polyline length at every point of c,
// starting at zero.
func ArcLengths(c Curve) []float64 {
	if len(c) == 0 {
		return nil
	}
	seg := make([]float64, len(c))
	for i := 1; i < len(c); i++ {
		seg[i] = r3.Norm(r3.Sub(c[i], c[i-1]))
	}
	return floats.CumSum(seg, seg)
}

// Length returns the polyline length of c.
func Length(c Curve) float64 {
	if len(c) < 2 {
		return 0
	}
	d := ArcLengths(c)
	return d[len(d)-1]
}

// unit normalizes v, reporting false when its norm is below Epsilon.
func unit(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if !(n >= Epsilon) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// span returns n evenly spaced values over [lo, hi]. It accepts n == 1,
// which floats.Span does not.
func span(n int, lo, hi float64) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
