package curvemath

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/faults"
)

// Frame is an orthonormal basis attached to one curve point. W follows the
// local tangent; U and V span the normal plane.
type Frame struct {
	U, V, W r3.Vec
}

// BuildFrames returns one frame per point of c. U is up × W and V is W × U,
// both normalized. Tangents are centred differences with one-sided rules at
// the ends; curves shorter than four points use forward differences
// (backward at the tip), and a single point uses its own direction.
func BuildFrames(c Curve, up r3.Vec) ([]Frame, error) {
	if len(c) == 0 {
		return nil, nil
	}
	frames := make([]Frame, len(c))
	for i := range c {
		f, err := frameFrom(tangent(c, i), up)
		if err != nil {
			return nil, fmt.Errorf("curvemath: frame %d of %d: %w", i, len(c), err)
		}
		frames[i] = f
	}
	return frames, nil
}

func tangent(c Curve, i int) r3.Vec {
	n := len(c)
	switch {
	case n == 1:
		return c[0]
	case n < 4:
		if i == n-1 {
			return r3.Sub(c[i], c[i-1])
		}
		return r3.Sub(c[i+1], c[i])
	case i == 0:
		return r3.Sub(r3.Sub(c[2], c[0]), r3.Scale(0.5, r3.Sub(c[3], c[1])))
	case i == n-1:
		return r3.Sub(r3.Sub(c[i], c[i-2]), r3.Scale(0.5, r3.Sub(c[i-1], c[i-3])))
	default:
		return r3.Scale(0.5, r3.Sub(c[i+1], c[i-1]))
	}
}

func frameFrom(tan, up r3.Vec) (Frame, error) {
	w, ok := unit(tan)
	if !ok {
		return Frame{}, fmt.Errorf("zero-length tangent: %w", faults.ErrDegenerateGeometry)
	}
	u, ok := unit(r3.Cross(up, w))
	if !ok {
		return Frame{}, fmt.Errorf("up %v parallel to tangent %v: %w", up, w, faults.ErrDegenerateGeometry)
	}
	v, ok := unit(r3.Cross(w, u))
	if !ok {
		return Frame{}, fmt.Errorf("normal plane collapsed at tangent %v: %w", w, faults.ErrDegenerateGeometry)
	}
	return Frame{U: u, V: v, W: w}, nil
}

// LinearRamp returns a growth map moving from start at t = 0 to end at t = 1.
func LinearRamp(start, end float64) func(float64) float64 {
	return func(t float64) float64 {
		return start + (end-start)*t
	}
}

// ParallelShift displaces every point of c by x·g(t)·U + y·g(t)·V of its
// frame, where t is the point's normalized position along the curve and g
// is growth.
func ParallelShift(c Curve, up r3.Vec, x, y float64, growth func(float64) float64) (Curve, error) {
	frames, err := BuildFrames(c, up)
	if err != nil {
		return nil, fmt.Errorf("curvemath: parallel shift: %w", err)
	}
	ts := span(max(len(c), 1), 0, 1)
	out := make(Curve, len(c))
	for i, p := range c {
		g := growth(ts[i])
		shift := r3.Add(r3.Scale(x*g, frames[i].U), r3.Scale(y*g, frames[i].V))
		out[i] = r3.Add(p, shift)
	}
	return out, nil
}
