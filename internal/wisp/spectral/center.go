package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/curvemath"
	"github.com/banshee-data/wispify/internal/wisp/faults"
)

// maxCenterBins bounds the frequency bins kept when extracting a centerline.
const maxCenterBins = 3

// CenterCurve returns the low-frequency centerline of c. The consecutive
// displacements of c are low-pass filtered, integrated back from c[0], and
// the result is shifted by its mean residual so it sits centrally inside c.
// Curves of fewer than two points are returned as copies.
func CenterCurve(c curvemath.Curve) (curvemath.Curve, error) {
	for i, p := range c {
		if !finite(p) {
			return nil, fmt.Errorf("spectral: center curve: point %d is %v: %w", i, p, faults.ErrDegenerateGeometry)
		}
	}
	if len(c) < 2 {
		return curvemath.Clone(c), nil
	}

	steps := make([]r3.Vec, len(c)-1)
	for i := range steps {
		steps[i] = r3.Sub(c[i+1], c[i])
	}
	keep := min(max(bins(len(steps))-3, 1), maxCenterBins)
	smooth := KeepLow(steps, keep)

	out := make(curvemath.Curve, len(c))
	out[0] = c[0]
	for i, d := range smooth {
		out[i+1] = r3.Add(out[i], d)
	}

	var shift r3.Vec
	for i := range c {
		shift = r3.Add(shift, r3.Sub(c[i], out[i]))
	}
	shift = r3.Scale(1/float64(len(c)), shift)
	for i := range out {
		out[i] = r3.Add(out[i], shift)
	}
	return out, nil
}

// CentralDisplacements expresses every point of c relative to its
// centerline in the centerline's frames, with up = c[0] - center[0].
// Planar mode leaves Z at zero. A curve that is its own centerline, such as
// a straight strand, has no up direction and reports ErrDegenerateGeometry.
func CentralDisplacements(c curvemath.Curve, mode Mode) ([]r3.Vec, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("spectral: central displacements of an empty curve: %w", faults.ErrShapeMismatch)
	}
	center, err := CenterCurve(c)
	if err != nil {
		return nil, err
	}
	frames, err := curvemath.BuildFrames(center, r3.Sub(c[0], center[0]))
	if err != nil {
		return nil, fmt.Errorf("spectral: central displacements: %w", err)
	}

	out := make([]r3.Vec, len(c))
	for i, f := range frames {
		off := r3.Sub(c[i], center[i])
		out[i].X = r3.Dot(off, f.U)
		out[i].Y = r3.Dot(off, f.V)
		if mode == Volumetric {
			out[i].Z = r3.Dot(off, f.W)
		}
	}
	return out, nil
}

// WindDisplacements wraps disp around center: each center point moves by
// X·U + Y·V (+ Z·W in volumetric mode) of its frame. Only the first
// len(center) displacements are used.
func WindDisplacements(center curvemath.Curve, disp []r3.Vec, up r3.Vec, mode Mode) (curvemath.Curve, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	if len(center) > len(disp) {
		return nil, fmt.Errorf("spectral: winding %d displacements around %d points: %w", len(disp), len(center), faults.ErrShapeMismatch)
	}
	frames, err := curvemath.BuildFrames(center, up)
	if err != nil {
		return nil, fmt.Errorf("spectral: wind displacements: %w", err)
	}

	out := make(curvemath.Curve, len(center))
	for i, f := range frames {
		d := disp[i]
		p := r3.Add(center[i], r3.Add(r3.Scale(d.X, f.U), r3.Scale(d.Y, f.V)))
		if mode == Volumetric {
			p = r3.Add(p, r3.Scale(d.Z, f.W))
		}
		out[i] = p
	}
	return out, nil
}

func finite(v r3.Vec) bool {
	for _, x := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
