package synth

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/curvemath"
	"github.com/banshee-data/wispify/internal/wisp/faults"
	"github.com/banshee-data/wispify/internal/wisp/randutil"
	"github.com/banshee-data/wispify/internal/wisp/spectral"
)

// minCutoff is the smallest re-rooted index; the Hermite spine always has
// at least four points.
const minCutoff = 3

// Synthesizer builds strands from guides with displacement spectra drawn
// from one library.
type Synthesizer struct {
	lib *spectral.Library
	p   Params
}

// NewSynthesizer validates p and returns a synthesizer over lib.
func NewSynthesizer(lib *spectral.Library, p Params) (*Synthesizer, error) {
	if lib == nil {
		return nil, fmt.Errorf("synth: nil spectral library")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Synthesizer{lib: lib, p: p}, nil
}

// Params returns the synthesizer settings.
func (s *Synthesizer) Params() Params { return s.p }

// Wisp synthesizes one strand rooted at root and driven by guide. All
// random decisions are taken from rng in a fixed order, so equal streams
// give equal strands.
//
// Guides shorter than MinSpectralPoints are only translated so that their
// third point lands on root.
func (s *Synthesizer) Wisp(guide curvemath.Curve, root r3.Vec, rng *rand.Rand) (curvemath.Curve, error) {
	if len(guide) < 3 {
		return nil, fmt.Errorf("synth: guide of %d points: %w", len(guide), faults.ErrDegenerateGeometry)
	}
	if len(guide) < s.p.MinSpectralPoints {
		return curvemath.Translate(guide, r3.Sub(root, guide[2])), nil
	}

	amp, phase, err := s.lib.Draw(rng)
	if err != nil {
		return nil, err
	}
	disp, err := spectral.Synthesize(amp, phase, minCutoff+1)
	if err != nil {
		return nil, err
	}

	x, y := randutil.Symmetric(rng), randutil.Symmetric(rng)
	growth := curvemath.LinearRamp(s.p.WispRadius[1], s.p.WispRadius[0])
	carrier, err := curvemath.ParallelShift(guide, s.p.Up, x, y, growth)
	if err != nil {
		return nil, err
	}
	if len(carrier) < s.p.ShortCarrierPoints {
		f := float64(len(carrier)) / float64(s.p.ShortCarrierPoints)
		for i := range disp {
			disp[i] = r3.Scale(f, disp[i])
		}
	}

	timing := randutil.Between(rng, s.p.RootTiming[0], s.p.RootTiming[1])
	curl, err := s.RerootedCurl(root, carrier, disp, timing, rng)
	if err != nil {
		return nil, err
	}

	frac := randutil.Between(rng, s.p.LengthFraction[0], s.p.LengthFraction[1])
	res := s.p.Resolution
	if res == 0 {
		res = len(curl)
	}
	return curvemath.EvenCatmullRom(curl, res, frac)
}

// RerootedCurl rebuilds the proximal part of carrier so it starts at root.
//
// The first cutoff+1 points become an arc-length-uniform Hermite spine from
// root to the carrier's centerline at cutoff, wound with disp. The carrier
// points after cutoff follow, each kept with probability 1-Dropout. The
// first point of the result is exactly root.
func (s *Synthesizer) RerootedCurl(root r3.Vec, carrier curvemath.Curve, disp []r3.Vec, timing float64, rng *rand.Rand) (curvemath.Curve, error) {
	center, err := spectral.CenterCurve(carrier)
	if err != nil {
		return nil, err
	}
	hi := min(len(center), len(disp)) - 1
	if hi < minCutoff {
		return nil, fmt.Errorf("synth: %d carrier points and %d displacements leave no cutoff: %w",
			len(center), len(disp), faults.ErrShapeMismatch)
	}
	cutoff := min(max(int(timing*float64(len(carrier))), minCutoff), hi)

	last := len(center) - 1
	var mCut r3.Vec
	if cutoff == last {
		mCut = r3.Sub(center[last], center[last-1])
	} else {
		mCut = r3.Scale(0.5, r3.Sub(center[cutoff+1], center[cutoff-1]))
	}
	vCut := center[cutoff]

	// A root tangent pointing away from the far end would fold the spine
	// back on itself; aim at the carrier tip instead.
	m0 := r3.Sub(center[cutoff/2], root)
	if r3.Dot(m0, r3.Sub(center[last], root)) < 0 {
		m0 = r3.Sub(carrier[len(carrier)-1], root)
	}

	reach := r3.Norm(r3.Sub(vCut, root))
	if m0, err = scaleTo(m0, reach, "root"); err != nil {
		return nil, err
	}
	if mCut, err = scaleTo(mCut, reach, "cutoff"); err != nil {
		return nil, err
	}

	spine, err := curvemath.EvenHermite(root, m0, vCut, mCut, cutoff+1)
	if err != nil {
		return nil, err
	}
	wound, err := spectral.WindDisplacements(spine, disp, s.p.Up, s.p.Mode)
	if err != nil {
		return nil, err
	}
	wound[0] = root

	for _, p := range carrier[cutoff+1:] {
		if rng.Float64() > s.p.Dropout {
			wound = append(wound, p)
		}
	}
	return wound, nil
}

func scaleTo(v r3.Vec, length float64, which string) (r3.Vec, error) {
	n := r3.Norm(v)
	if !(n >= curvemath.Epsilon) {
		return r3.Vec{}, fmt.Errorf("synth: zero %s tangent: %w", which, faults.ErrDegenerateGeometry)
	}
	return r3.Scale(length/n, v), nil
}
