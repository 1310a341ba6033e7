package synth

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/spectral"
)

// Defaults of the original tool.
var (
	DefaultRootTiming     = [2]float64{0.1, 0.6}
	DefaultLengthFraction = [2]float64{0.8, 1}
	DefaultWispRadius     = [2]float64{0.07, 0.35}
	DefaultUp             = r3.Vec{X: -5, Y: 5, Z: 0}
)

const (
	DefaultDropout            = 0.5
	DefaultShortCarrierPoints = 10
	DefaultMinSpectralPoints  = 6
)

// Params controls the per-strand randomization.
type Params struct {
	// RootTiming is the range of the fraction of the carrier, measured
	// from the root, that is rebuilt from the centerline.
	RootTiming [2]float64
	// LengthFraction is the range of the parameter fraction of the final
	// spline kept, in (0, 1].
	LengthFraction [2]float64
	// WispRadius is the {tip, root} scale of the parallel shift.
	WispRadius [2]float64
	// Dropout is the probability that a tail point is removed.
	Dropout float64
	// Up orients every frame.
	Up r3.Vec
	// Resolution is the output point count; zero keeps the re-rooted
	// curve's own count.
	Resolution int
	// ShortCarrierPoints is the carrier length below which displacements
	// are scaled down by len/ShortCarrierPoints.
	ShortCarrierPoints int
	// MinSpectralPoints is the guide length below which synthesis is
	// skipped and the guide is only translated.
	MinSpectralPoints int
	Mode              spectral.Mode
}

// DefaultParams returns the settings of the original tool in planar mode.
func DefaultParams() Params {
	return Params{
		RootTiming:         DefaultRootTiming,
		LengthFraction:     DefaultLengthFraction,
		WispRadius:         DefaultWispRadius,
		Dropout:            DefaultDropout,
		Up:                 DefaultUp,
		ShortCarrierPoints: DefaultShortCarrierPoints,
		MinSpectralPoints:  DefaultMinSpectralPoints,
		Mode:               spectral.Planar,
	}
}

// Validate checks the ranges are ordered and within their domains.
func (p Params) Validate() error {
	if err := checkRange("root timing", p.RootTiming, 0, 1); err != nil {
		return err
	}
	if err := checkRange("length fraction", p.LengthFraction, 0, 1); err != nil {
		return err
	}
	if p.LengthFraction[0] <= 0 {
		return fmt.Errorf("synth: length fraction must be above zero, got %v", p.LengthFraction)
	}
	if p.WispRadius[0] < 0 || p.WispRadius[1] < 0 {
		return fmt.Errorf("synth: wisp radius must be non-negative, got %v", p.WispRadius)
	}
	if p.Dropout < 0 || p.Dropout > 1 {
		return fmt.Errorf("synth: dropout %g outside [0, 1]", p.Dropout)
	}
	if p.Up == (r3.Vec{}) {
		return fmt.Errorf("synth: up vector is zero")
	}
	if p.Resolution < 0 {
		return fmt.Errorf("synth: negative resolution %d", p.Resolution)
	}
	if p.MinSpectralPoints < 3 {
		return fmt.Errorf("synth: minimum spectral points %d below 3", p.MinSpectralPoints)
	}
	if p.ShortCarrierPoints < 1 {
		return fmt.Errorf("synth: short carrier points %d below 1", p.ShortCarrierPoints)
	}
	return p.Mode.Validate()
}

func checkRange(name string, r [2]float64, lo, hi float64) error {
	if r[0] > r[1] || r[0] < lo || r[1] > hi {
		return fmt.Errorf("synth: %s range %v outside [%g, %g] or reversed", name, r, lo, hi)
	}
	return nil
}
