package spectral

import (
	"fmt"

	"github.com/banshee-data/wispify/internal/wisp/faults"
)

// Mode selects how many frame axes a displacement carries.
type Mode int

const (
	// Planar keeps the U and V components only.
	Planar Mode = 2
	// Volumetric keeps U, V and W.
	Volumetric Mode = 3
)

// Axes returns the number of components per displacement.
func (m Mode) Axes() int { return int(m) }

// Validate reports whether m is Planar or Volumetric.
func (m Mode) Validate() error {
	if m != Planar && m != Volumetric {
		return fmt.Errorf("spectral: mode %d is neither planar (2) nor volumetric (3)", int(m))
	}
	return nil
}

func (m Mode) String() string {
	switch m {
	case Planar:
		return "planar"
	case Volumetric:
		return "volumetric"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Spectrum is a real-valued per-bin quantity indexed [axis][bin].
type Spectrum [][]float64

// Axes returns the number of axes.
func (s Spectrum) Axes() int { return len(s) }

// Bins returns the bin count of the first axis, or zero for an empty spectrum.
func (s Spectrum) Bins() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Validate checks that s has two or three axes of one non-zero bin count.
func (s Spectrum) Validate() error {
	if len(s) != 2 && len(s) != 3 {
		return fmt.Errorf("spectral: spectrum has %d axes: %w", len(s), faults.ErrShapeMismatch)
	}
	bins := len(s[0])
	if bins == 0 {
		return fmt.Errorf("spectral: spectrum has no bins: %w", faults.ErrShapeMismatch)
	}
	for a, axis := range s {
		if len(axis) != bins {
			return fmt.Errorf("spectral: axis %d has %d bins, axis 0 has %d: %w", a, len(axis), bins, faults.ErrShapeMismatch)
		}
	}
	return nil
}

// SameShape reports whether s and o have equal axis and bin counts.
func (s Spectrum) SameShape(o Spectrum) bool {
	return s.Axes() == o.Axes() && s.Bins() == o.Bins()
}

// Clone returns a deep copy of s.
func (s Spectrum) Clone() Spectrum {
	if s == nil {
		return nil
	}
	out := make(Spectrum, len(s))
	for a, axis := range s {
		out[a] = append([]float64(nil), axis...)
	}
	return out
}

func newSpectrum(axes, bins int) Spectrum {
	s := make(Spectrum, axes)
	for a := range s {
		s[a] = make([]float64, bins)
	}
	return s
}

// Profile is the Fourier transform of one curve's central displacements.
type Profile struct {
	Amplitude Spectrum
	Phase     Spectrum
	// Samples is the point count of the analyzed curve. It fixes the
	// frequency of every bin: bin i sits at i/Samples cycles per sample.
	Samples int
}

// Validate checks the two spectra agree with each other and with Samples.
func (p Profile) Validate() error {
	if err := p.Amplitude.Validate(); err != nil {
		return fmt.Errorf("amplitude: %w", err)
	}
	if err := p.Phase.Validate(); err != nil {
		return fmt.Errorf("phase: %w", err)
	}
	if !p.Amplitude.SameShape(p.Phase) {
		return fmt.Errorf("spectral: amplitude %dx%d, phase %dx%d: %w",
			p.Amplitude.Axes(), p.Amplitude.Bins(), p.Phase.Axes(), p.Phase.Bins(), faults.ErrShapeMismatch)
	}
	if p.Samples < 1 || p.Samples/2+1 != p.Amplitude.Bins() {
		return fmt.Errorf("spectral: %d samples cannot give %d bins: %w", p.Samples, p.Amplitude.Bins(), faults.ErrShapeMismatch)
	}
	return nil
}
