package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/curvemath"
	"github.com/banshee-data/wispify/internal/wisp/faults"
)

// Analyze returns the amplitude and phase spectra of the central
// displacements of c. A bin with zero amplitude has phase zero. Straight
// curves cannot be analyzed; see CentralDisplacements.
func Analyze(c curvemath.Curve, mode Mode) (Profile, error) {
	disp, err := CentralDisplacements(c, mode)
	if err != nil {
		return Profile{}, err
	}
	coeffs := forward(disp, mode.Axes())

	nb := bins(len(disp))
	p := Profile{
		Amplitude: newSpectrum(mode.Axes(), nb),
		Phase:     newSpectrum(mode.Axes(), nb),
		Samples:   len(disp),
	}
	for a, axis := range coeffs {
		for i, x := range axis {
			amp := cmplx.Abs(x)
			p.Amplitude[a][i] = amp
			if amp > 0 {
				p.Phase[a][i] = math.Atan2(imag(x), real(x))
			}
		}
	}
	return p, nil
}

// Synthesize turns an amplitude/phase pair into a displacement signal of
// 2·bins samples. The Nyquist bin of that signal is zero. Fewer than
// minPoints samples is a shape mismatch.
func Synthesize(amp, phase Spectrum, minPoints int) ([]r3.Vec, error) {
	if err := amp.Validate(); err != nil {
		return nil, fmt.Errorf("amplitude: %w", err)
	}
	if err := phase.Validate(); err != nil {
		return nil, fmt.Errorf("phase: %w", err)
	}
	if !amp.SameShape(phase) {
		return nil, fmt.Errorf("spectral: synthesize %dx%d amplitudes with %dx%d phases: %w",
			amp.Axes(), amp.Bins(), phase.Axes(), phase.Bins(), faults.ErrShapeMismatch)
	}
	n := 2 * amp.Bins()
	if n < minPoints {
		return nil, fmt.Errorf("spectral: %d bins synthesize %d samples, need %d: %w", amp.Bins(), n, minPoints, faults.ErrShapeMismatch)
	}

	coeffs := make([][]complex128, amp.Axes())
	for a := range coeffs {
		coeffs[a] = make([]complex128, amp.Bins())
		for i, r := range amp[a] {
			coeffs[a][i] = cmplx.Rect(r, phase[a][i])
		}
	}
	return inverse(coeffs, n), nil
}

// CollectProfiles analyzes every curve in curves. Curves that cannot be
// analyzed are left out of the result and reported, by index, in the
// joined error; the returned profiles are still usable.
func CollectProfiles(curves []curvemath.Curve, mode Mode) ([]Profile, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	profiles := make([]Profile, 0, len(curves))
	var errs []error
	for i, c := range curves {
		p, err := Analyze(c, mode)
		if err != nil {
			errs = append(errs, fmt.Errorf("curve %d: %w", i, err))
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, errors.Join(errs...)
}
