package spectral

import (
	"fmt"
	"math/rand/v2"

	"github.com/banshee-data/wispify/internal/wisp/faults"
)

// DefaultMaxDraws bounds the redraws of one Library.Draw call.
const DefaultMaxDraws = 1000

// Library holds independent pools of amplitude and phase spectra. Draws
// pick one of each uniformly, so a drawn pair need not come from the same
// source curve.
type Library struct {
	Amplitudes []Spectrum
	Phases     []Spectrum
	// MaxDraws caps redraws when the two picks disagree in shape.
	MaxDraws int

	compatible bool
}

// NewLibrary validates every spectrum and returns a library over them.
// The slices are not copied and must not be modified afterwards.
func NewLibrary(amplitudes, phases []Spectrum) (*Library, error) {
	if len(amplitudes) == 0 || len(phases) == 0 {
		return nil, fmt.Errorf("spectral: library needs amplitudes and phases, got %d and %d: %w",
			len(amplitudes), len(phases), faults.ErrShapeMismatch)
	}
	for i, s := range amplitudes {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("amplitude %d: %w", i, err)
		}
	}
	for i, s := range phases {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("phase %d: %w", i, err)
		}
	}

	type shape struct{ axes, bins int }
	seen := make(map[shape]bool, len(amplitudes))
	for _, s := range amplitudes {
		seen[shape{s.Axes(), s.Bins()}] = true
	}
	lib := &Library{Amplitudes: amplitudes, Phases: phases, MaxDraws: DefaultMaxDraws}
	for _, s := range phases {
		if seen[shape{s.Axes(), s.Bins()}] {
			lib.compatible = true
			break
		}
	}
	return lib, nil
}

// NewLibraryFromProfiles pools the amplitude and phase spectra of profiles.
func NewLibraryFromProfiles(profiles []Profile) (*Library, error) {
	amps := make([]Spectrum, len(profiles))
	phases := make([]Spectrum, len(profiles))
	for i, p := range profiles {
		amps[i] = p.Amplitude
		phases[i] = p.Phase
	}
	return NewLibrary(amps, phases)
}

// Len returns the sizes of the amplitude and phase pools.
func (l *Library) Len() (amplitudes, phases int) {
	return len(l.Amplitudes), len(l.Phases)
}

// Draw picks an amplitude and a phase spectrum independently and uniformly,
// redrawing both until their shapes agree. The returned spectra are shared
// with the library and must not be modified.
func (l *Library) Draw(rng *rand.Rand) (amp, phase Spectrum, err error) {
	if l == nil || !l.compatible {
		return nil, nil, fmt.Errorf("spectral: no amplitude and phase spectra share a shape: %w", faults.ErrShapeMismatch)
	}
	limit := l.MaxDraws
	if limit <= 0 {
		limit = DefaultMaxDraws
	}
	for range limit {
		amp = l.Amplitudes[rng.IntN(len(l.Amplitudes))]
		phase = l.Phases[rng.IntN(len(l.Phases))]
		if amp.SameShape(phase) {
			return amp, phase, nil
		}
	}
	return nil, nil, fmt.Errorf("spectral: no matching draw in %d attempts: %w", limit, faults.ErrShapeMismatch)
}
