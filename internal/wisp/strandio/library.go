package strandio

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/wispify/internal/fsutil"
	"github.com/banshee-data/wispify/internal/wisp/faults"
	"github.com/banshee-data/wispify/internal/wisp/spectral"
)

// maxLibraryBytes bounds a library file read into memory.
const maxLibraryBytes = 512 << 20

// libraryFile stores every spectrum as [bin][axis].
type libraryFile struct {
	Mode       int           `json:"mode,omitempty"`
	Amplitudes [][][]float64 `json:"amplitudes"`
	Phases     [][][]float64 `json:"phases"`
}

// ReadLibraryJSON loads a spectral library. Amplitude and phase pools are
// independent and may differ in size.
func ReadLibraryJSON(fsys fsutil.FileSystem, name string) (*spectral.Library, error) {
	data, err := fsys.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("strandio: %w", err)
	}
	if len(data) > maxLibraryBytes {
		return nil, fmt.Errorf("strandio: %s is %d bytes, limit %d", name, len(data), maxLibraryBytes)
	}
	var lf libraryFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("strandio: parse %s: %w", name, err)
	}

	amps, err := fromBinMajor(lf.Amplitudes)
	if err != nil {
		return nil, fmt.Errorf("strandio: %s amplitudes: %w", name, err)
	}
	phases, err := fromBinMajor(lf.Phases)
	if err != nil {
		return nil, fmt.Errorf("strandio: %s phases: %w", name, err)
	}
	lib, err := spectral.NewLibrary(amps, phases)
	if err != nil {
		return nil, fmt.Errorf("strandio: %s: %w", name, err)
	}
	return lib, nil
}

// WriteLibraryJSON stores the amplitude and phase pools of lib.
func WriteLibraryJSON(fsys fsutil.FileSystem, name string, lib *spectral.Library) error {
	lf := libraryFile{
		Amplitudes: toBinMajor(lib.Amplitudes),
		Phases:     toBinMajor(lib.Phases),
	}
	if len(lib.Amplitudes) > 0 {
		lf.Mode = lib.Amplitudes[0].Axes()
	}
	return writeJSON(fsys, name, lf)
}

func fromBinMajor(entries [][][]float64) ([]spectral.Spectrum, error) {
	out := make([]spectral.Spectrum, len(entries))
	for e, bins := range entries {
		if len(bins) == 0 {
			return nil, fmt.Errorf("entry %d has no bins: %w", e, faults.ErrShapeMismatch)
		}
		axes := len(bins[0])
		s := make(spectral.Spectrum, axes)
		for a := range s {
			s[a] = make([]float64, len(bins))
		}
		for b, v := range bins {
			if len(v) != axes {
				return nil, fmt.Errorf("entry %d bin %d has %d axes, want %d: %w", e, b, len(v), axes, faults.ErrShapeMismatch)
			}
			for a, x := range v {
				s[a][b] = x
			}
		}
		out[e] = s
	}
	return out, nil
}

func toBinMajor(spectra []spectral.Spectrum) [][][]float64 {
	out := make([][][]float64, len(spectra))
	for e, s := range spectra {
		bins := make([][]float64, s.Bins())
		for b := range bins {
			bins[b] = make([]float64, s.Axes())
			for a := range s {
				bins[b][a] = s[a][b]
			}
		}
		out[e] = bins
	}
	return out
}

// statisticsFile stores every spectrum as [bin][axis], like libraryFile.
type statisticsFile struct {
	Frequencies   []float64   `json:"frequencies"`
	MeanAmplitude [][]float64 `json:"mean_amplitude"`
	StdAmplitude  [][]float64 `json:"std_amplitude"`
	MeanPhase     [][]float64 `json:"mean_phase"`
	StdPhase      [][]float64 `json:"std_phase"`
}

// WriteStatisticsJSON stores collection statistics.
func WriteStatisticsJSON(fsys fsutil.FileSystem, name string, st spectral.Statistics) error {
	major := toBinMajor([]spectral.Spectrum{st.MeanAmplitude, st.StdAmplitude, st.MeanPhase, st.StdPhase})
	return writeJSON(fsys, name, statisticsFile{
		Frequencies:   st.Frequencies,
		MeanAmplitude: major[0],
		StdAmplitude:  major[1],
		MeanPhase:     major[2],
		StdPhase:      major[3],
	})
}

func writeJSON(fsys fsutil.FileSystem, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("strandio: encode %s: %w", name, err)
	}
	if err := fsys.WriteFile(name, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("strandio: %w", err)
	}
	return nil
}
