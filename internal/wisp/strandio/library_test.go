package strandio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/wispify/internal/fsutil"
	"github.com/banshee-data/wispify/internal/wisp/faults"
	"github.com/banshee-data/wispify/internal/wisp/spectral"
)

func TestLibraryJSONRoundTrip(t *testing.T) {
	t.Parallel()

	amps := []spectral.Spectrum{
		{{1, 2, 3}, {4, 5, 6}},
		{{7, 8}, {9, 10}},
	}
	phases := []spectral.Spectrum{{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}}
	lib, err := spectral.NewLibrary(amps, phases)
	require.NoError(t, err)

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteLibraryJSON(mfs, "/lib.json", lib))

	raw, err := mfs.ReadFile("/lib.json")
	require.NoError(t, err)
	var lf libraryFile
	require.NoError(t, json.Unmarshal(raw, &lf))
	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, lf.Amplitudes[0])
	assert.Equal(t, 2, lf.Mode)

	got, err := ReadLibraryJSON(mfs, "/lib.json")
	require.NoError(t, err)
	assert.Equal(t, amps, got.Amplitudes)
	assert.Equal(t, phases, got.Phases)
}

func TestReadLibraryJSONErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"not json", "{"},
		{"ragged bins", `{"amplitudes": [[[1, 2], [3]]], "phases": [[[1, 2]]]}`},
		{"empty entry", `{"amplitudes": [[]], "phases": [[[1, 2]]]}`},
		{"no phases", `{"amplitudes": [[[1, 2]]], "phases": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mfs := fsutil.NewMemoryFileSystem()
			require.NoError(t, mfs.WriteFile("/lib.json", []byte(tt.src), 0o644))
			_, err := ReadLibraryJSON(mfs, "/lib.json")
			assert.Error(t, err)
		})
	}

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/lib.json", []byte(`{"amplitudes": [[[1, 2], [3]]], "phases": [[[1, 2]]]}`), 0o644))
	_, err := ReadLibraryJSON(mfs, "/lib.json")
	assert.ErrorIs(t, err, faults.ErrShapeMismatch)
}

func TestWriteStatisticsJSON(t *testing.T) {
	t.Parallel()

	st := spectral.Statistics{
		Frequencies:   []float64{0, 0.5},
		MeanAmplitude: spectral.Spectrum{{1, 2}, {3, 4}},
		StdAmplitude:  spectral.Spectrum{{0, 0}, {0, 0}},
		MeanPhase:     spectral.Spectrum{{0.1, 0.2}, {0.3, 0.4}},
		StdPhase:      spectral.Spectrum{{0, 0}, {0, 0}},
	}
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteStatisticsJSON(mfs, "/stats.json", st))

	raw, err := mfs.ReadFile("/stats.json")
	require.NoError(t, err)
	var sf statisticsFile
	require.NoError(t, json.Unmarshal(raw, &sf))
	assert.Equal(t, []float64{0, 0.5}, sf.Frequencies)
	assert.Equal(t, [][]float64{{1, 3}, {2, 4}}, sf.MeanAmplitude)
	assert.Equal(t, [][]float64{{0.1, 0.3}, {0.2, 0.4}}, sf.MeanPhase)
}
