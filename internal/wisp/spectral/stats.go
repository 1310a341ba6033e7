package spectral

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/wispify/internal/wisp/faults"
)

// Statistics summarizes a collection of profiles on one frequency grid.
// Every spectrum is indexed [axis][bin] with one bin per entry of
// Frequencies.
type Statistics struct {
	Frequencies   []float64
	MeanAmplitude Spectrum
	StdAmplitude  Spectrum
	MeanPhase     Spectrum
	StdPhase      Spectrum
}

// CollectionStatistics resamples every profile onto the frequency grid of
// the longest one and returns bin-wise population means and standard
// deviations. Phases are averaged through their unit vectors: the mean and
// deviation of the cosine and sine parts are recombined with atan2.
func CollectionStatistics(profiles []Profile) (Statistics, error) {
	if len(profiles) == 0 {
		return Statistics{}, fmt.Errorf("spectral: statistics of no profiles: %w", faults.ErrShapeMismatch)
	}
	axes := profiles[0].Amplitude.Axes()
	longest := 0
	for i, p := range profiles {
		if err := p.Validate(); err != nil {
			return Statistics{}, fmt.Errorf("profile %d: %w", i, err)
		}
		if p.Amplitude.Axes() != axes {
			return Statistics{}, fmt.Errorf("spectral: profile %d has %d axes, profile 0 has %d: %w",
				i, p.Amplitude.Axes(), axes, faults.ErrShapeMismatch)
		}
		longest = max(longest, p.Samples)
	}

	target := frequencies(longest)
	nb := len(target)
	st := Statistics{
		Frequencies:   target,
		MeanAmplitude: newSpectrum(axes, nb),
		StdAmplitude:  newSpectrum(axes, nb),
		MeanPhase:     newSpectrum(axes, nb),
		StdPhase:      newSpectrum(axes, nb),
	}

	amp := make([][]float64, len(profiles))
	re := make([][]float64, len(profiles))
	im := make([][]float64, len(profiles))
	column := make([]float64, len(profiles))
	for a := 0; a < axes; a++ {
		for k, p := range profiles {
			cosines, sines := unitComponents(p.Amplitude[a], p.Phase[a])
			grid := frequencies(p.Samples)
			var err error
			if amp[k], err = resample(grid, p.Amplitude[a], target); err != nil {
				return Statistics{}, fmt.Errorf("profile %d amplitude: %w", k, err)
			}
			if re[k], err = resample(grid, cosines, target); err != nil {
				return Statistics{}, fmt.Errorf("profile %d phase: %w", k, err)
			}
			if im[k], err = resample(grid, sines, target); err != nil {
				return Statistics{}, fmt.Errorf("profile %d phase: %w", k, err)
			}
		}
		for b := 0; b < nb; b++ {
			st.MeanAmplitude[a][b], st.StdAmplitude[a][b] = columnStats(amp, b, column)
			reMean, reStd := columnStats(re, b, column)
			imMean, imStd := columnStats(im, b, column)
			st.MeanPhase[a][b] = math.Atan2(imMean, reMean)
			st.StdPhase[a][b] = math.Atan2(imStd, reStd)
		}
	}
	return st, nil
}

// frequencies returns the real-FFT bin frequencies of an n-sample signal
// in cycles per sample.
func frequencies(n int) []float64 {
	out := make([]float64, bins(n))
	if n == 1 {
		return out
	}
	fft := fourier.NewFFT(n)
	for i := range out {
		out[i] = fft.Freq(i)
	}
	return out
}

// unitComponents returns the cosine and sine of every phase. Zero-amplitude
// bins use the unit vector (1, 0).
func unitComponents(amp, phase []float64) (cosines, sines []float64) {
	cosines = make([]float64, len(phase))
	sines = make([]float64, len(phase))
	for i, p := range phase {
		if amp[i] == 0 {
			cosines[i] = 1
			continue
		}
		u := cmplx.Rect(1, p)
		cosines[i], sines[i] = real(u), imag(u)
	}
	return cosines, sines
}

// resample linearly interpolates ys, sampled at xs, onto target. Targets
// outside xs take the nearest end value.
func resample(xs, ys, target []float64) ([]float64, error) {
	out := make([]float64, len(target))
	if len(xs) == 1 {
		for i := range out {
			out[i] = ys[0]
		}
		return out, nil
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	for i, x := range target {
		out[i] = pl.Predict(x)
	}
	return out, nil
}

// columnStats returns the population mean and standard deviation of
// rows[*][b]. column is scratch space of len(rows).
func columnStats(rows [][]float64, b int, column []float64) (mean, std float64) {
	for k, row := range rows {
		column[k] = row[b]
	}
	return stat.PopMeanStdDev(column, nil)
}
