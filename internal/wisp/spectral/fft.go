package spectral

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/faults"
)

// bins returns the real-FFT coefficient count of an n-sample signal.
func bins(n int) int { return n/2 + 1 }

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func setComponent(v *r3.Vec, axis int, x float64) {
	switch axis {
	case 0:
		v.X = x
	case 1:
		v.Y = x
	default:
		v.Z = x
	}
}

// forward returns the real FFT of the first axes components of signal,
// indexed [axis][bin].
func forward(signal []r3.Vec, axes int) [][]complex128 {
	n := len(signal)
	out := make([][]complex128, axes)
	if n == 1 {
		for a := range out {
			out[a] = []complex128{complex(component(signal[0], a), 0)}
		}
		return out
	}
	fft := fourier.NewFFT(n)
	seq := make([]float64, n)
	for a := range out {
		for i, v := range signal {
			seq[i] = component(v, a)
		}
		out[a] = fft.Coefficients(nil, seq)
	}
	return out
}

// inverse returns the n-sample real signal of coeffs, normalized by 1/n.
// Each axis is truncated or zero-padded to n/2+1 bins; the imaginary parts
// of the zero and Nyquist bins are discarded.
func inverse(coeffs [][]complex128, n int) []r3.Vec {
	out := make([]r3.Vec, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		for a, c := range coeffs {
			if len(c) > 0 {
				setComponent(&out[0], a, real(c[0]))
			}
		}
		return out
	}
	fft := fourier.NewFFT(n)
	buf := make([]complex128, bins(n))
	seq := make([]float64, n)
	scale := 1 / float64(n)
	for a, c := range coeffs {
		clear(buf)
		copy(buf, c)
		buf[0] = complex(real(buf[0]), 0)
		if n%2 == 0 {
			last := len(buf) - 1
			buf[last] = complex(real(buf[last]), 0)
		}
		fft.Sequence(seq, buf)
		for i := range out {
			setComponent(&out[i], a, seq[i]*scale)
		}
	}
	return out
}

// filter transforms all three axes of signal, lets edit rewrite each axis's
// coefficients in place and transforms back to len(signal) samples.
func filter(signal []r3.Vec, edit func([]complex128)) []r3.Vec {
	if len(signal) == 0 {
		return nil
	}
	coeffs := forward(signal, 3)
	for _, c := range coeffs {
		edit(c)
	}
	return inverse(coeffs, len(signal))
}

// KeepLow keeps the lowest n frequency bins of signal and zeroes the rest.
func KeepLow(signal []r3.Vec, n int) []r3.Vec {
	return filter(signal, func(c []complex128) {
		for i := max(n, 0); i < len(c); i++ {
			c[i] = 0
		}
	})
}

// TruncateHigh zeroes the highest n frequency bins of signal.
func TruncateHigh(signal []r3.Vec, n int) []r3.Vec {
	return filter(signal, func(c []complex128) {
		for i := max(len(c)-n, 0); i < len(c); i++ {
			c[i] = 0
		}
	})
}

// HighPass zeroes the lowest n frequency bins of signal.
func HighPass(signal []r3.Vec, n int) []r3.Vec {
	return filter(signal, func(c []complex128) {
		for i := 0; i < min(n, len(c)); i++ {
			c[i] = 0
		}
	})
}

// Interpolate blends the spectra of a and b as (1-t)·A + t·B and returns
// the resulting signal. Both signals must have the same bin count.
func Interpolate(a, b []r3.Vec, t float64) ([]r3.Vec, error) {
	if bins(len(a)) != bins(len(b)) || len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("spectral: interpolate %d and %d samples: %w", len(a), len(b), faults.ErrShapeMismatch)
	}
	fa := forward(a, 3)
	fb := forward(b, 3)
	wa, wb := complex(1-t, 0), complex(t, 0)
	for axis := range fa {
		for i := range fa[axis] {
			fa[axis][i] = wa*fa[axis][i] + wb*fb[axis][i]
		}
	}
	return inverse(fa, len(a)), nil
}
