// Package synth turns one guide curve and one root point into a detailed
// strand.
//
// Responsibilities: drawing a displacement signal from the spectral
// library, parallel-shifting the guide into a carrier, re-rooting the
// carrier's centerline at the root with a Hermite segment, winding the
// displacements around it, and resampling the result.
// Key types: Synthesizer, Params, CurveError.
//
// Dependency rule: synth depends on curvemath, spectral, randutil and
// faults. It keeps no per-call state; a Synthesizer may be shared by
// workers as long as each passes its own random stream.
package synth
