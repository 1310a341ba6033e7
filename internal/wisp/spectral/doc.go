// Package spectral owns the frequency-domain layer of the wisp pipeline.
//
// Responsibilities: extracting a curve's low-frequency centerline, measuring
// the curve's displacement from it in a moving frame, transforming those
// displacements to amplitude/phase spectra and back, and summarizing whole
// collections of spectra. Key types: Spectrum, Profile, Library, Statistics.
//
// Dependency rule: spectral depends on curvemath, faults and gonum
// (dsp/fourier, interp, stat). It holds no state; a Library is immutable
// once built and safe to share between workers.
package spectral
