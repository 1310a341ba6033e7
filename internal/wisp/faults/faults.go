// Package faults defines the error taxonomy shared by the wisp layers.
//
// Operations wrap one of the sentinels below with fmt.Errorf("...: %w", ...)
// so callers can classify a failure with errors.Is regardless of which layer
// produced it. I/O failures are not listed here; they are wrapped and
// propagated as returned by the filesystem or database.
package faults

import "errors"

var (
	// ErrShapeMismatch reports paired arrays whose lengths must agree but do not
	// (amplitude/phase spectra, a centerline longer than its displacements,
	// resolutions that cannot hold a curve).
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDegenerateGeometry reports a zero-length tangent, a vanishing cross
	// product or coincident points feeding frame or spline construction.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrInsufficientCandidates reports a nearest-neighbour query that could not
	// collect enough candidates within its retry budget.
	ErrInsufficientCandidates = errors.New("insufficient candidates")
)
