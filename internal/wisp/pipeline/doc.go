// Package pipeline runs strand synthesis over a whole clumping table.
//
// Responsibilities: enumerating (guide, root) jobs in table order, running
// them on a bounded worker pool with one random stream per job, and
// collecting curves and per-curve failures in job order.
//
// Dependency rule: pipeline depends on synth, clump, spectral, randutil and
// monitoring. It performs no I/O; inputs are loaded by the caller.
package pipeline
