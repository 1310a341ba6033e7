// Package curvemath owns the curve evaluation layer of the wisp pipeline.
//
// Responsibilities: cubic Hermite and Catmull-Rom evaluation, arc-length
// uniform resampling, orthonormal frames along a polyline and frame-relative
// (parallel) shifts. Key types: Curve, Frame.
//
// Dependency rule: curvemath depends only on faults and gonum. Degenerate
// input (zero tangents, an up vector parallel to a tangent, zero-length
// curves) is reported with faults.ErrDegenerateGeometry and never divided
// through.
package curvemath
