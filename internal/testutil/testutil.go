// Package testutil provides shared curve fixtures and assertions for tests.
package testutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// Helix returns n points winding around a vertical axis through base,
// rising 0.5 per point with a 0.1 radius.
func Helix(n int, base r3.Vec) []r3.Vec {
	c := make([]r3.Vec, n)
	for i := range c {
		a := 0.8 * float64(i)
		c[i] = r3.Add(base, r3.Vec{X: 0.1 * math.Sin(a), Y: 0.1 * math.Cos(a), Z: 0.5 * float64(i)})
	}
	return c
}

// Grid returns n×n points spaced step apart in the z=0 plane.
func Grid(n int, step float64) []r3.Vec {
	pts := make([]r3.Vec, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pts = append(pts, r3.Vec{X: step * float64(i), Y: step * float64(j)})
		}
	}
	return pts
}

// AssertCurveNear fails unless got has want's length and every point lies
// within delta of its counterpart.
func AssertCurveNear(t *testing.T, want, got []r3.Vec, delta float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, 0, r3.Norm(r3.Sub(want[i], got[i])), delta,
			"point %d: want %v got %v", i, want[i], got[i])
	}
}

// OBJ renders curves as Wavefront OBJ text with one polyline per curve.
// With lines false only the vertices are written, as for a point cloud.
func OBJ(lines bool, curves ...[]r3.Vec) string {
	var b strings.Builder
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, c := range curves {
		for _, p := range c {
			fmt.Fprintf(&b, "v %s %s %s\n", f(p.X), f(p.Y), f(p.Z))
		}
	}
	if !lines {
		return b.String()
	}
	next := 1
	for _, c := range curves {
		b.WriteString("l")
		for range c {
			fmt.Fprintf(&b, " %d", next)
			next++
		}
		b.WriteString("\n")
	}
	return b.String()
}
