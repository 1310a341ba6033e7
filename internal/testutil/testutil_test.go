package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestHelix(t *testing.T) {
	t.Parallel()
	c := Helix(5, r3.Vec{X: 2})
	assert.Len(t, c, 5)
	assert.Equal(t, r3.Vec{X: 2, Y: 0.1}, c[0])
	for i := 1; i < len(c); i++ {
		assert.InDelta(t, 0.5, c[i].Z-c[i-1].Z, 1e-12)
		assert.InDelta(t, 0.1, r3.Norm(r3.Vec{X: c[i].X - 2, Y: c[i].Y}), 1e-12)
	}
}

func TestGrid(t *testing.T) {
	t.Parallel()
	g := Grid(3, 0.5)
	assert.Len(t, g, 9)
	assert.Equal(t, r3.Vec{}, g[0])
	assert.Equal(t, r3.Vec{X: 1, Y: 1}, g[8])
}

func TestOBJ(t *testing.T) {
	t.Parallel()
	a := []r3.Vec{{}, {Z: 1}}
	b := []r3.Vec{{X: 0.5}, {X: 0.5, Z: 1}, {X: 0.5, Z: 2}}

	assert.Equal(t, "v 0 0 0\nv 0 0 1\nv 0.5 0 0\nv 0.5 0 1\nv 0.5 0 2\nl 1 2\nl 3 4 5\n", OBJ(true, a, b))
	assert.Equal(t, "v 0 0 0\nv 0 0 1\n", OBJ(false, a))
}

func TestAssertCurveNear(t *testing.T) {
	t.Parallel()
	AssertCurveNear(t, []r3.Vec{{X: 1}}, []r3.Vec{{X: 1 + 1e-10}}, 1e-9)
}
