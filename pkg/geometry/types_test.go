package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointOps(t *testing.T) {
	a := NewPoint2D(3, 4)
	assert.InDelta(t, 5, a.Distance(NewPoint2D(0, 0)), 1e-9)
	assert.Equal(t, NewPoint2D(4, 6), a.Add(NewPoint2D(1, 2)))
	assert.Equal(t, NewPoint2D(2, 2), a.Sub(NewPoint2D(1, 2)))
	assert.Equal(t, NewPoint2D(6, 8), a.Scale(2))
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	assert.True(t, r.Contains(NewPoint2D(10, 20)))
	assert.True(t, r.Contains(NewPoint2D(25, 45)))
	assert.False(t, r.Contains(NewPoint2D(41, 25)))
	assert.Equal(t, NewPoint2D(25, 40), r.Center())
}

func TestAffineComposeAndInverse(t *testing.T) {
	tr := Translation(12, -3).Compose(Scale(0.5, 0.5))

	p := NewPoint2D(100, 200)
	mapped := tr.Apply(p)
	assert.InDelta(t, 62, mapped.X, 1e-9)
	assert.InDelta(t, 97, mapped.Y, 1e-9)

	inv, ok := tr.Inverse()
	require.True(t, ok)
	back := inv.Apply(mapped)
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestDegenerateInverse(t *testing.T) {
	_, ok := Scale(0, 0).Inverse()
	assert.False(t, ok)
}

func TestIdentity(t *testing.T) {
	p := NewPoint2D(7, 9)
	assert.Equal(t, p, Identity().Apply(p))
}
