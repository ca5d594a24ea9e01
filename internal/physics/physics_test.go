package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorArithmetic(t *testing.T) {
	a := Vec(3, 4)
	b := Vec(1, -2)

	assert.Equal(t, Vec(4, 2), a.Add(b))
	assert.Equal(t, Vec(2, 6), a.Sub(b))
	assert.Equal(t, Vec(6, 8), a.Scale(2))
	assert.InDelta(t, 5.0, a.Length(), 1e-9)
	assert.InDelta(t, 5.0, Distance(Vec(0, 0), a), 1e-9)
}

func TestNormalize(t *testing.T) {
	n := Vec(3, 4).Normalize()
	assert.InDelta(t, 0.6, n.X, 1e-9)
	assert.InDelta(t, 0.8, n.Y, 1e-9)

	assert.Equal(t, Vector2D{}, Vector2D{}.Normalize(), "zero vector normalizes to zero")
}

func TestFromAngle(t *testing.T) {
	tests := []struct {
		name  string
		theta float64
		want  Vector2D
	}{
		{"east", 0, Vec(1, 0)},
		{"south (y grows down)", math.Pi / 2, Vec(0, 1)},
		{"west", math.Pi, Vec(-1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromAngle(tt.theta)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestCirclesOverlap(t *testing.T) {
	assert.True(t, CirclesOverlap(Vec(0, 0), 20, Vec(24, 0), 5))
	assert.False(t, CirclesOverlap(Vec(0, 0), 20, Vec(25, 0), 5), "touching is not overlapping")
	assert.False(t, CirclesOverlap(Vec(0, 0), 20, Vec(100, 100), 5))
}

func TestClampToBounds(t *testing.T) {
	assert.Equal(t, Vec(20, 20), ClampToBounds(Vec(-50, 0), 20))
	assert.Equal(t, Vec(780, 580), ClampToBounds(Vec(900, 700), 20))
	assert.Equal(t, Vec(400, 300), ClampToBounds(Vec(400, 300), 20))
}

func TestOutsideIsInclusive(t *testing.T) {
	b := DefaultBounds()

	assert.True(t, b.Outside(Vec(795, 300), 5), "x = width - radius is a wall hit")
	assert.False(t, b.Outside(Vec(794.9, 300), 5))
	assert.True(t, b.Outside(Vec(5, 300), 5))
	assert.True(t, b.Outside(Vec(400, 595), 5))
	assert.True(t, b.Outside(Vec(400, -10), 5))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, Vec(1, 2).IsFinite())
	assert.False(t, Vec(math.NaN(), 2).IsFinite())
	assert.False(t, Vec(1, math.Inf(1)).IsFinite())
}
