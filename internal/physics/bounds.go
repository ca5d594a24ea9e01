package physics

import "math"

// Reference map dimensions shared with every client
const (
	MapWidth  = 800.0
	MapHeight = 600.0
)

// Bounds is the playable rectangle [0, Width] x [0, Height]
type Bounds struct {
	Width  float64
	Height float64
}

// DefaultBounds returns the reference 800x600 map
func DefaultBounds() Bounds {
	return Bounds{Width: MapWidth, Height: MapHeight}
}

// Clamp constrains p so a circle of the given radius centred on it stays
// inside the map
func (b Bounds) Clamp(p Vector2D, radius float64) Vector2D {
	return Vector2D{
		X: clamp(p.X, radius, b.Width-radius),
		Y: clamp(p.Y, radius, b.Height-radius),
	}
}

// Outside reports whether a circle of the given radius centred on p has
// reached a wall. Touching the wall counts.
func (b Bounds) Outside(p Vector2D, radius float64) bool {
	return p.X <= radius || p.X >= b.Width-radius ||
		p.Y <= radius || p.Y >= b.Height-radius
}

// ClampToBounds clamps p against the reference map
func ClampToBounds(p Vector2D, radius float64) Vector2D {
	return DefaultBounds().Clamp(p, radius)
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}
