// Package physics is the pure 2D kernel the simulation is built on:
// vector arithmetic, map bounds and circle overlap. Nothing here holds
// state.
package physics

import "math"

// Vector2D is an immutable 2D point or direction
type Vector2D struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Vec is shorthand for Vector2D{X: x, Y: y}
func Vec(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// Add returns v + o
func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * k
func (v Vector2D) Scale(k float64) Vector2D {
	return Vector2D{X: v.X * k, Y: v.Y * k}
}

// Length returns the magnitude of v
func (v Vector2D) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector in the direction of v.
// The zero vector normalizes to itself.
func (v Vector2D) Normalize() Vector2D {
	l := v.Length()
	if l == 0 {
		return Vector2D{}
	}
	return Vector2D{X: v.X / l, Y: v.Y / l}
}

// IsFinite reports whether both components are finite numbers
func (v Vector2D) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// Distance returns the Euclidean distance between a and b
func Distance(a, b Vector2D) float64 {
	return a.Sub(b).Length()
}

// FromAngle returns the unit vector (cos θ, sin θ)
func FromAngle(theta float64) Vector2D {
	return Vector2D{X: math.Cos(theta), Y: math.Sin(theta)}
}

// CirclesOverlap reports whether two circles strictly overlap.
// Circles that only touch do not overlap.
func CirclesOverlap(p1 Vector2D, r1 float64, p2 Vector2D, r2 float64) bool {
	return Distance(p1, p2) < r1+r2
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
