package model

import "math"

// Location is a point or direction in world space.
// X and Y span the ground plane, Z points up.
// Value type, passed by value (immutable).
type Location struct {
	X float64
	Y float64
	Z float64
}

// NewLocation creates a Location with the given coordinates.
func NewLocation(x, y, z float64) Location {
	return Location{X: x, Y: y, Z: z}
}

// Up is the world up axis.
var Up = Location{Z: 1}

// Add returns l + o.
func (l Location) Add(o Location) Location {
	return Location{X: l.X + o.X, Y: l.Y + o.Y, Z: l.Z + o.Z}
}

// Sub returns l - o.
func (l Location) Sub(o Location) Location {
	return Location{X: l.X - o.X, Y: l.Y - o.Y, Z: l.Z - o.Z}
}

// Scale returns l multiplied by k.
func (l Location) Scale(k float64) Location {
	return Location{X: l.X * k, Y: l.Y * k, Z: l.Z * k}
}

// Dot returns the dot product.
func (l Location) Dot(o Location) float64 {
	return l.X*o.X + l.Y*o.Y + l.Z*o.Z
}

// Length returns the vector magnitude.
func (l Location) Length() float64 {
	return math.Sqrt(l.Dot(l))
}

// Normalize returns the unit vector in the same direction.
// The zero vector is returned unchanged.
func (l Location) Normalize() Location {
	n := l.Length()
	if n < 1e-9 {
		return Location{}
	}
	return l.Scale(1 / n)
}

// Flat drops the vertical component.
func (l Location) Flat() Location {
	l.Z = 0
	return l
}

// DistanceSquared returns the squared distance to another point (no sqrt).
func (l Location) DistanceSquared(other Location) float64 {
	d := l.Sub(other)
	return d.Dot(d)
}

// Distance returns the euclidean distance to another point.
func (l Location) Distance(other Location) float64 {
	return math.Sqrt(l.DistanceSquared(other))
}

// AngleTo returns the unsigned angle between two directions in degrees.
// Returns 0 when either vector is zero.
func (l Location) AngleTo(other Location) float64 {
	a := l.Normalize()
	b := other.Normalize()
	if a == (Location{}) || b == (Location{}) {
		return 0
	}
	cos := a.Dot(b)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}
