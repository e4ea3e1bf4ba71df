package world

import (
	"math"

	"github.com/udisondev/drifter/internal/model"
)

// Box is an axis-aligned obstacle (wall, crate, pillar).
type Box struct {
	Name string
	Min  model.Location
	Max  model.Location
}

// NewBox builds a box from two opposite corners in any order.
func NewBox(name string, a, b model.Location) Box {
	return Box{
		Name: name,
		Min:  model.NewLocation(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)),
		Max:  model.NewLocation(math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)),
	}
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p model.Location) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// intersectRay returns the entry distance of a ray into the box (slab test).
// A ray starting inside the box hits at distance 0.
func (b Box) intersectRay(origin, dir model.Location, maxDistance float64) (float64, bool) {
	tMin, tMax := 0.0, maxDistance

	slabs := [3][4]float64{
		{origin.X, dir.X, b.Min.X, b.Max.X},
		{origin.Y, dir.Y, b.Min.Y, b.Max.Y},
		{origin.Z, dir.Z, b.Min.Z, b.Max.Z},
	}
	for _, s := range slabs {
		o, d, lo, hi := s[0], s[1], s[2], s[3]
		if math.Abs(d) < 1e-12 {
			// Parallel to the slab: must already be between its planes.
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// intersectSphere returns the first distance at which a ray with unit dir enters a sphere.
func intersectSphere(origin, dir, center model.Location, radius, maxDistance float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}

	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 || t > maxDistance {
		return 0, false
	}
	if c < 0 {
		// origin inside the sphere
		return 0, true
	}
	return t, true
}
