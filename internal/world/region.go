package world

import (
	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/model"
)

// Region is a single grid cell holding the targets and hiding spots inside it.
// Not concurrent-safe: guarded by World.mu.
type Region struct {
	rx, ry int32

	targets map[uuid.UUID]struct{}
	spots   []*model.HidingSpot
}

// NewRegion creates an empty region
func NewRegion(rx, ry int32) *Region {
	return &Region{
		rx:      rx,
		ry:      ry,
		targets: make(map[uuid.UUID]struct{}),
	}
}

// RX returns region X index
func (r *Region) RX() int32 {
	return r.rx
}

// RY returns region Y index
func (r *Region) RY() int32 {
	return r.ry
}

func (r *Region) addTarget(id uuid.UUID) {
	r.targets[id] = struct{}{}
}

func (r *Region) removeTarget(id uuid.UUID) {
	delete(r.targets, id)
}

func (r *Region) addSpot(s *model.HidingSpot) {
	r.spots = append(r.spots, s)
}

// ForEachTarget iterates over target IDs in this region.
// If fn returns false, iteration stops.
func (r *Region) ForEachTarget(fn func(uuid.UUID) bool) {
	for id := range r.targets {
		if !fn(id) {
			return
		}
	}
}

// TargetCount returns the number of targets in this region.
func (r *Region) TargetCount() int {
	return len(r.targets)
}

// Empty reports whether the region holds nothing.
func (r *Region) Empty() bool {
	return len(r.targets) == 0 && len(r.spots) == 0
}
