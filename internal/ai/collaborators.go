package ai

import (
	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/model"
)

// RayHit describes the first thing a ray struck.
// Target is uuid.Nil when the hit was static obstruction geometry.
type RayHit struct {
	Point    model.Location
	Distance float64
	Target   uuid.UUID
}

// SpatialQuery is the world-geometry collaborator consumed by the pursuit core.
// Implementations only report; they never mutate agent state.
type SpatialQuery interface {
	// OverlapTargets returns every target whose position lies within radius of center.
	// Concealed targets may be returned; the core filters them.
	OverlapTargets(center model.Location, radius float64) []model.Target

	// OverlapHidingSpots returns every hiding spot within radius of center.
	OverlapHidingSpots(center model.Location, radius float64) []*model.HidingSpot

	// Raycast returns the nearest obstruction hit along dir, or the body of
	// target when nothing blocks it first. Other targets' bodies never block.
	Raycast(origin, dir model.Location, maxDistance float64, target uuid.UUID) (RayHit, bool)

	// Target resolves a live target by identity.
	// ok is false once the target disconnected or was destroyed.
	Target(id uuid.UUID) (model.Target, bool)

	// EjectOccupant forces the occupant out of a hiding spot and returns it.
	EjectOccupant(spotID uint32) (uuid.UUID, bool)
}

// Mover is the movement-driver collaborator: it owns the agent's position and
// turns destinations into motion.
type Mover interface {
	Position() model.Location
	Forward() model.Location
	FaceTowards(point model.Location)

	SetDestination(point model.Location)
	SetSpeed(v float64)
	PathPending() bool
	RemainingDistance() float64

	Stop()
	Resume()
}

// BreathInput reports whether a hidden target is holding its breath this tick.
type BreathInput interface {
	IsHoldingBreath(occupant uuid.UUID) bool
}

// BreathFunc adapts a function to BreathInput.
type BreathFunc func(occupant uuid.UUID) bool

// IsHoldingBreath implements BreathInput.
func (f BreathFunc) IsHoldingBreath(occupant uuid.UUID) bool {
	return f(occupant)
}
