package model

import "github.com/google/uuid"

// HidingSpot is a place a target can hide in (locker, under a desk).
// Occupancy is driven by the hiding interaction; the searching agent owns the
// being-searched flag and the post-search cooldown.
type HidingSpot struct {
	id       uint32
	name     string
	position Location

	occupant      uuid.UUID
	beingSearched bool
	cooldown      float64 // seconds left before the spot may be searched again
}

// NewHidingSpot creates an empty hiding spot.
func NewHidingSpot(id uint32, name string, position Location) *HidingSpot {
	return &HidingSpot{id: id, name: name, position: position}
}

// ID returns the spot identifier.
func (h *HidingSpot) ID() uint32 { return h.id }

// Name returns the spot display name.
func (h *HidingSpot) Name() string { return h.name }

// Position returns the spot position.
func (h *HidingSpot) Position() Location { return h.position }

// IsOccupied reports whether a target is hiding here.
func (h *HidingSpot) IsOccupied() bool { return h.occupant != uuid.Nil }

// Occupant returns the hidden target, uuid.Nil when empty.
func (h *HidingSpot) Occupant() uuid.UUID { return h.occupant }

// IsBeingSearched reports whether an agent is searching this spot.
func (h *HidingSpot) IsBeingSearched() bool { return h.beingSearched }

// Enter puts a target in the spot. Fails if the spot is taken.
func (h *HidingSpot) Enter(id uuid.UUID) bool {
	if h.IsOccupied() || id == uuid.Nil {
		return false
	}
	h.occupant = id
	return true
}

// Exit lets the occupant leave voluntarily.
// Leaving is refused while the spot is being searched.
func (h *HidingSpot) Exit(id uuid.UUID) bool {
	if h.occupant != id || h.beingSearched {
		return false
	}
	h.occupant = uuid.Nil
	return true
}

// ForceExit empties the spot regardless of search state and returns who was inside.
func (h *HidingSpot) ForceExit() (uuid.UUID, bool) {
	if !h.IsOccupied() {
		return uuid.Nil, false
	}
	occupant := h.occupant
	h.occupant = uuid.Nil
	h.beingSearched = false
	return occupant, true
}

// BeginSearch marks the spot as being searched.
func (h *HidingSpot) BeginSearch() { h.beingSearched = true }

// EndSearch clears the being-searched mark.
func (h *HidingSpot) EndSearch() { h.beingSearched = false }

// StartCooldown prevents the spot from being searched for d seconds.
func (h *HidingSpot) StartCooldown(d float64) {
	if d > h.cooldown {
		h.cooldown = d
	}
}

// TickCooldown counts the cooldown down by dt seconds.
// Returns true while the cooldown is still running.
func (h *HidingSpot) TickCooldown(dt float64) bool {
	if h.cooldown <= 0 {
		return false
	}
	h.cooldown -= dt
	if h.cooldown <= 0 {
		h.cooldown = 0
		return false
	}
	return true
}

// OnCooldown reports whether the spot was searched recently.
func (h *HidingSpot) OnCooldown() bool { return h.cooldown > 0 }

// Cooldown returns the remaining cooldown in seconds.
func (h *HidingSpot) Cooldown() float64 { return h.cooldown }
