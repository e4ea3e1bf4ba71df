package ai

import (
	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/model"
)

// SearchOutcome is the result of one search tick.
type SearchOutcome uint8

const (
	// SearchPending - timer still running
	SearchPending SearchOutcome = iota
	// SearchVacated - the spot emptied before the timer ran out; no resolution
	SearchVacated
	// SearchSurvived - the occupant held its breath for the whole search
	SearchSurvived
	// SearchCaught - the occupant breathed at least once
	SearchCaught
)

// String returns human-readable outcome
func (o SearchOutcome) String() string {
	switch o {
	case SearchPending:
		return "PENDING"
	case SearchVacated:
		return "VACATED"
	case SearchSurvived:
		return "SURVIVED"
	case SearchCaught:
		return "CAUGHT"
	default:
		return "UNKNOWN"
	}
}

// searchEncounter is the hold-breath minigame run while an agent interrogates a spot.
// The zero value is inactive.
type searchEncounter struct {
	spot      *model.HidingSpot
	occupant  uuid.UUID
	remaining float64
	held      bool // every sampled tick so far was holding
}

func (s *searchEncounter) active() bool {
	return s.spot != nil
}

func (s *searchEncounter) begin(spot *model.HidingSpot, duration float64) {
	s.spot = spot
	s.occupant = spot.Occupant()
	s.remaining = duration
	s.held = true
	spot.BeginSearch()
}

// tick samples the occupant's input once and advances the timer.
func (s *searchEncounter) tick(dt float64, breath BreathInput) SearchOutcome {
	if s.spot == nil || !s.spot.IsOccupied() || s.spot.Occupant() != s.occupant {
		return SearchVacated
	}

	if breath == nil || !breath.IsHoldingBreath(s.occupant) {
		s.held = false
	}

	s.remaining -= dt
	if s.remaining > 0 {
		return SearchPending
	}
	if s.held {
		return SearchSurvived
	}
	return SearchCaught
}

// reset releases the spot and returns the encounter to its zero value.
func (s *searchEncounter) reset() {
	if s.spot != nil {
		s.spot.EndSearch()
	}
	*s = searchEncounter{}
}
