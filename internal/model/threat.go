package model

import "github.com/google/uuid"

// ThreatRecord tracks accumulated threat and the last sensed position of one target.
type ThreatRecord struct {
	Score     float64
	LastKnown Location
}

// ThreatTable holds threat records keyed by target identity.
// Not safe for concurrent use: a table belongs to exactly one agent and is
// only touched from the simulation goroutine.
type ThreatTable struct {
	entries map[uuid.UUID]*ThreatRecord
}

// NewThreatTable creates a new empty ThreatTable.
func NewThreatTable() *ThreatTable {
	return &ThreatTable{entries: make(map[uuid.UUID]*ThreatRecord)}
}

// AddThreat adds threat for a target and records where it was sensed.
// Creates the entry if it does not exist. Negative amounts are ignored.
func (t *ThreatTable) AddThreat(id uuid.UUID, amount float64, at Location) {
	rec := t.getOrCreate(id)
	if amount > 0 {
		rec.Score += amount
	}
	rec.LastKnown = at
}

// SetScore overwrites the score of a target, creating the entry if needed.
// Scores are floored at zero.
func (t *ThreatTable) SetScore(id uuid.UUID, score float64) {
	if score < 0 {
		score = 0
	}
	t.getOrCreate(id).Score = score
}

// SetLastKnown records a position for a target, creating the entry if needed.
func (t *ThreatTable) SetLastKnown(id uuid.UUID, at Location) {
	t.getOrCreate(id).LastKnown = at
}

// Score returns the current score of a target, 0 if unknown.
func (t *ThreatTable) Score(id uuid.UUID) float64 {
	if rec, ok := t.entries[id]; ok {
		return rec.Score
	}
	return 0
}

// Get returns the record for a target.
// Returns nil if not found.
func (t *ThreatTable) Get(id uuid.UUID) *ThreatRecord {
	return t.entries[id]
}

// MostThreatening returns the identity with the highest score.
// Returns uuid.Nil if the table is empty.
func (t *ThreatTable) MostThreatening() uuid.UUID {
	best := uuid.Nil
	var bestScore float64
	for id, rec := range t.entries {
		if best == uuid.Nil || rec.Score > bestScore {
			best = id
			bestScore = rec.Score
		}
	}
	return best
}

// Range calls fn for every record. fn must not add or remove entries.
func (t *ThreatTable) Range(fn func(id uuid.UUID, rec *ThreatRecord) bool) {
	for id, rec := range t.entries {
		if !fn(id, rec) {
			return
		}
	}
}

// Remove drops a target from the table.
func (t *ThreatTable) Remove(id uuid.UUID) {
	delete(t.entries, id)
}

// Clear removes all entries.
func (t *ThreatTable) Clear() {
	clear(t.entries)
}

// Len returns the number of tracked targets.
func (t *ThreatTable) Len() int {
	return len(t.entries)
}

func (t *ThreatTable) getOrCreate(id uuid.UUID) *ThreatRecord {
	rec, ok := t.entries[id]
	if !ok {
		rec = &ThreatRecord{}
		t.entries[id] = rec
	}
	return rec
}
