package model

import "github.com/google/uuid"

// Target is a read-only snapshot of a potential human target.
// Supplied each tick by the player-state owner; the pursuit core never mutates it.
type Target struct {
	ID       uuid.UUID
	Name     string
	Position Location

	// NoiseLevel describes how loud the target currently moves, in [0,1].
	// 0 = still, ~0.3 = crouch-walk, 1 = sprint.
	NoiseLevel float64

	// Concealed is set while the target occupies a hiding spot.
	Concealed bool
}

// Valid reports whether the snapshot carries an identity.
func (t Target) Valid() bool {
	return t.ID != uuid.Nil
}

// ClampNoise clamps a noise level to [0,1].
func ClampNoise(n float64) float64 {
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
