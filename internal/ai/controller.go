package ai

import (
	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/model"
)

// Controller represents a pursuit AI driven by the tick loop
type Controller interface {
	// Start starts AI controller
	Start()

	// Stop stops AI controller
	Stop()

	// AgentID returns the agent this controller drives
	AgentID() uint32

	// CurrentState returns current pursuit state
	CurrentState() model.PursuitState

	// Tick advances the controller by dt seconds
	Tick(dt float64)

	// DrainEvents appends events produced since the last drain to dst
	DrainEvents(dst []Event) []Event
}

// Commander accepts scripted overrides (cutscenes, director, debug console).
type Commander interface {
	ForceChase(id uuid.UUID) bool
	ForcePatrol()
	InvestigatePosition(at model.Location) bool
}

// StatusReporter publishes a snapshot readable from any goroutine.
type StatusReporter interface {
	Status() AgentStatus
}

var (
	_ Controller     = (*DrifterAI)(nil)
	_ Commander      = (*DrifterAI)(nil)
	_ StatusReporter = (*DrifterAI)(nil)
)
