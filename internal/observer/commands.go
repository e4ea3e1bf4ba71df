package observer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/ai"
)

// Command types accepted from observers.
const (
	cmdForceChase  = "forceChase"
	cmdForcePatrol = "forcePatrol"
	cmdInvestigate = "investigate"
)

var errUnknownCommand = errors.New("unknown command")

type clientCommand struct {
	Type     string `json:"type"`
	AgentID  uint32 `json:"agentId"`
	Target   string `json:"target,omitempty"`
	Position *point `json:"position,omitempty"`
}

// parseCommand validates a raw observer message and returns the agent it
// addresses and the override to run on the simulation goroutine.
func parseCommand(payload []byte) (uint32, func(ai.Commander), error) {
	var cmd clientCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return 0, nil, fmt.Errorf("decoding command: %w", err)
	}
	if cmd.AgentID == 0 {
		return 0, nil, fmt.Errorf("%s: agentId is required", cmd.Type)
	}

	agentID := cmd.AgentID
	switch cmd.Type {
	case cmdForceChase:
		id, err := uuid.Parse(cmd.Target)
		if err != nil {
			return 0, nil, fmt.Errorf("forceChase: invalid target %q: %w", cmd.Target, err)
		}
		return agentID, func(c ai.Commander) {
			if !c.ForceChase(id) {
				slog.Debug("forceChase ignored", "agentID", agentID, "target", id)
			}
		}, nil

	case cmdForcePatrol:
		return agentID, func(c ai.Commander) {
			c.ForcePatrol()
		}, nil

	case cmdInvestigate:
		if cmd.Position == nil {
			return 0, nil, errors.New("investigate: position is required")
		}
		at := cmd.Position.location()
		return agentID, func(c ai.Commander) {
			if !c.InvestigatePosition(at) {
				slog.Debug("investigate ignored", "agentID", agentID, "position", at)
			}
		}, nil

	default:
		return 0, nil, fmt.Errorf("%w %q", errUnknownCommand, cmd.Type)
	}
}
