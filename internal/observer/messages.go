package observer

import (
	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/ai"
	"github.com/udisondev/drifter/internal/model"
)

// Message types sent to observers.
const (
	typeWelcome  = "welcome"
	typeEvent    = "event"
	typeSnapshot = "snapshot"
	typeError    = "error"
)

// point is a location on the wire: [x, y, z].
type point [3]float64

func toPoint(l model.Location) point {
	return point{l.X, l.Y, l.Z}
}

func (p point) location() model.Location {
	return model.NewLocation(p[0], p[1], p[2])
}

type eventMessage struct {
	Type      string `json:"type"`
	Kind      string `json:"kind"`
	AgentID   uint32 `json:"agentId"`
	Tick      uint64 `json:"tick"`
	State     string `json:"state,omitempty"`
	Searching *bool  `json:"searching,omitempty"`
	SpotID    uint32 `json:"spotId,omitempty"`
	Victim    string `json:"victim,omitempty"`
}

func newEventMessage(e ai.Event) eventMessage {
	msg := eventMessage{
		Type:    typeEvent,
		Kind:    e.Kind.String(),
		AgentID: e.AgentID,
		Tick:    e.Tick,
	}
	switch e.Kind {
	case ai.EventStateChanged:
		msg.State = e.State.String()
	case ai.EventSearchChanged:
		searching := e.Searching
		msg.Searching = &searching
		msg.SpotID = e.SpotID
	case ai.EventKilled:
		msg.Victim = e.Victim.String()
	}
	return msg
}

type agentView struct {
	ID        uint32  `json:"id"`
	State     string  `json:"state"`
	Position  point   `json:"position"`
	Forward   point   `json:"forward"`
	Target    string  `json:"target,omitempty"`
	Suspicion float64 `json:"suspicion"`
	Searching bool    `json:"searching"`
}

type targetView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Position  point   `json:"position"`
	Noise     float64 `json:"noise"`
	Concealed bool    `json:"concealed"`
}

type snapshotMessage struct {
	Type    string       `json:"type"`
	Tick    uint64       `json:"tick"`
	Agents  []agentView  `json:"agents"`
	Targets []targetView `json:"targets"`
}

// welcomeMessage is the first message of every connection:
// the current snapshot plus the last state event of each agent.
type welcomeMessage struct {
	Type       string          `json:"type"`
	Snapshot   snapshotMessage `json:"snapshot"`
	LastStates []eventMessage  `json:"lastStates"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newAgentView(s ai.AgentStatus) agentView {
	v := agentView{
		ID:        s.AgentID,
		State:     s.State.String(),
		Position:  toPoint(s.Position),
		Forward:   toPoint(s.Forward),
		Suspicion: s.Suspicion,
		Searching: s.Searching,
	}
	if s.Target != uuid.Nil {
		v.Target = s.Target.String()
	}
	return v
}

func newTargetView(t model.Target) targetView {
	return targetView{
		ID:        t.ID.String(),
		Name:      t.Name,
		Position:  toPoint(t.Position),
		Noise:     t.NoiseLevel,
		Concealed: t.Concealed,
	}
}
