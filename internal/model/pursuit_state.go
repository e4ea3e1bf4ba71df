package model

// PursuitState is the top-level behavior state of a hostile agent.
// Exactly one state is active at a time.
type PursuitState int32

const (
	// StatePatrol - agent walks its waypoint loop and listens
	StatePatrol PursuitState = iota
	// StateInvestigate - agent walks to a disturbance and checks hiding spots
	StateInvestigate
	// StateChase - agent pursues a committed target
	StateChase
)

// String returns human-readable state name
func (s PursuitState) String() string {
	switch s {
	case StatePatrol:
		return "PATROL"
	case StateInvestigate:
		return "INVESTIGATE"
	case StateChase:
		return "CHASE"
	default:
		return "UNKNOWN"
	}
}

// ParsePursuitState converts a state name back to its value.
func ParsePursuitState(s string) (PursuitState, bool) {
	switch s {
	case "PATROL":
		return StatePatrol, true
	case "INVESTIGATE":
		return StateInvestigate, true
	case "CHASE":
		return StateChase, true
	default:
		return StatePatrol, false
	}
}
