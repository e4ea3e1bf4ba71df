package ai

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/config"
	"github.com/udisondev/drifter/internal/model"
)

// DrifterAI is the pursuit state machine of one hostile agent.
// State machine: PATROL → INVESTIGATE (→ search) → CHASE.
// Every method except Status must be called from the simulation goroutine.
type DrifterAI struct {
	id        uint32
	cfg       config.Drifter
	isRunning atomic.Bool
	tick      uint64

	world      SpatialQuery
	mover      Mover
	breath     BreathInput
	perception *Perception
	threat     *ThreatArbiter

	state model.PursuitState

	// Patrol
	waypoints     []model.Location
	waypointIndex int
	suspicion     float64 // [0,1], patrol only

	// Investigate
	lastKnown        model.Location
	investigateTimer float64

	// Chase
	chaseTarget    uuid.UUID
	loseSightTimer float64
	lastSeen       model.Location

	// Search
	search searchEncounter

	out    outbox
	status atomic.Pointer[AgentStatus]
}

// AgentStatus is a read-only snapshot for observers.
type AgentStatus struct {
	AgentID   uint32
	Tick      uint64
	State     model.PursuitState
	Position  model.Location
	Forward   model.Location
	Target    uuid.UUID
	Suspicion float64
	Searching bool
}

// NewDrifterAI creates a pursuit controller.
// breath may be nil; a nil input never holds its breath.
func NewDrifterAI(id uint32, cfg config.Drifter, world SpatialQuery, mover Mover, breath BreathInput) *DrifterAI {
	perception := NewPerception(cfg, world)
	ai := &DrifterAI{
		id:         id,
		cfg:        cfg,
		world:      world,
		mover:      mover,
		breath:     breath,
		perception: perception,
		threat:     NewThreatArbiter(cfg, world, perception),
		state:      model.StatePatrol,
	}
	ai.publishStatus()
	return ai
}

// SetWaypoints sets the cyclic patrol route. An empty route disables patrol movement.
func (ai *DrifterAI) SetWaypoints(points []model.Location) {
	ai.waypoints = append(ai.waypoints[:0], points...)
	ai.waypointIndex = 0
}

// AgentID returns the agent identifier.
func (ai *DrifterAI) AgentID() uint32 {
	return ai.id
}

// Start starts the controller in PATROL.
func (ai *DrifterAI) Start() {
	ai.isRunning.Store(true)
	ai.state = model.StatePatrol
	ai.mover.SetSpeed(ai.cfg.PatrolSpeed)
	ai.mover.Resume()
	ai.goToNextWaypoint()
	ai.publishStatus()

	if IsDebugEnabled() {
		slog.Debug("drifter AI started",
			"agentID", ai.id,
			"waypoints", len(ai.waypoints))
	}
}

// Stop stops the controller and forgets every target.
func (ai *DrifterAI) Stop() {
	ai.isRunning.Store(false)
	if ai.search.active() {
		ai.endSearch()
	}
	ai.chaseTarget = uuid.Nil
	ai.threat.Reset()

	if IsDebugEnabled() {
		slog.Debug("drifter AI stopped", "agentID", ai.id)
	}
}

// CurrentState returns the active pursuit state.
func (ai *DrifterAI) CurrentState() model.PursuitState {
	return ai.state
}

// ChaseTarget returns the committed target, uuid.Nil when none.
func (ai *DrifterAI) ChaseTarget() uuid.UUID {
	return ai.chaseTarget
}

// Suspicion returns the patrol suspicion gauge in [0,1].
func (ai *DrifterAI) Suspicion() float64 {
	return ai.suspicion
}

// IsSearching reports whether a search encounter is running.
func (ai *DrifterAI) IsSearching() bool {
	return ai.search.active()
}

// Threat exposes the arbiter for inspection.
func (ai *DrifterAI) Threat() *ThreatArbiter {
	return ai.threat
}

// Status returns the snapshot published at the end of the last tick.
// Safe to call from any goroutine.
func (ai *DrifterAI) Status() AgentStatus {
	return *ai.status.Load()
}

// DrainEvents appends buffered events to dst and clears the outbox.
func (ai *DrifterAI) DrainEvents(dst []Event) []Event {
	return ai.out.drain(dst)
}

// Tick advances the agent by dt seconds.
func (ai *DrifterAI) Tick(dt float64) {
	if !ai.isRunning.Load() {
		return
	}
	if dt < 0 {
		dt = 0
	}
	ai.tick++

	// Threat scoring runs before any transition.
	for _, id := range ai.threat.Update(ai.mover.Position(), ai.mover.Forward()) {
		if id == ai.chaseTarget {
			ai.chaseTarget = uuid.Nil
		}
	}

	switch ai.state {
	case model.StatePatrol:
		ai.thinkPatrol(dt)
	case model.StateInvestigate:
		ai.thinkInvestigate(dt)
	case model.StateChase:
		ai.thinkChase(dt)
	}

	if !ai.search.active() {
		ai.checkKillProximity()
	}

	ai.publishStatus()
}

// thinkPatrol: sight or proximity → CHASE, hearing fills the suspicion gauge, then walk the route.
func (ai *DrifterAI) thinkPatrol(dt float64) {
	pos := ai.mover.Position()

	if seen, ok := ai.perception.Vision(pos, ai.mover.Forward()); ok {
		ai.suspicion = 0
		ai.startChaseOn(seen)
		return
	}
	if sensed, ok := ai.perception.Proximity(pos); ok {
		ai.suspicion = 0
		ai.startChaseOn(sensed)
		return
	}

	if heard, ok := ai.perception.Hearing(pos); ok {
		ai.suspicion = clamp01(ai.suspicion + ai.cfg.SuspicionBuildRate*heard.NoiseLevel*dt)
		ai.lastKnown = heard.Position

		if ai.suspicion >= 1 {
			ai.suspicion = 0
			ai.setState(model.StateInvestigate)
			return
		}
	} else {
		ai.suspicion = clamp01(ai.suspicion - ai.cfg.SuspicionDecayRate*dt)
	}

	if len(ai.waypoints) == 0 {
		return
	}
	if ai.arrived() {
		ai.goToNextWaypoint()
	}
}

func (ai *DrifterAI) goToNextWaypoint() {
	if len(ai.waypoints) == 0 {
		return
	}
	ai.mover.SetDestination(ai.waypoints[ai.waypointIndex])
	ai.waypointIndex = (ai.waypointIndex + 1) % len(ai.waypoints)
}

// thinkInvestigate walks to the last known position, refreshes it from sounds,
// and checks nearby hiding spots on arrival.
func (ai *DrifterAI) thinkInvestigate(dt float64) {
	if ai.search.active() {
		ai.thinkSearch(dt)
		return
	}

	pos := ai.mover.Position()

	if seen, ok := ai.perception.Vision(pos, ai.mover.Forward()); ok {
		ai.startChaseOn(seen)
		return
	}
	if sensed, ok := ai.perception.Proximity(pos); ok {
		ai.startChaseOn(sensed)
		return
	}

	if heard, ok := ai.perception.Hearing(pos); ok {
		ai.lastKnown = heard.Position
		ai.investigateTimer = ai.cfg.InvestigateTimeout
		ai.mover.SetDestination(ai.lastKnown)
	}

	ai.investigateTimer -= dt
	if ai.investigateTimer <= 0 {
		ai.setState(model.StatePatrol)
		return
	}

	if !ai.arrived() {
		return
	}
	if spot := ai.findHidingSpot(pos); spot != nil {
		if pos.Distance(spot.Position()) <= ai.cfg.SearchRadius {
			ai.startSearch(spot)
			return
		}
		ai.mover.SetDestination(spot.Position())
		return
	}

	// Nothing here: give up sooner.
	ai.investigateTimer -= dt * (ai.cfg.EmptyArrivalDrain - 1)
	if ai.investigateTimer <= 0 {
		ai.setState(model.StatePatrol)
	}
}

// thinkChase keeps pursuit on the committed target and falls back to INVESTIGATE when it is lost.
func (ai *DrifterAI) thinkChase(dt float64) {
	pos := ai.mover.Position()

	target, ok := ai.resolveChaseTarget()
	if !ok {
		if fallback, found := ai.detectDirect(pos); found {
			ai.startChaseOn(fallback)
			return
		}
		ai.lastKnown = ai.lastSeen
		ai.chaseTarget = uuid.Nil
		ai.setState(model.StateInvestigate)
		return
	}

	// Hidden mid-chase: only the last sensed position is used, never the live one.
	if target.Concealed {
		if at, known := ai.threat.LastKnown(target.ID); known {
			ai.lastKnown = at
		} else {
			ai.lastKnown = ai.lastSeen
		}
		ai.chaseTarget = uuid.Nil
		ai.setState(model.StateInvestigate)
		return
	}

	if better, seen := ai.perception.Vision(pos, ai.mover.Forward()); seen && better.ID != target.ID {
		if ai.threat.ShouldSwitch(target.ID, better.ID) {
			ai.threat.Remember(target.ID, ai.lastSeen)

			if IsDebugEnabled() {
				slog.Debug("drifter AI switched target",
					"agentID", ai.id,
					"from", target.ID,
					"to", better.ID,
					"fromScore", ai.threat.Score(target.ID),
					"toScore", ai.threat.Score(better.ID))
			}

			ai.startChaseOn(better)
			return
		}
	}

	if ai.perception.HasLineOfSight(pos, target) || pos.Distance(target.Position) <= ai.cfg.ProximityRadius {
		ai.loseSightTimer = ai.cfg.LoseSightDuration
		ai.lastSeen = target.Position
		ai.threat.Remember(target.ID, target.Position)
		ai.mover.SetDestination(target.Position)
		return
	}

	ai.loseSightTimer -= dt

	// A sound from the same target keeps the chase alive for at least half the window.
	if heard, found := ai.perception.Hearing(pos); found && heard.ID == target.ID {
		ai.loseSightTimer = max(ai.loseSightTimer, ai.cfg.LoseSightDuration*0.5)
		ai.lastSeen = heard.Position
	}

	ai.mover.SetDestination(ai.lastSeen)

	if ai.loseSightTimer <= 0 {
		ai.lastKnown = ai.lastSeen
		ai.chaseTarget = uuid.Nil
		ai.setState(model.StateInvestigate)
	}
}

func (ai *DrifterAI) resolveChaseTarget() (model.Target, bool) {
	if ai.chaseTarget == uuid.Nil {
		return model.Target{}, false
	}
	return ai.world.Target(ai.chaseTarget)
}

// detectDirect returns a target found by vision, else by proximity.
func (ai *DrifterAI) detectDirect(pos model.Location) (model.Target, bool) {
	if seen, ok := ai.perception.Vision(pos, ai.mover.Forward()); ok {
		return seen, true
	}
	return ai.perception.Proximity(pos)
}

func (ai *DrifterAI) startChaseOn(t model.Target) {
	ai.chaseTarget = t.ID
	ai.lastSeen = t.Position
	ai.threat.Remember(t.ID, t.Position)

	if ai.state == model.StateChase {
		ai.loseSightTimer = ai.cfg.LoseSightDuration
		ai.mover.SetDestination(t.Position)
		return
	}
	ai.setState(model.StateChase)
}

// findHidingSpot returns the nearest occupied spot that is neither cooling down nor already searched.
func (ai *DrifterAI) findHidingSpot(pos model.Location) *model.HidingSpot {
	var best *model.HidingSpot
	bestDist := 0.0

	for _, spot := range ai.world.OverlapHidingSpots(pos, ai.cfg.SpotScanRadius) {
		if spot == nil || !spot.IsOccupied() || spot.OnCooldown() || spot.IsBeingSearched() {
			continue
		}
		d := pos.Distance(spot.Position())
		if best == nil || d < bestDist {
			best = spot
			bestDist = d
		}
	}

	return best
}

func (ai *DrifterAI) startSearch(spot *model.HidingSpot) {
	ai.mover.Stop()
	ai.mover.FaceTowards(spot.Position())
	ai.search.begin(spot, ai.cfg.SearchDuration)

	ai.out.push(Event{
		Kind:      EventSearchChanged,
		AgentID:   ai.id,
		Tick:      ai.tick,
		Searching: true,
		SpotID:    spot.ID(),
	})

	slog.Info("drifter searching hiding spot",
		"agentID", ai.id,
		"spot", spot.Name())
}

func (ai *DrifterAI) thinkSearch(dt float64) {
	spot := ai.search.spot

	switch ai.search.tick(dt, ai.breath) {
	case SearchPending:
		return

	case SearchVacated:
		ai.endSearch()

	case SearchSurvived:
		slog.Info("hiding spot occupant held breath, drifter gives up",
			"agentID", ai.id,
			"spot", spot.Name())

		// The world counts the cooldown down.
		spot.StartCooldown(ai.cfg.InvestigateTimeout)
		ai.endSearch()
		ai.setState(model.StatePatrol)

	case SearchCaught:
		ai.endSearch()
		occupant, ok := ai.world.EjectOccupant(spot.ID())
		if !ok {
			return
		}

		slog.Info("hiding spot occupant pulled out",
			"agentID", ai.id,
			"spot", spot.Name(),
			"victim", occupant)

		ai.kill(occupant)
	}
}

func (ai *DrifterAI) endSearch() {
	spotID := uint32(0)
	if ai.search.spot != nil {
		spotID = ai.search.spot.ID()
	}
	ai.search.reset()
	ai.mover.Resume()

	ai.out.push(Event{
		Kind:      EventSearchChanged,
		AgentID:   ai.id,
		Tick:      ai.tick,
		Searching: false,
		SpotID:    spotID,
	})
}

func (ai *DrifterAI) checkKillProximity() {
	if ai.chaseTarget == uuid.Nil {
		return
	}

	target, ok := ai.world.Target(ai.chaseTarget)
	if !ok || target.Concealed {
		return
	}

	if ai.mover.Position().Distance(target.Position) <= ai.cfg.KillRadius {
		ai.kill(target.ID)
	}
}

func (ai *DrifterAI) kill(victim uuid.UUID) {
	slog.Info("drifter killed target",
		"agentID", ai.id,
		"victim", victim)

	ai.threat.Forget(victim)
	ai.out.push(Event{
		Kind:    EventKilled,
		AgentID: ai.id,
		Tick:    ai.tick,
		Victim:  victim,
	})

	ai.chaseTarget = uuid.Nil
	ai.setState(model.StatePatrol)
}

// setState enters a new state. Re-entering the current state is a no-op.
func (ai *DrifterAI) setState(next model.PursuitState) {
	if ai.state == next {
		return
	}
	prev := ai.state
	ai.state = next

	if prev == model.StateInvestigate && ai.search.active() {
		ai.endSearch()
	}

	switch next {
	case model.StatePatrol:
		ai.mover.SetSpeed(ai.cfg.PatrolSpeed)
		ai.chaseTarget = uuid.Nil
		ai.mover.Resume()
		ai.goToNextWaypoint()

	case model.StateInvestigate:
		ai.mover.SetSpeed(ai.cfg.InvestigateSpeed)
		ai.investigateTimer = ai.cfg.InvestigateTimeout
		ai.mover.SetDestination(ai.lastKnown)

	case model.StateChase:
		ai.mover.SetSpeed(ai.cfg.ChaseSpeed)
		ai.loseSightTimer = ai.cfg.LoseSightDuration
		if target, ok := ai.resolveChaseTarget(); ok {
			ai.lastSeen = target.Position
		}
		ai.mover.SetDestination(ai.lastSeen)
	}

	ai.out.push(Event{
		Kind:    EventStateChanged,
		AgentID: ai.id,
		Tick:    ai.tick,
		State:   next,
	})

	if IsDebugEnabled() {
		slog.Debug("drifter AI state changed",
			"agentID", ai.id,
			"from", prev,
			"to", next,
			"target", ai.chaseTarget)
	}
}

func (ai *DrifterAI) arrived() bool {
	return !ai.mover.PathPending() && ai.mover.RemainingDistance() <= ai.cfg.WaypointReachThreshold
}

func (ai *DrifterAI) publishStatus() {
	var pos, fwd model.Location
	if ai.mover != nil {
		pos, fwd = ai.mover.Position(), ai.mover.Forward()
	}
	ai.status.Store(&AgentStatus{
		AgentID:   ai.id,
		Tick:      ai.tick,
		State:     ai.state,
		Position:  pos,
		Forward:   fwd,
		Target:    ai.chaseTarget,
		Suspicion: ai.suspicion,
		Searching: ai.search.active(),
	})
}

// ForceChase commits to a target immediately with maximal threat.
// Unknown or nil targets are ignored.
func (ai *DrifterAI) ForceChase(id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}
	target, ok := ai.world.Target(id)
	if !ok {
		if IsDebugEnabled() {
			slog.Debug("force chase ignored, unknown target", "agentID", ai.id, "target", id)
		}
		return false
	}

	ai.threat.Force(id, target.Position)
	ai.startChaseOn(target)
	return true
}

// ForcePatrol returns the agent to PATROL.
func (ai *DrifterAI) ForcePatrol() {
	ai.setState(model.StatePatrol)
}

// InvestigatePosition sends the agent to check a point (thrown object, alarm).
// A running chase is never interrupted; returns false in that case.
func (ai *DrifterAI) InvestigatePosition(at model.Location) bool {
	switch ai.state {
	case model.StateChase:
		return false

	case model.StatePatrol:
		ai.lastKnown = at
		ai.setState(model.StateInvestigate)

	case model.StateInvestigate:
		ai.lastKnown = at
		ai.investigateTimer = ai.cfg.InvestigateTimeout
		if !ai.search.active() {
			ai.mover.SetDestination(at)
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
