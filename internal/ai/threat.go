package ai

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/config"
	"github.com/udisondev/drifter/internal/model"
)

// ThreatArbiter accumulates per-target threat from every sense and decides
// when a chase may move to another target.
// One arbiter per agent; only the simulation goroutine touches it.
type ThreatArbiter struct {
	cfg        config.Drifter
	world      SpatialQuery
	perception *Perception
	table      *model.ThreatTable

	// scratch buffers reused every tick
	sensed map[uuid.UUID]struct{}
	doomed []uuid.UUID
}

// NewThreatArbiter creates an arbiter with an empty threat table.
func NewThreatArbiter(cfg config.Drifter, world SpatialQuery, perception *Perception) *ThreatArbiter {
	return &ThreatArbiter{
		cfg:        cfg,
		world:      world,
		perception: perception,
		table:      model.NewThreatTable(),
		sensed:     make(map[uuid.UUID]struct{}),
	}
}

// Update scores every target in sensing range, decays the rest and purges
// records of targets that no longer exist.
// Returns the identities purged as stale this pass.
func (a *ThreatArbiter) Update(origin, forward model.Location) []uuid.UUID {
	clear(a.sensed)

	for _, t := range a.world.OverlapTargets(origin, a.cfg.MaxSenseRadius()) {
		if t.Concealed || !t.Valid() {
			continue
		}

		s := a.perception.Classify(origin, forward, t)
		if !s.Any() {
			continue
		}

		added := 0.0
		if s.Seen {
			added += a.cfg.VisionThreat
		}
		if s.Heard {
			added += a.cfg.HearingThreatFactor * t.NoiseLevel / max(s.Distance, minHearingDistance)
		}
		if s.Sensed {
			added += a.cfg.ProximityThreat
		}

		a.table.AddThreat(t.ID, added, t.Position)
		a.sensed[t.ID] = struct{}{}
	}

	a.decay()
	return a.purgeStale()
}

// decay multiplies every unsensed score by the decay factor and forgets
// records that fall below the threshold. Removals are applied after the sweep.
func (a *ThreatArbiter) decay() {
	a.doomed = a.doomed[:0]

	a.table.Range(func(id uuid.UUID, rec *model.ThreatRecord) bool {
		if _, ok := a.sensed[id]; ok {
			return true
		}
		decayed := rec.Score * a.cfg.ThreatDecay
		if decayed < a.cfg.ThreatForgetBelow {
			a.doomed = append(a.doomed, id)
			return true
		}
		rec.Score = decayed
		return true
	})

	for _, id := range a.doomed {
		a.table.Remove(id)
	}
}

// purgeStale drops records whose target disconnected or was destroyed.
func (a *ThreatArbiter) purgeStale() []uuid.UUID {
	a.doomed = a.doomed[:0]

	a.table.Range(func(id uuid.UUID, _ *model.ThreatRecord) bool {
		if _, ok := a.world.Target(id); !ok {
			a.doomed = append(a.doomed, id)
		}
		return true
	})

	if len(a.doomed) == 0 {
		return nil
	}

	purged := make([]uuid.UUID, len(a.doomed))
	copy(purged, a.doomed)
	for _, id := range purged {
		a.table.Remove(id)
	}

	if IsDebugEnabled() {
		slog.Debug("threat records purged", "count", len(purged))
	}
	return purged
}

// ShouldSwitch reports whether candidate out-scores current by more than the switch margin.
// A difference exactly equal to the margin keeps the current target.
func (a *ThreatArbiter) ShouldSwitch(current, candidate uuid.UUID) bool {
	if candidate == current || candidate == uuid.Nil {
		return false
	}
	return a.table.Score(candidate) > a.table.Score(current)+a.cfg.ThreatSwitchMargin
}

// Force pins a target at the forced threat level.
// The forced score decays like any other once the target stops being sensed.
func (a *ThreatArbiter) Force(id uuid.UUID, at model.Location) {
	a.table.SetScore(id, a.cfg.ForcedThreat)
	a.table.SetLastKnown(id, at)
}

// Remember records a position for a target without adding threat.
func (a *ThreatArbiter) Remember(id uuid.UUID, at model.Location) {
	a.table.SetLastKnown(id, at)
}

// LastKnown returns the last sensed position of a target.
func (a *ThreatArbiter) LastKnown(id uuid.UUID) (model.Location, bool) {
	rec := a.table.Get(id)
	if rec == nil {
		return model.Location{}, false
	}
	return rec.LastKnown, true
}

// Score returns the current threat of a target, 0 if untracked.
func (a *ThreatArbiter) Score(id uuid.UUID) float64 {
	return a.table.Score(id)
}

// MostThreatening returns the highest-scoring tracked target.
func (a *ThreatArbiter) MostThreatening() uuid.UUID {
	return a.table.MostThreatening()
}

// Forget drops every trace of a target.
func (a *ThreatArbiter) Forget(id uuid.UUID) {
	a.table.Remove(id)
}

// Reset forgets all targets.
func (a *ThreatArbiter) Reset() {
	a.table.Clear()
}

// Len returns the number of tracked targets.
func (a *ThreatArbiter) Len() int {
	return a.table.Len()
}
