package ai

import (
	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/config"
	"github.com/udisondev/drifter/internal/model"
)

// fakeWorld is an in-memory SpatialQuery with an optional ray override.
type fakeWorld struct {
	targets map[uuid.UUID]model.Target
	spots   []*model.HidingSpot
	ray     func(origin, dir model.Location, maxDistance float64) (RayHit, bool)
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{targets: make(map[uuid.UUID]model.Target)}
}

func (w *fakeWorld) put(t model.Target) model.Target {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	w.targets[t.ID] = t
	return t
}

func (w *fakeWorld) update(id uuid.UUID, fn func(*model.Target)) {
	t := w.targets[id]
	fn(&t)
	w.targets[id] = t
}

func (w *fakeWorld) remove(id uuid.UUID) {
	delete(w.targets, id)
}

// blockAll makes every ray hit static geometry right in front of the eye.
func (w *fakeWorld) blockAll() {
	w.ray = func(origin, dir model.Location, _ float64) (RayHit, bool) {
		return RayHit{Point: origin.Add(dir.Scale(0.5)), Distance: 0.5}, true
	}
}

func (w *fakeWorld) OverlapTargets(center model.Location, radius float64) []model.Target {
	var out []model.Target
	for _, t := range w.targets {
		if center.Distance(t.Position) <= radius {
			out = append(out, t)
		}
	}
	return out
}

func (w *fakeWorld) OverlapHidingSpots(center model.Location, radius float64) []*model.HidingSpot {
	var out []*model.HidingSpot
	for _, s := range w.spots {
		if center.Distance(s.Position()) <= radius {
			out = append(out, s)
		}
	}
	return out
}

func (w *fakeWorld) Raycast(origin, dir model.Location, maxDistance float64, _ uuid.UUID) (RayHit, bool) {
	if w.ray == nil {
		return RayHit{}, false
	}
	return w.ray(origin, dir, maxDistance)
}

func (w *fakeWorld) Target(id uuid.UUID) (model.Target, bool) {
	t, ok := w.targets[id]
	return t, ok
}

func (w *fakeWorld) EjectOccupant(spotID uint32) (uuid.UUID, bool) {
	for _, s := range w.spots {
		if s.ID() != spotID {
			continue
		}
		occupant, ok := s.ForceExit()
		if !ok {
			return uuid.Nil, false
		}
		if _, exists := w.targets[occupant]; exists {
			w.update(occupant, func(t *model.Target) { t.Concealed = false })
		}
		return occupant, true
	}
	return uuid.Nil, false
}

// fakeMover records movement commands; it never moves on its own.
type fakeMover struct {
	pos     model.Location
	fwd     model.Location
	dest    model.Location
	hasDest bool
	speed   float64
	pending bool
	stopped bool
}

func newFakeMover() *fakeMover {
	return &fakeMover{fwd: model.NewLocation(1, 0, 0)}
}

func (m *fakeMover) Position() model.Location { return m.pos }
func (m *fakeMover) Forward() model.Location  { return m.fwd }

func (m *fakeMover) FaceTowards(point model.Location) {
	if d := point.Sub(m.pos).Flat(); d.Length() > 0 {
		m.fwd = d.Normalize()
	}
}

func (m *fakeMover) SetDestination(point model.Location) {
	m.dest = point
	m.hasDest = true
}

func (m *fakeMover) SetSpeed(v float64) { m.speed = v }
func (m *fakeMover) PathPending() bool  { return m.pending }

func (m *fakeMover) RemainingDistance() float64 {
	if !m.hasDest {
		return 0
	}
	return m.pos.Distance(m.dest)
}

func (m *fakeMover) Stop()   { m.stopped = true }
func (m *fakeMover) Resume() { m.stopped = false }

// breathScript answers per occupant; unknown occupants breathe.
type breathScript map[uuid.UUID]bool

func (b breathScript) IsHoldingBreath(occupant uuid.UUID) bool {
	return b[occupant]
}

func testCfg() config.Drifter {
	return config.DefaultDrifter()
}

func newTestDrifter(w *fakeWorld, m *fakeMover, breath BreathInput) *DrifterAI {
	ai := NewDrifterAI(1, testCfg(), w, m, breath)
	ai.Start()
	return ai
}

func stateEvents(events []Event) []model.PursuitState {
	var out []model.PursuitState
	for _, e := range events {
		if e.Kind == EventStateChanged {
			out = append(out, e.State)
		}
	}
	return out
}
