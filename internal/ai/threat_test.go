package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/drifter/internal/config"
	"github.com/udisondev/drifter/internal/model"
)

func newTestArbiter(w *fakeWorld) *ThreatArbiter {
	cfg := config.DefaultDrifter()
	return NewThreatArbiter(cfg, w, NewPerception(cfg, w))
}

func TestThreatArbiter_ScoresEverySense(t *testing.T) {
	w := newFakeWorld()
	seenClose := w.put(model.Target{Position: model.NewLocation(2, 0, 0)})
	heardOnly := w.put(model.Target{Position: model.NewLocation(-10, 0, 0), NoiseLevel: 1})
	a := newTestArbiter(w)

	purged := a.Update(origin, forward)
	assert.Empty(t, purged)

	// vision 10 + proximity 15
	assert.InDelta(t, 25, a.Score(seenClose.ID), 1e-9)
	// 5 * 1 / 10
	assert.InDelta(t, 0.5, a.Score(heardOnly.ID), 1e-9)
	assert.Equal(t, seenClose.ID, a.MostThreatening())
}

func TestThreatArbiter_NoRecordWithoutContribution(t *testing.T) {
	w := newFakeWorld()
	// silent behind the agent, then hidden right in front of it
	w.put(model.Target{Position: model.NewLocation(-20, 0, 0)})
	w.put(model.Target{Position: model.NewLocation(2, 0, 0), Concealed: true})
	a := newTestArbiter(w)

	a.Update(origin, forward)

	assert.Equal(t, 0, a.Len())
}

func TestThreatArbiter_DecayUntilForgotten(t *testing.T) {
	w := newFakeWorld()
	target := w.put(model.Target{Position: model.NewLocation(8, 0, 0)})
	a := newTestArbiter(w)

	a.Update(origin, forward)
	require.InDelta(t, 10, a.Score(target.ID), 1e-9)

	// Out of every sense but still in the world.
	w.update(target.ID, func(tg *model.Target) { tg.Position = model.NewLocation(-40, 0, 0) })

	prev := a.Score(target.ID)
	for i := 0; i < 200; i++ {
		a.Update(origin, forward)
		if _, ok := a.LastKnown(target.ID); !ok {
			assert.Less(t, prev*0.95, 0.1, "record forgotten while still above threshold")
			return
		}
		score := a.Score(target.ID)
		assert.Less(t, score, prev, "tick %d: score must strictly decrease", i)
		assert.InDelta(t, prev*0.95, score, 1e-9)
		prev = score
	}
	t.Fatal("record never forgotten")
}

func TestThreatArbiter_SensedTargetDoesNotDecay(t *testing.T) {
	w := newFakeWorld()
	target := w.put(model.Target{Position: model.NewLocation(8, 0, 0)})
	a := newTestArbiter(w)

	a.Update(origin, forward)
	a.Update(origin, forward)

	assert.InDelta(t, 20, a.Score(target.ID), 1e-9)
}

func TestThreatArbiter_ShouldSwitchMargin(t *testing.T) {
	w := newFakeWorld()
	current := w.put(model.Target{Position: model.NewLocation(-40, 0, 0)})
	candidate := w.put(model.Target{Position: model.NewLocation(-40, 1, 0)})
	a := newTestArbiter(w)

	tests := []struct {
		name      string
		current   float64
		candidate float64
		want      bool
	}{
		{"exactly margin keeps current", 10, 30, false},
		{"just above margin switches", 10, 30.001, true},
		{"below margin keeps current", 50, 60, false},
		{"untracked current", 0, 25, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.table.SetScore(current.ID, tt.current)
			a.table.SetScore(candidate.ID, tt.candidate)
			assert.Equal(t, tt.want, a.ShouldSwitch(current.ID, candidate.ID))
		})
	}

	assert.False(t, a.ShouldSwitch(current.ID, current.ID))
}

func TestThreatArbiter_PurgesStaleTargets(t *testing.T) {
	w := newFakeWorld()
	gone := w.put(model.Target{Position: model.NewLocation(8, 0, 0)})
	stays := w.put(model.Target{Position: model.NewLocation(6, 1, 0)})
	a := newTestArbiter(w)

	a.Update(origin, forward)
	require.Equal(t, 2, a.Len())

	w.remove(gone.ID)
	purged := a.Update(origin, forward)

	require.Len(t, purged, 1)
	assert.Equal(t, gone.ID, purged[0])
	assert.Equal(t, 1, a.Len())
	assert.Greater(t, a.Score(stays.ID), 0.0)
}

func TestThreatArbiter_ForceDecaysNormally(t *testing.T) {
	w := newFakeWorld()
	target := w.put(model.Target{Position: model.NewLocation(-50, 0, 0)})
	a := newTestArbiter(w)

	a.Force(target.ID, target.Position)
	assert.InDelta(t, 100, a.Score(target.ID), 1e-9)

	a.Update(origin, forward)
	assert.InDelta(t, 95, a.Score(target.ID), 1e-9)

	at, ok := a.LastKnown(target.ID)
	require.True(t, ok)
	assert.Equal(t, target.Position, at)
}
