package spawn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/drifter/internal/ai"
	"github.com/udisondev/drifter/internal/config"
	"github.com/udisondev/drifter/internal/model"
	"github.com/udisondev/drifter/internal/world"
)

func newTestSpawnManager() (*Manager, *world.World, *ai.TickManager) {
	w := world.New(world.DefaultOptions())
	tm := ai.NewTickManager(50*time.Millisecond, 250*time.Millisecond, 16)
	m := NewManager(w, tm, config.DefaultDrifter())
	tm.SetBeforeTick(m.BeforeTick)
	tm.SetAfterTick(m.AfterTick)
	tm.SetEventSink(m.HandleEvents)
	return m, w, tm
}

func TestManager_SpawnAll(t *testing.T) {
	sc, err := ParseScenario([]byte(testScenario))
	require.NoError(t, err)
	m, w, tm := newTestSpawnManager()

	require.NoError(t, m.SpawnAll(sc))

	assert.Equal(t, 1, tm.Count())
	assert.Equal(t, 1, w.TargetCount())
	assert.Equal(t, 1, m.Bots().Len())

	_, ok := w.HidingSpot(1)
	assert.True(t, ok)

	agent, ok := m.Agent(7)
	require.True(t, ok)
	assert.Equal(t, model.StatePatrol, agent.CurrentState())

	mover, ok := m.Mover(7)
	require.True(t, ok)
	assert.Equal(t, model.NewLocation(0, 0, 0), mover.Position())

	assert.Error(t, m.DoSpawnAgent(AgentDef{ID: 7}), "duplicate agent")

	m.DespawnAgent(7)
	assert.Equal(t, 0, tm.Count())
	_, ok = m.Agent(7)
	assert.False(t, ok)
}

func TestManager_AgentPatrolsAlongWaypoints(t *testing.T) {
	m, _, tm := newTestSpawnManager()
	require.NoError(t, m.DoSpawnAgent(AgentDef{
		ID:        1,
		Waypoints: []Point{{X: 0}, {X: 4}},
	}))
	mover, _ := m.Mover(1)

	// 1 unit/s patrol speed
	for range 20 {
		tm.Step(0.1)
	}

	assert.InDelta(t, 1.9, mover.Position().X, 0.11)
	assert.Equal(t, 1.0, mover.Speed())
}

func TestManager_KillRemovesBotAndRespawns(t *testing.T) {
	m, w, tm := newTestSpawnManager()
	require.NoError(t, m.DoSpawnAgent(AgentDef{ID: 1, Facing: Point{X: 1}}))
	require.NoError(t, m.DoSpawnBot(BotDef{
		Name:    "ann",
		Start:   Point{X: 1},
		Respawn: 1,
	}))

	tm.Step(0.1)

	assert.Equal(t, 0, w.TargetCount(), "victim removed from the world")
	assert.Equal(t, 0, m.Bots().Len())
	assert.Equal(t, 1, m.RespawnCount())

	// Nobody left to kill it again.
	m.DespawnAgent(1)
	for range 15 {
		tm.Step(0.1)
	}
	assert.Equal(t, 0, m.RespawnCount())
	assert.Equal(t, 1, w.TargetCount())
}

func TestManager_HandleEventsIgnoresOthers(t *testing.T) {
	m, w, _ := newTestSpawnManager()
	require.NoError(t, m.DoSpawnBot(BotDef{Name: "ann"}))

	m.HandleEvents([]ai.Event{
		{Kind: ai.EventStateChanged, AgentID: 1, State: model.StateChase},
		{Kind: ai.EventSearchChanged, AgentID: 1, Searching: true},
	})

	assert.Equal(t, 1, w.TargetCount())
}

func TestManager_BeforeTickCoolsEverySpot(t *testing.T) {
	m, w, _ := newTestSpawnManager()
	a := model.NewHidingSpot(1, "locker", model.NewLocation(2, 0, 0))
	b := model.NewHidingSpot(2, "crate", model.NewLocation(6, 0, 0))
	require.NoError(t, w.AddHidingSpot(a))
	require.NoError(t, w.AddHidingSpot(b))

	timeout := config.DefaultDrifter().InvestigateTimeout
	a.StartCooldown(timeout)
	m.BeforeTick(5)
	b.StartCooldown(timeout)

	for range int(timeout) {
		m.BeforeTick(1)
	}

	assert.False(t, a.OnCooldown())
	assert.InDelta(t, 0, a.Cooldown(), 1e-9)
	assert.False(t, b.OnCooldown())
}
