package spawn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/drifter/internal/model"
	"github.com/udisondev/drifter/internal/world"
)

func TestBots_WalkRouteAndLoop(t *testing.T) {
	w := world.New(world.DefaultOptions())
	bots := NewBots(w)
	bot, err := bots.Add(BotDef{
		Name:  "ann",
		Start: Point{X: 0},
		Route: []Point{{X: 2}, {X: 0}},
		Loop:  true,
		Speed: 1,
		Noise: 0.7,
	})
	require.NoError(t, err)

	bots.Step(1)
	tg, _ := w.Target(bot.ID)
	assert.InDelta(t, 1, tg.Position.X, 1e-9)
	assert.Equal(t, 0.7, tg.NoiseLevel, "moving bots make noise")

	bots.Step(1) // arrives at X=2
	bots.Step(1) // heads back
	tg, _ = w.Target(bot.ID)
	assert.InDelta(t, 1, tg.Position.X, 1e-9)
}

func TestBots_RouteEndsIdle(t *testing.T) {
	w := world.New(world.DefaultOptions())
	bots := NewBots(w)
	bot, err := bots.Add(BotDef{
		Name:  "bob",
		Route: []Point{{X: 1}},
		Speed: 2,
		Noise: 1,
	})
	require.NoError(t, err)

	bots.Step(1)
	bots.Step(1)

	tg, _ := w.Target(bot.ID)
	assert.Equal(t, model.NewLocation(1, 0, 0), tg.Position)
	assert.Zero(t, tg.NoiseLevel, "idle bots are silent")
}

func TestBots_HideAndBreath(t *testing.T) {
	tests := []struct {
		name   string
		plan   HidePlan
		held   float64
		expect bool
	}{
		{"hold", HidePlan{Spot: 1, Breath: BreathHold}, 100, true},
		{"default holds", HidePlan{Spot: 1}, 100, true},
		{"panic", HidePlan{Spot: 1, Breath: BreathPanic}, 0, false},
		{"limit not reached", HidePlan{Spot: 1, Breath: BreathLimit, HoldLimit: 2}, 1.5, true},
		{"limit exceeded", HidePlan{Spot: 1, Breath: BreathLimit, HoldLimit: 2}, 2.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := world.New(world.DefaultOptions())
			spot := model.NewHidingSpot(1, "locker", model.NewLocation(1, 0, 0))
			require.NoError(t, w.AddHidingSpot(spot))

			bots := NewBots(w)
			plan := tt.plan
			bot, err := bots.Add(BotDef{Name: "ann", Speed: 2, Hide: &plan})
			require.NoError(t, err)

			bots.Step(0.1) // decides to hide
			bots.Step(1)   // walks in

			tg, _ := w.Target(bot.ID)
			require.True(t, tg.Concealed)
			require.Equal(t, bot.ID, spot.Occupant())

			spot.BeginSearch()
			for elapsed := 0.0; elapsed < tt.held-1e-9; elapsed += 0.5 {
				bots.Step(0.5)
			}

			assert.Equal(t, tt.expect, bots.IsHoldingBreath(bot.ID))
		})
	}
}

func TestBots_HoldResetsBetweenSearches(t *testing.T) {
	w := world.New(world.DefaultOptions())
	spot := model.NewHidingSpot(1, "locker", model.NewLocation(0, 0, 0))
	require.NoError(t, w.AddHidingSpot(spot))

	bots := NewBots(w)
	bot, err := bots.Add(BotDef{Name: "ann", Speed: 1, Hide: &HidePlan{Spot: 1, Breath: BreathLimit, HoldLimit: 1}})
	require.NoError(t, err)

	bots.Step(0) // decides to hide
	bots.Step(0) // already at the spot
	require.True(t, spot.IsOccupied())

	spot.BeginSearch()
	bots.Step(1.5)
	assert.False(t, bots.IsHoldingBreath(bot.ID))

	spot.EndSearch()
	bots.Step(0.1)
	assert.True(t, bots.IsHoldingBreath(bot.ID))
}

func TestBots_UnknownOccupantBreathes(t *testing.T) {
	bots := NewBots(world.New(world.DefaultOptions()))
	_, ok := bots.Get([16]byte{1})
	assert.False(t, ok)
	assert.False(t, bots.IsHoldingBreath([16]byte{1}))
}

func TestBots_Remove(t *testing.T) {
	w := world.New(world.DefaultOptions())
	bots := NewBots(w)
	bot, err := bots.Add(BotDef{Name: "ann"})
	require.NoError(t, err)

	def, ok := bots.Remove(bot.ID)
	require.True(t, ok)
	assert.Equal(t, "ann", def.Name)
	assert.Equal(t, 0, w.TargetCount())

	_, ok = bots.Remove(bot.ID)
	assert.False(t, ok)
}

func TestBots_HideWithoutRoute(t *testing.T) {
	w := world.New(world.DefaultOptions())
	spot := model.NewHidingSpot(1, "vent", model.NewLocation(1, 0, 0))
	require.NoError(t, w.AddHidingSpot(spot))

	bots := NewBots(w)
	bot, err := bots.Add(BotDef{Name: "cleo", Speed: 2, Hide: &HidePlan{Spot: 1, After: 1}})
	require.NoError(t, err)

	bots.Step(0.5) // waits
	tg, _ := w.Target(bot.ID)
	assert.Equal(t, model.NewLocation(0, 0, 0), tg.Position)

	bots.Step(0.5) // decides to hide
	bots.Step(1)   // walks in
	assert.Equal(t, bot.ID, spot.Occupant())
}
