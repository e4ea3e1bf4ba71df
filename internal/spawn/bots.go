package spawn

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/ai"
	"github.com/udisondev/drifter/internal/model"
	"github.com/udisondev/drifter/internal/world"
)

// botReach is how close a bot must get to a route point or spot.
const botReach = 0.25

type botPhase uint8

const (
	phaseRoaming botPhase = iota
	phaseGoingToHide
	phaseHidden
	phaseIdle
)

// Bot is a scripted target walking a route and optionally hiding.
type Bot struct {
	ID  uuid.UUID
	def BotDef

	phase    botPhase
	routeIdx int
	elapsed  float64

	// seconds the bot has held its breath during the current search
	held float64
}

// Bots advances scripted targets and answers hold-breath queries for them.
// Simulation goroutine only.
type Bots struct {
	world *world.World
	bots  map[uuid.UUID]*Bot
	order []uuid.UUID
}

var _ ai.BreathInput = (*Bots)(nil)

// NewBots creates an empty bot set.
func NewBots(w *world.World) *Bots {
	return &Bots{
		world: w,
		bots:  make(map[uuid.UUID]*Bot),
	}
}

// Add places a new bot into the world.
func (b *Bots) Add(def BotDef) (*Bot, error) {
	id, err := b.world.AddTarget(model.Target{
		Name:       def.Name,
		Position:   def.Start.Location(),
		NoiseLevel: 0,
	})
	if err != nil {
		return nil, err
	}

	bot := &Bot{ID: id, def: def}
	if len(def.Route) == 0 && def.Hide == nil {
		bot.phase = phaseIdle
	}
	b.bots[id] = bot
	b.order = append(b.order, id)
	return bot, nil
}

// Remove drops a bot; the world target is removed as well.
func (b *Bots) Remove(id uuid.UUID) (BotDef, bool) {
	bot, ok := b.bots[id]
	if !ok {
		return BotDef{}, false
	}
	delete(b.bots, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	b.world.RemoveTarget(id)
	return bot.def, true
}

// Get returns a bot by target ID.
func (b *Bots) Get(id uuid.UUID) (*Bot, bool) {
	bot, ok := b.bots[id]
	return bot, ok
}

// Len returns the number of live bots.
func (b *Bots) Len() int {
	return len(b.bots)
}

// Step advances every bot by dt seconds.
func (b *Bots) Step(dt float64) {
	for _, id := range b.order {
		b.bots[id].step(b.world, dt)
	}
}

func (bot *Bot) step(w *world.World, dt float64) {
	bot.elapsed += dt

	switch bot.phase {
	case phaseRoaming:
		if bot.def.Hide != nil && bot.elapsed >= bot.def.Hide.After {
			bot.phase = phaseGoingToHide
			return
		}
		bot.roam(w, dt)

	case phaseGoingToHide:
		bot.goHide(w, dt)

	case phaseHidden:
		bot.breathe(w, dt)

	case phaseIdle:
		_ = w.SetNoise(bot.ID, 0)
	}
}

func (bot *Bot) roam(w *world.World, dt float64) {
	if bot.routeIdx >= len(bot.def.Route) {
		// route done: wait for the hide plan, if any
		if bot.def.Hide == nil {
			bot.phase = phaseIdle
		}
		_ = w.SetNoise(bot.ID, 0)
		return
	}

	if bot.walkTo(w, bot.def.Route[bot.routeIdx].Location(), dt) {
		bot.routeIdx++
		if bot.routeIdx >= len(bot.def.Route) && bot.def.Loop {
			bot.routeIdx = 0
		}
	}
}

func (bot *Bot) goHide(w *world.World, dt float64) {
	spot, ok := w.HidingSpot(bot.def.Hide.Spot)
	if !ok {
		bot.phase = phaseIdle
		return
	}
	if !bot.walkTo(w, spot.Position(), dt) {
		return
	}

	if err := w.Hide(bot.ID, spot.ID()); err != nil {
		slog.Warn("bot could not hide",
			"target", bot.def.Name,
			"spot", spot.Name(),
			"error", err)
		bot.phase = phaseIdle
		return
	}
	bot.phase = phaseHidden
	bot.held = 0

	slog.Info("bot hid",
		"target", bot.def.Name,
		"spot", spot.Name())
}

// breathe accumulates hold time while the bot's spot is being searched.
func (bot *Bot) breathe(w *world.World, dt float64) {
	t, ok := w.Target(bot.ID)
	if !ok {
		return
	}
	if !t.Concealed {
		// ejected without dying, back to idle
		bot.phase = phaseIdle
		return
	}
	spot, ok := w.HidingSpot(bot.def.Hide.Spot)
	if ok && spot.IsBeingSearched() {
		bot.held += dt
	} else {
		bot.held = 0
	}
}

// walkTo steps toward dest at the bot's speed and reports arrival.
func (bot *Bot) walkTo(w *world.World, dest model.Location, dt float64) bool {
	t, ok := w.Target(bot.ID)
	if !ok {
		return false
	}

	delta := dest.Sub(t.Position)
	dist := delta.Length()
	if dist <= botReach {
		return true
	}

	step := bot.def.Speed * dt
	next := dest
	if step < dist {
		next = t.Position.Add(delta.Scale(step / dist))
	}
	if err := w.MoveTarget(bot.ID, next); err != nil {
		return false
	}
	noise := 0.0
	if step > 0 {
		noise = bot.def.Noise
	}
	_ = w.SetNoise(bot.ID, noise)

	return next.Distance(dest) <= botReach
}

// IsHoldingBreath implements ai.BreathInput.
func (b *Bots) IsHoldingBreath(occupant uuid.UUID) bool {
	bot, ok := b.bots[occupant]
	if !ok || bot.def.Hide == nil {
		return false
	}

	switch bot.def.Hide.Breath {
	case BreathPanic:
		return false
	case BreathLimit:
		return bot.held <= bot.def.Hide.HoldLimit
	default:
		return true
	}
}
