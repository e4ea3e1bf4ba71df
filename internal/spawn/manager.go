package spawn

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/udisondev/drifter/internal/ai"
	"github.com/udisondev/drifter/internal/config"
	"github.com/udisondev/drifter/internal/model"
	"github.com/udisondev/drifter/internal/nav"
	"github.com/udisondev/drifter/internal/world"
)

// Manager populates the world from a scenario and owns the per-tick upkeep:
// bot movement before the agents think, agent movement after, kills and respawns.
// Every method except construction runs on the simulation goroutine.
type Manager struct {
	world     *world.World
	aiManager *ai.TickManager
	base      config.Drifter

	bots   *Bots
	movers map[uint32]*nav.Mover
	agents map[uint32]*ai.DrifterAI

	clock    float64
	respawns []respawnTask
}

// NewManager creates new spawn manager
func NewManager(w *world.World, aiManager *ai.TickManager, base config.Drifter) *Manager {
	return &Manager{
		world:     w,
		aiManager: aiManager,
		base:      base,
		bots:      NewBots(w),
		movers:    make(map[uint32]*nav.Mover),
		agents:    make(map[uint32]*ai.DrifterAI),
	}
}

// Bots returns the scripted targets.
func (m *Manager) Bots() *Bots {
	return m.bots
}

// Mover returns the movement driver of an agent.
func (m *Manager) Mover(agentID uint32) (*nav.Mover, bool) {
	mv, ok := m.movers[agentID]
	return mv, ok
}

// Agent returns a spawned agent.
func (m *Manager) Agent(agentID uint32) (*ai.DrifterAI, bool) {
	a, ok := m.agents[agentID]
	return a, ok
}

// SpawnAll builds obstacles and hiding spots, then spawns every agent and target.
func (m *Manager) SpawnAll(sc *Scenario) error {
	for _, o := range sc.Obstacles {
		m.world.AddObstacle(world.NewBox(o.Name, o.Min.Location(), o.Max.Location()))
	}

	for _, s := range sc.Spots {
		spot := model.NewHidingSpot(s.ID, s.Name, s.Position.Location())
		if err := m.world.AddHidingSpot(spot); err != nil {
			return fmt.Errorf("adding hiding spot %q: %w", s.Name, err)
		}
	}

	for _, a := range sc.Agents {
		if err := m.DoSpawnAgent(a); err != nil {
			return err
		}
	}

	for _, b := range sc.Targets {
		if err := m.DoSpawnBot(b); err != nil {
			return err
		}
	}

	slog.Info("scenario spawned",
		"name", sc.Name,
		"obstacles", len(sc.Obstacles),
		"spots", len(sc.Spots),
		"agents", len(sc.Agents),
		"targets", len(sc.Targets))
	return nil
}

// DoSpawnAgent creates a mover and a DrifterAI and registers it with the tick manager.
func (m *Manager) DoSpawnAgent(def AgentDef) error {
	if _, ok := m.agents[def.ID]; ok {
		return fmt.Errorf("agent %d already spawned", def.ID)
	}

	cfg, err := def.AgentConfig(m.base)
	if err != nil {
		return err
	}

	mover := nav.NewMover(def.Position.Location(), def.Facing.Location())
	agent := ai.NewDrifterAI(def.ID, cfg, m.world, mover, m.bots)
	agent.SetWaypoints(toLocations(def.Waypoints))

	m.movers[def.ID] = mover
	m.agents[def.ID] = agent
	m.aiManager.Register(agent)

	slog.Info("agent spawned",
		"agentID", def.ID,
		"position", def.Position.Location(),
		"waypoints", len(def.Waypoints))
	return nil
}

// DespawnAgent unregisters an agent.
func (m *Manager) DespawnAgent(agentID uint32) {
	if _, ok := m.agents[agentID]; !ok {
		return
	}
	m.aiManager.Unregister(agentID)
	delete(m.agents, agentID)
	delete(m.movers, agentID)

	slog.Info("agent despawned", "agentID", agentID)
}

// DoSpawnBot places a scripted target.
func (m *Manager) DoSpawnBot(def BotDef) error {
	bot, err := m.bots.Add(def)
	if err != nil {
		return fmt.Errorf("spawning target %q: %w", def.Name, err)
	}

	slog.Info("target spawned",
		"target", def.Name,
		"id", bot.ID,
		"position", def.Start.Location())
	return nil
}

// BeforeTick advances spot cooldowns, due respawns and bots.
func (m *Manager) BeforeTick(dt float64) {
	m.clock += dt
	m.world.TickCooldowns(dt)
	m.processRespawns()
	m.bots.Step(dt)
}

// AfterTick moves agents along the paths their controllers chose.
func (m *Manager) AfterTick(dt float64) {
	ids := make([]uint32, 0, len(m.movers))
	for id := range m.movers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		m.movers[id].Advance(dt)
	}
}

// HandleEvents removes killed targets and schedules their respawn.
func (m *Manager) HandleEvents(events []ai.Event) {
	for _, e := range events {
		if e.Kind != ai.EventKilled {
			continue
		}

		def, ok := m.bots.Remove(e.Victim)
		if !ok {
			// not a bot: still remove the body
			m.world.RemoveTarget(e.Victim)
			continue
		}

		slog.Info("target killed",
			"agentID", e.AgentID,
			"target", def.Name)

		if def.Respawn > 0 {
			m.ScheduleRespawn(def, def.Respawn)
		}
	}
}
