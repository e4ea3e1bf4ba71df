package spawn

import "log/slog"

// respawnTask brings a killed bot back on the simulation clock.
type respawnTask struct {
	def BotDef
	at  float64
}

// ScheduleRespawn schedules a bot respawn after delay seconds of simulation time.
func (m *Manager) ScheduleRespawn(def BotDef, delay float64) {
	m.respawns = append(m.respawns, respawnTask{def: def, at: m.clock + delay})

	slog.Debug("respawn scheduled",
		"target", def.Name,
		"delaySeconds", delay)
}

// RespawnCount returns number of scheduled respawns
func (m *Manager) RespawnCount() int {
	return len(m.respawns)
}

// processRespawns spawns every bot whose time has come.
func (m *Manager) processRespawns() {
	pending := m.respawns[:0]
	for _, task := range m.respawns {
		if m.clock < task.at {
			pending = append(pending, task)
			continue
		}
		if err := m.DoSpawnBot(task.def); err != nil {
			slog.Error("respawn failed",
				"target", task.def.Name,
				"error", err)
			continue
		}
		slog.Info("target respawned", "target", task.def.Name)
	}
	m.respawns = pending
}
