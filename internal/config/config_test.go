package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadServer(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServer(), cfg)
}

func TestLoadServer_OverridesNestedDrifter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	yml := `
port: 9090
log_level: debug
tick_interval: 20ms
max_tick_delta: 100ms
journal:
  enabled: true
drifter:
  vision_range: 15
  threat_switch_margin: 30
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := LoadServer(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 20*time.Millisecond, cfg.TickInterval)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, 4096, cfg.Journal.QueueSize, "untouched nested fields keep defaults")

	assert.Equal(t, 15.0, cfg.Drifter.VisionRange)
	assert.Equal(t, 30.0, cfg.Drifter.ThreatSwitchMargin)
	assert.Equal(t, 25.0, cfg.Drifter.HearingRadiusMax, "untouched drifter fields keep defaults")
}

func TestLoadServer_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [oops"), 0o600))

	_, err := LoadServer(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestLoadServer_RejectsInvalidDrifter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("drifter:\n  threat_decay: 1.5\n"), 0o600))

	_, err := LoadServer(path)
	assert.ErrorContains(t, err, "threat_decay")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=disable", d.DSN())
}

func TestDrifter_Validate(t *testing.T) {
	require.NoError(t, DefaultDrifter().Validate())

	tests := []struct {
		name    string
		mutate  func(*Drifter)
		wantErr string
	}{
		{"zero vision range", func(d *Drifter) { d.VisionRange = 0 }, "vision_range"},
		{"cone too wide", func(d *Drifter) { d.VisionAngle = 400 }, "vision_angle"},
		{"decay of one never forgets", func(d *Drifter) { d.ThreatDecay = 1 }, "threat_decay"},
		{"negative margin", func(d *Drifter) { d.ThreatSwitchMargin = -1 }, "threat_switch_margin"},
		{"scan inside search radius", func(d *Drifter) { d.SpotScanRadius = 1 }, "spot_scan_radius"},
		{"drain below one", func(d *Drifter) { d.EmptyArrivalDrain = 0.5 }, "empty_arrival_drain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DefaultDrifter()
			tt.mutate(&d)
			assert.ErrorContains(t, d.Validate(), tt.wantErr)
		})
	}
}

func TestDrifter_MaxSenseRadius(t *testing.T) {
	d := DefaultDrifter()
	assert.Equal(t, 25.0, d.MaxSenseRadius())

	d.VisionRange = 40
	assert.Equal(t, 40.0, d.MaxSenseRadius())
}

func TestLoadServer_SampleFile(t *testing.T) {
	cfg, err := LoadServer(filepath.Join("..", "..", "config", "drifter.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServer(), cfg, "the sample mirrors the defaults")
}
