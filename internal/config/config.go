package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the simulation server.
type Server struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Simulation
	TickInterval     time.Duration `yaml:"tick_interval"`     // wall time between ticks (default: 50ms)
	MaxTickDelta     time.Duration `yaml:"max_tick_delta"`    // clamp for a single dt after stalls (default: 250ms)
	SnapshotInterval int           `yaml:"snapshot_interval"` // ticks between observer snapshots (default: 10)
	ScenarioPath     string        `yaml:"scenario_path"`
	CellSize         float64       `yaml:"cell_size"` // spatial grid cell size in world units

	// Observer feed
	SendQueueSize int           `yaml:"send_queue_size"` // per-observer outbox capacity (default: 256)
	WriteTimeout  time.Duration `yaml:"write_timeout"`   // per-write deadline (default: 5s)

	// Event journal
	Journal  JournalConfig  `yaml:"journal"`
	Database DatabaseConfig `yaml:"database"`

	// Defaults applied to every agent before scenario overrides.
	Drifter Drifter `yaml:"drifter"`
}

// JournalConfig controls persistence of pursuit events.
type JournalConfig struct {
	Enabled       bool          `yaml:"enabled"`
	QueueSize     int           `yaml:"queue_size"`     // buffered events before drops (default: 4096)
	BatchSize     int           `yaml:"batch_size"`     // max events per insert batch (default: 256)
	FlushInterval time.Duration `yaml:"flush_interval"` // max delay before a partial batch is written (default: 1s)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Addr returns the HTTP listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.Port)
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		BindAddress:      "0.0.0.0",
		Port:             8085,
		LogLevel:         "info",
		TickInterval:     50 * time.Millisecond,
		MaxTickDelta:     250 * time.Millisecond,
		SnapshotInterval: 10,
		ScenarioPath:     "config/scenario.yaml",
		CellSize:         8,
		SendQueueSize:    256,
		WriteTimeout:     5 * time.Second,
		Journal: JournalConfig{
			Enabled:       false,
			QueueSize:     4096,
			BatchSize:     256,
			FlushInterval: time.Second,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "drifter",
			Password: "drifter",
			DBName:   "drifter",
			SSLMode:  "disable",
		},
		Drifter: DefaultDrifter(),
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that would make the server misbehave at runtime.
func (s Server) Validate() error {
	if s.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", s.TickInterval)
	}
	if s.MaxTickDelta < s.TickInterval {
		return fmt.Errorf("max_tick_delta %s is shorter than tick_interval %s", s.MaxTickDelta, s.TickInterval)
	}
	if s.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %v", s.CellSize)
	}
	if s.Journal.Enabled && (s.Journal.QueueSize <= 0 || s.Journal.BatchSize <= 0) {
		return fmt.Errorf("journal queue_size and batch_size must be positive")
	}
	if err := s.Drifter.Validate(); err != nil {
		return fmt.Errorf("drifter: %w", err)
	}
	return nil
}
