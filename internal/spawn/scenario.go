package spawn

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/drifter/internal/config"
	"github.com/udisondev/drifter/internal/model"
)

// Point is a location written in YAML as a flow sequence: [x, y] or [x, y, z].
type Point model.Location

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Point) UnmarshalYAML(node *yaml.Node) error {
	var coords []float64
	if err := node.Decode(&coords); err != nil {
		return fmt.Errorf("line %d: point must be [x, y] or [x, y, z]: %w", node.Line, err)
	}
	switch len(coords) {
	case 2:
		*p = Point{X: coords[0], Y: coords[1]}
	case 3:
		*p = Point{X: coords[0], Y: coords[1], Z: coords[2]}
	default:
		return fmt.Errorf("line %d: point must have 2 or 3 coordinates, got %d", node.Line, len(coords))
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p Point) MarshalYAML() (any, error) {
	var node yaml.Node
	if err := node.Encode([]float64{p.X, p.Y, p.Z}); err != nil {
		return nil, err
	}
	node.Style = yaml.FlowStyle
	return &node, nil
}

// Location converts the point.
func (p Point) Location() model.Location {
	return model.Location(p)
}

func toLocations(points []Point) []model.Location {
	out := make([]model.Location, len(points))
	for i, p := range points {
		out[i] = p.Location()
	}
	return out
}

// ObstacleDef is a box obstacle given by two opposite corners.
type ObstacleDef struct {
	Name string `yaml:"name"`
	Min  Point  `yaml:"min"`
	Max  Point  `yaml:"max"`
}

// SpotDef is a hiding spot (locker, wardrobe, under a bed).
type SpotDef struct {
	ID       uint32 `yaml:"id"`
	Name     string `yaml:"name"`
	Position Point  `yaml:"position"`
}

// AgentDef is one drifter.
// Config holds per-agent overrides applied on top of the base Drifter config.
type AgentDef struct {
	ID        uint32    `yaml:"id"`
	Position  Point     `yaml:"position"`
	Facing    Point     `yaml:"facing"`
	Waypoints []Point   `yaml:"waypoints"`
	Config    yaml.Node `yaml:"config"`
}

// Breath behaviors of a hidden bot.
const (
	BreathHold  = "hold"  // holds for the whole search
	BreathPanic = "panic" // never holds
	BreathLimit = "limit" // holds for HoldLimit seconds, then gasps
)

// HidePlan sends a bot into a hiding spot.
type HidePlan struct {
	Spot      uint32  `yaml:"spot"`
	After     float64 `yaml:"after"` // seconds after spawn
	Breath    string  `yaml:"breath"`
	HoldLimit float64 `yaml:"hold_limit"`
}

// BotDef is a scripted target.
type BotDef struct {
	Name    string    `yaml:"name"`
	Start   Point     `yaml:"start"`
	Route   []Point   `yaml:"route"`
	Loop    bool      `yaml:"loop"`
	Speed   float64   `yaml:"speed"`
	Noise   float64   `yaml:"noise"`
	Hide    *HidePlan `yaml:"hide"`
	Respawn float64   `yaml:"respawn"` // seconds after death, 0 = never
}

// Scenario describes an arena and everyone in it.
type Scenario struct {
	Name      string        `yaml:"name"`
	Obstacles []ObstacleDef `yaml:"obstacles"`
	Spots     []SpotDef     `yaml:"hiding_spots"`
	Agents    []AgentDef    `yaml:"agents"`
	Targets   []BotDef      `yaml:"targets"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("validating scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks cross references and value ranges.
func (sc *Scenario) Validate() error {
	var errs []error

	spots := make(map[uint32]bool, len(sc.Spots))
	for _, s := range sc.Spots {
		if s.ID == 0 {
			errs = append(errs, fmt.Errorf("hiding spot %q: id must be non-zero", s.Name))
		}
		if spots[s.ID] {
			errs = append(errs, fmt.Errorf("hiding spot %d: duplicate id", s.ID))
		}
		spots[s.ID] = true
	}

	agents := make(map[uint32]bool, len(sc.Agents))
	for _, a := range sc.Agents {
		if a.ID == 0 {
			errs = append(errs, errors.New("agent: id must be non-zero"))
		}
		if agents[a.ID] {
			errs = append(errs, fmt.Errorf("agent %d: duplicate id", a.ID))
		}
		agents[a.ID] = true
	}

	for _, b := range sc.Targets {
		if b.Speed < 0 {
			errs = append(errs, fmt.Errorf("target %q: speed must not be negative", b.Name))
		}
		if b.Noise < 0 || b.Noise > 1 {
			errs = append(errs, fmt.Errorf("target %q: noise must be in [0, 1], got %v", b.Name, b.Noise))
		}
		if b.Hide == nil {
			continue
		}
		if !spots[b.Hide.Spot] {
			errs = append(errs, fmt.Errorf("target %q: unknown hiding spot %d", b.Name, b.Hide.Spot))
		}
		switch b.Hide.Breath {
		case "", BreathHold, BreathPanic:
		case BreathLimit:
			if b.Hide.HoldLimit <= 0 {
				errs = append(errs, fmt.Errorf("target %q: hold_limit must be positive", b.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("target %q: unknown breath behavior %q", b.Name, b.Hide.Breath))
		}
	}

	return errors.Join(errs...)
}

// AgentConfig returns base with the agent's overrides applied.
func (a AgentDef) AgentConfig(base config.Drifter) (config.Drifter, error) {
	cfg := base
	if a.Config.Kind == 0 {
		return cfg, nil
	}
	if err := a.Config.Decode(&cfg); err != nil {
		return config.Drifter{}, fmt.Errorf("agent %d config: %w", a.ID, err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Drifter{}, fmt.Errorf("agent %d config: %w", a.ID, err)
	}
	return cfg, nil
}
