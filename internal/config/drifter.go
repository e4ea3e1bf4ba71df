package config

import (
	"errors"
	"fmt"
)

// Drifter holds every tunable of a pursuing agent.
// Distances are world units, durations and rates are seconds.
type Drifter struct {
	// Patrol
	PatrolSpeed            float64 `yaml:"patrol_speed"`
	WaypointReachThreshold float64 `yaml:"waypoint_reach_threshold"`

	// Vision
	VisionRange    float64 `yaml:"vision_range"`
	VisionAngle    float64 `yaml:"vision_angle"`     // full cone width in degrees
	CrouchNoiseMax float64 `yaml:"crouch_noise_max"` // 0 < noise <= this halves the cone
	EyeHeight      float64 `yaml:"eye_height"`
	BodyHeight     float64 `yaml:"body_height"`

	// Hearing
	HearingRadiusMax      float64 `yaml:"hearing_radius_max"`
	HearingNoiseThreshold float64 `yaml:"hearing_noise_threshold"`

	// Proximity
	ProximityRadius float64 `yaml:"proximity_radius"`

	// Investigate
	InvestigateSpeed   float64 `yaml:"investigate_speed"`
	InvestigateTimeout float64 `yaml:"investigate_timeout"`
	EmptyArrivalDrain  float64 `yaml:"empty_arrival_drain"` // timer drain multiplier on an empty arrival

	// Chase
	ChaseSpeed        float64 `yaml:"chase_speed"`
	LoseSightDuration float64 `yaml:"lose_sight_duration"`

	// Kill
	KillRadius float64 `yaml:"kill_radius"`

	// Search
	SearchRadius   float64 `yaml:"search_radius"`
	SpotScanRadius float64 `yaml:"spot_scan_radius"`
	SearchDuration float64 `yaml:"search_duration"`

	// Suspicion gauge
	SuspicionBuildRate float64 `yaml:"suspicion_build_rate"`
	SuspicionDecayRate float64 `yaml:"suspicion_decay_rate"`

	// Threat arbitration
	VisionThreat        float64 `yaml:"vision_threat"`
	HearingThreatFactor float64 `yaml:"hearing_threat_factor"`
	ProximityThreat     float64 `yaml:"proximity_threat"`
	ThreatDecay         float64 `yaml:"threat_decay"`        // per-tick multiplier for unsensed targets
	ThreatForgetBelow   float64 `yaml:"threat_forget_below"` // records below this are dropped
	ThreatSwitchMargin  float64 `yaml:"threat_switch_margin"`
	ForcedThreat        float64 `yaml:"forced_threat"`
}

// DefaultDrifter returns Drifter config with the stock tuning.
func DefaultDrifter() Drifter {
	return Drifter{
		PatrolSpeed:            1,
		WaypointReachThreshold: 0.5,

		VisionRange:    12,
		VisionAngle:    90,
		CrouchNoiseMax: 0.3,
		EyeHeight:      1.5,
		BodyHeight:     1,

		HearingRadiusMax:      25,
		HearingNoiseThreshold: 0.2,

		ProximityRadius: 3,

		InvestigateSpeed:   2,
		InvestigateTimeout: 30,
		EmptyArrivalDrain:  3,

		ChaseSpeed:        3,
		LoseSightDuration: 10,

		KillRadius: 1.5,

		SearchRadius:   3,
		SpotScanRadius: 6,
		SearchDuration: 4,

		SuspicionBuildRate: 0.35,
		SuspicionDecayRate: 0.1,

		VisionThreat:        10,
		HearingThreatFactor: 5,
		ProximityThreat:     15,
		ThreatDecay:         0.95,
		ThreatForgetBelow:   0.1,
		ThreatSwitchMargin:  20,
		ForcedThreat:        100,
	}
}

// MaxSenseRadius returns the largest of the three detection radii.
func (d Drifter) MaxSenseRadius() float64 {
	return max(d.VisionRange, d.HearingRadiusMax, d.ProximityRadius)
}

// Validate rejects values the state machine cannot run with.
func (d Drifter) Validate() error {
	var errs []error

	positive := []struct {
		name string
		v    float64
	}{
		{"vision_range", d.VisionRange},
		{"hearing_radius_max", d.HearingRadiusMax},
		{"proximity_radius", d.ProximityRadius},
		{"investigate_timeout", d.InvestigateTimeout},
		{"lose_sight_duration", d.LoseSightDuration},
		{"search_duration", d.SearchDuration},
		{"search_radius", d.SearchRadius},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", p.name, p.v))
		}
	}

	if d.VisionAngle <= 0 || d.VisionAngle > 360 {
		errs = append(errs, fmt.Errorf("vision_angle must be in (0, 360], got %v", d.VisionAngle))
	}
	if d.ThreatDecay <= 0 || d.ThreatDecay >= 1 {
		errs = append(errs, fmt.Errorf("threat_decay must be in (0, 1), got %v", d.ThreatDecay))
	}
	if d.ThreatForgetBelow <= 0 {
		errs = append(errs, fmt.Errorf("threat_forget_below must be positive, got %v", d.ThreatForgetBelow))
	}
	if d.ThreatSwitchMargin < 0 {
		errs = append(errs, fmt.Errorf("threat_switch_margin must not be negative, got %v", d.ThreatSwitchMargin))
	}
	if d.HearingNoiseThreshold < 0 || d.HearingNoiseThreshold > 1 {
		errs = append(errs, fmt.Errorf("hearing_noise_threshold must be in [0, 1], got %v", d.HearingNoiseThreshold))
	}
	if d.KillRadius < 0 {
		errs = append(errs, fmt.Errorf("kill_radius must not be negative, got %v", d.KillRadius))
	}
	if d.SpotScanRadius < d.SearchRadius {
		errs = append(errs, fmt.Errorf("spot_scan_radius %v is smaller than search_radius %v", d.SpotScanRadius, d.SearchRadius))
	}
	if d.EmptyArrivalDrain < 1 {
		errs = append(errs, fmt.Errorf("empty_arrival_drain must be >= 1, got %v", d.EmptyArrivalDrain))
	}

	return errors.Join(errs...)
}
