package ai

import (
	"math"

	"github.com/udisondev/drifter/internal/config"
	"github.com/udisondev/drifter/internal/model"
)

const (
	// minHearingDistance floors the distance in noise/distance scoring.
	minHearingDistance = 0.1

	// coneEpsilon absorbs acos rounding so a target exactly on the cone edge counts as inside.
	coneEpsilon = 1e-6
)

// Senses is the per-modality verdict for one candidate.
type Senses struct {
	Seen     bool
	Heard    bool
	Sensed   bool
	Distance float64
}

// Any reports whether at least one modality fired.
func (s Senses) Any() bool {
	return s.Seen || s.Heard || s.Sensed
}

// Perception evaluates vision, hearing and proximity against reachable targets.
// It is a pure query: nothing is remembered between calls.
type Perception struct {
	cfg   config.Drifter
	world SpatialQuery
}

// NewPerception creates a perception service over the given world.
func NewPerception(cfg config.Drifter, world SpatialQuery) *Perception {
	return &Perception{cfg: cfg, world: world}
}

// Vision returns the nearest non-concealed target inside the view cone with clear line of sight.
func (p *Perception) Vision(origin, forward model.Location) (model.Target, bool) {
	var best model.Target
	bestDist := math.MaxFloat64
	found := false

	for _, t := range p.world.OverlapTargets(origin, p.cfg.VisionRange) {
		if t.Concealed {
			continue
		}
		d := origin.Distance(t.Position)
		if d > p.cfg.VisionRange {
			continue
		}
		if !p.InCone(origin, forward, t) || !p.HasLineOfSight(origin, t) {
			continue
		}
		if d < bestDist {
			bestDist = d
			best = t
			found = true
		}
	}

	return best, found
}

// Hearing returns the target maximizing noise/distance among those audible
// within their own effective radius.
func (p *Perception) Hearing(origin model.Location) (model.Target, bool) {
	var loudest model.Target
	loudestScore := 0.0
	found := false

	for _, t := range p.world.OverlapTargets(origin, p.cfg.HearingRadiusMax) {
		if t.Concealed {
			continue
		}
		d := origin.Distance(t.Position)
		if !p.CanHear(t.NoiseLevel, d) {
			continue
		}
		score := t.NoiseLevel / math.Max(d, minHearingDistance)
		if score > loudestScore {
			loudestScore = score
			loudest = t
			found = true
		}
	}

	return loudest, found
}

// Proximity returns the nearest non-concealed target inside the omnidirectional radius.
// No facing or occlusion check.
func (p *Perception) Proximity(origin model.Location) (model.Target, bool) {
	var closest model.Target
	closestDist := math.MaxFloat64
	found := false

	for _, t := range p.world.OverlapTargets(origin, p.cfg.ProximityRadius) {
		if t.Concealed {
			continue
		}
		d := origin.Distance(t.Position)
		if d > p.cfg.ProximityRadius {
			continue
		}
		if d < closestDist {
			closestDist = d
			closest = t
			found = true
		}
	}

	return closest, found
}

// Classify runs all three predicates against a single candidate.
// Concealed targets are never sensed.
func (p *Perception) Classify(origin, forward model.Location, t model.Target) Senses {
	d := origin.Distance(t.Position)
	s := Senses{Distance: d}
	if t.Concealed {
		return s
	}

	s.Seen = d <= p.cfg.VisionRange && p.InCone(origin, forward, t) && p.HasLineOfSight(origin, t)
	s.Heard = p.CanHear(t.NoiseLevel, d)
	s.Sensed = d <= p.cfg.ProximityRadius
	return s
}

// CanHear reports whether a sound of the given noise level carries over distance d.
// The effective radius scales with the noise: hearingRadiusMax × noise.
func (p *Perception) CanHear(noise, d float64) bool {
	if noise < p.cfg.HearingNoiseThreshold || noise <= 0 {
		return false
	}
	return d <= p.cfg.HearingRadiusMax*noise
}

// ConeHalfAngle returns the half-angle in degrees used against a target with the given noise.
// Crouch-walking targets are harder to spot: the cone is halved.
func (p *Perception) ConeHalfAngle(noise float64) float64 {
	angle := p.cfg.VisionAngle
	if noise > 0 && noise <= p.cfg.CrouchNoiseMax {
		angle *= 0.5
	}
	return angle * 0.5
}

// InCone reports whether the target lies within the agent's view cone.
func (p *Perception) InCone(origin, forward model.Location, t model.Target) bool {
	dir := t.Position.Sub(origin)
	return forward.AngleTo(dir) <= p.ConeHalfAngle(t.NoiseLevel)+coneEpsilon
}

// HasLineOfSight casts from eye height to the target's body height.
// Only obstructions block the ray; other targets standing in between do not.
// Targets beyond vision range are never in sight.
func (p *Perception) HasLineOfSight(origin model.Location, t model.Target) bool {
	if origin.Distance(t.Position) > p.cfg.VisionRange {
		return false
	}

	eye := origin.Add(model.Up.Scale(p.cfg.EyeHeight))
	body := t.Position.Add(model.Up.Scale(p.cfg.BodyHeight))
	dir := body.Sub(eye)
	dist := dir.Length()

	if hit, ok := p.world.Raycast(eye, dir.Normalize(), dist, t.ID); ok {
		return hit.Target == t.ID
	}
	return true
}
