// Package nav drives agent movement in straight lines toward a destination.
package nav

import (
	"github.com/udisondev/drifter/internal/ai"
	"github.com/udisondev/drifter/internal/model"
)

// Mover is a kinematic movement driver implementing ai.Mover.
// Paths are single segments. A fresh destination stays pending until the next Advance,
// as a path planner would.
type Mover struct {
	position model.Location
	forward  model.Location

	destination model.Location
	hasDest     bool
	pending     bool
	speed       float64
	stopped     bool
}

var _ ai.Mover = (*Mover)(nil)

// NewMover creates a mover at start facing forward.
// A zero forward faces +X.
func NewMover(start, forward model.Location) *Mover {
	forward = forward.Flat().Normalize()
	if forward == (model.Location{}) {
		forward = model.NewLocation(1, 0, 0)
	}
	return &Mover{position: start, forward: forward}
}

// Position returns the current position.
func (m *Mover) Position() model.Location { return m.position }

// Forward returns the flat unit facing.
func (m *Mover) Forward() model.Location { return m.forward }

// FaceTowards turns in place toward point. Points straight above or below are ignored.
func (m *Mover) FaceTowards(point model.Location) {
	if dir := point.Sub(m.position).Flat().Normalize(); dir != (model.Location{}) {
		m.forward = dir
	}
}

// SetDestination sets a new target point.
func (m *Mover) SetDestination(point model.Location) {
	if m.hasDest && point == m.destination {
		return
	}
	m.destination = point
	m.hasDest = true
	m.pending = true
}

// SetSpeed sets travel speed in units per second.
func (m *Mover) SetSpeed(v float64) {
	if v < 0 {
		v = 0
	}
	m.speed = v
}

// Speed returns the travel speed.
func (m *Mover) Speed() float64 { return m.speed }

// PathPending reports whether the last destination has not been planned yet.
func (m *Mover) PathPending() bool { return m.pending }

// RemainingDistance returns the distance left to the destination, 0 without one.
func (m *Mover) RemainingDistance() float64 {
	if !m.hasDest {
		return 0
	}
	return m.position.Distance(m.destination)
}

// Stop halts movement until Resume.
func (m *Mover) Stop() { m.stopped = true }

// Resume continues toward the destination.
func (m *Mover) Resume() { m.stopped = false }

// Stopped reports whether the mover is halted.
func (m *Mover) Stopped() bool { return m.stopped }

// Advance moves along the segment for dt seconds and faces the travel direction.
func (m *Mover) Advance(dt float64) {
	m.pending = false
	if !m.hasDest || m.stopped || m.speed <= 0 || dt <= 0 {
		return
	}

	delta := m.destination.Sub(m.position)
	dist := delta.Length()
	if dist == 0 {
		return
	}

	if dir := delta.Flat().Normalize(); dir != (model.Location{}) {
		m.forward = dir
	}

	step := m.speed * dt
	if step >= dist {
		m.position = m.destination
		return
	}
	m.position = m.position.Add(delta.Scale(step / dist))
}
