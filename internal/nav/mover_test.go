package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/drifter/internal/model"
)

func TestMover_AdvanceTowardDestination(t *testing.T) {
	m := NewMover(model.NewLocation(0, 0, 0), model.Location{})
	m.SetSpeed(2)
	m.SetDestination(model.NewLocation(0, 10, 0))

	assert.True(t, m.PathPending())
	assert.Equal(t, model.NewLocation(1, 0, 0), m.Forward())

	m.Advance(1)

	assert.False(t, m.PathPending())
	assert.InDelta(t, 2, m.Position().Y, 1e-9)
	assert.InDelta(t, 8, m.RemainingDistance(), 1e-9)
	assert.Equal(t, model.NewLocation(0, 1, 0), m.Forward())
}

func TestMover_DoesNotOvershoot(t *testing.T) {
	m := NewMover(model.NewLocation(0, 0, 0), model.NewLocation(1, 0, 0))
	m.SetSpeed(3)
	m.SetDestination(model.NewLocation(2, 0, 0))

	m.Advance(1)

	assert.Equal(t, model.NewLocation(2, 0, 0), m.Position())
	assert.Zero(t, m.RemainingDistance())
}

func TestMover_StopResume(t *testing.T) {
	m := NewMover(model.NewLocation(0, 0, 0), model.NewLocation(1, 0, 0))
	m.SetSpeed(1)
	m.SetDestination(model.NewLocation(5, 0, 0))

	m.Stop()
	m.Advance(1)
	assert.Equal(t, model.NewLocation(0, 0, 0), m.Position())
	assert.True(t, m.Stopped())

	m.Resume()
	m.Advance(1)
	assert.InDelta(t, 1, m.Position().X, 1e-9)
}

func TestMover_SameDestinationStaysPlanned(t *testing.T) {
	m := NewMover(model.NewLocation(0, 0, 0), model.NewLocation(1, 0, 0))
	m.SetDestination(model.NewLocation(5, 0, 0))
	m.Advance(0.1)

	m.SetDestination(model.NewLocation(5, 0, 0))
	assert.False(t, m.PathPending())

	m.SetDestination(model.NewLocation(6, 0, 0))
	assert.True(t, m.PathPending())
}

func TestMover_FaceTowards(t *testing.T) {
	m := NewMover(model.NewLocation(1, 1, 0), model.NewLocation(1, 0, 0))

	m.FaceTowards(model.NewLocation(1, -4, 3))
	assert.Equal(t, model.NewLocation(0, -1, 0), m.Forward())

	m.FaceTowards(model.NewLocation(1, 1, 5))
	assert.Equal(t, model.NewLocation(0, -1, 0), m.Forward(), "straight up keeps facing")
}

func TestMover_NoDestination(t *testing.T) {
	m := NewMover(model.NewLocation(3, 3, 0), model.NewLocation(1, 0, 0))
	m.SetSpeed(5)
	m.Advance(1)

	assert.Equal(t, model.NewLocation(3, 3, 0), m.Position())
	assert.Zero(t, m.RemainingDistance())
	assert.False(t, m.PathPending())
}
