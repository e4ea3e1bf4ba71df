package world

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/ai"
	"github.com/udisondev/drifter/internal/model"
)

var (
	ErrTargetExists   = errors.New("target already exists")
	ErrTargetNotFound = errors.New("target not found")
	ErrTargetHidden   = errors.New("target is hidden")
	ErrSpotExists     = errors.New("hiding spot already exists")
	ErrSpotNotFound   = errors.New("hiding spot not found")
	ErrSpotOccupied   = errors.New("hiding spot occupied")
	ErrSpotSearched   = errors.New("hiding spot is being searched")
)

// Body geometry used for ray hits against targets.
const (
	DefaultBodyRadius = 0.4
	DefaultBodyHeight = 1.0
)

// Options configures a World.
type Options struct {
	CellSize   float64
	BodyRadius float64 // target sphere radius for rays
	BodyHeight float64 // sphere center above the target position
}

// DefaultOptions returns Options with stock geometry.
func DefaultOptions() Options {
	return Options{
		CellSize:   DefaultCellSize,
		BodyRadius: DefaultBodyRadius,
		BodyHeight: DefaultBodyHeight,
	}
}

type targetEntry struct {
	target   model.Target
	hiddenIn *model.HidingSpot
}

// World is the arena: targets, hiding spots and static obstacles on a uniform grid.
// It implements ai.SpatialQuery.
type World struct {
	opts Options

	mu        sync.RWMutex
	regions   map[cellKey]*Region
	targets   map[uuid.UUID]*targetEntry
	spots     map[uint32]*model.HidingSpot
	obstacles []Box
}

var _ ai.SpatialQuery = (*World)(nil)

// New creates an empty world.
func New(opts Options) *World {
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultCellSize
	}
	if opts.BodyRadius <= 0 {
		opts.BodyRadius = DefaultBodyRadius
	}
	return &World{
		opts:    opts,
		regions: make(map[cellKey]*Region),
		targets: make(map[uuid.UUID]*targetEntry),
		spots:   make(map[uint32]*model.HidingSpot),
	}
}

// getRegion returns the region at a location, creating it when asked.
func (w *World) getRegion(p model.Location, create bool) *Region {
	rx, ry := CoordToRegionIndex(p.X, p.Y, w.opts.CellSize)
	key := cellKey{rx, ry}
	region, ok := w.regions[key]
	if !ok && create {
		region = NewRegion(rx, ry)
		w.regions[key] = region
	}
	return region
}

// forEachRegion visits existing regions overlapping the square around center.
func (w *World) forEachRegion(center model.Location, radius float64, fn func(*Region)) {
	minRX, minRY, maxRX, maxRY := regionRange(center.X, center.Y, radius, w.opts.CellSize)
	for rx := minRX; rx <= maxRX; rx++ {
		for ry := minRY; ry <= maxRY; ry++ {
			if region, ok := w.regions[cellKey{rx, ry}]; ok {
				fn(region)
			}
		}
	}
}

// AddObstacle adds static geometry that blocks rays.
func (w *World) AddObstacle(b Box) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.obstacles = append(w.obstacles, b)
}

// AddHidingSpot registers a hiding spot.
func (w *World) AddHidingSpot(spot *model.HidingSpot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.spots[spot.ID()]; ok {
		return fmt.Errorf("spot %d: %w", spot.ID(), ErrSpotExists)
	}
	w.spots[spot.ID()] = spot
	w.getRegion(spot.Position(), true).addSpot(spot)
	return nil
}

// HidingSpot returns a hiding spot by ID.
func (w *World) HidingSpot(id uint32) (*model.HidingSpot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	spot, ok := w.spots[id]
	return spot, ok
}

// TickCooldowns counts down every hiding spot that is cooling down.
func (w *World) TickCooldowns(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, spot := range w.spots {
		if spot.OnCooldown() {
			spot.TickCooldown(dt)
		}
	}
}

// AddTarget adds a target. A nil ID gets a fresh one.
func (w *World) AddTarget(t model.Target) (uuid.UUID, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.NoiseLevel = model.ClampNoise(t.NoiseLevel)
	t.Concealed = false

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.targets[t.ID]; ok {
		return uuid.Nil, fmt.Errorf("target %s: %w", t.ID, ErrTargetExists)
	}
	w.targets[t.ID] = &targetEntry{target: t}
	w.getRegion(t.Position, true).addTarget(t.ID)
	return t.ID, nil
}

// RemoveTarget removes a target, pulling it out of any hiding spot.
func (w *World) RemoveTarget(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.targets[id]
	if !ok {
		return false
	}
	if entry.hiddenIn != nil {
		entry.hiddenIn.ForceExit()
	}
	if region := w.getRegion(entry.target.Position, false); region != nil {
		region.removeTarget(id)
	}
	delete(w.targets, id)
	return true
}

// MoveTarget moves a visible target. Hidden targets cannot move.
func (w *World) MoveTarget(id uuid.UUID, to model.Location) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.targets[id]
	if !ok {
		return fmt.Errorf("target %s: %w", id, ErrTargetNotFound)
	}
	if entry.hiddenIn != nil {
		return fmt.Errorf("target %s: %w", id, ErrTargetHidden)
	}
	w.relocate(entry, to)
	return nil
}

func (w *World) relocate(entry *targetEntry, to model.Location) {
	from := w.getRegion(entry.target.Position, false)
	dest := w.getRegion(to, true)
	if from != dest {
		if from != nil {
			from.removeTarget(entry.target.ID)
		}
		dest.addTarget(entry.target.ID)
	}
	entry.target.Position = to
}

// SetNoise sets how loud a target currently moves, clamped to [0,1].
func (w *World) SetNoise(id uuid.UUID, noise float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.targets[id]
	if !ok {
		return fmt.Errorf("target %s: %w", id, ErrTargetNotFound)
	}
	entry.target.NoiseLevel = model.ClampNoise(noise)
	return nil
}

// Hide puts a target inside a hiding spot. The target snaps to the spot and goes silent.
func (w *World) Hide(id uuid.UUID, spotID uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.targets[id]
	if !ok {
		return fmt.Errorf("target %s: %w", id, ErrTargetNotFound)
	}
	if entry.hiddenIn != nil {
		return fmt.Errorf("target %s: %w", id, ErrTargetHidden)
	}
	spot, ok := w.spots[spotID]
	if !ok {
		return fmt.Errorf("spot %d: %w", spotID, ErrSpotNotFound)
	}
	if !spot.Enter(id) {
		return fmt.Errorf("spot %d: %w", spotID, ErrSpotOccupied)
	}

	entry.hiddenIn = spot
	entry.target.NoiseLevel = 0
	w.relocate(entry, spot.Position())
	return nil
}

// Unhide lets a target leave its spot. Refused while the spot is being searched.
func (w *World) Unhide(id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.targets[id]
	if !ok {
		return fmt.Errorf("target %s: %w", id, ErrTargetNotFound)
	}
	if entry.hiddenIn == nil {
		return nil
	}
	if !entry.hiddenIn.Exit(id) {
		return fmt.Errorf("spot %d: %w", entry.hiddenIn.ID(), ErrSpotSearched)
	}
	entry.hiddenIn = nil
	return nil
}

// EjectOccupant forces the occupant out of a spot, ignoring any search in progress.
func (w *World) EjectOccupant(spotID uint32) (uuid.UUID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	spot, ok := w.spots[spotID]
	if !ok {
		return uuid.Nil, false
	}
	occupant, ok := spot.ForceExit()
	if !ok {
		return uuid.Nil, false
	}
	if entry, found := w.targets[occupant]; found {
		entry.hiddenIn = nil
	}
	return occupant, true
}

// snapshot builds the read-only view of a target; concealment follows occupancy.
func (e *targetEntry) snapshot() model.Target {
	t := e.target
	t.Concealed = e.hiddenIn != nil
	return t
}

// Target resolves a live target by identity.
func (w *World) Target(id uuid.UUID) (model.Target, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	entry, ok := w.targets[id]
	if !ok {
		return model.Target{}, false
	}
	return entry.snapshot(), true
}

// Targets returns every target ordered by name then ID.
func (w *World) Targets() []model.Target {
	w.mu.RLock()
	out := make([]model.Target, 0, len(w.targets))
	for _, entry := range w.targets {
		out = append(out, entry.snapshot())
	}
	w.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Target) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

// TargetCount returns the number of live targets.
func (w *World) TargetCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.targets)
}

// OverlapTargets returns every target within radius of center, concealed ones included.
func (w *World) OverlapTargets(center model.Location, radius float64) []model.Target {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []model.Target
	w.forEachRegion(center, radius, func(r *Region) {
		r.ForEachTarget(func(id uuid.UUID) bool {
			entry := w.targets[id]
			if center.Distance(entry.target.Position) <= radius {
				out = append(out, entry.snapshot())
			}
			return true
		})
	})
	return out
}

// OverlapHidingSpots returns every hiding spot within radius of center.
func (w *World) OverlapHidingSpots(center model.Location, radius float64) []*model.HidingSpot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []*model.HidingSpot
	w.forEachRegion(center, radius, func(r *Region) {
		for _, s := range r.spots {
			if center.Distance(s.Position()) <= radius {
				out = append(out, s)
			}
		}
	})
	return out
}

// Raycast returns the nearest obstacle hit along dir, or the body of target
// when it is closer. Other bodies are transparent; a hidden target is never hit.
// dir is normalized here.
func (w *World) Raycast(origin, dir model.Location, maxDistance float64, target uuid.UUID) (ai.RayHit, bool) {
	dir = dir.Normalize()
	if dir == (model.Location{}) || maxDistance <= 0 {
		return ai.RayHit{}, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	best := math.MaxFloat64
	var hit ai.RayHit
	found := false

	for _, b := range w.obstacles {
		if d, ok := b.intersectRay(origin, dir, maxDistance); ok && d < best {
			best = d
			hit = ai.RayHit{Distance: d}
			found = true
		}
	}

	if entry, ok := w.targets[target]; ok && entry.hiddenIn == nil {
		center := entry.target.Position.Add(model.Up.Scale(w.opts.BodyHeight))
		if d, ok := intersectSphere(origin, dir, center, w.opts.BodyRadius, maxDistance); ok && d < best {
			best = d
			hit = ai.RayHit{Distance: d, Target: target}
			found = true
		}
	}

	if found {
		hit.Point = origin.Add(dir.Scale(hit.Distance))
	}
	return hit, found
}
