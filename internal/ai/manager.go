package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// ErrCommandQueueFull is returned when a scripted command cannot be queued.
var ErrCommandQueueFull = errors.New("command queue full")

// ErrControllerNotFound is returned for an unknown agent ID.
var ErrControllerNotFound = errors.New("controller not found")

// StepFunc runs around the controllers inside one tick.
type StepFunc func(dt float64)

// EventSink receives the events of one tick. The slice is reused after the call returns.
type EventSink func(events []Event)

// TickManager drives every registered controller from a single simulation goroutine.
// Commands from other goroutines are queued and applied at the start of the next tick.
type TickManager struct {
	controllers     sync.Map // agentID → Controller
	controllerCount atomic.Int32
	tickCount       atomic.Uint64

	interval time.Duration
	maxDelta time.Duration

	commands chan func()
	stopCh   chan struct{}
	stopOnce sync.Once

	beforeTick StepFunc
	afterTick  StepFunc
	sink       EventSink

	// tick-local buffers, simulation goroutine only
	order  []uint32
	events []Event
}

// NewTickManager creates new AI tick manager.
// maxDelta caps dt after a stall; queueSize bounds pending commands.
func NewTickManager(interval, maxDelta time.Duration, queueSize int) *TickManager {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &TickManager{
		interval: interval,
		maxDelta: maxDelta,
		commands: make(chan func(), queueSize),
		stopCh:   make(chan struct{}),
	}
}

// SetBeforeTick sets the hook run before controllers think (world and bot movement).
func (m *TickManager) SetBeforeTick(fn StepFunc) {
	m.beforeTick = fn
}

// SetAfterTick sets the hook run after controllers think (agent movement).
func (m *TickManager) SetAfterTick(fn StepFunc) {
	m.afterTick = fn
}

// SetEventSink sets the consumer of per-tick events.
func (m *TickManager) SetEventSink(fn EventSink) {
	m.sink = fn
}

// Register registers and starts an AI controller.
func (m *TickManager) Register(controller Controller) {
	id := controller.AgentID()
	if old, loaded := m.controllers.Swap(id, controller); loaded {
		old.(Controller).Stop()
	} else {
		m.controllerCount.Add(1)
	}
	controller.Start()

	slog.Debug("AI controller registered",
		"agentID", id,
		"state", controller.CurrentState())
}

// Unregister stops and removes an AI controller.
func (m *TickManager) Unregister(agentID uint32) {
	value, ok := m.controllers.LoadAndDelete(agentID)
	if !ok {
		return
	}

	m.controllerCount.Add(-1)

	controller := value.(Controller)
	controller.Stop()

	slog.Debug("AI controller unregistered", "agentID", agentID)
}

// Enqueue schedules fn on the simulation goroutine. Never blocks.
func (m *TickManager) Enqueue(fn func()) error {
	select {
	case m.commands <- fn:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// Command queues fn against the agent's Commander.
// Agents that vanish before the tick are skipped.
func (m *TickManager) Command(agentID uint32, fn func(Commander)) error {
	if _, ok := m.controllers.Load(agentID); !ok {
		return fmt.Errorf("agent %d: %w", agentID, ErrControllerNotFound)
	}
	return m.Enqueue(func() {
		value, ok := m.controllers.Load(agentID)
		if !ok {
			return
		}
		if cmd, ok := value.(Commander); ok {
			fn(cmd)
		}
	})
}

// Start starts AI tick loop (blocks until context is canceled)
func (m *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("AI tick manager started", "interval", m.interval)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("AI tick manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("AI tick manager stopped")
			return nil

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if m.maxDelta > 0 && dt > m.maxDelta {
				dt = m.maxDelta
			}
			m.Step(dt.Seconds())
		}
	}
}

// Stop stops AI tick loop
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Step runs one full tick: queued commands, world hook, controllers, movement hook, events.
// Must only be called from the simulation goroutine.
func (m *TickManager) Step(dt float64) {
	m.tickCount.Add(1)
	m.applyCommands()

	if m.beforeTick != nil {
		m.beforeTick(dt)
	}

	m.tickAll(dt)

	if m.afterTick != nil {
		m.afterTick(dt)
	}

	m.flushEvents()
}

func (m *TickManager) applyCommands() {
	for {
		select {
		case fn := <-m.commands:
			fn()
		default:
			return
		}
	}
}

// tickAll ticks all registered controllers in agent ID order.
func (m *TickManager) tickAll(dt float64) {
	m.order = m.order[:0]
	m.controllers.Range(func(key, _ any) bool {
		m.order = append(m.order, key.(uint32))
		return true
	})
	sort.Slice(m.order, func(i, j int) bool { return m.order[i] < m.order[j] })

	for _, id := range m.order {
		value, ok := m.controllers.Load(id)
		if !ok {
			continue
		}
		controller := value.(Controller)
		controller.Tick(dt)
		m.events = controller.DrainEvents(m.events)
	}

	if len(m.order) > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed",
			"tick", m.tickCount.Load(),
			"controllers", len(m.order),
			"events", len(m.events))
	}
}

func (m *TickManager) flushEvents() {
	if len(m.events) == 0 {
		return
	}
	if m.sink != nil {
		m.sink(m.events)
	}
	clear(m.events)
	m.events = m.events[:0]
}

// Statuses returns the latest snapshot of every agent that publishes one.
func (m *TickManager) Statuses() []AgentStatus {
	var out []AgentStatus
	m.controllers.Range(func(_, value any) bool {
		if r, ok := value.(StatusReporter); ok {
			out = append(out, r.Status())
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

// Count returns number of registered controllers
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// Ticks returns the number of ticks run so far.
func (m *TickManager) Ticks() uint64 {
	return m.tickCount.Load()
}

// GetController returns controller for agent
func (m *TickManager) GetController(agentID uint32) (Controller, error) {
	value, ok := m.controllers.Load(agentID)
	if !ok {
		return nil, fmt.Errorf("agent %d: %w", agentID, ErrControllerNotFound)
	}
	return value.(Controller), nil
}
