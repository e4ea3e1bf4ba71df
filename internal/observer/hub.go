package observer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/udisondev/drifter/internal/ai"
	"github.com/udisondev/drifter/internal/model"
)

// AgentSource exposes agent snapshots; safe for concurrent use.
type AgentSource interface {
	Statuses() []ai.AgentStatus
	Ticks() uint64
}

// TargetSource exposes target snapshots; safe for concurrent use.
type TargetSource interface {
	Targets() []model.Target
}

// CommandSink queues overrides onto the simulation goroutine.
type CommandSink interface {
	Command(agentID uint32, fn func(ai.Commander)) error
}

// Config tunes the hub.
type Config struct {
	SendQueueSize    int
	WriteTimeout     time.Duration
	SnapshotInterval time.Duration
}

// Hub fans simulation events and snapshots out to websocket observers.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	cfg      Config
	agents   AgentSource
	targets  TargetSource
	commands CommandSink

	register   chan *client
	unregister chan *client
	replies    chan clientReply
	events     chan []ai.Event
	done       chan struct{}

	clients     map[*client]struct{}
	clientCount atomic.Int64
	lastStates  map[uint32]eventMessage
}

type clientReply struct {
	c    *client
	data []byte
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(cfg Config, agents AgentSource, targets TargetSource, commands CommandSink) *Hub {
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Hub{
		cfg:        cfg,
		agents:     agents,
		targets:    targets,
		commands:   commands,
		register:   make(chan *client),
		unregister: make(chan *client),
		replies:    make(chan clientReply, 64),
		events:     make(chan []ai.Event, 64),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		lastStates: make(map[uint32]eventMessage),
	}
}

// Publish hands a tick's events to the hub without blocking.
// The slice is copied; callers may reuse it.
func (h *Hub) Publish(events []ai.Event) {
	if len(events) == 0 {
		return
	}
	batch := make([]ai.Event, len(events))
	copy(batch, events)

	select {
	case h.events <- batch:
	default:
		slog.Warn("observer hub lagging, events dropped", "events", len(batch))
	}
}

// Run serves registrations, events and snapshots until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	var snapshots <-chan time.Time
	if h.cfg.SnapshotInterval > 0 {
		ticker := time.NewTicker(h.cfg.SnapshotInterval)
		defer ticker.Stop()
		snapshots = ticker.C
	}

	slog.Info("observer hub started", "snapshotInterval", h.cfg.SnapshotInterval)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			slog.Info("observer hub stopped")
			return nil

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.clientCount.Add(1)
			h.sendTo(c, h.welcome())
			slog.Debug("observer connected", "remote", c.remote, "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				slog.Debug("observer disconnected", "remote", c.remote, "clients", len(h.clients))
			}

		case r := <-h.replies:
			if _, ok := h.clients[r.c]; ok {
				h.enqueue(r.c, r.data)
			}

		case batch := <-h.events:
			for _, e := range batch {
				msg := newEventMessage(e)
				if e.Kind == ai.EventStateChanged {
					h.lastStates[e.AgentID] = msg
				}
				h.broadcast(msg)
			}

		case <-snapshots:
			if len(h.clients) > 0 {
				h.broadcast(h.snapshot())
			}
		}
	}
}

// ClientCount returns the number of connected observers.
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

func (h *Hub) snapshot() snapshotMessage {
	statuses := h.agents.Statuses()
	targets := h.targets.Targets()

	msg := snapshotMessage{
		Type:    typeSnapshot,
		Tick:    h.agents.Ticks(),
		Agents:  make([]agentView, 0, len(statuses)),
		Targets: make([]targetView, 0, len(targets)),
	}
	for _, s := range statuses {
		msg.Agents = append(msg.Agents, newAgentView(s))
	}
	for _, t := range targets {
		msg.Targets = append(msg.Targets, newTargetView(t))
	}
	return msg
}

func (h *Hub) welcome() welcomeMessage {
	msg := welcomeMessage{
		Type:       typeWelcome,
		Snapshot:   h.snapshot(),
		LastStates: make([]eventMessage, 0, len(h.lastStates)),
	}
	for _, e := range h.lastStates {
		msg.LastStates = append(msg.LastStates, e)
	}
	sort.Slice(msg.LastStates, func(i, j int) bool {
		return msg.LastStates[i].AgentID < msg.LastStates[j].AgentID
	})
	return msg
}

func (h *Hub) broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding observer message", "error", err)
		return
	}
	for c := range h.clients {
		h.enqueue(c, data)
	}
}

func (h *Hub) sendTo(c *client, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding observer message", "error", err)
		return
	}
	h.enqueue(c, data)
}

// enqueue drops observers that cannot keep up.
func (h *Hub) enqueue(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("observer send queue full, disconnecting", "remote", c.remote)
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	h.clientCount.Add(-1)
	close(c.send)
}

// reply routes a direct answer through the Run goroutine, which owns c.send.
func (h *Hub) reply(c *client, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding observer message", "error", err)
		return
	}
	select {
	case h.replies <- clientReply{c: c, data: data}:
	case <-h.done:
	}
}

// handleCommand runs on the client's read goroutine.
func (h *Hub) handleCommand(c *client, payload []byte) {
	agentID, fn, err := parseCommand(payload)
	if err != nil {
		slog.Warn("discarding malformed observer command",
			"remote", c.remote,
			"error", err)
		h.reply(c, errorMessage{Type: typeError, Error: err.Error()})
		return
	}

	if err := h.commands.Command(agentID, fn); err != nil {
		slog.Warn("observer command rejected",
			"agentID", agentID,
			"error", err)
		h.reply(c, errorMessage{Type: typeError, Error: err.Error()})
	}
}
