package db

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/drifter/internal/ai"
	"github.com/udisondev/drifter/internal/config"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000

	// final flush budget after the writer context is cancelled
	shutdownFlushTimeout = 5 * time.Second
)

const insertEventSQL = `INSERT INTO drifter_events (agent_id, tick, kind, state, searching, spot_id, victim)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// EventRecord is a persisted pursuit event.
type EventRecord struct {
	ID        int64      `json:"id"`
	AgentID   uint32     `json:"agentId"`
	Tick      uint64     `json:"tick"`
	Kind      string     `json:"kind"`
	State     *string    `json:"state,omitempty"`
	Searching *bool      `json:"searching,omitempty"`
	SpotID    *uint32    `json:"spotId,omitempty"`
	Victim    *uuid.UUID `json:"victim,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Journal persists agent events asynchronously.
// Record never blocks the tick loop: when the queue is full events are dropped.
type Journal struct {
	pool  *pgxpool.Pool
	cfg   config.JournalConfig
	queue chan ai.Event

	dropped atomic.Uint64
	written atomic.Uint64
}

// NewJournal creates a journal writing through pool.
func NewJournal(pool *pgxpool.Pool, cfg config.JournalConfig) *Journal {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 4096
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 256
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	return &Journal{
		pool:  pool,
		cfg:   cfg,
		queue: make(chan ai.Event, cfg.QueueSize),
	}
}

// Record enqueues events for the writer.
func (j *Journal) Record(events []ai.Event) {
	var dropped uint64
	for _, e := range events {
		select {
		case j.queue <- e:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		total := j.dropped.Add(dropped)
		slog.Warn("journal queue full, events dropped",
			"dropped", dropped,
			"total", total)
	}
}

// Dropped returns the number of events lost to a full queue.
func (j *Journal) Dropped() uint64 {
	return j.dropped.Load()
}

// Written returns the number of events persisted.
func (j *Journal) Written() uint64 {
	return j.written.Load()
}

// Run drains the queue into the database until ctx is cancelled.
// Pending events are flushed before it returns.
func (j *Journal) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]ai.Event, 0, j.cfg.BatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := j.insert(ctx, batch); err != nil {
			slog.Error("journal flush failed",
				"events", len(batch),
				"error", err)
		} else {
			j.written.Add(uint64(len(batch)))
		}
		batch = batch[:0]
	}

	slog.Info("journal writer started",
		"batchSize", j.cfg.BatchSize,
		"flushInterval", j.cfg.FlushInterval)

	for {
		select {
		case <-ctx.Done():
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownFlushTimeout)
		drain:
			for {
				select {
				case e := <-j.queue:
					batch = append(batch, e)
					if len(batch) >= j.cfg.BatchSize {
						flush(fctx)
					}
				default:
					break drain
				}
			}
			flush(fctx)
			cancel()
			slog.Info("journal writer stopped", "written", j.written.Load())
			return nil

		case e := <-j.queue:
			batch = append(batch, e)
			if len(batch) >= j.cfg.BatchSize {
				flush(ctx)
			}

		case <-ticker.C:
			flush(ctx)
		}
	}
}

func (j *Journal) insert(ctx context.Context, events []ai.Event) error {
	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(insertEventSQL, eventArgs(e)...)
	}

	br := j.pool.SendBatch(ctx, batch)
	for range events {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert event: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return nil
}

// eventArgs maps an event to insert parameters; fields foreign to the kind are NULL.
func eventArgs(e ai.Event) []any {
	var (
		state     any
		searching any
		spotID    any
		victim    any
	)
	switch e.Kind {
	case ai.EventStateChanged:
		state = e.State.String()
	case ai.EventSearchChanged:
		searching = e.Searching
		spotID = int64(e.SpotID)
	case ai.EventKilled:
		victim = e.Victim
	}
	return []any{int64(e.AgentID), int64(e.Tick), e.Kind.String(), state, searching, spotID, victim}
}

// History returns the newest events of an agent, newest first.
func (j *Journal) History(ctx context.Context, agentID uint32, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	rows, err := j.pool.Query(ctx,
		`SELECT id, agent_id, tick, kind, state, searching, spot_id, victim, created_at
		 FROM drifter_events WHERE agent_id = $1
		 ORDER BY id DESC LIMIT $2`,
		int64(agentID), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events of agent %d: %w", agentID, err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			rec     EventRecord
			agent   int64
			tick    int64
			spot    *int64
			victimS *string
		)
		if err := rows.Scan(&rec.ID, &agent, &tick, &rec.Kind, &rec.State, &rec.Searching, &spot, &victimS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		rec.AgentID = uint32(agent)
		rec.Tick = uint64(tick)
		if spot != nil {
			id := uint32(*spot)
			rec.SpotID = &id
		}
		if victimS != nil {
			v, err := uuid.Parse(*victimS)
			if err != nil {
				return nil, fmt.Errorf("parsing victim %q: %w", *victimS, err)
			}
			rec.Victim = &v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return out, nil
}
