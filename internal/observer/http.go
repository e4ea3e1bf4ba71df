package observer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/udisondev/drifter/internal/db"
	"github.com/udisondev/drifter/internal/model"
)

// HistorySource reads journaled events of an agent.
type HistorySource interface {
	History(ctx context.Context, agentID uint32, limit int) ([]db.EventRecord, error)
}

type handler struct {
	hub      *Hub
	history  HistorySource
	upgrader websocket.Upgrader
}

// NewHandler returns the observer HTTP surface:
// /ws for the live feed, /agents/{id}/events for journal history and /health.
// History takes optional limit and state query parameters.
// history may be nil when the journal is disabled.
func NewHandler(hub *Hub, history HistorySource) http.Handler {
	h := &handler{
		hub:     hub,
		history: history,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", h.serveWS)
	mux.HandleFunc("GET /agents/{id}/events", h.serveHistory)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (h *handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		hub:    h.hub,
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan []byte, h.hub.cfg.SendQueueSize),
	}

	select {
	case h.hub.register <- c:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

func (h *handler) serveHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		httpError(w, "journal disabled", http.StatusNotFound)
		return
	}

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		httpError(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httpError(w, "invalid limit", http.StatusBadRequest)
			return
		}
	}

	var state string
	if raw := r.URL.Query().Get("state"); raw != "" {
		parsed, ok := model.ParsePursuitState(strings.ToUpper(raw))
		if !ok {
			httpError(w, "invalid state", http.StatusBadRequest)
			return
		}
		state = parsed.String()
	}

	records, err := h.history.History(r.Context(), uint32(id), limit)
	if err != nil {
		slog.Error("reading agent history", "agentID", id, "error", err)
		httpError(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if state != "" {
		records = filterState(records, state)
	}
	if records == nil {
		records = []db.EventRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		slog.Warn("writing agent history", "agentID", id, "error", err)
	}
}

// filterState keeps the state changes into state. The limit applies before filtering.
func filterState(records []db.EventRecord, state string) []db.EventRecord {
	out := records[:0]
	for _, rec := range records {
		if rec.State != nil && *rec.State == state {
			out = append(out, rec)
		}
	}
	return out
}

func httpError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorMessage{Type: typeError, Error: msg})
}
