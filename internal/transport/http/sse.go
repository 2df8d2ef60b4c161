package httptransport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bottle-spin/internal/session"

	"github.com/go-chi/chi/v5"
)

// StreamEvent is one frame of the game event stream.
type StreamEvent struct {
	EventID  string `json:"event_id,omitempty"`
	Event    string `json:"event"`
	GameID   string `json:"game_id"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data,omitempty"`
}

// EventsSSEHandler bridges a feed subscription onto an SSE response. The
// subscription is bound to the request context, so a client disconnect
// tears the poll loop down with it.
func EventsSSEHandler(feed *session.Feed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "game_id")
		if gameID == "" {
			writeErr(w, http.StatusBadRequest, "game_not_found")
			return
		}
		events, err := feed.Subscribe(r.Context(), gameID)
		if err != nil {
			status, code := mapStoreErr(err)
			writeErr(w, status, code)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeErr(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}
		SetSSEHeaders(w)
		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		var seq int64
		for ev := range events {
			seq++
			out := StreamEvent{
				EventID:  strconv.FormatInt(seq, 10),
				GameID:   gameID,
				ServerTS: time.Now().UnixMilli(),
			}
			switch ev.Type {
			case session.FeedSnapshot:
				out.Event = "snapshot"
				out.Data = ev.Session
			case session.FeedClosed:
				out.Event = "close"
			}
			if err := WriteSSE(w, out); err != nil {
				// Emission failed mid-stream; tell the subscriber the
				// sequence is over rather than going silent.
				_ = WriteSSE(w, StreamEvent{Event: "error", GameID: gameID, ServerTS: time.Now().UnixMilli()})
				flusher.Flush()
				return
			}
			flusher.Flush()
			if ev.Type == session.FeedClosed {
				return
			}
		}
	}
}

// SetSSEHeaders applies headers that keep event streams stable across proxies.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Content-Type-Options", "nosniff")
}

func WriteSSE(w http.ResponseWriter, ev StreamEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ev.EventID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", ev.EventID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", ev.Event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
