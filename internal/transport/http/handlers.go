package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"bottle-spin/internal/session"

	"github.com/go-chi/chi/v5"
)

type JoinRequest struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
}

type ParticipantRequest struct {
	ParticipantID string `json:"participant_id"`
}

type CreateResponse struct {
	GameID    string `json:"game_id"`
	StreamURL string `json:"stream_url"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func HealthHandler(st *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true, "games": st.Len()})
	}
}

func CreateHandler(st *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricGameCreateTotal.Add(1)
		g := st.Create()
		writeJSON(w, CreateResponse{
			GameID:    g.ID,
			StreamURL: "/api/games/" + g.ID + "/events",
		})
	}
}

func GetHandler(st *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := st.Get(chi.URLParam(r, "game_id"))
		if err != nil {
			status, code := mapStoreErr(err)
			writeErr(w, status, code)
			return
		}
		writeJSON(w, g)
	}
}

func JoinHandler(st *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.ParticipantID == "" {
			writeErr(w, http.StatusBadRequest, "participant_required")
			return
		}
		g, err := st.Join(chi.URLParam(r, "game_id"), req.ParticipantID, req.DisplayName)
		if err != nil {
			status, code := mapStoreErr(err)
			writeErr(w, status, code)
			return
		}
		writeJSON(w, g)
	}
}

func LeaveHandler(st *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ParticipantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid_json")
			return
		}
		g, err := st.Leave(chi.URLParam(r, "game_id"), req.ParticipantID)
		if err != nil {
			status, code := mapStoreErr(err)
			writeErr(w, status, code)
			return
		}
		writeJSON(w, g)
	}
}

func HeartbeatHandler(st *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ParticipantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.ParticipantID == "" {
			writeErr(w, http.StatusBadRequest, "participant_required")
			return
		}
		if err := st.Heartbeat(chi.URLParam(r, "game_id"), req.ParticipantID); err != nil {
			status, code := mapStoreErr(err)
			writeErr(w, status, code)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func ActionsHandler(st *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricActionTotal.Add(1)
		var req session.ActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metricActionErrors.Add(1)
			writeErr(w, http.StatusBadRequest, "invalid_json")
			return
		}
		g, err := st.Apply(chi.URLParam(r, "game_id"), req)
		if err != nil {
			metricActionErrors.Add(1)
			status, code := mapStoreErr(err)
			writeErr(w, status, code)
			return
		}
		writeJSON(w, g)
	}
}

func mapStoreErr(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "game_not_found"
	case errors.Is(err, session.ErrFull):
		return http.StatusConflict, "game_full"
	case errors.Is(err, session.ErrSpinPending):
		return http.StatusConflict, "spin_pending"
	case errors.Is(err, session.ErrInvalidAction):
		return http.StatusBadRequest, "invalid_action"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: code})
}
