package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bottle-spin/internal/session"
)

func newTestRouter() (*session.Store, http.Handler) {
	st := session.NewStore()
	return st, NewRouter(st, session.NewFeed(st))
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var er ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&er); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return er.Error
}

func TestCreateAndGetGame(t *testing.T) {
	_, h := newTestRouter()

	rec := doJSON(t, h, http.MethodPost, "/api/games", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created CreateResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.GameID == "" {
		t.Fatal("expected a game id")
	}
	if want := "/api/games/" + created.GameID + "/events"; created.StreamURL != want {
		t.Fatalf("stream url = %q, want %q", created.StreamURL, want)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/games/"+created.GameID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/games/NOPE", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing game status = %d", rec.Code)
	}
	if code := decodeErr(t, rec); code != "game_not_found" {
		t.Fatalf("error code = %q", code)
	}
}

func TestJoinFlowOverHTTP(t *testing.T) {
	st, h := newTestRouter()
	g := st.Create()
	path := "/api/games/" + g.ID + "/join"

	rec := doJSON(t, h, http.MethodPost, path, JoinRequest{ParticipantID: "p1", DisplayName: "Alice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("join p1 status = %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, path, JoinRequest{ParticipantID: "p2", DisplayName: "Bob"})
	if rec.Code != http.StatusOK {
		t.Fatalf("join p2 status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, path, JoinRequest{ParticipantID: "p3", DisplayName: "Carol"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("full game status = %d", rec.Code)
	}
	if code := decodeErr(t, rec); code != "game_full" {
		t.Fatalf("error code = %q", code)
	}

	rec = doJSON(t, h, http.MethodPost, path, JoinRequest{DisplayName: "NoID"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("join without participant id status = %d", rec.Code)
	}
}

func TestHeartbeatOverHTTP(t *testing.T) {
	st, h := newTestRouter()
	g := st.Create()
	if _, err := st.Join(g.ID, "p1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/games/"+g.ID+"/heartbeat", ParticipantRequest{ParticipantID: "p1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("heartbeat status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/games/"+g.ID+"/heartbeat", ParticipantRequest{ParticipantID: "ghost"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown participant status = %d", rec.Code)
	}
}

func TestActionConflictOverHTTP(t *testing.T) {
	st, h := newTestRouter()
	g := st.Create()
	if _, err := st.Join(g.ID, "p1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	path := "/api/games/" + g.ID + "/actions"

	rec := doJSON(t, h, http.MethodPost, path, session.ActionRequest{ParticipantID: "p1", Action: session.ActionSpin})
	if rec.Code != http.StatusOK {
		t.Fatalf("spin status = %d", rec.Code)
	}
	var snap session.Session
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if !snap.Spinning {
		t.Fatal("expected spinning snapshot")
	}

	rec = doJSON(t, h, http.MethodPost, path, session.ActionRequest{ParticipantID: "p1", Action: session.ActionSpin})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second spin status = %d", rec.Code)
	}
	if code := decodeErr(t, rec); code != "spin_pending" {
		t.Fatalf("error code = %q", code)
	}

	rec = doJSON(t, h, http.MethodPost, path, session.ActionRequest{ParticipantID: "p1", Action: "fold"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid action status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	st, h := newTestRouter()
	st.Create()
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if got := fmt.Sprintf("%v", body["games"]); got != "1" {
		t.Fatalf("games = %v, want 1", body["games"])
	}
}
