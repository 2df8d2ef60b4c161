package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"bottle-spin/internal/session"
	httptransport "bottle-spin/internal/transport/http"
)

func newTestServer(t *testing.T) (*session.Store, *Client, func()) {
	t.Helper()
	st := session.NewStore()
	srv := httptest.NewServer(httptransport.NewRouter(st, session.NewFeed(st)))
	return st, New(srv.URL), srv.Close
}

func TestClientCreateJoinAgainstServer(t *testing.T) {
	_, c, done := newTestServer(t)
	defer done()
	ctx := context.Background()

	gameID, err := c.CreateGame(ctx)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if gameID == "" {
		t.Fatal("empty game id")
	}

	g, err := c.Join(ctx, gameID, "p1", "Alice")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if len(g.Participants) != 1 || g.Participants[0].ID != "p1" {
		t.Fatalf("unexpected snapshot after join: %+v", g)
	}

	if _, err := c.Join(ctx, "NOPE", "p1", "Alice"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("join unknown game: err = %v, want ErrNotFound", err)
	}

	if _, err := c.Join(ctx, gameID, "p2", "Bob"); err != nil {
		t.Fatalf("Join p2: %v", err)
	}
	if _, err := c.Join(ctx, gameID, "p3", "Carol"); !errors.Is(err, session.ErrFull) {
		t.Fatalf("join full game: err = %v, want ErrFull", err)
	}
}

func TestClientActionErrorMapping(t *testing.T) {
	_, c, done := newTestServer(t)
	defer done()
	ctx := context.Background()

	gameID, err := c.CreateGame(ctx)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := c.Join(ctx, gameID, "p1", "Alice"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	g, err := c.Act(ctx, gameID, session.ActionRequest{ParticipantID: "p1", Action: session.ActionSpin})
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if !g.Spinning {
		t.Fatal("expected spinning after spin action")
	}
	_, err = c.Act(ctx, gameID, session.ActionRequest{ParticipantID: "p1", Action: session.ActionSpin})
	if !errors.Is(err, session.ErrSpinPending) {
		t.Fatalf("second spin: err = %v, want ErrSpinPending", err)
	}
	_, err = c.Act(ctx, gameID, session.ActionRequest{ParticipantID: "p1", Action: "juggle"})
	if !errors.Is(err, session.ErrInvalidAction) {
		t.Fatalf("invalid action: err = %v, want ErrInvalidAction", err)
	}
}

func TestClientSubscribeStreamsSnapshots(t *testing.T) {
	st, c, done := newTestServer(t)
	defer done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	g := st.Create()
	updates, err := c.Subscribe(ctx, g.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	select {
	case snap, ok := <-updates:
		if !ok {
			t.Fatal("stream closed before first snapshot")
		}
		if snap.ID != g.ID {
			t.Fatalf("snapshot id = %q, want %q", snap.ID, g.ID)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for first snapshot")
	}

	if _, err := c.Subscribe(ctx, "NOPE"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("subscribe unknown game: err = %v, want ErrNotFound", err)
	}
}
