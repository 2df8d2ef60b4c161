package session

import (
	"errors"
	"testing"
	"time"
)

func (s *Store) setLastActivity(t *testing.T, id string, at time.Time) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.games[id]
	if g == nil {
		t.Fatalf("no such game %s", id)
	}
	g.LastActivityAt = at
}

func TestSweepSessionsReapsAbandoned(t *testing.T) {
	st := NewStore()
	g := st.Create()
	if _, err := st.Join(g.ID, "p1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := st.Leave(g.ID, "p1"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	if n := st.SweepSessions(time.Now()); n != 1 {
		t.Fatalf("expected 1 game reaped, got %d", n)
	}
	if _, err := st.Get(g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after reap, got %v", err)
	}
}

func TestSweepSessionsKeepsActiveGame(t *testing.T) {
	st := NewStore()
	g := st.Create()
	if _, err := st.Join(g.ID, "p1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}

	now := time.Now()
	st.setLastActivity(t, g.ID, now.Add(-29*time.Minute))
	if n := st.SweepSessions(now); n != 0 {
		t.Fatalf("29min idle with a connected participant must survive, reaped %d", n)
	}

	st.setLastActivity(t, g.ID, now.Add(-31*time.Minute))
	if n := st.SweepSessions(now); n != 1 {
		t.Fatalf("31min idle must be reaped regardless of connections, reaped %d", n)
	}
}

func TestSweepSessionsReapsEmptyGames(t *testing.T) {
	st := NewStore()
	st.Create()
	if n := st.SweepSessions(time.Now()); n != 1 {
		t.Fatalf("a game nobody joined has no connected participants, reaped %d", n)
	}
}
