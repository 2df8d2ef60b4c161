package session

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Apply runs a game action. A spin is accepted immediately and resolves
// asynchronously once the spin duration elapses; only one spin can be in
// flight per game.
func (s *Store) Apply(id string, req ActionRequest) (Session, error) {
	switch req.Action {
	case ActionSpin:
		return s.startSpin(id, req.ParticipantID)
	case ActionReset:
		return s.reset(id)
	default:
		return Session{}, ErrInvalidAction
	}
}

func (s *Store) startSpin(id, participantID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.games[id]
	if g == nil {
		return Session{}, ErrNotFound
	}
	if g.participant(participantID) == nil {
		return Session{}, ErrNotFound
	}
	if g.Spinning {
		return Session{}, ErrSpinPending
	}
	g.Spinning = true
	g.LastOutcome = ""
	g.LastActivityAt = time.Now()
	time.AfterFunc(s.spinDuration, func() { s.resolveSpin(id) })
	return g.clone(), nil
}

func (s *Store) resolveSpin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.games[id]
	if g == nil || !g.Spinning || len(g.Participants) == 0 {
		// Reaped or reset while the bottle was still turning.
		return
	}
	choice := ChoiceTruth
	if s.rnd.Intn(2) == 1 {
		choice = ChoiceDare
	}
	// The index can go stale across a reset; clamp before use.
	if g.TurnIndex >= len(g.Participants) {
		g.TurnIndex = 0
	}
	name := g.Participants[g.TurnIndex].DisplayName
	if name == "" {
		name = fmt.Sprintf("Player %d", g.TurnIndex+1)
	}
	now := time.Now()
	g.History = append(g.History, Outcome{Participant: name, Choice: choice, At: now})
	g.TurnIndex = (g.TurnIndex + 1) % len(g.Participants)
	g.Spinning = false
	g.LastOutcome = choice
	g.LastActivityAt = now
	log.Debug().Str("game_id", id).Str("choice", string(choice)).Str("participant", name).Msg("spin resolved")
}

func (s *Store) reset(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.games[id]
	if g == nil {
		return Session{}, ErrNotFound
	}
	g.TurnIndex = 0
	g.Spinning = false
	g.LastOutcome = ""
	g.History = []Outcome{}
	g.LastActivityAt = time.Now()
	return g.clone(), nil
}
