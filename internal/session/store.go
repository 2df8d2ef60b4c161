package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store owns every live game. All reads and mutations go through its
// methods under one lock, so concurrent joins on the same game can never
// double-assign a seat, and every method returns a value copy.
type Store struct {
	mu    sync.Mutex
	games map[string]*Session

	spinDuration          time.Duration
	presenceSweepInterval time.Duration
	reapSweepInterval     time.Duration
	rnd                   *rand.Rand
}

func NewStore() *Store {
	return &Store{
		games:                 map[string]*Session{},
		spinDuration:          SpinDuration,
		presenceSweepInterval: PresenceSweepInterval,
		reapSweepInterval:     ReapSweepInterval,
		rnd:                   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create allocates an empty game under a fresh code. It never fails.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := NewCode()
	for s.games[code] != nil {
		code = NewCode()
	}
	now := time.Now()
	g := &Session{
		ID:             code,
		Participants:   []Participant{},
		History:        []Outcome{},
		CreatedAt:      now,
		LastActivityAt: now,
	}
	s.games[code] = g
	log.Info().Str("game_id", code).Msg("game created")
	return g.clone()
}

func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.games[id]
	if g == nil {
		return Session{}, ErrNotFound
	}
	return g.clone(), nil
}

// Join seats a new participant or, for a known participant id, refreshes
// liveness on the existing seat. Rejoin is idempotent so the reconnect
// path reuses the same call.
func (s *Store) Join(id, participantID, displayName string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.games[id]
	if g == nil {
		return Session{}, ErrNotFound
	}
	now := time.Now()
	if p := g.participant(participantID); p != nil {
		p.Connected = true
		p.LastSeenAt = now
	} else if len(g.Participants) < MaxParticipants {
		g.Participants = append(g.Participants, Participant{
			ID:          participantID,
			DisplayName: displayName,
			Connected:   true,
			LastSeenAt:  now,
		})
		log.Info().Str("game_id", id).Str("participant_id", participantID).Msg("participant joined")
	} else {
		return Session{}, ErrFull
	}
	g.LastActivityAt = now
	return g.clone(), nil
}

// Leave marks the participant disconnected. The seat stays taken.
func (s *Store) Leave(id, participantID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.games[id]
	if g == nil {
		return Session{}, ErrNotFound
	}
	now := time.Now()
	if p := g.participant(participantID); p != nil {
		p.Connected = false
		p.LastSeenAt = now
	}
	g.LastActivityAt = now
	return g.clone(), nil
}

func (s *Store) Heartbeat(id, participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.games[id]
	if g == nil {
		return ErrNotFound
	}
	p := g.participant(participantID)
	if p == nil {
		return ErrNotFound
	}
	now := time.Now()
	p.Connected = true
	p.LastSeenAt = now
	g.LastActivityAt = now
	return nil
}

// Len reports the number of live games.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}
