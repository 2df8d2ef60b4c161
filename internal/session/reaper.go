package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// SweepSessions destroys games that have no connected participant, or
// that have been idle past the inactivity threshold regardless of
// connection state. Returns the number of games removed.
func (s *Store) SweepSessions(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, g := range s.games {
		connected := false
		for i := range g.Participants {
			if g.Participants[i].Connected {
				connected = true
				break
			}
		}
		idle := now.Sub(g.LastActivityAt) > InactivityThreshold
		if connected && !idle {
			continue
		}
		delete(s.games, id)
		removed++
		reason := "abandoned"
		if idle {
			reason = "idle"
		}
		log.Info().Str("game_id", id).Str("reason", reason).Msg("game reaped")
	}
	return removed
}

// StartJanitor runs the presence and reaper sweeps on their own tickers
// until ctx is done.
func (s *Store) StartJanitor(ctx context.Context) {
	presenceTicker := time.NewTicker(s.presenceSweepInterval)
	reapTicker := time.NewTicker(s.reapSweepInterval)
	go func() {
		defer presenceTicker.Stop()
		defer reapTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-presenceTicker.C:
				s.SweepPresence(now)
			case now := <-reapTicker.C:
				s.SweepSessions(now)
			}
		}
	}()
}
