package session

import (
	"time"

	"github.com/rs/zerolog/log"
)

// SweepPresence demotes every participant whose heartbeats have gone
// quiet for longer than the heartbeat timeout. This covers silent
// disconnects that never send an explicit leave. Returns the number of
// participants demoted.
func (s *Store) SweepPresence(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	demoted := 0
	for _, g := range s.games {
		changed := false
		for i := range g.Participants {
			p := &g.Participants[i]
			if p.Connected && now.Sub(p.LastSeenAt) > HeartbeatTimeout {
				p.Connected = false
				demoted++
				changed = true
				log.Info().Str("game_id", g.ID).Str("participant_id", p.ID).Msg("participant timed out")
			}
		}
		if changed {
			g.LastActivityAt = now
		}
	}
	return demoted
}
