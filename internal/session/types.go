package session

import "time"

// Fixed protocol constants. Clients and server agree on these; changing
// one side alone breaks liveness detection.
const (
	MaxParticipants = 2

	HeartbeatInterval     = 10 * time.Second
	HeartbeatTimeout      = 15 * time.Second
	PresenceSweepInterval = 5 * time.Second

	InactivityThreshold = 30 * time.Minute
	ReapSweepInterval   = 10 * time.Minute

	FeedPollInterval = time.Second
	FeedMaxDuration  = 30 * time.Minute

	SpinDuration = 3 * time.Second
)

type Choice string

const (
	ChoiceTruth Choice = "truth"
	ChoiceDare  Choice = "dare"
)

// Participant is one seat in a game. A seat is never freed; losing the
// connection only flips Connected.
type Participant struct {
	ID          string    `json:"participant_id"`
	DisplayName string    `json:"display_name"`
	Connected   bool      `json:"connected"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// Outcome is one resolved spin.
type Outcome struct {
	Participant string    `json:"participant"`
	Choice      Choice    `json:"choice"`
	At          time.Time `json:"ts"`
}

// Session is the shared state of one two-player game. The store hands out
// value copies only; callers never hold a reference into the live record.
type Session struct {
	ID             string        `json:"game_id"`
	Participants   []Participant `json:"participants"`
	TurnIndex      int           `json:"turn_index"`
	Spinning       bool          `json:"spinning"`
	LastOutcome    Choice        `json:"last_outcome,omitempty"`
	History        []Outcome     `json:"history"`
	CreatedAt      time.Time     `json:"created_at"`
	LastActivityAt time.Time     `json:"last_activity_at"`
}

func (g *Session) clone() Session {
	out := *g
	out.Participants = make([]Participant, len(g.Participants))
	copy(out.Participants, g.Participants)
	out.History = make([]Outcome, len(g.History))
	copy(out.History, g.History)
	return out
}

func (g *Session) participant(id string) *Participant {
	for i := range g.Participants {
		if g.Participants[i].ID == id {
			return &g.Participants[i]
		}
	}
	return nil
}

const (
	ActionSpin  = "spin"
	ActionReset = "reset"
)

// ActionRequest is a game action submitted by a participant.
type ActionRequest struct {
	ParticipantID string `json:"participant_id"`
	Action        string `json:"action"`
}
