package client

import (
	"context"

	"bottle-spin/internal/session"
)

// API is the server surface the agent drives. Client implements it over
// HTTP; tests swap in fakes.
type API interface {
	Join(ctx context.Context, gameID, participantID, displayName string) (session.Session, error)
	Leave(ctx context.Context, gameID, participantID string) error
	Heartbeat(ctx context.Context, gameID, participantID string) error
	// Subscribe streams snapshots until the stream ends for any reason,
	// at which point the channel closes.
	Subscribe(ctx context.Context, gameID string) (<-chan session.Session, error)
}
