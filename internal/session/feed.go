package session

import (
	"context"
	"time"
)

type FeedEventType string

const (
	FeedSnapshot FeedEventType = "snapshot"
	FeedClosed   FeedEventType = "closed"
)

type FeedEvent struct {
	Type    FeedEventType
	Session Session
}

// Feed delivers game snapshots on a fixed poll cadence. It re-reads the
// store on every tick instead of fanning writes out, trading up to one
// poll interval of staleness for a mechanism with no shared subscriber
// bookkeeping inside the store.
type Feed struct {
	store        *Store
	pollInterval time.Duration
	maxDuration  time.Duration
}

func NewFeed(store *Store) *Feed {
	return &Feed{
		store:        store,
		pollInterval: FeedPollInterval,
		maxDuration:  FeedMaxDuration,
	}
}

// Subscribe emits the current snapshot immediately, then one snapshot per
// poll tick while the game exists. The channel closes after a FeedClosed
// event when the game is destroyed or the max stream duration is hit, and
// without one when ctx is cancelled. Intermediate snapshots are dropped
// when the subscriber lags; the close event is never dropped.
func (f *Feed) Subscribe(ctx context.Context, id string) (<-chan FeedEvent, error) {
	first, err := f.store.Get(id)
	if err != nil {
		return nil, err
	}
	ch := make(chan FeedEvent, 1)
	ch <- FeedEvent{Type: FeedSnapshot, Session: first}
	go func() {
		defer close(ch)
		ticker := time.NewTicker(f.pollInterval)
		defer ticker.Stop()
		deadline := time.NewTimer(f.maxDuration)
		defer deadline.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-deadline.C:
				f.send(ctx, ch, FeedEvent{Type: FeedClosed})
				return
			case <-ticker.C:
				snap, err := f.store.Get(id)
				if err != nil {
					f.send(ctx, ch, FeedEvent{Type: FeedClosed})
					return
				}
				select {
				case ch <- FeedEvent{Type: FeedSnapshot, Session: snap}:
				default:
					// Subscriber lagging; the next tick carries a
					// fresher snapshot anyway.
				}
			}
		}
	}()
	return ch, nil
}

func (f *Feed) send(ctx context.Context, ch chan<- FeedEvent, ev FeedEvent) {
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}
