package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"bottle-spin/internal/session"

	"github.com/rs/zerolog/log"
)

type State string

const (
	StateIdle         State = "idle"
	StateJoining      State = "joining"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateGaveUp       State = "gave_up"
)

// transitions is the full set of legal state changes. Keeping the table
// explicit makes the reconnect loop checkable without touching the
// network code.
var transitions = map[State][]State{
	StateIdle:         {StateJoining},
	StateJoining:      {StateConnected, StateReconnecting, StateGaveUp, StateIdle},
	StateConnected:    {StateReconnecting, StateIdle},
	StateReconnecting: {StateJoining, StateIdle},
	StateGaveUp:       {StateJoining, StateIdle},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

const (
	MaxReconnectAttempts = 5
	BackoffBase          = time.Second
	BackoffCap           = 30 * time.Second
)

// BackoffDelay returns the reconnect delay after the given number of
// prior consecutive failures: 1s, 2s, 4s, ... capped at 30s.
func BackoffDelay(attempt int) time.Duration {
	d := BackoffBase
	for i := 0; i < attempt && d < BackoffCap; i++ {
		d *= 2
	}
	if d > BackoffCap {
		d = BackoffCap
	}
	return d
}

var errFeedClosed = errors.New("event stream closed")

// Status is a point-in-time view of the agent's logical connection.
type Status struct {
	State             State
	ReconnectAttempts int
	LastErr           error
	Game              session.Session
	HasGame           bool
}

// Agent maintains a logical connection to one game: join, heartbeat
// loop, feed subscription, and bounded reconnection with backoff.
type Agent struct {
	api           API
	gameID        string
	participantID string
	displayName   string

	heartbeatInterval time.Duration
	backoff           func(int) time.Duration

	// OnUpdate, when set before Start, is called with every snapshot the
	// feed delivers.
	OnUpdate func(session.Session)

	mu       sync.Mutex
	state    State
	attempts int
	lastErr  error
	game     session.Session
	hasGame  bool
	cancel   context.CancelFunc
	done     chan struct{}

	retryCh chan struct{}
}

func NewAgent(api API, gameID, participantID, displayName string) *Agent {
	return &Agent{
		api:               api,
		gameID:            gameID,
		participantID:     participantID,
		displayName:       displayName,
		heartbeatInterval: session.HeartbeatInterval,
		backoff:           BackoffDelay,
		state:             StateIdle,
		retryCh:           make(chan struct{}, 1),
	}
}

// Start launches the connection loop and returns immediately.
func (a *Agent) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.done = make(chan struct{})
	a.mu.Unlock()
	go a.run(ctx)
}

// Stop tears the agent down: the heartbeat loop and feed subscription
// are cancelled, a best-effort leave is sent, and the agent returns to
// idle. Stop blocks until teardown finishes.
func (a *Agent) Stop() {
	a.mu.Lock()
	cancel := a.cancel
	done := a.done
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Retry resumes a gave-up agent with a fresh attempt budget. It has no
// effect in any other state.
func (a *Agent) Retry() {
	select {
	case a.retryCh <- struct{}{}:
	default:
	}
}

func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Status{
		State:             a.state,
		ReconnectAttempts: a.attempts,
		LastErr:           a.lastErr,
		Game:              a.game,
		HasGame:           a.hasGame,
	}
}

func (a *Agent) run(ctx context.Context) {
	defer close(a.done)
	defer a.teardown()
	a.transition(StateJoining)
	for {
		if ctx.Err() != nil {
			return
		}
		game, err := a.api.Join(ctx, a.gameID, a.participantID, a.displayName)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !a.backOffOrGiveUp(ctx, err) {
				return
			}
			continue
		}
		a.joined(game)
		err = a.connectedLoop(ctx)
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("game_id", a.gameID).Msg("connection lost, reconnecting")
		a.mu.Lock()
		a.lastErr = err
		a.mu.Unlock()
		a.transition(StateReconnecting)
		a.transition(StateJoining)
	}
}

// backOffOrGiveUp records a failed join and either sleeps out the
// backoff before the next attempt (true) or parks the agent in the
// gave-up state until a manual retry (also true, after the retry).
// It returns false only when ctx ends the loop.
func (a *Agent) backOffOrGiveUp(ctx context.Context, err error) bool {
	a.mu.Lock()
	a.attempts++
	a.lastErr = err
	n := a.attempts
	a.mu.Unlock()

	if n >= MaxReconnectAttempts {
		log.Error().Err(err).Int("attempts", n).Str("game_id", a.gameID).Msg("giving up after repeated join failures")
		a.transition(StateGaveUp)
		select {
		case <-ctx.Done():
			return false
		case <-a.retryCh:
			a.mu.Lock()
			a.attempts = 0
			a.mu.Unlock()
			a.transition(StateJoining)
			return true
		}
	}

	delay := a.backoff(n - 1)
	log.Warn().Err(err).Int("attempt", n).Dur("backoff", delay).Str("game_id", a.gameID).Msg("join failed")
	a.transition(StateReconnecting)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
	}
	a.transition(StateJoining)
	return true
}

func (a *Agent) joined(game session.Session) {
	a.mu.Lock()
	a.attempts = 0
	a.lastErr = nil
	a.game = game
	a.hasGame = true
	a.mu.Unlock()
	a.transition(StateConnected)
}

// connectedLoop runs the heartbeat ticker and consumes the feed. It
// returns nil when ctx ends, or the terminal error that should trigger a
// reconnect.
func (a *Agent) connectedLoop(ctx context.Context) error {
	feedCtx, cancelFeed := context.WithCancel(ctx)
	defer cancelFeed()
	updates, err := a.api.Subscribe(feedCtx, a.gameID)
	if err != nil {
		return err
	}

	hb := time.NewTicker(a.heartbeatInterval)
	defer hb.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hb.C:
			if err := a.api.Heartbeat(ctx, a.gameID, a.participantID); err != nil && ctx.Err() == nil {
				// Presence tolerates a missed beat; only the feed
				// decides when the connection is really gone.
				log.Warn().Err(err).Str("game_id", a.gameID).Msg("heartbeat failed")
			}
		case game, ok := <-updates:
			if !ok {
				return errFeedClosed
			}
			a.observe(game)
		}
	}
}

func (a *Agent) observe(game session.Session) {
	a.mu.Lock()
	a.game = game
	a.hasGame = true
	onUpdate := a.OnUpdate
	a.mu.Unlock()
	if onUpdate != nil {
		onUpdate(game)
	}
}

func (a *Agent) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.api.Leave(ctx, a.gameID, a.participantID); err != nil {
		log.Debug().Err(err).Str("game_id", a.gameID).Msg("leave failed during teardown")
	}
	a.transition(StateIdle)
}

func (a *Agent) transition(to State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == to {
		return
	}
	if !canTransition(a.state, to) {
		log.Debug().Str("from", string(a.state)).Str("to", string(to)).Msg("unexpected state transition")
	}
	a.state = to
}
