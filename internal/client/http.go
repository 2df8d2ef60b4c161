package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bottle-spin/internal/session"
)

// Client talks to the game server's HTTP API and implements API.
type Client struct {
	baseURL string
	// Request/response calls get a timeout; the event stream must be
	// allowed to live for as long as its context does.
	http   *http.Client
	stream *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		stream:  &http.Client{},
	}
}

type createResponse struct {
	GameID string `json:"game_id"`
}

// CreateGame allocates a fresh game and returns its code.
func (c *Client) CreateGame(ctx context.Context) (string, error) {
	var res createResponse
	if err := c.do(ctx, http.MethodPost, "/api/games", nil, &res); err != nil {
		return "", err
	}
	return res.GameID, nil
}

func (c *Client) Join(ctx context.Context, gameID, participantID, displayName string) (session.Session, error) {
	var g session.Session
	body := map[string]string{"participant_id": participantID, "display_name": displayName}
	if err := c.do(ctx, http.MethodPost, "/api/games/"+gameID+"/join", body, &g); err != nil {
		return session.Session{}, err
	}
	return g, nil
}

func (c *Client) Leave(ctx context.Context, gameID, participantID string) error {
	body := map[string]string{"participant_id": participantID}
	return c.do(ctx, http.MethodPost, "/api/games/"+gameID+"/leave", body, nil)
}

func (c *Client) Heartbeat(ctx context.Context, gameID, participantID string) error {
	body := map[string]string{"participant_id": participantID}
	return c.do(ctx, http.MethodPost, "/api/games/"+gameID+"/heartbeat", body, nil)
}

// Act submits a game action and returns the resulting snapshot.
func (c *Client) Act(ctx context.Context, gameID string, req session.ActionRequest) (session.Session, error) {
	var g session.Session
	if err := c.do(ctx, http.MethodPost, "/api/games/"+gameID+"/actions", req, &g); err != nil {
		return session.Session{}, err
	}
	return g, nil
}

// Subscribe opens the SSE event stream and decodes snapshots until the
// server closes the stream, an error event arrives, or ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context, gameID string) (<-chan session.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/games/"+gameID+"/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var er struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&er)
		resp.Body.Close()
		return nil, apiError(resp.StatusCode, er.Error)
	}

	ch := make(chan session.Session, 1)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		var event string
		var data []byte
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			line := sc.Text()
			switch {
			case line == "":
				if event == "close" || event == "error" {
					return
				}
				if event == "snapshot" && len(data) > 0 {
					var frame struct {
						Data session.Session `json:"data"`
					}
					if err := json.Unmarshal(data, &frame); err == nil {
						select {
						case ch <- frame.Data:
						case <-ctx.Done():
							return
						}
					}
				}
				event, data = "", nil
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = []byte(strings.TrimPrefix(line, "data: "))
			}
		}
	}()
	return ch, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var er struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&er)
		return apiError(resp.StatusCode, er.Error)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// apiError maps the server's error codes back onto the store's sentinel
// errors so callers branch on the same values on both sides.
func apiError(status int, code string) error {
	switch code {
	case "game_not_found":
		return session.ErrNotFound
	case "game_full":
		return session.ErrFull
	case "spin_pending":
		return session.ErrSpinPending
	case "invalid_action":
		return session.ErrInvalidAction
	default:
		return fmt.Errorf("server error %d: %s", status, code)
	}
}
