package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/shanghai-tycoon/game/engine"
	"github.com/wricardo/shanghai-tycoon/game/service"
)

// APIError is a non-2xx reply from the game server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client drives one seat of one session over the REST API
type Client struct {
	baseURL   string
	sessionID string
	seatToken string
	playerID  int
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type createSessionResponse struct {
	service.SessionInfo
	SeatToken string `json:"seat_token"`
}

// CreateSession starts a game with a human seat for the bot
func (c *Client) CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionInfo, error) {
	req.AutonomousOnly = false

	var resp createSessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &resp); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if resp.HumanPlayerID == nil {
		return nil, fmt.Errorf("create session: server did not seat a human player")
	}

	c.sessionID = resp.ID
	c.seatToken = resp.SeatToken
	c.playerID = *resp.HumanPlayerID
	return &resp.SessionInfo, nil
}

// Resume attaches to an existing session. The seat token is only needed
// when the server checks seats.
func (c *Client) Resume(ctx context.Context, sessionID, seatToken string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID), nil, &info); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	if info.HumanPlayerID == nil {
		return nil, fmt.Errorf("resume session: %s has no human seat", sessionID)
	}

	c.sessionID = info.ID
	c.seatToken = seatToken
	c.playerID = *info.HumanPlayerID
	return &info, nil
}

func (c *Client) State(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, c.sessionPath("state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (c *Client) Roll(ctx context.Context) (*service.ActionResult, error) {
	return c.act(ctx, "roll", nil)
}

func (c *Client) ChooseBranch(ctx context.Context, spaceID int) (*service.ActionResult, error) {
	return c.act(ctx, "branch", map[string]int{"space_id": spaceID})
}

func (c *Client) Decide(ctx context.Context, accept bool) (*service.ActionResult, error) {
	return c.act(ctx, "decide", map[string]bool{"accept": accept})
}

func (c *Client) Acknowledge(ctx context.Context) (*service.ActionResult, error) {
	return c.act(ctx, "acknowledge", nil)
}

// AutoPlay lets the computer players act until it is the bot's turn
func (c *Client) AutoPlay(ctx context.Context, maxActions int) (*service.AutoPlayResult, error) {
	var result service.AutoPlayResult
	body := map[string]int{"max_actions": maxActions}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("autoplay"), body, &result); err != nil {
		return nil, fmt.Errorf("autoplay: %w", err)
	}
	return &result, nil
}

func (c *Client) act(ctx context.Context, action string, body any) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath(action), body, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return &result, nil
}

func (c *Client) sessionPath(action string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + "/" + action
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.seatToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.seatToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
