package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const apiKeyHeader = "X-API-Key"

// Client is the HTTP client for the rules engine. All calls are synchronous
// request/response with a shared-secret header and a fixed timeout; a timed
// out or refused call is a terminal failure for that request and is never
// retried here.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New builds a client for the engine at baseURL.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// CreateGame registers a new game with the engine and returns its id and
// initial state.
func (c *Client) CreateGame(req CreateGameRequest) (*CreateGameResponse, error) {
	var resp CreateGameResponse
	if err := c.post("/api/game/create", req, &resp); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	if resp.GameID == "" {
		return nil, fmt.Errorf("create game: engine returned no game id")
	}
	return &resp, nil
}

// StartGame deals the first hand and returns the full initial state. The
// engine sometimes nests the document under a GameState key; both shapes
// are accepted.
func (c *Client) StartGame(gameID string) (*GameState, error) {
	raw, err := c.postRaw("/api/game/"+gameID+"/start", nil)
	if err != nil {
		return nil, fmt.Errorf("start game %s: %w", gameID, err)
	}

	var wrapped struct {
		GameState *GameState `json:"GameState"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.GameState != nil {
		return wrapped.GameState, nil
	}
	var state GameState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("start game %s: malformed state: %w", gameID, err)
	}
	return &state, nil
}

// UseAbility submits an ability call and returns the engine's verdict:
// success, choice-required, or failure.
func (c *Client) UseAbility(gameID string, call AbilityCall) (*AbilityResponse, error) {
	var resp AbilityResponse
	if err := c.post("/api/game/"+gameID+"/abilities/use", call, &resp); err != nil {
		return nil, fmt.Errorf("use ability %s: %w", call.AbilityType, err)
	}
	return &resp, nil
}

func (c *Client) post(path string, body, out any) error {
	raw, err := c.postRaw(path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	return nil
}

func (c *Client) postRaw(path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("engine: %s returned %d: %s", path, resp.StatusCode, raw)
		return nil, fmt.Errorf("engine status %d", resp.StatusCode)
	}
	return raw, nil
}
