package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/httpclient"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/ternarybob/arbor"
)

// Client is the HTTP client for the record store. Every call authenticates
// with either the service API key or a user session id, and upstream
// failures preserve the remote status code and body verbatim.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
}

// NewClient creates a record store client from backend configuration
func NewClient(cfg *common.BackendConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpclient.NewDefaultHTTPClient(30 * time.Second),
		logger:     common.GetLogger(),
	}
}

type registerUserRequest struct {
	GitHubID  int64  `json:"github_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
}

type updateGameRequest struct {
	SessionID string `json:"session_id"`
	GameID    string `json:"game_id"`
	Version   string `json:"version"`
}

// RegisterUser upserts the user record keyed by provider id and binds the
// fresh session id to it.
func (c *Client) RegisterUser(ctx context.Context, user *models.UserIdentity, sessionID string) error {
	body := registerUserRequest{
		GitHubID:  user.ExternalID,
		Username:  user.Login,
		Email:     user.Email,
		SessionID: sessionID,
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/rest-api/users", body)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("user registration failed: %w", err)
	}

	c.logger.Info().Str("username", user.Login).Msg("Registered user session")
	return nil
}

// UpdateGameVersion commits a new current version for a game record.
func (c *Client) UpdateGameVersion(ctx context.Context, sessionID, gameID, version string) error {
	body := updateGameRequest{
		SessionID: sessionID,
		GameID:    gameID,
		Version:   version,
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/update-game", body)
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("game version update failed: %w", err)
	}

	c.logger.Info().Str("game_id", gameID).Str("version", version).Msg("Updated game version")
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do runs the request and decodes a JSON response into out when provided.
// Non-2xx responses become UpstreamError with the remote body untouched.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &models.UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Ensure interface compliance
var _ interfaces.BackendClient = (*Client)(nil)
