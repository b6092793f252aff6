package identity

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

// GitHubProvider exchanges OAuth authorization codes for access tokens and
// resolves the token holder's identity via the GitHub REST API.
type GitHubProvider struct {
	clientID     string
	clientSecret string
	tokenURL     string
	userURL      string
	httpClient   *http.Client
	logger       arbor.ILogger
}

// NewGitHubProvider creates a provider from OAuth app configuration
func NewGitHubProvider(cfg *common.OAuthConfig) *GitHubProvider {
	return &GitHubProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     cfg.TokenURL,
		userURL:      cfg.UserURL,
		httpClient:   httpclient.NewDefaultHTTPClient(30 * time.Second),
		logger:       common.GetLogger(),
	}
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

// ExchangeCode trades a single-use authorization code for an access token.
// A non-2xx response from the provider is surfaced verbatim as an
// UpstreamError so callers can pass the status and body through unchanged.
func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", interfaces.ErrMissingCode
	}

	body, err := json.Marshal(tokenRequest{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Code:         code,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &models.UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	// GitHub reports OAuth errors with 200 and an error field in the body
	if tr.Error != "" {
		p.logger.Warn().Str("error", tr.Error).Msg("Token exchange rejected by provider")
		return "", &models.UpstreamError{StatusCode: http.StatusBadRequest, Body: string(respBody)}
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	return tr.AccessToken, nil
}

// FetchUser resolves the identity behind an access token. A null or absent
// email is normalized to "N/A" so downstream records never carry an empty
// email field.
func (p *GitHubProvider) FetchUser(ctx context.Context, accessToken string) (*models.UserIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("Authorization", "token "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user fetch failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var ur userResponse
	if err := json.Unmarshal(respBody, &ur); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}

	email := ur.Email
	if email == "" {
		email = "N/A"
	}

	p.logger.Debug().Str("login", ur.Login).Int("id", int(ur.ID)).Msg("Resolved provider identity")

	return &models.UserIdentity{
		ExternalID: ur.ID,
		Login:      ur.Login,
		Email:      email,
	}, nil
}

// Ensure interface compliance
var _ interfaces.IdentityProvider = (*GitHubProvider)(nil)
