package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(tokenURL, userURL string) *GitHubProvider {
	return NewGitHubProvider(&common.OAuthConfig{
		Provider:     "github",
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		TokenURL:     tokenURL,
		UserURL:      userURL,
	})
}

func TestExchangeCode(t *testing.T) {
	t.Run("successful exchange", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "test-client", body["client_id"])
			assert.Equal(t, "test-secret", body["client_secret"])
			assert.Equal(t, "abc123", body["code"])

			json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_token"})
		}))
		defer srv.Close()

		p := newTestProvider(srv.URL, "")
		token, err := p.ExchangeCode(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "gho_token", token)
	})

	t.Run("missing code", func(t *testing.T) {
		p := newTestProvider("http://unused", "")
		_, err := p.ExchangeCode(context.Background(), "")
		assert.ErrorIs(t, err, interfaces.ErrMissingCode)
	})

	t.Run("provider error body with 200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
		}))
		defer srv.Close()

		p := newTestProvider(srv.URL, "")
		_, err := p.ExchangeCode(context.Background(), "expired")
		var upstream *models.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
		assert.Contains(t, string(upstream.Body), "bad_verification_code")
	})

	t.Run("non-2xx passthrough", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("upstream down"))
		}))
		defer srv.Close()

		p := newTestProvider(srv.URL, "")
		_, err := p.ExchangeCode(context.Background(), "abc123")
		var upstream *models.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
		assert.Equal(t, "upstream down", string(upstream.Body))
	})
}

func TestFetchUser(t *testing.T) {
	t.Run("identity with email", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "token gho_token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":    int64(4242),
				"login": "octocat",
				"email": "octo@example.com",
			})
		}))
		defer srv.Close()

		p := newTestProvider("", srv.URL)
		identity, err := p.FetchUser(context.Background(), "gho_token")
		require.NoError(t, err)
		assert.Equal(t, int64(4242), identity.ExternalID)
		assert.Equal(t, "octocat", identity.Login)
		assert.Equal(t, "octo@example.com", identity.Email)
	})

	t.Run("null email normalized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": 7, "login": "ghost", "email": null}`))
		}))
		defer srv.Close()

		p := newTestProvider("", srv.URL)
		identity, err := p.FetchUser(context.Background(), "gho_token")
		require.NoError(t, err)
		assert.Equal(t, "N/A", identity.Email)
	})

	t.Run("unauthorized passthrough", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Bad credentials"}`))
		}))
		defer srv.Close()

		p := newTestProvider("", srv.URL)
		_, err := p.FetchUser(context.Background(), "bad")
		var upstream *models.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	})
}
