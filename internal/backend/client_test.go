package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&common.BackendConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
	})
}

func TestRegisterUser(t *testing.T) {
	t.Run("sends api key and session binding", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/rest-api/users", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(4242), body["github_id"])
			assert.Equal(t, "octocat", body["username"])
			assert.Equal(t, "sess-1", body["session_id"])
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		err := c.RegisterUser(context.Background(), &models.UserIdentity{
			ExternalID: 4242,
			Login:      "octocat",
			Email:      "octo@example.com",
		}, "sess-1")
		require.NoError(t, err)
	})

	t.Run("upstream failure preserved", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"duplicate"}`))
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		err := c.RegisterUser(context.Background(), &models.UserIdentity{ExternalID: 1, Login: "x"}, "sess-1")
		var upstream *models.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusConflict, upstream.StatusCode)
		assert.Equal(t, `{"error":"duplicate"}`, string(upstream.Body))
	})
}

func TestUpdateGameVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/update-game", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sess-1", body["session_id"])
		assert.Equal(t, "game-1", body["game_id"])
		assert.Equal(t, "1.2.4", body["version"])
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	require.NoError(t, c.UpdateGameVersion(context.Background(), "sess-1", "game-1", "1.2.4"))
}
