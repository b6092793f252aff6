package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	token       string
	exchangeErr error
	identity    *models.UserIdentity
	fetchErr    error
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", interfaces.ErrMissingCode
	}
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return f.token, nil
}

func (f *fakeProvider) FetchUser(ctx context.Context, token string) (*models.UserIdentity, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.identity, nil
}

type fakeIssuer struct {
	session  *models.Session
	issueErr error
	redirect string
}

func (f *fakeIssuer) Issue(ctx context.Context, identity *models.UserIdentity) (*models.Session, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return f.session, nil
}

func (f *fakeIssuer) RedirectURL(session *models.Session, provider, clientType, origin string) string {
	return f.redirect
}

func TestCallbackHandler(t *testing.T) {
	identity := &models.UserIdentity{ExternalID: 4242, Login: "octocat", Email: "N/A"}
	session := &models.Session{SessionID: "sess-1", ExternalID: 4242, Username: "octocat"}

	t.Run("success redirects to client", func(t *testing.T) {
		h := NewAuthHandler(
			&fakeProvider{token: "gho_token", identity: identity},
			&fakeIssuer{session: session, redirect: "buildsmith://auth?sessionID=sess-1"},
		)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=electron", nil)
		rec := httptest.NewRecorder()
		h.CallbackHandler(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "buildsmith://auth?sessionID=sess-1", rec.Header().Get("Location"))
	})

	t.Run("missing code is a 400", func(t *testing.T) {
		h := NewAuthHandler(&fakeProvider{}, &fakeIssuer{})

		req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
		rec := httptest.NewRecorder()
		h.CallbackHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream failure passes through status and body", func(t *testing.T) {
		h := NewAuthHandler(
			&fakeProvider{exchangeErr: &models.UpstreamError{
				StatusCode: http.StatusBadGateway,
				Body:       `{"error":"provider down"}`,
			}},
			&fakeIssuer{},
		)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc", nil)
		rec := httptest.NewRecorder()
		h.CallbackHandler(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, `{"error":"provider down"}`, rec.Body.String())
	})

	t.Run("issuance failure is a 500", func(t *testing.T) {
		h := NewAuthHandler(
			&fakeProvider{token: "gho_token", identity: identity},
			&fakeIssuer{issueErr: assert.AnError},
		)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc", nil)
		rec := httptest.NewRecorder()
		h.CallbackHandler(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("token never appears in the redirect", func(t *testing.T) {
		issuer := &fakeIssuer{session: session, redirect: "https://buildsmith.app/account?sessionID=sess-1"}
		h := NewAuthHandler(&fakeProvider{token: "gho_secret", identity: identity}, issuer)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=web", nil)
		rec := httptest.NewRecorder()
		h.CallbackHandler(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.NotContains(t, location.String(), "gho_secret")
	})
}
