package handlers

import (
	"errors"
	"net/http"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/ternarybob/arbor"
)

// AuthHandler completes the OAuth authorization code flow: code exchange,
// identity fetch, session issuance, then a client-specific redirect.
type AuthHandler struct {
	provider interfaces.IdentityProvider
	issuer   interfaces.SessionIssuer
	logger   arbor.ILogger
}

func NewAuthHandler(provider interfaces.IdentityProvider, issuer interfaces.SessionIssuer) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		issuer:   issuer,
		logger:   common.GetLogger(),
	}
}

// CallbackHandler handles GET /auth/callback. The single-use code arrives as
// a query parameter; success ends in a 302 to the requesting client surface.
func (h *AuthHandler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	provider := query.Get("provider")
	if provider == "" {
		provider = "github"
	}
	// "state" carries the requesting client type: "electron" or web
	clientType := query.Get("state")
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Referer()
	}

	ctx := r.Context()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		h.writeAuthError(w, err, "Token exchange failed")
		return
	}

	identity, err := h.provider.FetchUser(ctx, token)
	if err != nil {
		h.writeAuthError(w, err, "Identity fetch failed")
		return
	}

	session, err := h.issuer.Issue(ctx, identity)
	if err != nil {
		h.writeAuthError(w, err, "Session issuance failed")
		return
	}

	location := h.issuer.RedirectURL(session, provider, clientType, origin)

	h.logger.Info().
		Str("username", session.Username).
		Str("client_type", clientType).
		Msg("Authorization completed")

	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusFound)
}

// writeAuthError distinguishes upstream passthrough from internal failure.
// An access token is never included in any response.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error, msg string) {
	h.logger.Error().Err(err).Msg(msg)

	var upstream *models.UpstreamError
	if errors.As(err, &upstream) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(upstream.StatusCode)
		w.Write([]byte(upstream.Body))
		return
	}
	if errors.Is(err, interfaces.ErrMissingCode) {
		WriteError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}
	WriteError(w, http.StatusInternalServerError, msg)
}
