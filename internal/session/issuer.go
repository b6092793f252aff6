package session

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/ternarybob/arbor"
)

// ClientTypeElectron selects the custom-scheme deep link redirect; any other
// client type gets a web redirect.
const ClientTypeElectron = "electron"

// Issuer mints opaque session ids, registers them with the record store, and
// builds the post-login redirect for each client surface.
type Issuer struct {
	backend  interfaces.BackendClient
	redirect *common.RedirectConfig
	logger   arbor.ILogger
}

// NewIssuer creates a session issuer backed by the record store client
func NewIssuer(backend interfaces.BackendClient, redirect *common.RedirectConfig) *Issuer {
	return &Issuer{
		backend:  backend,
		redirect: redirect,
		logger:   common.GetLogger(),
	}
}

// Issue mints a fresh session id for the identity and binds it in the record
// store. Session ids are never reused across logins; each successful exchange
// yields a new one.
func (i *Issuer) Issue(ctx context.Context, identity *models.UserIdentity) (*models.Session, error) {
	sessionID := common.NewSessionID()

	if err := i.backend.RegisterUser(ctx, identity, sessionID); err != nil {
		return nil, fmt.Errorf("session registration failed: %w", err)
	}

	i.logger.Info().Str("username", identity.Login).Msg("Issued session")

	return &models.Session{
		SessionID:  sessionID,
		ExternalID: identity.ExternalID,
		Username:   identity.Login,
	}, nil
}

// RedirectURL builds the client handoff URL carrying the session. Electron
// clients get a custom-scheme deep link; web clients are routed to the dev or
// production origin based on the request origin.
func (i *Issuer) RedirectURL(session *models.Session, provider, clientType, origin string) string {
	query := url.Values{}
	query.Set("provider", provider)
	query.Set("sessionID", session.SessionID)
	query.Set("username", session.Username)
	query.Set("githubID", strconv.FormatInt(session.ExternalID, 10))

	if clientType == ClientTypeElectron {
		return fmt.Sprintf("%s://auth?%s", i.redirect.ElectronScheme, query.Encode())
	}

	base := i.redirect.WebOrigin
	if strings.Contains(origin, i.redirect.DevDomain) {
		base = i.redirect.DevOrigin
	}
	return fmt.Sprintf("%s%s?%s", base, i.redirect.WebPath, query.Encode())
}

// Ensure interface compliance
var _ interfaces.SessionIssuer = (*Issuer)(nil)
