package interfaces

import (
	"context"
	"errors"

	"github.com/buildsmith/buildsmith/internal/models"
)

// ErrMissingCode is returned when an authorization code is absent or empty.
// This is a client input error resolved locally; no network call is made.
var ErrMissingCode = errors.New("missing authorization code")

// IdentityProvider exchanges a single-use authorization code for an access
// token and fetches the authenticated identity. Upstream failures are
// surfaced verbatim (*models.UpstreamError); authorization codes are
// single-use so nothing is retried.
type IdentityProvider interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchUser(ctx context.Context, accessToken string) (*models.UserIdentity, error)
}

// SessionIssuer mints a session for an authenticated identity and registers
// it with the backend record store.
type SessionIssuer interface {
	Issue(ctx context.Context, identity *models.UserIdentity) (*models.Session, error)
	RedirectURL(session *models.Session, provider, clientType, origin string) string
}
