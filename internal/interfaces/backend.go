package interfaces

import (
	"context"

	"github.com/buildsmith/buildsmith/internal/models"
)

// BackendClient talks to the record store on behalf of an authenticated
// session. Upstream failures carry the remote status and body verbatim via
// models.UpstreamError. Team and game reads are served from local storage;
// only session registration and the post-upload version commit go upstream.
type BackendClient interface {
	RegisterUser(ctx context.Context, user *models.UserIdentity, sessionID string) error
	UpdateGameVersion(ctx context.Context, sessionID, gameID, version string) error
}
