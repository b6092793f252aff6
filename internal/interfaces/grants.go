package interfaces

import (
	"context"
	"errors"

	"github.com/buildsmith/buildsmith/internal/models"
)

// ErrNoGrant is returned by GrantSource.GrantAt when no grant exists at the
// requested index. The store is densely indexed, so the first missing index
// means "no more grants" and terminates any scan.
var ErrNoGrant = errors.New("no grant at index")

// GrantSource is read-only access to the ordered credential store. Indexes
// are 1-based and dense with no gaps.
type GrantSource interface {
	GrantAt(ctx context.Context, index int) (*models.IntegrationGrant, error)
}

// RepoProber checks whether an access token is authorized to read a
// repository's metadata. A nil error means the grant has access.
type RepoProber interface {
	ProbeRepo(ctx context.Context, accessToken, owner, repo string) error
}

// Resolution is the outcome of a successful credential resolution, with
// probe diagnostics for the caller.
type Resolution struct {
	Grant   *models.IntegrationGrant
	Probes  int   // total probes issued, including the successful one
	LastErr error // last probe failure seen before the match, nil if none
}

// CredentialResolver finds a grant authorized against a repository.
// A store-exhausted miss returns (nil, nil): a legitimate outcome the caller
// handles by prompting re-authorization, not an error.
type CredentialResolver interface {
	Resolve(ctx context.Context, owner, repo string) (*Resolution, error)
}
