package grants

import (
	"context"
	"fmt"

	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubProber checks grant access by fetching repository metadata. Metadata
// reads are the cheapest call that still proves the token is scoped to the
// repository.
type GitHubProber struct {
	// baseURL overrides the API endpoint for tests
	baseURL string
}

// NewGitHubProber creates a prober against the public GitHub API
func NewGitHubProber() *GitHubProber {
	return &GitHubProber{}
}

// ProbeRepo fetches the repository with the grant's token. Any API error
// counts as a rejection for this grant.
func (p *GitHubProber) ProbeRepo(ctx context.Context, accessToken, owner, repo string) error {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if p.baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(p.baseURL, p.baseURL)
		if err != nil {
			return fmt.Errorf("invalid probe endpoint: %w", err)
		}
	}

	if _, _, err := client.Repositories.Get(ctx, owner, repo); err != nil {
		return fmt.Errorf("repo probe failed: %w", err)
	}
	return nil
}

// Ensure interface compliance
var _ interfaces.RepoProber = (*GitHubProber)(nil)
