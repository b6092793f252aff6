package ci

import (
	"context"
	"fmt"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/ternarybob/arbor"
)

// Aggregator resolves repository credentials and reports per-game CI state.
// Runs are fetched fresh on every call; nothing is cached between polls.
type Aggregator struct {
	resolver interfaces.CredentialResolver
	client   interfaces.WorkflowClient
	logger   arbor.ILogger
}

// NewAggregator creates a status aggregator over a resolver and workflow client
func NewAggregator(resolver interfaces.CredentialResolver, client interfaces.WorkflowClient) *Aggregator {
	return &Aggregator{
		resolver: resolver,
		client:   client,
		logger:   common.GetLogger(),
	}
}

// GameStatus returns the game's run list and derived deploy status. A game
// with no linked repository or no authorized grant reports "unknown" with an
// empty run list rather than an error.
func (a *Aggregator) GameStatus(ctx context.Context, game *models.Game) (*models.GameStatus, error) {
	unknown := &models.GameStatus{
		GameID:       game.GameID,
		Runs:         []models.WorkflowRun{},
		DeployStatus: models.DeployStatusUnknown,
		Level:        models.StatusNeutral,
	}

	owner, repo, ok := game.RepoOwnerName()
	if !ok {
		return unknown, nil
	}

	resolution, err := a.resolver.Resolve(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("credential resolution failed: %w", err)
	}
	if resolution == nil {
		a.logger.Warn().Str("game_id", game.GameID).Str("repo", game.GitHubRepo).Msg("No authorized grant for repository")
		return unknown, nil
	}

	runs, err := a.client.ListRuns(ctx, resolution.Grant.AccessToken, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("workflow run listing failed: %w", err)
	}

	status := models.DeployStatus(runs)
	return &models.GameStatus{
		GameID:       game.GameID,
		Runs:         runs,
		DeployStatus: status,
		Level:        models.StatusPresentation(status),
	}, nil
}

// GameRunLog fetches one run's log archive using the game's resolved grant.
func (a *Aggregator) GameRunLog(ctx context.Context, game *models.Game, runID int64) ([]byte, error) {
	owner, repo, ok := game.RepoOwnerName()
	if !ok {
		return nil, &models.FieldError{Field: "github_repo", Message: "game has no linked repository"}
	}

	resolution, err := a.resolver.Resolve(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("credential resolution failed: %w", err)
	}
	if resolution == nil {
		return nil, &models.FieldError{Field: "github_repo", Message: "no authorized grant for repository"}
	}

	return a.client.RunLog(ctx, resolution.Grant.AccessToken, owner, repo, runID)
}

// Ensure interface compliance
var _ interfaces.StatusAggregator = (*Aggregator)(nil)
