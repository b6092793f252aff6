package interfaces

import (
	"context"

	"github.com/buildsmith/buildsmith/internal/models"
)

// WorkflowClient reads CI workflow runs and logs from a repository using a
// previously resolved access token.
type WorkflowClient interface {
	// ListRuns returns workflow runs most-recent-first.
	ListRuns(ctx context.Context, accessToken, owner, repo string) ([]models.WorkflowRun, error)
	// RunLog fetches the raw log archive for a single run.
	RunLog(ctx context.Context, accessToken, owner, repo string, runID int64) ([]byte, error)
}

// StatusAggregator resolves credentials for a game's repository and reports
// its CI state.
type StatusAggregator interface {
	GameStatus(ctx context.Context, game *models.Game) (*models.GameStatus, error)
	GameRunLog(ctx context.Context, game *models.Game, runID int64) ([]byte, error)
}
