package ci

import (
	"context"
	"errors"
	"testing"

	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	resolution *interfaces.Resolution
	err        error
}

func (s *stubResolver) Resolve(ctx context.Context, owner, repo string) (*interfaces.Resolution, error) {
	return s.resolution, s.err
}

type stubWorkflowClient struct {
	runs      []models.WorkflowRun
	log       []byte
	err       error
	gotToken  string
	gotRunID  int64
	gotOwner  string
	gotRepo   string
}

func (s *stubWorkflowClient) ListRuns(ctx context.Context, accessToken, owner, repo string) ([]models.WorkflowRun, error) {
	s.gotToken, s.gotOwner, s.gotRepo = accessToken, owner, repo
	return s.runs, s.err
}

func (s *stubWorkflowClient) RunLog(ctx context.Context, accessToken, owner, repo string, runID int64) ([]byte, error) {
	s.gotToken, s.gotOwner, s.gotRepo, s.gotRunID = accessToken, owner, repo, runID
	return s.log, s.err
}

func resolvedGrant(token string) *interfaces.Resolution {
	return &interfaces.Resolution{
		Grant:  &models.IntegrationGrant{Index: 1, AccessToken: token},
		Probes: 1,
	}
}

func TestGameStatus(t *testing.T) {
	game := &models.Game{GameID: "game-1", GitHubRepo: "acme/game"}

	t.Run("latest run drives the status", func(t *testing.T) {
		client := &stubWorkflowClient{runs: []models.WorkflowRun{
			{ID: 2, Title: "Deploy", Status: "completed", Conclusion: "success"},
			{ID: 1, Title: "Deploy", Status: "completed", Conclusion: "failure"},
		}}
		agg := NewAggregator(&stubResolver{resolution: resolvedGrant("tok")}, client)

		status, err := agg.GameStatus(context.Background(), game)
		require.NoError(t, err)
		assert.Equal(t, "success", status.DeployStatus)
		assert.Equal(t, models.StatusSuccess, status.Level)
		assert.Len(t, status.Runs, 2)
		assert.Equal(t, "tok", client.gotToken)
		assert.Equal(t, "acme", client.gotOwner)
		assert.Equal(t, "game", client.gotRepo)
	})

	t.Run("in-flight run without conclusion", func(t *testing.T) {
		client := &stubWorkflowClient{runs: []models.WorkflowRun{
			{ID: 3, Title: "Deploy", Status: "in_progress"},
		}}
		agg := NewAggregator(&stubResolver{resolution: resolvedGrant("tok")}, client)

		status, err := agg.GameStatus(context.Background(), game)
		require.NoError(t, err)
		assert.Equal(t, "in_progress", status.DeployStatus)
		assert.Equal(t, models.StatusActive, status.Level)
	})

	t.Run("no runs means unknown", func(t *testing.T) {
		agg := NewAggregator(&stubResolver{resolution: resolvedGrant("tok")}, &stubWorkflowClient{})

		status, err := agg.GameStatus(context.Background(), game)
		require.NoError(t, err)
		assert.Equal(t, models.DeployStatusUnknown, status.DeployStatus)
		assert.Equal(t, models.StatusNeutral, status.Level)
		assert.Empty(t, status.Runs)
	})

	t.Run("no authorized grant means unknown", func(t *testing.T) {
		client := &stubWorkflowClient{}
		agg := NewAggregator(&stubResolver{}, client)

		status, err := agg.GameStatus(context.Background(), game)
		require.NoError(t, err)
		assert.Equal(t, models.DeployStatusUnknown, status.DeployStatus)
		assert.Empty(t, client.gotToken)
	})

	t.Run("unlinked repository means unknown", func(t *testing.T) {
		agg := NewAggregator(&stubResolver{resolution: resolvedGrant("tok")}, &stubWorkflowClient{})

		status, err := agg.GameStatus(context.Background(), &models.Game{GameID: "game-2"})
		require.NoError(t, err)
		assert.Equal(t, models.DeployStatusUnknown, status.DeployStatus)
	})

	t.Run("resolver fault is an error", func(t *testing.T) {
		agg := NewAggregator(&stubResolver{err: errors.New("store unavailable")}, &stubWorkflowClient{})

		_, err := agg.GameStatus(context.Background(), game)
		assert.Error(t, err)
	})
}

func TestGameRunLog(t *testing.T) {
	game := &models.Game{GameID: "game-1", GitHubRepo: "acme/game"}

	t.Run("fetches with resolved token", func(t *testing.T) {
		client := &stubWorkflowClient{log: []byte("log data")}
		agg := NewAggregator(&stubResolver{resolution: resolvedGrant("tok")}, client)

		log, err := agg.GameRunLog(context.Background(), game, 99)
		require.NoError(t, err)
		assert.Equal(t, []byte("log data"), log)
		assert.Equal(t, int64(99), client.gotRunID)
	})

	t.Run("no grant is a field error", func(t *testing.T) {
		agg := NewAggregator(&stubResolver{}, &stubWorkflowClient{})

		_, err := agg.GameRunLog(context.Background(), game, 99)
		var fieldErr *models.FieldError
		assert.True(t, errors.As(err, &fieldErr))
	})
}
