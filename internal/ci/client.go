package ci

import (
	"context"
	"fmt"
	"io"

	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Client reads workflow runs and logs through the GitHub Actions API using a
// resolved grant token per call.
type Client struct {
	// baseURL overrides the API endpoint for tests
	baseURL string
}

// NewClient creates a workflow client against the public GitHub API
func NewClient() *Client {
	return &Client{}
}

func (c *Client) apiClient(ctx context.Context, accessToken string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	client := github.NewClient(oauth2.NewClient(ctx, ts))
	if c.baseURL != "" {
		return client.WithEnterpriseURLs(c.baseURL, c.baseURL)
	}
	return client, nil
}

// ListRuns returns the repository's workflow runs most-recent-first, the
// order the API already guarantees. Runs without a display title fall back
// to "Run #<number>".
func (c *Client) ListRuns(ctx context.Context, accessToken, owner, repo string) ([]models.WorkflowRun, error) {
	client, err := c.apiClient(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	runs, _, err := client.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, &github.ListWorkflowRunsOptions{
		ListOptions: github.ListOptions{PerPage: 30},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow runs: %w", err)
	}

	result := make([]models.WorkflowRun, 0, len(runs.WorkflowRuns))
	for _, run := range runs.WorkflowRuns {
		title := run.GetDisplayTitle()
		if title == "" {
			title = fmt.Sprintf("Run #%d", run.GetRunNumber())
		}
		result = append(result, models.WorkflowRun{
			ID:         run.GetID(),
			Title:      title,
			Status:     run.GetStatus(),
			Conclusion: run.GetConclusion(),
		})
	}
	return result, nil
}

// RunLog fetches the raw log archive for a run. The API responds with a
// short-lived signed URL; the archive is fetched from there on demand and
// never cached.
func (c *Client) RunLog(ctx context.Context, accessToken, owner, repo string, runID int64) ([]byte, error) {
	client, err := c.apiClient(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	logURL, _, err := client.Actions.GetWorkflowRunLogs(ctx, owner, repo, runID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to get run logs URL: %w", err)
	}

	resp, err := client.Client().Get(logURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raw logs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("failed to fetch logs, status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading log response: %w", err)
	}
	return data, nil
}

// Ensure interface compliance
var _ interfaces.WorkflowClient = (*Client)(nil)
