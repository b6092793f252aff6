package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusPresentation(t *testing.T) {
	tests := []struct {
		status string
		want   StatusLevel
	}{
		{"success", StatusSuccess},
		{"in_progress", StatusActive},
		{"queued", StatusPending},
		{"failure", StatusError},
		{"failed", StatusError},
		{"bogus-status", StatusNeutral},
		{"", StatusNeutral},
		{"unknown", StatusNeutral},
		{"cancelled", StatusNeutral},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusPresentation(tt.status), "status %q", tt.status)
	}
}

func TestDeployStatus(t *testing.T) {
	t.Run("empty run list is unknown", func(t *testing.T) {
		assert.Equal(t, DeployStatusUnknown, DeployStatus(nil))
		assert.Equal(t, DeployStatusUnknown, DeployStatus([]WorkflowRun{}))
	})

	t.Run("latest conclusion wins regardless of older runs", func(t *testing.T) {
		runs := []WorkflowRun{
			{ID: 3, Status: "completed", Conclusion: "success"},
			{ID: 2, Status: "completed", Conclusion: "failure"},
			{ID: 1, Status: "completed", Conclusion: "failure"},
		}
		assert.Equal(t, "success", DeployStatus(runs))
	})

	t.Run("status used when conclusion absent", func(t *testing.T) {
		runs := []WorkflowRun{{ID: 9, Status: "in_progress"}}
		assert.Equal(t, "in_progress", DeployStatus(runs))
	})

	t.Run("unknown when latest carries neither", func(t *testing.T) {
		runs := []WorkflowRun{{ID: 9}}
		assert.Equal(t, DeployStatusUnknown, DeployStatus(runs))
	})
}

func TestRepoOwnerName(t *testing.T) {
	g := &Game{GitHubRepo: "acme/rocket"}
	owner, name, ok := g.RepoOwnerName()
	assert.True(t, ok)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "rocket", name)

	for _, repo := range []string{"", "norepo", "/leading", "trailing/"} {
		g := &Game{GitHubRepo: repo}
		_, _, ok := g.RepoOwnerName()
		assert.False(t, ok, "repo %q", repo)
	}
}
