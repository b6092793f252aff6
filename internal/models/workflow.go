package models

// WorkflowRun is a projection of a CI provider workflow run. Runs are
// ephemeral and refreshed on each poll; the provider returns most recent
// first and index 0 is treated as "latest".
type WorkflowRun struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"` // display title, or "Run #<number>" fallback
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// DeployStatusUnknown is the overall status when no runs exist or no
// credential resolved.
const DeployStatusUnknown = "unknown"

// DeployStatus computes the overall deploy status from a most-recent-first
// run list: conclusion of the latest run if present, else its status, else
// "unknown".
func DeployStatus(runs []WorkflowRun) string {
	if len(runs) == 0 {
		return DeployStatusUnknown
	}
	latest := runs[0]
	if latest.Conclusion != "" {
		return latest.Conclusion
	}
	if latest.Status != "" {
		return latest.Status
	}
	return DeployStatusUnknown
}

// GameStatus is the aggregated CI view for a single game: the run list,
// the derived overall deploy status, and its display level.
type GameStatus struct {
	GameID       string        `json:"game_id"`
	Runs         []WorkflowRun `json:"runs"`
	DeployStatus string        `json:"deploy_status"`
	Level        StatusLevel   `json:"level"`
}

// StatusLevel is the display-oriented projection of a run status.
type StatusLevel string

const (
	StatusSuccess StatusLevel = "success" // completed successfully
	StatusActive  StatusLevel = "active"  // in progress
	StatusPending StatusLevel = "pending" // queued, waiting to run
	StatusError   StatusLevel = "error"   // failed
	StatusNeutral StatusLevel = "neutral" // anything else, including unknown
)

// StatusPresentation maps a provider status or conclusion string to a display
// level. Pure function; unrecognized inputs map to StatusNeutral.
func StatusPresentation(status string) StatusLevel {
	switch status {
	case "success":
		return StatusSuccess
	case "in_progress":
		return StatusActive
	case "queued":
		return StatusPending
	case "failure", "failed":
		return StatusError
	default:
		return StatusNeutral
	}
}
