package models

import (
	"fmt"
	"strings"
)

// UpstreamError carries a non-success response from an external collaborator
// (identity provider, backend record store, CDN, CI provider) verbatim.
// Status and body are surfaced to the caller unchanged; nothing is retried.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, body)
}

// FieldError is a validation failure tied to a single input field. It blocks
// the action that produced it but does not fail a larger flow.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PartialCommitError marks the known consistency gap in the upload pipeline:
// the byte transfer succeeded but the version commit failed, leaving uploaded
// content with no recorded version. The design surfaces this rather than
// reconciling it.
type PartialCommitError struct {
	GameID  string
	Version string
	Err     error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("version commit failed after successful transfer for game %s version %s: %v", e.GameID, e.Version, e.Err)
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}
