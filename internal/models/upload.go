package models

// UploadState is the single current-state value of the release upload
// pipeline. Transitions are driven by typed methods on the pipeline, not by
// independent flags.
type UploadState string

const (
	UploadIdle         UploadState = "idle"
	UploadFileSelected UploadState = "file_selected"
	UploadValidating   UploadState = "validating"
	UploadAwaitingURL  UploadState = "awaiting_upload_url"
	UploadTransferring UploadState = "transferring"
	UploadCommitting   UploadState = "committing"
	UploadDone         UploadState = "done"
	UploadFailed       UploadState = "failed"
)

// UploadSession is a presigned upload location issued by the CDN for a single
// attempt. Short-lived and single-use; discarded after the transfer completes
// or fails, never retried.
type UploadSession struct {
	TargetURL   string `json:"url"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
}

// SelectedFile describes the archive chosen for upload.
type SelectedFile struct {
	Name        string
	Size        int64
	ContentType string
}
