package release

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/buildsmith/buildsmith/internal/models"
	"github.com/ternarybob/arbor"
)

// Pipeline drives a release upload from file selection through version
// commit. One upload runs at a time; a failure at any stage clears the
// selected file and proposed version so the next attempt starts clean.
type Pipeline struct {
	mu       sync.Mutex
	state    models.UploadState
	file     *models.SelectedFile
	content  io.Reader
	proposed string

	cdn      *CDNClient
	backend  interfaces.BackendClient
	events   interfaces.EventService
	accept   string
	progress ProgressFunc
	logger   arbor.ILogger
}

// NewPipeline creates an upload pipeline. events may be nil when no client
// is subscribed to progress.
func NewPipeline(cdn *CDNClient, backend interfaces.BackendClient, cfg *common.UploadConfig, events interfaces.EventService) *Pipeline {
	return &Pipeline{
		state:   models.UploadIdle,
		cdn:     cdn,
		backend: backend,
		events:  events,
		accept:  cfg.AcceptedExtension,
		logger:  common.GetLogger(),
	}
}

// SetProgressFunc registers a direct progress callback in addition to
// published events.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress = fn
}

// State returns the current pipeline state.
func (p *Pipeline) State() models.UploadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SelectedFile returns the currently selected file, nil when none.
func (p *Pipeline) SelectedFile() *models.SelectedFile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file
}

// SelectFile stages an artifact for upload. Only the accepted extension is
// allowed; a rejected file clears any previous selection.
func (p *Pipeline) SelectFile(file *models.SelectedFile, content io.Reader) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == models.UploadTransferring || p.state == models.UploadCommitting {
		return &models.FieldError{Field: "file", Message: "upload already in progress"}
	}

	if !strings.EqualFold(filepath.Ext(file.Name), p.accept) {
		p.clearLocked()
		p.setStateLocked(models.UploadIdle)
		return &models.FieldError{Field: "file", Message: fmt.Sprintf("only %s files are accepted", p.accept)}
	}

	p.file = file
	p.content = content
	p.proposed = ""
	p.setStateLocked(models.UploadFileSelected)
	p.logger.Debug().Str("file", file.Name).Msg("Staged release artifact")
	return nil
}

// ProposeVersion validates the proposed version against the game's current
// one. The proposal must be well formed and strictly greater; a rejected
// proposal keeps the selected file.
func (p *Pipeline) ProposeVersion(currentVersion, proposed string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != models.UploadFileSelected {
		return &models.FieldError{Field: "version", Message: "no file selected"}
	}

	p.setStateLocked(models.UploadValidating)
	if err := models.ValidateProposedVersion(currentVersion, proposed); err != nil {
		p.proposed = ""
		p.setStateLocked(models.UploadFileSelected)
		return err
	}

	p.proposed = proposed
	p.setStateLocked(models.UploadFileSelected)
	return nil
}

// SuggestNextVersion returns the current version with the patch component
// bumped, the default proposal offered to the user.
func SuggestNextVersion(currentVersion string) (string, error) {
	v, err := models.ParseVersion(currentVersion)
	if err != nil {
		return "", err
	}
	return v.NextPatch().String(), nil
}

// Run executes the staged upload: presign, transfer, then version commit.
// A failed presign or transfer moves to Failed with the selection cleared.
// A failed commit after a successful transfer is the one partial outcome;
// it is surfaced as PartialCommitError, never silently retried.
func (p *Pipeline) Run(ctx context.Context, sessionID string, game *models.Game) error {
	p.mu.Lock()
	if p.state != models.UploadFileSelected {
		p.mu.Unlock()
		return &models.FieldError{Field: "file", Message: "no file staged for upload"}
	}
	if p.proposed == "" {
		p.mu.Unlock()
		return &models.FieldError{Field: "version", Message: "no version proposed"}
	}
	file, content, version := p.file, p.content, p.proposed
	p.setStateLocked(models.UploadAwaitingURL)
	p.mu.Unlock()

	targetURL, err := p.cdn.GenerateUploadURL(ctx, &UploadURLRequest{
		FileExt:      strings.TrimPrefix(filepath.Ext(file.Name), "."),
		ContentType:  file.ContentType,
		IsGameUpload: true,
		GameID:       game.GameID,
		Version:      version,
		SizeBytes:    file.Size,
	}, sessionID)
	if err != nil {
		p.fail()
		return fmt.Errorf("presign failed: %w", err)
	}

	p.setState(models.UploadTransferring)
	reader := newProgressReader(content, file.Size, func(percent int) {
		p.publishProgress(game.GameID, percent)
	})
	if err := p.cdn.Transfer(ctx, targetURL, file.ContentType, reader, file.Size); err != nil {
		p.fail()
		return fmt.Errorf("transfer failed: %w", err)
	}

	p.setState(models.UploadCommitting)
	if err := p.backend.UpdateGameVersion(ctx, sessionID, game.GameID, version); err != nil {
		p.fail()
		p.logger.Error().Str("game_id", game.GameID).Str("version", version).Err(err).Msg("Version commit failed after transfer")
		return &models.PartialCommitError{GameID: game.GameID, Version: version, Err: err}
	}

	p.mu.Lock()
	p.clearLocked()
	p.setStateLocked(models.UploadDone)
	p.mu.Unlock()

	p.logger.Info().Str("game_id", game.GameID).Str("version", version).Msg("Release upload committed")
	return nil
}

// Reset returns the pipeline to idle, dropping any selection or outcome.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
	p.setStateLocked(models.UploadIdle)
}

func (p *Pipeline) fail() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
	p.setStateLocked(models.UploadFailed)
}

func (p *Pipeline) clearLocked() {
	p.file = nil
	p.content = nil
	p.proposed = ""
}

func (p *Pipeline) setState(state models.UploadState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setStateLocked(state)
}

func (p *Pipeline) setStateLocked(state models.UploadState) {
	p.state = state
	if p.events != nil {
		p.events.Publish(interfaces.Event{Type: "upload_state", Payload: map[string]string{"state": string(state)}})
	}
}

func (p *Pipeline) publishProgress(gameID string, percent int) {
	p.mu.Lock()
	fn := p.progress
	p.mu.Unlock()
	if fn != nil {
		fn(percent)
	}
	if p.events != nil {
		p.events.Publish(interfaces.Event{Type: "upload_progress", Payload: map[string]interface{}{
			"game_id": gameID,
			"percent": percent,
		}})
	}
}
