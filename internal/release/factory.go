package release

import (
	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
)

// PipelineFactory builds one Pipeline per upload request. The CDN and
// backend clients are safe to share across requests; the staged file and
// proposed version are not, so every request gets its own pipeline.
type PipelineFactory struct {
	cdn     *CDNClient
	backend interfaces.BackendClient
	cfg     *common.UploadConfig
	events  interfaces.EventService
}

// NewPipelineFactory creates a factory over shared clients. events may be
// nil when no client is subscribed to progress.
func NewPipelineFactory(cdn *CDNClient, backend interfaces.BackendClient, cfg *common.UploadConfig, events interfaces.EventService) *PipelineFactory {
	return &PipelineFactory{
		cdn:     cdn,
		backend: backend,
		cfg:     cfg,
		events:  events,
	}
}

// New returns a pipeline with its own staged state.
func (f *PipelineFactory) New() *Pipeline {
	return NewPipeline(f.cdn, f.backend, f.cfg, f.events)
}
