package etl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracklake/internal/models"
	"github.com/desertthunder/tracklake/internal/repositories"
	"github.com/desertthunder/tracklake/internal/services"
	"github.com/desertthunder/tracklake/internal/shared"
)

// EngineOpts contains dependencies and settings for an [Engine].
type EngineOpts struct {
	Client      services.SourceClient
	DB          *sql.DB
	Logger      *log.Logger
	DataDir     string // Checkpoint directory (default "data")
	Checkpoints bool   // Write checkpoint artifacts between stages
}

// Engine sequences extract → transform → load for one playlist at a time.
//
// Each invocation is independent: staging-table names are randomized, so
// engines for different playlists may run concurrently against one sink.
type Engine struct {
	client      services.SourceClient
	db          *sql.DB
	logger      *log.Logger
	dataDir     string
	checkpoints bool

	extractor *Extractor
	loader    *Loader
	runs      *repositories.RunRepository
	playlists *repositories.PlaylistRepository
}

// NewEngine creates an Engine with the provided dependencies.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}

	return &Engine{
		client:      opts.Client,
		db:          opts.DB,
		logger:      opts.Logger,
		dataDir:     opts.DataDir,
		checkpoints: opts.Checkpoints,
		extractor:   NewExtractor(opts.Client, opts.Logger),
		loader:      NewLoader(opts.Logger),
		runs:        repositories.NewRunRepository(opts.DB),
		playlists:   repositories.NewPlaylistRepository(opts.DB),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the pipeline.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run executes the full pipeline for one playlist.
//
// The stage sequence is Extracting → Transforming → Loading → Done. No stage
// retries; the first failure is wrapped in a [PipelineError] identifying the
// originating stage and the run halts. The resolved playlist ID is threaded
// through to the loader, which stamps it on every row.
func (e *Engine) Run(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*models.PlaylistSummary, error) {
	playlistID = services.ResolvePlaylistID(playlistID)
	if playlistID == "" {
		return nil, &PipelineError{Stage: StageExtracting, Err: fmt.Errorf("%w: playlist id is empty", shared.ErrInvalidInput)}
	}

	run, err := e.runs.Create(playlistID)
	if err != nil {
		// Run history is bookkeeping; a failed insert is logged, not fatal.
		e.logger.Warn("failed to record pipeline run", "err", err)
		run = nil
	}

	summary, pipeErr := e.execute(ctx, playlistID, progress)

	if run != nil {
		if pipeErr != nil {
			if err := e.runs.Fail(run.ID, pipeErr.Stage.String(), pipeErr.Err); err != nil {
				e.logger.Warn("failed to mark run failed", "err", err)
			}
		} else {
			if err := e.runs.Complete(run.ID, summary.Name, summary.TrackCount); err != nil {
				e.logger.Warn("failed to mark run complete", "err", err)
			}
		}
	}

	if pipeErr != nil {
		return nil, pipeErr
	}
	return summary, nil
}

// execute runs the three stages and returns a stage-tagged error on failure.
func (e *Engine) execute(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*models.PlaylistSummary, *PipelineError) {
	e.sendProgress(progress, extractingUpdate(playlistID))

	extracted, err := e.extractor.Extract(ctx, playlistID)
	if err != nil {
		return nil, &PipelineError{Stage: StageExtracting, Err: err}
	}
	e.sendProgress(progress, extractedUpdate(extracted.Meta.Name, len(extracted.Tracks), extracted.GenreLookupFailures))

	if e.checkpoints {
		if _, err := WriteRawCheckpoint(e.dataDir, extracted); err != nil {
			e.logger.Warn("raw checkpoint write failed", "err", err)
		}
	}

	e.sendProgress(progress, transformingUpdate(len(extracted.Tracks)))
	canonical := Normalize(extracted.Tracks)

	if e.checkpoints {
		if _, err := WriteCleanCheckpoint(e.dataDir, canonical); err != nil {
			e.logger.Warn("clean checkpoint write failed", "err", err)
		}
	}

	e.sendProgress(progress, loadingUpdate(len(canonical)))
	if err := e.loader.Load(ctx, e.db, playlistID, canonical); err != nil {
		return nil, &PipelineError{Stage: StageLoading, Err: err}
	}

	if err := e.playlists.Upsert(extracted.Meta, len(canonical)); err != nil {
		return nil, &PipelineError{Stage: StageLoading, Err: err}
	}

	summary := &models.PlaylistSummary{
		Name:       extracted.Meta.Name,
		Owner:      extracted.Meta.Owner,
		TrackCount: len(canonical),
	}
	e.sendProgress(progress, doneUpdate(summary.Name, summary.TrackCount))

	return summary, nil
}
