package etl

import "fmt"

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI or HTTP layer for display.
type ProgressUpdate struct {
	Stage   Stage  // Pipeline stage
	Step    int    // Current step number within the stage
	Total   int    // Total steps in this stage
	Message string // Human-readable message for display
	Data    any    // Optional stage-specific data
}

// Stage enumerates the pipeline's state machine.
//
// A run moves Extracting → Transforming → Loading → Done; Failed is terminal
// and reachable from any working stage.
type Stage int

const (
	StageExtracting Stage = iota
	StageTransforming
	StageLoading
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageExtracting:
		return "extracting"
	case StageTransforming:
		return "transforming"
	case StageLoading:
		return "loading"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return ""
	}
}

// PipelineError tags a stage failure with the stage it originated from.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed during %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func extractingUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Stage:   StageExtracting,
		Step:    1,
		Total:   3,
		Message: fmt.Sprintf("Extracting playlist %s...", playlistID),
	}
}

func extractedUpdate(name string, tracks, failures int) ProgressUpdate {
	msg := fmt.Sprintf("Extracted %d tracks from %s", tracks, name)
	if failures > 0 {
		msg = fmt.Sprintf("%s (%d genre lookups failed)", msg, failures)
	}
	return ProgressUpdate{
		Stage:   StageExtracting,
		Step:    1,
		Total:   3,
		Message: msg,
	}
}

func transformingUpdate(tracks int) ProgressUpdate {
	return ProgressUpdate{
		Stage:   StageTransforming,
		Step:    2,
		Total:   3,
		Message: fmt.Sprintf("Normalizing %d records...", tracks),
	}
}

func loadingUpdate(tracks int) ProgressUpdate {
	return ProgressUpdate{
		Stage:   StageLoading,
		Step:    3,
		Total:   3,
		Message: fmt.Sprintf("Loading %d records into the sink...", tracks),
	}
}

func doneUpdate(name string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Stage:   StageDone,
		Step:    3,
		Total:   3,
		Message: fmt.Sprintf("Pipeline complete: %s (%d tracks)", name, tracks),
	}
}

func batchPlaylistUpdate(step, total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Stage:   StageExtracting,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Running pipeline for %s...", step, total, playlistID),
	}
}
