package etl

import (
	"errors"
	"testing"

	"github.com/desertthunder/tracklake/internal/shared"
)

func TestStageString(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageExtracting, "extracting"},
		{StageTransforming, "transforming"},
		{StageLoading, "loading"},
		{StageDone, "done"},
		{StageFailed, "failed"},
		{Stage(99), ""},
	}

	for _, tt := range tests {
		if got := tt.stage.String(); got != tt.want {
			t.Errorf("Stage(%d).String() = %q, want %q", tt.stage, got, tt.want)
		}
	}
}

func TestPipelineError(t *testing.T) {
	err := &PipelineError{Stage: StageLoading, Err: shared.ErrPersistence}

	if !errors.Is(err, shared.ErrPersistence) {
		t.Error("cause not reachable through Unwrap")
	}
	if msg := err.Error(); msg != "pipeline failed during loading: persistence failed" {
		t.Errorf("message = %q", msg)
	}
}
