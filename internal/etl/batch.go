package etl

import (
	"context"
	"sync"

	"github.com/desertthunder/tracklake/internal/models"
	"golang.org/x/time/rate"
)

// BatchOpts contains configuration for multi-playlist batch runs.
type BatchOpts struct {
	NumWorkers int     // Concurrent pipeline invocations (default 4, max 10)
	RateLimit  float64 // Pipeline starts per second (default 2)
}

// PlaylistRunResult is the outcome of one pipeline invocation within a batch.
type PlaylistRunResult struct {
	PlaylistID string
	Summary    *models.PlaylistSummary
	Err        error
}

// BatchResult aggregates a batch run.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []PlaylistRunResult
}

// RunAll executes independent pipeline invocations for each playlist ID
// through a worker pool.
//
// Invocations share nothing mutable: each load uses its own randomized
// staging table, so workers never contend beyond the sink's own locking.
// The limiter paces pipeline starts to keep aggregate upstream request
// volume bounded.
func (e *Engine) RunAll(ctx context.Context, playlistIDs []string, opts BatchOpts, progress chan<- ProgressUpdate) (*BatchResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan string, len(playlistIDs))
	results := make(chan PlaylistRunResult, len(playlistIDs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for playlistID := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					results <- PlaylistRunResult{PlaylistID: playlistID, Err: err}
					continue
				}
				summary, err := e.Run(ctx, playlistID, progress)
				results <- PlaylistRunResult{PlaylistID: playlistID, Summary: summary, Err: err}
			}
		}()
	}

	go func() {
		for i, playlistID := range playlistIDs {
			e.sendProgress(progress, batchPlaylistUpdate(i+1, len(playlistIDs), playlistID))
			select {
			case <-ctx.Done():
				close(jobs)
				return
			case jobs <- playlistID:
			}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &BatchResult{Total: len(playlistIDs)}
	for res := range results {
		result.Results = append(result.Results, res)
		if res.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	return result, nil
}
