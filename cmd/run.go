package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tracklake/internal/etl"
	"github.com/desertthunder/tracklake/internal/shared"
	"github.com/urfave/cli/v3"
)

func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the ingestion pipeline for one or more playlists",
		ArgsUsage: "<playlist-id-or-url> [more...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Checkpoint directory",
			},
			&cli.BoolFlag{
				Name:  "no-checkpoints",
				Usage: "Skip writing checkpoint artifacts between stages",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent pipeline invocations for batch runs",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Pipeline starts per second for batch runs",
			},
		},
		Action: r.RunPipeline,
	}
}

// RunPipeline executes the pipeline for every playlist argument.
//
// A single argument runs one invocation and prints its summary; multiple
// arguments run through the batch worker pool.
func (r *Runner) RunPipeline(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one playlist id or URL", shared.ErrMissingArgument)
	}

	client, err := r.requireClient()
	if err != nil {
		return err
	}

	if err := client.Authenticate(ctx); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	dataDir := r.config.Pipeline.DataDir
	if v := cmd.String("data-dir"); v != "" {
		dataDir = v
	}

	engine := etl.NewEngine(etl.EngineOpts{
		Client:      client,
		DB:          db,
		Logger:      r.logger,
		DataDir:     dataDir,
		Checkpoints: r.config.Pipeline.Checkpoints && !cmd.Bool("no-checkpoints"),
	})

	progress := make(chan etl.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	if len(ids) == 1 {
		summary, err := engine.Run(ctx, ids[0], progress)
		close(progress)
		<-done
		if err != nil {
			return err
		}
		return r.writeJSON(summary)
	}

	opts := etl.BatchOpts{
		NumWorkers: r.config.Pipeline.NumWorkers,
		RateLimit:  r.config.Pipeline.RateLimit,
	}
	if v := cmd.Int("workers"); v > 0 {
		opts.NumWorkers = v
	}
	if v := cmd.Float("rate"); v > 0 {
		opts.RateLimit = v
	}

	result, err := engine.RunAll(ctx, ids, opts, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if err := r.writeJSON(result); err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d pipeline runs failed", result.Failed, result.Total)
	}
	return nil
}
