package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/tracklake/internal/etl"
	"github.com/desertthunder/tracklake/internal/repositories"
	"github.com/desertthunder/tracklake/internal/server"
	"github.com/urfave/cli/v3"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the pipeline trigger and read-back API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind host (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Bind port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
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

	engine := etl.NewEngine(etl.EngineOpts{
		Client:      client,
		DB:          db,
		Logger:      r.logger,
		DataDir:     r.config.Pipeline.DataDir,
		Checkpoints: r.config.Pipeline.Checkpoints,
	})

	handler := server.NewPipelineHandler(
		engine,
		repositories.NewTrackRepository(db),
		repositories.NewPlaylistRepository(db),
		repositories.NewRunRepository(db),
		r.logger,
	)

	router := server.NewRouter()
	router.Use(server.Logging(r.logger))
	handler.Register(router)

	host := r.config.Server.Host
	if v := cmd.String("host"); v != "" {
		host = v
	}
	port := r.config.Server.Port
	if v := cmd.Int("port"); v > 0 {
		port = v
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("serving API", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stop:
		r.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}
