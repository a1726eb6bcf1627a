package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tracklake/internal/shared"
	"github.com/urfave/cli/v3"
)

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the database and write a starter config file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "write-config",
				Usage: "Write the example config to the config path",
			},
		},
		Action: r.Setup,
	}
}

// Setup initializes the sink schema and optionally writes a starter config.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("write-config") {
		path := cmd.String("config")
		if err := shared.CreateConfigFile(path); err != nil {
			return err
		}
		r.writePlain("✓ Wrote starter config to %s\n", path)
	}

	db, err := r.openDatabase()
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	defer db.Close()

	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	return nil
}
