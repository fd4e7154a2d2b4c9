package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nxtcoder17/denv/pkg/denv"
	"github.com/urfave/cli/v3"
)

var Version string

func main() {
	if Version == "" {
		Version = fmt.Sprintf("nightly | %s", time.Now().Format(time.RFC3339))
	}

	cmd := cli.Command{
		Name:        "denv",
		Version:     Version,
		Description: "A declarative development environment composer built on top of nix",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "path to denv.yml",
			},
		},

		EnableShellCompletion: true,

		Commands: []*cli.Command{
			{
				Name:    "shell",
				Usage:   "[program]",
				Suggest: true,
				Action: func(ctx context.Context, c *cli.Command) error {
					env, err := buildEnvironment(ctx, c)
					if err != nil {
						return err
					}

					return env.Shell(ctx, c.Args().First())
				},
			},
			{
				Name:  "run",
				Usage: "<command> [args...]",
				Action: func(ctx context.Context, c *cli.Command) error {
					args := c.Args().Slice()
					if len(args) == 0 {
						return fmt.Errorf("run needs a command")
					}

					env, err := buildEnvironment(ctx, c)
					if err != nil {
						return err
					}

					return env.Run(ctx, args[0], args[1:]...)
				},
			},
			{
				Name:  "env",
				Usage: "prints the composed environment as export statements",
				Action: func(ctx context.Context, c *cli.Command) error {
					env, err := buildEnvironment(ctx, c)
					if err != nil {
						return err
					}

					for _, line := range env.ExportLines() {
						fmt.Println(line)
					}
					return nil
				},
			},
			{
				Name:    "add",
				Usage:   "<pkgname>...",
				Suggest: true,
				Action: func(ctx context.Context, c *cli.Command) error {
					d, err := loadFromDenvFile(c)
					if err != nil {
						return err
					}

					if err := d.AddPackages(c.Args().Slice()...); err != nil {
						return err
					}
					return d.SyncToDisk()
				},
			},
			{
				Name:  "expose",
				Usage: "<pkgname>...",
				Action: func(ctx context.Context, c *cli.Command) error {
					d, err := loadFromDenvFile(c)
					if err != nil {
						return err
					}

					if err := d.ExposeLibraries(c.Args().Slice()...); err != nil {
						return err
					}
					return d.SyncToDisk()
				},
			},
			{
				Name: "init",
				Action: func(ctx context.Context, c *cli.Command) error {
					dir, err := os.Getwd()
					if err != nil {
						return err
					}

					return denv.InitFile(filepath.Join(dir, "denv.yml"))
				},
			},
		},

		Suggest: true,
	}

	ctx, cf := signal.NotifyContext(context.TODO(), syscall.SIGINT, syscall.SIGTERM)
	defer cf()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("while running cmd, got", "err", err)
		os.Exit(1)
	}
}

func buildEnvironment(ctx context.Context, c *cli.Command) (*denv.Environment, error) {
	d, err := loadFromDenvFile(c)
	if err != nil {
		return nil, err
	}

	spec, err := d.ToSpec()
	if err != nil {
		return nil, err
	}

	r, err := d.NewResolver()
	if err != nil {
		return nil, err
	}

	return denv.Build(ctx, spec, r)
}

func loadFromDenvFile(c *cli.Command) (*denv.Denv, error) {
	switch {
	case c.IsSet("file"):
		return denv.LoadFromFile(c.String("file"))
	default:
		dir, err := os.Getwd()
		if err != nil {
			return nil, err
		}

		oldDir := ""

		for oldDir != dir {
			if _, err := os.Stat(filepath.Join(dir, "denv.yml")); err != nil {
				if !os.IsNotExist(err) {
					return nil, err
				}
			} else {
				return denv.LoadFromFile(filepath.Join(dir, "denv.yml"))
			}

			oldDir = dir
			dir = filepath.Dir(dir)
		}

		return nil, fmt.Errorf("failed to locate your nearest denv.yml")
	}
}
