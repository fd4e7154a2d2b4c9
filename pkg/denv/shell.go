package denv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/term"
)

// Shell launches an interactive shell inside the built environment. With an
// empty program it falls back to $SHELL, then bash.
func (e *Environment) Shell(ctx context.Context, program string) error {
	if program == "" {
		if v, ok := os.LookupEnv("SHELL"); ok {
			program = filepath.Base(v)
		} else {
			program = "bash"
		}
	}

	var args []string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		args = append(args, "-i")
	}

	return e.Run(ctx, program, args...)
}

// Run executes a single command inside the built environment.
func (e *Environment) Run(ctx context.Context, program string, args ...string) error {
	start := time.Now()

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Env = e.environWithHost()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	slog.Debug("Executing", "command", cmd.String())
	defer func() {
		slog.Debug("Shell Exited", "in", fmt.Sprintf("%.2fs", time.Since(start).Seconds()))
	}()

	return cmd.Run()
}

// environWithHost overlays the built variables on the host environment.
// PATH is prepended rather than replaced so host tools stay reachable, with
// the built directories taking precedence. exec.Cmd keeps the last
// occurrence of a duplicated key, so the built variables win.
func (e *Environment) environWithHost() []string {
	result := os.Environ()

	for k, v := range e.Vars {
		if k == PathEnvVar {
			if host := os.Getenv(PathEnvVar); host != "" {
				v = fmt.Sprintf("%s%c%s", v, os.PathListSeparator, host)
			}
		}
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}

	return result
}
