// Package trainer runs the assisted tagging retrain job of a project.
package trainer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Command runs an external program with the project root as its last
// argument.
type Command struct {
	program string
	args    []string
	timeout time.Duration
	logger  *slog.Logger
}

// New returns a trainer for command, a program followed by fixed
// arguments. An empty command yields a Noop trainer.
func New(command []string, timeout time.Duration, logger *slog.Logger) Trainer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return Noop{logger: logger.With("component", "trainer")}
	}
	return &Command{
		program: command[0],
		args:    append([]string(nil), command[1:]...),
		timeout: timeout,
		logger:  logger.With("component", "trainer"),
	}
}

// Trainer retrains the assisted tagging model of a project.
type Trainer interface {
	Retrain(ctx context.Context, root string) error
}

// Retrain runs the command and waits for it to exit.
func (c *Command) Retrain(ctx context.Context, root string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), c.args...), root)
	cmd := exec.CommandContext(ctx, c.program, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	c.logger.Info("retrain started", "root", root, "program", c.program)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("running %s: %w: %s", c.program, err, msg)
		}
		return fmt.Errorf("running %s: %w", c.program, err)
	}
	c.logger.Info("retrain finished", "root", root, "duration", time.Since(start))
	return nil
}

// Noop logs the request and does nothing.
type Noop struct {
	logger *slog.Logger
}

// Retrain implements Trainer.
func (n Noop) Retrain(_ context.Context, root string) error {
	if n.logger != nil {
		n.logger.Debug("no retrain command configured", "root", root)
	}
	return nil
}
