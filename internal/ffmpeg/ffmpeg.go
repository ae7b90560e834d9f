// Package ffmpeg runs the ffmpeg binary for video augmentation.
package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// tailLines is how much ffmpeg output is kept for error messages.
const tailLines = 8

// Executor handles ffmpeg operations with progress streaming
type Executor struct {
	logger     *slog.Logger
	ffmpegPath string
	threads    int
}

// New creates a new ffmpeg executor. An empty binary is looked up on PATH.
func New(logger *slog.Logger, binary string, threads int) (*Executor, error) {
	if binary == "" {
		binary = "ffmpeg"
	}
	ffmpegPath, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Executor{
		logger:     logger.With("component", "ffmpeg"),
		ffmpegPath: ffmpegPath,
		threads:    threads,
	}, nil
}

// Path returns the resolved ffmpeg binary.
func (e *Executor) Path() string {
	return e.ffmpegPath
}

// buildArgs puts the global flags ahead of the caller's arguments.
func (e *Executor) buildArgs(args []string) []string {
	base := []string{"-y", "-hide_banner", "-nostdin", "-loglevel", "error"}
	if e.threads > 0 {
		base = append(base, "-threads", strconv.Itoa(e.threads))
	}
	base = append(base, "-progress", "pipe:1")
	return append(base, args...)
}

// Run executes ffmpeg with the given arguments and streams progress
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}
	args := e.buildArgs(opts.Args)

	e.logger.Debug("executing ffmpeg", "args", args)

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var (
		wg   sync.WaitGroup
		tail []string
	)
	wg.Add(2)

	// stdout carries -progress key=value blocks
	go func() {
		defer wg.Done()
		streamProgress(stdout, opts.ProgressHandler)
	}()

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			if opts.LogHandler != nil {
				opts.LogHandler(line)
			}
			tail = append(tail, line)
			if len(tail) > tailLines {
				tail = tail[1:]
			}
		}
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if len(tail) > 0 {
			return fmt.Errorf("ffmpeg execution failed: %w: %s", err, strings.Join(tail, "; "))
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	e.logger.Debug("ffmpeg execution completed")
	return nil
}

// streamProgress parses ffmpeg -progress output and calls handler once per
// completed block.
func streamProgress(r io.Reader, handler func(*Progress)) {
	scanner := bufio.NewScanner(r)
	p := &Progress{}

	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "frame":
			p.Frame, _ = strconv.Atoi(value)
		case "fps":
			p.FPS, _ = strconv.ParseFloat(value, 64)
		case "bitrate":
			p.Bitrate = value
		case "out_time":
			p.Time = value
		case "speed":
			p.Speed = value
		case "progress":
			if handler != nil && p.Frame > 0 {
				handler(p)
			}
			p = &Progress{}
		}
	}
}

// mirrorArgs builds the arguments that write a horizontally mirrored copy
// of input to output, keeping audio as is.
func mirrorArgs(input, output string) []string {
	filter := NewFilterBuilder().HFlip().Build()
	return []string{"-i", input, "-vf", filter, "-c:a", "copy", output}
}

// MirrorHorizontally renders a horizontally mirrored copy of input at
// output. The result is written under a temporary name and renamed into
// place, so output only appears once the render is complete.
func (e *Executor) MirrorHorizontally(ctx context.Context, input, output string) error {
	tmp := filepath.Join(filepath.Dir(output), ".partial-"+filepath.Base(output))
	err := e.Run(ctx, RunOptions{
		Args: mirrorArgs(input, tmp),
		ProgressHandler: func(p *Progress) {
			e.logger.Debug("mirror progress", "input", input, "frame", p.Frame, "speed", p.Speed)
		},
	})
	if err != nil {
		_ = os.Remove(tmp)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrTransform, filepath.Base(input), err)
	}
	if err := os.Rename(tmp, output); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: placing %s: %w", ErrTransform, output, err)
	}
	e.logger.Info("mirrored video", "input", input, "output", output)
	return nil
}
