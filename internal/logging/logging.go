// Package logging builds the session logger.
//
// One root hclog.Logger is created per process and handed to every
// component, which derives its own with Named. Records go to the console and
// to a per-process file:
//
//	logs/video_encoder_<pid>.log
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// Options configures New.
type Options struct {
	Name  string
	Level string
	Dir   string
	// Console defaults to os.Stderr.
	Console io.Writer
}

// New returns the root logger and the log file to close at exit.
func New(opts Options) (hclog.Logger, io.Closer, error) {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Name == "" {
		opts.Name = "vvc-encoder"
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	path := FilePath(opts.Dir, os.Getpid())
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := hclog.LevelFromString(opts.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Level:      level,
		Output:     io.MultiWriter(opts.Console, f),
		TimeFormat: "2006-01-02 15:04:05",
	})
	return logger, f, nil
}

// FilePath is the log file used by the process with the given pid.
func FilePath(dir string, pid int) string {
	return filepath.Join(dir, fmt.Sprintf("video_encoder_%d.log", pid))
}
