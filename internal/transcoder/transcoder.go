package transcoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"vvc-encoder/pkg/models"
)

// Request describes one transcode. QP and Threads are passed through
// unchecked; range limits belong to the caller.
type Request struct {
	Input   string
	Output  string
	QP      int
	Threads int
	Preset  string
	UseGPU  bool

	// DurationSec enables progress percentages when known.
	DurationSec float64
}

// RequestFromConfig builds a Request from user encoder choices.
func RequestFromConfig(input, output string, cfg models.EncoderConfig) Request {
	return Request{
		Input:   input,
		Output:  output,
		QP:      cfg.QP,
		Threads: cfg.Threads,
		Preset:  cfg.Preset,
		UseGPU:  cfg.UseGPU,
	}
}

// Result reports how a transcode ended.
type Result struct {
	OutputPath string
	Success    bool
	Args       []string
	Progress   models.Progress
	Elapsed    time.Duration
}

// Transcode validates req, picks a free output path and runs ffmpeg while
// echoing its output. Only ErrFileNotFound and ErrValidation are returned as
// errors; everything that goes wrong after validation yields Success=false.
func (e *Engine) Transcode(ctx context.Context, req Request) (*Result, error) {
	if _, err := os.Stat(req.Input); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, req.Input)
		}
		return nil, fmt.Errorf("stat %s: %w", req.Input, err)
	}
	if !models.IsValidPreset(req.Preset) {
		return nil, fmt.Errorf("%w: preset %q, valid presets are %s",
			ErrValidation, req.Preset, strings.Join(models.Presets, ", "))
	}

	outputPath := ResolveOutputPath(req.Output)
	args := e.BuildArgs(req, outputPath)
	res := &Result{OutputPath: outputPath, Args: args}

	e.logger.Info("running command", "command", strings.Join(args, " "))

	start := time.Now()
	var lastLogged float64
	err := e.runner.Stream(ctx, args[0], args[1:], func(raw []byte) {
		text, ok := DecodeLine(raw, e.decoders)
		if !ok {
			return
		}
		_, _ = io.WriteString(e.console, text)

		if p, ok := ParseProgress(text, req.DurationSec); ok {
			res.Progress = p
			if p.Percent-lastLogged >= 10 {
				lastLogged = p.Percent
				e.logger.Debug("progress", "percent", fmt.Sprintf("%.0f", p.Percent), "fps", p.FPS, "speed", p.Speed)
			}
		}
	})
	res.Elapsed = time.Since(start)

	if err != nil {
		e.logger.Error("transcode failed", "output", outputPath, "error", err)
		return res, nil
	}

	res.Success = true
	e.logger.Info("transcoded to H.266", "output", outputPath, "elapsed", res.Elapsed.Round(time.Second))
	return res, nil
}
