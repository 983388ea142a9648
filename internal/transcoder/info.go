package transcoder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"vvc-encoder/pkg/models"
)

const bytesPerMB = 1024 * 1024

// Inspect scrapes metadata for the file at path. Only a missing file is an
// error; a failed ffmpeg launch is logged and yields a partial record.
func (e *Engine) Inspect(ctx context.Context, path string) (*models.VideoInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	info := &models.VideoInfo{}
	info.FileSizeMB = float64(fi.Size()) / bytesPerMB

	// With no output file ffmpeg exits non-zero after printing the stream
	// banner, so the exit status is expected and only stderr matters.
	_, stderr, err := e.runner.Run(ctx, e.FFmpegPath, "-i", path)
	if len(stderr) == 0 {
		if err != nil {
			e.logger.Error("failed to read video info", "path", path, "error", err)
		}
		return info, nil
	}

	parsed := ParseDiagnostics(e.extractor, string(stderr))
	parsed.FileSizeMB = info.FileSizeMB
	e.logger.Debug("video info", "path", path, "width", parsed.Width, "height", parsed.Height,
		"fps", parsed.FPS, "duration", parsed.Duration)
	return &parsed, nil
}
