package transcoder

import (
	"bytes"
	"context"
	"strings"
)

// CheckSupport asks ffmpeg for its version and encoder list. It reports
// whether the configured encoder is listed plus the first version line.
// Failures are advisory: they return (false, error text).
func (e *Engine) CheckSupport(ctx context.Context) (bool, string) {
	versionOut, _, err := e.runner.Run(ctx, e.FFmpegPath, "-version")
	if err != nil {
		e.logger.Error("failed to query ffmpeg version", "error", err)
		return false, err.Error()
	}
	version, _, _ := strings.Cut(string(versionOut), "\n")
	version = strings.TrimSpace(version)

	encodersOut, _, err := e.runner.Run(ctx, e.FFmpegPath, "-encoders")
	if err != nil {
		e.logger.Error("failed to list ffmpeg encoders", "error", err)
		return false, err.Error()
	}

	supported := bytes.Contains(encodersOut, []byte(e.encoder))
	e.logger.Debug("capability check", "version", version, "encoder", e.encoder, "supported", supported)
	return supported, version
}
