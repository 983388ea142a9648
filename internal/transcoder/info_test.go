package transcoder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	r := supportedRunner()
	e, _ := newTestEngine(t, r)

	path := filepath.Join(t.TempDir(), "sample.mov")
	writeFile(t, path, 3*bytesPerMB/2)

	info, err := e.Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.Equal(t, "00:01:02.50", info.Duration)
	assert.InDelta(t, 1.5, info.FileSizeMB, 1e-9)

	last := r.runCalls[len(r.runCalls)-1]
	assert.Equal(t, []string{"/usr/bin/ffmpeg", "-i", path}, last)
}

func TestInspectIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t, supportedRunner())
	path := filepath.Join(t.TempDir(), "clip.mp4")
	writeFile(t, path, 2048)

	first, err := e.Inspect(context.Background(), path)
	require.NoError(t, err)
	second, err := e.Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInspectMissingFile(t *testing.T) {
	r := supportedRunner()
	e, _ := newTestEngine(t, r)
	calls := len(r.runCalls)

	_, err := e.Inspect(context.Background(), filepath.Join(t.TempDir(), "absent.mp4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Len(t, r.runCalls, calls)
}

func TestInspectLaunchFailureYieldsPartialRecord(t *testing.T) {
	r := supportedRunner()
	e, _ := newTestEngine(t, r)
	r.results["-i"] = runResult{err: errors.New("fork/exec /usr/bin/ffmpeg: no such file or directory")}

	path := filepath.Join(t.TempDir(), "clip.mp4")
	writeFile(t, path, bytesPerMB)

	info, err := e.Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, info.FileSizeMB, 1e-9)
	assert.False(t, info.HasResolution())
	assert.Empty(t, info.Duration)
}
