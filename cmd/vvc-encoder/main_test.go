package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vvc-encoder/internal/session"
	"vvc-encoder/internal/transcoder"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"cancelled", session.ErrCancelled, "Transcode cancelled."},
		{"not found", &transcoder.NotFoundError{Binary: "ffmpeg"}, "is listed in PATH"},
		{"unsupported", &transcoder.UnsupportedError{Encoder: "libvvenc", Version: "ffmpeg version 6.0"}, "--enable-libvvenc"},
		{"missing file", fmt.Errorf("%w: a.mp4", transcoder.ErrFileNotFound), "Check the path"},
		{"validation", fmt.Errorf("%w: qp", transcoder.ErrValidation), "--help"},
		{"other", errors.New("disk on fire"), "An error occurred: disk on fire"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			explain(&buf, tt.err)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

// runCLI executes the command tree with logs kept under a temp dir.
func runCLI(t *testing.T, args ...string) (*cli, string, error) {
	t.Helper()
	dir := t.TempDir()
	c := newCLI()

	var out bytes.Buffer
	c.root.SetOut(&out)
	c.root.SetErr(&out)
	c.root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "absent.yml"),
		"--log-dir", filepath.Join(dir, "logs"),
	}, args...))

	err := c.root.ExecuteContext(context.Background())
	return c, out.String(), err
}

func TestEncodeRejectsQPBeforeLaunch(t *testing.T) {
	c, _, err := runCLI(t, "encode", "in.mp4", "--qp", "10", "--ffmpeg", "/nonexistent/ffmpeg")
	assert.ErrorIs(t, err, transcoder.ErrValidation)
	assert.False(t, c.succeeded)
}

func TestEncodeRejectsThreads(t *testing.T) {
	_, _, err := runCLI(t, "encode", "in.mp4", "--threads", "100000")
	assert.ErrorIs(t, err, transcoder.ErrValidation)
}

func TestEncodeRequiresInput(t *testing.T) {
	_, _, err := runCLI(t, "encode")
	assert.Error(t, err)
}

// fakeFFmpeg writes a shell script that answers the capability check and
// the info banner like a real build with libvvenc.
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	script := `#!/bin/sh
case "$1" in
  -version) echo "ffmpeg version 7.1-test Copyright (c) 2000-2024 the FFmpeg developers" ;;
  -encoders) echo " V....D libvvenc             libvvenc H.266 / VVC" ;;
  -i)
    echo "  Duration: 00:00:10.00, start: 0.000000, bitrate: 800 kb/s" 1>&2
    echo "  Stream #0:0: Video: h264, yuv420p, 1280x720, 750 kb/s, 25 fps" 1>&2
    exit 1 ;;
esac
`
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestCheckCommand(t *testing.T) {
	ffmpeg := fakeFFmpeg(t)

	c, out, err := runCLI(t, "check", "--ffmpeg", ffmpeg)
	require.NoError(t, err)
	assert.True(t, c.succeeded)
	assert.Contains(t, out, "ffmpeg:  "+ffmpeg)
	assert.Contains(t, out, "version: ffmpeg version 7.1-test")
	assert.Contains(t, out, "encoder: libvvenc (supported)")
}

func TestInfoCommandJSON(t *testing.T) {
	ffmpeg := fakeFFmpeg(t)
	input := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(input, []byte("data"), 0644))

	c, out, err := runCLI(t, "info", input, "--json", "--ffmpeg", ffmpeg)
	require.NoError(t, err)
	assert.True(t, c.succeeded)
	assert.Contains(t, out, `"width": 1280`)
	assert.Contains(t, out, `"duration": "00:00:10.00"`)
}

func TestInfoCommandMissingFile(t *testing.T) {
	ffmpeg := fakeFFmpeg(t)

	_, _, err := runCLI(t, "info", filepath.Join(t.TempDir(), "nope.mp4"), "--ffmpeg", ffmpeg)
	assert.ErrorIs(t, err, transcoder.ErrFileNotFound)
}

func TestExecuteExitCodes(t *testing.T) {
	assert.Equal(t, exitFailure, execute(context.Background(), []string{"--no-such-flag"}))
}

func TestExecuteInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, exitInterrupted, execute(ctx, []string{"--no-such-flag"}))
}

func TestWaitForChildren(t *testing.T) {
	c := newCLI()
	assert.True(t, c.waitForChildren(0))

	c, _, err := runCLI(t, "encode", "in.mp4", "--qp", "10")
	require.Error(t, err)
	require.NotNil(t, c.runner.Load())
	assert.True(t, c.waitForChildren(time.Second))
}
