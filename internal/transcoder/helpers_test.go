package transcoder

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

type runResult struct {
	stdout string
	stderr string
	err    error
}

// fakeRunner answers Run by the first argument and replays lines on Stream.
type fakeRunner struct {
	results     map[string]runResult
	streamLines []string
	streamErr   error

	runCalls    [][]string
	streamCalls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.runCalls = append(f.runCalls, append([]string{name}, args...))
	key := ""
	if len(args) > 0 {
		key = args[0]
	}
	r := f.results[key]
	return []byte(r.stdout), []byte(r.stderr), r.err
}

func (f *fakeRunner) Stream(_ context.Context, name string, args []string, onLine func([]byte)) error {
	f.streamCalls = append(f.streamCalls, append([]string{name}, args...))
	for _, l := range f.streamLines {
		onLine([]byte(l))
	}
	return f.streamErr
}

const encodersListing = ` V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)
 V....D libvvenc             libvvenc H.266 / VVC Versatile Video Coding (codec vvc)
 A....D aac                  AAC (Advanced Audio Coding)
`

const versionOutput = `ffmpeg version 7.1-full_build-www.gyan.dev Copyright (c) 2000-2024 the FFmpeg developers
built with gcc 14.2.0 (Rev1, Built by MSYS2 project)
`

const sampleDiagnostics = `ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers
Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'sample.mov':
  Metadata:
    major_brand     : qt
  Duration: 00:01:02.50, start: 0.000000, bitrate: 6512 kb/s
  Stream #0:0[0x1](und): Video: h264 (High) (avc1 / 0x31637661), yuv420p(tv, bt709, progressive), 1920x1080 [SAR 1:1 DAR 16:9], 6381 kb/s, 29.97 fps, 29.97 tbr, 30k tbn (default)
  Stream #0:1[0x2](und): Audio: aac (LC) (mp4a / 0x6134706D), 48000 Hz, stereo, fltp, 128 kb/s (default)
At least one output file must be specified
`

func supportedRunner() *fakeRunner {
	return &fakeRunner{results: map[string]runResult{
		"-version":  {stdout: versionOutput},
		"-encoders": {stdout: encodersListing},
		"-i":        {stderr: sampleDiagnostics, err: errors.New("exit status 1")},
	}}
}

func newTestEngine(t *testing.T, r Runner) (*Engine, *bytes.Buffer) {
	t.Helper()
	var console bytes.Buffer
	e, err := NewEngine(context.Background(), Options{
		FFmpegPath: "/usr/bin/ffmpeg",
		Runner:     r,
		Console:    &console,
		Logger:     hclog.NewNullLogger(),
	})
	require.NoError(t, err)
	return e, &console
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0}, size), 0644))
}

func indexOf(args []string, v string) int {
	for i, a := range args {
		if a == v {
			return i
		}
	}
	return -1
}

func joined(args []string) string {
	return strings.Join(args, " ")
}
