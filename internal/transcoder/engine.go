package transcoder

import (
	"context"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Defaults for the codec configuration. The audio track is always
// re-encoded to AAC at a fixed bitrate.
const (
	CodecVVC            = "libvvenc"
	DefaultAudioCodec   = "aac"
	DefaultAudioBitrate = "128k"
)

// Options configures NewEngine. Zero values select the defaults.
type Options struct {
	// FFmpegPath skips the locator when set.
	FFmpegPath   string
	Encoder      string
	AudioCodec   string
	AudioBitrate string

	// Console receives the decoded ffmpeg output during a transcode.
	Console  io.Writer
	Decoders []LineDecoder

	Runner    Runner
	Locator   *Locator
	Extractor FieldExtractor
	Logger    hclog.Logger
}

// Engine holds the located ffmpeg and the fixed codec configuration.
// The path is resolved once per session.
type Engine struct {
	FFmpegPath string
	Version    string

	encoder      string
	audioCodec   string
	audioBitrate string

	console   io.Writer
	decoders  []LineDecoder
	runner    Runner
	extractor FieldExtractor
	logger    hclog.Logger
}

// NewEngine locates ffmpeg and verifies it provides the configured encoder.
// It fails with ErrExecutableNotFound or ErrCapabilityUnsupported.
func NewEngine(ctx context.Context, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	e := &Engine{
		FFmpegPath:   opts.FFmpegPath,
		encoder:      orDefault(opts.Encoder, CodecVVC),
		audioCodec:   orDefault(opts.AudioCodec, DefaultAudioCodec),
		audioBitrate: orDefault(opts.AudioBitrate, DefaultAudioBitrate),
		console:      opts.Console,
		decoders:     opts.Decoders,
		runner:       opts.Runner,
		extractor:    opts.Extractor,
		logger:       logger,
	}
	if e.console == nil {
		e.console = os.Stderr
	}
	if e.decoders == nil {
		decoders, err := NewLineDecoders(DefaultConsoleEncodings)
		if err != nil {
			return nil, err
		}
		e.decoders = decoders
	}
	if e.runner == nil {
		e.runner = NewExecRunner(logger.Named("exec"))
	}
	if e.extractor == nil {
		e.extractor = TextScraper{}
	}

	if e.FFmpegPath == "" {
		locator := opts.Locator
		if locator == nil {
			locator = NewLocator(logger.Named("locator"))
		}
		path, err := locator.Locate(ctx)
		if err != nil {
			return nil, err
		}
		e.FFmpegPath = path
	}
	logger.Info("using ffmpeg", "path", e.FFmpegPath)

	supported, version := e.CheckSupport(ctx)
	e.Version = version
	if !supported {
		return nil, &UnsupportedError{Encoder: e.encoder, Version: version}
	}
	return e, nil
}

// Path returns the resolved ffmpeg executable.
func (e *Engine) Path() string {
	return e.FFmpegPath
}

// Encoder returns the video encoder id passed to -c:v.
func (e *Engine) Encoder() string {
	return e.encoder
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
