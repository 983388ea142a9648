package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"

	"vvc-encoder/internal/client"
	"vvc-encoder/internal/monitor"
	"vvc-encoder/internal/transcoder"
	"vvc-encoder/pkg/models"
)

// Quality range offered to users. The core accepts any integer.
const (
	MinQP       = 20
	MaxQP       = 50
	RecommendQP = 32
)

// Encoder is the subset of *transcoder.Engine the session drives.
type Encoder interface {
	Path() string
	CheckSupport(ctx context.Context) (bool, string)
	Inspect(ctx context.Context, path string) (*models.VideoInfo, error)
	Transcode(ctx context.Context, req transcoder.Request) (*transcoder.Result, error)
}

// Host reports CPU capacity and load.
type Host interface {
	Specs(ctx context.Context) monitor.HostSpecs
	Stats(ctx context.Context) (monitor.HostStats, error)
}

// Fetcher downloads remote inputs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, destDir string) (string, error)
}

type Options struct {
	Encoder      Encoder
	Host         Host
	Fetcher      Fetcher
	DownloadDir  string
	OutputSuffix string

	In  io.Reader
	Out io.Writer
	// EchoInput repeats each answer, for transcripts when stdin is not a terminal.
	EchoInput bool

	Logger hclog.Logger
}

// Session is the interactive prompt loop.
type Session struct {
	enc          Encoder
	host         Host
	fetcher      Fetcher
	downloadDir  string
	outputSuffix string

	out    io.Writer
	prompt *prompter
	style  styles
	logger hclog.Logger
}

type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	done  lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title: r.NewStyle().Foreground(lipgloss.Color("#FFF")).Background(lipgloss.Color("#5865F2")).Padding(0, 1).Bold(true),
		label: r.NewStyle().Foreground(lipgloss.Color("#5865F2")).Bold(true),
		err:   r.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true),
		done:  r.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true),
	}
}

func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = "_h266"
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = os.TempDir()
	}

	s := &Session{
		enc:          opts.Encoder,
		host:         opts.Host,
		fetcher:      opts.Fetcher,
		downloadDir:  opts.DownloadDir,
		outputSuffix: opts.OutputSuffix,
		out:          opts.Out,
		style:        newStyles(opts.Out),
		logger:       opts.Logger,
	}
	s.prompt = &prompter{
		r:    bufio.NewReader(opts.In),
		w:    opts.Out,
		echo: opts.EchoInput,
		errf: s.printErr,
	}
	return s
}

// Run walks the user through one transcode. It returns true only when the
// transcode succeeded. ErrCancelled means input ended early.
func (s *Session) Run(ctx context.Context) (bool, error) {
	s.styled(s.style.title, "=== H.266/VVC Video Transcoder ===")
	s.println("")

	specs := s.host.Specs(ctx)
	cores := max(1, specs.LogicalCores)
	defaultThreads := DefaultThreads(cores)

	s.printf("Found ffmpeg: %s\n", s.enc.Path())
	_, version := s.enc.CheckSupport(ctx)
	s.printf("\nffmpeg version: %s\n", version)
	s.printf("CPU: %s (%d threads)\n", specs.CPUModel, cores)

	input, remote, err := s.askInput(ctx)
	if err != nil {
		return false, err
	}
	output := transcoder.DefaultOutputPath(input, s.outputSuffix)
	if remote {
		// Downloads live in a scratch dir; write the result to the working dir.
		output = filepath.Base(output)
	}

	qp, err := s.prompt.askInt(
		fmt.Sprintf("\nEnter quality (%d-%d, lower is better, recommended %d): ", MinQP, MaxQP, RecommendQP),
		MinQP, MaxQP)
	if err != nil {
		return false, err
	}

	preset, err := s.askPreset()
	if err != nil {
		return false, err
	}

	threads, err := s.prompt.askInt(
		fmt.Sprintf("\nEnter thread count (1-%d, recommended %d): ", cores, defaultThreads),
		1, cores)
	if err != nil {
		return false, err
	}

	useGPU, err := s.prompt.askYesNo("\nUse GPU acceleration? (y/N): ", false)
	if err != nil {
		return false, err
	}

	s.println("\nAnalyzing video info...")
	info, err := s.enc.Inspect(ctx, input)
	if err != nil {
		return false, err
	}
	s.printInfo(info)

	cfg := models.EncoderConfig{QP: qp, Preset: preset, Threads: threads, UseGPU: useGPU}
	s.printSettings(cfg)

	confirm, err := s.prompt.askYesNo("\nStart transcoding? (Y/n): ", true)
	if err != nil {
		return false, err
	}
	if !confirm {
		s.println("\nTranscode cancelled.")
		return false, nil
	}

	s.warnIfBusy(ctx)

	s.println("\nTranscoding to H.266...")
	s.println("(ffmpeg progress is shown below, please wait...)")

	req := transcoder.RequestFromConfig(input, output, cfg)
	if sec, ok := transcoder.ParseClock(info.Duration); ok {
		req.DurationSec = sec
	}
	res, err := s.enc.Transcode(ctx, req)
	if err != nil {
		return false, err
	}
	if !res.Success {
		s.printErr("\nTranscode failed, check the messages above.")
		return false, nil
	}

	s.styled(s.style.done, "\nTranscode complete!")
	s.printf("Output file: %s\n", res.OutputPath)
	s.report(ctx, info, res.OutputPath)
	return true, nil
}

func (s *Session) askInput(ctx context.Context) (string, bool, error) {
	for {
		answer, err := s.prompt.ask("\nEnter the path of the video to transcode: ")
		if err != nil {
			return "", false, err
		}
		input := CleanPath(answer)
		if input == "" {
			continue
		}

		if client.IsRemote(input) && s.fetcher != nil {
			local, err := s.fetcher.Fetch(ctx, input, s.downloadDir)
			if err != nil {
				s.logger.Error("download failed", "url", input, "error", err)
				s.printErr("Error: could not download %s: %v", input, err)
				continue
			}
			return local, true, nil
		}

		if _, err := os.Stat(input); err == nil {
			return input, false, nil
		}
		s.printErr("Error: file not found %s", input)
	}
}

func (s *Session) askPreset() (string, error) {
	s.println("\nEncoder presets:")
	for i, p := range models.Presets {
		line := fmt.Sprintf("%d. %s ", i+1, p)
		if p == models.DefaultPreset {
			line += "(recommended)"
		}
		s.println(line)
	}
	idx, err := s.prompt.askInt(fmt.Sprintf("Choose a preset (1-%d): ", len(models.Presets)), 1, len(models.Presets))
	if err != nil {
		return "", err
	}
	return models.Presets[idx-1], nil
}

func (s *Session) printInfo(info *models.VideoInfo) {
	s.styled(s.style.label, "\nVideo info:")
	if info.VideoStream != "" {
		s.printf("Stream: %s\n", info.VideoStream)
	}
	if info.Duration != "" {
		s.printf("Duration: %s\n", info.Duration)
	}
	if info.HasResolution() {
		s.printf("Resolution: %dx%d\n", info.Width, info.Height)
	}
	if info.FPS > 0 {
		s.printf("Frame rate: %g fps\n", info.FPS)
	}
	if info.Bitrate != "" {
		s.printf("Bitrate: %s\n", info.Bitrate)
	}
	s.printf("File size: %.1f MB\n", info.FileSizeMB)
}

func (s *Session) printSettings(cfg models.EncoderConfig) {
	gpu := "no"
	if cfg.UseGPU {
		gpu = "yes"
	}
	s.styled(s.style.label, "\nTranscode settings:")
	s.printf("Quality (QP): %d\n", cfg.QP)
	s.printf("Preset: %s\n", cfg.Preset)
	s.printf("Threads: %d\n", cfg.Threads)
	s.printf("GPU acceleration: %s\n", gpu)
}

func (s *Session) warnIfBusy(ctx context.Context) {
	stats, err := s.host.Stats(ctx)
	if err != nil {
		s.logger.Debug("host stats unavailable", "error", err)
		return
	}
	if stats.IsBusy {
		s.styled(s.style.warn, fmt.Sprintf(
			"\nWarning: host is busy (CPU %.0f%%, RAM %.0f%%); transcoding will be slow.",
			stats.CPUPercent, stats.RAMPercent))
	}
}

// report compares input and output sizes. The output is inspected again
// after ffmpeg exits; if it was moved or deleted in between, that is
// reported rather than computing a ratio from stale data.
func (s *Session) report(ctx context.Context, before *models.VideoInfo, outputPath string) {
	after, err := s.enc.Inspect(ctx, outputPath)
	if err != nil {
		s.logger.Warn("output disappeared before it could be measured", "output", outputPath, "error", err)
		if errors.Is(err, transcoder.ErrFileNotFound) {
			s.styled(s.style.warn, "\nWarning: the output file was not found after transcoding; size comparison skipped.")
		} else {
			s.printErr("\nCould not measure output: %v", err)
		}
		return
	}

	s.printf("\nOriginal size: %.1f MB\n", before.FileSizeMB)
	s.printf("Encoded size: %.1f MB\n", after.FileSizeMB)
	if before.FileSizeMB <= 0 {
		s.println("Compression ratio: n/a (input is empty)")
		return
	}
	reduction := CompressionRatio(before.FileSizeMB, after.FileSizeMB)
	s.printf("Compression ratio: %.1f%%\n", reduction)

	if reduction < 0 {
		s.styled(s.style.warn, "\nWarning: the encoded file is larger than the original!")
		s.println("Possible causes:")
		s.println("1. The original file was already highly compressed")
		s.println("2. The chosen quality parameter (QP) is too low")
		s.println("3. The original codec may be more efficient for this content")
	}
}

// CompressionRatio is the percentage saved; negative when the output grew.
func CompressionRatio(beforeMB, afterMB float64) float64 {
	return (beforeMB - afterMB) / beforeMB * 100
}

func (s *Session) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) printErr(format string, args ...any) {
	s.styled(s.style.err, fmt.Sprintf(format, args...))
}

// styled prints text in style. Leading newlines are written unstyled so the
// renderer does not pad them into blank-filled lines.
func (s *Session) styled(style lipgloss.Style, text string) {
	trimmed := strings.TrimLeft(text, "\n")
	fmt.Fprint(s.out, text[:len(text)-len(trimmed)])
	fmt.Fprintln(s.out, style.Render(trimmed))
}
