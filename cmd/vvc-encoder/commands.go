package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vvc-encoder/internal/client"
	"vvc-encoder/internal/config"
	"vvc-encoder/internal/logging"
	"vvc-encoder/internal/monitor"
	"vvc-encoder/internal/session"
	"vvc-encoder/internal/transcoder"
	"vvc-encoder/pkg/models"
)

type cli struct {
	root      *cobra.Command
	succeeded bool

	configPath string
	// runner is read by the interrupt handler on another goroutine.
	runner atomic.Pointer[transcoder.ExecRunner]
}

// app is everything a command needs once config and logging are up.
type app struct {
	cfg    *config.Config
	logger hclog.Logger
	closer io.Closer
	host   *monitor.HostMonitor
	source *client.SourceClient
	runner *transcoder.ExecRunner
}

func (a *app) Close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

func newCLI() *cli {
	c := &cli{}
	c.root = &cobra.Command{
		Use:   "vvc-encoder",
		Short: "Re-encode videos to H.266/VVC with ffmpeg",
		Long: `Locates ffmpeg, verifies it was built with libvvenc and walks you through ` +
			`transcoding a video to H.266/VVC. Run without a subcommand for the interactive session.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.runInteractive,
	}

	pf := c.root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "config.yml", "Path to configuration file")
	pf.String("ffmpeg", "", "Path to the ffmpeg executable (skips lookup)")
	pf.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.String("log-dir", "", "Directory for per-process log files")

	c.root.AddCommand(c.newCheckCmd(), c.newInfoCmd(), c.newEncodeCmd())
	return c
}

func (c *cli) setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig(c.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(logging.Options{
		Level: cfg.LogLevel,
		Dir:   cfg.LogDir,
	})
	if err != nil {
		return nil, err
	}

	runner := transcoder.NewExecRunner(logger.Named("exec"))
	c.runner.Store(runner)

	return &app{
		cfg:    cfg,
		logger: logger,
		closer: closer,
		host:   monitor.NewHostMonitor(logger.Named("monitor")),
		source: client.NewSourceClient(cfg.FetchRetries, logger.Named("client")),
		runner: runner,
	}, nil
}

// waitForChildren gives a cancelled ffmpeg up to timeout to be killed and
// reaped. It returns at once when nothing is running.
func (c *cli) waitForChildren(timeout time.Duration) bool {
	r := c.runner.Load()
	if r == nil {
		return true
	}
	return r.WaitIdle(timeout)
}

func (a *app) newEngine(cmd *cobra.Command) (*transcoder.Engine, error) {
	decoders, err := transcoder.NewLineDecoders(a.cfg.ConsoleEncodings)
	if err != nil {
		return nil, err
	}
	return transcoder.NewEngine(cmd.Context(), transcoder.Options{
		FFmpegPath:   a.cfg.FFmpegPath,
		Encoder:      a.cfg.Encoder,
		AudioCodec:   a.cfg.AudioCodec,
		AudioBitrate: a.cfg.AudioBitrate,
		Console:      cmd.OutOrStdout(),
		Decoders:     decoders,
		Runner:       a.runner,
		Logger:       a.logger.Named("transcode"),
	})
}

func (c *cli) runInteractive(cmd *cobra.Command, _ []string) error {
	a, err := c.setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	engine, err := a.newEngine(cmd)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if !interactive {
		a.logger.Debug("stdin is not a terminal, echoing answers")
	}

	s := session.New(session.Options{
		Encoder:      engine,
		Host:         a.host,
		Fetcher:      a.source,
		DownloadDir:  a.cfg.DownloadDir,
		OutputSuffix: a.cfg.OutputSuffix,
		In:           cmd.InOrStdin(),
		Out:          cmd.OutOrStdout(),
		EchoInput:    !interactive,
		Logger:       a.logger.Named("session"),
	})
	ok, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}
	c.succeeded = ok
	return nil
}

func (c *cli) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Locate ffmpeg and verify libvvenc support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			engine, err := a.newEngine(cmd)
			if err != nil {
				return err
			}
			specs := a.host.Specs(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ffmpeg:  %s\n", engine.Path())
			fmt.Fprintf(out, "version: %s\n", engine.Version)
			fmt.Fprintf(out, "encoder: %s (supported)\n", engine.Encoder())
			fmt.Fprintf(out, "cpu:     %s, %d threads\n", specs.CPUModel, specs.LogicalCores)
			c.succeeded = true
			return nil
		},
	}
}

func (c *cli) newInfoCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show the metadata ffmpeg reports for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			engine, err := a.newEngine(cmd)
			if err != nil {
				return err
			}
			info, err := engine.Inspect(cmd.Context(), session.CleanPath(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(info); err != nil {
					return err
				}
			} else {
				printInfo(out, info)
			}
			c.succeeded = true
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func (c *cli) newEncodeCmd() *cobra.Command {
	var (
		output  string
		qp      int
		preset  string
		threads int
		gpu     bool
	)

	cmd := &cobra.Command{
		Use:   "encode <input>",
		Short: "Transcode a video to H.266/VVC without prompts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cores := a.host.Specs(cmd.Context()).LogicalCores
			if !cmd.Flags().Changed("threads") {
				threads = session.DefaultThreads(cores)
			}
			if err := session.CheckQP(qp); err != nil {
				return err
			}
			if err := session.CheckThreads(threads, cores); err != nil {
				return err
			}

			engine, err := a.newEngine(cmd)
			if err != nil {
				return err
			}

			input := session.CleanPath(args[0])
			if client.IsRemote(input) {
				local, err := a.source.Fetch(cmd.Context(), input, a.cfg.DownloadDir)
				if err != nil {
					return err
				}
				input = local
				if output == "" {
					output = filepath.Base(transcoder.DefaultOutputPath(local, a.cfg.OutputSuffix))
				}
			}
			if output == "" {
				output = transcoder.DefaultOutputPath(input, a.cfg.OutputSuffix)
			}

			cfg := models.EncoderConfig{QP: qp, Preset: preset, Threads: threads, UseGPU: gpu}
			req := transcoder.RequestFromConfig(input, output, cfg)
			if info, err := engine.Inspect(cmd.Context(), input); err == nil {
				if sec, ok := transcoder.ParseClock(info.Duration); ok {
					req.DurationSec = sec
				}
			}

			res, err := engine.Transcode(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Success {
				fmt.Fprintln(out, "\nTranscode failed, check the messages above.")
				return nil
			}
			fmt.Fprintf(out, "\nOutput file: %s (%s)\n", res.OutputPath, res.Elapsed.Round(time.Second))
			c.succeeded = true
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "Output path (default <input>_h266<ext>)")
	f.IntVarP(&qp, "qp", "q", session.RecommendQP, "Quantization parameter, 20-50")
	f.StringVarP(&preset, "preset", "p", models.DefaultPreset, "Encoder preset (faster, fast, medium, slow, slower)")
	f.IntVarP(&threads, "threads", "t", 0, "Encoder threads (default: CPU threads - 1)")
	f.BoolVar(&gpu, "gpu", false, "Use hardware-accelerated decoding")
	return cmd
}

func printInfo(w io.Writer, info *models.VideoInfo) {
	if info.VideoStream != "" {
		fmt.Fprintf(w, "Stream:     %s\n", info.VideoStream)
	}
	if info.Duration != "" {
		fmt.Fprintf(w, "Duration:   %s\n", info.Duration)
	}
	if info.HasResolution() {
		fmt.Fprintf(w, "Resolution: %dx%d\n", info.Width, info.Height)
	}
	if info.FPS > 0 {
		fmt.Fprintf(w, "Frame rate: %g fps\n", info.FPS)
	}
	if info.Bitrate != "" {
		fmt.Fprintf(w, "Bitrate:    %s\n", info.Bitrate)
	}
	fmt.Fprintf(w, "File size:  %.1f MB\n", info.FileSizeMB)
}
