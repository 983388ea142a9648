package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vvc-encoder/internal/transcoder"
)

// Config holds all the settings for the encoder CLI.
type Config struct {
	FFmpegPath       string   `mapstructure:"ffmpeg_path"`
	Encoder          string   `mapstructure:"encoder"`
	AudioCodec       string   `mapstructure:"audio_codec"`
	AudioBitrate     string   `mapstructure:"audio_bitrate"`
	OutputSuffix     string   `mapstructure:"output_suffix"`
	LogDir           string   `mapstructure:"log_dir"`
	LogLevel         string   `mapstructure:"log_level"`
	ConsoleEncodings []string `mapstructure:"console_encodings"`
	DownloadDir      string   `mapstructure:"download_dir"`
	FetchRetries     int      `mapstructure:"fetch_retries"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"ffmpeg":    "ffmpeg_path",
	"log-level": "log_level",
	"log-dir":   "log_dir",
}

// LoadConfig merges defaults, the optional YAML file at path, VVC_* env vars
// and any flags in fs (highest precedence).
func LoadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set Defaults. Every key needs one so AutomaticEnv sees it on Unmarshal.
	v.SetDefault("ffmpeg_path", "")
	v.SetDefault("encoder", "libvvenc")
	v.SetDefault("audio_codec", "aac")
	v.SetDefault("audio_bitrate", "128k")
	v.SetDefault("output_suffix", "_h266")
	v.SetDefault("log_dir", "logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("console_encodings", slices.Clone(transcoder.DefaultConsoleEncodings))
	v.SetDefault("download_dir", os.TempDir())
	v.SetDefault("fetch_retries", 3)

	// 2. Read from File
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			// A missing file is fine; env vars and flags still apply.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	// 3. Environment
	v.SetEnvPrefix("VVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// 4. Flags
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
