package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"), nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.FFmpegPath)
	assert.Equal(t, "libvvenc", cfg.Encoder)
	assert.Equal(t, "aac", cfg.AudioCodec)
	assert.Equal(t, "128k", cfg.AudioBitrate)
	assert.Equal(t, "_h266", cfg.OutputSuffix)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"utf-8", "cp950", "big5"}, cfg.ConsoleEncodings)
	assert.Equal(t, 3, cfg.FetchRetries)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
ffmpeg_path: /opt/ffmpeg/bin/ffmpeg
log_level: warn
audio_bitrate: 192k
console_encodings: [utf-8, cp950]
`), 0644))

	t.Setenv("VVC_AUDIO_BITRATE", "256k")
	t.Setenv("VVC_LOG_LEVEL", "error")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("ffmpeg", "", "")
	fs.String("log-level", "", "")
	fs.String("log-dir", "", "")
	require.NoError(t, fs.Parse([]string{"--log-level=debug"}))

	cfg, err := LoadConfig(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "256k", cfg.AudioBitrate)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, []string{"utf-8", "cp950"}, cfg.ConsoleEncodings)
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv("VVC_FFMPEG_PATH", "/custom/ffmpeg")
	t.Setenv("VVC_FETCH_RETRIES", "0")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/custom/ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, 0, cfg.FetchRetries)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [unclosed\n"), 0644))

	_, err := LoadConfig(path, nil)
	assert.ErrorContains(t, err, "failed to read config")
}
