package models

import "slices"

// DefaultPreset is the preset recommended to interactive users.
const DefaultPreset = "medium"

// Presets lists the encoder speed/efficiency profiles accepted by libvvenc,
// fastest first. The interactive menu is numbered in this order.
var Presets = []string{"faster", "fast", "medium", "slow", "slower"}

// IsValidPreset reports whether p is one of Presets.
func IsValidPreset(p string) bool {
	return slices.Contains(Presets, p)
}

// VideoInfo is the metadata scraped from ffmpeg's diagnostic output.
// Every field is optional: a zero value means the pattern was not found.
type VideoInfo struct {
	VideoStream string  `json:"video_stream,omitempty"`
	Duration    string  `json:"duration,omitempty"` // e.g. "00:01:02.50"
	FileSizeMB  float64 `json:"file_size_mb"`
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
	FPS         float64 `json:"fps,omitempty"`
	Bitrate     string  `json:"bitrate,omitempty"` // e.g. "4963 kb/s"
}

// HasResolution reports whether both dimensions were found.
func (v *VideoInfo) HasResolution() bool {
	return v.Width > 0 && v.Height > 0
}

// EncoderConfig holds the user's encoder choices.
type EncoderConfig struct {
	// Quantization parameter, 20-50. Lower means higher quality and larger output.
	QP      int    `json:"qp"`
	Preset  string `json:"preset"`
	Threads int    `json:"threads"`
	UseGPU  bool   `json:"use_gpu"`
}

// Progress is the last status line ffmpeg reported during a transcode.
type Progress struct {
	TimeSec float64 `json:"time_sec"`
	FPS     float64 `json:"fps"`
	Speed   float64 `json:"speed"`   // realtime multiplier, e.g. 1.5 for "1.5x"
	Percent float64 `json:"percent"` // 0 when the input duration is unknown
}
