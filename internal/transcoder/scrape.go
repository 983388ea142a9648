package transcoder

import (
	"strconv"
	"strings"

	"vvc-encoder/pkg/models"
)

// FieldKind names one piece of metadata scraped from ffmpeg's diagnostics.
type FieldKind int

const (
	FieldStream FieldKind = iota
	FieldResolution
	FieldFPS
	FieldBitrate
	FieldDuration
)

func (k FieldKind) String() string {
	switch k {
	case FieldStream:
		return "stream"
	case FieldResolution:
		return "resolution"
	case FieldFPS:
		return "fps"
	case FieldBitrate:
		return "bitrate"
	case FieldDuration:
		return "duration"
	}
	return "unknown"
}

const (
	streamMarker   = "Stream #0:0"
	fpsMarker      = "fps"
	bitrateMarker  = "kb/s"
	durationMarker = "Duration:"
)

// FieldExtractor pulls a single field out of raw ffmpeg output. ffmpeg's
// human-readable banner is not a stable format, so callers only see this
// narrow interface and a structured source could replace the scraper.
type FieldExtractor interface {
	ExtractField(raw string, kind FieldKind) (string, bool)
}

// TextScraper extracts fields from `ffmpeg -i` stderr with substring rules.
// Every field fails independently.
type TextScraper struct{}

func (TextScraper) ExtractField(raw string, kind FieldKind) (string, bool) {
	if kind == FieldDuration {
		return scrapeDuration(raw)
	}

	stream, ok := scrapeStream(raw)
	if !ok {
		return "", false
	}
	switch kind {
	case FieldStream:
		return stream, true
	case FieldResolution:
		return scrapeResolution(stream)
	case FieldFPS:
		return scrapeFPS(stream)
	case FieldBitrate:
		return scrapeBitrate(stream)
	}
	return "", false
}

func scrapeStream(raw string) (string, bool) {
	_, rest, found := strings.Cut(raw, streamMarker)
	if !found {
		return "", false
	}
	line, _, _ := strings.Cut(rest, "\n")
	line = strings.TrimSpace(line)
	return line, line != ""
}

// scrapeResolution returns the first comma segment that starts with WxH.
func scrapeResolution(stream string) (string, bool) {
	for _, part := range strings.Split(stream, ",") {
		if !strings.Contains(part, "x") {
			continue
		}
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if _, _, ok := parseDimensions(fields[0]); ok {
			return fields[0], true
		}
	}
	return "", false
}

func parseDimensions(s string) (int, int, bool) {
	ws, hs, found := strings.Cut(s, "x")
	if !found {
		return 0, 0, false
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// scrapeFPS returns the decimal immediately before the first "fps".
func scrapeFPS(stream string) (string, bool) {
	idx := strings.Index(stream, fpsMarker)
	if idx < 0 {
		return "", false
	}
	before := stream[:idx]
	if comma := strings.LastIndex(before, ","); comma >= 0 {
		before = before[comma+1:]
	}
	before = strings.TrimSpace(before)
	if _, err := strconv.ParseFloat(before, 64); err != nil {
		return "", false
	}
	return before, true
}

func scrapeBitrate(stream string) (string, bool) {
	for _, part := range strings.Split(stream, ",") {
		if strings.Contains(part, bitrateMarker) {
			return strings.TrimSpace(part), true
		}
	}
	return "", false
}

func scrapeDuration(raw string) (string, bool) {
	_, rest, found := strings.Cut(raw, durationMarker)
	if !found {
		return "", false
	}
	d, _, _ := strings.Cut(rest, ",")
	d = strings.TrimSpace(d)
	return d, d != ""
}

// ParseDiagnostics builds a VideoInfo from raw ffmpeg output. FileSizeMB is
// left for the caller. It never fails; unmatched fields stay zero.
func ParseDiagnostics(ex FieldExtractor, raw string) models.VideoInfo {
	var info models.VideoInfo

	if v, ok := ex.ExtractField(raw, FieldStream); ok {
		info.VideoStream = v
	}
	if v, ok := ex.ExtractField(raw, FieldResolution); ok {
		if w, h, ok := parseDimensions(v); ok {
			info.Width, info.Height = w, h
		}
	}
	if v, ok := ex.ExtractField(raw, FieldFPS); ok {
		if fps, err := strconv.ParseFloat(v, 64); err == nil {
			info.FPS = fps
		}
	}
	if v, ok := ex.ExtractField(raw, FieldBitrate); ok {
		info.Bitrate = v
	}
	if v, ok := ex.ExtractField(raw, FieldDuration); ok {
		info.Duration = v
	}
	return info
}
