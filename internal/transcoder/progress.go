package transcoder

import (
	"regexp"
	"strconv"
	"strings"

	"vvc-encoder/pkg/models"
)

var (
	// Catches "time=00:00:15.45"
	reTime = regexp.MustCompile(`time=(\d{2,}):(\d{2}):(\d{2}(?:\.\d+)?)`)
	// Catches "fps= 24" and "fps=23.9"
	reFPS = regexp.MustCompile(`fps=\s*(\d+(?:\.\d+)?)`)
	// Catches "speed=1.52x"
	reSpeed = regexp.MustCompile(`speed=\s*(\d+(?:\.\d+)?)x`)
)

// ParseProgress reads an ffmpeg status line. ok is false unless the line
// carries a time= field.
func ParseProgress(line string, durationSec float64) (models.Progress, bool) {
	matches := reTime.FindStringSubmatch(line)
	if len(matches) != 4 {
		return models.Progress{}, false
	}
	h, _ := strconv.Atoi(matches[1])
	m, _ := strconv.Atoi(matches[2])
	s, _ := strconv.ParseFloat(matches[3], 64)

	p := models.Progress{TimeSec: float64(h*3600+m*60) + s}
	if fpsMatch := reFPS.FindStringSubmatch(line); len(fpsMatch) > 1 {
		p.FPS, _ = strconv.ParseFloat(fpsMatch[1], 64)
	}
	if speedMatch := reSpeed.FindStringSubmatch(line); len(speedMatch) > 1 {
		p.Speed, _ = strconv.ParseFloat(speedMatch[1], 64)
	}
	if durationSec > 0 {
		p.Percent = p.TimeSec / durationSec * 100
		if p.Percent > 100 {
			p.Percent = 100
		}
	}
	return p, true
}

// ParseClock converts ffmpeg's "HH:MM:SS.ss" duration text to seconds.
func ParseClock(s string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, false
	}
	return float64(h*3600+m*60) + sec, true
}
