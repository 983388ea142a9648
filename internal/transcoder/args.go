package transcoder

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// BuildArgs constructs the full transcode command line, executable first.
// The hwaccel flag has to precede -i to apply to decoding.
func (e *Engine) BuildArgs(req Request, outputPath string) []string {
	args := []string{e.FFmpegPath}
	if req.UseGPU {
		args = append(args, "-hwaccel", "auto")
	}
	args = append(args,
		"-i", req.Input,
		"-c:v", e.encoder,
		"-qp", strconv.Itoa(req.QP),
		"-preset", req.Preset,
		"-threads", strconv.Itoa(req.Threads),
		"-c:a", e.audioCodec,
		"-b:a", e.audioBitrate,
		outputPath,
	)
	return args
}

// ResolveOutputPath appends _1, _2, ... to the file stem until the path is
// unused. The check is not atomic with the later write.
func ResolveOutputPath(path string) string {
	if !pathExists(path) {
		return path
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !pathExists(candidate) {
			return candidate
		}
	}
}

// DefaultOutputPath places "<stem><suffix><ext>" next to the input.
func DefaultOutputPath(input, suffix string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)
	return filepath.Join(filepath.Dir(input), stem+suffix+ext)
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
