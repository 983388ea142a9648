package transcoder

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// LookupFunc runs the platform "which" equivalent for binary and returns its
// output lines.
type LookupFunc func(ctx context.Context, binary string) ([]string, error)

// Locator finds the ffmpeg executable on the host.
type Locator struct {
	GOOS      string
	Binary    string
	Fallbacks []string

	Lookup LookupFunc
	Getenv func(string) string
	Stat   func(string) (os.FileInfo, error)

	logger hclog.Logger
}

// NewLocator returns a Locator configured for the running platform.
func NewLocator(logger hclog.Logger) *Locator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	l := &Locator{
		GOOS:   runtime.GOOS,
		Binary: "ffmpeg",
		Getenv: os.Getenv,
		Stat:   os.Stat,
		logger: logger,
	}
	l.Lookup = l.systemLookup
	l.Fallbacks = DefaultFallbacks(l.GOOS)
	return l
}

// DefaultFallbacks lists the common install locations checked last.
func DefaultFallbacks(goos string) []string {
	cwd, _ := os.Getwd()
	if goos == "windows" {
		return []string{
			`C:\ffmpeg\ffmpeg-master-latest-win64-gpl\bin\ffmpeg.exe`,
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
			filepath.Join(cwd, "ffmpeg.exe"),
		}
	}
	return []string{
		filepath.Join(cwd, "ffmpeg"),
		"/usr/bin/ffmpeg",
		"/usr/local/bin/ffmpeg",
		"/opt/homebrew/bin/ffmpeg",
	}
}

// Locate returns the first ffmpeg found by the lookup command, then the PATH
// scan, then the fallback list. It fails with *NotFoundError.
func (l *Locator) Locate(ctx context.Context) (string, error) {
	var searched []string

	candidates, err := l.Lookup(ctx, l.Binary)
	if err != nil {
		l.logger.Debug("lookup command failed, scanning PATH", "error", err)
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		searched = append(searched, c)
		if l.exists(c) {
			return c, nil
		}
	}

	name := l.executableName()
	pathEntries := l.pathEntries()
	for _, dir := range pathEntries {
		dir = strings.Trim(dir, `"`)
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, name)
		searched = append(searched, p)
		if l.exists(p) {
			return p, nil
		}
	}

	for _, p := range l.Fallbacks {
		searched = append(searched, p)
		if l.exists(p) {
			return p, nil
		}
	}

	return "", &NotFoundError{
		Binary:      name,
		Searched:    searched,
		PathEntries: pathEntries,
	}
}

func (l *Locator) executableName() string {
	if l.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(l.Binary), ".exe") {
		return l.Binary + ".exe"
	}
	return l.Binary
}

func (l *Locator) pathEntries() []string {
	sep := string(os.PathListSeparator)
	if l.GOOS == "windows" {
		sep = ";"
	} else if l.GOOS != runtime.GOOS {
		sep = ":"
	}
	raw := l.Getenv("PATH")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, sep)
}

func (l *Locator) exists(path string) bool {
	fi, err := l.Stat(path)
	return err == nil && !fi.IsDir()
}

func (l *Locator) systemLookup(ctx context.Context, binary string) ([]string, error) {
	tool := "which"
	if l.GOOS == "windows" {
		tool = "where"
	}
	out, err := exec.CommandContext(ctx, tool, binary).Output()
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimSpace(string(out)), "\n"), nil
}
