package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
)

// SourceClient downloads remote input videos so ffmpeg can read them from disk.
type SourceClient struct {
	httpClient *http.Client
	logger     hclog.Logger
}

// NewSourceClient creates a robust HTTP client with retries.
func NewSourceClient(retries int, logger hclog.Logger) *SourceClient {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retries
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 5 * time.Second
	// hclog.Logger satisfies retryablehttp.LeveledLogger.
	retryClient.Logger = logger

	return &SourceClient{
		httpClient: retryClient.StandardClient(),
		logger:     logger,
	}
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download %s: server returned status %d", e.URL, e.StatusCode)
}

// IsRemote reports whether input should be fetched rather than opened.
func IsRemote(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads rawURL into destDir and returns the local path. The file
// is named after the last URL path segment.
func (c *SourceClient) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "input"
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Info("downloading input", "url", rawURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	dest := filepath.Join(destDir, strings.ReplaceAll(name, string(os.PathSeparator), "_"))
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("failed to save %s: %w", dest, err)
	}

	c.logger.Info("download complete", "path", dest, "bytes", n)
	return dest, nil
}
