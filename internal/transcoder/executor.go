package transcoder

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
)

const maxLineBuffer = 1024 * 1024

// Runner launches ffmpeg. It exists so the engine can be driven by a fake in tests.
type Runner interface {
	// Run waits for the command and returns both output streams. A non-zero
	// exit is reported through err but stdout and stderr are still populated.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

	// Stream starts the command and calls onLine for every stderr line as it
	// is produced. The slice passed to onLine is only valid during the call.
	Stream(ctx context.Context, name string, args []string, onLine func([]byte)) error
}

// ExecRunner runs real processes through os/exec. Cancelling the context
// passed to Run or Stream kills the child.
type ExecRunner struct {
	logger hclog.Logger
	active atomic.Int32
}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner(logger hclog.Logger) *ExecRunner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ExecRunner{logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	r.active.Add(1)
	defer r.active.Add(-1)

	err := cmd.Wait()
	return stdout.Bytes(), stderr.Bytes(), err
}

func (r *ExecRunner) Stream(ctx context.Context, name string, args []string, onLine func([]byte)) error {
	cmd := exec.CommandContext(ctx, name, args...)

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	// Start instead of Run: we read stderr while ffmpeg works.
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	r.active.Add(1)
	defer r.active.Add(-1)
	r.logger.Debug("ffmpeg started", "pid", cmd.Process.Pid)

	scanner := bufio.NewScanner(stderrPipe)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBuffer)
	scanner.Split(scanTerminalLines)
	for scanner.Scan() {
		onLine(scanner.Bytes())
	}
	if scanErr := scanner.Err(); scanErr != nil {
		r.logger.Warn("stopped reading ffmpeg output", "error", scanErr)
		// Keep the pipe drained so ffmpeg never blocks on a full buffer.
		_, _ = io.Copy(io.Discard, stderrPipe)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}
	return nil
}

// WaitIdle blocks until every child started by r has been reaped or timeout
// elapses. It reports whether r is idle.
func (r *ExecRunner) WaitIdle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for r.active.Load() > 0 {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(20 * time.Millisecond)
	}
	return true
}

// scanTerminalLines splits on '\n', '\r' or "\r\n" and keeps the terminator,
// so carriage-return progress lines redraw in place when echoed.
func scanTerminalLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i+2], nil
				}
			} else if !atEOF {
				// Need one more byte to tell "\r" from "\r\n".
				return 0, nil, nil
			}
		}
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
