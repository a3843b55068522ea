// Package refresh runs the external crossword fetcher that appends new solves to the solve log.
package refresh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/iafilius/SolveTrends/src/applog"
)

var logger = applog.For("refresh")

// DefaultCommand is the fetcher binary; the solve log path is its last argument.
const DefaultCommand = "crossword"

// maxStderr bounds how much fetcher stderr is kept in an error.
const maxStderr = 4 << 10

const waitDelay = 2 * time.Second

// Tool invokes the fetcher.
type Tool struct {
	// Command is the program and leading arguments; DefaultCommand when empty.
	Command []string
}

// Error reports a fetcher that could not start or exited non-zero.
type Error struct {
	Command  string
	ExitCode int // -1 when the process did not exit normally
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d): %v", e.Command, e.ExitCode, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Run updates the solve log at csvPath in place. The process is killed when ctx is done.
func (t Tool) Run(ctx context.Context, csvPath string) error {
	argv := t.Command
	if len(argv) == 0 {
		argv = []string{DefaultCommand}
	}
	args := append(append([]string(nil), argv[1:]...), csvPath)
	cmd := exec.CommandContext(ctx, argv[0], args...)
	// children that inherit the output pipes must not hold Wait open after a kill
	cmd.WaitDelay = waitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &limitedWriter{buf: &stderr, max: maxStderr}
	var stdout bytes.Buffer
	cmd.Stdout = &limitedWriter{buf: &stdout, max: maxStderr}

	defer logger.TimeTrack(time.Now(), ""+argv[0])
	logger.Infof("running %s", strings.Join(append(append([]string(nil), argv...), csvPath), " "))
	if err := cmd.Run(); err != nil {
		code := -1
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			code = ee.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &Error{Command: argv[0], ExitCode: code, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	if out := strings.TrimSpace(stdout.String()); out != "" {
		logger.Debugf("%s", out)
	}
	return nil
}

// limitedWriter keeps the first max bytes and discards the rest.
type limitedWriter struct {
	buf *bytes.Buffer
	max int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if room := w.max - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}
