package refresh

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRun_AppendsPathArgument(t *testing.T) {
	requireShell(t)
	csv := filepath.Join(t.TempDir(), "data.csv")
	tool := Tool{Command: []string{"sh", "-c", `echo "date" > "$0"`}}
	if err := tool.Run(context.Background(), csv); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := os.ReadFile(csv)
	if err != nil || strings.TrimSpace(string(b)) != "date" {
		t.Fatalf("fetcher should have written the csv path it was given: %q %v", b, err)
	}
}

func TestRun_NonZeroExitCapturesStderr(t *testing.T) {
	requireShell(t)
	tool := Tool{Command: []string{"sh", "-c", `echo "no cookie" >&2; exit 3`}}
	err := tool.Run(context.Background(), "data.csv")
	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("want *Error, got %v", err)
	}
	if re.ExitCode != 3 || re.Stderr != "no cookie" {
		t.Fatalf("unexpected error detail: %+v", re)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	tool := Tool{Command: []string{"solvetrends-no-such-fetcher"}}
	err := tool.Run(context.Background(), "data.csv")
	var re *Error
	if !errors.As(err, &re) || re.ExitCode != -1 {
		t.Fatalf("missing binary should fail without exit code, got %v", err)
	}
}

func TestRun_ContextDeadline(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := Tool{Command: []string{"sh", "-c", "exec sleep 5"}}.Run(ctx, "data.csv")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &limitedWriter{buf: &buf, max: 4}
	for _, chunk := range []string{"ab", "cdef", "gh"} {
		if n, err := w.Write([]byte(chunk)); n != len(chunk) || err != nil {
			t.Fatalf("Write should report the full chunk, got %d %v", n, err)
		}
	}
	if buf.String() != "abcd" {
		t.Fatalf("want first 4 bytes, got %q", buf.String())
	}
}
