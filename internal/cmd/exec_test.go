package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/raphi011/abt/internal/log"
)

func logCtx() context.Context {
	l := log.New(&bytes.Buffer{}, false, false)
	return log.WithLogger(context.Background(), l)
}

func TestRun_Success(t *testing.T) {
	t.Parallel()
	if err := Run(logCtx(), "sh", "-c", "exit 0"); err != nil {
		t.Errorf("Run(exit 0) = %v, want nil", err)
	}
}

func TestRun_Failure(t *testing.T) {
	t.Parallel()
	err := Run(logCtx(), "sh", "-c", "exit 1")
	if err == nil {
		t.Fatal("Run(exit 1) = nil, want error")
	}
	if !strings.HasPrefix(err.Error(), "sh: ") {
		t.Errorf("Run error = %q, want it prefixed with the command", err)
	}
}

func TestRun_StderrMessage(t *testing.T) {
	t.Parallel()
	err := Run(logCtx(), "sh", "-c", "echo 'no handler' >&2; exit 3")
	if err == nil {
		t.Fatal("Run = nil, want error")
	}
	if err.Error() != "sh: no handler" {
		t.Errorf("Run error = %q, want %q", err.Error(), "sh: no handler")
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logCtx())
	cancel()
	if err := Run(ctx, "sh", "-c", "sleep 5"); err == nil {
		t.Error("Run with canceled context = nil, want error")
	}
}

func TestAvailable(t *testing.T) {
	t.Parallel()
	if !Available("sh") {
		t.Error("Available(sh) = false, want true")
	}
	if Available("abt-no-such-helper") {
		t.Error("Available(abt-no-such-helper) = true, want false")
	}
}
