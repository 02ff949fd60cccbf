package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPrintf(t *testing.T) {
	t.Parallel()

	t.Run("writes formatted output", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := New(&buf, false, false)
		l.Printf("hello %s %d", "world", 42)
		if got := buf.String(); got != "hello world 42" {
			t.Errorf("Printf output = %q, want %q", got, "hello world 42")
		}
	})

	t.Run("suppressed when quiet", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := New(&buf, false, true)
		l.Printf("should not appear")
		if buf.Len() != 0 {
			t.Errorf("Printf wrote %q when quiet", buf.String())
		}
	})
}

func TestPrintln(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, false, false)
	l.Println("hello", "world")
	if got := buf.String(); got != "hello world\n" {
		t.Errorf("Println output = %q, want %q", got, "hello world\n")
	}
}

func TestRequest(t *testing.T) {
	t.Parallel()

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := New(&buf, true, false)
		done := l.Request("GET", "https://dev.azure.com/org/_apis/wit/workitems/1")
		done(200, 120*time.Millisecond)
		got := buf.String()
		if !strings.Contains(got, "GET https://dev.azure.com/org/_apis/wit/workitems/1 -> 200") {
			t.Errorf("Request output = %q", got)
		}
		if !strings.Contains(got, "120ms") {
			t.Errorf("Request output = %q, want to contain duration", got)
		}
	})

	t.Run("not verbose is no-op", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := New(&buf, false, false)
		l.Request("GET", "x")(200, time.Millisecond)
		if buf.Len() != 0 {
			t.Errorf("Request wrote %q when not verbose", buf.String())
		}
	})
}

func TestDebug(t *testing.T) {
	t.Parallel()

	t.Run("verbose key-val format", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := New(&buf, true, false)
		l.Debug("cache miss", "id", 42, "expand", "relations")
		got := buf.String()
		if !strings.Contains(got, "cache miss id=42 expand=relations") {
			t.Errorf("Debug output = %q", got)
		}
	})

	t.Run("odd keyvals drops last", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := New(&buf, true, false)
		l.Debug("msg", "key1", "val1", "orphan")
		got := buf.String()
		if !strings.Contains(got, "key1=val1") {
			t.Errorf("Debug output = %q, want to contain key1=val1", got)
		}
		if strings.Contains(got, "orphan") {
			t.Errorf("Debug output = %q, should not contain orphan key", got)
		}
	})

	t.Run("quiet overrides verbose", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := New(&buf, true, true)
		l.Debug("should not appear")
		if buf.Len() != 0 {
			t.Errorf("Debug wrote %q when quiet", buf.String())
		}
	})
}

func TestSilent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, true, false).Silent()
	l.Printf("x")
	l.Warn("y")
	l.Debug("z")
	if buf.Len() != 0 {
		t.Errorf("Silent logger wrote %q", buf.String())
	}
}

func TestFileSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "abt.log")
	z, err := NewFileSink(path, true)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	l := New(io.Discard, false, false).WithZap(z)
	l.Debug("parent chain", "card", 7, "depth", 2)
	l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if entry["msg"] != "parent chain" {
		t.Errorf("msg = %v, want %q", entry["msg"], "parent chain")
	}
	if entry["card"] != float64(7) {
		t.Errorf("card = %v, want 7", entry["card"])
	}
}

func TestIsVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		want    bool
	}{
		{"verbose only", true, false, true},
		{"quiet only", false, true, false},
		{"both", true, true, false},
		{"neither", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := New(io.Discard, tt.verbose, tt.quiet)
			if got := l.IsVerbose(); got != tt.want {
				t.Errorf("IsVerbose() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	t.Run("returns attached logger", func(t *testing.T) {
		t.Parallel()
		l := New(io.Discard, true, false)
		ctx := WithLogger(context.Background(), l)
		if FromContext(ctx) != l {
			t.Error("FromContext did not return attached logger")
		}
	})

	t.Run("returns no-op when missing", func(t *testing.T) {
		t.Parallel()
		l := FromContext(context.Background())
		if l == nil {
			t.Fatal("FromContext returned nil")
		}
		l.Printf("should be discarded")
	})
}
