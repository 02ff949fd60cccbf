package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/raphi011/abt/internal/boards"
	"github.com/raphi011/abt/internal/config"
	"github.com/raphi011/abt/internal/format"
	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/output"
)

// testContext returns a context whose primary output and diagnostics go
// to the returned buffers.
func testContext(t *testing.T) (context.Context, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, diag bytes.Buffer
	ctx := output.WithPrinter(context.Background(), &out)
	ctx = log.WithLogger(ctx, log.New(&diag, false, false))
	return ctx, &out, &diag
}

func TestCommandsDocumented(t *testing.T) {
	t.Parallel()

	groups := make(map[string]bool)
	for _, g := range rootCmd.Groups() {
		groups[g.ID] = true
	}

	for _, cmd := range rootCmd.Commands() {
		t.Run(cmd.Name(), func(t *testing.T) {
			if cmd.Short == "" {
				t.Error("missing Short")
			}
			if cmd.Example == "" {
				t.Error("missing Example")
			}
			if !groups[cmd.GroupID] {
				t.Errorf("GroupID = %q, not a registered group", cmd.GroupID)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	t.Parallel()

	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"dashboard", "sprints", "cards", "epics", "state", "move", "children", "open", "config", "version", "completion"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("command %q not registered (have %v)", want, names)
		}
	}
}

func TestFilterPrefix(t *testing.T) {
	t.Parallel()

	candidates := []string{"@current", "backlog", "Sprint 41", "Sprint 42", "n\tNew", "a\tActive"}
	tests := []struct {
		prefix string
		want   []string
	}{
		{"", candidates},
		{"spr", []string{"Sprint 41", "Sprint 42"}},
		{"Sprint 42", []string{"Sprint 42"}},
		{"@", []string{"@current"}},
		{"n", []string{"n\tNew"}},
		{"New", nil},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			t.Parallel()
			got := filterPrefix(candidates, tt.prefix)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("filterPrefix(%q) mismatch (-want +got):\n%s", tt.prefix, diff)
			}
		})
	}
}

func TestErrorHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config", &config.Error{Field: "team", Reason: "not set"}, "abt config init"},
		{"unauthorized", fmt.Errorf("list sprints: %w", boards.ErrUnauthorized), "token"},
		{"canceled", context.Canceled, ""},
		{"other", errors.New("boom"), "abt -h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := errorHint(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("errorHint() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("errorHint() = %q, want it to mention %q", got, tt.want)
			}
		})
	}
}

func TestPrintRows(t *testing.T) {
	t.Parallel()

	rows := []format.SprintRow{{ID: "s1", Name: "Sprint 1", Path: `P\Sprint 1`, Current: true}}

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		ctx, out, _ := testContext(t)
		if err := printRows(ctx, output.FormatJSON, rows, "none", renderSprints); err != nil {
			t.Fatalf("printRows() error = %v", err)
		}
		var got []format.SprintRow
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if diff := cmp.Diff(rows, got); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty json is an array", func(t *testing.T) {
		t.Parallel()
		ctx, out, _ := testContext(t)
		if err := printRows[format.SprintRow](ctx, output.FormatJSON, nil, "none", renderSprints); err != nil {
			t.Fatalf("printRows() error = %v", err)
		}
		if got := strings.TrimSpace(out.String()); got != "[]" {
			t.Errorf("output = %q, want []", got)
		}
	})

	t.Run("empty table goes to diagnostics", func(t *testing.T) {
		t.Parallel()
		ctx, out, diag := testContext(t)
		if err := printRows[format.SprintRow](ctx, output.FormatTable, nil, "No sprints", renderSprints); err != nil {
			t.Fatalf("printRows() error = %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("stdout = %q, want empty", out)
		}
		if !strings.Contains(diag.String(), "No sprints") {
			t.Errorf("stderr = %q, want the empty message", diag)
		}
	})

	t.Run("table", func(t *testing.T) {
		t.Parallel()
		ctx, out, _ := testContext(t)
		if err := printRows(ctx, output.FormatTable, rows, "none", renderSprints); err != nil {
			t.Fatalf("printRows() error = %v", err)
		}
		if !strings.Contains(out.String(), "Sprint 1") {
			t.Errorf("table = %q, want it to list Sprint 1", out)
		}
	})
}

// TestSprintsCmd runs the sprints command against a fake Azure DevOps
// server. It swaps the package config, so it is not parallel.
func TestSprintsCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/org/proj/team/_apis/work/teamsettings/iterations" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"count":2,"value":[
			{"id":"a1","name":"Sprint 1","path":"proj\\Sprint 1","attributes":{"timeFrame":"past"}},
			{"id":"b2","name":"Sprint 2","path":"proj\\Sprint 2","attributes":{"timeFrame":"current"}}
		]}`))
	}))
	t.Cleanup(srv.Close)

	useConfig(t, srv.URL)
	ctx, out, _ := testContext(t)

	cmd := newSprintsCmd()
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{"--format", "json"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("sprints command failed: %v", err)
	}

	var got []format.SprintRow
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := []string{"Sprint 2", "Sprint 1"}
	var names []string
	for _, r := range got {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("sprints mismatch (-want +got):\n%s", diff)
	}
	if !got[0].Current {
		t.Error("Sprint 2 not marked current")
	}
}

func TestSprintsCmd_InvalidFormat(t *testing.T) {
	useConfig(t, "http://127.0.0.1:1")
	ctx, _, _ := testContext(t)

	cmd := newSprintsCmd()
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{"--format", "xml"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.Execute(); !errors.Is(err, config.ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}
}

func TestConfigShowRedactsToken(t *testing.T) {
	useConfig(t, "http://127.0.0.1:1")
	ctx, out, _ := testContext(t)

	cmd := newConfigShowCmd()
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{"--format", "yaml"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if strings.Contains(out.String(), "secret") {
		t.Errorf("config show leaked the token:\n%s", out)
	}
	if !strings.Contains(out.String(), "organisation: org") {
		t.Errorf("config show output missing organisation:\n%s", out)
	}
}

// useConfig points the package config at baseURL for the test.
func useConfig(t *testing.T, baseURL string) {
	t.Helper()
	c := config.Default()
	c.Organisation = "org"
	c.Project = "proj"
	c.Team = "team"
	c.Token = "secret"
	c.BaseURL = baseURL

	old, oldQuiet := cfg, quiet
	cfg, quiet = &c, true
	t.Cleanup(func() { cfg, quiet = old, oldQuiet })
}
