package ui

import (
	"runtime"
	"slices"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	t.Parallel()

	const url = "https://dev.azure.com/org/proj/_workitems/edit/1"
	name, args := browserCommand(url)
	if name == "" {
		t.Fatal("browserCommand() returned no command")
	}
	if !slices.Contains(args, url) {
		t.Errorf("args = %v, want to contain %q", args, url)
	}
	if runtime.GOOS == "darwin" && name != "open" {
		t.Errorf("darwin command = %q, want open", name)
	}
}
