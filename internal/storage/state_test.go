package storage

import (
	"path/filepath"
	"testing"
)

func TestState_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), StateFileName)

	s, err := LoadState(path)
	if err != nil {
		t.Fatalf("LoadState() on missing file error = %v", err)
	}
	if len(s.LastSprint) != 0 {
		t.Errorf("LoadState() = %+v, want empty", s)
	}

	key := StateKey("org", "proj", "team")
	s.LastSprint[key] = "sprint-guid"
	if err := SaveState(path, s); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	loaded, err := LoadState(path)
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if got := loaded.LastSprint[key]; got != "sprint-guid" {
		t.Errorf("LastSprint[%q] = %q, want %q", key, got, "sprint-guid")
	}
}

func TestStateKey(t *testing.T) {
	t.Parallel()

	if got := StateKey("o", "p", "t"); got != "o/p/t" {
		t.Errorf("StateKey() = %q, want %q", got, "o/p/t")
	}
}
