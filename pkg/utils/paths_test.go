package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveAndEnsureDBPath_CreatesParentDir(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "nested", "dir", "infograph.db")

	resolved, err := ResolveAndEnsureDBPath(target)
	if err != nil {
		t.Fatalf("ResolveAndEnsureDBPath failed: %v", err)
	}
	if resolved != target {
		t.Errorf("Expected %s, got %s", target, resolved)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Errorf("Expected parent directory to exist: %v", err)
	}
}

func TestResolveAndEnsureDBPath_MemoryPassesThrough(t *testing.T) {
	resolved, err := ResolveAndEnsureDBPath(":memory:")
	if err != nil {
		t.Fatalf("ResolveAndEnsureDBPath failed: %v", err)
	}
	if resolved != ":memory:" {
		t.Errorf("Expected :memory:, got %s", resolved)
	}
}

func TestGetDefaultDBPathOnly(t *testing.T) {
	p := GetDefaultDBPathOnly()
	if !strings.HasSuffix(p, "infograph.db") {
		t.Errorf("Expected default path to end in infograph.db, got %s", p)
	}
}
