package convlog

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestWriteCreatesFileLazily(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "self", "peer", "alice")
	l.SetEnabled(true)

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no file before first write")
	}

	now := time.Unix(0, 0)
	if err := l.Write(now, HintNormal, "alice", "hello"); err != nil {
		t.Fatalf("write: %v", err)
	}
	l.Close()

	entries, _ = os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected one log file, got %d", len(entries))
	}
	data, _ := os.ReadFile(dir + "/" + entries[0].Name())
	if !strings.Contains(string(data), "alice: hello") {
		t.Fatalf("expected formatted line, got %q", data)
	}
}

func TestRenameMovesFile(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "self", "peer", "alice")
	l.SetEnabled(true)
	l.Write(time.Unix(0, 0), HintNormal, "alice", "hi")
	oldPath := l.path()

	l.Rename("alicia")
	if _, err := os.Stat(oldPath); err == nil {
		t.Fatalf("expected old path gone after rename")
	}
	if _, err := os.Stat(l.path()); err != nil {
		t.Fatalf("expected new path to exist: %v", err)
	}
	l.Close()
}
