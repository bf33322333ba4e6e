package inputline

import "testing"

func TestInsertAndCursor(t *testing.T) {
	b := New(0)
	b.InsertString("hello")
	if b.String() != "hello" || b.Cursor() != 5 {
		t.Fatalf("got %q cursor=%d", b.String(), b.Cursor())
	}
	b.Left()
	b.Left()
	b.Insert('X')
	if b.String() != "helXlo" {
		t.Fatalf("got %q", b.String())
	}
}

func TestKillAndYank(t *testing.T) {
	b := New(0)
	b.InsertString("hello world")
	b.MoveHome()
	b.WordRight()
	b.Kill()
	if b.String() != "hello" {
		t.Fatalf("expected kill to leave %q, got %q", "hello", b.String())
	}
	b.MoveEnd()
	b.Yank()
	if b.String() != "hello world" {
		t.Fatalf("expected yank to restore, got %q", b.String())
	}
}

func TestSubmitStripsTrailingSpacesAndPilcrow(t *testing.T) {
	b := New(0)
	b.InsertString("hi there  ")
	line, isCmd, sent := b.Submit(nil)
	if !sent || isCmd {
		t.Fatalf("expected sent message, got sent=%v isCmd=%v", sent, isCmd)
	}
	if line != "hi there" {
		t.Fatalf("expected trimmed line, got %q", line)
	}
	if b.String() != "" {
		t.Fatalf("expected buffer cleared, got %q", b.String())
	}
}

func TestSubmitLeadingSlashIsCommand(t *testing.T) {
	b := New(0)
	b.InsertString("/nick bob")
	_, isCmd, sent := b.Submit(nil)
	if !sent || !isCmd {
		t.Fatalf("expected command dispatch, got sent=%v isCmd=%v", sent, isCmd)
	}
}

func TestSubmitBlockedWordLeavesBufferIntact(t *testing.T) {
	b := New(0)
	b.InsertString("the secret handshake")
	_, _, sent := b.Submit(func(line string) bool { return true })
	if sent {
		t.Fatalf("expected blocked send to be suppressed")
	}
	if b.String() != "the secret handshake" {
		t.Fatalf("expected buffer left intact, got %q", b.String())
	}
}

func TestHistoryUpDown(t *testing.T) {
	b := New(0)
	b.InsertString("first")
	b.Submit(nil)
	b.InsertString("second")
	b.Submit(nil)
	b.HistoryUp()
	if b.String() != "second" {
		t.Fatalf("expected 'second', got %q", b.String())
	}
	b.HistoryUp()
	if b.String() != "first" {
		t.Fatalf("expected 'first', got %q", b.String())
	}
	b.HistoryDown()
	if b.String() != "second" {
		t.Fatalf("expected back to 'second', got %q", b.String())
	}
	b.HistoryDown()
	if b.String() != "" {
		t.Fatalf("expected back to live empty edit, got %q", b.String())
	}
}
