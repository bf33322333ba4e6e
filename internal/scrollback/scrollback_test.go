package scrollback

import "testing"

func TestAddQueueFullDrops(t *testing.T) {
	h := New(0)
	h.queueCap = 2
	var now = fixedNow()
	if id := h.Add(now, LineSystem, Attr{}, "", "", "a"); id == ErrQueueFull {
		t.Fatalf("first add should not overflow")
	}
	if id := h.Add(now, LineSystem, Attr{}, "", "", "b"); id == ErrQueueFull {
		t.Fatalf("second add should not overflow")
	}
	if id := h.Add(now, LineSystem, Attr{}, "", "", "c"); id != ErrQueueFull {
		t.Fatalf("third add should overflow, got id=%d", id)
	}
}

func TestPrintFlushesOnePerCall(t *testing.T) {
	h := New(0)
	now := fixedNow()
	h.Add(now, LineSystem, Attr{}, "", "", "one")
	h.Add(now, LineSystem, Attr{}, "", "", "two")
	if h.QueueLen() != 2 {
		t.Fatalf("expected 2 queued, got %d", h.QueueLen())
	}
	h.Print()
	if h.QueueLen() != 1 || h.Count() != 1 {
		t.Fatalf("expected one flushed, got queue=%d count=%d", h.QueueLen(), h.Count())
	}
	h.Print()
	if h.QueueLen() != 0 || h.Count() != 2 {
		t.Fatalf("expected both flushed, got queue=%d count=%d", h.QueueLen(), h.Count())
	}
}

func TestRetentionEvictsHead(t *testing.T) {
	h := New(10)
	now := fixedNow()
	for i := 0; i < 15; i++ {
		h.Add(now, LineSystem, Attr{}, "", "", "line %d", i)
	}
	h.Drain()
	if h.Count() != 10 {
		t.Fatalf("expected retained count 10, got %d", h.Count())
	}
	if h.head.ID != 6 {
		t.Fatalf("expected oldest retained id 6 (5 evicted), got %d", h.head.ID)
	}
	if h.tail.ID != 15 {
		t.Fatalf("expected newest id 15, got %d", h.tail.ID)
	}
}

func TestSetReplacesMessageInPlace(t *testing.T) {
	h := New(0)
	now := fixedNow()
	id := h.Add(now, LineSystem, Attr{}, "", "", "0%%")
	h.Drain()
	if !h.Set(id, "50%%") {
		t.Fatalf("Set should find inserted line")
	}
	if got := string(h.Get(id).Message); got != "50%%" {
		t.Fatalf("expected updated message, got %q", got)
	}
}

func TestWrapLineBreaksOnSpaceWithinLimit(t *testing.T) {
	rows := WrapLine([]rune("hello there world"), 0, 10)
	if len(rows) < 2 {
		t.Fatalf("expected wrap into multiple rows, got %v", rows)
	}
	if rows[0] != "hello" && rows[0] != "hello there" {
		t.Fatalf("unexpected first row %q", rows[0])
	}
}

func TestWrapLineHardBreaksLongWord(t *testing.T) {
	rows := WrapLine([]rune("abcdefghij"), 0, 4)
	if len(rows) != 3 {
		t.Fatalf("expected 3 hard-broken rows, got %d: %v", len(rows), rows)
	}
}

func TestResetStartFitsScreen(t *testing.T) {
	h := New(0)
	now := fixedNow()
	for i := 0; i < 5; i++ {
		h.Add(now, LineSystem, Attr{}, "", "", "line %d", i)
	}
	h.Drain()
	h.ResetStart(2)
	if h.ScrollPaused() {
		t.Fatalf("ResetStart should clear scroll pause")
	}
	if h.LineStart() != 4 {
		t.Fatalf("expected line_start=4 (last 2 of 5), got %d", h.LineStart())
	}
}
