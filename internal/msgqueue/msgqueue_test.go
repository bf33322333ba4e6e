package msgqueue

import (
	"testing"
	"time"

	"toxterm/internal/network"
)

func TestEnqueueAckRemoves(t *testing.T) {
	q := New()
	now := time.Unix(0, 0)
	q.Enqueue(1, 100, "hi", network.MessageNormal, now)
	q.Enqueue(2, 101, "there", network.MessageNormal, now)

	lineID, ok := q.Ack(1)
	if !ok || lineID != 100 {
		t.Fatalf("expected ack of receipt 1 -> line 100, got %d ok=%v", lineID, ok)
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", q.Len())
	}
	if _, ok := q.Ack(1); ok {
		t.Fatalf("expected second ack of same receipt to miss")
	}
}

func TestRetryStaleBumpsAttempts(t *testing.T) {
	q := New()
	base := time.Unix(0, 0)
	q.Enqueue(1, 1, "x", network.MessageNormal, base)
	stale := q.RetryStale(base.Add(time.Hour), time.Minute)
	if len(stale) != 1 || stale[0].Attempts != 2 {
		t.Fatalf("expected one stale entry with attempts=2, got %+v", stale)
	}
}
