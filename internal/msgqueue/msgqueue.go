// Package msgqueue implements the per-friend outbound message queue from
// spec §4.7, grounded on original_source/src/friendlist.c's cqueue
// structure referenced from chat.c: enqueue returns immediately, and a
// read-receipt flips the scrollback line's noread flag and removes the
// entry.
package msgqueue

import (
	"time"

	"toxterm/internal/network"
)

// Entry is one outbound message awaiting a read receipt (spec §3's
// "Message queue entry").
type Entry struct {
	Receipt  network.ReceiptID
	LineID   int64
	Text     string
	Kind     network.MessageType
	SentAt   time.Time
	Attempts int
}

// Queue is one friend's ordered outbound queue.
type Queue struct {
	entries []Entry
}

// New returns an empty queue.
func New() *Queue { return &Queue{} }

// Enqueue records a sent message pending its read receipt; delivery order
// within a friend matches enqueue order (spec §5).
func (q *Queue) Enqueue(receipt network.ReceiptID, lineID int64, text string, kind network.MessageType, now time.Time) {
	q.entries = append(q.entries, Entry{Receipt: receipt, LineID: lineID, Text: text, Kind: kind, SentAt: now, Attempts: 1})
}

// Ack removes the entry matching receipt and returns its line id so the
// caller can clear the scrollback line's noread flag, or ok=false if no
// entry matched.
func (q *Queue) Ack(receipt network.ReceiptID) (lineID int64, ok bool) {
	for i, e := range q.entries {
		if e.Receipt == receipt {
			lineID = e.LineID
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return lineID, true
		}
	}
	return 0, false
}

// Pending returns every entry still awaiting a receipt, oldest first.
func (q *Queue) Pending() []Entry { return append([]Entry{}, q.entries...) }

// RetryStale re-marks entries older than maxAge as needing resend,
// bumping their attempt counter; spec §4.7 leaves the retry policy itself
// to implementation freedom.
func (q *Queue) RetryStale(now time.Time, maxAge time.Duration) []Entry {
	var stale []Entry
	for i := range q.entries {
		if now.Sub(q.entries[i].SentAt) > maxAge {
			q.entries[i].Attempts++
			q.entries[i].SentAt = now
			stale = append(stale, q.entries[i])
		}
	}
	return stale
}

// Len reports how many messages are still awaiting a receipt.
func (q *Queue) Len() int { return len(q.entries) }
