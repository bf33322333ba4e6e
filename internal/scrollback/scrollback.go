// Package scrollback implements the append-only, word-wrapped conversation
// history described in spec §4.3, grounded on original_source/src/line_info.c:
// a bounded insertion queue feeding a doubly-linked history list one entry
// per print() call, so a slow formatter or a long paste can never stall the
// render loop.
package scrollback

import (
	"fmt"
	"time"

	"toxterm/internal/wcwidth"
)

// LineType tags what produced a scrollback line, mirroring line_info.c's
// enum one-for-one.
type LineType int

const (
	LineIncoming LineType = iota
	LineOutgoing
	LineAction
	LineSystem
	LinePrompt
	LineConnection
	LineDisconnection
	LineNameChange
	LinePrivateIncoming
	LinePrivateOutgoing
	LineRead
	LineSentButUnread
)

// Attr carries the cosmetic attributes a line was created with; a zero
// value means "no special attributes".
type Attr struct {
	Bold  bool
	Color int
}

// ErrQueueFull is returned (as an id of -1) when add()'s bounded queue has
// no room; spec §4.3 requires the add to be dropped, not blocked.
const ErrQueueFull = -1

// Line is one immutable (mostly) record in the history list.
type Line struct {
	ID          int64
	Timestamp   string
	Name1       string
	Name2       string
	Type        LineType
	Message     []rune
	DisplayW    int
	FormatLines int
	Noread      bool
	Attr        Attr

	prev, next *Line
}

const defaultQueueCapacity = 256

// History is one window's scrollback: a bounded queue of lines awaiting
// insertion plus the append-only linked list of inserted lines.
type History struct {
	nextID int64

	queue    []*Line
	queueCap int

	head, tail *Line
	count      int
	historySiz int

	lineStart int64 // id of the topmost visible line
	scrollPause bool

	byID map[int64]*Line
}

// New creates a History bounded to historySize live lines after flush, with
// a queue capacity of defaultQueueCapacity entries awaiting flush.
func New(historySize int) *History {
	return &History{
		queueCap:   defaultQueueCapacity,
		historySiz: historySize,
		byID:       make(map[int64]*Line),
	}
}

// Add formats a line, computes its pre-wrap display width, and appends it to
// the bounded queue. It never blocks; if the queue is full it returns
// ErrQueueFull. now is injected so callers can keep this deterministic in
// tests.
func (h *History) Add(now time.Time, typ LineType, attr Attr, name1, name2, format string, args ...interface{}) int64 {
	if len(h.queue) >= h.queueCap {
		return ErrQueueFull
	}
	msg := fmt.Sprintf(format, args...)
	h.nextID++
	l := &Line{
		ID:        h.nextID,
		Timestamp: now.Format("15:04:05"),
		Name1:     name1,
		Name2:     name2,
		Type:      typ,
		Message:   []rune(msg),
		DisplayW:  wcwidth.StringWidth(msg),
		Attr:      attr,
		Noread:    typ == LineSentButUnread,
	}
	h.queue = append(h.queue, l)
	return l.ID
}

// Set replaces the message buffer of an already-inserted line, used to
// rewrite a progress-bar line in place.
func (h *History) Set(id int64, newText string) bool {
	l, ok := h.byID[id]
	if !ok {
		return false
	}
	l.Message = []rune(newText)
	l.DisplayW = wcwidth.StringWidth(newText)
	l.FormatLines = 0 // force rewrap on next render
	return true
}

// Get performs a linear scan from the tail for the line with the given id.
func (h *History) Get(id int64) *Line {
	for l := h.tail; l != nil; l = l.prev {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Print flushes at most one queued entry into the linked history, applying
// retention (evicting the head when the list exceeds historySiz). It
// returns true if it flushed an entry, so callers drive it in a loop to
// drain fully without ever flushing more than one per call from inside a
// single render pass.
func (h *History) Print() bool {
	if len(h.queue) == 0 {
		return false
	}
	l := h.queue[0]
	h.queue = h.queue[1:]

	l.prev = h.tail
	if h.tail != nil {
		h.tail.next = l
	}
	h.tail = l
	if h.head == nil {
		h.head = l
	}
	h.byID[l.ID] = l
	h.count++

	if h.lineStart == 0 {
		h.lineStart = l.ID
	}

	for h.historySiz > 0 && h.count > h.historySiz {
		evicted := h.head
		h.head = h.head.next
		if h.head != nil {
			h.head.prev = nil
		} else {
			h.tail = nil
		}
		delete(h.byID, evicted.ID)
		h.count--
		if h.lineStart == evicted.ID && h.head != nil {
			h.lineStart = h.head.ID
		}
	}
	return true
}

// Drain flushes every queued entry, recursing (iterating) once per call to
// Print until the queue is empty.
func (h *History) Drain() {
	for h.Print() {
	}
}

// QueueLen reports how many entries are awaiting flush, for tests.
func (h *History) QueueLen() int { return len(h.queue) }

// Count reports how many lines are currently retained in the linked list.
func (h *History) Count() int { return h.count }

// LineStart returns the id of the topmost visible line.
func (h *History) LineStart() int64 { return h.lineStart }

// ScrollPaused reports whether the user has scrolled away from the bottom.
func (h *History) ScrollPaused() bool { return h.scrollPause }

// ResetStart rewinds lineStart so the most recent maxY lines fit on screen;
// used on resize and whenever the caller was not scroll-paused.
func (h *History) ResetStart(maxY int) {
	if h.tail == nil {
		return
	}
	n := 1
	l := h.tail
	for n < maxY && l.prev != nil {
		n++
		l = l.prev
	}
	h.lineStart = l.ID
	h.scrollPause = false
}

// Visible returns every retained line from the current scroll position to
// the tail, in order, for a render loop to wrap and paginate against its
// own row budget.
func (h *History) Visible() []*Line {
	start := h.byID[h.lineStart]
	if start == nil {
		start = h.head
	}
	var out []*Line
	for l := start; l != nil; l = l.next {
		out = append(out, l)
	}
	return out
}

// NavKey is one of the five scrollback navigation keys spec §4.3 names.
type NavKey int

const (
	NavHalfPageUp NavKey = iota
	NavHalfPageDown
	NavLineUp
	NavLineDown
	NavJumpBottom
)

// OnKey handles one navigation keystroke against the linked list, given the
// currently visible row budget maxY. Scrolling one step past the end clears
// scrollPause; any scroll-up sets it.
func (h *History) OnKey(key NavKey, maxY int) {
	if h.head == nil {
		return
	}
	start := h.byID[h.lineStart]
	if start == nil {
		start = h.head
	}
	switch key {
	case NavJumpBottom:
		h.ResetStart(maxY)
		return
	case NavLineUp:
		if start.prev != nil {
			h.lineStart = start.prev.ID
			h.scrollPause = true
		}
		return
	case NavHalfPageUp:
		n := maxY / 2
		for n > 0 && start.prev != nil {
			start = start.prev
			n--
		}
		h.lineStart = start.ID
		h.scrollPause = true
		return
	case NavLineDown:
		if start.next != nil {
			h.lineStart = start.next.ID
		}
	case NavHalfPageDown:
		n := maxY / 2
		for n > 0 && start.next != nil {
			start = start.next
			n--
		}
		h.lineStart = start.ID
	}
	// Determine whether we have scrolled back to the bottom.
	n := 0
	for l := h.byID[h.lineStart]; l != nil; l = l.next {
		n++
	}
	if n <= maxY {
		h.scrollPause = false
	}
}

// WrapLine word-wraps msg against a render width limit, following spec
// §4.3's algorithm: break on an embedded newline within the row budget,
// else break at the last space within xLimit, else hard-break at xLimit.
// xStart is the indent used for every continuation row. Returns the wrapped
// rows (without xStart padding — callers apply indent when rendering).
func WrapLine(msg []rune, xStart, xLimit int) []string {
	if xLimit <= 0 {
		return []string{string(msg)}
	}
	var rows []string
	rest := msg
	first := true
	limit := func() int {
		if first {
			return xLimit
		}
		return xLimit - xStart
	}
	for len(rest) > 0 {
		budget := limit()
		if budget <= 0 {
			budget = 1
		}
		nl := indexRune(rest, '\n')
		if nl >= 0 && nl <= budget {
			rows = append(rows, string(rest[:nl]))
			rest = rest[nl+1:]
			first = false
			continue
		}
		if len(rest) <= budget {
			rows = append(rows, string(rest))
			break
		}
		// Look for the last space within budget.
		brk := -1
		for i := budget; i > 0; i-- {
			if rest[i-1] == ' ' {
				brk = i - 1
				break
			}
		}
		if brk > 0 {
			rows = append(rows, string(rest[:brk]))
			rest = rest[brk+1:]
		} else {
			rows = append(rows, string(rest[:budget]))
			rest = rest[budget:]
		}
		first = false
	}
	if len(rows) == 0 {
		rows = []string{""}
	}
	return rows
}

func indexRune(rs []rune, target rune) int {
	for i, r := range rs {
		if r == target {
			return i
		}
	}
	return -1
}

// FormatLinesFor word-wraps l.Message against width w and caches the resulting
// row count on the line, so resize is O(n) recomputation rather than
// per-draw work. Returns the wrapped rows.
func (l *Line) FormatLinesFor(xStart, w int) []string {
	rows := WrapLine(l.Message, xStart, w)
	l.FormatLines = len(rows)
	return rows
}
