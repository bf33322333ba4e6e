// Package inputline implements the wide-character input editing buffer from
// spec §4.4, grounded on original_source/src/input.c and toxic_strings.c:
// cursor motion, a history ring, a yank/kill buffer, and the paste-mode
// pilcrow substitution on submit.
package inputline

import (
	"strings"

	"toxterm/internal/wcwidth"
)

const (
	defaultMaxLen     = 2048 // MAX_STR_SIZE analogue
	defaultHistorySiz = 100
	pastePilcrow      = '¶'
)

// Buffer is one window's input line: a rune slice, a cursor position, a
// horizontal-scroll start index, a history ring, and a separate yank buffer.
type Buffer struct {
	runes  []rune
	cursor int
	scroll int
	maxLen int

	history    []string
	historyPos int // -1 means "not browsing history" (the live edit), otherwise the recalled entry's index
	pendingLive string

	yank []rune

	pasteMode bool
}

// New creates an empty buffer bounded to maxLen runes (0 means
// defaultMaxLen).
func New(maxLen int) *Buffer {
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	return &Buffer{maxLen: maxLen, historyPos: -1}
}

// Insert inserts r at the cursor, if there is room.
func (b *Buffer) Insert(r rune) bool {
	if len(b.runes) >= b.maxLen {
		return false
	}
	b.runes = append(b.runes, 0)
	copy(b.runes[b.cursor+1:], b.runes[b.cursor:])
	b.runes[b.cursor] = r
	b.cursor++
	return true
}

// InsertString inserts each rune of s at the cursor in order.
func (b *Buffer) InsertString(s string) {
	for _, r := range s {
		b.Insert(r)
	}
}

// clusterBoundaries returns every grapheme-cluster boundary in the buffer as
// a rune index, from 0 through len(b.runes) inclusive, so cursor motion and
// deletion can move by whole user-perceived characters (a base letter plus a
// combining mark) instead of splitting one in two.
func (b *Buffer) clusterBoundaries() []int {
	bounds := []int{0}
	pos := 0
	for _, cl := range wcwidth.GraphemeClusters(string(b.runes)) {
		pos += len([]rune(cl))
		bounds = append(bounds, pos)
	}
	return bounds
}

// Backspace deletes the grapheme cluster before the cursor.
func (b *Buffer) Backspace() {
	if b.cursor == 0 {
		return
	}
	bounds := b.clusterBoundaries()
	start := 0
	for i := len(bounds) - 1; i >= 0; i-- {
		if bounds[i] < b.cursor {
			start = bounds[i]
			break
		}
	}
	b.runes = append(b.runes[:start], b.runes[b.cursor:]...)
	b.cursor = start
}

// Delete deletes the grapheme cluster at the cursor.
func (b *Buffer) Delete() {
	if b.cursor >= len(b.runes) {
		return
	}
	bounds := b.clusterBoundaries()
	end := len(b.runes)
	for _, bd := range bounds {
		if bd > b.cursor {
			end = bd
			break
		}
	}
	b.runes = append(b.runes[:b.cursor], b.runes[end:]...)
}

// DeleteToStart discards from the buffer start to the cursor (no yank).
func (b *Buffer) DeleteToStart() {
	b.runes = append([]rune{}, b.runes[b.cursor:]...)
	b.cursor = 0
}

// Kill deletes from the cursor to end of line, saving the removed text to
// the yank buffer.
func (b *Buffer) Kill() {
	b.yank = append([]rune{}, b.runes[b.cursor:]...)
	b.runes = b.runes[:b.cursor]
}

// Yank re-inserts the last killed text at the cursor.
func (b *Buffer) Yank() {
	for _, r := range b.yank {
		b.Insert(r)
	}
}

// DeletePrevWord removes the word immediately before the cursor.
func (b *Buffer) DeletePrevWord() {
	start := b.wordLeftIndex()
	b.runes = append(b.runes[:start], b.runes[b.cursor:]...)
	b.cursor = start
}

func (b *Buffer) wordLeftIndex() int {
	i := b.cursor
	for i > 0 && b.runes[i-1] == ' ' {
		i--
	}
	for i > 0 && b.runes[i-1] != ' ' {
		i--
	}
	return i
}

func (b *Buffer) wordRightIndex() int {
	i := b.cursor
	n := len(b.runes)
	for i < n && b.runes[i] == ' ' {
		i++
	}
	for i < n && b.runes[i] != ' ' {
		i++
	}
	return i
}

// MoveHome moves the cursor to the start of the line.
func (b *Buffer) MoveHome() { b.cursor = 0 }

// MoveEnd moves the cursor to the end of the line.
func (b *Buffer) MoveEnd() { b.cursor = len(b.runes) }

// Left moves the cursor to the start of the previous grapheme cluster.
func (b *Buffer) Left() {
	if b.cursor == 0 {
		return
	}
	bounds := b.clusterBoundaries()
	for i := len(bounds) - 1; i >= 0; i-- {
		if bounds[i] < b.cursor {
			b.cursor = bounds[i]
			return
		}
	}
}

// Right moves the cursor to the start of the next grapheme cluster.
func (b *Buffer) Right() {
	bounds := b.clusterBoundaries()
	for _, bd := range bounds {
		if bd > b.cursor {
			b.cursor = bd
			return
		}
	}
}

// WordLeft moves the cursor to the start of the previous word.
func (b *Buffer) WordLeft() { b.cursor = b.wordLeftIndex() }

// WordRight moves the cursor to the start of the next word.
func (b *Buffer) WordRight() { b.cursor = b.wordRightIndex() }

// Cursor returns the current cursor position in runes.
func (b *Buffer) Cursor() int { return b.cursor }

// String returns the current buffer contents.
func (b *Buffer) String() string { return string(b.runes) }

// Len returns the display width of the buffer contents.
func (b *Buffer) Len() int { return wcwidth.StringWidth(b.String()) }

// SetText replaces the buffer contents wholesale and moves the cursor to
// the end, used by history recall and tab completion.
func (b *Buffer) SetText(s string) {
	b.runes = []rune(s)
	if len(b.runes) > b.maxLen {
		b.runes = b.runes[:b.maxLen]
	}
	b.cursor = len(b.runes)
}

// Clear empties the buffer and resets the cursor, history browsing, and
// paste mode is left untouched (a toggle, not per-line state).
func (b *Buffer) Clear() {
	b.runes = nil
	b.cursor = 0
	b.historyPos = -1
	b.pendingLive = ""
}

// TogglePasteMode flips the paste-mode flag.
func (b *Buffer) TogglePasteMode() { b.pasteMode = !b.pasteMode }

// PasteMode reports whether paste mode is active.
func (b *Buffer) PasteMode() bool { return b.pasteMode }

// HistoryUp recalls the previous entered line, if any.
func (b *Buffer) HistoryUp() {
	if len(b.history) == 0 {
		return
	}
	if b.historyPos == -1 {
		b.pendingLive = b.String()
		b.historyPos = len(b.history) - 1
	} else if b.historyPos > 0 {
		b.historyPos--
	} else {
		return
	}
	b.SetText(b.history[b.historyPos])
}

// HistoryDown recalls the next entered line, returning to the live edit
// once the ring is exhausted.
func (b *Buffer) HistoryDown() {
	if b.historyPos == -1 {
		return
	}
	if b.historyPos < len(b.history)-1 {
		b.historyPos++
		b.SetText(b.history[b.historyPos])
		return
	}
	b.historyPos = -1
	b.SetText(b.pendingLive)
}

// pushHistory appends line to the ring, evicting the oldest entry once the
// ring exceeds defaultHistorySiz.
func (b *Buffer) pushHistory(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	b.history = append(b.history, line)
	if len(b.history) > defaultHistorySiz {
		b.history = b.history[1:]
	}
}

// Submit implements the Enter-key pipeline from spec §4.4: trailing spaces
// are stripped, the paste pilcrow is substituted with newline, and the
// result is appended to history and returned for the caller to dispatch
// (leading '/' -> command, else message). The buffer is cleared as a side
// effect unless blocked is true (blocked-word suppression leaves the
// buffer intact per spec §4.4/§7).
func (b *Buffer) Submit(blocked func(line string) bool) (line string, isCommand bool, sent bool) {
	raw := strings.TrimRight(b.String(), " ")
	raw = strings.ReplaceAll(raw, string(pastePilcrow), "\n")
	if blocked != nil && blocked(raw) {
		return raw, false, false
	}
	b.pushHistory(raw)
	b.Clear()
	return raw, strings.HasPrefix(raw, "/"), true
}
