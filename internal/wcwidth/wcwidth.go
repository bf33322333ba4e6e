// Package wcwidth measures the on-screen display width of text the way a
// terminal emulator does: wide CJK glyphs count as two columns, combining
// marks count as zero, and everything else counts as one.
package wcwidth

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// RuneWidth returns the display width of a single rune, in terminal columns.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// StringWidth returns the total display width of s, in terminal columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s so its display width does not exceed w, appending tail
// (e.g. "...") when truncation occurs. Mirrors runewidth.Truncate, kept as a
// thin wrapper so callers only ever import this package.
func Truncate(s string, w int, tail string) string {
	return runewidth.Truncate(s, w, tail)
}

// GraphemeClusters splits s into user-perceived characters, used by the
// input line editor so cursor movement and backspace operate on whole
// grapheme clusters rather than individual runes (e.g. a base letter plus a
// combining accent moves as one unit).
func GraphemeClusters(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
