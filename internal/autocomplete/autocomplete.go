// Package autocomplete implements the Tab-completion algorithm from spec
// §4.4, grounded on original_source/src/autocomplete.h: isolate the last
// token, match candidates case-insensitively, and either substitute a
// unique match or print the candidate list.
package autocomplete

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Result describes what a completion attempt did to the line, so the
// caller (the input buffer) can apply it.
type Result struct {
	// NewLine is the full line after substitution, valid when Replaced is
	// true.
	NewLine string
	// Replaced is true when a single match (or a widened common prefix)
	// was substituted into the line.
	Replaced bool
	// Candidates lists every match, for the caller to print as a system
	// line when there is more than one.
	Candidates []string
}

// lastToken returns the whitespace-delimited token ending at cursor, and
// its start offset within runes.
func lastToken(runes []rune, cursor int) (tok string, start int) {
	i := cursor
	for i > 0 && runes[i-1] != ' ' {
		i--
	}
	return string(runes[i:cursor]), i
}

// Complete runs the algorithm from spec §4.4 steps 1-4 against an
// in-memory candidate vector (command names, peer names, etc.).
// atLineStart indicates the token begins the line (used to decide the
// trailing "name: " suffix vs a plain space); isCommandToken indicates the
// token itself looks like a /command (never gets the colon suffix).
func Complete(line string, cursor int, candidates []string, atLineStart, isCommandToken bool) Result {
	runes := []rune(line)
	if cursor > len(runes) {
		cursor = len(runes)
	}
	tok, start := lastToken(runes, cursor)
	if tok == "" {
		return Result{}
	}

	matches := matchPrefix(candidates, tok)
	if len(matches) == 0 {
		return Result{}
	}

	if len(matches) == 1 {
		suffix := " "
		if atLineStart && !isCommandToken {
			suffix = ": "
		}
		newLine := string(runes[:start]) + matches[0] + suffix + string(runes[cursor:])
		return Result{NewLine: newLine, Replaced: true, Candidates: matches}
	}

	lcp := longestCommonPrefix(matches)
	res := Result{Candidates: matches}
	if len(lcp) > len(tok) {
		res.NewLine = string(runes[:start]) + lcp + string(runes[cursor:])
		res.Replaced = true
	}
	return res
}

func matchPrefix(candidates []string, tok string) []string {
	lowTok := strings.ToLower(tok)
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lowTok) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func longestCommonPrefix(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	p := ss[0]
	for _, s := range ss[1:] {
		p = commonPrefix(p, s)
		if p == "" {
			break
		}
	}
	return p
}

func commonPrefix(a, b string) string {
	ra, rb := []rune(a), []rune(b)
	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	i := 0
	for i < n && ra[i] == rb[i] {
		i++
	}
	return string(ra[:i])
}

// CompletePath runs step 5: treats the token as a filesystem prefix,
// enumerates the directory, and falls into the single/many-match cases
// (no trailing colon is ever applied to a path completion).
func CompletePath(line string, cursor int) Result {
	runes := []rune(line)
	if cursor > len(runes) {
		cursor = len(runes)
	}
	tok, start := lastToken(runes, cursor)

	dir, prefix := filepath.Split(tok)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}
	}
	var candidates []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			continue
		}
		full := filepath.Join(dir, name)
		if e.IsDir() {
			full += string(filepath.Separator)
		}
		candidates = append(candidates, full)
	}
	sort.Strings(candidates)
	if len(candidates) == 0 {
		return Result{}
	}
	if len(candidates) == 1 {
		newLine := string(runes[:start]) + candidates[0] + string(runes[cursor:])
		return Result{NewLine: newLine, Replaced: true, Candidates: candidates}
	}
	lcp := longestCommonPrefix(candidates)
	res := Result{Candidates: candidates}
	if len(lcp) > len(dirJoin(dir, prefix)) {
		newLine := string(runes[:start]) + lcp + string(runes[cursor:])
		res.NewLine = newLine
		res.Replaced = true
	}
	return res
}

func dirJoin(dir, prefix string) string {
	if dir == "." {
		return prefix
	}
	return filepath.Join(dir, prefix)
}

// PathCommands names the commands whose argument completes against the
// filesystem rather than the generic candidate vector (spec §4.4 step 5).
var PathCommands = map[string]bool{
	"/sendfile": true,
	"/avatar":   true,
	"/run":      true,
}
