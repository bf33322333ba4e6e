// Package command implements the input-line command executor from spec
// §4.11, grounded on original_source/src/commands.c/chat_commands.c/
// conference_commands.c/global_commands.c: a quote-aware tokenizer feeding
// a table keyed by the active window's command mode.
package command

import (
	"fmt"
	"strings"
	"time"

	"toxterm/internal/avatar"
	"toxterm/internal/avcall"
	"toxterm/internal/config"
	"toxterm/internal/filexfer"
	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/window"
	"toxterm/internal/window/chat"
	"toxterm/internal/window/conference"
	"toxterm/internal/window/friendlist"
	"toxterm/internal/window/group"
	"toxterm/internal/window/prompt"
)

// Tokenize splits line into argv, honoring double-quoted substrings the
// way commands.c's /add message argument does ("Message must be enclosed
// in quotes"). Unmatched leading/trailing whitespace is trimmed; an
// unterminated quote keeps everything from the opening quote to EOL as one
// token.
func Tokenize(line string) []string {
	line = strings.TrimSpace(line)
	var argv []string
	var cur strings.Builder
	inQuotes := false
	hasToken := false

	flush := func() {
		if hasToken {
			argv = append(argv, cur.String())
			cur.Reset()
			hasToken = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasToken = true
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
			hasToken = true
		}
	}
	flush()
	return argv
}

// Handler executes one command; it returns the system line to print (may
// be empty) and an error for malformed invocations.
type Handler func(ctx *Context, w *window.Window, argv []string) (string, error)

// Context carries every handle a command may need: the network layer, the
// window registry, the per-kind registries, and the ambient subsystems.
// Handlers receive it plus their own window and parsed argv, per spec
// §4.11 ("each handler receives the parsed argv, its owning window, the
// global registry handle, and the network-layer handle").
type Context struct {
	Core        network.Core
	Windows     *window.Registry
	Friends     *registry.FriendRegistry
	Blocked     *registry.BlockList
	Conferences *registry.ConferenceRegistry
	Groups      *registry.GroupRegistry
	Transfers   *filexfer.Engine
	Avatars     *avatar.Registry
	Calls       *avcall.Manager
	Config      *config.Config
	Now         func() time.Time
}

func (ctx *Context) now() time.Time {
	if ctx.Now != nil {
		return ctx.Now()
	}
	return time.Now()
}

// Table is a name -> Handler map for one command mode.
type Table map[string]Handler

// Dispatch resolves argv[0] against the table for w's mode — the global
// table merged with the mode-specific additions — and invokes it. An
// unknown command returns ok=false so the caller can print a system line
// (spec §4.11: "Unknown commands print a system line").
func Dispatch(ctx *Context, w *window.Window, line string) (output string, ok bool, err error) {
	argv := Tokenize(line)
	if len(argv) == 0 {
		return "", true, nil
	}
	name := strings.ToLower(strings.TrimPrefix(argv[0], "/"))

	table := tableFor(w.Kind)
	h, found := table[name]
	if !found {
		return "", false, nil
	}
	out, err := h(ctx, w, argv[1:])
	return out, true, err
}

// Names lists the command names (with leading slash) available in window
// kind k's mode, for the input line's tab-completion candidate set.
func Names(k window.Kind) []string {
	table := tableFor(k)
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, "/"+name)
	}
	return names
}

func tableFor(k window.Kind) Table {
	switch k {
	case window.KindFriendChat:
		return merge(globalCommands, chatCommands)
	case window.KindConference:
		return merge(globalCommands, conferenceCommands)
	case window.KindGroup:
		return merge(globalCommands, groupCommands)
	default:
		return globalCommands
	}
}

func merge(tables ...Table) Table {
	out := make(Table)
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// promptSink/friendlistSink/chatSink/conferenceSink/groupSink fetch the
// owning window's concrete Sink, for handlers that need kind-specific
// state the EventSink interface doesn't expose.
func promptSink(w *window.Window) (*prompt.Sink, bool)       { s, ok := w.Sink.(*prompt.Sink); return s, ok }
func friendlistSink(w *window.Window) (*friendlist.Sink, bool) {
	s, ok := w.Sink.(*friendlist.Sink)
	return s, ok
}
func chatSink(w *window.Window) (*chat.Sink, bool)           { s, ok := w.Sink.(*chat.Sink); return s, ok }
func conferenceSink(w *window.Window) (*conference.Sink, bool) {
	s, ok := w.Sink.(*conference.Sink)
	return s, ok
}
func groupSink(w *window.Window) (*group.Sink, bool) { s, ok := w.Sink.(*group.Sink); return s, ok }

func errArgs(usage string) error { return fmt.Errorf("invalid syntax: usage: %s", usage) }

// joinArgs rejoins tokenized words for commands whose trailing argument is
// free text (titles, topics, messages) rather than another token.
func joinArgs(argv []string) string { return strings.Join(argv, " ") }
