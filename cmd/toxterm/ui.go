package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"toxterm/internal/autocomplete"
	"toxterm/internal/command"
	"toxterm/internal/inputline"
	"toxterm/internal/msgqueue"
	"toxterm/internal/network"
	"toxterm/internal/notify"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
	"toxterm/internal/term"
	"toxterm/internal/window"
	"toxterm/internal/window/chat"
	"toxterm/internal/window/conference"
	"toxterm/internal/window/friendlist"
	"toxterm/internal/window/group"
)

// timestampIndent is the left margin every continuation row of a wrapped
// scrollback line is padded by, matching the width of a "[HH:MM:SS] " or
// "name: " prefix closely enough for the common case.
const timestampIndent = 11

// runEventLoop polls terminal events until ctx is cancelled or a command
// requests exit, redrawing whenever the window registry's refresh flag is
// set (spec's draw loop runs only when refresh is set, not on every tick).
func (a *app) runEventLoop(ctx context.Context) {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if !a.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			a.drainHistories()
		}
		if a.windows.ConsumeRefresh() {
			a.draw()
		}
	}
}

// handleEvent dispatches one tcell event; it returns false when the user
// has asked to quit.
func (a *app) handleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventResize:
		a.onResize()
		return true
	case *tcell.EventKey:
		return a.handleKey(e)
	}
	return true
}

func (a *app) onResize() {
	rows, cols := a.screen.Size()
	a.windows.Resize(rows, cols)
	_, history, _ := a.screen.Layout()
	for _, w := range a.windows.All() {
		if h, ok := historyOf(w); ok && !h.ScrollPaused() {
			h.ResetStart(history.H)
		}
	}
	a.windows.SetRefresh()
}

// handleKey applies the configured key bindings, then falls back to
// friend-list navigation or generic line editing, in that priority order.
// It returns false when the user has asked to quit (Ctrl+C or /exit).
func (a *app) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return false
	}

	w := a.windows.Active()
	if w == nil {
		return true
	}

	switch {
	case matchesBinding(ev, a.cfg.Keys.NextTab):
		a.windows.NextActive()
		return true
	case matchesBinding(ev, a.cfg.Keys.PrevTab):
		a.windows.PrevActive()
		return true
	case matchesBinding(ev, a.cfg.Keys.ReloadConfig):
		a.reloadConfig(a.configPathOverride)
		return true
	case matchesBinding(ev, a.cfg.Keys.TogglePaste):
		a.inputFor(w).TogglePasteMode()
		a.windows.SetRefresh()
		return true
	case matchesBinding(ev, a.cfg.Keys.TogglePeerlist):
		w.ShowPeerList = !w.ShowPeerList
		a.windows.SetRefresh()
		return true
	case ev.Key() == tcell.KeyCtrlX:
		a.closeActiveWindow()
		return true
	}

	if w.Kind == window.KindFriendList && a.handleFriendListKey(w, ev) {
		return true
	}

	_, history, _ := a.screen.Layout()
	if h, ok := historyOf(w); ok {
		switch {
		case matchesBinding(ev, a.cfg.Keys.ScrollUp):
			h.OnKey(scrollback.NavLineUp, history.H)
			a.windows.SetRefresh()
			return true
		case matchesBinding(ev, a.cfg.Keys.ScrollDown):
			h.OnKey(scrollback.NavLineDown, history.H)
			a.windows.SetRefresh()
			return true
		case matchesBinding(ev, a.cfg.Keys.HalfPageUp):
			h.OnKey(scrollback.NavHalfPageUp, history.H)
			a.windows.SetRefresh()
			return true
		case matchesBinding(ev, a.cfg.Keys.HalfPageDown):
			h.OnKey(scrollback.NavHalfPageDown, history.H)
			a.windows.SetRefresh()
			return true
		case matchesBinding(ev, a.cfg.Keys.PageBottom):
			h.OnKey(scrollback.NavJumpBottom, history.H)
			a.windows.SetRefresh()
			return true
		}
	}

	return a.editLine(w, ev)
}

func (a *app) editLine(w *window.Window, ev *tcell.EventKey) bool {
	buf := a.inputFor(w)
	switch ev.Key() {
	case tcell.KeyEnter:
		return a.submitLine(w, buf)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		buf.Backspace()
	case tcell.KeyDelete:
		buf.Delete()
	case tcell.KeyLeft:
		buf.Left()
	case tcell.KeyRight:
		buf.Right()
	case tcell.KeyCtrlLeft:
		buf.WordLeft()
	case tcell.KeyCtrlRight:
		buf.WordRight()
	case tcell.KeyHome, tcell.KeyCtrlA:
		buf.MoveHome()
	case tcell.KeyEnd, tcell.KeyCtrlE:
		buf.MoveEnd()
	case tcell.KeyCtrlK:
		buf.Kill()
	case tcell.KeyCtrlY:
		buf.Yank()
	case tcell.KeyCtrlW:
		buf.DeletePrevWord()
	case tcell.KeyCtrlU:
		buf.DeleteToStart()
	case tcell.KeyUp:
		buf.HistoryUp()
	case tcell.KeyDown:
		buf.HistoryDown()
	case tcell.KeyTab:
		a.completeInput(w, buf)
	case tcell.KeyRune:
		buf.Insert(ev.Rune())
	default:
		return true
	}
	a.windows.SetRefresh()
	return true
}

// handleFriendListKey repurposes the arrow keys for list navigation in the
// friend-list window (spec §4.2): up/down move the highlighted row,
// left/right toggle between the online list and the block list, and enter
// opens (or lazily creates) the highlighted friend's chat window. Any other
// key falls through to the ordinary input line so /add, /accept, and the
// rest of the global command set still work from this window.
func (a *app) handleFriendListKey(w *window.Window, ev *tcell.EventKey) bool {
	fs, ok := w.Sink.(*friendlist.Sink)
	if !ok {
		return false
	}
	switch ev.Key() {
	case tcell.KeyUp:
		fs.Up()
	case tcell.KeyDown:
		fs.Down()
	case tcell.KeyLeft, tcell.KeyRight:
		fs.ToggleMode()
	case tcell.KeyEnter:
		a.openHighlightedChat(fs)
	default:
		return false
	}
	a.windows.SetRefresh()
	return true
}

func (a *app) openHighlightedChat(fs *friendlist.Sink) {
	num, ok := fs.HighlightedFriend()
	if !ok {
		return
	}
	if existing := a.windows.ByNum(window.KindFriendChat, num); existing != nil {
		a.windows.SetActiveID(existing.ID)
		return
	}
	f := a.friends.Get(num)
	if f == nil {
		return
	}
	history := scrollback.New(a.cfg.UI.HistorySize)
	sink := chat.New(a.core, f, history, a.transfers, msgqueue.New(), nil, downloadDir(a.cfg.UI.DownloadPath), a.now)
	id, err := a.windows.AddWindow(&window.Window{Kind: window.KindFriendChat, Num: num, Name: f.Name, Sink: sink})
	if err != nil {
		log.Printf("[ui] open chat with %s: %v", f.Name, err)
		return
	}
	a.windows.SetActiveID(id)
}

func (a *app) closeActiveWindow() {
	w := a.windows.Active()
	if w == nil || w.Kind == window.KindPrompt || w.Kind == window.KindFriendList {
		return
	}
	delete(a.inputs, w.ID)
	a.windows.DelWindow(w.ID)
}

// submitLine runs the Enter-key pipeline: blocked-word suppression leaves
// the buffer untouched, a leading '/' line dispatches as a command, and
// anything else is sent as a message to whatever the active window is
// capable of sending to.
func (a *app) submitLine(w *window.Window, buf *inputline.Buffer) bool {
	raw, isCommand, sent := buf.Submit(a.lineBlocked)
	if !sent {
		a.systemLine(w, "Message blocked: contains a blocked word")
		return true
	}
	if raw == "" {
		return true
	}
	if isCommand {
		return a.runCommand(w, raw)
	}
	a.sendMessage(w, network.MessageNormal, raw)
	return true
}

func (a *app) lineBlocked(line string) bool {
	for _, word := range a.cfg.BlockedWords {
		if word != "" && strings.Contains(line, word) {
			return true
		}
	}
	return false
}

// runCommand special-cases "/me <text>" as an action-message send (the
// network layer's MessageAction kind already exists end to end in
// chat.Sink.SendMessage and the conference/group send paths; nothing in
// the command table reached it) before falling through to the ordinary
// command dispatcher.
func (a *app) runCommand(w *window.Window, line string) bool {
	if text, ok := actionMessageText(line); ok {
		a.sendMessage(w, network.MessageAction, text)
		return true
	}

	out, found, err := command.Dispatch(a.cmdCtx, w, line)
	if err == command.ErrExit {
		return false
	}
	switch {
	case !found:
		a.systemLine(w, "Unknown command: "+line)
	case err != nil:
		a.systemLine(w, err.Error())
	case out != "":
		a.systemLine(w, out)
	}
	return true
}

func actionMessageText(line string) (string, bool) {
	const prefix = "/me"
	if line == prefix {
		return "", true
	}
	if strings.HasPrefix(line, prefix+" ") {
		return strings.TrimSpace(line[len(prefix):]), true
	}
	return "", false
}

// sendMessage routes an outgoing message to whichever per-kind send path
// the active window supports; conference and group windows have no
// SendMessage-style Sink method, so the local echo line is appended here
// the same way command.cmdClear locates a window's scrollback.
func (a *app) sendMessage(w *window.Window, kind network.MessageType, text string) {
	if text == "" {
		return
	}
	switch s := w.Sink.(type) {
	case *chat.Sink:
		if err := s.SendMessage(kind, text); err != nil {
			a.systemLine(w, err.Error())
		}
	case *conference.Sink:
		if err := s.Core.ConferenceSendMessage(s.Conference.ID, kind, text); err != nil {
			a.systemLine(w, err.Error())
			return
		}
		s.History.Add(a.now(), echoLineType(kind), scrollback.Attr{}, "", "", "%s", text)
	case *group.Sink:
		if err := s.Core.GroupSendMessage(s.Group.Number, kind, text); err != nil {
			a.systemLine(w, err.Error())
			return
		}
		s.History.Add(a.now(), echoLineType(kind), scrollback.Attr{}, "", "", "%s", text)
	default:
		a.systemLine(w, "Cannot send messages in this window")
	}
}

func echoLineType(kind network.MessageType) scrollback.LineType {
	if kind == network.MessageAction {
		return scrollback.LineAction
	}
	return scrollback.LineOutgoing
}

func (a *app) systemLine(w *window.Window, text string) {
	if h, ok := historyOf(w); ok {
		h.Add(a.now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "%s", text)
	}
	a.windows.SetRefresh()
}

func historyOf(w *window.Window) (*scrollback.History, bool) {
	switch s := w.Sink.(type) {
	case interface{ HistoryHandle() *scrollback.History }:
		return s.HistoryHandle(), true
	default:
		_ = s
		return nil, false
	}
}

func (a *app) inputFor(w *window.Window) *inputline.Buffer {
	if buf, ok := a.inputs[w.ID]; ok {
		return buf
	}
	buf := inputline.New(0)
	a.inputs[w.ID] = buf
	return buf
}

// completeInput runs the Tab-completion algorithm from the input line's
// current cursor: a command's own argument completes against the
// filesystem when the command is listed in autocomplete.PathCommands,
// otherwise against peer names (mid-line) or command names (line start).
func (a *app) completeInput(w *window.Window, buf *inputline.Buffer) {
	line := buf.String()
	cursor := buf.Cursor()
	argv := command.Tokenize(line)

	if len(argv) > 0 && strings.HasPrefix(argv[0], "/") {
		name := strings.ToLower(argv[0])
		if len(argv) > 1 && autocomplete.PathCommands[name] {
			a.applyCompletion(w, buf, autocomplete.CompletePath(line, cursor))
			return
		}
	}

	atStart := len(argv) <= 1
	var candidates []string
	if atStart {
		candidates = command.Names(w.Kind)
	} else {
		candidates = a.peerNames(w)
	}
	a.applyCompletion(w, buf, autocomplete.Complete(line, cursor, candidates, atStart, atStart))
}

func (a *app) applyCompletion(w *window.Window, buf *inputline.Buffer, res autocomplete.Result) {
	if res.Replaced {
		buf.SetText(res.NewLine)
	}
	if len(res.Candidates) > 1 {
		a.systemLine(w, strings.Join(res.Candidates, "  "))
	} else {
		a.windows.SetRefresh()
	}
}

func (a *app) peerNames(w *window.Window) []string {
	var names []string
	switch s := w.Sink.(type) {
	case *conference.Sink:
		for _, p := range s.Conference.Peers {
			if p != nil && p.Active {
				names = append(names, p.Name)
			}
		}
	case *group.Sink:
		for _, p := range s.Group.Peers {
			if p.Active {
				names = append(names, p.Name)
			}
		}
	default:
		a.friends.Each(func(f *registry.Friend) { names = append(names, f.Name) })
	}
	return names
}

func downloadDir(configured string) string {
	if configured != "" {
		return configured
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Downloads")
	}
	return "."
}

// matchesBinding reports whether ev matches a config key-binding string
// like "ctrl+down", "page up", or "ctrl+f". Ctrl+letter arrives from tcell
// as its own control-code key rather than a rune event with a modifier bit,
// so the letter case resolves to that control code directly; everything
// else compares the named key plus whatever modifier bits were requested.
func matchesBinding(ev *tcell.EventKey, binding string) bool {
	key, mod, r := parseBinding(binding)
	if r != 0 {
		return ev.Key() == tcell.KeyRune && ev.Rune() == r && ev.Modifiers()&mod == mod
	}
	if mod != 0 {
		return ev.Key() == key && ev.Modifiers()&mod == mod
	}
	return ev.Key() == key
}

func parseBinding(s string) (key tcell.Key, mod tcell.ModMask, r rune) {
	switch s {
	case "page up":
		return tcell.KeyPgUp, 0, 0
	case "page down":
		return tcell.KeyPgDn, 0, 0
	}

	parts := strings.Split(s, "+")
	base := parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl":
			mod |= tcell.ModCtrl
		case "alt":
			mod |= tcell.ModAlt
		case "shift":
			mod |= tcell.ModShift
		}
	}

	switch base {
	case "up":
		return tcell.KeyUp, mod, 0
	case "down":
		return tcell.KeyDown, mod, 0
	case "left":
		return tcell.KeyLeft, mod, 0
	case "right":
		return tcell.KeyRight, mod, 0
	case "tab":
		return tcell.KeyTab, mod, 0
	}

	if len(base) == 1 {
		ch := rune(base[0])
		if mod&tcell.ModCtrl != 0 {
			return tcell.Key(unicode.ToLower(ch) - 'a' + 1), 0, 0
		}
		return 0, mod, ch
	}
	return 0, mod, 0
}

// draw repaints the status bar, the active window's content, and the input
// line, then flushes the frame.
func (a *app) draw() {
	a.drainHistories()
	status, history, input := a.screen.Layout()
	a.screen.Clear()
	a.drawStatusBar(status)
	a.drawContent(history)
	a.drawInput(input)
	a.screen.Show()
}

// drainHistories flushes every window's queued scrollback entries into
// their linked lists; History.Add only enqueues, so something has to call
// Print (here, in a loop until the queue is empty) or new lines never become visible.
func (a *app) drainHistories() {
	dirty := false
	for _, w := range a.windows.All() {
		if h, ok := historyOf(w); ok {
			for h.Print() {
				dirty = true
			}
		}
	}
	if dirty {
		a.windows.SetRefresh()
	}
}

func (a *app) drawStatusBar(r term.Region) {
	x := 0
	active := a.windows.Active()
	for _, w := range a.windows.All() {
		label := " " + tabLabel(w) + " "
		style := a.screen.Style(term.ColorStatusBar)
		switch {
		case w == active:
			style = a.screen.Style(term.ColorTabActive)
		case w.Alert == notify.AlertHigh:
			style = a.screen.Style(term.ColorTabAlertHigh)
		case w.Alert == notify.AlertMedium:
			style = a.screen.Style(term.ColorTabAlertMedium)
		case w.Alert == notify.AlertLow:
			style = a.screen.Style(term.ColorTabAlertLow)
		}
		a.screen.PutStr(r, x, 0, label, style)
		x += len(label)
	}
}

func tabLabel(w *window.Window) string {
	name := w.Name
	if name == "" {
		name = kindName(w.Kind)
	}
	if w.Pending > 0 {
		return fmt.Sprintf("%s(%d)", name, w.Pending)
	}
	return name
}

func kindName(k window.Kind) string {
	switch k {
	case window.KindPrompt:
		return "prompt"
	case window.KindFriendList:
		return "friends"
	case window.KindFriendChat:
		return "chat"
	case window.KindConference:
		return "conference"
	case window.KindGroup:
		return "group"
	case window.KindHelp:
		return "help"
	default:
		return "window"
	}
}

func (a *app) drawContent(r term.Region) {
	w := a.windows.Active()
	if w == nil {
		return
	}
	if w.Kind == window.KindFriendList {
		a.drawFriendList(w, r)
		return
	}
	a.drawHistory(w, r)
}

func (a *app) drawHistory(w *window.Window, r term.Region) {
	h, ok := historyOf(w)
	if !ok {
		return
	}
	y := 0
	for _, l := range h.Visible() {
		if y >= r.H {
			break
		}
		rows := l.FormatLinesFor(timestampIndent, r.W)
		prefix := formatLinePrefix(l)
		style := lineStyle(a.screen, l.Type)
		for i, row := range rows {
			if y >= r.H {
				break
			}
			text := row
			if i == 0 {
				text = prefix + row
			} else {
				text = strings.Repeat(" ", timestampIndent) + row
			}
			a.screen.PutStr(r, 0, y, text, style)
			y++
		}
	}
}

func formatLinePrefix(l *scrollback.Line) string {
	ts := ""
	if l.Timestamp != "" {
		ts = "[" + l.Timestamp + "] "
	}
	switch l.Type {
	case scrollback.LineAction:
		return fmt.Sprintf("%s* %s ", ts, l.Name1)
	case scrollback.LineIncoming, scrollback.LinePrivateIncoming:
		return fmt.Sprintf("%s%s: ", ts, l.Name1)
	case scrollback.LineOutgoing, scrollback.LinePrivateOutgoing:
		return ts + "You: "
	default:
		return ts
	}
}

func lineStyle(s *term.Screen, t scrollback.LineType) tcell.Style {
	switch t {
	case scrollback.LineOutgoing, scrollback.LinePrivateOutgoing:
		return s.Style(term.ColorOutgoing)
	case scrollback.LineAction:
		return s.Style(term.ColorAction)
	case scrollback.LineSystem, scrollback.LineConnection, scrollback.LineDisconnection, scrollback.LineNameChange:
		return s.Style(term.ColorSystem)
	default:
		return s.Style(term.ColorIncoming)
	}
}

func (a *app) drawFriendList(w *window.Window, r term.Region) {
	fs, ok := w.Sink.(*friendlist.Sink)
	if !ok {
		return
	}
	y := 0
	if fs.Mode == friendlist.ModeBlocked {
		for i, e := range fs.Blocked.Entries() {
			if y >= r.H {
				return
			}
			a.screen.PutStr(r, 0, y, e.Name, rowStyle(a.screen, i == fs.Highlight))
			y++
		}
		return
	}
	for i, num := range fs.Friends.SortedIndex() {
		if y >= r.H {
			return
		}
		f := fs.Friends.Get(num)
		if f == nil {
			continue
		}
		line := f.Name
		if f.StatusMsg != "" {
			line += " - " + f.StatusMsg
		}
		a.screen.PutStr(r, 0, y, line, rowStyle(a.screen, i == fs.Highlight))
		y++
	}
}

func rowStyle(s *term.Screen, highlighted bool) tcell.Style {
	if highlighted {
		return s.Style(term.ColorStatusBar)
	}
	return s.Style(term.ColorDefault)
}

func (a *app) drawInput(r term.Region) {
	w := a.windows.Active()
	if w == nil {
		return
	}
	buf := a.inputFor(w)
	prefix := "> "
	if buf.PasteMode() {
		prefix = "¶ "
	}
	a.screen.PutStr(r, 0, 0, prefix+buf.String(), a.screen.Style(term.ColorDefault))
	a.screen.ShowCursor(r.X+len(prefix)+buf.Cursor(), r.Y)
}
