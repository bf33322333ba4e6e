package command

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
	"toxterm/internal/window"
	"toxterm/internal/window/conference"
	"toxterm/internal/window/group"
)

// ErrExit is returned by /exit and /quit so the caller's main loop knows
// to tear down rather than print an error.
var ErrExit = fmt.Errorf("command: exit requested")

// globalCommands is available from every window mode (spec §6's prompt
// command surface).
var globalCommands = Table{
	"add":      cmdAdd,
	"accept":   cmdAccept,
	"decline":  cmdDecline,
	"requests": cmdRequests,
	"avatar":   cmdAvatar,
	"clear":    cmdClear,
	"color":    cmdColor,
	"connect":  cmdConnect,
	"exit":     cmdExit,
	"quit":     cmdExit,
	"conference": cmdConference,
	"group":    cmdGroup,
	"join":     cmdJoin,
	"log":      cmdLog,
	"myid":     cmdMyID,
	"nick":     cmdNick,
	"note":     cmdNote,
	"nospam":   cmdNospam,
	"status":   cmdStatus,
}

func cmdAdd(ctx *Context, w *window.Window, argv []string) (string, error) {
	if len(argv) < 1 {
		return "", errArgs("/add <tox-id> [message]")
	}
	id := strings.ToLower(argv[0])
	raw, err := hex.DecodeString(id)
	if err != nil || len(raw) != 38 {
		return "", fmt.Errorf("invalid Tox ID")
	}
	var addr [38]byte
	copy(addr[:], raw)
	msg := "Let's tox."
	if len(argv) > 1 {
		msg = strings.Join(argv[1:], " ")
	}
	num, err := ctx.Core.FriendAdd(addr, msg)
	if err != nil {
		return "", err
	}
	var pk network.PublicKey
	copy(pk[:], raw[:32])
	ctx.Friends.Add(&registry.Friend{PubKey: pk, Number: num, ShowConnectMsg: true})
	return fmt.Sprintf("Friend request sent (friend %d)", num), nil
}

func cmdAccept(ctx *Context, w *window.Window, argv []string) (string, error) {
	ps, ok := promptSink(w)
	if !ok {
		return "", fmt.Errorf("/accept only works on the prompt window")
	}
	idx, err := parseIndex(argv, "/accept <n>")
	if err != nil {
		return "", err
	}
	req, found := ps.Pop(idx)
	if !found {
		return "", fmt.Errorf("no pending friend request with that number")
	}
	num, err := ctx.Core.FriendAddNoRequest(req.Key)
	if err != nil {
		return "", err
	}
	ctx.Friends.Add(&registry.Friend{PubKey: req.Key, Number: num, ShowConnectMsg: true})
	return "Friend request accepted", nil
}

func cmdDecline(ctx *Context, w *window.Window, argv []string) (string, error) {
	ps, ok := promptSink(w)
	if !ok {
		return "", fmt.Errorf("/decline only works on the prompt window")
	}
	idx, err := parseIndex(argv, "/decline <n>")
	if err != nil {
		return "", err
	}
	if _, found := ps.Pop(idx); !found {
		return "", fmt.Errorf("no pending friend request with that number")
	}
	return "Friend request declined", nil
}

func cmdRequests(ctx *Context, w *window.Window, argv []string) (string, error) {
	ps, ok := promptSink(w)
	if !ok {
		return "", fmt.Errorf("/requests only works on the prompt window")
	}
	reqs := ps.Requests()
	if len(reqs) == 0 {
		return "No pending friend requests", nil
	}
	var b strings.Builder
	for i, r := range reqs {
		fmt.Fprintf(&b, "%d: %s\n", i, r.Message)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func cmdAvatar(ctx *Context, w *window.Window, argv []string) (string, error) {
	if len(argv) < 1 {
		return "", errArgs("/avatar <path>|unset")
	}
	var connected []uint32
	ctx.Friends.Each(func(f *registry.Friend) {
		if f.Conn != network.ConnNone {
			connected = append(connected, f.Number)
		}
	})
	if argv[0] == "unset" {
		if err := ctx.Avatars.Unset(connected); err != nil {
			return "", err
		}
		return "Avatar unset", nil
	}
	if err := ctx.Avatars.SetAndBroadcast(argv[0], connected); err != nil {
		return "", err
	}
	return "Avatar set", nil
}

func cmdClear(ctx *Context, w *window.Window, argv []string) (string, error) {
	// The history object itself is reached through the window's Sink in
	// each concrete kind; /clear is handled uniformly by draining whatever
	// scrollback the active window owns.
	if h, ok := historyOf(w); ok {
		h.Drain()
	}
	ctx.Windows.SetRefresh()
	return "", nil
}

func historyOf(w *window.Window) (*scrollback.History, bool) {
	switch s := w.Sink.(type) {
	case interface{ HistoryHandle() *scrollback.History }:
		return s.HistoryHandle(), true
	}
	return nil, false
}

func cmdColor(ctx *Context, w *window.Window, argv []string) (string, error) {
	if len(argv) < 1 {
		return "", errArgs("/color <0-7>")
	}
	n, err := strconv.Atoi(argv[0])
	if err != nil || n < 0 || n > 7 {
		return "", fmt.Errorf("color must be between 0 and 7")
	}
	w.TabColor = n
	return "", nil
}

func cmdConnect(ctx *Context, w *window.Window, argv []string) (string, error) {
	if len(argv) < 3 {
		return "", errArgs("/connect <ip> <port> <pubkey>")
	}
	node := fmt.Sprintf("%s:%s:%s", argv[0], argv[1], argv[2])
	if err := ctx.Core.Bootstrap(context.Background(), []string{node}); err != nil {
		return "", err
	}
	return "Bootstrapping via " + node, nil
}

func cmdExit(ctx *Context, w *window.Window, argv []string) (string, error) {
	return "", ErrExit
}

func cmdConference(ctx *Context, w *window.Window, argv []string) (string, error) {
	kind := network.ConferenceText
	if len(argv) > 0 && argv[0] == "audio" {
		kind = network.ConferenceAudio
	}
	num, err := ctx.Core.ConferenceNew(kind)
	if err != nil {
		return "", err
	}
	conf := ctx.Conferences.Add(num, kind, [32]byte{}, ctx.now())
	cs := conference.New(ctx.Core, conf, scrollback.New(ctx.Config.UI.HistorySize), ctx.Now)
	nw := &window.Window{Kind: window.KindConference, Num: num, Name: "Conference", Sink: cs}
	if _, err := ctx.Windows.AddWindow(nw); err != nil {
		return "", err
	}
	return "Conference created", nil
}

func cmdGroup(ctx *Context, w *window.Window, argv []string) (string, error) {
	name := "New group"
	if len(argv) > 0 {
		name = strings.Join(argv, " ")
	}
	num, err := ctx.Core.GroupNew(name, true)
	if err != nil {
		return "", err
	}
	g := ctx.Groups.Add(num, [32]byte{}, name)
	gs := group.New(ctx.Core, g, scrollback.New(ctx.Config.UI.HistorySize), ctx.Now)
	nw := &window.Window{Kind: window.KindGroup, Num: num, Name: name, Sink: gs}
	if _, err := ctx.Windows.AddWindow(nw); err != nil {
		return "", err
	}
	return "Group created", nil
}

func cmdJoin(ctx *Context, w *window.Window, argv []string) (string, error) {
	if len(argv) < 1 {
		return "", errArgs("/join <chat-id> [password]")
	}
	raw, err := hex.DecodeString(argv[0])
	if err != nil || len(raw) != 32 {
		return "", fmt.Errorf("invalid chat id")
	}
	var chatID [32]byte
	copy(chatID[:], raw)
	password := ""
	if len(argv) > 1 {
		password = argv[1]
	}
	num, err := ctx.Core.GroupJoin(chatID, password)
	if err != nil {
		return "", err
	}
	g := ctx.Groups.Add(num, chatID, "")
	gs := group.New(ctx.Core, g, scrollback.New(ctx.Config.UI.HistorySize), ctx.Now)
	nw := &window.Window{Kind: window.KindGroup, Num: num, Name: "Group", Sink: gs}
	if _, err := ctx.Windows.AddWindow(nw); err != nil {
		return "", err
	}
	return "Joining group", nil
}

func cmdLog(ctx *Context, w *window.Window, argv []string) (string, error) {
	cs, ok := chatSink(w)
	if !ok {
		return "", fmt.Errorf("/log only works in a chat window")
	}
	if len(argv) < 1 {
		return "", errArgs("/log <on|off>")
	}
	enabled := argv[0] == "on"
	if cs.Log != nil {
		cs.Log.SetEnabled(enabled)
	}
	return "", nil
}

func cmdMyID(ctx *Context, w *window.Window, argv []string) (string, error) {
	addr := ctx.Core.SelfAddress()
	return strings.ToUpper(hex.EncodeToString(addr[:])), nil
}

func cmdNick(ctx *Context, w *window.Window, argv []string) (string, error) {
	if len(argv) < 1 {
		return "", errArgs("/nick <name>")
	}
	name := strings.Join(argv, " ")
	if err := ctx.Core.SetSelfName(name); err != nil {
		return "", err
	}
	return "Nickname set to " + name, nil
}

func cmdNote(ctx *Context, w *window.Window, argv []string) (string, error) {
	msg := strings.Join(argv, " ")
	if err := ctx.Core.SetSelfStatusMessage(msg); err != nil {
		return "", err
	}
	return "", nil
}

func cmdNospam(ctx *Context, w *window.Window, argv []string) (string, error) {
	var n uint32
	if len(argv) > 0 {
		v, err := strconv.ParseUint(argv[0], 16, 32)
		if err != nil {
			return "", fmt.Errorf("nospam must be 8 hex digits")
		}
		n = uint32(v)
	} else {
		var b [4]byte
		if _, err := rand.Read(b[:]); err != nil {
			return "", fmt.Errorf("nospam: %w", err)
		}
		n = binary.BigEndian.Uint32(b[:])
	}
	ctx.Core.SetNospam(n)
	addr := ctx.Core.SelfAddress()
	return fmt.Sprintf("Nospam set to %08X; your Tox ID is %s", n, strings.ToUpper(hex.EncodeToString(addr[:]))), nil
}

func cmdStatus(ctx *Context, w *window.Window, argv []string) (string, error) {
	if len(argv) < 1 {
		return "", errArgs("/status <online|away|busy>")
	}
	var status network.UserStatus
	switch argv[0] {
	case "online":
		status = network.StatusNone
	case "away":
		status = network.StatusAway
	case "busy":
		status = network.StatusBusy
	default:
		return "", fmt.Errorf("unknown status %q", argv[0])
	}
	ctx.Core.SetSelfStatus(status)
	return "", nil
}

func parseIndex(argv []string, usage string) (int, error) {
	if len(argv) < 1 {
		return 0, errArgs(usage)
	}
	n, err := strconv.Atoi(argv[0])
	if err != nil {
		return 0, errArgs(usage)
	}
	return n, nil
}
