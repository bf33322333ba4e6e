package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"toxterm/internal/network"
	"toxterm/internal/scrollback"
	"toxterm/internal/window"
	"toxterm/internal/window/conference"
	"toxterm/internal/window/group"
)

// chatCommands extends the global table inside a friend-chat window (spec
// §6: "chat adds: /autoaccept /cancel /cinvite /cjoin /gaccept /invite
// /savefile /sendfile").
var chatCommands = Table{
	"autoaccept": cmdAutoAccept,
	"cancel":     cmdCancel,
	"cinvite":    cmdCInvite,
	"cjoin":      cmdCJoin,
	"gaccept":    cmdGAccept,
	"invite":     cmdInviteCall,
	"savefile":   cmdSavefile,
	"sendfile":   cmdSendfile,
}

func cmdAutoAccept(ctx *Context, w *window.Window, argv []string) (string, error) {
	cs, _ := chatSink(w)
	if len(argv) < 1 {
		cs.Friend.AutoAccept = !cs.Friend.AutoAccept
	} else {
		cs.Friend.AutoAccept = argv[0] == "on"
	}
	if cs.Friend.AutoAccept {
		return "Auto-accepting file transfers from " + cs.Friend.Name, nil
	}
	return "No longer auto-accepting file transfers from " + cs.Friend.Name, nil
}

func cmdCancel(ctx *Context, w *window.Window, argv []string) (string, error) {
	cs, ok := chatSink(w)
	if !ok {
		return "", fmt.Errorf("/cancel only works in a chat window")
	}
	slot, err := parseIndex(argv, "/cancel <slot> [send|recv]")
	if err != nil {
		return "", err
	}
	dir := network.TransferSend
	if len(argv) > 1 && argv[1] == "recv" {
		dir = network.TransferRecv
	}
	if err := ctx.Transfers.Cancel(cs.Friend.Number, dir, slot); err != nil {
		return "", err
	}
	return "Transfer cancelled", nil
}

func cmdCInvite(ctx *Context, w *window.Window, argv []string) (string, error) {
	cs, ok := chatSink(w)
	if !ok {
		return "", fmt.Errorf("/cinvite only works in a chat window")
	}
	if len(argv) < 1 {
		return "", errArgs("/cinvite <conference-number>")
	}
	n, err := strconv.Atoi(argv[0])
	if err != nil {
		return "", errArgs("/cinvite <conference-number>")
	}
	if err := ctx.Core.ConferenceInvite(cs.Friend.Number, uint32(n)); err != nil {
		return "", err
	}
	return "Conference invite sent", nil
}

func cmdCJoin(ctx *Context, w *window.Window, argv []string) (string, error) {
	cs, ok := chatSink(w)
	if !ok {
		return "", fmt.Errorf("/cjoin only works in a chat window")
	}
	inv := cs.Friend.PendingConferenceInvite
	if inv == nil {
		return "", fmt.Errorf("no pending conference invite to join")
	}
	num, err := ctx.Core.ConferenceJoin(cs.Friend.Number, inv.Cookie)
	if err != nil {
		return "", err
	}
	cs.Friend.PendingConferenceInvite = nil
	conf := ctx.Conferences.Add(num, inv.Kind, [32]byte{}, ctx.now())
	sink := conference.New(ctx.Core, conf, scrollback.New(ctx.Config.UI.HistorySize), ctx.Now)
	nw := &window.Window{Kind: window.KindConference, Num: num, Name: "Conference", Sink: sink}
	if _, err := ctx.Windows.AddWindow(nw); err != nil {
		return "", err
	}
	return "Joined conference", nil
}

func cmdGAccept(ctx *Context, w *window.Window, argv []string) (string, error) {
	cs, ok := chatSink(w)
	if !ok {
		return "", fmt.Errorf("/gaccept only works in a chat window")
	}
	inv := cs.Friend.PendingGroupInvite
	if inv == nil {
		return "", fmt.Errorf("no pending group invite to accept")
	}
	num, err := ctx.Core.GroupJoin(inv.ChatID, inv.Password)
	if err != nil {
		return "", err
	}
	cs.Friend.PendingGroupInvite = nil
	g := ctx.Groups.Add(num, inv.ChatID, "")
	sink := group.New(ctx.Core, g, scrollback.New(ctx.Config.UI.HistorySize), ctx.Now)
	nw := &window.Window{Kind: window.KindGroup, Num: num, Name: "Group", Sink: sink}
	if _, err := ctx.Windows.AddWindow(nw); err != nil {
		return "", err
	}
	return "Joined group", nil
}

func cmdInviteCall(ctx *Context, w *window.Window, argv []string) (string, error) {
	cs, ok := chatSink(w)
	if !ok {
		return "", fmt.Errorf("/invite only works in a chat window")
	}
	if err := ctx.Calls.Invite(cs.Friend.Number, 48000, 0); err != nil {
		return "", err
	}
	return "Calling " + cs.Friend.Name, nil
}

func cmdSavefile(ctx *Context, w *window.Window, argv []string) (string, error) {
	cs, ok := chatSink(w)
	if !ok {
		return "", fmt.Errorf("/savefile only works in a chat window")
	}
	slot, err := parseIndex(argv, "/savefile <slot>")
	if err != nil {
		return "", err
	}
	if err := ctx.Transfers.Savefile(cs.Friend.Number, slot); err != nil {
		return "", err
	}
	return "Saving file", nil
}

func cmdSendfile(ctx *Context, w *window.Window, argv []string) (string, error) {
	cs, ok := chatSink(w)
	if !ok {
		return "", fmt.Errorf("/sendfile only works in a chat window")
	}
	if len(argv) < 1 {
		return "", errArgs("/sendfile <path>")
	}
	path := strings.Join(argv, " ")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("cannot read %s: %w", filepath.Base(path), err)
	}
	connected := cs.Friend.Conn != network.ConnNone
	slot, queued, err := ctx.Transfers.SendFile(cs.Friend.Number, path, connected)
	if err != nil {
		return "", err
	}
	if queued {
		return "Queued " + filepath.Base(path) + " for when " + cs.Friend.Name + " comes online", nil
	}
	return fmt.Sprintf("Sending %s (slot %d)", filepath.Base(path), slot), nil
}
