package command

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"toxterm/internal/network"
	"toxterm/internal/window"
)

// groupCommands extends the global table inside a decentralized-group
// window (spec §6: "group adds: /chatid /disconnect /ignore /unignore
// /kick /list /locktopic /mod /passwd /peerlimit /privacy /rejoin /silence
// /topic /unmod /unsilence /voice /whisper /whois").
var groupCommands = Table{
	"chatid":     cmdChatID,
	"disconnect": cmdGroupDisconnect,
	"ignore":     cmdIgnore,
	"unignore":   cmdUnignore,
	"kick":       cmdKick,
	"list":       cmdGroupList,
	"locktopic":  cmdLockTopic,
	"mod":        cmdMod,
	"unmod":      cmdUnmod,
	"passwd":     cmdPasswd,
	"peerlimit":  cmdPeerLimit,
	"privacy":    cmdPrivacy,
	"rejoin":     cmdRejoin,
	"silence":    cmdSilence,
	"unsilence":  cmdUnsilence,
	"topic":      cmdTopic,
	"voice":      cmdVoice,
	"whisper":    cmdWhisper,
	"whois":      cmdWhois,
}

func cmdChatID(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/chatid only works in a group window")
	}
	return hex.EncodeToString(gs.Group.ChatID[:]), nil
}

func cmdGroupDisconnect(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/disconnect only works in a group window")
	}
	if err := ctx.Core.GroupLeave(gs.Group.Number, "disconnected"); err != nil {
		return "", err
	}
	return "Disconnected from group", nil
}

func cmdIgnore(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/ignore only works in a group window")
	}
	peerID, err := peerIDArg(argv, "/ignore <peer-id>")
	if err != nil {
		return "", err
	}
	if err := gs.Ignore(peerID, true); err != nil {
		return "", err
	}
	return "Ignoring peer", nil
}

func cmdUnignore(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/unignore only works in a group window")
	}
	peerID, err := peerIDArg(argv, "/unignore <peer-id>")
	if err != nil {
		return "", err
	}
	if err := gs.Ignore(peerID, false); err != nil {
		return "", err
	}
	return "No longer ignoring peer", nil
}

func cmdKick(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/kick only works in a group window")
	}
	peerID, err := peerIDArg(argv, "/kick <peer-id>")
	if err != nil {
		return "", err
	}
	if err := gs.Kick(peerID); err != nil {
		return "", err
	}
	return "Kicked peer", nil
}

func cmdGroupList(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/list only works in a group window")
	}
	out := ""
	for id, p := range gs.Group.Peers {
		if p == nil {
			continue
		}
		out += fmt.Sprintf("%d: %s (%s)\n", id, p.Name, roleName(p.Role))
	}
	if out == "" {
		return "No peers", nil
	}
	return out, nil
}

func cmdLockTopic(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/locktopic only works in a group window")
	}
	locked := true
	if len(argv) > 0 {
		locked = argv[0] != "off"
	}
	if err := ctx.Core.GroupSetTopicLock(gs.Group.Number, locked); err != nil {
		return "", err
	}
	return "Topic lock updated", nil
}

func cmdMod(ctx *Context, w *window.Window, argv []string) (string, error) {
	return setRole(ctx, w, argv, network.RoleModerator, "/mod <peer-id>")
}

func cmdUnmod(ctx *Context, w *window.Window, argv []string) (string, error) {
	return setRole(ctx, w, argv, network.RoleUser, "/unmod <peer-id>")
}

func setRole(ctx *Context, w *window.Window, argv []string, role network.GroupRole, usage string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("%s only works in a group window", usage)
	}
	peerID, err := peerIDArg(argv, usage)
	if err != nil {
		return "", err
	}
	if err := ctx.Core.GroupModSet(gs.Group.Number, peerID, role); err != nil {
		return "", err
	}
	return "Role updated", nil
}

func cmdPasswd(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/passwd only works in a group window")
	}
	password := ""
	if len(argv) > 0 {
		password = joinArgs(argv)
	}
	if err := ctx.Core.GroupSetPassword(gs.Group.Number, password); err != nil {
		return "", err
	}
	if password == "" {
		return "Password removed", nil
	}
	return "Password set", nil
}

func cmdPeerLimit(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/peerlimit only works in a group window")
	}
	if len(argv) < 1 {
		return "", errArgs("/peerlimit <n>")
	}
	n, err := strconv.Atoi(argv[0])
	if err != nil || n < 0 {
		return "", errArgs("/peerlimit <n>")
	}
	if err := ctx.Core.GroupSetPeerLimit(gs.Group.Number, uint32(n)); err != nil {
		return "", err
	}
	return "Peer limit updated", nil
}

func cmdPrivacy(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/privacy only works in a group window")
	}
	if len(argv) < 1 {
		return "", errArgs("/privacy <public|private>")
	}
	public := argv[0] == "public"
	if err := ctx.Core.GroupSetPrivacyState(gs.Group.Number, public); err != nil {
		return "", err
	}
	return "Privacy state updated", nil
}

func cmdRejoin(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/rejoin only works in a group window")
	}
	if _, err := ctx.Core.GroupJoin(gs.Group.ChatID, ""); err != nil {
		return "", err
	}
	return "Rejoining group", nil
}

func cmdSilence(ctx *Context, w *window.Window, argv []string) (string, error) {
	return setRole(ctx, w, argv, network.RoleObserver, "/silence <peer-id>")
}

func cmdUnsilence(ctx *Context, w *window.Window, argv []string) (string, error) {
	return setRole(ctx, w, argv, network.RoleUser, "/unsilence <peer-id>")
}

func cmdTopic(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/topic only works in a group window")
	}
	if len(argv) < 1 {
		return "Topic unchanged", nil
	}
	topic := joinArgs(argv)
	if err := ctx.Core.GroupSetTopic(gs.Group.Number, topic); err != nil {
		return "", err
	}
	return "Topic set", nil
}

func cmdVoice(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/voice only works in a group window")
	}
	if len(argv) < 1 {
		return "", errArgs("/voice <everyone|mods>")
	}
	everyone := argv[0] == "everyone"
	if err := ctx.Core.GroupSetVoiceState(gs.Group.Number, everyone); err != nil {
		return "", err
	}
	return "Voice state updated", nil
}

func cmdWhisper(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/whisper only works in a group window")
	}
	if len(argv) < 2 {
		return "", errArgs("/whisper <peer-id> <message>")
	}
	peerID, err := peerIDArg(argv[:1], "/whisper <peer-id> <message>")
	if err != nil {
		return "", err
	}
	if err := gs.SendPrivateMessage(peerID, joinArgs(argv[1:])); err != nil {
		return "", err
	}
	return "", nil
}

func cmdWhois(ctx *Context, w *window.Window, argv []string) (string, error) {
	gs, ok := groupSink(w)
	if !ok {
		return "", fmt.Errorf("/whois only works in a group window")
	}
	peerID, err := peerIDArg(argv, "/whois <peer-id>")
	if err != nil {
		return "", err
	}
	p := gs.Group.Peers[peerID]
	if p == nil {
		return "", fmt.Errorf("no such peer")
	}
	return fmt.Sprintf("%s: %s, role %s, ignored=%v", p.Name, hex.EncodeToString(p.PubKey[:]), roleName(p.Role), p.Ignored), nil
}

func roleName(role network.GroupRole) string {
	switch role {
	case network.RoleFounder:
		return "founder"
	case network.RoleModerator:
		return "moderator"
	case network.RoleObserver:
		return "observer"
	default:
		return "user"
	}
}

func peerIDArg(argv []string, usage string) (uint32, error) {
	if len(argv) < 1 {
		return 0, errArgs(usage)
	}
	n, err := strconv.Atoi(argv[0])
	if err != nil || n < 0 {
		return 0, errArgs(usage)
	}
	return uint32(n), nil
}
