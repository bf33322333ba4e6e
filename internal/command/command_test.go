package command

import (
	"testing"
	"time"

	"toxterm/internal/config"
	"toxterm/internal/filexfer"
	"toxterm/internal/msgqueue"
	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
	"toxterm/internal/window"
	"toxterm/internal/window/chat"
	"toxterm/internal/window/group"
)

func fixedNow() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

func TestTokenizeSplitsOnSpaceAndHonorsQuotes(t *testing.T) {
	got := Tokenize(`/add abcd "hello there"`)
	want := []string{"/add", "abcd", "hello there"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizeTrimsSurroundingWhitespace(t *testing.T) {
	got := Tokenize("   /nick   bob  ")
	if len(got) != 2 || got[0] != "/nick" || got[1] != "bob" {
		t.Fatalf("Tokenize(%q) = %v", "   /nick   bob  ", got)
	}
}

func newTestContext(t *testing.T) (*Context, *network.Simnet) {
	t.Helper()
	sim := network.NewSimnet(network.PublicKey{})
	blocked, err := registry.LoadBlockList(t.TempDir() + "/blocklist")
	if err != nil {
		t.Fatalf("LoadBlockList: %v", err)
	}
	cfg := config.Default()
	return &Context{
		Core:        sim,
		Windows:     window.New(40, 80),
		Friends:     registry.NewFriendRegistry(),
		Blocked:     blocked,
		Conferences: registry.NewConferenceRegistry(),
		Groups:      registry.NewGroupRegistry(),
		Transfers:   filexfer.New(sim, fixedNow),
		Config:      &cfg,
		Now:         fixedNow,
	}, sim
}

func TestDispatchUnknownCommandReportsNotOK(t *testing.T) {
	ctx, _ := newTestContext(t)
	w := &window.Window{Kind: window.KindFriendList}
	_, ok, err := Dispatch(ctx, w, "/notarealcommand")
	if ok {
		t.Fatalf("expected ok=false for unknown command")
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDispatchEmptyLineIsNoop(t *testing.T) {
	ctx, _ := newTestContext(t)
	w := &window.Window{Kind: window.KindFriendList}
	out, ok, err := Dispatch(ctx, w, "   ")
	if !ok || err != nil || out != "" {
		t.Fatalf("Dispatch(empty) = %q, %v, %v", out, ok, err)
	}
}

func TestDispatchNickRunsGlobalCommandFromAnyWindow(t *testing.T) {
	ctx, _ := newTestContext(t)
	w := &window.Window{Kind: window.KindFriendList}
	_, ok, err := Dispatch(ctx, w, "/nick newname")
	if !ok || err != nil {
		t.Fatalf("Dispatch /nick: ok=%v err=%v", ok, err)
	}
}

func TestDispatchSendfileOnlyAvailableInChatWindow(t *testing.T) {
	ctx, sim := newTestContext(t)
	friend := &registry.Friend{Number: 1, Active: true, Name: "alice"}
	cs := chat.New(sim, friend, scrollback.New(50), ctx.Transfers, msgqueue.New(), nil, t.TempDir(), fixedNow)
	w := &window.Window{Kind: window.KindFriendChat, Sink: cs}

	_, ok, err := Dispatch(ctx, w, "/sendfile")
	if !ok {
		t.Fatalf("expected /sendfile to be found in a chat window")
	}
	if err == nil {
		t.Fatalf("expected usage error for /sendfile with no path")
	}

	other := &window.Window{Kind: window.KindFriendList}
	_, ok, _ = Dispatch(ctx, other, "/sendfile")
	if ok {
		t.Fatalf("expected /sendfile to be absent outside a chat window")
	}
}

func TestDispatchCJoinConsumesPendingConferenceInvite(t *testing.T) {
	ctx, sim := newTestContext(t)
	friend := &registry.Friend{Number: 1, Active: true, Name: "alice"}
	cs := chat.New(sim, friend, scrollback.New(50), ctx.Transfers, msgqueue.New(), nil, t.TempDir(), fixedNow)
	w := &window.Window{Kind: window.KindFriendChat, Num: 1, Sink: cs}
	ctx.Windows.AddWindow(w)

	if _, _, err := Dispatch(ctx, w, "/cjoin"); err == nil {
		t.Fatalf("expected /cjoin to fail with no pending invite")
	}

	dispatcher := window.NewDispatcher(ctx.Windows)
	sim.SetOnConferenceInvite(dispatcher.DispatchConferenceInvite)
	sim.InjectConferenceInvite(1, 0, network.ConferenceText, []byte("cookie"))
	if friend.PendingConferenceInvite == nil {
		t.Fatalf("expected conference invite to be stored on the friend")
	}

	_, ok, err := Dispatch(ctx, w, "/cjoin")
	if !ok || err != nil {
		t.Fatalf("Dispatch /cjoin: ok=%v err=%v", ok, err)
	}
	if friend.PendingConferenceInvite != nil {
		t.Fatalf("expected pending invite to be cleared after /cjoin")
	}
}

func TestDispatchIgnoreOnlyAvailableInGroupWindow(t *testing.T) {
	ctx, sim := newTestContext(t)
	g := &registry.Group{Number: 1, Name: "room", Peers: map[uint32]*registry.GroupPeer{
		2: {Active: true, PeerID: 2, Name: "bob"},
	}}
	gs := group.New(sim, g, scrollback.New(50), fixedNow)
	w := &window.Window{Kind: window.KindGroup, Sink: gs}

	_, ok, err := Dispatch(ctx, w, "/ignore 2")
	if !ok || err != nil {
		t.Fatalf("Dispatch /ignore 2: ok=%v err=%v", ok, err)
	}
	if !g.Peers[2].Ignored {
		t.Fatalf("expected peer 2 marked ignored")
	}

	other := &window.Window{Kind: window.KindFriendList}
	if _, ok, _ := Dispatch(ctx, other, "/ignore 2"); ok {
		t.Fatalf("expected /ignore to be absent outside a group window")
	}
}
