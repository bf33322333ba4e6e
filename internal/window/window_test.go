package window

import (
	"testing"

	"github.com/google/uuid"

	"toxterm/internal/network"
	"toxterm/internal/notify"
)

func TestAddWindowAssignsLowestFreeID(t *testing.T) {
	r := New(24, 80)
	id0, err := r.AddWindow(&Window{Kind: KindPrompt, Sink: NoopSink{}})
	if err != nil || id0 != 0 {
		t.Fatalf("expected id 0, got %d err=%v", id0, err)
	}
	id1, _ := r.AddWindow(&Window{Kind: KindFriendList, Sink: NoopSink{}})
	if id1 != 1 {
		t.Fatalf("expected id 1, got %d", id1)
	}
	r.DelWindow(id0)
	id2, _ := r.AddWindow(&Window{Kind: KindFriendChat, Num: 5, Sink: NoopSink{}})
	if id2 != 0 {
		t.Fatalf("expected reused id 0, got %d", id2)
	}
}

func TestAddWindowAssignsDistinctSessionIDs(t *testing.T) {
	r := New(24, 80)
	w0 := &Window{Kind: KindPrompt, Sink: NoopSink{}}
	w1 := &Window{Kind: KindFriendList, Sink: NoopSink{}}
	r.AddWindow(w0)
	r.AddWindow(w1)
	if w0.SessionID == (uuid.UUID{}) || w1.SessionID == (uuid.UUID{}) {
		t.Fatalf("expected both windows to get a non-zero session id")
	}
	if w0.SessionID == w1.SessionID {
		t.Fatalf("expected distinct session ids, got %s for both", w0.SessionID)
	}
	// A reused 16-bit id must not carry forward the old window's session id,
	// since log lines and test fixtures correlate on SessionID, not ID.
	r.DelWindow(w0.ID)
	w2 := &Window{Kind: KindFriendChat, Num: 5, Sink: NoopSink{}}
	r.AddWindow(w2)
	if w2.ID == w0.ID && w2.SessionID == w0.SessionID {
		t.Fatalf("reused window id should not reuse the old session id")
	}
}

func TestAddWindowRejectsTooSmallTerminal(t *testing.T) {
	r := New(2, 80)
	if _, err := r.AddWindow(&Window{Kind: KindPrompt, Sink: NoopSink{}}); err != ErrTerminalTooSmall {
		t.Fatalf("expected ErrTerminalTooSmall, got %v", err)
	}
}

func TestDelWindowJumpsToPromptFromFriendList(t *testing.T) {
	r := New(24, 80)
	r.AddWindow(&Window{Kind: KindPrompt, Sink: NoopSink{}})
	flID, _ := r.AddWindow(&Window{Kind: KindFriendList, Sink: NoopSink{}})
	chatID, _ := r.AddWindow(&Window{Kind: KindFriendChat, Num: 1, Sink: NoopSink{}})

	r.SetActiveID(flID)
	r.DelWindow(chatID)
	if r.Active().Kind != KindFriendList {
		t.Fatalf("deleting an unrelated window should not move the cursor")
	}

	r.DelWindow(flID)
	// The active friend-list window is deleted; the cursor lands on the
	// prompt.
	if r.ByID(flID) != nil {
		t.Fatalf("expected friend-list window gone")
	}
	if r.Active().Kind != KindPrompt {
		t.Fatalf("expected prompt active after deleting the active friend list")
	}

	// Deleting the active window when the friend list slides into its slot
	// jumps to the prompt instead of landing on the friend list.
	r2 := New(24, 80)
	r2.AddWindow(&Window{Kind: KindPrompt, Sink: NoopSink{}})
	chat2, _ := r2.AddWindow(&Window{Kind: KindFriendChat, Num: 1, Sink: NoopSink{}})
	r2.AddWindow(&Window{Kind: KindFriendList, Sink: NoopSink{}})
	r2.SetActiveID(chat2)
	r2.DelWindow(chat2)
	if r2.Active().Kind != KindPrompt {
		t.Fatalf("expected jump to prompt when the friend list takes the deleted slot, got kind %d", r2.Active().Kind)
	}
}

func TestActivateClearsAlertAndPending(t *testing.T) {
	r := New(24, 80)
	id, _ := r.AddWindow(&Window{Kind: KindFriendChat, Num: 1, Sink: NoopSink{}})
	w := r.ByID(id)
	w.raiseAlert(notify.AlertHigh)
	w.raiseAlert(notify.AlertLow) // should not downgrade
	if w.Alert != notify.AlertHigh || w.Pending != 2 {
		t.Fatalf("expected alert=high pending=2, got alert=%v pending=%d", w.Alert, w.Pending)
	}
	w.Activate()
	if w.Alert != notify.AlertNone || w.Pending != 0 {
		t.Fatalf("expected cleared alert/pending after activate")
	}
}

func TestDispatchFriendMessageRoutesToMatchingWindow(t *testing.T) {
	r := New(24, 80)
	sink := &recordingSink{}
	id, _ := r.AddWindow(&Window{Kind: KindFriendChat, Num: 7, Sink: sink})
	r.AddWindow(&Window{Kind: KindFriendChat, Num: 8, Sink: &recordingSink{}})
	d := NewDispatcher(r)

	d.DispatchFriendMessage(7, network.MessageNormal, "hi")
	if sink.lastMessage != "hi" {
		t.Fatalf("expected message routed to friend 7's window, got %q", sink.lastMessage)
	}
	w := r.ByID(id)
	if w.Pending == 0 {
		t.Fatalf("expected pending bumped for inactive window")
	}
}

type recordingSink struct {
	NoopSink
	lastMessage string
}

func (s *recordingSink) OnMessage(w *Window, kind network.MessageType, text string) {
	s.lastMessage = text
}
