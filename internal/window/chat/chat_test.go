package chat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"toxterm/internal/convlog"
	"toxterm/internal/filexfer"
	"toxterm/internal/msgqueue"
	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
)

func fixedNow() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

func newSink(t *testing.T) (*Sink, *network.Simnet, *registry.Friend) {
	t.Helper()
	sim := network.NewSimnet(network.PublicKey{})
	friend := &registry.Friend{Number: 3, Active: true, Name: "alice"}
	hist := scrollback.New(100)
	xfer := filexfer.New(sim, fixedNow)
	q := msgqueue.New()
	dir := t.TempDir()
	return New(sim, friend, hist, xfer, q, nil, dir, fixedNow), sim, friend
}

func TestSendMessageEnqueuesAndRecords(t *testing.T) {
	s, sim, friend := newSink(t)
	if err := s.SendMessage(network.MessageNormal, "hi there"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if s.Queue.Len() != 1 {
		t.Fatalf("expected 1 queued entry, got %d", s.Queue.Len())
	}
	sent := sim.SentMessages()
	if len(sent) != 1 || sent[0].FriendNumber != friend.Number || sent[0].Text != "hi there" {
		t.Fatalf("unexpected sent messages: %+v", sent)
	}
}

func TestOnReadReceiptClearsNoread(t *testing.T) {
	s, sim, _ := newSink(t)
	s.SendMessage(network.MessageNormal, "hi")
	receipt := sim.SentMessages()[0].Receipt

	s.OnReadReceipt(nil, receipt)
	if s.Queue.Len() != 0 {
		t.Fatalf("expected queue entry removed after receipt")
	}
}

func TestOnConnectionChangePausesAndResumesTransfers(t *testing.T) {
	s, sim, friend := newSink(t)
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	slot, queued, err := s.Transfers.SendFile(friend.Number, path, true)
	if err != nil || queued {
		t.Fatalf("SendFile: slot=%d queued=%v err=%v", slot, queued, err)
	}
	sends := sim.FileSends()
	if len(sends) != 1 {
		t.Fatalf("expected 1 FileSend call, got %d", len(sends))
	}
	sim.SetOnFileControl(func(_, filenumber uint32, ctl network.FileControl) { s.OnFileControl(nil, filenumber, ctl) })
	sim.InjectFileControl(friend.Number, sends[0].Filenumber, network.FileControlResume)

	s.OnConnectionChange(nil, network.ConnNone)
	s.OnConnectionChange(nil, network.ConnUDP)

	if len(sim.FileSends()) != 2 {
		t.Fatalf("expected resume to re-invoke FileSend, got %d total calls", len(sim.FileSends()))
	}
}

func TestOnFileControlCancelsIncomingTransfer(t *testing.T) {
	s, _, friend := newSink(t)
	s.OnFileRecv(nil, 42, network.FileKindData, 11, network.FileID{}, "pic.png")
	if _, ok := s.Transfers.SlotByFilenumber(friend.Number, network.TransferRecv, 42); !ok {
		t.Fatalf("expected a receive slot to be allocated")
	}
	before := s.History.QueueLen()

	// A peer-originated cancel on an incoming transfer must be resolved via
	// the receive slot array, not just TransferSend.
	s.OnFileControl(nil, 42, network.FileControlCancel)

	if s.History.QueueLen() != before+1 {
		t.Fatalf("expected a system line recording the cancellation, queue len %d -> %d", before, s.History.QueueLen())
	}
}

func TestCloseCancelsTransfersAndDisablesLog(t *testing.T) {
	dir := t.TempDir()
	sim := network.NewSimnet(network.PublicKey{})
	friend := &registry.Friend{Number: 1, Active: true, Name: "carol"}
	hist := scrollback.New(100)
	xfer := filexfer.New(sim, fixedNow)
	q := msgqueue.New()
	log := convlog.New(dir, "selfpk", "peerpk", "carol")
	log.SetEnabled(true)
	s := New(sim, friend, hist, xfer, q, log, dir, fixedNow)

	path := filepath.Join(dir, "file.bin")
	os.WriteFile(path, []byte("data"), 0o644)
	slot, _, err := s.Transfers.SendFile(friend.Number, path, true)
	if err != nil {
		t.Fatalf("SendFile: %v", err)
	}

	s.Close(nil)
	log.Write(fixedNow(), convlog.HintNormal, "carol", "after close")
	if _, err := os.Stat(filepath.Join(dir, "carol_selfpk_peerpk.log")); err == nil {
		t.Fatalf("expected no log file written after Close disabled the log")
	}
	if err := s.Transfers.HandleChunkRequest(friend.Number, slot, 0, 4); err == nil {
		t.Fatalf("expected the cancelled transfer's file handle to be released")
	}
	// Close should not panic and should leave the log closed; a second
	// Close-equivalent call (SetEnabled/Close) is safe to repeat.
	log.Close()
}
