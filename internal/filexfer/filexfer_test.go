package filexfer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"toxterm/internal/network"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSendFileQueuesWhenDisconnected(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	e := New(sim, fixedClock(time.Unix(0, 0)))

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	os.WriteFile(path, []byte("hello"), 0o644)

	idx, queued, err := e.SendFile(1, path, false)
	if err != nil || !queued {
		t.Fatalf("expected queued, got idx=%d queued=%v err=%v", idx, queued, err)
	}
	if len(sim.FileSends()) != 0 {
		t.Fatalf("expected no FileSend call while disconnected")
	}
}

func TestSendFileThenChunkPumpCompletes(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	e := New(sim, fixedClock(time.Unix(0, 0)))

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	os.WriteFile(path, []byte("hello world"), 0o644)

	idx, queued, err := e.SendFile(1, path, true)
	if err != nil || queued {
		t.Fatalf("expected immediate send, got queued=%v err=%v", queued, err)
	}
	if err := e.HandleChunkRequest(1, idx, 0, 11); err != nil {
		t.Fatalf("chunk request: %v", err)
	}
	if err := e.HandleChunkRequest(1, idx, 11, 0); err != nil {
		t.Fatalf("completion chunk: %v", err)
	}
	tr := e.friends[1].Sends[idx]
	if tr.State != Inactive {
		t.Fatalf("expected transfer inactive after length==0, got %v", tr.State)
	}
}

func TestDisconnectPausesThenReconnectResumes(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	e := New(sim, fixedClock(time.Unix(0, 0)))

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	os.WriteFile(path, make([]byte, 10240), 0o644)

	idx, _, err := e.SendFile(1, path, true)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	e.ResumeSend(1, idx)
	if err := e.HandleChunkRequest(1, idx, 0, 4096); err != nil {
		t.Fatalf("chunk: %v", err)
	}

	e.OnFriendDisconnect(1)
	if e.friends[1].Sends[idx].State != Paused {
		t.Fatalf("expected paused after disconnect")
	}

	errs := e.OnFriendReconnect(1)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors on reconnect: %v", errs)
	}
	if e.friends[1].Sends[idx].State != Pending {
		t.Fatalf("expected restarted transfer pending a new filenumber")
	}
}

func TestFilenameCollisionAppendsNumber(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "photo.png"), nil, 0o644)
	existing := map[string]bool{filepath.Join(dir, "photo.png"): true}
	exists := func(p string) bool { return existing[p] }

	p1, err := destPath(dir, "photo.png", exists)
	if err != nil || filepath.Base(p1) != "photo.png(1)" {
		t.Fatalf("expected photo.png(1), got %q err=%v", p1, err)
	}
	existing[p1] = true
	p2, err := destPath(dir, "photo.png", exists)
	if err != nil || filepath.Base(p2) != "photo.png(2)" {
		t.Fatalf("expected photo.png(2), got %q err=%v", p2, err)
	}
}

func TestPendingQueueDrainOrder(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	e := New(sim, fixedClock(time.Unix(0, 0)))
	dir := t.TempDir()
	pa := filepath.Join(dir, "a")
	pb := filepath.Join(dir, "b")
	pc := filepath.Join(dir, "c")
	for _, p := range []string{pa, pb, pc} {
		os.WriteFile(p, []byte("x"), 0o644)
	}
	e.QueueSend(1, pa)
	e.QueueSend(1, pb)
	e.QueueSend(1, pc)

	fs := e.slotsFor(1)
	fs.Pending = append(fs.Pending[:1], fs.Pending[2:]...) // cancel index 1 ("b")

	errs := e.CheckQueue(1)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	sent := sim.FileSends()
	if len(sent) != 2 || sent[0].Name != "a" || sent[1].Name != "c" {
		t.Fatalf("expected a then c, got %+v", sent)
	}
}

func TestValidFilenameRejectsTraversal(t *testing.T) {
	for _, bad := range []string{"", ".", "..", "a/b", " leading", "-leading"} {
		if err := validFilename(bad); err == nil {
			t.Fatalf("expected rejection for %q", bad)
		}
	}
	if err := validFilename("photo.png"); err != nil {
		t.Fatalf("expected valid filename to pass: %v", err)
	}
}
