package avatar

import (
	"os"
	"path/filepath"
	"testing"

	"toxterm/internal/network"
)

func writePNG(t *testing.T, dir string, extraBytes int) string {
	t.Helper()
	path := filepath.Join(dir, "me.png")
	data := append([]byte{}, pngMagic...)
	data = append(data, make([]byte, extraBytes)...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateAcceptsAtExactMax(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, MaxSize-len(pngMagic))
	if _, err := Validate(path); err != nil {
		t.Fatalf("expected exactly-max avatar accepted: %v", err)
	}
}

func TestValidateRejectsOverMax(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, MaxSize-len(pngMagic)+1)
	if _, err := Validate(path); err == nil {
		t.Fatalf("expected oversized avatar rejected")
	}
}

func TestValidateRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "me.png")
	os.WriteFile(path, []byte("not a png at all"), 0o644)
	if _, err := Validate(path); err == nil {
		t.Fatalf("expected bad magic rejected")
	}
}

func TestBroadcastAllSendsToEveryFriend(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, 10)
	sim := network.NewSimnet(network.PublicKey{})
	r := NewRegistry(sim)
	if err := r.SetAndBroadcast(path, []uint32{1, 2, 3}); err != nil {
		t.Fatalf("set and broadcast: %v", err)
	}
	if len(sim.FileSends()) != 3 {
		t.Fatalf("expected 3 broadcast sends, got %d", len(sim.FileSends()))
	}
}
