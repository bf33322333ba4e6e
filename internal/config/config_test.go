package config

import "testing"

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := Default()
	cfg.UI.HistorySize = 1234
	cfg.Tox.Nospam = 0xDEADBEEF
	cfg.FriendOverrides[ContactKey("aabbcc")] = ContactOverride{
		TabColor:   "red",
		AutoAccept: true,
		Alias:      "bestie",
	}
	cfg.GroupOverrides[GroupContactKey("ddeeff")] = ContactOverride{
		TabColor: "blue",
		AutoLog:  true,
		Alias:    "book club",
	}

	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded := Load()
	if reloaded.UI.HistorySize != 1234 {
		t.Fatalf("expected history size to round-trip, got %d", reloaded.UI.HistorySize)
	}
	if reloaded.Tox.Nospam != 0xDEADBEEF {
		t.Fatalf("expected nospam to round-trip, got %x", reloaded.Tox.Nospam)
	}
	ov, ok := reloaded.FriendOverrides[ContactKey("aabbcc")]
	if !ok || ov.Alias != "bestie" || !ov.AutoAccept {
		t.Fatalf("expected contact override to round-trip, got %+v ok=%v", ov, ok)
	}
	gov, ok := reloaded.GroupOverrides[GroupContactKey("ddeeff")]
	if !ok || gov.Alias != "book club" || !gov.AutoLog {
		t.Fatalf("expected group override to round-trip, got %+v ok=%v", gov, ok)
	}
	if _, ok := reloaded.FriendOverrides[GroupContactKey("ddeeff")]; ok {
		t.Fatalf("group override must not leak into FriendOverrides")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg := Load()
	if cfg.UI.HistorySize != Default().UI.HistorySize {
		t.Fatalf("expected defaults when config file is absent")
	}
}
