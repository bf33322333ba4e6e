package help

import "testing"

func TestOnKeyOpensPageFromMenu(t *testing.T) {
	s := New()
	if !s.OnKey('k') || s.Page != PageKeys {
		t.Fatalf("expected 'k' to open PageKeys, got page=%v", s.Page)
	}
}

func TestOnKeyMReturnsToMenu(t *testing.T) {
	s := New()
	s.OnKey('c')
	if s.Page != PageChat {
		t.Fatalf("expected PageChat after 'c'")
	}
	s.OnKey('m')
	if s.Page != PageMenu {
		t.Fatalf("expected menu after 'm'")
	}
}

func TestOnKeyEscClosesOverlay(t *testing.T) {
	s := New()
	if s.OnKey(27) {
		t.Fatalf("expected Esc to close overlay")
	}
}
