package avcall

import (
	"testing"

	"toxterm/internal/network"
)

func TestInviteThenHangupClearsCall(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	m := NewManager(sim)
	if err := m.Invite(1, 64000, 0); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, ok := m.Get(1); !ok {
		t.Fatalf("expected call tracked after invite")
	}
	if err := m.Hangup(1); err != nil {
		t.Fatalf("hangup: %v", err)
	}
	if _, ok := m.Get(1); ok {
		t.Fatalf("expected call cleared after hangup")
	}
}

func TestOnCallStateEndClearsTrackedCall(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	m := NewManager(sim)
	m.Invite(1, 64000, 0)
	m.OnCallState(1, network.CallEnd)
	if _, ok := m.Get(1); ok {
		t.Fatalf("expected call cleared on CallEnd")
	}
}
