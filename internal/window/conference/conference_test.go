package conference

import (
	"testing"
	"time"

	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
)

func fixedNow() time.Time { return time.Date(2026, 1, 1, 0, 10, 0, 0, time.UTC) }

func TestOnConferenceNameListChangeAddsJoinLineAfterDebounce(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	confs := registry.NewConferenceRegistry()
	start := fixedNow().Add(-10 * time.Second) // older than JoinDebounce
	conf := confs.Add(network.ConferenceText, [32]byte{}, start)
	hist := scrollback.New(100)
	s := New(sim, conf, hist, fixedNow)

	var pk network.PublicKey
	pk[0] = 1
	sim.InjectConferencePeerList(conf.ID, []struct {
		PubKey network.PublicKey
		Name   string
	}{{PubKey: pk, Name: "dave"}})
	s.OnConferenceNameListChange(nil)

	if len(conf.Peers) != 1 || conf.Peers[0].Name != "dave" {
		t.Fatalf("expected peer table to contain dave, got %+v", conf.Peers)
	}
	hist.Print()
	if hist.Count() != 1 {
		t.Fatalf("expected a join line printed, got %d lines", hist.Count())
	}
}

func TestOnConferenceNameListChangeSuppressesJoinDuringDebounce(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	confs := registry.NewConferenceRegistry()
	conf := confs.Add(network.ConferenceText, [32]byte{}, fixedNow())
	hist := scrollback.New(100)
	s := New(sim, conf, hist, fixedNow)

	var pk network.PublicKey
	pk[0] = 2
	sim.InjectConferencePeerList(conf.ID, []struct {
		PubKey network.PublicKey
		Name   string
	}{{PubKey: pk, Name: "erin"}})
	s.OnConferenceNameListChange(nil)

	hist.Print()
	if hist.Count() != 0 {
		t.Fatalf("expected no join line during initial sync debounce, got %d", hist.Count())
	}
}

func TestOnConferenceNameListChangeAddsLeaveLineForMissingPeer(t *testing.T) {
	sim := network.NewSimnet(network.PublicKey{})
	confs := registry.NewConferenceRegistry()
	start := fixedNow().Add(-10 * time.Second)
	conf := confs.Add(network.ConferenceText, [32]byte{}, start)
	hist := scrollback.New(100)
	s := New(sim, conf, hist, fixedNow)

	var pk network.PublicKey
	pk[0] = 3
	sim.InjectConferencePeerList(conf.ID, []struct {
		PubKey network.PublicKey
		Name   string
	}{{PubKey: pk, Name: "frank"}})
	s.OnConferenceNameListChange(nil)
	hist.Print() // join line

	sim.InjectConferencePeerList(conf.ID, nil)
	s.OnConferenceNameListChange(nil)
	hist.Print() // leave line

	if hist.Count() != 2 {
		t.Fatalf("expected join+leave lines, got %d", hist.Count())
	}
}
