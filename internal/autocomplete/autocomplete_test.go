package autocomplete

import "testing"

func TestCompleteSingleMatchAtLineStart(t *testing.T) {
	res := Complete("ali", 3, []string{"alice", "bob"}, true, false)
	if !res.Replaced {
		t.Fatalf("expected a replacement")
	}
	if res.NewLine != "alice: " {
		t.Fatalf("expected name-colon suffix, got %q", res.NewLine)
	}
}

func TestCompleteSingleMatchMidLine(t *testing.T) {
	res := Complete("hey ali", 7, []string{"alice", "bob"}, false, false)
	if res.NewLine != "hey alice " {
		t.Fatalf("expected trailing space, got %q", res.NewLine)
	}
}

func TestCompleteCommandTokenNeverGetsColon(t *testing.T) {
	res := Complete("/nic", 4, []string{"/nick"}, true, true)
	if res.NewLine != "/nick " {
		t.Fatalf("expected plain space suffix, got %q", res.NewLine)
	}
}

func TestCompleteManyMatchesWidensCommonPrefix(t *testing.T) {
	res := Complete("al", 2, []string{"alice", "alicia"}, false, false)
	if !res.Replaced || res.NewLine != "alic" {
		// common prefix of alice/alicia is "alic", longer than the token -> widen
		t.Fatalf("expected line widened to %q, got replaced=%v line=%q", "alic", res.Replaced, res.NewLine)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %v", res.Candidates)
	}
}

func TestCompleteNoMatch(t *testing.T) {
	res := Complete("zzz", 3, []string{"alice"}, false, false)
	if res.Replaced || len(res.Candidates) != 0 {
		t.Fatalf("expected no match, got %+v", res)
	}
}
