package notify

import "testing"

func TestDispatchSuppressedWhenBusy(t *testing.T) {
	d := NewDispatcher(func() bool { return true })
	dec := d.Dispatch(FlagWndAlert1, "t", "b")
	if !dec.Suppressed {
		t.Fatalf("expected suppression while busy")
	}
}

func TestDispatchAlwaysBypassesBusy(t *testing.T) {
	d := NewDispatcher(func() bool { return true })
	dec := d.Dispatch(FlagWndAlert1|FlagAlways, "t", "b")
	if dec.Suppressed {
		t.Fatalf("expected FlagAlways to bypass busy suppression")
	}
	if dec.Level != AlertMedium {
		t.Fatalf("expected medium alert, got %v", dec.Level)
	}
}

func TestDispatchNoFocusAmplifies(t *testing.T) {
	d := NewDispatcher(func() bool { return false })
	d.Focus = unfocused{}
	dec := d.Dispatch(FlagWndAlert0|FlagNoFocus, "t", "b")
	if dec.Level != AlertHigh {
		t.Fatalf("expected amplification to high, got %v", dec.Level)
	}
}

type unfocused struct{}

func (unfocused) Focused() bool { return false }

func TestGenerateSineToneLength(t *testing.T) {
	samples := GenerateSineTone(48000, 440, 100, 0.2)
	if len(samples) != 4800 {
		t.Fatalf("expected 4800 samples for 100ms at 48kHz, got %d", len(samples))
	}
}
