// Package notify implements the severity/flag-based alert dispatch from
// spec §4.12, grounded on original_source/src/notify.c's flag set and the
// teacher's generateSineTone/PlayNotification pattern in notification.go
// for the synthesized beep.
package notify

import "math"

// Flag is one bit of notify.c's NT_* set.
type Flag int

const (
	FlagWndAlert0 Flag = 1 << iota // lowest alert severity
	FlagWndAlert1                  // medium
	FlagWndAlert2                  // high
	FlagNoFocus                    // amplify when the terminal lacks X11 focus
	FlagBeep                       // play a synthesized tone
	FlagLoop                       // loop the tone until acknowledged
	FlagRestol                     // restore to previous tab-alert level if lower
	FlagAlways                     // bypass the busy-status suppression
	FlagNotifWnd                   // also emit an OS-level notification
)

// AlertLevel mirrors spec §3's window alert-level enum.
type AlertLevel int

const (
	AlertNone AlertLevel = iota
	AlertLow
	AlertMedium
	AlertHigh
)

func alertFromFlags(flags Flag) AlertLevel {
	switch {
	case flags&FlagWndAlert2 != 0:
		return AlertHigh
	case flags&FlagWndAlert1 != 0:
		return AlertMedium
	case flags&FlagWndAlert0 != 0:
		return AlertLow
	default:
		return AlertNone
	}
}

// FocusProbe reports whether the terminal currently holds window-manager
// focus. Spec §1 treats X11 focus detection as an external platform
// helper; the default implementation always reports focused so alerts are
// never spuriously amplified in a headless test environment.
type FocusProbe interface {
	Focused() bool
}

type alwaysFocused struct{}

func (alwaysFocused) Focused() bool { return true }

// OSNotifier emits a platform notification. Spec §1 treats this as an
// external platform helper; the default implementation is a no-op.
type OSNotifier interface {
	Notify(title, body string) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string) error { return nil }

// Dispatcher applies notify.c's logic: amplify on lost focus, suppress
// while busy unless FlagAlways, play the mapped sound, set the window's
// tab alert, and emit an OS notification when requested.
type Dispatcher struct {
	Focus    FocusProbe
	OS       OSNotifier
	Busy     func() bool
	PlayTone func(freq float64, durationMs int)
}

// NewDispatcher returns a Dispatcher with no-op default platform helpers
// (a focus probe that always reports focused, an OS notifier that does
// nothing); callers substitute Focus/OS with real platform bindings where
// available.
func NewDispatcher(busy func() bool) *Dispatcher {
	return &Dispatcher{
		Focus: alwaysFocused{},
		OS:    noopNotifier{},
		Busy:  busy,
	}
}

// Decision is what the dispatcher decided to do with one alert.
type Decision struct {
	Suppressed bool
	Level      AlertLevel
	Beeped     bool
	Notified   bool
}

// Dispatch evaluates one alert and returns the decision, invoking the
// configured side effects (tone, OS notification) as a byproduct.
func (d *Dispatcher) Dispatch(flags Flag, title, body string) Decision {
	if flags&FlagNoFocus != 0 && !d.Focus.Focused() {
		flags |= FlagWndAlert2
	}
	if d.Busy != nil && d.Busy() && flags&FlagAlways == 0 {
		return Decision{Suppressed: true}
	}

	dec := Decision{Level: alertFromFlags(flags)}
	if flags&FlagBeep != 0 && d.PlayTone != nil {
		d.PlayTone(880, 120)
		dec.Beeped = true
	}
	if flags&FlagNotifWnd != 0 && d.OS != nil {
		if err := d.OS.Notify(title, body); err == nil {
			dec.Notified = true
		}
	}
	return dec
}

// GenerateSineTone synthesizes PCM samples for one tone, matching the
// teacher's generateSineTone fade-in/fade-out envelope exactly so the two
// UI sound paths (connection cues, window alerts) sound consistent.
func GenerateSineTone(sampleRate int, freq float64, durationMs int, volume float32) []float32 {
	total := sampleRate * durationMs / 1000
	out := make([]float32, total)
	fade := sampleRate * 5 / 1000
	if fade > total/2 {
		fade = total / 2
	}
	for i := range out {
		t := float64(i) / float64(sampleRate)
		s := float32(math.Sin(2 * math.Pi * freq * t))
		env := float32(1.0)
		if i < fade {
			env = float32(i) / float32(fade)
		} else if i >= total-fade {
			env = float32(total-1-i) / float32(fade)
		}
		out[i] = s * env * volume
	}
	return out
}
