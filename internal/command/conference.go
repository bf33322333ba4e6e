package command

import (
	"fmt"
	"strconv"

	"toxterm/internal/window"
)

// conferenceCommands extends the global table inside a conference window
// (spec §6: "conference adds: /title /audio /mute /ptt /sense").
var conferenceCommands = Table{
	"title": cmdTitle,
	"audio": cmdAudio,
	"mute":  cmdMute,
	"ptt":   cmdPTT,
	"sense": cmdSense,
}

func cmdTitle(ctx *Context, w *window.Window, argv []string) (string, error) {
	cf, ok := conferenceSink(w)
	if !ok {
		return "", fmt.Errorf("/title only works in a conference window")
	}
	if len(argv) < 1 {
		return cf.Conference.Title, nil
	}
	title := joinArgs(argv)
	if err := ctx.Core.ConferenceSetTitle(cf.Conference.ID, title); err != nil {
		return "", err
	}
	cf.Conference.Title = title
	w.Name = title
	return "Title set", nil
}

// cmdAudio toggles whether this conference's peers get positioned and
// played through the device-indexed audio boundary (spec §1: capture,
// playback and the codec pipeline live outside this repo; this just
// flips the local flag that routes peers into that boundary).
func cmdAudio(ctx *Context, w *window.Window, argv []string) (string, error) {
	cf, ok := conferenceSink(w)
	if !ok {
		return "", fmt.Errorf("/audio only works in a conference window")
	}
	cf.Conference.AudioEnabled = !cf.Conference.AudioEnabled
	if cf.Conference.AudioEnabled {
		return "Conference audio enabled", nil
	}
	return "Conference audio disabled", nil
}

func cmdMute(ctx *Context, w *window.Window, argv []string) (string, error) {
	cf, ok := conferenceSink(w)
	if !ok {
		return "", fmt.Errorf("/mute only works in a conference window")
	}
	if !cf.Conference.AudioEnabled {
		return "", fmt.Errorf("conference audio is not enabled; use /audio first")
	}
	cf.Conference.LastSentAudio = ctx.now()
	return "Microphone muted", nil
}

// cmdPTT toggles push-to-talk mode for the conference's outbound audio.
func cmdPTT(ctx *Context, w *window.Window, argv []string) (string, error) {
	cf, ok := conferenceSink(w)
	if !ok {
		return "", fmt.Errorf("/ptt only works in a conference window")
	}
	cf.Conference.PushToTalk = !cf.Conference.PushToTalk
	if cf.Conference.PushToTalk {
		return "Push-to-talk enabled", nil
	}
	return "Push-to-talk disabled", nil
}

// cmdSense reports or sets the input device index used for this
// conference's outbound audio (spec leaves VAD threshold tuning to the
// external capture pipeline; this only binds the device).
func cmdSense(ctx *Context, w *window.Window, argv []string) (string, error) {
	cf, ok := conferenceSink(w)
	if !ok {
		return "", fmt.Errorf("/sense only works in a conference window")
	}
	if len(argv) < 1 {
		return fmt.Sprintf("Input device: %d", cf.Conference.InputDevice), nil
	}
	idx, err := strconv.Atoi(argv[0])
	if err != nil {
		return "", errArgs("/sense <device-index>")
	}
	cf.Conference.InputDevice = idx
	return fmt.Sprintf("Input device set to %d", idx), nil
}
