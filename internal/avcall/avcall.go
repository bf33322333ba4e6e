// Package avcall defines the device-indexed audio/video boundary spec §1
// puts out of scope: capture, playback, and codec pipelines are external
// collaborators, referenced here only through Sink/Source interfaces and a
// CallState machine for signaling. Grounded on
// rustyguts-bken/client/audio.go's AudioEngine device shape — device
// enumeration is wired via github.com/gordonklaus/portaudio; the actual
// capture/playback/codec pipeline is not (see SPEC_FULL.md).
package avcall

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"toxterm/internal/network"
)

// Device describes one enumerated audio device.
type Device struct {
	Index      int
	Name       string
	MaxInputs  int
	MaxOutputs int
}

// ListDevices enumerates host audio devices via portaudio. Initialize must
// be called once at process start (and Terminate at exit) per portaudio's
// own lifecycle contract.
func ListDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("avcall: portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("avcall: enumerate devices: %w", err)
	}
	out := make([]Device, 0, len(devs))
	for i, d := range devs {
		out = append(out, Device{
			Index:      i,
			Name:       d.Name,
			MaxInputs:  d.MaxInputChannels,
			MaxOutputs: d.MaxOutputChannels,
		})
	}
	return out, nil
}

// Source is a device-indexed audio input, opened/closed/muted by whichever
// component owns it (conference, chat, or peer-output per spec §5's
// shared-resource discipline).
type Source interface {
	Open(deviceIndex int) error
	Close() error
	SetMuted(bool)
}

// Sink is a device-indexed audio output.
type Sink interface {
	Open(deviceIndex int) error
	Close() error
	SetMuted(bool)
}

// Call tracks one friend's call signaling state (spec §4.2; the eight
// network.CallState call-lifecycle events); the actual media pipeline behind it is not
// implemented here.
type Call struct {
	FriendNumber uint32
	State        network.CallState
	AudioBitrate uint32
	VideoBitrate uint32
	Source       Source
	Sink         Sink
}

// Manager tracks in-progress calls and drives invite/answer/hangup
// signaling through network.Core; it never touches capture or playback
// directly.
type Manager struct {
	core  network.Core
	calls map[uint32]*Call
}

// NewManager binds a call Manager to core.
func NewManager(core network.Core) *Manager {
	return &Manager{core: core, calls: make(map[uint32]*Call)}
}

// Invite starts an outbound call.
func (m *Manager) Invite(friendNumber uint32, audioBitrate, videoBitrate uint32) error {
	if err := m.core.CallInvite(friendNumber, audioBitrate, videoBitrate); err != nil {
		return err
	}
	m.calls[friendNumber] = &Call{FriendNumber: friendNumber, State: network.CallInvite, AudioBitrate: audioBitrate, VideoBitrate: videoBitrate}
	return nil
}

// Answer accepts an inbound call.
func (m *Manager) Answer(friendNumber uint32, audioBitrate, videoBitrate uint32) error {
	if err := m.core.CallAnswer(friendNumber, audioBitrate, videoBitrate); err != nil {
		return err
	}
	if c, ok := m.calls[friendNumber]; ok {
		c.State = network.CallStart
	}
	return nil
}

// Hangup ends a call and releases its device handles, per spec §5's
// "released in the component's close path" discipline.
func (m *Manager) Hangup(friendNumber uint32) error {
	c, ok := m.calls[friendNumber]
	if ok {
		if c.Source != nil {
			c.Source.Close()
		}
		if c.Sink != nil {
			c.Sink.Close()
		}
		delete(m.calls, friendNumber)
	}
	return m.core.CallHangup(friendNumber)
}

// OnCallState updates the tracked state for a call in response to the
// network layer's call-state callback.
func (m *Manager) OnCallState(friendNumber uint32, state network.CallState) {
	c, ok := m.calls[friendNumber]
	if !ok {
		c = &Call{FriendNumber: friendNumber}
		m.calls[friendNumber] = c
	}
	c.State = state
	if state == network.CallEnd || state == network.CallReject || state == network.CallCancel {
		delete(m.calls, friendNumber)
	}
}

// Get returns the tracked call state for a friend, if any.
func (m *Manager) Get(friendNumber uint32) (*Call, bool) {
	c, ok := m.calls[friendNumber]
	return c, ok
}
