// Package chat implements the friend-chat window described in spec §4.2,
// grounded on original_source/src/chat.c.
package chat

import (
	"os"
	"time"

	"toxterm/internal/convlog"
	"toxterm/internal/filexfer"
	"toxterm/internal/msgqueue"
	"toxterm/internal/network"
	"toxterm/internal/registry"
	"toxterm/internal/scrollback"
	"toxterm/internal/window"
)

// Sink is a friend-chat window's EventSink: top status line, scrollback
// history, and the file-transfer/message-queue/log plumbing for one
// friend.
type Sink struct {
	window.NoopSink

	Core      network.Core
	Friend    *registry.Friend
	History   *scrollback.History
	Transfers *filexfer.Engine
	Queue     *msgqueue.Queue
	Log       *convlog.Log
	Now       func() time.Time

	DownloadDir  string
	ShowConnect  bool
	PeerTyping   bool
}

// New returns a chat Sink for one friend's conversation.
func New(core network.Core, friend *registry.Friend, history *scrollback.History, transfers *filexfer.Engine, queue *msgqueue.Queue, log *convlog.Log, downloadDir string, now func() time.Time) *Sink {
	if now == nil {
		now = time.Now
	}
	return &Sink{Core: core, Friend: friend, History: history, Transfers: transfers, Queue: queue, Log: log, DownloadDir: downloadDir, Now: now}
}

// HistoryHandle exposes the scrollback this window owns, for the command
// executor's uniform /clear handling.
func (s *Sink) HistoryHandle() *scrollback.History { return s.History }

// OnTypingChange updates the peer-typing sidebar flag.
func (s *Sink) OnTypingChange(w *window.Window, typing bool) {
	s.PeerTyping = typing
}

// OnConnectionChange shows a connection line if enabled, pauses
// in-progress transfers on disconnect, and attempts to resume senders and
// drain the pending queue on reconnect.
func (s *Sink) OnConnectionChange(w *window.Window, status network.ConnStatus) {
	online := status != network.ConnNone
	if s.ShowConnect {
		typ := scrollback.LineDisconnection
		text := "%s has gone offline"
		if online {
			typ = scrollback.LineConnection
			text = "%s has come online"
		}
		s.History.Add(s.Now(), typ, scrollback.Attr{}, s.Friend.Name, "", text, s.Friend.Name)
	}
	if online {
		s.Transfers.OnFriendReconnect(s.Friend.Number)
	} else {
		s.Transfers.OnFriendDisconnect(s.Friend.Number)
	}
}

// OnNickChange writes a line and renames the log file so history stays
// together under the new nick.
func (s *Sink) OnNickChange(w *window.Window, name string) {
	old := s.Friend.Name
	s.Friend.Name = name
	w.Name = name
	s.History.Add(s.Now(), scrollback.LineNameChange, scrollback.Attr{}, old, name, "%s is now known as %s", old, name)
	if s.Log != nil {
		s.Log.Rename(name)
	}
}

// OnMessage appends an incoming message or action line.
func (s *Sink) OnMessage(w *window.Window, kind network.MessageType, text string) {
	typ := scrollback.LineIncoming
	if kind == network.MessageAction {
		typ = scrollback.LineAction
	}
	s.History.Add(s.Now(), typ, scrollback.Attr{}, s.Friend.Name, "", "%s", text)
	if s.Log != nil {
		s.Log.Write(s.Now(), convlog.HintNormal, s.Friend.Name, text)
	}
}

// OnConferenceInvite stores the pending invite and notifies the user; a
// later /cjoin in this window consumes it.
func (s *Sink) OnConferenceInvite(w *window.Window, friendNumber uint32, kind network.ConferenceKind, cookie []byte) {
	s.Friend.PendingConferenceInvite = &registry.ConferenceInvite{Kind: kind, Cookie: cookie}
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "%s has invited you to a conference. Type /cjoin to join.", s.Friend.Name)
}

// OnGroupInvite stores the pending invite and notifies the user; a later
// /gaccept in this window consumes it.
func (s *Sink) OnGroupInvite(w *window.Window, chatID [32]byte, password string) {
	s.Friend.PendingGroupInvite = &registry.GroupInvite{ChatID: chatID, Password: password}
	s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "%s has invited you to a group. Type /gaccept to join.", s.Friend.Name)
}

// OnReadReceipt flips the matching queued line's noread flag and removes
// the queue entry.
func (s *Sink) OnReadReceipt(w *window.Window, receipt network.ReceiptID) {
	lineID, ok := s.Queue.Ack(receipt)
	if !ok {
		return
	}
	if line := s.History.Get(lineID); line != nil {
		line.Noread = false
	}
}

// SendMessage enqueues an outbound message through the network layer and
// the message queue, appending a local scrollback line immediately.
func (s *Sink) SendMessage(kind network.MessageType, text string) error {
	lineID := s.History.Add(s.Now(), scrollback.LineOutgoing, scrollback.Attr{}, "", "", "%s", text)
	var (
		receipt network.ReceiptID
		err     error
	)
	if kind == network.MessageAction {
		receipt, err = s.Core.FriendSendAction(s.Friend.Number, text)
	} else {
		receipt, err = s.Core.FriendSendMessage(s.Friend.Number, kind, text)
	}
	if err != nil {
		return err
	}
	if line := s.History.Get(lineID); line != nil {
		line.Noread = true
	}
	s.Queue.Enqueue(receipt, lineID, text, kind, s.Now())
	if s.Log != nil {
		s.Log.Write(s.Now(), convlog.HintNormal, "You", text)
	}
	return nil
}

// OnFileRecv validates the filename, computes a collision-avoided
// destination, and either auto-accepts or prints a prompt line.
func (s *Sink) OnFileRecv(w *window.Window, filenumber uint32, kind network.FileKind, size uint64, fileID network.FileID, name string) {
	slot, resumed, err := s.Transfers.HandleRecv(s.Friend.Number, filenumber, kind, size, fileID, name, s.DownloadDir, fileExists, s.Friend.AutoAccept)
	if err != nil {
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "File transfer from %s rejected: %v", s.Friend.Name, err)
		return
	}
	if resumed {
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Resuming transfer of %s from %s", name, s.Friend.Name)
		return
	}
	if s.Friend.AutoAccept {
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Auto-accepting %s from %s (slot %d)", name, s.Friend.Name, slot)
	} else {
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "%s wants to send %s; use /savefile %d or /cancel %d", s.Friend.Name, name, slot, slot)
	}
}

// OnFileChunkRequest pumps the next chunk, or closes on length==0.
func (s *Sink) OnFileChunkRequest(w *window.Window, filenumber uint32, position uint64, length int) {
	slot, ok := s.Transfers.SlotByFilenumber(s.Friend.Number, network.TransferSend, filenumber)
	if !ok {
		return
	}
	if err := s.Transfers.HandleChunkRequest(s.Friend.Number, slot, position, length); err != nil {
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "File transfer to %s failed: %v", s.Friend.Name, err)
		return
	}
	if length == 0 {
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "File transfer to %s completed", s.Friend.Name)
	}
}

// OnFileRecvChunk writes an incoming chunk into its receive slot.
func (s *Sink) OnFileRecvChunk(w *window.Window, filenumber uint32, position uint64, data []byte) {
	slot, ok := s.Transfers.SlotByFilenumber(s.Friend.Number, network.TransferRecv, filenumber)
	if !ok {
		return
	}
	if err := s.Transfers.HandleRecvChunk(s.Friend.Number, slot, position, data); err != nil {
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "File transfer from %s failed: %v", s.Friend.Name, err)
		return
	}
	if len(data) == 0 {
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "Received file from %s", s.Friend.Name)
	}
}

// OnFileControl handles resume/pause/cancel signals from the peer. The
// filenumber alone doesn't say which direction it belongs to, so both the
// send and receive slot arrays are checked before giving up.
func (s *Sink) OnFileControl(w *window.Window, filenumber uint32, ctl network.FileControl) {
	direction := network.TransferSend
	slot, ok := s.Transfers.SlotByFilenumber(s.Friend.Number, direction, filenumber)
	if !ok {
		direction = network.TransferRecv
		slot, ok = s.Transfers.SlotByFilenumber(s.Friend.Number, direction, filenumber)
	}
	if !ok {
		return
	}
	switch ctl {
	case network.FileControlResume:
		if direction == network.TransferSend {
			s.Transfers.ResumeSend(s.Friend.Number, slot)
		} else {
			s.Transfers.ResumeRecv(s.Friend.Number, slot)
		}
	case network.FileControlCancel:
		s.Transfers.Cancel(s.Friend.Number, direction, slot)
		s.History.Add(s.Now(), scrollback.LineSystem, scrollback.Attr{}, "", "", "%s cancelled the transfer", s.Friend.Name)
	}
}

// Close cancels all of the friend's file transfers and disables and closes
// the log. The scrollback and the message queue are left untouched.
func (s *Sink) Close(w *window.Window) {
	s.Transfers.CancelAll(s.Friend.Number)
	if s.Log != nil {
		s.Log.SetEnabled(false)
		s.Log.Close()
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
