// Package filexfer implements the per-friend file transfer state machine
// from spec §4.6, grounded on original_source/src/file_transfers.c
// one-for-one: state enum, slot array, pending send queue, chunk pump.
package filexfer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"toxterm/internal/network"
)

// State is a transfer slot's lifecycle state.
type State int

const (
	Inactive State = iota
	Pending
	Started
	Paused
)

// MaxFiles bounds the number of simultaneous transfers per friend per
// direction, mirroring file_transfers.c's MAX_FILES.
const MaxFiles = 32

// IdleTimeout is how long a transfer may sit without progress before the
// engine may cancel it (spec §5: "implementation freedom", chosen at 120s
// to match the source's own constant).
const IdleTimeout = 120 * time.Second

// Transfer is one send or receive slot (spec §3's "File transfer").
type Transfer struct {
	State      State
	Direction  network.TransferDirection
	file       *os.File
	writer     *bufio.Writer
	Name       string
	Path       string // receivers only
	Size       uint64
	Position   uint64
	bps        uint64
	lastProgressAt time.Time
	LineID     int64 // back-pointer to the progress-bar scrollback line
	Kind       network.FileKind
	FileID     network.FileID
	Slot       int
	FriendNumber uint32
	Filenumber uint32
	lastActivity time.Time
}

// PendingEntry is one queued outbound send awaiting the friend to come
// online (spec §3's "Pending queue entry").
type PendingEntry struct {
	Path string
	Len  int64
}

// FriendSlots holds the send/recv slot arrays and pending queue for one
// friend.
type FriendSlots struct {
	Sends   [MaxFiles]*Transfer
	Recvs   [MaxFiles]*Transfer
	Pending []PendingEntry
}

// Engine owns every friend's transfer slots.
type Engine struct {
	core    network.Core
	friends map[uint32]*FriendSlots
	now     func() time.Time
}

// New creates an Engine bound to core. now defaults to time.Now when nil,
// overridable so tests can control idle-timeout behavior deterministically.
func New(core network.Core, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{core: core, friends: make(map[uint32]*FriendSlots), now: now}
}

// SlotByFilenumber finds the send or receive slot currently bound to
// filenumber for friend, for callers that only have the network layer's
// per-event filenumber (the chunk-request/recv-chunk/control callbacks).
func (e *Engine) SlotByFilenumber(friendNumber uint32, direction network.TransferDirection, filenumber uint32) (int, bool) {
	fs := e.slotsFor(friendNumber)
	arr := &fs.Sends
	if direction == network.TransferRecv {
		arr = &fs.Recvs
	}
	for i, t := range arr {
		if t != nil && t.Filenumber == filenumber {
			return i, true
		}
	}
	return -1, false
}

func (e *Engine) slotsFor(friend uint32) *FriendSlots {
	fs, ok := e.friends[friend]
	if !ok {
		fs = &FriendSlots{}
		e.friends[friend] = fs
	}
	return fs
}

func lowestFreeSlot(arr *[MaxFiles]*Transfer) int {
	for i, t := range arr {
		if t == nil {
			return i
		}
	}
	return -1
}

// SendFile implements "design of a send" (spec §4.6): opens path, measures
// size, requests a filenumber. If the friend is not connected it queues
// the path instead, returning QueueSend's index and error with queued=true.
func (e *Engine) SendFile(friendNumber uint32, path string, connected bool) (slot int, queued bool, err error) {
	fs := e.slotsFor(friendNumber)
	if !connected {
		idx, qerr := e.QueueSend(friendNumber, path)
		return idx, true, qerr
	}

	f, err := os.Open(path)
	if err != nil {
		return -1, false, fmt.Errorf("filexfer: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return -1, false, err
	}
	name := info.Name()
	var fileID network.FileID
	fn, err := e.core.FileSend(friendNumber, network.FileKindData, uint64(info.Size()), fileID, name)
	if err != nil {
		f.Close()
		return -1, false, fmt.Errorf("filexfer: file send request: %w", err)
	}

	idx := lowestFreeSlot(&fs.Sends)
	if idx < 0 {
		f.Close()
		return -1, false, fmt.Errorf("filexfer: no free send slot for friend %d", friendNumber)
	}
	fs.Sends[idx] = &Transfer{
		State:        Pending,
		Direction:    network.TransferSend,
		file:         f,
		Name:         name,
		Path:         path,
		Size:         uint64(info.Size()),
		FileID:       fileID,
		Slot:         idx,
		FriendNumber: friendNumber,
		Filenumber:   fn,
		lastActivity: e.now(),
	}
	return idx, false, nil
}

// QueueSend appends path to the friend's pending-send queue (spec §4.6's
// file_send_queue_add) and returns the entry's index. It returns -1 for an
// empty path and -3 when the queue already holds MaxFiles entries; the
// file name's length is not checked.
func (e *Engine) QueueSend(friendNumber uint32, path string) (int, error) {
	fs := e.slotsFor(friendNumber)
	if path == "" {
		return -1, fmt.Errorf("filexfer: empty path")
	}
	if len(fs.Pending) >= MaxFiles {
		return -3, fmt.Errorf("filexfer: pending queue full")
	}
	info, err := os.Stat(path)
	var size int64
	if err == nil {
		size = info.Size()
	}
	fs.Pending = append(fs.Pending, PendingEntry{Path: path, Len: size})
	return len(fs.Pending) - 1, nil
}

// CheckQueue implements file_send_queue_check: on reconnect, empties the
// queue and re-invokes SendFile for each pending path, in order. A path
// whose send fails is reported in the returned errors and is not queued
// again.
func (e *Engine) CheckQueue(friendNumber uint32) []error {
	fs := e.slotsFor(friendNumber)
	pending := fs.Pending
	fs.Pending = nil
	var errs []error
	for _, p := range pending {
		if _, _, err := e.SendFile(friendNumber, p.Path, true); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ResumeSend marks a send slot as started after the peer acks with
// FileControlResume.
func (e *Engine) ResumeSend(friendNumber uint32, slot int) {
	if t := e.friends[friendNumber].Sends[slot]; t != nil {
		t.State = Started
		t.lastActivity = e.now()
	}
}

// ResumeRecv marks a receive slot as started after the peer (the sender)
// signals FileControlResume, mirroring ResumeSend for the other direction.
func (e *Engine) ResumeRecv(friendNumber uint32, slot int) {
	if t := e.friends[friendNumber].Recvs[slot]; t != nil {
		t.State = Started
		t.lastActivity = e.now()
	}
}

// HandleChunkRequest implements the chunk-pump step: position==ft.position
// means no seek is needed; length==0 signals completion.
func (e *Engine) HandleChunkRequest(friendNumber uint32, slot int, position uint64, length int) error {
	fs := e.slotsFor(friendNumber)
	t := fs.Sends[slot]
	if t == nil {
		return fmt.Errorf("filexfer: no send slot %d for friend %d", slot, friendNumber)
	}
	if length == 0 {
		t.State = Inactive
		e.closeHandle(t)
		return nil
	}
	if position != t.Position {
		if _, err := t.file.Seek(int64(position), io.SeekStart); err != nil {
			return e.cancelWithError(t, err)
		}
		t.Position = position
	}
	buf := make([]byte, length)
	n, err := t.file.Read(buf)
	if err != nil && err != io.EOF {
		return e.cancelWithError(t, err)
	}
	if err := e.core.FileSendChunk(friendNumber, t.Filenumber, t.Position, buf[:n]); err != nil {
		return e.cancelWithError(t, err)
	}
	t.Position += uint64(n)
	t.bps += uint64(n)
	t.lastActivity = e.now()
	return nil
}

func (e *Engine) cancelWithError(t *Transfer, cause error) error {
	t.State = Inactive
	e.closeHandle(t)
	e.core.FileControl(t.FriendNumber, t.Filenumber, network.FileControlCancel)
	return fmt.Errorf("filexfer: transfer %q failed: %w", t.Name, cause)
}

func (e *Engine) closeHandle(t *Transfer) {
	if t.file != nil {
		t.file.Close()
		t.file = nil
	}
	if t.writer != nil {
		t.writer.Flush()
		t.writer = nil
	}
}

// destPath computes a collision-avoided destination by appending (1), (2),
// …, giving up after 99 (spec §4.6, boundary case in spec §8).
func destPath(dir, name string, exists func(string) bool) (string, error) {
	candidate := dir + string(os.PathSeparator) + name
	if !exists(candidate) {
		return candidate, nil
	}
	for n := 1; n <= 99; n++ {
		candidate = fmt.Sprintf("%s%s(%d)", dir+string(os.PathSeparator), name, n)
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("filexfer: invalid file path")
}

// validFilename enforces spec §4.6's receive validation: non-empty, no
// '/', not "." or "..", no leading space or hyphen.
func validFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filexfer: empty filename")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("filexfer: invalid filename %q", name)
	}
	for _, r := range name {
		if r == '/' {
			return fmt.Errorf("filexfer: filename must not contain '/'")
		}
	}
	if name[0] == ' ' || name[0] == '-' {
		return fmt.Errorf("filexfer: filename must not start with space or hyphen")
	}
	return nil
}

// HandleRecv implements spec §4.6's receive path: first try to resume by
// matching fileID against a paused receive slot; otherwise allocate a new
// slot after validating the filename and computing a destination path.
// downloadDir is the configured download directory; exists reports whether
// a path is already taken (by the filesystem or another live transfer).
func (e *Engine) HandleRecv(friendNumber uint32, filenumber uint32, kind network.FileKind, size uint64, fileID network.FileID, name string, downloadDir string, exists func(string) bool, autoAccept bool) (slot int, resumed bool, err error) {
	fs := e.slotsFor(friendNumber)

	for i, t := range fs.Recvs {
		if t != nil && t.State == Paused && t.FileID == fileID {
			t.State = Started
			t.Filenumber = filenumber
			e.core.FileSeek(friendNumber, filenumber, t.Position)
			e.core.FileControl(friendNumber, filenumber, network.FileControlResume)
			return i, true, nil
		}
	}

	if err := validFilename(name); err != nil {
		return -1, false, err
	}
	dest, err := destPath(downloadDir, name, exists)
	if err != nil {
		return -1, false, err
	}

	idx := lowestFreeSlot(&fs.Recvs)
	if idx < 0 {
		return -1, false, fmt.Errorf("filexfer: no free receive slot for friend %d", friendNumber)
	}
	t := &Transfer{
		State:        Pending,
		Direction:    network.TransferRecv,
		Name:         name,
		Path:         dest,
		Size:         size,
		Kind:         kind,
		FileID:       fileID,
		Slot:         idx,
		FriendNumber: friendNumber,
		Filenumber:   filenumber,
		lastActivity: e.now(),
	}
	fs.Recvs[idx] = t

	if autoAccept {
		if err := e.Savefile(friendNumber, idx); err != nil {
			return idx, false, err
		}
	}
	return idx, false, nil
}

// Savefile opens the destination in append mode and sends a RESUME
// control, implementing /savefile.
func (e *Engine) Savefile(friendNumber uint32, slot int) error {
	fs := e.slotsFor(friendNumber)
	t := fs.Recvs[slot]
	if t == nil {
		return fmt.Errorf("filexfer: no recv slot %d for friend %d", slot, friendNumber)
	}
	f, err := os.OpenFile(t.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	t.file = f
	t.writer = bufio.NewWriter(f)
	t.State = Started
	return e.core.FileControl(friendNumber, t.Filenumber, network.FileControlResume)
}

// HandleRecvChunk writes an incoming chunk, implementing the receiver side
// of the chunk pump.
func (e *Engine) HandleRecvChunk(friendNumber uint32, slot int, position uint64, data []byte) error {
	fs := e.slotsFor(friendNumber)
	t := fs.Recvs[slot]
	if t == nil {
		return fmt.Errorf("filexfer: no recv slot %d for friend %d", slot, friendNumber)
	}
	if len(data) == 0 {
		e.closeHandle(t)
		t.State = Inactive
		return nil
	}
	if _, err := t.writer.Write(data); err != nil {
		return e.cancelWithError(t, err)
	}
	t.Position = position + uint64(len(data))
	t.bps += uint64(len(data))
	t.lastActivity = e.now()
	return nil
}

// OnFriendDisconnect transitions every started DATA transfer in either
// direction to paused; avatar-kind sends are killed outright (spec §4.6,
// §4.8).
func (e *Engine) OnFriendDisconnect(friendNumber uint32) {
	fs := e.slotsFor(friendNumber)
	for _, t := range fs.Sends {
		if t == nil {
			continue
		}
		if t.Kind == network.FileKindAvatar {
			e.closeHandle(t)
			t.State = Inactive
			continue
		}
		if t.State == Started {
			t.State = Paused
		}
	}
	for _, t := range fs.Recvs {
		if t != nil && t.State == Started {
			t.State = Paused
		}
	}
}

// OnFriendReconnect restarts every paused sender by re-invoking
// FileSend with the same file id, replacing the filenumber in the slot
// (spec §4.6), and drains the pending queue.
func (e *Engine) OnFriendReconnect(friendNumber uint32) []error {
	fs := e.slotsFor(friendNumber)
	var errs []error
	for i, t := range fs.Sends {
		if t == nil || t.State != Paused {
			continue
		}
		fn, err := e.core.FileSend(friendNumber, t.Kind, t.Size, t.FileID, t.Name)
		if err != nil {
			errs = append(errs, fmt.Errorf("filexfer: resume send slot %d: %w", i, err))
			e.closeHandle(t)
			fs.Sends[i] = nil
			continue
		}
		t.Filenumber = fn
		t.State = Pending
	}
	errs = append(errs, e.CheckQueue(friendNumber)...)
	return errs
}

// Cancel transitions a transfer to inactive, closes its handle, and sends
// a CANCEL control to the peer.
func (e *Engine) Cancel(friendNumber uint32, direction network.TransferDirection, slot int) error {
	fs := e.slotsFor(friendNumber)
	var arr *[MaxFiles]*Transfer
	if direction == network.TransferSend {
		arr = &fs.Sends
	} else {
		arr = &fs.Recvs
	}
	t := arr[slot]
	if t == nil {
		return fmt.Errorf("filexfer: no slot %d for friend %d", slot, friendNumber)
	}
	e.closeHandle(t)
	t.State = Inactive
	return e.core.FileControl(friendNumber, t.Filenumber, network.FileControlCancel)
}

// CancelAll cancels every live transfer for a friend (block, delete, or
// chat-window close per spec §4.6).
func (e *Engine) CancelAll(friendNumber uint32) {
	fs := e.slotsFor(friendNumber)
	for i, t := range fs.Sends {
		if t != nil && t.State != Inactive {
			e.Cancel(friendNumber, network.TransferSend, i)
		}
	}
	for i, t := range fs.Recvs {
		if t != nil && t.State != Inactive {
			e.Cancel(friendNumber, network.TransferRecv, i)
		}
	}
}

// ProgressLine renders a human-readable progress string at most once per
// second per transfer (the caller is responsible for the once-per-second
// gate via LastProgressDue); byte counts are formatted with go-humanize
// rather than hand-rolled KB/MB math.
func (t *Transfer) ProgressLine() string {
	pct := float64(0)
	if t.Size > 0 {
		pct = float64(t.Position) / float64(t.Size) * 100
	}
	return fmt.Sprintf("%s / %s (%.1f%%)", humanize.Bytes(t.Position), humanize.Bytes(t.Size), pct)
}

// LastProgressDue reports whether enough time has passed to redraw this
// transfer's progress bar (at most once per second, spec §4.6).
func (t *Transfer) LastProgressDue(now time.Time) bool {
	if now.Sub(t.lastProgressAt) < time.Second {
		return false
	}
	t.lastProgressAt = now
	return true
}

// Idle reports whether the transfer has sat without progress longer than
// IdleTimeout.
func (t *Transfer) Idle(now time.Time) bool {
	return t.State == Started && now.Sub(t.lastActivity) > IdleTimeout
}
