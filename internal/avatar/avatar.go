// Package avatar implements the PNG-validated, process-wide avatar value
// from spec §4.8, grounded on original_source/src/avatars.c: a single
// record broadcast to every connected friend on set and on friend
// connect-up.
package avatar

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"toxterm/internal/network"
)

// MaxSize is the largest accepted avatar file, 64 KiB (spec §4.8, §8).
const MaxSize = 64 * 1024

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Avatar is the single process-wide record (spec §3's "Avatar"): the file
// is never loaded into memory wholesale, only its name/path/size.
type Avatar struct {
	Name string
	Path string
	Size int64
}

// Validate checks size and PNG magic bytes without reading the body into
// memory; only the fixed 8-byte magic header is read.
func Validate(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("avatar: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.Size() <= 0 {
		return 0, fmt.Errorf("avatar: empty file")
	}
	if info.Size() > MaxSize {
		return 0, fmt.Errorf("avatar: %d bytes exceeds max size %d", info.Size(), MaxSize)
	}

	magic := make([]byte, len(pngMagic))
	if _, err := f.Read(magic); err != nil {
		return 0, fmt.Errorf("avatar: read header: %w", err)
	}
	if !bytes.Equal(magic, pngMagic) {
		return 0, fmt.Errorf("avatar: not a PNG file")
	}
	return info.Size(), nil
}

// Set validates path and, on success, returns the new Avatar record for the
// caller to store and broadcast via Registry.BroadcastAll.
func Set(path string) (Avatar, error) {
	size, err := Validate(path)
	if err != nil {
		return Avatar{}, err
	}
	return Avatar{Name: filepath.Base(path), Path: path, Size: size}, nil
}

// Registry owns the current avatar and drives broadcast.
type Registry struct {
	core    network.Core
	current Avatar
	hasSet  bool
}

// NewRegistry binds an avatar.Registry to the network core used for
// broadcast sends.
func NewRegistry(core network.Core) *Registry { return &Registry{core: core} }

// Current returns the active avatar, or ok=false if none is set.
func (r *Registry) Current() (Avatar, bool) { return r.current, r.hasSet }

// SetAndBroadcast validates and stores path as the new avatar, then
// broadcasts it to every connected friend via BroadcastAll.
func (r *Registry) SetAndBroadcast(path string, connectedFriends []uint32) error {
	a, err := Set(path)
	if err != nil {
		return err
	}
	r.current = a
	r.hasSet = true
	return r.BroadcastAll(connectedFriends)
}

// Unset clears the avatar and broadcasts a zero-length AVATAR file to every
// connected friend, meaning "unset" per spec §4.8.
func (r *Registry) Unset(connectedFriends []uint32) error {
	r.hasSet = false
	r.current = Avatar{}
	var firstErr error
	for _, fn := range connectedFriends {
		var fileID network.FileID
		if _, err := r.core.FileSend(fn, network.FileKindAvatar, 0, fileID, ""); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BroadcastAll issues a zero-payload AVATAR file_send to every connected
// friend (spec §4.8: "length = 0 means unset" is only for Unset; here size
// is the real avatar size, name the basename — the network layer pulls the
// bytes later via the usual chunk-request callback, which callers route to
// OpenForChunk).
func (r *Registry) BroadcastAll(connectedFriends []uint32) error {
	if !r.hasSet {
		return nil
	}
	var firstErr error
	var fileID network.FileID
	for _, fn := range connectedFriends {
		if _, err := r.core.FileSend(fn, network.FileKindAvatar, uint64(r.current.Size), fileID, r.current.Name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BroadcastTo sends the current avatar to a single newly-connected friend
// (spec §4.8: "on friend connection-up, the registry broadcasts the
// current avatar to that friend").
func (r *Registry) BroadcastTo(friendNumber uint32) error {
	if !r.hasSet {
		return nil
	}
	var fileID network.FileID
	_, err := r.core.FileSend(friendNumber, network.FileKindAvatar, uint64(r.current.Size), fileID, r.current.Name)
	return err
}

// OpenForChunk opens the avatar file fresh for each chunk pump, since the
// avatar record owns no persistent handle between chunk requests (spec
// §4.8); data transfers, unlike this, keep their file open in the slot.
func (r *Registry) OpenForChunk() (*os.File, error) {
	if !r.hasSet {
		return nil, fmt.Errorf("avatar: no avatar set")
	}
	return os.Open(r.current.Path)
}
