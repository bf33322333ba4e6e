package registry

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"toxterm/internal/network"
)

// MaxNameLength bounds a block-list entry's stored name, mirroring
// TOXIC_MAX_NAME_LENGTH in original_source/src/friendlist.c.
const MaxNameLength = 127

// nameBufLen is MaxNameLength+1, the fixed name-buffer width on disk (spec
// §6: "name buffer padded to TOXIC_MAX_NAME_LENGTH+1").
const nameBufLen = MaxNameLength + 1

// recordLen is the fixed on-disk size of one block-list record: a 2-byte
// big-endian name length, the fixed name buffer, a 32-byte public key, and
// an 8-byte big-endian last-online timestamp.
const recordLen = 2 + nameBufLen + 32 + 8

// BlockEntry is one block-list record (spec §3's "Block list entry").
type BlockEntry struct {
	Name       string
	PubKey     network.PublicKey
	LastOnline time.Time
}

// encode writes one fixed-size record to w in the exact wire layout spec §6
// specifies. This is boundary-format code: the layout is specified
// byte-for-byte, so encoding/binary plus a manual struct is used directly
// rather than a general serialization library.
func (e BlockEntry) encode(w io.Writer) error {
	nameBytes := []byte(e.Name)
	if len(nameBytes) > MaxNameLength {
		return fmt.Errorf("registry: block entry name exceeds %d bytes", MaxNameLength)
	}
	if err := binary.Write(w, binary.BigEndian, uint16(len(nameBytes))); err != nil {
		return err
	}
	var nameBuf [nameBufLen]byte
	copy(nameBuf[:], nameBytes)
	if _, err := w.Write(nameBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write(e.PubKey[:]); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, uint64(e.LastOnline.Unix()))
}

func decodeBlockEntry(r io.Reader) (BlockEntry, error) {
	var e BlockEntry
	var nameLen uint16
	if err := binary.Read(r, binary.BigEndian, &nameLen); err != nil {
		return e, err
	}
	if int(nameLen) > MaxNameLength {
		return e, fmt.Errorf("registry: block entry name length %d exceeds max %d", nameLen, MaxNameLength)
	}
	var nameBuf [nameBufLen]byte
	if _, err := io.ReadFull(r, nameBuf[:]); err != nil {
		return e, err
	}
	e.Name = string(nameBuf[:nameLen])
	if _, err := io.ReadFull(r, e.PubKey[:]); err != nil {
		return e, err
	}
	var ts uint64
	if err := binary.Read(r, binary.BigEndian, &ts); err != nil {
		return e, err
	}
	e.LastOnline = time.Unix(int64(ts), 0).UTC()
	return e, nil
}

// BlockList is the in-memory mirror of the on-disk block-list file; every
// mutation is followed by a Save so the file and the list agree
// byte-for-byte, per spec §3's invariant.
type BlockList struct {
	path    string
	entries []BlockEntry
}

// LoadBlockList reads path, validating that its size is a multiple of the
// fixed record length and that no entry's decoded name length exceeds
// MaxNameLength. A missing file is treated as an empty list.
func LoadBlockList(path string) (*BlockList, error) {
	bl := &BlockList{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bl, nil
		}
		return nil, err
	}
	if len(data)%recordLen != 0 {
		return nil, fmt.Errorf("registry: block-list file size %d is not a multiple of record size %d", len(data), recordLen)
	}
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		e, err := decodeBlockEntry(r)
		if err != nil {
			return nil, err
		}
		bl.entries = append(bl.entries, e)
	}
	return bl, nil
}

// Entries returns a copy of the current block list.
func (bl *BlockList) Entries() []BlockEntry { return append([]BlockEntry{}, bl.entries...) }

// Find returns the entry for pk, if blocked.
func (bl *BlockList) Find(pk network.PublicKey) (BlockEntry, bool) {
	for _, e := range bl.entries {
		if e.PubKey == pk {
			return e, true
		}
	}
	return BlockEntry{}, false
}

// Add appends e and persists the new list.
func (bl *BlockList) Add(e BlockEntry) error {
	bl.entries = append(bl.entries, e)
	return bl.Save()
}

// Remove deletes the entry for pk, if present, and persists the new list.
func (bl *BlockList) Remove(pk network.PublicKey) (BlockEntry, bool, error) {
	for i, e := range bl.entries {
		if e.PubKey == pk {
			bl.entries = append(bl.entries[:i], bl.entries[i+1:]...)
			return e, true, bl.Save()
		}
	}
	return BlockEntry{}, false, nil
}

// Save writes the list to <path>.tmp and renames over path, per spec §3's
// "writes go through a .tmp-rename" requirement. An empty list deletes the
// file (spec §6).
func (bl *BlockList) Save() error {
	if len(bl.entries) == 0 {
		err := os.Remove(bl.path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	tmp := bl.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	for _, e := range bl.entries {
		if err := e.encode(f); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, bl.path)
}
