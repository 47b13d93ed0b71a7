// Package dirent implements the packed 32-byte FAT16 directory entry
// format and the 8.3 name normalization rules that go with it.
package dirent

import (
	"encoding/binary"
	"strings"

	"github.com/noxer/bytewriter"
)

// Size is the length in bytes of one packed entry.
const Size = 32

// Attribute bits, per spec.md §3.
const (
	AttrReadOnly  byte = 0x01
	AttrHidden    byte = 0x02
	AttrSystem    byte = 0x04
	AttrVolume    byte = 0x08
	AttrDirectory byte = 0x10
	AttrArchive   byte = 0x20
)

const (
	markerFree      byte = 0x00
	markerTombstone byte = 0xE5
)

// Entry is the decoded form of one 32-byte directory record.
type Entry struct {
	Name         [8]byte
	Ext          [3]byte
	Attrs        byte
	MTime        uint16
	MDate        uint16
	FirstCluster uint16
	FileSize     uint32
}

// IsFree reports whether the slot has never held an entry.
func IsFree(raw []byte) bool {
	return raw[0] == markerFree
}

// IsTombstone reports whether the slot held an entry that has been deleted.
func IsTombstone(raw []byte) bool {
	return raw[0] == markerTombstone
}

// IsLive reports whether the slot holds a currently valid entry.
func IsLive(raw []byte) bool {
	return !IsFree(raw) && !IsTombstone(raw)
}

// Decode reads a packed entry from the first Size bytes of raw.
func Decode(raw []byte) Entry {
	var e Entry
	copy(e.Name[:], raw[0:8])
	copy(e.Ext[:], raw[8:11])
	e.Attrs = raw[11]
	e.MTime = binary.LittleEndian.Uint16(raw[22:24])
	e.MDate = binary.LittleEndian.Uint16(raw[24:26])
	e.FirstCluster = binary.LittleEndian.Uint16(raw[26:28])
	e.FileSize = binary.LittleEndian.Uint32(raw[28:32])
	return e
}

// Encode writes e as a packed entry into the first Size bytes of dst. The
// 10 reserved bytes are left zeroed.
func (e Entry) Encode(dst []byte) {
	for i := range dst[:Size] {
		dst[i] = 0
	}
	copy(dst[0:8], e.Name[:])
	copy(dst[8:11], e.Ext[:])
	dst[11] = e.Attrs

	w := bytewriter.New(dst[22:32])
	binary.Write(w, binary.LittleEndian, e.MTime)
	binary.Write(w, binary.LittleEndian, e.MDate)
	binary.Write(w, binary.LittleEndian, e.FirstCluster)
	binary.Write(w, binary.LittleEndian, e.FileSize)
}

// MarkTombstone overwrites the first byte of a slot so it reads as deleted
// without disturbing the rest of the record.
func MarkTombstone(raw []byte) {
	raw[0] = markerTombstone
}

// IsDir reports whether the entry's directory attribute bit is set.
func (e Entry) IsDir() bool {
	return e.Attrs&AttrDirectory != 0
}

// DisplayName reassembles the normalized 8.3 stem and extension into the
// conventional "stem.ext" (or bare "stem") form: trims the space padding
// spec.md §3 mandates for storage, and lowercases the result, since
// readdir "emits each live entry converted back to lowercase" (spec.md
// §4.3) even though the stored form is always uppercase ASCII.
func (e Entry) DisplayName() string {
	stem := strings.TrimRight(string(e.Name[:]), " ")
	ext := strings.TrimRight(string(e.Ext[:]), " ")
	name := stem
	if ext != "" {
		name = stem + "." + ext
	}
	if name == "." || name == ".." {
		return name
	}
	return strings.ToLower(name)
}

// SplitName normalizes a user-supplied filename into the padded 8-byte
// stem and 3-byte extension fields used on disk: uppercased, truncated,
// and space-padded. "." and ".." are passed through literally, the form
// in which a directory's own and parent records are stored.
func SplitName(name string) (stem [8]byte, ext [3]byte) {
	for i := range stem {
		stem[i] = ' '
	}
	for i := range ext {
		ext[i] = ' '
	}

	if name == "." || name == ".." {
		copy(stem[:], name)
		return stem, ext
	}

	base := name
	extPart := ""
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		base = name[:idx]
		extPart = name[idx+1:]
	}

	base = strings.ToUpper(base)
	extPart = strings.ToUpper(extPart)
	if len(base) > 8 {
		base = base[:8]
	}
	if len(extPart) > 3 {
		extPart = extPart[:3]
	}
	copy(stem[:], base)
	copy(ext[:], extPart)
	return stem, ext
}
