package dirent

import "fmt"

// SelfEntry and ParentEntry are the relative names of a directory's own
// and parent records. Every non-root directory stores both at slots 0 and
// 1 (written by mkdir); the root stores neither. ReadDir synthesizes both
// for every listing from the cluster numbers it is given.
const (
	SelfEntry   = "."
	ParentEntry = ".."
)

// Store is a view over one cluster-sized directory block: a flat array of
// fixed-size slots, each either free, tombstoned, or holding a live Entry.
type Store struct {
	raw     []byte
	entries int
}

// NewStore wraps a directory block of raw, which must be an exact multiple
// of Size bytes.
func NewStore(raw []byte) *Store {
	return &Store{raw: raw, entries: len(raw) / Size}
}

func (s *Store) slot(i int) []byte {
	return s.raw[i*Size : (i+1)*Size]
}

// Find returns the live entry named name and its slot index, or ok=false
// if no such entry exists. "." and ".." match the stored records of that
// name, so they are found in non-root blocks and not in the root.
func (s *Store) Find(name string) (e Entry, index int, ok bool) {
	stem, ext := SplitName(name)
	for i := 0; i < s.entries; i++ {
		slot := s.slot(i)
		if !IsLive(slot) {
			continue
		}
		candidate := Decode(slot)
		if candidate.Name == stem && candidate.Ext == ext {
			return candidate, i, true
		}
	}
	return Entry{}, -1, false
}

// FindFreeSlot returns the index of the first free-or-tombstoned slot,
// reusing tombstones ahead of extending into untouched space, or ok=false
// if the block is full.
func (s *Store) FindFreeSlot() (index int, ok bool) {
	for i := 0; i < s.entries; i++ {
		slot := s.slot(i)
		if IsFree(slot) || IsTombstone(slot) {
			return i, true
		}
	}
	return -1, false
}

// InsertEntry writes e into slot index, overwriting whatever was there.
func (s *Store) InsertEntry(index int, e Entry) {
	e.Encode(s.slot(index))
}

// Tombstone marks slot index deleted.
func (s *Store) Tombstone(index int) {
	MarkTombstone(s.slot(index))
}

// IsEmpty reports whether the block holds no live entries other than the
// `.` and `..` records every non-root directory stores at slots 0 and 1.
// Used by rmdir to enforce spec.md §4.6's non-empty-directory check.
func (s *Store) IsEmpty() bool {
	for i := 0; i < s.entries; i++ {
		slot := s.slot(i)
		if !IsLive(slot) {
			continue
		}
		name := Decode(slot).DisplayName()
		if name == SelfEntry || name == ParentEntry {
			continue
		}
		return false
	}
	return true
}

// DirEntry is one listed entry in a readdir result: a display name plus
// its decoded record, or (for "." and "..") a synthesized record carrying
// only the cluster number a caller needs.
type DirEntry struct {
	Name  string
	Entry Entry
}

// ReadDir lists the block's entries, prepending synthesized "." and ".."
// records pointing at selfCluster and parentCluster respectively. The
// stored "." and ".." slots of a non-root block are skipped rather than
// listed twice (spec.md §4.3).
func ReadDir(raw []byte, selfCluster, parentCluster uint16) []DirEntry {
	s := NewStore(raw)
	out := make([]DirEntry, 0, s.entries+2)

	out = append(out, DirEntry{
		Name:  SelfEntry,
		Entry: Entry{Attrs: AttrDirectory, FirstCluster: selfCluster},
	})
	out = append(out, DirEntry{
		Name:  ParentEntry,
		Entry: Entry{Attrs: AttrDirectory, FirstCluster: parentCluster},
	})

	for i := 0; i < s.entries; i++ {
		slot := s.slot(i)
		if !IsLive(slot) {
			continue
		}
		e := Decode(slot)
		name := e.DisplayName()
		if name == SelfEntry || name == ParentEntry {
			continue
		}
		out = append(out, DirEntry{Name: name, Entry: e})
	}
	return out
}

// ValidateSelfParent checks that the block's own "." and ".." records, if
// present as real stored entries, agree with the expected cluster numbers.
// Used by fsck (spec.md §8 invariant 4). Only records that are present are
// checked; a missing record is not reported here (the root block stores
// neither).
func ValidateSelfParent(raw []byte, selfCluster, parentCluster uint16) error {
	s := NewStore(raw)
	for i := 0; i < s.entries; i++ {
		slot := s.slot(i)
		if !IsLive(slot) {
			continue
		}
		e := Decode(slot)
		switch e.DisplayName() {
		case SelfEntry:
			if e.FirstCluster != selfCluster {
				return fmt.Errorf("stored . entry points at cluster %d, expected %d", e.FirstCluster, selfCluster)
			}
		case ParentEntry:
			if e.FirstCluster != parentCluster {
				return fmt.Errorf("stored .. entry points at cluster %d, expected %d", e.FirstCluster, parentCluster)
			}
		}
	}
	return nil
}
