package dirent_test

import (
	"testing"

	"github.com/kelveden/fat16fs/dirent"
	"github.com/stretchr/testify/require"
)

func newBlock(entries int) []byte {
	return make([]byte, entries*dirent.Size)
}

func TestFindFreeSlotPrefersFirstAvailable(t *testing.T) {
	raw := newBlock(4)
	s := dirent.NewStore(raw)

	idx, ok := s.FindFreeSlot()
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestInsertAndFindEntry(t *testing.T) {
	raw := newBlock(4)
	s := dirent.NewStore(raw)

	stem, ext := dirent.SplitName("a.txt")
	s.InsertEntry(0, dirent.Entry{Name: stem, Ext: ext, FirstCluster: 5, FileSize: 10})

	found, idx, ok := s.Find("a.txt")
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.Equal(t, uint16(5), found.FirstCluster)
}

func TestTombstonedSlotIsReusedBeforeExtending(t *testing.T) {
	raw := newBlock(4)
	s := dirent.NewStore(raw)

	stem, ext := dirent.SplitName("a.txt")
	s.InsertEntry(0, dirent.Entry{Name: stem, Ext: ext})
	s.InsertEntry(1, dirent.Entry{Name: stem, Ext: ext})
	s.Tombstone(0)

	idx, ok := s.FindFreeSlot()
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestFindFreeSlotReportsFullBlock(t *testing.T) {
	raw := newBlock(1)
	s := dirent.NewStore(raw)
	stem, ext := dirent.SplitName("a.txt")
	s.InsertEntry(0, dirent.Entry{Name: stem, Ext: ext})

	_, ok := s.FindFreeSlot()
	require.False(t, ok)
}

func TestIsEmptyIgnoresTombstones(t *testing.T) {
	raw := newBlock(2)
	s := dirent.NewStore(raw)
	require.True(t, s.IsEmpty())

	stem, ext := dirent.SplitName("a.txt")
	s.InsertEntry(0, dirent.Entry{Name: stem, Ext: ext})
	require.False(t, s.IsEmpty())

	s.Tombstone(0)
	require.True(t, s.IsEmpty())
}

func TestReadDirSynthesizesDotAndDotDot(t *testing.T) {
	raw := newBlock(2)
	s := dirent.NewStore(raw)
	stem, ext := dirent.SplitName("child.bin")
	s.InsertEntry(0, dirent.Entry{Name: stem, Ext: ext, Attrs: dirent.AttrDirectory, FirstCluster: 9})

	entries := dirent.ReadDir(raw, 4, 2)
	require.Len(t, entries, 3)
	require.Equal(t, dirent.SelfEntry, entries[0].Name)
	require.Equal(t, uint16(4), entries[0].Entry.FirstCluster)
	require.Equal(t, dirent.ParentEntry, entries[1].Name)
	require.Equal(t, uint16(2), entries[1].Entry.FirstCluster)
	require.Equal(t, "child.bin", entries[2].Name)
}

func TestValidateSelfParentDetectsMismatch(t *testing.T) {
	raw := newBlock(1)
	s := dirent.NewStore(raw)
	stem, ext := dirent.SplitName(".")
	s.InsertEntry(0, dirent.Entry{Name: stem, Ext: ext, Attrs: dirent.AttrDirectory, FirstCluster: 99})

	err := dirent.ValidateSelfParent(raw, 4, 2)
	require.Error(t, err)

	err = dirent.ValidateSelfParent(raw, 99, 2)
	require.NoError(t, err)
}
