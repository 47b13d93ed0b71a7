package dirent_test

import (
	"testing"

	"github.com/kelveden/fat16fs/dirent"
	"github.com/stretchr/testify/require"
)

func TestSplitNameUppercasesAndPads(t *testing.T) {
	stem, ext := dirent.SplitName("readme.txt")
	require.Equal(t, "README  ", string(stem[:]))
	require.Equal(t, "TXT", string(ext[:]))
}

func TestSplitNameTruncatesOverlongComponents(t *testing.T) {
	stem, ext := dirent.SplitName("verylongname.txtxt")
	require.Equal(t, "VERYLONG", string(stem[:]))
	require.Equal(t, "TXT", string(ext[:]))
}

func TestSplitNameHandlesNoExtension(t *testing.T) {
	stem, ext := dirent.SplitName("noext")
	require.Equal(t, "NOEXT   ", string(stem[:]))
	require.Equal(t, "   ", string(ext[:]))
}

func TestSplitNamePassesDotEntriesThroughLiterally(t *testing.T) {
	stem, ext := dirent.SplitName(".")
	require.Equal(t, ".       ", string(stem[:]))
	require.Equal(t, "   ", string(ext[:]))

	stem, ext = dirent.SplitName("..")
	require.Equal(t, "..      ", string(stem[:]))
	require.Equal(t, "   ", string(ext[:]))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	stem, ext := dirent.SplitName("kernel.bin")
	e := dirent.Entry{
		Name:         stem,
		Ext:          ext,
		Attrs:        dirent.AttrArchive,
		MTime:        0x1234,
		MDate:        0x5678,
		FirstCluster: 42,
		FileSize:     1000,
	}

	raw := make([]byte, dirent.Size)
	e.Encode(raw)

	decoded := dirent.Decode(raw)
	require.Equal(t, e, decoded)
	require.Equal(t, "kernel.bin", decoded.DisplayName())
}

func TestFreeAndTombstoneDetection(t *testing.T) {
	raw := make([]byte, dirent.Size)
	require.True(t, dirent.IsFree(raw))
	require.False(t, dirent.IsLive(raw))

	stem, ext := dirent.SplitName("a.b")
	e := dirent.Entry{Name: stem, Ext: ext}
	e.Encode(raw)
	require.True(t, dirent.IsLive(raw))

	dirent.MarkTombstone(raw)
	require.True(t, dirent.IsTombstone(raw))
	require.False(t, dirent.IsLive(raw))
}

func TestIsDirReflectsAttributeBit(t *testing.T) {
	e := dirent.Entry{Attrs: dirent.AttrDirectory}
	require.True(t, e.IsDir())

	e.Attrs = dirent.AttrArchive
	require.False(t, e.IsDir())
}
