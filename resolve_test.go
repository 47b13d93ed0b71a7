package fat16

import (
	"path/filepath"
	"testing"

	"github.com/kelveden/fat16fs/dirent"
	"github.com/stretchr/testify/require"
)

func newTestVolume(t *testing.T) *Volume {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.img")
	v, err := OpenSized(path, 64*1024, 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func mkdirFixture(t *testing.T, v *Volume, parent DirLocation, name string) uint16 {
	t.Helper()
	cluster, err := v.fat.Allocate()
	require.NoError(t, err)

	stem, ext := dirent.SplitName(name)
	store := v.Store(parent)
	idx, ok := store.FindFreeSlot()
	require.True(t, ok)
	store.InsertEntry(idx, dirent.Entry{
		Name:         stem,
		Ext:          ext,
		Attrs:        dirent.AttrDirectory,
		FirstCluster: uint16(cluster),
	})
	return uint16(cluster)
}

func mkfileFixture(t *testing.T, v *Volume, parent DirLocation, name string, size uint32) {
	t.Helper()
	cluster, err := v.fat.Allocate()
	require.NoError(t, err)

	stem, ext := dirent.SplitName(name)
	store := v.Store(parent)
	idx, ok := store.FindFreeSlot()
	require.True(t, ok)
	store.InsertEntry(idx, dirent.Entry{
		Name:         stem,
		Ext:          ext,
		FirstCluster: uint16(cluster),
		FileSize:     size,
	})
}

func TestResolveEmptyPathIsRoot(t *testing.T) {
	v := newTestVolume(t)
	_, loc, err := v.resolve("")
	require.NoError(t, err)
	require.True(t, loc.IsRoot())
}

func TestResolveTopLevelFile(t *testing.T) {
	v := newTestVolume(t)
	mkfileFixture(t, v, Root(), "a.txt", 10)

	res, _, err := v.resolve("a.txt")
	require.NoError(t, err)
	require.Equal(t, uint32(10), res.entry.FileSize)
}

func TestResolveMissingComponentIsNotFound(t *testing.T) {
	v := newTestVolume(t)
	_, _, err := v.resolve("nope.txt")
	require.Error(t, err)
	var derr *DriverError
	require.ErrorAs(t, err, &derr)
}

func TestResolveThroughFileIsNotDir(t *testing.T) {
	v := newTestVolume(t)
	mkfileFixture(t, v, Root(), "a.txt", 10)

	_, _, err := v.resolve("a.txt/b.txt")
	require.Error(t, err)
}

func TestResolveNestedDirectory(t *testing.T) {
	v := newTestVolume(t)
	sub := mkdirFixture(t, v, Root(), "sub")
	mkfileFixture(t, v, DirAtCluster(sub), "deep.txt", 5)

	res, _, err := v.resolve("sub/deep.txt")
	require.NoError(t, err)
	require.Equal(t, uint32(5), res.entry.FileSize)
}

func TestResolveParentSplitsPath(t *testing.T) {
	v := newTestVolume(t)
	sub := mkdirFixture(t, v, Root(), "sub")

	parent, base, err := v.resolveParent("sub/newfile.txt")
	require.NoError(t, err)
	require.Equal(t, "newfile.txt", base)
	require.Equal(t, sub, parent.Cluster())
}

func TestResolveDirRejectsFile(t *testing.T) {
	v := newTestVolume(t)
	mkfileFixture(t, v, Root(), "a.txt", 1)

	_, err := v.resolveDir("a.txt")
	require.Error(t, err)
}
