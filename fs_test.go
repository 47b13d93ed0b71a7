package fat16

import (
	"testing"

	"github.com/hanwen/go-fuse/fuse"
	"github.com/stretchr/testify/require"
)

func newTestFileSystem(t *testing.T) *FileSystem {
	t.Helper()
	return NewFileSystem(newTestVolume(t))
}

func TestGetAttrReportsRootAsDirectory(t *testing.T) {
	fs := newTestFileSystem(t)
	attr, status := fs.GetAttr("", &fuse.Context{})
	require.Equal(t, fuse.OK, status)
	require.Equal(t, uint32(fuse.S_IFDIR|0755), attr.Mode)
}

func TestGetAttrMissingPathIsNotFound(t *testing.T) {
	fs := newTestFileSystem(t)
	_, status := fs.GetAttr("nope.txt", &fuse.Context{})
	require.NotEqual(t, fuse.OK, status)
}

func TestCreateWriteReadThroughFileSystem(t *testing.T) {
	fs := newTestFileSystem(t)

	handle, status := fs.Create("a.txt", 0, 0644, &fuse.Context{})
	require.Equal(t, fuse.OK, status)

	n, status := handle.Write([]byte("hello"), 0)
	require.Equal(t, fuse.OK, status)
	require.Equal(t, uint32(5), n)

	buf := make([]byte, 5)
	result, status := handle.Read(buf, 0)
	require.Equal(t, fuse.OK, status)
	read, rstatus := result.Bytes(buf)
	require.Equal(t, fuse.OK, rstatus)
	require.Equal(t, "hello", string(read))

	attr, status := fs.GetAttr("a.txt", &fuse.Context{})
	require.Equal(t, fuse.OK, status)
	require.Equal(t, uint64(5), attr.Size)
}

func TestMkdirOpenDirListsEntries(t *testing.T) {
	fs := newTestFileSystem(t)
	require.Equal(t, fuse.OK, fs.Mkdir("sub", 0755, &fuse.Context{}))

	entries, status := fs.OpenDir("", &fuse.Context{})
	require.Equal(t, fuse.OK, status)

	names := make(map[string]bool)
	for _, e := range entries {
		names[e.Name] = true
	}
	require.True(t, names["."])
	require.True(t, names[".."])
	require.True(t, names["sub"])
}

func TestUnlinkRemovesEntry(t *testing.T) {
	fs := newTestFileSystem(t)
	_, status := fs.Create("a.txt", 0, 0644, &fuse.Context{})
	require.Equal(t, fuse.OK, status)

	require.Equal(t, fuse.OK, fs.Unlink("a.txt", &fuse.Context{}))
	_, status = fs.GetAttr("a.txt", &fuse.Context{})
	require.NotEqual(t, fuse.OK, status)
}

func TestUtimensResolvesPath(t *testing.T) {
	fs := newTestFileSystem(t)
	status := fs.Utimens("missing.txt", nil, nil, &fuse.Context{})
	require.NotEqual(t, fuse.OK, status)
}
