package fat16

import (
	"bytes"
	"testing"

	"github.com/kelveden/fat16fs/alloc"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	v := newTestVolume(t)
	require.NoError(t, v.Create("a.txt"))

	data := []byte("hello")
	n, err := v.WriteFile("a.txt", data, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	buf := make([]byte, len(data))
	n, err = v.ReadFile("a.txt", buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, buf)
}

func TestWriteExactlyOneClusterUsesOneCluster(t *testing.T) {
	v := newTestVolume(t)
	require.NoError(t, v.Create("a.bin"))

	data := bytes.Repeat([]byte{0xAB}, int(v.sb.ClusterSize))
	_, err := v.WriteFile("a.bin", data, 0)
	require.NoError(t, err)

	res, _, err := v.resolve("a.bin")
	require.NoError(t, err)
	require.Equal(t, 1, v.fat.ChainLength(alloc.Cluster(res.entry.FirstCluster)))
}

func TestWriteOneByteOverClusterUsesTwoClusters(t *testing.T) {
	v := newTestVolume(t)
	require.NoError(t, v.Create("a.bin"))

	data := bytes.Repeat([]byte{0xAB}, int(v.sb.ClusterSize)+1)
	_, err := v.WriteFile("a.bin", data, 0)
	require.NoError(t, err)

	res, _, err := v.resolve("a.bin")
	require.NoError(t, err)
	require.Equal(t, 2, v.fat.ChainLength(alloc.Cluster(res.entry.FirstCluster)))
}

func TestReadAtOffsetEqualToFileSizeReturnsZero(t *testing.T) {
	v := newTestVolume(t)
	require.NoError(t, v.Create("a.txt"))
	_, err := v.WriteFile("a.txt", []byte("hi"), 0)
	require.NoError(t, err)

	buf := make([]byte, 8)
	n, err := v.ReadFile("a.txt", buf, 2)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestReadClampsToFileSize(t *testing.T) {
	v := newTestVolume(t)
	require.NoError(t, v.Create("a.txt"))
	_, err := v.WriteFile("a.txt", []byte("hello"), 0)
	require.NoError(t, err)

	buf := make([]byte, 100)
	n, err := v.ReadFile("a.txt", buf, 0)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestWriteAtOffsetExtendsFileSize(t *testing.T) {
	v := newTestVolume(t)
	require.NoError(t, v.Create("a.txt"))

	_, err := v.WriteFile("a.txt", []byte("hello"), 10)
	require.NoError(t, err)

	res, _, err := v.resolve("a.txt")
	require.NoError(t, err)
	require.Equal(t, uint32(15), res.entry.FileSize)
}

func TestTruncateOnlyUpdatesFileSize(t *testing.T) {
	v := newTestVolume(t)
	require.NoError(t, v.Create("a.txt"))
	_, err := v.WriteFile("a.txt", []byte("hello world"), 0)
	require.NoError(t, err)

	require.NoError(t, v.Truncate("a.txt", 3))

	res, _, err := v.resolve("a.txt")
	require.NoError(t, err)
	require.Equal(t, uint32(3), res.entry.FileSize)
}

func TestReadWriteRejectDirectories(t *testing.T) {
	v := newTestVolume(t)
	require.NoError(t, v.Mkdir("d"))

	_, err := v.ReadFile("d", make([]byte, 1), 0)
	require.Error(t, err)

	_, err = v.WriteFile("d", []byte("x"), 0)
	require.Error(t, err)
}

func TestReadWriteTruncateRejectRoot(t *testing.T) {
	v := newTestVolume(t)
	require.NoError(t, v.Create("a.txt"))

	_, err := v.ReadFile("/", make([]byte, 1), 0)
	require.Error(t, err)

	_, err = v.WriteFile("/", []byte("x"), 0)
	require.Error(t, err)

	require.Error(t, v.Truncate("/", 0))

	res, _, findErr := v.resolve("a.txt")
	require.NoError(t, findErr, "root ops must not disturb root slot 0's real entry")
	require.Equal(t, uint32(0), res.entry.FileSize)
}
