// Package fstest provides small helpers for building throwaway FAT16
// volumes in tests, mirroring the teacher's testing/images.go pattern of
// centralizing fixture setup so individual test files stay focused on the
// behaviour under test.
package fstest

import (
	"io"
	"path/filepath"
	"testing"

	fat16 "github.com/kelveden/fat16fs"
	"github.com/xaionaro-go/bytesextra"
)

// SmallDiskSize and SmallClusterSize produce a volume with few enough
// clusters that allocator-exhaustion and chain-length tests stay cheap.
const (
	SmallDiskSize    = 64 * 1024
	SmallClusterSize = 1024
)

// NewVolume formats a fresh small volume backed by a file in t's temp
// directory and registers its cleanup.
func NewVolume(t *testing.T) *fat16.Volume {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.img")
	v, err := fat16.OpenSized(path, SmallDiskSize, SmallClusterSize)
	if err != nil {
		t.Fatalf("format test volume: %v", err)
	}
	t.Cleanup(func() {
		_ = v.Close()
	})
	return v
}

// NewMemoryImage returns an in-memory io.ReadWriteSeeker of size bytes, for
// codec-only tests (superblock/dirent encode-decode round trips) that don't
// need a real temp file and mmap. Mirrors the teacher's testing/images.go,
// which wraps a decompressed fixture the same way for its own codec tests.
func NewMemoryImage(size int) io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(make([]byte, size))
}
