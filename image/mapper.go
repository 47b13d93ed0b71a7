// Package image owns the memory-mapped backing file for a FAT16 volume.
//
// It is the single owner of the mapping for the lifetime of a mount: it
// opens or creates the image, sizes and mmaps it, and hands out bounded
// []byte sub-slices of that one arena to its caller. Nothing else in this
// module touches the file descriptor or the mapping directly, which keeps
// test isolation trivial — a Mapper over a temp file behaves exactly like
// one over a real disk image.
package image

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/sys/unix"
)

// Mapper holds the single mmap'd arena backing a volume.
type Mapper struct {
	file    *os.File
	arena   []byte
	size    int
	created bool
}

// Open opens path for read/write, creating and zero-sizing it to size bytes
// if it doesn't exist yet, then mmaps it with shared read/write semantics.
// Created reports whether the image was freshly created (and therefore
// still needs formatting) as opposed to pre-existing.
func Open(path string, size int) (m *Mapper, created bool, err error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if os.IsNotExist(err) {
		file, err = os.Create(path)
		if err != nil {
			return nil, false, fmt.Errorf("create image %q: %w", path, err)
		}
		if truncErr := file.Truncate(int64(size)); truncErr != nil {
			file.Close()
			return nil, false, fmt.Errorf("size image %q: %w", path, truncErr)
		}
		created = true
	} else if err != nil {
		return nil, false, fmt.Errorf("open image %q: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, false, fmt.Errorf("stat image %q: %w", path, err)
	}
	if !created && info.Size() != int64(size) {
		file.Close()
		return nil, false, fmt.Errorf(
			"image %q is %d bytes, expected %d (images are not portable across sizes)",
			path, info.Size(), size)
	}

	arena, err := unix.Mmap(
		int(file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, false, fmt.Errorf("mmap image %q: %w", path, err)
	}

	return &Mapper{file: file, arena: arena, size: size, created: created}, created, nil
}

// Data returns the whole mapped arena. Callers slice it for their own
// regions; the Mapper retains ownership of the backing memory.
func (m *Mapper) Data() []byte {
	return m.arena
}

// Close flushes the mapping synchronously, unmaps it, and closes the file
// descriptor. Per spec.md §4.1, a flush failure is logged and returned but
// does not prevent unmap/close from proceeding.
func (m *Mapper) Close() error {
	var flushErr error
	if m.arena != nil {
		if err := unix.Msync(m.arena, unix.MS_SYNC); err != nil {
			flushErr = fmt.Errorf("sync image: %w", err)
			log.Printf("%v", flushErr)
		}
		if err := unix.Munmap(m.arena); err != nil && flushErr == nil {
			flushErr = fmt.Errorf("unmap image: %w", err)
		}
		m.arena = nil
	}
	if closeErr := m.file.Close(); closeErr != nil && flushErr == nil {
		flushErr = closeErr
	}
	return flushErr
}
