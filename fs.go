package fat16

import (
	"sync"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/fuse"
	"github.com/hanwen/go-fuse/fuse/nodefs"
	"github.com/hanwen/go-fuse/fuse/pathfs"
)

// FileSystem adapts a Volume to the pathfs.FileSystem contract. Every
// method holds the single FS-wide lock while it touches the volume
// (spec.md §5):
// the driver serves upcalls one at a time, and finer-grained locking is
// explicitly out of scope.
type FileSystem struct {
	pathfs.FileSystem

	mu  sync.Mutex
	vol *Volume
}

// NewFileSystem wraps vol for mounting. The embedded pathfs.FileSystem
// supplies default (ENOSYS) implementations for anything this driver
// doesn't override, such as extended attributes and symlinks.
func NewFileSystem(vol *Volume) *FileSystem {
	return &FileSystem{FileSystem: pathfs.NewDefaultFileSystem(), vol: vol}
}

func clean(name string) string {
	return name
}

// errnoToStatus translates a *DriverError into the fuse.Status the upcall
// transport expects.
func errnoToStatus(err error) fuse.Status {
	if err == nil {
		return fuse.OK
	}
	if derr, ok := err.(*DriverError); ok {
		return fuse.Status(-derr.Errno())
	}
	return fuse.EIO
}

// GetAttr implements the getattr upcall (spec.md §4.7): directories report
// mode DIR|0755 with two links, files REG|0644 with one; uid/gid are taken
// from the caller, timestamps from wall-clock since none are persisted.
func (fs *FileSystem) GetAttr(name string, context *fuse.Context) (*fuse.Attr, fuse.Status) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	res, _, err := fs.vol.resolve(clean(name))
	if err != nil {
		return nil, errnoToStatus(err)
	}

	now := uint64(time.Now().Unix())
	attr := &fuse.Attr{
		Owner: fuse.Owner{Uid: context.Owner.Uid, Gid: context.Owner.Gid},
		Atime: now, Mtime: now, Ctime: now,
	}

	if splitPathIsRoot(name) || res.entry.IsDir() {
		attr.Mode = fuse.S_IFDIR | 0755
		attr.Nlink = 2
	} else {
		attr.Mode = fuse.S_IFREG | 0644
		attr.Nlink = 1
		attr.Size = uint64(res.entry.FileSize)
	}
	return attr, fuse.OK
}

// OpenDir implements the readdir upcall.
func (fs *FileSystem) OpenDir(name string, context *fuse.Context) ([]fuse.DirEntry, fuse.Status) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	loc, err := fs.vol.resolveDir(clean(name))
	if err != nil {
		return nil, errnoToStatus(err)
	}

	listing := fs.vol.listDir(loc)
	out := make([]fuse.DirEntry, 0, len(listing))
	for _, e := range listing {
		mode := uint32(fuse.S_IFREG)
		if e.Entry.IsDir() {
			mode = fuse.S_IFDIR
		}
		out = append(out, fuse.DirEntry{Name: e.Name, Mode: mode})
	}
	return out, fuse.OK
}

// Mkdir implements the mkdir upcall.
func (fs *FileSystem) Mkdir(name string, mode uint32, context *fuse.Context) fuse.Status {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return errnoToStatus(fs.vol.Mkdir(clean(name)))
}

// Rmdir implements the rmdir upcall.
func (fs *FileSystem) Rmdir(name string, context *fuse.Context) fuse.Status {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return errnoToStatus(fs.vol.Rmdir(clean(name)))
}

// Create implements the create upcall, returning a nodefs.File handle
// bound to the new entry's path.
func (fs *FileSystem) Create(name string, flags uint32, mode uint32, context *fuse.Context) (nodefs.File, fuse.Status) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.vol.Create(clean(name)); err != nil {
		return nil, errnoToStatus(err)
	}
	return &volumeFile{File: nodefs.NewDefaultFile(), fs: fs, path: clean(name)}, fuse.OK
}

// Open returns a handle over an existing file; the driver has no
// persistent inode state, so the handle is just the path plus a back
// reference to the locked volume (spec.md §2: no secondary in-memory
// index).
func (fs *FileSystem) Open(name string, flags uint32, context *fuse.Context) (nodefs.File, fuse.Status) {
	fs.mu.Lock()
	res, _, err := fs.vol.resolve(clean(name))
	fs.mu.Unlock()
	if err != nil {
		return nil, errnoToStatus(err)
	}
	if res.entry.IsDir() {
		return nil, fuse.Status(syscall.EISDIR)
	}
	return &volumeFile{File: nodefs.NewDefaultFile(), fs: fs, path: clean(name)}, fuse.OK
}

// Unlink implements the unlink upcall.
func (fs *FileSystem) Unlink(name string, context *fuse.Context) fuse.Status {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return errnoToStatus(fs.vol.Unlink(clean(name)))
}

// Truncate implements the truncate upcall directly on the path, for
// callers (e.g. the `truncate(1)` syscall path) that don't go through an
// open file handle first.
func (fs *FileSystem) Truncate(name string, size uint64, context *fuse.Context) fuse.Status {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return errnoToStatus(fs.vol.Truncate(clean(name), uint32(size)))
}

// Utimens is a no-op beyond resolving the path, since timestamps are not
// persisted (spec.md §4.7): an absent target still reports ENOENT.
func (fs *FileSystem) Utimens(name string, atime, mtime *time.Time, context *fuse.Context) fuse.Status {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, _, err := fs.vol.resolve(clean(name))
	return errnoToStatus(err)
}

// String identifies the mounted filesystem in diagnostics.
func (fs *FileSystem) String() string {
	return "fat16fs"
}

// volumeFile is the nodefs.File handle returned by Open/Create. It holds
// no cluster-chain state of its own; every operation re-resolves the path
// against the shared, lock-protected Volume, consistent with spec.md §2's
// single-source-of-truth design.
type volumeFile struct {
	nodefs.File
	fs   *FileSystem
	path string
}

func (f *volumeFile) Read(dest []byte, off int64) (fuse.ReadResult, fuse.Status) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	n, err := f.fs.vol.ReadFile(f.path, dest, off)
	if err != nil {
		return nil, errnoToStatus(err)
	}
	return fuse.ReadResultData(dest[:n]), fuse.OK
}

func (f *volumeFile) Write(data []byte, off int64) (uint32, fuse.Status) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	n, err := f.fs.vol.WriteFile(f.path, data, off)
	if err != nil {
		return 0, errnoToStatus(err)
	}
	return uint32(n), fuse.OK
}

func (f *volumeFile) Truncate(size uint64) fuse.Status {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	return errnoToStatus(f.fs.vol.Truncate(f.path, uint32(size)))
}

func (f *volumeFile) Flush() fuse.Status {
	return fuse.OK
}

func (f *volumeFile) Release() {}

func (f *volumeFile) GetAttr(out *fuse.Attr) fuse.Status {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	res, _, err := f.fs.vol.resolve(f.path)
	if err != nil {
		return errnoToStatus(err)
	}
	out.Mode = fuse.S_IFREG | 0644
	out.Nlink = 1
	out.Size = uint64(res.entry.FileSize)
	return fuse.OK
}
