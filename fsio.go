package fat16

import (
	"github.com/kelveden/fat16fs/alloc"
	"github.com/kelveden/fat16fs/dirent"
)

// ReadFile implements the read upcall: resolve path, clamp the requested
// range to the file's recorded size, and copy cluster-by-cluster into buf,
// honouring intra-cluster offsets at the first and last cluster touched
// (spec.md §4.5).
func (v *Volume) ReadFile(path string, buf []byte, offset int64) (int, error) {
	res, _, err := v.resolve(path)
	if err != nil {
		return 0, err
	}
	if splitPathIsRoot(path) || res.entry.IsDir() {
		return 0, errIsDir(path)
	}

	fileSize := int64(res.entry.FileSize)
	if offset >= fileSize {
		return 0, nil
	}
	size := len(buf)
	if offset+int64(size) > fileSize {
		size = int(fileSize - offset)
	}
	if size <= 0 {
		return 0, nil
	}

	clusterSize := int64(v.sb.ClusterSize)
	skip := int(offset / clusterSize)
	head := alloc.Cluster(res.entry.FirstCluster)
	if v.fat.IsEOF(uint16(head)) {
		return 0, nil
	}

	current, ok := v.fat.NthCluster(head, skip)
	if !ok {
		return 0, nil
	}

	copied := 0
	intraOffset := int(offset % clusterSize)
	for copied < size {
		region := v.clusterRegion(uint16(current))
		start := 0
		if copied == 0 {
			start = intraOffset
		}
		n := copy(buf[copied:size], region[start:])
		copied += n

		if copied >= size {
			break
		}
		next := v.fat.Get(current)
		if v.fat.IsEOF(next) {
			break
		}
		current = alloc.Cluster(next)
	}
	return copied, nil
}

// WriteFile implements the write upcall: extend the chain as needed, copy
// data in, then update the recorded file size. If allocation fails partway
// through extension, the copy proceeds with whatever chain exists and
// returns the number of bytes that actually fit (spec.md §4.5, §7 partial
// progress semantics) — already-allocated clusters are kept, never rolled
// back.
func (v *Volume) WriteFile(path string, buf []byte, offset int64) (int, error) {
	res, _, err := v.resolve(path)
	if err != nil {
		return 0, err
	}
	if splitPathIsRoot(path) || res.entry.IsDir() {
		return 0, errIsDir(path)
	}

	clusterSize := int64(v.sb.ClusterSize)
	required := int((offset + int64(len(buf)) + clusterSize - 1) / clusterSize)
	if required == 0 {
		required = 1
	}

	entry := res.entry
	empty := v.fat.IsEOF(entry.FirstCluster)

	var head, tail alloc.Cluster
	have := 0
	if !empty {
		head = alloc.Cluster(entry.FirstCluster)
		have = v.fat.ChainLength(head)
		if have < 0 {
			return 0, errIO(path)
		}
		tail, _ = v.fat.NthCluster(head, have-1)
	}

	for have < required {
		var newCluster alloc.Cluster
		var allocErr error
		if have == 0 {
			newCluster, allocErr = v.fat.Allocate()
		} else {
			newCluster, allocErr = v.fat.Extend(tail)
		}
		if allocErr != nil {
			break
		}
		if have == 0 {
			head = newCluster
		}
		tail = newCluster
		have++
	}

	if have == 0 {
		return 0, nil
	}
	entry.FirstCluster = uint16(head)

	skip := int(offset / clusterSize)
	intraOffset := int(offset % clusterSize)
	current, ok := v.fat.NthCluster(head, skip)
	if !ok {
		v.writeBackEntry(res.parent, res, entry)
		return 0, nil
	}

	written := 0
	remaining := len(buf)
	for written < remaining {
		region := v.clusterRegion(uint16(current))
		start := 0
		if written == 0 {
			start = intraOffset
		}
		n := copy(region[start:], buf[written:])
		written += n

		if written >= remaining {
			break
		}
		next := v.fat.Get(current)
		if v.fat.IsEOF(next) {
			break
		}
		current = alloc.Cluster(next)
	}

	if newSize := uint32(offset) + uint32(written); newSize > entry.FileSize {
		entry.FileSize = newSize
	}
	v.writeBackEntry(res.parent, res, entry)
	return written, nil
}

// Truncate implements the truncate upcall. Per spec.md §4.5 / §9, this
// updates only the recorded file_size; it does not free clusters when
// shrinking or pre-allocate when growing. After shrinking, reads stop at
// the new size while the clusters past it stay allocated; after growing,
// reads past the old end return whatever bytes the existing clusters
// already hold and stop at the end of the chain (a file with no clusters
// reads as empty).
func (v *Volume) Truncate(path string, size uint32) error {
	res, _, err := v.resolve(path)
	if err != nil {
		return err
	}
	if splitPathIsRoot(path) || res.entry.IsDir() {
		return errIsDir(path)
	}
	entry := res.entry
	entry.FileSize = size
	v.writeBackEntry(res.parent, res, entry)
	return nil
}

func (v *Volume) writeBackEntry(parent DirLocation, res resolved, entry dirent.Entry) {
	store := v.Store(parent)
	store.InsertEntry(res.slotIndex, entry)
}
