package fat16

import (
	"github.com/kelveden/fat16fs/alloc"
	"github.com/kelveden/fat16fs/dirent"
)

// The methods in this file, apart from the CorruptFATEntryForTest hook,
// satisfy fsck.Checker, keeping that package's dependency on the volume's
// internals to a narrow, explicit surface rather than exporting the whole
// Volume.

// TotalClusters returns the number of FAT entries, including the two
// reserved ones.
func (v *Volume) TotalClusters() uint32 {
	return v.sb.TotalClusters
}

// ClusterSize returns the configured cluster size in bytes.
func (v *Volume) ClusterSize() uint32 {
	return v.sb.ClusterSize
}

// FATEntry returns the raw FAT value for cluster c.
func (v *Volume) FATEntry(c uint16) uint16 {
	return v.fat.Get(alloc.Cluster(c))
}

// IsEOF reports whether value marks the end of a chain.
func (v *Volume) IsEOF(value uint16) bool {
	return v.fat.IsEOF(value)
}

// CorruptFATEntryForTest writes a raw value directly into cluster c's FAT
// entry, bypassing every allocator invariant. It exists so fsck's tests can
// construct an otherwise-unreachable invariant violation against a real
// volume instead of a hand-built fake.
func (v *Volume) CorruptFATEntryForTest(c uint16, value uint16) {
	v.fat.SetForTest(alloc.Cluster(c), value)
}

// WalkDirectories visits every directory block reachable from the root,
// depth-first, passing each its own cluster number (0 for root), its
// parent's cluster number, and its raw backing region.
func (v *Volume) WalkDirectories(visit func(selfCluster, parentCluster uint16, raw []byte) error) error {
	return v.walkDir(Root(), 0, 0, visit)
}

func (v *Volume) walkDir(loc DirLocation, self, parent uint16, visit func(uint16, uint16, []byte) error) error {
	raw := v.dirRegion(loc)
	if err := visit(self, parent, raw); err != nil {
		return err
	}

	for _, child := range dirent.ReadDir(raw, self, parent) {
		if child.Name == dirent.SelfEntry || child.Name == dirent.ParentEntry {
			continue
		}
		if !child.Entry.IsDir() {
			continue
		}
		if err := v.walkDir(DirAtCluster(child.Entry.FirstCluster), child.Entry.FirstCluster, self, visit); err != nil {
			return err
		}
	}
	return nil
}

// WalkFiles visits every regular file entry reachable from the root,
// passing its first_cluster and recorded file_size.
func (v *Volume) WalkFiles(visit func(firstCluster uint16, fileSize uint32) error) error {
	return v.walkDir(Root(), 0, 0, func(self, parent uint16, raw []byte) error {
		for _, e := range dirent.ReadDir(raw, self, parent) {
			if e.Name == dirent.SelfEntry || e.Name == dirent.ParentEntry || e.Entry.IsDir() {
				continue
			}
			if err := visit(e.Entry.FirstCluster, e.Entry.FileSize); err != nil {
				return err
			}
		}
		return nil
	})
}
