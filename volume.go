package fat16

import (
	"github.com/kelveden/fat16fs/alloc"
	"github.com/kelveden/fat16fs/dirent"
	"github.com/kelveden/fat16fs/image"
)

// rootCluster is the cluster number the on-disk format records for the
// root directory (for example in a top-level directory's ".." entry). The
// root lives in its own fixed one-cluster region rather than in the data
// area; DirLocation marks it with a flag rather than this number.
const rootCluster = 0

// Volume ties the mapped image, its superblock, the FAT, and the root
// directory block together into the one object the path resolver and I/O
// routines operate on. It assumes single-threaded access; FileSystem is
// responsible for serializing callers (spec.md §5).
type Volume struct {
	mapper *image.Mapper
	sb     Superblock
	fat    *alloc.FAT
	data   []byte // full arena, for cluster addressing via sb.clusterOffset
}

// Open mounts an existing image at path, or formats a fresh one of
// DiskSize/ClusterSize if it doesn't exist yet (spec.md §4.1).
func Open(path string) (*Volume, error) {
	return OpenSized(path, DiskSize, ClusterSize)
}

// OpenSized is Open with an explicit disk and cluster size, used by the
// mkfs CLI to support the named presets in SPEC_FULL.md's CLI section.
func OpenSized(path string, diskSize, clusterSize uint32) (*Volume, error) {
	mapper, created, err := image.Open(path, int(diskSize))
	if err != nil {
		return nil, err
	}

	v := &Volume{mapper: mapper, data: mapper.Data()}

	if created {
		v.format(diskSize, clusterSize)
	} else {
		v.sb = decodeSuperblock(v.data)
		v.fat = alloc.Load(v.fatRegion(), v.sb.TotalClusters)
	}
	return v, nil
}

func (v *Volume) format(diskSize, clusterSize uint32) {
	v.sb = computeLayout(diskSize, clusterSize)
	v.sb.encode(v.data)
	v.fat = alloc.Format(v.fatRegion(), v.sb.TotalClusters)
	// root directory block starts zeroed (all slots free) by virtue of the
	// fresh image being zero-filled on creation.
}

func (v *Volume) fatRegion() []byte {
	return v.data[v.sb.FATOffset : v.sb.FATOffset+v.sb.TotalClusters*2]
}

func (v *Volume) rootRegion() []byte {
	return v.data[v.sb.RootDirOffset : v.sb.RootDirOffset+v.sb.ClusterSize]
}

// clusterRegion returns the cluster-sized byte region for cluster number c.
func (v *Volume) clusterRegion(c uint16) []byte {
	off := v.sb.clusterOffset(c)
	return v.data[off : off+int64(v.sb.ClusterSize)]
}

// dirRegion returns the byte region backing the directory block at loc:
// the fixed root block, or the single cluster a subdirectory occupies.
// Subdirectories in this design are exactly one cluster (spec.md §2's
// fixed-size directory blocks), so there is no chain to walk here.
func (v *Volume) dirRegion(loc DirLocation) []byte {
	if loc.IsRoot() {
		return v.rootRegion()
	}
	return v.clusterRegion(loc.cluster)
}

// Close flushes and releases the underlying mapping.
func (v *Volume) Close() error {
	return v.mapper.Close()
}

// Store returns a directory Store view over loc's backing region.
func (v *Volume) Store(loc DirLocation) *dirent.Store {
	return dirent.NewStore(v.dirRegion(loc))
}

// listDir synthesizes the "." and ".." entries and lists loc's contents
// (spec.md §4.3). The root has no cluster number of its own and no
// parent, so both are reported as 0; non-root directories already store
// real "." / ".." records from Mkdir, which supplies the true parent
// cluster.
func (v *Volume) listDir(loc DirLocation) []dirent.DirEntry {
	raw := v.dirRegion(loc)

	if loc.IsRoot() {
		return dirent.ReadDir(raw, 0, 0)
	}

	self := loc.Cluster()
	parent := uint16(0)
	if entry, _, ok := dirent.NewStore(raw).Find(".."); ok {
		parent = entry.FirstCluster
	}
	return dirent.ReadDir(raw, self, parent)
}
