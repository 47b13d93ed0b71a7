// Package alloc implements the FAT16 cluster allocator: the File Allocation
// Table itself, plus a free-cluster bitmap mirror that Allocate scans for
// the lowest free cluster instead of decoding FAT entries. There is no
// constant-time "is anything free" check; finding a free cluster is a
// linear scan of the bitmap. The bitmap is
// never the source of truth — it is rebuilt from the FAT on every mount and
// kept in lockstep with it on every mutation, the same load-then-track
// discipline the teacher's block cache uses for loaded/dirty bookkeeping.
package alloc

import (
	"encoding/binary"
	"fmt"

	bitmap "github.com/boljen/go-bitmap"
)

const (
	entryFree     uint16 = 0x0000
	entryEOF      uint16 = 0xFFFF
	mediaSentinel uint16 = 0xFFF8
)

// Cluster is a 1-based cluster number. Numbers 0 and 1 are reserved.
type Cluster uint16

// FAT is a view over the on-disk File Allocation Table: a flat array of
// 16-bit little-endian cluster links, indexed by cluster number.
type FAT struct {
	raw   []byte // 2*total bytes, a sub-slice of the mapped arena
	total uint32
	free  bitmap.Bitmap
}

// Format initializes a fresh FAT of `total` entries: FAT[0] holds the media
// sentinel, FAT[1] holds EOF, and everything else is FREE.
func Format(raw []byte, total uint32) *FAT {
	f := &FAT{raw: raw, total: total, free: bitmap.New(int(total))}
	for i := uint32(0); i < total; i++ {
		f.setRaw(Cluster(i), entryFree)
		f.free.Set(int(i), true)
	}
	f.setRaw(0, mediaSentinel)
	f.setRaw(1, entryEOF)
	f.free.Set(0, false)
	f.free.Set(1, false)
	return f
}

// Load rebuilds a FAT view (and its free-cluster mirror) from an existing
// on-disk table of `total` entries.
func Load(raw []byte, total uint32) *FAT {
	f := &FAT{raw: raw, total: total, free: bitmap.New(int(total))}
	for i := uint32(0); i < total; i++ {
		f.free.Set(int(i), f.getRaw(Cluster(i)) == entryFree)
	}
	return f
}

func (f *FAT) getRaw(c Cluster) uint16 {
	return binary.LittleEndian.Uint16(f.raw[int(c)*2 : int(c)*2+2])
}

func (f *FAT) setRaw(c Cluster, value uint16) {
	binary.LittleEndian.PutUint16(f.raw[int(c)*2:int(c)*2+2], value)
}

// Get returns the raw FAT entry for cluster c.
func (f *FAT) Get(c Cluster) uint16 {
	return f.getRaw(c)
}

// SetForTest writes a raw value into cluster c's entry, bypassing the
// allocator's own bookkeeping (the free-cluster bitmap mirror is not
// updated). It exists solely so fsck's tests can construct otherwise
// unreachable invariant violations against a real volume.
func (f *FAT) SetForTest(c Cluster, value uint16) {
	f.setRaw(c, value)
}

// IsEOF reports whether value marks the end of a chain.
func (f *FAT) IsEOF(value uint16) bool {
	return value == entryEOF
}

// IsFree reports whether cluster c is currently unallocated.
func (f *FAT) IsFree(c Cluster) bool {
	return f.getRaw(c) == entryFree
}

// TotalClusters returns the number of entries in the table, including the
// two reserved ones.
func (f *FAT) TotalClusters() uint32 {
	return f.total
}

// Allocate finds the lowest-indexed free cluster, marks it EOF, and returns
// it. The lowest-index-first policy is deterministic by design (spec.md
// §4.2) to keep tests reproducible.
func (f *FAT) Allocate() (Cluster, error) {
	for i := uint32(firstDataCluster); i < f.total; i++ {
		if f.free.Get(int(i)) {
			f.setRaw(Cluster(i), entryEOF)
			f.free.Set(int(i), false)
			return Cluster(i), nil
		}
	}
	return 0, errNoSpace
}

// Extend allocates a new cluster and links tail to it.
func (f *FAT) Extend(tail Cluster) (Cluster, error) {
	next, err := f.Allocate()
	if err != nil {
		return 0, err
	}
	f.setRaw(tail, uint16(next))
	return next, nil
}

// FreeChain walks the chain starting at head and marks every cluster in it
// FREE. The walk is bounded by total clusters to defend against a cyclic
// (corrupted) chain; exceeding the bound is reported rather than looping
// forever.
func (f *FAT) FreeChain(head Cluster) error {
	current := head
	for steps := uint32(0); !f.IsEOF(uint16(current)) && current != 0; steps++ {
		if steps >= f.total {
			return fmt.Errorf("cluster chain from %d did not terminate within %d steps", head, f.total)
		}
		next := f.getRaw(current)
		f.setRaw(current, entryFree)
		f.free.Set(int(current), true)
		if next == entryEOF {
			break
		}
		current = Cluster(next)
	}
	return nil
}

// ChainLength counts the clusters in the chain starting at head, stopping
// at EOF. Bounded by total clusters; a result of -1 indicates the bound was
// exceeded (a cyclic or corrupted chain).
func (f *FAT) ChainLength(head Cluster) int {
	n := 0
	current := head
	for steps := uint32(0); ; steps++ {
		if steps >= f.total {
			return -1
		}
		n++
		value := f.getRaw(current)
		if f.IsEOF(value) {
			return n
		}
		current = Cluster(value)
	}
}

// NthCluster returns the index'th cluster (0-based) in the chain starting
// at head, or false if the chain is shorter than index+1 clusters. The walk
// takes at most index steps; it does not detect cycles.
func (f *FAT) NthCluster(head Cluster, index int) (Cluster, bool) {
	current := head
	for i := 0; i < index; i++ {
		value := f.getRaw(current)
		if f.IsEOF(value) {
			return 0, false
		}
		current = Cluster(value)
	}
	return current, true
}

const firstDataCluster = 2

var errNoSpace = fmt.Errorf("no free cluster")

// ErrNoSpace is the sentinel Allocate/Extend return when the table has no
// free clusters left; callers translate it to ENOSPC.
func ErrNoSpace() error { return errNoSpace }
