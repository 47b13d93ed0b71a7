// Package fsck implements offline consistency checking for a FAT16 image,
// accumulating every invariant violation found in one pass rather than
// aborting at the first, the way the teacher's go-multierror dependency is
// meant to be used.
package fsck

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/kelveden/fat16fs/dirent"
)

// Checker is the minimal surface fsck needs from a mounted volume. It is
// satisfied by *fat16.Volume without fsck importing the fat16 package
// directly: the CLI imports both packages, and fsck never imports fat16.
type Checker interface {
	TotalClusters() uint32
	ClusterSize() uint32
	FATEntry(cluster uint16) uint16
	IsEOF(value uint16) bool
	WalkDirectories(visit func(selfCluster, parentCluster uint16, raw []byte) error) error
	WalkFiles(visit func(firstCluster uint16, fileSize uint32) error) error
}

const (
	mediaSentinel = 0xFFF8
	clusterFree   = 0x0000
	eofSentinel   = 0xFFFF
)

// Check runs all five on-disk invariants from spec.md §8 against v and
// returns every violation found, wrapped in a single *multierror.Error
// (nil if the image is clean). Invariant 6 (allocate/free round-trips
// cleanly) is a behavioural property of the allocator rather than a
// static fact about an image, and is exercised by alloc's own tests
// instead.
func Check(v Checker) error {
	var result *multierror.Error

	if err := checkReservedEntries(v); err != nil {
		result = multierror.Append(result, err)
	}
	if err := checkChainsTerminate(v); err != nil {
		result = multierror.Append(result, err)
	}
	if err := checkNoSharedClusters(v); err != nil {
		result = multierror.Append(result, err)
	}
	if err := checkSelfParentEntries(v); err != nil {
		result = multierror.Append(result, err)
	}
	if err := checkFileSizeBounds(v); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

// checkReservedEntries is invariant 1: FAT[0]=0xFFF8, FAT[1]=EOF.
func checkReservedEntries(v Checker) error {
	var result *multierror.Error
	if got := v.FATEntry(0); got != mediaSentinel {
		result = multierror.Append(result, fmt.Errorf("FAT[0] = 0x%04X, expected 0x%04X", got, mediaSentinel))
	}
	if got := v.FATEntry(1); !v.IsEOF(got) {
		result = multierror.Append(result, fmt.Errorf("FAT[1] = 0x%04X, expected EOF", got))
	}
	return result.ErrorOrNil()
}

// checkChainsTerminate is invariant 2: every in-use cluster's chain
// reaches EOF within total_clusters steps.
func checkChainsTerminate(v Checker) error {
	var result *multierror.Error
	total := v.TotalClusters()
	for c := uint32(2); c < total; c++ {
		if v.FATEntry(uint16(c)) == clusterFree {
			continue
		}
		if !chainTerminates(v, uint16(c), total) {
			result = multierror.Append(result, fmt.Errorf("chain starting at cluster %d does not terminate within %d steps", c, total))
		}
	}
	return result.ErrorOrNil()
}

func chainTerminates(v Checker, start uint16, total uint32) bool {
	current := start
	for steps := uint32(0); steps < total; steps++ {
		next := v.FATEntry(current)
		if v.IsEOF(next) {
			return true
		}
		current = next
	}
	return false
}

// checkNoSharedClusters is invariant 3: no cluster is the immediate
// successor of two different clusters, which would mean two chains merge
// and stop being exclusively owned.
func checkNoSharedClusters(v Checker) error {
	var result *multierror.Error
	total := v.TotalClusters()
	owners := make(map[uint16]uint16)

	for c := uint32(2); c < total; c++ {
		cluster := uint16(c)
		next := v.FATEntry(cluster)
		if next == clusterFree || v.IsEOF(next) {
			continue
		}
		if owner, seen := owners[next]; seen {
			result = multierror.Append(result, fmt.Errorf("cluster %d is claimed by both cluster %d and cluster %d", next, owner, cluster))
			continue
		}
		owners[next] = cluster
	}
	return result.ErrorOrNil()
}

// checkSelfParentEntries is invariant 4: every non-root directory's block
// contains "." pointing to itself and ".." pointing to its parent.
func checkSelfParentEntries(v Checker) error {
	var result *multierror.Error
	err := v.WalkDirectories(func(selfCluster, parentCluster uint16, raw []byte) error {
		if selfCluster != 0 {
			store := dirent.NewStore(raw)
			if _, _, ok := store.Find(dirent.SelfEntry); !ok {
				result = multierror.Append(result, fmt.Errorf("directory at cluster %d has no . entry", selfCluster))
			}
			if _, _, ok := store.Find(dirent.ParentEntry); !ok {
				result = multierror.Append(result, fmt.Errorf("directory at cluster %d has no .. entry", selfCluster))
			}
		}
		if err := dirent.ValidateSelfParent(raw, selfCluster, parentCluster); err != nil {
			result = multierror.Append(result, err)
		}
		return nil
	})
	if err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// checkFileSizeBounds is invariant 5: file_size <= chain_length *
// cluster_size for every regular file.
func checkFileSizeBounds(v Checker) error {
	var result *multierror.Error
	clusterSize := v.ClusterSize()

	check := func(firstCluster uint16, fileSize uint32) error {
		if firstCluster == eofSentinel {
			if fileSize != 0 {
				return fmt.Errorf("empty file has file_size %d, expected 0", fileSize)
			}
			return nil
		}

		length := chainLength(v, firstCluster)
		if length < 0 {
			return fmt.Errorf("chain starting at cluster %d does not terminate", firstCluster)
		}
		if uint64(fileSize) > uint64(length)*uint64(clusterSize) {
			return fmt.Errorf("file starting at cluster %d has file_size %d, exceeding %d clusters x %d bytes", firstCluster, fileSize, length, clusterSize)
		}
		return nil
	}
	err := v.WalkFiles(func(firstCluster uint16, fileSize uint32) error {
		if err := check(firstCluster, fileSize); err != nil {
			result = multierror.Append(result, err)
		}
		return nil
	})
	if err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func chainLength(v Checker, head uint16) int {
	total := v.TotalClusters()
	n := 0
	current := head
	for steps := uint32(0); steps < total; steps++ {
		n++
		next := v.FATEntry(current)
		if v.IsEOF(next) {
			return n
		}
		current = next
	}
	return -1
}
