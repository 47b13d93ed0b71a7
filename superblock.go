package fat16

import (
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// DiskSize is the default size of a formatted image, in bytes.
const DiskSize = 16 * 1024 * 1024

// ClusterSize is the default size of a single cluster, in bytes.
const ClusterSize = 4096

// SuperblockSize is the size of the on-disk layout header, in bytes:
// five little-endian uint32 fields.
const SuperblockSize = 20

// DirentSize is the size of one packed directory entry, in bytes.
const DirentSize = 32

// clusterFree, clusterEOF, and the two reserved FAT entry values, per
// spec.md §3.
const (
	clusterFree       uint16 = 0x0000
	clusterEOF        uint16 = 0xFFFF
	mediaDescriptor   uint16 = 0xFFF8
	firstDataCluster         = 2
	reservedEntries          = 2
)

// Superblock is the layout header written at offset 0 of the image. It
// records cluster size and the absolute byte offsets of the three regions
// that follow it: the FAT, the root directory block, and the data area.
type Superblock struct {
	TotalClusters uint32
	FATOffset     uint32
	RootDirOffset uint32
	DataOffset    uint32
	ClusterSize   uint32
}

// computeLayout lays out a fresh image of diskSize bytes using clusterSize
// clusters, following spec.md §4.1 step 4: superblock, FAT (2 bytes per
// cluster), one cluster-sized root directory block, then the data area.
func computeLayout(diskSize, clusterSize uint32) Superblock {
	totalClusters := (diskSize - SuperblockSize) / (clusterSize + 2)

	fatOffset := uint32(SuperblockSize)
	rootDirOffset := fatOffset + totalClusters*2
	dataOffset := rootDirOffset + clusterSize

	return Superblock{
		TotalClusters: totalClusters,
		FATOffset:     fatOffset,
		RootDirOffset: rootDirOffset,
		DataOffset:    dataOffset,
		ClusterSize:   clusterSize,
	}
}

// decodeSuperblock reads a Superblock from the first SuperblockSize bytes
// of the image.
func decodeSuperblock(data []byte) Superblock {
	return Superblock{
		TotalClusters: binary.LittleEndian.Uint32(data[0:4]),
		FATOffset:     binary.LittleEndian.Uint32(data[4:8]),
		RootDirOffset: binary.LittleEndian.Uint32(data[8:12]),
		DataOffset:    binary.LittleEndian.Uint32(data[12:16]),
		ClusterSize:   binary.LittleEndian.Uint32(data[16:20]),
	}
}

// encode writes the superblock to the first SuperblockSize bytes of dst.
func (sb Superblock) encode(dst []byte) {
	writer := bytewriter.New(dst[:SuperblockSize])
	binary.Write(writer, binary.LittleEndian, sb.TotalClusters)
	binary.Write(writer, binary.LittleEndian, sb.FATOffset)
	binary.Write(writer, binary.LittleEndian, sb.RootDirOffset)
	binary.Write(writer, binary.LittleEndian, sb.DataOffset)
	binary.Write(writer, binary.LittleEndian, sb.ClusterSize)
}

// clusterOffset returns the absolute byte offset of cluster N in the data
// area. Cluster numbering starts at 2; N must already be known valid.
func (sb Superblock) clusterOffset(cluster uint16) int64 {
	return int64(sb.DataOffset) + int64(cluster-firstDataCluster)*int64(sb.ClusterSize)
}
