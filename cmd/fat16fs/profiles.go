package main

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
)

// Profile is one named disk-size preset, loaded from the embedded CSV
// below. This mirrors the teacher's disks.DiskGeometry pattern (a
// gocsv-driven table of named presets in disks/disks.go), retargeted from
// floppy-drive geometries to the FAT16 driver's own (disk size, cluster
// size) pairs.
type Profile struct {
	Name        string `csv:"name"`
	DiskSize    uint32 `csv:"disk_size_bytes"`
	ClusterSize uint32 `csv:"cluster_size_bytes"`
	Notes       string `csv:"notes"`
}

//go:embed profiles.csv
var profilesRawCSV string

var profiles map[string]Profile

func init() {
	profiles = make(map[string]Profile)
	reader := strings.NewReader(profilesRawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Profile) error {
		if _, exists := profiles[row.Name]; exists {
			return fmt.Errorf("duplicate disk profile name %q", row.Name)
		}
		profiles[row.Name] = row
		return nil
	})
	if err != nil {
		panic(fmt.Sprintf("embedded disk profile table is malformed: %s", err))
	}
}

// lookupProfile returns the named profile, or the "default" profile
// (spec.md's 16 MiB / 4096-byte layout) if name is empty.
func lookupProfile(name string) (Profile, error) {
	if name == "" {
		name = "default"
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("no disk profile named %q", name)
	}
	return p, nil
}
