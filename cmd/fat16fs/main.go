// Command fat16fs is an offline mkfs/fsck tool for FAT16 images, separate
// from (and unaware of) whatever mounts them: per spec.md §1, the
// mount-time "--image=<path>" option plumbing belongs to the host binary
// that wires up the upcall transport. This is just a developer utility for
// preparing and checking images ahead of time, the same kind of auxiliary
// tool the teacher ships under cmd/.
package main

import (
	"fmt"
	"log"
	"os"

	fat16 "github.com/kelveden/fat16fs"
	"github.com/kelveden/fat16fs/fsck"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "fat16fs",
		Usage: "Format and check FAT16 disk images",
		Commands: []*cli.Command{
			mkfsCommand(),
			fsckCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func mkfsCommand() *cli.Command {
	return &cli.Command{
		Name:      "mkfs",
		Usage:     "Create (or overwrite) a FAT16 image",
		ArgsUsage: "IMAGE_PATH",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "profile",
				Usage: "named disk-size profile from the embedded preset table (default: \"default\")",
			},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("mkfs requires an IMAGE_PATH argument")
			}

			profile, err := lookupProfile(c.String("profile"))
			if err != nil {
				return err
			}

			// mkfs always starts from a clean image: remove anything at
			// path first so OpenSized's "pre-existing image" branch never
			// runs, even if a file of the wrong size is already there.
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove existing image: %w", err)
			}

			vol, err := fat16.OpenSized(path, profile.DiskSize, profile.ClusterSize)
			if err != nil {
				return fmt.Errorf("format %q: %w", path, err)
			}
			defer vol.Close()

			fmt.Printf(
				"formatted %q: profile=%s disk_size=%d cluster_size=%d total_clusters=%d\n",
				path, profileNameOrDefault(c.String("profile")), profile.DiskSize, profile.ClusterSize, vol.TotalClusters(),
			)
			return nil
		},
	}
}

func fsckCommand() *cli.Command {
	return &cli.Command{
		Name:      "fsck",
		Usage:     "Check a FAT16 image for invariant violations",
		ArgsUsage: "IMAGE_PATH",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("fsck requires an IMAGE_PATH argument")
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("open %q: %w", path, err)
			}

			// The image's own size tells image.Open what to mmap; the
			// cluster-size argument is only consulted when formatting a
			// fresh image, which never happens here since the file
			// already exists.
			vol, err := fat16.OpenSized(path, uint32(info.Size()), 0)
			if err != nil {
				return fmt.Errorf("open %q: %w", path, err)
			}
			defer vol.Close()

			if err := fsck.Check(vol); err != nil {
				fmt.Fprintln(os.Stderr, "fsck found problems:")
				fmt.Fprintln(os.Stderr, err.Error())
				return cli.Exit("", 1)
			}

			fmt.Printf("%q is clean\n", path)
			return nil
		},
	}
}

func profileNameOrDefault(name string) string {
	if name == "" {
		return "default"
	}
	return name
}
