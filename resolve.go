package fat16

import (
	"strings"

	"github.com/kelveden/fat16fs/dirent"
)

// DirLocation names a directory block: either the fixed root block, or the
// single cluster a subdirectory occupies. It replaces the magic-integer
// "cluster 0 means root" convention the on-disk format uses internally,
// per spec.md §9's redesign note — every path-walking routine in this
// file works in terms of DirLocation, never a bare cluster number.
type DirLocation struct {
	cluster uint16
	isRoot  bool
}

// Root is the location of the volume's root directory.
func Root() DirLocation {
	return DirLocation{isRoot: true}
}

// DirAtCluster is the location of the subdirectory occupying cluster c.
func DirAtCluster(c uint16) DirLocation {
	return DirLocation{cluster: c}
}

// IsRoot reports whether loc names the root directory.
func (loc DirLocation) IsRoot() bool {
	return loc.isRoot
}

// Cluster returns the cluster number loc names; only meaningful when
// !loc.IsRoot().
func (loc DirLocation) Cluster() uint16 {
	return loc.cluster
}

// splitPath breaks a slash-separated path into its non-empty components.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolved is what a successful path lookup produces: the entry itself,
// the slot it occupies, and the location of the directory that contains
// it (needed by callers that go on to mutate or remove the entry).
type resolved struct {
	entry     dirent.Entry
	slotIndex int
	parent    DirLocation
}

// resolve walks path from the root, component by component, following
// spec.md §4.4 exactly: ENOENT if any component is missing, ENOTDIR if an
// intermediate component names a file rather than a directory, and success
// once the final component is found. The second result is the location of
// the found entry read as a directory; the containing directory is
// res.parent. An empty or "/" path resolves to the root directory itself,
// reported with a nil error, a zero entry and parent=Root().
func (v *Volume) resolve(path string) (res resolved, loc DirLocation, err error) {
	parts := splitPath(path)
	current := Root()

	if len(parts) == 0 {
		return resolved{parent: Root()}, Root(), nil
	}

	for i, name := range parts {
		store := v.Store(current)
		entry, idx, found := store.Find(name)
		if !found {
			return resolved{}, DirLocation{}, errNotFound(path)
		}

		isLast := i == len(parts)-1
		if isLast {
			return resolved{entry: entry, slotIndex: idx, parent: current}, DirAtCluster(entry.FirstCluster), nil
		}

		if !entry.IsDir() {
			return resolved{}, DirLocation{}, errNotDir(path)
		}
		current = DirAtCluster(entry.FirstCluster)
	}

	// unreachable: the loop above always returns on its last iteration.
	return resolved{}, DirLocation{}, errNotFound(path)
}

// resolveParent splits path into its parent directory and base name, and
// resolves only the parent, per spec.md §9's resolution that create must
// look up (parentPath, baseName) explicitly rather than reusing a partial
// resolve() of the full path. Returns ENOENT/ENOTDIR on a bad parent path.
func (v *Volume) resolveParent(path string) (parent DirLocation, base string, err error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return DirLocation{}, "", errInvalid(path)
	}
	base = parts[len(parts)-1]

	current := Root()
	for _, name := range parts[:len(parts)-1] {
		store := v.Store(current)
		entry, _, found := store.Find(name)
		if !found {
			return DirLocation{}, "", errNotFound(path)
		}
		if !entry.IsDir() {
			return DirLocation{}, "", errNotDir(path)
		}
		current = DirAtCluster(entry.FirstCluster)
	}
	return current, base, nil
}

// resolveDir resolves path and requires the result to be a directory (or
// the root). Used by OpenDir.
func (v *Volume) resolveDir(path string) (DirLocation, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return Root(), nil
	}

	res, loc, err := v.resolve(path)
	if err != nil {
		return DirLocation{}, err
	}
	if !res.entry.IsDir() {
		return DirLocation{}, errNotDir(path)
	}
	return loc, nil
}
