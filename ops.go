package fat16

import (
	"github.com/kelveden/fat16fs/alloc"
	"github.com/kelveden/fat16fs/dirent"
)

// Create implements the create upcall (spec.md §4.6): resolve the parent
// directory and basename explicitly — rather than reusing resolve()'s
// partial-match side effect, per spec.md §9 — reject if the name already
// exists, then write a fresh zero-length entry with an EOF-sentinel chain.
func (v *Volume) Create(path string) error {
	parent, base, err := v.resolveParent(path)
	if err != nil {
		return err
	}
	if base == "" {
		return errInvalid(path)
	}

	store := v.Store(parent)
	if _, _, found := store.Find(base); found {
		return errExists(path)
	}

	idx, ok := store.FindFreeSlot()
	if !ok {
		return errNoSpace(path)
	}

	stem, ext := dirent.SplitName(base)
	store.InsertEntry(idx, dirent.Entry{
		Name:         stem,
		Ext:          ext,
		Attrs:        dirent.AttrArchive,
		FirstCluster: eofSentinel,
		FileSize:     0,
	})
	return nil
}

// eofSentinel is the first_cluster value stored for a file with no data
// clusters yet (spec.md §3: "sentinel EOF if empty file").
const eofSentinel = 0xFFFF

// Unlink implements the unlink upcall: resolve, reject directories, free
// the file's chain (if any), then tombstone its entry.
func (v *Volume) Unlink(path string) error {
	res, _, err := v.resolve(path)
	if err != nil {
		return err
	}
	if splitPathIsRoot(path) || res.entry.IsDir() {
		return errIsDir(path)
	}

	if res.entry.FirstCluster != eofSentinel {
		if err := v.fat.FreeChain(alloc.Cluster(res.entry.FirstCluster)); err != nil {
			return errIO(path)
		}
	}

	store := v.Store(res.parent)
	store.Tombstone(res.slotIndex)
	return nil
}

// Mkdir implements the mkdir upcall: allocate a cluster for the new
// directory, write the parent entry, then populate the fresh block's `.`
// and `..` records (spec.md §4.6). mkdir("/") is rejected with EINVAL
// since the root has no parent to create it in (spec.md §8 boundary case).
func (v *Volume) Mkdir(path string) error {
	if splitPathIsRoot(path) {
		return errInvalid(path)
	}

	parent, base, err := v.resolveParent(path)
	if err != nil {
		return err
	}
	if base == "" {
		return errInvalid(path)
	}

	store := v.Store(parent)
	if _, _, found := store.Find(base); found {
		return errExists(path)
	}
	idx, ok := store.FindFreeSlot()
	if !ok {
		return errNoSpace(path)
	}

	newCluster, err := v.fat.Allocate()
	if err != nil {
		return errNoSpace(path)
	}

	stem, ext := dirent.SplitName(base)
	store.InsertEntry(idx, dirent.Entry{
		Name:         stem,
		Ext:          ext,
		Attrs:        dirent.AttrDirectory,
		FirstCluster: uint16(newCluster),
	})

	block := v.clusterRegion(uint16(newCluster))
	for i := range block {
		block[i] = 0
	}

	parentCluster := uint16(0)
	if !parent.IsRoot() {
		parentCluster = parent.Cluster()
	}
	populateDotEntries(dirent.NewStore(block), uint16(newCluster), parentCluster)
	return nil
}

func populateDotEntries(store *dirent.Store, self, parent uint16) {
	selfStem, selfExt := dirent.SplitName(".")
	parentStem, parentExt := dirent.SplitName("..")

	store.InsertEntry(0, dirent.Entry{
		Name: selfStem, Ext: selfExt, Attrs: dirent.AttrDirectory, FirstCluster: self,
	})
	store.InsertEntry(1, dirent.Entry{
		Name: parentStem, Ext: parentExt, Attrs: dirent.AttrDirectory, FirstCluster: parent,
	})
}

// Rmdir implements the rmdir upcall: the directory must exist, be empty
// of anything but `.`/`..`, and not be the root (EBUSY).
func (v *Volume) Rmdir(path string) error {
	if splitPathIsRoot(path) {
		return errBusy(path)
	}

	res, _, err := v.resolve(path)
	if err != nil {
		return err
	}
	if !res.entry.IsDir() {
		return errNotDir(path)
	}

	childBlock := v.clusterRegion(res.entry.FirstCluster)
	childStore := dirent.NewStore(childBlock)
	if !childStore.IsEmpty() {
		return errNotEmpty(path)
	}

	if err := v.fat.FreeChain(alloc.Cluster(res.entry.FirstCluster)); err != nil {
		return errIO(path)
	}

	store := v.Store(res.parent)
	store.Tombstone(res.slotIndex)
	return nil
}

func splitPathIsRoot(path string) bool {
	return len(splitPath(path)) == 0
}
