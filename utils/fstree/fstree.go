// Package fstree snapshots a filesystem into a content-addressed tree
// hierarchy.
package fstree

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"

	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/filemode"
	"github.com/go-difftree/difftree/plumbing/object"
	"github.com/go-difftree/difftree/storage/memory"
)

// Snapshot stores every file reachable from the root of fs into st and
// returns the hash of the resulting root tree. File contents are read
// and hashed concurrently, one goroutine per file up to the number of
// CPUs; the store itself is only written from the calling goroutine.
//
// Entries with no tree equivalent (sockets, devices) are skipped.
func Snapshot(fs billy.Filesystem, st *memory.Storage) (plumbing.Hash, error) {
	return snapshotDir(fs, "", st)
}

func snapshotDir(fs billy.Filesystem, dir string, st *memory.Storage) (plumbing.Hash, error) {
	infos, err := fs.ReadDir(dir)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("fstree: reading %q: %w", dir, err)
	}

	contents := make([][]byte, len(infos))

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, fi := range infos {
		if !fi.Mode().IsRegular() {
			continue
		}

		i, name := i, path.Join(dir, fi.Name())
		g.Go(func() error {
			f, err := fs.Open(name)
			if err != nil {
				return fmt.Errorf("fstree: opening %q: %w", name, err)
			}
			defer f.Close()

			contents[i], err = io.ReadAll(f)
			if err != nil {
				return fmt.Errorf("fstree: reading %q: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return plumbing.ZeroHash, err
	}

	entries := make([]object.TreeEntry, 0, len(infos))
	for i, fi := range infos {
		full := path.Join(dir, fi.Name())

		switch {
		case fi.IsDir():
			h, err := snapshotDir(fs, full, st)
			if err != nil {
				return plumbing.ZeroHash, err
			}
			entries = append(entries, object.TreeEntry{
				Name: fi.Name(),
				Mode: filemode.Dir,
				Hash: h,
			})

		case fi.Mode()&os.ModeSymlink != 0:
			target, err := fs.Readlink(full)
			if err != nil {
				return plumbing.ZeroHash, fmt.Errorf("fstree: readlink %q: %w", full, err)
			}
			entries = append(entries, object.TreeEntry{
				Name: fi.Name(),
				Mode: filemode.Symlink,
				Hash: st.StoreBlob([]byte(target)),
			})

		case fi.Mode().IsRegular():
			mode, err := filemode.NewFromOSFileMode(fi.Mode())
			if err != nil {
				return plumbing.ZeroHash, fmt.Errorf("fstree: %q: %w", full, err)
			}
			entries = append(entries, object.TreeEntry{
				Name: fi.Name(),
				Mode: mode,
				Hash: st.StoreBlob(contents[i]),
			})
		}
	}

	return st.StoreTree(entries)
}
