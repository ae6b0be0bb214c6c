// Package difftree computes the set of path-level changes between two
// immutable, content-addressed tree snapshots without materializing
// either snapshot's full file list.
//
// The core is a sorted two-way merge over the entry streams of both
// trees, with pathspec-driven pruning, optional recursion into changed
// directories, and a single-path rename-follow fallback that re-runs
// the traversal to recover the historical name of a freshly added
// file.
//
// Trees are resolved through the TreeResolver interface; the
// storage/memory package provides an in-memory implementation, and
// utils/fstree can snapshot a filesystem into one.
//
//	st := memory.NewStorage()
//	before, _ := st.StoreDir(map[string]string{"a.txt": "1"})
//	after, _ := st.StoreDir(map[string]string{"a.txt": "2", "b.txt": "3"})
//
//	res, _ := difftree.DiffTree(st, before, after, "", &difftree.Options{Recursive: true})
//	for _, c := range res.Changes {
//		fmt.Println(c)
//	}
package difftree
