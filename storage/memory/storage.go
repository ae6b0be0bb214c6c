// Package memory implements a content-addressed object store backed by
// process memory.
package memory

import (
	"fmt"
	"strings"

	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/filemode"
	"github.com/go-difftree/difftree/plumbing/object"
)

// Storage keeps blobs and trees indexed by their hash. The zero value
// is not usable; use NewStorage.
//
// Storage is not safe for concurrent writers.
type Storage struct {
	trees map[plumbing.Hash]*object.Tree
	blobs map[plumbing.Hash][]byte
}

// NewStorage returns a new empty Storage.
func NewStorage() *Storage {
	return &Storage{
		trees: make(map[plumbing.Hash]*object.Tree),
		blobs: make(map[plumbing.Hash][]byte),
	}
}

// StoreBlob stores raw file content and returns its hash. Storing the
// same content twice is a no-op yielding the same hash.
func (s *Storage) StoreBlob(content []byte) plumbing.Hash {
	h := plumbing.ComputeHash(plumbing.BlobObject, content)
	if _, ok := s.blobs[h]; !ok {
		s.blobs[h] = append([]byte(nil), content...)
	}

	return h
}

// StoreTree stores a tree with the given entries, sorting them into
// canonical order first, and returns its hash.
func (s *Storage) StoreTree(entries []object.TreeEntry) (plumbing.Hash, error) {
	t, err := object.NewTree(entries)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if _, ok := s.trees[t.Hash]; !ok {
		s.trees[t.Hash] = t
	}

	return t.Hash, nil
}

// Tree returns the tree with the given hash, or
// plumbing.ErrObjectNotFound.
func (s *Storage) Tree(h plumbing.Hash) (*object.Tree, error) {
	t, ok := s.trees[h]
	if !ok {
		return nil, plumbing.ErrObjectNotFound
	}

	return t, nil
}

// TreeEntries returns the ordered entries of the tree with the given
// hash, or plumbing.ErrObjectNotFound.
func (s *Storage) TreeEntries(h plumbing.Hash) ([]object.TreeEntry, error) {
	t, err := s.Tree(h)
	if err != nil {
		return nil, err
	}

	return t.Entries, nil
}

// Blob returns the content of the blob with the given hash, or
// plumbing.ErrObjectNotFound.
func (s *Storage) Blob(h plumbing.Hash) ([]byte, error) {
	b, ok := s.blobs[h]
	if !ok {
		return nil, plumbing.ErrObjectNotFound
	}

	return b, nil
}

// StoreDir builds the tree hierarchy described by files, a map of
// slash-separated paths to blob contents, and returns the hash of the
// root tree. Every file is stored with mode Regular; a path ending in
// "*" is stored as Executable under the name without the marker.
func (s *Storage) StoreDir(files map[string]string) (plumbing.Hash, error) {
	root := newDirNode()
	for p, content := range files {
		mode := filemode.Regular
		if strings.HasSuffix(p, "*") {
			p = strings.TrimSuffix(p, "*")
			mode = filemode.Executable
		}

		if err := root.insert(p, content, mode); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	return root.store(s)
}

type dirNode struct {
	dirs  map[string]*dirNode
	files map[string]fileNode
}

type fileNode struct {
	content string
	mode    filemode.FileMode
}

func newDirNode() *dirNode {
	return &dirNode{
		dirs:  make(map[string]*dirNode),
		files: make(map[string]fileNode),
	}
}

func (d *dirNode) insert(p, content string, mode filemode.FileMode) error {
	name, rest, nested := strings.Cut(p, "/")
	if name == "" {
		return fmt.Errorf("invalid path %q", p)
	}

	if !nested {
		d.files[name] = fileNode{content: content, mode: mode}
		return nil
	}

	child, ok := d.dirs[name]
	if !ok {
		child = newDirNode()
		d.dirs[name] = child
	}

	return child.insert(rest, content, mode)
}

func (d *dirNode) store(s *Storage) (plumbing.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(d.dirs)+len(d.files))

	for name, f := range d.files {
		entries = append(entries, object.TreeEntry{
			Name: name,
			Mode: f.mode,
			Hash: s.StoreBlob([]byte(f.content)),
		})
	}

	for name, child := range d.dirs {
		h, err := child.store(s)
		if err != nil {
			return plumbing.ZeroHash, err
		}

		entries = append(entries, object.TreeEntry{
			Name: name,
			Mode: filemode.Dir,
			Hash: h,
		})
	}

	return s.StoreTree(entries)
}
