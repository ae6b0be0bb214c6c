// Package object implements the decoded representation of stored
// objects: trees, their entries and the changes between them.
package object

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/filemode"
)

var (
	// ErrMalformedTree is returned when a tree object cannot be decoded.
	ErrMalformedTree = errors.New("malformed tree object")
	// ErrEntryNotFound is returned when an entry is not found in a tree.
	ErrEntryNotFound = errors.New("entry not found")
)

// TreeEntry represents a file or a subtree inside a tree.
type TreeEntry struct {
	Name string
	Mode filemode.FileMode
	Hash plumbing.Hash
}

// IsDir reports whether the entry points to a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == filemode.Dir
}

// Tree is an immutable directory snapshot: an ordered list of named
// entries, content-addressed by the hash of its canonical encoding.
type Tree struct {
	Entries []TreeEntry
	Hash    plumbing.Hash
}

// NewTree returns the Tree for the given entries, sorted in canonical
// order and with its Hash computed from the canonical encoding.
func NewTree(entries []TreeEntry) (*Tree, error) {
	t := &Tree{Entries: append([]TreeEntry(nil), entries...)}
	SortEntries(t.Entries)

	data, err := t.Encode()
	if err != nil {
		return nil, err
	}

	t.Hash = plumbing.ComputeHash(plumbing.TreeObject, data)
	return t, nil
}

// Encode serializes the tree in its canonical format: one record of
// "mode name\x00" followed by the raw entry hash, per entry, in order.
func (t *Tree) Encode() ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range t.Entries {
		if e.Name == "" || strings.ContainsAny(e.Name, "/\x00") {
			return nil, fmt.Errorf("%w: invalid entry name %q", ErrMalformedTree, e.Name)
		}
		if e.Mode.IsMalformed() {
			return nil, fmt.Errorf("%w: invalid mode %s for %q", ErrMalformedTree, e.Mode, e.Name)
		}

		fmt.Fprintf(&buf, "%o %s", uint32(e.Mode), e.Name)
		buf.WriteByte(0)
		buf.Write(e.Hash.Bytes())
	}

	return buf.Bytes(), nil
}

// DecodeTree decodes the canonical encoding produced by Encode. The
// hash of the returned tree is computed from the input.
func DecodeTree(data []byte) (*Tree, error) {
	t := &Tree{Hash: plumbing.ComputeHash(plumbing.TreeObject, data)}

	rest := data
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 1 {
			return nil, fmt.Errorf("%w: missing mode", ErrMalformedTree)
		}

		mode, err := filemode.New(string(rest[:sp]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedTree, err)
		}

		rest = rest[sp+1:]
		nul := bytes.IndexByte(rest, 0)
		if nul < 1 {
			return nil, fmt.Errorf("%w: missing entry name", ErrMalformedTree)
		}
		if len(rest) < nul+1+plumbing.Size {
			return nil, fmt.Errorf("%w: truncated entry hash", ErrMalformedTree)
		}

		var h plumbing.Hash
		copy(h[:], rest[nul+1:nul+1+plumbing.Size])

		t.Entries = append(t.Entries, TreeEntry{
			Name: string(rest[:nul]),
			Mode: mode,
			Hash: h,
		})

		rest = rest[nul+1+plumbing.Size:]
	}

	return t, nil
}

// FindEntry returns the entry with the given name.
func (t *Tree) FindEntry(name string) (TreeEntry, error) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, nil
		}
	}

	return TreeEntry{}, ErrEntryNotFound
}

// SortEntries sorts entries in canonical tree order: by name bytes,
// with subtree names compared as if they carried a trailing slash, so
// a file and a directory sharing a name never sort equal.
func SortEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return CompareEntries(entries[i], entries[j]) < 0
	})
}

// CompareEntries compares two entries in canonical tree order.
func CompareEntries(a, b TreeEntry) int {
	return CompareNames(a.Name, a.IsDir(), b.Name, b.IsDir())
}

// CompareNames compares two entry names in canonical tree order,
// taking into account whether each entry is a subtree. Directories
// compare as if their name ended in a slash, which keeps "a.txt"
// before a directory "a" impossible to confuse with a file "a".
func CompareNames(a string, aDir bool, b string, bDir bool) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	if cmp := strings.Compare(a[:n], b[:n]); cmp != 0 {
		return cmp
	}

	ca := terminator(a, n, aDir)
	cb := terminator(b, n, bDir)
	return int(ca) - int(cb)
}

// terminator is the byte that follows the common prefix: the next name
// byte, a virtual slash for subtrees, or zero at end of name.
func terminator(name string, pos int, isDir bool) byte {
	if pos < len(name) {
		return name[pos]
	}
	if isDir {
		return '/'
	}
	return 0
}
