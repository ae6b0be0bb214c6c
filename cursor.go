package difftree

import (
	"github.com/go-difftree/difftree/plumbing/object"
)

// treeCursor is a position within one decoded entry list. The zero
// value is an exhausted cursor over the empty tree.
type treeCursor struct {
	entries []object.TreeEntry
	pos     int
}

// done reports whether the cursor has passed its last entry.
func (c *treeCursor) done() bool {
	return c.pos >= len(c.entries)
}

// entry returns the current entry. It must not be called on an
// exhausted cursor.
func (c *treeCursor) entry() *object.TreeEntry {
	return &c.entries[c.pos]
}

// advance moves to the next entry; it is a no-op past exhaustion.
func (c *treeCursor) advance() {
	if !c.done() {
		c.pos++
	}
}

// exhaust marks the cursor fully consumed, pruning whatever entries
// remain unvisited.
func (c *treeCursor) exhaust() {
	c.pos = len(c.entries)
}

// pathCompare orders two cursors by their current entries, taking into
// account only name and directory-ness, not hashes.
//
// Exhausted cursors take part in the comparison as +infinity, so they
// sort after every valid entry; this way, when both trees are scanned
// in order, all real entries are consumed before either side reports
// exhaustion, and "both exhausted" is the single termination condition
// of the merge.
//
// A file and a directory sharing a name never compare equal: directory
// names compare as if they carried a trailing slash.
func pathCompare(t1, t2 *treeCursor) int {
	if t1.done() {
		if t2.done() {
			return 0
		}
		return 1
	}
	if t2.done() {
		return -1
	}

	e1, e2 := t1.entry(), t2.entry()
	return object.CompareNames(e1.Name, e1.IsDir(), e2.Name, e2.IsDir())
}
