package difftree

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-difftree/difftree/diffcore"
	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/format/pathspec"
	"github.com/go-difftree/difftree/plumbing/object"
)

// DiffTree reports the changes between the trees from and to, both
// resolved through s. Either hash may be zero, standing for the empty
// tree. base, when not empty, must be a slash-terminated path prefix
// that every reported path is placed under.
func DiffTree(s TreeResolver, from, to plumbing.Hash, base string, opts *Options) (*Result, error) {
	return DiffTreeContext(context.Background(), s, from, to, base, opts)
}

// DiffRootTree reports the changes introducing the tree to, this is,
// the diff of to against the empty tree.
func DiffRootTree(s TreeResolver, to plumbing.Hash, base string, opts *Options) (*Result, error) {
	return DiffTree(s, plumbing.ZeroHash, to, base, opts)
}

// DiffTreeContext is the context-aware variant of DiffTree. A
// cancelled context aborts the traversal with ctx.Err.
func DiffTreeContext(ctx context.Context, s TreeResolver, from, to plumbing.Hash, base string, opts *Options) (*Result, error) {
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.Blobs == nil {
		if br, ok := s.(diffcore.BlobReader); ok {
			o.Blobs = br
		}
	}
	if ps := o.Pathspec; !ps.IsEmpty() {
		ps.Recursive = o.Recursive
	}

	d := &differ{
		ctx:  ctx,
		s:    s,
		opts: &o,
		base: append([]byte(nil), base...),
	}

	if err := d.diff(from, to); err != nil {
		return nil, err
	}

	res := &Result{Changes: d.changes}
	if base == "" && o.FollowRenames && !o.streaming() && d.mightBeRename() {
		if err := d.followRenames(from, to, res); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// differ holds the state of one traversal invocation tree: the shared
// path buffer and, in queue mode, the accumulated change records.
type differ struct {
	ctx  context.Context
	s    TreeResolver
	opts *Options

	// base accumulates the path prefix during recursive descent. Every
	// recursive call restores its length on return; violating this
	// corrupts sibling paths.
	base []byte

	changes object.Changes
}

// open resolves a tree hash into a cursor. The zero hash yields an
// immediately exhausted cursor over the empty tree.
func (d *differ) open(h plumbing.Hash) (*treeCursor, error) {
	if h.IsZero() {
		return &treeCursor{}, nil
	}

	entries, err := d.s.TreeEntries(h)
	if err != nil {
		if d.opts.GracefulMissing && errors.Is(err, plumbing.ErrObjectNotFound) {
			return &treeCursor{}, nil
		}
		return nil, fmt.Errorf("difftree: resolving tree %s: %w", h, err)
	}

	return &treeCursor{entries: entries}, nil
}

// diff runs the sorted two-way merge over the entries of both trees,
// recursing through emitPath where needed.
func (d *differ) diff(from, to plumbing.Hash) error {
	t1, err := d.open(from)
	if err != nil {
		return err
	}
	t2, err := d.open(to)
	if err != nil {
		return err
	}

	restricted := !d.opts.Pathspec.IsEmpty()

	for {
		if err := d.ctx.Err(); err != nil {
			return err
		}
		if d.opts.EarlyQuit != nil && d.opts.EarlyQuit() {
			return nil
		}

		if restricted {
			d.skipUninteresting(t1)
			d.skipUninteresting(t2)
		}

		if t1.done() && t2.done() {
			return nil
		}

		switch cmp := pathCompare(t1, t2); {
		case cmp == 0:
			e1, e2 := t1.entry(), t2.entry()
			if d.opts.FindCopiesHarder || e1.Hash != e2.Hash || e1.Mode != e2.Mode {
				if err := d.emitPath(e1, e2); err != nil {
					return err
				}
			}
			t1.advance()
			t2.advance()

		case cmp < 0:
			// path only in the old tree: removed
			if err := d.emitPath(t1.entry(), nil); err != nil {
				return err
			}
			t1.advance()

		default:
			// path only in the new tree: added
			if err := d.emitPath(nil, t2.entry()); err != nil {
				return err
			}
			t2.advance()
		}
	}
}

// skipUninteresting advances the cursor past entries the pathspec
// rules out, and exhausts it outright once no later sibling can match.
func (d *differ) skipUninteresting(t *treeCursor) {
	ps := d.opts.Pathspec
	for !t.done() {
		e := t.entry()
		switch ps.Classify(string(d.base), e.Name, e.IsDir()) {
		case pathspec.Interesting:
			return
		case pathspec.NotInterestingEver:
			t.exhaust()
			return
		}
		t.advance()
	}
}

// emitPath reports a single differing path, recursing into directories
// when configured. Exactly one of e1, e2 may be nil:
//
//	e1 == nil: path added, the old tree lacks it
//	e2 == nil: path removed from the old tree
//	both:      path modified
func (d *differ) emitPath(e1, e2 *object.TreeEntry) error {
	var name string
	var isDir bool

	if e2 != nil {
		name, isDir = e2.Name, e2.IsDir()
	} else {
		// A removed path takes its name from the old side; recursion
		// eligibility also follows the old side's directory bit, since
		// a deleted directory must still be descended into to report
		// all of its removed contents.
		name, isDir = e1.Name, e1.IsDir()
	}

	recurse := d.opts.Recursive && isDir
	emitThis := !recurse || d.opts.TreeInRecursive

	baseLen := len(d.base)
	d.base = append(d.base, name...)
	defer func() {
		d.base = d.base[:baseLen]
	}()

	if emitThis {
		if err := d.emit(e1, e2); err != nil {
			return err
		}
	}

	if recurse {
		d.base = append(d.base, '/')

		var from, to plumbing.Hash
		if e1 != nil {
			from = e1.Hash
		}
		if e2 != nil {
			to = e2.Hash
		}

		return d.diff(from, to)
	}

	return nil
}

// emit hands one change to the configured sink, or queues it.
func (d *differ) emit(e1, e2 *object.TreeEntry) error {
	path := string(d.base)

	if e1 != nil && e2 != nil {
		if d.opts.OnChange != nil {
			return d.opts.OnChange(path, e1.Mode, e2.Mode, e1.Hash, e2.Hash)
		}
		d.changes = append(d.changes, &object.Change{
			Action: object.Modify,
			From:   object.ChangeEntry{Name: path, Mode: e1.Mode, Hash: e1.Hash},
			To:     object.ChangeEntry{Name: path, Mode: e2.Mode, Hash: e2.Hash},
		})
		return nil
	}

	action := object.Delete
	e := e1
	if e2 != nil {
		action = object.Insert
		e = e2
	}

	if d.opts.OnAddRemove != nil {
		return d.opts.OnAddRemove(action, e.Mode, e.Hash, path)
	}

	entry := object.ChangeEntry{Name: path, Mode: e.Mode, Hash: e.Hash}
	c := &object.Change{Action: action}
	if action == object.Insert {
		c.To = entry
	} else {
		c.From = entry
	}
	d.changes = append(d.changes, c)

	return nil
}

// mightBeRename reports whether the queued result looks like it could
// be the destination of a rename: a single record with no valid old
// side.
func (d *differ) mightBeRename() bool {
	return len(d.changes) == 1 && d.changes[0].Action == object.Insert
}
