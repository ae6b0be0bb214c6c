package difftree

import (
	"github.com/go-difftree/difftree/diffcore"
	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/filemode"
	"github.com/go-difftree/difftree/plumbing/format/pathspec"
	"github.com/go-difftree/difftree/plumbing/object"
)

// TreeResolver provides access to decoded trees by hash.
//
// Implementations must return entries in canonical tree order (see
// object.SortEntries) or the merge produces wrong results. Returning
// plumbing.ErrObjectNotFound for a referenced hash aborts the
// traversal unless Options.GracefulMissing is set; the zero hash never
// reaches the resolver, it stands for the empty tree.
type TreeResolver interface {
	TreeEntries(h plumbing.Hash) ([]object.TreeEntry, error)
}

// Options configures one tree diff traversal. The zero value compares
// only the top level of both trees and queues every change.
type Options struct {
	// Recursive descends into directories that differ instead of
	// reporting them as single entries.
	Recursive bool

	// TreeInRecursive also reports a changed directory itself when
	// recursing into it; otherwise only its leaf changes are reported.
	TreeInRecursive bool

	// FindCopiesHarder reports paths whose content and mode did not
	// change as well, so a later similarity pass can use them as copy
	// sources.
	FindCopiesHarder bool

	// FollowRenames enables the single-path rename-follow fallback:
	// when the diff for a pathspec of exactly one literal path turns
	// out to be a lone addition, the traversal is re-run without the
	// restriction to check whether the path is better explained as a
	// rename or copy. Only honored in queue mode (no custom sinks) and
	// with an empty base path.
	FollowRenames bool

	// RenameScore is the minimum content similarity (0-100) for the
	// follow pass to pair an addition with a deletion. Zero means
	// diffcore.DefaultRenameScore.
	RenameScore int

	// BreakScore, when non-zero, lets the follow pass break rewritten
	// files into delete/add pairs before pairing (see diffcore).
	BreakScore int

	// Pathspec restricts which paths the traversal considers. nil
	// means every path is interesting. The traversal propagates
	// Recursive into the pathspec's own recursion flag.
	Pathspec *pathspec.Pathspec

	// EarlyQuit is polled once per merge iteration; returning true
	// stops the traversal cooperatively, with whatever has been
	// reported so far.
	EarlyQuit func() bool

	// GracefulMissing degrades a referenced-but-unresolvable tree to
	// an empty one instead of failing the traversal. Off by default:
	// silently treating a corrupt store as empty would report spurious
	// changes for intact trees.
	GracefulMissing bool

	// Blobs optionally provides blob content to the follow pass for
	// similarity scoring. When nil and the resolver also implements
	// diffcore.BlobReader, the resolver is used.
	Blobs diffcore.BlobReader

	// OnChange, when set, streams modifications instead of queueing
	// them. A non-nil error aborts the traversal.
	OnChange func(path string, fromMode, toMode filemode.FileMode, from, to plumbing.Hash) error

	// OnAddRemove, when set, streams additions (action Insert) and
	// removals (action Delete) instead of queueing them. The mode and
	// hash are the ones of the side where the path exists. A non-nil
	// error aborts the traversal.
	OnAddRemove func(action object.Action, mode filemode.FileMode, h plumbing.Hash, path string) error
}

// Result is the outcome of a tree diff.
type Result struct {
	// Changes is the queued change records, in traversal order. Records
	// handed to an Options sink are not queued; with only one of the
	// two sinks set, the record kinds the other would carry still land
	// here.
	Changes object.Changes

	// FoundFollow reports that the rename-follow fallback resolved the
	// sole addition into the Rename or Copy record in Changes. A later,
	// broader similarity pass must not re-score it.
	FoundFollow bool

	// FollowPath is the historical name found by the rename-follow
	// fallback; subsequent reporting should target it. Empty when
	// FoundFollow is false.
	FollowPath string
}

// streaming reports whether the caller consumes events through sinks
// instead of the queue.
func (o *Options) streaming() bool {
	return o.OnChange != nil || o.OnAddRemove != nil
}
