package difftree

import (
	"github.com/go-difftree/difftree/diffcore"
	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/format/pathspec"
	"github.com/go-difftree/difftree/plumbing/object"
)

// followRenames re-examines a diff that produced a lone addition at
// the requested path: it re-runs the traversal over the same two trees
// without the pathspec restriction, with recursion and copy detection
// forced, and asks diffcore whether the addition is better explained
// as a rename or copy of a path that existed before.
//
// On a match, the single queued record becomes the Rename/Copy record,
// the pathspec is retargeted at the historical name, and FoundFollow
// is set so a later, broader similarity pass knows not to re-score it.
// Otherwise the original addition is reinstated. Either way the queue
// holds exactly one record afterwards.
func (d *differ) followRenames(from, to plumbing.Hash, res *Result) error {
	// Follow is very specific: it needs exactly one literal path.
	// Anything else here is a bug in the caller, not user input.
	ps := d.opts.Pathspec
	if !ps.IsSingleLiteral() {
		panic("difftree: FollowRenames requires a pathspec of exactly one literal path")
	}
	target := ps.Path()

	// Remove the sole addition from the queue, keeping it as the
	// answer of last resort.
	choice := res.Changes[0]

	sub := &differ{
		ctx: d.ctx,
		s:   d.s,
		opts: &Options{
			Recursive:        true,
			FindCopiesHarder: true,
			GracefulMissing:  d.opts.GracefulMissing,
		},
	}
	if err := sub.diff(from, to); err != nil {
		return err
	}

	classified, err := diffcore.Apply(sub.changes, d.opts.Blobs, diffcore.Options{
		RenameScore:  d.opts.RenameScore,
		BreakScore:   d.opts.BreakScore,
		SingleFollow: target,
	})
	if err != nil {
		return err
	}

	// Look for a rename or copy ending up at the requested path; its
	// source is the name to report from now on.
	for _, c := range classified {
		if c.Action != object.Rename && c.Action != object.Copy {
			continue
		}
		if c.To.Name != target {
			continue
		}

		choice = c

		nps, err := pathspec.Compile([]string{c.From.Name}, pathspec.Options{Literal: true})
		if err != nil {
			return err
		}
		nps.Recursive = ps.Recursive
		d.opts.Pathspec = nps

		res.FoundFollow = true
		res.FollowPath = c.From.Name
		break
	}

	// Every other candidate is discarded; the queue always ends up
	// with exactly one record.
	res.Changes = object.Changes{choice}
	return nil
}
