// Package diffcore post-processes raw tree-diff change queues: it
// pairs additions with deletions carrying the same or similar content
// so they can be reported as renames and copies, and optionally breaks
// heavily rewritten files into delete/add pairs first.
package diffcore

import (
	"fmt"

	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/object"
)

// BlobReader provides raw blob content for similarity scoring.
type BlobReader interface {
	Blob(h plumbing.Hash) ([]byte, error)
}

const (
	// DefaultRenameScore is the minimum content similarity, in
	// percent, for an addition and a deletion to pair when the caller
	// does not say otherwise.
	DefaultRenameScore = 50

	maxScore = 100
)

// Options configures one classification pass.
type Options struct {
	// RenameScore is the minimum similarity (0-100) to pair an
	// addition with a source. Zero means DefaultRenameScore.
	RenameScore int

	// BreakScore, when non-zero, splits modifications whose content
	// similarity falls below it into delete/add pairs before pairing,
	// so a complete rewrite can become the source of a rename.
	BreakScore int

	// SingleFollow restricts pairing to additions at exactly this
	// path. Used by the rename-follow pass, which only cares about one
	// destination.
	SingleFollow string
}

// Apply classifies the queue: additions that match a deleted path
// become Rename records, additions that match surviving content become
// Copy records, and identity modifications (emitted when the traversal
// ran with copy detection forced) are dropped from the output. The
// input queue is not modified.
//
// blobs may be nil, in which case only exact content matches (equal
// hashes) can pair.
func Apply(changes object.Changes, blobs BlobReader, opts Options) (object.Changes, error) {
	if opts.RenameScore <= 0 {
		opts.RenameScore = DefaultRenameScore
	}
	if opts.RenameScore > maxScore {
		opts.RenameScore = maxScore
	}

	d := &detector{blobs: blobs, opts: opts, prints: make(map[plumbing.Hash]*fingerprint)}

	queue := changes
	if opts.BreakScore > 0 && blobs != nil {
		var err error
		if queue, err = d.breakRewrites(queue); err != nil {
			return nil, err
		}
	}

	d.collect(queue)
	d.matchExact()
	if err := d.matchContent(); err != nil {
		return nil, err
	}

	return d.rebuild(queue), nil
}

// source is a potential origin for a rename or copy: a deleted path,
// or a surviving path reported as an identity modification.
type source struct {
	entry   object.ChangeEntry // the old side
	deleted bool               // true when the path is gone from the new tree
	queued  int                // index into the queue
	used    bool               // consumed as the origin of a rename
}

// addition is an Insert record waiting to be explained.
type addition struct {
	entry  object.ChangeEntry // the new side
	queued int
	paired *object.Change // replacement record, nil while unexplained
}

type detector struct {
	blobs BlobReader
	opts  Options

	adds  []*addition
	srcs  []*source
	drops []int // queue indexes of non-file identity records

	prints map[plumbing.Hash]*fingerprint
}

// collect splits the queue into pairing candidates.
func (d *detector) collect(queue object.Changes) {
	for i, c := range queue {
		switch c.Action {
		case object.Insert:
			if !c.To.Mode.IsFile() {
				continue
			}
			if d.opts.SingleFollow != "" && c.To.Name != d.opts.SingleFollow {
				continue
			}
			d.adds = append(d.adds, &addition{entry: c.To, queued: i})

		case object.Delete:
			if !c.From.Mode.IsFile() {
				continue
			}
			d.srcs = append(d.srcs, &source{entry: c.From, deleted: true, queued: i})

		case object.Modify:
			// An unmodified path only shows up when the traversal ran
			// with copy detection forced; it is never a real change.
			// Files become copy sources, anything else (submodules,
			// unrecursed directories) is dropped outright.
			if c.From.Hash == c.To.Hash && c.From.Mode == c.To.Mode {
				if c.From.Mode.IsFile() {
					d.srcs = append(d.srcs, &source{entry: c.From, queued: i})
				} else {
					d.drops = append(d.drops, i)
				}
			}
		}
	}
}

// matchExact pairs additions with sources holding identical content,
// preferring the source whose name looks most like the destination.
func (d *detector) matchExact() {
	byHash := make(map[plumbing.Hash][]*source, len(d.srcs))
	for _, s := range d.srcs {
		byHash[s.entry.Hash] = append(byHash[s.entry.Hash], s)
	}

	for _, a := range d.adds {
		var best *source
		bestName := -1
		for _, s := range byHash[a.entry.Hash] {
			if s.used || s.entry.Name == a.entry.Name {
				continue
			}
			if ns := nameSimilarityScore(s.entry.Name, a.entry.Name); ns > bestName {
				best, bestName = s, ns
			}
		}
		if best == nil {
			continue
		}

		d.pair(a, best, maxScore)
	}
}

// matchContent pairs the remaining additions with similar-enough
// sources, best matches first.
func (d *detector) matchContent() error {
	if d.blobs == nil {
		return nil
	}

	type candidate struct {
		score     int
		nameScore int
		add       *addition
		src       *source
	}

	heap := binaryheap.NewWith(func(a, b interface{}) int {
		ca, cb := a.(*candidate), b.(*candidate)
		if ca.score != cb.score {
			return cb.score - ca.score
		}
		return cb.nameScore - ca.nameScore
	})

	for _, a := range d.adds {
		if a.paired != nil {
			continue
		}
		for _, s := range d.srcs {
			if s.used || s.entry.Name == a.entry.Name {
				continue
			}

			score, err := d.similarity(s.entry.Hash, a.entry.Hash)
			if err != nil {
				return err
			}
			if score < d.opts.RenameScore {
				continue
			}

			heap.Push(&candidate{
				score:     score,
				nameScore: nameSimilarityScore(s.entry.Name, a.entry.Name),
				add:       a,
				src:       s,
			})
		}
	}

	for {
		v, ok := heap.Pop()
		if !ok {
			break
		}

		c := v.(*candidate)
		if c.add.paired != nil || c.src.used {
			continue
		}

		d.pair(c.add, c.src, c.score)
	}

	return nil
}

// pair explains an addition through a source: a Rename when the source
// path is gone, a Copy when it survives. A deleted source is consumed;
// a surviving one can feed any number of copies.
func (d *detector) pair(a *addition, s *source, score int) {
	action := object.Copy
	if s.deleted {
		action = object.Rename
		s.used = true
	}

	a.paired = &object.Change{
		Action: action,
		From:   s.entry,
		To:     a.entry,
		Score:  score,
	}
}

// rebuild assembles the output queue in the original order: paired
// additions are replaced by their Rename/Copy records, consumed
// deletions and identity modifications disappear.
func (d *detector) rebuild(queue object.Changes) object.Changes {
	replaced := make(map[int]*object.Change, len(d.adds))
	for _, a := range d.adds {
		if a.paired != nil {
			replaced[a.queued] = a.paired
		}
	}

	consumed := make(map[int]bool, len(d.srcs)+len(d.drops))
	for _, s := range d.srcs {
		if s.used || !s.deleted {
			consumed[s.queued] = true
		}
	}
	for _, i := range d.drops {
		consumed[i] = true
	}

	out := make(object.Changes, 0, len(queue))
	for i, c := range queue {
		switch {
		case replaced[i] != nil:
			out = append(out, replaced[i])
		case consumed[i]:
		default:
			out = append(out, c)
		}
	}

	return out
}

// breakRewrites splits file modifications whose similarity falls below
// the break threshold into a Delete followed by an Insert.
func (d *detector) breakRewrites(queue object.Changes) (object.Changes, error) {
	out := make(object.Changes, 0, len(queue))
	for _, c := range queue {
		if c.Action != object.Modify ||
			!c.From.Mode.IsFile() || !c.To.Mode.IsFile() ||
			c.From.Hash == c.To.Hash {
			out = append(out, c)
			continue
		}

		score, err := d.similarity(c.From.Hash, c.To.Hash)
		if err != nil {
			return nil, err
		}
		if score >= d.opts.BreakScore {
			out = append(out, c)
			continue
		}

		out = append(out,
			&object.Change{Action: object.Delete, From: c.From},
			&object.Change{Action: object.Insert, To: c.To},
		)
	}

	return out, nil
}

// similarity returns the content similarity of two blobs in percent.
func (d *detector) similarity(a, b plumbing.Hash) (int, error) {
	if a == b {
		return maxScore, nil
	}

	fa, err := d.fingerprint(a)
	if err != nil {
		return 0, err
	}
	fb, err := d.fingerprint(b)
	if err != nil {
		return 0, err
	}

	return fa.similarity(fb), nil
}

func (d *detector) fingerprint(h plumbing.Hash) (*fingerprint, error) {
	if fp, ok := d.prints[h]; ok {
		return fp, nil
	}

	content, err := d.blobs.Blob(h)
	if err != nil {
		return nil, fmt.Errorf("diffcore: reading blob %s: %w", h, err)
	}

	fp := newFingerprint(content)
	d.prints[h] = fp
	return fp, nil
}
