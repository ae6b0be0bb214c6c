// Package pathspec implements compiled path patterns used to restrict
// which paths a tree traversal considers interesting.
//
// A pattern matches the named path itself, everything under it when it
// is a directory, and every directory on the way to it, so a traversal
// can descend towards a match without visiting unrelated siblings.
package pathspec

import (
	"errors"
	"path"
	"strings"

	"github.com/go-difftree/difftree/plumbing/object"
)

var (
	// ErrAbsolutePattern is returned when a pattern starts with a slash;
	// patterns are always relative to the tree root.
	ErrAbsolutePattern = errors.New("pathspec: absolute patterns are not supported")
	// ErrEmptyPattern is returned for empty pattern strings.
	ErrEmptyPattern = errors.New("pathspec: empty pattern")
)

// Match classifies one entry against a Pathspec.
type Match int

const (
	// NotInterestingNow means the entry does not match, but a later
	// sibling in tree order still can.
	NotInterestingNow Match = iota
	// Interesting means the entry matches, or leads to a match.
	Interesting
	// NotInterestingEver means neither the entry nor any later sibling
	// can match; the caller may stop scanning the remaining entries.
	NotInterestingEver
)

func (m Match) String() string {
	switch m {
	case Interesting:
		return "Interesting"
	case NotInterestingNow:
		return "NotInterestingNow"
	default:
		return "NotInterestingEver"
	}
}

// Options configures pattern compilation.
type Options struct {
	// Literal disables wildcard interpretation; every pattern matches
	// its exact path only.
	Literal bool
}

type pattern struct {
	raw  string
	wild bool // raw contains wildcard meta characters
}

// Pathspec is an ordered, compiled set of patterns.
type Pathspec struct {
	patterns []pattern

	// Recursive mirrors the recursion setting of the traversal using
	// this pathspec; the traversal sets it itself. Classify only holds
	// directories open for deeper wildcard matches when set, since a
	// non-recursive traversal never descends to reach them.
	Recursive bool
}

// Compile builds a Pathspec out of textual patterns. A nil or empty
// pattern list compiles to an empty Pathspec that matches everything.
func Compile(patterns []string, opts Options) (*Pathspec, error) {
	ps := &Pathspec{}
	for _, raw := range patterns {
		if raw == "" {
			return nil, ErrEmptyPattern
		}
		if strings.HasPrefix(raw, "/") {
			return nil, ErrAbsolutePattern
		}

		raw = strings.TrimPrefix(raw, "./")
		raw = strings.TrimSuffix(raw, "/")

		p := pattern{raw: raw}
		if !opts.Literal {
			p.wild = strings.ContainsAny(raw, "*?[\\")
		}

		ps.patterns = append(ps.patterns, p)
	}

	return ps, nil
}

// IsEmpty reports whether the pathspec restricts nothing. It is safe
// to call on a nil Pathspec.
func (ps *Pathspec) IsEmpty() bool {
	return ps == nil || len(ps.patterns) == 0
}

// IsSingleLiteral reports whether the pathspec resolves to exactly one
// path with no wildcard magic.
func (ps *Pathspec) IsSingleLiteral() bool {
	return ps != nil && len(ps.patterns) == 1 && !ps.patterns[0].wild
}

// Path returns the single literal path of the pathspec. It must only
// be called when IsSingleLiteral holds.
func (ps *Pathspec) Path() string {
	if !ps.IsSingleLiteral() {
		panic("pathspec: Path called on a non single-literal pathspec")
	}
	return ps.patterns[0].raw
}

// Classify decides whether the entry name under base (the accumulated
// path of the enclosing tree, empty or slash-terminated) is
// interesting. Entries must be presented in tree order for
// NotInterestingEver to be sound.
func (ps *Pathspec) Classify(base, name string, isDir bool) Match {
	if ps.IsEmpty() {
		return Interesting
	}

	full := base + name

	sticky := false
	for _, p := range ps.patterns {
		switch {
		case p.wild:
			if ok, _ := path.Match(p.raw, full); ok {
				return Interesting
			}
			// A wildcard may still match deeper paths, but only a
			// recursive traversal ever reaches them. Never prune on a
			// wildcard's account.
			if isDir && ps.Recursive {
				return Interesting
			}
			sticky = true

		default:
			if matchLiteral(p.raw, full, isDir) == Interesting {
				return Interesting
			}
			if literalStillPossible(p.raw, base, name, isDir) {
				sticky = true
			}
		}
	}

	if sticky {
		return NotInterestingNow
	}
	return NotInterestingEver
}

// matchLiteral classifies full against a single literal pattern.
func matchLiteral(pat, full string, isDir bool) Match {
	if full == pat {
		return Interesting
	}
	// anything under a matched directory
	if strings.HasPrefix(full, pat+"/") {
		return Interesting
	}
	// a directory on the way to the pattern
	if isDir && strings.HasPrefix(pat, full+"/") {
		return Interesting
	}
	return NotInterestingNow
}

// literalStillPossible reports whether the pattern can still match any
// entry sorting after name in the tree at base.
func literalStillPossible(pat, base, name string, isDir bool) bool {
	if !strings.HasPrefix(pat, base) {
		// The pattern lives outside this subtree entirely.
		return false
	}

	rel := pat[len(base):]
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		rel = rel[:i]
	}

	// Later siblings sort at or after the current name, so the pattern
	// component must not sort before it. The comparison follows tree
	// order, where the component may still name a directory and
	// directories sort as if their name ended in a slash.
	return object.CompareNames(rel, true, name, isDir) >= 0
}
