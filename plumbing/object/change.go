package object

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/filemode"
)

// Action describes how a path changed between two trees.
type Action int

const (
	// Insert is a path present only in the new tree.
	Insert Action = iota + 1
	// Delete is a path present only in the old tree.
	Delete
	// Modify is a path present in both trees with different content or
	// mode.
	Modify
	// Rename is an Insert paired with a Delete of similar content.
	Rename
	// Copy is an Insert whose content closely matches a path that
	// survives in the new tree.
	Copy
)

func (a Action) String() string {
	switch a {
	case Insert:
		return "Insert"
	case Delete:
		return "Delete"
	case Modify:
		return "Modify"
	case Rename:
		return "Rename"
	case Copy:
		return "Copy"
	default:
		panic(fmt.Sprintf("unsupported action: %d", a))
	}
}

// ChangeEntry is one side of a Change: a path with the mode and hash
// it had on that side. The zero value means the path did not exist on
// that side.
type ChangeEntry struct {
	Name string
	Mode filemode.FileMode
	Hash plumbing.Hash
}

// IsZero reports whether the side is absent.
func (e ChangeEntry) IsZero() bool {
	return e == ChangeEntry{}
}

// Change is a single difference between two trees.
//
// From is the zero value for Insert and To is the zero value for
// Delete. Score holds the content similarity (0-100) for Rename and
// Copy records and is zero otherwise.
type Change struct {
	Action Action
	From   ChangeEntry
	To     ChangeEntry
	Score  int
}

func (c *Change) String() string {
	switch c.Action {
	case Insert:
		return fmt.Sprintf("<Action: Insert, Path: %s>", c.To.Name)
	case Delete:
		return fmt.Sprintf("<Action: Delete, Path: %s>", c.From.Name)
	case Rename, Copy:
		return fmt.Sprintf("<Action: %s, Path: %s => %s, Score: %d>",
			c.Action, c.From.Name, c.To.Name, c.Score)
	default:
		return fmt.Sprintf("<Action: %s, Path: %s>", c.Action, c.From.Name)
	}
}

// Path returns the path of the change on the side where it exists,
// preferring the new side.
func (c *Change) Path() string {
	if !c.To.IsZero() {
		return c.To.Name
	}
	return c.From.Name
}

// Changes is an ordered queue of Change records.
type Changes []*Change

func (c Changes) Len() int {
	return len(c)
}

func (c Changes) Swap(i, j int) {
	c[i], c[j] = c[j], c[i]
}

func (c Changes) Less(i, j int) bool {
	return strings.Compare(c[i].Path(), c[j].Path()) < 0
}

func (c Changes) String() string {
	var buffer bytes.Buffer
	buffer.WriteString("[")
	comma := ""
	for _, v := range c {
		buffer.WriteString(comma)
		buffer.WriteString(v.String())
		comma = ", "
	}
	buffer.WriteString("]")

	return buffer.String()
}
