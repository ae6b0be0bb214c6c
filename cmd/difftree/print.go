package main

import (
	"fmt"
	"io"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/filemode"
	"github.com/go-difftree/difftree/plumbing/object"
	"github.com/go-difftree/difftree/storage/memory"
)

// printer writes change lines in the one-letter status format, with
// optional content patches for modified files.
type printer struct {
	out     io.Writer
	st      *memory.Storage
	patch   bool
	printed int
}

func (p *printer) change(path string, fromMode, toMode filemode.FileMode, from, to plumbing.Hash) error {
	p.printed++
	if _, err := fmt.Fprintf(p.out, "M\t%s\n", path); err != nil {
		return err
	}

	if p.patch && fromMode.IsFile() && toMode.IsFile() {
		return p.printPatch(from, to)
	}
	return nil
}

func (p *printer) addRemove(action object.Action, mode filemode.FileMode, h plumbing.Hash, path string) error {
	p.printed++
	letter := "A"
	if action == object.Delete {
		letter = "D"
	}
	_, err := fmt.Fprintf(p.out, "%s\t%s\n", letter, path)
	return err
}

func (p *printer) record(c *object.Change) error {
	p.printed++
	switch c.Action {
	case object.Insert:
		_, err := fmt.Fprintf(p.out, "A\t%s\n", c.To.Name)
		return err
	case object.Delete:
		_, err := fmt.Fprintf(p.out, "D\t%s\n", c.From.Name)
		return err
	case object.Rename:
		_, err := fmt.Fprintf(p.out, "R%03d\t%s\t%s\n", c.Score, c.From.Name, c.To.Name)
		return err
	case object.Copy:
		_, err := fmt.Fprintf(p.out, "C%03d\t%s\t%s\n", c.Score, c.From.Name, c.To.Name)
		return err
	default:
		if _, err := fmt.Fprintf(p.out, "M\t%s\n", c.To.Name); err != nil {
			return err
		}
		if p.patch && c.From.Mode.IsFile() && c.To.Mode.IsFile() {
			return p.printPatch(c.From.Hash, c.To.Hash)
		}
		return nil
	}
}

func (p *printer) printPatch(from, to plumbing.Hash) error {
	a, err := p.st.Blob(from)
	if err != nil {
		return err
	}
	b, err := p.st.Blob(to)
	if err != nil {
		return err
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(a), string(b), false)
	patches := dmp.PatchMake(string(a), diffs)

	_, err = io.WriteString(p.out, dmp.PatchToText(patches))
	return err
}
