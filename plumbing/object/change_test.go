package object

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-difftree/difftree/plumbing/filemode"
)

func TestActionString(t *testing.T) {
	assert.Equal(t, "Insert", Insert.String())
	assert.Equal(t, "Delete", Delete.String())
	assert.Equal(t, "Modify", Modify.String())
	assert.Equal(t, "Rename", Rename.String())
	assert.Equal(t, "Copy", Copy.String())

	assert.Panics(t, func() { _ = Action(42).String() })
}

func TestChangeEntryIsZero(t *testing.T) {
	assert.True(t, ChangeEntry{}.IsZero())
	assert.False(t, ChangeEntry{Name: "f"}.IsZero())
	assert.False(t, ChangeEntry{Mode: filemode.Regular}.IsZero())
}

func TestChangePath(t *testing.T) {
	ins := &Change{Action: Insert, To: ChangeEntry{Name: "new", Mode: filemode.Regular}}
	del := &Change{Action: Delete, From: ChangeEntry{Name: "gone", Mode: filemode.Regular}}
	ren := &Change{
		Action: Rename,
		From:   ChangeEntry{Name: "old", Mode: filemode.Regular},
		To:     ChangeEntry{Name: "new", Mode: filemode.Regular},
	}

	assert.Equal(t, "new", ins.Path())
	assert.Equal(t, "gone", del.Path())
	assert.Equal(t, "new", ren.Path())
}

func TestChangeString(t *testing.T) {
	ins := &Change{Action: Insert, To: ChangeEntry{Name: "a.txt", Mode: filemode.Regular}}
	assert.Equal(t, "<Action: Insert, Path: a.txt>", ins.String())

	ren := &Change{
		Action: Rename,
		From:   ChangeEntry{Name: "old.txt", Mode: filemode.Regular},
		To:     ChangeEntry{Name: "new.txt", Mode: filemode.Regular},
		Score:  95,
	}
	assert.Equal(t, "<Action: Rename, Path: old.txt => new.txt, Score: 95>", ren.String())
}

func TestChangesSort(t *testing.T) {
	changes := Changes{
		{Action: Delete, From: ChangeEntry{Name: "c", Mode: filemode.Regular}},
		{Action: Insert, To: ChangeEntry{Name: "a", Mode: filemode.Regular}},
		{Action: Insert, To: ChangeEntry{Name: "b", Mode: filemode.Regular}},
	}

	sort.Sort(changes)

	assert.Equal(t, "a", changes[0].Path())
	assert.Equal(t, "b", changes[1].Path())
	assert.Equal(t, "c", changes[2].Path())
}
