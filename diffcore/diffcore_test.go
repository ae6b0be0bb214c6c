package diffcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/filemode"
	"github.com/go-difftree/difftree/plumbing/object"
	"github.com/go-difftree/difftree/storage/memory"
)

func makeInsert(name string, h plumbing.Hash) *object.Change {
	return &object.Change{
		Action: object.Insert,
		To:     object.ChangeEntry{Name: name, Mode: filemode.Regular, Hash: h},
	}
}

func makeDelete(name string, h plumbing.Hash) *object.Change {
	return &object.Change{
		Action: object.Delete,
		From:   object.ChangeEntry{Name: name, Mode: filemode.Regular, Hash: h},
	}
}

func makeModify(name string, from, to plumbing.Hash) *object.Change {
	return &object.Change{
		Action: object.Modify,
		From:   object.ChangeEntry{Name: name, Mode: filemode.Regular, Hash: from},
		To:     object.ChangeEntry{Name: name, Mode: filemode.Regular, Hash: to},
	}
}

func TestExactRename(t *testing.T) {
	st := memory.NewStorage()
	h := st.StoreBlob([]byte("shared content"))

	out, err := Apply(object.Changes{
		makeInsert("new.txt", h),
		makeDelete("old.txt", h),
	}, st, Options{})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, object.Rename, out[0].Action)
	assert.Equal(t, "old.txt", out[0].From.Name)
	assert.Equal(t, "new.txt", out[0].To.Name)
	assert.Equal(t, 100, out[0].Score)
}

func TestExactRenameWithoutBlobs(t *testing.T) {
	h := plumbing.ComputeHash(plumbing.BlobObject, []byte("shared content"))

	// hash-identical pairs do not need blob access
	out, err := Apply(object.Changes{
		makeInsert("new.txt", h),
		makeDelete("old.txt", h),
	}, nil, Options{})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, object.Rename, out[0].Action)
}

func TestExactRenamePrefersSimilarName(t *testing.T) {
	st := memory.NewStorage()
	h := st.StoreBlob([]byte("shared content"))

	out, err := Apply(object.Changes{
		makeInsert("src/utils/helper.go", h),
		makeDelete("docs/readme.md", h),
		makeDelete("src/old/helper.go", h),
	}, st, Options{})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, object.Rename, out[0].Action)
	assert.Equal(t, "src/old/helper.go", out[0].From.Name)
	assert.Equal(t, object.Delete, out[1].Action)
	assert.Equal(t, "docs/readme.md", out[1].From.Name)
}

func TestCopyFromSurvivingSource(t *testing.T) {
	st := memory.NewStorage()
	h := st.StoreBlob([]byte("shared content"))

	// an identity modification is what the traversal emits for an
	// unmodified path when copy detection is forced
	out, err := Apply(object.Changes{
		makeModify("orig.txt", h, h),
		makeInsert("copy.txt", h),
	}, st, Options{})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, object.Copy, out[0].Action)
	assert.Equal(t, "orig.txt", out[0].From.Name)
	assert.Equal(t, "copy.txt", out[0].To.Name)
}

func TestContentRename(t *testing.T) {
	st := memory.NewStorage()

	oldContent := "alpha\nbravo\ncharlie\ndelta\necho\nfoxtrot\ngolf\nhotel\nindia\njuliett\n"
	newContent := "alpha\nbravo\ncharlie\ndelta\necho\nfoxtrot\ngolf\nhotel\nindia\nCHANGED\n"

	hOld := st.StoreBlob([]byte(oldContent))
	hNew := st.StoreBlob([]byte(newContent))

	out, err := Apply(object.Changes{
		makeInsert("renamed.txt", hNew),
		makeDelete("original.txt", hOld),
	}, st, Options{RenameScore: 50})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, object.Rename, out[0].Action)
	assert.Equal(t, "original.txt", out[0].From.Name)
	assert.Equal(t, "renamed.txt", out[0].To.Name)
	assert.GreaterOrEqual(t, out[0].Score, 50)
	assert.Less(t, out[0].Score, 100)
}

func TestContentBelowThreshold(t *testing.T) {
	st := memory.NewStorage()

	hOld := st.StoreBlob([]byte("nothing\nalike\nhere\n"))
	hNew := st.StoreBlob([]byte("completely\ndifferent\ncontent\n"))

	in := object.Changes{
		makeInsert("b.txt", hNew),
		makeDelete("a.txt", hOld),
	}
	out, err := Apply(in, st, Options{RenameScore: 50})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, object.Insert, out[0].Action)
	assert.Equal(t, object.Delete, out[1].Action)
}

func TestContentRenameNeedsBlobs(t *testing.T) {
	hOld := plumbing.ComputeHash(plumbing.BlobObject, []byte("a\nb\nc\n"))
	hNew := plumbing.ComputeHash(plumbing.BlobObject, []byte("a\nb\nd\n"))

	// without blob access, similar-but-not-identical content cannot
	// pair
	out, err := Apply(object.Changes{
		makeInsert("b.txt", hNew),
		makeDelete("a.txt", hOld),
	}, nil, Options{RenameScore: 1})
	require.NoError(t, err)

	require.Len(t, out, 2)
}

func TestSingleFollowRestrictsPairing(t *testing.T) {
	st := memory.NewStorage()
	h := st.StoreBlob([]byte("shared content"))
	other := st.StoreBlob([]byte("other content"))

	out, err := Apply(object.Changes{
		makeInsert("target.txt", h),
		makeInsert("ignored.txt", other),
		makeDelete("source.txt", h),
		makeDelete("unrelated.txt", other),
	}, st, Options{SingleFollow: "target.txt"})
	require.NoError(t, err)

	// only the followed destination pairs; everything else passes
	// through untouched
	require.Len(t, out, 3)
	assert.Equal(t, object.Rename, out[0].Action)
	assert.Equal(t, "target.txt", out[0].To.Name)
	assert.Equal(t, object.Insert, out[1].Action)
	assert.Equal(t, "ignored.txt", out[1].To.Name)
	assert.Equal(t, object.Delete, out[2].Action)
	assert.Equal(t, "unrelated.txt", out[2].From.Name)
}

func TestBreakRewrites(t *testing.T) {
	st := memory.NewStorage()

	hOld := st.StoreBlob([]byte("the\nold\nimplementation\n"))
	hNew := st.StoreBlob([]byte("a\ncomplete\nrewrite\nof\neverything\n"))

	out, err := Apply(object.Changes{
		makeModify("rewritten.txt", hOld, hNew),
	}, st, Options{BreakScore: 70})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, object.Delete, out[0].Action)
	assert.Equal(t, "rewritten.txt", out[0].From.Name)
	assert.Equal(t, object.Insert, out[1].Action)
	assert.Equal(t, "rewritten.txt", out[1].To.Name)
}

func TestBreakKeepsSimilarModify(t *testing.T) {
	st := memory.NewStorage()

	hOld := st.StoreBlob([]byte("one\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nnine\nten\n"))
	hNew := st.StoreBlob([]byte("one\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nnine\nELEVEN\n"))

	out, err := Apply(object.Changes{
		makeModify("tweaked.txt", hOld, hNew),
	}, st, Options{BreakScore: 50})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, object.Modify, out[0].Action)
}

func TestBreakFeedsRename(t *testing.T) {
	st := memory.NewStorage()

	hOld := st.StoreBlob([]byte("the\nold\nimplementation\n"))
	hNew := st.StoreBlob([]byte("a\ncomplete\nrewrite\nof\neverything\n"))

	// the rewrite breaks apart and its old content explains the
	// addition elsewhere
	out, err := Apply(object.Changes{
		makeModify("rewritten.txt", hOld, hNew),
		makeInsert("relocated.txt", hOld),
	}, st, Options{BreakScore: 70})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, object.Rename, out[1].Action)
	assert.Equal(t, "rewritten.txt", out[1].From.Name)
	assert.Equal(t, "relocated.txt", out[1].To.Name)
	assert.Equal(t, object.Insert, out[0].Action)
	assert.Equal(t, "rewritten.txt", out[0].To.Name)
}

func TestNonFileIdentityDropped(t *testing.T) {
	h := plumbing.ComputeHash(plumbing.BlobObject, []byte("pinned"))

	// forced copy detection reports unmodified submodules too; they
	// cannot source a copy but must not surface as changes either
	in := object.Changes{
		{
			Action: object.Modify,
			From:   object.ChangeEntry{Name: "vendor/dep", Mode: filemode.Submodule, Hash: h},
			To:     object.ChangeEntry{Name: "vendor/dep", Mode: filemode.Submodule, Hash: h},
		},
	}
	out, err := Apply(in, nil, Options{})
	require.NoError(t, err)

	assert.Empty(t, out)
}

func TestDirectoriesNeverPair(t *testing.T) {
	st := memory.NewStorage()
	h := st.StoreBlob([]byte("tree-ish"))

	in := object.Changes{
		{Action: object.Insert, To: object.ChangeEntry{Name: "new", Mode: filemode.Dir, Hash: h}},
		{Action: object.Delete, From: object.ChangeEntry{Name: "old", Mode: filemode.Dir, Hash: h}},
	}
	out, err := Apply(in, st, Options{})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, object.Insert, out[0].Action)
	assert.Equal(t, object.Delete, out[1].Action)
}
