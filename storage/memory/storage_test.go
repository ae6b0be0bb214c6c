package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/filemode"
	"github.com/go-difftree/difftree/plumbing/object"
)

func TestBlobRoundtrip(t *testing.T) {
	st := NewStorage()

	h := st.StoreBlob([]byte("some content"))
	assert.False(t, h.IsZero())

	content, err := st.Blob(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("some content"), content)

	// storing again yields the same hash
	assert.Equal(t, h, st.StoreBlob([]byte("some content")))
}

func TestNotFound(t *testing.T) {
	st := NewStorage()

	_, err := st.Blob(plumbing.NewHash("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"))
	assert.ErrorIs(t, err, plumbing.ErrObjectNotFound)

	_, err = st.TreeEntries(plumbing.NewHash("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"))
	assert.ErrorIs(t, err, plumbing.ErrObjectNotFound)
}

func TestStoreTree(t *testing.T) {
	st := NewStorage()

	blob := st.StoreBlob([]byte("content"))
	h, err := st.StoreTree([]object.TreeEntry{
		{Name: "b.txt", Mode: filemode.Regular, Hash: blob},
		{Name: "a.txt", Mode: filemode.Regular, Hash: blob},
	})
	require.NoError(t, err)

	entries, err := st.TreeEntries(h)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, "b.txt", entries[1].Name)
}

func TestStoreDir(t *testing.T) {
	st := NewStorage()

	root, err := st.StoreDir(map[string]string{
		"README.md":  "hi",
		"src/main.c": "int main() {}",
		"src/util.c": "void util() {}",
		"bin/run*":   "#!/bin/sh\n",
	})
	require.NoError(t, err)

	entries, err := st.TreeEntries(root)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "README.md", entries[0].Name)
	assert.Equal(t, "bin", entries[1].Name)
	assert.Equal(t, filemode.Dir, entries[1].Mode)
	assert.Equal(t, "src", entries[2].Name)

	bin, err := st.TreeEntries(entries[1].Hash)
	require.NoError(t, err)
	require.Len(t, bin, 1)
	assert.Equal(t, "run", bin[0].Name)
	assert.Equal(t, filemode.Executable, bin[0].Mode)

	src, err := st.TreeEntries(entries[2].Hash)
	require.NoError(t, err)
	require.Len(t, src, 2)
	assert.Equal(t, "main.c", src[0].Name)
	assert.Equal(t, "util.c", src[1].Name)
}

func TestStoreDirDeterministic(t *testing.T) {
	files := map[string]string{
		"a/b/c.txt": "deep",
		"a/d.txt":   "shallow",
		"e.txt":     "top",
	}

	h1, err := NewStorage().StoreDir(files)
	require.NoError(t, err)
	h2, err := NewStorage().StoreDir(files)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestStoreDirInvalidPath(t *testing.T) {
	_, err := NewStorage().StoreDir(map[string]string{"/abs": "x"})
	assert.Error(t, err)
}
