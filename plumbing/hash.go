package plumbing

import (
	"bytes"
	"encoding/hex"
	"sort"
)

// Size is the amount of bytes a Hash yields.
const Size = 20

// Hash is the SHA-1 identity of a stored object.
type Hash [Size]byte

// ZeroHash is a Hash with value zero. Where a tree hash is expected it
// stands for the empty (non-existent) tree.
var ZeroHash Hash

// NewHash returns a new Hash from its hexadecimal representation. An
// invalid representation yields ZeroHash.
func NewHash(s string) Hash {
	b, _ := hex.DecodeString(s)

	var h Hash
	copy(h[:], b)

	return h
}

// ComputeHash computes the identity of content of the given type: the
// hash of the object header followed by the content itself.
func ComputeHash(t ObjectType, content []byte) Hash {
	h := NewHasher(t, int64(len(content)))
	h.Write(content)
	return h.Sum()
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}

// HashesSort sorts a slice of Hashes in increasing order.
func HashesSort(a []Hash) {
	sort.Slice(a, func(i, j int) bool {
		return bytes.Compare(a[i][:], a[j][:]) < 0
	})
}
