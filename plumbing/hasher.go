package plumbing

import (
	"hash"
	"strconv"

	"github.com/pjbgf/sha1cd"
)

// Hasher computes object identities incrementally. The header written
// on creation makes hashes of different object types disjoint even for
// equal content.
type Hasher struct {
	hash.Hash
}

// NewHasher returns a Hasher for an object of the given type and size,
// with the object header already written.
func NewHasher(t ObjectType, size int64) Hasher {
	h := Hasher{sha1cd.New()}
	h.Write(t.Bytes())
	h.Write([]byte(" "))
	h.Write([]byte(strconv.FormatInt(size, 10)))
	h.Write([]byte{0})
	return h
}

// Sum returns the hash of the written content.
func (h Hasher) Sum() (hash Hash) {
	copy(hash[:], h.Hash.Sum(nil))
	return
}
