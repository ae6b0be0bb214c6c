// Package plumbing implements the core types shared by every other
// package in this module: object hashes and object types.
package plumbing

import (
	"errors"
	"fmt"
)

var (
	// ErrObjectNotFound is returned when an object is not found.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidType is returned when an invalid object type is provided.
	ErrInvalidType = errors.New("invalid object type")
)

// ObjectType is the kind of a stored object. Integer values map to the
// ones used by git on the wire.
type ObjectType int8

const (
	// InvalidObject represents an invalid object type.
	InvalidObject ObjectType = 0
	// TreeObject is a directory snapshot: an ordered list of entries.
	TreeObject ObjectType = 2
	// BlobObject is raw file content.
	BlobObject ObjectType = 3
)

func (t ObjectType) String() string {
	switch t {
	case TreeObject:
		return "tree"
	case BlobObject:
		return "blob"
	default:
		return "invalid"
	}
}

// Bytes returns the textual representation of the type, as used in the
// object header.
func (t ObjectType) Bytes() []byte {
	return []byte(t.String())
}

// Valid returns true if t is a valid ObjectType.
func (t ObjectType) Valid() bool {
	return t == TreeObject || t == BlobObject
}

// ParseObjectType parses a string representation of ObjectType.
func ParseObjectType(value string) (ObjectType, error) {
	switch value {
	case "tree":
		return TreeObject, nil
	case "blob":
		return BlobObject, nil
	default:
		return InvalidObject, fmt.Errorf("%w: %q", ErrInvalidType, value)
	}
}
