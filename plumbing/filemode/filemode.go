// Package filemode implements the object modes used in tree entries.
package filemode

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
)

// A FileMode represents the kind of tree entries used by git. It
// resembles regular file systems modes, although FileModes are
// considerably simpler (there are not so many), and there are some,
// like Submodule, that has no file system equivalent.
type FileMode uint32

const (
	// Empty is used as the FileMode of tree elements when comparing
	// trees in the following situations:
	//
	// - the mode of tree elements before their creation.
	// - the mode of tree elements after their deletion.
	// - the mode of unmerged elements when checking the index.
	//
	// Empty has no file system equivalent. As Empty is the zero value
	// of FileMode, it is also returned by New and NewFromOSFileMode
	// along with an error, when the mode is unknown.
	Empty FileMode = 0
	// Dir represents a Directory.
	Dir FileMode = 0o040000
	// Regular represents non-executable files.
	Regular FileMode = 0o100644
	// Deprecated represents non-executable files with the group
	// writable bit set. This mode was supported by the first versions
	// of git, but it has been deprecated nowadays. This library
	// treats them as Regular files for comparison purposes.
	Deprecated FileMode = 0o100664
	// Executable represents executable files.
	Executable FileMode = 0o100755
	// Symlink represents symbolic links to files.
	Symlink FileMode = 0o120000
	// Submodule represents git submodules. This mode has no file system
	// equivalent.
	Submodule FileMode = 0o160000
)

// New takes the octal string representation of a FileMode and returns
// the FileMode and a nil error. If the string can not be parsed to a
// 32 bit unsigned octal number, it returns Empty and an error.
//
// Example: "40000" means Dir and "100644" means Regular.
func New(s string) (FileMode, error) {
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return Empty, err
	}

	return FileMode(n), nil
}

// NewFromOSFileMode returns the FileMode used by git to represent the
// provided file system modes and a nil error on success. If the file
// system mode cannot be mapped to any valid git mode (as with sockets
// or named pipes), it returns Empty and an error.
func NewFromOSFileMode(m os.FileMode) (FileMode, error) {
	if m.IsRegular() {
		if isSetTemporary(m) {
			return Empty, fmt.Errorf("no equivalent git mode for %s", m)
		}
		if isSetCharDevice(m) {
			return Empty, fmt.Errorf("no equivalent git mode for %s", m)
		}
		if isSetUserExecutable(m) {
			return Executable, nil
		}
		return Regular, nil
	}

	if m.IsDir() {
		return Dir, nil
	}

	if isSetSymLink(m) {
		return Symlink, nil
	}

	return Empty, fmt.Errorf("no equivalent git mode for %s", m)
}

func isSetCharDevice(m os.FileMode) bool {
	return m&os.ModeCharDevice != 0
}

func isSetTemporary(m os.FileMode) bool {
	return m&os.ModeTemporary != 0
}

func isSetUserExecutable(m os.FileMode) bool {
	return m&0o100 != 0
}

func isSetSymLink(m os.FileMode) bool {
	return m&os.ModeSymlink != 0
}

// Bytes serializes the FileMode as a slice of 4 bytes in little-endian
// order.
func (m FileMode) Bytes() []byte {
	ret := make([]byte, 4)
	binary.LittleEndian.PutUint32(ret, uint32(m))
	return ret
}

// IsMalformed returns if the FileMode should not appear in a tree
// entry, according to the git standards.
func (m FileMode) IsMalformed() bool {
	return m != Dir &&
		m != Regular &&
		m != Deprecated &&
		m != Executable &&
		m != Symlink &&
		m != Submodule
}

// String returns the FileMode as a string in the standard git format,
// this is, an octal number padded with zeros to 7 digits.
func (m FileMode) String() string {
	return fmt.Sprintf("%07o", uint32(m))
}

// IsRegular returns if the FileMode represents that of a regular file,
// this is, either Regular or Deprecated.
func (m FileMode) IsRegular() bool {
	return m == Regular || m == Deprecated
}

// IsFile returns if the FileMode represents that of a file, this is,
// Regular, Deprecated, Executable or Symlink.
func (m FileMode) IsFile() bool {
	return m == Regular ||
		m == Deprecated ||
		m == Executable ||
		m == Symlink
}

// ToOSFileMode returns the os.FileMode equivalent to the FileMode, or
// an error for modes with no file system equivalent (Empty and
// Submodule).
func (m FileMode) ToOSFileMode() (os.FileMode, error) {
	switch m {
	case Dir:
		return os.ModePerm | os.ModeDir, nil
	case Submodule:
		return os.ModePerm | os.ModeDir, nil
	case Regular:
		return os.FileMode(0o644), nil
	case Deprecated:
		return os.FileMode(0o660), nil
	case Executable:
		return os.FileMode(0o755), nil
	case Symlink:
		return os.ModePerm | os.ModeSymlink, nil
	}

	return os.FileMode(0), fmt.Errorf("malformed mode (%s)", m)
}
