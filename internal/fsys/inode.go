package fsys

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// InodeType tags the three shapes an inode can take.
type InodeType uint8

const (
	TypeFile InodeType = iota
	TypeDir
	TypeSymlink
)

func (t InodeType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDir:
		return "dir"
	case TypeSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the type as the wire-facing name ("file"/"dir"/
// "symlink") rather than its underlying ordinal, matching the original
// datatype's STAT/LS reply.
func (t InodeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the wire-facing type name back into its ordinal.
func (t *InodeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "file":
		*t = TypeFile
	case "dir":
		*t = TypeDir
	case "symlink":
		*t = TypeSymlink
	default:
		return fmt.Errorf("fsys: unknown inode type %q", s)
	}
	return nil
}

// Mode is the wire-facing rendering of a permission mode: a zero-padded
// octal string ("0644") instead of a decimal number, matching the
// original datatype's STAT/LS reply. Inode itself stores a plain uint16;
// this type exists only at the JSON boundary (StatResult, LsEntry).
type Mode uint16

// MarshalJSON renders the mode as a 4-digit octal string.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%04o", uint16(m)))
}

// UnmarshalJSON parses a 4-digit octal string back into a Mode.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseUint(s, 8, 16)
	if err != nil {
		return fmt.Errorf("fsys: invalid mode %q: %w", s, err)
	}
	*m = Mode(v)
	return nil
}

// Default permission bits selected when a caller passes mode 0.
const (
	DefaultFileMode    = 0644
	DefaultDirMode     = 0755
	DefaultSymlinkMode = 0777
)

// Inode is the datum behind a single path: type, permission metadata,
// timestamps, and a type-specific payload. Exactly one of the payload
// fields is meaningful, selected by Type.
type Inode struct {
	Type InodeType
	Mode uint16
	UID  uint32
	GID  uint32

	Ctime int64 // milliseconds since epoch
	Mtime int64
	Atime int64

	// File payload.
	Data  []byte
	bloom [BloomBytes]byte

	// Dir payload. Order is insertion order and is preserved across
	// mutations (invariant §3: no directory's child-list contains
	// duplicate names).
	Children []string

	// Symlink payload.
	Target string
}

// NewInode constructs an inode of the given type. mode == 0 selects the
// type's default permission bits. Timestamps are set to the current
// wall-clock time in milliseconds.
func NewInode(t InodeType, mode uint16) *Inode {
	if mode == 0 {
		switch t {
		case TypeFile:
			mode = DefaultFileMode
		case TypeDir:
			mode = DefaultDirMode
		case TypeSymlink:
			mode = DefaultSymlinkMode
		}
	}
	now := nowMillis()
	ino := &Inode{Type: t, Mode: mode, Ctime: now, Mtime: now, Atime: now}
	if t == TypeDir {
		ino.Children = []string{}
	}
	return ino
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Size returns the content length for a file and the child count for a
// directory, matching Stat's definition of "size".
func (ino *Inode) Size() int64 {
	switch ino.Type {
	case TypeFile:
		return int64(len(ino.Data))
	case TypeDir:
		return int64(len(ino.Children))
	default:
		return 0
	}
}

// SetContent replaces a file's content and rebuilds its bloom filter.
func (ino *Inode) SetContent(content []byte) {
	ino.Data = append([]byte(nil), content...)
	ino.bloom = buildBloom(ino.Data)
}

// AppendContent extends a file's content and rebuilds its bloom filter.
func (ino *Inode) AppendContent(content []byte) {
	ino.Data = append(ino.Data, content...)
	ino.bloom = buildBloom(ino.Data)
}

// Truncate resizes a file's content to length, zero-extending or
// releasing the tail as needed, and rebuilds its bloom filter.
func (ino *Inode) Truncate(length int64) {
	switch {
	case length == int64(len(ino.Data)):
		// no-op, still rebuild for consistency with the spec's "always
		// rebuilds" wording
	case length < int64(len(ino.Data)):
		ino.Data = ino.Data[:length]
	default:
		grown := make([]byte, length)
		copy(grown, ino.Data)
		ino.Data = grown
	}
	ino.bloom = buildBloom(ino.Data)
}

// MayContainLiteral consults the file's bloom filter for the given
// (already-extracted) literal substring. A false return proves the
// literal cannot appear in the content; true is only a maybe.
func (ino *Inode) MayContainLiteral(literal string) bool {
	return mayContainLiteral(&ino.bloom, literal)
}

// HasChild reports whether name is present in a directory's child list.
func (ino *Inode) HasChild(name string) bool {
	for _, c := range ino.Children {
		if c == name {
			return true
		}
	}
	return false
}

// AddChild appends name to a directory's child list if not already
// present. Idempotent.
func (ino *Inode) AddChild(name string) {
	if !ino.HasChild(name) {
		ino.Children = append(ino.Children, name)
	}
}

// RemoveChild removes name from a directory's child list, reporting
// whether it was present.
func (ino *Inode) RemoveChild(name string) bool {
	for i, c := range ino.Children {
		if c == name {
			ino.Children = append(ino.Children[:i], ino.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Clone deep-copies an inode, preserving mode/uid/gid and all three
// timestamps, as required by Cp's preservation semantics. The clone's
// bloom is rebuilt from its own (copied) content rather than copied,
// keeping the invariant that bloom is always a derived function of
// current content.
func (ino *Inode) Clone() *Inode {
	out := &Inode{
		Type:  ino.Type,
		Mode:  ino.Mode,
		UID:   ino.UID,
		GID:   ino.GID,
		Ctime: ino.Ctime,
		Mtime: ino.Mtime,
		Atime: ino.Atime,
	}
	switch ino.Type {
	case TypeFile:
		out.Data = append([]byte(nil), ino.Data...)
		out.bloom = buildBloom(out.Data)
	case TypeDir:
		out.Children = append([]string(nil), ino.Children...)
	case TypeSymlink:
		out.Target = ino.Target
	}
	return out
}
