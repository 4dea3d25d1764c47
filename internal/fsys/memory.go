package fsys

import (
	"hash/fnv"
	"sort"
)

// entryOverheadBytes approximates the bookkeeping cost of one map entry
// (key string header, map bucket slot, pointer) beyond the inode struct
// itself. A constant, not a measurement; the estimate is a documented
// lower bound, never an external commitment to exactness.
const entryOverheadBytes = 48

// objectOverheadBytes approximates the fixed cost of the Filesystem
// struct itself (map header plus the four counters).
const objectOverheadBytes = 64

// inodeBaseBytes approximates the fixed fields of an Inode excluding its
// variable-length payload (type/mode/uid/gid/three timestamps/bloom).
const inodeBaseBytes = 32 + BloomBytes

// EstimateMemory returns a lower-bound estimate of the bytes this
// filesystem occupies: the object's own overhead, plus each inode's fixed
// cost and per-entry map overhead, plus the sum of file content sizes.
func (fs *Filesystem) EstimateMemory() uint64 {
	total := uint64(objectOverheadBytes)
	total += fs.TotalInodes() * (inodeBaseBytes + entryOverheadBytes)
	total += fs.TotalBytes
	return total
}

// Digest returns a content hash that is identical for any two filesystems
// that are semantically equal, independent of map iteration order. It
// hashes, per inode (sorted by path so the result does not depend on
// iteration order): the path, type, mode, and — for files only — content,
// with a boundary marker after each inode so that "ab"+"" does not collide
// with "a"+"b" across adjacent fields.
func (fs *Filesystem) Digest() []byte {
	paths := make([]string, 0, fs.count())
	fs.iterate(func(path string, _ *Inode) {
		paths = append(paths, path)
	})
	sort.Strings(paths)

	h := fnv.New128a()
	const boundary = 0xFF
	for _, path := range paths {
		ino := fs.inodes[path]
		h.Write([]byte(path))
		h.Write([]byte{boundary})
		h.Write([]byte{byte(ino.Type)})
		h.Write([]byte{boundary})
		var modeBuf [2]byte
		modeBuf[0] = byte(ino.Mode >> 8)
		modeBuf[1] = byte(ino.Mode)
		h.Write(modeBuf[:])
		if ino.Type == TypeFile {
			h.Write(ino.Data)
		}
		h.Write([]byte{boundary})
	}
	return h.Sum(nil)
}
