package fsys

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

// SnapshotVersion is the only version tag Load accepts.
const SnapshotVersion = 0

// ErrBadSnapshotVersion is returned by Load when the stream's version tag
// does not match SnapshotVersion.
var ErrBadSnapshotVersion = errors.New("unsupported snapshot version")

// Save writes a versioned, binary encoding of fs to w per spec §4.7:
//
//	u8  version (SnapshotVersion)
//	u64 inode_count
//	repeat inode_count times:
//	  string path
//	  u8  type
//	  u16 mode
//	  u32 uid
//	  u32 gid
//	  i64 ctime ; i64 mtime ; i64 atime
//	  payload-by-type
//
// Bloom filters are never written; they are rebuilt from content on Load.
// Iteration order is the map's own order and carries no stability
// guarantee across processes — round-trip preserves semantic equality,
// not byte equality.
func (fs *Filesystem) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := bw.WriteByte(SnapshotVersion); err != nil {
		return err
	}
	if err := writeU64(bw, uint64(fs.count())); err != nil {
		return err
	}
	var writeErr error
	fs.iterate(func(path string, ino *Inode) {
		if writeErr != nil {
			return
		}
		writeErr = writeInode(bw, path, ino)
	})
	if writeErr != nil {
		return writeErr
	}
	return bw.Flush()
}

func writeInode(w *bufio.Writer, path string, ino *Inode) error {
	if err := writeString(w, path); err != nil {
		return err
	}
	if err := w.WriteByte(byte(ino.Type)); err != nil {
		return err
	}
	if err := writeU16(w, ino.Mode); err != nil {
		return err
	}
	if err := writeU32(w, ino.UID); err != nil {
		return err
	}
	if err := writeU32(w, ino.GID); err != nil {
		return err
	}
	if err := writeI64(w, ino.Ctime); err != nil {
		return err
	}
	if err := writeI64(w, ino.Mtime); err != nil {
		return err
	}
	if err := writeI64(w, ino.Atime); err != nil {
		return err
	}

	switch ino.Type {
	case TypeFile:
		if err := writeU64(w, uint64(len(ino.Data))); err != nil {
			return err
		}
		if len(ino.Data) > 0 {
			if _, err := w.Write(ino.Data); err != nil {
				return err
			}
		}
	case TypeDir:
		if err := writeU64(w, uint64(len(ino.Children))); err != nil {
			return err
		}
		for _, child := range ino.Children {
			if err := writeString(w, child); err != nil {
				return err
			}
		}
	case TypeSymlink:
		if err := writeString(w, ino.Target); err != nil {
			return err
		}
	}
	return nil
}

// Load reconstructs a Filesystem from a stream written by Save. Any I/O or
// format error frees the partially constructed object (by simply
// discarding it — Go's GC reclaims it) and surfaces the failure; the
// caller must not use fs on error.
func Load(r io.Reader) (*Filesystem, error) {
	br := bufio.NewReader(r)
	version, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != SnapshotVersion {
		return nil, ErrBadSnapshotVersion
	}
	count, err := readU64(br)
	if err != nil {
		return nil, err
	}

	fs := &Filesystem{inodes: make(map[string]*Inode, count)}
	for i := uint64(0); i < count; i++ {
		path, ino, err := readInode(br)
		if err != nil {
			return nil, err
		}
		if ino.Type == TypeFile {
			ino.SetContent(ino.Data) // rebuild bloom from loaded content
		}
		fs.inodes[path] = ino
		switch ino.Type {
		case TypeFile:
			fs.Files++
			fs.TotalBytes += uint64(len(ino.Data))
		case TypeDir:
			fs.Dirs++
		case TypeSymlink:
			fs.Symlinks++
		}
	}
	return fs, nil
}

func readInode(r *bufio.Reader) (string, *Inode, error) {
	path, err := readString(r)
	if err != nil {
		return "", nil, err
	}
	typeByte, err := r.ReadByte()
	if err != nil {
		return "", nil, err
	}
	ino := &Inode{Type: InodeType(typeByte)}
	if ino.Mode, err = readU16(r); err != nil {
		return "", nil, err
	}
	if ino.UID, err = readU32(r); err != nil {
		return "", nil, err
	}
	if ino.GID, err = readU32(r); err != nil {
		return "", nil, err
	}
	if ino.Ctime, err = readI64(r); err != nil {
		return "", nil, err
	}
	if ino.Mtime, err = readI64(r); err != nil {
		return "", nil, err
	}
	if ino.Atime, err = readI64(r); err != nil {
		return "", nil, err
	}

	switch ino.Type {
	case TypeFile:
		size, err := readU64(r)
		if err != nil {
			return "", nil, err
		}
		if size > 0 {
			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return "", nil, err
			}
			ino.Data = data
		}
	case TypeDir:
		childCount, err := readU64(r)
		if err != nil {
			return "", nil, err
		}
		ino.Children = make([]string, 0, childCount)
		for i := uint64(0); i < childCount; i++ {
			child, err := readString(r)
			if err != nil {
				return "", nil, err
			}
			ino.Children = append(ino.Children, child)
		}
	case TypeSymlink:
		target, err := readString(r)
		if err != nil {
			return "", nil, err
		}
		ino.Target = target
	}
	return path, ino, nil
}

func writeString(w *bufio.Writer, s string) error {
	if err := writeU64(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readU64(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeU16(w *bufio.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeU32(w *bufio.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeU64(w *bufio.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeI64(w *bufio.Writer, v int64) error {
	return writeU64(w, uint64(v))
}

func readU16(r *bufio.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readU32(r *bufio.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readU64(r *bufio.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func readI64(r *bufio.Reader) (int64, error) {
	v, err := readU64(r)
	return int64(v), err
}
