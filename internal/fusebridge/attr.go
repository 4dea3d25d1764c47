package fusebridge

import (
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/AnishMulay/redisfs/internal/fsys"
)

// statToAttr converts a StatResult to a fuse.Attr, following
// redisfs/attr.go's statToAttr, generalized from a string Type field to
// fsys.InodeType.
func statToAttr(st *fsys.StatResult, uid, gid uint32) fuse.Attr {
	var mode uint32
	switch st.Type {
	case fsys.TypeFile:
		mode = syscall.S_IFREG | uint32(st.Mode)
	case fsys.TypeDir:
		mode = syscall.S_IFDIR | uint32(st.Mode)
	case fsys.TypeSymlink:
		mode = syscall.S_IFLNK | uint32(st.Mode)
	}

	var nlink uint32 = 1
	if st.Type == fsys.TypeDir {
		nlink = 2
	}

	attr := fuse.Attr{
		Mode:      mode,
		Nlink:     nlink,
		Size:      uint64(st.Size),
		Owner:     fuse.Owner{Uid: uid, Gid: gid},
		Atime:     uint64(st.Atime / 1000),
		Atimensec: uint32((st.Atime % 1000) * 1_000_000),
		Mtime:     uint64(st.Mtime / 1000),
		Mtimensec: uint32((st.Mtime % 1000) * 1_000_000),
		Ctime:     uint64(st.Ctime / 1000),
		Ctimensec: uint32((st.Ctime % 1000) * 1_000_000),
	}

	if st.Type == fsys.TypeDir {
		attr.Size = 4096
	}

	attr.Blocks = (attr.Size + 511) / 512
	return attr
}

// lsEntryToAttr converts an LsEntry into fuse.Attr, following
// redisfs/dir.go's lsEntryToAttr. LsEntry carries no atime/ctime, so
// those fields are left zero; a subsequent Getattr/Lookup on the path
// refreshes them from a full Stat.
func lsEntryToAttr(e *fsys.LsEntry, uid, gid uint32) fuse.Attr {
	var mode uint32
	switch e.Type {
	case fsys.TypeFile:
		mode = syscall.S_IFREG | uint32(e.Mode)
	case fsys.TypeDir:
		mode = syscall.S_IFDIR | uint32(e.Mode)
	case fsys.TypeSymlink:
		mode = syscall.S_IFLNK | uint32(e.Mode)
	}

	var nlink uint32 = 1
	if e.Type == fsys.TypeDir {
		nlink = 2
	}

	size := uint64(e.Size)
	if e.Type == fsys.TypeDir {
		size = 4096
	}

	return fuse.Attr{
		Mode:      mode,
		Nlink:     nlink,
		Size:      size,
		Owner:     fuse.Owner{Uid: uid, Gid: gid},
		Mtime:     uint64(e.Mtime / 1000),
		Mtimensec: uint32((e.Mtime % 1000) * 1_000_000),
		Blocks:    (size + 511) / 512,
	}
}
