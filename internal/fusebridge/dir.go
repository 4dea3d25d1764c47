package fusebridge

import (
	"context"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/AnishMulay/redisfs/internal/fsys"
)

// Lookup implements fs.NodeLookuper.
func (n *FSNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child := n.newChild(name)

	if cached, ok := n.attrCache.Get(child.fsPath); ok {
		out.Attr = cached.(fuse.Attr)
		out.SetEntryTimeout(n.opts.AttrTimeout)
		out.SetAttrTimeout(n.opts.AttrTimeout)
		node := n.NewInode(ctx, child, fs.StableAttr{Mode: out.Attr.Mode & syscall.S_IFMT})
		return node, 0
	}

	st, err := n.client.Stat(ctx, child.fsPath)
	if err != nil {
		return nil, mapError(err)
	}
	if st == nil {
		return nil, syscall.ENOENT
	}

	attr := statToAttr(st, n.opts.UID, n.opts.GID)
	n.attrCache.Set(child.fsPath, attr)

	out.Attr = attr
	out.SetEntryTimeout(n.opts.AttrTimeout)
	out.SetAttrTimeout(n.opts.AttrTimeout)

	node := n.NewInode(ctx, child, fs.StableAttr{Mode: attr.Mode & syscall.S_IFMT})
	return node, 0
}

// Readdir implements fs.NodeReaddirer.
func (n *FSNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	if cached, ok := n.dirCache.Get(n.fsPath); ok {
		return fs.NewListDirStream(cached.([]fuse.DirEntry)), 0
	}

	entries, err := n.client.LsLong(ctx, n.fsPath)
	if err != nil {
		return nil, mapError(err)
	}

	result := make([]fuse.DirEntry, 0, len(entries))
	for i := range entries {
		e := entries[i]
		var mode uint32
		switch e.Type {
		case fsys.TypeFile:
			mode = syscall.S_IFREG
		case fsys.TypeDir:
			mode = syscall.S_IFDIR
		case fsys.TypeSymlink:
			mode = syscall.S_IFLNK
		}
		result = append(result, fuse.DirEntry{
			Name: e.Name,
			Mode: mode,
		})

		childPath := n.fsPath + "/" + e.Name
		if n.fsPath == "/" {
			childPath = "/" + e.Name
		}
		n.attrCache.Set(childPath, lsEntryToAttr(&e, n.opts.UID, n.opts.GID))
	}

	n.dirCache.Set(n.fsPath, result)
	return fs.NewListDirStream(result), 0
}

// Mkdir implements fs.NodeMkdirer.
func (n *FSNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	if n.opts.ReadOnly {
		return nil, syscall.EROFS
	}

	child := n.newChild(name)

	if err := n.client.Mkdir(ctx, child.fsPath, false); err != nil {
		return nil, mapError(err)
	}

	if mode != 0 {
		_ = n.client.Chmod(ctx, child.fsPath, mode&07777)
	}

	n.root().invalidatePath(child.fsPath)

	st, err := n.client.Stat(ctx, child.fsPath)
	if err != nil {
		return nil, mapError(err)
	}
	attr := statToAttr(st, n.opts.UID, n.opts.GID)
	out.Attr = attr
	out.SetEntryTimeout(n.opts.AttrTimeout)
	out.SetAttrTimeout(n.opts.AttrTimeout)

	node := n.NewInode(ctx, child, fs.StableAttr{Mode: syscall.S_IFDIR})
	return node, 0
}

// Rmdir implements fs.NodeRmdirer.
func (n *FSNode) Rmdir(ctx context.Context, name string) syscall.Errno {
	if n.opts.ReadOnly {
		return syscall.EROFS
	}

	child := n.newChild(name)

	if _, err := n.client.Rm(ctx, child.fsPath, false); err != nil {
		return mapError(err)
	}

	n.root().invalidatePath(child.fsPath)
	return 0
}

// Rename implements fs.NodeRenamer.
func (n *FSNode) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	if n.opts.ReadOnly {
		return syscall.EROFS
	}

	oldPath := n.newChild(name).fsPath
	newParentNode := newParent.(*FSNode)
	newPath := newParentNode.newChild(newName).fsPath

	if err := n.client.Mv(ctx, oldPath, newPath); err != nil {
		return mapError(err)
	}

	n.root().invalidatePathPrefix(oldPath)
	n.root().invalidatePathPrefix(newPath)
	return 0
}

var _ fs.NodeLookuper = (*FSNode)(nil)
var _ fs.NodeReaddirer = (*FSNode)(nil)
var _ fs.NodeMkdirer = (*FSNode)(nil)
var _ fs.NodeRmdirer = (*FSNode)(nil)
var _ fs.NodeRenamer = (*FSNode)(nil)
