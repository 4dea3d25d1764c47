// Package fusebridge mounts a FS.* filesystem key as a FUSE filesystem,
// adapted from original_source/mount/internal/redisfs to call
// internal/wire.Client (our own JSON/HTTP protocol) instead of go-redis.
package fusebridge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/AnishMulay/redisfs/internal/logging"
	"github.com/AnishMulay/redisfs/internal/wire"
)

// Options configures the FUSE mount, following redisfs.Options,
// generalized with AllowOther (the original hardcodes it false).
type Options struct {
	AttrTimeout time.Duration
	ReadOnly    bool
	AllowOther  bool
	Debug       bool
	UID         uint32
	GID         uint32
}

// FSRoot is the root of the mounted filesystem.
type FSRoot struct {
	FSNode
}

// FSNode represents one file, directory, or symlink in the mount.
type FSNode struct {
	fs.Inode

	client    *wire.Client
	attrCache *cache
	dirCache  *cache
	log       logging.Logger
	opts      *Options
	fsPath    string // absolute path in the FS.* namespace, e.g. "/", "/foo/bar"
}

func (n *FSNode) root() *FSRoot {
	return n.Root().Operations().(*FSRoot)
}

// invalidatePath drops the cached attr/listing for path and its parent.
func (r *FSRoot) invalidatePath(path string) {
	r.attrCache.Invalidate(path)
	r.dirCache.Invalidate(path)
	parent := filepath.Dir(path)
	r.dirCache.Invalidate(parent)
	r.attrCache.Invalidate(parent)
}

// invalidatePathPrefix drops every cached entry at or below path, used
// after a move/rename where an entire subtree's cached paths are stale.
func (r *FSRoot) invalidatePathPrefix(path string) {
	r.attrCache.InvalidatePrefix(path)
	r.dirCache.InvalidatePrefix(path)
	r.invalidatePath(path)
}

func (n *FSNode) newChild(name string) *FSNode {
	childPath := n.fsPath + "/" + name
	if n.fsPath == "/" {
		childPath = "/" + name
	}
	return &FSNode{
		client:    n.client,
		attrCache: n.attrCache,
		dirCache:  n.dirCache,
		log:       n.log,
		opts:      n.opts,
		fsPath:    childPath,
	}
}

// Mount mounts the filesystem key behind c at mountpoint.
func Mount(mountpoint string, c *wire.Client, opts *Options, log logging.Logger) (*fuse.Server, error) {
	if opts.AttrTimeout == 0 {
		opts.AttrTimeout = time.Second
	}

	attrCache := newCache(opts.AttrTimeout)
	dirCache := newCache(opts.AttrTimeout)

	root := &FSRoot{
		FSNode: FSNode{
			client:    c,
			attrCache: attrCache,
			dirCache:  dirCache,
			log:       log,
			opts:      opts,
			fsPath:    "/",
		},
	}

	fuseOpts := &fs.Options{
		MountOptions: fuse.MountOptions{
			AllowOther: opts.AllowOther,
			FsName:     "fsbridge",
			Name:       "fsbridge",
			Debug:      opts.Debug,
		},
		EntryTimeout: &opts.AttrTimeout,
		AttrTimeout:  &opts.AttrTimeout,

		UID: opts.UID,
		GID: opts.GID,
	}

	if opts.ReadOnly {
		fuseOpts.MountOptions.Options = append(fuseOpts.MountOptions.Options, "ro")
	}

	return fs.Mount(mountpoint, root, fuseOpts)
}

// Statfs implements fs.NodeStatfser.
func (n *FSNode) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	info, err := n.client.Info(ctx)
	if err != nil {
		n.log.Error(logging.Event{Message: "statfs failed", Metadata: map[string]any{"error": err.Error()}})
		return syscall.EIO
	}

	const blockSize = 4096
	totalBlocks := uint64(info.TotalDataBytes+blockSize-1) / blockSize
	if totalBlocks < 1024 {
		totalBlocks = 1024
	}

	out.Bsize = blockSize
	out.Frsize = blockSize
	out.Blocks = totalBlocks * 10
	out.Bfree = totalBlocks * 9
	out.Bavail = totalBlocks * 9
	out.Files = info.TotalInodes
	out.Ffree = 1000000
	out.NameLen = 255
	return 0
}

// Getattr implements fs.NodeGetattrer.
func (n *FSNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if cached, ok := n.attrCache.Get(n.fsPath); ok {
		out.Attr = cached.(fuse.Attr)
		out.SetTimeout(n.opts.AttrTimeout)
		return 0
	}

	st, err := n.client.Stat(ctx, n.fsPath)
	if err != nil {
		return mapError(err)
	}
	if st == nil {
		return syscall.ENOENT
	}

	attr := statToAttr(st, n.opts.UID, n.opts.GID)
	n.attrCache.Set(n.fsPath, attr)
	out.Attr = attr
	out.SetTimeout(n.opts.AttrTimeout)
	return 0
}

// Setattr implements fs.NodeSetattrer.
func (n *FSNode) Setattr(ctx context.Context, fh fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if n.opts.ReadOnly {
		return syscall.EROFS
	}

	if sz, ok := in.GetSize(); ok {
		if err := n.client.Truncate(ctx, n.fsPath, int64(sz)); err != nil {
			return mapError(err)
		}
	}

	if mode, ok := in.GetMode(); ok {
		if err := n.client.Chmod(ctx, n.fsPath, mode&07777); err != nil {
			return mapError(err)
		}
	}

	uid, uidOk := in.GetUID()
	gid, gidOk := in.GetGID()
	if uidOk || gidOk {
		newUID := n.opts.UID
		if uidOk {
			newUID = uid
		}
		if err := n.client.Chown(ctx, n.fsPath, newUID, gid, gidOk); err != nil {
			return mapError(err)
		}
	}

	atime, atimeOk := in.GetATime()
	mtime, mtimeOk := in.GetMTime()
	if atimeOk || mtimeOk {
		atimeMs := int64(-1)
		mtimeMs := int64(-1)
		if atimeOk {
			atimeMs = atime.UnixNano() / 1_000_000
		}
		if mtimeOk {
			mtimeMs = mtime.UnixNano() / 1_000_000
		}
		if err := n.client.Utimens(ctx, n.fsPath, atimeMs, mtimeMs); err != nil {
			return mapError(err)
		}
	}

	n.attrCache.Invalidate(n.fsPath)

	return n.Getattr(ctx, fh, out)
}

// GetOwnership returns the uid/gid of the process running the mount, used
// as the default for Options.UID/GID when the caller doesn't override it.
func GetOwnership() (uint32, uint32) {
	return uint32(os.Getuid()), uint32(os.Getgid())
}

func parentPath(p string) string {
	if p == "/" {
		return "/"
	}
	parent := filepath.Dir(p)
	if parent == "." {
		return "/"
	}
	return parent
}

func baseName(p string) string {
	if p == "/" {
		return ""
	}
	parts := strings.Split(p, "/")
	return parts[len(parts)-1]
}

var _ fs.NodeStatfser = (*FSNode)(nil)
var _ fs.NodeGetattrer = (*FSNode)(nil)
var _ fs.NodeSetattrer = (*FSNode)(nil)
