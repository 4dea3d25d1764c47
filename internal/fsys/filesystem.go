package fsys

// Filesystem is the tuple (M, nf, nd, nl, B) from spec §3: a flat mapping
// from normalized absolute paths to inodes, plus the running counters that
// invariants §3.4-3.5 require to stay derived-but-incremental. A
// Filesystem is owned exclusively by the caller that holds it; nothing in
// this package takes a lock, by design — see internal/store for the
// per-key exclusivity that makes that safe.
type Filesystem struct {
	inodes map[string]*Inode

	Files       uint64
	Dirs        uint64
	Symlinks    uint64
	TotalBytes  uint64
}

// New constructs an empty Filesystem with a root directory already
// inserted, satisfying invariant §3.1 immediately rather than deferring it
// to the first write.
func New() *Filesystem {
	fs := &Filesystem{inodes: make(map[string]*Inode)}
	fs.insertRoot()
	return fs
}

func (fs *Filesystem) insertRoot() {
	root := NewInode(TypeDir, DefaultDirMode)
	fs.inodes["/"] = root
	fs.Dirs++
}

// Lookup returns the inode at path, or nil if absent.
func (fs *Filesystem) Lookup(path string) *Inode {
	return fs.inodes[path]
}

// Insert adds inode at path and updates the derived counters.
func (fs *Filesystem) Insert(path string, inode *Inode) {
	fs.inodes[path] = inode
	switch inode.Type {
	case TypeFile:
		fs.Files++
		fs.TotalBytes += uint64(len(inode.Data))
	case TypeDir:
		fs.Dirs++
	case TypeSymlink:
		fs.Symlinks++
	}
}

// Remove deletes the inode at path and returns it (nil if absent),
// updating the derived counters. The caller owns re-linking the parent's
// child list.
func (fs *Filesystem) Remove(path string) *Inode {
	inode, ok := fs.inodes[path]
	if !ok {
		return nil
	}
	delete(fs.inodes, path)
	switch inode.Type {
	case TypeFile:
		fs.Files--
		fs.TotalBytes -= uint64(len(inode.Data))
	case TypeDir:
		fs.Dirs--
	case TypeSymlink:
		fs.Symlinks--
	}
	return inode
}

// AdjustBytes updates TotalBytes by delta, used by Truncate/Echo/Append
// when a file's content size changes in place (Insert/Remove already
// account for whole-file creation/deletion).
func (fs *Filesystem) AdjustBytes(delta int64) {
	if delta >= 0 {
		fs.TotalBytes += uint64(delta)
	} else {
		fs.TotalBytes -= uint64(-delta)
	}
}

// TotalInodes returns nf + nd + nl.
func (fs *Filesystem) TotalInodes() uint64 {
	return fs.Files + fs.Dirs + fs.Symlinks
}

// Empty reports whether only the root directory remains, the trigger for
// the host to drop the key per the lifecycle protocol in spec §4.4.
func (fs *Filesystem) Empty() bool {
	return fs.TotalInodes() <= 1
}

// EnsureParents recursively ensures each ancestor directory of path
// exists, creating missing intermediate directories with default mode and
// linking each into its parent's child list. Returns ErrParentConflict if
// an ancestor exists as a non-directory.
func (fs *Filesystem) EnsureParents(path string) error {
	if IsRoot(path) {
		return nil
	}
	parent := Parent(path)
	return fs.ensureDir(parent)
}

func (fs *Filesystem) ensureDir(path string) error {
	if IsRoot(path) {
		return nil
	}
	if existing := fs.Lookup(path); existing != nil {
		if existing.Type != TypeDir {
			return ErrParentConflict
		}
		return nil
	}
	if err := fs.ensureDir(Parent(path)); err != nil {
		return err
	}
	dir := NewInode(TypeDir, 0)
	fs.Insert(path, dir)
	parentIno := fs.Lookup(Parent(path))
	parentIno.AddChild(Basename(path))
	return nil
}

// pathsWithPrefix returns every path in M that is equal to prefix or
// rooted under it (prefix + "/"), used by Mv's atomic subtree rename. The
// returned slice is collected before the caller mutates M, per spec §9's
// "collect first, then remove/insert" guidance.
func (fs *Filesystem) pathsWithPrefix(prefix string) []string {
	var out []string
	want := prefix + "/"
	for p := range fs.inodes {
		if p == prefix || (prefix != "/" && len(p) > len(want) && p[:len(want)] == want) {
			out = append(out, p)
		} else if prefix == "/" && p != "/" {
			out = append(out, p)
		}
	}
	return out
}

// iterate calls fn for every (path, inode) pair. Iteration order is the Go
// map's order and is not required to be stable across runs, matching the
// snapshot codec's documented ordering guarantee (semantic, not byte,
// equality across round-trips).
func (fs *Filesystem) iterate(fn func(path string, ino *Inode)) {
	for p, ino := range fs.inodes {
		fn(p, ino)
	}
}

// count returns the number of paths in M, root included.
func (fs *Filesystem) count() int {
	return len(fs.inodes)
}
