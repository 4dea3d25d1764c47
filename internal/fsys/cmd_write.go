package fsys

// Echo creates or replaces (or, with append=true, extends) the file at
// path. Rejects root. Ensures parent directories exist. Existing
// non-files at path are an error.
func (fs *Filesystem) Echo(path string, content []byte, append bool) error {
	if IsRoot(path) {
		if append {
			return ErrRootAppend
		}
		return ErrRootWrite
	}
	if err := fs.EnsureParents(path); err != nil {
		return err
	}
	ino := fs.Lookup(path)
	if ino != nil {
		if ino.Type != TypeFile {
			return ErrNotFile
		}
		before := int64(len(ino.Data))
		if append {
			ino.AppendContent(content)
		} else {
			ino.SetContent(content)
		}
		fs.AdjustBytes(int64(len(ino.Data)) - before)
		ino.Mtime = nowMillis()
		return nil
	}

	newIno := NewInode(TypeFile, 0)
	newIno.SetContent(content)
	fs.Insert(path, newIno)
	parent := fs.Lookup(Parent(path))
	parent.AddChild(Basename(path))
	parent.Mtime = nowMillis()
	return nil
}

// Append extends the file at path (creating it if missing) and returns
// its new size.
func (fs *Filesystem) Append(path string, content []byte) (int64, error) {
	if err := fs.Echo(path, content, true); err != nil {
		return 0, err
	}
	ino := fs.Lookup(path)
	return ino.Size(), nil
}

// Touch creates an empty file at path if missing, or otherwise bumps its
// mtime and atime.
func (fs *Filesystem) Touch(path string) error {
	if IsRoot(path) {
		return ErrRootWrite
	}
	ino := fs.Lookup(path)
	if ino != nil {
		now := nowMillis()
		ino.Mtime = now
		ino.Atime = now
		return nil
	}
	if err := fs.EnsureParents(path); err != nil {
		return err
	}
	newIno := NewInode(TypeFile, 0)
	fs.Insert(path, newIno)
	parent := fs.Lookup(Parent(path))
	parent.AddChild(Basename(path))
	parent.Mtime = nowMillis()
	return nil
}

// Mkdir creates a directory at path. With parents=true, missing ancestors
// are created and an existing directory at path is idempotently OK;
// without it, the parent must already exist as a directory and an
// existing path of any kind is an error.
func (fs *Filesystem) Mkdir(path string, parents bool) error {
	existing := fs.Lookup(path)
	if existing != nil {
		if parents && existing.Type == TypeDir {
			return nil
		}
		return ErrAlreadyExists
	}

	if parents {
		if err := fs.EnsureParents(path); err != nil {
			return err
		}
	} else if !IsRoot(path) {
		parentIno := fs.Lookup(Parent(path))
		if parentIno == nil {
			return ErrNotDir
		}
		if parentIno.Type != TypeDir {
			return ErrIsNotDir
		}
	}

	dir := NewInode(TypeDir, 0)
	fs.Insert(path, dir)
	if !IsRoot(path) {
		parentIno := fs.Lookup(Parent(path))
		parentIno.AddChild(Basename(path))
		parentIno.Mtime = nowMillis()
	}
	return nil
}

// Rm deletes path. Rejects root. Missing returns deleted=false with no
// error (0 is a success reply, not a failure). A non-empty directory
// without recursive=true is an error. Recursive delete is depth-first and
// snapshots each directory's child list before recursing, since the list
// mutates as children are removed.
func (fs *Filesystem) Rm(path string, recursive bool) (deleted bool, err error) {
	if IsRoot(path) {
		return false, ErrRootDelete
	}
	ino := fs.Lookup(path)
	if ino == nil {
		return false, nil
	}
	if ino.Type == TypeDir && len(ino.Children) > 0 {
		if !recursive {
			return false, ErrDirNotEmpty
		}
		if err := fs.removeSubtree(path, ino); err != nil {
			return false, err
		}
	} else {
		fs.Remove(path)
	}

	parentIno := fs.Lookup(Parent(path))
	if parentIno != nil {
		parentIno.RemoveChild(Basename(path))
		parentIno.Mtime = nowMillis()
	}
	return true, nil
}

// removeSubtree depth-first deletes every descendant of dir (a directory
// inode already known to be non-empty), then dir itself, without touching
// dir's own parent linkage (the caller does that).
func (fs *Filesystem) removeSubtree(path string, ino *Inode) error {
	children := append([]string(nil), ino.Children...)
	for _, name := range children {
		childPath, err := Join(path, name)
		if err != nil {
			return err
		}
		child := fs.Lookup(childPath)
		if child == nil {
			continue
		}
		if child.Type == TypeDir && len(child.Children) > 0 {
			if err := fs.removeSubtree(childPath, child); err != nil {
				return err
			}
		} else {
			fs.Remove(childPath)
		}
	}
	fs.Remove(path)
	return nil
}

// Chmod sets the permission bits of the inode at path without following
// symlinks. mode must already have been parsed and range-checked by the
// caller (internal/store's command layer owns octal parsing).
func (fs *Filesystem) Chmod(path string, mode uint16) error {
	ino := fs.Lookup(path)
	if ino == nil {
		return ErrNotExist
	}
	ino.Mode = mode
	ino.Ctime = nowMillis()
	return nil
}

// Chown sets uid and, if gidSet, gid of the inode at path without
// following symlinks.
func (fs *Filesystem) Chown(path string, uid uint32, gid uint32, gidSet bool) error {
	ino := fs.Lookup(path)
	if ino == nil {
		return ErrNotExist
	}
	ino.UID = uid
	if gidSet {
		ino.GID = gid
	}
	ino.Ctime = nowMillis()
	return nil
}

// Ln creates a symlink at linkpath pointing at target, stored exactly as
// given (absolute or relative, unresolved).
func (fs *Filesystem) Ln(target, linkpath string) error {
	if IsRoot(linkpath) {
		return ErrRootSymlink
	}
	if fs.Lookup(linkpath) != nil {
		return ErrAlreadyExists
	}
	if err := fs.EnsureParents(linkpath); err != nil {
		return err
	}
	ino := NewInode(TypeSymlink, 0)
	ino.Target = target
	fs.Insert(linkpath, ino)
	parent := fs.Lookup(Parent(linkpath))
	parent.AddChild(Basename(linkpath))
	parent.Mtime = nowMillis()
	return nil
}

// Truncate resolves symlinks at path and resizes its file content to
// length, rebuilding the bloom filter and adjusting total byte
// accounting.
func (fs *Filesystem) Truncate(path string, length int64) error {
	resolved, kind, err := fs.Resolve(path)
	if err != nil {
		return err
	}
	if kind == ResolveLoop {
		return ErrSymlinkLoop
	}
	ino := fs.Lookup(resolved)
	if ino == nil {
		return ErrNotExist
	}
	if ino.Type != TypeFile {
		return ErrNotFile
	}
	before := int64(len(ino.Data))
	ino.Truncate(length)
	fs.AdjustBytes(length - before)
	ino.Mtime = nowMillis()
	return nil
}

// Utimens sets atime and/or mtime of the inode at path without following
// symlinks. A value of -1 leaves that field unchanged.
func (fs *Filesystem) Utimens(path string, atimeMs, mtimeMs int64) error {
	ino := fs.Lookup(path)
	if ino == nil {
		return ErrNotExist
	}
	if atimeMs != -1 {
		ino.Atime = atimeMs
	}
	if mtimeMs != -1 {
		ino.Mtime = mtimeMs
	}
	return nil
}
