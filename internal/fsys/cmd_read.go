package fsys

// Cat resolves symlinks and returns the content of the file at path,
// updating its atime. ok=false means missing. A non-file at the resolved
// path is ErrNotFile.
func (fs *Filesystem) Cat(path string) (data []byte, ok bool, err error) {
	resolved, kind, err := fs.Resolve(path)
	if err != nil {
		return nil, false, err
	}
	if kind == ResolveLoop {
		return nil, false, ErrSymlinkLoop
	}
	if kind == ResolveMissing {
		return nil, false, nil
	}
	ino := fs.Lookup(resolved)
	if ino == nil {
		return nil, false, nil
	}
	if ino.Type != TypeFile {
		return nil, false, ErrNotFile
	}
	ino.Atime = nowMillis()
	return ino.Data, true, nil
}

// Readlink returns the stored target of the symlink at path without
// following it. ok=false means missing.
func (fs *Filesystem) Readlink(path string) (target string, ok bool, err error) {
	ino := fs.Lookup(path)
	if ino == nil {
		return "", false, nil
	}
	if ino.Type != TypeSymlink {
		return "", false, ErrNotSymlink
	}
	return ino.Target, true, nil
}
