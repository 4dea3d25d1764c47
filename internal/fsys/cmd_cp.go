package fsys

// Cp copies src to dst. A directory src requires recursive=true. dst must
// not already exist. Recursive copy preserves mode/uid/gid and all three
// timestamps on each copied inode, rebuilds each file's own bloom from its
// own (copied) content, and repopulates each subdirectory's child list in
// original order as children are cloned.
//
// Per spec §9's open question, a failure partway through a recursive copy
// is not rolled back: whatever subtree has been created so far remains.
// This is acceptable because the host's per-key exclusivity (§5) means no
// concurrent reader can observe the partial state of another key, and
// because staging the copy under a temporary path and flipping it into
// place at the end would double the worst-case memory footprint of a Cp
// for no externally visible benefit under that same exclusivity.
func (fs *Filesystem) Cp(src, dst string, recursive bool) error {
	srcIno := fs.Lookup(src)
	if srcIno == nil {
		return ErrNotExist
	}
	if fs.Lookup(dst) != nil {
		return ErrDestExists
	}
	if srcIno.Type == TypeDir && !recursive {
		return ErrSrcIsDir
	}
	if err := fs.EnsureParents(dst); err != nil {
		return err
	}

	if err := fs.copyInode(src, dst, srcIno); err != nil {
		return ErrCopyFailed
	}

	now := nowMillis()
	parent := fs.Lookup(Parent(dst))
	parent.AddChild(Basename(dst))
	parent.Mtime = now
	return nil
}

// copyInode clones ino into dst and, if it is a directory, recurses over
// its original child list in order.
func (fs *Filesystem) copyInode(src, dst string, ino *Inode) error {
	clone := ino.Clone()
	fs.Insert(dst, clone)

	if ino.Type != TypeDir {
		return nil
	}
	clone.Children = clone.Children[:0]
	for _, name := range ino.Children {
		childSrc, err := Join(src, name)
		if err != nil {
			return err
		}
		childDst, err := Join(dst, name)
		if err != nil {
			return err
		}
		childIno := fs.Lookup(childSrc)
		if childIno == nil {
			continue
		}
		if err := fs.copyInode(childSrc, childDst, childIno); err != nil {
			return err
		}
		clone.AddChild(name)
	}
	return nil
}
