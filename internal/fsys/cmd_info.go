package fsys

// Info is the reply to FS.INFO: aggregate counters for the whole object.
type Info struct {
	Files          uint64 `json:"files"`
	Directories    uint64 `json:"directories"`
	Symlinks       uint64 `json:"symlinks"`
	TotalDataBytes uint64 `json:"total_data_bytes"`
	TotalInodes    uint64 `json:"total_inodes"`
}

// Info returns the aggregate counters, O(1) per spec §4.6.
func (fs *Filesystem) Info() Info {
	return Info{
		Files:          fs.Files,
		Directories:    fs.Dirs,
		Symlinks:       fs.Symlinks,
		TotalDataBytes: fs.TotalBytes,
		TotalInodes:    fs.TotalInodes(),
	}
}

// StatResult is the reply to FS.STAT.
type StatResult struct {
	Type  InodeType `json:"type"`
	Mode  Mode      `json:"mode"`
	UID   uint32    `json:"uid"`
	GID   uint32    `json:"gid"`
	Size  int64     `json:"size"`
	Ctime int64     `json:"ctime_ms"`
	Mtime int64     `json:"mtime_ms"`
	Atime int64     `json:"atime_ms"`
}

// Stat returns the metadata of the inode at path without following
// symlinks. Returns ok=false if path is missing.
func (fs *Filesystem) Stat(path string) (StatResult, bool) {
	ino := fs.Lookup(path)
	if ino == nil {
		return StatResult{}, false
	}
	return StatResult{
		Type:  ino.Type,
		Mode:  Mode(ino.Mode),
		UID:   ino.UID,
		GID:   ino.GID,
		Size:  ino.Size(),
		Ctime: ino.Ctime,
		Mtime: ino.Mtime,
		Atime: ino.Atime,
	}, true
}

// Test reports whether path exists.
func (fs *Filesystem) Test(path string) bool {
	return fs.Lookup(path) != nil
}
