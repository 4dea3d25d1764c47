package fsys

import (
	"bytes"
	"strings"
)

// GrepMatch is one row of an FS.GREP reply: a matched path, a 1-based
// line number (0 for the binary-file case), and the matched line (or the
// fixed "Binary file matches" message).
type GrepMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Grep walks depth-first from path, skipping non-file inodes, and emits a
// GrepMatch for every file whose content matches pattern. Files are
// bloom-filtered first: if the pattern's longest literal run cannot
// possibly appear, the file is skipped without being scanned. A file
// containing a NUL byte is treated as binary: the whole match is reported
// once if the pattern's longest literal substring appears anywhere in the
// raw bytes (case-insensitive ASCII). Otherwise the file is scanned line
// by line.
func (fs *Filesystem) Grep(path, pattern string, nocase bool) ([]GrepMatch, error) {
	root := fs.Lookup(path)
	if root == nil {
		return nil, ErrNotExist
	}
	literal := LongestLiteral(pattern)
	var out []GrepMatch
	fs.grepWalk(path, root, pattern, literal, nocase, &out)
	return out, nil
}

func (fs *Filesystem) grepWalk(path string, ino *Inode, pattern, literal string, nocase bool, out *[]GrepMatch) {
	if ino.Type == TypeFile {
		if ino.MayContainLiteral(literal) {
			fs.grepFile(path, ino, pattern, nocase, out)
		}
		return
	}
	if ino.Type != TypeDir {
		return
	}
	for _, name := range ino.Children {
		childPath, err := Join(path, name)
		if err != nil {
			continue
		}
		child := fs.Lookup(childPath)
		if child == nil {
			continue
		}
		fs.grepWalk(childPath, child, pattern, literal, nocase, out)
	}
}

func (fs *Filesystem) grepFile(path string, ino *Inode, pattern string, nocase bool, out *[]GrepMatch) {
	content := ino.Data
	if bytes.IndexByte(content, 0) >= 0 {
		literal := LongestLiteral(pattern)
		if literal == "" || bytes.Contains(toLowerASCII(content), toLowerASCII([]byte(literal))) {
			*out = append(*out, GrepMatch{Path: path, Line: 0, Text: "Binary file matches"})
		}
		return
	}
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if GlobMatch(pattern, line, nocase) {
			*out = append(*out, GrepMatch{Path: path, Line: i + 1, Text: line})
		}
	}
}
