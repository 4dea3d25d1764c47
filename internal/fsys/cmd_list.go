package fsys

import (
	"encoding/json"
	"fmt"
)

// LsEntry is one row of an FS.LS LONG reply.
type LsEntry struct {
	Name  string    `json:"name"`
	Type  InodeType `json:"type"`
	Mode  Mode      `json:"mode"`
	Size  int64     `json:"size"`
	Mtime int64     `json:"mtime_ms"`
}

// Ls resolves symlinks on path and lists its children in
// stored order, updating its atime. Errors if the resolved target is not
// a directory.
func (fs *Filesystem) Ls(path string) (names []string, err error) {
	dir, err := fs.lsTarget(path)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), dir.Children...), nil
}

// LsLong is Ls's LONG variant: a quintuple per child instead of a bare
// name.
func (fs *Filesystem) LsLong(path string) ([]LsEntry, error) {
	dir, err := fs.lsTarget(path)
	if err != nil {
		return nil, err
	}
	entries := make([]LsEntry, 0, len(dir.Children))
	for _, name := range dir.Children {
		childPath, err := Join(path, name)
		if err != nil {
			return nil, err
		}
		child := fs.Lookup(childPath)
		if child == nil {
			continue
		}
		entries = append(entries, LsEntry{
			Name:  name,
			Type:  child.Type,
			Mode:  Mode(child.Mode),
			Size:  child.Size(),
			Mtime: child.Mtime,
		})
	}
	return entries, nil
}

func (fs *Filesystem) lsTarget(path string) (*Inode, error) {
	resolved, kind, err := fs.Resolve(path)
	if err != nil {
		return nil, err
	}
	if kind == ResolveLoop {
		return nil, ErrSymlinkLoop
	}
	if kind == ResolveMissing {
		return nil, ErrNotExist
	}
	dir := fs.Lookup(resolved)
	if dir == nil {
		return nil, ErrNotExist
	}
	if dir.Type != TypeDir {
		return nil, ErrIsNotDir
	}
	dir.Atime = nowMillis()
	return dir, nil
}

// TreeNode is one node of an FS.TREE reply: either a scalar leaf name (for
// files, symlinks, and directories at the depth cutoff) or a
// [name, children] pair.
type TreeNode struct {
	Name     string
	Children []TreeNode // nil for leaves
	IsLeaf   bool
}

// MarshalJSON renders a leaf as a bare name string and a directory as a
// [name, children] pair, matching the original datatype's TREE reply
// (a nested RESP array rather than an object).
func (n TreeNode) MarshalJSON() ([]byte, error) {
	if n.IsLeaf {
		return json.Marshal(n.Name)
	}
	return json.Marshal([]interface{}{n.Name, n.Children})
}

// UnmarshalJSON parses either shape back into a TreeNode.
func (n *TreeNode) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*n = TreeNode{Name: name, IsLeaf: true}
		return nil
	}
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("fsys: invalid tree node %s: %w", data, err)
	}
	if err := json.Unmarshal(pair[0], &name); err != nil {
		return fmt.Errorf("fsys: invalid tree node name: %w", err)
	}
	var children []TreeNode
	if err := json.Unmarshal(pair[1], &children); err != nil {
		return fmt.Errorf("fsys: invalid tree node children: %w", err)
	}
	*n = TreeNode{Name: name, Children: children}
	return nil
}

// DefaultTreeDepth is the depth FS.TREE uses when no DEPTH is given.
const DefaultTreeDepth = 64

// Tree renders a nested structure starting at path, descending at most
// depth levels. Directory names get a "/" suffix, symlinks "@", files no
// suffix; the root directory's own name renders as "/" rather than "//".
func (fs *Filesystem) Tree(path string, depth int) (TreeNode, error) {
	ino := fs.Lookup(path)
	if ino == nil {
		return TreeNode{}, ErrNotExist
	}
	return fs.treeNode(path, ino, depth), nil
}

func (fs *Filesystem) treeNode(path string, ino *Inode, depth int) TreeNode {
	name := treeName(path, ino)
	if ino.Type != TypeDir || depth <= 0 {
		return TreeNode{Name: name, IsLeaf: true}
	}
	children := make([]TreeNode, 0, len(ino.Children))
	for _, childName := range ino.Children {
		childPath, err := Join(path, childName)
		if err != nil {
			continue
		}
		childIno := fs.Lookup(childPath)
		if childIno == nil {
			continue
		}
		children = append(children, fs.treeNode(childPath, childIno, depth-1))
	}
	return TreeNode{Name: name, Children: children}
}

func treeName(path string, ino *Inode) string {
	if IsRoot(path) {
		return "/"
	}
	base := Basename(path)
	switch ino.Type {
	case TypeDir:
		return base + "/"
	case TypeSymlink:
		return base + "@"
	default:
		return base
	}
}

// FindType optionally restricts FS.FIND to one inode type.
type FindType struct {
	Set   bool
	Value InodeType
}

// Find walks depth-first from path, emitting the full path of every
// visited inode whose basename matches pattern and (if TYPE was given)
// whose type matches.
func (fs *Filesystem) Find(path, pattern string, want FindType) ([]string, error) {
	root := fs.Lookup(path)
	if root == nil {
		return nil, ErrNotExist
	}
	var out []string
	fs.findWalk(path, root, pattern, want, &out)
	return out, nil
}

func (fs *Filesystem) findWalk(path string, ino *Inode, pattern string, want FindType, out *[]string) {
	if GlobMatch(pattern, Basename(path), false) && (!want.Set || want.Value == ino.Type) {
		*out = append(*out, path)
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
		fs.findWalk(childPath, child, pattern, want, out)
	}
}
