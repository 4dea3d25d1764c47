package fsys

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestEchoCatRoundTrip(t *testing.T) {
	fs := New()
	if err := fs.Echo("/a/b.txt", []byte("hi"), false); err != nil {
		t.Fatalf("Echo: %v", err)
	}
	data, ok, err := fs.Cat("/a/b.txt")
	if err != nil || !ok {
		t.Fatalf("Cat: ok=%v err=%v", ok, err)
	}
	if string(data) != "hi" {
		t.Fatalf("Cat = %q, want %q", data, "hi")
	}

	info := fs.Info()
	if info.Files != 1 || info.Directories != 2 || info.Symlinks != 0 || info.TotalDataBytes != 2 {
		t.Fatalf("Info = %+v", info)
	}
}

func TestRmRecursiveDeletesSubtree(t *testing.T) {
	fs := New()
	mustEcho(t, fs, "/a/b.txt", "hi")
	deleted, err := fs.Rm("/a", true)
	if err != nil || !deleted {
		t.Fatalf("Rm: deleted=%v err=%v", deleted, err)
	}
	if fs.Test("/a") || fs.Test("/a/b.txt") {
		t.Fatalf("expected subtree gone")
	}
	if !fs.Empty() {
		t.Fatalf("expected filesystem empty after deleting last entries")
	}
}

func TestRmMissingReturnsFalseNoError(t *testing.T) {
	fs := New()
	deleted, err := fs.Rm("/nope", false)
	if err != nil {
		t.Fatalf("Rm missing should not error, got %v", err)
	}
	if deleted {
		t.Fatalf("Rm missing should report deleted=false")
	}
}

func TestRmNonEmptyWithoutRecursiveErrors(t *testing.T) {
	fs := New()
	mustEcho(t, fs, "/a/b.txt", "hi")
	if _, err := fs.Rm("/a", false); err != ErrDirNotEmpty {
		t.Fatalf("Rm non-empty dir: got %v, want ErrDirNotEmpty", err)
	}
}

func TestMvPreservesDescendants(t *testing.T) {
	fs := New()
	if err := fs.Mkdir("/src", true); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	mustEcho(t, fs, "/src/x", "1")
	mustEcho(t, fs, "/src/sub/y", "22")
	if err := fs.Mkdir("/dst", true); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	if err := fs.Mv("/src", "/dst/src"); err != nil {
		t.Fatalf("Mv: %v", err)
	}

	data, ok, err := fs.Cat("/dst/src/x")
	if err != nil || !ok || string(data) != "1" {
		t.Fatalf("Cat /dst/src/x = %q ok=%v err=%v", data, ok, err)
	}
	data, ok, err = fs.Cat("/dst/src/sub/y")
	if err != nil || !ok || string(data) != "22" {
		t.Fatalf("Cat /dst/src/sub/y = %q ok=%v err=%v", data, ok, err)
	}
	if fs.Test("/src") {
		t.Fatalf("expected /src gone after move")
	}
	st, ok := fs.Stat("/dst/src")
	if !ok || st.Type != TypeDir {
		t.Fatalf("Stat /dst/src: ok=%v type=%v", ok, st.Type)
	}
}

func TestMvIntoOwnSubtreeRefused(t *testing.T) {
	fs := New()
	if err := fs.Mkdir("/d", true); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Mv("/d", "/d/inside"); err != ErrMoveIntoSelf {
		t.Fatalf("Mv into own subtree: got %v, want ErrMoveIntoSelf", err)
	}
}

func TestSymlinkLoopDetection(t *testing.T) {
	fs := New()
	if err := fs.Ln("/b", "/a"); err != nil {
		t.Fatalf("Ln: %v", err)
	}
	if err := fs.Ln("/a", "/b"); err != nil {
		t.Fatalf("Ln: %v", err)
	}
	if _, _, err := fs.Cat("/a"); err != ErrSymlinkLoop {
		t.Fatalf("Cat loop: got %v, want ErrSymlinkLoop", err)
	}
	target, ok, err := fs.Readlink("/a")
	if err != nil || !ok || target != "/b" {
		t.Fatalf("Readlink /a = %q ok=%v err=%v", target, ok, err)
	}
}

func TestGrepGlobAndBloom(t *testing.T) {
	fs := New()
	mustEcho(t, fs, "/f1", "alpha beta gamma")
	mustEcho(t, fs, "/f2", "nothing relevant here")
	mustEcho(t, fs, "/binary", "\x00\x00ERROR\x00\x00")

	matches, err := fs.Grep("/", "*ERROR*", false)
	if err != nil {
		t.Fatalf("Grep: %v", err)
	}
	if len(matches) != 1 || matches[0].Path != "/binary" || matches[0].Line != 0 || matches[0].Text != "Binary file matches" {
		t.Fatalf("Grep ERROR = %+v", matches)
	}

	matches, err = fs.Grep("/", "*beta*", false)
	if err != nil {
		t.Fatalf("Grep: %v", err)
	}
	if len(matches) != 1 || matches[0].Path != "/f1" || matches[0].Line != 1 {
		t.Fatalf("Grep beta = %+v", matches)
	}

	nocaseMatches, err := fs.Grep("/", "*BETA*", true)
	if err != nil {
		t.Fatalf("Grep: %v", err)
	}
	if len(nocaseMatches) != 1 || nocaseMatches[0] != matches[0] {
		t.Fatalf("Grep BETA NOCASE = %+v, want %+v", nocaseMatches, matches)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	fs := New()
	mustEcho(t, fs, "/file.txt", "hello world")
	if err := fs.Mkdir("/dir", false); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Ln("/file.txt", "/link"); err != nil {
		t.Fatalf("Ln: %v", err)
	}

	before := fs.Digest()

	var buf bytes.Buffer
	if err := fs.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	after := loaded.Digest()
	if !bytes.Equal(before, after) {
		t.Fatalf("digest mismatch after round-trip")
	}

	data, ok, err := loaded.Cat("/file.txt")
	if err != nil || !ok || string(data) != "hello world" {
		t.Fatalf("Cat after load = %q ok=%v err=%v", data, ok, err)
	}
	target, ok, err := loaded.Readlink("/link")
	if err != nil || !ok || target != "/file.txt" {
		t.Fatalf("Readlink after load = %q ok=%v err=%v", target, ok, err)
	}
	st, ok := loaded.Stat("/dir")
	if !ok || st.Type != TypeDir {
		t.Fatalf("Stat /dir after load: ok=%v type=%v", ok, st.Type)
	}
}

func TestSnapshotRejectsBadVersion(t *testing.T) {
	buf := bytes.NewBuffer([]byte{1, 0, 0, 0, 0, 0, 0, 0, 0})
	if _, err := Load(buf); err != ErrBadSnapshotVersion {
		t.Fatalf("Load bad version: got %v, want ErrBadSnapshotVersion", err)
	}
}

func TestMkdirParentsIdempotent(t *testing.T) {
	fs := New()
	for i := 0; i < 3; i++ {
		if err := fs.Mkdir("/a/b/c", true); err != nil {
			t.Fatalf("Mkdir iteration %d: %v", i, err)
		}
	}
	st, ok := fs.Stat("/a/b/c")
	if !ok || st.Type != TypeDir {
		t.Fatalf("expected /a/b/c to be a directory")
	}
}

func TestCpRecursivePreservesMetadataAndOrder(t *testing.T) {
	fs := New()
	mustEcho(t, fs, "/src/a.txt", "1")
	mustEcho(t, fs, "/src/b.txt", "22")
	if err := fs.Chmod("/src/a.txt", 0o640); err != nil {
		t.Fatalf("Chmod: %v", err)
	}

	if err := fs.Cp("/src", "/dst", true); err != nil {
		t.Fatalf("Cp: %v", err)
	}

	names, err := fs.Ls("/dst")
	if err != nil {
		t.Fatalf("Ls: %v", err)
	}
	if len(names) != 2 || names[0] != "a.txt" || names[1] != "b.txt" {
		t.Fatalf("Ls /dst = %v, want [a.txt b.txt] in original order", names)
	}

	data, ok, err := fs.Cat("/dst/a.txt")
	if err != nil || !ok || string(data) != "1" {
		t.Fatalf("Cat /dst/a.txt = %q ok=%v err=%v", data, ok, err)
	}

	st, ok := fs.Stat("/dst/a.txt")
	if !ok || st.Mode != Mode(0o640) {
		t.Fatalf("Stat /dst/a.txt: ok=%v mode=%v, want 0640", ok, st.Mode)
	}

	if fs.Test("/src/a.txt") == false {
		t.Fatalf("expected /src/a.txt to remain after Cp (not a move)")
	}
}

func TestCpDirectoryWithoutRecursiveErrors(t *testing.T) {
	fs := New()
	if err := fs.Mkdir("/src", true); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Cp("/src", "/dst", false); err != ErrSrcIsDir {
		t.Fatalf("Cp non-recursive dir: got %v, want ErrSrcIsDir", err)
	}
}

func TestCpRefusesExistingDst(t *testing.T) {
	fs := New()
	mustEcho(t, fs, "/a", "1")
	mustEcho(t, fs, "/b", "2")
	if err := fs.Cp("/a", "/b", false); err != ErrDestExists {
		t.Fatalf("Cp onto existing dst: got %v, want ErrDestExists", err)
	}
}

func TestCpMissingSrcErrors(t *testing.T) {
	fs := New()
	if err := fs.Cp("/nope", "/dst", false); err != ErrNotExist {
		t.Fatalf("Cp missing src: got %v, want ErrNotExist", err)
	}
}

func TestTreeRendersNestedStructureWithSuffixes(t *testing.T) {
	fs := New()
	mustEcho(t, fs, "/dir/file.txt", "x")
	if err := fs.Ln("/dir/file.txt", "/dir/link"); err != nil {
		t.Fatalf("Ln: %v", err)
	}

	root, err := fs.Tree("/", DefaultTreeDepth)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if root.IsLeaf || root.Name != "/" {
		t.Fatalf("root = %+v, want directory named /", root)
	}
	if len(root.Children) != 1 || root.Children[0].Name != "dir/" {
		t.Fatalf("root.Children = %+v, want one entry named dir/", root.Children)
	}

	dir := root.Children[0]
	if len(dir.Children) != 2 {
		t.Fatalf("dir.Children = %+v, want 2 entries", dir.Children)
	}
	if dir.Children[0].Name != "file.txt" || !dir.Children[0].IsLeaf {
		t.Fatalf("dir.Children[0] = %+v, want leaf file.txt", dir.Children[0])
	}
	if dir.Children[1].Name != "link@" || !dir.Children[1].IsLeaf {
		t.Fatalf("dir.Children[1] = %+v, want leaf link@", dir.Children[1])
	}
}

func TestTreeDepthCutoffCollapsesDirToLeaf(t *testing.T) {
	fs := New()
	mustEcho(t, fs, "/a/b/c.txt", "x")

	root, err := fs.Tree("/a", 0)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if !root.IsLeaf || root.Name != "a/" {
		t.Fatalf("Tree with depth 0 = %+v, want a leaf named a/", root)
	}
}

func TestTreeMissingPathErrors(t *testing.T) {
	fs := New()
	if _, err := fs.Tree("/nope", DefaultTreeDepth); err != ErrNotExist {
		t.Fatalf("Tree missing path: got %v, want ErrNotExist", err)
	}
}

func TestTreeNodeJSONRoundTrip(t *testing.T) {
	fs := New()
	mustEcho(t, fs, "/dir/file.txt", "x")

	node, err := fs.Tree("/", DefaultTreeDepth)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}

	raw, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte(`["/"`)) {
		t.Fatalf("Marshal(root) = %s, want a [name, children] array", raw)
	}

	var decoded TreeNode
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Name != node.Name || len(decoded.Children) != len(node.Children) {
		t.Fatalf("round trip = %+v, want %+v", decoded, node)
	}
	if decoded.Children[0].Name != "dir/" || decoded.Children[0].IsLeaf {
		t.Fatalf("decoded child = %+v", decoded.Children[0])
	}
}

func TestStatJSONRendersTypeNameAndOctalMode(t *testing.T) {
	fs := New()
	if err := fs.Mkdir("/dst/src", true); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Chmod("/dst/src", 0o755); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	st, ok := fs.Stat("/dst/src")
	if !ok {
		t.Fatalf("Stat: not found")
	}

	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["type"] != "dir" {
		t.Fatalf("type = %v, want %q", decoded["type"], "dir")
	}
	if decoded["mode"] != "0755" {
		t.Fatalf("mode = %v, want %q", decoded["mode"], "0755")
	}
}

func TestLsLongJSONRendersTypeNameAndOctalMode(t *testing.T) {
	fs := New()
	mustEcho(t, fs, "/f.txt", "x")
	if err := fs.Chmod("/f.txt", 0o644); err != nil {
		t.Fatalf("Chmod: %v", err)
	}

	entries, err := fs.LsLong("/")
	if err != nil {
		t.Fatalf("LsLong: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("LsLong = %+v, want 1 entry", entries)
	}

	raw, err := json.Marshal(entries[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["type"] != "file" {
		t.Fatalf("type = %v, want %q", decoded["type"], "file")
	}
	if decoded["mode"] != "0644" {
		t.Fatalf("mode = %v, want %q", decoded["mode"], "0644")
	}
}

func mustEcho(t *testing.T, fs *Filesystem, path, content string) {
	t.Helper()
	if err := fs.Echo(path, []byte(content), false); err != nil {
		t.Fatalf("Echo(%q): %v", path, err)
	}
}
