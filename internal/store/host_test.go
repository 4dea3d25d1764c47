package store

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AnishMulay/redisfs/internal/fsys"
)

func TestAutoCreateOnFirstWriteAutoDeleteOnLastRemove(t *testing.T) {
	h := NewHost()

	if _, ok := h.Info("k"); ok {
		t.Fatalf("key should not exist before any write")
	}

	if _, err := h.Dispatch("k", "FS.ECHO", []string{"/a.txt", "hi"}); err != nil {
		t.Fatalf("FS.ECHO: %v", err)
	}
	if _, ok := h.Info("k"); !ok {
		t.Fatalf("key should exist after first write")
	}

	reply, err := h.Dispatch("k", "FS.RM", []string{"/a.txt"})
	if err != nil {
		t.Fatalf("FS.RM: %v", err)
	}
	if reply.(int64) != 1 {
		t.Fatalf("FS.RM reply = %v, want 1", reply)
	}
	if _, ok := h.Info("k"); ok {
		t.Fatalf("key should be dropped once its filesystem is back to just the root")
	}
}

func TestReadOnMissingKeyIsError(t *testing.T) {
	h := NewHost()
	if _, err := h.Dispatch("missing", "FS.CAT", []string{"/a"}); err != fsys.ErrNoSuchKey {
		t.Fatalf("FS.CAT on missing key: got %v, want ErrNoSuchKey", err)
	}
}

func TestWrongArityRejectedBeforeTouchingFilesystem(t *testing.T) {
	h := NewHost()
	if _, err := h.Dispatch("k", "FS.ECHO", []string{"/a"}); err != fsys.ErrWrongArity {
		t.Fatalf("FS.ECHO with one arg: got %v, want ErrWrongArity", err)
	}
	if _, ok := h.Info("k"); ok {
		t.Fatalf("a rejected-arity write must not create the key")
	}
}

func TestDepthCapRejectsWriteAndLeavesInfoUnchanged(t *testing.T) {
	h := NewHost()
	if _, err := h.Dispatch("k", "FS.ECHO", []string{"/seed", "x"}); err != nil {
		t.Fatalf("seed write: %v", err)
	}
	before, _ := h.Info("k")

	deep := "/" + strings.Repeat("a/", fsys.MaxPathDepth+1) + "file"
	if _, err := h.Dispatch("k", "FS.ECHO", []string{deep, "x"}); err != fsys.ErrDepthExceeded {
		t.Fatalf("FS.ECHO over depth cap: got %v, want ErrDepthExceeded", err)
	}

	after, _ := h.Info("k")
	if after != before {
		t.Fatalf("Info changed after a rejected write: before=%+v after=%+v", before, after)
	}
}

func TestLsLongAndFindAndGrepThroughDispatch(t *testing.T) {
	h := NewHost()
	mustDispatch(t, h, "k", "FS.MKDIR", []string{"/dir", "PARENTS"})
	mustDispatch(t, h, "k", "FS.ECHO", []string{"/dir/f1.txt", "alpha beta"})
	mustDispatch(t, h, "k", "FS.ECHO", []string{"/dir/f2.log", "gamma"})

	reply := mustDispatch(t, h, "k", "FS.LS", []string{"/dir", "LONG"})
	entries, ok := reply.([]fsys.LsEntry)
	if !ok || len(entries) != 2 {
		t.Fatalf("FS.LS LONG = %#v", reply)
	}

	reply = mustDispatch(t, h, "k", "FS.FIND", []string{"/", "*.txt", "TYPE", "file"})
	names, ok := reply.([]string)
	if !ok || len(names) != 1 || names[0] != "/dir/f1.txt" {
		t.Fatalf("FS.FIND = %#v", reply)
	}

	reply = mustDispatch(t, h, "k", "FS.GREP", []string{"/", "*BETA*", "NOCASE"})
	matches, ok := reply.([]fsys.GrepMatch)
	if !ok || len(matches) != 1 || matches[0].Path != "/dir/f1.txt" {
		t.Fatalf("FS.GREP = %#v", reply)
	}
}

func TestChmodBadModeRejected(t *testing.T) {
	h := NewHost()
	mustDispatch(t, h, "k", "FS.TOUCH", []string{"/a"})
	if _, err := h.Dispatch("k", "FS.CHMOD", []string{"/a", "99999"}); err != fsys.ErrBadMode {
		t.Fatalf("FS.CHMOD bad octal: got %v, want ErrBadMode", err)
	}
}

func TestReplicationLogOnlyRecordsSuccessfulWrites(t *testing.T) {
	h := NewHost()
	mustDispatch(t, h, "k", "FS.TOUCH", []string{"/a"})
	if got := h.ReplicationLog().Len(); got != 1 {
		t.Fatalf("replication log length = %d, want 1", got)
	}

	if _, err := h.Dispatch("k", "FS.CHMOD", []string{"/a", "99999"}); err == nil {
		t.Fatalf("expected FS.CHMOD to fail")
	}
	if got := h.ReplicationLog().Len(); got != 1 {
		t.Fatalf("failed write must not be logged, length = %d", got)
	}

	if _, err := h.Dispatch("k", "FS.CAT", []string{"/a"}); err != nil {
		t.Fatalf("FS.CAT: %v", err)
	}
	if got := h.ReplicationLog().Len(); got != 1 {
		t.Fatalf("read command must not be logged, length = %d", got)
	}
}

func TestSnapshotRoundTripAcrossMultipleKeys(t *testing.T) {
	h := NewHost()
	mustDispatch(t, h, "k1", "FS.ECHO", []string{"/a", "one"})
	mustDispatch(t, h, "k2", "FS.ECHO", []string{"/b", "two"})

	digest1, _ := h.Digest("k1")
	digest2, _ := h.Digest("k2")

	var buf bytes.Buffer
	if err := h.SaveSnapshot(&buf); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	loaded := NewHost()
	if err := loaded.LoadSnapshot(&buf); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	gotDigest1, ok := loaded.Digest("k1")
	if !ok || !bytes.Equal(gotDigest1, digest1) {
		t.Fatalf("k1 digest mismatch after snapshot round-trip")
	}
	gotDigest2, ok := loaded.Digest("k2")
	if !ok || !bytes.Equal(gotDigest2, digest2) {
		t.Fatalf("k2 digest mismatch after snapshot round-trip")
	}

	reply := mustDispatch(t, loaded, "k1", "FS.CAT", []string{"/a"})
	if string(reply.([]byte)) != "one" {
		t.Fatalf("FS.CAT /a after load = %q", reply)
	}
}

func TestCpRecursiveThroughDispatch(t *testing.T) {
	h := NewHost()
	mustDispatch(t, h, "k", "FS.MKDIR", []string{"/src", "PARENTS"})
	mustDispatch(t, h, "k", "FS.ECHO", []string{"/src/a.txt", "hi"})

	reply := mustDispatch(t, h, "k", "FS.CP", []string{"/src", "/dst", "RECURSIVE"})
	if reply != "OK" {
		t.Fatalf("FS.CP = %v, want OK", reply)
	}

	reply = mustDispatch(t, h, "k", "FS.CAT", []string{"/dst/a.txt"})
	if string(reply.([]byte)) != "hi" {
		t.Fatalf("FS.CAT /dst/a.txt = %q, want %q", reply, "hi")
	}

	if _, err := h.Dispatch("k", "FS.CP", []string{"/src", "/dst"}); err != fsys.ErrDestExists {
		t.Fatalf("FS.CP onto existing dst: got %v, want ErrDestExists", err)
	}
}

func TestCpDirectoryWithoutRecursiveRejected(t *testing.T) {
	h := NewHost()
	mustDispatch(t, h, "k", "FS.MKDIR", []string{"/src", "PARENTS"})
	if _, err := h.Dispatch("k", "FS.CP", []string{"/src", "/dst"}); err != fsys.ErrSrcIsDir {
		t.Fatalf("FS.CP dir without RECURSIVE: got %v, want ErrSrcIsDir", err)
	}
}

func TestTreeThroughDispatch(t *testing.T) {
	h := NewHost()
	mustDispatch(t, h, "k", "FS.MKDIR", []string{"/dir", "PARENTS"})
	mustDispatch(t, h, "k", "FS.ECHO", []string{"/dir/f.txt", "x"})

	reply := mustDispatch(t, h, "k", "FS.TREE", []string{"/", "DEPTH", "1"})
	root, ok := reply.(fsys.TreeNode)
	if !ok {
		t.Fatalf("FS.TREE = %#v, want fsys.TreeNode", reply)
	}
	if root.IsLeaf || len(root.Children) != 1 || root.Children[0].Name != "dir/" {
		t.Fatalf("FS.TREE root = %+v", root)
	}
	if !root.Children[0].IsLeaf {
		t.Fatalf("FS.TREE at DEPTH 1 should collapse /dir to a leaf, got %+v", root.Children[0])
	}
}

func mustDispatch(t *testing.T, h *Host, key, cmd string, args []string) any {
	t.Helper()
	reply, err := h.Dispatch(key, cmd, args)
	if err != nil {
		t.Fatalf("%s %v: %v", cmd, args, err)
	}
	return reply
}
