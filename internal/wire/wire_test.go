package wire

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/AnishMulay/redisfs/internal/logging"
	"github.com/AnishMulay/redisfs/internal/store"
)

func newTestServer(t *testing.T) (*Server, *Client) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	logging.Init(logging.ErrorLevel, logging.ConsoleFormat)
	srv := NewServer(addr, store.NewHost(), logging.New("wire_test"))
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	waitForServer(t, addr)

	return srv, New(addr, "fs:test")
}

func waitForServer(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server at %s never became reachable", addr)
}

func TestEchoCatRoundTrip(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.Echo(ctx, "/greeting.txt", []byte("hello")); err != nil {
		t.Fatalf("Echo: %v", err)
	}

	data, err := c.Cat(ctx, "/greeting.txt")
	if err != nil {
		t.Fatalf("Cat: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q, want %q", data, "hello")
	}
}

func TestCatMissingReturnsNilNoError(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	// A read on a key that was never written is "no such filesystem key";
	// write an unrelated file first so the key exists.
	if err := c.Echo(ctx, "/other.txt", []byte("x")); err != nil {
		t.Fatalf("Echo: %v", err)
	}

	data, err := c.Cat(ctx, "/nope.txt")
	if err != nil {
		t.Fatalf("Cat: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data, got %v", data)
	}
}

func TestStatAndMkdirAndLs(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.Mkdir(ctx, "/a/b", true); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := c.Echo(ctx, "/a/b/file.txt", []byte("x")); err != nil {
		t.Fatalf("Echo: %v", err)
	}

	st, err := c.Stat(ctx, "/a/b")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st == nil {
		t.Fatalf("expected stat result, got nil")
	}

	names, err := c.Ls(ctx, "/a/b")
	if err != nil {
		t.Fatalf("Ls: %v", err)
	}
	if len(names) != 1 || names[0] != "file.txt" {
		t.Fatalf("got %v, want [file.txt]", names)
	}
}

func TestErrorPropagatesAsMessage(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.Echo(ctx, "/other.txt", []byte("x")); err != nil {
		t.Fatalf("Echo: %v", err)
	}

	_, err := c.Cat(ctx, "/bad\x00name")
	if err == nil {
		t.Fatalf("expected error for a path containing a NUL byte")
	}
}

func TestRmReportsWhetherSomethingWasDeleted(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.Echo(ctx, "/f.txt", []byte("x")); err != nil {
		t.Fatalf("Echo: %v", err)
	}

	deleted, err := c.Rm(ctx, "/f.txt", false)
	if err != nil {
		t.Fatalf("Rm: %v", err)
	}
	if !deleted {
		t.Fatalf("expected deleted=true")
	}

	deleted, err = c.Rm(ctx, "/f.txt", false)
	if err != nil {
		t.Fatalf("Rm: %v", err)
	}
	if deleted {
		t.Fatalf("expected deleted=false for already-missing path")
	}
}

func TestChmodAndStatRoundTripsMode(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.Echo(ctx, "/f.txt", []byte("x")); err != nil {
		t.Fatalf("Echo: %v", err)
	}
	if err := c.Chmod(ctx, "/f.txt", 0o600); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	st, err := c.Stat(ctx, "/f.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st == nil {
		t.Fatalf("expected stat result")
	}
	if st.Mode != 0o600 {
		t.Fatalf("got mode %o, want %o", st.Mode, 0o600)
	}
}

func TestTestCommandReportsExistence(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.Echo(ctx, "/other.txt", []byte("x")); err != nil {
		t.Fatalf("Echo: %v", err)
	}

	exists, err := c.Test(ctx, "/f.txt")
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false before creation")
	}

	if err := c.Echo(ctx, "/f.txt", []byte("x")); err != nil {
		t.Fatalf("Echo: %v", err)
	}

	exists, err = c.Test(ctx, "/f.txt")
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if !exists {
		t.Fatalf("expected exists=true after creation")
	}
}

func TestCpRecursiveRoundTrip(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.Mkdir(ctx, "/src", true); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := c.Echo(ctx, "/src/a.txt", []byte("hi")); err != nil {
		t.Fatalf("Echo: %v", err)
	}

	if err := c.Cp(ctx, "/src", "/dst", true); err != nil {
		t.Fatalf("Cp: %v", err)
	}

	data, err := c.Cat(ctx, "/dst/a.txt")
	if err != nil {
		t.Fatalf("Cat: %v", err)
	}
	if string(data) != "hi" {
		t.Fatalf("got %q, want %q", data, "hi")
	}

	st, err := c.Stat(ctx, "/src/a.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st == nil {
		t.Fatalf("expected /src/a.txt to survive Cp (not a move)")
	}
}

func TestTreeDecodesNestedArrayShape(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.Mkdir(ctx, "/dir", true); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := c.Echo(ctx, "/dir/f.txt", []byte("x")); err != nil {
		t.Fatalf("Echo: %v", err)
	}

	node, err := c.Tree(ctx, "/", -1)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if node.IsLeaf || node.Name != "/" {
		t.Fatalf("root = %+v, want directory named /", node)
	}
	if len(node.Children) != 1 || node.Children[0].Name != "dir/" {
		t.Fatalf("root.Children = %+v, want one entry named dir/", node.Children)
	}
	if len(node.Children[0].Children) != 1 || node.Children[0].Children[0].Name != "f.txt" {
		t.Fatalf("dir.Children = %+v, want one leaf f.txt", node.Children[0].Children)
	}
}

func TestInfoReflectsWrites(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.Echo(ctx, "/f.txt", []byte("hello")); err != nil {
		t.Fatalf("Echo: %v", err)
	}
	info, err := c.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Files != 1 {
		t.Fatalf("got Files=%d, want 1", info.Files)
	}
	if info.TotalDataBytes != 5 {
		t.Fatalf("got TotalDataBytes=%d, want 5", info.TotalDataBytes)
	}
}
