package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AnishMulay/redisfs/internal/fsys"
)

// Client is a typed wrapper around one filesystem key served by a
// Server, in the same role as original_source/mount/internal/client's
// go-redis-backed Client, adapted from RESP calls to JSON POSTs against
// Server's /exec endpoint. Reply shapes are decoded directly into
// internal/fsys's own JSON-tagged types rather than a parallel set of
// client-side structs, since the host already produces exactly those
// shapes.
type Client struct {
	addr string
	key  string
	http *http.Client
}

// New constructs a Client for the filesystem at key, served by the
// Server listening at addr.
func New(addr, key string) *Client {
	return &Client{addr: addr, key: key, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) exec(ctx context.Context, cmd string, args []string) (json.RawMessage, error) {
	reqBody, err := json.Marshal(Request{Key: c.key, Cmd: cmd, Args: args})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("http://%s/exec", c.addr), bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Err != "" {
		return nil, errors.New(out.Err)
	}
	return out.Reply, nil
}

// Stat returns metadata for a path. Returns nil, nil if path does not exist.
func (c *Client) Stat(ctx context.Context, path string) (*fsys.StatResult, error) {
	raw, err := c.exec(ctx, "FS.STAT", []string{path})
	if err != nil {
		return nil, err
	}
	if isNullOrEmpty(raw) {
		return nil, nil
	}
	var st fsys.StatResult
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Cat returns the file content at path. Returns nil, nil if missing.
func (c *Client) Cat(ctx context.Context, path string) ([]byte, error) {
	raw, err := c.exec(ctx, "FS.CAT", []string{path})
	if err != nil {
		return nil, err
	}
	if isNullOrEmpty(raw) {
		return nil, nil
	}
	var data []byte
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Echo writes content to a file (creates or overwrites).
func (c *Client) Echo(ctx context.Context, path string, data []byte) error {
	_, err := c.exec(ctx, "FS.ECHO", []string{path, string(data)})
	return err
}

// EchoAppend appends content to a file.
func (c *Client) EchoAppend(ctx context.Context, path string, data []byte) error {
	_, err := c.exec(ctx, "FS.ECHO", []string{path, string(data), "APPEND"})
	return err
}

// Append extends a file and returns its new size.
func (c *Client) Append(ctx context.Context, path string, data []byte) (int64, error) {
	raw, err := c.exec(ctx, "FS.APPEND", []string{path, string(data)})
	if err != nil {
		return 0, err
	}
	var size int64
	if err := json.Unmarshal(raw, &size); err != nil {
		return 0, err
	}
	return size, nil
}

// Touch creates an empty file, or bumps mtime/atime if it exists.
func (c *Client) Touch(ctx context.Context, path string) error {
	_, err := c.exec(ctx, "FS.TOUCH", []string{path})
	return err
}

// Mkdir creates a directory, optionally auto-creating missing ancestors.
func (c *Client) Mkdir(ctx context.Context, path string, parents bool) error {
	args := []string{path}
	if parents {
		args = append(args, "PARENTS")
	}
	_, err := c.exec(ctx, "FS.MKDIR", args)
	return err
}

// Rm removes a file, directory, or symlink.
func (c *Client) Rm(ctx context.Context, path string, recursive bool) (bool, error) {
	args := []string{path}
	if recursive {
		args = append(args, "RECURSIVE")
	}
	raw, err := c.exec(ctx, "FS.RM", args)
	if err != nil {
		return false, err
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return false, err
	}
	return n == 1, nil
}

// Ls returns the children of a directory.
func (c *Client) Ls(ctx context.Context, path string) ([]string, error) {
	raw, err := c.exec(ctx, "FS.LS", []string{path})
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// LsLong returns a detailed directory listing.
func (c *Client) LsLong(ctx context.Context, path string) ([]fsys.LsEntry, error) {
	raw, err := c.exec(ctx, "FS.LS", []string{path, "LONG"})
	if err != nil {
		return nil, err
	}
	var entries []fsys.LsEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Mv renames/moves a path.
func (c *Client) Mv(ctx context.Context, src, dst string) error {
	_, err := c.exec(ctx, "FS.MV", []string{src, dst})
	return err
}

// Cp copies a path, optionally recursively.
func (c *Client) Cp(ctx context.Context, src, dst string, recursive bool) error {
	args := []string{src, dst}
	if recursive {
		args = append(args, "RECURSIVE")
	}
	_, err := c.exec(ctx, "FS.CP", args)
	return err
}

// Ln creates a symbolic link.
func (c *Client) Ln(ctx context.Context, target, linkpath string) error {
	_, err := c.exec(ctx, "FS.LN", []string{target, linkpath})
	return err
}

// Readlink returns the target of a symbolic link. ok=false means missing.
func (c *Client) Readlink(ctx context.Context, path string) (target string, ok bool, err error) {
	raw, err := c.exec(ctx, "FS.READLINK", []string{path})
	if err != nil {
		return "", false, err
	}
	if isNullOrEmpty(raw) {
		return "", false, nil
	}
	if err := json.Unmarshal(raw, &target); err != nil {
		return "", false, err
	}
	return target, true, nil
}

// Test reports whether path exists.
func (c *Client) Test(ctx context.Context, path string) (bool, error) {
	raw, err := c.exec(ctx, "FS.TEST", []string{path})
	if err != nil {
		return false, err
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return false, err
	}
	return n == 1, nil
}

// Chmod changes file permissions.
func (c *Client) Chmod(ctx context.Context, path string, mode uint32) error {
	_, err := c.exec(ctx, "FS.CHMOD", []string{path, fmt.Sprintf("%04o", mode&07777)})
	return err
}

// Chown changes file owner and, if gidSet, group.
func (c *Client) Chown(ctx context.Context, path string, uid, gid uint32, gidSet bool) error {
	args := []string{path, strconv.FormatUint(uint64(uid), 10)}
	if gidSet {
		args = append(args, strconv.FormatUint(uint64(gid), 10))
	}
	_, err := c.exec(ctx, "FS.CHOWN", args)
	return err
}

// Truncate truncates or extends a file to the given length.
func (c *Client) Truncate(ctx context.Context, path string, size int64) error {
	_, err := c.exec(ctx, "FS.TRUNCATE", []string{path, strconv.FormatInt(size, 10)})
	return err
}

// Utimens sets access and modification times (milliseconds). -1 leaves
// the corresponding field unchanged.
func (c *Client) Utimens(ctx context.Context, path string, atimeMs, mtimeMs int64) error {
	_, err := c.exec(ctx, "FS.UTIMENS", []string{path, strconv.FormatInt(atimeMs, 10), strconv.FormatInt(mtimeMs, 10)})
	return err
}

// Info returns filesystem-level statistics.
func (c *Client) Info(ctx context.Context) (fsys.Info, error) {
	raw, err := c.exec(ctx, "FS.INFO", nil)
	if err != nil {
		return fsys.Info{}, err
	}
	var info fsys.Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return fsys.Info{}, err
	}
	return info, nil
}

// Tree renders a nested directory structure, descending at most depth
// levels. depth < 0 uses the host's default.
func (c *Client) Tree(ctx context.Context, path string, depth int) (fsys.TreeNode, error) {
	args := []string{path}
	if depth >= 0 {
		args = append(args, "DEPTH", strconv.Itoa(depth))
	}
	raw, err := c.exec(ctx, "FS.TREE", args)
	if err != nil {
		return fsys.TreeNode{}, err
	}
	var node fsys.TreeNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return fsys.TreeNode{}, err
	}
	return node, nil
}

// Find walks path, returning every entry whose basename matches pattern.
func (c *Client) Find(ctx context.Context, path, pattern string, want fsys.FindType) ([]string, error) {
	args := []string{path, pattern}
	if want.Set {
		args = append(args, "TYPE", want.Value.String())
	}
	raw, err := c.exec(ctx, "FS.FIND", args)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Grep searches file contents under path for pattern.
func (c *Client) Grep(ctx context.Context, path, pattern string, nocase bool) ([]fsys.GrepMatch, error) {
	args := []string{path, pattern}
	if nocase {
		args = append(args, "NOCASE")
	}
	raw, err := c.exec(ctx, "FS.GREP", args)
	if err != nil {
		return nil, err
	}
	var matches []fsys.GrepMatch
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}
