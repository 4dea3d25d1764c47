// fsmcp exposes FS.* filesystem operations as MCP tools over stdio,
// grounded on cmd/mcp/main.go's MCPConfig/ServerRegistry/addTools
// pattern, adapted from sandstore's communication.Communicator to
// internal/wire.Client and from a multi-server registry to a registry
// of (address, key) filesystem targets.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AnishMulay/redisfs/internal/fsys"
	"github.com/AnishMulay/redisfs/internal/wire"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

// MCPConfig names the filesystem targets this MCP server can reach,
// each a (server address, filesystem key) pair, analogous to
// cmd/mcp/main.go's Servers list but pointing at fsserver+FS key
// combinations instead of bare server addresses.
type MCPConfig struct {
	Filesystems []struct {
		ID     string `yaml:"id"`
		Server string `yaml:"server"`
		Key    string `yaml:"key"`
	} `yaml:"filesystems"`
	Default string `yaml:"default"`
}

// Registry resolves filesystem IDs to wire clients, built once at
// startup from MCPConfig.
type Registry struct {
	Clients map[string]*wire.Client
	Default string
}

func LoadConfig(path string) (*MCPConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		defaultConfig := &MCPConfig{
			Default: "default",
			Filesystems: []struct {
				ID     string `yaml:"id"`
				Server string `yaml:"server"`
				Key    string `yaml:"key"`
			}{
				{ID: "default", Server: "localhost:7070", Key: "fs:myfs"},
			},
		}

		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %v", err)
			}
		}

		data, err := yaml.Marshal(defaultConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write default config: %v", err)
		}
		return defaultConfig, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	cfg := MCPConfig{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}
	return &cfg, nil
}

func buildRegistry(cfg *MCPConfig) *Registry {
	reg := &Registry{Clients: map[string]*wire.Client{}, Default: cfg.Default}
	for _, fsDef := range cfg.Filesystems {
		reg.Clients[fsDef.ID] = wire.New(fsDef.Server, fsDef.Key)
	}
	return reg
}

func (r *Registry) resolve(id string) (*wire.Client, error) {
	if id == "" {
		id = r.Default
	}
	c, ok := r.Clients[id]
	if !ok {
		return nil, fmt.Errorf("unknown filesystem %q", id)
	}
	return c, nil
}

func addTools(s *server.MCPServer, reg *Registry) {
	fsArg := mcp.WithString("fs", mcp.Description("Filesystem ID from the config, defaults to the configured default"))
	pathArg := func(desc string) mcp.ToolOption {
		return mcp.WithString("path", mcp.Required(), mcp.Description(desc))
	}

	s.AddTool(mcp.NewTool("list_filesystems", mcp.WithDescription("List all configured filesystem targets")),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			out := "Available filesystems:\n"
			for id := range reg.Clients {
				out += fmt.Sprintf("- %s\n", id)
			}
			out += fmt.Sprintf("Default: %s\n", reg.Default)
			return mcp.NewToolResultText(out), nil
		})

	s.AddTool(mcp.NewTool("fs_stat",
		mcp.WithDescription("Return metadata for a path (type, mode, size, owner, timestamps)"),
		pathArg("Absolute path to stat"), fsArg,
	), handleStat(reg))

	s.AddTool(mcp.NewTool("fs_cat",
		mcp.WithDescription("Read the content of a file"),
		pathArg("Absolute path of the file"), fsArg,
	), handleCat(reg))

	s.AddTool(mcp.NewTool("fs_echo",
		mcp.WithDescription("Write content to a file, creating or overwriting it"),
		pathArg("Absolute path of the file"),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to write")),
		mcp.WithBoolean("append", mcp.Description("Append instead of overwrite")),
		fsArg,
	), handleEcho(reg))

	s.AddTool(mcp.NewTool("fs_append",
		mcp.WithDescription("Append content to a file and return its new size"),
		pathArg("Absolute path of the file"),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to append")),
		fsArg,
	), handleAppend(reg))

	s.AddTool(mcp.NewTool("fs_touch",
		mcp.WithDescription("Create an empty file, or bump its timestamps if it already exists"),
		pathArg("Absolute path of the file"), fsArg,
	), handleTouch(reg))

	s.AddTool(mcp.NewTool("fs_mkdir",
		mcp.WithDescription("Create a directory"),
		pathArg("Absolute path of the directory"),
		mcp.WithBoolean("parents", mcp.Description("Create missing ancestor directories")),
		fsArg,
	), handleMkdir(reg))

	s.AddTool(mcp.NewTool("fs_rm",
		mcp.WithDescription("Remove a file, directory, or symlink"),
		pathArg("Absolute path to remove"),
		mcp.WithBoolean("recursive", mcp.Description("Remove directories and their contents")),
		fsArg,
	), handleRm(reg))

	s.AddTool(mcp.NewTool("fs_ls",
		mcp.WithDescription("List the children of a directory"),
		pathArg("Absolute path of the directory"),
		mcp.WithBoolean("long", mcp.Description("Include type, mode, size, and mtime for each entry")),
		fsArg,
	), handleLs(reg))

	s.AddTool(mcp.NewTool("fs_mv",
		mcp.WithDescription("Rename or move a path"),
		mcp.WithString("src", mcp.Required(), mcp.Description("Source path")),
		mcp.WithString("dst", mcp.Required(), mcp.Description("Destination path")),
		fsArg,
	), handleMv(reg))

	s.AddTool(mcp.NewTool("fs_cp",
		mcp.WithDescription("Copy a path"),
		mcp.WithString("src", mcp.Required(), mcp.Description("Source path")),
		mcp.WithString("dst", mcp.Required(), mcp.Description("Destination path")),
		mcp.WithBoolean("recursive", mcp.Description("Copy directories recursively")),
		fsArg,
	), handleCp(reg))

	s.AddTool(mcp.NewTool("fs_ln",
		mcp.WithDescription("Create a symbolic link"),
		mcp.WithString("target", mcp.Required(), mcp.Description("Link target")),
		mcp.WithString("linkpath", mcp.Required(), mcp.Description("Path of the new symlink")),
		fsArg,
	), handleLn(reg))

	s.AddTool(mcp.NewTool("fs_readlink",
		mcp.WithDescription("Read the target of a symbolic link"),
		pathArg("Absolute path of the symlink"), fsArg,
	), handleReadlink(reg))

	s.AddTool(mcp.NewTool("fs_chmod",
		mcp.WithDescription("Change a path's permission bits"),
		pathArg("Absolute path to change"),
		mcp.WithString("mode", mcp.Required(), mcp.Description("Permission bits, e.g. 0755")),
		fsArg,
	), handleChmod(reg))

	s.AddTool(mcp.NewTool("fs_chown",
		mcp.WithDescription("Change a path's owning uid and, optionally, gid"),
		pathArg("Absolute path to change"),
		mcp.WithNumber("uid", mcp.Required(), mcp.Description("New owning uid")),
		mcp.WithNumber("gid", mcp.Description("New owning gid, leave unset to keep the current gid")),
		fsArg,
	), handleChown(reg))

	s.AddTool(mcp.NewTool("fs_truncate",
		mcp.WithDescription("Truncate or extend a file to the given size in bytes"),
		pathArg("Absolute path of the file"),
		mcp.WithNumber("size", mcp.Required(), mcp.Description("New size in bytes")),
		fsArg,
	), handleTruncate(reg))

	s.AddTool(mcp.NewTool("fs_test",
		mcp.WithDescription("Report whether a path exists"),
		pathArg("Absolute path to check"), fsArg,
	), handleTest(reg))

	s.AddTool(mcp.NewTool("fs_info",
		mcp.WithDescription("Return filesystem-level statistics (file, directory, and symlink counts, total bytes)"),
		fsArg,
	), handleInfo(reg))

	s.AddTool(mcp.NewTool("fs_tree",
		mcp.WithDescription("Render a nested directory tree"),
		pathArg("Absolute path to render from"),
		mcp.WithNumber("depth", mcp.Description("Maximum depth to descend, omit for the host default")),
		fsArg,
	), handleTree(reg))

	s.AddTool(mcp.NewTool("fs_find",
		mcp.WithDescription("Find entries under a path whose basename matches a glob pattern"),
		pathArg("Absolute path to search under"),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Glob pattern to match basenames against")),
		mcp.WithString("type", mcp.Description("Restrict results to file, dir, or symlink")),
		fsArg,
	), handleFind(reg))

	s.AddTool(mcp.NewTool("fs_grep",
		mcp.WithDescription("Search file contents under a path for a pattern"),
		pathArg("Absolute path to search under"),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Pattern to search for")),
		mcp.WithBoolean("nocase", mcp.Description("Case-insensitive match")),
		fsArg,
	), handleGrep(reg))
}

func handleStat(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		st, err := c.Stat(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if st == nil {
			return mcp.NewToolResultText("no such path"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"type=%s mode=%04o uid=%d gid=%d size=%d mtime=%d",
			st.Type, st.Mode, st.UID, st.GID, st.Size, st.Mtime,
		)), nil
	}
}

func handleCat(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := c.Cat(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if data == nil {
			return mcp.NewToolResultText("no such file"), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleEcho(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if req.GetBool("append", false) {
			if err := c.EchoAppend(ctx, path, []byte(content)); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText("appended"), nil
		}
		if err := c.Echo(ctx, path, []byte(content)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("written"), nil
	}
}

func handleAppend(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		size, err := c.Append(ctx, path, []byte(content))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("new size: %d", size)), nil
	}
}

func handleTouch(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := c.Touch(ctx, path); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("touched"), nil
	}
}

func handleMkdir(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := c.Mkdir(ctx, path, req.GetBool("parents", false)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("created"), nil
	}
}

func handleRm(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		removed, err := c.Rm(ctx, path, req.GetBool("recursive", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !removed {
			return mcp.NewToolResultText("nothing to remove"), nil
		}
		return mcp.NewToolResultText("removed"), nil
	}
}

func handleLs(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if req.GetBool("long", false) {
			entries, err := c.LsLong(ctx, path)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			out := ""
			for _, e := range entries {
				out += fmt.Sprintf("%s\t%s\t%04o\t%d\t%d\n", e.Name, e.Type, e.Mode, e.Size, e.Mtime)
			}
			return mcp.NewToolResultText(out), nil
		}
		names, err := c.Ls(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out := ""
		for _, n := range names {
			out += n + "\n"
		}
		return mcp.NewToolResultText(out), nil
	}
}

func handleMv(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		src, err := req.RequireString("src")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dst, err := req.RequireString("dst")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := c.Mv(ctx, src, dst); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("moved"), nil
	}
}

func handleCp(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		src, err := req.RequireString("src")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dst, err := req.RequireString("dst")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := c.Cp(ctx, src, dst, req.GetBool("recursive", false)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("copied"), nil
	}
}

func handleLn(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := req.RequireString("target")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		linkpath, err := req.RequireString("linkpath")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := c.Ln(ctx, target, linkpath); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("linked"), nil
	}
}

func handleReadlink(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		target, ok, err := c.Readlink(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultText("no such symlink"), nil
		}
		return mcp.NewToolResultText(target), nil
	}
}

func handleChmod(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		modeStr, err := req.RequireString("mode")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		mode, err := strconv.ParseUint(modeStr, 8, 32)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid mode %q: %v", modeStr, err)), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := c.Chmod(ctx, path, uint32(mode)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("mode changed"), nil
	}
}

func handleChown(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		uid, err := req.RequireFloat("uid")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		gid, gidErr := req.RequireFloat("gid")
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := c.Chown(ctx, path, uint32(uid), uint32(gid), gidErr == nil); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("owner changed"), nil
	}
}

func handleTruncate(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		size, err := req.RequireFloat("size")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := c.Truncate(ctx, path, int64(size)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("truncated"), nil
	}
}

func handleTest(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		exists, err := c.Test(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if exists {
			return mcp.NewToolResultText("exists"), nil
		}
		return mcp.NewToolResultText("does not exist"), nil
	}
}

func handleInfo(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		info, err := c.Info(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"files=%d directories=%d symlinks=%d inodes=%d data_bytes=%d",
			info.Files, info.Directories, info.Symlinks, info.TotalInodes, info.TotalDataBytes,
		)), nil
	}
}

func handleTree(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		depth := -1
		if d, err := req.RequireFloat("depth"); err == nil {
			depth = int(d)
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		node, err := c.Tree(ctx, path, depth)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var out string
		renderTree(&out, node, 0)
		return mcp.NewToolResultText(out), nil
	}
}

func renderTree(out *string, node fsys.TreeNode, depth int) {
	for i := 0; i < depth; i++ {
		*out += "  "
	}
	*out += node.Name + "\n"
	for _, child := range node.Children {
		renderTree(out, child, depth+1)
	}
}

func handleFind(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		pattern, err := req.RequireString("pattern")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var want fsys.FindType
		if typeStr := req.GetString("type", ""); typeStr != "" {
			switch typeStr {
			case "file":
				want = fsys.FindType{Set: true, Value: fsys.TypeFile}
			case "dir":
				want = fsys.FindType{Set: true, Value: fsys.TypeDir}
			case "symlink":
				want = fsys.FindType{Set: true, Value: fsys.TypeSymlink}
			default:
				return mcp.NewToolResultError(fmt.Sprintf("invalid type %q", typeStr)), nil
			}
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		names, err := c.Find(ctx, path, pattern, want)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out := ""
		for _, n := range names {
			out += n + "\n"
		}
		return mcp.NewToolResultText(out), nil
	}
}

func handleGrep(reg *Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		pattern, err := req.RequireString("pattern")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := reg.resolve(req.GetString("fs", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		matches, err := c.Grep(ctx, path, pattern, req.GetBool("nocase", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out := ""
		for _, m := range matches {
			out += fmt.Sprintf("%s:%d:%s\n", m.Path, m.Line, m.Text)
		}
		return mcp.NewToolResultText(out), nil
	}
}

func main() {
	configPath := "fsmcp.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsmcp: %v\n", err)
		os.Exit(1)
	}

	reg := buildRegistry(cfg)

	s := server.NewMCPServer(
		"fsmcp",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	addTools(s, reg)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "fsmcp: server error: %v\n", err)
		os.Exit(1)
	}
}
