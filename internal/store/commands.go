package store

import (
	"github.com/AnishMulay/redisfs/internal/fsys"
)

// Every handler below assumes Host.Dispatch has already checked arity, so
// args is known to have one of the lengths registry.go declared for the
// command. Path arguments are normalized here, once each, before any
// call into internal/fsys.

func cmdInfo(fs *fsys.Filesystem, args []string) (any, error) {
	return fs.Info(), nil
}

func cmdEcho(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	append_ := false
	if len(args) == 3 {
		if !flag(args[2], "APPEND") {
			return nil, fsys.SyntaxError("APPEND")
		}
		append_ = true
	}
	if err := fs.Echo(p, []byte(args[1]), append_); err != nil {
		return nil, err
	}
	return "OK", nil
}

func cmdAppend(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	size, err := fs.Append(p, []byte(args[1]))
	if err != nil {
		return nil, err
	}
	return size, nil
}

func cmdCat(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	data, ok, err := fs.Cat(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if data == nil {
		data = []byte{} // a 0-byte file replies "", never null
	}
	return data, nil
}

func cmdRm(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	recursive := false
	if len(args) == 2 {
		if !flag(args[1], "RECURSIVE") {
			return nil, fsys.SyntaxError("RECURSIVE")
		}
		recursive = true
	}
	deleted, err := fs.Rm(p, recursive)
	if err != nil {
		return nil, err
	}
	if deleted {
		return int64(1), nil
	}
	return int64(0), nil
}

func cmdTouch(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	if err := fs.Touch(p); err != nil {
		return nil, err
	}
	return "OK", nil
}

func cmdMkdir(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	parents := false
	if len(args) == 2 {
		if !flag(args[1], "PARENTS") {
			return nil, fsys.SyntaxError("PARENTS")
		}
		parents = true
	}
	if err := fs.Mkdir(p, parents); err != nil {
		return nil, err
	}
	return "OK", nil
}

// cmdLs accepts zero, one, or two args in either order: an optional path
// (defaulting to "/") and an optional LONG flag.
func cmdLs(fs *fsys.Filesystem, args []string) (any, error) {
	path := "/"
	long := false
	pathSet := false
	for _, a := range args {
		if flag(a, "LONG") {
			long = true
			continue
		}
		if pathSet {
			return nil, fsys.SyntaxError("LONG")
		}
		path = a
		pathSet = true
	}
	p, err := npath(path)
	if err != nil {
		return nil, err
	}
	if long {
		entries, err := fs.LsLong(p)
		if err != nil {
			return nil, err
		}
		return entries, nil
	}
	names, err := fs.Ls(p)
	if err != nil {
		return nil, err
	}
	return names, nil
}

func cmdStat(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	st, ok := fs.Stat(p)
	if !ok {
		return nil, nil
	}
	return st, nil
}

func cmdTest(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	if fs.Test(p) {
		return int64(1), nil
	}
	return int64(0), nil
}

func cmdChmod(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	mode, err := parseMode(args[1])
	if err != nil {
		return nil, err
	}
	if err := fs.Chmod(p, mode); err != nil {
		return nil, err
	}
	return "OK", nil
}

func cmdChown(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	uid, err := parseUID(args[1])
	if err != nil {
		return nil, err
	}
	var gid uint32
	gidSet := false
	if len(args) == 3 {
		gid, err = parseGID(args[2])
		if err != nil {
			return nil, err
		}
		gidSet = true
	}
	if err := fs.Chown(p, uid, gid, gidSet); err != nil {
		return nil, err
	}
	return "OK", nil
}

func cmdLn(fs *fsys.Filesystem, args []string) (any, error) {
	linkpath, err := npath(args[1])
	if err != nil {
		return nil, err
	}
	// The link target is stored exactly as given, never normalized: a
	// relative target's meaning depends on the link's own location at
	// resolve time, not at creation time.
	if err := fs.Ln(args[0], linkpath); err != nil {
		return nil, err
	}
	return "OK", nil
}

func cmdReadlink(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	target, ok, err := fs.Readlink(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return target, nil
}

func cmdCp(fs *fsys.Filesystem, args []string) (any, error) {
	src, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	dst, err := npath(args[1])
	if err != nil {
		return nil, err
	}
	recursive := false
	if len(args) == 3 {
		if !flag(args[2], "RECURSIVE") {
			return nil, fsys.SyntaxError("RECURSIVE")
		}
		recursive = true
	}
	if err := fs.Cp(src, dst, recursive); err != nil {
		return nil, err
	}
	return "OK", nil
}

func cmdMv(fs *fsys.Filesystem, args []string) (any, error) {
	src, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	dst, err := npath(args[1])
	if err != nil {
		return nil, err
	}
	if err := fs.Mv(src, dst); err != nil {
		return nil, err
	}
	return "OK", nil
}

func cmdTree(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	depth := fsys.DefaultTreeDepth
	if len(args) > 1 {
		if !flag(args[1], "DEPTH") {
			return nil, fsys.SyntaxError("DEPTH")
		}
		if len(args) != 3 {
			return nil, fsys.ErrWrongArity
		}
		depth, err = parseDepth(args[2])
		if err != nil {
			return nil, err
		}
	}
	node, err := fs.Tree(p, depth)
	if err != nil {
		return nil, err
	}
	return node, nil
}

func cmdFind(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	pattern := args[1]
	want := fsys.FindType{}
	if len(args) > 2 {
		if !flag(args[2], "TYPE") {
			return nil, fsys.SyntaxError("TYPE")
		}
		if len(args) != 4 {
			return nil, fsys.ErrWrongArity
		}
		t, err := parseFindType(args[3])
		if err != nil {
			return nil, err
		}
		want = fsys.FindType{Set: true, Value: t}
	}
	results, err := fs.Find(p, pattern, want)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func cmdGrep(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	pattern := args[1]
	nocase := false
	if len(args) == 3 {
		if !flag(args[2], "NOCASE") {
			return nil, fsys.SyntaxError("NOCASE")
		}
		nocase = true
	}
	matches, err := fs.Grep(p, pattern, nocase)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func cmdTruncate(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	length, err := parseLength(args[1])
	if err != nil {
		return nil, err
	}
	if err := fs.Truncate(p, length); err != nil {
		return nil, err
	}
	return "OK", nil
}

func cmdUtimens(fs *fsys.Filesystem, args []string) (any, error) {
	p, err := npath(args[0])
	if err != nil {
		return nil, err
	}
	atime, err := parseTimeArg(args[1])
	if err != nil {
		return nil, err
	}
	mtime, err := parseTimeArg(args[2])
	if err != nil {
		return nil, err
	}
	if err := fs.Utimens(p, atime, mtime); err != nil {
		return nil, err
	}
	return "OK", nil
}
