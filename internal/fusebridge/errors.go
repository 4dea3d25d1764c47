package fusebridge

import (
	"strings"
	"syscall"
)

// mapError maps an FS.* error string to a syscall errno, the same
// substring-matching technique as redisfs/errors.go's mapError: errors
// cross the wire as plain strings (internal/wire.Response.Err), so
// matching on stable message text is the only signal available on this
// side, same constraint the original has across its own go-redis
// boundary. Extended here for internal/fsys's larger sentinel set.
func mapError(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	msg := err.Error()

	switch {
	case strings.Contains(msg, "no such filesystem key"),
		strings.Contains(msg, "no such file or directory"),
		strings.Contains(msg, "no such directory"),
		strings.Contains(msg, "no such path"):
		return syscall.ENOENT

	case strings.Contains(msg, "cannot write to root"),
		strings.Contains(msg, "cannot append to root"),
		strings.Contains(msg, "cannot create symlink at root"),
		strings.Contains(msg, "not a file"),
		strings.Contains(msg, "source is a directory"):
		return syscall.EISDIR

	case strings.Contains(msg, "cannot delete root"),
		strings.Contains(msg, "cannot move root"):
		return syscall.EBUSY

	case strings.Contains(msg, "not a directory"),
		strings.Contains(msg, "parent path conflict"):
		return syscall.ENOTDIR

	case strings.Contains(msg, "already exists"):
		return syscall.EEXIST

	case strings.Contains(msg, "directory not empty"):
		return syscall.ENOTEMPTY

	case strings.Contains(msg, "too many levels of symbolic links"):
		return syscall.ELOOP

	case strings.Contains(msg, "not a symbolic link"),
		strings.Contains(msg, "path depth exceeds limit"),
		strings.Contains(msg, "mode must be"),
		strings.Contains(msg, "uid out of range"),
		strings.Contains(msg, "gid out of range"),
		strings.Contains(msg, "must be an integer"),
		strings.Contains(msg, "must be a non-negative integer"),
		strings.Contains(msg, "must be file, dir, or symlink"),
		strings.Contains(msg, "wrong arity"),
		strings.Contains(msg, "contains a NUL byte"),
		strings.Contains(msg, "cannot move a directory into its own subtree"),
		strings.Contains(msg, "syntax error"):
		return syscall.EINVAL

	case strings.Contains(msg, "WRONGTYPE"):
		return syscall.EINVAL

	default:
		return syscall.EIO
	}
}
