package store

import (
	"strconv"
	"strings"

	"github.com/AnishMulay/redisfs/internal/fsys"
)

// npath normalizes a raw wire path argument. Every command handler in
// commands.go calls this exactly once per path argument before it touches
// internal/fsys — fsys.Filesystem's own methods assume their path
// arguments are already normalized.
func npath(raw string) (string, error) {
	return fsys.Normalize(raw)
}

// flag reports whether tok is the given flag token, case-insensitively
// (FS.* flag tokens like PARENTS/RECURSIVE/APPEND/LONG/NOCASE are
// case-insensitive per spec §4.6).
func flag(tok, want string) bool {
	return strings.EqualFold(tok, want)
}

// parseMode parses a mode token as octal, per spec §4.6's "mode is always
// written and read in octal".
func parseMode(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil || v > 07777 {
		return 0, fsys.ErrBadMode
	}
	return uint16(v), nil
}

func parseUID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fsys.ErrUIDRange
	}
	return uint32(v), nil
}

func parseGID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fsys.ErrGIDRange
	}
	return uint32(v), nil
}

// parseTimeArg parses an atime_ms/mtime_ms token, preserving -1 as the
// "leave unchanged" sentinel that fsys.Utimens interprets.
func parseTimeArg(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fsys.ErrTimeNotInt
	}
	return v, nil
}

func parseLength(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fsys.ErrBadLength
	}
	return v, nil
}

func parseDepth(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fsys.ErrBadDepth
	}
	return v, nil
}

func parseFindType(s string) (fsys.InodeType, error) {
	switch strings.ToLower(s) {
	case "file":
		return fsys.TypeFile, nil
	case "dir":
		return fsys.TypeDir, nil
	case "symlink":
		return fsys.TypeSymlink, nil
	default:
		return 0, fsys.ErrBadType
	}
}
