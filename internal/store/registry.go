// Package store implements the key-value host: one *fsys.Filesystem per
// key, dispatched to through a table of FS.* command handlers. It is the
// Go analogue of the teacher repository's communication.MessageHandler
// dispatch table (internal/communication/handler.go) and the
// posix_server.Msg* constant table (internal/posix_server/messages.go),
// generalized from typed RPC messages to a small command-name + string-args
// protocol modeled on the spec's own wire surface.
package store

import (
	"strings"

	"github.com/AnishMulay/redisfs/internal/fsys"
)

// Kind distinguishes read-only commands (never replicated, never
// auto-create on a missing key) from write commands (replicated,
// auto-create on a missing key).
type Kind int

const (
	KindRead Kind = iota
	KindWrite
)

// Handler executes one command against a single key's filesystem. args
// excludes the key and command name; fs is already locked for exclusive
// access by the caller (Host.Dispatch). It returns the wire reply value
// (to be JSON-encoded by internal/wire) or an error.
type Handler func(fs *fsys.Filesystem, args []string) (any, error)

// Command is one entry in the registration table: the Go analogue of C9
// registering a command with the host, with its read/write kind and
// handler, mirroring the teacher's per-message-type registration in
// cmd/server/main.go's RegisterTypedHandler calls.
type Command struct {
	Name     string
	Kind     Kind
	Fast     bool // O(1), declared per spec §6 for Info/Stat/Test/Readlink
	MinArgs  int  // not counting key
	MaxArgs  int  // -1 means unbounded
	Handler  Handler
}

// registry is the C9 registration table: every FS.* command this host
// understands, keyed by uppercase name.
var registry = map[string]*Command{}

func register(c Command) {
	registry[c.Name] = &c
}

// Lookup resolves a command name (case-insensitive) to its registration.
func Lookup(name string) (*Command, bool) {
	c, ok := registry[strings.ToUpper(name)]
	return c, ok
}

func init() {
	register(Command{Name: "FS.INFO", Kind: KindRead, Fast: true, MinArgs: 0, MaxArgs: 0, Handler: cmdInfo})
	register(Command{Name: "FS.ECHO", Kind: KindWrite, MinArgs: 2, MaxArgs: 3, Handler: cmdEcho})
	register(Command{Name: "FS.CAT", Kind: KindRead, MinArgs: 1, MaxArgs: 1, Handler: cmdCat})
	register(Command{Name: "FS.APPEND", Kind: KindWrite, MinArgs: 2, MaxArgs: 2, Handler: cmdAppend})
	register(Command{Name: "FS.RM", Kind: KindWrite, MinArgs: 1, MaxArgs: 2, Handler: cmdRm})
	register(Command{Name: "FS.TOUCH", Kind: KindWrite, MinArgs: 1, MaxArgs: 1, Handler: cmdTouch})
	register(Command{Name: "FS.MKDIR", Kind: KindWrite, MinArgs: 1, MaxArgs: 2, Handler: cmdMkdir})
	register(Command{Name: "FS.LS", Kind: KindRead, MinArgs: 0, MaxArgs: 2, Handler: cmdLs})
	register(Command{Name: "FS.STAT", Kind: KindRead, Fast: true, MinArgs: 1, MaxArgs: 1, Handler: cmdStat})
	register(Command{Name: "FS.TEST", Kind: KindRead, Fast: true, MinArgs: 1, MaxArgs: 1, Handler: cmdTest})
	register(Command{Name: "FS.CHMOD", Kind: KindWrite, MinArgs: 2, MaxArgs: 2, Handler: cmdChmod})
	register(Command{Name: "FS.CHOWN", Kind: KindWrite, MinArgs: 2, MaxArgs: 3, Handler: cmdChown})
	register(Command{Name: "FS.LN", Kind: KindWrite, MinArgs: 2, MaxArgs: 2, Handler: cmdLn})
	register(Command{Name: "FS.READLINK", Kind: KindRead, Fast: true, MinArgs: 1, MaxArgs: 1, Handler: cmdReadlink})
	register(Command{Name: "FS.CP", Kind: KindWrite, MinArgs: 2, MaxArgs: 3, Handler: cmdCp})
	register(Command{Name: "FS.MV", Kind: KindWrite, MinArgs: 2, MaxArgs: 2, Handler: cmdMv})
	register(Command{Name: "FS.TREE", Kind: KindRead, MinArgs: 1, MaxArgs: 3, Handler: cmdTree})
	register(Command{Name: "FS.FIND", Kind: KindRead, MinArgs: 2, MaxArgs: 4, Handler: cmdFind})
	register(Command{Name: "FS.GREP", Kind: KindRead, MinArgs: 2, MaxArgs: 3, Handler: cmdGrep})
	register(Command{Name: "FS.TRUNCATE", Kind: KindWrite, MinArgs: 2, MaxArgs: 2, Handler: cmdTruncate})
	register(Command{Name: "FS.UTIMENS", Kind: KindWrite, MinArgs: 3, MaxArgs: 3, Handler: cmdUtimens})
}
