package store

import (
	"fmt"
	"sync"

	"github.com/AnishMulay/redisfs/internal/fsys"
	"golang.org/x/exp/slices"
)

// entry is one key's exclusive filesystem object: one *fsys.Filesystem
// guarded by its own mutex, the Go equivalent of the single-threaded
// exclusivity the original datatype gets for free from its host's event
// loop. fsys.Filesystem itself takes no locks, by design (see
// fsys.Filesystem's doc comment); entry is where that exclusivity lives.
type entry struct {
	mu sync.Mutex
	fs *fsys.Filesystem
}

// Host owns every live filesystem key. It is the Go analogue of the
// teacher's inmemory_posix_metadata_service.go superblock, generalized
// from one global root to one *fsys.Filesystem per key, plus the
// auto-create/auto-delete lifecycle and replication logging that a
// Redis-module-style datatype needs but a single mounted filesystem
// doesn't.
type Host struct {
	mu      sync.RWMutex
	entries map[string]*entry
	log     *ReplicationLog
}

// NewHost constructs an empty host with no live keys.
func NewHost() *Host {
	return &Host{
		entries: make(map[string]*entry),
		log:     newReplicationLog(),
	}
}

// ReplicationLog exposes the host's append-only write log. Within this
// repository only tests read it, asserting that read commands never
// append to it.
func (h *Host) ReplicationLog() *ReplicationLog {
	return h.log
}

func (h *Host) getEntry(key string) *entry {
	h.mu.RLock()
	e := h.entries[key]
	h.mu.RUnlock()
	return e
}

func (h *Host) getOrCreateEntry(key string) *entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := h.entries[key]
	if e == nil {
		e = &entry{fs: fsys.New()}
		h.entries[key] = e
	}
	return e
}

// dropIfEmpty removes key's entry if it is still mapped to e and e's
// filesystem holds nothing but the root directory, implementing the
// auto-delete-on-empty half of the lifecycle protocol (spec §4.4). It is
// always called without e.mu held, and re-locks e.mu itself, to avoid a
// lock-ordering cycle with getOrCreateEntry.
func (h *Host) dropIfEmpty(key string, e *entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries[key] != e {
		return
	}
	e.mu.Lock()
	empty := e.fs.Empty()
	e.mu.Unlock()
	if empty {
		delete(h.entries, key)
	}
}

// Keys returns every live filesystem key, sorted so that snapshot output
// and diagnostics are deterministic across runs.
func (h *Host) Keys() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.entries))
	for k := range h.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Dispatch is C9/C10's single entry point: look up the named command,
// check its arity, and run it against key's filesystem under that key's
// exclusive lock — creating the key first if this is a write command and
// it doesn't yet exist, and dropping it afterward if the write left it
// holding nothing but the root directory. Path arguments are normalized
// by the individual command handlers in commands.go before they reach
// internal/fsys, never inside fsys itself.
func (h *Host) Dispatch(key, cmdName string, args []string) (any, error) {
	cmd, ok := Lookup(cmdName)
	if !ok {
		return nil, fmt.Errorf("unknown command %q", cmdName)
	}
	if len(args) < cmd.MinArgs || (cmd.MaxArgs >= 0 && len(args) > cmd.MaxArgs) {
		return nil, fsys.ErrWrongArity
	}

	if cmd.Kind == KindRead {
		e := h.getEntry(key)
		if e == nil {
			return nil, fsys.ErrNoSuchKey
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		return cmd.Handler(e.fs, args)
	}

	e := h.getOrCreateEntry(key)
	e.mu.Lock()
	reply, err := cmd.Handler(e.fs, args)
	e.mu.Unlock()

	h.dropIfEmpty(key, e)

	if err == nil {
		h.log.Append(key, cmd.Name, args)
	}
	return reply, err
}

// Digest returns the content digest of key's filesystem, or ok=false if
// key does not exist.
func (h *Host) Digest(key string) (digest []byte, ok bool) {
	e := h.getEntry(key)
	if e == nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fs.Digest(), true
}

// Info returns the same counters as FS.INFO, typed as fsys.Info rather
// than the any-typed wire reply. It reads key's filesystem directly, not
// through Dispatch, and reports ok=false if key does not exist.
func (h *Host) Info(key string) (fsys.Info, bool) {
	e := h.getEntry(key)
	if e == nil {
		return fsys.Info{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fs.Info(), true
}
