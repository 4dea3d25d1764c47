package fusebridge

import (
	"context"
	"sync"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/AnishMulay/redisfs/internal/wire"
)

// FileHandle buffers one open file's content in memory, flushing the
// whole buffer back through FS.ECHO on Flush/Release, following
// redisfs/handle.go's FileHandle exactly.
type FileHandle struct {
	path   string
	client *wire.Client
	node   *FSNode

	mu      sync.Mutex
	content []byte
	loaded  bool
	dirty   bool
}

func newFileHandle(path string, c *wire.Client, node *FSNode) *FileHandle {
	return &FileHandle{path: path, client: c, node: node}
}

func (fh *FileHandle) load(ctx context.Context) error {
	if fh.loaded {
		return nil
	}
	data, err := fh.client.Cat(ctx, fh.path)
	if err != nil {
		if mapError(err) == syscall.ENOENT {
			fh.content = nil
			fh.loaded = true
			return nil
		}
		return err
	}
	fh.content = data
	fh.loaded = true
	return nil
}

// Read serves dest from the buffered content, loading it on first use.
func (fh *FileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	if err := fh.load(ctx); err != nil {
		return nil, mapError(err)
	}

	size := int64(len(fh.content))
	if off >= size {
		return fuse.ReadResultData(nil), 0
	}

	end := off + int64(len(dest))
	if end > size {
		end = size
	}

	return fuse.ReadResultData(fh.content[off:end]), 0
}

// Write extends the buffer as needed and marks it dirty.
func (fh *FileHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	if err := fh.load(ctx); err != nil {
		return 0, mapError(err)
	}

	end := off + int64(len(data))
	if end > int64(len(fh.content)) {
		newBuf := make([]byte, end)
		copy(newBuf, fh.content)
		fh.content = newBuf
	}
	copy(fh.content[off:], data)
	fh.dirty = true

	return uint32(len(data)), 0
}

// Flush writes the buffer back through FS.ECHO if it was modified.
func (fh *FileHandle) Flush(ctx context.Context) syscall.Errno {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	if !fh.dirty {
		return 0
	}

	data := fh.content
	if data == nil {
		data = []byte{}
	}

	if err := fh.client.Echo(ctx, fh.path, data); err != nil {
		return mapError(err)
	}
	fh.dirty = false

	fh.node.root().invalidatePath(fh.path)

	return 0
}

// SetTruncated marks the handle as already-empty-and-dirty, used when
// opening/creating with O_TRUNC.
func (fh *FileHandle) SetTruncated() {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	fh.content = []byte{}
	fh.loaded = true
	fh.dirty = true
}
