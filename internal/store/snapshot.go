package store

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/AnishMulay/redisfs/internal/fsys"
)

// SaveSnapshot writes every live key to w, framed as:
//
//	u64 key_count
//	repeat key_count times:
//	  u64 key_len ; key bytes
//	  u64 payload_len ; fsys.Save output for that key's filesystem
//
// Each key's filesystem is saved independently, so LoadSnapshot can
// validate one key's version tag without having decoded any other key.
func (h *Host) SaveSnapshot(w io.Writer) error {
	var keys []string
	var payloads [][]byte
	for _, key := range h.Keys() {
		e := h.getEntry(key)
		if e == nil {
			continue // dropped between Keys() and here; skip rather than fail
		}
		var payload bytes.Buffer
		e.mu.Lock()
		err := e.fs.Save(&payload)
		e.mu.Unlock()
		if err != nil {
			return err
		}
		keys = append(keys, key)
		payloads = append(payloads, payload.Bytes())
	}
	bw := bufio.NewWriter(w)
	if err := writeHostU64(bw, uint64(len(keys))); err != nil {
		return err
	}
	for i, key := range keys {
		if err := writeHostString(bw, key); err != nil {
			return err
		}
		if err := writeHostU64(bw, uint64(len(payloads[i]))); err != nil {
			return err
		}
		if _, err := bw.Write(payloads[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadSnapshot replaces the host's entire key set with the one encoded in
// r. Any decode failure leaves the host's prior state untouched: the new
// set is built up in a separate map and only swapped in on full success.
func (h *Host) LoadSnapshot(r io.Reader) error {
	br := bufio.NewReader(r)
	count, err := readHostU64(br)
	if err != nil {
		return err
	}
	entries := make(map[string]*entry, count)
	for i := uint64(0); i < count; i++ {
		key, err := readHostString(br)
		if err != nil {
			return err
		}
		payloadLen, err := readHostU64(br)
		if err != nil {
			return err
		}
		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(br, payload); err != nil {
			return err
		}
		fs, err := fsys.Load(bytes.NewReader(payload))
		if err != nil {
			return err
		}
		entries[key] = &entry{fs: fs}
	}

	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()
	return nil
}

func writeHostString(w *bufio.Writer, s string) error {
	if err := writeHostU64(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readHostString(r *bufio.Reader) (string, error) {
	n, err := readHostU64(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeHostU64(w *bufio.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readHostU64(r *bufio.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
