// Package transcript implements the append-only byte logs that bind every
// protocol message into the signatures and HMACs that verify it later.
package transcript

import (
	"errors"

	"github.com/spdmgo/requester/pkg/crypto"
)

// ErrBufferFull is returned when an append would exceed a buffer's cap.
// Per spec.md §4.B this is fatal for the current exchange, not just the
// append: the caller must abandon the procedure.
var ErrBufferFull = errors.New("transcript: buffer full")

// ID names one of the fixed transcript buffers a Context owns.
type ID int

const (
	// A holds version + capabilities + algorithms request/response pairs.
	A ID = iota
	// B holds digests and certificate exchanges.
	B
	// C holds the challenge/auth exchange (signed).
	C
	// M1M2 holds mutual-auth encapsulated exchanges.
	M1M2
	numBuffers
)

// DefaultCap is the per-buffer size cap used unless overridden.
const DefaultCap = 64 * 1024

// Buffer is a single append-only byte log with a hard size cap.
type Buffer struct {
	data []byte
	cap  int
}

// NewBuffer returns an empty Buffer capped at capBytes.
func NewBuffer(capBytes int) *Buffer {
	return &Buffer{cap: capBytes}
}

// Append adds b to the buffer, returning ErrBufferFull without mutating the
// buffer if doing so would exceed the cap.
func (buf *Buffer) Append(b []byte) error {
	if len(buf.data)+len(b) > buf.cap {
		return ErrBufferFull
	}
	buf.data = append(buf.data, b...)
	return nil
}

// Reset empties the buffer, used when a request code's reset-table entry
// fires (§4.B) or when a verification fails and tentative appends must be
// rolled back.
func (buf *Buffer) Reset() {
	buf.data = buf.data[:0]
}

// Len reports the buffer's size at a checkpoint, so a caller can truncate
// back to it on rollback instead of resetting the whole buffer.
func (buf *Buffer) Len() int {
	return len(buf.data)
}

// TruncateTo rolls the buffer back to a previously observed Len(), the
// "tentative append + commit-on-success" mechanism spec.md §9 calls for.
func (buf *Buffer) TruncateTo(n int) {
	if n < len(buf.data) {
		buf.data = buf.data[:n]
	}
}

// Hash returns the digest of the buffer's current contents under h.
func (buf *Buffer) Hash(h crypto.Hash) []byte {
	return h.Sum(buf.data)
}

// Bytes exposes the buffer's raw contents, needed when a key-schedule
// function hashes transcript K directly rather than through Hash.
func (buf *Buffer) Bytes() []byte {
	return buf.data
}

// Set holds the four context-scoped buffers (A, B, C, M1M2). Per-session K
// buffers are owned by session.Info instead, since they are scoped to a
// session rather than the connection.
type Set struct {
	buffers [numBuffers]*Buffer
}

// NewSet allocates a Set with every buffer capped at capBytes.
func NewSet(capBytes int) *Set {
	s := &Set{}
	for i := range s.buffers {
		s.buffers[i] = NewBuffer(capBytes)
	}
	return s
}

func (s *Set) Get(id ID) *Buffer {
	return s.buffers[id]
}

func (s *Set) ResetAll() {
	for _, b := range s.buffers {
		b.Reset()
	}
}
