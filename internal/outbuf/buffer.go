// Package outbuf is the bounded chunk buffer writers render into. It never
// refuses a write; it only tells the traversal when to stop producing.
package outbuf

import (
	"bytes"
	"io"
)

// DefaultLimit is the chunk size used when a non-positive limit is given.
const DefaultLimit = 4096

// Buffer collects rendered output until Limit bytes are pending.
type Buffer struct {
	buf   bytes.Buffer
	limit int
}

// New returns an empty Buffer that reports itself full once limit bytes are
// pending.
func New(limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Buffer{limit: limit}
}

// Limit returns the soft capacity.
func (b *Buffer) Limit() int { return b.limit }

// Len returns the number of unread bytes.
func (b *Buffer) Len() int { return b.buf.Len() }

// CanAcceptMore reports whether fewer than Limit bytes are pending.
func (b *Buffer) CanAcceptMore() bool { return b.buf.Len() < b.limit }

func (b *Buffer) Write(p []byte) (int, error) { return b.buf.Write(p) }

func (b *Buffer) WriteString(s string) (int, error) { return b.buf.WriteString(s) }

func (b *Buffer) WriteByte(c byte) error { return b.buf.WriteByte(c) }

func (b *Buffer) WriteRune(r rune) (int, error) { return b.buf.WriteRune(r) }

// Read drains pending bytes. An empty buffer reads 0 bytes with a nil error;
// end of stream is the caller's decision.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.buf.Len() == 0 {
		return 0, nil
	}
	return b.buf.Read(p)
}

// WriteTo drains every pending byte into w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	return b.buf.WriteTo(w)
}

// Reset discards pending bytes.
func (b *Buffer) Reset() { b.buf.Reset() }
