// Package buffer implements the ownership-tracked byte buffer the rest of
// filepool uses in place of a bare []byte, so the transport layer can tell
// a buffer that exclusively owns its storage (transfer-eligible) apart
// from a view into storage shared with other buffers (copy-only).
package buffer

import (
	"fmt"

	"github.com/entropic-build/filepool/pkg/common/security"
)

// wiper performs the zero-fill pass Neuter uses to destroy a buffer's
// data. It uses MemoryProtection's non-GC-forcing fast path. A transfer
// (Move) does not go through it: moved bytes stay live in the new owner.
var wiper = security.NewMemoryProtection(true)

// Buffer wraps a byte slice together with an ownership flag. A Buffer
// constructed with New owns its storage outright; a Buffer produced by
// Slice is a view into another Buffer's storage and must never be
// transferred, only copied.
type Buffer struct {
	data  []byte
	owned bool
}

// New wraps data in a Buffer that exclusively owns its storage.
func New(data []byte) *Buffer {
	return &Buffer{data: data, owned: true}
}

// Slice returns a view of b's storage from start to end, marked as not
// exclusively owned: it shares the underlying array with b, and any
// Buffer b was itself sliced from.
func (b *Buffer) Slice(start, end int) (*Buffer, error) {
	if start < 0 || end > len(b.data) || start > end {
		return nil, fmt.Errorf("buffer: slice bounds [%d:%d] out of range for length %d", start, end, len(b.data))
	}
	return &Buffer{data: b.data[start:end], owned: false}, nil
}

// Bytes returns the underlying byte slice. Callers must not retain it
// across a Move: the source Buffer is then empty and the bytes belong to
// the Buffer Move returned.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len reports the current length of the buffer's data.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Owned reports whether b exclusively owns its underlying storage, i.e.
// whether it is eligible for zero-copy Transfer instead of Clone.
func (b *Buffer) Owned() bool {
	return b != nil && b.owned
}

// Clone returns a deep copy of b: new storage, same contents, exclusively
// owned regardless of b's own ownership.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return &Buffer{data: cp, owned: true}
}

// Move detaches b's storage into a newly returned Buffer that exclusively
// owns it, and truncates b itself to length zero — a zero-copy transfer:
// the bytes are not copied, only the ownership record moves, so b must
// be Owned() before calling Move.
// Move does not wipe the moved bytes (they are still live in the
// returned Buffer, backed by the same array); it only detaches b's own
// view of them.
func (b *Buffer) Move() *Buffer {
	if b == nil || !b.owned {
		return nil
	}
	moved := &Buffer{data: b.data, owned: true}
	b.data = nil
	return moved
}

// Neuter securely destroys b's data in place: the backing array is wiped
// and b's length becomes zero. Unlike Move, this is destructive — it must
// only be called on a Buffer known to have no other live view of its
// storage, such as a buffer discarded during a forced Dispose. A Buffer
// that does not own its storage is never wiped — it would also corrupt
// the buffer(s) it shares storage with.
func (b *Buffer) Neuter() {
	if b == nil || !b.owned {
		return
	}
	wiper.WipeFast(b.data)
	b.data = b.data[:0]
}
