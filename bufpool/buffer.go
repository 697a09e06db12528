package bufpool

import (
	"sync/atomic"

	"github.com/guileen/leakdetect/leak"
	"github.com/guileen/leakdetect/logger"
)

// Buffer is a pooled byte buffer with an explicit reference count. A Buffer
// starts with one reference; Release drops it and the last Release returns
// the buffer to its pool.
type Buffer struct {
	data    []byte
	refCnt  atomic.Int32
	pool    *Pool
	tracker *leak.Tracker[Buffer]
}

// Retain increments the reference count and returns the buffer.
func (b *Buffer) Retain() *Buffer {
	if b.refCnt.Add(1) <= 1 {
		logger.Warn("retain on a released buffer", "pool", b.pool.Name())
	}
	b.record()
	return b
}

// Release decrements the reference count. The call that drops the count to
// zero closes the buffer's tracker and returns it to the pool; Release
// reports true for that call only.
func (b *Buffer) Release() bool {
	switch n := b.refCnt.Add(-1); {
	case n > 0:
		b.record()
		return false
	case n < 0:
		b.refCnt.Add(1)
		logger.Warn("release on a released buffer", "pool", b.pool.Name())
		return false
	}
	if b.tracker != nil {
		b.tracker.CloseWith(b)
		b.tracker = nil
	}
	b.pool.put(b)
	return true
}

// Touch attaches caller context to the buffer's access trail.
func (b *Buffer) Touch(hint any) {
	if b.tracker != nil {
		b.tracker.RecordHint(hint)
	}
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.record()
	b.data = append(b.data, p...)
	return len(p), nil
}

// WriteString appends s to the buffer.
func (b *Buffer) WriteString(s string) (int, error) {
	b.record()
	b.data = append(b.data, s...)
	return len(s), nil
}

// Bytes returns the buffer contents. The slice is only valid until the last
// Release.
func (b *Buffer) Bytes() []byte {
	b.record()
	return b.data
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// Reset truncates the buffer to zero length, keeping its capacity.
func (b *Buffer) Reset() {
	b.record()
	b.data = b.data[:0]
}

// RefCnt returns the current reference count.
func (b *Buffer) RefCnt() int {
	return int(b.refCnt.Load())
}

func (b *Buffer) record() {
	if b.tracker != nil {
		b.tracker.Record()
	}
}
