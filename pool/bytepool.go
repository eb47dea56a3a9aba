// File: pool/bytepool.go
// Package pool provides pooled read buffers for the connection reader.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "sync"

// DefaultBufferSize is the chunk size used for stream reads.
const DefaultBufferSize = 32 * 1024

// BytePool hands out fixed-size byte slices backed by sync.Pool.
// Buffers returned by Get are not zeroed.
type BytePool struct {
	size int
	p    sync.Pool
}

// NewBytePool creates a pool of size-byte buffers.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		size = DefaultBufferSize
	}
	bp := &BytePool{size: size}
	bp.p.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return bp
}

// Size returns the buffer size this pool hands out.
func (b *BytePool) Size() int { return b.size }

// Get returns a buffer of the pool's size.
func (b *BytePool) Get() []byte {
	return *(b.p.Get().(*[]byte))
}

// Put returns a buffer to the pool. Buffers of the wrong size are
// dropped so a caller cannot poison the pool.
func (b *BytePool) Put(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	buf = buf[:b.size]
	b.p.Put(&buf)
}
