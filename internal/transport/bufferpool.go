package transport

import (
	"sort"
	"sync"
	"sync/atomic"
)

// BufferPool hands out size-bucketed byte slices for read/write buffers so
// the steady-state connection loop doesn't allocate on every readiness
// edge. Buckets are chosen to straddle the receive-policy sizes a
// connection stack is likely to configure (handshake-sized reads up
// through bulk-transfer reads).
type BufferPool struct {
	buckets []bucket
}

type bucket struct {
	size  int
	limit int64
	inuse int64
	pool  sync.Pool
}

// BufferPoolConfig configures a BufferPool's bucket sizes and the
// approximate number of buffers retained per bucket.
type BufferPoolConfig struct {
	BucketSizes  []int
	MaxPerBucket int
}

// DefaultBufferPool covers the sizes section 4.10's handshake chunking
// (up_to(2048)) and typical bulk-transfer reads use.
func DefaultBufferPool() *BufferPool {
	return NewBufferPool(BufferPoolConfig{
		BucketSizes:  []int{2048, 4096, 8192, 16384, 32768, 65536},
		MaxPerBucket: 512,
	})
}

func NewBufferPool(cfg BufferPoolConfig) *BufferPool {
	sizes := append([]int(nil), cfg.BucketSizes...)
	sort.Ints(sizes)
	buckets := make([]bucket, len(sizes))
	for i, sz := range sizes {
		sz := sz
		buckets[i] = bucket{
			size:  sz,
			limit: int64(cfg.MaxPerBucket),
			pool:  sync.Pool{New: func() any { return make([]byte, sz) }},
		}
	}
	return &BufferPool{buckets: buckets}
}

func (p *BufferPool) findBucket(n int) int {
	i := sort.Search(len(p.buckets), func(i int) bool { return p.buckets[i].size >= n })
	if i >= len(p.buckets) {
		return -1
	}
	return i
}

// Get returns a zero-length slice backed by capacity >= n. A request larger
// than the biggest bucket is satisfied with a one-off allocation that Put
// will not retain.
func (p *BufferPool) Get(n int) []byte {
	if n <= 0 {
		return nil
	}
	idx := p.findBucket(n)
	if idx < 0 {
		return make([]byte, 0, n)
	}
	b := &p.buckets[idx]
	buf := b.pool.Get().([]byte)
	atomic.AddInt64(&b.inuse, 1)
	return buf[:0]
}

// GetFull is Get, but pre-extended to length exactly n — the shape the
// transport's fixed-capacity read buffer needs.
func (p *BufferPool) GetFull(n int) []byte {
	return p.Get(n)[:n]
}

// Put returns buf to its bucket, unless its capacity doesn't match a known
// bucket size or the bucket is already at its retention limit.
func (p *BufferPool) Put(buf []byte) {
	capn := cap(buf)
	if capn == 0 {
		return
	}
	idx := p.findBucket(capn)
	if idx < 0 || p.buckets[idx].size != capn {
		return
	}
	b := &p.buckets[idx]
	if cur := atomic.AddInt64(&b.inuse, -1); cur >= b.limit {
		return
	}
	b.pool.Put(buf[:capn])
}
