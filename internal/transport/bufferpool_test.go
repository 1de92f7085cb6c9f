package transport

import "testing"

func TestBufferPoolGetFullLength(t *testing.T) {
	p := DefaultBufferPool()
	buf := p.GetFull(100)
	if len(buf) != 100 {
		t.Fatalf("expected length 100, got %d", len(buf))
	}
}

func TestBufferPoolOversizeNotRetained(t *testing.T) {
	p := NewBufferPool(BufferPoolConfig{BucketSizes: []int{64}, MaxPerBucket: 4})
	buf := p.GetFull(1 << 20)
	if len(buf) != 1<<20 {
		t.Fatalf("expected oversize buffer of exact length, got %d", len(buf))
	}
	p.Put(buf)
	again := p.Get(64)
	if cap(again) != 64 {
		t.Fatalf("oversize buffer must not be recycled into the 64-byte bucket, got cap %d", cap(again))
	}
}

func TestBufferPoolRoundTrip(t *testing.T) {
	p := NewBufferPool(BufferPoolConfig{BucketSizes: []int{128, 256}, MaxPerBucket: 2})
	a := p.Get(100)
	if cap(a) < 100 {
		t.Fatalf("expected capacity >= 100, got %d", cap(a))
	}
	p.Put(a)
	b := p.Get(100)
	if cap(b) != cap(a) {
		t.Fatalf("expected recycled buffer from the same bucket")
	}
}
