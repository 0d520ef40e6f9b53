package mempool

import "sync"
import "testing"
import "unsafe"

func newtestpoolatom(slotsize, blocksize int64) *poolatom {
	pool := &poolatom{}
	pool.init(slotsize, blocksize, 0, nil, &sysmalloc{})
	return pool
}

func TestPoolatomConfigure(t *testing.T) {
	pool := newtestpoolatom(0, Blocksize)
	if x := pool.Slabsize(); x != linksize {
		t.Errorf("expected %v, got %v", linksize, x)
	}
	pool = newtestpoolatom(100, Blocksize)
	if x := pool.Slabsize(); x != 104 {
		t.Errorf("expected %v, got %v", 104, x)
	}
}

func TestPoolatomReuse(t *testing.T) {
	pool := newtestpoolatom(8, Blocksize)
	a := pool.Allocchunk()
	b := pool.Allocchunk()
	if a == b {
		t.Errorf("duplicate slots %p", a)
	}
	pool.Free(a)
	if c := pool.Allocchunk(); c != a {
		t.Errorf("expected %p, got %p", a, c)
	}
	pool.Free(a)
	pool.Free(b)
	// treiber stack pops in LIFO order.
	if c := pool.Allocchunk(); c != b {
		t.Errorf("expected %p, got %p", b, c)
	}
	if c := pool.Allocchunk(); c != a {
		t.Errorf("expected %p, got %p", a, c)
	}
	pool.Release()
}

func TestPoolatomSpans(t *testing.T) {
	slotsize, blocksize := int64(40), Blocksize
	pool := newtestpoolatom(slotsize, blocksize)
	n := 4 * ((blocksize - linksize) / slotsize)
	ptrs := make([]unsafe.Pointer, 0, n)
	for i := int64(0); i < n; i++ {
		ptr := pool.Allocchunk()
		if (uintptr(ptr) % uintptr(slotsize)) != 0 {
			t.Fatalf("slot %p not aligned to %v", ptr, slotsize)
		}
		ptrs = append(ptrs, ptr)
	}
	spans := pool.spans.Load().([]span)
	if x, y := int64(len(spans)), pool.nblocks; x != y {
		t.Errorf("expected %v spans, got %v", y, x)
	}
	for i := 1; i < len(spans); i++ {
		prev := spans[i-1]
		if spans[i].start != prev.start+prev.count {
			t.Errorf("span %v start %v does not follow %v+%v",
				i, spans[i].start, prev.start, prev.count)
		}
	}
	// every slot must resolve to the same span by address and index.
	for _, ptr := range ptrs {
		sp := findaddr(spans, uintptr(ptr), slotsize)
		if sp == nil {
			t.Fatalf("slot %p not covered by any span", ptr)
		}
		index := sp.start + int64(uintptr(ptr)-sp.base)/slotsize
		if x := findindex(spans, index); x != sp {
			t.Fatalf("index %v resolved to wrong span", index)
		}
	}
	for _, ptr := range ptrs {
		pool.Free(ptr)
	}
	if _, _, alloc, _ := pool.Info(); alloc != 0 {
		t.Errorf("expected %v, got %v", 0, alloc)
	}
	pool.Release()
}

func TestPoolatomGeomfail(t *testing.T) {
	// block cannot host even a single slot after the link word.
	pool := newtestpoolatom(64, 64)
	for i := 0; i < 2; i++ {
		func() {
			defer func() {
				if r := recover(); r != ErrorAllocfailure {
					t.Errorf("expected %v, got %v", ErrorAllocfailure, r)
				}
			}()
			pool.Allocchunk()
		}()
	}
}

func TestPoolatomForeign(t *testing.T) {
	pool := newtestpoolatom(8, Blocksize)
	pool.Allocchunk()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic")
		}
		pool.Release()
	}()
	var local [8]byte
	pool.Free(unsafe.Pointer(&local[0]))
}

func TestPoolatomContention(t *testing.T) {
	pool := newtestpoolatom(64, Blocksize)
	routines, iterations := 8, 10000
	var wg sync.WaitGroup
	for i := 0; i < routines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ptrs := make([]unsafe.Pointer, 0, 16)
			for j := 0; j < iterations; j++ {
				ptrs = append(ptrs, pool.Allocchunk())
				if len(ptrs) == cap(ptrs) {
					for _, ptr := range ptrs {
						pool.Free(ptr)
					}
					ptrs = ptrs[:0]
				}
			}
			for _, ptr := range ptrs {
				pool.Free(ptr)
			}
		}()
	}
	wg.Wait()
	if _, _, alloc, _ := pool.Info(); alloc != 0 {
		t.Errorf("expected %v, got %v", 0, alloc)
	}
	pool.Release()
}

func BenchmarkAtomAlloc(b *testing.B) {
	pool := newtestpoolatom(64, Blocksize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Free(pool.Allocchunk())
	}
	pool.Release()
}

func BenchmarkAtomParallel(b *testing.B) {
	pool := newtestpoolatom(64, Blocksize)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			pool.Free(pool.Allocchunk())
		}
	})
	pool.Release()
}
