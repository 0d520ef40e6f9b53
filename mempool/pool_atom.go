package mempool

import "runtime"
import "sync/atomic"
import "unsafe"

// poolatom single slab-class allocator with a lock-free free list.
// Released slots go through a Treiber stack whose head packs a slot
// index and a monotonic tag, `(index+1)<<32 | tag`, so that a stale
// compare-and-swap cannot splice a reused slot back in with an old
// successor. Link words live in a side table, never inside the slot,
// caller writes into a live slot cannot race a popper's link load.
// Block carving still goes through the embedded blockmu.
type poolatom struct {
	mallocated int64  // 64-bit aligned stats
	head       uint64 // packed free-list head, zero when empty
	tag        uint32 // bumped on every push

	carver
	spans     atomic.Value // []span, replaced under blockmu
	nextstart int64        // index of the first slot of the next span
}

// span one carved block body. starts are strictly increasing in
// carve order, links[i] holds the packed successor of slot start+i.
type span struct {
	base  uintptr
	start int64
	count int64
	links []uint64
}

func (pool *poolatom) init(
	slotsize, blocksize, capacity int64, heap *int64, sys sysallocator) {

	pool.configure(slotsize, blocksize, capacity, heap, sys)
	pool.head, pool.tag, pool.mallocated = 0, 0, 0
	pool.nextstart = 0
	pool.spans.Store([]span{})
}

// Slabsize implement api.MemoryPool{} interface.
func (pool *poolatom) Slabsize() int64 {
	return pool.slotsize
}

// Allocchunk implement api.MemoryPool{} interface. The free list is
// tried without touching blockmu, the carve path is the only place
// this pool ever takes a lock.
func (pool *poolatom) Allocchunk() unsafe.Pointer {
	if slot := pool.pop(); slot != 0 {
		atomic.AddInt64(&pool.mallocated, pool.slotsize)
		initblock(slot, pool.slotsize)
		return unsafe.Pointer(slot)
	}
	slot := pool.bumpalloc()
	atomic.AddInt64(&pool.mallocated, pool.slotsize)
	initblock(slot, pool.slotsize)
	return unsafe.Pointer(slot)
}

// bumpalloc take the next slot from the bump region, carving a fresh
// block and publishing its span when the region is exhausted. Carve
// failures panic while blockmu is held, the deferred unlock keeps the
// pool usable for callers that recover.
func (pool *poolatom) bumpalloc() uintptr {
	pool.blockmu.Lock()
	defer pool.blockmu.Unlock()
	slot := pool.bumpslot()
	if slot == 0 {
		base, count := pool.carve()
		spans := pool.spans.Load().([]span)
		grown := make([]span, len(spans), len(spans)+1)
		copy(grown, spans)
		grown = append(grown, span{
			base:  base,
			start: pool.nextstart,
			count: count,
			links: make([]uint64, count),
		})
		pool.nextstart += count
		pool.spans.Store(grown)
		slot = pool.bumpslot()
	}
	return slot
}

// Free implement api.MemoryPool{} interface.
func (pool *poolatom) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	slot := uintptr(ptr)
	if (slot % uintptr(pool.slotsize)) != 0 {
		panicerr("poolatom.free(): unaligned pointer: %x,%v", slot, pool.slotsize)
	}
	pool.push(slot)
	atomic.AddInt64(&pool.mallocated, -pool.slotsize)
}

func (pool *poolatom) push(slot uintptr) {
	spans := pool.spans.Load().([]span)
	sp := findaddr(spans, slot, pool.slotsize)
	if sp == nil {
		panicerr("poolatom.free(): foreign pointer: %x", slot)
	}
	index := sp.start + int64(slot-sp.base)/pool.slotsize
	link := &sp.links[index-sp.start]
	packed := uint64(index+1)<<32 | uint64(atomic.AddUint32(&pool.tag, 1))
	for {
		old := atomic.LoadUint64(&pool.head)
		atomic.StoreUint64(link, old)
		if atomic.CompareAndSwapUint64(&pool.head, old, packed) {
			return
		}
		runtime.Gosched()
	}
}

func (pool *poolatom) pop() uintptr {
	for {
		old := atomic.LoadUint64(&pool.head)
		if old == 0 {
			return 0
		}
		index := int64(old>>32) - 1
		spans := pool.spans.Load().([]span)
		sp := findindex(spans, index)
		next := atomic.LoadUint64(&sp.links[index-sp.start])
		if atomic.CompareAndSwapUint64(&pool.head, old, next) {
			return sp.base + uintptr((index-sp.start)*pool.slotsize)
		}
		runtime.Gosched()
	}
}

// findaddr span holding the slot address, nil for foreign pointers.
func findaddr(spans []span, slot uintptr, slotsize int64) *span {
	for i := range spans {
		sp := &spans[i]
		if slot >= sp.base && slot < sp.base+uintptr(sp.count*slotsize) {
			return sp
		}
	}
	return nil
}

// findindex span holding the slot index, by binary search over the
// strictly increasing starts.
func findindex(spans []span, index int64) *span {
	lo, hi := 0, len(spans)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if spans[mid].start <= index {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return &spans[lo]
}

// Info implement api.MemoryPool{} interface.
func (pool *poolatom) Info() (capacity, heap, alloc, overhead int64) {
	self := int64(unsafe.Sizeof(*pool))
	spans := pool.spans.Load().([]span)
	for i := range spans {
		self += int64(unsafe.Sizeof(spans[i]))
		self += spans[i].count * int64(unsafe.Sizeof(uint64(0)))
	}
	heap = atomic.LoadInt64(&pool.nblocks) * pool.blocksize
	return heap, heap, atomic.LoadInt64(&pool.mallocated), self
}

// Release implement api.MemoryPool{} interface.
func (pool *poolatom) Release() {
	pool.releaseblocks()
	pool.head, pool.mallocated, pool.nextstart = 0, 0, 0
	pool.spans.Store([]span{})
}
