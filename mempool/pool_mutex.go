package mempool

import "sync"
import "sync/atomic"
import "unsafe"

// poolmutex single slab-class allocator. Released slots are threaded
// through their own first word into a free list guarded by freemu,
// block carving is guarded by the embedded blockmu.
type poolmutex struct {
	mallocated int64 // 64-bit aligned stats

	carver
	freemu   sync.Mutex
	freelist uintptr // head of released-slot stack
}

func (pool *poolmutex) init(
	slotsize, blocksize, capacity int64, heap *int64, sys sysallocator) {

	pool.configure(slotsize, blocksize, capacity, heap, sys)
	pool.freelist, pool.mallocated = 0, 0
}

// Slabsize implement api.MemoryPool{} interface.
func (pool *poolmutex) Slabsize() int64 {
	return pool.slotsize
}

// Allocchunk implement api.MemoryPool{} interface. Free list is
// consulted before the bump region, recycled slots are cache-warm.
func (pool *poolmutex) Allocchunk() unsafe.Pointer {
	pool.freemu.Lock()
	if slot := pool.freelist; slot != 0 {
		pool.freelist = *(*uintptr)(unsafe.Pointer(slot))
		pool.freemu.Unlock()
		atomic.AddInt64(&pool.mallocated, pool.slotsize)
		initblock(slot, pool.slotsize)
		return unsafe.Pointer(slot)
	}
	pool.freemu.Unlock()

	slot := pool.nextslot()
	atomic.AddInt64(&pool.mallocated, pool.slotsize)
	initblock(slot, pool.slotsize)
	return unsafe.Pointer(slot)
}

// Free implement api.MemoryPool{} interface.
func (pool *poolmutex) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	slot := uintptr(ptr)
	if (slot % uintptr(pool.slotsize)) != 0 {
		panicerr("poolmutex.free(): unaligned pointer: %x,%v", slot, pool.slotsize)
	}
	pool.freemu.Lock()
	*(*uintptr)(unsafe.Pointer(slot)) = pool.freelist
	pool.freelist = slot
	pool.freemu.Unlock()
	atomic.AddInt64(&pool.mallocated, -pool.slotsize)
}

// Info implement api.MemoryPool{} interface.
func (pool *poolmutex) Info() (capacity, heap, alloc, overhead int64) {
	self := int64(unsafe.Sizeof(*pool))
	heap = atomic.LoadInt64(&pool.nblocks) * pool.blocksize
	return heap, heap, atomic.LoadInt64(&pool.mallocated), self
}

// Release implement api.MemoryPool{} interface.
func (pool *poolmutex) Release() {
	pool.releaseblocks()
	pool.freelist, pool.mallocated = 0, 0
}
