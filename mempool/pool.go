package mempool

import "sync"
import "sync/atomic"
import "unsafe"

// linksize size of the link word threaded through free slots and
// through the first word of every block. Slab sizes are always
// multiples of linksize.
const linksize = int64(unsafe.Sizeof(uintptr(0)))

// carver owns the block chain and the bump region of a single slab
// class. Both pool flavours embed a carver; fields are serialized by
// blockmu, except heap which is a bucket-wide atomic counter.
type carver struct {
	nblocks int64 // 64-bit aligned, atomic

	slotsize   int64
	blocksize  int64
	capacity   int64  // bucket-wide ceiling, zero means unbounded
	heap       *int64 // bucket-wide bytes acquired from OS
	sys        sysallocator
	blockmu    sync.Mutex
	firstblock uintptr // head of block chain, for teardown
	curslot    uintptr // next never-handed-out slot
	endslot    uintptr // one past the last slot of the active block
}

func (crv *carver) configure(
	slotsize, blocksize, capacity int64, heap *int64, sys sysallocator) {

	if slotsize <= 0 {
		slotsize = linksize
	} else if mod := slotsize % linksize; mod != 0 {
		slotsize += linksize - mod
	}
	if heap == nil {
		heap = new(int64)
	}
	crv.slotsize, crv.blocksize = slotsize, blocksize
	crv.capacity, crv.heap, crv.sys = capacity, heap, sys
	crv.firstblock, crv.curslot, crv.endslot = 0, 0, 0
	crv.nblocks = 0
}

// bumpslot next slot from the bump region, zero if exhausted.
// Caller must hold blockmu.
func (crv *carver) bumpslot() uintptr {
	if crv.curslot == crv.endslot {
		return 0
	}
	slot := crv.curslot
	crv.curslot += uintptr(crv.slotsize)
	return slot
}

// nextslot take the next slot from the bump region, carving a fresh
// block when the region is exhausted. Carve failures panic while
// blockmu is held, the deferred unlock keeps the pool usable for
// callers that recover.
func (crv *carver) nextslot() uintptr {
	crv.blockmu.Lock()
	defer crv.blockmu.Unlock()
	slot := crv.bumpslot()
	if slot == 0 {
		crv.carve()
		slot = crv.bumpslot()
	}
	return slot
}

// carve acquire a fresh block from the OS, thread it on the block
// chain and reset the bump region over its body. Returns the first
// slot and the slot count. Caller must hold blockmu.
func (crv *carver) carve() (uintptr, int64) {
	heap := atomic.AddInt64(crv.heap, crv.blocksize)
	if crv.capacity > 0 && heap > crv.capacity {
		atomic.AddInt64(crv.heap, -crv.blocksize)
		panic(ErrorOutofMemory)
	}
	base := crv.sys.alloc(crv.blocksize)
	if base == nil {
		atomic.AddInt64(crv.heap, -crv.blocksize)
		panic(ErrorAllocfailure)
	}
	block := uintptr(base)
	*(*uintptr)(unsafe.Pointer(block)) = crv.firstblock
	crv.firstblock = block

	body := block + uintptr(linksize)
	pad := uintptr(0)
	if mod := body % uintptr(crv.slotsize); mod != 0 {
		pad = uintptr(crv.slotsize) - mod
	}
	usable := crv.blocksize - int64(body+pad-block)
	if usable < crv.slotsize { // cannot host even one slot
		crv.firstblock = *(*uintptr)(unsafe.Pointer(block))
		crv.sys.free(base)
		atomic.AddInt64(crv.heap, -crv.blocksize)
		panic(ErrorAllocfailure)
	}
	count := usable / crv.slotsize
	crv.curslot = body + pad
	crv.endslot = crv.curslot + uintptr(count*crv.slotsize)
	atomic.AddInt64(&crv.nblocks, 1)
	return crv.curslot, count
}

// releaseblocks walk the block chain and return every block to the
// OS. Callers must have quiesced all allocators on this pool.
func (crv *carver) releaseblocks() {
	n := int64(0)
	for block := crv.firstblock; block != 0; n++ {
		next := *(*uintptr)(unsafe.Pointer(block))
		crv.sys.free(unsafe.Pointer(block))
		block = next
	}
	atomic.AddInt64(crv.heap, -n*crv.blocksize)
	atomic.StoreInt64(&crv.nblocks, 0)
	crv.firstblock, crv.curslot, crv.endslot = 0, 0, 0
}
