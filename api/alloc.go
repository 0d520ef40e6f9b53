// Package api holds the interfaces shared between slab pools and
// their consumers.
package api

import "unsafe"

// MemoryPool interface for a single slab-class allocator, servicing
// fixed size chunks carved out of OS acquired blocks.
type MemoryPool interface {
	// Slabsize size of chunks serviced by this pool.
	Slabsize() int64

	// Allocchunk allocate a chunk from this pool. Returned memory
	// is always aligned to the pool's slab size.
	Allocchunk() unsafe.Pointer

	// Free a chunk back to this pool. Chunk must have been obtained
	// from a prior Allocchunk on the same pool.
	Free(ptr unsafe.Pointer)

	// Info of memory accounting for this pool.
	Info() (capacity, heap, alloc, overhead int64)

	// Release this pool and all its resources.
	Release()
}

// Mallocer interface for custom memory management, routing each
// allocation request to a slab class by size.
type Mallocer interface {
	// Slabs allocatable slab of sizes.
	Slabs() (sizes []int64)

	// Alloc allocate a chunk of `n` bytes. Requests larger than the
	// largest slab are serviced by the OS allocator.
	Alloc(n int64) unsafe.Pointer

	// Free chunk back to its slab class. Callers supply the size
	// that was passed to Alloc, or any size mapping to the same
	// slab class.
	Free(ptr unsafe.Pointer, n int64)

	// Slabsize the slab size that services an `n` byte request,
	// zero when the request bypasses the slab classes.
	Slabsize(n int64) int64

	// Info of memory accounting summed over slab classes.
	Info() (capacity, heap, alloc, overhead int64)

	// Utilization slab sizes and their utilization, as parallel slices.
	Utilization() ([]int, []float64)

	// Release all slab classes and their resources.
	Release()
}
