package mempool

//#include <stdlib.h>
import "C"

import "unsafe"

// sysallocator OS-level allocator supplying slab blocks and servicing
// oversized requests that bypass the slab classes.
type sysallocator interface {
	// alloc `size` bytes from the OS, nil if the OS refuses.
	alloc(size int64) unsafe.Pointer

	// free a pointer obtained from alloc.
	free(ptr unsafe.Pointer)
}

// sysmalloc allocates through the C library allocator.
type sysmalloc struct{}

func (sys *sysmalloc) alloc(size int64) unsafe.Pointer {
	return C.malloc(C.size_t(size))
}

func (sys *sysmalloc) free(ptr unsafe.Pointer) {
	C.free(ptr)
}
