//go:build !debug

package mempool

import "unsafe"

func initblock(block uintptr, size int64) {
	dst := unsafe.Slice((*byte)(unsafe.Pointer(block)), size)
	for i := int64(0); i < size; i += int64(len(zeroblkinit)) {
		copy(dst[i:], zeroblkinit)
	}
}
