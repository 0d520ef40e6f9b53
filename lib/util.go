// Package lib has helper functions for working with raw memory
// handed out by slab pools, memory that lives outside the Go heap.
package lib

import "unsafe"

// Memcpy copy `ln` bytes from src to dst, where both pointers
// typically address non Go-heap memory. Return the number of bytes
// copied.
func Memcpy(dst, src unsafe.Pointer, ln int) int {
	dstnd := unsafe.Slice((*byte)(dst), ln)
	srcnd := unsafe.Slice((*byte)(src), ln)
	return copy(dstnd, srcnd)
}

// Memset fill `ln` bytes at ptr with b.
func Memset(ptr unsafe.Pointer, b byte, ln int) {
	buf := unsafe.Slice((*byte)(ptr), ln)
	for i := range buf {
		buf[i] = b
	}
}
