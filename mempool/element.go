package mempool

import "unsafe"

import "github.com/bnclabs/goslab/api"

// Newelement allocate sizeof(T) bytes from the mallocer and construct
// a T in place. Memory comes back zeroed, ctor can be nil. T lives
// outside the Go heap and shall not contain pointers into it.
func Newelement[T any](m api.Mallocer, ctor func(*T)) *T {
	var zero T
	ptr := m.Alloc(int64(unsafe.Sizeof(zero)))
	if ptr == nil {
		return nil
	}
	element := (*T)(ptr)
	*element = zero
	if ctor != nil {
		ctor(element)
	}
	return element
}

// Delelement destroy the element through dtor, nil is allowed, and
// release its sizeof(T) bytes back to the mallocer.
func Delelement[T any](m api.Mallocer, element *T, dtor func(*T)) {
	if element == nil {
		return
	}
	if dtor != nil {
		dtor(element)
	}
	m.Free(unsafe.Pointer(element), int64(unsafe.Sizeof(*element)))
}
