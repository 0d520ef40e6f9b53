//go:build unix

package mempool

import "sync"
import "unsafe"

import "golang.org/x/sys/unix"

// sysmmap allocates blocks as anonymous private mappings. Munmap
// needs the original byte-slice, so live mappings are indexed by
// their base address.
type sysmmap struct {
	mu      sync.Mutex
	regions map[uintptr][]byte
}

func newsysmmap() *sysmmap {
	return &sysmmap{regions: make(map[uintptr][]byte)}
}

func (sys *sysmmap) alloc(size int64) unsafe.Pointer {
	prot, flags := unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON
	buf, err := unix.Mmap(-1, 0, int(size), prot, flags)
	if err != nil {
		return nil
	}
	base := uintptr(unsafe.Pointer(&buf[0]))
	sys.mu.Lock()
	sys.regions[base] = buf
	sys.mu.Unlock()
	return unsafe.Pointer(base)
}

func (sys *sysmmap) free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	sys.mu.Lock()
	buf, ok := sys.regions[uintptr(ptr)]
	delete(sys.regions, uintptr(ptr))
	sys.mu.Unlock()
	if ok == false {
		panicerr("sysmmap.free(): unknown mapping %p", ptr)
	}
	unix.Munmap(buf)
}

func newsysallocator(name string) sysallocator {
	switch name {
	case "malloc":
		return &sysmalloc{}
	case "mmap":
		return newsysmmap()
	}
	panicerr("invalid sysalloc setting %q", name)
	return nil
}
