//go:build !unix

package mempool

func newsysallocator(name string) sysallocator {
	switch name {
	case "malloc":
	case "mmap":
		warnf("mempool: sysalloc %q unsupported on this platform, using \"malloc\"", name)
	default:
		panicerr("invalid sysalloc setting %q", name)
	}
	return &sysmalloc{}
}
