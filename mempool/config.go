package mempool

import s "github.com/prataprc/gosettings"
import "github.com/cloudfoundry/gosigar"

// Slotbase size interval between adjacent slab classes. Slab sizes
// are multiples of Slotbase.
const Slotbase = int64(8)

// Maxslotsize is the largest request serviced from slab pools,
// larger requests go directly to the OS allocator.
const Maxslotsize = int64(512)

// Numpools number of slab classes in a bucket.
const Numpools = int64(64)

// Blocksize default size of blocks acquired from the OS allocator.
const Blocksize = int64(4096)

// Defaultsettings for mempool budget.
//
// "blocksize" (int64, default: <Blocksize>)
//		Size of blocks acquired from the OS allocator. Every slab
//		class carves its slots out of blocks of this size.
//
// "allocator" (string, default: "mutex")
//		Free-list serialization, can be "mutex" or "atom".
//
// "sysalloc" (string, default: "malloc")
//		OS allocation backend, can be "malloc" or "mmap". The
//		"mmap" backend is honoured only on unix builds.
//
// "capacity" (int64, default: free RAM)
//		Maximum number of bytes a bucket can acquire from the OS,
//		zero means unbounded.
func Defaultsettings() s.Settings {
	_, _, free := getsysmem()
	return s.Settings{
		"blocksize": Blocksize,
		"allocator": "mutex",
		"sysalloc":  "malloc",
		"capacity":  int64(free),
	}
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}
