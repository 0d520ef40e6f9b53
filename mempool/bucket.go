package mempool

import "fmt"
import "sync"
import "sync/atomic"
import "unsafe"

import s "github.com/prataprc/gosettings"
import "github.com/dustin/go-humanize"

import "github.com/bnclabs/goslab/api"
import "github.com/bnclabs/goslab/lib"

// Bucket a fixed table of Numpools slab classes of sizes Slotbase,
// 2*Slotbase ... Maxslotsize, routing allocation requests by size.
// Requests larger than Maxslotsize bypass the table and go straight
// to the OS allocator. Buckets are safe for concurrent use, teardown
// through Release must be externally quiesced.
type Bucket struct {
	heap int64 // 64-bit aligned, bytes acquired from OS by slab classes

	name      string
	logprefix string
	slabs     [Numpools]api.MemoryPool
	sys       sysallocator
	setts     s.Settings

	// configuration
	blocksize int64
	capacity  int64
	allocator string
}

// NewBucket create a bucket of slab pools. Settings missing from
// setts are picked up from Defaultsettings().
func NewBucket(name string, setts s.Settings) *Bucket {
	bucket := &Bucket{name: name}
	bucket.logprefix = fmt.Sprintf("BUCK [%s]", name)

	setts = make(s.Settings).Mixin(Defaultsettings(), setts)
	bucket.blocksize = setts.Int64("blocksize")
	bucket.capacity = setts.Int64("capacity")
	bucket.allocator = setts.String("allocator")
	bucket.sys = newsysallocator(setts.String("sysalloc"))
	bucket.setts = setts

	for i := int64(0); i < Numpools; i++ {
		slotsize := (i + 1) * Slotbase
		switch bucket.allocator {
		case "mutex":
			pool := &poolmutex{}
			pool.init(
				slotsize, bucket.blocksize, bucket.capacity,
				&bucket.heap, bucket.sys)
			bucket.slabs[i] = pool
		case "atom":
			pool := &poolatom{}
			pool.init(
				slotsize, bucket.blocksize, bucket.capacity,
				&bucket.heap, bucket.sys)
			bucket.slabs[i] = pool
		default:
			panicerr("invalid allocator setting %q", bucket.allocator)
		}
	}
	infof("%v started with %v slabs of %v byte blocks\n",
		bucket.logprefix, Numpools, bucket.blocksize)
	return bucket
}

//---- operations

// Alloc implement api.Mallocer{} interface. Zero or negative sizes
// return nil, oversized requests are serviced by the OS allocator.
func (bucket *Bucket) Alloc(n int64) unsafe.Pointer {
	if n <= 0 {
		return nil
	} else if n > Maxslotsize {
		ptr := bucket.sys.alloc(n)
		if ptr == nil {
			panic(ErrorAllocfailure)
		}
		initblock(uintptr(ptr), n)
		return ptr
	}
	return bucket.slabs[(n+Slotbase-1)/Slotbase-1].Allocchunk()
}

// Free implement api.Mallocer{} interface. Callers shall supply the
// same size that was passed to Alloc, or any size mapping to the
// same slab class.
func (bucket *Bucket) Free(ptr unsafe.Pointer, n int64) {
	if ptr == nil {
		return
	} else if n > Maxslotsize {
		bucket.sys.free(ptr)
		return
	}
	bucket.slabs[(n+Slotbase-1)/Slotbase-1].Free(ptr)
}

// Release implement api.Mallocer{} interface. Walks every slab class
// and returns all blocks to the OS. Callers must have quiesced all
// allocators on this bucket.
func (bucket *Bucket) Release() {
	for _, pool := range bucket.slabs {
		pool.Release()
	}
	infof("%v released\n", bucket.logprefix)
}

//---- statistics and maintenance

// Slabs implement api.Mallocer{} interface, the allocatable slab
// sizes in ascending order.
func (bucket *Bucket) Slabs() []int64 {
	sizes := make([]int64, Numpools)
	for i := int64(0); i < Numpools; i++ {
		sizes[i] = (i + 1) * Slotbase
	}
	return sizes
}

// Slabsize implement api.Mallocer{} interface, the slab size that
// would service an `n` byte request, zero for oversized requests.
func (bucket *Bucket) Slabsize(n int64) int64 {
	if n <= 0 || n > Maxslotsize {
		return 0
	}
	return ((n + Slotbase - 1) / Slotbase) * Slotbase
}

// Info implement api.Mallocer{} interface, memory accounting summed
// over all slab classes.
func (bucket *Bucket) Info() (capacity, heap, alloc, overhead int64) {
	capacity = bucket.capacity
	for _, pool := range bucket.slabs {
		_, h, a, o := pool.Info()
		heap, alloc, overhead = heap+h, alloc+a, overhead+o
	}
	return
}

// Utilization implement api.Mallocer{} interface, per slab-class
// utilization in percent, only for classes that have acquired memory.
func (bucket *Bucket) Utilization() ([]int, []float64) {
	ss, zs := make([]int, 0, Numpools), make([]float64, 0, Numpools)
	for _, pool := range bucket.slabs {
		_, heap, alloc, _ := pool.Info()
		if heap == 0 {
			continue
		}
		ss = append(ss, int(pool.Slabsize()))
		zs = append(zs, (float64(alloc)/float64(heap))*100)
	}
	return ss, zs
}

// Logstatistics humanized accounting of this bucket.
func (bucket *Bucket) Logstatistics() {
	capacity, heap, alloc, overhead := bucket.Info()
	infof("%v capacity: %v heap: %v alloc: %v overhead: %v\n",
		bucket.logprefix,
		humanize.Bytes(uint64(capacity)), humanize.Bytes(uint64(heap)),
		humanize.Bytes(uint64(alloc)), humanize.Bytes(uint64(overhead)))

	ut := &lib.Welford{}
	ss, zs := bucket.Utilization()
	for i, size := range ss {
		ut.Sample(zs[i])
		verbosef("%v slab %5v utilization %.2f%%\n",
			bucket.logprefix, size, zs[i])
	}
	if ut.Count() > 0 {
		infof("%v utilization over %v active slabs: "+
			"mean %.2f%% min %.2f%% max %.2f%% sd %.2f\n",
			bucket.logprefix, ut.Count(), ut.Mean(), ut.Min(), ut.Max(),
			ut.SD())
	}
}

func (bucket *Bucket) logheap() int64 {
	return atomic.LoadInt64(&bucket.heap)
}

//---- process wide buckets

var mutexbucket *Bucket
var mutexonce sync.Once

var atombucket *Bucket
var atomonce sync.Once

// Mutexpools the process wide bucket of mutex serialized slab pools,
// materialized exactly once on first call, concurrent first callers
// wait for the initializer to finish.
func Mutexpools() *Bucket {
	mutexonce.Do(func() {
		setts := s.Settings{"allocator": "mutex"}
		mutexbucket = NewBucket("mutex", setts)
	})
	return mutexbucket
}

// Atompools the process wide bucket of lock-free slab pools,
// materialized exactly once on first call.
func Atompools() *Bucket {
	atomonce.Do(func() {
		setts := s.Settings{"allocator": "atom"}
		atombucket = NewBucket("atom", setts)
	})
	return atombucket
}
