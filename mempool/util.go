package mempool

import "fmt"
import "errors"

// ErrorAllocfailure OS allocator refused a new block, or the block
// geometry cannot host even a single slot.
var ErrorAllocfailure = errors.New("mempool.allocfailure")

// ErrorOutofMemory bucket exhausted its configured capacity.
var ErrorOutofMemory = errors.New("mempool.outofmemory")

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}

var poolblkinit = make([]byte, 1024)
var zeroblkinit = make([]byte, 1024)

func init() {
	for i := 0; i < len(poolblkinit); i++ {
		poolblkinit[i] = 0xff
	}
}
