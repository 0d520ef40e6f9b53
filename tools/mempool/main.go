package main

import "flag"
import "fmt"
import "math/rand"
import "sync"
import "time"
import "unsafe"

import "github.com/bnclabs/golog"
import s "github.com/prataprc/gosettings"
import "github.com/dustin/go-humanize"

import "github.com/bnclabs/goslab/mempool"

var options struct {
	allocator string
	routines  int
	count     int
	minsize   int
	maxsize   int
	blocksize int
	seed      int
	log       string
}

func argParse() {
	seed := time.Now().UnixNano() % 1000000
	flag.StringVar(&options.allocator, "allocator", "both",
		"serialization flavour to soak, mutex | atom | both")
	flag.IntVar(&options.routines, "routines", 8,
		"number of concurrent routines")
	flag.IntVar(&options.count, "count", 100000,
		"number of alloc-free pairs per routine")
	flag.IntVar(&options.minsize, "minsize", 1,
		"smallest allocation request")
	flag.IntVar(&options.maxsize, "maxsize", 512,
		"largest allocation request")
	flag.IntVar(&options.blocksize, "blocksize", int(mempool.Blocksize),
		"size of blocks acquired from the OS")
	flag.IntVar(&options.seed, "seed", int(seed),
		"seed for the workload size distribution")
	flag.StringVar(&options.log, "log", "info",
		"log level, ignore | info | verbose | debug")
	flag.Parse()

	setts := map[string]interface{}{
		"log.level":      options.log,
		"log.colorfatal": "red",
		"log.colorerror": "hired",
		"log.colorwarn":  "yellow",
	}
	log.SetLogger(nil, setts)
	mempool.LogComponents("all")
}

func main() {
	argParse()
	switch options.allocator {
	case "mutex", "atom":
		soak(options.allocator)
	case "both":
		soak("mutex")
		soak("atom")
	default:
		fmt.Printf("invalid -allocator %q\n", options.allocator)
	}
}

func soak(allocator string) {
	setts := s.Settings{
		"allocator": allocator,
		"blocksize": int64(options.blocksize),
	}
	bucket := mempool.NewBucket(allocator, setts)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < options.routines; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			soakroutine(bucket, seed)
		}(int64(options.seed) + int64(i))
	}
	wg.Wait()
	elapsed := time.Since(start)

	pairs := int64(options.routines) * int64(options.count)
	rate := float64(pairs) / elapsed.Seconds()
	fmt.Printf("%v: %v alloc-free pairs across %v routines in %v (%v/s)\n",
		allocator, humanize.Comma(pairs), options.routines,
		elapsed.Round(time.Millisecond),
		humanize.Comma(int64(rate)))
	bucket.Logstatistics()
	bucket.Release()
}

func soakroutine(bucket *mempool.Bucket, seed int64) {
	rnd := rand.New(rand.NewSource(seed))
	spread := options.maxsize - options.minsize + 1
	chunks := make([]chunk, 0, 64)
	for i := 0; i < options.count; i++ {
		n := int64(options.minsize + rnd.Intn(spread))
		chunks = append(chunks, chunk{ptr: bucket.Alloc(n), size: n})
		if len(chunks) == cap(chunks) {
			for _, c := range chunks {
				bucket.Free(c.ptr, c.size)
			}
			chunks = chunks[:0]
		}
	}
	for _, c := range chunks {
		bucket.Free(c.ptr, c.size)
	}
}

type chunk struct {
	ptr  unsafe.Pointer
	size int64
}
