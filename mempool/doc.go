// Package mempool supplies slab-pooled memory management for
// small fixed-size objects, with a limited scope:
//
//   - Allocation requests up to Maxslotsize bytes are serviced from
//     size-classed slab pools, larger requests fall through to the
//     OS allocator.
//   - Pool memory is acquired from the OS in blocks of several
//     kilobytes and carved into equal sized slots. Freed slots are
//     recycled through per-class free lists.
//   - Once a block is acquired from OS it is not given back until
//     the owning bucket is Released.
//   - Memory handed out by this package lives outside the Go heap;
//     values stored in it must not hold pointers into the Go heap.
//   - Slots are always aligned to their slab size, which is itself
//     a multiple of the 8-byte link word.
//
// Bucket is a fixed table of 64 slab classes spaced Slotbase bytes
// apart, 8, 16, 24 ... 512. Two serialization flavours of the same
// bucket exist: "mutex" guards the free lists with locks, "atom"
// recycles slots through lock-free Treiber stacks. Process wide
// instances of both flavours are available through Mutexpools() and
// Atompools(), materialized once on first use.
package mempool
