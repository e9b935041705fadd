// Package alloc provides space management for the binary-table heap.
//
// Variable-length array columns store their elements in the heap that
// follows a table's main data. Each cell holds a descriptor (count, offset)
// pointing into the heap; this package hands out those offsets.
//
// # Allocator
//
// The [Allocator] type manages heap offsets with the following features:
//
//   - Append-only growth: New space is placed at the current end of the
//     heap, which is then advanced.
//   - First-fit reuse: Space released with [Allocator.Free] (for example when
//     a cell is rewritten with a longer array) is handed out again to later
//     requests that fit.
//   - Allocation tracking: Live allocations are recorded so [Allocator.Validate]
//     can detect overlaps.
//
// # Usage
//
// Create an allocator for an empty heap, or one sized to an existing heap:
//
//	a := alloc.New(0)
//	off := a.Alloc(24)  // 24 bytes at offset 0
//	a.Free(off, 24)     // cell rewritten elsewhere
//	a.Alloc(16)         // reuses offset 0
package alloc
