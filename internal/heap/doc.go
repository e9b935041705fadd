// Package heap implements the binary-table heap that stores variable-length
// array cells.
//
// A variable-length column does not hold its elements in the row. Instead
// each cell is a [Descriptor], a (count, offset) pair, and the elements live
// in the heap area that follows the table's main data. Two descriptor
// encodings exist:
//
//	TFORM code | Descriptor layout
//	-----------|----------------------------------
//	P          | count int32, offset int32 (8 bytes)
//	Q          | count int64, offset int64 (16 bytes)
//
// Offsets are relative to the start of the heap.
//
// # Usage
//
//	h := heap.New(existingHeapBytes)
//	d, err := h.Store(heap.Descriptor{}, 0, payload, count)
//	data, err := h.Load(d, int64(len(payload)))
//
// Rewriting a cell with a payload that no longer fits releases the old
// space to the [alloc.Allocator] for reuse.
package heap
