package alloc

import (
	"fmt"
	"sort"
)

// Allocator manages space allocation within a binary-table heap.
type Allocator struct {
	// end is the current end of the heap (next append point)
	end int64

	// allocations tracks live allocations keyed by offset
	allocations map[int64]int64

	// freeBlocks holds released space, sorted by offset
	freeBlocks []FreeBlock
}

// FreeBlock represents a released block of heap space.
type FreeBlock struct {
	Offset int64
	Size   int64
}

// New creates an allocator for a heap that already holds size bytes.
// Existing bytes are in use but untracked, so only later allocations take
// part in validation.
func New(size int64) *Allocator {
	return &Allocator{
		end:         size,
		allocations: make(map[int64]int64),
	}
}

// Alloc allocates a block of the given size and returns its heap offset.
// Released blocks are reused first-fit before the heap is grown.
func (a *Allocator) Alloc(size int64) int64 {
	if size <= 0 {
		return 0
	}

	for i, blk := range a.freeBlocks {
		if blk.Size < size {
			continue
		}
		off := blk.Offset
		if blk.Size == size {
			a.freeBlocks = append(a.freeBlocks[:i], a.freeBlocks[i+1:]...)
		} else {
			a.freeBlocks[i] = FreeBlock{Offset: off + size, Size: blk.Size - size}
		}
		a.allocations[off] = size
		return off
	}

	off := a.end
	a.end += size
	a.allocations[off] = size
	return off
}

// Free releases a block for reuse. Adjacent free blocks are merged, and a
// block ending at the heap end shrinks the heap.
func (a *Allocator) Free(offset, size int64) {
	if size <= 0 {
		return
	}
	delete(a.allocations, offset)

	a.freeBlocks = append(a.freeBlocks, FreeBlock{Offset: offset, Size: size})
	sort.Slice(a.freeBlocks, func(i, j int) bool {
		return a.freeBlocks[i].Offset < a.freeBlocks[j].Offset
	})

	merged := a.freeBlocks[:0]
	for _, blk := range a.freeBlocks {
		if n := len(merged); n > 0 && merged[n-1].Offset+merged[n-1].Size >= blk.Offset {
			if e := blk.Offset + blk.Size; e > merged[n-1].Offset+merged[n-1].Size {
				merged[n-1].Size = e - merged[n-1].Offset
			}
			continue
		}
		merged = append(merged, blk)
	}
	a.freeBlocks = merged

	if n := len(a.freeBlocks); n > 0 {
		if last := a.freeBlocks[n-1]; last.Offset+last.Size == a.end {
			a.end = last.Offset
			a.freeBlocks = a.freeBlocks[:n-1]
		}
	}
}

// End returns the current heap size.
func (a *Allocator) End() int64 {
	return a.end
}

// FreeBlocks returns a copy of the released blocks inside the heap, in
// offset order.
func (a *Allocator) FreeBlocks() []FreeBlock {
	result := make([]FreeBlock, len(a.freeBlocks))
	copy(result, a.freeBlocks)
	return result
}

// Validate checks that live allocations don't overlap and are within bounds.
func (a *Allocator) Validate() error {
	offsets := make([]int64, 0, len(a.allocations))
	for off := range a.allocations {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	for i, off := range offsets {
		size := a.allocations[off]
		if off < 0 {
			return fmt.Errorf("allocation at %d is before heap start", off)
		}
		if off+size > a.end {
			return fmt.Errorf("allocation at %d size %d extends past heap end %d", off, size, a.end)
		}
		if i+1 < len(offsets) && off+size > offsets[i+1] {
			return fmt.Errorf("overlapping allocations: [%d, size %d] and [%d, size %d]",
				off, size, offsets[i+1], a.allocations[offsets[i+1]])
		}
	}
	return nil
}
