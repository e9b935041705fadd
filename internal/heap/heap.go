package heap

import (
	"fmt"

	"github.com/robert-malhotra/go-afw/internal/alloc"
	"github.com/robert-malhotra/go-afw/internal/binary"
)

// Descriptor locates a variable-length array in the heap.
type Descriptor struct {
	Count  int64 // Number of elements
	Offset int64 // Byte offset from the start of the heap
}

// DescriptorSize returns the encoded size of a descriptor: 8 bytes for P
// columns, 16 for Q columns.
func DescriptorSize(long bool) int {
	if long {
		return 16
	}
	return 8
}

// ParseDescriptor decodes a descriptor from a table cell.
func ParseDescriptor(data []byte, long bool) (Descriptor, error) {
	r := binary.NewReader(binary.NewBuffer(data))
	if long {
		count, err := r.ReadInt64()
		if err != nil {
			return Descriptor{}, fmt.Errorf("reading descriptor count: %w", err)
		}
		offset, err := r.ReadInt64()
		if err != nil {
			return Descriptor{}, fmt.Errorf("reading descriptor offset: %w", err)
		}
		return Descriptor{Count: count, Offset: offset}, nil
	}

	count, err := r.ReadInt32()
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading descriptor count: %w", err)
	}
	offset, err := r.ReadInt32()
	if err != nil {
		return Descriptor{}, fmt.Errorf("reading descriptor offset: %w", err)
	}
	return Descriptor{Count: int64(count), Offset: int64(offset)}, nil
}

// PutDescriptor encodes d into the first DescriptorSize(long) bytes of cell.
func PutDescriptor(cell []byte, d Descriptor, long bool) error {
	if len(cell) < DescriptorSize(long) {
		return fmt.Errorf("descriptor cell too small: %d bytes", len(cell))
	}
	if long {
		binary.Order.PutUint64(cell[0:], uint64(d.Count))
		binary.Order.PutUint64(cell[8:], uint64(d.Offset))
		return nil
	}
	if d.Count > 0x7FFFFFFF || d.Offset > 0x7FFFFFFF {
		return fmt.Errorf("descriptor (%d, %d) exceeds 32-bit P format", d.Count, d.Offset)
	}
	binary.Order.PutUint32(cell[0:], uint32(d.Count))
	binary.Order.PutUint32(cell[4:], uint32(d.Offset))
	return nil
}

// Heap is the in-memory heap area of one binary table.
type Heap struct {
	buf   *binary.Buffer
	alloc *alloc.Allocator
}

// New creates a heap holding the given existing bytes.
func New(data []byte) *Heap {
	return &Heap{
		buf:   binary.NewBuffer(data),
		alloc: alloc.New(int64(len(data))),
	}
}

// Size returns the heap size in bytes (the table's PCOUNT).
func (h *Heap) Size() int64 {
	return h.alloc.End()
}

// Unused returns the number of bytes inside the heap released by
// rewritten cells and not yet reused.
func (h *Heap) Unused() int64 {
	var n int64
	for _, blk := range h.alloc.FreeBlocks() {
		n += blk.Size
	}
	return n
}

// Validate checks that the arrays stored since the heap was loaded lie
// inside it and do not overlap.
func (h *Heap) Validate() error {
	if err := h.alloc.Validate(); err != nil {
		return fmt.Errorf("heap: %w", err)
	}
	return nil
}

// Bytes returns the heap contents.
func (h *Heap) Bytes() []byte {
	data := h.buf.Bytes()
	if int64(len(data)) > h.Size() {
		data = data[:h.Size()]
	}
	return data
}

// Load returns the n bytes referenced by d.
func (h *Heap) Load(d Descriptor, n int64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if d.Offset < 0 || n < 0 || d.Offset+n > h.Size() {
		return nil, fmt.Errorf("heap range [%d, %d) outside heap of %d bytes", d.Offset, d.Offset+n, h.Size())
	}
	return binary.NewReader(h.buf).At(d.Offset).ReadBytes(int(n))
}

// Store writes payload as a count-element array and returns its descriptor.
// old and oldBytes describe the cell's previous array; its space is reused
// when the payload fits and released otherwise.
func (h *Heap) Store(old Descriptor, oldBytes int64, payload []byte, count int64) (Descriptor, error) {
	n := int64(len(payload))
	if n == 0 {
		if oldBytes > 0 {
			h.alloc.Free(old.Offset, oldBytes)
		}
		return Descriptor{Count: count}, nil
	}

	var offset int64
	switch {
	case oldBytes >= n:
		offset = old.Offset
		if oldBytes > n {
			h.alloc.Free(old.Offset+n, oldBytes-n)
		}
	default:
		if oldBytes > 0 {
			h.alloc.Free(old.Offset, oldBytes)
		}
		offset = h.alloc.Alloc(n)
	}

	if err := binary.NewWriter(h.buf).At(offset).WriteBytes(payload); err != nil {
		return Descriptor{}, fmt.Errorf("writing heap: %w", err)
	}
	return Descriptor{Count: count, Offset: offset}, nil
}
