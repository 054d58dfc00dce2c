package vm

// Frame names a page-sized unit of physical memory. Frame numbers and
// physical addresses share the same page-aligned numbering.
type Frame uint64

// Base returns the physical address of the first byte of the frame.
func (f Frame) Base() PAddr {
	return PAddr(uint64(f) << Log2PageSize)
}

// A FrameAllocator issues frames that have never been issued before.
type FrameAllocator struct {
	next Frame
}

// NewFrameAllocator creates an allocator whose first frame is first.
func NewFrameAllocator(first Frame) *FrameAllocator {
	return &FrameAllocator{next: first}
}

// Next returns a fresh frame.
func (a *FrameAllocator) Next() Frame {
	f := a.next
	a.next++

	return f
}

// Peek returns the frame the next call to Next will return.
func (a *FrameAllocator) Peek() Frame {
	return a.next
}
