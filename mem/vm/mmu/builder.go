package mmu

import (
	"github.com/sarchlab/mmusim/mem/cache"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/tlb"
)

// A Builder can build MMU component
type Builder struct {
	firstFrame   vm.Frame
	pageTable    vm.PageTable
	tlbNumSets   int
	tlbNumWays   int
	l1NumSets    int
	l1NumWays    int
	l1ByteSize   uint64
	l1SizeBySets bool
}

// MakeBuilder creates a new builder. By default, frames are numbered from
// 100, the TLB has 128 sets of 4 ways, and the L1 cache is 32 KB, 8-way set
// associative with 64-byte lines.
func MakeBuilder() Builder {
	return Builder{
		firstFrame: 100,
		tlbNumSets: 128,
		tlbNumWays: 4,
		l1NumWays:  8,
		l1ByteSize: 32 * 1024,
	}
}

// WithFirstFrame sets the first frame the frame allocator hands out. The
// root table takes that frame.
func (b Builder) WithFirstFrame(f vm.Frame) Builder {
	b.firstFrame = f
	return b
}

// WithPageTable sets the page table that the MMU uses.
func (b Builder) WithPageTable(pageTable vm.PageTable) Builder {
	b.pageTable = pageTable
	return b
}

// WithTLBNumSets sets the number of sets of the TLB.
func (b Builder) WithTLBNumSets(n int) Builder {
	b.tlbNumSets = n
	return b
}

// WithTLBNumWays sets the number of ways of the TLB. Zero means unbounded.
func (b Builder) WithTLBNumWays(n int) Builder {
	b.tlbNumWays = n
	return b
}

// WithL1ByteSize sets the capacity of the L1 cache.
func (b Builder) WithL1ByteSize(byteSize uint64) Builder {
	b.l1ByteSize = byteSize
	b.l1SizeBySets = false

	return b
}

// WithL1NumSets sets the number of sets of the L1 cache, overriding the
// byte size.
func (b Builder) WithL1NumSets(n int) Builder {
	b.l1NumSets = n
	b.l1SizeBySets = true

	return b
}

// WithL1WayAssociativity sets the number of ways of the L1 cache. Zero means
// unbounded, which requires WithL1NumSets.
func (b Builder) WithL1WayAssociativity(n int) Builder {
	b.l1NumWays = n
	return b
}

// Build creates an MMU. Its root table is the first frame of its allocator.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		name:      name,
		frames:    vm.NewFrameAllocator(b.firstFrame),
		pageTable: b.pageTable,
	}

	if c.pageTable == nil {
		c.pageTable = vm.NewPageTable()
	}

	c.tlb = tlb.MakeBuilder().
		WithNumSets(b.tlbNumSets).
		WithNumWays(b.tlbNumWays).
		Build(name + ".TLB")

	l1Builder := cache.MakeBuilder().WithWayAssociativity(b.l1NumWays)
	if b.l1SizeBySets {
		l1Builder = l1Builder.WithNumSets(b.l1NumSets)
	} else {
		l1Builder = l1Builder.WithByteSize(b.l1ByteSize)
	}

	c.l1 = l1Builder.Build(name + ".L1")

	c.root = c.frames.Next()

	return c
}
