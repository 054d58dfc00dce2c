// Package mmu provides the memory management unit model: a page table walked
// from a root frame, a TLB in front of it, and an L1 line cache behind it.
package mmu

import (
	"github.com/sarchlab/mmusim/mem/cache"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/tlb"
	"github.com/sarchlab/mmusim/sim/hooking"
)

// Comp is the default mmu implementation. One Comp owns its page table,
// frame allocator, caches and counters. It is not safe for concurrent use.
type Comp struct {
	hooking.HookableBase

	name string

	root      vm.Frame
	frames    *vm.FrameAllocator
	pageTable vm.PageTable
	tlb       *tlb.Comp
	l1        *cache.Comp

	stats        Stats
	nextAccessID uint64
}

// Name returns the name of the MMU.
func (c *Comp) Name() string {
	return c.name
}

// NextFrame returns a frame that has never been returned before.
func (c *Comp) NextFrame() vm.Frame {
	return c.frames.Next()
}

// Root returns the frame of the top-level table.
func (c *Comp) Root() vm.Frame {
	return c.root
}

// SetRoot changes the top-level table used by later translations. Cached
// translations are kept.
func (c *Comp) SetRoot(root vm.Frame) {
	c.root = root
}

// MapPage makes entry index of the table in frame table point to target.
func (c *Comp) MapPage(table vm.Frame, index int, target vm.Frame) error {
	err := c.pageTable.Map(table, index, target)
	if err != nil {
		return err
	}

	c.invoke(HookPosMapPage, PageTableEdit{
		Table:  table,
		Index:  index,
		Target: target,
	}, nil)

	return nil
}

// UnmapPage clears entry index of the table in frame table. Translations
// already held by the TLB are kept until it is invalidated.
func (c *Comp) UnmapPage(table vm.Frame, index int) error {
	err := c.pageTable.Unmap(table, index)
	if err != nil {
		return err
	}

	c.invoke(HookPosUnmapPage, PageTableEdit{
		Table: table,
		Index: index,
	}, nil)

	return nil
}

// InvalidateTLB drops every cached translation.
func (c *Comp) InvalidateTLB() {
	c.tlb.Reset()
	c.invoke(HookPosInvalidate, c.tlb.Name(), nil)
}

// InvalidateCache drops every cached line.
func (c *Comp) InvalidateCache() {
	c.l1.Reset()
	c.invoke(HookPosInvalidate, c.l1.Name(), nil)
}

// ResetStats zeroes all the counters.
func (c *Comp) ResetStats() {
	c.stats = Stats{}
}

// Stats returns a copy of the counters.
func (c *Comp) Stats() Stats {
	return c.stats
}

// PageTable gives read-only access to the page table.
func (c *Comp) PageTable() vm.PageTableReader {
	return pageTableView{c.pageTable}
}

// TLBEntries returns the translations currently held by the TLB.
func (c *Comp) TLBEntries() []tlb.Translation {
	return c.tlb.Entries()
}

// CacheLines returns the lines currently held by the L1 cache.
func (c *Comp) CacheLines() []cache.Line {
	return c.l1.Lines()
}

// pageTableView hides the mutating methods of the page table.
type pageTableView struct {
	pt vm.PageTableReader
}

func (v pageTableView) Lookup(table vm.Frame, index int) (vm.Frame, bool) {
	return v.pt.Lookup(table, index)
}

func (v pageTableView) Entries(table vm.Frame) []vm.PTE {
	return v.pt.Entries(table)
}

func (v pageTableView) Tables() []vm.Frame {
	return v.pt.Tables()
}

func (v pageTableView) NumEntries() int {
	return v.pt.NumEntries()
}
