// Package trace provides a hook that records the accesses of an MMU into a
// database.
package trace

import (
	"github.com/sarchlab/mmusim/datarecording"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/sarchlab/mmusim/sim/hooking"
)

// The tables a DBTracer writes to.
const (
	TableAccesses       = "mmu_accesses"
	TablePageTableEdits = "mmu_page_table_edits"
)

// AccessEntry represents a finished memory access in the database.
//
// VAddr keeps only the translated bits, since SQLite integers are signed.
type AccessEntry struct {
	ID       uint64 `json:"id"`
	Location string `json:"location"`
	Kind     string `json:"kind"`
	VAddr    uint64 `json:"vaddr"`
	PAddr    uint64 `json:"paddr"`
	TLBHit   bool   `json:"tlb_hit"`
	L1Hit    bool   `json:"l1_hit"`
	Fault    bool   `json:"fault"`
}

// PageTableEditEntry represents a page table edit in the database.
type PageTableEditEntry struct {
	Seq      uint64 `json:"seq"`
	Location string `json:"location"`
	Table    uint64 `json:"table"`
	Index    int    `json:"index"`
	Target   uint64 `json:"target"`
	Unmap    bool   `json:"unmap"`
}

// A DBTracer is a hook that records the accesses and page table edits of an
// MMU into a database using the data recorder.
type DBTracer struct {
	dataRecorder datarecording.DataRecorder
	numEdits     uint64
}

// NewDBTracer creates a new DBTracer and the tables it writes to.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(TableAccesses, AccessEntry{})
	t.dataRecorder.CreateTable(TablePageTableEdits, PageTableEditEntry{})

	return t
}

// Func records finished accesses and page table edits. Other positions are
// ignored.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case mmu.HookPosAccessEnd:
		t.recordAccess(ctx)
	case mmu.HookPosMapPage, mmu.HookPosUnmapPage:
		t.recordEdit(ctx)
	}
}

func (t *DBTracer) recordAccess(ctx hooking.HookCtx) {
	a, ok := ctx.Item.(mmu.Access)
	if !ok {
		return
	}

	t.dataRecorder.InsertData(TableAccesses, AccessEntry{
		ID:       a.ID,
		Location: location(ctx),
		Kind:     string(a.Kind),
		VAddr:    uint64(a.VAddr) & (1<<vm.VAddrBits - 1),
		PAddr:    uint64(a.PAddr),
		TLBHit:   a.TLBHit,
		L1Hit:    a.L1Hit,
		Fault:    a.Fault,
	})
}

func (t *DBTracer) recordEdit(ctx hooking.HookCtx) {
	e, ok := ctx.Item.(mmu.PageTableEdit)
	if !ok {
		return
	}

	t.dataRecorder.InsertData(TablePageTableEdits, PageTableEditEntry{
		Seq:      t.numEdits,
		Location: location(ctx),
		Table:    uint64(e.Table),
		Index:    e.Index,
		Target:   uint64(e.Target),
		Unmap:    ctx.Pos == mmu.HookPosUnmapPage,
	})
	t.numEdits++
}

func location(ctx hooking.HookCtx) string {
	if ctx.Domain == nil {
		return ""
	}

	return ctx.Domain.Name()
}
