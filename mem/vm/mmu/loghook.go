package mmu

import (
	"log"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/tlb"
	"github.com/sarchlab/mmusim/sim/hooking"
)

// A LogHook writes what an MMU does, one line per decision, with the steps of
// an access nested under it.
type LogHook struct {
	hooking.LogHookBase
}

// NewLogHook creates a LogHook that writes to logger.
func NewLogHook(logger *log.Logger) *LogHook {
	h := &LogHook{}
	h.Logger = logger

	return h
}

// Func writes the line for one hook invocation.
func (h *LogHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosAccessStart:
		a := ctx.Item.(Access)
		h.Logf("Memory Access at %s", a.VAddr)
		h.Begin()
	case HookPosTLBHit:
		h.Logf("TLB Hit")
	case HookPosTLBMiss:
		h.Logf("TLB Miss")
	case HookPosTLBEvict:
		evicted := ctx.Detail.(tlb.Translation)
		h.Logf("Evicting TLB Entry %s", evicted.VPN)
	case HookPosTLBFill:
		a := ctx.Item.(Access)
		h.Logf("New TLB Entry: %s -> %s", a.VAddr.PageNumber(),
			ctx.Detail.(vm.Frame).Base())
	case HookPosPageFault:
		h.Logf("Page Fault: %s", ctx.Detail.(*vm.PageFaultError))
	case HookPosL1Hit:
		h.Logf("Cache Hit")
	case HookPosL1Miss:
		h.Logf("Cache Miss")
		h.Logf("Loaded %s into cache.", ctx.Detail.(vm.PAddr))
	case HookPosL1Evict:
		h.Logf("Evicting L1 Entry: %s", ctx.Detail.(vm.PAddr))
	case HookPosAccessEnd:
		a := ctx.Item.(Access)
		if !a.Fault {
			h.Logf("Found physical address %s", a.PAddr)
		}
		h.End()
	case HookPosMapPage:
		e := ctx.Item.(PageTableEdit)
		h.Logf("Page-Table Edit at address %s: Mapping entry %03d to %s",
			e.Table.Base(), e.Index, e.Target.Base())
	case HookPosUnmapPage:
		e := ctx.Item.(PageTableEdit)
		h.Logf("Page-Table Edit at address %s: Unmapping entry %03d",
			e.Table.Base(), e.Index)
	case HookPosInvalidate:
		h.Logf("Invalidate %s", ctx.Item.(string))
	}
}
