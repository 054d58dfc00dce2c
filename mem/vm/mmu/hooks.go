package mmu

import (
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/sim/hooking"
)

// The positions at which an MMU invokes its hooks. Every access is bracketed
// by HookPosAccessStart and HookPosAccessEnd, and the Item of every access
// position is the Access.
var (
	HookPosAccessStart = &hooking.HookPos{Name: "AccessStart"}
	HookPosTLBHit      = &hooking.HookPos{Name: "TLBHit"}
	HookPosTLBMiss     = &hooking.HookPos{Name: "TLBMiss"}
	HookPosTLBFill     = &hooking.HookPos{Name: "TLBFill"}
	HookPosTLBEvict    = &hooking.HookPos{Name: "TLBEvict"}
	HookPosPageFault   = &hooking.HookPos{Name: "PageFault"}
	HookPosL1Hit       = &hooking.HookPos{Name: "L1Hit"}
	HookPosL1Miss      = &hooking.HookPos{Name: "L1Miss"}
	HookPosL1Evict     = &hooking.HookPos{Name: "L1Evict"}
	HookPosAccessEnd   = &hooking.HookPos{Name: "AccessEnd"}

	// HookPosMapPage and HookPosUnmapPage carry a PageTableEdit as their
	// Item.
	HookPosMapPage   = &hooking.HookPos{Name: "MapPage"}
	HookPosUnmapPage = &hooking.HookPos{Name: "UnmapPage"}

	// HookPosInvalidate carries the name of the invalidated cache.
	HookPosInvalidate = &hooking.HookPos{Name: "Invalidate"}
)

// AccessKind tells reads, writes and translate-only accesses apart.
type AccessKind string

// The kinds of accesses. An AccessTranslate never reaches the L1 cache.
const (
	AccessRead      AccessKind = "read"
	AccessWrite     AccessKind = "write"
	AccessTranslate AccessKind = "translate"
)

// An Access describes one memory access as it goes through the MMU. Fields
// are filled in as the access progresses.
type Access struct {
	ID     uint64
	Kind   AccessKind
	VAddr  vm.VAddr
	PAddr  vm.PAddr
	TLBHit bool
	L1Hit  bool
	Fault  bool
}

// A PageTableEdit describes one MapPage or UnmapPage call. Target is zero
// for an unmap.
type PageTableEdit struct {
	Table  vm.Frame
	Index  int
	Target vm.Frame
}

func (c *Comp) invoke(pos *hooking.HookPos, item, detail any) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}
