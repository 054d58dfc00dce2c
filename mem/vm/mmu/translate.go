package mmu

import (
	"errors"

	"github.com/sarchlab/mmusim/mem/vm"
)

// Read simulates a read of vAddr and returns the physical address it
// reaches. If the page is not mapped, the error is a *vm.PageFaultError and
// neither the TLB nor the L1 cache is changed.
func (c *Comp) Read(vAddr vm.VAddr) (vm.PAddr, error) {
	return c.access(AccessRead, vAddr)
}

// Write simulates a write of vAddr. It takes the same path as Read.
func (c *Comp) Write(vAddr vm.VAddr) (vm.PAddr, error) {
	return c.access(AccessWrite, vAddr)
}

// Translate resolves vAddr through the TLB and the page table without
// touching the L1 cache.
func (c *Comp) Translate(vAddr vm.VAddr) (vm.PAddr, error) {
	a := c.startAccess(AccessTranslate, vAddr)
	pAddr, err := c.translate(&a)
	c.invoke(HookPosAccessEnd, a, nil)

	return pAddr, err
}

func (c *Comp) startAccess(kind AccessKind, vAddr vm.VAddr) Access {
	a := Access{
		ID:    c.nextAccessID,
		Kind:  kind,
		VAddr: vAddr,
	}
	c.nextAccessID++

	c.invoke(HookPosAccessStart, a, nil)

	return a
}

func (c *Comp) access(kind AccessKind, vAddr vm.VAddr) (vm.PAddr, error) {
	a := c.startAccess(kind, vAddr)

	pAddr, err := c.translate(&a)
	if err != nil {
		c.invoke(HookPosAccessEnd, a, nil)
		return 0, err
	}

	c.accessLine(&a)
	c.invoke(HookPosAccessEnd, a, nil)

	return pAddr, nil
}

func (c *Comp) translate(a *Access) (vm.PAddr, error) {
	vpn := a.VAddr.PageNumber()

	frame, found := c.tlb.Lookup(vpn)
	if found {
		c.stats.TLB.hit()
		a.TLBHit = true
		c.invoke(HookPosTLBHit, *a, frame)
	} else {
		c.stats.TLB.miss()
		c.invoke(HookPosTLBMiss, *a, nil)

		var err error

		frame, err = c.walk(a)
		if err != nil {
			return 0, err
		}
	}

	a.PAddr = vm.MakePAddr(frame, a.VAddr.Offset())

	return a.PAddr, nil
}

func (c *Comp) walk(a *Access) (vm.Frame, error) {
	vpn := a.VAddr.PageNumber()

	frame, err := c.pageTable.Walk(c.root, a.VAddr)
	if err != nil {
		var fault *vm.PageFaultError
		if errors.As(err, &fault) {
			c.stats.PageFaults++
			a.Fault = true
			c.invoke(HookPosPageFault, *a, fault)
		}

		return 0, err
	}

	evicted, hasEvicted := c.tlb.Insert(vpn, frame)
	if hasEvicted {
		c.invoke(HookPosTLBEvict, *a, evicted)
	}

	c.invoke(HookPosTLBFill, *a, frame)

	return frame, nil
}

func (c *Comp) accessLine(a *Access) {
	lineAddr := a.PAddr.LineAddr()

	if c.l1.Lookup(lineAddr) {
		c.stats.L1.hit()
		a.L1Hit = true
		c.invoke(HookPosL1Hit, *a, lineAddr)

		return
	}

	c.stats.L1.miss()
	c.invoke(HookPosL1Miss, *a, lineAddr)

	evicted, hasEvicted := c.l1.Insert(lineAddr)
	if hasEvicted {
		c.invoke(HookPosL1Evict, *a, evicted)
	}
}
