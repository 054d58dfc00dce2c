package cmd

import (
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
)

// demoBase is the first address of the second of two homonym pages.
const demoBase = vm.VAddr(0x50000200000)

// buildDemoTopology maps root -> a at 10, a -> b at 0, b -> c at both 0 and 1
// so that two virtual pages share every leaf, and c -> ten fresh frames. It
// leaves the TLB empty.
func buildDemoTopology(m *mmu.Comp) error {
	a := m.NextFrame()
	b := m.NextFrame()
	c := m.NextFrame()

	edits := []mmu.PageTableEdit{
		{Table: m.Root(), Index: 10, Target: a},
		{Table: a, Index: 0, Target: b},
		{Table: b, Index: 0, Target: c},
		{Table: b, Index: 1, Target: c},
	}

	for i := 0; i < 10; i++ {
		edits = append(edits, mmu.PageTableEdit{
			Table:  c,
			Index:  i,
			Target: m.NextFrame(),
		})
	}

	for _, e := range edits {
		err := m.MapPage(e.Table, e.Index, e.Target)
		if err != nil {
			return err
		}
	}

	m.InvalidateTLB()

	return nil
}

// readSequence reads n addresses starting at base, stride bytes apart.
// Faults are counted by the MMU and otherwise ignored. Each read goes
// through do, which lets a caller serialize it with other users of m.
func readSequence(
	m *mmu.Comp,
	base vm.VAddr,
	stride uint64,
	n int,
	do func(func()),
) {
	for i := 0; i < n; i++ {
		vAddr := base + vm.VAddr(uint64(i)*stride)
		do(func() {
			_, _ = m.Read(vAddr)
		})
	}
}

func direct(f func()) {
	f()
}
