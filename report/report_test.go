package report

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mmusim/mem/cache"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/sarchlab/mmusim/mem/vm/tlb"
	"github.com/sarchlab/mmusim/sim/hooking"
)

var _ = Describe("Box", func() {
	It("should frame the content", func() {
		Expect(Box("Ab", "x\nyz")).To(Equal(
			"╭─Ab─────╮\n" +
				"│ x      │\n" +
				"│ yz     │\n" +
				"╰────────╯"))
	})

	It("should grow with the longest line", func() {
		Expect(Box("T", "0123456789\n")).To(Equal(
			"╭─T──────────╮\n" +
				"│ 0123456789 │\n" +
				"╰────────────╯"))
	})

	It("should draw an empty box", func() {
		Expect(Box("L1", "")).To(Equal("╭─L1─────╮\n╰────────╯"))
	})
})

var _ = Describe("PageMap", func() {
	It("should draw the tree", func() {
		pt := vm.NewPageTable()
		Expect(pt.Map(100, 10, 101)).To(Succeed())
		Expect(pt.Map(101, 0, 102)).To(Succeed())
		Expect(pt.Map(102, 0, 103)).To(Succeed())
		Expect(pt.Map(102, 1, 103)).To(Succeed())
		Expect(pt.Map(103, 0, 104)).To(Succeed())
		Expect(pt.Map(103, 1, 105)).To(Succeed())

		Expect(PageMap(pt, 100)).To(Equal(
			"010: [1 mapped entries]\n" +
				" | 000: [2 mapped entries]\n" +
				" |  | 000: [2 mapped entries]\n" +
				" |  |  | 000: V0x50000000000 -> P0x68000\n" +
				" |  |  | 001: V0x50000001000 -> P0x69000\n" +
				" |  | 001: [2 mapped entries]\n" +
				" |  |  | 000: V0x50000200000 -> P0x68000\n" +
				" |  |  | 001: V0x50000201000 -> P0x69000\n"))
	})

	It("should draw nothing for an empty root", func() {
		Expect(PageMap(vm.NewPageTable(), 100)).To(BeEmpty())
	})
})

var _ = Describe("TLB", func() {
	It("should list entries", func() {
		Expect(TLB([]tlb.Translation{
			{VPN: 0x50000200000, Frame: 104, AccessCount: 99},
			{VPN: 0x50000201000, Frame: 105, AccessCount: 1},
		})).To(Equal(
			"[V0x50000200000 -> P0x68000, 99]\n" +
				"[V0x50000201000 -> P0x69000, 1]\n"))
	})

	It("should mark an empty TLB", func() {
		Expect(TLB(nil)).To(Equal("(empty)"))
	})
})

var _ = Describe("L1", func() {
	It("should group lines by set", func() {
		Expect(L1([]cache.Line{
			{Addr: 0x68000, SetID: 0},
			{Addr: 0x69000, SetID: 0},
			{Addr: 0x68040, SetID: 1},
		})).To(Equal("00: P0x68000 P0x69000\n01: P0x68040\n"))
	})

	It("should draw nothing for an empty cache", func() {
		Expect(L1(nil)).To(BeEmpty())
	})
})

var _ = Describe("Stats", func() {
	It("should list the counters", func() {
		Expect(Stats(mmu.Stats{
			TLB:        mmu.CacheStats{Hit: 99, Miss: 1},
			L1:         mmu.CacheStats{Hit: 98, Miss: 2},
			PageFaults: 3,
		})).To(Equal(
			"TLB hits:    99\n" +
				"TLB misses:  1\n" +
				"L1 hits:     98\n" +
				"L1 misses:   2\n" +
				"Page Faults: 3"))
	})
})

var _ = Describe("Dump", func() {
	It("should write four boxes", func() {
		m := mmu.MakeBuilder().Build("MMU")
		f := m.NextFrame()
		Expect(m.MapPage(m.Root(), 0, f)).To(Succeed())
		_, _ = m.Read(0x10)

		buf := new(bytes.Buffer)
		Expect(Dump(buf, m)).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("╭─Pages"))
		Expect(buf.String()).To(ContainSubstring("│ 000: [0 mapped entries]"))
		Expect(buf.String()).To(ContainSubstring("│ (empty)"))
		Expect(buf.String()).To(ContainSubstring("╭─L1-Cache─────╮\n╰"))
		Expect(buf.String()).To(ContainSubstring("│ Page Faults: 1"))
	})
})

var _ = Describe("HookCounts", func() {
	It("should align the counts", func() {
		Expect(HookCounts([]hooking.PosCount{
			{Name: "AccessStart", Count: 100},
			{Name: "TLBMiss", Count: 2},
		})).To(Equal("AccessStart: 100\nTLBMiss:     2"))
	})

	It("should say when nothing fired", func() {
		Expect(HookCounts(nil)).To(Equal("(none)"))
	})
})
