package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Addresses", func() {
	It("should split a virtual address into level indices", func() {
		addr := VAddr(0x50000200000)

		Expect(addr.Indices()).To(Equal([NumLevels]int{10, 0, 1, 0}))
		Expect(addr.Offset()).To(Equal(uint64(0)))
	})

	It("should take the offset from the low 12 bits", func() {
		addr := VAddr(0x50000200abc)

		Expect(addr.Offset()).To(Equal(uint64(0xabc)))
		Expect(addr.PageNumber()).To(Equal(VAddr(0x50000200000)))
	})

	It("should compose addresses from indices", func() {
		addr := MakeVAddr([NumLevels]int{511, 2, 3, 4}, 0x10)

		Expect(addr.Indices()).To(Equal([NumLevels]int{511, 2, 3, 4}))
		Expect(addr.Offset()).To(Equal(uint64(0x10)))
	})

	It("should ignore bits above 48", func() {
		addr := VAddr(0xffff000000000000 | 0x50000200abc)

		Expect(VAddrBits).To(Equal(48))
		Expect(addr.Indices()).To(Equal([NumLevels]int{10, 0, 1, 0}))
		Expect(addr.PageNumber()).To(Equal(VAddr(0x50000200000)))
		Expect(addr.Offset()).To(Equal(uint64(0xabc)))
	})

	It("should place frames on page boundaries", func() {
		Expect(Frame(100).Base()).To(Equal(PAddr(100 * PageSize)))
		Expect(MakePAddr(100, 0x123)).To(Equal(PAddr(100*PageSize + 0x123)))
		Expect(PAddr(100*PageSize + 0x123).Frame()).To(Equal(Frame(100)))
	})

	It("should compute line addresses", func() {
		Expect(PAddr(0x1234).LineAddr()).To(Equal(PAddr(0x1200)))
		Expect(PAddr(0x123f).LineAddr()).To(Equal(PAddr(0x1200)))
		Expect(PAddr(0x1240).LineAddr()).To(Equal(PAddr(0x1240)))
	})

	It("should format addresses", func() {
		Expect(VAddr(0x50000200000).String()).To(Equal("V0x50000200000"))
		Expect(PAddr(0x64000).String()).To(Equal("P0x64000"))
	})
})

var _ = Describe("ParseVAddr", func() {
	It("should parse hexadecimal and decimal literals", func() {
		Expect(ParseVAddr("0x50000200000")).To(Equal(VAddr(0x50000200000)))
		Expect(ParseVAddr("V0x1000")).To(Equal(VAddr(0x1000)))
		Expect(ParseVAddr(" 4096 ")).To(Equal(VAddr(4096)))
	})

	It("should reject garbage", func() {
		_, err := ParseVAddr("0xZZ")
		Expect(err).To(HaveOccurred())

		_, err = ParseVAddr("")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("FrameAllocator", func() {
	It("should never hand out the same frame twice", func() {
		a := NewFrameAllocator(100)
		seen := make(map[Frame]bool)

		for i := 0; i < 1000; i++ {
			f := a.Next()
			Expect(seen).NotTo(HaveKey(f))
			seen[f] = true
		}
	})

	It("should start at the first frame", func() {
		a := NewFrameAllocator(100)

		Expect(a.Peek()).To(Equal(Frame(100)))
		Expect(a.Next()).To(Equal(Frame(100)))
		Expect(a.Next()).To(Equal(Frame(101)))
	})
})
