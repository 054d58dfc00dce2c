package vm

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PageTable", func() {
	var pt PageTable

	BeforeEach(func() {
		pt = NewPageTable()
	})

	It("should map and look up entries", func() {
		Expect(pt.Map(100, 10, 101)).To(Succeed())

		f, found := pt.Lookup(100, 10)
		Expect(found).To(BeTrue())
		Expect(f).To(Equal(Frame(101)))
	})

	It("should report unmapped entries", func() {
		_, found := pt.Lookup(100, 10)
		Expect(found).To(BeFalse())

		Expect(pt.Map(100, 10, 101)).To(Succeed())
		_, found = pt.Lookup(100, 11)
		Expect(found).To(BeFalse())
	})

	It("should reject out-of-range indices without mutating", func() {
		err := pt.Map(100, FanOut, 101)
		Expect(errors.Is(err, ErrInvalidIndex)).To(BeTrue())

		err = pt.Map(100, -1, 101)
		Expect(errors.Is(err, ErrInvalidIndex)).To(BeTrue())

		Expect(pt.NumEntries()).To(Equal(0))
		Expect(pt.Tables()).To(BeEmpty())
	})

	It("should accept the last index", func() {
		Expect(pt.Map(100, FanOut-1, 101)).To(Succeed())
	})

	It("should overwrite on remap", func() {
		Expect(pt.Map(100, 3, 101)).To(Succeed())
		Expect(pt.Map(100, 3, 102)).To(Succeed())

		f, _ := pt.Lookup(100, 3)
		Expect(f).To(Equal(Frame(102)))
		Expect(pt.NumEntries()).To(Equal(1))
	})

	It("should keep homonym entries", func() {
		Expect(pt.Map(100, 0, 103)).To(Succeed())
		Expect(pt.Map(100, 1, 103)).To(Succeed())

		Expect(pt.Entries(100)).To(Equal([]PTE{
			{Index: 0, Frame: 103},
			{Index: 1, Frame: 103},
		}))
		Expect(pt.NumEntries()).To(Equal(2))
	})

	It("should list entries in index order", func() {
		Expect(pt.Map(100, 9, 1)).To(Succeed())
		Expect(pt.Map(100, 2, 2)).To(Succeed())
		Expect(pt.Map(100, 5, 3)).To(Succeed())

		Expect(pt.Entries(100)).To(Equal([]PTE{
			{Index: 2, Frame: 2},
			{Index: 5, Frame: 3},
			{Index: 9, Frame: 1},
		}))
	})

	It("should list tables in frame order", func() {
		Expect(pt.Map(102, 0, 1)).To(Succeed())
		Expect(pt.Map(100, 0, 1)).To(Succeed())

		Expect(pt.Tables()).To(Equal([]Frame{100, 102}))
		Expect(pt.Entries(101)).To(BeEmpty())
	})

	It("should unmap entries", func() {
		Expect(pt.Map(100, 0, 103)).To(Succeed())
		Expect(pt.Map(100, 1, 103)).To(Succeed())

		Expect(pt.Unmap(100, 0)).To(Succeed())

		_, found := pt.Lookup(100, 0)
		Expect(found).To(BeFalse())
		Expect(pt.Entries(100)).To(Equal([]PTE{{Index: 1, Frame: 103}}))
		Expect(pt.NumEntries()).To(Equal(1))
	})

	It("should drop a table once its last entry is unmapped", func() {
		Expect(pt.Map(100, 4, 101)).To(Succeed())

		Expect(pt.Unmap(100, 4)).To(Succeed())
		Expect(pt.Unmap(100, 4)).To(Succeed())
		Expect(pt.Unmap(200, 4)).To(Succeed())

		Expect(pt.Tables()).To(BeEmpty())
		Expect(pt.NumEntries()).To(Equal(0))
	})

	It("should reject unmapping an out-of-range index", func() {
		err := pt.Unmap(100, FanOut)

		Expect(err).To(MatchError(ErrInvalidIndex))
	})

	Context("walk", func() {
		BeforeEach(func() {
			Expect(pt.Map(100, 10, 101)).To(Succeed())
			Expect(pt.Map(101, 0, 102)).To(Succeed())
			Expect(pt.Map(102, 1, 103)).To(Succeed())
			Expect(pt.Map(103, 0, 104)).To(Succeed())
		})

		It("should resolve a fully mapped path", func() {
			f, err := pt.Walk(100, 0x50000200123)

			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(Equal(Frame(104)))
		})

		It("should fault at the first unmapped level", func() {
			_, err := pt.Walk(100, MakeVAddr([NumLevels]int{10, 0, 2, 0}, 0))

			Expect(errors.Is(err, ErrPageFault)).To(BeTrue())

			var fault *PageFaultError
			Expect(errors.As(err, &fault)).To(BeTrue())
			Expect(fault.Level).To(Equal(2))
			Expect(fault.Table).To(Equal(Frame(102)))
			Expect(fault.Index).To(Equal(2))
		})

		It("should fault on an empty root", func() {
			_, err := pt.Walk(200, 0x50000200000)

			var fault *PageFaultError
			Expect(errors.As(err, &fault)).To(BeTrue())
			Expect(fault.Level).To(Equal(0))
			Expect(fault.Table).To(Equal(Frame(200)))
		})

		It("should not change the table", func() {
			_, _ = pt.Walk(100, 0x50000200000)
			_, _ = pt.Walk(100, 0x1000)

			Expect(pt.NumEntries()).To(Equal(4))
		})
	})
})
