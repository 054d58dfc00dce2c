package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tags", func() {
	var (
		tags *tagArrayImpl
	)

	BeforeEach(func() {
		tags = &tagArrayImpl{
			NumSets:   1024,
			NumWays:   4,
			BlockSize: 64,
			Sets:      []Set{},
		}
		tags.Reset()
	})

	It("should be able to get total size", func() {
		Expect(tags.TotalSize()).To(Equal(uint64(262144)))
	})

	It("should lookup", func() {
		block := Block{
			Tag:     0x100,
			IsValid: true,
		}
		set, _ := tags.GetSet(0x100)
		set.Blocks[0] = block

		found, ok := tags.Lookup(0x100)
		Expect(ok).To(BeTrue())
		Expect(found).To(Equal(block))
	})

	It("should return nil when lookup cannot find block", func() {
		block, ok := tags.Lookup(0x100)
		Expect(ok).To(BeFalse())
		Expect(block).To(BeZero())
	})

	It("should return nil if block is invalid", func() {
		block := Block{
			Tag:     0x100,
			IsValid: false,
		}
		set, _ := tags.GetSet(0x100)
		set.Blocks[0] = block

		block, ok := tags.Lookup(0x100)
		Expect(ok).To(BeFalse())
		Expect(block).To(BeZero())
	})

	It("should map consecutive lines to consecutive sets", func() {
		_, setID := tags.GetSet(0x0)
		Expect(setID).To(Equal(0))

		_, setID = tags.GetSet(0x40)
		Expect(setID).To(Equal(1))

		_, setID = tags.GetSet(1024 * 64)
		Expect(setID).To(Equal(0))
	})

	It("should update LRU queue when visiting a block", func() {
		set, _ := tags.GetSet(0x100)

		tags.Visit(set.Blocks[1])

		Expect(set.LRUQueue).To(Equal([]int{0, 2, 3, 1}))
	})

	It("should grow a set with an invalid block in front", func() {
		tags = &tagArrayImpl{NumSets: 1, NumWays: 0, BlockSize: 64}
		tags.Reset()

		block := tags.Grow(0)

		Expect(block.WayID).To(Equal(0))
		Expect(block.IsValid).To(BeFalse())
		Expect(tags.Sets[0].LRUQueue).To(Equal([]int{0}))
	})
})

var _ = Describe("LRUVictimFinder", func() {
	var (
		tags   *tagArrayImpl
		finder *LRUVictimFinder
	)

	BeforeEach(func() {
		tags = &tagArrayImpl{NumSets: 1, NumWays: 4, BlockSize: 64}
		tags.Reset()
		finder = NewLRUVictimFinder()
	})

	It("should prefer an invalid block", func() {
		set := &tags.Sets[0]
		set.Blocks[0].IsValid = true
		set.Blocks[1].IsValid = true

		victim, ok := finder.FindVictim(tags, 0)

		Expect(ok).To(BeTrue())
		Expect(victim.WayID).To(Equal(2))
	})

	It("should pick the least recently used block when full", func() {
		set := &tags.Sets[0]
		for i := range set.Blocks {
			set.Blocks[i].IsValid = true
		}
		tags.Visit(set.Blocks[0])

		victim, ok := finder.FindVictim(tags, 0)

		Expect(ok).To(BeTrue())
		Expect(victim.WayID).To(Equal(1))
	})

	It("should find nothing in an empty set", func() {
		tags = &tagArrayImpl{NumSets: 1, NumWays: 0, BlockSize: 64}
		tags.Reset()

		_, ok := finder.FindVictim(tags, 0)

		Expect(ok).To(BeFalse())
	})
})
