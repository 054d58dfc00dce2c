package tagging

import "github.com/sarchlab/mmusim/mem/vm"

// A VictimFinder decides with block should be evicted
type VictimFinder interface {
	FindVictim(tags TagArray, lineAddr vm.PAddr) (Block, bool)
}

// LRUVictimFinder evicts the least recently used block to evict
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the least recently used block in a set
func (e *LRUVictimFinder) FindVictim(tags TagArray, lineAddr vm.PAddr) (Block, bool) {
	set, _ := tags.GetSet(lineAddr)

	// First try evicting an empty block
	for _, blockIndex := range set.LRUQueue {
		block := set.Blocks[blockIndex]

		if !block.IsValid {
			return block, true
		}
	}

	if len(set.LRUQueue) == 0 {
		return Block{}, false
	}

	return set.Blocks[set.LRUQueue[0]], true
}
