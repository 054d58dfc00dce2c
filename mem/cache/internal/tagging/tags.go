// Package tagging provides the tag array of a set-associative cache.
package tagging

import (
	"github.com/sarchlab/mmusim/mem/vm"
)

// A TagArray tracks which lines a cache currently holds.
type TagArray interface {
	Lookup(lineAddr vm.PAddr) (Block, bool)
	Update(block Block)
	Visit(block Block)
	GetSet(lineAddr vm.PAddr) (set *Set, setID int)
	Grow(setID int) Block
	Reset()
	TotalSize() uint64
}

// NewTagArray creates a tag array. With zero ways, the sets start empty and
// only grow through Grow.
func NewTagArray(
	numSets int,
	numWays int,
	blockSize int,
) TagArray {
	t := &tagArrayImpl{
		NumSets:   numSets,
		NumWays:   numWays,
		BlockSize: blockSize,
		Sets:      []Set{},
	}

	t.Reset()

	return t
}

// A Block of a cache is the information that is associated with a cache line
type Block struct {
	Tag         vm.PAddr
	WayID       int
	SetID       int
	IsValid     bool
	AccessCount uint64
}

// A Set is a list of blocks where a certain piece memory can be stored at.
type Set struct {
	Blocks   []Block
	LRUQueue []int
}

type tagArrayImpl struct {
	NumSets   int
	NumWays   int
	BlockSize int
	Sets      []Set
}

// TotalSize returns the maximum number of bytes can be stored in the cache
func (d *tagArrayImpl) TotalSize() uint64 {
	return uint64(d.NumSets) * uint64(d.NumWays) * uint64(d.BlockSize)
}

// Get the set that a certain address should store at
func (d *tagArrayImpl) GetSet(lineAddr vm.PAddr) (set *Set, setID int) {
	setID = int(uint64(lineAddr) / uint64(d.BlockSize) % uint64(d.NumSets))
	set = &d.Sets[setID]

	return
}

// Lookup finds the block that holds lineAddr.
func (d *tagArrayImpl) Lookup(lineAddr vm.PAddr) (Block, bool) {
	set, _ := d.GetSet(lineAddr)
	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == lineAddr {
			return block, true
		}
	}

	return Block{}, false
}

// Update updates the block information
func (d *tagArrayImpl) Update(block Block) {
	d.Sets[block.SetID].Blocks[block.WayID] = block
}

// Visit moves the block to the end of the LRUQueue
func (d *tagArrayImpl) Visit(block Block) {
	set := &d.Sets[block.SetID]
	newLRUQueue := []int{}

	for _, b := range set.LRUQueue {
		if b != block.WayID {
			newLRUQueue = append(newLRUQueue, b)
		}
	}

	newLRUQueue = append(newLRUQueue, block.WayID)

	set.LRUQueue = newLRUQueue
}

// Grow adds an invalid way to a set and returns it.
func (d *tagArrayImpl) Grow(setID int) Block {
	set := &d.Sets[setID]
	block := Block{
		SetID: setID,
		WayID: len(set.Blocks),
	}

	set.Blocks = append(set.Blocks, block)
	set.LRUQueue = append([]int{block.WayID}, set.LRUQueue...)

	return block
}

// Reset will mark all the blocks in the directory invalid
func (d *tagArrayImpl) Reset() {
	d.Sets = make([]Set, d.NumSets)
	for i := 0; i < d.NumSets; i++ {
		for j := 0; j < d.NumWays; j++ {
			block := Block{
				IsValid: false,
				SetID:   i,
				WayID:   j,
			}

			d.Sets[i].Blocks = append(d.Sets[i].Blocks, block)
			d.Sets[i].LRUQueue = append(d.Sets[i].LRUQueue, j)
		}
	}
}
