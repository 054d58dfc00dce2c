// Package internal provides the definition required for defining TLB.
package internal

import (
	"sort"

	"github.com/sarchlab/mmusim/mem/vm"
)

// A Block is one way of a set. It holds a translation of one virtual page.
type Block struct {
	VPN         vm.VAddr
	Frame       vm.Frame
	Valid       bool
	AccessCount uint64
}

// A Set holds a certain number of translations.
type Set interface {
	Lookup(vpn vm.VAddr) (wayID int, block Block, found bool)
	Update(wayID int, block Block)
	Evict() (wayID int, ok bool)
	Visit(wayID int)
	Blocks() []Block
}

// NewSet creates a new TLB set. A set with zero ways never evicts; it grows
// by one way whenever a new translation needs room.
func NewSet(numWays int) Set {
	s := &setImpl{}
	s.growable = numWays == 0
	s.blocks = make([]*block, numWays)
	s.visitList = make([]*block, 0, numWays)
	s.vpnWayIDMap = make(map[vm.VAddr]int)

	for i := range s.blocks {
		b := &block{}
		s.blocks[i] = b
		b.wayID = i
		s.Visit(i)
	}

	return s
}

type block struct {
	Block
	wayID     int
	lastVisit uint64
}

type setImpl struct {
	blocks      []*block
	vpnWayIDMap map[vm.VAddr]int
	visitList   []*block
	visitCount  uint64
	growable    bool
}

func (s *setImpl) Lookup(vpn vm.VAddr) (
	wayID int,
	b Block,
	found bool,
) {
	wayID, ok := s.vpnWayIDMap[vpn]
	if !ok {
		return 0, Block{}, false
	}

	blk := s.blocks[wayID]

	return blk.wayID, blk.Block, true
}

func (s *setImpl) Update(wayID int, b Block) {
	blk := s.blocks[wayID]
	if blk.Valid {
		delete(s.vpnWayIDMap, blk.VPN)
	}

	blk.Block = b
	if b.Valid {
		s.vpnWayIDMap[b.VPN] = wayID
	}
}

// Evict removes the least recently visited way from the visit list and
// returns it. The caller is expected to Update and Visit the way afterwards.
func (s *setImpl) Evict() (wayID int, ok bool) {
	if s.growable {
		return s.grow(), true
	}

	if s.hasNothingToEvict() {
		return 0, false
	}

	leastVisited := s.visitList[0]
	wayID = leastVisited.wayID
	s.visitList = s.visitList[1:]

	return wayID, true
}

func (s *setImpl) grow() int {
	b := &block{wayID: len(s.blocks)}
	s.blocks = append(s.blocks, b)

	return b.wayID
}

func (s *setImpl) Visit(wayID int) {
	blk := s.blocks[wayID]

	for i, b := range s.visitList {
		if b.wayID == wayID {
			s.visitList = append(s.visitList[:i], s.visitList[i+1:]...)
			break
		}
	}

	s.visitCount++
	blk.lastVisit = s.visitCount

	index := sort.Search(len(s.visitList), func(i int) bool {
		return s.visitList[i].lastVisit > blk.lastVisit
	})

	s.visitList = append(s.visitList, nil)
	copy(s.visitList[index+1:], s.visitList[index:])
	s.visitList[index] = blk
}

// Blocks returns a copy of all the ways, valid or not, in way order.
func (s *setImpl) Blocks() []Block {
	blocks := make([]Block, len(s.blocks))
	for i, b := range s.blocks {
		blocks[i] = b.Block
	}

	return blocks
}

func (s *setImpl) hasNothingToEvict() bool {
	return len(s.visitList) == 0
}
