package cache

import (
	"github.com/sarchlab/mmusim/mem/cache/internal/tagging"
	"github.com/sarchlab/mmusim/mem/vm"
)

// Builder can build caches.
type Builder struct {
	numSets          int
	wayAssociativity int
	cacheByteSize    uint64
	victimFinder     tagging.VictimFinder
}

// MakeBuilder creates a new builder. The default cache is 32 KB, 8-way set
// associative, which gives 64 sets of 64-byte lines.
func MakeBuilder() Builder {
	return Builder{
		wayAssociativity: 8,
		cacheByteSize:    32 * 1024,
	}
}

// WithWayAssociativity sets the number of ways in each set. Zero makes every
// set grow without bound, so that no line is ever evicted. In that case the
// number of sets must be given with WithNumSets.
func (b Builder) WithWayAssociativity(n int) Builder {
	b.wayAssociativity = n
	return b
}

// WithByteSize sets the capacity of the cache. The number of sets is derived
// from the capacity and the way associativity.
func (b Builder) WithByteSize(byteSize uint64) Builder {
	b.cacheByteSize = byteSize
	b.numSets = 0

	return b
}

// WithNumSets sets the number of sets directly, overriding the byte size.
func (b Builder) WithNumSets(n int) Builder {
	b.numSets = n
	b.cacheByteSize = 0

	return b
}

// Build creates a cache with the given name.
func (b Builder) Build(name string) *Comp {
	if b.wayAssociativity < 0 {
		panic("way associativity must not be negative")
	}

	numSets := b.numSets
	if numSets == 0 && b.wayAssociativity > 0 {
		numSets = int(b.cacheByteSize / uint64(vm.LineSize*b.wayAssociativity))
	}

	if numSets <= 0 {
		panic("number of sets must be positive")
	}

	c := &Comp{
		name:         name,
		numSets:      numSets,
		numWays:      b.wayAssociativity,
		tags:         tagging.NewTagArray(numSets, b.wayAssociativity, vm.LineSize),
		victimFinder: b.victimFinder,
	}

	if c.victimFinder == nil {
		c.victimFinder = tagging.NewLRUVictimFinder()
	}

	return c
}
