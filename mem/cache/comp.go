// Package cache provides a physically addressed, set-associative line cache.
package cache

import (
	"sort"

	"github.com/sarchlab/mmusim/mem/cache/internal/tagging"
	"github.com/sarchlab/mmusim/mem/vm"
)

// A Line is a cache line currently held by the cache.
type Line struct {
	Addr        vm.PAddr
	SetID       int
	WayID       int
	AccessCount uint64
}

// Comp is a line cache. Lines are keyed by physical line address, so two
// virtual pages backed by the same frame share lines.
type Comp struct {
	name         string
	numSets      int
	numWays      int
	tags         tagging.TagArray
	victimFinder tagging.VictimFinder
}

// Name returns the name of the cache.
func (c *Comp) Name() string {
	return c.name
}

// NumSets returns the number of sets.
func (c *Comp) NumSets() int {
	return c.numSets
}

// WayAssociativity returns the number of ways per set. Zero means unbounded.
func (c *Comp) WayAssociativity() int {
	return c.numWays
}

// TotalSize returns the capacity in bytes. Zero means unbounded.
func (c *Comp) TotalSize() uint64 {
	return c.tags.TotalSize()
}

// Reset invalidates every line.
func (c *Comp) Reset() {
	c.tags.Reset()
}

// Lookup tells if the line that holds addr is cached. A hit counts as an
// access of the line and makes it the most recently used in its set.
func (c *Comp) Lookup(addr vm.PAddr) bool {
	block, found := c.tags.Lookup(addr.LineAddr())
	if !found {
		return false
	}

	block.AccessCount++
	c.tags.Update(block)
	c.tags.Visit(block)

	return true
}

// Insert brings the line that holds addr into the cache. If a valid line
// has to make room, its address is returned.
func (c *Comp) Insert(addr vm.PAddr) (evicted vm.PAddr, hasEvicted bool) {
	lineAddr := addr.LineAddr()

	block, found := c.tags.Lookup(lineAddr)
	if found {
		c.tags.Visit(block)
		return 0, false
	}

	victim, ok := c.victimFinder.FindVictim(c.tags, lineAddr)
	if !ok || (victim.IsValid && c.numWays == 0) {
		_, setID := c.tags.GetSet(lineAddr)
		victim = c.tags.Grow(setID)
	}

	if victim.IsValid {
		evicted = victim.Tag
		hasEvicted = true
	}

	victim.Tag = lineAddr
	victim.IsValid = true
	victim.AccessCount = 1
	c.tags.Update(victim)
	c.tags.Visit(victim)

	return evicted, hasEvicted
}

// Lines returns the cached lines, grouped by set and ordered by address
// within a set.
func (c *Comp) Lines() []Line {
	var lines []Line

	for setID := 0; setID < c.numSets; setID++ {
		set, _ := c.tags.GetSet(vm.PAddr(setID * vm.LineSize))
		for _, block := range set.Blocks {
			if !block.IsValid {
				continue
			}

			lines = append(lines, Line{
				Addr:        block.Tag,
				SetID:       block.SetID,
				WayID:       block.WayID,
				AccessCount: block.AccessCount,
			})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].SetID != lines[j].SetID {
			return lines[i].SetID < lines[j].SetID
		}

		return lines[i].Addr < lines[j].Addr
	})

	return lines
}
