// Package tlb provides a set-associative translation lookaside buffer.
package tlb

import (
	"sort"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/tlb/internal"
)

// A Translation is a valid entry held by the TLB.
type Translation struct {
	VPN         vm.VAddr
	Frame       vm.Frame
	AccessCount uint64
}

// Comp is a cache(TLB) that maintains virtual page to frame translations.
type Comp struct {
	name    string
	numSets int
	numWays int

	Sets []internal.Set
}

// Name returns the name of the TLB.
func (c *Comp) Name() string {
	return c.name
}

// NumSets returns the number of sets.
func (c *Comp) NumSets() int {
	return c.numSets
}

// NumWays returns the number of ways per set. Zero means unbounded.
func (c *Comp) NumWays() int {
	return c.numWays
}

// Reset sets all the entries in the TLB to be invalid
func (c *Comp) Reset() {
	c.Sets = make([]internal.Set, c.numSets)
	for i := 0; i < c.numSets; i++ {
		c.Sets[i] = internal.NewSet(c.numWays)
	}
}

// Lookup returns the frame that backs the page vpn. A hit counts as an
// access of the entry and makes it the most recently used in its set.
func (c *Comp) Lookup(vpn vm.VAddr) (vm.Frame, bool) {
	vpn = vpn.PageNumber()
	set := c.Sets[c.vpnToSetID(vpn)]

	wayID, blk, found := set.Lookup(vpn)
	if !found || !blk.Valid {
		return 0, false
	}

	blk.AccessCount++
	set.Update(wayID, blk)
	set.Visit(wayID)

	return blk.Frame, true
}

// Insert records that page vpn is backed by frame. If vpn is already present
// its translation is overwritten. Otherwise the least recently used way of
// the set is replaced, and the translation it held, if any, is returned.
func (c *Comp) Insert(vpn vm.VAddr, frame vm.Frame) (evicted Translation, hasEvicted bool) {
	vpn = vpn.PageNumber()
	set := c.Sets[c.vpnToSetID(vpn)]

	newBlk := internal.Block{
		VPN:         vpn,
		Frame:       frame,
		Valid:       true,
		AccessCount: 1,
	}

	wayID, _, found := set.Lookup(vpn)
	if found {
		set.Update(wayID, newBlk)
		set.Visit(wayID)

		return Translation{}, false
	}

	wayID, ok := set.Evict()
	if !ok {
		panic("failed to evict")
	}

	old := set.Blocks()[wayID]
	if old.Valid {
		evicted = Translation{VPN: old.VPN, Frame: old.Frame, AccessCount: old.AccessCount}
		hasEvicted = true
	}

	set.Update(wayID, newBlk)
	set.Visit(wayID)

	return evicted, hasEvicted
}

// Entries returns all valid translations, ordered by page.
func (c *Comp) Entries() []Translation {
	var entries []Translation

	for _, set := range c.Sets {
		for _, blk := range set.Blocks() {
			if !blk.Valid {
				continue
			}

			entries = append(entries, Translation{
				VPN:         blk.VPN,
				Frame:       blk.Frame,
				AccessCount: blk.AccessCount,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].VPN < entries[j].VPN
	})

	return entries
}

func (c *Comp) vpnToSetID(vpn vm.VAddr) (setID int) {
	return int(uint64(vpn) / vm.PageSize % uint64(c.numSets))
}
