// Package vm provides the models for address translations
package vm

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// NumLevels is the depth of the page table hierarchy.
	NumLevels = 4

	// Log2PageSize is the number of offset bits in an address.
	Log2PageSize = 12

	// PageSize is the size of a page and of a frame, in bytes.
	PageSize = 1 << Log2PageSize

	// Log2FanOut is the number of virtual address bits consumed per level.
	Log2FanOut = 9

	// FanOut is the number of entries in one table.
	FanOut = 1 << Log2FanOut

	// Log2LineSize is the number of bits addressing a byte in a cache line.
	Log2LineSize = 6

	// LineSize is the size of a cache line, in bytes.
	LineSize = 1 << Log2LineSize

	// VAddrBits is the number of meaningful bits in a virtual address.
	VAddrBits = Log2PageSize + NumLevels*Log2FanOut
)

// levelShifts holds the shift of each level index in a virtual address, the
// top level first.
var levelShifts = [NumLevels]uint{39, 30, 21, 12}

// A VAddr is a virtual address. Only the low 48 bits are meaningful.
type VAddr uint64

// Index returns the table index used at the given level, where level 0 is the
// top-level (L4) table.
func (a VAddr) Index(level int) int {
	return int((uint64(a) >> levelShifts[level]) & (FanOut - 1))
}

// Indices returns the L4, L3, L2 and L1 indices, in walk order.
func (a VAddr) Indices() [NumLevels]int {
	var indices [NumLevels]int
	for level := range indices {
		indices[level] = a.Index(level)
	}

	return indices
}

// Offset returns the byte offset within the page.
func (a VAddr) Offset() uint64 {
	return uint64(a) & (PageSize - 1)
}

// PageNumber returns the address with the offset bits and the bits above
// VAddrBits cleared, so that two addresses that walk to the same page share
// one page number.
func (a VAddr) PageNumber() VAddr {
	return a & (1<<VAddrBits - 1) &^ (PageSize - 1)
}

func (a VAddr) String() string {
	return fmt.Sprintf("V0x%x", uint64(a))
}

// ParseVAddr reads a virtual address literal. Hexadecimal needs a 0x prefix
// and a leading V, as printed by String, is accepted.
func ParseVAddr(s string) (VAddr, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "V")

	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid virtual address %q: %w", s, err)
	}

	return VAddr(v), nil
}

// MakeVAddr composes a virtual address from four level indices and an
// offset. Out-of-range indices are truncated to the level width.
func MakeVAddr(indices [NumLevels]int, offset uint64) VAddr {
	addr := offset & (PageSize - 1)
	for level, index := range indices {
		addr |= (uint64(index) & (FanOut - 1)) << levelShifts[level]
	}

	return VAddr(addr)
}

// A PAddr is a physical address.
type PAddr uint64

// MakePAddr returns the physical address at offset within frame.
func MakePAddr(frame Frame, offset uint64) PAddr {
	return frame.Base() | PAddr(offset&(PageSize-1))
}

// Frame returns the frame that holds the address.
func (a PAddr) Frame() Frame {
	return Frame(a >> Log2PageSize)
}

// Offset returns the byte offset within the frame.
func (a PAddr) Offset() uint64 {
	return uint64(a) & (PageSize - 1)
}

// LineAddr returns the address of the cache line that holds the address.
func (a PAddr) LineAddr() PAddr {
	return a &^ (LineSize - 1)
}

func (a PAddr) String() string {
	return fmt.Sprintf("P0x%x", uint64(a))
}
