package vm

import (
	"fmt"
	"sort"
)

// A PTE is one mapped slot of a table.
type PTE struct {
	Index int
	Frame Frame
}

// A PageTableReader gives read-only access to the structure of a page table.
type PageTableReader interface {
	// Lookup returns the frame that index points to in table.
	Lookup(table Frame, index int) (Frame, bool)

	// Entries returns the mapped entries of table, ordered by index.
	Entries(table Frame) []PTE

	// Tables returns all the frames that hold at least one entry, ordered.
	Tables() []Frame

	// NumEntries returns the total number of mapped entries.
	NumEntries() int
}

// A PageTable is a hierarchy of tables. Each frame may act as a table whose
// entries point to child frames.
type PageTable interface {
	PageTableReader

	// Map makes index in table point to target. An existing entry is
	// overwritten.
	Map(table Frame, index int, target Frame) error

	// Unmap clears index in table. Clearing an entry that is not mapped does
	// nothing.
	Unmap(table Frame, index int) error

	// Walk translates the page of vAddr, starting from the top-level table
	// root, and returns the frame that backs the page.
	Walk(root Frame, vAddr VAddr) (Frame, error)
}

// NewPageTable creates a new PageTable.
func NewPageTable() PageTable {
	return &pageTableImpl{
		tables: make(map[Frame]*table),
	}
}

// pageTableImpl keeps every table in an arena keyed by frame, so that a
// child is reached by frame number rather than by pointer.
type pageTableImpl struct {
	tables     map[Frame]*table
	numEntries int
}

type slot struct {
	frame   Frame
	present bool
}

type table struct {
	slots      [FanOut]slot
	numPresent int
}

func (pt *pageTableImpl) getTable(f Frame) *table {
	t, found := pt.tables[f]
	if !found {
		t = &table{}
		pt.tables[f] = t
	}

	return t
}

// Map records that index of table points to target.
func (pt *pageTableImpl) Map(tableFrame Frame, index int, target Frame) error {
	if index < 0 || index >= FanOut {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, index, FanOut)
	}

	t := pt.getTable(tableFrame)
	s := &t.slots[index]
	if !s.present {
		t.numPresent++
		pt.numEntries++
	}

	s.frame = target
	s.present = true

	return nil
}

// Unmap clears index of table. A table left with no entries is dropped.
func (pt *pageTableImpl) Unmap(tableFrame Frame, index int) error {
	if index < 0 || index >= FanOut {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, index, FanOut)
	}

	t, found := pt.tables[tableFrame]
	if !found || !t.slots[index].present {
		return nil
	}

	t.slots[index] = slot{}
	t.numPresent--
	pt.numEntries--

	if t.numPresent == 0 {
		delete(pt.tables, tableFrame)
	}

	return nil
}

// Lookup returns the child frame at index of table.
func (pt *pageTableImpl) Lookup(tableFrame Frame, index int) (Frame, bool) {
	if index < 0 || index >= FanOut {
		return 0, false
	}

	t, found := pt.tables[tableFrame]
	if !found {
		return 0, false
	}

	s := t.slots[index]

	return s.frame, s.present
}

// Walk follows the four level indices of vAddr from root. It stops at the
// first unmapped entry and reports where.
func (pt *pageTableImpl) Walk(root Frame, vAddr VAddr) (Frame, error) {
	frame := root
	for level := 0; level < NumLevels; level++ {
		index := vAddr.Index(level)

		child, found := pt.Lookup(frame, index)
		if !found {
			return 0, &PageFaultError{
				VAddr: vAddr,
				Level: level,
				Table: frame,
				Index: index,
			}
		}

		frame = child
	}

	return frame, nil
}

// Entries lists the mapped entries of table.
func (pt *pageTableImpl) Entries(tableFrame Frame) []PTE {
	t, found := pt.tables[tableFrame]
	if !found {
		return nil
	}

	var entries []PTE
	for i, s := range t.slots {
		if s.present {
			entries = append(entries, PTE{Index: i, Frame: s.frame})
		}
	}

	return entries
}

// Tables lists the frames that act as tables.
func (pt *pageTableImpl) Tables() []Frame {
	frames := make([]Frame, 0, len(pt.tables))
	for f := range pt.tables {
		frames = append(frames, f)
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })

	return frames
}

// NumEntries returns the number of mapped entries over all tables.
func (pt *pageTableImpl) NumEntries() int {
	return pt.numEntries
}
