// Package report renders the state of an MMU as boxed text.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sarchlab/mmusim/mem/cache"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/sarchlab/mmusim/mem/vm/tlb"
	"github.com/sarchlab/mmusim/sim/hooking"
)

// A Source is anything whose state can be reported. *mmu.Comp is one.
type Source interface {
	Root() vm.Frame
	PageTable() vm.PageTableReader
	TLBEntries() []tlb.Translation
	CacheLines() []cache.Line
	Stats() mmu.Stats
}

// Dump writes the page map, the TLB, the L1 cache and the counters of s, each
// in its own box.
func Dump(w io.Writer, s Source) error {
	boxes := []struct {
		title   string
		content string
	}{
		{"Pages", PageMap(s.PageTable(), s.Root())},
		{"TLB", TLB(s.TLBEntries())},
		{"L1-Cache", L1(s.CacheLines())},
		{"Stats", Stats(s.Stats())},
	}

	for _, b := range boxes {
		_, err := fmt.Fprintln(w, Box(b.title, b.content))
		if err != nil {
			return err
		}
	}

	return nil
}

// Box frames content under a title with rounded box-drawing characters.
func Box(title, content string) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if content == "" {
		lines = nil
	}

	titleLen := utf8.RuneCountInString(title)

	width := 4 + titleLen
	for _, l := range lines {
		width = max(width, utf8.RuneCountInString(l))
	}
	width++

	var b strings.Builder

	b.WriteString("╭─" + title)
	b.WriteString(strings.Repeat("─", width-titleLen))
	b.WriteString("╮\n")

	for _, l := range lines {
		b.WriteString("│ " + l)
		b.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(l)))
		b.WriteString("│\n")
	}

	b.WriteString("╰")
	b.WriteString(strings.Repeat("─", width+1))
	b.WriteString("╯")

	return b.String()
}

// PageMap draws the tables reachable from root as a tree. Inner entries show
// how many entries their child table holds, and last-level entries show the
// page they map.
func PageMap(pt vm.PageTableReader, root vm.Frame) string {
	var b strings.Builder

	drawTable(&b, pt, root, 0, 0)

	return b.String()
}

func drawTable(
	b *strings.Builder,
	pt vm.PageTableReader,
	table vm.Frame,
	level int,
	virtBase vm.VAddr,
) {
	indent := strings.Repeat(" | ", level)

	for _, e := range pt.Entries(table) {
		indices := virtBase.Indices()
		indices[level] = e.Index
		virt := vm.MakeVAddr(indices, 0)

		if level == vm.NumLevels-1 {
			fmt.Fprintf(b, "%s%03d: %s -> %s\n", indent, e.Index, virt,
				e.Frame.Base())
			continue
		}

		fmt.Fprintf(b, "%s%03d: [%d mapped entries]\n", indent, e.Index,
			len(pt.Entries(e.Frame)))
		drawTable(b, pt, e.Frame, level+1, virt)
	}
}

// TLB lists the translations with their access counts, or "(empty)".
func TLB(entries []tlb.Translation) string {
	if len(entries) == 0 {
		return "(empty)"
	}

	var b strings.Builder

	for _, e := range entries {
		fmt.Fprintf(&b, "[%s -> %s, %d]\n", e.VPN, e.Frame.Base(), e.AccessCount)
	}

	return b.String()
}

// L1 lists the cached lines, one row per non-empty set.
func L1(lines []cache.Line) string {
	var b strings.Builder

	for i, l := range lines {
		if i == 0 || lines[i-1].SetID != l.SetID {
			if i > 0 {
				b.WriteString("\n")
			}

			fmt.Fprintf(&b, "%02d:", l.SetID)
		}

		fmt.Fprintf(&b, " %s", l.Addr)
	}

	if len(lines) > 0 {
		b.WriteString("\n")
	}

	return b.String()
}

// Stats lists the counters.
func Stats(s mmu.Stats) string {
	return fmt.Sprintf(
		"TLB hits:    %d\nTLB misses:  %d\nL1 hits:     %d\nL1 misses:   %d\nPage Faults: %d",
		s.TLB.Hit, s.TLB.Miss, s.L1.Hit, s.L1.Miss, s.PageFaults)
}

// HookCounts lists how often each hook position fired, names left aligned.
func HookCounts(counts []hooking.PosCount) string {
	if len(counts) == 0 {
		return "(none)"
	}

	width := 0
	for _, c := range counts {
		width = max(width, len(c.Name))
	}

	var b strings.Builder
	for i, c := range counts {
		if i > 0 {
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "%-*s %d", width+1, c.Name+":", c.Count)
	}

	return b.String()
}
