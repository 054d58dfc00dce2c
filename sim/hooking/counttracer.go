package hooking

import (
	"sync"
)

// PosCountTracer counts how many times each hook position is triggered.
type PosCountTracer struct {
	lock     sync.Mutex
	posNames []string
	posCount map[string]uint64
}

// NewPosCountTracer creates a new PosCountTracer
func NewPosCountTracer() *PosCountTracer {
	return &PosCountTracer{
		posCount: make(map[string]uint64),
	}
}

// Func counts the position of the invocation.
func (t *PosCountTracer) Func(ctx HookCtx) {
	t.lock.Lock()
	defer t.lock.Unlock()

	_, ok := t.posCount[ctx.Pos.Name]
	if !ok {
		t.posNames = append(t.posNames, ctx.Pos.Name)
	}

	t.posCount[ctx.Pos.Name]++
}

// GetPosNames returns the names of the positions seen, in order of first
// appearance.
func (t *PosCountTracer) GetPosNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.posNames))
	copy(names, t.posNames)

	return names
}

// GetPosCount returns the number of times a position has been triggered.
func (t *PosCountTracer) GetPosCount(pos *HookPos) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.posCount[pos.Name]
}

// A PosCount is how many times one position was triggered.
type PosCount struct {
	Name  string
	Count uint64
}

// Counts returns the count of every position seen, in order of first
// appearance.
func (t *PosCountTracer) Counts() []PosCount {
	t.lock.Lock()
	defer t.lock.Unlock()

	counts := make([]PosCount, 0, len(t.posNames))
	for _, name := range t.posNames {
		counts = append(counts, PosCount{Name: name, Count: t.posCount[name]})
	}

	return counts
}
