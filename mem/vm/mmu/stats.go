package mmu

// CacheStats counts the hits and misses of one cache.
type CacheStats struct {
	Hit  uint64 `json:"hit"`
	Miss uint64 `json:"miss"`
}

func (s *CacheStats) hit() {
	s.Hit++
}

func (s *CacheStats) miss() {
	s.Miss++
}

// Stats holds the access counters of an MMU. Only the access path changes
// them.
type Stats struct {
	TLB        CacheStats `json:"tlb"`
	L1         CacheStats `json:"l1"`
	PageFaults uint64     `json:"page_faults"`
}
