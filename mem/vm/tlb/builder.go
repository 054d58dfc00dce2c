package tlb

// A Builder can build TLBs
type Builder struct {
	numSets int
	numWays int
}

// MakeBuilder returns a Builder. The default geometry is 128 sets of 4 ways.
func MakeBuilder() Builder {
	return Builder{
		numSets: 128,
		numWays: 4,
	}
}

// WithNumSets sets the number of sets in a TLB. Use 1 for fully associated
// TLBs.
func (b Builder) WithNumSets(n int) Builder {
	b.numSets = n
	return b
}

// WithNumWays sets the number of ways in a TLB. Zero makes every set grow
// without bound, so that no translation is ever evicted.
func (b Builder) WithNumWays(n int) Builder {
	b.numWays = n
	return b
}

// Build creates a new TLB
func (b Builder) Build(name string) *Comp {
	if b.numSets <= 0 {
		panic("number of sets must be positive")
	}

	if b.numWays < 0 {
		panic("number of ways must not be negative")
	}

	tlb := &Comp{
		name:    name,
		numSets: b.numSets,
		numWays: b.numWays,
	}

	tlb.Reset()

	return tlb
}
