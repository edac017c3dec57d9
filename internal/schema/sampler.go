package schema

import "math/rand/v2"

// Sampler returns an index in [0, n). It is only called with n > 0.
type Sampler func(n int) int

// NewRandomSampler picks uniformly. A zero seed draws from the global source.
func NewRandomSampler(seed int64) Sampler {
	if seed == 0 {
		return rand.IntN
	}
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
	return r.IntN
}

// FirstSampler always picks the first candidate.
func FirstSampler(int) int { return 0 }

// LastSampler always picks the last candidate.
func LastSampler(n int) int { return n - 1 }

// Example returns one non-null value of values, or NotAvailable when there is none.
func Example(values []any, pick Sampler) any {
	idx := nonNullIndexes(values)
	if len(idx) == 0 {
		return NotAvailable
	}
	return values[idx[pickIndex(pick, len(idx))]]
}

// pickIndex guards against samplers returning out-of-range indexes.
func pickIndex(pick Sampler, n int) int {
	if pick == nil {
		pick = NewRandomSampler(0)
	}
	i := pick(n)
	if i < 0 || i >= n {
		i = 0
	}
	return i
}

func nonNullIndexes(values []any) []int {
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if !isNull(v) {
			idx = append(idx, i)
		}
	}
	return idx
}
