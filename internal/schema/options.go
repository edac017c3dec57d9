package schema

import (
	"fmt"
	"strings"
)

// Granularity selects how numeric fields are labeled.
type Granularity int

const (
	// Coarse labels every number Numeric.
	Coarse Granularity = iota
	// Fine labels numbers Integer or Float.
	Fine
)

func (g Granularity) String() string {
	if g == Fine {
		return "fine"
	}
	return "coarse"
}

// ParseGranularity accepts "coarse" or "fine" (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "coarse":
		return Coarse, nil
	case "fine":
		return Fine, nil
	default:
		return Coarse, fmt.Errorf("unsupported numeric granularity: %s (use coarse|fine)", s)
	}
}

// DefaultMaxDepth bounds the container nesting of flattened input.
const DefaultMaxDepth = 64

// DefaultDateLayouts are the Go layouts of %Y-%m-%d, %Y/%m/%d, %Y-%m-%d %H:%M:%S and %m/%d/%Y.
// Month, day, minute and second accept one or two digits.
var DefaultDateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006-1-2 15:4:5",
	"1/2/2006",
}

// Options configures classification and flattening.
type Options struct {
	Granularity Granularity
	// DualDetection enables the <name>_DualText companion for numeric, date-like columns.
	DualDetection bool
	// DateLayouts are tried in order; a value is a date if any layout parses it.
	DateLayouts []string
	// TrueTokens and FalseTokens form the accepted boolean vocabulary (lowercase).
	TrueTokens  []string
	FalseTokens []string
	// MaxDepth limits container nesting; <= 0 means DefaultMaxDepth.
	MaxDepth int
	// Sampler picks examples; nil means a time-seeded random sampler.
	Sampler Sampler
}

// DefaultOptions returns the coarse, dual-enabled configuration.
func DefaultOptions() Options {
	return Options{
		Granularity:   Coarse,
		DualDetection: true,
		DateLayouts:   append([]string(nil), DefaultDateLayouts...),
		TrueTokens:    []string{"true", "1"},
		FalseTokens:   []string{"false", "0"},
		MaxDepth:      DefaultMaxDepth,
	}
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o Options) sampler() Sampler {
	if o.Sampler == nil {
		return NewRandomSampler(0)
	}
	return o.Sampler
}

// booleanTokens maps each accepted token to its boolean value.
func (o Options) booleanTokens() map[string]bool {
	m := make(map[string]bool, len(o.TrueTokens)+len(o.FalseTokens))
	for _, t := range o.FalseTokens {
		m[normalizeToken(t)] = false
	}
	for _, t := range o.TrueTokens {
		m[normalizeToken(t)] = true
	}
	return m
}

func normalizeToken(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
