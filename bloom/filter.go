// Package bloom provides a fixed-memory probabilistic set of URLs, used as a
// cheap first check before exact visited-set lookups.
package bloom

import (
	"math"

	"github.com/bits-and-blooms/bloom/v3"
)

// Sizing used when New is given non-positive arguments. One site crawl rarely
// exceeds DefaultCapacity pages.
const (
	DefaultCapacity          = 10000
	DefaultFalsePositiveRate = 0.01
)

// Filter is a probabilistic set of strings. A negative answer is exact; a
// positive answer is wrong with probability close to the configured rate
// while fewer than capacity strings have been inserted.
type Filter struct {
	bits     *bloom.BloomFilter
	inserted uint
}

// New returns a Filter sized for capacity strings at fpRate.
func New(capacity int, fpRate float64) *Filter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = DefaultFalsePositiveRate
	}
	return &Filter{bits: bloom.NewWithEstimates(uint(capacity), fpRate)}
}

// Insert adds s. It reports whether s may have been present already.
func (f *Filter) Insert(s string) bool {
	present := f.bits.TestAndAddString(s)
	if !present {
		f.inserted++
	}
	return present
}

// MayContain reports whether s may have been inserted.
func (f *Filter) MayContain(s string) bool {
	return f.bits.TestString(s)
}

// Inserted returns how many strings were new when inserted. Strings lost to
// false positives are not counted.
func (f *Filter) Inserted() int {
	return int(f.inserted)
}

// FalsePositiveRate estimates the probability that MayContain is wrong at the
// current load.
func (f *Filter) FalsePositiveRate() float64 {
	m, k := float64(f.bits.Cap()), float64(f.bits.K())
	return math.Pow(1-math.Exp(-k*float64(f.inserted)/m), k)
}
