// Package partition splits a run of work items into contiguous chunks, one per worker.
package partition

import "fmt"

// Range is a half-open interval [Start, End) of item indices.
type Range struct {
	Start, End int
}

// Len returns the number of items in the range.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether i falls inside the range.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

func (r Range) String() string { return fmt.Sprintf("[%d, %d)", r.Start, r.End) }

// Split divides n items into parts contiguous ranges. Every range but the last
// holds n/parts items; the last one also takes the remainder. When parts > n
// all but the last range are empty.
//
// Split panics if parts < 1 or n < 0.
func Split(n, parts int) []Range {
	if parts < 1 {
		panic(fmt.Sprintf("partition: cannot split into %d parts", parts))
	}
	if n < 0 {
		panic(fmt.Sprintf("partition: negative item count %d", n))
	}
	chunk := n / parts
	retVal := make([]Range, parts)
	for i := range retVal {
		retVal[i] = Range{Start: i * chunk, End: (i + 1) * chunk}
	}
	retVal[parts-1].End = n
	return retVal
}

// Owner returns the index of the range in rs that contains item i, or -1.
func Owner(rs []Range, i int) int {
	for j, r := range rs {
		if r.Contains(i) {
			return j
		}
	}
	return -1
}
