// Package partition splits index spaces into contiguous per-worker ranges.
package partition

// Range is a half-open index range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Start }

// Empty reports whether the range holds no indices.
func (r Range) Empty() bool { return r.End <= r.Start }

// segment returns the per-worker range width. length/n+1 is not exact
// ceiling division: it always covers length, but the trailing workers may be
// left with short or empty ranges.
func segment(length, n int) int {
	return length/n + 1
}

// For returns the range owned by worker i when length elements are split
// across n workers. It panics if n is not positive.
func For(i, length, n int) Range {
	if n <= 0 {
		panic("partition: worker count must be positive")
	}
	seg := segment(length, n)
	start := min(i*seg, length)
	end := min((i+1)*seg, length)
	return Range{Start: start, End: end}
}

// Split returns the ranges for all n workers, in worker order. The ranges are
// pairwise disjoint and their union is [0, length).
func Split(length, n int) []Range {
	ranges := make([]Range, n)
	for i := range ranges {
		ranges[i] = For(i, length, n)
	}
	return ranges
}
