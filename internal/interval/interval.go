// Package interval implements the temporal algebra: half-open integer
// intervals with Allen's thirteen relations, interval arithmetic, bucketing,
// timezone-aware recurrence expansion, and the calendar kernel underneath.
// Every function here is pure; there is no shared state, so all of it is
// safe to call concurrently.
package interval

import (
	"fmt"
	"sort"
)

// Interval is a half-open range [Start, End) over integer timestamps.
// It is well-formed iff Start < End.
type Interval struct {
	Start int64
	End   int64
}

// InvalidIntervalError reports an operand with Start >= End handed to an
// operator that requires a well-formed interval.
type InvalidIntervalError struct {
	Got Interval
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid interval [%d, %d): start must be less than end", e.Got.Start, e.Got.End)
}

// New validates and constructs a well-formed interval.
func New(start, end int64) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if !iv.WellFormed() {
		return Interval{}, &InvalidIntervalError{Got: iv}
	}
	return iv, nil
}

// WellFormed reports Start < End.
func (iv Interval) WellFormed() bool { return iv.Start < iv.End }

// Len returns End - Start.
func (iv Interval) Len() int64 { return iv.End - iv.Start }

// Shift translates the interval by d.
func (iv Interval) Shift(d int64) Interval {
	return Interval{Start: iv.Start + d, End: iv.End + d}
}

// ContainsPoint reports t in [Start, End).
func (iv Interval) ContainsPoint(t int64) bool {
	return iv.Start <= t && t < iv.End
}

// ContainsInterval reports whether a wholly contains b (endpoints may
// coincide: a.Start <= b.Start and b.End <= a.End).
func ContainsInterval(a, b Interval) bool {
	return a.Start <= b.Start && b.End <= a.End
}

func checkOperands(ivs ...Interval) error {
	for _, iv := range ivs {
		if !iv.WellFormed() {
			return &InvalidIntervalError{Got: iv}
		}
	}
	return nil
}

// Intersect returns the overlap of a and b, or ok=false when they are
// disjoint (a zero-width touch does not count as an intersection).
func Intersect(a, b Interval) (Interval, bool, error) {
	if err := checkOperands(a, b); err != nil {
		return Interval{}, false, err
	}
	out := Interval{Start: max64(a.Start, b.Start), End: min64(a.End, b.End)}
	if !out.WellFormed() {
		return Interval{}, false, nil
	}
	return out, true, nil
}

// Union merges a and b into one interval when they touch or overlap,
// otherwise returns both sorted by start.
func Union(a, b Interval) ([]Interval, error) {
	if err := checkOperands(a, b); err != nil {
		return nil, err
	}
	if a.End >= b.Start && b.End >= a.Start {
		return []Interval{{Start: min64(a.Start, b.Start), End: max64(a.End, b.End)}}, nil
	}
	if a.Start <= b.Start {
		return []Interval{a, b}, nil
	}
	return []Interval{b, a}, nil
}

// Minus removes b from a, yielding zero, one, or two pieces: nothing when b
// covers a, a untouched when they are disjoint, one piece for a left or
// right cut, two pieces for a middle cut.
func Minus(a, b Interval) ([]Interval, error) {
	if err := checkOperands(a, b); err != nil {
		return nil, err
	}
	if b.End <= a.Start || b.Start >= a.End {
		return []Interval{a}, nil
	}
	var out []Interval
	if b.Start > a.Start {
		out = append(out, Interval{Start: a.Start, End: b.Start})
	}
	if b.End < a.End {
		out = append(out, Interval{Start: b.End, End: a.End})
	}
	return out, nil
}

// MergeAdjacent sorts the list by start and folds neighbors whenever the
// current interval's end reaches or passes the next one's start, so both
// overlapping and exactly-adjacent intervals coalesce. Operands must be
// well-formed; Normalize is the variant that tolerates degenerates.
func MergeAdjacent(ivs []Interval) ([]Interval, error) {
	if err := checkOperands(ivs...); err != nil {
		return nil, err
	}
	return mergeSorted(ivs), nil
}

// Normalize drops degenerate entries (Start >= End), then merges like
// MergeAdjacent. The result is a sorted list of pairwise disjoint,
// non-adjacent, well-formed intervals, and Normalize is idempotent.
func Normalize(ivs []Interval) []Interval {
	kept := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.WellFormed() {
			kept = append(kept, iv)
		}
	}
	return mergeSorted(kept)
}

func mergeSorted(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := sorted[:1]
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if last.End >= iv.Start {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// MultiMinus computes the set difference (union of mains) minus (union of
// subs): each sub is applied in order to the whole working list, flattening
// the per-element pieces back into it.
func MultiMinus(mains, subs []Interval) ([]Interval, error) {
	if err := checkOperands(mains...); err != nil {
		return nil, err
	}
	if err := checkOperands(subs...); err != nil {
		return nil, err
	}
	working := make([]Interval, len(mains))
	copy(working, mains)
	for _, s := range subs {
		next := make([]Interval, 0, len(working))
		for _, m := range working {
			pieces, err := Minus(m, s)
			if err != nil {
				return nil, err
			}
			next = append(next, pieces...)
		}
		working = next
	}
	return working, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
