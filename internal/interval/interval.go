// Package interval implements minute-granularity interval arithmetic for
// availability computations. Intervals are half-open [Start, End) and measured
// in minutes from midnight, so touching boundaries never count as overlap.
package interval

import "sort"

// Interval is a half-open time range [Start, End) in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

// Duration returns the interval length in minutes.
func (iv Interval) Duration() int {
	return iv.End - iv.Start
}

// Empty reports whether the interval covers no time.
func (iv Interval) Empty() bool {
	return iv.End <= iv.Start
}

// Overlaps reports whether two half-open intervals share any time. Intervals
// that merely touch at a boundary do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Clip restricts the interval to the window [windowStart, windowEnd).
// The result may be empty.
func Clip(iv Interval, windowStart, windowEnd int) Interval {
	if iv.Start < windowStart {
		iv.Start = windowStart
	}
	if iv.End > windowEnd {
		iv.End = windowEnd
	}
	return iv
}

// Union merges overlapping and adjacent intervals into a minimal sorted
// disjoint list. Empty intervals are dropped. The input slice is not modified.
// Union is idempotent: Union(Union(x)) == Union(x).
func Union(intervals []Interval) []Interval {
	cleaned := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Empty() {
			cleaned = append(cleaned, iv)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	sort.Slice(cleaned, func(i, j int) bool {
		if cleaned[i].Start == cleaned[j].Start {
			return cleaned[i].End < cleaned[j].End
		}
		return cleaned[i].Start < cleaned[j].Start
	})

	merged := make([]Interval, 0, len(cleaned))
	current := cleaned[0]
	for _, iv := range cleaned[1:] {
		if iv.Start <= current.End {
			if iv.End > current.End {
				current.End = iv.End
			}
			continue
		}
		merged = append(merged, current)
		current = iv
	}
	merged = append(merged, current)
	return merged
}

// Subtract removes every interval in busy from the window [windowStart,
// windowEnd) and returns the remaining free intervals, sorted and disjoint.
func Subtract(busy []Interval, windowStart, windowEnd int) []Interval {
	if windowEnd <= windowStart {
		return nil
	}

	clipped := make([]Interval, 0, len(busy))
	for _, iv := range busy {
		c := Clip(iv, windowStart, windowEnd)
		if !c.Empty() {
			clipped = append(clipped, c)
		}
	}
	occupied := Union(clipped)

	free := make([]Interval, 0, len(occupied)+1)
	cursor := windowStart
	for _, iv := range occupied {
		if iv.Start > cursor {
			free = append(free, Interval{Start: cursor, End: iv.Start})
		}
		cursor = iv.End
	}
	if cursor < windowEnd {
		free = append(free, Interval{Start: cursor, End: windowEnd})
	}
	if len(free) == 0 {
		return nil
	}
	return free
}

// Segment is an elementary sub-interval produced by SweepPartition together
// with the indices of the members that are free for its whole extent.
type Segment struct {
	Interval
	FreeMembers []int
}

// SweepPartition performs a boundary sweep over the free intervals of every
// member and partitions the window [windowStart, windowEnd) into segments
// within which the set of free members is constant. Adjacent segments with an
// identical free-member set are merged; segments separated by a gap are never
// bridged. Member indices in each segment are ascending. The result covers the
// whole window, including segments where no member is free.
func SweepPartition(memberFree [][]Interval, windowStart, windowEnd int) []Segment {
	if windowEnd <= windowStart {
		return nil
	}

	boundarySet := map[int]struct{}{
		windowStart: {},
		windowEnd:   {},
	}
	normalized := make([][]Interval, len(memberFree))
	for i, free := range memberFree {
		clipped := make([]Interval, 0, len(free))
		for _, iv := range free {
			c := Clip(iv, windowStart, windowEnd)
			if !c.Empty() {
				clipped = append(clipped, c)
			}
		}
		normalized[i] = Union(clipped)
		for _, iv := range normalized[i] {
			boundarySet[iv.Start] = struct{}{}
			boundarySet[iv.End] = struct{}{}
		}
	}

	boundaries := make([]int, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Ints(boundaries)

	segments := make([]Segment, 0, len(boundaries))
	for i := 0; i+1 < len(boundaries); i++ {
		elem := Interval{Start: boundaries[i], End: boundaries[i+1]}
		if elem.Empty() {
			continue
		}
		free := freeMembersAt(normalized, elem)

		if n := len(segments); n > 0 {
			last := &segments[n-1]
			if last.End == elem.Start && equalMembers(last.FreeMembers, free) {
				last.End = elem.End
				continue
			}
		}
		segments = append(segments, Segment{Interval: elem, FreeMembers: free})
	}
	return segments
}

func freeMembersAt(memberFree [][]Interval, elem Interval) []int {
	var free []int
	for idx, intervals := range memberFree {
		for _, iv := range intervals {
			if iv.Start <= elem.Start && elem.End <= iv.End {
				free = append(free, idx)
				break
			}
		}
	}
	return free
}

func equalMembers(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
