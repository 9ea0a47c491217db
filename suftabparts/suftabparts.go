// Package suftabparts implements the memory-budget-driven partitioning
// of the bucket-code index space into contiguous, memory-bounded parts
// (C7), grounded on spec §4.7.
package suftabparts

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// maxPartsSearched caps the doubling search at 500 trial part counts,
// per spec §4.7's failure semantics.
const maxPartsSearched = 500

// Part is one contiguous slice of the bucket-code index space.
type Part struct {
	MinIndex     int
	MaxIndex     int
	WidthOfPart  uint64 // number of suffix positions this part covers
	SuftabOffset uint64 // cumulative offset into the output suftab
	SumOfWidth   uint64 // cumulative width through this part, inclusive
}

// MappedRangeCost computes how many bytes a per-part mapping of
// auxiliary tables costs for [minIdx, maxIdx].
type MappedRangeCost func(minIdx, maxIdx int) uint64

// Parts is the resulting partition, plus the derived diagnostics spec
// §4.7 requires callers be able to read off (largestWidth,
// largestSizeMappedPartwise).
type Parts struct {
	Parts                     []Part
	LargestWidth              uint64
	LargestSizeMappedPartwise uint64
}

// ErrBudgetExceeded is returned when no number of parts up to
// maxPartsSearched fits within the memory budget.
type ErrBudgetExceeded struct {
	Budget uint64
}

func (e *ErrBudgetExceeded) Error() string {
	return fmt.Sprintf("suftabparts: cannot compute in at most %s bytes", humanize.Bytes(e.Budget))
}

// Compute partitions [0, D-1] (D = len(leftborder)-1, i.e. the number
// of buckets; with codetab's Leftborder this includes the sentinel's
// bucket) into disjoint parts whose
// combined footprint — totalUsed plus the largest part's size plus the
// SpmSuftab size — stays within budget. leftborder is the cumulative
// partial-sums array from codetab (leftborder[D] == total suffix
// count). spmEntrySize is the per-entry byte cost of the output
// SpmSuftab (bits-per-entry rounded up to bytes, as an upper bound).
func Compute(leftborder []uint64, totalUsed, budget, spmEntrySize uint64, cost MappedRangeCost) (*Parts, error) {
	d := len(leftborder) - 1
	if d <= 0 {
		return &Parts{}, nil
	}

	triedCap := false
	for numParts := 1; ; numParts *= 2 {
		if numParts > maxPartsSearched {
			if triedCap {
				break
			}
			numParts = maxPartsSearched
			triedCap = true
		}
		parts, largestWidth, largestCost := trialPartition(leftborder, numParts, cost)
		spmSize := largestWidth * spmEntrySize
		if totalUsed+largestCost+spmSize <= budget {
			return &Parts{
				Parts:                     dropEmptyAndRenormalize(parts),
				LargestWidth:              largestWidth,
				LargestSizeMappedPartwise: largestCost,
			}, nil
		}
		if numParts == maxPartsSearched {
			break
		}
	}
	return nil, &ErrBudgetExceeded{Budget: budget}
}

// trialPartition divides the total suffix count by numParts and
// binary-searches leftborder for the resulting boundary indices,
// producing numParts (possibly zero-width) contiguous parts.
func trialPartition(leftborder []uint64, numParts int, cost MappedRangeCost) ([]Part, uint64, uint64) {
	d := len(leftborder) - 1
	total := leftborder[d]
	target := total / uint64(numParts)
	if target == 0 {
		target = 1
	}

	parts := make([]Part, 0, numParts)
	minIdx := 0
	var sumOfWidth uint64
	var largestWidth, largestCost uint64

	lastBucket := d - 1
	for p := 0; p < numParts && minIdx <= lastBucket; p++ {
		var maxIdx int
		if p == numParts-1 {
			maxIdx = lastBucket
		} else {
			wantCount := sumOfWidth + target
			maxIdx = searchBoundary(leftborder, minIdx, lastBucket, wantCount)
		}
		width := leftborder[maxIdx+1] - leftborder[minIdx]
		sumOfWidth += width

		c := cost(minIdx, maxIdx)
		if width > largestWidth {
			largestWidth = width
		}
		if c > largestCost {
			largestCost = c
		}

		parts = append(parts, Part{
			MinIndex:     minIdx,
			MaxIndex:     maxIdx,
			WidthOfPart:  width,
			SuftabOffset: sumOfWidth - width,
			SumOfWidth:   sumOfWidth,
		})
		minIdx = maxIdx + 1
	}
	return parts, largestWidth, largestCost
}

// searchBoundary finds the largest bucket index i in [lo, lastBucket]
// such that the cumulative width through i, leftborder[i+1], does not
// exceed wantCount — the last bucket index to include in a part that
// should hold approximately wantCount suffixes. Always includes at
// least lo, even if that alone overshoots wantCount.
func searchBoundary(leftborder []uint64, lo, lastBucket int, wantCount uint64) int {
	result := lo
	for i := lo; i <= lastBucket; i++ {
		if leftborder[i+1] <= wantCount {
			result = i
		} else {
			break
		}
	}
	return result
}

func dropEmptyAndRenormalize(parts []Part) []Part {
	out := make([]Part, 0, len(parts))
	for _, p := range parts {
		if p.WidthOfPart == 0 {
			continue
		}
		out = append(out, p)
	}
	var sum uint64
	for i := range out {
		sum += out[i].WidthOfPart
		out[i].SuftabOffset = sum - out[i].WidthOfPart
		out[i].SumOfWidth = sum
	}
	return out
}
