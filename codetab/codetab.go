// Package codetab implements the bucket-key table and partial-sums
// structure (C5): an ordered, deduplicated list of k-mer bucket codes
// plus left-border counters that a count pass turns into offsets.
//
// Two constructors share one BucketCodeTable type: NewFirstCodes
// enumerates every k-mer start, NewRandomCodes samples a subset via
// github.com/will-rowe/nthash, matching the umbrella naming
// "RandomCodes/FirstCodes" used throughout the corpus this is
// grounded on.
package codetab

import (
	"sort"

	"github.com/twotwotwo/sorts/sortutil"
	"github.com/will-rowe/nthash"
)

// sentinelCode is the all-ones mask appended as the last entry of
// Codes so out-of-range lookups fall into a dedicated final bucket.
const sentinelCode = ^uint64(0)

// BucketCodeTable is the ordered unique list codes[0..D] plus the
// left-border partial-sum array leftborder[0..D+1] (spec §4.5,
// §3 BucketCodeTable).
type BucketCodeTable struct {
	Codes      []uint64 // length D+1, strictly increasing, Codes[D] == sentinelCode
	Leftborder []uint64 // length D+2 during counting/after transform

	bscache      []uint64 // evenly spaced binary-search cache
	bscacheDepth uint

	currentMinIndex int
	currentMaxIndex int
}

// NewFirstCodes builds a BucketCodeTable by enumerating every
// deduplicated code the caller supplies via rawCodes (already computed
// by a kmerscan pass over every k-mer start).
func NewFirstCodes(rawCodes []uint64) *BucketCodeTable {
	return newFromRaw(rawCodes)
}

// NewRandomCodes builds a BucketCodeTable from a hash-sampled subset of
// rawCodes: seqBytes is the ASCII base stream the codes were scanned
// from (one k-mer start per element of rawCodes, in order); position p
// is retained only if its rolling nthash, modulo samplingFactor, is
// zero. This replaces an ad hoc PRNG with the pack's rolling hasher,
// giving a deterministic, seed-free ~totalLen/samplingFactor sample
// (spec §4.5).
func NewRandomCodes(rawCodes []uint64, seqBytes []byte, k int, samplingFactor uint64) (*BucketCodeTable, error) {
	if samplingFactor == 0 {
		samplingFactor = 1
	}
	if samplingFactor == 1 {
		return newFromRaw(rawCodes), nil
	}

	hasher, err := nthash.NewHasher(&seqBytes, uint(k))
	if err != nil {
		return nil, err
	}
	sampled := make([]uint64, 0, len(rawCodes)/int(samplingFactor)+1)
	for _, code := range rawCodes {
		h, ok := hasher.Next(true)
		if !ok {
			break
		}
		if h%samplingFactor == 0 {
			sampled = append(sampled, code)
		}
	}
	return newFromRaw(sampled), nil
}

func newFromRaw(rawCodes []uint64) *BucketCodeTable {
	codes := append([]uint64(nil), rawCodes...)
	sortutil.Uint64s(codes)
	codes = dedup(codes)
	codes = append(codes, sentinelCode)

	t := &BucketCodeTable{
		Codes:           codes,
		Leftborder:      make([]uint64, len(codes)+1),
		currentMinIndex: 0,
		currentMaxIndex: len(codes) - 1,
	}
	t.buildCache()
	return t
}

func dedup(sorted []uint64) []uint64 {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// addBscache is the constant offset in the cache-depth formula of
// spec §4.5: depth = addBscache + floor(log10(D)).
const addBscache = 2

func (t *BucketCodeTable) buildCache() {
	d := len(t.Codes) - 1
	if d <= 0 {
		t.bscacheDepth = 0
		t.bscache = nil
		return
	}
	depth := addBscache
	for v := d; v >= 10; v /= 10 {
		depth++
	}
	t.bscacheDepth = uint(depth)
	size := 1 << t.bscacheDepth
	t.bscache = make([]uint64, size)
	step := float64(len(t.Codes)-1) / float64(size)
	for i := 0; i < size; i++ {
		idx := int(float64(i) * step)
		if idx >= len(t.Codes) {
			idx = len(t.Codes) - 1
		}
		t.bscache[i] = uint64(idx)
	}
}

// Increment records one observation of code during the count pass.
func (t *BucketCodeTable) Increment(code uint64) {
	i := t.FindAccu(code)
	t.Leftborder[i]++
}

// Transform converts per-code counts in Leftborder into cumulative
// offsets: after the call, Leftborder[i+1]-Leftborder[i] is the count
// observed for Codes[i], and the last entry (Leftborder[D+1]) is the
// total count, including the sentinel's bucket.
func (t *BucketCodeTable) Transform() {
	var sum uint64
	for i := range t.Leftborder {
		c := t.Leftborder[i]
		t.Leftborder[i] = sum
		sum += c
	}
}

// TotalCount returns the last Leftborder entry after Transform has run:
// the total count over every bucket, the sentinel's included.
func (t *BucketCodeTable) TotalCount() uint64 {
	return t.Leftborder[len(t.Leftborder)-1]
}

// FindAccu returns the index i such that Codes[i] is the least code
// >= code, using the flat binary-search cache for a coarse starting
// window before a final linear/binary refinement (spec §4.5).
func (t *BucketCodeTable) FindAccu(code uint64) int {
	lo, hi := t.cacheWindow(code)
	return t.binarySearch(code, lo, hi)
}

// FindInsert is FindAccu restricted to the active part's window
// [currentMinIndex, currentMaxIndex], set by SetWindow.
func (t *BucketCodeTable) FindInsert(code uint64) int {
	return t.binarySearch(code, t.currentMinIndex, t.currentMaxIndex)
}

// SetWindow narrows the range FindInsert searches, used per-part
// during the insertion phase.
func (t *BucketCodeTable) SetWindow(minIdx, maxIdx int) {
	t.currentMinIndex = minIdx
	t.currentMaxIndex = maxIdx
}

func (t *BucketCodeTable) cacheWindow(code uint64) (lo, hi int) {
	if len(t.bscache) == 0 {
		return 0, len(t.Codes) - 1
	}
	size := len(t.bscache)
	bucket := sort.Search(size, func(i int) bool {
		idx := t.bscache[i]
		return t.Codes[idx] >= code
	})
	lo = 0
	if bucket > 0 {
		lo = int(t.bscache[bucket-1])
	}
	hi = len(t.Codes) - 1
	if bucket < size {
		hi = int(t.bscache[bucket])
	}
	return lo, hi
}

func (t *BucketCodeTable) binarySearch(code uint64, lo, hi int) int {
	for lo < hi {
		mid := lo + (hi-lo)/2
		if t.Codes[mid] >= code {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
