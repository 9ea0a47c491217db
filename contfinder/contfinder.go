// Package contfinder implements the contained/duplicate-read detector
// (C3): an MSD radix sort over two-bit-encoded reads, optionally
// including their reverse complements, that marks reads which are a
// strict prefix or exact duplicate of another read.
//
// Grounded on the flat two-bit SymbolReader contract shared with
// kmerscan/twobit; the bucket subsort itself is a hand-rolled MSD
// radix split in the same shape as radixsort's (github.com/twotwotwo/sorts
// is used for primitive-slice sorts elsewhere, in codetab/codebuf).
package contfinder

import (
	"sort"

	"github.com/gtkmer/gtkmer/bitpack"
)

// SeqAccess exposes the fixed- or variable-length read set a Finder
// operates over, independent of how it is stored.
type SeqAccess interface {
	NumSeqs() uint64
	SeqLen(seqnum uint64) uint64
	// Symbol returns the base (0..3) at relative position pos of seqnum.
	Symbol(seqnum, pos uint64) uint8
}

const (
	radixChunkBases = 4 // 4 nucleotides per 8-bit radix round
	insertionCutoff = 31
	maxCopyNumber   = 255
)

// Finder runs the MSD radix sort / containment marking pass.
type Finder struct {
	seqs     SeqAccess
	n        uint64 // number of real (forward) reads
	mirrored bool

	contained []bool   // length n, indexed by real (forward) seqnum
	copyNum   []uint8  // length n; zero if read is contained in another
	rep       []uint64 // length n; union-find root each read's count has folded into
}

// New creates a Finder over seqs. When mirrored is true, the logical
// index space doubles: indices [0,n) are forward reads, [n,2n) are
// their reverse complements (spec §4.3 item 1).
func New(seqs SeqAccess, mirrored bool) *Finder {
	n := seqs.NumSeqs()
	rep := make([]uint64, n)
	for i := range rep {
		rep[i] = uint64(i)
	}
	return &Finder{
		seqs:      seqs,
		n:         n,
		mirrored:  mirrored,
		contained: make([]bool, n),
		copyNum:   make([]uint8, n),
		rep:       rep,
	}
}

// find returns the current representative real seqnum that real's
// copy number has folded into (path-compressed union-find).
func (f *Finder) find(real uint64) uint64 {
	for f.rep[real] != real {
		f.rep[real] = f.rep[f.rep[real]]
		real = f.rep[real]
	}
	return real
}

// logicalLen returns the length of logical read li (in the doubled
// index space when mirrored).
func (f *Finder) logicalLen(li uint64) uint64 {
	return f.seqs.SeqLen(f.realSeqnum(li))
}

// realSeqnum maps a logical (possibly mirrored) index back to the
// forward seqnum that owns its storage.
func (f *Finder) realSeqnum(li uint64) uint64 {
	if li < f.n {
		return li
	}
	return 2*f.n - 1 - li
}

func (f *Finder) isMirror(li uint64) bool { return li >= f.n }

// logicalSymbol returns the base at depth-position pos of logical read
// li, reverse-complementing on the fly for mirrored entries.
func (f *Finder) logicalSymbol(li, pos uint64) uint8 {
	real := f.realSeqnum(li)
	length := f.seqs.SeqLen(real)
	if !f.isMirror(li) {
		return f.seqs.Symbol(real, pos)
	}
	return 3 - f.seqs.Symbol(real, length-1-pos)
}

// getCode returns the next 8-bit radix (4 bases) of logical read li at
// nucleotide depth, plus the overflow count in [0,4] of trailing
// 2-bit slots that fell past the end of the read (spec §4.3 item 2).
func (f *Finder) getCode(li, depth uint64) (code uint8, overflow int) {
	length := f.logicalLen(li)
	for i := 0; i < radixChunkBases; i++ {
		pos := depth + uint64(i)
		var sym uint8
		if pos < length {
			sym = f.logicalSymbol(li, pos)
		} else {
			sym = 0
			overflow++
		}
		code = (code << 2) | sym
	}
	return code, overflow
}

// Run performs the full pass and populates Contained/CopyNumbers.
func (f *Finder) Run() {
	if f.n == 0 {
		return
	}
	logicalN := f.n
	if f.mirrored {
		logicalN = 2 * f.n
	}
	indices := make([]uint64, logicalN)
	for i := range indices {
		indices[i] = uint64(i)
	}
	for i := range f.copyNum {
		f.copyNum[i] = 1
	}

	f.radixSortLevel(indices, 0)
}

// radixSortLevel performs one MSD radix round over indices (all at the
// same depth), recursing into no-overflow buckets and falling back to
// insertion sort on small buckets, per spec §4.3 items 3-6.
func (f *Finder) radixSortLevel(indices []uint64, depth uint64) {
	if len(indices) == 0 {
		return
	}
	if len(indices) <= insertionCutoff {
		f.insertionSort(indices, depth)
		return
	}

	type bucketKey struct {
		radix    uint8
		overflow int
	}
	buckets := map[bucketKey][]uint64{}
	for _, li := range indices {
		radix, overflow := f.getCode(li, depth)
		k := bucketKey{radix, overflow}
		buckets[k] = append(buckets[k], li)
	}

	// longerSibling finds the "has a longer sibling" anchor for an
	// overflow bucket: a member of a no-overflow bucket whose leading
	// 4-overflow symbols equal the overflow bucket's real symbols. That
	// read extends past this radix round on the same prefix, so it
	// contains every member of the overflow bucket (spec §4.3 item 6).
	longerSibling := func(k bucketKey) (uint64, bool) {
		shift := 2 * uint(k.overflow)
		for k2, members := range buckets {
			if k2.overflow == 0 && len(members) > 0 && k2.radix>>shift == k.radix>>shift {
				return members[0], true
			}
		}
		return 0, false
	}

	for k, members := range buckets {
		if k.overflow == 0 {
			f.radixSortLevel(members, depth+radixChunkBases)
			continue
		}
		// overflow > 0: every member here is a strict prefix of the
		// longer reads in a matching no-overflow bucket, if one exists.
		if anchor, ok := longerSibling(k); ok {
			f.markAllContainedIn(members, anchor)
		} else {
			f.insertionSort(members, depth)
		}
	}
}

// insertionSort handles a small bucket (<=31 members) by full-suffix
// comparison, marking ties and prefix containment (spec §4.3 item 4).
// Unlike a textbook insertion sort, containment here is not limited to
// adjacent ranks: every pair sharing the bucket is compared, since a
// prefix relationship need not survive as lexicographic adjacency once
// other bucket members interleave.
func (f *Finder) insertionSort(indices []uint64, depth uint64) {
	n := len(indices)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			f.markContainedPair(indices[i], indices[j], depth)
		}
	}
}

// suffixRelation classifies how the suffixes (from depth) of logical
// reads a and b compare: 0 if equal in full, -1 if a is a strict
// prefix of b, 1 if b is a strict prefix of a, 2 if neither contains
// the other.
func (f *Finder) suffixRelation(a, b uint64, depth uint64) int {
	la, lb := f.logicalLen(a), f.logicalLen(b)
	for p := depth; ; p++ {
		aEnd := p >= la
		bEnd := p >= lb
		if aEnd && bEnd {
			return 0
		}
		if aEnd {
			return -1
		}
		if bEnd {
			return 1
		}
		if f.logicalSymbol(a, p) != f.logicalSymbol(b, p) {
			return 2
		}
	}
}

// markContainedPair applies spec §4.3 item 4's tie/prefix rules to one
// unordered pair of logical indices.
func (f *Finder) markContainedPair(i, j uint64, depth uint64) {
	switch f.suffixRelation(i, j, depth) {
	case 0:
		// equal sequences: all but the lowest logical seqnum are contained.
		if i < j {
			f.markContained(j, i)
		} else {
			f.markContained(i, j)
		}
	case -1:
		// i is a strict prefix of j: i is contained in j.
		f.markContained(i, j)
	case 1:
		f.markContained(j, i)
	}
}

// markAllContainedIn marks every member of an overflow bucket as
// contained in anchor, a read from the sibling no-overflow bucket that
// extends past the current radix round (spec §4.3 item 5). The
// self-mirrored edge case (the anchor itself turning up among members)
// is handled by markContained's own no-op-on-self-reference guard.
func (f *Finder) markAllContainedIn(members []uint64, anchor uint64) {
	for _, m := range members {
		if m == anchor {
			continue
		}
		f.markContained(m, anchor)
	}
}

// markContained marks logical index victim's real seqnum as contained
// and folds its copy number into containing's representative
// (saturating at 255, then zeroing the victim's own counter), per
// spec §4.3 "Copy numbers".
func (f *Finder) markContained(victim, containing uint64) {
	realVictim := f.find(f.realSeqnum(victim))
	realContaining := f.find(f.realSeqnum(containing))
	if realVictim == realContaining {
		return
	}
	f.contained[realVictim] = true

	sum := int(f.copyNum[realContaining]) + int(f.copyNum[realVictim])
	if sum > maxCopyNumber {
		sum = maxCopyNumber
	}
	f.copyNum[realContaining] = uint8(sum)
	f.copyNum[realVictim] = 0
	f.rep[realVictim] = realContaining
}

// Contained returns the bit vector of length NumSeqs(): true where the
// read is contained in (or a duplicate of) another read.
func (f *Finder) Contained() []bool { return f.contained }

// CopyNumbers returns one byte per read: the accumulated duplicate
// count for non-contained representatives, 0 for contained reads
// (spec §4.3 "Copy numbers").
func (f *Finder) CopyNumbers() []uint8 { return f.copyNum }

// NonContainedOrder returns the seqnums of non-contained reads in
// lexicographic order of their sequence content (spec §4.3 "sorted
// order of non-contained reads"), not numeric seqnum order.
func (f *Finder) NonContainedOrder() []uint64 {
	out := make([]uint64, 0, f.n)
	for i := uint64(0); i < f.n; i++ {
		if !f.contained[i] {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return f.lessLex(out[a], out[b])
	})
	return out
}

// lessLex reports whether real seqnum a's sequence sorts strictly
// before b's, comparing symbol by symbol and treating the shorter
// sequence as lexicographically smaller when one is a prefix of the
// other.
func (f *Finder) lessLex(a, b uint64) bool {
	la, lb := f.seqs.SeqLen(a), f.seqs.SeqLen(b)
	for p := uint64(0); ; p++ {
		aEnd, bEnd := p >= la, p >= lb
		if aEnd && bEnd {
			return false
		}
		if aEnd {
			return true
		}
		if bEnd {
			return false
		}
		sa, sb := f.seqs.Symbol(a, p), f.seqs.Symbol(b, p)
		if sa != sb {
			return sa < sb
		}
	}
}

// EncodeClb packs Contained() into a bitpack.BitString for the *.clb
// output file (spec §6).
func EncodeClb(contained []bool) bitpack.BitString {
	bs := bitpack.NewBitString(uint64(len(contained)))
	for i, c := range contained {
		if c {
			bitpack.SetBit(bs, uint64(i))
		}
	}
	return bs
}
