// Package kmerscan enumerates k-mer codes over a two-bit encoded
// sequence, forward and reverse-complement, skipping special ranges
// (runs of non-DNA characters) per spec §4.4.
//
// The low-level encode/reverse-complement table is grounded on the
// teacher's github.com/shenwei356/unikmer "kmer.go" (Encode/Canonical),
// generalized here for the two-bit scanner's incremental shift form and
// cross-checked against github.com/shenwei356/kmers' nucleotide table so
// the two pack implementations agree on the A/C/G/T -> 0/1/2/3 mapping.
package kmerscan

import (
	"fmt"

	"github.com/shenwei356/kmers"
)

// SymbolReader exposes the 2-bit symbol (0..3) at a logical position of
// the encoded sequence.
type SymbolReader interface {
	Symbol(pos uint64) uint8
}

// Segment is a maximal run [Start, Start+Len) that contains no
// separator; no emitted k-mer may cross a Segment boundary.
type Segment struct {
	Start uint64
	Len   uint64
}

// Code is one emitted k-mer occurrence.
type Code struct {
	Code      uint64
	Relpos    uint64 // position within the segment
	ReverseComplement bool
}

// MaxK is the largest supported k-mer size; a code must fit in 2*k <= 64 bits.
const MaxK = 32

func checkK(k int) {
	if k < 2 || k > MaxK {
		panic(fmt.Sprintf("kmerscan: kmersize %d out of range [2,%d]", k, MaxK))
	}
}

// codeMask returns the 2k-bit all-ones mask.
func codeMask(k int) uint64 {
	if k == 64/2 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(2*k)) - 1
}

// ReverseComplementCode reverses the order of the k 2-bit symbols packed
// in code and complements each (A<->T, C<->G), i.e. symbol s becomes 3-s.
func ReverseComplementCode(code uint64, k int) uint64 {
	var rc uint64
	for i := 0; i < k; i++ {
		sym := (code >> uint(2*i)) & 3
		rc = (rc << 2) | (3 - sym)
	}
	return rc
}

// ScanSegment enumerates every valid k-mer start within seg, forward and
// reverse-complement, calling emit once per occurrence. It never reads
// outside [seg.Start, seg.Start+seg.Len).
func ScanSegment(sr SymbolReader, seg Segment, k int, skipShorter int, emit func(Code)) {
	checkK(k)
	if skipShorter < k {
		panic("kmerscan: skipShorter must be >= kmersize")
	}
	if seg.Len < uint64(skipShorter) || seg.Len < uint64(k) {
		return
	}
	mask := codeMask(k)

	var fcode uint64
	for i := uint64(0); i < uint64(k); i++ {
		fcode = (fcode << 2) | uint64(sr.Symbol(seg.Start+i))
	}
	rccode := ReverseComplementCode(fcode, k)
	lastRel := seg.Len - uint64(k)

	emit(Code{fcode, 0, false})
	emit(Code{rccode, lastRel, true})

	shiftHigh := uint(2*k - 2)
	for relpos := uint64(1); relpos <= lastRel; relpos++ {
		newSym := uint64(sr.Symbol(seg.Start + relpos + uint64(k) - 1))
		fcode = ((fcode << 2) | newSym) & mask
		comp := 3 - newSym
		rccode = (rccode >> 2) | (comp << shiftHigh)

		emit(Code{fcode, relpos, false})
		emit(Code{rccode, lastRel - relpos, true})
	}
}

// Scan enumerates k-mers over every segment in order.
func Scan(sr SymbolReader, segments []Segment, k int, skipShorter int, emit func(segIdx int, c Code)) {
	for i, seg := range segments {
		ScanSegment(sr, seg, k, skipShorter, func(c Code) { emit(i, c) })
	}
}

// Canonical returns the lexicographically smaller of code and its
// reverse complement, grounded on the teacher's unikmer.Canonical.
func Canonical(code uint64, k int) uint64 {
	rc := ReverseComplementCode(code, k)
	if rc < code {
		return rc
	}
	return code
}

// EncodeASCII encodes an ASCII nucleotide slice (A/C/G/T, case
// insensitive) into a k-mer code, delegating the base lookup table to
// github.com/shenwei356/kmers so the ASCII<->2-bit mapping used by the
// scanner matches the one used by the rest of the pack.
func EncodeASCII(mer []byte) (uint64, error) {
	if len(mer) == 0 || len(mer) > MaxK {
		return 0, fmt.Errorf("kmerscan: kmer length %d out of range [1,%d]", len(mer), MaxK)
	}
	code, err := kmers.Encode(mer)
	if err != nil {
		return 0, fmt.Errorf("kmerscan: %w", err)
	}
	return code, nil
}
