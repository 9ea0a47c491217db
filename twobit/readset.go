package twobit

import "github.com/gtkmer/gtkmer/bitpack"

// LenMode distinguishes the equal-length fast path from the
// variable-length fallback (spec §3 ReadSet).
type LenMode int

const (
	// EqualLen means every sequence (including its trailing separator)
	// occupies exactly EqualLength positions.
	EqualLen LenMode = iota
	// VariableLen means per-sequence separator positions are tracked
	// explicitly in Seppos.
	VariableLen
)

// provisionalSeparator is the symbol value used for every separator
// while encoding is still in progress. It shares value 3 with T; the
// definitive separator choice happens only after encoding finishes, at
// which point separators are told apart from real T symbols via the
// tracked separator position list rather than by value.
const provisionalSeparator uint8 = 3

// ReadsLibrary records one addLibrary() call's contribution to the
// flat ReadSet (spec §3 ReadsLibrary).
type ReadsLibrary struct {
	Paired         bool
	File1          string
	File2          string // empty for unpaired or interleaved-paired
	InsertLength   int64  // -1 if not given
	InsertStdev    float64
	FirstSeqnum    uint64
	NSeqs          uint64
	TotalSeqLength uint64
}

// ReadSet is the compact, immutable-once-built biosequence substrate
// produced by the Encoder (spec §3 ReadSet).
type ReadSet struct {
	Twobit         *Encoding
	NSeqs          uint64
	LenMode        LenMode
	EqualLength    uint64   // valid when LenMode == EqualLen; includes the trailing separator slot
	Seppos         []uint64 // valid when LenMode == VariableLen; separator position after sequence i
	CharDistri     [4]uint64
	SeparatorCode  uint8
	HPLengths      *bitpack.PackedIntArray // nil unless RLE was enabled
	TotalSeqLength uint64                  // sum of charDistri plus one separator per gap between sequences

	Libraries []ReadsLibrary

	InvalidSequences      uint64
	InvalidSequencesLength uint64

	// Descriptions holds each sequence's retained header text and
	// DescStarts its byte offset into the concatenated description
	// blob; both nil unless the encoder was told to keep descriptions.
	Descriptions [][]byte
	DescStarts   []uint64

	// EstimatedNumberOfSequences/EstimatedLength are the pre-encoding
	// estimates computed by estimateAndPreallocate, kept for
	// inspection/reporting; the real counts (NSeqs/TotalSeqLength)
	// supersede them once encoding finishes.
	EstimatedNumberOfSequences uint64
	EstimatedLength            uint64
}

// SeqBounds returns the [start, end) half-open range of sequence i in
// the flat two-bit buffer, excluding the separator that follows it
// (absent for the very last sequence of the set, per the observed
// total-length convention: only (NSeqs-1) separators exist between
// NSeqs sequences).
func (rs *ReadSet) SeqBounds(i uint64) (start, end uint64) {
	if rs.LenMode == EqualLen {
		start = i * rs.EqualLength
		end = start + rs.EqualLength - 1
		return
	}
	if i == 0 {
		start = 0
	} else {
		start = rs.Seppos[i-1] + 1
	}
	end = rs.Seppos[i]
	return
}

// Symbol implements kmerscan.SymbolReader by delegating to Twobit.
func (rs *ReadSet) Symbol(pos uint64) uint8 { return rs.Twobit.Symbol(pos) }

// Decode returns the ASCII base string (A/C/G/T) for sequence i.
func (rs *ReadSet) Decode(i uint64) []byte {
	start, end := rs.SeqBounds(i)
	out := make([]byte, 0, end-start)
	for p := start; p < end; p++ {
		out = append(out, code2base[rs.Twobit.Symbol(p)])
	}
	return out
}

var code2base = [4]byte{'A', 'C', 'G', 'T'}
var base2code [256]int8

func init() {
	for i := range base2code {
		base2code[i] = -1
	}
	base2code['A'], base2code['a'] = 0, 0
	base2code['C'], base2code['c'] = 1, 1
	base2code['G'], base2code['g'] = 2, 2
	base2code['T'], base2code['t'] = 3, 3
}
