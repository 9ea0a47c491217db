// Package twobit implements the streaming FASTA/FASTQ two-bit DNA
// encoder (spec §4.2, component C2) and the ReadSet/ReadsLibrary data
// model (spec §3) it produces.
//
// Grounded on original_source/src/match/reads2twobit.c for the
// per-library state machine, and on the teacher's
// github.com/shenwei356/unikmer "kmer.go" for the A/C/G/T <-> 0..3
// mapping. The two-bit store itself is layered directly on bitpack
// (C1): a TwobitEncoding is a bitpack.PackedIntArray with bitsPerElem=2,
// so every symbol read/write in this package reuses C1's bit-exact
// store/get rather than re-deriving bit arithmetic.
package twobit

import "github.com/gtkmer/gtkmer/bitpack"

// Encoding is the logical array of 2-bit symbols backing a ReadSet.
// Symbol values 0/1/2/3 map to A/C/G/T until the separator code is
// chosen; after that, one value additionally marks sequence boundaries.
type Encoding struct {
	arr *bitpack.PackedIntArray
	n   uint64
}

const minEncodingCapacity = 1024

// NewEncoding allocates an Encoding sized for at least capacityHint symbols.
func NewEncoding(capacityHint uint64) *Encoding {
	if capacityHint < minEncodingCapacity {
		capacityHint = minEncodingCapacity
	}
	return &Encoding{arr: bitpack.NewPackedIntArray(2, capacityHint)}
}

// Len returns the number of symbols appended so far.
func (e *Encoding) Len() uint64 { return e.n }

func (e *Encoding) grow(minCap uint64) {
	newCap := e.arr.Len() * 2
	if newCap < minCap {
		newCap = minCap
	}
	newArr := bitpack.NewPackedIntArray(2, newCap)
	if e.n > 0 {
		bitpack.Copy(newArr.Bytes(), 0, e.arr.Bytes(), 0, e.n*2)
	}
	e.arr = newArr
}

// Append adds one 2-bit symbol to the end of the encoding.
func (e *Encoding) Append(sym uint8) {
	if e.n >= e.arr.Len() {
		e.grow(e.n + 1)
	}
	e.arr.Store(e.n, uint64(sym))
	e.n++
}

// Truncate drops the last n symbols (used to discard a provisional
// separator, or to roll back an invalid sequence).
func (e *Encoding) Truncate(n uint64) {
	if n > e.n {
		panic("twobit: Truncate below zero length")
	}
	e.n -= n
}

// Symbol returns the 2-bit symbol at pos. Implements kmerscan.SymbolReader.
func (e *Encoding) Symbol(pos uint64) uint8 {
	return uint8(e.arr.Get(pos))
}

// SetSymbol overwrites the symbol at pos, used when rewriting
// provisional separator codes (value 3) to the definitive separator
// code chosen after a full encoding pass.
func (e *Encoding) SetSymbol(pos uint64, sym uint8) {
	e.arr.Store(pos, uint64(sym))
}

// RewriteAt overwrites the symbol at every position in positions with
// newSym. Used once, after encoding completes, to rewrite the
// provisional separator code (always 3 while encoding is in progress)
// to the definitive least-frequent code.
func (e *Encoding) RewriteAt(positions []uint64, newSym uint8) {
	for _, pos := range positions {
		e.SetSymbol(pos, newSym)
	}
}
