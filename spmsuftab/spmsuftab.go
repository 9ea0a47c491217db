// Package spmsuftab implements the bit-packed suffix-position output
// store (C10): a packed array of (seqnum,relpos) entries addressed by
// part offset, sequential to write and random-access to read,
// delegating all bit manipulation to bitpack (spec §4.10).
package spmsuftab

import (
	"github.com/gtkmer/gtkmer/bitpack"
	"github.com/gtkmer/gtkmer/codebuf"
)

// SpmSuftab is the packed suffix-position table. Each entry packs
// (seqnum, relpos) into one bitsPerEntry-wide element via codebuf's
// EncodePos/DecodePos convention.
type SpmSuftab struct {
	arr        *bitpack.PackedIntArray
	relposBits uint
	cursor     uint64 // next free absolute index, for sequential per-part writes
}

// New allocates a SpmSuftab for numEntries positions. totalLength is
// the encoded sequence's total length (used to size the seqnum field);
// relposBits is ceil(log2(maxSeqLen-skipShorter+1)) as computed by
// codebuf's BitsForRelpos.
func New(numEntries uint64, totalLength uint64, relposBits uint) *SpmSuftab {
	bitsPerEntry := requiredBits(totalLength) + int(relposBits)
	return &SpmSuftab{
		arr:        bitpack.NewPackedIntArray(uint32(bitsPerEntry), numEntries),
		relposBits: relposBits,
	}
}

func requiredBits(v uint64) int {
	n := 0
	for v > 0 {
		v >>= 1
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// Append writes one (seqnum,relpos) pair at the next sequential index,
// used while a bucket's positions are inserted in order.
func (s *SpmSuftab) Append(seqnum, relpos uint64) {
	s.Set(s.cursor, seqnum, relpos)
	s.cursor++
}

// Set writes one (seqnum,relpos) pair at an explicit absolute index
// (used by C8's disjoint parallel workers writing into non-overlapping
// slices, and by C6's incrementing per-bucket insertion cursor).
func (s *SpmSuftab) Set(index, seqnum, relpos uint64) {
	s.arr.Store(index, codebuf.EncodePos(seqnum, relpos, s.relposBits))
}

// Get reads the (seqnum,relpos) pair at an absolute index.
func (s *SpmSuftab) Get(index uint64) (seqnum, relpos uint64) {
	return codebuf.DecodePos(s.arr.Get(index), s.relposBits)
}

// Len returns the total entry capacity.
func (s *SpmSuftab) Len() uint64 { return s.arr.Len() }

// Bytes exposes the raw packed bitstring for serialization.
func (s *SpmSuftab) Bytes() bitpack.BitString { return s.arr.Bytes() }
