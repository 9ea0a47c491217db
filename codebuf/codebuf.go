// Package codebuf implements the fixed-capacity code-position staging
// buffer (C6): a small in-memory buffer drained by a caller-supplied
// flush function whenever it fills, used both in the counting phase
// (scalar k-mer codes) and the insertion phase ((code, position) pairs).
//
// Grounded on spec §4.6's CodePosBuffer and on the teacher's pattern of
// small fixed-capacity staging slices drained through a callback (see
// unikmer/cmd's writer buffering in util-io.go), generalized here for
// two payload shapes sharing one flush discipline.
package codebuf

import (
	"sort"

	"github.com/twotwotwo/sorts/sortutil"
)

// Pos is one staged (code, position) pair of the insertion pass. Its
// Pos field holds a position packed by EncodePos: the low
// BitsForRelpos bits hold relpos and the rest hold seqnum.
type Pos struct {
	Code uint64
	Pos  uint64
}

// BitsForRelpos returns ceil(log2(maxSeqLen - skipShorter + 1)), the
// width spec §3 prescribes for the low relpos bits of an encoded
// position.
func BitsForRelpos(maxSeqLen, skipShorter uint64) uint {
	n := maxSeqLen - skipShorter + 1
	bits := uint(0)
	for (uint64(1) << bits) < n {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	return bits
}

// EncodePos packs seqnum and relpos into one word using width relpos
// bits for relpos, low-order.
func EncodePos(seqnum, relpos uint64, relposBits uint) uint64 {
	return (seqnum << relposBits) | relpos
}

// DecodePos reverses EncodePos.
func DecodePos(packed uint64, relposBits uint) (seqnum, relpos uint64) {
	mask := (uint64(1) << relposBits) - 1
	return packed >> relposBits, packed & mask
}

// CountingBuffer stages scalar u64 codes during the count pass. Its
// flush sorts the staged codes and merges them against the bucket
// table, incrementing leftborder counts (spec §4.6 "Counting phase").
type CountingBuffer struct {
	buf   []uint64
	flush func([]uint64)
}

// NewCountingBuffer allocates a CountingBuffer of the given capacity.
// flush is called with exactly the staged codes, already sorted in
// ascending order by Flush.
func NewCountingBuffer(capacity int, flush func([]uint64)) *CountingBuffer {
	return &CountingBuffer{buf: make([]uint64, 0, capacity), flush: flush}
}

// Push appends one code and flushes as soon as the buffer is full.
func (b *CountingBuffer) Push(code uint64) {
	b.buf = append(b.buf, code)
	if len(b.buf) == cap(b.buf) {
		b.Flush()
	}
}

// Flush sorts the staged codes and drains them via the flush callback,
// then resets nextFree to 0 (spec §3 CodePosBuffer invariant).
func (b *CountingBuffer) Flush() {
	if len(b.buf) == 0 {
		return
	}
	sortutil.Uint64s(b.buf)
	b.flush(b.buf)
	b.buf = b.buf[:0]
}

// Len reports nextFree, the number of staged-but-unflushed codes.
func (b *CountingBuffer) Len() int { return len(b.buf) }

// InsertionBuffer stages (code, packed-position) pairs during the
// insertion pass. Its flush sorts by the code component, then merges
// against the active part's slice of the bucket table, appending each
// matched position into SpmSuftab at an incrementing per-bucket cursor
// (spec §4.6 "Insertion phase").
type InsertionBuffer struct {
	buf   []Pos
	flush func([]Pos)
}

// NewInsertionBuffer allocates an InsertionBuffer of the given capacity.
func NewInsertionBuffer(capacity int, flush func([]Pos)) *InsertionBuffer {
	return &InsertionBuffer{buf: make([]Pos, 0, capacity), flush: flush}
}

// Push appends one (code, position) pair and flushes as soon as the
// buffer is full.
func (b *InsertionBuffer) Push(code, packedPos uint64) {
	b.buf = append(b.buf, Pos{Code: code, Pos: packedPos})
	if len(b.buf) == cap(b.buf) {
		b.Flush()
	}
}

// Flush sorts the staged pairs by Code and drains them, then resets
// nextFree to 0.
func (b *InsertionBuffer) Flush() {
	if len(b.buf) == 0 {
		return
	}
	sortPosByCode(b.buf)
	b.flush(b.buf)
	b.buf = b.buf[:0]
}

// Len reports nextFree for the insertion buffer.
func (b *InsertionBuffer) Len() int { return len(b.buf) }

// sortPosByCode sorts the staged pairs by Code. InsertionBuffer
// capacities reach into the tens of thousands for large read
// collections, so this uses sort.Slice rather than a quadratic
// insertion sort; Pos isn't a primitive slice, so sortutil (which only
// sorts []uint64/[]int/etc.) doesn't apply here the way it does in
// CountingBuffer.Flush.
func sortPosByCode(s []Pos) {
	sort.Slice(s, func(i, j int) bool { return s[i].Code < s[j].Code })
}
