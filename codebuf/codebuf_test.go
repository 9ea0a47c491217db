package codebuf

import (
	"reflect"
	"testing"
)

func TestCountingBufferFlushesAtCapacity(t *testing.T) {
	var flushed [][]uint64
	b := NewCountingBuffer(3, func(codes []uint64) {
		flushed = append(flushed, append([]uint64(nil), codes...))
	})
	b.Push(5)
	b.Push(1)
	b.Push(3)
	if len(flushed) != 1 {
		t.Fatalf("expected a flush exactly at capacity, got %d flushes", len(flushed))
	}
	if b.Len() != 0 {
		t.Errorf("nextFree should reset to 0 after flush, got %d", b.Len())
	}
	if !reflect.DeepEqual(flushed[0], []uint64{1, 3, 5}) {
		t.Errorf("flush should see sorted codes, got %v", flushed[0])
	}
}

func TestCountingBufferManualFlushDrainsTail(t *testing.T) {
	var total int
	b := NewCountingBuffer(10, func(codes []uint64) { total += len(codes) })
	b.Push(1)
	b.Push(2)
	b.Flush()
	if total != 2 {
		t.Errorf("expected tail flush to drain 2 codes, got %d", total)
	}
}

func TestInsertionBufferSortsByCode(t *testing.T) {
	var flushed []Pos
	b := NewInsertionBuffer(4, func(pairs []Pos) {
		flushed = append([]Pos(nil), pairs...)
	})
	b.Push(9, 100)
	b.Push(2, 200)
	b.Push(5, 300)
	b.Push(2, 400)
	if len(flushed) != 4 {
		t.Fatalf("expected flush of 4 pairs, got %d", len(flushed))
	}
	for i := 1; i < len(flushed); i++ {
		if flushed[i].Code < flushed[i-1].Code {
			t.Errorf("pairs not sorted by code: %v", flushed)
		}
	}
}

func TestEncodeDecodePosRoundTrip(t *testing.T) {
	bits := BitsForRelpos(1000, 20)
	packed := EncodePos(42, 17, bits)
	seqnum, relpos := DecodePos(packed, bits)
	if seqnum != 42 || relpos != 17 {
		t.Errorf("round trip got (%d,%d), want (42,17)", seqnum, relpos)
	}
}
