package kmerscan

import "testing"

// symbolSlice is a trivial SymbolReader over an in-memory 2-bit slice,
// used only by tests.
type symbolSlice []uint8

func (s symbolSlice) Symbol(pos uint64) uint8 { return s[pos] }

// ACGT -> 0,1,2,3
func TestScanSegmentACGTk3(t *testing.T) {
	seq := symbolSlice{0, 1, 2, 3}
	var forward []Code
	var rc []Code
	ScanSegment(seq, Segment{0, 4}, 3, 3, func(c Code) {
		if c.ReverseComplement {
			rc = append(rc, c)
		} else {
			forward = append(forward, c)
		}
	})

	if len(forward) != 2 {
		t.Fatalf("expected 2 forward codes (len-k+1=2), got %d", len(forward))
	}
	// ACG = 0*16+1*4+2 = 6
	if forward[0].Code != 6 || forward[0].Relpos != 0 {
		t.Fatalf("ACG: got code=%d relpos=%d", forward[0].Code, forward[0].Relpos)
	}
	// CGT = 1*16+2*4+3 = 27
	if forward[1].Code != 27 || forward[1].Relpos != 1 {
		t.Fatalf("CGT: got code=%d relpos=%d", forward[1].Code, forward[1].Relpos)
	}
	if len(rc) != 2 {
		t.Fatalf("expected 2 reverse-complement codes, got %d", len(rc))
	}
}

func TestScanSegmentCountEqualsLMinusKPlus1(t *testing.T) {
	seq := symbolSlice{0, 1, 2, 3, 0, 1, 2, 3, 0, 1}
	k := 4
	var n int
	ScanSegment(seq, Segment{0, uint64(len(seq))}, k, k, func(c Code) {
		if !c.ReverseComplement {
			n++
		}
	})
	want := len(seq) - k + 1
	if n != want {
		t.Fatalf("got %d forward codes, want %d", n, want)
	}
}

func TestReverseComplementInvolution(t *testing.T) {
	k := 5
	code := uint64(0b0110110011) // arbitrary 10-bit pattern
	rc := ReverseComplementCode(code, k)
	back := ReverseComplementCode(rc, k)
	if back != code {
		t.Fatalf("reverse-complement is not an involution: got %b want %b", back, code)
	}
}

func TestCanonicalPicksSmaller(t *testing.T) {
	k := 3
	code := uint64(6) // ACG
	rc := ReverseComplementCode(code, k)
	want := code
	if rc < code {
		want = rc
	}
	if got := Canonical(code, k); got != want {
		t.Fatalf("Canonical: got %d want %d", got, want)
	}
	if Canonical(code, k) != Canonical(rc, k) {
		t.Fatal("Canonical must agree for a code and its reverse complement")
	}
}

func TestScanSegmentSkipsShort(t *testing.T) {
	seq := symbolSlice{0, 1}
	var calls int
	ScanSegment(seq, Segment{0, 2}, 3, 3, func(c Code) { calls++ })
	if calls != 0 {
		t.Fatalf("segment shorter than k must emit nothing, got %d calls", calls)
	}
}
