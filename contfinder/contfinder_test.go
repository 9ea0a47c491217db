package contfinder

import "testing"

// fixedSeqs is a trivial SeqAccess over in-memory ASCII-coded (0..3) reads.
type fixedSeqs [][]uint8

func (s fixedSeqs) NumSeqs() uint64         { return uint64(len(s)) }
func (s fixedSeqs) SeqLen(i uint64) uint64  { return uint64(len(s[i])) }
func (s fixedSeqs) Symbol(i, pos uint64) uint8 { return s[i][pos] }

// TestContainedPrefixAndDuplicate reproduces the literal scenario:
// reads [AAAA, AAAAT, AAAA] (A=0,T=3); read 0 is a prefix of read 1,
// read 2 duplicates read 0; non-contained set is {1}.
func TestContainedPrefixAndDuplicate(t *testing.T) {
	seqs := fixedSeqs{
		{0, 0, 0, 0},
		{0, 0, 0, 0, 3},
		{0, 0, 0, 0},
	}
	f := New(seqs, false)
	f.Run()

	c := f.Contained()
	if len(c) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(c))
	}
	if !c[0] {
		t.Errorf("read 0 (prefix of read 1) should be contained")
	}
	if c[1] {
		t.Errorf("read 1 (the longer read) should not be contained")
	}
	if !c[2] {
		t.Errorf("read 2 (duplicate of read 0) should be contained")
	}

	order := f.NonContainedOrder()
	if len(order) != 1 || order[0] != 1 {
		t.Errorf("expected non-contained order [1], got %v", order)
	}
}

func TestCopyNumberAccumulates(t *testing.T) {
	seqs := fixedSeqs{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	f := New(seqs, false)
	f.Run()

	cn := f.CopyNumbers()
	total := 0
	for _, v := range cn {
		total += int(v)
	}
	if total != len(seqs) {
		t.Errorf("copy numbers should sum to read count %d, got %d", len(seqs), total)
	}

	nonContained := 0
	for i, c := range f.Contained() {
		if !c {
			nonContained++
			if cn[i] != uint8(len(seqs)) {
				t.Errorf("representative %d should have copy number %d, got %d", i, len(seqs), cn[i])
			}
		}
	}
	if nonContained != 1 {
		t.Errorf("expected exactly one representative, got %d", nonContained)
	}
}

func TestEmptySeqAccess(t *testing.T) {
	f := New(fixedSeqs{}, false)
	f.Run()
	if len(f.Contained()) != 0 {
		t.Errorf("expected no entries")
	}
}
