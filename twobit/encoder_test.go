package twobit

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestEncodeFastaUnpairedDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "reads.fasta", ">r1\nACGT\n>r2\nAC\nGT\n")

	e := New(filepath.Join(dir, "idx"))
	if err := e.AddLibrary(path); err != nil {
		t.Fatalf("AddLibrary: %v", err)
	}
	if err := e.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if e.NSeqs() != 2 {
		t.Fatalf("NSeqs = %d, want 2", e.NSeqs())
	}
	rs := e.ReadSet()
	if string(rs.Decode(0)) != "ACGT" {
		t.Errorf("seq0 = %q, want ACGT", rs.Decode(0))
	}
	if string(rs.Decode(1)) != "ACGT" {
		t.Errorf("seq1 = %q, want ACGT", rs.Decode(1))
	}
	if rs.LenMode != EqualLen {
		t.Errorf("expected EqualLen mode for two same-length reads")
	}
}

func TestEncodeFastaVariableLength(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "reads.fasta", ">r1\nACGT\n>r2\nACGTACGT\n")

	e := New(filepath.Join(dir, "idx"))
	if err := e.AddLibrary(path); err != nil {
		t.Fatalf("AddLibrary: %v", err)
	}
	if err := e.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	rs := e.ReadSet()
	if rs.LenMode != VariableLen {
		t.Fatalf("expected VariableLen mode for differing read lengths")
	}
	if string(rs.Decode(0)) != "ACGT" || string(rs.Decode(1)) != "ACGTACGT" {
		t.Errorf("decoded sequences mismatch: %q %q", rs.Decode(0), rs.Decode(1))
	}
	if e.SeqlenMin() != 4 || e.SeqlenMax() != 8 {
		t.Errorf("SeqlenMin/Max = %d/%d, want 4/8", e.SeqlenMin(), e.SeqlenMax())
	}
}

func TestEncodeInvalidSequenceDropped(t *testing.T) {
	dir := t.TempDir()
	// r1 contains an ambiguity code N, which is not in the IUPAC-less
	// A/C/G/T table here, so the whole record is rejected.
	path := writeTemp(t, dir, "reads.fasta", ">r1\nACNT\n>r2\nACGT\n")

	e := New(filepath.Join(dir, "idx"))
	if err := e.AddLibrary(path); err != nil {
		t.Fatalf("AddLibrary: %v", err)
	}
	if err := e.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if e.NSeqs() != 1 {
		t.Fatalf("NSeqs = %d, want 1 (invalid record dropped)", e.NSeqs())
	}
	rs := e.ReadSet()
	if rs.InvalidSequences != 1 {
		t.Errorf("InvalidSequences = %d, want 1", rs.InvalidSequences)
	}
	if string(rs.Decode(0)) != "ACGT" {
		t.Errorf("surviving seq = %q, want ACGT", rs.Decode(0))
	}
}

func TestSeparatorChosenAsLeastFrequentSymbol(t *testing.T) {
	dir := t.TempDir()
	// A appears many times, C/G/T each appear once: C, G, or T must win
	// as the least-frequent symbol and become the separator code.
	path := writeTemp(t, dir, "reads.fasta", ">r1\nAAAAC\n>r2\nAAAAG\n>r3\nAAAAT\n")

	e := New(filepath.Join(dir, "idx"))
	if err := e.AddLibrary(path); err != nil {
		t.Fatalf("AddLibrary: %v", err)
	}
	if err := e.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	rs := e.ReadSet()
	if rs.SeparatorCode == 0 {
		t.Errorf("separator chosen as A (most frequent symbol), want a less-frequent code")
	}
	for i := uint64(0); i < rs.NSeqs; i++ {
		want := []string{"AAAAC", "AAAAG", "AAAAT"}[i]
		if got := string(rs.Decode(i)); got != want {
			t.Errorf("seq %d = %q, want %q", i, got, want)
		}
	}
}

func TestEncodeTwoFilesPaired(t *testing.T) {
	dir := t.TempDir()
	p1 := writeTemp(t, dir, "mate1.fasta", ">p1/1\nACGT\n")
	p2 := writeTemp(t, dir, "mate2.fasta", ">p1/2\nTTTT\n")

	e := New(filepath.Join(dir, "idx"))
	if err := e.AddLibrary(p1 + ":" + p2 + ":300"); err != nil {
		t.Fatalf("AddLibrary: %v", err)
	}
	if err := e.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if e.NSeqs() != 2 {
		t.Fatalf("NSeqs = %d, want 2", e.NSeqs())
	}
	rs := e.ReadSet()
	if string(rs.Decode(0)) != "ACGT" || string(rs.Decode(1)) != "TTTT" {
		t.Errorf("decoded pair mismatch: %q %q", rs.Decode(0), rs.Decode(1))
	}
	if rs.Libraries[0].InsertLength != 300 {
		t.Errorf("InsertLength = %d, want 300", rs.Libraries[0].InsertLength)
	}
}

func TestEncodeFastqQualityFilterDropsPair(t *testing.T) {
	dir := t.TempDir()
	// mate1 has all-low quality ('!' == Phred 0); with maxLow=0, lowQual=2
	// any low-quality base drops the whole pair.
	p1 := writeTemp(t, dir, "m1.fastq", "@p/1\nACGT\n+\n!!!!\n")
	p2 := writeTemp(t, dir, "m2.fastq", "@p/2\nACGT\n+\nIIII\n")

	e := New(filepath.Join(dir, "idx"))
	e.SetQualityFilter(0, 2)
	if err := e.AddLibrary(p1 + ":" + p2 + ":300"); err != nil {
		t.Fatalf("AddLibrary: %v", err)
	}
	if err := e.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if e.NSeqs() != 0 {
		t.Fatalf("NSeqs = %d, want 0 (pair dropped by quality filter)", e.NSeqs())
	}
}

func TestEncodeFastqStrictDescMismatchFails(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "reads.fastq", "@r1\nACGT\n+r2\nIIII\n")

	e := New(filepath.Join(dir, "idx"))
	if err := e.AddLibrary(path); err != nil {
		t.Fatalf("AddLibrary: %v", err)
	}
	if err := e.Encode(); err == nil {
		t.Fatalf("expected strict FASTQ description mismatch error")
	}
}

func TestEncodeFastqRelaxedDescMismatchSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "reads.fastq", "@r1\nACGT\n+r2\nIIII\n")

	e := New(filepath.Join(dir, "idx"))
	e.SetRelaxedFastqDescCheck(true)
	if err := e.AddLibrary(path); err != nil {
		t.Fatalf("AddLibrary: %v", err)
	}
	if err := e.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if e.NSeqs() != 1 {
		t.Fatalf("NSeqs = %d, want 1", e.NSeqs())
	}
}

func TestParseLibrarySpecVariants(t *testing.T) {
	lib, err := ParseLibrarySpec("a.fasta")
	if err != nil || lib.Paired || lib.File1 != "a.fasta" {
		t.Errorf("unpaired spec parsed incorrectly: %+v, err=%v", lib, err)
	}

	lib, err = ParseLibrarySpec("a.fasta:500-50")
	if err != nil || !lib.Paired || !lib.interleaved() || lib.InsertLength != 500 || lib.InsertStdev != 50 {
		t.Errorf("interleaved spec parsed incorrectly: %+v, err=%v", lib, err)
	}

	lib, err = ParseLibrarySpec("a.fasta:b.fasta:300")
	if err != nil || !lib.Paired || lib.interleaved() || lib.File2 != "b.fasta" {
		t.Errorf("two-file spec parsed incorrectly: %+v, err=%v", lib, err)
	}

	if _, err := ParseLibrarySpec("a:b:c:d"); err == nil {
		t.Errorf("expected error for too many fields")
	}
}
