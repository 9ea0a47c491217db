package suftabparts

import "testing"

// TestTwoPartsFromScenario reproduces the literal scenario: D=4,
// leftborder=[0,10,20,30,40], a budget that only a 2-part split fits,
// producing parts [0..1] and [2..3] with largestWidth==20.
func TestTwoPartsFromScenario(t *testing.T) {
	leftborder := []uint64{0, 10, 20, 30, 40}
	cost := func(minIdx, maxIdx int) uint64 { return 0 } // no mapped-range overhead in this scenario

	// one part costs 40 suffix-slots, which must not fit; two parts
	// cost 20 each, which must fit.
	budget := uint64(21) // just above 20 suffix-slot worth (spmEntrySize=1)
	parts, err := Compute(leftborder, 0, budget, 1, cost)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(parts.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d: %+v", len(parts.Parts), parts.Parts)
	}
	if parts.Parts[0].MinIndex != 0 || parts.Parts[0].MaxIndex != 1 {
		t.Errorf("part 0 = %+v, want MinIndex=0 MaxIndex=1", parts.Parts[0])
	}
	if parts.Parts[1].MinIndex != 2 || parts.Parts[1].MaxIndex != 3 {
		t.Errorf("part 1 = %+v, want MinIndex=2 MaxIndex=3", parts.Parts[1])
	}
	if parts.LargestWidth != 20 {
		t.Errorf("LargestWidth = %d, want 20", parts.LargestWidth)
	}
}

func TestWidthsSumToTotal(t *testing.T) {
	leftborder := []uint64{0, 5, 9, 30, 31, 50}
	cost := func(minIdx, maxIdx int) uint64 { return 0 }
	parts, err := Compute(leftborder, 0, 1000, 1, cost)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	var sum uint64
	for _, p := range parts.Parts {
		sum += p.WidthOfPart
		if p.WidthOfPart == 0 {
			t.Errorf("zero-width part should have been dropped: %+v", p)
		}
	}
	if sum != 50 {
		t.Errorf("widths sum to %d, want 50", sum)
	}
}

func TestBudgetExceededFailsAfterSearch(t *testing.T) {
	leftborder := []uint64{0, 10, 20, 30, 40}
	cost := func(minIdx, maxIdx int) uint64 { return 0 }
	_, err := Compute(leftborder, 0, 0, 1, cost)
	if err == nil {
		t.Fatalf("expected budget-exceeded error for a zero budget")
	}
	if _, ok := err.(*ErrBudgetExceeded); !ok {
		t.Errorf("expected *ErrBudgetExceeded, got %T", err)
	}
}

func TestPartsContiguous(t *testing.T) {
	leftborder := []uint64{0, 10, 20, 30, 40}
	cost := func(minIdx, maxIdx int) uint64 { return 0 }
	parts, err := Compute(leftborder, 0, 21, 1, cost)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for i := 1; i < len(parts.Parts); i++ {
		if parts.Parts[i].MinIndex != parts.Parts[i-1].MaxIndex+1 {
			t.Errorf("parts not contiguous between %+v and %+v", parts.Parts[i-1], parts.Parts[i])
		}
	}
}
