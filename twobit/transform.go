package twobit

import (
	"sort"

	"github.com/gtkmer/gtkmer/bitpack"
)

// MarkMatesOfContained expands a per-sequence skip/contained list so
// that whenever either mate of a paired library's read is marked, its
// partner is marked too, matching
// reads2twobit.c:gt_reads2twobit_mark_mates_of_contained. Mates are
// the consecutive (seqnum, seqnum+1) pairs committed by commitPair,
// for both two-file and interleaved paired libraries. Returns the
// number of positions newly marked.
func (rs *ReadSet) MarkMatesOfContained(skip []bool) uint64 {
	var marked uint64
	for _, lib := range rs.Libraries {
		if !lib.Paired || lib.NSeqs == 0 {
			continue
		}
		last := lib.FirstSeqnum + lib.NSeqs - 1
		for seqnum := lib.FirstSeqnum; seqnum < last; seqnum += 2 {
			a, b := seqnum, seqnum+1
			switch {
			case skip[a] && !skip[b]:
				skip[b] = true
				marked++
			case skip[b] && !skip[a]:
				skip[a] = true
				marked++
			}
		}
	}
	return marked
}

// DeleteSequences physically removes every sequence i with skip[i]
// set, rewriting the two-bit buffer, separator positions, base
// composition, description blob and library bookkeeping in place.
// Grounded on reads2twobit.c:gt_reads2twobit_delete_sequences. Callers
// that need the original's documented "remove both members of a pair
// when either is set" semantics should call MarkMatesOfContained on
// skip first.
func (rs *ReadSet) DeleteSequences(skip []bool) {
	if rs.NSeqs == 0 {
		return
	}
	order := make([]uint64, 0, rs.NSeqs)
	for i := uint64(0); i < rs.NSeqs; i++ {
		if !skip[i] {
			order = append(order, i)
		}
	}
	rs.rebuild(order, true)
}

// Sort reorders every sequence according to less (sequences are
// compared by their current seqnum), rewriting the two-bit buffer,
// separator positions and descriptions to match the new order.
// Grounded on reads2twobit.c:gt_reads2twobit_sort, used there to bring
// an interleaved mate pair's mate2 immediately after mate1. As in the
// original, per-library FirstSeqnum/NSeqs bookkeeping is left
// untouched: Sort is for reordering sequences within the layout
// libraries already describe, not for changing which library a
// sequence belongs to.
func (rs *ReadSet) Sort(less func(i, j int) bool) {
	if rs.NSeqs == 0 {
		return
	}
	order := make([]uint64, rs.NSeqs)
	for i := range order {
		order[i] = uint64(i)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return less(int(order[i]), int(order[j]))
	})
	rs.rebuild(order, false)
}

// rebuild re-encodes the sequences named by order (old seqnums, in the
// order they should appear in the rewritten ReadSet) into a fresh
// Encoding, recomputing every field derived from sequence content and
// layout. When updateLibraries is set, per-library NSeqs/
// TotalSeqLength/FirstSeqnum are recomputed assuming order preserves
// each library's original relative sequence order (true for
// DeleteSequences, which only ever drops entries).
func (rs *ReadSet) rebuild(order []uint64, updateLibraries bool) {
	newEnc := NewEncoding(rs.TotalSeqLength + 1)
	newSeppos := make([]uint64, 0, len(order))
	var newCharDistri [4]uint64
	haveHP := rs.HPLengths != nil
	var newHP []uint16
	haveDesc := rs.Descriptions != nil
	var newDesc [][]byte
	var newDescStarts []uint64
	var descByteLen uint64

	var commonLen uint64
	haveCommonLen := true

	var newLibs []ReadsLibrary
	liIdx := 0
	if updateLibraries {
		newLibs = make([]ReadsLibrary, len(rs.Libraries))
		copy(newLibs, rs.Libraries)
		for i := range newLibs {
			newLibs[i].NSeqs = 0
			newLibs[i].TotalSeqLength = 0
		}
	}

	for idx, old := range order {
		start, end := rs.SeqBounds(old)
		seqLen := end - start
		for p := start; p < end; p++ {
			sym := rs.Symbol(p)
			newEnc.Append(sym)
			newCharDistri[sym]++
			if haveHP {
				newHP = append(newHP, uint16(rs.HPLengths.Get(p)))
			}
		}
		sepPos := newEnc.Len()
		newEnc.Append(rs.SeparatorCode)
		if haveHP {
			newHP = append(newHP, 0)
		}
		newSeppos = append(newSeppos, sepPos)

		if haveDesc {
			newDescStarts = append(newDescStarts, descByteLen)
			d := rs.Descriptions[old]
			newDesc = append(newDesc, d)
			descByteLen += uint64(len(d))
		}

		stride := seqLen + 1
		if idx == 0 {
			commonLen = stride
		} else if stride != commonLen {
			haveCommonLen = false
		}

		if updateLibraries {
			for liIdx < len(rs.Libraries)-1 &&
				old >= rs.Libraries[liIdx].FirstSeqnum+rs.Libraries[liIdx].NSeqs {
				liIdx++
			}
			newLibs[liIdx].NSeqs++
			newLibs[liIdx].TotalSeqLength += seqLen
		}
	}

	n := uint64(len(order))
	rs.Twobit = newEnc
	rs.NSeqs = n
	rs.CharDistri = newCharDistri
	if n > 0 {
		rs.Twobit.Truncate(1)
	}
	rs.TotalSeqLength = rs.Twobit.Len()

	if haveCommonLen && n > 0 {
		rs.LenMode = EqualLen
		rs.EqualLength = commonLen
		rs.Seppos = nil
	} else {
		rs.LenMode = VariableLen
		if n > 0 {
			newSeppos[n-1] = rs.TotalSeqLength
		}
		rs.Seppos = newSeppos
	}

	if haveHP {
		width := 0
		for _, v := range newHP {
			if b := requiredBitsFor(v); b > width {
				width = b
			}
		}
		if width == 0 {
			width = 1
		}
		arr := bitpack.NewPackedIntArray(uint32(width), uint64(len(newHP)))
		for i, v := range newHP {
			arr.Store(uint64(i), uint64(v))
		}
		rs.HPLengths = arr
	}

	if haveDesc {
		rs.Descriptions = newDesc
		rs.DescStarts = newDescStarts
	}

	if updateLibraries {
		firstSeqnum := uint64(0)
		for i := range newLibs {
			newLibs[i].FirstSeqnum = firstSeqnum
			firstSeqnum += newLibs[i].NSeqs
		}
		rs.Libraries = newLibs
	}
}
