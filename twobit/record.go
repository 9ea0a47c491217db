package twobit

import "github.com/gtkmer/gtkmer/bitpack"

// record is one decoded FASTA/FASTQ record before it is committed to
// the flat two-bit buffer.
type record struct {
	desc []byte
	seq  []byte
	qual []byte // nil for FASTA
}

// recordIterator yields successive records from one file, used for
// two-file paired (lock-step) reading.
type recordIterator interface {
	next() (*record, bool, error)
}

// qualityFails reports whether rec fails the quality filter: more than
// maxLow bases have Phred quality <= lowQual.
func (e *Encoder) qualityFails(rec *record) bool {
	if !e.qualityFilter || rec.qual == nil {
		return false
	}
	n := 0
	for _, q := range rec.qual {
		score := int(q) - e.phredBase
		if score < 0 {
			continue // silently skipped, per spec §4.2
		}
		if score <= e.lowQual {
			n++
		}
	}
	return n > e.maxLow
}

// commitSingle appends one unpaired record if it passes the quality filter.
func (e *Encoder) commitSingle(rec *record) {
	if e.qualityFails(rec) {
		return
	}
	e.appendSequence(rec)
}

// commitPair appends both mates of a pair, applying the rule that
// either mate failing the quality filter drops the whole pair.
func (e *Encoder) commitPair(r1, r2 *record) {
	if e.qualityFails(r1) || e.qualityFails(r2) {
		return
	}
	e.appendSequence(r1)
	e.appendSequence(r2)
}

// appendSequence runs the per-base state machine of spec §4.2 over
// rec.seq: look up each base, roll back on an invalid (anything other
// than A/C/G/T or whitespace) character, optionally collapse homopolymer runs,
// and append the provisional separator.
func (e *Encoder) appendSequence(rec *record) {
	startLen := e.rs.Twobit.Len()
	startHP := len(e.hpLenRaw)

	var baseCount uint64
	var localDistri [4]uint64
	haveRun := false
	invalid := false
	var runSym uint8
	var runLen uint16 // stored run length minus 1

	commitRun := func() {
		if haveRun && e.useRLE {
			e.hpLenRaw[len(e.hpLenRaw)-1] = runLen
		}
	}

	for _, b := range rec.seq {
		switch b {
		case '\n', '\r', ' ', '\t':
			continue
		}
		c := base2code[b]
		if c < 0 {
			// invalid sequence: stop writing, but keep counting bases of
			// this record for the invalid-sequence-length statistic.
			invalid = true
			baseCount++
			continue
		}
		if invalid {
			baseCount++
			continue
		}
		sym := uint8(c)
		if e.useRLE && haveRun && sym == runSym && int(runLen)+1 < e.maxRunLen {
			runLen++
			baseCount++
			continue
		}
		commitRun()
		e.rs.Twobit.Append(sym)
		if e.useRLE {
			e.hpLenRaw = append(e.hpLenRaw, 0)
		}
		haveRun = true
		runSym = sym
		runLen = 0
		localDistri[sym]++
		baseCount++
	}
	commitRun()

	if invalid {
		e.rs.Twobit.Truncate(e.rs.Twobit.Len() - startLen)
		e.hpLenRaw = e.hpLenRaw[:startHP]
		e.rs.InvalidSequences++
		e.rs.InvalidSequencesLength += baseCount
		return
	}
	for c := range localDistri {
		e.rs.CharDistri[c] += localDistri[c]
	}

	sepPos := e.rs.Twobit.Len()
	e.rs.Twobit.Append(provisionalSeparator)
	if e.useRLE {
		e.hpLenRaw = append(e.hpLenRaw, 0)
	}
	e.sepPos = append(e.sepPos, sepPos)

	if e.keepDescriptions {
		e.descStarts = append(e.descStarts, e.descByteLen)
		e.descriptions = append(e.descriptions, rec.desc)
		e.descByteLen += uint64(len(rec.desc))
	}

	e.rs.NSeqs++
	if e.seqlenMin == 0 || baseCount < e.seqlenMin {
		e.seqlenMin = baseCount
	}
	if baseCount > e.seqlenMax {
		e.seqlenMax = baseCount
	}

	stride := sepPos - startLen + 1
	if e.rs.NSeqs == 1 {
		e.commonLen = stride
		e.haveCommonLen = true
	} else if e.haveCommonLen && stride != e.commonLen {
		e.haveCommonLen = false
	}
}

// finalize chooses the definitive separator code, rewrites provisional
// separators, sets LenMode/EqualLength or Seppos, and builds HPLengths.
func (e *Encoder) finalize() {
	// Least frequent of the four symbols becomes the separator, per
	// spec §4.2 and the testable property in spec §8.
	sep := uint8(0)
	for c := uint8(1); c < 4; c++ {
		if e.rs.CharDistri[c] < e.rs.CharDistri[sep] {
			sep = c
		}
	}
	e.rs.SeparatorCode = sep
	e.rs.Twobit.RewriteAt(e.sepPos, sep)

	// The flat buffer never stores a trailing separator after the very
	// last sequence: encoding always appends one provisionally, so the
	// final append is dropped here.
	if e.rs.NSeqs > 0 {
		e.rs.Twobit.Truncate(1)
	}
	e.rs.TotalSeqLength = e.rs.Twobit.Len()

	if e.haveCommonLen && e.rs.NSeqs > 0 {
		e.rs.LenMode = EqualLen
		e.rs.EqualLength = e.commonLen
	} else {
		e.rs.LenMode = VariableLen
		e.rs.Seppos = e.sepPos
		if e.rs.NSeqs > 0 {
			// the last sequence's separator was dropped above; its
			// logical position is still TotalSeqLength (one past the
			// last base), consistent with SeqBounds' use of Seppos[i].
			e.rs.Seppos[len(e.rs.Seppos)-1] = e.rs.TotalSeqLength
		}
	}

	if e.useRLE {
		width := 0
		for _, v := range e.hpLenRaw {
			if b := requiredBitsFor(v); b > width {
				width = b
			}
		}
		if width == 0 {
			width = 1
		}
		arr := bitpack.NewPackedIntArray(uint32(width), uint64(len(e.hpLenRaw)))
		for i, v := range e.hpLenRaw {
			arr.Store(uint64(i), uint64(v))
		}
		e.rs.HPLengths = arr
	}

	e.rs.Libraries = e.libraries

	if e.keepDescriptions {
		e.rs.Descriptions = e.descriptions
		e.rs.DescStarts = e.descStarts
	}
}

func requiredBitsFor(v uint16) int {
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
