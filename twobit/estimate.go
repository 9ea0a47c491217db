package twobit

import "io"

// estimateFile does a fast whole-buffer pass over path, counting
// record-start sentinels ('>' or '@' at the start of a line) and
// total bytes read. This is the Go analogue of reads2twobit.c's
// gt_reads2twobit_nof_sequences_estimate: a rough, single streaming
// pass used only to pick a starting capacity for the twobit buffer,
// not an exact sequence count (FASTQ quality lines beginning with '@'
// are occasionally miscounted as sentinels, which only means the
// estimate errs high — harmless for a capacity hint).
func estimateFile(path string) (nofseqs, length uint64, err error) {
	rc, err := openMaybeGzip(path)
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()

	buf := make([]byte, 1<<16)
	atLineStart := true
	for {
		n, rerr := rc.Read(buf)
		for i := 0; i < n; i++ {
			b := buf[i]
			if atLineStart && (b == '>' || b == '@') {
				nofseqs++
			}
			atLineStart = b == '\n'
		}
		length += uint64(n)
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nofseqs, length, rerr
		}
	}
	return nofseqs, length, nil
}

// estimateAndPreallocate sums estimateFile's nofseqs/length over every
// added library's file(s), stores the totals on ReadSet for callers to
// inspect, and pre-sizes the twobit buffer so the main encoding pass
// doesn't repeatedly double it via Encoding.grow. Estimation errors
// are swallowed: a missing/unreadable file surfaces properly when the
// real encoding pass below opens it, so this best-effort pass must
// never fail the whole Encode call over it.
func (e *Encoder) estimateAndPreallocate() {
	var nofseqs, length uint64
	for _, lib := range e.libraries {
		if n, l, err := estimateFile(lib.File1); err == nil {
			nofseqs += n
			length += l
		}
		if lib.File2 != "" {
			if n, l, err := estimateFile(lib.File2); err == nil {
				nofseqs += n
				length += l
			}
		}
	}
	e.rs.EstimatedNumberOfSequences = nofseqs
	e.rs.EstimatedLength = length
	if length > 0 {
		e.rs.Twobit = NewEncoding(length + 2)
	}
}
