package twobit

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

// ErrUnknownFormat is returned when a library's first record does not
// start with '>' (FASTA) or '@' (FASTQ).
var ErrUnknownFormat = errors.New("twobit: unknown format")

// ErrFastqDescMismatch is returned when the '+' header of a FASTQ
// record doesn't match its '@' description and strict checking (the
// default, per spec §9 Open Questions) is in effect.
var ErrFastqDescMismatch = errors.New("twobit: fastq quality descriptor mismatch")

// Encoder is Reads2Twobit: a streaming FASTA/FASTQ encoder that builds
// a ReadSet from a list of library descriptors (spec §4.2).
type Encoder struct {
	indexName string
	libraries []ReadsLibrary

	qualityFilter    bool
	maxLow           int
	lowQual          int
	phredBase        int
	useRLE           bool
	strictFastqDesc  bool
	keepDescriptions bool

	rs          *ReadSet
	sepPos      []uint64
	descriptions [][]byte
	descStarts  []uint64
	descByteLen uint64
	hpLenRaw    []uint16
	maxRunLen   int

	seqlenMin, seqlenMax uint64
	commonLen            uint64 // 0 once mode switches to Variable
	haveCommonLen         bool
}

// New creates an Encoder that will eventually write its files under indexName.
func New(indexName string) *Encoder {
	return &Encoder{
		indexName:        indexName,
		phredBase:        33,
		strictFastqDesc:  true,
		keepDescriptions: true,
		maxRunLen:        250, // leaves headroom in an 8-bit hpLengths element; capped per spec §4.2
		rs: &ReadSet{
			Twobit: NewEncoding(1 << 16),
		},
	}
}

// AddLibrary parses and appends one --db textual library descriptor.
func (e *Encoder) AddLibrary(spec string) error {
	lib, err := ParseLibrarySpec(spec)
	if err != nil {
		return err
	}
	e.libraries = append(e.libraries, lib)
	return nil
}

// SetQualityFilter enables the FASTQ low-quality-base filter: after
// encoding a record, if more than maxLow bases have Phred quality
// <= lowQual, the record (and its mate) is dropped.
func (e *Encoder) SetQualityFilter(maxLow, lowQual int) {
	e.qualityFilter = true
	e.maxLow = maxLow
	e.lowQual = lowQual
}

// SetPhred64 switches the Phred quality base from 33 to 64.
func (e *Encoder) SetPhred64() { e.phredBase = 64 }

// UseRLE enables homopolymer (run-length) compression.
func (e *Encoder) UseRLE() { e.useRLE = true }

// SetRelaxedFastqDescCheck toggles whether a mismatching FASTQ '+'
// description is an error (default: strict, matching the current
// caller per spec §9 Open Questions).
func (e *Encoder) SetRelaxedFastqDescCheck(relaxed bool) { e.strictFastqDesc = !relaxed }

// SetDescriptions enables/disables retaining description text for
// *.des/*.sds output.
func (e *Encoder) SetDescriptions(enabled bool) { e.keepDescriptions = enabled }

// NSeqs returns the number of sequences retained after encoding.
func (e *Encoder) NSeqs() uint64 { return e.rs.NSeqs }

// SeqlenEqlen returns the common stride if every sequence (plus its
// separator) has the same length, 0 otherwise.
func (e *Encoder) SeqlenEqlen() uint64 {
	if e.rs.LenMode == EqualLen {
		return e.rs.EqualLength
	}
	return 0
}

// SeqlenMin returns the shortest retained sequence length (bases only).
func (e *Encoder) SeqlenMin() uint64 { return e.seqlenMin }

// SeqlenMax returns the longest retained sequence length (bases only).
func (e *Encoder) SeqlenMax() uint64 { return e.seqlenMax }

// TotalSeqlength returns the flat two-bit buffer's logical length.
func (e *Encoder) TotalSeqlength() uint64 { return e.rs.TotalSeqLength }

// ReadSet returns the built ReadSet. Valid only after Encode succeeds.
func (e *Encoder) ReadSet() *ReadSet { return e.rs }

func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "gzip %s", path)
		}
		return struct {
			io.Reader
			io.Closer
		}{gz, f}, nil
	}
	return f, nil
}

// Encode runs the streaming encoder exactly once over every added
// library, producing e.ReadSet().
func (e *Encoder) Encode() error {
	e.estimateAndPreallocate()
	for i := range e.libraries {
		lib := &e.libraries[i]
		lib.FirstSeqnum = e.rs.NSeqs
		before := e.rs.NSeqs
		if err := e.encodeLibrary(lib); err != nil {
			return errors.Wrapf(err, "library %s", lib.File1)
		}
		lib.NSeqs = e.rs.NSeqs - before
	}
	e.finalize()
	return nil
}

func (e *Encoder) encodeLibrary(lib *ReadsLibrary) error {
	if !lib.Paired {
		return e.encodeFile(lib.File1, true)
	}
	if lib.interleaved() {
		return e.encodeInterleaved(lib.File1)
	}
	return e.encodeTwoFiles(lib.File1, lib.File2)
}

// sniff peeks at the first byte of a reader without consuming it from
// the caller's perspective (the returned *bufio.Reader replaces the raw
// reader); leading whitespace is not skipped.
func sniff(r io.Reader) (*bufio.Reader, byte, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	b, err := br.Peek(1)
	if err != nil {
		if err == io.EOF {
			return br, 0, nil
		}
		return br, 0, err
	}
	return br, b[0], nil
}

func (e *Encoder) encodeFile(path string, standalone bool) error {
	rc, err := openMaybeGzip(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	br, first, err := sniff(rc)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	switch first {
	case 0:
		return nil // empty file, accepted
	case '>':
		return e.scanFasta(br)
	case '@':
		return e.scanFastq(br)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%s", path)
	}
}

// encodeInterleaved reads mate1,mate2,mate1,mate2,... from one file.
func (e *Encoder) encodeInterleaved(path string) error {
	rc, err := openMaybeGzip(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	br, first, err := sniff(rc)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	var pending *record
	drop := func(r *record) error {
		if pending == nil {
			pending = r
			return nil
		}
		e.commitPair(pending, r)
		pending = nil
		return nil
	}
	switch first {
	case 0:
		return nil
	case '>':
		return e.scanFastaRecords(br, drop)
	case '@':
		return e.scanFastqRecords(br, drop)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%s", path)
	}
}

// encodeTwoFiles reads mate1 and mate2 from separate files in lock-step.
func (e *Encoder) encodeTwoFiles(path1, path2 string) error {
	rc1, err := openMaybeGzip(path1)
	if err != nil {
		return err
	}
	defer rc1.Close()
	rc2, err := openMaybeGzip(path2)
	if err != nil {
		return err
	}
	defer rc2.Close()

	br1, first1, err := sniff(rc1)
	if err != nil {
		return errors.Wrapf(err, "read %s", path1)
	}
	br2, _, err := sniff(rc2)
	if err != nil {
		return errors.Wrapf(err, "read %s", path2)
	}

	var it1, it2 recordIterator
	switch first1 {
	case 0:
		return nil
	case '>':
		it1, it2 = newFastaIterator(br1), newFastaIterator(br2)
	case '@':
		it1, it2 = &fastqIterator{e: e, br: br1}, &fastqIterator{e: e, br: br2}
	default:
		return errors.Wrapf(ErrUnknownFormat, "%s", path1)
	}

	for {
		r1, ok1, err := it1.next()
		if err != nil {
			return err
		}
		r2, ok2, err := it2.next()
		if err != nil {
			return err
		}
		if !ok1 || !ok2 {
			// running out of one stream mid-pair ends the library at
			// whichever stream ended first (spec §4.2).
			return nil
		}
		e.commitPair(r1, r2)
	}
}
