package twobit

import (
	"bufio"
	"bytes"
	"io"
)

// fastqIterator reads successive 4-line FASTQ records ('@' description,
// sequence, '+' (optionally repeating the description), quality) from a
// bufio.Reader.
type fastqIterator struct {
	e    *Encoder // nil when used outside an Encoder (strict check applied)
	br   *bufio.Reader
	done bool
}

func newFastqIterator(br *bufio.Reader) *fastqIterator {
	return &fastqIterator{br: br}
}

func (it *fastqIterator) next() (*record, bool, error) {
	if it.done {
		return nil, false, nil
	}
	line, err := readLine(it.br)
	if err == io.EOF {
		it.done = true
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(line) == 0 || line[0] != '@' {
		it.done = true
		return nil, false, ErrUnknownFormat
	}
	desc := append([]byte(nil), line[1:]...)

	seqLine, err := readLine(it.br)
	if err != nil {
		return nil, false, unexpectedEOF(err)
	}
	seq := append([]byte(nil), seqLine...)

	plusLine, err := readLine(it.br)
	if err != nil {
		return nil, false, unexpectedEOF(err)
	}
	if len(plusLine) == 0 || plusLine[0] != '+' {
		it.done = true
		return nil, false, ErrUnknownFormat
	}
	if len(plusLine) > 1 {
		if it.e == nil || it.e.strictFastqDesc {
			if !bytes.Equal(plusLine[1:], desc) {
				return nil, false, ErrFastqDescMismatch
			}
		}
	}

	qualLine, err := readLine(it.br)
	if err != nil {
		return nil, false, unexpectedEOF(err)
	}
	qual := append([]byte(nil), qualLine...)

	return &record{desc: desc, seq: seq, qual: qual}, true, nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (e *Encoder) scanFastq(br *bufio.Reader) error {
	it := &fastqIterator{e: e, br: br}
	for {
		rec, ok, err := it.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		e.commitSingle(rec)
	}
}

func (e *Encoder) scanFastqRecords(br *bufio.Reader, cb func(*record) error) error {
	it := &fastqIterator{e: e, br: br}
	for {
		rec, ok, err := it.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := cb(rec); err != nil {
			return err
		}
	}
}
