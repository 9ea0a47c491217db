package twobit

import (
	"bufio"
	"bytes"
	"io"
)

// fastaIterator reads successive FASTA records ('>' description, lines
// of sequence until the next '>' or EOF) from a bufio.Reader.
type fastaIterator struct {
	br   *bufio.Reader
	desc []byte
	done bool
}

func newFastaIterator(br *bufio.Reader) *fastaIterator {
	return &fastaIterator{br: br}
}

func (it *fastaIterator) next() (*record, bool, error) {
	if it.done {
		return nil, false, nil
	}
	var desc []byte
	if it.desc != nil {
		desc = it.desc
		it.desc = nil
	} else {
		line, err := readLine(it.br)
		if err == io.EOF {
			it.done = true
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if len(line) == 0 || line[0] != '>' {
			it.done = true
			return nil, false, ErrUnknownFormat
		}
		desc = append([]byte(nil), line[1:]...)
	}

	var seq bytes.Buffer
	for {
		line, err := readLine(it.br)
		if err == io.EOF {
			it.done = true
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(line) > 0 && line[0] == '>' {
			it.desc = append([]byte(nil), line[1:]...)
			break
		}
		seq.Write(line)
	}
	return &record{desc: desc, seq: seq.Bytes()}, true, nil
}

// readLine reads one line, stripped of its trailing newline (\n or \r\n).
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadBytes('\n')
	if len(line) == 0 && err != nil {
		return nil, err
	}
	line = bytes.TrimRight(line, "\r\n")
	if err != nil && err != io.EOF {
		return line, err
	}
	if err == io.EOF && len(line) == 0 {
		return nil, io.EOF
	}
	return line, nil
}

// scanFasta reads every FASTA record from br and commits it as an
// unpaired sequence.
func (e *Encoder) scanFasta(br *bufio.Reader) error {
	it := newFastaIterator(br)
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

// scanFastaRecords reads every FASTA record from br and hands it to cb,
// used for interleaved paired libraries.
func (e *Encoder) scanFastaRecords(br *bufio.Reader, cb func(*record) error) error {
	it := newFastaIterator(br)
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
