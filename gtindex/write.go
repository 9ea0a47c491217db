package gtindex

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"

	"github.com/gtkmer/gtkmer/codetab"
	"github.com/gtkmer/gtkmer/contfinder"
	"github.com/gtkmer/gtkmer/spmsuftab"
	"github.com/gtkmer/gtkmer/twobit"
)

// outFile opens cfg.IndexName+suffix for writing, gzip-compressed,
// mirroring the teacher's outStream (unikmer/cmd/util-io.go): a
// buffered writer over a pgzip.Writer over the raw file, both closed
// by the returned closer.
func outFile(indexName, suffix string) (*bufio.Writer, func() error, error) {
	path := indexName + suffix
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create %s", path)
	}
	gz := pgzip.NewWriter(f)
	bw := bufio.NewWriterSize(gz, os.Getpagesize())
	closer := func() error {
		if err := bw.Flush(); err != nil {
			gz.Close()
			f.Close()
			return err
		}
		if err := gz.Close(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return bw, closer, nil
}

func writeU64Slice(w *bufio.Writer, vals []uint64) error {
	var buf [8]byte
	for _, v := range vals {
		binary.LittleEndian.PutUint64(buf[:], v)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

// writeIndex produces every output file spec §6 names.
func writeIndex(cfg Config, rs *twobit.ReadSet, finder *contfinder.Finder, table *codetab.BucketCodeTable, suftab *spmsuftab.SpmSuftab) error {
	if err := writeEsq(cfg, rs); err != nil {
		return err
	}
	if err := writeSsp(cfg, rs); err != nil {
		return err
	}
	if cfg.KeepDescriptions {
		if err := writeDes(cfg, rs); err != nil {
			return err
		}
		if err := writeSds(cfg, rs); err != nil {
			return err
		}
	}
	if err := writeClb(cfg, finder); err != nil {
		return err
	}
	if err := writeCpn(cfg, finder); err != nil {
		return err
	}
	if err := writeSpmsuftab(cfg, suftab); err != nil {
		return err
	}
	if rs.HPLengths != nil {
		if err := writeHpl(cfg, rs); err != nil {
			return err
		}
	}
	if err := writeRlt(cfg, rs); err != nil {
		return err
	}
	return nil
}

// writeEsq writes the two-bit encoded sequence. Both length modes
// write the same header (length mode, nSeqs, equalLength, separator
// code, total length) followed by the packed store; no access-type
// table is written for variable-length mode (its separator positions go
// to .ssp).
func writeEsq(cfg Config, rs *twobit.ReadSet) error {
	w, closer, err := outFile(cfg.IndexName, ".esq")
	if err != nil {
		return err
	}
	defer closer()

	if err := binary.Write(w, binary.LittleEndian, uint8(rs.LenMode)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, rs.NSeqs); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, rs.EqualLength); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, rs.SeparatorCode); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, rs.TotalSeqLength); err != nil {
		return err
	}
	if _, err := w.Write(rs.Twobit.Bytes()); err != nil {
		return err
	}
	return nil
}

// writeSsp writes separator positions; absent (an empty file) for
// equal-length mode, per spec §6.
func writeSsp(cfg Config, rs *twobit.ReadSet) error {
	w, closer, err := outFile(cfg.IndexName, ".ssp")
	if err != nil {
		return err
	}
	defer closer()
	if rs.LenMode != twobit.VariableLen {
		return nil
	}
	return writeU64Slice(w, rs.Seppos)
}

// writeDes writes the concatenated description bytes (no separators;
// offsets live in .sds), spec §6.
func writeDes(cfg Config, rs *twobit.ReadSet) error {
	w, closer, err := outFile(cfg.IndexName, ".des")
	if err != nil {
		return err
	}
	defer closer()
	for _, d := range rs.Descriptions {
		if _, err := w.Write(d); err != nil {
			return err
		}
	}
	return nil
}

// writeSds writes each sequence's description start offset into the
// .des blob, one uint64 per sequence.
func writeSds(cfg Config, rs *twobit.ReadSet) error {
	w, closer, err := outFile(cfg.IndexName, ".sds")
	if err != nil {
		return err
	}
	defer closer()
	return writeU64Slice(w, rs.DescStarts)
}

func writeClb(cfg Config, finder *contfinder.Finder) error {
	w, closer, err := outFile(cfg.IndexName, ".clb")
	if err != nil {
		return err
	}
	defer closer()
	bs := contfinder.EncodeClb(finder.Contained())
	_, err = w.Write(bs)
	return err
}

func writeCpn(cfg Config, finder *contfinder.Finder) error {
	w, closer, err := outFile(cfg.IndexName, ".cpn")
	if err != nil {
		return err
	}
	defer closer()
	_, err = w.Write(finder.CopyNumbers())
	return err
}

func writeSpmsuftab(cfg Config, suftab *spmsuftab.SpmSuftab) error {
	w, closer, err := outFile(cfg.IndexName, ".spmsuftab")
	if err != nil {
		return err
	}
	defer closer()
	if err := binary.Write(w, binary.LittleEndian, suftab.Len()); err != nil {
		return err
	}
	_, err = w.Write(suftab.Bytes())
	return err
}

func writeHpl(cfg Config, rs *twobit.ReadSet) error {
	w, closer, err := outFile(cfg.IndexName, ".hpl")
	if err != nil {
		return err
	}
	defer closer()
	if err := binary.Write(w, binary.LittleEndian, rs.HPLengths.BitsPerElem()); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, rs.HPLengths.Len()); err != nil {
		return err
	}
	_, err = w.Write(rs.HPLengths.Bytes())
	return err
}

// writeRlt writes the reads-libraries table: one fixed-size record per
// library (firstSeqnum, nSeqs, insertLength, insertStdev bits, paired
// flag), spec §6.
func writeRlt(cfg Config, rs *twobit.ReadSet) error {
	w, closer, err := outFile(cfg.IndexName, ".rlt")
	if err != nil {
		return err
	}
	defer closer()

	if err := binary.Write(w, binary.LittleEndian, uint64(len(rs.Libraries))); err != nil {
		return err
	}
	for _, lib := range rs.Libraries {
		fields := []interface{}{
			lib.FirstSeqnum,
			lib.NSeqs,
			uint64(lib.InsertLength),
			lib.InsertStdev,
			boolByte(lib.Paired),
		}
		for _, f := range fields {
			if err := binary.Write(w, binary.LittleEndian, f); err != nil {
				return errors.Wrapf(err, "write .rlt record for %s", lib.File1)
			}
		}
	}
	return nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
