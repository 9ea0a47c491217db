package twobit

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidLibrarySpec is returned by ParseLibrarySpec for a textual
// spec with the wrong number of ':' or '-' fields (spec §6, §7).
var ErrInvalidLibrarySpec = errors.New("twobit: invalid library spec")

// LibrarySpec is the parsed form of one --db textual library descriptor:
//
//	file                      unpaired
//	file1:file2:len[-stdev]   paired, two files
//	file:len[-stdev]          paired, interleaved in one file
func ParseLibrarySpec(s string) (ReadsLibrary, error) {
	fields := strings.Split(s, ":")
	lib := ReadsLibrary{InsertLength: -1}
	switch len(fields) {
	case 1:
		lib.File1 = fields[0]
		lib.Paired = false
	case 2:
		lib.File1 = fields[0]
		lib.Paired = true
		if err := parseInsert(&lib, fields[1]); err != nil {
			return ReadsLibrary{}, err
		}
	case 3:
		lib.File1 = fields[0]
		lib.File2 = fields[1]
		lib.Paired = true
		if err := parseInsert(&lib, fields[2]); err != nil {
			return ReadsLibrary{}, err
		}
	default:
		return ReadsLibrary{}, errors.Wrapf(ErrInvalidLibrarySpec, "%q", s)
	}
	if lib.File1 == "" {
		return ReadsLibrary{}, errors.Wrapf(ErrInvalidLibrarySpec, "%q", s)
	}
	return lib, nil
}

func parseInsert(lib *ReadsLibrary, field string) error {
	parts := strings.SplitN(field, "-", 2)
	l, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return errors.Wrapf(ErrInvalidLibrarySpec, "insert length %q", field)
	}
	lib.InsertLength = l
	if len(parts) == 2 {
		sd, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return errors.Wrapf(ErrInvalidLibrarySpec, "insert stdev %q", field)
		}
		lib.InsertStdev = sd
	}
	return nil
}

// interleaved reports whether the library is paired with mates
// alternating within File1 (no File2 given).
func (l ReadsLibrary) interleaved() bool {
	return l.Paired && l.File2 == ""
}
