package main

import (
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/shenwei356/go-logging"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

var log = logging.MustGetLogger("gtindex")

func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func getFlagString(cmd *cobra.Command, flag string) string {
	s, err := cmd.Flags().GetString(flag)
	checkError(err)
	return s
}

func getFlagStringSlice(cmd *cobra.Command, flag string) []string {
	s, err := cmd.Flags().GetStringSlice(flag)
	checkError(err)
	return s
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	i, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return i
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	i := getFlagInt(cmd, flag)
	if i <= 0 {
		checkError(fmt.Errorf("value of flag --%s should be a positive integer", flag))
	}
	return i
}

func getFlagNonNegativeInt(cmd *cobra.Command, flag string) int {
	i := getFlagInt(cmd, flag)
	if i < 0 {
		checkError(fmt.Errorf("value of flag --%s should be a non-negative integer", flag))
	}
	return i
}

func getFlagUint64(cmd *cobra.Command, flag string) uint64 {
	i, err := cmd.Flags().GetUint64(flag)
	checkError(err)
	return i
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	b, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return b
}

// expandPath applies `~`-expansion via go-homedir, mirroring how the
// teacher resolves any user-supplied path that might carry a literal `~`.
func expandPath(path string) string {
	p, err := homedir.Expand(path)
	checkError(err)
	return p
}

// checkLibraryFiles verifies every file referenced by a --db textual
// spec exists before the pipeline opens it, so a typo surfaces as one
// immediate diagnostic instead of a mid-encode I/O error.
func checkLibraryFiles(specs []string) {
	for _, spec := range specs {
		for _, file := range splitLibraryFiles(spec) {
			ok, err := pathutil.Exists(file)
			checkError(err)
			if !ok {
				checkError(fmt.Errorf("file does not exist: %s", file))
			}
		}
	}
}

// splitLibraryFiles extracts just the file path fields of a --db spec,
// disambiguating by field count exactly as twobit.ParseLibrarySpec
// does: `file` (1 field, itself a file), `file:len[-stdev]` (2 fields,
// only field 0 is a file, field 1 is the insert length), or
// `file1:file2:len[-stdev]` (3 fields, fields 0 and 1 are files).
func splitLibraryFiles(spec string) []string {
	fields := strings.Split(spec, ":")
	switch len(fields) {
	case 1:
		return fields
	case 2:
		return fields[:1]
	case 3:
		return fields[:2]
	default:
		return nil
	}
}
