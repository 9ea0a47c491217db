package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/stable"
	"github.com/spf13/cobra"

	"github.com/gtkmer/gtkmer/twobit"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "report encoding statistics for one or more read libraries",
	Long: `info - report encoding statistics for one or more read libraries

Runs the same two-bit encoding pass build uses and prints per-library
sequence counts, total length, length mode, base composition and the chosen
separator symbol, without writing an index to disk.
`,
	Run: func(cmd *cobra.Command, args []string) {
		dbs := getFlagStringSlice(cmd, "db")
		if len(dbs) == 0 {
			checkError(fmt.Errorf("no read library given (--db)"))
		}
		checkLibraryFiles(dbs)

		enc := twobit.New("")
		if getFlagBool(cmd, "phred64") {
			enc.SetPhred64()
		}
		for _, spec := range dbs {
			checkError(enc.AddLibrary(spec))
		}
		checkError(enc.Encode())
		rs := enc.ReadSet()

		w := bufio.NewWriter(os.Stdout)
		defer w.Flush()

		style := &stable.TableStyle{
			Name:      "plain",
			HeaderRow: stable.RowStyle{Begin: "", Sep: "  ", End: ""},
			DataRow:   stable.RowStyle{Begin: "", Sep: "  ", End: ""},
			Padding:   "",
		}
		columns := []stable.Column{
			{Header: "library"},
			{Header: "seqs", Align: stable.AlignRight},
			{Header: "paired", Align: stable.AlignLeft},
			{Header: "insert-length", Align: stable.AlignRight},
		}
		tbl := stable.New()
		tbl.HeaderWithFormat(columns)
		for _, lib := range rs.Libraries {
			insertLen := "-"
			if lib.InsertLength >= 0 {
				insertLen = fmt.Sprintf("%d", lib.InsertLength)
			}
			tbl.AddRow([]interface{}{
				lib.File1,
				humanize.Comma(int64(lib.NSeqs)),
				boolStr(lib.Paired),
				insertLen,
			})
		}
		w.Write(tbl.Render(style))

		fmt.Fprintf(w, "\ntotal sequences: %s\n", humanize.Comma(int64(rs.NSeqs)))
		fmt.Fprintf(w, "total length: %s bases\n", humanize.Comma(int64(rs.TotalSeqLength)))
		fmt.Fprintf(w, "length mode: %s\n", lenModeStr(rs.LenMode))
		fmt.Fprintf(w, "separator symbol: %c (code %d)\n", code2baseOrSep(rs.SeparatorCode), rs.SeparatorCode)
		fmt.Fprintf(w, "base composition: A=%s C=%s G=%s T=%s\n",
			humanize.Comma(int64(rs.CharDistri[0])),
			humanize.Comma(int64(rs.CharDistri[1])),
			humanize.Comma(int64(rs.CharDistri[2])),
			humanize.Comma(int64(rs.CharDistri[3])),
		)
	},
}

func boolStr(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func lenModeStr(m twobit.LenMode) string {
	if m == twobit.EqualLen {
		return "equal-length"
	}
	return "variable-length"
}

func code2baseOrSep(code uint8) byte {
	bases := [4]byte{'A', 'C', 'G', 'T'}
	if int(code) < len(bases) {
		return bases[code]
	}
	return '?'
}

func init() {
	RootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringSliceP("db", "d", nil, "read library spec: file | file1:file2:len[-stdev] | file:len[-stdev] (repeatable)")
	infoCmd.Flags().Bool("phred64", false, "quality values use Phred+64 instead of Phred+33")
}
