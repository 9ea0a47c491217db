package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gtkmer/gtkmer/gtindex"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "build a k-mer index from FASTA/FASTQ read libraries",
	Long: `build - build a k-mer index from FASTA/FASTQ read libraries

Streams every --db library through the two-bit encoder, detects
contained/duplicate reads, buckets k-mer starts, partitions the bucket
range by memory budget, and writes the sorted suffix-position index.
`,
	Run: func(cmd *cobra.Command, args []string) {
		dbs := getFlagStringSlice(cmd, "db")
		checkLibraryFiles(dbs)

		cfg := gtindex.Config{
			Libraries:        dbs,
			IndexName:        expandPath(getFlagString(cmd, "indexname")),
			KmerSize:         getFlagPositiveInt(cmd, "kmersize"),
			Parts:            getFlagNonNegativeInt(cmd, "parts"),
			MemLimit:         getFlagUint64(cmd, "memlimit"),
			SortingDepth:     getFlagUint64(cmd, "sortingdepth"),
			SkipShorter:      getFlagNonNegativeInt(cmd, "skipshorter"),
			Sampling:         getFlagUint64(cmd, "sampling"),
			Phred64:          getFlagBool(cmd, "phred64"),
			UseRLE:           getFlagBool(cmd, "rle"),
			Threads:          getFlagPositiveInt(cmd, "threads"),
			Mirror:           getFlagBool(cmd, "mirror"),
			KeepDescriptions: getFlagBool(cmd, "descriptions"),
			RelaxedFastqDesc: getFlagBool(cmd, "relaxed-fastq-desc"),
		}
		maxLow := getFlagNonNegativeInt(cmd, "maxlow")
		lowQual := getFlagNonNegativeInt(cmd, "lowqual")
		if maxLow > 0 || lowQual > 0 {
			cfg.QualityFilter = true
			cfg.MaxLow = maxLow
			cfg.LowQual = lowQual
		}

		log.Infof("building index %s from %d librar(y/ies)", cfg.IndexName, len(dbs))
		report, err := gtindex.BuildIndex(cfg)
		checkError(err)

		log.Infof("%s", report)
		log.Infof("total encoded length: %s bases", humanize.Comma(int64(report.TotalSeqLength)))
		log.Infof("largest part width: %s suffix positions", humanize.Comma(int64(report.LargestPartWidth)))
		log.Infof("largest adjacent-suffix LCP: %d", report.LargestAdjacentLCP)
	},
}

func init() {
	RootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringSliceP("db", "d", nil, "read library spec: file | file1:file2:len[-stdev] | file:len[-stdev] (repeatable)")
	buildCmd.Flags().StringP("indexname", "o", "", "output index path prefix")
	buildCmd.Flags().IntP("kmersize", "k", 20, "k-mer size")
	buildCmd.Flags().IntP("parts", "p", 0, "number of parts (accepted but not used: the memory budget always decides)")
	buildCmd.Flags().Uint64P("memlimit", "m", 1<<30, "memory budget in bytes for the bucket-range partitioner")
	buildCmd.Flags().Uint64P("sortingdepth", "s", 0, "suffix sort depth (0: 2*kmersize)")
	buildCmd.Flags().IntP("skipshorter", "", 0, "skip reads shorter than this many bases (0: kmersize)")
	buildCmd.Flags().Uint64P("sampling", "", 1, "RandomCodes sampling factor (1: FirstCodes, every k-mer start)")
	buildCmd.Flags().Bool("phred64", false, "quality values use Phred+64 instead of Phred+33")
	buildCmd.Flags().IntP("maxlow", "", 0, "max number of low-quality bases tolerated per read")
	buildCmd.Flags().IntP("lowqual", "", 0, "quality threshold at or below which a base counts as low-quality")
	buildCmd.Flags().Bool("rle", false, "collapse homopolymer runs (RLE) before indexing")
	buildCmd.Flags().Bool("mirror", false, "include reverse complements in contained-read detection")
	buildCmd.Flags().Bool("descriptions", true, "retain read descriptions (*.des/*.sds)")
	buildCmd.Flags().Bool("relaxed-fastq-desc", false, "tolerate a FASTQ '+' description that doesn't match its '@' description")

	buildCmd.MarkFlagRequired("db")
	buildCmd.MarkFlagRequired("indexname")
}
