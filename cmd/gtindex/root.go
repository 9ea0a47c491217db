package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// RootCmd is the base command when gtindex is called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "gtindex",
	Short: "compact biosequence substrate and k-mer indexing pipeline",
	Long: `gtindex - compact biosequence substrate and k-mer indexing pipeline

Encodes FASTA/FASTQ reads into a two-bit packed substrate, detects
contained/duplicate reads, and builds a k-mer-bucketed, external-memory
suffix-position index over the surviving reads.
`,
}

// Execute runs the root command; called once by main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	defaultThreads := runtime.NumCPU()
	if defaultThreads > 2 {
		defaultThreads = 2
	}
	RootCmd.PersistentFlags().IntP("threads", "j", defaultThreads, "number of CPUs to use")
	RootCmd.PersistentFlags().BoolP("verbose", "", false, "accepted; no subcommand currently reads it")
}
