package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fuse",
	Short: "Fuse page layouts with recognized text into labeled regions",
	Long: `fuse merges two descriptions of a scanned page: the layout regions
found by AWS Textract and the text tokens recognized by Google Cloud Vision.
Every token is placed in the smallest layout region containing it, the text
of each region is rebuilt from the tokens' break hints, and the regions are
written in reading order as training ground truth.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./fuse.yaml or ~/.fuse/fuse.yaml)",
	)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
