package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/batch"
	"github.com/vegarsti/fuse/config"
	"github.com/vegarsti/fuse/csv"
)

var (
	docLayout  string
	docContent string
	docName    string
	docOutput  string
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Fuse a single page and print the result",
	Example: `  fuse doc --layout layout/p1_aws.json --content content/p1_google.json
  fuse doc --layout p1_aws.json --content p1_google.json -o table`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		visionOpts, err := cfg.VisionOptions()
		if err != nil {
			return err
		}
		layout, err := os.ReadFile(docLayout)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(docContent)
		if err != nil {
			return err
		}
		name := docName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(docLayout), cfg.LayoutSuffix)
		}

		doc, err := batch.Build(fuse.NewSource(name, layout, content), batch.Settings{
			Fuse:   cfg.FuseOptions(),
			Vision: visionOpts,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch docOutput {
		case "json":
			data, err := batch.Encode(doc)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		case "csv":
			_, err := fmt.Fprint(out, csv.FromDocument(doc))
			return err
		case "table":
			writeTable(out, regionTable(doc))
			return nil
		default:
			return fmt.Errorf("unknown output %q, want json, table or csv", docOutput)
		}
	},
}

func init() {
	f := docCmd.Flags()
	f.StringVar(&docLayout, "layout", "", "Textract response (required)")
	f.StringVar(&docContent, "content", "", "Vision response (required)")
	f.StringVar(&docName, "name", "", "image file name recorded in the document (default: layout file name without suffix)")
	f.StringVarP(&docOutput, "output", "o", "json", "output format: json, table or csv")
	f.String("granularity", "word", "content token unit: word, symbol or annotation")
	f.Float64("tolerance", fuse.DefaultTolerance, "how far outside a region a token centre may lie")
	_ = docCmd.MarkFlagRequired("layout")
	_ = docCmd.MarkFlagRequired("content")
}
