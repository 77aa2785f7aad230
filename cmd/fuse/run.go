package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/spf13/cobra"

	"github.com/vegarsti/fuse"
	"github.com/vegarsti/fuse/batch"
	"github.com/vegarsti/fuse/config"
	"github.com/vegarsti/fuse/dynamodb"
	"github.com/vegarsti/fuse/s3"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fuse every page of a dataset",
	Long: `Fuse every page image found in the image directory. For a page
images/p1.png the layout is read from layout/p1_aws.json, the content from
content/p1_google.json and the result written to dataset/p1.json. Pages with
a missing input are skipped; pages that fail are reported at the end.
Any failed page makes the command exit with a non-zero status.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
		ctx := cmd.Context()

		var sess *session.Session
		awsSession := func() (*session.Session, error) {
			if sess != nil {
				return sess, nil
			}
			s, err := session.NewSession()
			if err != nil {
				return nil, fmt.Errorf("unable to create session: %w", err)
			}
			sess = s
			return sess, nil
		}

		var store batch.Store = batch.NewDirStore(".")
		if cfg.Storage.Backend == config.BackendS3 {
			s, err := awsSession()
			if err != nil {
				return err
			}
			store = s3.New(s, cfg.Storage.Bucket)
		}

		opts := []batch.Option{batch.WithLogger(logger)}
		if cfg.Cache.Table != "" {
			s, err := awsSession()
			if err != nil {
				return err
			}
			cache := dynamodb.New(s, cfg.Cache.Table)
			if cfg.Cache.Create {
				if err := cache.CreateTable(ctx); err != nil {
					return err
				}
			}
			opts = append(opts, batch.WithCache(cache))
		}

		driver, err := batch.New(cfg, store, opts...)
		if err != nil {
			return err
		}
		summary, err := driver.Run(ctx)
		if summary != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%d pages: %d written (%d from cache), %d skipped, %d failed in %s\n",
				summary.Total, summary.Written, summary.Cached, summary.Skipped, summary.Failed,
				summary.Elapsed.Round(time.Millisecond))
		}
		return err
	},
}

func init() {
	f := runCmd.Flags()
	f.String("image-dir", "images", "directory of page images")
	f.String("layout-dir", "layout", "directory of Textract responses")
	f.String("content-dir", "content", "directory of Vision responses")
	f.String("output-dir", "dataset", "directory for fused documents")
	f.Int("workers", runtime.NumCPU(), "pages fused in parallel")
	f.String("granularity", "word", "content token unit: word, symbol or annotation")
	f.Float64("tolerance", fuse.DefaultTolerance, "how far outside a region a token centre may lie")
	f.StringSlice("format", []string{config.FormatJSON}, "output formats: json, csv, html, overlay")
	f.String("report", "", "write an XLSX summary with this name to the output directory")
	f.String("backend", config.BackendLocal, "storage backend: local or s3")
	f.String("bucket", "", "S3 bucket for the s3 backend")
	f.String("cache-table", "", "DynamoDB table caching fused documents")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.String("log-format", "text", "log format: text or json")
}
