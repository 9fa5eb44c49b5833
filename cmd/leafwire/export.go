package main

import (
	"context"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/leafwire/leafwire/internal/config"
	"github.com/leafwire/leafwire/internal/errors"
	"github.com/leafwire/leafwire/pkg/export"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	dir         string
	bucket      string
	prefix      string
	region      string
	concurrency int
}

func exportCmd(opts *globalOptions) *cobra.Command {
	eo := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Mirror every document of a project",
		Long: `Join a project and write every document to a local directory or an
S3 bucket. Documents whose content did not change since the last export
are not rewritten.

Examples:
  leafwire export 5f2a... --dir thesis
  leafwire export 5f2a... --s3-bucket backups --s3-prefix thesis/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp()
			if err != nil {
				return err
			}
			eo.apply(&a.cfg.Export)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.run(cmd.Context(), func(ctx context.Context) error {
				return runExport(ctx, a, args[0], cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&eo.dir, "dir", "d", "", "Export directory (default from leafwire.json, else ./export)")
	cmd.Flags().StringVar(&eo.bucket, "s3-bucket", "", "Export to this S3 bucket instead of a directory")
	cmd.Flags().StringVar(&eo.prefix, "s3-prefix", "", "Key prefix inside the bucket")
	cmd.Flags().StringVar(&eo.region, "s3-region", "", "AWS region of the bucket")
	cmd.Flags().IntVarP(&eo.concurrency, "concurrency", "j", 0, "Documents fetched at once")

	return cmd
}

// apply overrides the export section with the flags that were set.
func (eo *exportOptions) apply(ec *config.ExportConfig) {
	if eo.dir != "" {
		ec.Dir = eo.dir
	}
	if eo.bucket != "" {
		ec.S3.Bucket = eo.bucket
	}
	if eo.prefix != "" {
		ec.S3.Prefix = eo.prefix
	}
	if eo.region != "" {
		ec.S3.Region = eo.region
	}
	if eo.concurrency != 0 {
		ec.Concurrency = eo.concurrency
	}
}

// newSink builds the destination selected by the export section.
func newSink(ctx context.Context, ec config.ExportConfig) (export.Sink, string, error) {
	if ec.S3.Bucket == "" {
		sink, err := export.NewDirSink(ec.Dir)
		if err != nil {
			return nil, "", err
		}
		return sink, sink.Root(), nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if ec.S3.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(ec.S3.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, "", errors.New("E502").Wrap(err)
	}
	sink := export.NewS3Sink(s3.NewFromConfig(awsCfg), ec.S3.Bucket, ec.S3.Prefix)
	return sink, "s3://" + ec.S3.Bucket + "/" + ec.S3.Prefix, nil
}

func runExport(ctx context.Context, a *app, projectID string, w io.Writer) (err error) {
	sink, dest, err := newSink(ctx, a.cfg.Export)
	if err != nil {
		return err
	}

	s, info, err := a.connect(ctx, projectID)
	if err != nil {
		return err
	}
	defer func() {
		if lerr := s.Leave(); err == nil {
			err = lerr
		}
	}()

	ex := export.New(s, sink,
		export.WithConcurrency(a.cfg.Export.Concurrency),
		export.WithLogger(a.logger),
		export.WithMetrics(a.metrics),
	)
	docs := info.Project.Docs()
	res, err := ex.Run(ctx, docs)

	fmt.Fprintf(w, "%s: %d written, %d unchanged", info.Project.Name, res.Written, res.Unchanged)
	if res.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", res.Failed)
	}
	fmt.Fprintln(w)

	if err != nil {
		warn(w, "export to %s incomplete", dest)
		return err
	}
	success(w, "exported %d documents to %s", len(docs), dest)
	return nil
}
