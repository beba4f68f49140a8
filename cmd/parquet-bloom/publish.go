package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/jsmithdenverdev/parquet-bloom-writer/internal/publisher"
)

func runPublish(ctx context.Context, stdout io.Writer, logger *slog.Logger, cfg config, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(stdout)
	bucket := fs.String("bucket", cfg.Bucket, "S3 bucket to upload to")
	queueURL := fs.String("queue-url", cfg.QueueURL, "SQS queue to notify (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{defaultFilename}
	}
	if *bucket == "" {
		return fmt.Errorf("bucket is required (flag -bucket or BUCKET environment variable)")
	}

	// Load aws config
	awscfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	s3Client := s3.NewFromConfig(awscfg, withEndpointOverride(cfg))
	sqsClient := sqs.NewFromConfig(awscfg)

	pub := publisher.New(s3Client, sqsClient, *queueURL, logger)
	return pub.Publish(ctx, *bucket, paths)
}

// withEndpointOverride returns a function option that sets the endpoint of an
// S3 client based on the configuration.
func withEndpointOverride(cfg config) func(*s3.Options) {
	return func(o *s3.Options) {
		if cfg.S3EndpointOverride != "" {
			o.BaseEndpoint = aws.String(cfg.S3EndpointOverride)
		}
	}
}
