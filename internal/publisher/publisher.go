// Package publisher uploads written parquet files to S3 and notifies an
// SQS queue about them.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"golang.org/x/sync/errgroup"
)

// ObjectPutter is the subset of the S3 client the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// MessageSender is the subset of the SQS client the publisher needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// notification is the message body sent to SQS after an upload completes.
type notification struct {
	Bucket string   `json:"bucket"`
	Paths  []string `json:"paths"`
}

// Publisher uploads files and sends upload notifications.
type Publisher struct {
	s3Client  ObjectPutter
	sqsClient MessageSender
	queueURL  string
	logger    *slog.Logger
}

// New creates a Publisher. queueURL may be empty, in which case no SQS
// notification is sent.
func New(s3Client ObjectPutter, sqsClient MessageSender, queueURL string, logger *slog.Logger) *Publisher {
	return &Publisher{
		s3Client:  s3Client,
		sqsClient: sqsClient,
		queueURL:  queueURL,
		logger:    logger,
	}
}

// Publish uploads each file to the bucket under its base name, then sends
// a single notification listing the uploaded keys. Uploads run
// concurrently; any failure aborts the whole operation and no notification
// is sent.
func (p *Publisher) Publish(ctx context.Context, bucket string, paths []string) error {
	if bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files to publish")
	}

	keys := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		keys[i] = filepath.Base(path)
		g.Go(p.upload(gctx, bucket, keys[i], path))
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if p.queueURL == "" {
		return nil
	}

	body, err := json.Marshal(notification{Bucket: bucket, Paths: keys})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if _, err := p.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	}); err != nil {
		p.logger.ErrorContext(ctx, "Failed to send notification to SQS",
			"queue_url", p.queueURL,
			"error", err,
		)
		return fmt.Errorf("failed to send notification to SQS: %w", err)
	}

	p.logger.InfoContext(ctx, "Published files",
		slog.String("bucket", bucket),
		slog.Any("keys", keys),
	)
	return nil
}

func (p *Publisher) upload(ctx context.Context, bucket, key, path string) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		if _, err := p.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   f,
		}); err != nil {
			p.logger.ErrorContext(ctx, "Failed to upload file to S3",
				"bucket", bucket,
				"key", key,
				"error", err,
			)
			return fmt.Errorf("failed to upload %s to S3: %w", path, err)
		}

		p.logger.InfoContext(ctx, "Uploaded file to S3",
			slog.String("bucket", bucket),
			slog.String("key", key),
		)
		return nil
	}
}
