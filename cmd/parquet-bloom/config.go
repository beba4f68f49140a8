package main

// config is the configuration for the program.
type config struct {
	// Env is the environment we're executing in
	Env string `env:"ENV"`

	// Bucket is the S3 bucket the publish command uploads to
	Bucket string `env:"BUCKET"`

	// QueueURL is the URL of the SQS queue notified after publishing
	QueueURL string `env:"QUEUE_URL"`

	// S3EndpointOverride is the endpoint to use for S3
	S3EndpointOverride string `env:"S3_ENDPOINT_OVERRIDE"`
}
