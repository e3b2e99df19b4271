package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// S3Client defines the part of the AWS S3 client the archive needs.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive stores generated exports in a bucket.
type S3Archive struct {
	client S3Client
	bucket string
}

func NewS3Archive(client S3Client, bucket string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket}
}

// Put uploads data under key, replacing any previous object.
func (a *S3Archive) Put(ctx context.Context, key, contentType string, data []byte) error {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("app.archive.bucket", a.bucket),
		attribute.String("app.archive.key", key),
	)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s into bucket %s: %w", key, a.bucket, err)
	}
	return nil
}
