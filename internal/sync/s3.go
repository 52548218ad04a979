package sync

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectPutter is the part of *s3.Client the destination uses.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Destination uploads the transition export to one object in a bucket.
// The export summary is attached as object metadata so the journal span
// can be inspected without downloading it.
type S3Destination struct {
	client objectPutter
	bucket string
	key    string
}

// NewS3Destination creates an S3 destination. A non-empty endpoint selects
// an S3-compatible server (MinIO and similar) with path-style addressing.
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Destination{client: client, bucket: bucket, key: key}, nil
}

// Write replaces the export object.
func (d *S3Destination) Write(ctx context.Context, data []byte, sum Summary) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-ndjson"),
		Metadata:    objectMetadata(sum),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", d.bucket, d.key, err)
	}
	return nil
}

// objectMetadata renders sum as x-amz-meta-* values.
func objectMetadata(sum Summary) map[string]string {
	md := map[string]string{
		"transition-count": strconv.Itoa(sum.Transitions),
	}
	if len(sum.MonitorIDs) > 0 {
		md["monitor-ids"] = strings.Join(sum.MonitorIDs, ",")
	}
	if sum.Transitions > 0 {
		md["first-at"] = sum.First.UTC().Format(time.RFC3339)
		md["last-at"] = sum.Last.UTC().Format(time.RFC3339)
	}
	return md
}
