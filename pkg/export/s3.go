package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cespare/xxhash/v2"
)

// fingerprintKey is the object metadata key holding the content fingerprint.
const fingerprintKey = "leafwire-xxhash"

// S3API is the subset of *s3.Client used by S3Sink.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Sink writes documents as objects in a bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	sink := export.NewS3Sink(s3.NewFromConfig(cfg), "my-bucket", "projects/thesis/")
type S3Sink struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Sink creates a sink writing to bucket. prefix is prepended to every
// key as is.
func NewS3Sink(client S3API, bucket, prefix string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Key returns the object key for a document path.
func (s *S3Sink) Key(p string) string {
	return s.prefix + path.Clean("/" + p)[1:]
}

// Put uploads content unless the object already carries the same
// fingerprint.
func (s *S3Sink) Put(ctx context.Context, p string, content []byte) (bool, error) {
	key := s.Key(p)
	sum := xxhash.Sum64(content)

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		if v, ok := parseFingerprint(head.Metadata[fingerprintKey]); ok && v == sum {
			return false, nil
		}
	case isNotFound(err):
		// First export of this document.
	default:
		return false, fmt.Errorf("s3 head %s: %w", key, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("text/plain; charset=utf-8"),
		Metadata: map[string]string{
			fingerprintKey: Fingerprint(content),
			"export-time":  time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return false, fmt.Errorf("s3 upload %s: %w", key, err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}
