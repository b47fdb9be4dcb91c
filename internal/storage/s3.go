package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// s3API is the slice of the S3 client the backend needs.
type s3API interface {
	ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input,
		fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput,
		opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3Backend stores files as objects under key prefixes; there are no
// real directories, so an unused prefix simply lists empty.
type S3Backend struct {
	bucket string
	api    s3API
}

// NewS3Backend builds a backend on the ambient AWS credential chain.
func NewS3Backend(bucket string) (*S3Backend, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, fmt.Errorf("%w: new aws session: %v", ErrConnection, err)
	}
	return &S3Backend{bucket: bucket, api: s3.New(sess)}, nil
}

// IsFileInDirectory lists object keys under the directory prefix and
// compares base names exactly.
func (b *S3Backend) IsFileInDirectory(ctx context.Context, directoryPath, fileName string) (bool, error) {
	prefix := directoryPath
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var found bool
	err := b.api.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			if path.Base(aws.StringValue(obj.Key)) == fileName {
				found = true
				return false
			}
		}
		return true
	})
	if err != nil {
		return false, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
	}

	return found, nil
}

// SaveFile writes the object at fullPath, silently overwriting an
// existing key outside the existence-check flow.
func (b *S3Backend) SaveFile(ctx context.Context, data []byte, fullPath string) error {
	_, err := b.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(fullPath),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", fullPath, err)
	}
	return nil
}
