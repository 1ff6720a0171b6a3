// Package s3store saves exported designs to an S3 bucket.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mhpenta/designgen"
	"github.com/mhpenta/designgen/internal/log"
)

// PutObjectAPI is the part of *s3.Client the store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store uploads designs as objects under Prefix in Bucket.
type Store struct {
	Client PutObjectAPI
	Bucket string
	Prefix string
	// BaseURL, when set, is the public address of the bucket (a CDN or
	// website endpoint) used to build returned URLs.
	BaseURL string
}

var _ designgen.Storage = (*Store)(nil)

func New(client *s3.Client, bucket, prefix, baseURL string) *Store {
	return &Store{
		Client:  client,
		Bucket:  bucket,
		Prefix:  prefix,
		BaseURL: baseURL,
	}
}

// SaveFile uploads data as {Prefix}/{name} and returns its URL.
func (s *Store) SaveFile(ctx context.Context, data []byte, name string, contentType string) (string, error) {
	if s.Bucket == "" {
		return "", fmt.Errorf("s3store: %w: bucket is empty", designgen.ErrStorageNotConfigured)
	}

	key := strings.TrimPrefix(path.Join(s.Prefix, path.Clean("/"+name)), "/")

	log.FromContextOrDiscard(ctx).Info("uploading design to s3",
		"bucket", s.Bucket,
		"key", key,
		"content_type", contentType,
	)

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.Bucket),
		Key:                aws.String(key),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", path.Base(key))),
		Body:               bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.Bucket, key, err)
	}

	if s.BaseURL != "" {
		return strings.TrimSuffix(s.BaseURL, "/") + "/" + key, nil
	}
	return "s3://" + s.Bucket + "/" + key, nil
}
