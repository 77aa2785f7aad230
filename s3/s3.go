// Package s3 stores dataset inputs and outputs in an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

const (
	attempts = 3
	delay    = 200 * time.Millisecond
)

var contentTypes = map[string]string{
	".json": "application/json",
	".csv":  "text/csv",
	".html": "text/html",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Store reads and writes objects below the root of one bucket. Paths are
// slash separated keys.
type Store struct {
	svc      s3iface.S3API
	uploader s3manageriface.UploaderAPI
	bucket   string
}

// New returns a Store for bucket using the session's credentials and region.
func New(sess *session.Session, bucket string) *Store {
	svc := s3.New(sess)
	return NewWithClient(svc, s3manager.NewUploaderWithClient(svc), bucket)
}

// NewWithClient returns a Store using the given clients.
func NewWithClient(svc s3iface.S3API, uploader s3manageriface.UploaderAPI, bucket string) *Store {
	return &Store{svc: svc, uploader: uploader, bucket: bucket}
}

// List returns the names of the objects directly below dir, without the
// dir prefix.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	prefix := strings.Trim(dir, "/")
	if prefix != "" {
		prefix += "/"
	}
	var names []string
	err := s.do(ctx, func() error {
		names = names[:0]
		input := &s3.ListObjectsV2Input{
			Bucket:    aws.String(s.bucket),
			Prefix:    aws.String(prefix),
			Delimiter: aws.String("/"),
		}
		return s.svc.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				if obj == nil || obj.Key == nil {
					continue
				}
				name := strings.TrimPrefix(*obj.Key, prefix)
				if name != "" {
					names = append(names, name)
				}
			}
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, prefix, err)
	}
	return names, nil
}

// Read returns the object at key. A missing object is reported as
// fs.ErrNotExist.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.do(ctx, func() error {
		output, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer output.Body.Close()
		data, err = io.ReadAll(output.Body)
		return err
	})
	if isNotFound(err) {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, fs.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}

// Write uploads data to key.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	ext := strings.ToLower(path.Ext(key))
	contentType, ok := contentTypes[ext]
	if !ok {
		contentType = "application/octet-stream"
	}
	contentDisposition := "inline"
	if ext == ".csv" || ext == ".xlsx" {
		contentDisposition = fmt.Sprintf(`attachment; filename="%s"`, path.Base(key))
	}
	err := s.do(ctx, func() error {
		_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:             aws.String(s.bucket),
			Key:                aws.String(key),
			Body:               bytes.NewReader(data),
			ContentDisposition: aws.String(contentDisposition),
			ContentType:        aws.String(contentType),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("write s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *Store) do(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !isNotFound(err) && !errors.Is(err, context.Canceled)
		}),
	)
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}
