package audiostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"parley-go/internal/parley"
)

const s3Scheme = "s3"

// S3Storage stores recordings as objects under bucket/prefix and addresses
// them as s3://<bucket>/<key>.
type S3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Storage wraps an S3 client. prefix is prepended to every object key.
func NewS3Storage(client *s3.Client, bucket, prefix string) *S3Storage {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Storage{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

func (s *S3Storage) Put(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	key := s.prefix + name

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(parley.MimeTypeForURI(name)),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return s.uriFor(key), nil
}

func (s *S3Storage) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	key, err := s.keyFor(uri)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", key, err)
	}
	return out.Body, nil
}

// Delete removes the object. S3 reports success for missing keys.
func (s *S3Storage) Delete(ctx context.Context, uri string) error {
	key, err := s.keyFor(uri)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) List(ctx context.Context) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var uris []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			// Only direct children of prefix are recordings.
			if strings.Contains(strings.TrimPrefix(key, s.prefix), "/") {
				continue
			}
			uris = append(uris, s.uriFor(key))
		}
	}
	return uris, nil
}

func (s *S3Storage) uriFor(key string) string {
	return s3Scheme + "://" + s.bucket + "/" + key
}

// keyFor parses s3://bucket/key and checks it belongs to this store.
func (s *S3Storage) keyFor(uri string) (string, error) {
	rest, ok := trimScheme(uri, s3Scheme)
	if !ok {
		return "", fmt.Errorf("not an s3 uri: %s", uri)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || key == "" {
		return "", fmt.Errorf("s3 uri has no key: %s", uri)
	}
	if bucket != s.bucket {
		return "", fmt.Errorf("recording %s is in bucket %s, not %s", uri, bucket, s.bucket)
	}
	if !strings.HasPrefix(key, s.prefix) {
		return "", fmt.Errorf("recording %s is outside prefix %s", uri, s.prefix)
	}
	return key, nil
}

var _ parley.AudioStorage = (*S3Storage)(nil)
