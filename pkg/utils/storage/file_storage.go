package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const MaxFileSize = 10 * 1024 * 1024 // 10MB

var ErrNotFound = errors.New("stored object not found")

// Store is the payload storage boundary. The registry and the chat flow only
// see this interface; tests substitute an in-memory fake.
type Store interface {
	Store(ctx context.Context, userID uint, filename string, body io.Reader, contentType string) (string, error)
	Fetch(ctx context.Context, locator string) ([]byte, error)
	Delete(ctx context.Context, locator string) error
}

type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3Store(ctx context.Context, bucket, region string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// Store uploads the payload and returns its public locator. Object keys are
// user-scoped with a random component so re-uploads never collide.
func (s *S3Store) Store(ctx context.Context, userID uint, filename string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%d/%s_%s", userID, uuid.NewString(), strings.ReplaceAll(filename, " ", "_"))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *S3Store) Fetch(ctx context.Context, locator string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keyFromLocator(locator)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Delete removes the object. S3 deletes are silent for missing keys, so the
// object is checked first; the caller needs the distinction.
func (s *S3Store) Delete(ctx context.Context, locator string) error {
	key := s.keyFromLocator(locator)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return ErrNotFound
		}
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Store) keyFromLocator(locator string) string {
	parts := strings.SplitN(locator, ".amazonaws.com/", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return locator
}

func isNoSuchKey(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") ||
		strings.Contains(msg, "NotFound") ||
		strings.Contains(msg, "StatusCode: 404")
}
