package persistent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andreyxaxa/image-vault/pkg/s3client"
	"github.com/andreyxaxa/image-vault/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type BlobRepo struct {
	*s3client.S3Client
	bucket string
}

func NewBlobRepo(s3c *s3client.S3Client, bucket string) *BlobRepo {
	return &BlobRepo{s3c, bucket}
}

func (r *BlobRepo) Upload(ctx context.Context, key string, data io.Reader, size int64) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("BlobRepo - Upload - r.Client.PutObject: %w", err)
	}

	return nil
}

func (r *BlobRepo) DownloadBytes(ctx context.Context, key string) ([]byte, error) {
	result, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("BlobRepo - DownloadBytes: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("BlobRepo - DownloadBytes - r.Client.GetObject: %w", err)
	}
	defer result.Body.Close()

	b, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("BlobRepo - DownloadBytes - io.ReadAll: %w", err)
	}

	return b, nil
}

// Delete is idempotent; S3 does not report missing keys.
func (r *BlobRepo) Delete(ctx context.Context, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("BlobRepo - Delete - r.Client.DeleteObject: %w", err)
	}

	return nil
}

func (r *BlobRepo) ListKeys(ctx context.Context) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(r.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("BlobRepo - ListKeys - paginator.NextPage: %w", err)
		}

		for _, object := range page.Contents {
			keys = append(keys, aws.ToString(object.Key))
		}
	}

	return keys, nil
}
