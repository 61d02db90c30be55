package repo

import (
	"context"
	"io"

	"github.com/andreyxaxa/image-vault/internal/dto"
	"github.com/andreyxaxa/image-vault/internal/entity"
	"github.com/google/uuid"
)

type (
	// BlobRepo stores opaque byte blobs by key in a fixed bucket.
	BlobRepo interface {
		Upload(ctx context.Context, key string, data io.Reader, size int64) error
		DownloadBytes(ctx context.Context, key string) ([]byte, error)
		Delete(ctx context.Context, key string) error
		ListKeys(ctx context.Context) ([]string, error)
	}

	// ImageMetadataRepo keeps one row per image, keyed by id.
	ImageMetadataRepo interface {
		Create(ctx context.Context, image *entity.Image) error
		GetByID(ctx context.Context, id uuid.UUID) (*entity.Image, error)
		Update(ctx context.Context, id uuid.UUID, patch dto.UpdateImage) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListIDs(ctx context.Context) ([]uuid.UUID, error)
	}

	// OutboxRepo keeps lifecycle events awaiting publication.
	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, ids uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, ids uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, ids uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		DeleteOldProcessedAndFailed(ctx context.Context) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
