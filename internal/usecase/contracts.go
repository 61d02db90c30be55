package usecase

import (
	"context"
	"io"

	"github.com/andreyxaxa/image-vault/internal/dto"
	"github.com/andreyxaxa/image-vault/internal/entity"
	"github.com/google/uuid"
)

type (
	ImageUseCase interface {
		Upload(ctx context.Context, data io.Reader, fileName, owner string, size int64) (*entity.Image, error)
		Fetch(ctx context.Context, id uuid.UUID) (*entity.Image, []byte, string, error)
		Update(ctx context.Context, id uuid.UUID, patch dto.UpdateImage) error
		Delete(ctx context.Context, id uuid.UUID) error

		Reconcile(ctx context.Context, deleteOrphans bool) error

		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}
)
