package image

import (
	"context"
	"fmt"
	"io"

	"github.com/andreyxaxa/image-vault/internal/dto"
	"github.com/andreyxaxa/image-vault/internal/entity"
	"github.com/andreyxaxa/image-vault/internal/repo"
	"github.com/andreyxaxa/image-vault/pkg/logger"
	"github.com/andreyxaxa/image-vault/pkg/types/errs"
	"github.com/google/uuid"
)

// Owner label recorded when the upload does not name one.
const _defaultOwner = "anon"

type ImageUseCase struct {
	blobRepo     repo.BlobRepo
	metadataRepo repo.ImageMetadataRepo
	outboxRepo   repo.OutboxRepo
	transactor   repo.Transactor

	logger logger.Interface
}

func New(
	blobRepo repo.BlobRepo,
	metadataRepo repo.ImageMetadataRepo,
	outboxRepo repo.OutboxRepo,
	transactor repo.Transactor,
	l logger.Interface,
) *ImageUseCase {
	return &ImageUseCase{
		blobRepo:     blobRepo,
		metadataRepo: metadataRepo,
		outboxRepo:   outboxRepo,
		transactor:   transactor,
		logger:       l,
	}
}

// Upload stores the blob first, then commits the metadata row together
// with an outbox event. A blob that was stored before a failed commit is
// left behind for the reconciler sweep; nothing compensates inline.
func (uc *ImageUseCase) Upload(ctx context.Context, data io.Reader, fileName, owner string, size int64) (*entity.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("ImageUseCase - Upload: %w", errs.ErrInvalidRequest)
	}

	if owner == "" {
		owner = _defaultOwner
	}

	image := &entity.Image{
		ID:       uuid.New(),
		FileName: fileName,
		Owner:    owner,
	}
	key := image.ID.String()

	// 1. blob goes to the object store
	err := uc.blobRepo.Upload(ctx, key, data, size)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - Upload - uc.blobRepo.Upload: %w", err)
	}

	// 2. row + outbox event in one transaction
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.metadataRepo.Create(ctx, image); err != nil {
			return fmt.Errorf("ImageUseCase - Upload - uc.metadataRepo.Create: %w", err)
		}

		event, err := uc.newOutboxEvent(image, dto.ActionUploaded)
		if err != nil {
			return fmt.Errorf("ImageUseCase - Upload - uc.newOutboxEvent: %w", err)
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("ImageUseCase - Upload - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		uc.logger.Warn("orphan blob left in storage, key=%s", key)

		return nil, fmt.Errorf("ImageUseCase - Upload - uc.transactor.WithinTransaction: %w", err)
	}

	return image, nil
}

// Fetch returns the record, the blob bytes and the content type derived
// from the file name extension. A row without a blob surfaces as not found.
func (uc *ImageUseCase) Fetch(ctx context.Context, id uuid.UUID) (*entity.Image, []byte, string, error) {
	image, err := uc.metadataRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, "", fmt.Errorf("ImageUseCase - Fetch - uc.metadataRepo.GetByID: %w", err)
	}

	data, err := uc.blobRepo.DownloadBytes(ctx, image.ID.String())
	if err != nil {
		return nil, nil, "", fmt.Errorf("ImageUseCase - Fetch - uc.blobRepo.DownloadBytes: %w", err)
	}

	return image, data, contentTypeFor(image.FileName), nil
}

// Update applies the partial patch to the metadata row only; the blob is
// never touched.
func (uc *ImageUseCase) Update(ctx context.Context, id uuid.UUID, patch dto.UpdateImage) error {
	if patch.Empty() {
		return fmt.Errorf("ImageUseCase - Update: %w", errs.ErrInvalidRequest)
	}

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.metadataRepo.Update(ctx, id, patch); err != nil {
			return fmt.Errorf("ImageUseCase - Update - uc.metadataRepo.Update: %w", err)
		}

		event, err := uc.newOutboxEvent(&entity.Image{ID: id, FileName: patch.FileName, Owner: patch.Owner}, dto.ActionUpdated)
		if err != nil {
			return fmt.Errorf("ImageUseCase - Update - uc.newOutboxEvent: %w", err)
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("ImageUseCase - Update - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("ImageUseCase - Update - uc.transactor.WithinTransaction: %w", err)
	}

	return nil
}

// Delete removes the blob first, then the row, mirroring the create
// ordering. Both steps are idempotent; an unknown id is a no-op success.
func (uc *ImageUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	err := uc.blobRepo.Delete(ctx, id.String())
	if err != nil {
		return fmt.Errorf("ImageUseCase - Delete - uc.blobRepo.Delete: %w", err)
	}

	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.metadataRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("ImageUseCase - Delete - uc.metadataRepo.Delete: %w", err)
		}

		event, err := uc.newOutboxEvent(&entity.Image{ID: id}, dto.ActionDeleted)
		if err != nil {
			return fmt.Errorf("ImageUseCase - Delete - uc.newOutboxEvent: %w", err)
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("ImageUseCase - Delete - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("ImageUseCase - Delete - uc.transactor.WithinTransaction: %w", err)
	}

	return nil
}

func (uc *ImageUseCase) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	events, err := uc.outboxRepo.GetPendingEvents(ctx, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - GetPendingEvents - uc.outboxRepo.GetPendingEvents: %w", err)
	}

	return events, nil
}

func (uc *ImageUseCase) MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessingBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("ImageUseCase - MarkAsProcessingBatch - uc.outboxRepo.MarkAsProcessingBatch: %w", err)
	}

	return nil
}

func (uc *ImageUseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessedBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("ImageUseCase - MarkAsProcessedBatch - uc.outboxRepo.MarkAsProcessedBatch: %w", err)
	}

	return nil
}

func (uc *ImageUseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.IncrementRetryCountBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("ImageUseCase - IncrementRetryCountBatch - uc.outboxRepo.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *ImageUseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	err := uc.outboxRepo.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("ImageUseCase - MarkMaxRetriesAsFailed - uc.outboxRepo.MarkMaxRetriesAsFailed: %w", err)
	}

	return nil
}

func (uc *ImageUseCase) CleanupOutbox(ctx context.Context) error {
	count, err := uc.outboxRepo.DeleteOldProcessedAndFailed(ctx)
	if err != nil {
		return fmt.Errorf("ImageUseCase - CleanupOutbox - uc.outboxRepo.DeleteOldProcessedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("deleted old events, count = %d", count)
	}

	return nil
}
