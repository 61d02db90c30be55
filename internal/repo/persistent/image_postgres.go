package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/image-vault/internal/dto"
	"github.com/andreyxaxa/image-vault/internal/entity"
	"github.com/andreyxaxa/image-vault/pkg/postgres"
	"github.com/andreyxaxa/image-vault/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	imageTable = "image"

	// Columns
	idColumn       = "id"
	fileNameColumn = "file_name"
	ownerColumn    = "owner"
)

const imageSchema = `
CREATE TABLE IF NOT EXISTS image (
	id        uuid PRIMARY KEY,
	file_name text NOT NULL,
	owner     text NOT NULL
)`

type ImageMetadataRepo struct {
	*postgres.Postgres
}

func NewImageMetadataRepo(pg *postgres.Postgres) *ImageMetadataRepo {
	return &ImageMetadataRepo{pg}
}

// EnsureSchema creates the image table. Startup concern.
func (r *ImageMetadataRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.GetExecutor(ctx).Exec(ctx, imageSchema)
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - EnsureSchema - executor.Exec: %w", err)
	}

	return nil
}

func (r *ImageMetadataRepo) Create(ctx context.Context, image *entity.Image) error {
	sql, args, err := r.Builder.
		Insert(imageTable).
		Columns(idColumn, fileNameColumn, ownerColumn).
		Values(image.ID, image.FileName, image.Owner).
		ToSql()
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Create - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *ImageMetadataRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Image, error) {
	sql, args, err := r.Builder.
		Select(idColumn, fileNameColumn, ownerColumn).
		From(imageTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var image entity.Image
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&image.ID,
		&image.FileName,
		&image.Owner,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ImageMetadataRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ImageMetadataRepo - GetByID - executor.QueryRow: %w", err)
	}

	return &image, nil
}

// Update changes only the supplied columns; the empty string means
// "not provided". At least one field must be set.
func (r *ImageMetadataRepo) Update(ctx context.Context, id uuid.UUID, patch dto.UpdateImage) error {
	if patch.Empty() {
		return fmt.Errorf("ImageMetadataRepo - Update: %w", errs.ErrInvalidRequest)
	}

	builder := r.Builder.Update(imageTable)
	if patch.FileName != "" {
		builder = builder.Set(fileNameColumn, patch.FileName)
	}
	if patch.Owner != "" {
		builder = builder.Set(ownerColumn, patch.Owner)
	}

	sql, args, err := builder.
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Update - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Update - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ImageMetadataRepo - Update: %w", errs.ErrRecordNotFound)
	}

	return nil
}

// Delete is idempotent: removing an absent row is not an error.
func (r *ImageMetadataRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.Builder.
		Delete(imageTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Delete - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Delete - executor.Exec: %w", err)
	}

	return nil
}

func (r *ImageMetadataRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	sql, args, err := r.Builder.
		Select(idColumn).
		From(imageTable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - ListIDs - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - ListIDs - executor.Query: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ImageMetadataRepo - ListIDs - rows.Scan: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - ListIDs - rows.Err: %w", err)
	}

	return ids, nil
}
