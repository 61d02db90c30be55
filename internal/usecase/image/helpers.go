package image

import (
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/andreyxaxa/image-vault/internal/dto"
	"github.com/andreyxaxa/image-vault/internal/entity"
	"github.com/google/uuid"
)

const _fallbackContentType = "application/octet-stream"

// contentTypeFor guesses a content type from the file name extension.
// Best-effort; unknown extensions fall back to the generic octet type.
func contentTypeFor(fileName string) string {
	contentType := mime.TypeByExtension(filepath.Ext(fileName))
	if contentType == "" {
		return _fallbackContentType
	}

	return contentType
}

func (uc *ImageUseCase) newOutboxEvent(image *entity.Image, action dto.Action) (*entity.OutboxEvent, error) {
	payload := map[string]interface{}{
		"id":        image.ID,
		"file_name": image.FileName,
		"owner":     image.Owner,
		"action":    action,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ImageUseCase - newOutboxEvent - json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: image.ID,
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   time.Now(),
		RetryCount:  0,
	}, nil
}

func eventIDs(events []*entity.OutboxEvent) uuid.UUIDs {
	ids := make(uuid.UUIDs, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}

	return ids
}
