package image

import (
	"context"
	"fmt"
)

// Reconcile sweeps both stores and reports records that lost their
// counterpart: blobs without a row (possible after a failed upload
// commit) and rows without a blob (possible after a half-finished
// delete). Orphan blobs are removed only when deleteOrphans is set;
// dangling rows are reported and left alone, a fetch on them already
// surfaces not-found.
func (uc *ImageUseCase) Reconcile(ctx context.Context, deleteOrphans bool) error {
	keys, err := uc.blobRepo.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("ImageUseCase - Reconcile - uc.blobRepo.ListKeys: %w", err)
	}

	ids, err := uc.metadataRepo.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("ImageUseCase - Reconcile - uc.metadataRepo.ListIDs: %w", err)
	}

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id.String()] = struct{}{}
	}

	keySet := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		keySet[key] = struct{}{}
	}

	var orphanBlobs, danglingRows int

	for _, key := range keys {
		if _, ok := idSet[key]; ok {
			continue
		}

		orphanBlobs++
		if deleteOrphans {
			if err := uc.blobRepo.Delete(ctx, key); err != nil {
				uc.logger.Warn("failed to delete orphan blob, key=%s, error=%v", key, err)
				continue
			}
			uc.logger.Info("deleted orphan blob, key=%s", key)
		} else {
			uc.logger.Warn("orphan blob without metadata row, key=%s", key)
		}
	}

	for _, id := range ids {
		if _, ok := keySet[id.String()]; ok {
			continue
		}

		danglingRows++
		uc.logger.Warn("metadata row without blob, id=%s", id)
	}

	if orphanBlobs > 0 || danglingRows > 0 {
		uc.logger.Info("reconcile sweep finished, orphan blobs = %d, dangling rows = %d", orphanBlobs, danglingRows)
	}

	return nil
}
