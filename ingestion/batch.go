// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/retry"
)

// IngestBatch records an upload batch for sources, ingests every source on
// the worker pool and returns the finished batch.
//
// Item failures do not fail the call; they are recorded on the item and
// counted in the batch. The returned error covers bookkeeping failures only.
func (p *Pipeline) IngestBatch(ctx context.Context, sources []Source) (*core.UploadBatch, error) {
	if len(sources) == 0 {
		return nil, ErrEmptyBatch
	}

	now := time.Now().UTC()
	batch := &core.UploadBatch{
		ID:         uuid.New(),
		Status:     core.UploadStatusPending,
		TotalFiles: len(sources),
		CreatedAt:  now,
	}
	items := make([]*core.UploadItem, len(sources))
	for i, src := range sources {
		items[i] = &core.UploadItem{
			ID:        uuid.New(),
			BatchID:   batch.ID,
			Filename:  src.Filename,
			Status:    core.UploadStatusPending,
			CreatedAt: now,
		}
	}
	if err := p.store.CreateBatch(ctx, batch, items...); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	batch.Status = core.UploadStatusRunning
	batch.StartedAt = time.Now().UTC()
	if err := p.store.UpdateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to start batch: %w", err)
	}
	p.logger.Info("processing upload batch", "batch", batch.ID, "files", len(sources))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(item *core.UploadItem, ingestErr error) {
		if err := p.finishItem(ctx, item, ingestErr); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}

		mu.Lock()
		defer mu.Unlock()
		batch.ProcessedFiles++
		if ingestErr != nil {
			batch.FailedFiles++
		}
		if err := p.store.UpdateBatch(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("failed to update batch counters: %w", err))
		}
	}

	for i := range items {
		item, src := items[i], sources[i]
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			record(item, p.ingestItem(ctx, item, src))
		})
		if err != nil {
			wg.Done()
			record(item, fmt.Errorf("failed to schedule item: %w", err))
		}
	}
	wg.Wait()

	batch.Status = batchStatus(batch.TotalFiles, batch.FailedFiles)
	batch.CompletedAt = time.Now().UTC()
	if err := p.store.UpdateBatch(ctx, batch); err != nil {
		errs = append(errs, fmt.Errorf("failed to complete batch: %w", err))
	}

	p.logger.Info("upload batch complete", "batch", batch.ID, "status", batch.Status,
		"processed", batch.ProcessedFiles, "failed", batch.FailedFiles)
	return batch, errors.Join(errs...)
}

// BatchStatus returns a batch and its items in creation order.
func (p *Pipeline) BatchStatus(ctx context.Context, batchID uuid.UUID) (*core.UploadBatch, []*core.UploadItem, error) {
	batch, err := p.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, nil, err
	}
	items, err := p.store.ListItems(ctx, batchID)
	if err != nil {
		return nil, nil, err
	}
	return batch, items, nil
}

// ingestItem marks item running and ingests src, retrying upstream failures.
func (p *Pipeline) ingestItem(ctx context.Context, item *core.UploadItem, src Source) error {
	item.Status = core.UploadStatusRunning
	item.StartedAt = time.Now().UTC()
	if err := p.store.UpdateItem(ctx, item); err != nil {
		p.logger.Error("error marking item running", "item", item.ID, "err", err)
	}

	return retry.WithBackoff(ctx, func() error {
		doc, err := p.IngestDocument(ctx, src)
		if err != nil {
			if errors.Is(err, core.ErrUpstreamService) {
				return err
			}
			return retry.Permanent(err)
		}
		item.DocumentID = doc.ID
		return nil
	}, p.maxAttempts, p.retryDelay)
}

func (p *Pipeline) finishItem(ctx context.Context, item *core.UploadItem, ingestErr error) error {
	item.CompletedAt = time.Now().UTC()
	if ingestErr != nil {
		item.Status = core.UploadStatusFailed
		item.ErrorMessage = ingestErr.Error()
		p.logger.Warn("upload item failed", "item", item.ID, "file", item.Filename, "err", ingestErr)
	} else {
		item.Status = core.UploadStatusSuccess
	}
	if err := p.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("failed to update item %s: %w", item.ID, err)
	}
	return nil
}

// batchStatus derives the final status of a batch from its failure count.
func batchStatus(total, failed int) core.UploadStatus {
	switch {
	case failed == 0:
		return core.UploadStatusSuccess
	case failed >= total:
		return core.UploadStatusFailed
	default:
		return core.UploadStatusPartial
	}
}
