package cleanup

import (
	"context"
	"log"
	"time"

	"chmura-plikow/internal/database"
	"chmura-plikow/internal/storage"
)

// DeletionQueue is the slice of the database layer the reaper needs.
type DeletionQueue interface {
	ListPendingDeletions(ctx context.Context, limit int) ([]database.ObjectDeletion, error)
	DeleteQueueEntry(ctx context.Context, id int64) error
	BumpDeletionAttempt(ctx context.Context, id int64) error
	DropExhaustedDeletions(ctx context.Context, maxAttempts int) (int64, error)
}

// Reaper drains the object-deletion queue in the background. Delete
// requests only enqueue paths; the reaper is the one talking to the
// object store, retrying failures on later sweeps.
type Reaper struct {
	queue       DeletionQueue
	objects     storage.ObjectStore
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewReaper(queue DeletionQueue, objects storage.ObjectStore, interval time.Duration, batchSize, maxAttempts int) *Reaper {
	return &Reaper{
		queue:       queue,
		objects:     objects,
		interval:    interval,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				log.Printf("WARN: cleanup sweep failed: %v", err)
			}
		}
	}
}

// Sweep processes one batch of pending deletions. Returns how many
// objects were reclaimed. A failed object-store delete bumps the
// entry's attempt counter and leaves it queued for the next sweep.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	if dropped, err := r.queue.DropExhaustedDeletions(ctx, r.maxAttempts); err != nil {
		return 0, err
	} else if dropped > 0 {
		log.Printf("WARN: dropped %d object deletions after %d failed attempts", dropped, r.maxAttempts)
	}

	pending, err := r.queue.ListPendingDeletions(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for _, entry := range pending {
		if err := r.objects.Delete(ctx, entry.Path); err != nil {
			log.Printf("WARN: failed to delete object %s (attempt %d): %v", entry.Path, entry.Attempts+1, err)
			if err := r.queue.BumpDeletionAttempt(ctx, entry.ID); err != nil {
				return reclaimed, err
			}
			continue
		}

		if err := r.queue.DeleteQueueEntry(ctx, entry.ID); err != nil {
			return reclaimed, err
		}
		reclaimed++
	}

	return reclaimed, nil
}
