package database

import (
	"context"
	"time"
)

// ObjectDeletion is one pending object-store delete. Node rows are
// removed transactionally; the bytes they pointed at are reclaimed
// later by a background sweep, so a flaky object store never blocks a
// delete request.
type ObjectDeletion struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Path       string    `json:"path"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// EnqueueObjectDeletions records object-store paths to reclaim. Called
// inside the same transaction that deletes the node rows.
func (q *Queries) EnqueueObjectDeletions(ctx context.Context, ownerID int64, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	query := `
		INSERT INTO object_deletions (owner_id, path)
		SELECT $1, unnest($2::text[])
	`
	_, err := q.db.Exec(ctx, query, ownerID, paths)
	return err
}

func (q *Queries) ListPendingDeletions(ctx context.Context, limit int) ([]ObjectDeletion, error) {
	query := `
		SELECT id, owner_id, path, attempts, enqueued_at
		FROM object_deletions
		ORDER BY id ASC
		LIMIT $1
	`
	rows, err := q.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []ObjectDeletion
	for rows.Next() {
		var d ObjectDeletion
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Path, &d.Attempts, &d.EnqueuedAt); err != nil {
			return nil, err
		}
		pending = append(pending, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if pending == nil {
		return []ObjectDeletion{}, nil
	}

	return pending, nil
}

func (q *Queries) DeleteQueueEntry(ctx context.Context, id int64) error {
	query := `DELETE FROM object_deletions WHERE id = $1`
	_, err := q.db.Exec(ctx, query, id)
	return err
}

func (q *Queries) BumpDeletionAttempt(ctx context.Context, id int64) error {
	query := `UPDATE object_deletions SET attempts = attempts + 1 WHERE id = $1`
	_, err := q.db.Exec(ctx, query, id)
	return err
}

// DropExhaustedDeletions gives up on entries that failed too many times
// so one unreachable object cannot clog the queue forever.
func (q *Queries) DropExhaustedDeletions(ctx context.Context, maxAttempts int) (int64, error) {
	query := `DELETE FROM object_deletions WHERE attempts >= $1`
	res, err := q.db.Exec(ctx, query, maxAttempts)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}
