package database

import (
	"context"
)

// EmptyTrash deletes every trashed row for the owner regardless of tree
// position; trash is a flat flag, not a subtree concept. Returns the
// object-store paths of the deleted file rows and the total number of
// rows removed. A non-trashed child of a purged folder is re-rooted by
// the parent_id ON DELETE SET NULL rule rather than stranded on a
// dangling reference.
func (q *Queries) EmptyTrash(ctx context.Context, ownerID int64) ([]string, int64, error) {
	query := `
		DELETE FROM nodes
		WHERE owner_id = $1 AND is_trashed
		RETURNING path, is_folder
	`

	rows, err := q.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var paths []string
	var deleted int64
	for rows.Next() {
		var path string
		var isFolder bool
		if err := rows.Scan(&path, &isFolder); err != nil {
			return nil, 0, err
		}
		deleted++
		if !isFolder && path != "" {
			paths = append(paths, path)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return paths, deleted, nil
}
