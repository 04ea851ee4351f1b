package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chmura-plikow/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNodeNotFound   = errors.New("node not found or user is not the owner")
	ErrParentNotFound = errors.New("parent folder not found for this owner")
)

const nodeColumns = `id, owner_id, parent_id, name, path, size_bytes, mime_type,
	file_url, thumbnail_url, is_folder, is_starred, is_trashed, created_at, updated_at`

func scanNode(row pgx.Row) (*models.Node, error) {
	var node models.Node
	err := row.Scan(
		&node.ID,
		&node.OwnerID,
		&node.ParentID,
		&node.Name,
		&node.Path,
		&node.SizeBytes,
		&node.MimeType,
		&node.FileURL,
		&node.ThumbnailURL,
		&node.IsFolder,
		&node.IsStarred,
		&node.IsTrashed,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func collectNodes(rows pgx.Rows) ([]models.Node, error) {
	defer rows.Close()

	var nodes []models.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if nodes == nil {
		return []models.Node{}, nil
	}

	return nodes, nil
}

type CreateNodeParams struct {
	ID           string
	OwnerID      int64
	ParentID     *string
	Name         string
	Path         string
	SizeBytes    int64
	MimeType     string
	FileURL      *string
	ThumbnailURL *string
	IsFolder     bool
}

// CreateNode inserts a file or folder row. A non-nil parent must be an
// existing, non-trashed folder owned by the same user; cross-user
// parenting is rejected outright. Nesting is capped at maxTreeDepth at
// insert time, so subtree traversal hitting the same bound later can
// only mean a corrupted parent chain.
func (q *Queries) CreateNode(ctx context.Context, arg CreateNodeParams) (*models.Node, error) {
	if arg.ParentID != nil {
		// Jedno zapytanie sprawdza istnienie rodzica i długość
		// łańcucha przodków. Ogranicznik depth < $3 zatrzymuje CTE
		// nawet na cyklicznych danych.
		check := `
			WITH RECURSIVE ancestors AS (
				SELECT id, parent_id, 1 AS depth FROM nodes
				WHERE id = $1 AND owner_id = $2 AND is_folder AND NOT is_trashed
				UNION ALL
				SELECT n.id, n.parent_id, a.depth + 1
				FROM nodes n JOIN ancestors a ON n.id = a.parent_id
				WHERE a.depth < $3
			)
			SELECT COALESCE(max(depth), 0) FROM ancestors`
		var chain int
		if err := q.db.QueryRow(ctx, check, *arg.ParentID, arg.OwnerID, maxTreeDepth).Scan(&chain); err != nil {
			return nil, err
		}
		if chain == 0 {
			return nil, ErrParentNotFound
		}
		if chain >= maxTreeDepth {
			return nil, ErrTreeTooDeep
		}
	}

	query := `
		INSERT INTO nodes (id, owner_id, parent_id, name, path, size_bytes, mime_type,
			file_url, thumbnail_url, is_folder, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING ` + nodeColumns

	now := time.Now()
	row := q.db.QueryRow(ctx, query,
		arg.ID,
		arg.OwnerID,
		arg.ParentID,
		arg.Name,
		arg.Path,
		arg.SizeBytes,
		arg.MimeType,
		arg.FileURL,
		arg.ThumbnailURL,
		arg.IsFolder,
		now,
	)

	node, err := scanNode(row)
	if err != nil {
		// Rodzic mógł zniknąć między sprawdzeniem a INSERT-em.
		if isParentFKViolation(err) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}

	return node, nil
}

// isParentFKViolation matches the foreign-key error raised when the
// parent row disappears between the precheck and the insert.
func isParentFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == "nodes_parent_id_fkey"
}

// ListNodes selects a user's nodes by view. The trash and starred views
// ignore parentID; the all view is scoped to one tree level (root when
// parentID is nil). Folders sort before files, then names ascending,
// case-insensitive.
func (q *Queries) ListNodes(ctx context.Context, ownerID int64, view string, parentID *string) ([]models.Node, error) {
	const order = ` ORDER BY is_folder DESC, lower(name) ASC`

	var rows pgx.Rows
	var err error

	switch view {
	case "trash":
		query := `SELECT ` + nodeColumns + ` FROM nodes
			WHERE owner_id = $1 AND is_trashed` + order
		rows, err = q.db.Query(ctx, query, ownerID)
	case "starred":
		query := `SELECT ` + nodeColumns + ` FROM nodes
			WHERE owner_id = $1 AND is_starred AND NOT is_trashed` + order
		rows, err = q.db.Query(ctx, query, ownerID)
	case "", "all":
		if parentID == nil {
			query := `SELECT ` + nodeColumns + ` FROM nodes
				WHERE owner_id = $1 AND NOT is_trashed AND parent_id IS NULL` + order
			rows, err = q.db.Query(ctx, query, ownerID)
		} else {
			query := `SELECT ` + nodeColumns + ` FROM nodes
				WHERE owner_id = $1 AND NOT is_trashed AND parent_id = $2` + order
			rows, err = q.db.Query(ctx, query, ownerID, *parentID)
		}
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}

	if err != nil {
		return nil, err
	}

	return collectNodes(rows)
}

// ListChildren returns the direct children of a folder, trashed rows
// included. The recursive delete has to see trashed descendants too.
func (q *Queries) ListChildren(ctx context.Context, ownerID int64, parentID string) ([]models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes
		WHERE owner_id = $1 AND parent_id = $2
		ORDER BY is_folder DESC, lower(name) ASC`

	rows, err := q.db.Query(ctx, query, ownerID, parentID)
	if err != nil {
		return nil, err
	}

	return collectNodes(rows)
}

func (q *Queries) NodeExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM nodes WHERE id = $1)"
	err := q.db.QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetNodeByID fetches one node scoped by owner. Trashed rows are
// returned as well; the flag operations and deletes work on them.
// Returns (nil, nil) when the row is missing or owned by someone else,
// so callers cannot tell the two apart.
func (q *Queries) GetNodeByID(ctx context.Context, id string, ownerID int64) (*models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes
		WHERE id = $1 AND owner_id = $2`

	node, err := scanNode(q.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return node, nil
}

// ToggleStar flips is_starred on exactly one node. No effect on children.
func (q *Queries) ToggleStar(ctx context.Context, id string, ownerID int64) (*models.Node, error) {
	query := `UPDATE nodes
		SET is_starred = NOT is_starred, updated_at = $3
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + nodeColumns

	node, err := scanNode(q.db.QueryRow(ctx, query, id, ownerID, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return node, nil
}

// ToggleTrash flips is_trashed on exactly one node. Children keep their
// own flag; a trashed folder's contents stay reachable only by direct
// navigation until the trash is emptied.
func (q *Queries) ToggleTrash(ctx context.Context, id string, ownerID int64) (*models.Node, error) {
	query := `UPDATE nodes
		SET is_trashed = NOT is_trashed, updated_at = $3
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + nodeColumns

	node, err := scanNode(q.db.QueryRow(ctx, query, id, ownerID, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return node, nil
}

// DeleteNode removes a single row.
func (q *Queries) DeleteNode(ctx context.Context, id string, ownerID int64) (bool, error) {
	query := `DELETE FROM nodes WHERE id = $1 AND owner_id = $2`
	res, err := q.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// StorageUsed recomputes the owner's usage from current row state on
// every call: the sum of sizes over non-trashed, non-folder nodes.
func (q *Queries) StorageUsed(ctx context.Context, ownerID int64) (int64, error) {
	var used int64
	query := `SELECT COALESCE(SUM(size_bytes), 0) FROM nodes
		WHERE owner_id = $1 AND NOT is_trashed AND NOT is_folder`
	err := q.db.QueryRow(ctx, query, ownerID).Scan(&used)
	if err != nil {
		return 0, err
	}
	return used, nil
}
