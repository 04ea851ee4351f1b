package database

import (
	"context"
	"errors"

	"chmura-plikow/internal/models"
)

var (
	ErrTreeCycle   = errors.New("cycle detected in folder tree")
	ErrTreeTooDeep = errors.New("folder tree exceeds maximum depth")
)

// maxTreeDepth bounds subtree traversal. The parent relation is supposed
// to be acyclic but nothing in the schema enforces it, so the traversal
// refuses to follow a tree deeper than this.
const maxTreeDepth = 128

type subtreeEntry struct {
	id    string
	depth int
}

// CollectSubtree walks a folder's descendants with an explicit
// work-list instead of language recursion. Trashed rows are included. A
// node seen twice means the parent relation has a cycle and the
// traversal aborts with ErrTreeCycle instead of looping forever. The
// root itself is not part of the result.
func (q *Queries) CollectSubtree(ctx context.Context, ownerID int64, rootID string) ([]models.Node, error) {
	visited := map[string]struct{}{rootID: {}}
	worklist := []subtreeEntry{{id: rootID, depth: 0}}

	var subtree []models.Node
	for len(worklist) > 0 {
		entry := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if entry.depth >= maxTreeDepth {
			return nil, ErrTreeTooDeep
		}

		children, err := q.ListChildren(ctx, ownerID, entry.id)
		if err != nil {
			return nil, err
		}

		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				return nil, ErrTreeCycle
			}
			visited[child.ID] = struct{}{}
			subtree = append(subtree, child)
			if child.IsFolder {
				worklist = append(worklist, subtreeEntry{id: child.ID, depth: entry.depth + 1})
			}
		}
	}

	return subtree, nil
}

// DeleteNodes removes a batch of rows owned by one user in a single
// statement, so a folder and its descendants disappear together.
func (q *Queries) DeleteNodes(ctx context.Context, ownerID int64, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM nodes WHERE owner_id = $1 AND id = ANY($2)`
	res, err := q.db.Exec(ctx, query, ownerID, ids)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected(), nil
}
