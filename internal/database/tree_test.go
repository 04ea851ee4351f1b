package database

import (
	"context"
	"fmt"
	"testing"

	"chmura-plikow/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCollectSubtree(t *testing.T) {
	ownerID := createTestUserForNodes(t, "user_collect_subtree")
	ctx := context.Background()

	// folder -> subfolder -> plik, plus plik bezpośrednio w folderze
	folder := createTestNode(t, CreateNodeParams{ID: "subtree_root_00000001", OwnerID: ownerID, Name: "Folder", IsFolder: true})
	subfolder := createTestNode(t, CreateNodeParams{ID: "subtree_sub_000000001", OwnerID: ownerID, ParentID: &folder.ID, Name: "Sub", IsFolder: true})
	deepFile := createTestNode(t, CreateNodeParams{ID: "subtree_deep_00000001", OwnerID: ownerID, ParentID: &subfolder.ID, Name: "deep.txt", Path: "x/deep", SizeBytes: 1})
	topFile := createTestNode(t, CreateNodeParams{ID: "subtree_top_000000001", OwnerID: ownerID, ParentID: &folder.ID, Name: "top.txt", Path: "x/top", SizeBytes: 1})

	// Element w koszu w środku poddrzewa też jest zbierany
	trashedFile := createTestNode(t, CreateNodeParams{ID: "subtree_trash_0000001", OwnerID: ownerID, ParentID: &subfolder.ID, Name: "trashed.txt", Path: "x/tr", SizeBytes: 1})
	_, err := testStore.ToggleTrash(ctx, trashedFile.ID, ownerID)
	require.NoError(t, err)

	subtree, err := testStore.CollectSubtree(ctx, ownerID, folder.ID)
	require.NoError(t, err)

	ids := make(map[string]bool, len(subtree))
	for _, n := range subtree {
		ids[n.ID] = true
	}
	require.Len(t, subtree, 4)
	require.True(t, ids[subfolder.ID])
	require.True(t, ids[deepFile.ID])
	require.True(t, ids[topFile.ID])
	require.True(t, ids[trashedFile.ID])
	require.False(t, ids[folder.ID], "root is not part of its own subtree")

	// Puste poddrzewo
	empty := createTestNode(t, CreateNodeParams{ID: "subtree_empty_0000001", OwnerID: ownerID, Name: "Empty", IsFolder: true})
	subtree, err = testStore.CollectSubtree(ctx, ownerID, empty.ID)
	require.NoError(t, err)
	require.Empty(t, subtree)
}

func TestCollectSubtreeCycle(t *testing.T) {
	ownerID := createTestUserForNodes(t, "user_subtree_cycle")
	ctx := context.Background()

	a := createTestNode(t, CreateNodeParams{ID: "cycle_a_0000000000001", OwnerID: ownerID, Name: "A", IsFolder: true})
	b := createTestNode(t, CreateNodeParams{ID: "cycle_b_0000000000001", OwnerID: ownerID, ParentID: &a.ID, Name: "B", IsFolder: true})

	// Zepsuj relację rodzica z pominięciem warstwy aplikacji: A staje się dzieckiem B
	_, err := testStore.pool.Exec(ctx, `UPDATE nodes SET parent_id = $1 WHERE id = $2`, b.ID, a.ID)
	require.NoError(t, err)

	_, err = testStore.CollectSubtree(ctx, ownerID, a.ID)
	require.ErrorIs(t, err, ErrTreeCycle)
}

func TestDeleteNodes(t *testing.T) {
	ownerID := createTestUserForNodes(t, "user_delete_nodes")
	otherID := createTestUserForNodes(t, "user_delete_nodes_oth")
	ctx := context.Background()

	folder := createTestNode(t, CreateNodeParams{ID: "delnodes_root_0000001", OwnerID: ownerID, Name: "Folder", IsFolder: true})
	child := createTestNode(t, CreateNodeParams{ID: "delnodes_child_000001", OwnerID: ownerID, ParentID: &folder.ID, Name: "child.txt", Path: "x/c", SizeBytes: 1})
	foreign := createTestNode(t, CreateNodeParams{ID: "delnodes_foreign_0001", OwnerID: otherID, Name: "foreign.txt", Path: "x/f", SizeBytes: 1})

	// Cudzy identyfikator na liście nie usuwa cudzego wiersza
	deleted, err := testStore.DeleteNodes(ctx, ownerID, []string{child.ID, folder.ID, foreign.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	got, err := testStore.GetNodeByID(ctx, foreign.ID, otherID)
	require.NoError(t, err)
	require.NotNil(t, got)

	deleted, err = testStore.DeleteNodes(ctx, ownerID, nil)
	require.NoError(t, err)
	require.Zero(t, deleted)
}

func TestRecursiveDeleteCompleteness(t *testing.T) {
	ownerID := createTestUserForNodes(t, "user_recursive_delete")
	ctx := context.Background()

	folder := createTestNode(t, CreateNodeParams{ID: "recdel_root_000000001", OwnerID: ownerID, Name: "Folder", IsFolder: true})
	sub := createTestNode(t, CreateNodeParams{ID: "recdel_sub_0000000001", OwnerID: ownerID, ParentID: &folder.ID, Name: "Sub", IsFolder: true})
	createTestNode(t, CreateNodeParams{ID: "recdel_file_000000001", OwnerID: ownerID, ParentID: &sub.ID, Name: "deep.txt", Path: "x/rd", SizeBytes: 1})
	keep := createTestNode(t, CreateNodeParams{ID: "recdel_keep_000000001", OwnerID: ownerID, Name: "keep.txt", Path: "x/keep", SizeBytes: 1})

	// Pełny przebieg jak w handlerze: zbierz poddrzewo i usuń razem z korzeniem w transakcji
	err := testStore.ExecTx(ctx, func(q *Queries) error {
		subtree, err := q.CollectSubtree(ctx, ownerID, folder.ID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(subtree)+1)
		for _, n := range subtree {
			ids = append(ids, n.ID)
		}
		ids = append(ids, folder.ID)
		_, err = q.DeleteNodes(ctx, ownerID, ids)
		return err
	})
	require.NoError(t, err)

	var count int
	err = testStore.pool.QueryRow(ctx, `SELECT count(*) FROM nodes WHERE owner_id = $1`, ownerID).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count, "only the node outside the subtree survives")

	got, err := testStore.GetNodeByID(ctx, keep.ID, ownerID)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestEmptyTrash(t *testing.T) {
	ownerID := createTestUserForNodes(t, "user_empty_trash")
	otherID := createTestUserForNodes(t, "user_empty_trash_othr")
	ctx := context.Background()

	folder := createTestNode(t, CreateNodeParams{ID: "empty_folder_00000001", OwnerID: ownerID, Name: "Folder", IsFolder: true})
	inside := createTestNode(t, CreateNodeParams{ID: "empty_inside_00000001", OwnerID: ownerID, ParentID: &folder.ID, Name: "inside.txt", Path: "x/in", SizeBytes: 1})
	rootFile := createTestNode(t, CreateNodeParams{ID: "empty_root_file_00001", OwnerID: ownerID, Name: "root.txt", Path: "x/r", SizeBytes: 1})
	survivor := createTestNode(t, CreateNodeParams{ID: "empty_survivor_000001", OwnerID: ownerID, ParentID: &folder.ID, Name: "survivor.txt", Path: "x/sv", SizeBytes: 1})
	foreignTrash := createTestNode(t, CreateNodeParams{ID: "empty_foreign_0000001", OwnerID: otherID, Name: "foreign.txt", Path: "x/fo", SizeBytes: 1})

	// Do kosza: folder, plik w nim i plik z korzenia; survivor zostaje
	for _, n := range []string{folder.ID, inside.ID, rootFile.ID} {
		_, err := testStore.ToggleTrash(ctx, n, ownerID)
		require.NoError(t, err)
	}
	_, err := testStore.ToggleTrash(ctx, foreignTrash.ID, otherID)
	require.NoError(t, err)

	paths, deleted, err := testStore.EmptyTrash(ctx, ownerID)
	require.NoError(t, err)
	require.Equal(t, int64(3), deleted)
	// Ścieżki tylko plików, folder nie ma bajtów w magazynie
	require.ElementsMatch(t, []string{"x/in", "x/r"}, paths)

	// Kosz pusty, survivor przetrwał z wyzerowanym rodzicem
	trash, err := testStore.ListNodes(ctx, ownerID, "trash", nil)
	require.NoError(t, err)
	require.Empty(t, trash)

	got, err := testStore.GetNodeByID(ctx, survivor.ID, ownerID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Nil(t, got.ParentID, "child of a purged folder is re-rooted")

	// Kosz innego użytkownika nietknięty
	otherTrash, err := testStore.ListNodes(ctx, otherID, "trash", nil)
	require.NoError(t, err)
	require.Len(t, otherTrash, 1)

	// Pusty kosz to zero usunięć, nie błąd
	paths, deleted, err = testStore.EmptyTrash(ctx, ownerID)
	require.NoError(t, err)
	require.Zero(t, deleted)
	require.Empty(t, paths)
}

// Buduje łańcuch folderów o zadanej długości surowymi INSERT-ami, z
// pominięciem limitu zagnieżdżenia w CreateNode.
func insertRawFolderChain(t *testing.T, ownerID int64, prefix string, length int) (rootID, deepestID string) {
	ctx := context.Background()
	insert := `INSERT INTO nodes (id, owner_id, parent_id, name, mime_type, is_folder) VALUES ($1, $2, $3, $4, 'folder', TRUE)`

	var parent *string
	for i := 0; i < length; i++ {
		id := fmt.Sprintf("%s_%04d", prefix, i)
		_, err := testStore.pool.Exec(ctx, insert, id, ownerID, parent, fmt.Sprintf("Poziom %d", i))
		require.NoError(t, err)
		if i == 0 {
			rootID = id
		}
		p := id
		parent = &p
	}
	return rootID, *parent
}

func TestCollectSubtreeTooDeep(t *testing.T) {
	ownerID := createTestUserForNodes(t, "user_subtree_too_deep")

	// 130 poziomów przekracza limit trawersu
	rootID, _ := insertRawFolderChain(t, ownerID, "toodeep", 130)

	_, err := testStore.CollectSubtree(context.Background(), ownerID, rootID)
	require.ErrorIs(t, err, ErrTreeTooDeep)
}

func TestCreateNodeNestingCap(t *testing.T) {
	ownerID := createTestUserForNodes(t, "user_nesting_cap")
	ctx := context.Background()

	// Łańcuch dokładnie na limicie; kolejny poziom ma się nie zmieścić
	rootID, deepestID := insertRawFolderChain(t, ownerID, "capchain", maxTreeDepth)

	_, err := testStore.CreateNode(ctx, CreateNodeParams{
		ID: "capchain_overflow_001", OwnerID: ownerID, ParentID: &deepestID,
		Name: "Za głęboko", MimeType: models.FolderMimeType, IsFolder: true,
	})
	require.ErrorIs(t, err, ErrTreeTooDeep)

	// Drzewo zbudowane w granicach limitu daje się usunąć w całości
	subtree, err := testStore.CollectSubtree(ctx, ownerID, rootID)
	require.NoError(t, err)
	require.Len(t, subtree, maxTreeDepth-1)

	ids := make([]string, 0, len(subtree)+1)
	for _, n := range subtree {
		ids = append(ids, n.ID)
	}
	ids = append(ids, rootID)
	deleted, err := testStore.DeleteNodes(ctx, ownerID, ids)
	require.NoError(t, err)
	require.Equal(t, int64(maxTreeDepth), deleted)
}
