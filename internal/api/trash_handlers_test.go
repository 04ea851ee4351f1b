package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func emptyTrash(t *testing.T) EmptyTrashResponse {
	req := httptest.NewRequest("DELETE", "/api/v1/files/empty-trash", nil)
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, testUserClaims))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.EmptyTrashHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp EmptyTrashResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestEmptyTrashHandler(t *testing.T) {
	ctx := context.Background()

	// Zacznij od czystego kosza, inne testy mogły coś zostawić
	emptyTrash(t)

	folder := createTestNodeAPI(t, "Kosz folder", true, nil, testUserClaims.UserID)
	inside := createTestNodeAPI(t, "w_koszu.txt", false, &folder.ID, testUserClaims.UserID)
	rootFile := createTestNodeAPI(t, "luzny_w_koszu.txt", false, nil, testUserClaims.UserID)
	survivor := createTestNodeAPI(t, "ocalaly.txt", false, nil, testUserClaims.UserID)
	foreignTrashed := createTestNodeAPI(t, "cudzy_kosz.txt", false, nil, otherUserClaims.UserID)

	for _, id := range []string{folder.ID, inside.ID, rootFile.ID} {
		_, err := testServer.store.ToggleTrash(ctx, id, testUserClaims.UserID)
		require.NoError(t, err)
	}
	_, err := testServer.store.ToggleTrash(ctx, foreignTrashed.ID, otherUserClaims.UserID)
	require.NoError(t, err)

	before := countQueuedDeletions(t, testUserClaims.UserID)

	resp := emptyTrash(t)
	require.Equal(t, int64(3), resp.DeletedCount)

	// Kolejka dostała ścieżki obu plików, folder nie ma bajtów
	require.Equal(t, before+2, countQueuedDeletions(t, testUserClaims.UserID))

	// Ocalały plik dalej istnieje, cudzy kosz nietknięty
	got, err := testServer.store.GetNodeByID(ctx, survivor.ID, testUserClaims.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)

	foreignGot, err := testServer.store.GetNodeByID(ctx, foreignTrashed.ID, otherUserClaims.UserID)
	require.NoError(t, err)
	require.NotNil(t, foreignGot)
	require.True(t, foreignGot.IsTrashed)

	// Drugi przebieg na pustym koszu: zero, bez błędu
	resp = emptyTrash(t)
	require.Zero(t, resp.DeletedCount)
}
