package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"chmura-plikow/internal/models"

	"github.com/stretchr/testify/require"
)

func TestToggleStarHandler(t *testing.T) {
	node := createTestNodeAPI(t, "do_gwiazdki.txt", false, nil, testUserClaims.UserID)
	pattern := "/api/v1/files/{fileId}/star"
	target := "/api/v1/files/" + node.ID + "/star"

	// Pierwsze przełączenie zapala gwiazdkę
	rr := doAuthedRequest(testUserClaims, "PATCH", pattern, target, nil, testServer.ToggleStarHandler)
	require.Equal(t, http.StatusOK, rr.Code)

	var toggled models.Node
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &toggled))
	require.True(t, toggled.IsStarred)

	// Drugie przełączenie gasi ją z powrotem
	rr = doAuthedRequest(testUserClaims, "PATCH", pattern, target, nil, testServer.ToggleStarHandler)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &toggled))
	require.False(t, toggled.IsStarred)
	require.Equal(t, node.IsStarred, toggled.IsStarred)
}

func TestToggleStarHandler_NotFound(t *testing.T) {
	pattern := "/api/v1/files/{fileId}/star"

	rr := doAuthedRequest(testUserClaims, "PATCH", pattern, "/api/v1/files/no_such_node_0000000/star", nil, testServer.ToggleStarHandler)
	require.Equal(t, http.StatusNotFound, rr.Code)

	// Cudzy węzeł daje identyczną odpowiedź jak nieistniejący
	foreign := createTestNodeAPI(t, "cudza_gwiazdka.txt", false, nil, otherUserClaims.UserID)
	rr = doAuthedRequest(testUserClaims, "PATCH", pattern, "/api/v1/files/"+foreign.ID+"/star", nil, testServer.ToggleStarHandler)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestToggleTrashHandler(t *testing.T) {
	folder := createTestNodeAPI(t, "Kosz testowy", true, nil, testUserClaims.UserID)
	child := createTestNodeAPI(t, "dziecko.txt", false, &folder.ID, testUserClaims.UserID)

	pattern := "/api/v1/files/{fileId}/trash"
	target := "/api/v1/files/" + folder.ID + "/trash"

	rr := doAuthedRequest(testUserClaims, "PATCH", pattern, target, nil, testServer.ToggleTrashHandler)
	require.Equal(t, http.StatusOK, rr.Code)

	var trashed models.Node
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &trashed))
	require.True(t, trashed.IsTrashed)

	// Dziecko nie idzie do kosza razem z folderem
	got, err := testServer.store.GetNodeByID(context.Background(), child.ID, testUserClaims.UserID)
	require.NoError(t, err)
	require.False(t, got.IsTrashed)

	// Przywrócenie
	rr = doAuthedRequest(testUserClaims, "PATCH", pattern, target, nil, testServer.ToggleTrashHandler)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &trashed))
	require.False(t, trashed.IsTrashed)
}
