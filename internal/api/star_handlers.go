package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// @Summary      Toggle star on a node
// @Description  Flips the starred flag on a single file or folder. No cascade; starring a folder does not star its children.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        fileId  path      string  true  "Node ID"
// @Success      200     {object}  models.Node
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /files/{fileId}/star [patch]
func (s *Server) ToggleStarHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	nodeID := chi.URLParam(r, "fileId")

	node, err := s.store.ToggleStar(r.Context(), nodeID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to toggle star on node %s: %v", nodeID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update file")
		return
	}
	if node == nil {
		// Cudzy węzeł wygląda tak samo jak nieistniejący.
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	eventType := "node_unstarred"
	if node.IsStarred {
		eventType = "node_starred"
	}
	if err := s.store.LogEvent(r.Context(), claims.UserID, eventType, node); err != nil {
		log.Printf("WARN: failed to journal %s for node %s: %v", eventType, node.ID, err)
	}
	s.publishEvent(claims.UserID, eventType, node)

	respondJSON(w, http.StatusOK, node)
}

// @Summary      Toggle trash on a node
// @Description  Flips the trashed flag on a single file or folder. Children of a trashed folder keep their own flags.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        fileId  path      string  true  "Node ID"
// @Success      200     {object}  models.Node
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /files/{fileId}/trash [patch]
func (s *Server) ToggleTrashHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	nodeID := chi.URLParam(r, "fileId")

	node, err := s.store.ToggleTrash(r.Context(), nodeID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to toggle trash on node %s: %v", nodeID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update file")
		return
	}
	if node == nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	eventType := "node_restored"
	if node.IsTrashed {
		eventType = "node_trashed"
	}
	if err := s.store.LogEvent(r.Context(), claims.UserID, eventType, node); err != nil {
		log.Printf("WARN: failed to journal %s for node %s: %v", eventType, node.ID, err)
	}
	s.publishEvent(claims.UserID, eventType, node)

	respondJSON(w, http.StatusOK, node)
}
