package api

import (
	"errors"
	"log"
	"net/http"

	"chmura-plikow/internal/database"

	"github.com/go-chi/chi/v5"
)

// @Summary      Permanently delete a file
// @Description  Removes a single file row and queues its object-store bytes for removal. Folders are rejected; use the folder endpoint.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        fileId  path      string  true  "File ID"
// @Success      200     {object}  models.Node
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /files/{fileId}/delete [delete]
func (s *Server) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	nodeID := chi.URLParam(r, "fileId")

	node, err := s.store.GetNodeByID(r.Context(), nodeID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to fetch node %s: %v", nodeID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}
	if node == nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}
	if node.IsFolder {
		respondError(w, http.StatusBadRequest, "Node is a folder, use the folder delete endpoint")
		return
	}

	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		if node.Path != "" {
			if err := q.EnqueueObjectDeletions(r.Context(), claims.UserID, []string{node.Path}); err != nil {
				return err
			}
		}
		deleted, err := q.DeleteNode(r.Context(), node.ID, claims.UserID)
		if err != nil {
			return err
		}
		if !deleted {
			return database.ErrNodeNotFound
		}
		return q.LogEvent(r.Context(), claims.UserID, "node_deleted", node)
	})
	if txErr != nil {
		if errors.Is(txErr, database.ErrNodeNotFound) {
			respondError(w, http.StatusNotFound, "File not found")
			return
		}
		log.Printf("ERROR: delete transaction failed for node %s: %v", node.ID, txErr)
		respondError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	s.publishEvent(claims.UserID, "node_deleted", node)

	respondJSON(w, http.StatusOK, node)
}

// @Summary      Permanently delete a folder
// @Description  Removes a folder and everything beneath it. The subtree is walked with an explicit work list; object-store bytes of contained files are queued for removal. All row deletions happen in one transaction.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        folderId  path      string  true  "Folder ID"
// @Success      200       {object}  models.Node
// @Failure      400       {object}  ErrorResponse
// @Failure      401       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      500       {object}  ErrorResponse
// @Router       /folders/{folderId}/delete [delete]
func (s *Server) DeleteFolderHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	folderID := chi.URLParam(r, "folderId")

	folder, err := s.store.GetNodeByID(r.Context(), folderID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to fetch node %s: %v", folderID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete folder")
		return
	}
	if folder == nil {
		respondError(w, http.StatusNotFound, "Folder not found")
		return
	}
	if !folder.IsFolder {
		respondError(w, http.StatusBadRequest, "Node is a file, use the file delete endpoint")
		return
	}

	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		descendants, err := q.CollectSubtree(r.Context(), claims.UserID, folder.ID)
		if err != nil {
			return err
		}

		var paths []string
		ids := make([]string, 0, len(descendants)+1)
		for _, d := range descendants {
			ids = append(ids, d.ID)
			if !d.IsFolder && d.Path != "" {
				paths = append(paths, d.Path)
			}
		}
		ids = append(ids, folder.ID)

		if len(paths) > 0 {
			if err := q.EnqueueObjectDeletions(r.Context(), claims.UserID, paths); err != nil {
				return err
			}
		}

		if _, err := q.DeleteNodes(r.Context(), claims.UserID, ids); err != nil {
			return err
		}
		return q.LogEvent(r.Context(), claims.UserID, "folder_deleted", folder)
	})
	if txErr != nil {
		if errors.Is(txErr, database.ErrTreeCycle) || errors.Is(txErr, database.ErrTreeTooDeep) {
			log.Printf("ERROR: corrupted tree under folder %s: %v", folder.ID, txErr)
			respondError(w, http.StatusInternalServerError, "Folder tree is corrupted")
			return
		}
		log.Printf("ERROR: folder delete transaction failed for %s: %v", folder.ID, txErr)
		respondError(w, http.StatusInternalServerError, "Failed to delete folder")
		return
	}

	s.publishEvent(claims.UserID, "folder_deleted", folder)

	respondJSON(w, http.StatusOK, folder)
}
