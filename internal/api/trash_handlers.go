package api

import (
	"log"
	"net/http"

	"chmura-plikow/internal/database"
)

type EmptyTrashResponse struct {
	DeletedCount int64 `json:"deleted_count" example:"7"`
}

// @Summary      Empty the trash
// @Description  Permanently deletes every trashed node of the authenticated user, wherever it sits in the tree, and queues the object-store bytes of the deleted files for removal. One transaction.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  EmptyTrashResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /files/empty-trash [delete]
func (s *Server) EmptyTrashHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var deletedCount int64
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		paths, count, err := q.EmptyTrash(r.Context(), claims.UserID)
		if err != nil {
			return err
		}
		deletedCount = count
		if len(paths) > 0 {
			if err := q.EnqueueObjectDeletions(r.Context(), claims.UserID, paths); err != nil {
				return err
			}
		}
		if count > 0 {
			return q.LogEvent(r.Context(), claims.UserID, "trash_emptied", EmptyTrashResponse{DeletedCount: count})
		}
		return nil
	})
	if txErr != nil {
		log.Printf("ERROR: empty-trash transaction failed for user %d: %v", claims.UserID, txErr)
		respondError(w, http.StatusInternalServerError, "Failed to empty trash")
		return
	}

	if deletedCount > 0 {
		s.publishEvent(claims.UserID, "trash_emptied", EmptyTrashResponse{DeletedCount: deletedCount})
	}

	respondJSON(w, http.StatusOK, EmptyTrashResponse{DeletedCount: deletedCount})
}
