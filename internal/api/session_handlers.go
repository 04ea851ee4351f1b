package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// @Summary      List active sessions
// @Description  Gets all active sessions of the authenticated user, for device management.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Session
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /sessions [get]
func (s *Server) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	sessions, err := s.store.ListSessionsForUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to list sessions for user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve sessions")
		return
	}

	respondJSON(w, http.StatusOK, sessions)
}

// @Summary      Terminate a specific session
// @Description  Terminates a session by its ID. A user can only terminate their own sessions.
// @Tags         sessions
// @Security     BearerAuth
// @Param        sessionId  path  string  true  "ID of the session to terminate" format(uuid)
// @Success      204  "No Content"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /sessions/{sessionId} [delete]
func (s *Server) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	if err := s.store.DeleteSessionByID(r.Context(), sessionID, claims.UserID); err != nil {
		log.Printf("ERROR: failed to delete session %s: %v", sessionID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary      Terminate all sessions
// @Description  Logs the authenticated user out from every device.
// @Tags         sessions
// @Security     BearerAuth
// @Success      204  "No Content"
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /sessions/terminate_all [post]
func (s *Server) TerminateAllSessionsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	if err := s.store.DeleteAllSessionsForUser(r.Context(), claims.UserID); err != nil {
		log.Printf("ERROR: failed to terminate sessions for user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, "Failed to terminate all sessions")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
