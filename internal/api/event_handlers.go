package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

type wsEvent struct {
	EventType string `json:"event_type"`
	Payload   any    `json:"payload"`
}

// publishEvent pushes a change notification to the user's websocket
// subscribers. Best effort: the durable copy is the journal row written
// inside the mutation transaction.
func (s *Server) publishEvent(userID int64, eventType string, payload any) {
	if s.wsHub == nil {
		return
	}
	data, err := json.Marshal(wsEvent{EventType: eventType, Payload: payload})
	if err != nil {
		log.Printf("WARN: failed to marshal %s event for user %d: %v", eventType, userID, err)
		return
	}
	s.wsHub.PublishEvent(userID, data)
}

// @Summary      Get new events
// @Description  Retrieves journal events that occurred since a given event ID. Used by polling clients for cache synchronization.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        since  query     int  false  "The ID of the last event received. Omit or use 0 to get all events."
// @Success      200    {array}   database.Event
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /events [get]
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	sinceStr := r.URL.Query().Get("since")
	if sinceStr == "" {
		sinceStr = "0"
	}

	sinceID, err := strconv.ParseInt(sinceStr, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'since' parameter, must be a number")
		return
	}

	events, err := s.store.GetEventsSince(r.Context(), claims.UserID, sinceID)
	if err != nil {
		log.Printf("ERROR: failed to retrieve events for user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	respondJSON(w, http.StatusOK, events)
}
