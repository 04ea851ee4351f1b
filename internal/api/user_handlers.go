package api

import (
	"log"
	"math"
	"net/http"
)

type StorageUsageResponse struct {
	Used       int64 `json:"used" example:"1048576"`
	Total      int64 `json:"total" example:"1073741824"`
	Percentage int   `json:"percentage" example:"1"`
}

// @Summary      Get current user
// @Description  Returns the profile of the authenticated user.
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to fetch user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// @Summary      Get storage usage
// @Description  Recomputes the sum of non-trashed file sizes for the user and reports it against the configured quota. Trashed files and folders do not count.
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StorageUsageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /user/storage [get]
func (s *Server) StorageUsageHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	used, err := s.store.StorageUsed(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: failed to compute storage usage for user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, "Failed to compute storage usage")
		return
	}

	total := s.config.Storage.QuotaBytes
	respondJSON(w, http.StatusOK, StorageUsageResponse{
		Used:       used,
		Total:      total,
		Percentage: usagePercentage(used, total),
	})
}

// usagePercentage clamps at 100 so a user over quota still gets a sane
// number instead of 300%.
func usagePercentage(used, total int64) int {
	if total <= 0 {
		return 0
	}
	percentage := int(math.Round(float64(used) / float64(total) * 100))
	if percentage > 100 {
		percentage = 100
	}
	return percentage
}
