package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/domain"
	"atleta/training-diary/internal/service"
)

// SessionHandler holds the session service dependency.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- Request/Response Structs ---

type LogSessionRequest struct {
	Date              string `json:"date" binding:"required"`
	Sport             string `json:"sport"`
	DurationMinutes   int    `json:"durationMinutes" binding:"min=0"`
	PerceivedExertion *int   `json:"perceivedExertion,omitempty" binding:"omitempty,min=1,max=10"`
	Notes             string `json:"notes"`
}

type SessionResponse struct {
	ID                string    `json:"id"`
	Date              string    `json:"date"`
	Sport             string    `json:"sport,omitempty"`
	DurationMinutes   int       `json:"durationMinutes"`
	PerceivedExertion *int      `json:"perceivedExertion,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// MapSessionToResponse converts a domain.TrainingSession to its DTO.
func MapSessionToResponse(s *domain.TrainingSession) SessionResponse {
	if s == nil {
		return SessionResponse{}
	}
	return SessionResponse{
		ID:                s.ID.Hex(),
		Date:              s.Date.Format(dateLayout),
		Sport:             s.Sport,
		DurationMinutes:   s.DurationMinutes,
		PerceivedExertion: s.PerceivedExertion,
		Notes:             s.Notes,
		CreatedAt:         s.CreatedAt,
	}
}

// MapSessionsToResponse converts a slice of sessions to DTOs.
func MapSessionsToResponse(sessions []domain.TrainingSession) []SessionResponse {
	responses := make([]SessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = MapSessionToResponse(&sessions[i])
	}
	return responses
}

// --- Handler Methods ---

// LogSession records one diary entry for the athlete.
func (h *SessionHandler) LogSession(c *gin.Context) {
	var req LogSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD.")
		return
	}

	session, err := h.sessionService.LogSession(c.Request.Context(), ownerID, date, req.Sport, req.DurationMinutes, req.PerceivedExertion, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDuration) || errors.Is(err, service.ErrInvalidRPE) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to log session.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapSessionToResponse(session))
}

// ListSessions returns the athlete's sessions in [from, to]; the window
// defaults to the trailing 28 days.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -27)
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse(dateLayout, raw); err != nil {
			abortWithError(c, http.StatusBadRequest, "to must be YYYY-MM-DD.")
			return
		}
		from = to.AddDate(0, 0, -27)
	}
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse(dateLayout, raw); err != nil {
			abortWithError(c, http.StatusBadRequest, "from must be YYYY-MM-DD.")
			return
		}
	}

	sessions, err := h.sessionService.ListSessions(c.Request.Context(), ownerID, from, to)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve sessions.")
		return
	}
	if sessions == nil {
		c.JSON(http.StatusOK, []SessionResponse{})
		return
	}
	c.JSON(http.StatusOK, MapSessionsToResponse(sessions))
}

// DeleteSession removes one of the athlete's diary entries.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session id format.")
		return
	}

	if err := h.sessionService.DeleteSession(c.Request.Context(), ownerID, sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete session.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
