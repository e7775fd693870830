package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/service"
)

// CoachHandler holds the coach service dependency.
type CoachHandler struct {
	coachService service.CoachService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// --- Request Structs ---

type LinkAthleteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// --- Handler Methods ---

// LinkAthlete attaches an athlete's diary to the authenticated coach.
func (h *CoachHandler) LinkAthlete(c *gin.Context) {
	var req LinkAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return
	}

	athlete, err := h.coachService.LinkAthleteByEmail(c.Request.Context(), coachID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAthleteNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAthleteNotRole), errors.Is(err, service.ErrAthleteAlreadyLinked):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to link athlete.")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(athlete))
}

// GetLinkedAthletes lists the athletes sharing their diary with the coach.
func (h *CoachHandler) GetLinkedAthletes(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return
	}

	athletes, err := h.coachService.GetLinkedAthletes(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve athletes.")
		return
	}

	responses := make([]UserResponse, len(athletes))
	for i := range athletes {
		responses[i] = MapUserToResponse(&athletes[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetAthleteWorkload returns a linked athlete's risk snapshot.
func (h *CoachHandler) GetAthleteWorkload(c *gin.Context) {
	coachID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return
	}
	athleteID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete id format.")
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	metrics, err := h.coachService.GetAthleteWorkload(c.Request.Context(), coachID, athleteID, asOf)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAthleteNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAthleteNotLinked):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to compute athlete workload.")
		}
		return
	}
	c.JSON(http.StatusOK, metrics)
}
