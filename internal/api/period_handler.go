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

// Wire format for calendar dates.
const dateLayout = "2006-01-02"

// Stable error codes for the planning endpoints.
const (
	codeInvalidRange = "INVALID_RANGE"
	codeOverlap      = "OVERLAP"
)

// PeriodHandler holds the period service dependency.
type PeriodHandler struct {
	periodService service.PeriodService
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodService service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodService: periodService}
}

// --- Request/Response Structs ---

type CreatePeriodRequest struct {
	Level     domain.PeriodLevel `json:"level" binding:"required,oneof=macrocycle mesocycle microcycle"`
	ParentID  *string            `json:"parentId,omitempty"`
	Name      string             `json:"name" binding:"required"`
	Tag       string             `json:"tag"`
	Notes     string             `json:"notes"`
	StartDate string             `json:"startDate" binding:"required"`
	EndDate   string             `json:"endDate" binding:"required"`
}

type UpdatePeriodRequest struct {
	Name      *string `json:"name,omitempty"`
	Tag       *string `json:"tag,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
}

type GenerateWeeksRequest struct {
	Tag string `json:"tag"`
}

type AssignTagRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
	Tag string   `json:"tag" binding:"required"`
}

// PeriodResponse is the DTO for returning period details.
type PeriodResponse struct {
	ID        string             `json:"id,omitempty"` // empty for unsaved drafts
	OwnerID   string             `json:"ownerId"`
	ParentID  *string            `json:"parentId,omitempty"`
	Level     domain.PeriodLevel `json:"level"`
	Name      string             `json:"name"`
	Tag       string             `json:"tag,omitempty"`
	Notes     string             `json:"notes,omitempty"`
	StartDate string             `json:"startDate"`
	EndDate   string             `json:"endDate"`
	CreatedAt time.Time          `json:"createdAt,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt,omitempty"`
}

// MapPeriodToResponse converts a domain.Period to PeriodResponse DTO.
func MapPeriodToResponse(p *domain.Period) PeriodResponse {
	if p == nil {
		return PeriodResponse{}
	}
	resp := PeriodResponse{
		OwnerID:   p.OwnerID.Hex(),
		Level:     p.Level,
		Name:      p.Name,
		Tag:       p.Tag,
		Notes:     p.Notes,
		StartDate: p.StartDate.Format(dateLayout),
		EndDate:   p.EndDate.Format(dateLayout),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.ID != primitive.NilObjectID {
		resp.ID = p.ID.Hex()
	}
	if p.ParentID != nil {
		hex := p.ParentID.Hex()
		resp.ParentID = &hex
	}
	return resp
}

// MapPeriodsToResponse converts a slice of domain.Period to DTOs.
func MapPeriodsToResponse(periods []domain.Period) []PeriodResponse {
	responses := make([]PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = MapPeriodToResponse(&periods[i])
	}
	return responses
}

// --- Handler Methods ---

// CreatePeriod creates a macro-, meso- or microcycle for the athlete.
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	start, end, ok := parseRange(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	var parentID *primitive.ObjectID
	if req.ParentID != nil {
		id, err := primitive.ObjectIDFromHex(*req.ParentID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid parentId format.")
			return
		}
		parentID = &id
	}

	period, err := h.periodService.Create(c.Request.Context(), ownerID, req.Level, parentID, req.Name, req.Tag, req.Notes, start, end)
	if err != nil {
		respondPeriodError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapPeriodToResponse(period))
}

// ListPeriods returns the athlete's periods at one level, optionally
// filtered by parent.
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	level := domain.PeriodLevel(c.DefaultQuery("level", string(domain.LevelMacrocycle)))
	if !level.Valid() {
		abortWithError(c, http.StatusBadRequest, "Unknown period level.")
		return
	}

	var parentID *primitive.ObjectID
	if raw := c.Query("parentId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid parentId format.")
			return
		}
		parentID = &id
	}

	periods, err := h.periodService.List(c.Request.Context(), ownerID, level, parentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve periods.")
		return
	}
	if periods == nil {
		c.JSON(http.StatusOK, []PeriodResponse{})
		return
	}
	c.JSON(http.StatusOK, MapPeriodsToResponse(periods))
}

// UpdatePeriod applies a partial update to one period.
func (h *PeriodHandler) UpdatePeriod(c *gin.Context) {
	var req UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	periodID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid period id format.")
		return
	}

	upd := service.PeriodUpdate{
		Name:  req.Name,
		Tag:   req.Tag,
		Notes: req.Notes,
	}
	if req.StartDate != nil {
		t, err := time.Parse(dateLayout, *req.StartDate)
		if err != nil {
			abortWithCode(c, http.StatusBadRequest, codeInvalidRange, "startDate must be YYYY-MM-DD.")
			return
		}
		upd.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			abortWithCode(c, http.StatusBadRequest, codeInvalidRange, "endDate must be YYYY-MM-DD.")
			return
		}
		upd.EndDate = &t
	}

	period, err := h.periodService.Update(c.Request.Context(), ownerID, periodID, upd)
	if err != nil {
		respondPeriodError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPeriodToResponse(period))
}

// DeletePeriod removes a period and cascades to its descendants. Deleting
// an id that no longer exists still returns 204.
func (h *PeriodHandler) DeletePeriod(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	periodID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid period id format.")
		return
	}

	if err := h.periodService.Delete(c.Request.Context(), ownerID, periodID); err != nil {
		respondPeriodError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateWeeks returns draft weekly mesocycles for a macrocycle. Nothing
// is persisted; the client creates the drafts it keeps.
func (h *PeriodHandler) GenerateWeeks(c *gin.Context) {
	var req GenerateWeeksRequest
	_ = c.ShouldBindJSON(&req) // body is optional; tag defaults to empty

	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	macroID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid period id format.")
		return
	}

	drafts, err := h.periodService.GenerateWeeklyMesocycles(c.Request.Context(), ownerID, macroID, req.Tag)
	if err != nil {
		respondPeriodError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPeriodsToResponse(drafts))
}

// AssignTag labels a batch of periods with one classification.
func (h *PeriodHandler) AssignTag(c *gin.Context) {
	var req AssignTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid period id %q.", raw))
			return
		}
		ids = append(ids, id)
	}

	updated, err := h.periodService.AssignTag(c.Request.Context(), ownerID, ids, req.Tag)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to assign tag.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// --- Helpers ---

// parseRange parses both wire dates, answering 400 INVALID_RANGE itself on
// failure.
func parseRange(c *gin.Context, startRaw, endRaw string) (time.Time, time.Time, bool) {
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		abortWithCode(c, http.StatusBadRequest, codeInvalidRange, "startDate must be YYYY-MM-DD.")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		abortWithCode(c, http.StatusBadRequest, codeInvalidRange, "endDate must be YYYY-MM-DD.")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// respondPeriodError maps service errors onto HTTP statuses and codes.
func respondPeriodError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRange):
		abortWithCode(c, http.StatusBadRequest, codeInvalidRange, err.Error())
	case errors.Is(err, service.ErrOverlap):
		abortWithCode(c, http.StatusConflict, codeOverlap, err.Error())
	case errors.Is(err, service.ErrPeriodNotFound), errors.Is(err, service.ErrParentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPeriodAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrParentRequired),
		errors.Is(err, service.ErrParentLevel),
		errors.Is(err, service.ErrNotMacrocycle):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
