package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"atleta/training-diary/internal/service"
)

// WorkloadHandler holds the workload and export service dependencies.
type WorkloadHandler struct {
	workloadService service.WorkloadService
	exportService   service.ExportService
}

// NewWorkloadHandler creates a new WorkloadHandler.
func NewWorkloadHandler(workloadService service.WorkloadService, exportService service.ExportService) *WorkloadHandler {
	return &WorkloadHandler{
		workloadService: workloadService,
		exportService:   exportService,
	}
}

// --- Handler Methods ---

// GetMetrics returns the athlete's current ACWR risk snapshot. Empty diary
// data is not an error; the response is a zeroed snapshot.
func (h *WorkloadHandler) GetMetrics(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	metrics, err := h.workloadService.GetMetrics(c.Request.Context(), ownerID, asOf)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute workload metrics.")
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetWeeklyTotals returns Sunday-anchored per-week totals for the charts
// screen.
func (h *WorkloadHandler) GetWeeklyTotals(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	totals, err := h.workloadService.GetWeeklyTotals(c.Request.Context(), ownerID, asOf)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute weekly totals.")
		return
	}
	c.JSON(http.StatusOK, totals)
}

// ExportReport uploads a JSON workload report and returns a temporary
// download URL.
func (h *WorkloadHandler) ExportReport(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	asOf, ok := parseAsOf(c)
	if !ok {
		return
	}

	export, err := h.exportService.ExportWorkloadReport(c.Request.Context(), ownerID, asOf)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to export workload report.")
		return
	}
	c.JSON(http.StatusOK, export)
}

// parseAsOf reads the optional asOf query parameter, defaulting to today.
func parseAsOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("asOf")
	if raw == "" {
		return time.Now().UTC(), true
	}
	asOf, err := time.Parse(dateLayout, raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "asOf must be YYYY-MM-DD.")
		return time.Time{}, false
	}
	return asOf, true
}
