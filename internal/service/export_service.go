package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/domain"
	"atleta/training-diary/internal/storage"
)

// Presigned report links stay valid long enough to forward to a coach.
const reportURLExpiry = 24 * time.Hour

// ReportExport is the result of a workload report upload.
type ReportExport struct {
	ObjectKey string    `json:"objectKey"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// workloadReport is the JSON document written to object storage.
type workloadReport struct {
	OwnerID     string                 `json:"ownerId"`
	AsOf        string                 `json:"asOf"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Metrics     domain.WorkloadMetrics `json:"metrics"`
	Weekly      []domain.WeeklyTotal   `json:"weeklyTotals"`
}

// --- Service Interface ---
type ExportService interface {
	// ExportWorkloadReport computes the athlete's current metrics, writes
	// them as a JSON report to object storage, and returns a temporary
	// download URL for sharing.
	ExportWorkloadReport(ctx context.Context, ownerID primitive.ObjectID, asOf time.Time) (*ReportExport, error)
}

// --- Service Implementation ---

// exportService implements the ExportService interface.
type exportService struct {
	workloadService WorkloadService
	fileStorage     storage.FileStorage
}

// NewExportService creates a new instance of exportService.
func NewExportService(workloadService WorkloadService, fileStorage storage.FileStorage) ExportService {
	return &exportService{
		workloadService: workloadService,
		fileStorage:     fileStorage,
	}
}

// ExportWorkloadReport builds and uploads the report document.
func (s *exportService) ExportWorkloadReport(ctx context.Context, ownerID primitive.ObjectID, asOf time.Time) (*ReportExport, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}

	metrics, err := s.workloadService.GetMetrics(ctx, ownerID, asOf)
	if err != nil {
		return nil, err
	}
	weekly, err := s.workloadService.GetWeeklyTotals(ctx, ownerID, asOf)
	if err != nil {
		return nil, err
	}

	report := workloadReport{
		OwnerID:     ownerID.Hex(),
		AsOf:        asOf.Format("2006-01-02"),
		GeneratedAt: time.Now().UTC(),
		Metrics:     *metrics,
		Weekly:      weekly,
	}
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}

	// Random key component keeps report URLs unguessable.
	objectKey := fmt.Sprintf("reports/%s/%s-%s.json", ownerID.Hex(), report.AsOf, uuid.NewString())
	if err := s.fileStorage.PutObject(ctx, objectKey, "application/json", body); err != nil {
		return nil, err
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, reportURLExpiry)
	if err != nil {
		return nil, err
	}

	return &ReportExport{
		ObjectKey: objectKey,
		URL:       url,
		ExpiresAt: time.Now().UTC().Add(reportURLExpiry),
	}, nil
}
