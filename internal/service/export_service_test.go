package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/domain"
)

// fakeFileStorage keeps uploaded objects in memory.
type fakeFileStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (s *fakeFileStorage) PutObject(_ context.Context, objectKey, contentType string, body []byte) error {
	s.objects[objectKey] = body
	s.types[objectKey] = contentType
	return nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.local/%s?expires=%d", objectKey, int(expires.Seconds())), nil
}

func (s *fakeFileStorage) DeleteObject(_ context.Context, objectKey string) error {
	delete(s.objects, objectKey)
	return nil
}

func TestExportWorkloadReport(t *testing.T) {
	owner := primitive.NewObjectID()
	asOf := date(2026, 8, 31)
	sessionRepo := &fakeSessionRepo{sessions: []domain.TrainingSession{
		sessionOn(owner, asOf, 60, rpe(6)),
	}}
	workloadSvc := NewWorkloadService(sessionRepo, &fakeSnapshotRepo{}, &fakeUserRepo{})
	store := newFakeFileStorage()
	svc := NewExportService(workloadSvc, store)

	export, err := svc.ExportWorkloadReport(context.Background(), owner, asOf)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(export.ObjectKey, "reports/"+owner.Hex()+"/2026-08-31-"))
	assert.Contains(t, export.URL, export.ObjectKey)
	assert.True(t, export.ExpiresAt.After(time.Now()))

	body, ok := store.objects[export.ObjectKey]
	require.True(t, ok, "report must be uploaded under the returned key")
	assert.Equal(t, "application/json", store.types[export.ObjectKey])

	var report struct {
		OwnerID string                 `json:"ownerId"`
		AsOf    string                 `json:"asOf"`
		Metrics domain.WorkloadMetrics `json:"metrics"`
		Weekly  []domain.WeeklyTotal   `json:"weeklyTotals"`
	}
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, owner.Hex(), report.OwnerID)
	assert.Equal(t, "2026-08-31", report.AsOf)
	assert.InDelta(t, 360.0, report.Metrics.AcuteLoad, 1e-9)
	require.Len(t, report.Weekly, 1)
	assert.InDelta(t, 360.0, report.Weekly[0].TotalLoad, 1e-9)
}

func TestExportTwoReportsGetDistinctKeys(t *testing.T) {
	owner := primitive.NewObjectID()
	workloadSvc := NewWorkloadService(&fakeSessionRepo{}, &fakeSnapshotRepo{}, &fakeUserRepo{})
	store := newFakeFileStorage()
	svc := NewExportService(workloadSvc, store)

	first, err := svc.ExportWorkloadReport(context.Background(), owner, date(2026, 8, 31))
	require.NoError(t, err)
	second, err := svc.ExportWorkloadReport(context.Background(), owner, date(2026, 8, 31))
	require.NoError(t, err)

	assert.NotEqual(t, first.ObjectKey, second.ObjectKey)
	assert.Len(t, store.objects, 2)
}
