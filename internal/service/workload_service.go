package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/dateweek"
	"atleta/training-diary/internal/domain"
	"atleta/training-diary/internal/repository"
	"atleta/training-diary/internal/workload"
)

// --- Service Interface ---
type WorkloadService interface {
	// GetMetrics fetches the athlete's trailing 28 days of sessions and
	// computes the ACWR risk snapshot as of the given date. Absent data is
	// not an error: the dashboard always gets a renderable value.
	GetMetrics(ctx context.Context, ownerID primitive.ObjectID, asOf time.Time) (*domain.WorkloadMetrics, error)
	// GetWeeklyTotals returns Sunday-anchored per-week load totals over
	// the trailing window, for the charts screen.
	GetWeeklyTotals(ctx context.Context, ownerID primitive.ObjectID, asOf time.Time) ([]domain.WeeklyTotal, error)
	// SnapshotAll recomputes and stores today's metrics for every
	// athlete. Run by the nightly scheduler.
	SnapshotAll(ctx context.Context) error
}

// --- Service Implementation ---

// workloadService implements the WorkloadService interface.
type workloadService struct {
	sessionRepo  repository.SessionRepository
	snapshotRepo repository.SnapshotRepository
	userRepo     repository.UserRepository
}

// NewWorkloadService creates a new instance of workloadService.
func NewWorkloadService(
	sessionRepo repository.SessionRepository,
	snapshotRepo repository.SnapshotRepository,
	userRepo repository.UserRepository,
) WorkloadService {
	return &workloadService{
		sessionRepo:  sessionRepo,
		snapshotRepo: snapshotRepo,
		userRepo:     userRepo,
	}
}

// GetMetrics implements the monitoring pipeline: sessions -> daily samples
// -> risk snapshot.
func (s *workloadService) GetMetrics(ctx context.Context, ownerID primitive.ObjectID, asOf time.Time) (*domain.WorkloadMetrics, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}
	samples, err := s.dailySamples(ctx, ownerID, asOf)
	if err != nil {
		return nil, err
	}
	metrics := workload.ComputeMetrics(samples, asOf)
	return &metrics, nil
}

// GetWeeklyTotals groups the trailing window's samples into Sunday-anchored
// weeks.
func (s *workloadService) GetWeeklyTotals(ctx context.Context, ownerID primitive.ObjectID, asOf time.Time) ([]domain.WeeklyTotal, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}
	samples, err := s.dailySamples(ctx, ownerID, asOf)
	if err != nil {
		return nil, err
	}
	return workload.WeeklyTotals(samples), nil
}

// SnapshotAll walks every athlete and upserts today's snapshot. A failure
// for one athlete is logged and does not stop the others.
func (s *workloadService) SnapshotAll(ctx context.Context) error {
	athletes, err := s.userRepo.ListByRole(ctx, domain.RoleAthlete)
	if err != nil {
		return fmt.Errorf("listing athletes for snapshot: %w", err)
	}

	today := dateweek.Day(time.Now().UTC())
	var failed int
	for _, athlete := range athletes {
		samples, err := s.dailySamples(ctx, athlete.ID, today)
		if err != nil {
			log.Printf("ERROR: workload snapshot for %s: %v", athlete.ID.Hex(), err)
			failed++
			continue
		}
		snapshot := &domain.WorkloadSnapshot{
			OwnerID: athlete.ID,
			Date:    today,
			Metrics: workload.ComputeMetrics(samples, today),
		}
		if err := s.snapshotRepo.Upsert(ctx, snapshot); err != nil {
			log.Printf("ERROR: storing workload snapshot for %s: %v", athlete.ID.Hex(), err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("workload snapshot failed for %d of %d athletes", failed, len(athletes))
	}
	return nil
}

// dailySamples fetches the chronic window of sessions ending at asOf and
// collapses them into per-day load samples.
func (s *workloadService) dailySamples(ctx context.Context, ownerID primitive.ObjectID, asOf time.Time) ([]domain.WorkloadSample, error) {
	end := dateweek.Day(asOf)
	from := end.AddDate(0, 0, -(workload.ChronicWindowDays - 1))
	sessions, err := s.sessionRepo.ListByOwner(ctx, ownerID, from, end)
	if err != nil {
		return nil, err
	}
	return workload.ToDailySamples(sessions), nil
}
