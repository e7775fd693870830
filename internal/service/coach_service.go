package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/domain"
	"atleta/training-diary/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAthleteNotFound      = errors.New("athlete user not found")
	ErrAthleteNotRole       = errors.New("user found but is not an athlete")
	ErrAthleteAlreadyLinked = errors.New("athlete is already linked to a coach")
	ErrAthleteNotLinked     = errors.New("athlete is not linked to this coach")
)

// --- Service Interface ---
type CoachService interface {
	// LinkAthleteByEmail attaches an athlete's diary to the coach.
	LinkAthleteByEmail(ctx context.Context, coachID primitive.ObjectID, athleteEmail string) (*domain.User, error)
	GetLinkedAthletes(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	// GetAthleteWorkload computes the risk snapshot of a linked athlete.
	GetAthleteWorkload(ctx context.Context, coachID, athleteID primitive.ObjectID, asOf time.Time) (*domain.WorkloadMetrics, error)
}

// --- Service Implementation ---

// coachService implements the CoachService interface.
type coachService struct {
	userRepo        repository.UserRepository
	workloadService WorkloadService
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(userRepo repository.UserRepository, workloadService WorkloadService) CoachService {
	return &coachService{
		userRepo:        userRepo,
		workloadService: workloadService,
	}
}

// LinkAthleteByEmail finds an athlete by email and links them to the coach.
func (s *coachService) LinkAthleteByEmail(ctx context.Context, coachID primitive.ObjectID, athleteEmail string) (*domain.User, error) {
	if coachID == primitive.NilObjectID || athleteEmail == "" {
		return nil, errors.New("coach ID and athlete email are required")
	}

	athlete, err := s.userRepo.GetByEmail(ctx, athleteEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if athlete.Role != domain.RoleAthlete {
		return nil, ErrAthleteNotRole
	}

	if athlete.CoachID != nil && *athlete.CoachID != primitive.NilObjectID {
		if *athlete.CoachID == coachID {
			// Already linked to this coach; nothing to do.
			return athlete, nil
		}
		return nil, ErrAthleteAlreadyLinked
	}

	// Update both sides of the link. Not transactional; the coach-side
	// list is authoritative for reads, the athlete side for permissions.
	if err := s.userRepo.AddAthleteIDToCoach(ctx, coachID, athlete.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetCoachForAthlete(ctx, athlete.ID, coachID); err != nil {
		return nil, err
	}

	athlete.CoachID = &coachID
	return athlete, nil
}

// GetLinkedAthletes retrieves the athletes who share their diary with the
// coach.
func (s *coachService) GetLinkedAthletes(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	athletes, err := s.userRepo.GetAthletesByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	// Clear password hashes before returning
	for i := range athletes {
		athletes[i].PasswordHash = ""
	}
	return athletes, nil
}

// GetAthleteWorkload checks the link and delegates to the workload service.
func (s *coachService) GetAthleteWorkload(ctx context.Context, coachID, athleteID primitive.ObjectID, asOf time.Time) (*domain.WorkloadMetrics, error) {
	if coachID == primitive.NilObjectID || athleteID == primitive.NilObjectID {
		return nil, errors.New("coach ID and athlete ID are required")
	}

	athlete, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if athlete.CoachID == nil || *athlete.CoachID != coachID {
		return nil, ErrAthleteNotLinked
	}

	return s.workloadService.GetMetrics(ctx, athleteID, asOf)
}
