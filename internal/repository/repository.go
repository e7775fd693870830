package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	AddAthleteIDToCoach(ctx context.Context, coachID, athleteID primitive.ObjectID) error
	SetCoachForAthlete(ctx context.Context, athleteID, coachID primitive.ObjectID) error
	GetAthletesByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
}

// PeriodRepository defines the interface for interacting with planning
// periods. parentID is nil for top-level macrocycles.
type PeriodRepository interface {
	Create(ctx context.Context, period *domain.Period) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Period, error)
	// ListSiblings returns all periods sharing owner, level and parent —
	// the candidate set for the overlap check.
	ListSiblings(ctx context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel, parentID *primitive.ObjectID) ([]domain.Period, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel) ([]domain.Period, error)
	ListByParentID(ctx context.Context, parentID primitive.ObjectID) ([]domain.Period, error)
	Update(ctx context.Context, period *domain.Period) error
	UpdateTag(ctx context.Context, ids []primitive.ObjectID, ownerID primitive.ObjectID, tag string) (int64, error)
	// Delete removes one period. Missing ids are not an error so the
	// service's cascade stays idempotent.
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
}

// SessionRepository defines the interface for interacting with the diary's
// training sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.TrainingSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingSession, error)
	// ListByOwner returns sessions with date in [from, to], ascending.
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.TrainingSession, error)
	Delete(ctx context.Context, id primitive.ObjectID, ownerID primitive.ObjectID) error
}

// SnapshotRepository stores the nightly workload snapshots the scheduler
// produces (one document per athlete per day).
type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *domain.WorkloadSnapshot) error
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.WorkloadSnapshot, error)
}
