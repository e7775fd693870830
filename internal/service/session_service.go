package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/dateweek"
	"atleta/training-diary/internal/domain"
	"atleta/training-diary/internal/repository"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound   = errors.New("training session not found")
	ErrInvalidDuration   = errors.New("session duration must be zero or more minutes")
	ErrInvalidRPE        = errors.New("perceived exertion must be between 1 and 10")
	ErrSessionDateNeeded = errors.New("session date is required")
)

// --- Service Interface ---
type SessionService interface {
	LogSession(ctx context.Context, ownerID primitive.ObjectID, date time.Time, sport string, durationMinutes int, perceivedExertion *int, notes string) (*domain.TrainingSession, error)
	ListSessions(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.TrainingSession, error)
	DeleteSession(ctx context.Context, ownerID, sessionID primitive.ObjectID) error
}

// --- Service Implementation ---

// sessionService implements the SessionService interface.
type sessionService struct {
	sessionRepo repository.SessionRepository
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(sessionRepo repository.SessionRepository) SessionService {
	return &sessionService{sessionRepo: sessionRepo}
}

// LogSession validates and stores one diary entry. The RPE rating is
// optional: a nil rating is stored as nil so the workload engine can tell
// imputed effort from measured effort.
func (s *sessionService) LogSession(ctx context.Context, ownerID primitive.ObjectID, date time.Time, sport string, durationMinutes int, perceivedExertion *int, notes string) (*domain.TrainingSession, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}
	if date.IsZero() {
		return nil, ErrSessionDateNeeded
	}
	if durationMinutes < 0 {
		return nil, ErrInvalidDuration
	}
	if perceivedExertion != nil && (*perceivedExertion < 1 || *perceivedExertion > 10) {
		return nil, ErrInvalidRPE
	}

	session := &domain.TrainingSession{
		OwnerID:           ownerID,
		Date:              dateweek.Day(date),
		Sport:             sport,
		DurationMinutes:   durationMinutes,
		PerceivedExertion: perceivedExertion,
		Notes:             notes,
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id
	return session, nil
}

// ListSessions returns the owner's sessions in [from, to], ascending.
func (s *sessionService) ListSessions(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.TrainingSession, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}
	return s.sessionRepo.ListByOwner(ctx, ownerID, dateweek.Day(from), dateweek.Day(to))
}

// DeleteSession removes one of the owner's diary entries.
func (s *sessionService) DeleteSession(ctx context.Context, ownerID, sessionID primitive.ObjectID) error {
	if ownerID == primitive.NilObjectID || sessionID == primitive.NilObjectID {
		return errors.New("owner ID and session ID are required")
	}
	err := s.sessionRepo.Delete(ctx, sessionID, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}
