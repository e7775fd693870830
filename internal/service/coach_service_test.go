package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/domain"
)

func newCoachFixture(t *testing.T) (CoachService, *fakeUserRepo, *fakeSessionRepo, primitive.ObjectID, primitive.ObjectID) {
	t.Helper()
	userRepo := &fakeUserRepo{}
	coachID, _ := userRepo.Create(context.Background(), &domain.User{Email: "coach@example.com", Role: domain.RoleCoach})
	athleteID, _ := userRepo.Create(context.Background(), &domain.User{Email: "athlete@example.com", Role: domain.RoleAthlete})

	sessionRepo := &fakeSessionRepo{}
	workloadSvc := NewWorkloadService(sessionRepo, &fakeSnapshotRepo{}, userRepo)
	return NewCoachService(userRepo, workloadSvc), userRepo, sessionRepo, coachID, athleteID
}

func TestLinkAthleteByEmail(t *testing.T) {
	svc, userRepo, _, coachID, athleteID := newCoachFixture(t)

	linked, err := svc.LinkAthleteByEmail(context.Background(), coachID, "athlete@example.com")
	require.NoError(t, err)
	require.NotNil(t, linked.CoachID)
	assert.Equal(t, coachID, *linked.CoachID)

	coach, err := userRepo.GetByID(context.Background(), coachID)
	require.NoError(t, err)
	assert.Contains(t, coach.AthleteIDs, athleteID, "the link is recorded on both sides")

	// Linking the same athlete again is a no-op.
	again, err := svc.LinkAthleteByEmail(context.Background(), coachID, "athlete@example.com")
	require.NoError(t, err)
	assert.Equal(t, athleteID, again.ID)
}

func TestLinkAthleteFailures(t *testing.T) {
	svc, userRepo, _, coachID, _ := newCoachFixture(t)

	_, err := svc.LinkAthleteByEmail(context.Background(), coachID, "nobody@example.com")
	assert.ErrorIs(t, err, ErrAthleteNotFound)

	// A coach cannot be linked as an athlete.
	_, err = svc.LinkAthleteByEmail(context.Background(), coachID, "coach@example.com")
	assert.ErrorIs(t, err, ErrAthleteNotRole)

	// An athlete already linked to someone else is off limits.
	otherCoach, _ := userRepo.Create(context.Background(), &domain.User{Email: "other@example.com", Role: domain.RoleCoach})
	_, err = svc.LinkAthleteByEmail(context.Background(), otherCoach, "athlete@example.com")
	require.NoError(t, err)
	_, err = svc.LinkAthleteByEmail(context.Background(), coachID, "athlete@example.com")
	assert.ErrorIs(t, err, ErrAthleteAlreadyLinked)
}

func TestGetAthleteWorkloadRequiresLink(t *testing.T) {
	svc, _, sessionRepo, coachID, athleteID := newCoachFixture(t)
	asOf := date(2026, 8, 31)
	sessionRepo.sessions = append(sessionRepo.sessions, sessionOn(athleteID, asOf, 60, rpe(8)))

	// Not linked yet.
	_, err := svc.GetAthleteWorkload(context.Background(), coachID, athleteID, asOf)
	assert.ErrorIs(t, err, ErrAthleteNotLinked)

	_, err = svc.LinkAthleteByEmail(context.Background(), coachID, "athlete@example.com")
	require.NoError(t, err)

	metrics, err := svc.GetAthleteWorkload(context.Background(), coachID, athleteID, asOf)
	require.NoError(t, err)
	assert.InDelta(t, 480.0, metrics.AcuteLoad, 1e-9)

	_, err = svc.GetAthleteWorkload(context.Background(), coachID, primitive.NewObjectID(), asOf)
	assert.ErrorIs(t, err, ErrAthleteNotFound)
}
