package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/domain"
	"atleta/training-diary/internal/repository"
)

// fakePeriodRepo is an in-memory PeriodRepository for service tests.
type fakePeriodRepo struct {
	periods map[primitive.ObjectID]*domain.Period
}

func newFakePeriodRepo() *fakePeriodRepo {
	return &fakePeriodRepo{periods: make(map[primitive.ObjectID]*domain.Period)}
}

func (r *fakePeriodRepo) Create(_ context.Context, period *domain.Period) (primitive.ObjectID, error) {
	period.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	period.CreatedAt = now
	period.UpdatedAt = now
	stored := *period
	r.periods[period.ID] = &stored
	return period.ID, nil
}

func (r *fakePeriodRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Period, error) {
	p, ok := r.periods[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *p
	return &found, nil
}

func (r *fakePeriodRepo) ListSiblings(_ context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel, parentID *primitive.ObjectID) ([]domain.Period, error) {
	var out []domain.Period
	for _, p := range r.periods {
		if p.OwnerID != ownerID || p.Level != level {
			continue
		}
		if parentID == nil && p.ParentID != nil {
			continue
		}
		if parentID != nil && (p.ParentID == nil || *p.ParentID != *parentID) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePeriodRepo) ListByOwner(_ context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel) ([]domain.Period, error) {
	var out []domain.Period
	for _, p := range r.periods {
		if p.OwnerID == ownerID && p.Level == level {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePeriodRepo) ListByParentID(_ context.Context, parentID primitive.ObjectID) ([]domain.Period, error) {
	var out []domain.Period
	for _, p := range r.periods {
		if p.ParentID != nil && *p.ParentID == parentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePeriodRepo) Update(_ context.Context, period *domain.Period) error {
	if _, ok := r.periods[period.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *period
	stored.UpdatedAt = time.Now().UTC()
	r.periods[period.ID] = &stored
	return nil
}

func (r *fakePeriodRepo) UpdateTag(_ context.Context, ids []primitive.ObjectID, ownerID primitive.ObjectID, tag string) (int64, error) {
	var n int64
	for _, id := range ids {
		if p, ok := r.periods[id]; ok && p.OwnerID == ownerID {
			p.Tag = tag
			n++
		}
	}
	return n, nil
}

func (r *fakePeriodRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(r.periods, id)
	return nil
}

func (r *fakePeriodRepo) DeleteMany(_ context.Context, ids []primitive.ObjectID) error {
	for _, id := range ids {
		delete(r.periods, id)
	}
	return nil
}

// --- helpers ---

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newPeriodFixture(t *testing.T) (PeriodService, *fakePeriodRepo, primitive.ObjectID) {
	t.Helper()
	repo := newFakePeriodRepo()
	return NewPeriodService(repo), repo, primitive.NewObjectID()
}

func mustCreate(t *testing.T, svc PeriodService, owner primitive.ObjectID, level domain.PeriodLevel, parentID *primitive.ObjectID, name string, start, end time.Time) *domain.Period {
	t.Helper()
	p, err := svc.Create(context.Background(), owner, level, parentID, name, "", "", start, end)
	require.NoError(t, err)
	return p
}

// --- Create ---

func TestCreateMacrocycle(t *testing.T) {
	svc, repo, owner := newPeriodFixture(t)

	p, err := svc.Create(context.Background(), owner, domain.LevelMacrocycle, nil,
		"Stagione 2026", "preparatorio", "", date(2026, 1, 5), date(2026, 6, 28))
	require.NoError(t, err)
	assert.NotEqual(t, primitive.NilObjectID, p.ID)
	assert.Equal(t, "preparatorio", p.Tag)
	assert.Nil(t, p.ParentID)
	assert.Len(t, repo.periods, 1)
}

func TestCreateNormalizesDatesToMidnight(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)

	start := time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	p := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Base", start, end)

	assert.Equal(t, date(2026, 1, 5), p.StartDate)
	assert.Equal(t, date(2026, 2, 1), p.EndDate)
}

func TestCreateRejectsInvalidRange(t *testing.T) {
	svc, repo, owner := newPeriodFixture(t)

	cases := []struct{ start, end time.Time }{
		{date(2026, 3, 1), date(2026, 2, 1)}, // start after end
		{date(2026, 3, 1), date(2026, 3, 1)}, // start equals end
		{time.Time{}, date(2026, 3, 1)},      // missing start
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), owner, domain.LevelMacrocycle, nil, "Bad", "", "", tc.start, tc.end)
		assert.ErrorIs(t, err, ErrInvalidRange)
	}
	assert.Empty(t, repo.periods, "rejected creates must not write")
}

func TestCreateRejectsOverlappingSibling(t *testing.T) {
	svc, repo, owner := newPeriodFixture(t)
	mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Primo", date(2026, 1, 1), date(2026, 3, 31))

	// Partial overlap.
	_, err := svc.Create(context.Background(), owner, domain.LevelMacrocycle, nil, "Secondo", "", "", date(2026, 3, 1), date(2026, 5, 31))
	assert.ErrorIs(t, err, ErrOverlap)

	// Touching at a single shared day still overlaps: ranges are inclusive.
	_, err = svc.Create(context.Background(), owner, domain.LevelMacrocycle, nil, "Terzo", "", "", date(2026, 3, 31), date(2026, 5, 31))
	assert.ErrorIs(t, err, ErrOverlap)

	// Fully containing range overlaps too.
	_, err = svc.Create(context.Background(), owner, domain.LevelMacrocycle, nil, "Quarto", "", "", date(2025, 12, 1), date(2026, 6, 30))
	assert.ErrorIs(t, err, ErrOverlap)

	assert.Len(t, repo.periods, 1)
}

func TestCreateAllowsAdjacentAndOtherOwner(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)
	mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Primo", date(2026, 1, 1), date(2026, 3, 31))

	// Day after the existing end: no shared day, no overlap.
	mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Secondo", date(2026, 4, 1), date(2026, 6, 30))

	// Same range for a different owner is fine.
	other := primitive.NewObjectID()
	mustCreate(t, svc, other, domain.LevelMacrocycle, nil, "Altro", date(2026, 1, 1), date(2026, 3, 31))
}

func TestCreateMesocycleRequiresMatchingParent(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)
	macro := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Stagione", date(2026, 1, 1), date(2026, 6, 30))

	// No parent.
	_, err := svc.Create(context.Background(), owner, domain.LevelMesocycle, nil, "Meso", "", "", date(2026, 1, 5), date(2026, 2, 1))
	assert.ErrorIs(t, err, ErrParentRequired)

	// Unknown parent.
	missing := primitive.NewObjectID()
	_, err = svc.Create(context.Background(), owner, domain.LevelMesocycle, &missing, "Meso", "", "", date(2026, 1, 5), date(2026, 2, 1))
	assert.ErrorIs(t, err, ErrParentNotFound)

	// Microcycle directly under a macrocycle: wrong level.
	_, err = svc.Create(context.Background(), owner, domain.LevelMicrocycle, &macro.ID, "Micro", "", "", date(2026, 1, 5), date(2026, 1, 11))
	assert.ErrorIs(t, err, ErrParentLevel)

	// Correct shape.
	meso := mustCreate(t, svc, owner, domain.LevelMesocycle, &macro.ID, "Meso", date(2026, 1, 5), date(2026, 2, 1))
	mustCreate(t, svc, owner, domain.LevelMicrocycle, &meso.ID, "Micro", date(2026, 1, 5), date(2026, 1, 11))
}

func TestCreateSiblingsUnderDifferentParentsMayOverlap(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)
	macroA := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "A", date(2026, 1, 1), date(2026, 3, 31))
	macroB := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "B", date(2026, 4, 1), date(2026, 6, 30))

	// Same dates under different parents: not siblings, no conflict.
	mustCreate(t, svc, owner, domain.LevelMesocycle, &macroA.ID, "MesoA", date(2026, 1, 5), date(2026, 2, 1))
	mustCreate(t, svc, owner, domain.LevelMesocycle, &macroB.ID, "MesoB", date(2026, 1, 5), date(2026, 2, 1))
}

// --- Update ---

func TestUpdateExcludesSelfFromOverlapCheck(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)
	p := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Stagione", date(2026, 1, 1), date(2026, 3, 31))

	// Shrinking inside its own old range must not conflict with itself.
	newEnd := date(2026, 2, 28)
	updated, err := svc.Update(context.Background(), owner, p.ID, PeriodUpdate{EndDate: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, newEnd, updated.EndDate)
}

func TestUpdateRejectsOverlapAndLeavesStateUnchanged(t *testing.T) {
	svc, repo, owner := newPeriodFixture(t)
	mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Primo", date(2026, 1, 1), date(2026, 3, 31))
	p := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Secondo", date(2026, 4, 1), date(2026, 6, 30))

	newStart := date(2026, 3, 15)
	_, err := svc.Update(context.Background(), owner, p.ID, PeriodUpdate{StartDate: &newStart})
	assert.ErrorIs(t, err, ErrOverlap)

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 4, 1), stored.StartDate, "failed update must not change the stored period")
}

func TestUpdateValidatesRange(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)
	p := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Stagione", date(2026, 1, 1), date(2026, 3, 31))

	badEnd := date(2025, 12, 1)
	_, err := svc.Update(context.Background(), owner, p.ID, PeriodUpdate{EndDate: &badEnd})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestUpdateUnknownPeriod(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)

	name := "Nuovo nome"
	_, err := svc.Update(context.Background(), owner, primitive.NewObjectID(), PeriodUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrPeriodNotFound)
}

func TestUpdateOtherOwnersPeriodDenied(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)
	p := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Stagione", date(2026, 1, 1), date(2026, 3, 31))

	name := "Hijack"
	_, err := svc.Update(context.Background(), primitive.NewObjectID(), p.ID, PeriodUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrPeriodAccessDenied)
}

// --- Delete ---

func TestDeleteMacrocycleCascades(t *testing.T) {
	svc, repo, owner := newPeriodFixture(t)
	macro := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Stagione", date(2026, 1, 1), date(2026, 6, 30))
	meso1 := mustCreate(t, svc, owner, domain.LevelMesocycle, &macro.ID, "Meso1", date(2026, 1, 5), date(2026, 2, 1))
	meso2 := mustCreate(t, svc, owner, domain.LevelMesocycle, &macro.ID, "Meso2", date(2026, 2, 2), date(2026, 3, 1))
	mustCreate(t, svc, owner, domain.LevelMicrocycle, &meso1.ID, "Micro1", date(2026, 1, 5), date(2026, 1, 11))
	mustCreate(t, svc, owner, domain.LevelMicrocycle, &meso2.ID, "Micro2", date(2026, 2, 2), date(2026, 2, 8))

	// An unrelated macrocycle must survive.
	other := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Altra", date(2026, 7, 1), date(2026, 12, 31))

	require.NoError(t, svc.Delete(context.Background(), owner, macro.ID))

	assert.Len(t, repo.periods, 1)
	_, ok := repo.periods[other.ID]
	assert.True(t, ok)
}

func TestDeleteMesocycleCascadesToMicrocyclesOnly(t *testing.T) {
	svc, repo, owner := newPeriodFixture(t)
	macro := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Stagione", date(2026, 1, 1), date(2026, 6, 30))
	meso := mustCreate(t, svc, owner, domain.LevelMesocycle, &macro.ID, "Meso", date(2026, 1, 5), date(2026, 2, 1))
	mustCreate(t, svc, owner, domain.LevelMicrocycle, &meso.ID, "Micro", date(2026, 1, 5), date(2026, 1, 11))

	require.NoError(t, svc.Delete(context.Background(), owner, meso.ID))

	assert.Len(t, repo.periods, 1)
	_, ok := repo.periods[macro.ID]
	assert.True(t, ok, "parent macrocycle must survive")
}

func TestDeleteUnknownPeriodIsNoOp(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)
	assert.NoError(t, svc.Delete(context.Background(), owner, primitive.NewObjectID()))
}

// --- GenerateWeeklyMesocycles ---

func TestGenerateWeeklyMesocycles(t *testing.T) {
	svc, repo, owner := newPeriodFixture(t)
	// Mon 2026-08-03 .. Wed 2026-08-26: three full weeks plus a clipped one.
	macro := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Stagione", date(2026, 8, 3), date(2026, 8, 26))

	drafts, err := svc.GenerateWeeklyMesocycles(context.Background(), owner, macro.ID, "carico")
	require.NoError(t, err)
	require.Len(t, drafts, 4)

	for i, d := range drafts {
		assert.Equal(t, primitive.NilObjectID, d.ID, "drafts must not be persisted")
		assert.Equal(t, domain.LevelMesocycle, d.Level)
		require.NotNil(t, d.ParentID)
		assert.Equal(t, macro.ID, *d.ParentID)
		assert.Equal(t, "carico", d.Tag)
		assert.Equal(t, time.Monday, d.StartDate.Weekday())
		if i > 0 {
			assert.Equal(t, drafts[i-1].EndDate.AddDate(0, 0, 1), d.StartDate)
		}
	}
	assert.Equal(t, date(2026, 8, 3), drafts[0].StartDate)
	assert.Equal(t, date(2026, 8, 26), drafts[3].EndDate, "last week clipped to the macrocycle end")

	// Nothing persisted beyond the macrocycle itself.
	assert.Len(t, repo.periods, 1)
}

func TestGenerateWeeksRejectsNonMacrocycle(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)
	macro := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Stagione", date(2026, 1, 1), date(2026, 6, 30))
	meso := mustCreate(t, svc, owner, domain.LevelMesocycle, &macro.ID, "Meso", date(2026, 1, 5), date(2026, 2, 1))

	_, err := svc.GenerateWeeklyMesocycles(context.Background(), owner, meso.ID, "")
	assert.ErrorIs(t, err, ErrNotMacrocycle)

	_, err = svc.GenerateWeeklyMesocycles(context.Background(), owner, primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, ErrPeriodNotFound)
}

// --- AssignTag ---

func TestAssignTagBulkUpdatesOwnPeriodsOnly(t *testing.T) {
	svc, repo, owner := newPeriodFixture(t)
	macro := mustCreate(t, svc, owner, domain.LevelMacrocycle, nil, "Stagione", date(2026, 1, 1), date(2026, 6, 30))
	meso1 := mustCreate(t, svc, owner, domain.LevelMesocycle, &macro.ID, "Meso1", date(2026, 1, 5), date(2026, 2, 1))
	meso2 := mustCreate(t, svc, owner, domain.LevelMesocycle, &macro.ID, "Meso2", date(2026, 2, 2), date(2026, 3, 1))

	otherOwner := primitive.NewObjectID()
	foreign := mustCreate(t, svc, otherOwner, domain.LevelMacrocycle, nil, "Altro", date(2026, 1, 1), date(2026, 6, 30))

	updated, err := svc.AssignTag(context.Background(), owner, []primitive.ObjectID{meso1.ID, meso2.ID, foreign.ID}, "scarico")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	assert.Equal(t, "scarico", repo.periods[meso1.ID].Tag)
	assert.Equal(t, "scarico", repo.periods[meso2.ID].Tag)
	assert.Empty(t, repo.periods[foreign.ID].Tag, "other owners' periods must be skipped")
}

func TestAssignTagEmptyList(t *testing.T) {
	svc, _, owner := newPeriodFixture(t)
	updated, err := svc.AssignTag(context.Background(), owner, nil, "scarico")
	require.NoError(t, err)
	assert.Zero(t, updated)
}
