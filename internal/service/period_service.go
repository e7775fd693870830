package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"atleta/training-diary/internal/dateweek"
	"atleta/training-diary/internal/domain"
	"atleta/training-diary/internal/repository"
)

// --- Error Definitions ---
var (
	ErrInvalidRange       = errors.New("period start date must be before end date")
	ErrOverlap            = errors.New("period overlaps an existing sibling period")
	ErrPeriodNotFound     = errors.New("period not found")
	ErrParentNotFound     = errors.New("parent period not found")
	ErrParentLevel        = errors.New("parent period has the wrong level")
	ErrParentRequired     = errors.New("mesocycles and microcycles require a parent period")
	ErrPeriodAccessDenied = errors.New("access denied to this period")
	ErrNotMacrocycle      = errors.New("weekly generation requires a macrocycle")
)

// PeriodUpdate carries the mutable fields of a period for partial updates.
// nil fields are left unchanged.
type PeriodUpdate struct {
	Name      *string
	Tag       *string
	Notes     *string
	StartDate *time.Time
	EndDate   *time.Time
}

// --- Service Interface ---
type PeriodService interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel, parentID *primitive.ObjectID, name, tag, notes string, startDate, endDate time.Time) (*domain.Period, error)
	Update(ctx context.Context, ownerID, periodID primitive.ObjectID, upd PeriodUpdate) (*domain.Period, error)
	// Delete cascades top-down and is idempotent: deleting an unknown id
	// is a no-op success.
	Delete(ctx context.Context, ownerID, periodID primitive.ObjectID) error
	List(ctx context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel, parentID *primitive.ObjectID) ([]domain.Period, error)
	// GenerateWeeklyMesocycles returns one draft mesocycle per calendar
	// week of the macrocycle's range. Drafts are NOT persisted; the caller
	// reviews them and creates the ones it wants.
	GenerateWeeklyMesocycles(ctx context.Context, ownerID, macrocycleID primitive.ObjectID, tag string) ([]domain.Period, error)
	// AssignTag labels a batch of the owner's periods with one
	// classification in one step. Returns how many were updated.
	AssignTag(ctx context.Context, ownerID primitive.ObjectID, periodIDs []primitive.ObjectID, tag string) (int64, error)
}

// --- Service Implementation ---

// periodService implements the PeriodService interface.
type periodService struct {
	periodRepo repository.PeriodRepository
}

// NewPeriodService creates a new instance of periodService.
func NewPeriodService(periodRepo repository.PeriodRepository) PeriodService {
	return &periodService{periodRepo: periodRepo}
}

// Create validates and persists a new period.
//
// Ranges are inclusive date ranges at UTC midnight; a sibling under the same
// parent and owner must not overlap the new range. Child ranges are NOT
// checked against the parent's range: the planning UI keeps children inside
// their parent, and the service leaves that to the caller.
func (s *periodService) Create(ctx context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel, parentID *primitive.ObjectID, name, tag, notes string, startDate, endDate time.Time) (*domain.Period, error) {
	if ownerID == primitive.NilObjectID || name == "" {
		return nil, errors.New("owner ID and name are required")
	}
	if !level.Valid() {
		return nil, fmt.Errorf("unknown period level %q", level)
	}

	start, end, err := normalizeRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	if err := s.checkParent(ctx, ownerID, level, parentID); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, ownerID, level, parentID, start, end, primitive.NilObjectID); err != nil {
		return nil, err
	}

	period := &domain.Period{
		OwnerID:   ownerID,
		ParentID:  parentID,
		Level:     level,
		Name:      name,
		Tag:       tag,
		Notes:     notes,
		StartDate: start,
		EndDate:   end,
	}
	id, err := s.periodRepo.Create(ctx, period)
	if err != nil {
		return nil, err
	}
	period.ID = id
	return period, nil
}

// Update applies a partial update, re-running the same range and overlap
// validation with the record itself excluded from the sibling check.
// A rejected update leaves the stored period untouched.
func (s *periodService) Update(ctx context.Context, ownerID, periodID primitive.ObjectID, upd PeriodUpdate) (*domain.Period, error) {
	if periodID == primitive.NilObjectID {
		return nil, errors.New("period ID is required")
	}

	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	if period.OwnerID != ownerID {
		return nil, ErrPeriodAccessDenied
	}

	if upd.Name != nil {
		period.Name = *upd.Name
	}
	if upd.Tag != nil {
		period.Tag = *upd.Tag
	}
	if upd.Notes != nil {
		period.Notes = *upd.Notes
	}
	if upd.StartDate != nil {
		period.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		period.EndDate = *upd.EndDate
	}

	start, end, err := normalizeRange(period.StartDate, period.EndDate)
	if err != nil {
		return nil, err
	}
	period.StartDate = start
	period.EndDate = end

	if err := s.checkOverlap(ctx, ownerID, period.Level, period.ParentID, start, end, period.ID); err != nil {
		return nil, err
	}

	if err := s.periodRepo.Update(ctx, period); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	return period, nil
}

// Delete removes a period and everything beneath it: a macrocycle takes its
// mesocycles and their microcycles with it, a mesocycle takes its
// microcycles. Children go first so a failure part-way never leaves a
// deleted parent with live descendants.
func (s *periodService) Delete(ctx context.Context, ownerID, periodID primitive.ObjectID) error {
	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil // already gone
		}
		return err
	}
	if period.OwnerID != ownerID {
		return ErrPeriodAccessDenied
	}

	children, err := s.periodRepo.ListByParentID(ctx, period.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		grandchildren, err := s.periodRepo.ListByParentID(ctx, child.ID)
		if err != nil {
			return err
		}
		if err := s.periodRepo.DeleteMany(ctx, periodIDs(grandchildren)); err != nil {
			return err
		}
	}
	if err := s.periodRepo.DeleteMany(ctx, periodIDs(children)); err != nil {
		return err
	}
	return s.periodRepo.Delete(ctx, period.ID)
}

// List returns the owner's periods at one level, optionally under one parent.
func (s *periodService) List(ctx context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel, parentID *primitive.ObjectID) ([]domain.Period, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("unknown period level %q", level)
	}
	if parentID != nil {
		return s.periodRepo.ListSiblings(ctx, ownerID, level, parentID)
	}
	return s.periodRepo.ListByOwner(ctx, ownerID, level)
}

// GenerateWeeklyMesocycles decomposes the macrocycle's range into
// Monday-anchored weeks and returns one unsaved mesocycle draft per week.
// The last week is clipped to the macrocycle's end date.
func (s *periodService) GenerateWeeklyMesocycles(ctx context.Context, ownerID, macrocycleID primitive.ObjectID, tag string) ([]domain.Period, error) {
	macro, err := s.periodRepo.GetByID(ctx, macrocycleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	if macro.OwnerID != ownerID {
		return nil, ErrPeriodAccessDenied
	}
	if macro.Level != domain.LevelMacrocycle {
		return nil, ErrNotMacrocycle
	}

	parentID := macro.ID
	drafts := make([]domain.Period, 0, dateweek.Count(macro.StartDate, macro.EndDate))
	week := 1
	for w := range dateweek.Decompose(macro.StartDate, macro.EndDate) {
		drafts = append(drafts, domain.Period{
			OwnerID:   ownerID,
			ParentID:  &parentID,
			Level:     domain.LevelMesocycle,
			Name:      fmt.Sprintf("Settimana %d", week),
			Tag:       tag,
			StartDate: w.Start,
			EndDate:   w.End,
		})
		week++
	}
	return drafts, nil
}

// AssignTag bulk-labels the owner's periods. Ids belonging to other owners
// are silently skipped by the repository filter.
func (s *periodService) AssignTag(ctx context.Context, ownerID primitive.ObjectID, periodIDs []primitive.ObjectID, tag string) (int64, error) {
	if len(periodIDs) == 0 {
		return 0, nil
	}
	return s.periodRepo.UpdateTag(ctx, periodIDs, ownerID, tag)
}

// checkParent verifies the parent requirement for the level: macrocycles are
// roots, everything else needs a parent one level up owned by the same user.
func (s *periodService) checkParent(ctx context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel, parentID *primitive.ObjectID) error {
	if level == domain.LevelMacrocycle {
		if parentID != nil {
			return errors.New("macrocycles cannot have a parent period")
		}
		return nil
	}
	if parentID == nil {
		return ErrParentRequired
	}

	parent, err := s.periodRepo.GetByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrParentNotFound
		}
		return err
	}
	if parent.OwnerID != ownerID {
		return ErrPeriodAccessDenied
	}
	if parent.Level.ChildLevel() != level {
		return ErrParentLevel
	}
	return nil
}

// checkOverlap rejects ranges intersecting any sibling other than excludeID.
// Two inclusive ranges overlap when newStart <= existingEnd and
// newEnd >= existingStart.
func (s *periodService) checkOverlap(ctx context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel, parentID *primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) error {
	siblings, err := s.periodRepo.ListSiblings(ctx, ownerID, level, parentID)
	if err != nil {
		return err
	}
	for i := range siblings {
		if siblings[i].ID == excludeID {
			continue
		}
		if siblings[i].Overlaps(start, end) {
			return ErrOverlap
		}
	}
	return nil
}

// normalizeRange truncates both dates to UTC midnight and enforces
// startDate < endDate.
func normalizeRange(startDate, endDate time.Time) (time.Time, time.Time, error) {
	if startDate.IsZero() || endDate.IsZero() {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	start := dateweek.Day(startDate)
	end := dateweek.Day(endDate)
	if !start.Before(end) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return start, end, nil
}

func periodIDs(periods []domain.Period) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, len(periods))
	for i := range periods {
		ids[i] = periods[i].ID
	}
	return ids
}
