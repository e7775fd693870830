package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PeriodLevel identifies the depth of a period in the planning hierarchy.
type PeriodLevel string

const (
	LevelMacrocycle PeriodLevel = "macrocycle"
	LevelMesocycle  PeriodLevel = "mesocycle"
	LevelMicrocycle PeriodLevel = "microcycle"
)

// Valid reports whether the level is one of the three known values.
func (l PeriodLevel) Valid() bool {
	return l == LevelMacrocycle || l == LevelMesocycle || l == LevelMicrocycle
}

// ChildLevel returns the level one step below, or "" for microcycles.
func (l PeriodLevel) ChildLevel() PeriodLevel {
	switch l {
	case LevelMacrocycle:
		return LevelMesocycle
	case LevelMesocycle:
		return LevelMicrocycle
	default:
		return ""
	}
}

// Suggested classification tags per level. Tags are free-form; these are the
// values the mobile app offers in its pickers.
var (
	MacrocycleTags = []string{
		"preparatorio", "competitivo", "transizione", "base",
		"costruzione", "picco", "recupero",
	}
	MesocycleTags = []string{
		"accumulo", "intensificazione", "realizzazione", "scarico",
		"base", "forza", "velocita", "gara", "rigenerazione",
	}
	MicrocycleTags = []string{
		"carico", "impatto", "richiamo", "scarico",
		"avvicinamento", "gara", "recupero",
	}
)

// Period represents one planning block (macro-, meso- or microcycle).
// StartDate and EndDate are UTC midnight dates; the range is inclusive on
// both ends. Siblings under the same parent and owner must not overlap.
type Period struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID  `bson:"ownerId" json:"ownerId"`
	ParentID  *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"` // nil for macrocycles
	Level     PeriodLevel         `bson:"level" json:"level"`
	Name      string              `bson:"name" json:"name"`
	Tag       string              `bson:"tag,omitempty" json:"tag,omitempty"` // classification, e.g. "base", "competitivo"
	Notes     string              `bson:"notes,omitempty" json:"notes,omitempty"`
	StartDate time.Time           `bson:"startDate" json:"startDate"`
	EndDate   time.Time           `bson:"endDate" json:"endDate"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Overlaps reports whether the period's inclusive date range intersects
// [start, end].
func (p *Period) Overlaps(start, end time.Time) bool {
	return !start.After(p.EndDate) && !end.Before(p.StartDate)
}
