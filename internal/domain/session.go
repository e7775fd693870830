package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingSession is one diary entry: a single workout logged by an athlete.
// The workload engine only reads sessions, it never mutates them.
type TrainingSession struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID         primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Date            time.Time          `bson:"date" json:"date"`
	Sport           string             `bson:"sport,omitempty" json:"sport,omitempty"` // e.g. "run", "bike", "gym"
	DurationMinutes int                `bson:"durationMinutes" json:"durationMinutes"`
	// PerceivedExertion is the athlete's RPE (1-10). nil means the athlete
	// skipped the rating; load computation then imputes a moderate effort.
	PerceivedExertion *int      `bson:"perceivedExertion,omitempty" json:"perceivedExertion,omitempty"`
	Notes             string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}
