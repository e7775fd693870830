package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RiskZone buckets the acute:chronic workload ratio into injury-risk bands.
type RiskZone string

const (
	ZoneDetraining RiskZone = "detraining"
	ZoneSafety     RiskZone = "safety"
	ZoneRisk       RiskZone = "risk"
	ZoneHighRisk   RiskZone = "high-risk"
)

// Trend describes the direction of the load over the trailing two weeks.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// WorkloadSample is the total training load for one calendar day.
// Load is unit-less: duration (minutes) times perceived exertion.
type WorkloadSample struct {
	Date time.Time `json:"date"`
	Load float64   `json:"load"`
}

// WorkloadMetrics is the derived risk snapshot for one athlete at one date.
// It is recomputed on demand and never persisted by the computation itself.
type WorkloadMetrics struct {
	AcuteLoad       float64  `bson:"acuteLoad" json:"acuteLoad"`     // 7-day rolling sum
	ChronicLoad     float64  `bson:"chronicLoad" json:"chronicLoad"` // 28-day rolling sum
	ACWR            float64  `bson:"acwr" json:"acwr"`
	RiskZone        RiskZone `bson:"riskZone" json:"riskZone"`
	RiskPercentage  int      `bson:"riskPercentage" json:"riskPercentage"`
	Trend           Trend    `bson:"trend" json:"trend"`
	Recommendations []string `bson:"recommendations" json:"recommendations"`
}

// WorkloadSnapshot is a persisted copy of one day's metrics, written by the
// nightly scheduler so charts can show history without recomputing it.
type WorkloadSnapshot struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Date      time.Time          `bson:"date" json:"date"`
	Metrics   WorkloadMetrics    `bson:"metrics" json:"metrics"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// WeeklyTotal aggregates samples over one Sunday-anchored week, for charts.
type WeeklyTotal struct {
	WeekStart    time.Time `json:"weekStart"`
	TotalLoad    float64   `json:"totalLoad"`
	SessionCount int       `json:"sessionCount"`
}
