package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"atleta/training-diary/internal/domain"
	"atleta/training-diary/internal/repository"
)

const snapshotCollectionName = "workload_snapshots"

// mongoSnapshotRepository implements repository.SnapshotRepository
type mongoSnapshotRepository struct {
	collection *mongo.Collection
}

// NewMongoSnapshotRepository creates a new WorkloadSnapshot repository.
func NewMongoSnapshotRepository(db *mongo.Database) repository.SnapshotRepository {
	return &mongoSnapshotRepository{
		collection: db.Collection(snapshotCollectionName),
	}
}

// Upsert writes the snapshot for (owner, date), replacing any earlier run
// of the same day.
func (r *mongoSnapshotRepository) Upsert(ctx context.Context, snapshot *domain.WorkloadSnapshot) error {
	if snapshot.OwnerID == primitive.NilObjectID {
		return errors.New("snapshot requires ownerId")
	}
	filter := bson.M{"ownerId": snapshot.OwnerID, "date": snapshot.Date}
	update := bson.M{
		"$set": bson.M{
			"metrics": snapshot.Metrics,
		},
		"$setOnInsert": bson.M{
			"ownerId":   snapshot.OwnerID,
			"date":      snapshot.Date,
			"createdAt": time.Now().UTC(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// ListByOwner retrieves snapshots with date in [from, to], ascending.
func (r *mongoSnapshotRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.WorkloadSnapshot, error) {
	filter := bson.M{
		"ownerId": ownerID,
		"date":    bson.M{"$gte": from, "$lte": to},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []domain.WorkloadSnapshot
	if err = cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// EnsureSnapshotIndexes creates necessary indexes. Call during startup.
func EnsureSnapshotIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
