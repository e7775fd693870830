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

const periodCollectionName = "periods"

// mongoPeriodRepository implements repository.PeriodRepository
type mongoPeriodRepository struct {
	collection *mongo.Collection
}

// NewMongoPeriodRepository creates a new Period repository.
func NewMongoPeriodRepository(db *mongo.Database) repository.PeriodRepository {
	return &mongoPeriodRepository{
		collection: db.Collection(periodCollectionName),
	}
}

// Create inserts a new period.
func (r *mongoPeriodRepository) Create(ctx context.Context, period *domain.Period) (primitive.ObjectID, error) {
	if period.OwnerID == primitive.NilObjectID || period.Name == "" || !period.Level.Valid() {
		return primitive.NilObjectID, errors.New("period requires ownerId, name, and a valid level")
	}
	period.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	period.CreatedAt = now
	period.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, period)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted period ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single period by its ID.
func (r *mongoPeriodRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Period, error) {
	var period domain.Period
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&period)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// ListSiblings retrieves all periods under the same parent (nil parent =
// top-level macrocycles), same owner and same level, sorted by start date.
func (r *mongoPeriodRepository) ListSiblings(ctx context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel, parentID *primitive.ObjectID) ([]domain.Period, error) {
	filter := bson.M{
		"ownerId": ownerID,
		"level":   level,
	}
	if parentID != nil {
		filter["parentId"] = *parentID
	} else {
		filter["parentId"] = bson.M{"$exists": false}
	}
	return r.find(ctx, filter)
}

// ListByOwner retrieves all of an owner's periods at one level.
func (r *mongoPeriodRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, level domain.PeriodLevel) ([]domain.Period, error) {
	return r.find(ctx, bson.M{"ownerId": ownerID, "level": level})
}

// ListByParentID retrieves the direct children of a period.
func (r *mongoPeriodRepository) ListByParentID(ctx context.Context, parentID primitive.ObjectID) ([]domain.Period, error) {
	return r.find(ctx, bson.M{"parentId": parentID})
}

func (r *mongoPeriodRepository) find(ctx context.Context, filter bson.M) ([]domain.Period, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var periods []domain.Period
	if err = cursor.All(ctx, &periods); err != nil {
		return nil, err
	}
	return periods, nil
}

// Update replaces the mutable fields of a period. Owner, level and parent
// are fixed at creation; moving a period between parents is not supported.
func (r *mongoPeriodRepository) Update(ctx context.Context, period *domain.Period) error {
	if period.ID == primitive.NilObjectID {
		return errors.New("period ID is required for update")
	}

	filter := bson.M{"_id": period.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":      period.Name,
			"tag":       period.Tag,
			"notes":     period.Notes,
			"startDate": period.StartDate,
			"endDate":   period.EndDate,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateTag sets the classification tag on a batch of periods in one step.
// The owner filter stops one athlete from relabelling another's periods.
func (r *mongoPeriodRepository) UpdateTag(ctx context.Context, ids []primitive.ObjectID, ownerID primitive.ObjectID, tag string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"_id":     bson.M{"$in": ids},
		"ownerId": ownerID,
	}
	updateDoc := bson.M{
		"$set": bson.M{
			"tag":       tag,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateMany(ctx, filter, updateDoc)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// Delete removes one period. A missing id is not an error: the cascading
// delete in the service must stay idempotent.
func (r *mongoPeriodRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteMany removes a batch of periods by id.
func (r *mongoPeriodRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

// EnsurePeriodIndexes creates necessary indexes. Call during startup.
func EnsurePeriodIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Sibling lookup for the overlap check.
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "level", Value: 1}, {Key: "parentId", Value: 1}, {Key: "startDate", Value: 1}},
			Options: options.Index(),
		},
		{
			// Cascade lookup.
			Keys:    bson.D{{Key: "parentId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
