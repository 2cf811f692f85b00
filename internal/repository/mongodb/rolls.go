package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/plastimar/rolltrack/internal/domain/models"
)

// RollRepository defines the persistence operations the workflow services need
// for rolls.
type RollRepository interface {
	Get(ctx context.Context, id string) (*models.Roll, error)
	ListByJobOrder(ctx context.Context, jobOrderID string) ([]models.Roll, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Roll, error)
	Insert(ctx context.Context, roll *models.Roll) error
	// Save persists the roll only when the stored version still matches
	// expectedVersion, bumping the version on success. A stale version fails
	// with ErrVersionConflict.
	Save(ctx context.Context, roll *models.Roll, expectedVersion int64) error
}

// RollStore implements RollRepository against MongoDB.
type RollStore struct {
	coll *mongo.Collection
}

// Rolls returns the roll repository backed by this store.
func (s *Store) Rolls() *RollStore {
	return &RollStore{coll: s.db.Collection(rollsCollection)}
}

// Get fetches a single roll by its identifier.
func (r *RollStore) Get(ctx context.Context, id string) (*models.Roll, error) {
	var roll models.Roll
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&roll)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: roll %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch roll %s: %w", id, err)
	}
	return &roll, nil
}

// ListByJobOrder returns every roll drawing against the given job order,
// ordered by sequence.
func (r *RollStore) ListByJobOrder(ctx context.Context, jobOrderID string) ([]models.Roll, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"job_order_id": jobOrderID},
		options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list rolls for job order %s: %w", jobOrderID, err)
	}

	var rolls []models.Roll
	if err := cursor.All(ctx, &rolls); err != nil {
		return nil, fmt.Errorf("decode rolls for job order %s: %w", jobOrderID, err)
	}
	return rolls, nil
}

// ListByDateRange returns rolls created inside the window, for waste reporting.
func (r *RollStore) ListByDateRange(ctx context.Context, start, end time.Time) ([]models.Roll, error) {
	filter := bson.M{"created_at": bson.M{"$gte": start, "$lte": end}}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list rolls in range: %w", err)
	}

	var rolls []models.Roll
	if err := cursor.All(ctx, &rolls); err != nil {
		return nil, fmt.Errorf("decode rolls in range: %w", err)
	}
	return rolls, nil
}

// Insert persists a freshly created roll.
func (r *RollStore) Insert(ctx context.Context, roll *models.Roll) error {
	if _, err := r.coll.InsertOne(ctx, roll); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("roll %s already exists: %w", roll.ID, err)
		}
		return fmt.Errorf("insert roll %s: %w", roll.ID, err)
	}
	return nil
}

// Save replaces the roll document guarded by a version check, so concurrent
// stage commands against the same roll cannot silently overwrite each other.
func (r *RollStore) Save(ctx context.Context, roll *models.Roll, expectedVersion int64) error {
	roll.Version = expectedVersion + 1

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": roll.ID, "version": expectedVersion}, roll)
	if err != nil {
		roll.Version = expectedVersion
		return fmt.Errorf("save roll %s: %w", roll.ID, err)
	}
	if result.MatchedCount == 0 {
		roll.Version = expectedVersion
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": roll.ID})
		if err != nil {
			return fmt.Errorf("save roll %s: %w", roll.ID, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: roll %s", ErrNotFound, roll.ID)
		}
		return fmt.Errorf("%w: roll %s changed since version %d", ErrVersionConflict, roll.ID, expectedVersion)
	}
	return nil
}
