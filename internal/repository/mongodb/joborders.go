package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plastimar/rolltrack/internal/domain/models"
)

// JobOrderRepository exposes the read access the workflow needs into the job
// orders owned by the order-management subsystem.
type JobOrderRepository interface {
	Get(ctx context.Context, id string) (*models.JobOrder, error)
}

// JobOrderStore implements JobOrderRepository against MongoDB.
type JobOrderStore struct {
	coll *mongo.Collection
}

// JobOrders returns the job order repository backed by this store.
func (s *Store) JobOrders() *JobOrderStore {
	return &JobOrderStore{coll: s.db.Collection(ordersCollection)}
}

// Get fetches a job order by its identifier.
func (r *JobOrderStore) Get(ctx context.Context, id string) (*models.JobOrder, error) {
	var order models.JobOrder
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: job order %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch job order %s: %w", id, err)
	}
	return &order, nil
}
