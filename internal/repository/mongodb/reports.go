package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plastimar/rolltrack/internal/domain/models"
)

// ReportRepository persists aggregated daily waste reports.
type ReportRepository interface {
	SaveDailyReport(ctx context.Context, report models.DailyWasteReport) error
}

// ReportStore implements ReportRepository against MongoDB.
type ReportStore struct {
	coll *mongo.Collection
}

// Reports returns the waste report repository backed by this store.
func (s *Store) Reports() *ReportStore {
	return &ReportStore{coll: s.db.Collection(reportsCollection)}
}

// SaveDailyReport stores one day's aggregated waste figures.
func (r *ReportStore) SaveDailyReport(ctx context.Context, report models.DailyWasteReport) error {
	if _, err := r.coll.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("insert daily waste report: %w", err)
	}
	return nil
}
