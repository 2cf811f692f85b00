package waste

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/plastimar/rolltrack/internal/domain/models"
	"github.com/plastimar/rolltrack/internal/engine"
	"github.com/plastimar/rolltrack/internal/repository/mongodb"
)

// ErrUnknownGrouping indicates an unsupported groupBy value.
var ErrUnknownGrouping = errors.New("unknown grouping")

// Service builds waste records from persisted rolls and runs the aggregator
// over them for the summary endpoint and the daily report.
type Service struct {
	rolls   mongodb.RollRepository
	orders  mongodb.JobOrderRepository
	reports mongodb.ReportRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new waste reporting service instance.
func NewService(rolls mongodb.RollRepository, orders mongodb.JobOrderRepository, reports mongodb.ReportRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		rolls:   rolls,
		orders:  orders,
		reports: reports,
		logger:  logger,
		now:     time.Now,
	}
}

// Records joins the rolls created inside the window with their job orders and
// returns one waste record per roll that has produced a downstream quantity.
// A roll referencing a missing job order halts the build; reporting must not
// guess grouping attributes.
func (s *Service) Records(ctx context.Context, start, end time.Time) ([]models.WasteRecord, error) {
	rolls, err := s.rolls.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	orderCache := make(map[string]*models.JobOrder)
	var records []models.WasteRecord
	for i := range rolls {
		roll := &rolls[i]

		wasteKg := engine.RollCumulativeWaste(roll)
		if wasteKg == nil {
			continue
		}
		latest := engine.LatestStageRecord(roll)

		order, ok := orderCache[roll.JobOrderID]
		if !ok {
			order, err = s.orders.Get(ctx, roll.JobOrderID)
			if err != nil {
				if errors.Is(err, mongodb.ErrNotFound) {
					return nil, fmt.Errorf("%w: roll %s references missing job order %s",
						engine.ErrDataIntegrity, roll.ID, roll.JobOrderID)
				}
				return nil, err
			}
			orderCache[roll.JobOrderID] = order
		}

		records = append(records, models.WasteRecord{
			RollID:       roll.ID,
			JobOrderID:   roll.JobOrderID,
			OperatorID:   roll.OperatorID,
			Section:      roll.Section,
			CustomerName: order.CustomerName,
			Date:         roll.CreatedAt,
			InputKg:      *roll.ExtrusionKg,
			OutputKg:     latest.QuantityKg,
			WasteKg:      *wasteKg,
			WastePct:     engine.StageWastePercentage(roll.ExtrusionKg, &latest.QuantityKg),
		})
	}

	return records, nil
}

// Summaries aggregates the window's waste records by the requested grouping.
func (s *Service) Summaries(ctx context.Context, groupBy string, start, end time.Time) ([]models.WasteSummary, error) {
	records, err := s.Records(ctx, start, end)
	if err != nil {
		return nil, err
	}

	switch groupBy {
	case "", "day":
		return engine.ByTimeframe(records, start, end), nil
	case "operator":
		return engine.ByOperator(records), nil
	case "section":
		return engine.BySection(records), nil
	case "customer":
		return engine.ByCustomer(records), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGrouping, groupBy)
	}
}

// GenerateDailyReport aggregates one calendar day, persists the report and
// returns it.
func (s *Service) GenerateDailyReport(ctx context.Context, day time.Time) (*models.DailyWasteReport, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)

	records, err := s.Records(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := &models.DailyWasteReport{
		Date:      start,
		RollCount: len(records),
		Sections:  engine.BySection(records),
		CreatedAt: s.now().UTC(),
	}

	var pctSum float64
	var pctCount int
	for _, record := range records {
		report.TotalWasteKg += record.WasteKg
		if record.WastePct != nil {
			pctSum += *record.WastePct
			pctCount++
		}
	}
	if pctCount > 0 {
		mean := pctSum / float64(pctCount)
		report.MeanWastePct = &mean
	}

	if s.reports != nil {
		if err := s.reports.SaveDailyReport(ctx, *report); err != nil {
			return nil, err
		}
	}

	s.logger.Info("daily waste report generated",
		zap.Time("date", start),
		zap.Float64("total_waste_kg", report.TotalWasteKg),
		zap.Int("roll_count", report.RollCount))
	return report, nil
}
