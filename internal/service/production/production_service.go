package production

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/plastimar/rolltrack/internal/domain/models"
	"github.com/plastimar/rolltrack/internal/engine"
	"github.com/plastimar/rolltrack/internal/metrics"
	"github.com/plastimar/rolltrack/internal/repository/mongodb"
)

// ErrUnauthorized indicates the capability gate rejected the operator.
var ErrUnauthorized = errors.New("operator not authorized")

const rollDateLayout = "2006-01-02"

// Service orchestrates the roll workflow: it gates each command through the
// authorizer, re-fetches the roll and its context, runs the engine transition
// and persists the result with a version compare-and-swap. The engine stays a
// pure library underneath.
type Service struct {
	rolls  mongodb.RollRepository
	orders mongodb.JobOrderRepository
	authz  Authorizer
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new production service instance.
func NewService(rolls mongodb.RollRepository, orders mongodb.JobOrderRepository, authz Authorizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if authz == nil {
		authz = AllowAll{}
	}
	return &Service{
		rolls:  rolls,
		orders: orders,
		authz:  authz,
		logger: logger,
		now:    time.Now,
	}
}

// StartRollRequest describes an operator opening a new roll against a job
// order.
type StartRollRequest struct {
	JobOrderID string
	OperatorID string
	Section    string
}

// StageRequest carries one stage recording command.
type StageRequest struct {
	OperatorID string
	QuantityKg float64
	Overwrite  bool
	NextStatus models.RollStatus
}

// StageResult is what a successful command returns to the transport layer.
type StageResult struct {
	Roll              *models.Roll `json:"roll"`
	StageWasteKg      *float64     `json:"stage_waste_kg,omitempty"`
	CumulativeWasteKg *float64     `json:"cumulative_waste_kg,omitempty"`
	Warnings          []string     `json:"warnings,omitempty"`
}

// BalanceReport is the remaining-balance view of a job order.
type BalanceReport struct {
	JobOrderID  string  `json:"job_order_id"`
	TargetKg    float64 `json:"target_kg"`
	RemainingKg float64 `json:"remaining_kg"`
}

// StartRoll creates a roll in awaiting_extrusion with the next sequence number
// for the job order. The identifier embeds job order, sequence and date; the
// rest of the system treats it as opaque.
func (s *Service) StartRoll(ctx context.Context, req StartRollRequest) (*models.Roll, error) {
	if err := s.authorize(ctx, req.OperatorID, req.Section, ActionExtrusion); err != nil {
		return nil, err
	}

	if _, err := s.orders.Get(ctx, req.JobOrderID); err != nil {
		return nil, err
	}

	siblings, err := s.rolls.ListByJobOrder(ctx, req.JobOrderID)
	if err != nil {
		return nil, err
	}
	sequence := 1
	for i := range siblings {
		if siblings[i].Sequence >= sequence {
			sequence = siblings[i].Sequence + 1
		}
	}

	now := s.now().UTC()
	roll := &models.Roll{
		ID:         fmt.Sprintf("%s/%d/%s", req.JobOrderID, sequence, now.Format(rollDateLayout)),
		JobOrderID: req.JobOrderID,
		Sequence:   sequence,
		OperatorID: req.OperatorID,
		Section:    req.Section,
		Status:     models.StatusAwaitingExtrusion,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.rolls.Insert(ctx, roll); err != nil {
		return nil, err
	}

	s.logger.Info("roll started",
		zap.String("roll_id", roll.ID),
		zap.String("job_order_id", req.JobOrderID),
		zap.String("operator_id", req.OperatorID))
	return roll, nil
}

// RecordStage runs one stage command end to end. The roll and its sibling
// rolls are fetched fresh so the balance guard sees the latest totals, and the
// save carries the fetched version so a concurrent command against the same
// roll surfaces as a version conflict instead of a lost update.
func (s *Service) RecordStage(ctx context.Context, rollID string, stage models.Stage, req StageRequest) (*StageResult, error) {
	roll, err := s.rolls.Get(ctx, rollID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, req.OperatorID, roll.Section, string(stage)); err != nil {
		return nil, err
	}

	order, err := s.orders.Get(ctx, roll.JobOrderID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, fmt.Errorf("%w: roll %s references missing job order %s",
				engine.ErrDataIntegrity, rollID, roll.JobOrderID)
		}
		return nil, err
	}

	expectedVersion := roll.Version
	in := engine.StageInput{QuantityKg: req.QuantityKg, Overwrite: req.Overwrite, NextStatus: req.NextStatus}

	var result *engine.TransitionResult
	switch stage {
	case models.StageExtrusion:
		var siblings []models.Roll
		siblings, err = s.rolls.ListByJobOrder(ctx, roll.JobOrderID)
		if err != nil {
			return nil, err
		}
		result, err = engine.RecordExtrusion(roll, *order, siblings, in)
	case models.StagePrinting:
		result, err = engine.RecordPrinting(roll, in)
	case models.StageCutting:
		result, err = engine.RecordCutting(roll, in)
	default:
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
	if err != nil {
		metrics.StageTransitions.WithLabelValues(string(stage), "rejected").Inc()
		s.logger.Warn("stage command rejected",
			zap.String("roll_id", rollID),
			zap.String("stage", string(stage)),
			zap.Error(err))
		return nil, err
	}

	roll.UpdatedAt = s.now().UTC()
	if err := s.rolls.Save(ctx, roll, expectedVersion); err != nil {
		return nil, err
	}

	metrics.StageTransitions.WithLabelValues(string(stage), "ok").Inc()
	if result.StageWasteKg != nil {
		metrics.StageWasteKg.WithLabelValues(string(stage), roll.Section).Add(*result.StageWasteKg)
	}

	s.logger.Info("stage recorded",
		zap.String("roll_id", rollID),
		zap.String("stage", string(stage)),
		zap.Float64("quantity_kg", req.QuantityKg),
		zap.String("status", string(roll.Status)),
		zap.Strings("warnings", result.Warnings))

	return &StageResult{
		Roll:              roll,
		StageWasteKg:      result.StageWasteKg,
		CumulativeWasteKg: result.CumulativeWasteKg,
		Warnings:          result.Warnings,
	}, nil
}

// Receive moves a roll into its terminal received state.
func (s *Service) Receive(ctx context.Context, rollID, operatorID, notes string) (*StageResult, error) {
	roll, err := s.rolls.Get(ctx, rollID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, operatorID, roll.Section, ActionReceive); err != nil {
		return nil, err
	}

	expectedVersion := roll.Version
	result, err := engine.Receive(roll, notes)
	if err != nil {
		metrics.StageTransitions.WithLabelValues(ActionReceive, "rejected").Inc()
		return nil, err
	}

	roll.UpdatedAt = s.now().UTC()
	if err := s.rolls.Save(ctx, roll, expectedVersion); err != nil {
		return nil, err
	}

	metrics.StageTransitions.WithLabelValues(ActionReceive, "ok").Inc()
	metrics.RollsReceived.Inc()

	s.logger.Info("roll received", zap.String("roll_id", rollID), zap.String("operator_id", operatorID))
	return &StageResult{Roll: roll, CumulativeWasteKg: result.CumulativeWasteKg}, nil
}

// GetRoll fetches a single roll.
func (s *Service) GetRoll(ctx context.Context, id string) (*models.Roll, error) {
	return s.rolls.Get(ctx, id)
}

// RemainingBalance reports how much extrusion quantity the job order may still
// authorize.
func (s *Service) RemainingBalance(ctx context.Context, jobOrderID string) (*BalanceReport, error) {
	order, err := s.orders.Get(ctx, jobOrderID)
	if err != nil {
		return nil, err
	}

	rolls, err := s.rolls.ListByJobOrder(ctx, jobOrderID)
	if err != nil {
		return nil, err
	}

	return &BalanceReport{
		JobOrderID:  jobOrderID,
		TargetKg:    order.TargetKg,
		RemainingKg: engine.RemainingBalance(*order, rolls, ""),
	}, nil
}

func (s *Service) authorize(ctx context.Context, operatorID, section, action string) error {
	ok, err := s.authz.CanRecord(ctx, operatorID, section, action)
	if err != nil {
		return fmt.Errorf("authorization check: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: operator %s may not %s in section %s", ErrUnauthorized, operatorID, action, section)
	}
	return nil
}
