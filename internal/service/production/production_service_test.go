package production

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/plastimar/rolltrack/internal/domain/models"
	"github.com/plastimar/rolltrack/internal/engine"
	"github.com/plastimar/rolltrack/internal/repository/mongodb"
)

func kg(v float64) *float64 { return &v }

type fakeRollRepo struct {
	rolls   map[string]*models.Roll
	saveErr error
}

func newFakeRollRepo(rolls ...*models.Roll) *fakeRollRepo {
	repo := &fakeRollRepo{rolls: make(map[string]*models.Roll)}
	for _, roll := range rolls {
		clone := *roll
		repo.rolls[roll.ID] = &clone
	}
	return repo
}

func (f *fakeRollRepo) Get(_ context.Context, id string) (*models.Roll, error) {
	stored, ok := f.rolls[id]
	if !ok {
		return nil, fmt.Errorf("%w: roll %s", mongodb.ErrNotFound, id)
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeRollRepo) ListByJobOrder(_ context.Context, jobOrderID string) ([]models.Roll, error) {
	var rolls []models.Roll
	for _, stored := range f.rolls {
		if stored.JobOrderID == jobOrderID {
			rolls = append(rolls, *stored)
		}
	}
	return rolls, nil
}

func (f *fakeRollRepo) ListByDateRange(_ context.Context, start, end time.Time) ([]models.Roll, error) {
	var rolls []models.Roll
	for _, stored := range f.rolls {
		if !stored.CreatedAt.Before(start) && !stored.CreatedAt.After(end) {
			rolls = append(rolls, *stored)
		}
	}
	return rolls, nil
}

func (f *fakeRollRepo) Insert(_ context.Context, roll *models.Roll) error {
	if _, ok := f.rolls[roll.ID]; ok {
		return fmt.Errorf("roll %s already exists", roll.ID)
	}
	clone := *roll
	f.rolls[roll.ID] = &clone
	return nil
}

func (f *fakeRollRepo) Save(_ context.Context, roll *models.Roll, expectedVersion int64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	stored, ok := f.rolls[roll.ID]
	if !ok {
		return fmt.Errorf("%w: roll %s", mongodb.ErrNotFound, roll.ID)
	}
	if stored.Version != expectedVersion {
		return fmt.Errorf("%w: roll %s", mongodb.ErrVersionConflict, roll.ID)
	}
	roll.Version = expectedVersion + 1
	clone := *roll
	f.rolls[roll.ID] = &clone
	return nil
}

type fakeOrderRepo struct {
	orders map[string]*models.JobOrder
}

func newFakeOrderRepo(orders ...*models.JobOrder) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: make(map[string]*models.JobOrder)}
	for _, order := range orders {
		clone := *order
		repo.orders[order.ID] = &clone
	}
	return repo
}

func (f *fakeOrderRepo) Get(_ context.Context, id string) (*models.JobOrder, error) {
	stored, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: job order %s", mongodb.ErrNotFound, id)
	}
	clone := *stored
	return &clone, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
}

func TestStartRoll(t *testing.T) {
	order := &models.JobOrder{ID: "JO-1042", TargetKg: 100, RequiresPrinting: true}
	existing := &models.Roll{ID: "JO-1042/1/2026-08-30", JobOrderID: "JO-1042", Sequence: 1, Version: 1}

	rolls := newFakeRollRepo(existing)
	svc := NewService(rolls, newFakeOrderRepo(order), nil, nil)
	svc.now = fixedNow

	roll, err := svc.StartRoll(context.Background(), StartRollRequest{
		JobOrderID: "JO-1042",
		OperatorID: "op-7",
		Section:    "extrusion-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if roll.ID != "JO-1042/2/2026-08-31" {
		t.Errorf("unexpected roll id %q", roll.ID)
	}
	if roll.Sequence != 2 {
		t.Errorf("expected sequence 2, got %d", roll.Sequence)
	}
	if roll.Status != models.StatusAwaitingExtrusion {
		t.Errorf("expected awaiting_extrusion, got %s", roll.Status)
	}
	if _, ok := rolls.rolls[roll.ID]; !ok {
		t.Error("roll was not persisted")
	}
}

func TestStartRoll_UnknownJobOrder(t *testing.T) {
	svc := NewService(newFakeRollRepo(), newFakeOrderRepo(), nil, nil)

	_, err := svc.StartRoll(context.Background(), StartRollRequest{JobOrderID: "JO-missing", OperatorID: "op-7", Section: "extrusion-1"})
	if !errors.Is(err, mongodb.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordStage_Extrusion(t *testing.T) {
	order := &models.JobOrder{ID: "JO-1042", TargetKg: 100, RequiresPrinting: true}
	roll := &models.Roll{ID: "r1", JobOrderID: "JO-1042", Section: "extrusion-1", Status: models.StatusAwaitingExtrusion, Version: 1}

	rolls := newFakeRollRepo(roll)
	svc := NewService(rolls, newFakeOrderRepo(order), nil, nil)
	svc.now = fixedNow

	result, err := svc.RecordStage(context.Background(), "r1", models.StageExtrusion, StageRequest{
		OperatorID: "op-7",
		QuantityKg: 80,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Roll.Status != models.StatusAwaitingPrinting {
		t.Errorf("expected awaiting_printing, got %s", result.Roll.Status)
	}
	stored := rolls.rolls["r1"]
	if stored.ExtrusionKg == nil || *stored.ExtrusionKg != 80 {
		t.Errorf("expected extrusion 80 persisted, got %v", stored.ExtrusionKg)
	}
	if stored.Version != 2 {
		t.Errorf("expected version bumped to 2, got %d", stored.Version)
	}
}

func TestRecordStage_ExceedsBalance(t *testing.T) {
	order := &models.JobOrder{ID: "JO-1042", TargetKg: 100}
	sibling := &models.Roll{ID: "r0", JobOrderID: "JO-1042", ExtrusionKg: kg(70), Status: models.StatusAwaitingCutting, Version: 1}
	roll := &models.Roll{ID: "r1", JobOrderID: "JO-1042", Status: models.StatusAwaitingExtrusion, Version: 1}

	svc := NewService(newFakeRollRepo(sibling, roll), newFakeOrderRepo(order), nil, nil)

	_, err := svc.RecordStage(context.Background(), "r1", models.StageExtrusion, StageRequest{OperatorID: "op-7", QuantityKg: 31})
	if !errors.Is(err, engine.ErrExceedsJobOrderBalance) {
		t.Fatalf("expected balance error, got %v", err)
	}
}

func TestRecordStage_MissingJobOrderIsDataIntegrity(t *testing.T) {
	roll := &models.Roll{ID: "r1", JobOrderID: "JO-ghost", Status: models.StatusAwaitingExtrusion, Version: 1}

	svc := NewService(newFakeRollRepo(roll), newFakeOrderRepo(), nil, nil)

	_, err := svc.RecordStage(context.Background(), "r1", models.StageExtrusion, StageRequest{OperatorID: "op-7", QuantityKg: 10})
	if !errors.Is(err, engine.ErrDataIntegrity) {
		t.Fatalf("expected data integrity error, got %v", err)
	}
}

func TestRecordStage_Unauthorized(t *testing.T) {
	order := &models.JobOrder{ID: "JO-1042", TargetKg: 100}
	roll := &models.Roll{ID: "r1", JobOrderID: "JO-1042", Section: "extrusion-1", Status: models.StatusAwaitingExtrusion, Version: 1}

	authz := SectionAuthorizer{"op-7": {"extrusion-2"}}
	svc := NewService(newFakeRollRepo(roll), newFakeOrderRepo(order), authz, nil)

	_, err := svc.RecordStage(context.Background(), "r1", models.StageExtrusion, StageRequest{OperatorID: "op-7", QuantityKg: 10})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRecordStage_VersionConflict(t *testing.T) {
	order := &models.JobOrder{ID: "JO-1042", TargetKg: 100}
	roll := &models.Roll{ID: "r1", JobOrderID: "JO-1042", Status: models.StatusAwaitingExtrusion, Version: 1}

	rolls := newFakeRollRepo(roll)
	rolls.saveErr = fmt.Errorf("%w: roll r1", mongodb.ErrVersionConflict)
	svc := NewService(rolls, newFakeOrderRepo(order), nil, nil)

	_, err := svc.RecordStage(context.Background(), "r1", models.StageExtrusion, StageRequest{OperatorID: "op-7", QuantityKg: 10})
	if !errors.Is(err, mongodb.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestReceive(t *testing.T) {
	order := &models.JobOrder{ID: "JO-1042", TargetKg: 100}
	roll := &models.Roll{
		ID: "r1", JobOrderID: "JO-1042", Status: models.StatusAwaitingReceiving,
		ExtrusionKg: kg(100), CuttingKg: kg(85), Version: 3,
	}

	rolls := newFakeRollRepo(roll)
	svc := NewService(rolls, newFakeOrderRepo(order), nil, nil)
	svc.now = fixedNow

	result, err := svc.Receive(context.Background(), "r1", "op-9", "received at dock 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Roll.Status != models.StatusReceived {
		t.Errorf("expected received, got %s", result.Roll.Status)
	}
	if result.CumulativeWasteKg == nil || *result.CumulativeWasteKg != 15 {
		t.Errorf("expected cumulative waste 15, got %v", result.CumulativeWasteKg)
	}
	if rolls.rolls["r1"].Version != 4 {
		t.Errorf("expected version 4, got %d", rolls.rolls["r1"].Version)
	}
}

func TestRemainingBalance(t *testing.T) {
	order := &models.JobOrder{ID: "JO-1042", TargetKg: 100}
	svc := NewService(newFakeRollRepo(), newFakeOrderRepo(order), nil, nil)

	report, err := svc.RemainingBalance(context.Background(), "JO-1042")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RemainingKg != 100 {
		t.Errorf("expected 100 remaining on an undrawn order, got %.3f", report.RemainingKg)
	}

	roll := &models.Roll{ID: "r1", JobOrderID: "JO-1042", ExtrusionKg: kg(100), Status: models.StatusAwaitingCutting, Version: 1}
	svc = NewService(newFakeRollRepo(roll), newFakeOrderRepo(order), nil, nil)

	report, err = svc.RemainingBalance(context.Background(), "JO-1042")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RemainingKg != 0 {
		t.Errorf("expected 0 remaining after drawing the target, got %.3f", report.RemainingKg)
	}
}
