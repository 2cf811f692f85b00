package engine

import (
	"testing"
	"time"

	"github.com/plastimar/rolltrack/internal/domain/models"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleRecords() []models.WasteRecord {
	return []models.WasteRecord{
		{RollID: "r1", OperatorID: "op-a", Section: "extrusion-1", CustomerName: "Acme", Date: day("2026-08-01"), InputKg: 100, OutputKg: 90, WasteKg: 10, WastePct: kg(10)},
		{RollID: "r2", OperatorID: "op-a", Section: "extrusion-1", CustomerName: "Beta", Date: day("2026-08-01"), InputKg: 100, OutputKg: 80, WasteKg: 20, WastePct: kg(20)},
		{RollID: "r3", OperatorID: "op-b", Section: "extrusion-2", CustomerName: "Acme", Date: day("2026-08-02"), InputKg: 50, OutputKg: 49, WasteKg: 1, WastePct: kg(2)},
		{RollID: "r4", OperatorID: "op-b", Section: "extrusion-2", CustomerName: "Beta", Date: day("2026-08-05"), InputKg: 40, OutputKg: 36, WasteKg: 4, WastePct: kg(10)},
	}
}

func TestByTimeframe(t *testing.T) {
	summaries := ByTimeframe(sampleRecords(), day("2026-08-01"), day("2026-08-02"))

	if len(summaries) != 2 {
		t.Fatalf("expected 2 daily summaries, got %d", len(summaries))
	}

	first := summaries[0]
	if first.Key != "2026-08-01" || !first.Date.Equal(day("2026-08-01")) {
		t.Errorf("expected first summary for 2026-08-01, got %q", first.Key)
	}
	if first.TotalWasteKg != 30 {
		t.Errorf("expected 30 kg waste on day one, got %.3f", first.TotalWasteKg)
	}
	if first.MeanWastePct == nil || *first.MeanWastePct != 15 {
		// Unweighted mean of 10% and 20%.
		t.Errorf("expected mean 15%%, got %v", first.MeanWastePct)
	}
	if first.RecordCount != 2 {
		t.Errorf("expected 2 records on day one, got %d", first.RecordCount)
	}

	if summaries[1].Key != "2026-08-02" || summaries[1].TotalWasteKg != 1 {
		t.Errorf("unexpected second summary: %+v", summaries[1])
	}
}

func TestByTimeframe_WindowIsInclusive(t *testing.T) {
	summaries := ByTimeframe(sampleRecords(), day("2026-08-02"), day("2026-08-05"))
	if len(summaries) != 2 {
		t.Fatalf("expected both boundary days included, got %d summaries", len(summaries))
	}
	if summaries[0].Key != "2026-08-02" || summaries[1].Key != "2026-08-05" {
		t.Errorf("unexpected keys: %q, %q", summaries[0].Key, summaries[1].Key)
	}
}

func TestByOperator_SortsByTotalWasteDescending(t *testing.T) {
	summaries := ByOperator(sampleRecords())

	if len(summaries) != 2 {
		t.Fatalf("expected 2 operators, got %d", len(summaries))
	}
	if summaries[0].Key != "op-a" || summaries[0].TotalWasteKg != 30 {
		t.Errorf("expected op-a first with 30 kg, got %+v", summaries[0])
	}
	if summaries[1].Key != "op-b" || summaries[1].TotalWasteKg != 5 {
		t.Errorf("expected op-b second with 5 kg, got %+v", summaries[1])
	}
	if summaries[1].MeanWastePct == nil || *summaries[1].MeanWastePct != 6 {
		t.Errorf("expected op-b mean 6%%, got %v", summaries[1].MeanWastePct)
	}
}

func TestBySection(t *testing.T) {
	summaries := BySection(sampleRecords())
	if len(summaries) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(summaries))
	}
	if summaries[0].Key != "extrusion-1" || summaries[0].RecordCount != 2 {
		t.Errorf("unexpected leading section: %+v", summaries[0])
	}
}

func TestByCustomer(t *testing.T) {
	summaries := ByCustomer(sampleRecords())
	if len(summaries) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(summaries))
	}
	if summaries[0].Key != "Beta" || summaries[0].TotalWasteKg != 24 {
		t.Errorf("expected Beta first with 24 kg, got %+v", summaries[0])
	}
	if summaries[1].Key != "Acme" || summaries[1].TotalWasteKg != 11 {
		t.Errorf("expected Acme second with 11 kg, got %+v", summaries[1])
	}
}

func TestSummarize_SkipsNilPercentages(t *testing.T) {
	records := []models.WasteRecord{
		{OperatorID: "op-a", WasteKg: 5, WastePct: kg(10)},
		{OperatorID: "op-a", WasteKg: 3},
	}

	summaries := ByOperator(records)
	if len(summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(summaries))
	}
	if summaries[0].MeanWastePct == nil || *summaries[0].MeanWastePct != 10 {
		t.Errorf("mean must ignore records without a percentage, got %v", summaries[0].MeanWastePct)
	}
	if summaries[0].RecordCount != 2 {
		t.Errorf("record count must still include them, got %d", summaries[0].RecordCount)
	}
}
