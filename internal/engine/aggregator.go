package engine

import (
	"sort"
	"time"

	"github.com/plastimar/rolltrack/internal/domain/models"
)

const dayLayout = "2006-01-02"

// ByTimeframe filters records whose date falls inside [start, end] (inclusive)
// and produces one summary per calendar day, ordered by day.
func ByTimeframe(records []models.WasteRecord, start, end time.Time) []models.WasteSummary {
	var windowed []models.WasteRecord
	for _, record := range records {
		if record.Date.Before(start) || record.Date.After(end) {
			continue
		}
		windowed = append(windowed, record)
	}

	summaries := summarize(windowed, func(r models.WasteRecord) string {
		return r.Date.Format(dayLayout)
	})
	for i := range summaries {
		day, _ := time.Parse(dayLayout, summaries[i].Key)
		summaries[i].Date = day
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Key < summaries[j].Key })
	return summaries
}

// ByOperator groups waste records per operator, heaviest waste first.
func ByOperator(records []models.WasteRecord) []models.WasteSummary {
	return sortedByWaste(summarize(records, func(r models.WasteRecord) string { return r.OperatorID }))
}

// BySection groups waste records per production section, heaviest waste first.
func BySection(records []models.WasteRecord) []models.WasteSummary {
	return sortedByWaste(summarize(records, func(r models.WasteRecord) string { return r.Section }))
}

// ByCustomer groups waste records per customer, heaviest waste first.
func ByCustomer(records []models.WasteRecord) []models.WasteSummary {
	return sortedByWaste(summarize(records, func(r models.WasteRecord) string { return r.CustomerName }))
}

// summarize folds records into one summary per key. The waste percentage is the
// unweighted mean of the per-record percentages, preserved from the legacy
// reporting behavior; consumers wanting a weighted figure recompute it from the
// input/output totals.
func summarize(records []models.WasteRecord, keyOf func(models.WasteRecord) string) []models.WasteSummary {
	type bucket struct {
		summary  models.WasteSummary
		pctSum   float64
		pctCount int
	}

	buckets := make(map[string]*bucket)
	for _, record := range records {
		key := keyOf(record)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{summary: models.WasteSummary{Key: key}}
			buckets[key] = b
		}
		b.summary.TotalInputKg += record.InputKg
		b.summary.TotalOutputKg += record.OutputKg
		b.summary.TotalWasteKg += record.WasteKg
		b.summary.RecordCount++
		if record.WastePct != nil {
			b.pctSum += *record.WastePct
			b.pctCount++
		}
	}

	summaries := make([]models.WasteSummary, 0, len(buckets))
	for _, b := range buckets {
		if b.pctCount > 0 {
			mean := b.pctSum / float64(b.pctCount)
			b.summary.MeanWastePct = &mean
		}
		summaries = append(summaries, b.summary)
	}
	return summaries
}

func sortedByWaste(summaries []models.WasteSummary) []models.WasteSummary {
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalWasteKg != summaries[j].TotalWasteKg {
			return summaries[i].TotalWasteKg > summaries[j].TotalWasteKg
		}
		return summaries[i].Key < summaries[j].Key
	})
	return summaries
}
