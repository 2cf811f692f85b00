package engine

import "github.com/plastimar/rolltrack/internal/domain/models"

// RemainingBalance computes how much extrusion quantity may still be drawn
// against the job order: target minus the extrusion already recorded by its
// rolls, floored at zero. Damaged rolls do not count against the target.
//
// excludeRollID supports in-place edits: when revising a roll's own extrusion
// quantity its prior contribution must not count against itself. Pass "" when
// not editing.
func RemainingBalance(order models.JobOrder, rolls []models.Roll, excludeRollID string) float64 {
	var drawn float64
	for i := range rolls {
		roll := &rolls[i]
		if roll.ID == excludeRollID || roll.Status == models.StatusDamaged {
			continue
		}
		if roll.ExtrusionKg != nil {
			drawn += *roll.ExtrusionKg
		}
	}

	if remaining := order.TargetKg - drawn; remaining > 0 {
		return remaining
	}
	return 0
}
