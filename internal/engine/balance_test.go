package engine

import (
	"testing"

	"github.com/plastimar/rolltrack/internal/domain/models"
)

func TestRemainingBalance(t *testing.T) {
	order := models.JobOrder{ID: "JO-1042", TargetKg: 100}

	testCases := []struct {
		name      string
		rolls     []models.Roll
		excludeID string
		want      float64
	}{
		{
			name: "no existing rolls",
			want: 100,
		},
		{
			name: "fully drawn",
			rolls: []models.Roll{
				{ID: "r1", ExtrusionKg: kg(100), Status: models.StatusAwaitingCutting},
			},
			want: 0,
		},
		{
			name: "partially drawn across rolls",
			rolls: []models.Roll{
				{ID: "r1", ExtrusionKg: kg(40), Status: models.StatusAwaitingCutting},
				{ID: "r2", ExtrusionKg: kg(35), Status: models.StatusReceived},
			},
			want: 25,
		},
		{
			name: "damaged rolls do not draw",
			rolls: []models.Roll{
				{ID: "r1", ExtrusionKg: kg(60), Status: models.StatusDamaged},
				{ID: "r2", ExtrusionKg: kg(30), Status: models.StatusAwaitingCutting},
			},
			want: 70,
		},
		{
			name: "excluded roll does not count against itself",
			rolls: []models.Roll{
				{ID: "r1", ExtrusionKg: kg(80), Status: models.StatusAwaitingCutting},
				{ID: "r2", ExtrusionKg: kg(15), Status: models.StatusAwaitingCutting},
			},
			excludeID: "r1",
			want:      85,
		},
		{
			name: "overdrawn floors at zero",
			rolls: []models.Roll{
				{ID: "r1", ExtrusionKg: kg(120), Status: models.StatusAwaitingCutting},
			},
			want: 0,
		},
		{
			name: "rolls without extrusion yet do not draw",
			rolls: []models.Roll{
				{ID: "r1", Status: models.StatusAwaitingExtrusion},
				{ID: "r2", ExtrusionKg: kg(10), Status: models.StatusAwaitingCutting},
			},
			want: 90,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := RemainingBalance(order, tc.rolls, tc.excludeID)
			if got != tc.want {
				t.Errorf("expected remaining balance %.3f, got %.3f", tc.want, got)
			}
		})
	}
}

func TestRemainingBalance_NeverGoesNegativeAfterDraw(t *testing.T) {
	order := models.JobOrder{ID: "JO-7", TargetKg: 100}
	rolls := []models.Roll{}

	for i, draw := range []float64{40, 35, 25} {
		remaining := RemainingBalance(order, rolls, "")
		if draw > remaining {
			t.Fatalf("draw %d of %.3f exceeds remaining %.3f", i, draw, remaining)
		}
		rolls = append(rolls, models.Roll{ID: string(rune('a' + i)), ExtrusionKg: kg(draw), Status: models.StatusAwaitingCutting})
	}

	if got := RemainingBalance(order, rolls, ""); got != 0 {
		t.Errorf("expected balance 0 after drawing the full target, got %.3f", got)
	}
}
