package engine

import (
	"fmt"
	"strings"

	"github.com/plastimar/rolltrack/internal/domain/models"
)

// Command is an operator-driven workflow command.
type Command string

const (
	CmdRecordExtrusion Command = "record_extrusion"
	CmdRecordPrinting  Command = "record_printing"
	CmdRecordCutting   Command = "record_cutting"
	CmdReceive         Command = "receive"
)

// transitions is the explicit table of legal (state, command) pairs. Anything
// absent here fails with ErrInvalidTransition; there are no silent no-ops.
var transitions = map[models.RollStatus]map[Command]bool{
	models.StatusAwaitingExtrusion: {
		CmdRecordExtrusion: true,
	},
	models.StatusAwaitingPrinting: {
		CmdRecordPrinting: true,
		// Cutting is reachable here only when printing data already exists;
		// recovers out-of-order entry. Guarded in RecordCutting.
		CmdRecordCutting: true,
	},
	models.StatusAwaitingCutting: {
		CmdRecordCutting: true,
	},
	models.StatusAwaitingReceiving: {
		CmdReceive: true,
	},
	models.StatusQualityIssue: {
		CmdRecordPrinting: true,
		CmdRecordCutting:  true,
	},
}

// statusOverrides lists the operator-selectable resulting states per command,
// besides the default.
var statusOverrides = map[Command]map[models.RollStatus]bool{
	CmdRecordExtrusion: {
		models.StatusDamaged: true,
	},
	CmdRecordPrinting: {
		models.StatusAwaitingReceiving: true,
		models.StatusDamaged:           true,
	},
	CmdRecordCutting: {
		models.StatusDamaged:      true,
		models.StatusQualityIssue: true,
	},
}

// StageInput carries an operator's stage recording.
type StageInput struct {
	QuantityKg float64
	Overwrite  bool
	// NextStatus optionally overrides the default resulting state, e.g. an
	// operator marking the roll damaged. Empty selects the default.
	NextStatus models.RollStatus
}

// TransitionResult reports the side effects of a successful command.
type TransitionResult struct {
	StageWasteKg      *float64
	CumulativeWasteKg *float64
	Warnings          []string
}

func checkTransition(status models.RollStatus, cmd Command) error {
	if !transitions[status][cmd] {
		return fmt.Errorf("%w: command %s is not allowed from state %s", ErrInvalidTransition, cmd, status)
	}
	return nil
}

func resolveNextStatus(cmd Command, requested, fallback models.RollStatus) (models.RollStatus, error) {
	if requested == "" || requested == fallback {
		return fallback, nil
	}
	if !statusOverrides[cmd][requested] {
		return "", fmt.Errorf("%w: status override %s is not allowed for %s", ErrInvalidTransition, requested, cmd)
	}
	return requested, nil
}

func zeroQuantityWarning(stage models.Stage, quantityKg float64) []string {
	// A zero output is a legitimate total-loss recording; flag it, never
	// block it.
	if quantityKg == 0 {
		return []string{fmt.Sprintf("zero quantity recorded for %s", stage)}
	}
	return nil
}

// RecordExtrusion records the measured extrusion output of a new roll. The
// quantity is capped by the job order's remaining balance computed over the
// sibling rolls; the roll then awaits printing or cutting depending on the job
// order.
func RecordExtrusion(roll *models.Roll, order models.JobOrder, siblings []models.Roll, in StageInput) (*TransitionResult, error) {
	if err := checkTransition(roll.Status, CmdRecordExtrusion); err != nil {
		return nil, err
	}

	remaining := RemainingBalance(order, siblings, roll.ID)
	if in.QuantityKg > remaining {
		return nil, fmt.Errorf("%w: %.3f kg requested, %.3f kg remaining on job order %s",
			ErrExceedsJobOrderBalance, in.QuantityKg, remaining, order.ID)
	}

	if err := RecordStage(roll, models.StageExtrusion, in.QuantityKg, in.Overwrite); err != nil {
		return nil, err
	}

	fallback := models.StatusAwaitingCutting
	if order.RequiresPrinting {
		fallback = models.StatusAwaitingPrinting
	}
	next, err := resolveNextStatus(CmdRecordExtrusion, in.NextStatus, fallback)
	if err != nil {
		return nil, err
	}
	roll.Status = next

	return &TransitionResult{Warnings: zeroQuantityWarning(models.StageExtrusion, in.QuantityKg)}, nil
}

// RecordPrinting records the printing output and the waste of the extrusion →
// printing transition.
func RecordPrinting(roll *models.Roll, in StageInput) (*TransitionResult, error) {
	if err := checkTransition(roll.Status, CmdRecordPrinting); err != nil {
		return nil, err
	}

	if err := RecordStage(roll, models.StagePrinting, in.QuantityKg, in.Overwrite); err != nil {
		return nil, err
	}

	next, err := resolveNextStatus(CmdRecordPrinting, in.NextStatus, models.StatusAwaitingCutting)
	if err != nil {
		return nil, err
	}
	roll.Status = next

	return &TransitionResult{
		StageWasteKg: StageWaste(roll.ExtrusionKg, roll.PrintingKg),
		Warnings:     zeroQuantityWarning(models.StagePrinting, in.QuantityKg),
	}, nil
}

// RecordCutting records the cutting output plus the stage and cumulative waste.
// From awaiting_printing it is legal only when printing data is already
// present, which recovers out-of-order entry.
func RecordCutting(roll *models.Roll, in StageInput) (*TransitionResult, error) {
	if err := checkTransition(roll.Status, CmdRecordCutting); err != nil {
		return nil, err
	}
	if roll.Status == models.StatusAwaitingPrinting && roll.PrintingKg == nil {
		return nil, fmt.Errorf("%w: command %s requires printing data in state %s",
			ErrInvalidTransition, CmdRecordCutting, roll.Status)
	}

	upstream := upstreamOf(roll, models.StageCutting)
	if err := RecordStage(roll, models.StageCutting, in.QuantityKg, in.Overwrite); err != nil {
		return nil, err
	}

	next, err := resolveNextStatus(CmdRecordCutting, in.NextStatus, models.StatusAwaitingReceiving)
	if err != nil {
		return nil, err
	}
	roll.Status = next

	var stageWaste *float64
	if upstream != nil {
		stageWaste = StageWaste(&upstream.QuantityKg, roll.CuttingKg)
	}

	return &TransitionResult{
		StageWasteKg:      stageWaste,
		CumulativeWasteKg: RollCumulativeWaste(roll),
		Warnings:          zeroQuantityWarning(models.StageCutting, in.QuantityKg),
	}, nil
}

// Receive moves a roll into its terminal received state, appending optional
// receipt notes.
func Receive(roll *models.Roll, notes string) (*TransitionResult, error) {
	if err := checkTransition(roll.Status, CmdReceive); err != nil {
		return nil, err
	}

	if notes != "" {
		if roll.Notes != "" {
			roll.Notes += "\n"
		}
		roll.Notes += strings.TrimSpace(notes)
	}
	roll.Status = models.StatusReceived

	return &TransitionResult{CumulativeWasteKg: RollCumulativeWaste(roll)}, nil
}
