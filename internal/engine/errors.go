// Package engine implements the roll production workflow: stage quantity
// recording, job-order balance tracking, the roll state machine and waste
// accounting. It is a pure computation library; persistence, authorization and
// transport live with the caller.
package engine

import "errors"

// ErrInvalidQuantity indicates a negative stage quantity.
var ErrInvalidQuantity = errors.New("invalid quantity")

// ErrStageAlreadyRecorded indicates a re-entry for a stage that already holds a
// quantity, without an explicit overwrite.
var ErrStageAlreadyRecorded = errors.New("stage already recorded")

// ErrExceedsUpstream indicates a stage output larger than the quantity
// available from the prior stage.
var ErrExceedsUpstream = errors.New("quantity exceeds upstream stage")

// ErrExceedsJobOrderBalance indicates an extrusion that would overdraw the job
// order target.
var ErrExceedsJobOrderBalance = errors.New("quantity exceeds job order balance")

// ErrInvalidTransition indicates a command that is not legal from the roll's
// current state.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrDataIntegrity indicates an internal inconsistency, such as a roll
// referencing a job order that does not exist. Operations must halt on it
// rather than guess a default.
var ErrDataIntegrity = errors.New("data integrity error")
