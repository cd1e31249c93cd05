package schedule

import "errors"

// Validation errors are programmer mistakes: invalid offsets, invalid
// types, or operations against the wrong scheduler. They surface
// immediately rather than being retried or swallowed.
// ErrInvalidOffset is not returned by any function in this module:
// Schedule/Reschedule/Advance take schedule.Tick, an unsigned type, so a
// negative offset cannot reach the scheduler API, and internal/httpapi
// rejects a negative JSON tick_offset as a malformed request body.
var (
	ErrInvalidOffset = errors.New("schedule: tick_offset must be non-negative")
	ErrInvalidType   = errors.New("schedule: external events may only be created through the external gate")
	ErrForeignHandle = errors.New("schedule: handle does not belong to this scheduler")
	ErrStaleHandle   = errors.New("schedule: handle refers to an event that has already fired or was cancelled")
	ErrGateIssued    = errors.New("schedule: exclusive external gate already issued")
)
