package domain

import "errors"

// Sentinel errors shared across services and repositories. Controllers map
// each one to a stable API reason code, so callers can assert on cause.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor lacks authority for the
	// requested action (wrong role, or acting on someone else's talk).
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned for malformed input, e.g. a slot whose
	// start time is not before its end time, or a rating outside 1-5.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned on uniqueness or overlap violations: a slot
	// already holding a different talk, a talk already scheduled elsewhere,
	// overlapping slots in the same track and date, or a duplicate label name.
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition is returned when the requested talk state change
	// is not an edge of the lifecycle transition table.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrTalkNotAccepted is returned when an operation requires the talk to
	// be in the accepted state, e.g. assigning it to a schedule slot.
	ErrTalkNotAccepted = errors.New("talk is not accepted")
)
