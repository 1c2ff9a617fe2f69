package domain

import "errors"

var (
	// ErrValidation is returned for malformed create/record input; the caller's fault, no retry.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound is returned when a quiz identifier is unknown; the caller must re-create.
	ErrNotFound = errors.New("quiz not found")
	// ErrAlreadyGraded is returned for replayed submissions so clients can show
	// "already submitted" instead of a generic failure.
	ErrAlreadyGraded = errors.New("quiz already graded")
	// ErrExpired is returned when a quiz sat unsubmitted past the expiry window.
	ErrExpired = errors.New("quiz expired")
	// ErrMalformedSubmission is returned when the answer vector does not line up
	// with the question set (wrong length, unanswered or out-of-range entries).
	ErrMalformedSubmission = errors.New("malformed submission")
	// ErrGenerationInvalid is returned when the upstream content supplier keeps
	// producing unusable questions after a retry.
	ErrGenerationInvalid = errors.New("question generation returned invalid data")
	// ErrStorage is returned when the set store or ledger is unavailable. No
	// partial state is left behind: "graded" always implies "recorded".
	ErrStorage = errors.New("storage unavailable")
)
