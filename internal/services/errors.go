package services

import "errors"

// Recoverable, caller-visible errors. Handlers map these to HTTP status codes;
// none of them are fatal to the process.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateRequest  = errors.New("a live booking request already exists for this vendor and category")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrArrivalRequired   = errors.New("cannot record departure before arrival")
	ErrOverPayment       = errors.New("paid amount exceeds agreed amount")
	ErrPaymentDecrease   = errors.New("paid amount cannot decrease")
	ErrProofRequired     = errors.New("task completion requires a proof reference")
	ErrAssignmentLocked  = errors.New("assignment can only be deleted while requested")

	ErrInvalidTOTPCode = errors.New("invalid verification code")
	ErrNoTOTPSecret    = errors.New("2FA setup has not been started")
)
