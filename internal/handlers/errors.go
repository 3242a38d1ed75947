package handlers

import (
	"errors"
	"net/http"

	"utsav-backend/internal/services"
	"utsav-backend/pkg/utils"
)

// statusForError maps service sentinels to HTTP status codes.
// Unknown errors are treated as internal.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateRequest),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrAssignmentLocked):
		return http.StatusConflict
	case errors.Is(err, services.ErrOverPayment),
		errors.Is(err, services.ErrPaymentDecrease),
		errors.Is(err, services.ErrArrivalRequired),
		errors.Is(err, services.ErrProofRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidTOTPCode),
		errors.Is(err, services.ErrNoTOTPSecret):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func serviceError(w http.ResponseWriter, err error) {
	utils.Error(w, statusForError(err), err.Error())
}
