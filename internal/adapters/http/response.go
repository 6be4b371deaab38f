package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/workgrid/contract-engine/internal/contracts"
	"github.com/workgrid/contract-engine/internal/domain"
)

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(contracts.SuccessResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(contracts.ErrorResponse{
		Status: "error",
		Error: contracts.ErrorPayload{
			Code:      code,
			Message:   err.Error(),
			RequestID: requestIDFrom(r.Context()),
		},
	})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(contracts.ErrorResponse{
		Status: "error",
		Error: contracts.ErrorPayload{
			Code:      "validation_error",
			Message:   message,
			RequestID: requestIDFrom(r.Context()),
		},
	})
}

// mapDomainError translates the domain error taxonomy into transport codes.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrAlreadySigned):
		return http.StatusConflict, "already_signed"
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict, "invalid_state_transition"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient_funds"
	case errors.Is(err, domain.ErrExceedsBalance):
		return http.StatusUnprocessableEntity, "exceeds_escrow_balance"
	case errors.Is(err, domain.ErrHoldClosed):
		return http.StatusConflict, "escrow_hold_closed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
