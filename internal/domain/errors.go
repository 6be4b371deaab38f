package domain

import "errors"

var (
	ErrValidation             = errors.New("invalid or missing terms")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrAlreadySigned          = errors.New("contract already signed")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrExceedsBalance         = errors.New("amount exceeds remaining escrow balance")
	ErrHoldClosed             = errors.New("escrow hold closed")
)
