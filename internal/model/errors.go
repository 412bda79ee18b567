package model

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes; services wrap them with context via fmt.Errorf + %w.
var (
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrUnauthorizedApproval = errors.New("role not authorized to approve")
	ErrIncompatibleUnit     = errors.New("incompatible unit conversion")
	ErrMissingEntity        = errors.New("referenced entity not found")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrShiftRequired        = errors.New("no open shift for this outlet")
	ErrCustomerRequired     = errors.New("debt payment requires a customer")
)
