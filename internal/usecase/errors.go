package usecase

import "errors"

// Domain error kinds. Services wrap these with %w and the HTTP layer maps
// them with errors.Is; none of them should ever crash the process.
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrSameWallet          = errors.New("source and destination wallets must differ")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrScheduleNotFound    = errors.New("schedule not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotTypeNotFound    = errors.New("slot type not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrScheduleUnavailable = errors.New("schedule not available")
	ErrMissingDesiredTime  = errors.New("desired time required for flexible schedule")
	ErrDuplicateMainWallet = errors.New("main wallet already exists for user")
	ErrWalletOwnership     = errors.New("wallet does not belong to user")
	ErrForbidden           = errors.New("operation not allowed")
	ErrBusy                = errors.New("resource busy, retry the operation")
)
