package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrLedgerImbalance indicates that a line set does not balance per currency
// (sum of debits != sum of credits beyond tolerance).
var ErrLedgerImbalance = errors.New("ledger imbalance")

// ErrInsufficientLines indicates that a transaction was submitted with fewer than two lines.
var ErrInsufficientLines = errors.New("transaction must have at least two posting lines")

// ErrPartialWrite indicates the header insert succeeded but the line insert failed;
// the write has been rolled back and nothing was persisted.
var ErrPartialWrite = errors.New("partial write rolled back")

// ErrTransactionLocked indicates a mutation was attempted against a non-draft header.
var ErrTransactionLocked = errors.New("transaction is not in draft state")

// ErrMissingReason indicates a correction was requested without a reason.
var ErrMissingReason = errors.New("correction reason is required")

// ErrCorrectionUnsupported indicates the original transaction is not eligible for correction
// (mixed-payment or multi-currency origin).
var ErrCorrectionUnsupported = errors.New("transaction cannot be corrected")

// ErrInsufficientFunds indicates a wallet balance guard rejected a debit.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrDuplicateReference indicates a transaction with the same business reference
// was already recorded.
var ErrDuplicateReference = errors.New("duplicate transaction reference")
