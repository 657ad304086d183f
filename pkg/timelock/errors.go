package timelock

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the lock ledger service.
var (
	ErrInvalidUnlockTime    = errors.New("invalid unlock time")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrIncorrectFee         = errors.New("incorrect fee")
	ErrTransferFailed       = errors.New("transfer failed")
	ErrNotFound             = errors.New("lock not found")
	ErrNotOwner             = errors.New("caller is not the lock owner")
	ErrAlreadyWithdrawn     = errors.New("lock already withdrawn")
	ErrStillLocked          = errors.New("lock is still locked")
	ErrZeroAddress          = errors.New("zero address")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNoFeesToSweep        = errors.New("no fees to sweep")
	ErrInvalidPrincipal     = errors.New("invalid principal")
	ErrInvalidTokenID       = errors.New("invalid token id")
	ErrInvalidLockFee       = errors.New("invalid lock fee")
	ErrInvalidServiceConfig = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
