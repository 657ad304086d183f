package timelock

import (
	"errors"
	"testing"
)

const (
	operationName    = "ledger"
	subjectName      = "lock"
	codeName         = "invalid"
	baseErrorMessage = "base error"
)

func TestOperationErrorFormatting(test *testing.T) {
	test.Parallel()
	baseError := errors.New(baseErrorMessage)
	wrappedError := WrapError(operationName, subjectName, codeName, baseError)
	if wrappedError == nil {
		test.Fatalf("expected wrapped error")
	}
	expected := operationName + "." + subjectName + "." + codeName + ": " + baseErrorMessage
	if wrappedError.Error() != expected {
		test.Fatalf("expected %q, got %q", expected, wrappedError.Error())
	}
}

func TestOperationErrorSegments(test *testing.T) {
	test.Parallel()
	wrappedError := WrapError(operationName, subjectName, codeName, errors.New(baseErrorMessage))
	var operationError OperationError
	if !errors.As(wrappedError, &operationError) {
		test.Fatalf("expected OperationError, got %T", wrappedError)
	}
	if operationError.Operation() != operationName || operationError.Subject() != subjectName || operationError.Code() != codeName {
		test.Fatalf("unexpected segments: %+v", operationError)
	}
}

func TestWrapErrorNil(test *testing.T) {
	test.Parallel()
	if WrapError(operationName, subjectName, codeName, nil) != nil {
		test.Fatalf("expected nil wrapped error")
	}
}
