package timelock

import (
	"context"
	"errors"
	"testing"
)

type recorderLogger struct {
	entries []OperationLog
}

func (logger *recorderLogger) LogOperation(_ context.Context, entry OperationLog) {
	logger.entries = append(logger.entries, entry)
}

func TestServiceLogsCreateLockOperation(test *testing.T) {
	test.Parallel()
	logger := &recorderLogger{}
	fixture := newFixture(test, WithOperationLogger(logger))
	owner := mustPrincipal(test, "alice")
	token := mustTokenID(test, "gold")

	lockID, err := fixture.service.CreateLock(context.Background(), owner, token, mustPositiveAmount(test, 100), fixture.clock.now+60, 0)
	if err != nil {
		test.Fatalf("create lock: %v", err)
	}
	if len(logger.entries) != 1 {
		test.Fatalf("expected one log entry, got %d", len(logger.entries))
	}
	entry := logger.entries[0]
	if entry.Operation != operationCreateLock || entry.Caller != owner || entry.Token != token || entry.Amount != 100 {
		test.Fatalf("unexpected log entry: %+v", entry)
	}
	if entry.LockID == nil || *entry.LockID != lockID {
		test.Fatalf("expected lock id %d in log entry, got %+v", lockID, entry.LockID)
	}
	if entry.Error != nil || entry.Status != operationStatusOK {
		test.Fatalf("expected successful log entry, got %+v", entry)
	}
}

func TestServiceLogsErrorStatus(test *testing.T) {
	test.Parallel()
	logger := &recorderLogger{}
	fixture := newFixture(test, WithOperationLogger(logger))
	owner := mustPrincipal(test, "alice")

	err := fixture.service.Withdraw(context.Background(), owner, LockID(7))
	if !errors.Is(err, ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(logger.entries) != 1 {
		test.Fatalf("expected one log entry, got %d", len(logger.entries))
	}
	entry := logger.entries[0]
	if entry.Status != operationStatusError || entry.Error == nil {
		test.Fatalf("expected error log entry, got %+v", entry)
	}
	if entry.Operation != operationWithdraw || entry.LockID == nil || *entry.LockID != 7 {
		test.Fatalf("unexpected log entry: %+v", entry)
	}
}
