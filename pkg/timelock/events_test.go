package timelock

import (
	"context"
	"errors"
	"testing"
)

type recorderSink struct {
	events []Event
}

func (sink *recorderSink) Publish(_ context.Context, event Event) {
	sink.events = append(sink.events, event)
}

func TestEventsPublishedInOperationOrder(test *testing.T) {
	test.Parallel()
	sink := &recorderSink{}
	fixture := newFixture(test, WithLockFee(mustAmount(test, 5)), WithEventSink(sink))
	owner := mustPrincipal(test, "alice")
	recipient := mustPrincipal(test, "bob")
	token := mustTokenID(test, "gold")
	unlockUnixUTC := fixture.clock.now + 60

	lockID, err := fixture.service.CreateLock(context.Background(), owner, token, mustPositiveAmount(test, 100), unlockUnixUTC, mustAmount(test, 5))
	if err != nil {
		test.Fatalf("create lock: %v", err)
	}
	if err := fixture.service.Transfer(context.Background(), owner, lockID, recipient); err != nil {
		test.Fatalf("transfer: %v", err)
	}
	if err := fixture.service.SetFee(context.Background(), fixture.admin, mustAmount(test, 9)); err != nil {
		test.Fatalf("set fee: %v", err)
	}
	fixture.clock.now = unlockUnixUTC
	if err := fixture.service.Withdraw(context.Background(), recipient, lockID); err != nil {
		test.Fatalf("withdraw: %v", err)
	}
	if _, err := fixture.service.SweepFees(context.Background(), fixture.admin); err != nil {
		test.Fatalf("sweep fees: %v", err)
	}

	names := make([]string, 0, len(sink.events))
	for _, event := range sink.events {
		names = append(names, event.EventName())
	}
	expected := []string{"locked", "lock_transferred", "fee_updated", "withdrawn", "fees_swept"}
	if len(names) != len(expected) {
		test.Fatalf("expected %d events, got %v", len(expected), names)
	}
	for position, name := range expected {
		if names[position] != name {
			test.Fatalf("expected event %q at %d, got %v", name, position, names)
		}
	}

	locked, ok := sink.events[0].(LockedEvent)
	if !ok {
		test.Fatalf("expected LockedEvent, got %T", sink.events[0])
	}
	if locked.LockID != lockID || locked.Owner != owner || locked.Token != token || locked.Amount != 100 || locked.UnlockUnixUTC != unlockUnixUTC || locked.FeePaid != 5 {
		test.Fatalf("unexpected locked event: %+v", locked)
	}

	transferred, ok := sink.events[1].(LockTransferredEvent)
	if !ok {
		test.Fatalf("expected LockTransferredEvent, got %T", sink.events[1])
	}
	if transferred.LockID != lockID || transferred.PreviousOwner != owner || transferred.NewOwner != recipient {
		test.Fatalf("unexpected transfer event: %+v", transferred)
	}

	feeUpdated, ok := sink.events[2].(FeeUpdatedEvent)
	if !ok {
		test.Fatalf("expected FeeUpdatedEvent, got %T", sink.events[2])
	}
	if feeUpdated.OldFee != 5 || feeUpdated.NewFee != 9 {
		test.Fatalf("unexpected fee event: %+v", feeUpdated)
	}

	withdrawn, ok := sink.events[3].(WithdrawnEvent)
	if !ok {
		test.Fatalf("expected WithdrawnEvent, got %T", sink.events[3])
	}
	if withdrawn.LockID != lockID || withdrawn.Owner != recipient {
		test.Fatalf("unexpected withdrawn event: %+v", withdrawn)
	}

	swept, ok := sink.events[4].(FeesSweptEvent)
	if !ok {
		test.Fatalf("expected FeesSweptEvent, got %T", sink.events[4])
	}
	if swept.Amount != 5 || swept.Recipient != fixture.admin {
		test.Fatalf("unexpected sweep event: %+v", swept)
	}
}

func TestFailedOperationsPublishNoEvents(test *testing.T) {
	test.Parallel()
	sink := &recorderSink{}
	fixture := newFixture(test, WithLockFee(mustAmount(test, 5)), WithEventSink(sink))
	owner := mustPrincipal(test, "alice")
	token := mustTokenID(test, "gold")

	if _, err := fixture.service.CreateLock(context.Background(), owner, token, mustPositiveAmount(test, 10), fixture.clock.now+60, mustAmount(test, 1)); !errors.Is(err, ErrIncorrectFee) {
		test.Fatalf("expected ErrIncorrectFee, got %v", err)
	}
	if err := fixture.service.Withdraw(context.Background(), owner, LockID(0)); !errors.Is(err, ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(sink.events) != 0 {
		test.Fatalf("expected no events for failed operations, got %d", len(sink.events))
	}
}
