package timelock

import "context"

// Event is one record of the ledger's ordered, externally observable log.
// Events are published only for successful operations, in operation order.
type Event interface {
	EventName() string
}

// EventSink receives every published event. Implementations must not block
// the ledger; publishing happens while the operation is still serialized.
type EventSink interface {
	Publish(ctx context.Context, event Event)
}

// LockedEvent records a successful lock creation.
type LockedEvent struct {
	LockID        LockID
	Owner         Principal
	Token         TokenID
	Amount        PositiveAmount
	UnlockUnixUTC int64
	FeePaid       Amount
}

// EventName returns the stable event name.
func (LockedEvent) EventName() string { return "locked" }

// WithdrawnEvent records a successful withdrawal.
type WithdrawnEvent struct {
	LockID LockID
	Owner  Principal
}

// EventName returns the stable event name.
func (WithdrawnEvent) EventName() string { return "withdrawn" }

// LockTransferredEvent records a change of lock ownership.
type LockTransferredEvent struct {
	LockID        LockID
	PreviousOwner Principal
	NewOwner      Principal
}

// EventName returns the stable event name.
func (LockTransferredEvent) EventName() string { return "lock_transferred" }

// FeeUpdatedEvent records an administrator fee change.
type FeeUpdatedEvent struct {
	OldFee Amount
	NewFee Amount
}

// EventName returns the stable event name.
func (FeeUpdatedEvent) EventName() string { return "fee_updated" }

// FeesSweptEvent records an administrator sweep of accrued fees.
type FeesSweptEvent struct {
	Amount    Amount
	Recipient Principal
}

// EventName returns the stable event name.
func (FeesSweptEvent) EventName() string { return "fees_swept" }

// WithEventSink wires a sink that receives every published event.
func WithEventSink(sink EventSink) ServiceOption {
	return func(service *Service) {
		service.sink = sink
	}
}

func (service *Service) publish(ctx context.Context, event Event) {
	if service.sink == nil {
		return
	}
	service.sink.Publish(ctx, event)
}
