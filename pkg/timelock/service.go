package timelock

import (
	"context"
	"fmt"
	"sync"
)

// Service owns the lock records, their derived indexes, and the fee
// configuration. Every mutation runs under a single mutex held for the whole
// operation, external debit/credit included; a failed adapter call rolls
// back any state flipped before it, so each operation is all-or-nothing.
type Service struct {
	mu     sync.Mutex
	tokens TokenAccount
	fees   FeeLedger
	admin  Principal
	nowFn  func() int64
	logger OperationLogger
	sink   EventSink

	locks       []Lock
	ownerIndex  map[Principal][]LockID
	tokenIndex  map[TokenID][]LockID
	lockFee     Amount
	accruedFees Amount
}

// NewService wires a Service.
func NewService(tokens TokenAccount, fees FeeLedger, admin Principal, now func() int64, options ...ServiceOption) (*Service, error) {
	if tokens == nil {
		return nil, fmt.Errorf("%w: token account dependency is nil", ErrInvalidServiceConfig)
	}
	if fees == nil {
		return nil, fmt.Errorf("%w: fee ledger dependency is nil", ErrInvalidServiceConfig)
	}
	if admin.IsZero() {
		return nil, fmt.Errorf("%w: administrator principal is empty", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{
		tokens:     tokens,
		fees:       fees,
		admin:      admin,
		nowFn:      now,
		ownerIndex: make(map[Principal][]LockID),
		tokenIndex: make(map[TokenID][]LockID),
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// CreateLock takes amount of token from the caller into custody until
// unlockUnixUTC, charging exactly the current lock fee. Returns the new
// lock's id. Preconditions are checked in order: unlock time, amount, fee,
// then the token debit; the first failure aborts with no state change.
func (service *Service) CreateLock(ctx context.Context, caller Principal, token TokenID, amount PositiveAmount, unlockUnixUTC int64, feePayment Amount) (LockID, error) {
	service.mu.Lock()
	lockID, operationError := service.createLockLocked(ctx, caller, token, amount, unlockUnixUTC, feePayment)
	service.mu.Unlock()
	logEntry := OperationLog{
		Operation: operationCreateLock,
		Caller:    caller,
		Token:     token,
		Amount:    amount.ToAmount(),
		Error:     operationError,
	}
	if operationError == nil {
		logEntry.LockID = &lockID
	}
	service.logOperation(ctx, logEntry)
	return lockID, operationError
}

func (service *Service) createLockLocked(ctx context.Context, caller Principal, token TokenID, amount PositiveAmount, unlockUnixUTC int64, feePayment Amount) (LockID, error) {
	if caller.IsZero() {
		return 0, fmt.Errorf("%w: empty caller", ErrInvalidPrincipal)
	}
	if token.IsZero() {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidTokenID)
	}
	if unlockUnixUTC <= service.nowFn() {
		return 0, fmt.Errorf("%w: unlock time must be in the future", ErrInvalidUnlockTime)
	}
	if amount.Int64() <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	// Strict equality: overpayment is rejected, not refunded.
	if feePayment != service.lockFee {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrIncorrectFee, service.lockFee.Int64(), feePayment.Int64())
	}
	if err := service.tokens.Debit(ctx, caller, token, amount); err != nil {
		return 0, fmt.Errorf("%w: debit: %v", ErrTransferFailed, err)
	}
	lockID := LockID(len(service.locks))
	lock, err := NewLock(lockID, token, caller, amount, unlockUnixUTC)
	if err != nil {
		return 0, err
	}
	service.locks = append(service.locks, lock)
	service.ownerIndex[caller] = append(service.ownerIndex[caller], lockID)
	service.tokenIndex[token] = append(service.tokenIndex[token], lockID)
	service.accruedFees += feePayment
	service.publish(ctx, LockedEvent{
		LockID:        lockID,
		Owner:         caller,
		Token:         token,
		Amount:        amount,
		UnlockUnixUTC: unlockUnixUTC,
		FeePaid:       feePayment,
	})
	return lockID, nil
}

// Withdraw releases the lock's custody back to its current owner once the
// unlock time has passed. The withdrawn flag is flipped before the external
// credit and rolled back if the credit fails.
func (service *Service) Withdraw(ctx context.Context, caller Principal, lockID LockID) error {
	service.mu.Lock()
	operationError := service.withdrawLocked(ctx, caller, lockID)
	service.mu.Unlock()
	service.logOperation(ctx, OperationLog{
		Operation: operationWithdraw,
		Caller:    caller,
		LockID:    &lockID,
		Error:     operationError,
	})
	return operationError
}

func (service *Service) withdrawLocked(ctx context.Context, caller Principal, lockID LockID) error {
	lock, err := service.lockByID(lockID)
	if err != nil {
		return err
	}
	if lock.owner != caller {
		return fmt.Errorf("%w: lock %d", ErrNotOwner, lockID)
	}
	if lock.withdrawn {
		return fmt.Errorf("%w: lock %d", ErrAlreadyWithdrawn, lockID)
	}
	if service.nowFn() < lock.unlockUnixUTC {
		return fmt.Errorf("%w: lock %d unlocks at %d", ErrStillLocked, lockID, lock.unlockUnixUTC)
	}
	// Flag first, funds second: the credit must never observe an
	// un-withdrawn lock.
	lock.withdrawn = true
	if err := service.tokens.Credit(ctx, caller, lock.token, lock.amount); err != nil {
		lock.withdrawn = false
		return fmt.Errorf("%w: credit: %v", ErrTransferFailed, err)
	}
	service.publish(ctx, WithdrawnEvent{LockID: lockID, Owner: caller})
	return nil
}

// Transfer reassigns the right to claim a lock to newOwner. No funds move.
// The previous owner's index entry is removed with swap-remove semantics, so
// index order is not preserved across transfers; a self-transfer still
// executes the remove-then-append and is a visible reordering.
func (service *Service) Transfer(ctx context.Context, caller Principal, lockID LockID, newOwner Principal) error {
	service.mu.Lock()
	operationError := service.transferLocked(ctx, caller, lockID, newOwner)
	service.mu.Unlock()
	service.logOperation(ctx, OperationLog{
		Operation: operationTransfer,
		Caller:    caller,
		LockID:    &lockID,
		Error:     operationError,
	})
	return operationError
}

func (service *Service) transferLocked(ctx context.Context, caller Principal, lockID LockID, newOwner Principal) error {
	if newOwner.IsZero() {
		return fmt.Errorf("%w: new owner is empty", ErrZeroAddress)
	}
	lock, err := service.lockByID(lockID)
	if err != nil {
		return err
	}
	if lock.owner != caller {
		return fmt.Errorf("%w: lock %d", ErrNotOwner, lockID)
	}
	if lock.withdrawn {
		return fmt.Errorf("%w: lock %d", ErrAlreadyWithdrawn, lockID)
	}
	previousOwner := lock.owner
	lock.owner = newOwner
	service.ownerIndex[previousOwner] = swapRemoveLockID(service.ownerIndex[previousOwner], lockID)
	service.ownerIndex[newOwner] = append(service.ownerIndex[newOwner], lockID)
	service.publish(ctx, LockTransferredEvent{
		LockID:        lockID,
		PreviousOwner: previousOwner,
		NewOwner:      newOwner,
	})
	return nil
}

func (service *Service) lockByID(lockID LockID) (*Lock, error) {
	if uint64(lockID) >= uint64(len(service.locks)) {
		return nil, fmt.Errorf("%w: lock %d", ErrNotFound, lockID)
	}
	return &service.locks[lockID], nil
}

// swapRemoveLockID removes target by overwriting its slot with the last
// element and shrinking by one. O(1), order-destroying.
func swapRemoveLockID(ids []LockID, target LockID) []LockID {
	for position, candidate := range ids {
		if candidate == target {
			ids[position] = ids[len(ids)-1]
			return ids[:len(ids)-1]
		}
	}
	return ids
}
