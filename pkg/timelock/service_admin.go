package timelock

import (
	"context"
	"fmt"
)

// SetFee replaces the lock creation fee. Administrator only. Zero and
// arbitrarily large fees are both legal; the change affects only future
// creations.
func (service *Service) SetFee(ctx context.Context, caller Principal, newFee Amount) error {
	service.mu.Lock()
	operationError := service.setFeeLocked(ctx, caller, newFee)
	service.mu.Unlock()
	service.logOperation(ctx, OperationLog{
		Operation: operationSetFee,
		Caller:    caller,
		Amount:    newFee,
		Error:     operationError,
	})
	return operationError
}

func (service *Service) setFeeLocked(ctx context.Context, caller Principal, newFee Amount) error {
	if caller != service.admin {
		return fmt.Errorf("%w: set_fee requires the administrator", ErrUnauthorized)
	}
	if newFee.Int64() < 0 {
		return fmt.Errorf("%w: must not be negative", ErrInvalidLockFee)
	}
	oldFee := service.lockFee
	service.lockFee = newFee
	service.publish(ctx, FeeUpdatedEvent{OldFee: oldFee, NewFee: newFee})
	return nil
}

// SweepFees transfers the entire accrued fee balance to the administrator
// and resets it to zero. A failed payout leaves the balance intact.
func (service *Service) SweepFees(ctx context.Context, caller Principal) (Amount, error) {
	service.mu.Lock()
	swept, operationError := service.sweepFeesLocked(ctx, caller)
	service.mu.Unlock()
	service.logOperation(ctx, OperationLog{
		Operation: operationSweepFees,
		Caller:    caller,
		Amount:    swept,
		Error:     operationError,
	})
	return swept, operationError
}

func (service *Service) sweepFeesLocked(ctx context.Context, caller Principal) (Amount, error) {
	if caller != service.admin {
		return 0, fmt.Errorf("%w: sweep_fees requires the administrator", ErrUnauthorized)
	}
	balance := service.accruedFees
	if balance.Int64() == 0 {
		return 0, ErrNoFeesToSweep
	}
	if err := service.fees.Credit(ctx, service.admin, balance); err != nil {
		return 0, fmt.Errorf("%w: fee payout: %v", ErrTransferFailed, err)
	}
	service.accruedFees = 0
	service.publish(ctx, FeesSweptEvent{Amount: balance, Recipient: service.admin})
	return balance, nil
}
