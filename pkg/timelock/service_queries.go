package timelock

import "fmt"

// LocksOf returns the ids currently owned by owner, in current index order.
// Order is not creation order once any transfer has touched the index.
func (service *Service) LocksOf(owner Principal) []LockID {
	service.mu.Lock()
	defer service.mu.Unlock()
	return append([]LockID(nil), service.ownerIndex[owner]...)
}

// LocksFor returns every id ever created for token, in creation order. The
// token index is historical: transfers and withdrawals never prune it.
func (service *Service) LocksFor(token TokenID) []LockID {
	service.mu.Lock()
	defer service.mu.Unlock()
	return append([]LockID(nil), service.tokenIndex[token]...)
}

// GetLock returns the full record for an id, withdrawn locks included.
func (service *Service) GetLock(lockID LockID) (Lock, error) {
	service.mu.Lock()
	defer service.mu.Unlock()
	if uint64(lockID) >= uint64(len(service.locks)) {
		return Lock{}, fmt.Errorf("%w: lock %d", ErrNotFound, lockID)
	}
	return service.locks[lockID], nil
}

// LockedAmount sums the amounts of the owner's non-withdrawn locks for
// token. Zero for an owner or token with no matches; never fails.
func (service *Service) LockedAmount(owner Principal, token TokenID) Amount {
	service.mu.Lock()
	defer service.mu.Unlock()
	var total Amount
	for _, lockID := range service.ownerIndex[owner] {
		lock := service.locks[lockID]
		if lock.token == token && !lock.withdrawn {
			total += lock.amount.ToAmount()
		}
	}
	return total
}

// ActiveLocks returns the owner's locks that are neither withdrawn nor past
// their unlock time, preserving current index order. Sized in two passes so
// the result carries no excess capacity; the unlock instant itself is not
// active.
func (service *Service) ActiveLocks(owner Principal) []Lock {
	service.mu.Lock()
	defer service.mu.Unlock()
	nowUnixUTC := service.nowFn()
	count := 0
	for _, lockID := range service.ownerIndex[owner] {
		if service.lockActiveAt(lockID, nowUnixUTC) {
			count++
		}
	}
	active := make([]Lock, 0, count)
	for _, lockID := range service.ownerIndex[owner] {
		if service.lockActiveAt(lockID, nowUnixUTC) {
			active = append(active, service.locks[lockID])
		}
	}
	return active
}

func (service *Service) lockActiveAt(lockID LockID, nowUnixUTC int64) bool {
	lock := service.locks[lockID]
	return !lock.withdrawn && nowUnixUTC < lock.unlockUnixUTC
}

// LockFee returns the current creation fee.
func (service *Service) LockFee() Amount {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.lockFee
}

// AccruedFees returns the fee balance accumulated since the last sweep.
func (service *Service) AccruedFees() Amount {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.accruedFees
}
