package timelock

import (
	"context"
	"fmt"
	"strings"
)

// LockID identifies a lock. Ids are dense, zero-based, and assigned in
// creation order; an id is never reused.
type LockID uint64

// Amount is a non-negative token or fee quantity in base units.
type Amount int64

// PositiveAmount is an Amount known to be strictly positive.
type PositiveAmount int64

// Principal identifies an authenticated caller able to own locks or act as
// administrator.
type Principal struct {
	value string
}

// TokenID identifies the asset type held by a lock. Opaque to the ledger.
type TokenID struct {
	value string
}

// NewPrincipal validates and normalizes a principal.
func NewPrincipal(raw string) (Principal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Principal{}, fmt.Errorf("%w: empty value", ErrInvalidPrincipal)
	}
	return Principal{value: trimmed}, nil
}

// String returns the normalized identifier.
func (principal Principal) String() string {
	return principal.value
}

// IsZero reports whether the principal is the null principal.
func (principal Principal) IsZero() bool {
	return principal.value == ""
}

// NewTokenID validates and normalizes a token id.
func NewTokenID(raw string) (TokenID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TokenID{}, fmt.Errorf("%w: empty value", ErrInvalidTokenID)
	}
	return TokenID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (token TokenID) String() string {
	return token.value
}

// IsZero reports whether the token id is unset.
func (token TokenID) IsZero() bool {
	return token.value == ""
}

// NewAmount validates a non-negative amount.
func NewAmount(raw int64) (Amount, error) {
	if raw < 0 {
		return 0, fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	}
	return Amount(raw), nil
}

// Int64 returns the raw amount.
func (amount Amount) Int64() int64 {
	return int64(amount)
}

// NewPositiveAmount validates an amount and ensures it is strictly positive.
func NewPositiveAmount(raw int64) (PositiveAmount, error) {
	if raw <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return PositiveAmount(raw), nil
}

// ToAmount widens a positive amount.
func (amount PositiveAmount) ToAmount() Amount {
	return Amount(amount)
}

// Int64 returns the raw amount.
func (amount PositiveAmount) Int64() int64 {
	return int64(amount)
}

// Lock is the sole persistent entity of the ledger: a custody record pairing
// a token quantity with an owner and an unlock time. Amount and unlock time
// are fixed at creation; the owner changes only through Transfer and the
// withdrawn flag flips true exactly once.
type Lock struct {
	id            LockID
	token         TokenID
	owner         Principal
	amount        PositiveAmount
	unlockUnixUTC int64
	withdrawn     bool
}

// NewLock validates and assembles a lock record.
func NewLock(id LockID, token TokenID, owner Principal, amount PositiveAmount, unlockUnixUTC int64) (Lock, error) {
	if token.IsZero() {
		return Lock{}, fmt.Errorf("%w: empty value", ErrInvalidTokenID)
	}
	if owner.IsZero() {
		return Lock{}, fmt.Errorf("%w: empty value", ErrInvalidPrincipal)
	}
	if amount.Int64() <= 0 {
		return Lock{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return Lock{
		id:            id,
		token:         token,
		owner:         owner,
		amount:        amount,
		unlockUnixUTC: unlockUnixUTC,
	}, nil
}

// ID returns the lock id.
func (lock Lock) ID() LockID {
	return lock.id
}

// Token returns the locked asset type.
func (lock Lock) Token() TokenID {
	return lock.token
}

// Owner returns the principal currently entitled to withdraw or transfer.
func (lock Lock) Owner() Principal {
	return lock.owner
}

// Amount returns the quantity held in custody.
func (lock Lock) Amount() PositiveAmount {
	return lock.amount
}

// UnlockUnixUTC returns the time after which withdrawal is permitted.
func (lock Lock) UnlockUnixUTC() int64 {
	return lock.unlockUnixUTC
}

// Withdrawn reports whether the custody has been released.
func (lock Lock) Withdrawn() bool {
	return lock.withdrawn
}

// TokenAccount is the external token-transfer collaborator. Debit moves
// tokens from a principal into custody; Credit releases them back out.
// Failures are propagated to the caller as ErrTransferFailed, never retried.
type TokenAccount interface {
	Debit(ctx context.Context, owner Principal, token TokenID, amount PositiveAmount) error
	Credit(ctx context.Context, recipient Principal, token TokenID, amount PositiveAmount) error
}

// FeeLedger is the opaque incidental-currency ledger that receives swept
// creation fees.
type FeeLedger interface {
	Credit(ctx context.Context, recipient Principal, amount Amount) error
}
