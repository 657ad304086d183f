package tokenbank

import (
	"context"
	"errors"

	"github.com/MarkoPoloResearchLab/timelock/pkg/timelock"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pgUniqueViolationCode = "23505"
	sqliteConstraintCode  = 19
	dialectPostgres       = "postgres"

	errorOperationBank   = "bank"
	errorSubjectHolding  = "holding"
	errorSubjectFee      = "fee_balance"
	errorCodeDebit       = "debit"
	errorCodeCredit      = "credit"
	errorCodeGet         = "get"
	errorCodeInsufficent = "insufficient"
)

// ErrInsufficientBalance is returned when a debit exceeds the holding.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Bank implements timelock.TokenAccount over GORM: a custody-side balance
// table debited into the ledger and credited back on withdrawal.
type Bank struct {
	db *gorm.DB
}

// NewBank returns a Bank backed by gorm.DB.
func NewBank(db *gorm.DB) *Bank {
	return &Bank{db: db}
}

// Debit moves amount of token out of owner's holding into custody.
func (bank *Bank) Debit(ctx context.Context, owner timelock.Principal, token timelock.TokenID, amount timelock.PositiveAmount) error {
	return bank.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		var holding Holding
		query := transaction
		if transaction.Dialector.Name() == dialectPostgres {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := query.
			Where("principal = ? AND token = ?", owner.String(), token.String()).
			Take(&holding).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wrapBankError(errorSubjectHolding, errorCodeInsufficent, ErrInsufficientBalance)
		}
		if err != nil {
			return wrapBankError(errorSubjectHolding, errorCodeGet, err)
		}
		if holding.BalanceUnits < amount.Int64() {
			return wrapBankError(errorSubjectHolding, errorCodeInsufficent, ErrInsufficientBalance)
		}
		result := transaction.
			Model(&Holding{}).
			Where("principal = ? AND token = ?", owner.String(), token.String()).
			Update("balance_units", gorm.Expr("balance_units - ?", amount.Int64()))
		if result.Error != nil {
			return wrapBankError(errorSubjectHolding, errorCodeDebit, result.Error)
		}
		return nil
	})
}

// Credit moves amount of token from custody back into recipient's holding,
// creating the holding row when absent.
func (bank *Bank) Credit(ctx context.Context, recipient timelock.Principal, token timelock.TokenID, amount timelock.PositiveAmount) error {
	return bank.deposit(ctx, recipient.String(), token.String(), amount.Int64())
}

// Deposit funds a holding outside the custody flow (seeding, tests, CLI).
func (bank *Bank) Deposit(ctx context.Context, owner timelock.Principal, token timelock.TokenID, amount timelock.PositiveAmount) error {
	return bank.deposit(ctx, owner.String(), token.String(), amount.Int64())
}

func (bank *Bank) deposit(ctx context.Context, principal string, token string, amount int64) error {
	holding := Holding{Principal: principal, Token: token, BalanceUnits: amount}
	err := bank.db.WithContext(ctx).Create(&holding).Error
	if err == nil {
		return nil
	}
	if !isDuplicateKey(err) {
		return wrapBankError(errorSubjectHolding, errorCodeCredit, err)
	}
	result := bank.db.WithContext(ctx).
		Model(&Holding{}).
		Where("principal = ? AND token = ?", principal, token).
		Update("balance_units", gorm.Expr("balance_units + ?", amount))
	if result.Error != nil {
		return wrapBankError(errorSubjectHolding, errorCodeCredit, result.Error)
	}
	return nil
}

// Balance reads a holding's current balance; zero when the row is absent.
func (bank *Bank) Balance(ctx context.Context, owner timelock.Principal, token timelock.TokenID) (int64, error) {
	var holding Holding
	err := bank.db.WithContext(ctx).
		Where("principal = ? AND token = ?", owner.String(), token.String()).
		Take(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapBankError(errorSubjectHolding, errorCodeGet, err)
	}
	return holding.BalanceUnits, nil
}

// FeeBank implements timelock.FeeLedger over GORM.
type FeeBank struct {
	db *gorm.DB
}

// NewFeeBank returns a FeeBank backed by gorm.DB.
func NewFeeBank(db *gorm.DB) *FeeBank {
	return &FeeBank{db: db}
}

// Credit pays swept fees into the recipient's incidental-currency balance.
func (bank *FeeBank) Credit(ctx context.Context, recipient timelock.Principal, amount timelock.Amount) error {
	balance := FeeBalance{Principal: recipient.String(), BalanceUnits: amount.Int64()}
	err := bank.db.WithContext(ctx).Create(&balance).Error
	if err == nil {
		return nil
	}
	if !isDuplicateKey(err) {
		return wrapBankError(errorSubjectFee, errorCodeCredit, err)
	}
	result := bank.db.WithContext(ctx).
		Model(&FeeBalance{}).
		Where("principal = ?", recipient.String()).
		Update("balance_units", gorm.Expr("balance_units + ?", amount.Int64()))
	if result.Error != nil {
		return wrapBankError(errorSubjectFee, errorCodeCredit, result.Error)
	}
	return nil
}

// Balance reads the recipient's fee balance; zero when the row is absent.
func (bank *FeeBank) Balance(ctx context.Context, recipient timelock.Principal) (int64, error) {
	var balance FeeBalance
	err := bank.db.WithContext(ctx).
		Where("principal = ?", recipient.String()).
		Take(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapBankError(errorSubjectFee, errorCodeGet, err)
	}
	return balance.BalanceUnits, nil
}

func wrapBankError(subject string, code string, err error) error {
	return timelock.WrapError(errorOperationBank, subject, code, err)
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
