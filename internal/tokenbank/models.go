package tokenbank

import "time"

// Holding mirrors the token_holdings table: custody-eligible balance per
// (principal, token).
type Holding struct {
	Principal    string    `gorm:"primaryKey;not null"`
	Token        string    `gorm:"primaryKey;not null"`
	BalanceUnits int64     `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (Holding) TableName() string { return "token_holdings" }

// FeeBalance mirrors the fee_balances table: incidental-currency balance per
// principal, credited by fee sweeps.
type FeeBalance struct {
	Principal    string    `gorm:"primaryKey;not null"`
	BalanceUnits int64     `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (FeeBalance) TableName() string { return "fee_balances" }
