package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind tags a transaction as income or expense. The two variants
// share one table; the kind decides the sign of the balance effect and which
// category flag is valid.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// Valid reports whether k is one of the two known kinds.
func (k TransactionKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Sign returns +1 for income and -1 for expense as a decimal multiplier.
func (k TransactionKind) Sign() decimal.Decimal {
	if k == KindExpense {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Transaction is a single income or expense record. Amount is always
// positive; the kind carries the sign.
type Transaction struct {
	ID         uint            `gorm:"primaryKey"`
	Kind       TransactionKind `gorm:"size:16;index;not null"`
	Amount     decimal.Decimal `gorm:"type:DECIMAL(20,2);not null"`
	Note       string          `gorm:"size:255"`
	CategoryID uint            `gorm:"index;not null"`
	BalanceID  uint            `gorm:"index;not null"`
	UserID     uint            `gorm:"index;not null"`
	CreatedAt  time.Time       `gorm:"index"`
	UpdatedAt  time.Time

	Category Category    `gorm:"constraint:OnDelete:RESTRICT"`
	Balance  UserBalance `gorm:"foreignKey:BalanceID;constraint:OnDelete:CASCADE"`
	User     User        `gorm:"constraint:OnDelete:CASCADE"`
}
