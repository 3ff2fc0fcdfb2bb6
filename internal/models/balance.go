package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBalance is the single running balance of one user. At most one row
// exists per user. The stored value must always equal the signed sum of the
// user's live transactions plus the initial amount; every change goes through
// the ledger's balance store, never through a direct update.
//
// LockVersion implements optimistic concurrency: a balance write only lands
// when the version it read is still current, otherwise the whole operation
// is retried.
type UserBalance struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      uint            `gorm:"uniqueIndex;not null"`
	Balance     decimal.Decimal `gorm:"type:DECIMAL(20,2);not null"`
	LockVersion int64           `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
