package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target measured against the owner's balance.
// Progress and Status are derived from the balance at write time:
// progress = balance / price * 100 (two decimal places), status true once
// progress reaches 100. Completing a goal deletes it and materializes an
// expense of the same price, so a goal row never survives completion.
type Goal struct {
	ID         uint            `gorm:"primaryKey"`
	Note       string          `gorm:"size:255"`
	Price      decimal.Decimal `gorm:"type:DECIMAL(20,2);not null"`
	Progress   decimal.Decimal `gorm:"type:DECIMAL(8,2);not null"`
	Status     bool            `gorm:"not null"`
	CategoryID uint            `gorm:"index;not null"`
	BalanceID  uint            `gorm:"index;not null"`
	UserID     uint            `gorm:"index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Category GoalCategory `gorm:"constraint:OnDelete:RESTRICT"`
	Balance  UserBalance  `gorm:"foreignKey:BalanceID;constraint:OnDelete:CASCADE"`
	User     User         `gorm:"constraint:OnDelete:CASCADE"`
}
