package models

import "time"

// GoalCategoryName is the reserved transaction category a completed goal's
// expense is filed under. It is created on demand and must stay
// expense-flagged.
const GoalCategoryName = "Goal"

// Category classifies income/expense transactions. IsExpense true means the
// category is only valid for expenses, false only for incomes.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:64;uniqueIndex;not null"`
	IsExpense bool   `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GoalCategory is a separate category namespace for savings goals. Goal
// categories carry no expense flag; they only label what a goal is for.
type GoalCategory struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
