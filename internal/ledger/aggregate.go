package ledger

import (
	"context"
	"fmt"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SumAmounts returns the arithmetic sum of the transactions' amounts.
func SumAmounts(txns []models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for i := range txns {
		sum = sum.Add(txns[i].Amount)
	}
	return sum
}

// Totals sums the live income and expense amounts recorded against a
// balance. Read-only; feeds the balance report.
func Totals(ctx context.Context, db *gorm.DB, balanceID uint) (totalIncome, totalExpense decimal.Decimal, err error) {
	rows := []struct {
		Kind  models.TransactionKind
		Total decimal.Decimal
	}{}
	err = db.WithContext(ctx).Model(&models.Transaction{}).
		Select("kind, COALESCE(SUM(amount), 0) AS total").
		Where("balance_id = ?", balanceID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}

	totalIncome, totalExpense = decimal.Zero, decimal.Zero
	for _, r := range rows {
		switch r.Kind {
		case models.KindIncome:
			totalIncome = r.Total
		case models.KindExpense:
			totalExpense = r.Total
		}
	}
	return totalIncome, totalExpense, nil
}
