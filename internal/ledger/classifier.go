package ledger

import (
	"errors"
	"fmt"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"

	"gorm.io/gorm"
)

// ValidateCategory checks that the category exists and that its expense flag
// matches the transaction kind: expense-flagged categories for expenses,
// income-flagged for incomes. On mismatch or a missing category it returns an
// *InvalidCategoryError carrying the IDs that would have been valid.
//
// The check is pure; h may be a live transaction handle so the read shares
// the caller's atomic unit.
func ValidateCategory(h *gorm.DB, categoryID uint, kind models.TransactionKind) error {
	var category models.Category
	err := h.First(&category, categoryID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return invalidCategory(h, kind)
	case err != nil:
		return fmt.Errorf("load category %d: %w", categoryID, err)
	}

	if category.IsExpense != (kind == models.KindExpense) {
		return invalidCategory(h, kind)
	}
	return nil
}

// EligibleCategoryIDs lists the IDs of every category valid for the given
// kind, in ascending ID order.
func EligibleCategoryIDs(h *gorm.DB, kind models.TransactionKind) ([]uint, error) {
	var ids []uint
	err := h.Model(&models.Category{}).
		Where("is_expense = ?", kind == models.KindExpense).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list eligible categories: %w", err)
	}
	return ids, nil
}

func invalidCategory(h *gorm.DB, kind models.TransactionKind) error {
	eligible, err := EligibleCategoryIDs(h, kind)
	if err != nil {
		return err
	}
	return &InvalidCategoryError{Kind: kind, Eligible: eligible}
}
