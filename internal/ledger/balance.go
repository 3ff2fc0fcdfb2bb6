package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// defaultMaxRetries bounds how often a balance unit is re-run after an
// optimistic-lock conflict before giving up with ErrConflictRetryExhausted.
const defaultMaxRetries = 5

// BalanceStore owns the one mutable balance row per user. All writes go
// through ApplyDelta inside a unit started by RunUnit; nothing else in the
// codebase updates user_balances.
type BalanceStore struct {
	db         *gorm.DB
	maxRetries int
}

// NewBalanceStore creates a balance store. maxRetries <= 0 selects the
// default retry budget.
func NewBalanceStore(db *gorm.DB, maxRetries int) *BalanceStore {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &BalanceStore{db: db, maxRetries: maxRetries}
}

// GetOrFail returns the user's balance, or ErrNoBalance if the user has not
// initialized one.
func (s *BalanceStore) GetOrFail(ctx context.Context, userID uint) (*models.UserBalance, error) {
	var balance models.UserBalance
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNoBalance
	case err != nil:
		return nil, fmt.Errorf("load balance for user %d: %w", userID, err)
	}
	return &balance, nil
}

// CreateInitial creates the user's balance with the given starting amount.
// At most one balance exists per user; a second creation fails with
// ErrAlreadyExists.
func (s *BalanceStore) CreateInitial(ctx context.Context, userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	balance := models.UserBalance{UserID: userID, Balance: amount}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserBalance{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("check existing balance: %w", err)
		}
		if count > 0 {
			return ErrAlreadyExists
		}
		if err := tx.Create(&balance).Error; err != nil {
			return fmt.Errorf("create balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// ApplyDelta adds delta to the stored balance, guarded by the optimistic
// version the caller read. On a version miss nothing is written and the unit
// is aborted for retry. The passed balance is updated in place on success.
//
// tx must be the transaction handle of the unit the balance was read in;
// ApplyDelta is never called outside RunUnit.
func (s *BalanceStore) ApplyDelta(tx *gorm.DB, balance *models.UserBalance, delta decimal.Decimal) (decimal.Decimal, error) {
	newBalance := balance.Balance.Add(delta)
	res := tx.Model(&models.UserBalance{}).
		Where("id = ? AND lock_version = ?", balance.ID, balance.LockVersion).
		Updates(map[string]any{
			"balance":      newBalance,
			"lock_version": balance.LockVersion + 1,
		})
	if res.Error != nil {
		return decimal.Zero, fmt.Errorf("apply balance delta: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Someone committed against this balance between our read and write.
		return decimal.Zero, errConflict
	}
	balance.Balance = newBalance
	balance.LockVersion++
	return newBalance, nil
}

// RunUnit executes fn as one atomic unit scoped to the user's balance row:
// a database transaction holding a freshly read balance. If fn (typically
// via ApplyDelta) hits an optimistic-lock conflict, the whole unit is rolled
// back and re-run with a fresh read, up to the retry budget. Any other error
// rolls the unit back untouched and is returned as-is.
func (s *BalanceStore) RunUnit(ctx context.Context, userID uint, fn func(tx *gorm.DB, balance *models.UserBalance) error) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var balance models.UserBalance
			err := tx.Where("user_id = ?", userID).First(&balance).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				return ErrNoBalance
			case err != nil:
				return fmt.Errorf("load balance for user %d: %w", userID, err)
			}
			return fn(tx, &balance)
		})
		if !errors.Is(err, errConflict) {
			return err
		}
	}
	return ErrConflictRetryExhausted
}

// DerivedInitialAndProfit recovers the starting balance and the running
// profit/loss from the current balance and the income/expense totals:
// initial = current + totalExpense - totalIncome, profit = totalIncome -
// totalExpense. Pure arithmetic for reporting.
func DerivedInitialAndProfit(balance, totalIncome, totalExpense decimal.Decimal) (initial, profit decimal.Decimal) {
	initial = balance.Add(totalExpense).Sub(totalIncome)
	profit = totalIncome.Sub(totalExpense)
	return initial, profit
}
