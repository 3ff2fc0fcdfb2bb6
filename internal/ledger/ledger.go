package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger manages income and expense records and the compensating balance
// mutation each operation requires.
type Ledger struct {
	db       *gorm.DB
	balances *BalanceStore
}

// NewLedger creates a transaction ledger on top of the balance store.
func NewLedger(db *gorm.DB, balances *BalanceStore) *Ledger {
	return &Ledger{db: db, balances: balances}
}

// Record creates a transaction for the user and applies its effect
// (+amount for income, -amount for expense) to the user's balance. Both
// writes commit together; a failed balance update rolls the record back so
// no orphan transaction survives.
func (l *Ledger) Record(ctx context.Context, kind models.TransactionKind, amount decimal.Decimal, note string, categoryID, userID uint) (*models.Transaction, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown transaction kind %q", kind)
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var txn *models.Transaction
	err := l.balances.RunUnit(ctx, userID, func(tx *gorm.DB, balance *models.UserBalance) error {
		if err := ValidateCategory(tx, categoryID, kind); err != nil {
			return err
		}
		t := models.Transaction{
			Kind:       kind,
			Amount:     amount,
			Note:       note,
			CategoryID: categoryID,
			BalanceID:  balance.ID,
			UserID:     userID,
		}
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("create %s: %w", kind, err)
		}
		if _, err := l.balances.ApplyDelta(tx, balance, amount.Mul(kind.Sign())); err != nil {
			return err
		}
		txn = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Amend updates a transaction's amount, category and note, and applies the
// resulting delta (newAmount - oldAmount, sign per kind) to the balance.
// The field update and the balance delta commit together or neither does.
func (l *Ledger) Amend(ctx context.Context, txnID, userID uint, newAmount decimal.Decimal, newCategoryID uint, newNote string) (*models.Transaction, error) {
	if !newAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if err := l.checkOwnership(ctx, txnID, userID); err != nil {
		return nil, err
	}

	var txn *models.Transaction
	err := l.balances.RunUnit(ctx, userID, func(tx *gorm.DB, balance *models.UserBalance) error {
		t, err := loadOwned(tx, txnID, balance.ID)
		if err != nil {
			return err
		}
		if err := ValidateCategory(tx, newCategoryID, t.Kind); err != nil {
			return err
		}

		delta := newAmount.Sub(t.Amount).Mul(t.Kind.Sign())

		t.Amount = newAmount
		t.CategoryID = newCategoryID
		t.Note = newNote
		if err := tx.Save(t).Error; err != nil {
			return fmt.Errorf("update %s %d: %w", t.Kind, t.ID, err)
		}
		if _, err := l.balances.ApplyDelta(tx, balance, delta); err != nil {
			return err
		}
		txn = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Remove deletes a transaction and reverses its original balance effect as
// one atomic unit.
func (l *Ledger) Remove(ctx context.Context, txnID, userID uint) error {
	if err := l.checkOwnership(ctx, txnID, userID); err != nil {
		return err
	}

	return l.balances.RunUnit(ctx, userID, func(tx *gorm.DB, balance *models.UserBalance) error {
		t, err := loadOwned(tx, txnID, balance.ID)
		if err != nil {
			return err
		}
		if err := tx.Delete(t).Error; err != nil {
			return fmt.Errorf("delete %s %d: %w", t.Kind, t.ID, err)
		}
		// Reverse: income gave +amount, expense gave -amount.
		_, err = l.balances.ApplyDelta(tx, balance, t.Amount.Mul(t.Kind.Sign()).Neg())
		return err
	})
}

// checkOwnership resolves the transaction and verifies the caller owns the
// balance it references. The unit re-verifies afterwards; this pre-check only
// exists to distinguish Forbidden from NoBalance for the caller.
func (l *Ledger) checkOwnership(ctx context.Context, txnID, userID uint) error {
	var t models.Transaction
	err := l.db.WithContext(ctx).First(&t, txnID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("load transaction %d: %w", txnID, err)
	}
	if t.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// loadOwned reloads the transaction inside the unit and checks it still
// belongs to the locked balance.
func loadOwned(tx *gorm.DB, txnID, balanceID uint) (*models.Transaction, error) {
	var t models.Transaction
	err := tx.First(&t, txnID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("load transaction %d: %w", txnID, err)
	}
	if t.BalanceID != balanceID {
		return nil, ErrForbidden
	}
	return &t, nil
}

// ListFilter narrows a List query. Zero values mean "no filter"; the
// timestamp bounds are inclusive.
type ListFilter struct {
	Kind         models.TransactionKind // empty means both kinds
	Note         string                 // case-insensitive substring
	MinCreatedAt *time.Time
	MaxCreatedAt *time.Time
	Page         int
	PageSize     int
}

// Pagination is the envelope returned alongside a page of results.
type Pagination struct {
	TotalCount  int64 `json:"totalCount"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
}

// ListResult is one page of transactions in ascending ID order. PageTotal
// sums the amounts of the returned page only, not the whole filtered set.
type ListResult struct {
	Transactions []models.Transaction
	Pagination   Pagination
	PageTotal    decimal.Decimal
}

// List returns the user's transactions matching the filter.
func (l *Ledger) List(ctx context.Context, userID uint, filter ListFilter) (*ListResult, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 10
	}

	q := l.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.Note != "" {
		q = q.Where("LOWER(note) LIKE ?", "%"+strings.ToLower(filter.Note)+"%")
	}
	if filter.MinCreatedAt != nil {
		q = q.Where("created_at >= ?", *filter.MinCreatedAt)
	}
	if filter.MaxCreatedAt != nil {
		q = q.Where("created_at <= ?", *filter.MaxCreatedAt)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	var txns []models.Transaction
	err := q.Session(&gorm.Session{}).
		Preload("Category").
		Preload("User").
		Order("id ASC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &ListResult{
		Transactions: txns,
		Pagination:   Pagination{TotalCount: total, CurrentPage: page, TotalPages: totalPages},
		PageTotal:    SumAmounts(txns),
	}, nil
}
