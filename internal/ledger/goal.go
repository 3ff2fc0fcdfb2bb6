package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

// GoalTracker manages savings goals. Progress is always derived from the
// owner's current balance; an incomplete goal never touches the balance,
// only the completion transition does.
type GoalTracker struct {
	db       *gorm.DB
	balances *BalanceStore
}

// NewGoalTracker creates a goal tracker on top of the balance store.
func NewGoalTracker(db *gorm.DB, balances *BalanceStore) *GoalTracker {
	return &GoalTracker{db: db, balances: balances}
}

// GoalProgress derives progress percentage and completion status from a
// balance and a target price. The price must be positive and the balance
// non-negative; the formula is undefined outside that range.
func GoalProgress(balance, price decimal.Decimal) (progress decimal.Decimal, status bool, err error) {
	if !price.IsPositive() {
		return decimal.Zero, false, ErrInvalidPrice
	}
	if balance.IsNegative() {
		return decimal.Zero, false, ErrNegativeBalance
	}
	progress = balance.Div(price).Mul(oneHundred).Round(2)
	return progress, progress.GreaterThanOrEqual(oneHundred), nil
}

// Create persists a new goal with freshly computed progress and status.
func (g *GoalTracker) Create(ctx context.Context, note string, price decimal.Decimal, categoryID, userID uint) (*models.Goal, error) {
	balance, err := g.balances.GetOrFail(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := g.checkGoalCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	progress, status, err := GoalProgress(balance.Balance, price)
	if err != nil {
		return nil, err
	}
	goal := models.Goal{
		Note:       note,
		Price:      price,
		Progress:   progress,
		Status:     status,
		CategoryID: categoryID,
		BalanceID:  balance.ID,
		UserID:     userID,
	}
	if err := g.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return &goal, nil
}

// Amend updates a goal's note, price and category, recomputing progress and
// status from the current balance and the new price.
func (g *GoalTracker) Amend(ctx context.Context, goalID, userID uint, note string, price decimal.Decimal, categoryID uint) (*models.Goal, error) {
	goal, err := g.loadOwned(g.db.WithContext(ctx), goalID, userID)
	if err != nil {
		return nil, err
	}
	if err := g.checkGoalCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	balance, err := g.balances.GetOrFail(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, status, err := GoalProgress(balance.Balance, price)
	if err != nil {
		return nil, err
	}
	goal.Note = note
	goal.Price = price
	goal.CategoryID = categoryID
	goal.Progress = progress
	goal.Status = status
	if err := g.db.WithContext(ctx).Save(goal).Error; err != nil {
		return nil, fmt.Errorf("update goal %d: %w", goal.ID, err)
	}
	return goal, nil
}

// Remove deletes a goal. No balance effect: an incomplete goal never
// credited or debited anything.
func (g *GoalTracker) Remove(ctx context.Context, goalID, userID uint) error {
	goal, err := g.loadOwned(g.db.WithContext(ctx), goalID, userID)
	if err != nil {
		return err
	}
	if err := g.db.WithContext(ctx).Delete(goal).Error; err != nil {
		return fmt.Errorf("delete goal %d: %w", goal.ID, err)
	}
	return nil
}

// Complete is the terminal goal transition: the goal row is deleted, an
// expense of the goal's price is created under the reserved "Goal" category,
// and the balance is debited by the price. All three happen in one atomic
// unit or not at all. Fails ErrNotReady below 100% progress.
func (g *GoalTracker) Complete(ctx context.Context, goalID, userID uint) (*models.Transaction, error) {
	// Distinguish Forbidden from NoBalance before entering the caller's unit.
	if _, err := g.loadOwned(g.db.WithContext(ctx), goalID, userID); err != nil {
		return nil, err
	}

	var expense *models.Transaction
	err := g.balances.RunUnit(ctx, userID, func(tx *gorm.DB, balance *models.UserBalance) error {
		goal, err := g.loadOwned(tx, goalID, userID)
		if err != nil {
			return err
		}
		if !goal.Status {
			return ErrNotReady
		}

		category, err := ensureGoalCategory(tx)
		if err != nil {
			return err
		}

		if err := tx.Delete(goal).Error; err != nil {
			return fmt.Errorf("delete goal %d: %w", goal.ID, err)
		}
		t := models.Transaction{
			Kind:       models.KindExpense,
			Amount:     goal.Price,
			Note:       goal.Note,
			CategoryID: category.ID,
			BalanceID:  balance.ID,
			UserID:     goal.UserID,
		}
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("create goal expense: %w", err)
		}
		if _, err := g.balances.ApplyDelta(tx, balance, goal.Price.Neg()); err != nil {
			return err
		}
		expense = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// List returns one page of the user's goals in ascending ID order with the
// usual pagination envelope.
func (g *GoalTracker) List(ctx context.Context, userID uint, page, pageSize int) ([]models.Goal, Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}

	q := g.db.WithContext(ctx).Model(&models.Goal{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("count goals: %w", err)
	}

	var goals []models.Goal
	err := q.Session(&gorm.Session{}).
		Preload("Category").
		Preload("User").
		Order("id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&goals).Error
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list goals: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return goals, Pagination{TotalCount: total, CurrentPage: page, TotalPages: totalPages}, nil
}

// loadOwned loads a goal and verifies the caller owns it.
func (g *GoalTracker) loadOwned(h *gorm.DB, goalID, userID uint) (*models.Goal, error) {
	var goal models.Goal
	err := h.First(&goal, goalID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("load goal %d: %w", goalID, err)
	}
	if goal.UserID != userID {
		return nil, ErrForbidden
	}
	return &goal, nil
}

// checkGoalCategory verifies the goal category exists.
func (g *GoalTracker) checkGoalCategory(ctx context.Context, categoryID uint) error {
	var category models.GoalCategory
	err := g.db.WithContext(ctx).First(&category, categoryID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrInvalidCategory
	case err != nil:
		return fmt.Errorf("load goal category %d: %w", categoryID, err)
	}
	return nil
}

// ensureGoalCategory finds or creates the reserved expense category that
// completed goals are filed under. Idempotent.
func ensureGoalCategory(tx *gorm.DB) (*models.Category, error) {
	var category models.Category
	err := tx.Where(models.Category{Name: models.GoalCategoryName}).
		Attrs(models.Category{IsExpense: true}).
		FirstOrCreate(&category).Error
	if err != nil {
		return nil, fmt.Errorf("ensure %q category: %w", models.GoalCategoryName, err)
	}
	return &category, nil
}
