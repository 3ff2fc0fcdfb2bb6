package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGoalProgress(t *testing.T) {
	progress, status, err := GoalProgress(dec("1000"), dec("1000"))
	require.NoError(t, err)
	requireDecimalEqual(t, dec("100.00"), progress)
	assert.True(t, status)

	progress, status, err = GoalProgress(dec("500"), dec("1000"))
	require.NoError(t, err)
	requireDecimalEqual(t, dec("50.00"), progress)
	assert.False(t, status)

	// rounding to two decimal places
	progress, _, err = GoalProgress(dec("1"), dec("3"))
	require.NoError(t, err)
	requireDecimalEqual(t, dec("33.33"), progress)

	_, _, err = GoalProgress(dec("100"), dec("0"))
	require.ErrorIs(t, err, ErrInvalidPrice)
	_, _, err = GoalProgress(dec("100"), dec("-5"))
	require.ErrorIs(t, err, ErrInvalidPrice)
	_, _, err = GoalProgress(dec("-1"), dec("100"))
	require.ErrorIs(t, err, ErrNegativeBalance)
}

func TestGoalCreateDerivesProgress(t *testing.T) {
	f := newLedgerFixture(t, dec("500"))
	category := createGoalCategory(t, f.db, "Electronics")

	goal, err := f.goals.Create(context.Background(), "new laptop", dec("1000"), category.ID, f.user.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, dec("50.00"), goal.Progress)
	assert.False(t, goal.Status)
}

func TestGoalCreateValidation(t *testing.T) {
	f := newLedgerFixture(t, dec("500"))
	category := createGoalCategory(t, f.db, "Electronics")
	ctx := context.Background()

	_, err := f.goals.Create(ctx, "x", dec("0"), category.ID, f.user.ID)
	require.ErrorIs(t, err, ErrInvalidPrice)

	_, err = f.goals.Create(ctx, "x", dec("100"), 9999, f.user.ID)
	require.ErrorIs(t, err, ErrInvalidCategory)

	// user without a balance cannot set goals
	bob := createUser(t, f.db, "bob")
	_, err = f.goals.Create(ctx, "x", dec("100"), category.ID, bob.ID)
	require.ErrorIs(t, err, ErrNoBalance)
}

func TestGoalAmendRecomputesFromCurrentBalance(t *testing.T) {
	f := newLedgerFixture(t, dec("500"))
	category := createGoalCategory(t, f.db, "Electronics")
	ctx := context.Background()

	goal, err := f.goals.Create(ctx, "laptop", dec("1000"), category.ID, f.user.ID)
	require.NoError(t, err)

	// the balance grows, then the price is halved: progress crosses 100
	_, err = f.ledger.Record(ctx, models.KindIncome, dec("100"), "", f.income.ID, f.user.ID)
	require.NoError(t, err)

	updated, err := f.goals.Amend(ctx, goal.ID, f.user.ID, "laptop", dec("600"), category.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, dec("100.00"), updated.Progress)
	assert.True(t, updated.Status)
}

func TestGoalAmendForeignGoalForbidden(t *testing.T) {
	f := newLedgerFixture(t, dec("500"))
	category := createGoalCategory(t, f.db, "Electronics")
	ctx := context.Background()

	goal, err := f.goals.Create(ctx, "laptop", dec("1000"), category.ID, f.user.ID)
	require.NoError(t, err)

	mallory := createUser(t, f.db, "mallory")
	_, err = f.goals.Amend(ctx, goal.ID, mallory.ID, "mine now", dec("1"), category.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestGoalRemoveHasNoBalanceEffect(t *testing.T) {
	f := newLedgerFixture(t, dec("500"))
	category := createGoalCategory(t, f.db, "Electronics")
	ctx := context.Background()

	goal, err := f.goals.Create(ctx, "laptop", dec("1000"), category.ID, f.user.ID)
	require.NoError(t, err)

	require.NoError(t, f.goals.Remove(ctx, goal.ID, f.user.ID))
	requireDecimalEqual(t, dec("500"), f.currentBalance(t))

	err = f.goals.Remove(ctx, goal.ID, f.user.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGoalCompleteMaterializesExpense(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	category := createGoalCategory(t, f.db, "Electronics")
	ctx := context.Background()

	goal, err := f.goals.Create(ctx, "laptop", dec("1000"), category.ID, f.user.ID)
	require.NoError(t, err)
	assert.True(t, goal.Status)

	expense, err := f.goals.Complete(ctx, goal.ID, f.user.ID)
	require.NoError(t, err)

	// one expense of the goal's price under the reserved category
	assert.Equal(t, models.KindExpense, expense.Kind)
	requireDecimalEqual(t, dec("1000"), expense.Amount)
	assert.Equal(t, "laptop", expense.Note)

	var reserved models.Category
	require.NoError(t, f.db.Where("name = ?", models.GoalCategoryName).First(&reserved).Error)
	assert.True(t, reserved.IsExpense)
	assert.Equal(t, reserved.ID, expense.CategoryID)

	// balance debited to zero, goal row gone
	requireDecimalEqual(t, dec("0"), f.currentBalance(t))
	err = f.db.First(&models.Goal{}, goal.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGoalCompleteReusesReservedCategory(t *testing.T) {
	f := newLedgerFixture(t, dec("2000"))
	category := createGoalCategory(t, f.db, "Electronics")
	ctx := context.Background()

	first, err := f.goals.Create(ctx, "a", dec("500"), category.ID, f.user.ID)
	require.NoError(t, err)
	second, err := f.goals.Create(ctx, "b", dec("500"), category.ID, f.user.ID)
	require.NoError(t, err)

	_, err = f.goals.Complete(ctx, first.ID, f.user.ID)
	require.NoError(t, err)
	_, err = f.goals.Complete(ctx, second.ID, f.user.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&models.Category{}).
		Where("name = ?", models.GoalCategoryName).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	requireDecimalEqual(t, dec("1000"), f.currentBalance(t))
}

func TestGoalCompleteNotReady(t *testing.T) {
	f := newLedgerFixture(t, dec("500"))
	category := createGoalCategory(t, f.db, "Electronics")
	ctx := context.Background()

	goal, err := f.goals.Create(ctx, "laptop", dec("1000"), category.ID, f.user.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, dec("50.00"), goal.Progress)

	_, err = f.goals.Complete(ctx, goal.ID, f.user.ID)
	require.ErrorIs(t, err, ErrNotReady)

	// nothing happened: balance, goal and transactions untouched
	requireDecimalEqual(t, dec("500"), f.currentBalance(t))
	require.NoError(t, f.db.First(&models.Goal{}, goal.ID).Error)
	var count int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGoalCompleteOwnershipAndExistence(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	category := createGoalCategory(t, f.db, "Electronics")
	ctx := context.Background()

	goal, err := f.goals.Create(ctx, "laptop", dec("1000"), category.ID, f.user.ID)
	require.NoError(t, err)

	_, err = f.goals.Complete(ctx, 9999, f.user.ID)
	require.ErrorIs(t, err, ErrNotFound)

	mallory := createUser(t, f.db, "mallory")
	_, err = f.goals.Complete(ctx, goal.ID, mallory.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestGoalListPaginates(t *testing.T) {
	f := newLedgerFixture(t, dec("100"))
	category := createGoalCategory(t, f.db, "Electronics")
	ctx := context.Background()

	for _, note := range []string{"a", "b", "c"} {
		_, err := f.goals.Create(ctx, note, dec("1000"), category.ID, f.user.ID)
		require.NoError(t, err)
	}

	goals, pagination, err := f.goals.List(ctx, f.user.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, int64(3), pagination.TotalCount)
	assert.Equal(t, 2, pagination.TotalPages)
	assert.Equal(t, "c", goals[0].Note)
}

func TestInvalidCategoryErrorMatching(t *testing.T) {
	err := error(&InvalidCategoryError{Kind: models.KindIncome, Eligible: []uint{1, 2}})
	assert.True(t, errors.Is(err, ErrInvalidCategory))
}
