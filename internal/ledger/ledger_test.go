package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/farhanhasbi/PersonalBudgetTrackerAPI/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIncomeCreditsBalance(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	ctx := context.Background()

	txn, err := f.ledger.Record(ctx, models.KindIncome, dec("250.50"), "salary", f.income.ID, f.user.ID)
	require.NoError(t, err)
	require.NotZero(t, txn.ID)
	assert.Equal(t, models.KindIncome, txn.Kind)

	requireDecimalEqual(t, dec("1250.50"), f.currentBalance(t))
}

func TestRecordExpenseDebitsBalance(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	ctx := context.Background()

	_, err := f.ledger.Record(ctx, models.KindExpense, dec("200"), "food", f.expense.ID, f.user.ID)
	require.NoError(t, err)

	requireDecimalEqual(t, dec("800"), f.currentBalance(t))
}

func TestRecordRejectsCategoryKindMismatch(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	ctx := context.Background()

	// income against expense-flagged category
	_, err := f.ledger.Record(ctx, models.KindIncome, dec("100"), "", f.expense.ID, f.user.ID)
	require.ErrorIs(t, err, ErrInvalidCategory)

	var invalid *InvalidCategoryError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.KindIncome, invalid.Kind)
	assert.Equal(t, []uint{f.income.ID}, invalid.Eligible)

	// balance untouched, no orphan transaction
	requireDecimalEqual(t, dec("1000"), f.currentBalance(t))
	var count int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecordRejectsMissingCategory(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))

	_, err := f.ledger.Record(context.Background(), models.KindExpense, dec("100"), "", 9999, f.user.ID)
	require.ErrorIs(t, err, ErrInvalidCategory)
	requireDecimalEqual(t, dec("1000"), f.currentBalance(t))
}

func TestRecordRejectsNonPositiveAmount(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))

	for _, amount := range []string{"0", "-5"} {
		_, err := f.ledger.Record(context.Background(), models.KindIncome, dec(amount), "", f.income.ID, f.user.ID)
		require.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestRecordWithoutBalance(t *testing.T) {
	db := newTestDB(t)
	balances := NewBalanceStore(db, 0)
	l := NewLedger(db, balances)
	user := createUser(t, db, "bob")
	category := createCategory(t, db, "Salary", false)

	_, err := l.Record(context.Background(), models.KindIncome, dec("10"), "", category.ID, user.ID)
	require.ErrorIs(t, err, ErrNoBalance)
}

func TestAmendAppliesDelta(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	ctx := context.Background()

	txn, err := f.ledger.Record(ctx, models.KindIncome, dec("100"), "old", f.income.ID, f.user.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, dec("1100"), f.currentBalance(t))

	updated, err := f.ledger.Amend(ctx, txn.ID, f.user.ID, dec("150"), f.income.ID, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Note)
	requireDecimalEqual(t, dec("150"), updated.Amount)
	requireDecimalEqual(t, dec("1150"), f.currentBalance(t))
}

func TestAmendExpenseDeltaIsNegated(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	ctx := context.Background()

	txn, err := f.ledger.Record(ctx, models.KindExpense, dec("300"), "", f.expense.ID, f.user.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, dec("700"), f.currentBalance(t))

	// raising an expense lowers the balance further
	_, err = f.ledger.Amend(ctx, txn.ID, f.user.ID, dec("400"), f.expense.ID, "")
	require.NoError(t, err)
	requireDecimalEqual(t, dec("600"), f.currentBalance(t))
}

func TestAmendRoundTripRestoresBalance(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	ctx := context.Background()

	txn, err := f.ledger.Record(ctx, models.KindIncome, dec("123.45"), "n", f.income.ID, f.user.ID)
	require.NoError(t, err)
	before := f.currentBalance(t)

	_, err = f.ledger.Amend(ctx, txn.ID, f.user.ID, dec("999.99"), f.income.ID, "n")
	require.NoError(t, err)
	_, err = f.ledger.Amend(ctx, txn.ID, f.user.ID, dec("123.45"), f.income.ID, "n")
	require.NoError(t, err)

	requireDecimalEqual(t, before, f.currentBalance(t))
}

func TestAmendRevalidatesCategoryAgainstKind(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	ctx := context.Background()

	txn, err := f.ledger.Record(ctx, models.KindIncome, dec("100"), "", f.income.ID, f.user.ID)
	require.NoError(t, err)

	_, err = f.ledger.Amend(ctx, txn.ID, f.user.ID, dec("100"), f.expense.ID, "")
	require.ErrorIs(t, err, ErrInvalidCategory)
	requireDecimalEqual(t, dec("1100"), f.currentBalance(t))
}

func TestAmendForeignTransactionForbidden(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	ctx := context.Background()

	txn, err := f.ledger.Record(ctx, models.KindIncome, dec("100"), "", f.income.ID, f.user.ID)
	require.NoError(t, err)

	mallory := createUser(t, f.db, "mallory")
	_, err = f.balances.CreateInitial(ctx, mallory.ID, dec("0"))
	require.NoError(t, err)

	_, err = f.ledger.Amend(ctx, txn.ID, mallory.ID, dec("1"), f.income.ID, "")
	require.ErrorIs(t, err, ErrForbidden)
	requireDecimalEqual(t, dec("1100"), f.currentBalance(t))
}

func TestAmendMissingTransaction(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))

	_, err := f.ledger.Amend(context.Background(), 9999, f.user.ID, dec("1"), f.income.ID, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveReversesOriginalEffect(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	ctx := context.Background()

	expense, err := f.ledger.Record(ctx, models.KindExpense, dec("200"), "", f.expense.ID, f.user.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, dec("800"), f.currentBalance(t))

	require.NoError(t, f.ledger.Remove(ctx, expense.ID, f.user.ID))
	requireDecimalEqual(t, dec("1000"), f.currentBalance(t))

	income, err := f.ledger.Record(ctx, models.KindIncome, dec("50"), "", f.income.ID, f.user.ID)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Remove(ctx, income.ID, f.user.ID))
	requireDecimalEqual(t, dec("1000"), f.currentBalance(t))
}

func TestRemoveForeignTransactionForbidden(t *testing.T) {
	f := newLedgerFixture(t, dec("1000"))
	ctx := context.Background()

	txn, err := f.ledger.Record(ctx, models.KindIncome, dec("100"), "", f.income.ID, f.user.ID)
	require.NoError(t, err)

	mallory := createUser(t, f.db, "mallory")
	_, err = f.balances.CreateInitial(ctx, mallory.ID, dec("0"))
	require.NoError(t, err)

	require.ErrorIs(t, f.ledger.Remove(ctx, txn.ID, mallory.ID), ErrForbidden)
}

// The core invariant: after any mutation sequence the stored balance equals
// initial + sum(income) - sum(expense) over the surviving records.
func TestBalanceInvariantAfterMutationSequence(t *testing.T) {
	f := newLedgerFixture(t, dec("500"))
	ctx := context.Background()

	a, err := f.ledger.Record(ctx, models.KindIncome, dec("100"), "a", f.income.ID, f.user.ID)
	require.NoError(t, err)
	b, err := f.ledger.Record(ctx, models.KindExpense, dec("40"), "b", f.expense.ID, f.user.ID)
	require.NoError(t, err)
	_, err = f.ledger.Record(ctx, models.KindIncome, dec("10"), "c", f.income.ID, f.user.ID)
	require.NoError(t, err)

	_, err = f.ledger.Amend(ctx, a.ID, f.user.ID, dec("120"), f.income.ID, "a2")
	require.NoError(t, err)
	require.NoError(t, f.ledger.Remove(ctx, b.ID, f.user.ID))

	totalIncome, totalExpense, err := Totals(ctx, f.db, a.BalanceID)
	require.NoError(t, err)
	requireDecimalEqual(t, dec("130"), totalIncome)
	requireDecimalEqual(t, dec("0"), totalExpense)

	expected := dec("500").Add(totalIncome).Sub(totalExpense)
	requireDecimalEqual(t, expected, f.currentBalance(t))
}

func TestConcurrentRecordsLoseNoUpdates(t *testing.T) {
	f := newLedgerFixture(t, dec("0"))
	ctx := context.Background()

	const workers = 10
	amount := dec("7")

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Record(ctx, models.KindIncome, amount, "", f.income.ID, f.user.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	requireDecimalEqual(t, dec("70"), f.currentBalance(t))
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newLedgerFixture(t, dec("0"))
	ctx := context.Background()

	notes := []string{"Rent January", "groceries", "rent deposit", "fuel"}
	for _, note := range notes {
		_, err := f.ledger.Record(ctx, models.KindExpense, dec("10"), note, f.expense.ID, f.user.ID)
		require.NoError(t, err)
	}
	_, err := f.ledger.Record(ctx, models.KindIncome, dec("99"), "rent refund", f.income.ID, f.user.ID)
	require.NoError(t, err)

	// case-insensitive note substring, kind-scoped
	result, err := f.ledger.List(ctx, f.user.ID, ListFilter{Kind: models.KindExpense, Note: "RENT"})
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, int64(2), result.Pagination.TotalCount)
	requireDecimalEqual(t, dec("20"), result.PageTotal)

	// ascending ID order
	assert.Less(t, result.Transactions[0].ID, result.Transactions[1].ID)

	// pagination: page 2 of size 3 over the four expenses
	result, err = f.ledger.List(ctx, f.user.ID, ListFilter{Kind: models.KindExpense, Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, 2, result.Pagination.CurrentPage)
	assert.Equal(t, 2, result.Pagination.TotalPages)
	assert.Equal(t, int64(4), result.Pagination.TotalCount)

	// page total covers the returned page only
	requireDecimalEqual(t, dec("10"), result.PageTotal)
}

func TestListTimestampRangeInclusive(t *testing.T) {
	f := newLedgerFixture(t, dec("0"))
	ctx := context.Background()

	txn, err := f.ledger.Record(ctx, models.KindIncome, dec("5"), "", f.income.ID, f.user.ID)
	require.NoError(t, err)

	min := txn.CreatedAt.Add(-time.Second)
	max := txn.CreatedAt.Add(time.Second)

	result, err := f.ledger.List(ctx, f.user.ID, ListFilter{MinCreatedAt: &min, MaxCreatedAt: &max})
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	// a range that ends before the record excludes it
	past := txn.CreatedAt.Add(-time.Hour)
	result, err = f.ledger.List(ctx, f.user.ID, ListFilter{MaxCreatedAt: &past})
	require.NoError(t, err)
	assert.Empty(t, result.Transactions)
}

func TestListIsIdempotent(t *testing.T) {
	f := newLedgerFixture(t, dec("0"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.ledger.Record(ctx, models.KindIncome, dec("10"), "pay", f.income.ID, f.user.ID)
		require.NoError(t, err)
	}

	filter := ListFilter{Kind: models.KindIncome, Note: "pay", PageSize: 2}
	first, err := f.ledger.List(ctx, f.user.ID, filter)
	require.NoError(t, err)
	second, err := f.ledger.List(ctx, f.user.ID, filter)
	require.NoError(t, err)

	require.Len(t, second.Transactions, len(first.Transactions))
	for i := range first.Transactions {
		assert.Equal(t, first.Transactions[i].ID, second.Transactions[i].ID)
	}
	assert.Equal(t, first.Pagination, second.Pagination)
	requireDecimalEqual(t, first.PageTotal, second.PageTotal)
}
